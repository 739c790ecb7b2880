// Package store persists ranked match runs for the audit trail.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/organ-match-server/internal/domain"
)

// SQLiteStore implements domain.MatchStore using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite match store. It creates the database
// file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS match_runs (
		id TEXT PRIMARY KEY,
		organ_type TEXT NOT NULL,
		donor_blood_type TEXT NOT NULL,
		candidate_count INTEGER NOT NULL DEFAULT 0,
		results TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_match_runs_organ_type ON match_runs(organ_type);
	CREATE INDEX IF NOT EXISTS idx_match_runs_created_at ON match_runs(created_at);
	`

	_, err := db.Exec(schema)
	return err
}

// SaveRun stores a completed match run.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *domain.MatchRun) error {
	results, err := json.Marshal(run.Results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO match_runs (id, organ_type, donor_blood_type, candidate_count, results, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		string(run.OrganType),
		string(run.DonorBloodType),
		run.CandidateCount,
		string(results),
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert match run: %w", err)
	}
	return nil
}

// GetRun retrieves a match run by ID; nil when not found.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*domain.MatchRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, organ_type, donor_blood_type, candidate_count, results, created_at
		FROM match_runs WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan match run: %w", err)
	}
	return run, nil
}

// ListRuns returns match runs ordered newest first, with pagination.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit, offset int) ([]*domain.MatchRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, organ_type, donor_blood_type, candidate_count, results, created_at
		FROM match_runs
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query match runs: %w", err)
	}
	defer rows.Close()

	var result []*domain.MatchRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, run)
	}
	return result, rows.Err()
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// scanner is an interface over sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s scanner) (*domain.MatchRun, error) {
	run := &domain.MatchRun{}
	var organType, bloodType, results string

	err := s.Scan(&run.ID, &organType, &bloodType, &run.CandidateCount, &results, &run.CreatedAt)
	if err != nil {
		return nil, err
	}

	run.OrganType = domain.OrganType(organType)
	run.DonorBloodType = domain.BloodType(bloodType)
	if err := json.Unmarshal([]byte(results), &run.Results); err != nil {
		return nil, fmt.Errorf("failed to unmarshal results: %w", err)
	}
	return run, nil
}
