package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/organ-match-server/internal/domain"
)

// PostgresStore implements domain.MatchStore using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL match store over an existing
// connection and ensures the schema exists.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS match_runs (
			id TEXT PRIMARY KEY,
			organ_type TEXT NOT NULL,
			donor_blood_type TEXT NOT NULL,
			candidate_count INTEGER NOT NULL DEFAULT 0,
			results JSONB NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromURL creates a new PostgreSQL match store from a
// connection URL.
func NewPostgresStoreFromURL(databaseURL string, cfg domain.StorageConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 5
	}
	lifetime := cfg.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = 5 * time.Minute
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(lifetime)

	store, err := NewPostgresStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// SaveRun stores a completed match run.
func (s *PostgresStore) SaveRun(ctx context.Context, run *domain.MatchRun) error {
	results, err := json.Marshal(run.Results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO match_runs (id, organ_type, donor_blood_type, candidate_count, results, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		run.ID,
		string(run.OrganType),
		string(run.DonorBloodType),
		run.CandidateCount,
		results,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert match run: %w", err)
	}
	return nil
}

// GetRun retrieves a match run by ID; nil when not found.
func (s *PostgresStore) GetRun(ctx context.Context, id string) (*domain.MatchRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, organ_type, donor_blood_type, candidate_count, results, created_at
		FROM match_runs WHERE id = $1
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
func (s *PostgresStore) ListRuns(ctx context.Context, limit, offset int) ([]*domain.MatchRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, organ_type, donor_blood_type, candidate_count, results, created_at
		FROM match_runs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
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

// Close closes the underlying connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
