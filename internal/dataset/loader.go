// Package dataset loads historical transplant records from CSV for model
// training.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/organ-match-server/internal/domain"
	"github.com/organ-match-server/internal/matching"
)

// requiredColumns are the CSV columns a training file must carry. HLA
// columns feed the derived mismatch count; the remaining columns map
// directly onto the viability feature schema plus the survival label.
var requiredColumns = []string{
	"donor_age", "organ_type", "donor_comorbidities",
	"cold_ischemia_time_hours", "distance_km",
	"donor_blood_type", "recipient_blood_type",
	"recipient_age", "recipient_comorbidities",
	"donor_hla_a1", "donor_hla_a2", "donor_hla_b1", "donor_hla_b2",
	"recipient_hla_a1", "recipient_hla_a2", "recipient_hla_b1", "recipient_hla_b2",
	"graft_survival_1_year",
}

// LoadTrainingData reads a historical transplant CSV and returns feature
// rows with their one-year survival labels. Rows with unparsable numeric
// fields are skipped and counted, not fatal.
func LoadTrainingData(path string) ([]domain.FeatureRow, []int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open training data: %w", err)
	}
	defer f.Close()

	return readTrainingData(f)
}

func readTrainingData(r io.Reader) ([]domain.FeatureRow, []int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, nil, fmt.Errorf("training data missing column %q", col)
		}
	}

	var rows []domain.FeatureRow
	var labels []int
	skipped := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		row, label, err := parseRecord(record, index)
		if err != nil {
			skipped++
			continue
		}
		rows = append(rows, *row)
		labels = append(labels, label)
	}

	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("training data contains no usable records (%d skipped)", skipped)
	}

	return rows, labels, nil
}

func parseRecord(record []string, index map[string]int) (*domain.FeatureRow, int, error) {
	get := func(col string) string {
		return strings.TrimSpace(record[index[col]])
	}
	getFloat := func(col string) (float64, error) {
		return strconv.ParseFloat(get(col), 64)
	}
	getInt := func(col string) (int, error) {
		return strconv.Atoi(get(col))
	}

	donorAge, err := getFloat("donor_age")
	if err != nil {
		return nil, 0, err
	}
	recipientAge, err := getFloat("recipient_age")
	if err != nil {
		return nil, 0, err
	}
	donorComorbidities, err := getInt("donor_comorbidities")
	if err != nil {
		return nil, 0, err
	}
	recipientComorbidities, err := getInt("recipient_comorbidities")
	if err != nil {
		return nil, 0, err
	}
	cit, err := getFloat("cold_ischemia_time_hours")
	if err != nil {
		return nil, 0, err
	}
	distance, err := getFloat("distance_km")
	if err != nil {
		return nil, 0, err
	}
	label, err := getInt("graft_survival_1_year")
	if err != nil || (label != 0 && label != 1) {
		return nil, 0, fmt.Errorf("invalid graft_survival_1_year: %q", get("graft_survival_1_year"))
	}

	donorHLA := []string{get("donor_hla_a1"), get("donor_hla_a2"), get("donor_hla_b1"), get("donor_hla_b2")}
	recipientHLA := []string{get("recipient_hla_a1"), get("recipient_hla_a2"), get("recipient_hla_b1"), get("recipient_hla_b2")}

	row := &domain.FeatureRow{
		DonorAge:               donorAge,
		OrganType:              domain.OrganType(get("organ_type")),
		DonorComorbidities:     donorComorbidities,
		ColdIschemiaTimeHours:  cit,
		DistanceKm:             distance,
		DonorBloodType:         domain.BloodType(get("donor_blood_type")),
		RecipientBloodType:     domain.BloodType(get("recipient_blood_type")),
		HLAMismatchesCount:     matching.HLAMismatchCount(donorHLA, recipientHLA),
		RecipientAge:           recipientAge,
		RecipientComorbidities: recipientComorbidities,
	}
	return row, label, nil
}
