package matching

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/organ-match-server/internal/domain"
)

type stubEstimator struct {
	prob      float64
	err       error
	available bool
	calls     int
}

func (s *stubEstimator) PredictSurvival(_ context.Context, _ *domain.FeatureRow) (float64, error) {
	s.calls++
	return s.prob, s.err
}

func (s *stubEstimator) MaxColdSurvivalHours(_ domain.OrganType, _ float64, _ int) float64 {
	return 24
}

func (s *stubEstimator) Available() bool { return s.available }

type stubDistance struct {
	km  float64
	err error
}

func (s *stubDistance) DistanceKm(_, _, _, _ float64) (float64, error) {
	return s.km, s.err
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func strPtr(v string) *string { return &v }

func testOrgan() *domain.Organ {
	return &domain.Organ{
		OrganType:          domain.Kidney,
		DonorAge:           floatPtr(40),
		DonorBloodType:     domain.ONeg,
		DonorComorbidities: 0,
		DonorHLAA1:         "A1",
		DonorHLAA2:         "A2",
		DonorHLAB1:         "B7",
		DonorHLAB2:         "B8",
		DonorLocationLat:   floatPtr(40.7),
		DonorLocationLon:   floatPtr(-74.0),
	}
}

func testRecipient(id string) domain.RecipientCandidate {
	return domain.RecipientCandidate{
		RecipientID:          id,
		RecipientAge:         floatPtr(30),
		RecipientBloodType:   domain.OPos,
		RecipientHLAA1:       strPtr("A1"),
		RecipientHLAA2:       strPtr("A2"),
		RecipientHLAB1:       strPtr("B7"),
		RecipientHLAB2:       strPtr("B8"),
		RecipientLocationLat: floatPtr(40.7),
		RecipientLocationLon: floatPtr(-74.0),
	}
}

func TestEngine_Score(t *testing.T) {
	engine := NewEngine(testLogger(), &stubEstimator{available: true}, &stubDistance{km: 0})

	t.Run("blood incompatibility gates to zero", func(t *testing.T) {
		organ := testOrgan()
		organ.DonorBloodType = domain.BNeg
		recipient := testRecipient("r1")
		recipient.RecipientBloodType = domain.OPos

		score := engine.Score(organ, &recipient, 0.99, 2.0, 24.0)
		assert.Equal(t, 0.0, score)
	})

	t.Run("cold ischemia infeasibility gates to zero", func(t *testing.T) {
		organ := testOrgan()
		recipient := testRecipient("r1")

		score := engine.Score(organ, &recipient, 0.99, 25.0, 24.0)
		assert.Equal(t, 0.0, score)
	})

	t.Run("weighted composite for a strong match", func(t *testing.T) {
		organ := testOrgan()
		recipient := testRecipient("r1")
		recipient.UrgencyScore = floatPtr(0.9)

		// hla 1.0, donor risk factor 0.904, recipient risk factor 0.946,
		// distance 1.0, viability 0.8, urgency 0.9
		score := engine.Score(organ, &recipient, 0.8, 10.0, 24.0)
		assert.InDelta(t, 0.9302, score, 1e-6)
	})

	t.Run("score stays in unit interval", func(t *testing.T) {
		organ := testOrgan()
		recipient := testRecipient("r1")
		recipient.UrgencyScore = floatPtr(1.0)

		score := engine.Score(organ, &recipient, 1.0, 1.0, 24.0)
		assert.LessOrEqual(t, score, 1.0)
		assert.GreaterOrEqual(t, score, 0.0)
	})
}

func TestEngine_RankCandidates_RequestValidation(t *testing.T) {
	engine := NewEngine(testLogger(), &stubEstimator{available: true}, &stubDistance{km: 0})

	tests := []struct {
		name string
		req  *domain.MatchRequest
	}{
		{name: "nil request"},
		{
			name: "missing organ",
			req:  &domain.MatchRequest{Recipients: []domain.RecipientCandidate{}},
		},
		{
			name: "missing recipients",
			req:  &domain.MatchRequest{Organ: testOrgan()},
		},
		{
			name: "organ with missing fields",
			req: &domain.MatchRequest{
				Organ:      &domain.Organ{OrganType: domain.Kidney},
				Recipients: []domain.RecipientCandidate{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := engine.RankCandidates(context.Background(), tt.req)
			require.Error(t, err)
			assert.Nil(t, results)

			var cfgErr *domain.ConfigurationError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestEngine_RankCandidates_Ordering(t *testing.T) {
	estimator := &stubEstimator{prob: 0.8, available: true}
	engine := NewEngine(testLogger(), estimator, &stubDistance{km: 50})

	organ := testOrgan()
	organ.DonorBloodType = domain.BPos

	strong := testRecipient("R001")
	strong.RecipientBloodType = domain.BPos
	strong.UrgencyScore = floatPtr(0.9)

	weak := testRecipient("R002")
	weak.RecipientBloodType = domain.ABPos
	weak.RecipientAge = floatPtr(70)
	weak.RecipientComorbidities = 4
	weak.RecipientHLAA1 = strPtr("A3")
	weak.RecipientHLAA2 = strPtr("A11")
	weak.RecipientHLAB1 = strPtr("B27")
	weak.RecipientHLAB2 = strPtr("B44")

	// B+ donor cannot give to O-.
	incompatible := testRecipient("R003")
	incompatible.RecipientBloodType = domain.ONeg

	req := &domain.MatchRequest{
		Organ:      organ,
		Recipients: []domain.RecipientCandidate{weak, strong, incompatible},
		Logistics: map[string]domain.LogisticsHint{
			"R001": {EstimatedColdIschemiaHours: floatPtr(8)},
			"R002": {EstimatedColdIschemiaHours: floatPtr(8)},
			"R003": {EstimatedColdIschemiaHours: floatPtr(8)},
		},
	}

	results, err := engine.RankCandidates(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "R001", results[0].RecipientID, "well-matched urgent candidate ranks first")
	assert.Equal(t, "R002", results[1].RecipientID)
	assert.Equal(t, "R003", results[2].RecipientID, "blood-incompatible candidate ranks last")
	assert.Equal(t, 0.0, results[2].Score)
	assert.Greater(t, results[0].Score, results[1].Score)

	require.NotNil(t, results[0].Details)
	assert.Equal(t, 0, results[0].Details.HLAMismatches)
	assert.Equal(t, 4, results[1].Details.HLAMismatches)
	assert.InDelta(t, 0.8, results[0].Details.PredictedGraftSurvivalProb, 1e-9)
	require.NotNil(t, results[0].Details.DistanceKm)
	assert.InDelta(t, 50.0, *results[0].Details.DistanceKm, 1e-9)
}

func TestEngine_RankCandidates_InvalidCandidateReported(t *testing.T) {
	engine := NewEngine(testLogger(), &stubEstimator{prob: 0.8, available: true}, &stubDistance{km: 10})

	valid := testRecipient("R001")
	missingAge := testRecipient("R002")
	missingAge.RecipientAge = nil
	missingHLA := testRecipient("R003")
	missingHLA.RecipientHLAB2 = nil

	req := &domain.MatchRequest{
		Organ:      testOrgan(),
		Recipients: []domain.RecipientCandidate{valid, missingAge, missingHLA},
		Logistics: map[string]domain.LogisticsHint{
			"R001": {EstimatedColdIschemiaHours: floatPtr(5)},
		},
	}

	results, err := engine.RankCandidates(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, results, 3, "invalid candidates are reported, never dropped")

	assert.Equal(t, "R001", results[0].RecipientID)
	assert.Greater(t, results[0].Score, 0.0)

	for _, r := range results[1:] {
		assert.Equal(t, 0.0, r.Score)
		assert.Contains(t, r.Error, "missing required fields")
		assert.Nil(t, r.Details)
	}
	assert.Contains(t, results[1].Error, "recipient_age")
	assert.Contains(t, results[2].Error, "recipient_hla_b2")
}

func TestEngine_RankCandidates_UnknownLogistics(t *testing.T) {
	estimator := &stubEstimator{prob: 0.8, available: true}
	engine := NewEngine(testLogger(), estimator, &stubDistance{km: 10})

	req := &domain.MatchRequest{
		Organ:      testOrgan(),
		Recipients: []domain.RecipientCandidate{testRecipient("R001")},
	}

	results, err := engine.RankCandidates(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// Unknown cold ischemia fails the feasibility gate and skips the model.
	assert.Equal(t, 0.0, results[0].Score)
	assert.Equal(t, 0, estimator.calls)
	require.NotNil(t, results[0].Details)
	assert.Nil(t, results[0].Details.EstimatedColdIschemiaHours)
	assert.InDelta(t, 0.5, results[0].Details.PredictedGraftSurvivalProb, 1e-9)
}

func TestEngine_RankCandidates_NegativeColdIschemiaTreatedUnknown(t *testing.T) {
	engine := NewEngine(testLogger(), &stubEstimator{prob: 0.8, available: true}, &stubDistance{km: 10})

	req := &domain.MatchRequest{
		Organ:      testOrgan(),
		Recipients: []domain.RecipientCandidate{testRecipient("R001")},
		Logistics: map[string]domain.LogisticsHint{
			"R001": {EstimatedColdIschemiaHours: floatPtr(-3)},
		},
	}

	results, err := engine.RankCandidates(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0.0, results[0].Score)
	assert.Nil(t, results[0].Details.EstimatedColdIschemiaHours)
}

func TestEngine_RankCandidates_ModelDegradation(t *testing.T) {
	t.Run("unavailable model uses default viability", func(t *testing.T) {
		engine := NewEngine(testLogger(), &stubEstimator{available: false}, &stubDistance{km: 10})

		req := &domain.MatchRequest{
			Organ:      testOrgan(),
			Recipients: []domain.RecipientCandidate{testRecipient("R001")},
			Logistics: map[string]domain.LogisticsHint{
				"R001": {EstimatedColdIschemiaHours: floatPtr(5)},
			},
		}

		results, err := engine.RankCandidates(context.Background(), req)
		require.NoError(t, err)
		assert.InDelta(t, 0.5, results[0].Details.PredictedGraftSurvivalProb, 1e-9)
		assert.Greater(t, results[0].Score, 0.0)
	})

	t.Run("nil estimator uses default viability", func(t *testing.T) {
		engine := NewEngine(testLogger(), nil, &stubDistance{km: 10})

		req := &domain.MatchRequest{
			Organ:      testOrgan(),
			Recipients: []domain.RecipientCandidate{testRecipient("R001")},
			Logistics: map[string]domain.LogisticsHint{
				"R001": {EstimatedColdIschemiaHours: floatPtr(5)},
			},
		}

		results, err := engine.RankCandidates(context.Background(), req)
		require.NoError(t, err)
		assert.InDelta(t, 0.5, results[0].Details.PredictedGraftSurvivalProb, 1e-9)
	})

	t.Run("degraded model error uses default viability", func(t *testing.T) {
		estimator := &stubEstimator{available: true, err: domain.ErrModelUnavailable}
		engine := NewEngine(testLogger(), estimator, &stubDistance{km: 10})

		req := &domain.MatchRequest{
			Organ:      testOrgan(),
			Recipients: []domain.RecipientCandidate{testRecipient("R001")},
			Logistics: map[string]domain.LogisticsHint{
				"R001": {EstimatedColdIschemiaHours: floatPtr(5)},
			},
		}

		results, err := engine.RankCandidates(context.Background(), req)
		require.NoError(t, err)
		assert.InDelta(t, 0.5, results[0].Details.PredictedGraftSurvivalProb, 1e-9)
	})

	t.Run("computation error penalizes viability to zero", func(t *testing.T) {
		estimator := &stubEstimator{available: true, err: errors.New("encoding blew up")}
		engine := NewEngine(testLogger(), estimator, &stubDistance{km: 10})

		req := &domain.MatchRequest{
			Organ:      testOrgan(),
			Recipients: []domain.RecipientCandidate{testRecipient("R001")},
			Logistics: map[string]domain.LogisticsHint{
				"R001": {EstimatedColdIschemiaHours: floatPtr(5)},
			},
		}

		results, err := engine.RankCandidates(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 0.0, results[0].Details.PredictedGraftSurvivalProb)
		assert.Greater(t, results[0].Score, 0.0, "other factors still score")
	})
}

func TestEngine_RankCandidates_UnreachableDistance(t *testing.T) {
	t.Run("missing coordinates", func(t *testing.T) {
		engine := NewEngine(testLogger(), &stubEstimator{prob: 0.8, available: true}, &stubDistance{km: 10})

		recipient := testRecipient("R001")
		recipient.RecipientLocationLat = nil
		recipient.RecipientLocationLon = nil

		req := &domain.MatchRequest{
			Organ:      testOrgan(),
			Recipients: []domain.RecipientCandidate{recipient},
			Logistics: map[string]domain.LogisticsHint{
				"R001": {EstimatedColdIschemiaHours: floatPtr(5)},
			},
		}

		results, err := engine.RankCandidates(context.Background(), req)
		require.NoError(t, err)

		// Missing recipient coordinates fail validation instead.
		assert.Contains(t, results[0].Error, "recipient_location_lat")
	})

	t.Run("distance computation failure treated unreachable", func(t *testing.T) {
		engine := NewEngine(testLogger(), &stubEstimator{prob: 0.8, available: true},
			&stubDistance{err: errors.New("bad coordinates")})

		req := &domain.MatchRequest{
			Organ:      testOrgan(),
			Recipients: []domain.RecipientCandidate{testRecipient("R001")},
			Logistics: map[string]domain.LogisticsHint{
				"R001": {EstimatedColdIschemiaHours: floatPtr(5)},
			},
		}

		results, err := engine.RankCandidates(context.Background(), req)
		require.NoError(t, err)
		assert.Nil(t, results[0].Details.DistanceKm, "unreachable distance is omitted from details")
		assert.Greater(t, results[0].Score, 0.0)
	})
}

func TestEngine_RankCandidates_GeneratedRecipientIDs(t *testing.T) {
	engine := NewEngine(testLogger(), &stubEstimator{prob: 0.8, available: true}, &stubDistance{km: 10})

	anonymous := testRecipient("")
	req := &domain.MatchRequest{
		Organ:      testOrgan(),
		Recipients: []domain.RecipientCandidate{anonymous},
	}

	results, err := engine.RankCandidates(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Regexp(t, `^recipient-[0-9a-f]{8}$`, results[0].RecipientID)
}

func TestDefaultUrgencyClamping(t *testing.T) {
	assert.Equal(t, 0.5, defaultUrgency(nil))
	assert.Equal(t, 1.0, defaultUrgency(floatPtr(3.0)))
	assert.Equal(t, 0.0, defaultUrgency(floatPtr(-1.0)))
	assert.Equal(t, 0.7, defaultUrgency(floatPtr(0.7)))
}

func TestUnreachableFeatureDistance(t *testing.T) {
	assert.False(t, math.IsInf(unreachableDistanceKm, 1))
	assert.Equal(t, 9999.0, unreachableDistanceKm)
}
