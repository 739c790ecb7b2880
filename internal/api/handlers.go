package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/organ-match-server/internal/domain"
	"github.com/organ-match-server/internal/matching"
)

// errorResponse is the uniform error payload.
type errorResponse struct {
	Error  string   `json:"error"`
	Code   string   `json:"code"`
	Fields []string `json:"fields,omitempty"`
}

// viabilityRequest carries the raw feature inputs for a standalone
// prediction. Pointer fields distinguish absent keys from zero values.
type viabilityRequest struct {
	DonorAge               *float64         `json:"donor_age"`
	OrganType              domain.OrganType `json:"organ_type"`
	DonorComorbidities     *int             `json:"donor_comorbidities"`
	ColdIschemiaTimeHours  *float64         `json:"cold_ischemia_time_hours"`
	DistanceKm             *float64         `json:"distance_km"`
	DonorBloodType         domain.BloodType `json:"donor_blood_type"`
	RecipientBloodType     domain.BloodType `json:"recipient_blood_type"`
	HLAMismatchesCount     *int             `json:"hla_mismatches_count"`
	RecipientAge           *float64         `json:"recipient_age"`
	RecipientComorbidities *int             `json:"recipient_comorbidities"`
}

func (r *viabilityRequest) missingFields() []string {
	var missing []string
	if r.DonorAge == nil {
		missing = append(missing, "donor_age")
	}
	if r.OrganType == "" {
		missing = append(missing, "organ_type")
	}
	if r.DonorComorbidities == nil {
		missing = append(missing, "donor_comorbidities")
	}
	if r.ColdIschemiaTimeHours == nil {
		missing = append(missing, "cold_ischemia_time_hours")
	}
	if r.DistanceKm == nil {
		missing = append(missing, "distance_km")
	}
	if r.DonorBloodType == "" {
		missing = append(missing, "donor_blood_type")
	}
	if r.RecipientBloodType == "" {
		missing = append(missing, "recipient_blood_type")
	}
	if r.HLAMismatchesCount == nil {
		missing = append(missing, "hla_mismatches_count")
	}
	if r.RecipientAge == nil {
		missing = append(missing, "recipient_age")
	}
	if r.RecipientComorbidities == nil {
		missing = append(missing, "recipient_comorbidities")
	}
	return missing
}

func (r *viabilityRequest) toFeatureRow() *domain.FeatureRow {
	return &domain.FeatureRow{
		DonorAge:               *r.DonorAge,
		OrganType:              r.OrganType,
		DonorComorbidities:     *r.DonorComorbidities,
		ColdIschemiaTimeHours:  *r.ColdIschemiaTimeHours,
		DistanceKm:             *r.DistanceKm,
		DonorBloodType:         r.DonorBloodType,
		RecipientBloodType:     r.RecipientBloodType,
		HLAMismatchesCount:     *r.HLAMismatchesCount,
		RecipientAge:           *r.RecipientAge,
		RecipientComorbidities: *r.RecipientComorbidities,
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	modelStatus := "unavailable"
	if s.estimator != nil && s.estimator.Available() {
		modelStatus = "loaded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"model":     modelStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleMatch ranks recipient candidates for a donor organ. Successful runs
// are persisted for the audit trail; persistence failures never fail the
// response.
func (s *Server) handleMatch(c *gin.Context) {
	var req domain.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Error: "invalid JSON payload: " + err.Error(),
			Code:  domain.ErrConfiguration,
		})
		return
	}

	results, err := s.engine.RankCandidates(c.Request.Context(), &req)
	if err != nil {
		if cfgErr, ok := err.(*domain.ConfigurationError); ok {
			c.JSON(http.StatusBadRequest, errorResponse{
				Error: cfgErr.Message,
				Code:  domain.ErrConfiguration,
			})
			return
		}
		s.logger.WithError(err).Error("Candidate ranking failed")
		c.JSON(http.StatusInternalServerError, errorResponse{
			Error: "internal server error",
			Code:  domain.ErrInternal,
		})
		return
	}

	runID := s.persistRun(c, &req, results)
	if runID != "" {
		c.Header("X-Match-ID", runID)
	}

	c.JSON(http.StatusOK, results)
}

// persistRun stores the ranking run when a store is configured. Returns the
// run ID, or empty when persistence is off or failed.
func (s *Server) persistRun(c *gin.Context, req *domain.MatchRequest, results []domain.MatchResult) string {
	if s.store == nil {
		return ""
	}
	run := &domain.MatchRun{
		ID:             uuid.NewString(),
		OrganType:      req.Organ.OrganType,
		DonorBloodType: req.Organ.DonorBloodType,
		CandidateCount: len(req.Recipients),
		Results:        results,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.SaveRun(c.Request.Context(), run); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"run_id":     run.ID,
			"organ_type": run.OrganType,
		}).Error("Failed to persist match run")
		return ""
	}
	return run.ID
}

// handleViability predicts one-year graft survival for a single feature row.
func (s *Server) handleViability(c *gin.Context) {
	var req viabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Error: "invalid JSON payload: " + err.Error(),
			Code:  domain.ErrValidation,
		})
		return
	}

	if missing := req.missingFields(); len(missing) > 0 {
		vErr := domain.NewMissingFieldsError(missing)
		c.JSON(http.StatusBadRequest, errorResponse{
			Error:  vErr.Message,
			Code:   domain.ErrValidation,
			Fields: vErr.Fields,
		})
		return
	}

	if s.estimator == nil || !s.estimator.Available() {
		c.JSON(http.StatusServiceUnavailable, errorResponse{
			Error: "viability model not loaded",
			Code:  domain.ErrModelMissing,
		})
		return
	}

	row := req.toFeatureRow()
	prob, err := s.estimator.PredictSurvival(c.Request.Context(), row)
	if err != nil {
		s.logger.WithError(err).Error("Viability prediction failed")
		c.JSON(http.StatusInternalServerError, errorResponse{
			Error: "prediction failed",
			Code:  domain.ErrComputation,
		})
		return
	}

	c.JSON(http.StatusOK, domain.ViabilityResult{
		GraftSurvivalProbability: prob,
		MaxColdSurvivalHours:     s.estimator.MaxColdSurvivalHours(row.OrganType, row.DonorAge, row.DonorComorbidities),
		InputColdIschemiaHours:   row.ColdIschemiaTimeHours,
	})
}

// handleDonorHealth assesses donor organ quality from demographics,
// lifestyle and labs.
func (s *Server) handleDonorHealth(c *gin.Context) {
	var req domain.DonorHealthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Error: "invalid JSON payload: " + err.Error(),
			Code:  domain.ErrValidation,
		})
		return
	}

	var missing []string
	if req.DonorAge == nil {
		missing = append(missing, "donor_age")
	}
	if req.OrganType == "" {
		missing = append(missing, "organ_type")
	}
	if len(missing) > 0 {
		vErr := domain.NewMissingFieldsError(missing)
		c.JSON(http.StatusBadRequest, errorResponse{
			Error:  vErr.Message,
			Code:   domain.ErrValidation,
			Fields: vErr.Fields,
		})
		return
	}

	score := matching.AssessDonorHealth(*req.DonorAge, req.OrganType, req.ComorbiditiesCount, req.LifestyleFactors, req.LabResults)
	c.JSON(http.StatusOK, domain.DonorHealthResult{DonorHealthScore: score})
}

// handleGetMatchRun retrieves a persisted ranking run by ID.
func (s *Server) handleGetMatchRun(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusNotFound, errorResponse{
			Error: "match run persistence is disabled",
			Code:  domain.ErrStorage,
		})
		return
	}

	id := c.Param("id")
	run, err := s.store.GetRun(c.Request.Context(), id)
	if err != nil {
		s.logger.WithError(err).WithField("run_id", id).Error("Failed to load match run")
		c.JSON(http.StatusInternalServerError, errorResponse{
			Error: "failed to load match run",
			Code:  domain.ErrStorage,
		})
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, errorResponse{
			Error: "match run not found",
			Code:  domain.ErrStorage,
		})
		return
	}

	c.JSON(http.StatusOK, run)
}
