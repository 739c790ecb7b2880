package domain

import (
	"errors"
	"fmt"
)

// Error codes for different failure scenarios. Each maps to a containment
// scope: validation and computation errors stay per-candidate, configuration
// errors reject the whole request, model unavailability degrades to defaults.
const (
	ErrValidation    = "VALIDATION_ERROR"
	ErrModelMissing  = "MODEL_UNAVAILABLE"
	ErrComputation   = "COMPUTATION_ERROR"
	ErrConfiguration = "CONFIGURATION_ERROR"
	ErrStorage       = "STORAGE_ERROR"
	ErrInternal      = "INTERNAL_SERVER_ERROR"
)

// ErrModelUnavailable signals that the viability model or its preprocessor
// is not loaded. Ranking degrades to default viability rather than failing.
var ErrModelUnavailable = errors.New("viability model unavailable")

// ValidationError represents per-candidate input validation errors. The
// candidate is reported with score 0.0 and this message; the batch continues.
type ValidationError struct {
	Fields  []string `json:"fields"`
	Message string   `json:"message"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message
}

// NewMissingFieldsError builds a ValidationError for absent required fields.
func NewMissingFieldsError(fields []string) *ValidationError {
	return &ValidationError{
		Fields:  fields,
		Message: fmt.Sprintf("missing required fields: %v", fields),
	}
}

// ConfigurationError represents an entirely malformed top-level request or
// invalid service configuration. It rejects the whole request; there is no
// partial output.
type ConfigurationError struct {
	Message string `json:"message"`
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	return e.Message
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// ComputationError represents a per-candidate factor computation failure
// (distance, feature adaptation). The affected factor is pushed to its
// worst-case value and the batch continues.
type ComputationError struct {
	Stage string `json:"stage"`
	Cause error  `json:"-"`
}

// Error implements the error interface
func (e *ComputationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s computation failed: %v", e.Stage, e.Cause)
	}
	return fmt.Sprintf("%s computation failed", e.Stage)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *ComputationError) Unwrap() error {
	return e.Cause
}
