package services

import (
	"errors"

	apperrors "github.com/SAP-F-2025/essay-quiz-service/internal/errors"
)

// ===== QUIZ ERRORS =====

var (
	// State machine errors
	ErrInvalidPhase         = errors.New("operation not allowed in current quiz phase")
	ErrAlreadyAnswered      = errors.New("question already answered")
	ErrEmptyAnswer          = errors.New("answer cannot be empty")
	ErrSubmissionInFlight   = errors.New("an answer is already being graded")
	ErrInvalidQuestionCount = errors.New("question count must be at least 1")
	ErrEmptyQuestionBank    = errors.New("question bank is empty")

	// Session errors
	ErrSessionNotFound = errors.New("quiz session not found")
	ErrStaleSubmission = errors.New("quiz state changed while the answer was being graded")
)

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// ===== ERROR HELPERS =====

// IsInvalidPhase checks if the operation was rejected because of the current phase
func IsInvalidPhase(err error) bool {
	return errors.Is(err, ErrInvalidPhase)
}

// IsConflict checks if the request conflicts with the state it acted on
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyAnswered) ||
		errors.Is(err, ErrSubmissionInFlight) ||
		errors.Is(err, ErrStaleSubmission)
}

// IsBadInput checks if the caller supplied an unusable value
func IsBadInput(err error) bool {
	return errors.Is(err, ErrEmptyAnswer) ||
		errors.Is(err, ErrInvalidQuestionCount)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	return apperrors.IsValidation(err)
}

// IsUpstream checks if the grading backend failed, including malformed answers
func IsUpstream(err error) bool {
	return apperrors.IsUpstream(err) || apperrors.IsUpstreamFormat(err)
}

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}
