package errors

import (
	"testing"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("userAnswer", "is required", "")

	if err.Field != "userAnswer" {
		t.Errorf("Expected field to be 'userAnswer', got '%s'", err.Field)
	}

	if err.Message != "is required" {
		t.Errorf("Expected message to be 'is required', got '%s'", err.Message)
	}

	expected := "validation error on field 'userAnswer': is required"
	if err.Error() != expected {
		t.Errorf("Expected error message to be '%s', got '%s'", expected, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	if errs.Error() != "validation failed" {
		t.Errorf("Expected 'validation failed' for empty errors, got '%s'", errs.Error())
	}

	errs = append(errs, *NewValidationError("question", "is required", nil))
	expected := "validation failed: question is required"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for single error, got '%s'", expected, errs.Error())
	}

	errs = append(errs, *NewValidationError("userAnswer", "is required", nil))
	expected = "validation failed: 2 field errors"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for multiple errors, got '%s'", expected, errs.Error())
	}

	expected = "Missing required fields: question, userAnswer"
	if errs.MissingFieldsMessage() != expected {
		t.Errorf("Expected '%s', got '%s'", expected, errs.MissingFieldsMessage())
	}
}

func TestNewValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("status", "must be a valid grade status", "grade_status", "great")

	if err.Rule != "grade_status" {
		t.Errorf("Expected rule to be 'grade_status', got '%s'", err.Rule)
	}

	if !IsValidation(err) {
		t.Error("Expected IsValidation to match a single validation error")
	}
}
