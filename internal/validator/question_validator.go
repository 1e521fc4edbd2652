package validator

import (
	"fmt"

	"github.com/SAP-F-2025/essay-quiz-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// QuestionValidator handles question bank validation
type QuestionValidator struct {
	structValidator *validator.Validate
}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator(structValidator *validator.Validate) *QuestionValidator {
	return &QuestionValidator{structValidator: structValidator}
}

// ValidateQuestion validates a single bank entry
func (v *QuestionValidator) ValidateQuestion(question *models.Question) ValidationErrors {
	if err := v.structValidator.Struct(question); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateBank validates a whole bank: it must be non-empty and ids must be unique,
// since answers are keyed by question id.
func (v *QuestionValidator) ValidateBank(questions []models.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("question bank cannot be empty")
	}

	seen := make(map[int]int, len(questions))
	for i := range questions {
		if errs := v.ValidateQuestion(&questions[i]); len(errs) > 0 {
			return fmt.Errorf("validation failed for question %d: %w", i+1, errs)
		}
		if first, ok := seen[questions[i].ID]; ok {
			return fmt.Errorf("duplicate question id %d (entries %d and %d)", questions[i].ID, first+1, i+1)
		}
		seen[questions[i].ID] = i
	}

	return nil
}
