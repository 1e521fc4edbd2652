package grading

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/SAP-F-2025/essay-quiz-service/internal/errors"
	"github.com/SAP-F-2025/essay-quiz-service/internal/models"
	"github.com/SAP-F-2025/essay-quiz-service/internal/validator"
)

// DecodeEvaluation parses a proxy response body into an Evaluation and checks it against
// the output contract. Anything else is an UpstreamFormatError.
func DecodeEvaluation(raw []byte, v *validator.Validator) (*models.Evaluation, error) {
	var eval models.Evaluation
	if err := json.Unmarshal(raw, &eval); err != nil {
		return nil, apperrors.NewUpstreamFormatError(string(raw), fmt.Errorf("decode evaluation: %w", err))
	}
	if err := v.Validate(&eval); err != nil {
		return nil, apperrors.NewUpstreamFormatError(string(raw), err)
	}
	return &eval, nil
}
