package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	apperrors "github.com/SAP-F-2025/essay-quiz-service/internal/errors"
	"github.com/SAP-F-2025/essay-quiz-service/internal/grading"
	"github.com/SAP-F-2025/essay-quiz-service/internal/models"
	"github.com/SAP-F-2025/essay-quiz-service/internal/validator"
)

// Evaluator grades one answer. The quiz machine depends on this, so it can grade through
// the in-process proxy logic or through a remote proxy.
type Evaluator interface {
	Evaluate(ctx context.Context, req *models.EvaluateRequest) (*models.Evaluation, error)
}

// GradingService is the stateless grading proxy: validate, instruct the model, clean its
// answer and hand the JSON back untouched.
type GradingService struct {
	generator        grading.TextGenerator
	validator        *validator.Validator
	feedbackLanguage string
	timeout          time.Duration
	logger           *ServiceLogger
}

type GradingServiceConfig struct {
	FeedbackLanguage string
	Timeout          time.Duration
}

func NewGradingService(generator grading.TextGenerator, v *validator.Validator, cfg GradingServiceConfig, logger *slog.Logger) *GradingService {
	if v == nil {
		v = validator.New()
	}
	if cfg.FeedbackLanguage == "" {
		cfg.FeedbackLanguage = grading.DefaultFeedbackLanguage
	}
	return &GradingService{
		generator:        generator,
		validator:        v,
		feedbackLanguage: cfg.FeedbackLanguage,
		timeout:          cfg.Timeout,
		logger:           NewServiceLogger(logger, LogConfig{Service: "grading", Component: "proxy"}),
	}
}

// Evaluate returns the grader's JSON verdict with markdown fences removed. The upstream is
// never called for an invalid request.
func (s *GradingService) Evaluate(ctx context.Context, req *models.EvaluateRequest) (result json.RawMessage, err error) {
	op := s.logger.WithOperation(ctx, "evaluate", "")
	defer func() { op.LogResult(err) }()

	if req == nil {
		req = &models.EvaluateRequest{}
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, err := s.generator.Generate(ctx, grading.BuildPrompt(req, s.feedbackLanguage))
	if err != nil {
		return nil, err
	}

	cleaned := grading.StripCodeFences(text)
	if !json.Valid([]byte(cleaned)) {
		return nil, apperrors.NewUpstreamFormatError(cleaned, errors.New("response is not valid JSON"))
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(cleaned)); err != nil {
		return nil, apperrors.NewUpstreamFormatError(cleaned, err)
	}
	return buf.Bytes(), nil
}

// LocalEvaluator runs the grading proxy logic in process and decodes its verdict.
type LocalEvaluator struct {
	service   *GradingService
	validator *validator.Validator
}

func NewLocalEvaluator(service *GradingService) *LocalEvaluator {
	return &LocalEvaluator{service: service, validator: service.validator}
}

func (e *LocalEvaluator) Evaluate(ctx context.Context, req *models.EvaluateRequest) (*models.Evaluation, error) {
	raw, err := e.service.Evaluate(ctx, req)
	if err != nil {
		return nil, err
	}
	return grading.DecodeEvaluation(raw, e.validator)
}

var (
	_ Evaluator = (*LocalEvaluator)(nil)
	_ Evaluator = (*grading.RemoteEvaluator)(nil)
)
