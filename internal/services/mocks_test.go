package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/SAP-F-2025/essay-quiz-service/internal/models"
	"github.com/SAP-F-2025/essay-quiz-service/internal/repositories"
	"github.com/stretchr/testify/mock"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testBank(n int) []models.Question {
	bank := make([]models.Question, 0, n)
	for i := 1; i <= n; i++ {
		bank = append(bank, models.Question{
			ID:          i,
			Question:    fmt.Sprintf("question %d", i),
			ModelAnswer: fmt.Sprintf("model answer %d", i),
		})
	}
	return bank
}

// evaluatorFunc adapts a function to the Evaluator interface
type evaluatorFunc func(ctx context.Context, req *models.EvaluateRequest) (*models.Evaluation, error)

func (f evaluatorFunc) Evaluate(ctx context.Context, req *models.EvaluateRequest) (*models.Evaluation, error) {
	return f(ctx, req)
}

func fixedEvaluator(status models.GradeStatus, score int) Evaluator {
	return evaluatorFunc(func(ctx context.Context, req *models.EvaluateRequest) (*models.Evaluation, error) {
		return &models.Evaluation{Status: status, Feedback: "feedback for " + req.UserAnswer, Score: score}, nil
	})
}

// stubGenerator records prompts and returns a canned answer
type stubGenerator struct {
	text    string
	err     error
	prompts []string
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.text, g.err
}

// MockResultRepository is a mock implementation of ResultRepository
type MockResultRepository struct {
	mock.Mock
}

func (m *MockResultRepository) Create(ctx context.Context, result *models.QuizResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockResultRepository) GetByID(ctx context.Context, id uint) (*models.QuizResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuizResult), args.Error(1)
}

func (m *MockResultRepository) List(ctx context.Context, filters repositories.ResultFilters) ([]*models.QuizResult, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.QuizResult), args.Get(1).(int64), args.Error(2)
}

func (m *MockResultRepository) GetStats(ctx context.Context) (*repositories.ResultStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(*repositories.ResultStats), args.Error(1)
}
