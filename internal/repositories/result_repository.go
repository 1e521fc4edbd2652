package repositories

import (
	"context"

	"github.com/SAP-F-2025/essay-quiz-service/internal/models"
)

// ResultRepository stores snapshots of finished quizzes
type ResultRepository interface {
	Create(ctx context.Context, result *models.QuizResult) error
	GetByID(ctx context.Context, id uint) (*models.QuizResult, error)
	List(ctx context.Context, filters ResultFilters) ([]*models.QuizResult, int64, error)
	GetStats(ctx context.Context) (*ResultStats, error)
}
