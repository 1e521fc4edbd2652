package repositories

import (
	"context"

	"github.com/SAP-F-2025/essay-quiz-service/internal/models"
)

// SessionRepository keeps one QuizState per browser session
type SessionRepository interface {
	// Get returns ErrNotFound for unknown or expired sessions
	Get(ctx context.Context, sessionID string) (*models.QuizState, error)
	Save(ctx context.Context, sessionID string, state *models.QuizState) error
	Delete(ctx context.Context, sessionID string) error
}
