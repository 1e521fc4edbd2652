// Package cachestore keeps quiz sessions in a cache.CacheService, Redis in production
// and process memory in development.
package cachestore

import (
	"context"
	"errors"
	"time"

	"github.com/SAP-F-2025/essay-quiz-service/internal/cache"
	"github.com/SAP-F-2025/essay-quiz-service/internal/models"
	"github.com/SAP-F-2025/essay-quiz-service/internal/repositories"
)

const sessionKeyPrefix = "quiz:session:"

type SessionCache struct {
	cache cache.CacheService
	ttl   time.Duration
}

// NewSessionCache stores sessions for ttl after their last change; ttl <= 0 keeps them
// until deleted.
func NewSessionCache(c cache.CacheService, ttl time.Duration) repositories.SessionRepository {
	return &SessionCache{cache: c, ttl: ttl}
}

func (s *SessionCache) Get(ctx context.Context, sessionID string) (*models.QuizState, error) {
	var state models.QuizState
	if err := s.cache.Get(ctx, sessionKey(sessionID), &state); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	if state.Answers == nil {
		state.Answers = make(map[int]models.AnswerRecord)
	}
	return &state, nil
}

func (s *SessionCache) Save(ctx context.Context, sessionID string, state *models.QuizState) error {
	return s.cache.Set(ctx, sessionKey(sessionID), state, s.ttl)
}

func (s *SessionCache) Delete(ctx context.Context, sessionID string) error {
	return s.cache.Delete(ctx, sessionKey(sessionID))
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}
