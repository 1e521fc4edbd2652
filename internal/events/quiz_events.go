package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the kinds of quiz lifecycle events
type EventType string

const (
	EventQuizStarted   EventType = "quiz.started"
	EventAnswerGraded  EventType = "answer.graded"
	EventGradingFailed EventType = "answer.grading_failed"
	EventAnswerReset   EventType = "answer.reset"
	EventQuizCompleted EventType = "quiz.completed"
	EventQuizRestarted EventType = "quiz.restarted"
)

const (
	eventSource  = "essay-quiz-service"
	eventVersion = "1.0"
)

// QuizEvent is the envelope for every published event
type QuizEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	SessionID string                 `json:"session_id"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewQuizEvent stamps a new event envelope
func NewQuizEvent(eventType EventType, sessionID string, data interface{}) *QuizEvent {
	return &QuizEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

// Event payloads

type QuizStartedEvent struct {
	QuestionIDs []int `json:"question_ids"`
}

type AnswerGradedEvent struct {
	QuestionID int    `json:"question_id"`
	Status     string `json:"status"`
	Score      int    `json:"score"`
}

type GradingFailedEvent struct {
	QuestionID int    `json:"question_id"`
	Reason     string `json:"reason"`
}

type AnswerResetEvent struct {
	QuestionID int `json:"question_id"`
}

type QuizCompletedEvent struct {
	QuestionCount int `json:"question_count"`
	Answered      int `json:"answered"`
	TotalScore    int `json:"total_score"`
	MaxScore      int `json:"max_score"`
	Percentage    int `json:"percentage"`
}
