package models

import (
	"time"

	"gorm.io/datatypes"
)

// QuizResult is the persisted snapshot of a finished quiz.
type QuizResult struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	SessionID     string `json:"session_id" gorm:"not null;size:64;index"`
	QuestionCount int    `json:"question_count" gorm:"not null"`
	AnsweredCount int    `json:"answered_count" gorm:"not null"`
	TotalScore    int    `json:"total_score" gorm:"not null"`
	MaxScore      int    `json:"max_score" gorm:"not null"`
	Percentage    int    `json:"percentage" gorm:"not null;index"`

	Answers datatypes.JSON `json:"answers" gorm:"type:jsonb"` // []AnswerRecord

	CompletedAt time.Time `json:"completed_at" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`
}
