package repositories

import (
	"errors"
	"time"
)

// ErrNotFound is returned by repositories when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ===== SHARED FILTER STRUCTS =====

type ResultFilters struct {
	SessionID string     `json:"session_id"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortBy    string     `json:"sort_by"`    // "completed_at", "percentage"
	SortOrder string     `json:"sort_order"` // "asc", "desc"
}

// ===== SHARED STATISTICS STRUCTS =====

type ResultStats struct {
	TotalQuizzes      int     `json:"total_quizzes"`
	AveragePercentage float64 `json:"average_percentage"`
	PassRate          float64 `json:"pass_rate"`
}
