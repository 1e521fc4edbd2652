package models

import (
	"encoding/json"
	"math"
)

// MaxScore is the highest score the grader awards a single answer.
const MaxScore = 10

// EvaluateRequest is the body accepted by the grading proxy.
type EvaluateRequest struct {
	Question    string `json:"question" validate:"required"`
	ModelAnswer string `json:"modelAnswer" validate:"required"`
	UserAnswer  string `json:"userAnswer" validate:"required"`
}

// Evaluation is the grader's verdict as returned by the proxy.
type Evaluation struct {
	Status   GradeStatus `json:"status" validate:"required,grade_status"`
	Feedback string      `json:"feedback"`
	Score    int         `json:"score" validate:"min=0,max=10"`
}

// UnmarshalJSON accepts fractional scores from the model and rounds them half away
// from zero.
func (e *Evaluation) UnmarshalJSON(data []byte) error {
	var raw struct {
		Status   GradeStatus `json:"status"`
		Feedback string      `json:"feedback"`
		Score    float64     `json:"score"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Status = raw.Status
	e.Feedback = raw.Feedback
	e.Score = int(math.Round(raw.Score))
	return nil
}

// EvaluateErrorResponse is the error body of the grading proxy.
type EvaluateErrorResponse struct {
	Error string `json:"error"`
}
