package models

type GradeStatus string

const (
	GradeCorrect   GradeStatus = "correct"
	GradePartial   GradeStatus = "partial"
	GradeIncorrect GradeStatus = "incorrect"
)

// Valid reports whether s is one of the statuses the grader may return.
func (s GradeStatus) Valid() bool {
	switch s {
	case GradeCorrect, GradePartial, GradeIncorrect:
		return true
	default:
		return false
	}
}

// AnswerRecord is the stored outcome of grading one question's submitted answer.
type AnswerRecord struct {
	QuestionID  int         `json:"questionId"`
	Question    string      `json:"question"`
	ModelAnswer string      `json:"modelAnswer"`
	UserAnswer  string      `json:"userAnswer"`
	Status      GradeStatus `json:"status"`
	Feedback    string      `json:"feedback"`
	Score       int         `json:"score"`
}
