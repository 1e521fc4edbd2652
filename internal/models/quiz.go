package models

import "time"

type Phase string

const (
	PhaseSetup   Phase = "setup"
	PhaseQuiz    Phase = "quiz"
	PhaseResults Phase = "results"
)

// DefaultQuestionCount is the question count preselected on the setup view.
const DefaultQuestionCount = 3

// QuizState is the single source of truth for one quiz session.
type QuizState struct {
	Phase             Phase                `json:"phase"`
	QuestionCount     int                  `json:"questionCount"`
	SelectedQuestions []Question           `json:"selectedQuestions"`
	CurrentIndex      int                  `json:"currentIndex"`
	Answers           map[int]AnswerRecord `json:"answers"`
	Loading           bool                 `json:"loading"`
	ErrorMessage      string               `json:"errorMessage,omitempty"`

	// DraftAnswer keeps the last submitted text for the current question until it is
	// graded, so a failed attempt can be edited and resent.
	DraftAnswer string `json:"draftAnswer,omitempty"`

	// PendingSince marks when the in-flight grading call started; nil when Loading is false.
	PendingSince *time.Time `json:"pendingSince,omitempty"`
}

// NewQuizState returns a state in the setup phase.
func NewQuizState(questionCount int) *QuizState {
	if questionCount < 1 {
		questionCount = DefaultQuestionCount
	}
	return &QuizState{
		Phase:         PhaseSetup,
		QuestionCount: questionCount,
		Answers:       make(map[int]AnswerRecord),
	}
}

// CurrentQuestion returns the question at CurrentIndex while the quiz is running.
func (s *QuizState) CurrentQuestion() (Question, bool) {
	if s.Phase != PhaseQuiz || s.CurrentIndex < 0 || s.CurrentIndex >= len(s.SelectedQuestions) {
		return Question{}, false
	}
	return s.SelectedQuestions[s.CurrentIndex], true
}

// CurrentAnswer returns the record stored for the current question, if any.
func (s *QuizState) CurrentAnswer() (AnswerRecord, bool) {
	q, ok := s.CurrentQuestion()
	if !ok {
		return AnswerRecord{}, false
	}
	rec, ok := s.Answers[q.ID]
	return rec, ok
}

func (s *QuizState) IsLastQuestion() bool {
	return s.CurrentIndex >= len(s.SelectedQuestions)-1
}

// ReviewRecords lists the stored answers in the order the questions were asked.
func (s *QuizState) ReviewRecords() []AnswerRecord {
	records := make([]AnswerRecord, 0, len(s.Answers))
	for _, q := range s.SelectedQuestions {
		if rec, ok := s.Answers[q.ID]; ok {
			records = append(records, rec)
		}
	}
	return records
}

// Summary aggregates the scores of every answered question.
func (s *QuizState) Summary() Summary {
	return Summarize(s.ReviewRecords())
}

// Clone returns a deep copy safe to hand to observers.
func (s *QuizState) Clone() QuizState {
	c := *s
	c.SelectedQuestions = append([]Question(nil), s.SelectedQuestions...)
	c.Answers = make(map[int]AnswerRecord, len(s.Answers))
	for id, rec := range s.Answers {
		c.Answers[id] = rec
	}
	if s.PendingSince != nil {
		t := *s.PendingSince
		c.PendingSince = &t
	}
	return c
}
