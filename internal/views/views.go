// Package views projects a QuizState into the page shown to the student. Rendering is a
// pure function of the state; the HTML and terminal front ends only draw the result.
package views

import (
	"fmt"
	"math"

	"github.com/SAP-F-2025/essay-quiz-service/internal/models"
)

// Form actions posted by the HTML front end.
const (
	ActionStart   = "/quiz/start"
	ActionAnswer  = "/quiz/answer"
	ActionReset   = "/quiz/reset"
	ActionSkip    = "/quiz/skip"
	ActionNext    = "/quiz/next"
	ActionRestart = "/quiz/restart"
	ActionExport  = "/quiz/results.xlsx"
)

// Page is the full view tree. Exactly one of Setup, Quiz and Results is set.
type Page struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Dir      string `json:"dir"`
	Lang     string `json:"lang"`

	Setup   *SetupView   `json:"setup,omitempty"`
	Quiz    *QuizView    `json:"quiz,omitempty"`
	Results *ResultsView `json:"results,omitempty"`
}

type Button struct {
	Label    string `json:"label"`
	Action   string `json:"action"`
	Disabled bool   `json:"disabled,omitempty"`
}

type SetupView struct {
	Info       string        `json:"info"`
	CountLabel string        `json:"countLabel"`
	Count      int           `json:"count"`
	MinCount   int           `json:"minCount"`
	MaxCount   int           `json:"maxCount"`
	Options    []CountOption `json:"options"`
	Error      string        `json:"error,omitempty"`
	Start      Button        `json:"start"`
}

type CountOption struct {
	Value    int  `json:"value"`
	Selected bool `json:"selected,omitempty"`
}

type QuizView struct {
	Counter  string `json:"counter"`
	Progress int    `json:"progress"` // percent of the quiz reached, 1..100
	Question string `json:"question"`

	Placeholder string `json:"placeholder"`
	Answer      string `json:"answer,omitempty"`
	ReadOnly    bool   `json:"readOnly"`
	// AnswerClass tags the input with the grading status once answered.
	AnswerClass string `json:"answerClass,omitempty"`

	Error   string `json:"error,omitempty"`
	Loading bool   `json:"loading"`

	Submit   *Button        `json:"submit,omitempty"`
	Feedback *FeedbackPanel `json:"feedback,omitempty"`
	Reset    *Button        `json:"reset,omitempty"`
	Skip     *Button        `json:"skip,omitempty"`
	Next     *Button        `json:"next,omitempty"`
}

type FeedbackPanel struct {
	StatusLabel string `json:"statusLabel"`
	StatusClass string `json:"statusClass"`
	Score       string `json:"score"`
	Feedback    string `json:"feedback"`
	// ModelAnswer is empty when the answer was fully correct.
	ModelAnswerLabel string `json:"modelAnswerLabel,omitempty"`
	ModelAnswer      string `json:"modelAnswer,omitempty"`
}

type ResultsView struct {
	Title           string         `json:"title"`
	Percentage      string         `json:"percentage"`
	PercentageClass string         `json:"percentageClass"` // "high" or "low"
	Total           string         `json:"total"`
	ReviewHeading   string         `json:"reviewHeading"`
	Reviews         []ReviewCard   `json:"reviews"`
	Summary         models.Summary `json:"summary"`
	Restart         Button         `json:"restart"`
	Export          Button         `json:"export"`
}

type ReviewCard struct {
	Question        string `json:"question"`
	Badge           string `json:"badge"`
	BadgeClass      string `json:"badgeClass"`
	Score           string `json:"score"`
	UserAnswerLabel string `json:"userAnswerLabel"`
	UserAnswer      string `json:"userAnswer"`
	FeedbackLabel   string `json:"feedbackLabel"`
	Feedback        string `json:"feedback"`
}

// Render builds the page for state. bankSize bounds the question count selector.
func Render(state *models.QuizState, bankSize int) Page {
	page := Page{
		Title:    TitleText,
		Subtitle: SubtitleText,
		Dir:      Direction,
		Lang:     Language,
	}

	switch state.Phase {
	case models.PhaseQuiz:
		if q, ok := state.CurrentQuestion(); ok {
			page.Quiz = renderQuiz(state, q)
			return page
		}
		// An index outside the selection cannot be answered; fall back to setup.
		page.Setup = renderSetup(state, bankSize)
	case models.PhaseResults:
		page.Results = renderResults(state)
	default:
		page.Setup = renderSetup(state, bankSize)
	}
	return page
}

func renderSetup(state *models.QuizState, bankSize int) *SetupView {
	count := state.QuestionCount
	if count > bankSize {
		count = bankSize
	}
	if count < 1 {
		count = 1
	}

	view := &SetupView{
		Info:       SetupInfoText,
		CountLabel: fmt.Sprintf(countLabelText, count),
		Count:      count,
		MinCount:   1,
		MaxCount:   bankSize,
		Error:      state.ErrorMessage,
		Start: Button{
			Label:    StartText,
			Action:   ActionStart,
			Disabled: bankSize == 0 || state.Loading,
		},
	}
	if bankSize == 0 {
		view.Info = EmptyBankText
	}
	for n := 1; n <= bankSize; n++ {
		view.Options = append(view.Options, CountOption{Value: n, Selected: n == count})
	}
	return view
}

func renderQuiz(state *models.QuizState, q models.Question) *QuizView {
	total := len(state.SelectedQuestions)
	position := state.CurrentIndex + 1

	view := &QuizView{
		Counter:     fmt.Sprintf(counterText, position, total),
		Progress:    int(math.Round(float64(position) / float64(total) * 100)),
		Question:    q.Question,
		Placeholder: PlaceholderText,
		Error:       state.ErrorMessage,
		Loading:     state.Loading,
		ReadOnly:    state.Loading,
		Skip:        &Button{Label: SkipText, Action: ActionSkip, Disabled: state.Loading},
	}

	rec, answered := state.Answers[q.ID]
	if !answered {
		label := SubmitText
		if state.Loading {
			label = LoadingText
		}
		view.Submit = &Button{Label: label, Action: ActionAnswer, Disabled: state.Loading}
		view.Answer = state.DraftAnswer
		return view
	}

	view.Answer = rec.UserAnswer
	view.ReadOnly = true
	view.AnswerClass = string(rec.Status)
	view.Feedback = renderFeedback(rec)

	nextLabel := NextText
	if state.IsLastQuestion() {
		nextLabel = ResultsText
	}
	view.Reset = &Button{Label: ResetText, Action: ActionReset}
	view.Next = &Button{Label: nextLabel, Action: ActionNext}
	return view
}

func renderFeedback(rec models.AnswerRecord) *FeedbackPanel {
	panel := &FeedbackPanel{
		StatusLabel: statusLabels[rec.Status],
		StatusClass: "feedback-" + string(rec.Status),
		Score:       fmt.Sprintf(scoreText, rec.Score),
		Feedback:    rec.Feedback,
	}
	if rec.Status != models.GradeCorrect {
		panel.ModelAnswerLabel = ModelAnswerText
		panel.ModelAnswer = rec.ModelAnswer
	}
	return panel
}

func renderResults(state *models.QuizState) *ResultsView {
	summary := state.Summary()

	class := "low"
	if summary.Passed() {
		class = "high"
	}

	view := &ResultsView{
		Title:           ResultsTitleText,
		Percentage:      fmt.Sprintf(percentageText, summary.Percentage),
		PercentageClass: class,
		Total:           fmt.Sprintf(totalText, summary.TotalScore, summary.MaxScore),
		ReviewHeading:   ReviewHeadingText,
		Summary:         summary,
		Restart:         Button{Label: RestartText, Action: ActionRestart},
		Export:          Button{Label: "Excel", Action: ActionExport, Disabled: summary.Answered == 0},
	}

	for _, rec := range state.ReviewRecords() {
		view.Reviews = append(view.Reviews, ReviewCard{
			Question:        fmt.Sprintf(reviewQuestion, rec.Question),
			Badge:           statusBadges[rec.Status],
			BadgeClass:      "status-" + string(rec.Status),
			Score:           fmt.Sprintf(reviewScoreText, rec.Score),
			UserAnswerLabel: UserAnswerText,
			UserAnswer:      rec.UserAnswer,
			FeedbackLabel:   GraderText,
			Feedback:        rec.Feedback,
		})
	}
	return view
}
