package tui

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	apperrors "github.com/SAP-F-2025/essay-quiz-service/internal/errors"
	"github.com/SAP-F-2025/essay-quiz-service/internal/models"
	"github.com/SAP-F-2025/essay-quiz-service/internal/services"
	"github.com/SAP-F-2025/essay-quiz-service/internal/views"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEvaluator struct {
	eval  *models.Evaluation
	err   error
	calls int
	last  models.EvaluateRequest
}

func (s *stubEvaluator) Evaluate(ctx context.Context, req *models.EvaluateRequest) (*models.Evaluation, error) {
	s.calls++
	s.last = *req
	return s.eval, s.err
}

func newTestModel(t *testing.T, bankSize int, evaluator services.Evaluator) (Model, *services.QuizMachine) {
	t.Helper()
	bank := make([]models.Question, 0, bankSize)
	for i := 1; i <= bankSize; i++ {
		bank = append(bank, models.Question{ID: i, Question: fmt.Sprintf("question %d", i), ModelAnswer: fmt.Sprintf("model %d", i)})
	}
	machine := services.NewQuizMachine(nil, bank, evaluator, services.WithRand(rand.New(rand.NewPCG(7, 7))))
	return NewModel(machine, Options{NoColor: true}), machine
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

// gradeResult runs the grading command returned by a submission.
func gradeResult(t *testing.T, cmd tea.Cmd) gradedMsg {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	if g, ok := msg.(gradedMsg); ok {
		return g
	}
	batch, ok := msg.(tea.BatchMsg)
	require.True(t, ok, "expected a batch, got %T", msg)
	for _, c := range batch {
		if c == nil {
			continue
		}
		if g, ok := c().(gradedMsg); ok {
			return g
		}
	}
	t.Fatal("submission did not schedule a grading call")
	return gradedMsg{}
}

func TestSetupAdjustsCount(t *testing.T) {
	m, machine := newTestModel(t, 5, &stubEvaluator{})
	assert.Contains(t, m.View(), views.StartText)
	assert.Equal(t, models.DefaultQuestionCount, machine.State().QuestionCount)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 4, machine.State().QuestionCount)

	for i := 0; i < 10; i++ {
		m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	}
	assert.Equal(t, 1, machine.State().QuestionCount)

	for i := 0; i < 10; i++ {
		m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	}
	assert.Equal(t, 5, machine.State().QuestionCount)
}

func TestSubmitGradesInCommand(t *testing.T) {
	evaluator := &stubEvaluator{eval: &models.Evaluation{Status: models.GradeCorrect, Feedback: "well done", Score: 10}}
	m, machine := newTestModel(t, 3, evaluator)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, models.PhaseQuiz, machine.State().Phase)
	assert.True(t, m.input.Focused())
	assert.Contains(t, m.View(), "سؤال 1 من 3")

	m = typeText(t, m, "my answer")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})

	require.True(t, machine.State().Loading)
	assert.Zero(t, evaluator.calls, "grading must not run inside Update")
	assert.Contains(t, m.View(), views.LoadingText)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 0, machine.State().CurrentIndex, "keys are ignored while grading")

	next, _ := m.Update(gradeResult(t, cmd))
	m = next.(Model)

	state := machine.State()
	assert.False(t, state.Loading)
	rec, ok := state.CurrentAnswer()
	require.True(t, ok)
	assert.Equal(t, "my answer", rec.UserAnswer)
	assert.Equal(t, "my answer", evaluator.last.UserAnswer)
	assert.Contains(t, m.View(), "Score: 10/10")
	assert.Contains(t, m.View(), "well done")
	assert.False(t, m.input.Focused())
}

func TestGradingFailureKeepsAnswer(t *testing.T) {
	evaluator := &stubEvaluator{err: apperrors.NewUpstreamError(502, "model overloaded", nil)}
	m, machine := newTestModel(t, 3, evaluator)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = typeText(t, m, "draft")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	next, _ := m.Update(gradeResult(t, cmd))
	m = next.(Model)

	state := machine.State()
	assert.Empty(t, state.Answers)
	assert.Equal(t, services.FailurePrefix+"model overloaded", state.ErrorMessage)
	assert.Contains(t, m.View(), "model overloaded")
	assert.True(t, m.input.Focused())
	assert.Equal(t, "draft", m.input.Value())
}

func TestEmptyAnswerIsRejected(t *testing.T) {
	evaluator := &stubEvaluator{}
	m, machine := newTestModel(t, 3, evaluator)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.Nil(t, cmd)
	assert.False(t, machine.State().Loading)
	assert.True(t, strings.Contains(m.View(), services.ErrEmptyAnswer.Error()))
}

func TestWalkToResultsAndRestart(t *testing.T) {
	evaluator := &stubEvaluator{eval: &models.Evaluation{Status: models.GradePartial, Feedback: "missing detail", Score: 5}}
	m, machine := newTestModel(t, 2, evaluator)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Len(t, machine.State().SelectedQuestions, 2)

	m = typeText(t, m, "first")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	next, _ := m.Update(gradeResult(t, cmd))
	m = next.(Model)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	assert.Equal(t, 1, machine.State().CurrentIndex)
	assert.Empty(t, m.input.Value(), "the answer box is cleared for a new question")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, models.PhaseResults, machine.State().Phase)
	view := m.View()
	assert.Contains(t, view, views.ResultsTitleText)
	assert.Contains(t, view, "%50")
	assert.Contains(t, view, "missing detail")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	assert.Equal(t, models.PhaseSetup, machine.State().Phase)
	assert.Contains(t, m.View(), views.StartText)
}

func TestStaleCompletionIsIgnored(t *testing.T) {
	evaluator := &stubEvaluator{eval: &models.Evaluation{Status: models.GradeCorrect, Score: 10}}
	m, machine := newTestModel(t, 2, evaluator)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = typeText(t, m, "answer")
	_, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	g := gradeResult(t, cmd)

	other := &services.PendingSubmission{QuestionID: g.pending.QuestionID + 100}
	next, _ := m.Update(gradedMsg{pending: other, eval: g.eval})
	m = next.(Model)

	assert.True(t, machine.State().Loading)
	assert.Equal(t, services.ErrStaleSubmission.Error(), m.notice)
}
