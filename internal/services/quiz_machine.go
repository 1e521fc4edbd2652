package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	apperrors "github.com/SAP-F-2025/essay-quiz-service/internal/errors"
	"github.com/SAP-F-2025/essay-quiz-service/internal/models"
)

const (
	// FailurePrefix starts every grading failure banner.
	FailurePrefix = "حدث خطأ: "
	// FallbackFailureDetail is shown when the failure carries no usable message.
	FallbackFailureDetail = "فشل الاتصال بالخادم"

	// DefaultGradingTimeout bounds one grading call made by the machine.
	DefaultGradingTimeout = 30 * time.Second
	// staleLoadingGrace is added to the grading timeout before a loading flag is considered
	// abandoned.
	staleLoadingGrace = 15 * time.Second
)

// ErrGradingFailed wraps a grading failure reported by Submit. The state has already
// recorded the failure banner when it is returned.
var ErrGradingFailed = errors.New("grading failed")

// QuizMachine drives one QuizState through setup, quiz and results. It is not safe for
// concurrent use; callers serialise access per session.
type QuizMachine struct {
	state        *models.QuizState
	bank         []models.Question
	evaluator    Evaluator
	rng          *rand.Rand
	observer     func(models.QuizState)
	timeout      time.Duration
	defaultCount int
	now          func() time.Time
	logger       *slog.Logger
}

type MachineOption func(*QuizMachine)

// WithRand injects the source used to sample questions.
func WithRand(rng *rand.Rand) MachineOption {
	return func(m *QuizMachine) { m.rng = rng }
}

// WithObserver registers a callback invoked with a copy of the state after every mutation.
func WithObserver(fn func(models.QuizState)) MachineOption {
	return func(m *QuizMachine) { m.observer = fn }
}

func WithGradingTimeout(d time.Duration) MachineOption {
	return func(m *QuizMachine) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithDefaultQuestionCount sets the count restored by Restart.
func WithDefaultQuestionCount(n int) MachineOption {
	return func(m *QuizMachine) { m.defaultCount = n }
}

func WithClock(now func() time.Time) MachineOption {
	return func(m *QuizMachine) { m.now = now }
}

func WithLogger(logger *slog.Logger) MachineOption {
	return func(m *QuizMachine) { m.logger = logger }
}

// NewQuizMachine wraps state, which the machine mutates in place. A nil state starts a
// fresh quiz in the setup phase.
func NewQuizMachine(state *models.QuizState, bank []models.Question, evaluator Evaluator, opts ...MachineOption) *QuizMachine {
	m := &QuizMachine{
		state:        state,
		bank:         bank,
		evaluator:    evaluator,
		timeout:      DefaultGradingTimeout,
		defaultCount: models.DefaultQuestionCount,
		now:          time.Now,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	}
	m.defaultCount = m.clampCount(m.defaultCount)
	if m.state == nil {
		m.state = models.NewQuizState(m.defaultCount)
	}
	if m.state.Answers == nil {
		m.state.Answers = make(map[int]models.AnswerRecord)
	}
	return m
}

// State returns a copy of the current state.
func (m *QuizMachine) State() models.QuizState {
	return m.state.Clone()
}

func (m *QuizMachine) Summary() models.Summary {
	return m.state.Summary()
}

func (m *QuizMachine) BankSize() int {
	return len(m.bank)
}

// SetQuestionCount changes the count preselected on the setup view.
func (m *QuizMachine) SetQuestionCount(n int) error {
	if err := m.guardIdle(); err != nil {
		return err
	}
	if m.state.Phase != models.PhaseSetup {
		return ErrInvalidPhase
	}
	m.state.QuestionCount = m.clampCount(n)
	m.notify()
	return nil
}

// Start samples count distinct questions and enters the quiz phase. Counts above the bank
// size are clamped.
func (m *QuizMachine) Start(count int) error {
	if err := m.guardIdle(); err != nil {
		return err
	}
	if m.state.Phase != models.PhaseSetup {
		return ErrInvalidPhase
	}
	if count < 1 {
		return ErrInvalidQuestionCount
	}
	if len(m.bank) == 0 {
		return ErrEmptyQuestionBank
	}
	if count > len(m.bank) {
		count = len(m.bank)
	}

	shuffled := append([]models.Question(nil), m.bank...)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := m.rng.IntN(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	m.state.QuestionCount = count
	m.state.SelectedQuestions = shuffled[:count]
	m.state.CurrentIndex = 0
	m.state.Answers = make(map[int]models.AnswerRecord, count)
	m.state.ErrorMessage = ""
	m.state.DraftAnswer = ""
	m.state.Phase = models.PhaseQuiz
	m.notify()
	return nil
}

// PendingSubmission is an answer accepted for grading but not yet graded.
type PendingSubmission struct {
	QuestionID int
	Request    models.EvaluateRequest
}

// BeginSubmit validates the submission and marks the state as loading. The caller must
// finish with CompleteSubmit.
func (m *QuizMachine) BeginSubmit(userAnswer string) (*PendingSubmission, error) {
	if err := m.guardIdle(); err != nil {
		return nil, err
	}
	q, ok := m.state.CurrentQuestion()
	if !ok {
		return nil, ErrInvalidPhase
	}
	if _, answered := m.state.Answers[q.ID]; answered {
		return nil, ErrAlreadyAnswered
	}
	if strings.TrimSpace(userAnswer) == "" {
		return nil, ErrEmptyAnswer
	}

	now := m.now()
	m.state.Loading = true
	m.state.PendingSince = &now
	m.state.ErrorMessage = ""
	m.state.DraftAnswer = userAnswer
	m.notify()

	return &PendingSubmission{
		QuestionID: q.ID,
		Request: models.EvaluateRequest{
			Question:    q.Question,
			ModelAnswer: q.ModelAnswer,
			UserAnswer:  userAnswer,
		},
	}, nil
}

// CompleteSubmit applies the grading outcome of p. On failure no record is written, the
// failure banner is set and the answer stays in DraftAnswer. ErrStaleSubmission is
// returned when the state no longer waits for p, e.g. after a restart from another tab.
func (m *QuizMachine) CompleteSubmit(p *PendingSubmission, eval *models.Evaluation, gradeErr error) error {
	q, ok := m.state.CurrentQuestion()
	if !m.state.Loading || !ok || q.ID != p.QuestionID {
		return ErrStaleSubmission
	}

	if gradeErr == nil && eval == nil {
		gradeErr = apperrors.NewUpstreamFormatError("", errors.New("empty evaluation"))
	}
	if gradeErr != nil {
		m.state.ErrorMessage = FailureMessage(gradeErr)
		m.logger.Warn("Grading failed", "question_id", p.QuestionID, "error", gradeErr)
	} else {
		m.state.Answers[p.QuestionID] = models.AnswerRecord{
			QuestionID:  p.QuestionID,
			Question:    p.Request.Question,
			ModelAnswer: p.Request.ModelAnswer,
			UserAnswer:  p.Request.UserAnswer,
			Status:      eval.Status,
			Feedback:    eval.Feedback,
			Score:       eval.Score,
		}
		m.state.DraftAnswer = ""
	}

	m.state.Loading = false
	m.state.PendingSince = nil
	m.notify()

	if gradeErr != nil {
		return fmt.Errorf("%w: %w", ErrGradingFailed, gradeErr)
	}
	return nil
}

// Submit grades userAnswer for the current question within the machine's deadline.
func (m *QuizMachine) Submit(ctx context.Context, userAnswer string) error {
	p, err := m.BeginSubmit(userAnswer)
	if err != nil {
		return err
	}
	eval, gradeErr := m.Grade(ctx, p)
	return m.CompleteSubmit(p, eval, gradeErr)
}

// Grade calls the evaluator for p within the machine's deadline. It does not touch the
// state, so it may run outside the caller's lock or event loop.
func (m *QuizMachine) Grade(ctx context.Context, p *PendingSubmission) (*models.Evaluation, error) {
	gradeCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	req := p.Request
	eval, err := m.evaluator.Evaluate(gradeCtx, &req)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		err = apperrors.NewUpstreamError(0, "", apperrors.ErrUpstreamTimeout)
	}
	return eval, err
}

// ResetCurrentQuestion removes the current question's record so it can be answered again.
func (m *QuizMachine) ResetCurrentQuestion() error {
	if err := m.guardIdle(); err != nil {
		return err
	}
	q, ok := m.state.CurrentQuestion()
	if !ok {
		return ErrInvalidPhase
	}
	delete(m.state.Answers, q.ID)
	m.state.ErrorMessage = ""
	m.state.DraftAnswer = ""
	m.notify()
	return nil
}

// Skip advances without requiring an answer.
func (m *QuizMachine) Skip() error {
	return m.advance()
}

// Next advances to the following question, or to the results after the last one.
func (m *QuizMachine) Next() error {
	return m.advance()
}

func (m *QuizMachine) advance() error {
	if err := m.guardIdle(); err != nil {
		return err
	}
	if m.state.Phase != models.PhaseQuiz {
		return ErrInvalidPhase
	}
	if m.state.IsLastQuestion() {
		m.state.Phase = models.PhaseResults
	} else {
		m.state.CurrentIndex++
	}
	m.state.ErrorMessage = ""
	m.state.DraftAnswer = ""
	m.notify()
	return nil
}

// Restart discards the quiz and returns to setup with the default question count.
func (m *QuizMachine) Restart() error {
	if err := m.guardIdle(); err != nil {
		return err
	}
	*m.state = *models.NewQuizState(m.defaultCount)
	m.notify()
	return nil
}

// RecoverStaleLoading clears a loading flag whose grading call can no longer complete,
// for example because the process handling it died. It reports whether state changed.
func (m *QuizMachine) RecoverStaleLoading() bool {
	if !m.state.Loading {
		return false
	}
	if m.state.PendingSince != nil && m.now().Sub(*m.state.PendingSince) < m.timeout+staleLoadingGrace {
		return false
	}
	m.state.Loading = false
	m.state.PendingSince = nil
	m.state.ErrorMessage = FailurePrefix + FallbackFailureDetail
	m.notify()
	return true
}

func (m *QuizMachine) guardIdle() error {
	m.RecoverStaleLoading()
	if m.state.Loading {
		return ErrSubmissionInFlight
	}
	return nil
}

func (m *QuizMachine) clampCount(n int) int {
	if n < 1 {
		n = models.DefaultQuestionCount
	}
	if len(m.bank) > 0 && n > len(m.bank) {
		n = len(m.bank)
	}
	return n
}

func (m *QuizMachine) notify() {
	if m.observer != nil {
		m.observer(m.state.Clone())
	}
}

// FailureMessage renders the banner shown for a failed grading call.
func FailureMessage(err error) string {
	detail := FallbackFailureDetail

	var upstream *apperrors.UpstreamError
	switch {
	case errors.As(err, &upstream):
		if upstream.Message != "" {
			detail = upstream.Message
		} else if upstream.StatusCode != 0 {
			detail = upstream.Error()
		}
	case err != nil && err.Error() != "":
		detail = err.Error()
	}

	return FailurePrefix + detail
}
