package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/SAP-F-2025/essay-quiz-service/internal/events"
	"github.com/SAP-F-2025/essay-quiz-service/internal/models"
	"github.com/SAP-F-2025/essay-quiz-service/internal/repositories"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ErrResultsUnavailable is returned when no result store is configured.
var ErrResultsUnavailable = errors.New("result persistence is not configured")

type QuizSessionConfig struct {
	DefaultQuestionCount int
	GradingTimeout       time.Duration
	// NewRand seeds the sampler of each session's machine; nil uses a random seed.
	NewRand func() *rand.Rand
}

// QuizSessionService runs one QuizMachine per browser session. Each session is locked
// for the duration of a transition; the lock is released while an answer is graded and
// the persisted loading flag rejects concurrent submissions instead.
type QuizSessionService struct {
	sessions  repositories.SessionRepository
	results   repositories.ResultRepository
	publisher events.EventPublisher
	evaluator Evaluator
	bank      []models.Question
	config    QuizSessionConfig
	logger    *ServiceLogger

	locksMu sync.Mutex
	locks   map[string]*sessionLock
}

// sessionLock serialises one session. refs counts holders and waiters so the entry can
// be dropped when the last one leaves.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewQuizSessionService wires the session service. results and publisher are optional.
func NewQuizSessionService(
	sessions repositories.SessionRepository,
	results repositories.ResultRepository,
	publisher events.EventPublisher,
	evaluator Evaluator,
	bank []models.Question,
	config QuizSessionConfig,
	logger *slog.Logger,
) *QuizSessionService {
	if config.DefaultQuestionCount < 1 {
		config.DefaultQuestionCount = models.DefaultQuestionCount
	}
	if config.GradingTimeout <= 0 {
		config.GradingTimeout = DefaultGradingTimeout
	}
	return &QuizSessionService{
		sessions:  sessions,
		results:   results,
		publisher: publisher,
		evaluator: evaluator,
		bank:      bank,
		config:    config,
		logger:    NewServiceLogger(logger, LogConfig{Service: "quiz", Component: "sessions"}),
		locks:     make(map[string]*sessionLock),
	}
}

// NewSessionID returns an identifier for a new browser session.
func (s *QuizSessionService) NewSessionID() string {
	return uuid.NewString()
}

func (s *QuizSessionService) BankSize() int {
	return len(s.bank)
}

// State returns the session's state. Unknown sessions get a fresh state that is not
// stored until a transition changes it.
func (s *QuizSessionService) State(ctx context.Context, sessionID string) (*models.QuizState, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	state, fresh, err := s.load(ctx, sessionID)
	if err != nil || fresh {
		return state, err
	}
	if s.machine(state, nil).RecoverStaleLoading() {
		s.logger.Logger().WarnContext(ctx, "Cleared abandoned grading call", "session_id", sessionID)
		if err := s.sessions.Save(ctx, sessionID, state); err != nil {
			s.logger.LogOperation(ctx, "state", sessionID, 0, err)
			return nil, fmt.Errorf("save session: %w", err)
		}
	}
	return state, nil
}

func (s *QuizSessionService) SetQuestionCount(ctx context.Context, sessionID string, n int) (*models.QuizState, error) {
	return s.transition(ctx, sessionID, "set_question_count", func(m *QuizMachine) error {
		return m.SetQuestionCount(n)
	})
}

func (s *QuizSessionService) Start(ctx context.Context, sessionID string, count int) (*models.QuizState, error) {
	state, err := s.transition(ctx, sessionID, "start", func(m *QuizMachine) error {
		return m.Start(count)
	})
	if err == nil {
		ids := make([]int, 0, len(state.SelectedQuestions))
		for _, q := range state.SelectedQuestions {
			ids = append(ids, q.ID)
		}
		s.publish(ctx, events.EventQuizStarted, sessionID, events.QuizStartedEvent{QuestionIDs: ids})
	}
	return state, err
}

// Submit grades answer for the session's current question. A grading failure is
// reported as ErrGradingFailed together with the state carrying the failure banner.
func (s *QuizSessionService) Submit(ctx context.Context, sessionID, answer string) (*models.QuizState, error) {
	op := s.logger.WithOperation(ctx, "submit", sessionID)

	var pending *PendingSubmission
	state, err := s.transition(ctx, sessionID, "begin_submit", func(m *QuizMachine) error {
		var err error
		pending, err = m.BeginSubmit(answer)
		return err
	})
	if err != nil {
		return state, err
	}

	gradeCtx, cancel := context.WithTimeout(ctx, s.config.GradingTimeout)
	req := pending.Request
	eval, gradeErr := s.evaluator.Evaluate(gradeCtx, &req)
	cancel()

	// The outcome is stored even if the client went away meanwhile.
	saveCtx := context.WithoutCancel(ctx)
	state, err = s.transition(saveCtx, sessionID, "complete_submit", func(m *QuizMachine) error {
		return m.CompleteSubmit(pending, eval, gradeErr)
	})
	op.LogResult(err)

	switch {
	case err == nil:
		rec := state.Answers[pending.QuestionID]
		s.publish(saveCtx, events.EventAnswerGraded, sessionID, events.AnswerGradedEvent{
			QuestionID: pending.QuestionID,
			Status:     string(rec.Status),
			Score:      rec.Score,
		})
	case errors.Is(err, ErrGradingFailed):
		s.publish(saveCtx, events.EventGradingFailed, sessionID, events.GradingFailedEvent{
			QuestionID: pending.QuestionID,
			Reason:     gradeErr.Error(),
		})
	}
	return state, err
}

func (s *QuizSessionService) ResetCurrentQuestion(ctx context.Context, sessionID string) (*models.QuizState, error) {
	var questionID int
	state, err := s.transition(ctx, sessionID, "reset_question", func(m *QuizMachine) error {
		if q, ok := m.state.CurrentQuestion(); ok {
			questionID = q.ID
		}
		return m.ResetCurrentQuestion()
	})
	if err == nil {
		s.publish(ctx, events.EventAnswerReset, sessionID, events.AnswerResetEvent{QuestionID: questionID})
	}
	return state, err
}

func (s *QuizSessionService) Skip(ctx context.Context, sessionID string) (*models.QuizState, error) {
	return s.advance(ctx, sessionID, "skip", (*QuizMachine).Skip)
}

func (s *QuizSessionService) Next(ctx context.Context, sessionID string) (*models.QuizState, error) {
	return s.advance(ctx, sessionID, "next", (*QuizMachine).Next)
}

func (s *QuizSessionService) Restart(ctx context.Context, sessionID string) (*models.QuizState, error) {
	state, err := s.transition(ctx, sessionID, "restart", (*QuizMachine).Restart)
	if err == nil {
		s.publish(ctx, events.EventQuizRestarted, sessionID, nil)
	}
	return state, err
}

// RecentResults lists persisted results, newest first.
func (s *QuizSessionService) RecentResults(ctx context.Context, filters repositories.ResultFilters) ([]*models.QuizResult, int64, error) {
	if s.results == nil {
		return nil, 0, ErrResultsUnavailable
	}
	return s.results.List(ctx, filters)
}

func (s *QuizSessionService) ResultStats(ctx context.Context) (*repositories.ResultStats, error) {
	if s.results == nil {
		return nil, ErrResultsUnavailable
	}
	return s.results.GetStats(ctx)
}

func (s *QuizSessionService) advance(ctx context.Context, sessionID, operation string, fn func(*QuizMachine) error) (*models.QuizState, error) {
	state, err := s.transition(ctx, sessionID, operation, fn)
	if err == nil && state.Phase == models.PhaseResults {
		s.complete(ctx, sessionID, state)
	}
	return state, err
}

// complete persists the finished quiz and announces it. Neither step can fail the
// transition that led here.
func (s *QuizSessionService) complete(ctx context.Context, sessionID string, state *models.QuizState) {
	summary := state.Summary()

	if s.results != nil {
		if err := s.saveResult(ctx, sessionID, state, summary); err != nil {
			s.logger.Logger().ErrorContext(ctx, "Failed to persist quiz result", "session_id", sessionID, "error", err)
		}
	}

	s.publish(ctx, events.EventQuizCompleted, sessionID, events.QuizCompletedEvent{
		QuestionCount: len(state.SelectedQuestions),
		Answered:      summary.Answered,
		TotalScore:    summary.TotalScore,
		MaxScore:      summary.MaxScore,
		Percentage:    summary.Percentage,
	})
}

func (s *QuizSessionService) saveResult(ctx context.Context, sessionID string, state *models.QuizState, summary models.Summary) error {
	answers, err := json.Marshal(state.ReviewRecords())
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	return s.results.Create(ctx, &models.QuizResult{
		SessionID:     sessionID,
		QuestionCount: len(state.SelectedQuestions),
		AnsweredCount: summary.Answered,
		TotalScore:    summary.TotalScore,
		MaxScore:      summary.MaxScore,
		Percentage:    summary.Percentage,
		Answers:       datatypes.JSON(answers),
		CompletedAt:   time.Now().UTC(),
	})
}

// transition runs fn on the session's machine under the session lock and saves the state
// when it changed.
func (s *QuizSessionService) transition(ctx context.Context, sessionID, operation string, fn func(*QuizMachine) error) (*models.QuizState, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	state, _, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// Fresh sessions are stored only once a transition changes them.
	changed := false
	m := s.machine(state, func(models.QuizState) { changed = true })
	if m.RecoverStaleLoading() {
		s.logger.Logger().WarnContext(ctx, "Cleared abandoned grading call", "session_id", sessionID)
	}
	opErr := fn(m)

	if changed {
		if err := s.sessions.Save(ctx, sessionID, state); err != nil {
			s.logger.LogOperation(ctx, operation, sessionID, 0, err)
			return nil, fmt.Errorf("save session: %w", err)
		}
	}
	if opErr != nil && !errors.Is(opErr, ErrGradingFailed) {
		s.logger.LogOperation(ctx, operation, sessionID, 0, opErr)
	}
	return state, opErr
}

func (s *QuizSessionService) load(ctx context.Context, sessionID string) (*models.QuizState, bool, error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.NewQuizState(s.defaultCount()), true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load session: %w", err)
	}
	return state, false, nil
}

func (s *QuizSessionService) machine(state *models.QuizState, observer func(models.QuizState)) *QuizMachine {
	opts := []MachineOption{
		WithObserver(observer),
		WithGradingTimeout(s.config.GradingTimeout),
		WithDefaultQuestionCount(s.config.DefaultQuestionCount),
		WithLogger(s.logger.Logger()),
	}
	if s.config.NewRand != nil {
		opts = append(opts, WithRand(s.config.NewRand()))
	}
	return NewQuizMachine(state, s.bank, s.evaluator, opts...)
}

func (s *QuizSessionService) defaultCount() int {
	n := s.config.DefaultQuestionCount
	if len(s.bank) > 0 && n > len(s.bank) {
		n = len(s.bank)
	}
	return n
}

func (s *QuizSessionService) lock(sessionID string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		s.locks[sessionID] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, sessionID)
		}
		s.locksMu.Unlock()
	}
}

func (s *QuizSessionService) publish(ctx context.Context, eventType events.EventType, sessionID string, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewQuizEvent(eventType, sessionID, data)); err != nil {
		s.logger.Logger().WarnContext(ctx, "Failed to publish quiz event", "event_type", eventType, "error", err)
	}
}
