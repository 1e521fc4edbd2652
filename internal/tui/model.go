// Package tui is a terminal front end for the quiz. It drives a local QuizMachine and
// grades answers through the grading proxy, so the upstream credential stays on the
// server.
package tui

import (
	"context"
	"errors"

	"github.com/SAP-F-2025/essay-quiz-service/internal/models"
	"github.com/SAP-F-2025/essay-quiz-service/internal/services"
	"github.com/SAP-F-2025/essay-quiz-service/internal/views"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
)

// Model renders the quiz with Bubble Tea.
type Model struct {
	machine *services.QuizMachine
	input   textarea.Model
	spinner spinner.Model
	width   int
	noColor bool
	// notice reports the last rejected key action until the next key press.
	notice string
	// inputFor is the question the answer box was last cleared for.
	inputFor int
}

// Options configures the terminal UI.
type Options struct {
	NoColor bool
}

// NewModel constructs a UI over machine.
func NewModel(machine *services.QuizMachine, opts Options) Model {
	input := textarea.New()
	input.Placeholder = views.PlaceholderText
	input.ShowLineNumbers = false
	input.CharLimit = 4000
	input.SetHeight(4)

	return Model{
		machine: machine,
		input:   input,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		width:   80,
		noColor: opts.NoColor,
	}
}

// gradedMsg carries the outcome of a grading call back into the event loop.
type gradedMsg struct {
	pending *services.PendingSubmission
	eval    *models.Evaluation
	err     error
}

// Init has nothing to wait for; the setup view is static.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update applies key presses to the machine and completes grading calls.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.input.SetWidth(max(typed.Width-4, 20))
		return m, nil
	case gradedMsg:
		err := m.machine.CompleteSubmit(typed.pending, typed.eval, typed.err)
		if err != nil && !errors.Is(err, services.ErrGradingFailed) {
			m.notice = err.Error()
		}
		cmd := m.syncInput()
		return m, cmd
	case spinner.TickMsg:
		if !m.machine.State().Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(typed)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(typed)
	}

	if m.input.Focused() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	m.notice = ""

	state := m.machine.State()
	if state.Loading {
		return m, nil
	}

	var err error
	switch state.Phase {
	case models.PhaseSetup:
		switch msg.String() {
		case "left", "down", "-":
			if state.QuestionCount > 1 {
				err = m.machine.SetQuestionCount(state.QuestionCount - 1)
			}
		case "right", "up", "+":
			err = m.machine.SetQuestionCount(state.QuestionCount + 1)
		case "enter":
			err = m.machine.Start(state.QuestionCount)
		case "q", "esc":
			return m, tea.Quit
		}
	case models.PhaseQuiz:
		if _, answered := state.CurrentAnswer(); answered {
			switch msg.String() {
			case "r":
				err = m.machine.ResetCurrentQuestion()
			case "s", "tab":
				err = m.machine.Skip()
			case "n", "enter":
				err = m.machine.Next()
			case "q", "esc":
				return m, tea.Quit
			}
		} else {
			switch msg.String() {
			case "ctrl+s":
				return m.submit()
			case "tab":
				err = m.machine.Skip()
			case "esc":
				return m, tea.Quit
			default:
				var cmd tea.Cmd
				m.input, cmd = m.input.Update(msg)
				return m, cmd
			}
		}
	case models.PhaseResults:
		switch msg.String() {
		case "r", "enter":
			err = m.machine.Restart()
		case "q", "esc":
			return m, tea.Quit
		}
	}

	if err != nil {
		m.notice = err.Error()
	}
	cmd := m.syncInput()
	return m, cmd
}

// submit marks the state as loading and grades the typed answer in a command.
func (m Model) submit() (tea.Model, tea.Cmd) {
	pending, err := m.machine.BeginSubmit(m.input.Value())
	if err != nil {
		m.notice = err.Error()
		return m, nil
	}
	m.input.Blur()
	machine := m.machine
	grade := func() tea.Msg {
		eval, err := machine.Grade(context.Background(), pending)
		return gradedMsg{pending: pending, eval: eval, err: err}
	}
	return m, tea.Batch(grade, m.spinner.Tick)
}

// syncInput clears the answer box when another question is shown and keeps it focused
// while the current question can be answered.
func (m *Model) syncInput() tea.Cmd {
	state := m.machine.State()
	q, ok := state.CurrentQuestion()
	if !ok {
		m.input.Blur()
		m.input.Reset()
		m.inputFor = 0
		return nil
	}
	if q.ID != m.inputFor {
		m.input.Reset()
		m.inputFor = q.ID
	}
	if _, answered := state.Answers[q.ID]; answered || state.Loading {
		m.input.Blur()
		return nil
	}
	return m.input.Focus()
}

// View renders the page of the current state.
func (m Model) View() string {
	state := m.machine.State()
	return render(views.Render(&state, m.machine.BankSize()), m)
}
