package tui

import (
	"fmt"
	"strings"

	"github.com/SAP-F-2025/essay-quiz-service/internal/views"
	"github.com/charmbracelet/lipgloss"
)

var (
	accentColor  = lipgloss.Color("63")
	mutedColor   = lipgloss.Color("242")
	errorColor   = lipgloss.Color("196")
	correctColor = lipgloss.Color("42")
	partialColor = lipgloss.Color("214")
)

// classColors maps the status classes of the view tree to terminal colors.
var classColors = map[string]lipgloss.Color{
	"correct":            correctColor,
	"partial":            partialColor,
	"incorrect":          errorColor,
	"feedback-correct":   correctColor,
	"feedback-partial":   partialColor,
	"feedback-incorrect": errorColor,
	"status-correct":     correctColor,
	"status-partial":     partialColor,
	"status-incorrect":   errorColor,
	"high":               correctColor,
	"low":                errorColor,
}

// render draws page for the terminal.
func render(page views.Page, m Model) string {
	header := lipgloss.JoinVertical(lipgloss.Left,
		stylize(page.Title, m.noColor, lipgloss.NewStyle().Bold(true).Foreground(accentColor)),
		stylize(page.Subtitle, m.noColor, lipgloss.NewStyle().Foreground(mutedColor)),
	)

	var body, keys string
	switch {
	case page.Setup != nil:
		body = renderSetup(page.Setup, m)
		keys = "←/→ count • enter start • q quit"
	case page.Quiz != nil:
		body = renderQuiz(page.Quiz, m)
		if page.Quiz.Feedback != nil {
			keys = fmt.Sprintf("n %s • r %s • s %s • q quit", page.Quiz.Next.Label, page.Quiz.Reset.Label, page.Quiz.Skip.Label)
		} else {
			keys = fmt.Sprintf("ctrl+s %s • tab %s • esc quit", page.Quiz.Submit.Label, page.Quiz.Skip.Label)
		}
	case page.Results != nil:
		body = renderResults(page.Results, m)
		keys = fmt.Sprintf("r %s • q quit", page.Results.Restart.Label)
	}

	parts := []string{header, "", body}
	if m.notice != "" {
		parts = append(parts, stylize(m.notice, m.noColor, lipgloss.NewStyle().Foreground(errorColor)))
	}
	parts = append(parts, "", stylize(keys, m.noColor, lipgloss.NewStyle().Foreground(mutedColor)))
	return lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n"
}

func renderSetup(v *views.SetupView, m Model) string {
	lines := []string{
		v.Info,
		fmt.Sprintf("%s  ◀ %d ▶  (%d-%d)", v.CountLabel, v.Count, v.MinCount, v.MaxCount),
	}
	if v.Error != "" {
		lines = append(lines, errorBox(v.Error, m))
	}
	lines = append(lines, button(v.Start, m))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderQuiz(v *views.QuizView, m Model) string {
	lines := []string{
		stylize(fmt.Sprintf("%s  %s", v.Counter, progressBar(v.Progress, 20)), m.noColor, lipgloss.NewStyle().Foreground(mutedColor)),
		box(v.Question, m, accentColor),
	}

	switch {
	case v.Feedback != nil:
		lines = append(lines, box(v.Answer, m, classColors[v.AnswerClass]))
	case v.Loading:
		lines = append(lines, box(m.input.Value(), m, mutedColor))
	default:
		lines = append(lines, m.input.View())
	}

	if v.Error != "" {
		lines = append(lines, errorBox(v.Error, m))
	}

	if v.Submit != nil {
		label := button(*v.Submit, m)
		if v.Loading {
			label = m.spinner.View() + " " + label
		}
		lines = append(lines, label)
	}

	if f := v.Feedback; f != nil {
		feedback := []string{
			stylize(f.StatusLabel, m.noColor, lipgloss.NewStyle().Bold(true).Foreground(classColors[f.StatusClass])),
			f.Score,
			f.Feedback,
		}
		if f.ModelAnswer != "" {
			feedback = append(feedback, "", f.ModelAnswerLabel, f.ModelAnswer)
		}
		lines = append(lines, box(strings.Join(feedback, "\n"), m, classColors[f.StatusClass]))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderResults(v *views.ResultsView, m Model) string {
	lines := []string{
		stylize(v.Title, m.noColor, lipgloss.NewStyle().Bold(true)),
		stylize(v.Percentage, m.noColor, lipgloss.NewStyle().Bold(true).Foreground(classColors[v.PercentageClass])),
		v.Total,
		"",
		v.ReviewHeading,
	}
	for _, card := range v.Reviews {
		text := strings.Join([]string{
			fmt.Sprintf("%s  [%s %s]", card.Question, card.Badge, card.Score),
			card.UserAnswerLabel + " " + card.UserAnswer,
			card.FeedbackLabel + " " + card.Feedback,
		}, "\n")
		lines = append(lines, box(text, m, classColors[card.BadgeClass]))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func button(b views.Button, m Model) string {
	style := lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	if b.Disabled {
		style = lipgloss.NewStyle().Foreground(mutedColor)
	}
	return stylize("[ "+b.Label+" ]", m.noColor, style)
}

func errorBox(text string, m Model) string {
	return box(text, m, errorColor)
}

// box frames text with a rounded border in the given color.
func box(text string, m Model, color lipgloss.Color) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Width(max(m.width-4, 20))
	if !m.noColor && color != "" {
		style = style.BorderForeground(color)
	}
	return style.Render(text)
}

func progressBar(percent, width int) string {
	filled := percent * width / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + fmt.Sprintf(" %d%%", percent)
}

// stylize applies optional color styling.
func stylize(text string, noColor bool, style lipgloss.Style) string {
	if noColor {
		return text
	}
	return style.Render(text)
}
