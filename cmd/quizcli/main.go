package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/SAP-F-2025/essay-quiz-service/internal/grading"
	"github.com/SAP-F-2025/essay-quiz-service/internal/services"
	"github.com/SAP-F-2025/essay-quiz-service/internal/tui"
	"github.com/SAP-F-2025/essay-quiz-service/internal/validator"
	tea "github.com/charmbracelet/bubbletea"
)

// main launches the terminal quiz.
func main() {
	os.Exit(run())
}

func run() int {
	proxyURL := flag.String("proxy", "http://localhost:8080", "base URL of the grading proxy")
	bankPath := flag.String("bank", "questions.json", "question bank file (json, yaml, csv or xlsx)")
	count := flag.Int("count", 0, "preselected number of questions")
	timeout := flag.Duration("timeout", services.DefaultGradingTimeout, "grading deadline per answer")
	noColor := flag.Bool("no-color", false, "disable colors")
	flag.Parse()

	// The UI owns the terminal, so library logs are discarded.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	v := validator.New()

	bank, _, err := services.NewImportExportService(logger, v).LoadQuestionBank(context.Background(), *bankPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "question bank error: %v\n", err)
		return 1
	}

	evaluator := grading.NewRemoteEvaluator(*proxyURL, &http.Client{Timeout: *timeout + 5*time.Second}, v)
	opts := []services.MachineOption{
		services.WithGradingTimeout(*timeout),
		services.WithLogger(logger),
	}
	if *count > 0 {
		opts = append(opts, services.WithDefaultQuestionCount(*count))
	}
	machine := services.NewQuizMachine(nil, bank, evaluator, opts...)

	program := tea.NewProgram(tui.NewModel(machine, tui.Options{NoColor: *noColor}), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "ui error: %v\n", err)
		return 1
	}
	return 0
}
