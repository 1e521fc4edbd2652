package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/essay-quiz-service/internal/cache"
	"github.com/SAP-F-2025/essay-quiz-service/internal/config"
	"github.com/SAP-F-2025/essay-quiz-service/internal/grading"
	"github.com/SAP-F-2025/essay-quiz-service/internal/handlers"
	"github.com/SAP-F-2025/essay-quiz-service/internal/repositories"
	"github.com/SAP-F-2025/essay-quiz-service/internal/repositories/cachestore"
	"github.com/SAP-F-2025/essay-quiz-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/essay-quiz-service/internal/services"
	"github.com/SAP-F-2025/essay-quiz-service/internal/utils"
	"github.com/SAP-F-2025/essay-quiz-service/internal/validator"
	"github.com/SAP-F-2025/essay-quiz-service/pkg"
	"github.com/gin-gonic/gin"
)

// main launches the quiz server.
func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return 1
	}

	logger := utils.NewLogger(os.Stdout, cfg.IsProduction())
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	slogger := utils.ToSlogLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	v := validator.New()
	importExport := services.NewImportExportService(slogger, v)

	bank, summary, err := importExport.LoadQuestionBank(ctx, cfg.QuestionBankPath)
	if err != nil {
		logger.LogError(err, "Failed to load question bank", "path", cfg.QuestionBankPath)
		return 1
	}
	logger.Info("Question bank loaded", "path", cfg.QuestionBankPath, "questions", summary.SuccessCount, "rejected", summary.ErrorCount)

	if cfg.Grading.APIKey == "" {
		logger.Warn("GEMINI_API_KEY is not set; grading requests will fail until it is configured")
	}
	provider := grading.NewGeminiProvider(cfg.Grading.Model, cfg.Grading.APIKey, cfg.Grading.BaseURL, &http.Client{
		Timeout: cfg.Grading.Timeout + 5*time.Second,
	})
	gradingService := services.NewGradingService(provider, v, services.GradingServiceConfig{
		FeedbackLanguage: cfg.Grading.FeedbackLanguage,
		Timeout:          cfg.Grading.Timeout,
	}, slogger)

	sessionStore, closeStore, err := newSessionStore(ctx, cfg, slogger)
	if err != nil {
		logger.LogError(err, "Failed to create session store", "store", cfg.SessionStore)
		return 1
	}
	defer closeStore()

	var results repositories.ResultRepository
	if cfg.DatabaseURL != "" {
		db, err := pkg.InitDatabase(cfg)
		if err != nil {
			logger.LogError(err, "Failed to initialize database")
			return 1
		}
		results = postgres.NewResultPostgreSQL(db)
		logger.Info("Quiz results will be persisted")
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.LogError(err, "Failed to create event publisher")
		return 1
	}
	defer publisher.Close()

	sessions := services.NewQuizSessionService(
		sessionStore,
		results,
		publisher,
		services.NewLocalEvaluator(gradingService),
		bank,
		services.QuizSessionConfig{
			DefaultQuestionCount: cfg.DefaultQuestionCount,
			GradingTimeout:       cfg.Grading.Timeout,
		},
		slogger,
	)
	serviceManager := services.NewServiceManager(gradingService, sessions, importExport, cfg.Grading.APIKey != "")

	router := gin.New()
	router.Use(gin.Recovery(), utils.LoggerMiddleware(logger, "/health"))
	handlers.NewHandlerManager(serviceManager, logger).SetupRoutes(router, handlers.RouterOptions{
		SessionMaxAge: int(cfg.SessionTTL.Seconds()),
		SecureCookies: cfg.IsProduction(),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err := <-errCh:
		logger.LogError(err, "Server failed")
		exitCode = 1
	}

	// In-flight grading calls may take up to the grading timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Grading.Timeout+5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.LogError(err, "Graceful shutdown failed")
		exitCode = 1
	}
	return exitCode
}

// newSessionStore picks the session backend. The returned close func is never nil.
func newSessionStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories.SessionRepository, func(), error) {
	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		client, err := pkg.NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using Redis session store")
		return cachestore.NewSessionCache(cache.NewRedisCache(client, logger), cfg.SessionTTL), func() { client.Close() }, nil
	case config.SessionStoreMemory, "":
		logger.Info("Using in-memory session store")
		return cachestore.NewSessionCache(cache.NewMemoryCache(), cfg.SessionTTL), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown SESSION_STORE %q", cfg.SessionStore)
	}
}
