package utils

import (
	"context"
	"io"
	"log/slog"

	"github.com/gin-gonic/gin"
)

// SessionIDKey is the gin context key holding the caller's quiz session id.
const SessionIDKey = "session_id"

// Logger is the logging surface shared by handlers and the HTTP middleware.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// LogRequest picks the level from the status code.
	LogRequest(method, path string, statusCode int, duration string, args ...any)
	LogError(err error, msg string, args ...any)
}

// SlogLogger implements Logger on top of slog.
type SlogLogger struct {
	logger *slog.Logger
}

func NewSlogLogger(logger *slog.Logger) Logger {
	return &SlogLogger{logger: logger}
}

// NewLogger writes JSON at info level in production and text at debug level otherwise.
func NewLogger(w io.Writer, production bool) Logger {
	if production {
		return NewSlogLogger(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})))
	}
	return NewSlogLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

func (l *SlogLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

func (l *SlogLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

func (l *SlogLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

func (l *SlogLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

func (l *SlogLogger) LogRequest(method, path string, statusCode int, duration string, args ...any) {
	level := slog.LevelInfo
	if statusCode >= 400 {
		level = slog.LevelWarn
	}
	if statusCode >= 500 {
		level = slog.LevelError
	}

	baseArgs := []any{
		"method", method,
		"path", path,
		"status_code", statusCode,
		"duration", duration,
	}
	l.logger.Log(context.Background(), level, "HTTP Request", append(baseArgs, args...)...)
}

func (l *SlogLogger) LogError(err error, msg string, args ...any) {
	l.logger.Error(msg, append([]any{"error", err}, args...)...)
}

// LoggerMiddleware logs one line per request, tagged with the quiz session the
// session middleware resolved. Requests to skipPaths are not logged.
func LoggerMiddleware(logger Logger, skipPaths ...string) gin.HandlerFunc {
	return gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: skipPaths,
		Output:    io.Discard,
		Formatter: func(param gin.LogFormatterParams) string {
			sessionID, _ := param.Keys[SessionIDKey].(string)
			args := []any{
				"client_ip", param.ClientIP,
				"user_agent", param.Request.UserAgent(),
				"request_id", param.Request.Header.Get("X-Request-ID"),
			}
			if sessionID != "" {
				args = append(args, SessionIDKey, sessionID)
			}
			if param.ErrorMessage != "" {
				args = append(args, "error", param.ErrorMessage)
			}
			logger.LogRequest(param.Method, param.Path, param.StatusCode, param.Latency.String(), args...)
			return ""
		},
	})
}

// ToSlogLogger unwraps a SlogLogger for packages that take *slog.Logger directly.
func ToSlogLogger(logger Logger) *slog.Logger {
	if l, ok := logger.(*SlogLogger); ok {
		return l.logger
	}
	return slog.Default()
}
