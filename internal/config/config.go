package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type Config struct {
	Port        string
	Environment string

	Grading GradingConfig

	QuestionBankPath     string
	DefaultQuestionCount int

	SessionStore string
	RedisURL     string
	SessionTTL   time.Duration

	// DatabaseURL is optional; finished quizzes are only persisted when it is set.
	DatabaseURL string

	Events EventConfig
}

// GradingConfig holds the upstream grading API settings. APIKey may be empty: the proxy
// then answers with a configuration error instead of refusing to start.
type GradingConfig struct {
	APIKey           string
	Model            string
	BaseURL          string
	FeedbackLanguage string
	Timeout          time.Duration
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", EnvDevelopment),
		Grading: GradingConfig{
			APIKey:           strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
			Model:            getEnv("GEMINI_MODEL", "gemini-2.0-flash-exp"),
			BaseURL:          getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			FeedbackLanguage: getEnv("FEEDBACK_LANGUAGE", "Arabic"),
			Timeout:          getEnvDuration("GRADING_TIMEOUT", 30*time.Second),
		},
		QuestionBankPath:     getEnv("QUESTION_BANK_PATH", "questions.json"),
		DefaultQuestionCount: getEnvInt("DEFAULT_QUESTION_COUNT", 3),
		SessionStore:         getEnv("SESSION_STORE", SessionStoreMemory),
		RedisURL:             getEnv("REDIS_URL", "redis://localhost:6379"),
		SessionTTL:           getEnvDuration("SESSION_TTL", 24*time.Hour),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		Events: EventConfig{
			Enabled:      getEnvBool("EVENTS_ENABLED", false),
			Publisher:    getEnv("EVENTS_PUBLISHER", "gochannel"),
			KafkaBrokers: getEnv("KAFKA_BROKERS", "localhost:9092"),
			Topic:        getEnv("QUIZ_EVENTS_TOPIC", "quiz-events"),
		},
	}, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
