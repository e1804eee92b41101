package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	HTTPPort  string `env:"HTTP_PORT" envDefault:"8080" validate:"required,numeric"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json text"`

	// Backend Config - внешний сервис безопасности шахт
	IncidentsURL   string        `env:"INCIDENTS_URL" validate:"required,url"`
	AlertsURL      string        `env:"ALERTS_URL" validate:"required,url"`
	QueryURL       string        `env:"QUERY_URL" envDefault:"http://localhost:8000/query" validate:"required,url"`
	ReportURL      string        `env:"REPORT_URL" envDefault:"http://localhost:8000/audit_report_pdf" validate:"required,url"`
	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"60s" validate:"gt=0"`

	// Redis Config (опционально)
	RedisAddr   string        `env:"REDIS_ADDR"`
	RedisPass   string        `env:"REDIS_PASSWORD"`
	RedisDB     int           `env:"REDIS_DB" envDefault:"0" validate:"gte=0"`
	CacheTTL    time.Duration `env:"CACHE_TTL" envDefault:"30s"`
	ArtifactTTL time.Duration `env:"ARTIFACT_TTL" envDefault:"1h" validate:"gt=0"`

	// Postgres Config (опционально, журнал чата)
	DatabaseURL   string `env:"DATABASE_URL"`
	MigrationsDir string `env:"MIGRATIONS_DIR" envDefault:"migrations"`

	// Chat Config
	ChatHistoryLimit       int           `env:"CHAT_HISTORY_LIMIT" envDefault:"200" validate:"gte=2"`
	ChatSessionIdleTimeout time.Duration `env:"CHAT_SESSION_IDLE_TIMEOUT" envDefault:"30m" validate:"gt=0"`

	// Dashboard Config
	RecentIncidentsLimit int    `env:"RECENT_INCIDENTS_LIMIT" envDefault:"8" validate:"gte=1"`
	UpdatesFeedURL       string `env:"UPDATES_FEED_URL" envDefault:"https://www.mining.com/feed/" validate:"omitempty,url"`
	UpdatesLimit         int    `env:"UPDATES_LIMIT" envDefault:"5" validate:"gte=1"`

	// Webhook Config
	WebhookURL        string        `env:"WEBHOOK_URL" validate:"omitempty,url"`
	WebhookSecret     string        `env:"WEBHOOK_SECRET"`
	WebhookTimeout    time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`
	WebhookMaxRetries int           `env:"WEBHOOK_MAX_RETRIES" envDefault:"3" validate:"gte=1"`
	WebhookBaseDelay  time.Duration `env:"WEBHOOK_BASE_DELAY" envDefault:"1s"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		HTTPPort:               getEnv("HTTP_PORT", "8080"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		LogFormat:              getEnv("LOG_FORMAT", "json"),
		IncidentsURL:           os.Getenv("INCIDENTS_URL"),
		AlertsURL:              os.Getenv("ALERTS_URL"),
		QueryURL:               getEnv("QUERY_URL", "http://localhost:8000/query"),
		ReportURL:              getEnv("REPORT_URL", "http://localhost:8000/audit_report_pdf"),
		BackendTimeout:         getEnvAsDuration("BACKEND_TIMEOUT", 60*time.Second),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		RedisPass:              os.Getenv("REDIS_PASSWORD"),
		RedisDB:                getEnvAsInt("REDIS_DB", 0),
		CacheTTL:               getEnvAsDuration("CACHE_TTL", 30*time.Second),
		ArtifactTTL:            getEnvAsDuration("ARTIFACT_TTL", time.Hour),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		MigrationsDir:          getEnv("MIGRATIONS_DIR", "migrations"),
		ChatHistoryLimit:       getEnvAsInt("CHAT_HISTORY_LIMIT", 200),
		ChatSessionIdleTimeout: getEnvAsDuration("CHAT_SESSION_IDLE_TIMEOUT", 30*time.Minute),
		RecentIncidentsLimit:   getEnvAsInt("RECENT_INCIDENTS_LIMIT", 8),
		UpdatesFeedURL:         getEnv("UPDATES_FEED_URL", "https://www.mining.com/feed/"),
		UpdatesLimit:           getEnvAsInt("UPDATES_LIMIT", 5),
		WebhookURL:             os.Getenv("WEBHOOK_URL"),
		WebhookSecret:          os.Getenv("WEBHOOK_SECRET"),
		WebhookTimeout:         getEnvAsDuration("WEBHOOK_TIMEOUT", 5*time.Second),
		WebhookMaxRetries:      getEnvAsInt("WEBHOOK_MAX_RETRIES", 3),
		WebhookBaseDelay:       getEnvAsDuration("WEBHOOK_BASE_DELAY", time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет обязательные поля и диапазоны значений
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// RedisEnabled сообщает, задан ли адрес Redis
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// TranscriptsEnabled сообщает, включено ли сохранение журнала чата в Postgres
func (c *Config) TranscriptsEnabled() bool {
	return c.DatabaseURL != ""
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}
