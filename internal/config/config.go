package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/RaikyD/wc-tracking-service/internal/domain"
)

const (
	BackendSheets   = "sheets"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

type Config struct {
	HTTP_PORT         string
	LOG_FORMAT        string
	WEBHOOK_SECRET    string
	TRACKING_BASE_URL string
	ACCEPTED_STATUSES []string
	DEFAULT_SERVICE   string
	TIMELINE_FILE     string
	CORS_ORIGINS      []string

	STORE_BACKEND           string
	STORE_COLUMNS           domain.Columns
	GOOGLE_CREDENTIALS_FILE string
	SHEET_ID                string
	SHEET_RANGE             string
	DB_STRING               string
	REDIS_ADDR              string
	REDIS_KEY               string

	KAFKA_BROKERS      string
	KAFKA_TOPIC        string
	KAFKA_INGEST_TOPIC string
	KAFKA_GROUP_ID     string
}

// LoadConfig reads .env when present, then the environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cols, err := domain.ParseColumns(getEnv("STORE_COLUMNS", joinColumns(domain.DefaultColumns)))
	if err != nil {
		return nil, fmt.Errorf("STORE_COLUMNS: %w", err)
	}

	port := getEnv("HTTP_PORT", "8080")
	cfg := &Config{
		HTTP_PORT:         port,
		LOG_FORMAT:        os.Getenv("LOG_FORMAT"),
		WEBHOOK_SECRET:    os.Getenv("WEBHOOK_SECRET"),
		TRACKING_BASE_URL: getEnv("TRACKING_BASE_URL", "http://localhost:"+port+"/track"),
		ACCEPTED_STATUSES: splitList(getEnv("ACCEPTED_STATUSES", "processing,completed,on-hold,paid")),
		DEFAULT_SERVICE:   getEnv("DEFAULT_SERVICE", "APC Priority DDU"),
		TIMELINE_FILE:     os.Getenv("TIMELINE_FILE"),
		CORS_ORIGINS:      splitList(getEnv("CORS_ORIGINS", "*")),

		STORE_BACKEND:           strings.ToLower(getEnv("STORE_BACKEND", BackendSheets)),
		STORE_COLUMNS:           cols,
		GOOGLE_CREDENTIALS_FILE: getEnv("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
		SHEET_ID:                os.Getenv("SHEET_ID"),
		SHEET_RANGE:             getEnv("SHEET_RANGE", "Sheet1"),
		DB_STRING:               os.Getenv("DB_STRING"),
		REDIS_ADDR:              getEnv("REDIS_ADDR", "localhost:6379"),
		REDIS_KEY:               getEnv("REDIS_KEY", "tracking:records"),

		KAFKA_BROKERS:      os.Getenv("KAFKA_BROKERS"),
		KAFKA_TOPIC:        os.Getenv("KAFKA_TOPIC"),
		KAFKA_INGEST_TOPIC: os.Getenv("KAFKA_INGEST_TOPIC"),
		KAFKA_GROUP_ID:     getEnv("KAFKA_GROUP_ID", "tracking-webhook"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.STORE_BACKEND {
	case BackendSheets:
		if c.SHEET_ID == "" {
			return fmt.Errorf("SHEET_ID is required for the sheets backend")
		}
	case BackendPostgres:
		if c.DB_STRING == "" {
			return fmt.Errorf("DB_STRING is required for the postgres backend")
		}
	case BackendRedis:
		if c.REDIS_ADDR == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.STORE_BACKEND)
	}
	if len(c.ACCEPTED_STATUSES) == 0 {
		return fmt.Errorf("ACCEPTED_STATUSES is empty")
	}
	if (c.KAFKA_TOPIC != "" || c.KAFKA_INGEST_TOPIC != "") && c.KAFKA_BROKERS == "" {
		return fmt.Errorf("KAFKA_BROKERS is required when a kafka topic is set")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func joinColumns(cols domain.Columns) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = string(c)
	}
	return strings.Join(parts, ",")
}
