package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int
	JWTSecret          string

	// Record store
	DataBackend  string
	DataDir      string
	SQLiteDBPath string
	PostgresURL  string
	SeedDemoData bool

	// Reference dataset for summary answers; empty uses the built-in one.
	SummaryFile string

	// Assistant
	AdvisorURL         string
	AdvisorToken       string
	AdvisorTimeout     time.Duration
	AdvisorAllowPublic bool
	ResponseDelay      time.Duration
	SessionTTL         time.Duration

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleChatSheetName      string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string
	// ExportOnStart makes the worker write every stored expense once before consuming.
	ExportOnStart bool

	LogLevel string
}

// Backends accepted by DATA_BACKEND.
var validBackends = []string{"memory", "sqlite", "postgres"}

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8081"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		JWTSecret:          getEnv("JWT_SECRET", ""),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		DataDir:      getEnv("DATA_DIR", "data"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/fintech.db"),
		PostgresURL:  getEnv("POSTGRES_URL", ""),
		SeedDemoData: getEnvBool("SEED_DEMO_DATA", true),

		SummaryFile: getEnv("SUMMARY_FILE", ""),

		AdvisorURL:         getEnv("ADVISOR_URL", ""),
		AdvisorToken:       getEnv("ADVISOR_TOKEN", ""),
		AdvisorTimeout:     getEnvDuration("ADVISOR_TIMEOUT", 10*time.Second),
		AdvisorAllowPublic: getEnvBool("ADVISOR_ALLOW_PUBLIC", true),
		ResponseDelay:      getEnvDuration("RESPONSE_DELAY", 500*time.Millisecond),
		SessionTTL:         getEnvDuration("SESSION_TTL", 30*time.Minute),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fintech"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "fintech_export"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Expenses"),
		GoogleChatSheetName:      getEnv("GOOGLE_CHAT_SHEET_NAME", "Chat"),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", getEnv("GOOGLE_APPLICATION_CREDENTIALS", "")),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		ExportOnStart:            getEnvBool("EXPORT_ON_START", false),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	case "postgres":
		if c.PostgresURL == "" {
			errors = append(errors, "POSTGRES_URL is required when using postgres backend")
		} else if u, err := url.Parse(c.PostgresURL); err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
			errors = append(errors, fmt.Sprintf("invalid POSTGRES_URL '%s': must be a postgres:// URL", c.PostgresURL))
		}
	}

	if c.SummaryFile != "" {
		if _, err := os.Stat(c.SummaryFile); err != nil {
			errors = append(errors, fmt.Sprintf("summary file not readable: %s", c.SummaryFile))
		}
	}

	if c.AdvisorURL != "" {
		if u, err := url.Parse(c.AdvisorURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errors = append(errors, fmt.Sprintf("invalid ADVISOR_URL '%s': must be an http(s) URL", c.AdvisorURL))
		}
	}
	if c.AdvisorTimeout <= 0 || c.AdvisorTimeout > 2*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid advisor timeout %v: must be between 0 and 2 minutes", c.AdvisorTimeout))
	}
	if c.ResponseDelay < 0 || c.ResponseDelay > 10*time.Second {
		errors = append(errors, fmt.Sprintf("invalid response delay %v: must be between 0 and 10 seconds", c.ResponseDelay))
	}
	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleServiceAccountFile != "" {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// ValidateWorker checks the settings the export worker cannot run without.
func (c *Config) ValidateWorker() error {
	var errors []string
	if c.AMQPURL == "" {
		errors = append(errors, "AMQP_URL is required for the export worker")
	}
	if c.GoogleSpreadsheetID != "" && c.GoogleServiceAccountFile == "" && c.GoogleServiceAccountJSON == "" {
		errors = append(errors, "GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON is required when GOOGLE_SPREADSHEET_ID is set")
	}
	if len(errors) > 0 {
		return fmt.Errorf("worker configuration invalid:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
