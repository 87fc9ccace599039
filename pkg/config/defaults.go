// Package config provides centralized default values for FlexiBuilder
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		file, err := os.Open(".env")
		if err != nil {
			return
		}
		defer file.Close()

		log.Println("Loading configuration overrides from .env file...")
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.Trim(strings.TrimSpace(parts[1]), `"`)

			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, redact(key, val), defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseBool(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%t (default: %t)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	raw := getEnvString(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// secrets never reach the override log in clear text
func redact(key, val string) string {
	upper := strings.ToUpper(key)
	if strings.Contains(upper, "KEY") || strings.Contains(upper, "SECRET") ||
		strings.Contains(upper, "HASH") || strings.Contains(upper, "TOKEN") || strings.Contains(upper, "DSN") {
		return "****"
	}
	return val
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration
	ShutdownTimeout    time.Duration
	CORSOrigins        []string
	PublicURL          string

	// Editor Configuration
	HistoryCapacity   int
	MaxSessions       int
	GenerationTimeout time.Duration
	DefaultDocumentID string
	SessionIdleTTL    time.Duration
	CleanupInterval   time.Duration
	CleanupVerbose    bool

	// Storage Configuration
	DBDriver                 string
	DBDSN                    string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	SlowQueryThreshold       time.Duration
	AutosaveSchedule         string

	// Generative Layout
	AAIAPIKey     string
	AAIFinalModel string
	AAIMaxTokens  int

	// Auth
	JWTSecret          string
	EditorPasswordHash string
	TokenTTL           time.Duration

	// Publish notifications
	ResendAPIKey       string
	PublishFromEmail   string
	PublishFromName    string
	PublishNotifyEmail string

	// Media
	MediaDir        string
	MediaURLPrefix  string
	MediaMaxWidth   int
	ThumbnailWidth  int
	WebPQuality     int
	MaxUploadSizeMB int

	// Preview
	PreviewPingInterval time.Duration
	PreviewWriteTimeout time.Duration

	// Logging
	LogDir        string
	LogJSON       bool
	LogToFile     bool
	LogLevel      string
	SlowOperation time.Duration
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 45*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)
	ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second)
	PublicURL = getEnvString("PUBLIC_URL", "")
	CORSOrigins = getEnvList("CORS_ORIGINS", []string{"http://localhost:4321", "http://localhost:8080"})

	// Editor Configuration
	HistoryCapacity = getEnvInt("HISTORY_CAPACITY", 20)
	MaxSessions = getEnvInt("MAX_SESSIONS", 64)
	GenerationTimeout = getEnvDuration("GENERATION_TIMEOUT", 30*time.Second)
	DefaultDocumentID = getEnvString("DEFAULT_DOCUMENT_ID", "home")
	SessionIdleTTL = getEnvDuration("SESSION_IDLE_TTL", 2*time.Hour)
	CleanupInterval = getEnvDuration("SESSION_CLEANUP_INTERVAL", 5*time.Minute)
	CleanupVerbose = getEnvBool("SESSION_CLEANUP_VERBOSE", false)

	// Storage Configuration
	DBDriver = getEnvString("DB_DRIVER", "sqlite3")
	DBDSN = getEnvString("DB_DSN", "file:flexibuilder.db?_foreign_keys=on")
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	SlowQueryThreshold = getEnvDuration("SLOW_QUERY_THRESHOLD", 100*time.Millisecond)
	AutosaveSchedule = getEnvString("AUTOSAVE_SCHEDULE", "@every 30s")

	// Generative Layout
	AAIAPIKey = getEnvString("AAI_API_KEY", "")
	AAIFinalModel = getEnvString("AAI_FINAL_MODEL", "anthropic/claude-3-5-sonnet")
	AAIMaxTokens = getEnvInt("AAI_MAX_TOKENS", 2000)

	// Auth
	JWTSecret = getEnvString("JWT_SECRET", "")
	EditorPasswordHash = getEnvString("EDITOR_PASSWORD_HASH", "")
	TokenTTL = getEnvDuration("TOKEN_TTL", 24*time.Hour)

	// Publish notifications
	ResendAPIKey = getEnvString("RESEND_API_KEY", "")
	PublishFromEmail = getEnvString("PUBLISH_FROM_EMAIL", "builder@example.com")
	PublishFromName = getEnvString("PUBLISH_FROM_NAME", "FlexiBuilder")
	PublishNotifyEmail = getEnvString("PUBLISH_NOTIFY_EMAIL", "")

	// Media
	MediaDir = getEnvString("MEDIA_DIR", "media")
	MediaURLPrefix = getEnvString("MEDIA_URL_PREFIX", "/media")
	MediaMaxWidth = getEnvInt("MEDIA_MAX_WIDTH", 1920)
	ThumbnailWidth = getEnvInt("THUMBNAIL_WIDTH", 480)
	WebPQuality = getEnvInt("WEBP_QUALITY", 85)
	MaxUploadSizeMB = getEnvInt("MAX_UPLOAD_SIZE_MB", 10)

	// Preview
	PreviewPingInterval = getEnvDuration("PREVIEW_PING_INTERVAL", 30*time.Second)
	PreviewWriteTimeout = getEnvDuration("PREVIEW_WRITE_TIMEOUT", 10*time.Second)

	// Logging
	LogDir = getEnvString("LOG_DIR", "logs")
	LogJSON = getEnvBool("LOG_JSON", true)
	LogToFile = getEnvBool("LOG_TO_FILE", true)
	LogLevel = getEnvString("LOG_LEVEL", "info")
	SlowOperation = getEnvDuration("SLOW_OPERATION_THRESHOLD", 250*time.Millisecond)
}
