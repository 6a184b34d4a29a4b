package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Auth     AuthConfig
	Ai       AIConfig
	Banner   BannerConfig
	Session  SessionConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Events   EventsConfig
}

type AppConfig struct {
	Name               string
	Version            string
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	RateLimitMax       int
	RateLimitWindow    time.Duration
	OtelEnabled        bool
	OtelEndpoint       string
}

type AuthConfig struct {
	JWTSecret string
}

type AIConfig struct {
	Provider           string // "azure", "openai" or "ollama"
	APIKey             string
	Endpoint           string
	APIVersion         string
	ChatModel          string // model name, or Azure deployment
	VisionModel        string
	EmbeddingModel     string
	TranscriptionModel string
	Timeout            time.Duration
	FAQMinScore        float64
}

type BannerConfig struct {
	TokenURL string
	APIBase  string
	Username string
	Password string
	EmailKey string
	JustPath string
	Timeout  time.Duration
	Insecure bool
}

type SessionConfig struct {
	Backend  string // "memory" or "redis"
	RedisURL string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host        string
	Port        int
	Email       string
	Password    string
	SenderName  string
	MentorEmail string // escalation alerts go here; empty disables them
}

type EventsConfig struct {
	EscalationTopic string
	NatsURL         string // empty disables the external forward
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Name:               getEnv("APP_NAME", "UDLA Mentores AI"),
			Version:            getEnv("APP_VERSION", "0.0.1"),
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			RateLimitMax:       getEnvAsInt("RATE_LIMIT_MAX", 100),
			RateLimitWindow:    getEnvAsDuration("RATE_LIMIT_WINDOW", 60*time.Second),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Ai: AIConfig{
			Provider:           getEnv("LLM_PROVIDER", "azure"),
			APIKey:             getEnv("LLM_API_KEY", ""),
			Endpoint:           getEnv("LLM_ENDPOINT", ""),
			APIVersion:         getEnv("LLM_API_VERSION", ""),
			ChatModel:          getEnv("LLM_CHAT_MODEL", "gpt-4o-mini"),
			VisionModel:        getEnv("LLM_VISION_MODEL", ""),
			EmbeddingModel:     getEnv("LLM_EMBEDDING_MODEL", "text-embedding-3-small"),
			TranscriptionModel: getEnv("LLM_TRANSCRIPTION_MODEL", "gpt-4o-mini-transcribe"),
			Timeout:            getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
			FAQMinScore:        getEnvAsFloat("FAQ_MIN_SCORE", 0),
		},
		Banner: BannerConfig{
			TokenURL: getEnv("BANNER_TOKEN_URL", ""),
			APIBase:  getEnv("BANNER_API_BASE", ""),
			Username: getEnv("BANNER_USERNAME", ""),
			Password: getEnv("BANNER_PASSWORD", ""),
			EmailKey: getEnv("BANNER_EMAIL_KEY", "institutionalEmail"),
			JustPath: getEnv("BANNER_JUST_PATH", "/api/GetStudentJustification"),
			Timeout:  getEnvAsDuration("BANNER_TIMEOUT", 60*time.Second),
			Insecure: getEnvAsBool("BANNER_INSECURE", false),
		},
		Session: SessionConfig{
			Backend:  getEnv("SESSION_BACKEND", "memory"),
			RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:        getEnv("SMTP_HOST", ""),
			Port:        getEnvAsInt("SMTP_PORT", 587),
			Email:       getEnv("SMTP_EMAIL", ""),
			Password:    getEnv("SMTP_PASSWORD", ""),
			SenderName:  getEnv("SMTP_SENDER_NAME", "Mentores UDLA"),
			MentorEmail: getEnv("MENTOR_ALERT_EMAIL", ""),
		},
		Events: EventsConfig{
			EscalationTopic: getEnv("ESCALATION_TOPIC_NAME", "CASE_ESCALATED"),
			NatsURL:         getEnv("NATS_URL", ""),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Validate lists every missing setting the service cannot start without.
func (c *Config) Validate() error {
	var missing []string

	switch strings.ToLower(c.Ai.Provider) {
	case "azure":
		if c.Ai.Endpoint == "" {
			missing = append(missing, "LLM_ENDPOINT")
		}
		if c.Ai.APIKey == "" {
			missing = append(missing, "LLM_API_KEY")
		}
	case "openai", "":
		if c.Ai.APIKey == "" {
			missing = append(missing, "LLM_API_KEY")
		}
	case "ollama":
	default:
		return fmt.Errorf("config: unknown LLM_PROVIDER %q", c.Ai.Provider)
	}

	if c.Auth.JWTSecret == "" && c.IsProduction() {
		missing = append(missing, "JWT_SECRET")
	}

	switch c.Session.Backend {
	case "memory":
	case "redis":
		if c.Session.RedisURL == "" {
			missing = append(missing, "REDIS_URL")
		}
	default:
		return fmt.Errorf("config: unknown SESSION_BACKEND %q", c.Session.Backend)
	}

	if len(missing) > 0 {
		return errors.New("config: missing required settings: " + strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return fallback
}

// getEnvAsBool accepts strconv booleans plus "yes"/"on".
func getEnvAsBool(key string, fallback bool) bool {
	strValue := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	switch strValue {
	case "yes", "on":
		return true
	case "no", "off":
		return false
	}
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("90s") or plain seconds ("90").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if secs, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
