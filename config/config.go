package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Port     string
	AppEnv   string
	LogLevel string
	// Comma separated list, "*" allows any origin
	CORSAllowedOrigins []string
	SMTP               SMTPConfig
	// Contact message settings
	FromName string
	Subject  string
	// Rate Limiting Configuration (0 requests disables the limiter)
	RateLimitRequests      int
	RateLimitWindowSeconds int
	// Upper bound for one SMTP conversation (0 disables)
	SMTPTimeoutSeconds int
	// Proxies allowed to set X-Forwarded-For, empty trusts none
	TrustedProxies []string
	// Optional Redis backing for the rate limiter
	RedisURL      string
	RedisPassword string
}

// SMTPConfig holds the mail transport settings. All fields but InsecureSkipVerify are required.
type SMTPConfig struct {
	Host               string
	Port               int
	Username           string
	Password           string
	FromEmail          string
	ToEmail            string
	InsecureSkipVerify bool

	// Variables that were absent or invalid, in declaration order
	missing []string
}

var requiredSMTPVars = []string{
	"SMTP_HOST",
	"SMTP_PORT",
	"SMTP_USER",
	"SMTP_PASS",
	"SMTP_FROM_EMAIL",
	"SMTP_TO_EMAIL",
}

func LoadConfig() (*Config, error) {
	// .env is optional, production injects real environment variables
	_ = godotenv.Load()

	cfg := &Config{
		Port:                   getEnv("PORT", "3001"),
		AppEnv:                 strings.ToLower(getEnv("APP_ENV", EnvProduction)),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins:     splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		FromName:               getEnv("SMTP_FROM_NAME", "Liquidata Contact Form"),
		Subject:                getEnv("CONTACT_SUBJECT", "New Contact Form Submission - Liquidata"),
		RateLimitRequests:      getEnvInt("RATE_LIMIT_REQUESTS", 5),
		RateLimitWindowSeconds: getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		SMTPTimeoutSeconds:     getEnvInt("SMTP_TIMEOUT_SECONDS", 30),
		TrustedProxies:         splitList(getEnv("TRUSTED_PROXIES", "")),
		RedisURL:               getEnv("REDIS_URL", ""),
		RedisPassword:          getEnv("REDIS_PASSWORD", ""),
	}

	cfg.SMTP = loadSMTPConfig()

	if !cfg.SMTP.IsComplete() {
		log.Printf("WARNING: missing SMTP configuration: %s. Contact relay will be unavailable.", strings.Join(cfg.SMTP.Missing(), ", "))
	}

	return cfg, nil
}

// IsDevelopment reports whether error details may be returned to clients.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

// IsComplete reports whether every required SMTP variable was supplied and valid.
func (s SMTPConfig) IsComplete() bool {
	return len(s.missing) == 0
}

// Missing lists the required SMTP variables that were absent or invalid.
func (s SMTPConfig) Missing() []string {
	return append([]string(nil), s.missing...)
}

// Validate returns an error naming every missing SMTP variable.
func (s SMTPConfig) Validate() error {
	if s.IsComplete() {
		return nil
	}
	return fmt.Errorf("missing required environment variables: %s", strings.Join(s.missing, ", "))
}

func loadSMTPConfig() SMTPConfig {
	var s SMTPConfig
	for _, key := range requiredSMTPVars {
		if strings.TrimSpace(os.Getenv(key)) == "" {
			s.missing = append(s.missing, key)
		}
	}

	s.Host = strings.TrimSpace(os.Getenv("SMTP_HOST"))
	s.Username = os.Getenv("SMTP_USER")
	s.Password = os.Getenv("SMTP_PASS")
	s.FromEmail = strings.TrimSpace(os.Getenv("SMTP_FROM_EMAIL"))
	s.ToEmail = strings.TrimSpace(os.Getenv("SMTP_TO_EMAIL"))
	s.InsecureSkipVerify = getEnvBool("SMTP_INSECURE_SKIP_VERIFY", false)

	// A malformed port is treated like a missing one
	if raw := strings.TrimSpace(os.Getenv("SMTP_PORT")); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			s.missing = append(s.missing, "SMTP_PORT")
		} else {
			s.Port = port
		}
	}

	return s
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
