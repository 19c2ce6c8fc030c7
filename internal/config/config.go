package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store backends.
const (
	BackendFirestore = "firestore"
	BackendBadger    = "badger"
)

// Config holds all configuration for the application.
type Config struct {
	Port    string `mapstructure:"PORT"`
	GinMode string `mapstructure:"GIN_MODE"`

	StoreBackend string `mapstructure:"STORE_BACKEND"`
	BadgerPath   string `mapstructure:"BADGER_PATH"`

	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	FirebaseClientEmail              string `mapstructure:"FIREBASE_CLIENT_EMAIL"`
	FirebasePrivateKey               string `mapstructure:"FIREBASE_PRIVATE_KEY"`
	FirebaseDatabaseURL              string `mapstructure:"FIREBASE_DATABASE_URL"`

	StripeSecretKey     string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	StripeCurrency      string `mapstructure:"STRIPE_CURRENCY"`
	FrontendURL         string `mapstructure:"FRONTEND_URL"`

	GeminiAPIKey  string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel   string `mapstructure:"GEMINI_MODEL"`
	GeminiBaseURL string `mapstructure:"GEMINI_BASE_URL"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	AMQPURL               string `mapstructure:"AMQP_URL"`
	AMQPNotificationQueue string `mapstructure:"AMQP_NOTIFICATION_QUEUE"`

	BookingDedupWindow       time.Duration `mapstructure:"BOOKING_DEDUP_WINDOW"`
	BookingStrictTransitions bool          `mapstructure:"BOOKING_STRICT_TRANSITIONS"`
	OutboxPollInterval       time.Duration `mapstructure:"OUTBOX_POLL_INTERVAL"`
	OutboxMaxAttempts        int           `mapstructure:"OUTBOX_MAX_ATTEMPTS"`
	AIRateLimitPerMinute     int           `mapstructure:"AI_RATE_LIMIT_PER_MINUTE"`
	AuthRequired             bool          `mapstructure:"AUTH_REQUIRED"`
}

var defaults = map[string]interface{}{
	"PORT":                       "8080",
	"GIN_MODE":                   "debug",
	"STORE_BACKEND":              BackendFirestore,
	"BADGER_PATH":                "./data/badger",
	"STRIPE_CURRENCY":            "usd",
	"FRONTEND_URL":               "http://localhost:3000",
	"GEMINI_MODEL":               "gemini-1.5-flash",
	"GEMINI_BASE_URL":            "https://generativelanguage.googleapis.com/v1beta/openai/",
	"REDIS_DB":                   0,
	"AMQP_NOTIFICATION_QUEUE":    "notifications",
	"BOOKING_DEDUP_WINDOW":       "5s",
	"BOOKING_STRICT_TRANSITIONS": false,
	"OUTBOX_POLL_INTERVAL":       "2s",
	"OUTBOX_MAX_ATTEMPTS":        5,
	"AI_RATE_LIMIT_PER_MINUTE":   30,
	"AUTH_REQUIRED":              false,
}

var envKeys = []string{
	"PORT", "GIN_MODE", "STORE_BACKEND", "BADGER_PATH",
	"FIREBASE_PROJECT_ID", "GOOGLE_APPLICATION_CREDENTIALS", "FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
	"FIREBASE_CLIENT_EMAIL", "FIREBASE_PRIVATE_KEY", "FIREBASE_DATABASE_URL",
	"STRIPE_SECRET_KEY", "STRIPE_WEBHOOK_SECRET", "STRIPE_CURRENCY", "FRONTEND_URL",
	"GEMINI_API_KEY", "GEMINI_MODEL", "GEMINI_BASE_URL",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"AMQP_URL", "AMQP_NOTIFICATION_QUEUE",
	"BOOKING_DEDUP_WINDOW", "BOOKING_STRICT_TRANSITIONS",
	"OUTBOX_POLL_INTERVAL", "OUTBOX_MAX_ATTEMPTS", "AI_RATE_LIMIT_PER_MINUTE", "AUTH_REQUIRED",
}

var appConfig *Config

// LoadConfig loads configuration from environment variables using Viper.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	appConfig = &cfg
	return appConfig, nil
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendFirestore:
		if c.FirebaseProjectID == "" {
			return errors.New("FIREBASE_PROJECT_ID is required for the firestore backend")
		}
	case BackendBadger:
		if c.BadgerPath == "" {
			return errors.New("BADGER_PATH is required for the badger backend")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendFirestore, BackendBadger, c.StoreBackend)
	}
	if (c.FirebaseClientEmail == "") != (c.FirebasePrivateKey == "") {
		return errors.New("FIREBASE_CLIENT_EMAIL and FIREBASE_PRIVATE_KEY must be set together")
	}
	if c.StripeSecretKey == "" {
		return errors.New("STRIPE_SECRET_KEY is required")
	}
	if c.StripeWebhookSecret == "" {
		return errors.New("STRIPE_WEBHOOK_SECRET is required")
	}
	if c.BookingDedupWindow <= 0 {
		return errors.New("BOOKING_DEDUP_WINDOW must be positive")
	}
	if c.OutboxPollInterval <= 0 {
		return errors.New("OUTBOX_POLL_INTERVAL must be positive")
	}
	if c.OutboxMaxAttempts < 1 {
		return errors.New("OUTBOX_MAX_ATTEMPTS must be at least 1")
	}
	if c.AIRateLimitPerMinute < 1 {
		return errors.New("AI_RATE_LIMIT_PER_MINUTE must be at least 1")
	}
	return nil
}

// IsRelease reports whether the server runs in gin release mode.
func (c *Config) IsRelease() bool {
	return strings.EqualFold(c.GinMode, "release")
}

// GetConfig returns the loaded application configuration.
// It will panic if LoadConfig has not been called successfully.
func GetConfig() *Config {
	if appConfig == nil {
		panic("config not loaded; call LoadConfig first")
	}
	return appConfig
}
