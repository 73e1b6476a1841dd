package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/fernet/fernet-go"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DatabaseHost     string
	DatabaseUser     string
	DatabasePassword string
	DatabaseName     string
	DatabasePort     string

	// TokenKey is the base64 Fernet key used to encrypt webhook URLs at rest.
	TokenKey string

	ToastAPIURL  string
	ToastLinkURL string
	BaseURL      string
	GithubURL    string

	SlackClientID     string
	SlackClientSecret string
	OAuthURL          string

	KafkaBrokers      []string
	KafkaEnabled      bool
	KafkaTriggerTopic string
	KafkaGroupID      string

	CheckInterval     time.Duration // 0 disables the timer trigger
	SourceTimeout     time.Duration
	WebhookTimeout    time.Duration
	FanoutConcurrency int

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env is optional

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	checkInterval, err := parseDuration("CHECK_INTERVAL", "10m", true)
	if err != nil {
		return nil, err
	}
	sourceTimeout, err := parseDuration("SOURCE_TIMEOUT", "10s", false)
	if err != nil {
		return nil, err
	}
	webhookTimeout, err := parseDuration("WEBHOOK_TIMEOUT", "10s", false)
	if err != nil {
		return nil, err
	}

	fanout, err := parseFanoutConcurrency()
	if err != nil {
		return nil, err
	}

	kafkaEnabled := true
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		DatabaseHost:     sharedcfg.EnvOrDefault("DATABASE_HOST", "localhost"),
		DatabaseUser:     sharedcfg.EnvOrDefault("DATABASE_USER", "toast"),
		DatabasePassword: os.Getenv("DATABASE_PASSWORD"),
		DatabaseName:     sharedcfg.EnvOrDefault("DATABASE_NAME", "french_toast"),
		DatabasePort:     sharedcfg.EnvOrDefault("DATABASE_PORT", "5432"),

		TokenKey: os.Getenv("TOKEN_KEY"),

		ToastAPIURL:  os.Getenv("TOAST_API_URL"),
		ToastLinkURL: sharedcfg.EnvOrDefault("TOAST_LINK_URL", "https://www.universalhub.com/french-toast"),
		BaseURL:      sharedcfg.EnvOrDefault("BASE_URL", "http://localhost:8080"),
		GithubURL:    os.Getenv("GITHUB_URL"),

		SlackClientID:     os.Getenv("SLACK_CLIENT_ID"),
		SlackClientSecret: os.Getenv("SLACK_CLIENT_SECRET"),
		OAuthURL:          sharedcfg.EnvOrDefault("OAUTH_URL", "https://slack.com/oauth/authorize"),

		KafkaBrokers:      sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaEnabled:      kafkaEnabled,
		KafkaTriggerTopic: sharedcfg.EnvOrDefault("KAFKA_TRIGGER_TOPIC", "french-toast-status-checks"),
		KafkaGroupID:      sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "french-toast-alerts"),

		CheckInterval:     checkInterval,
		SourceTimeout:     sourceTimeout,
		WebhookTimeout:    webhookTimeout,
		FanoutConcurrency: fanout,

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.ToastAPIURL == "" {
		return nil, errors.New("TOAST_API_URL is required")
	}
	if cfg.TokenKey == "" {
		return nil, errors.New("TOKEN_KEY is required")
	}
	if _, err := fernet.DecodeKey(cfg.TokenKey); err != nil {
		return nil, fmt.Errorf("TOKEN_KEY is not a valid fernet key: %w", err)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaTriggerTopic == "" {
		return nil, errors.New("KAFKA_TRIGGER_TOPIC is required")
	}

	return cfg, nil
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DatabaseHost, c.DatabaseUser, c.DatabasePassword, c.DatabaseName, c.DatabasePort)
}

func parseDuration(key, fallback string, allowZero bool) (time.Duration, error) {
	s := sharedcfg.EnvOrDefault(key, fallback)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 || (!allowZero && d == 0) {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

func parseFanoutConcurrency() (int, error) {
	s := sharedcfg.EnvOrDefault("FANOUT_CONCURRENCY", "8")
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 256 {
		return 0, errors.New("invalid FANOUT_CONCURRENCY: must be between 1 and 256")
	}
	return n, nil
}
