package config

import (
	"testing"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIURL = "https://example.com/toast.xml"

func testTokenKey(t *testing.T) string {
	t.Helper()
	var k fernet.Key
	require.NoError(t, k.Generate())
	return k.Encode()
}

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TOAST_API_URL", testAPIURL)
	t.Setenv("TOKEN_KEY", testTokenKey(t))
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.DatabaseHost)
	assert.Equal(t, "toast", cfg.DatabaseUser)
	assert.Equal(t, "french_toast", cfg.DatabaseName)
	assert.Equal(t, "5432", cfg.DatabasePort)
	assert.Equal(t, testAPIURL, cfg.ToastAPIURL)
	assert.Equal(t, "https://www.universalhub.com/french-toast", cfg.ToastLinkURL)
	assert.Equal(t, "https://slack.com/oauth/authorize", cfg.OAuthURL)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, "french-toast-status-checks", cfg.KafkaTriggerTopic)
	assert.Equal(t, "french-toast-alerts", cfg.KafkaGroupID)
	assert.Equal(t, 10*time.Minute, cfg.CheckInterval)
	assert.Equal(t, 10*time.Second, cfg.SourceTimeout)
	assert.Equal(t, 10*time.Second, cfg.WebhookTimeout)
	assert.Equal(t, 8, cfg.FanoutConcurrency)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_CustomEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATABASE_HOST", "db.internal")
	t.Setenv("DATABASE_USER", "alerts")
	t.Setenv("DATABASE_PASSWORD", "hunter2")
	t.Setenv("DATABASE_NAME", "alerts_db")
	t.Setenv("DATABASE_PORT", "5433")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TRIGGER_TOPIC", "custom-trigger")
	t.Setenv("KAFKA_GROUP_ID", "custom-group")
	t.Setenv("CHECK_INTERVAL", "1m")
	t.Setenv("SOURCE_TIMEOUT", "3s")
	t.Setenv("WEBHOOK_TIMEOUT", "5s")
	t.Setenv("FANOUT_CONCURRENCY", "16")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-trigger", cfg.KafkaTriggerTopic)
	assert.Equal(t, "custom-group", cfg.KafkaGroupID)
	assert.Equal(t, time.Minute, cfg.CheckInterval)
	assert.Equal(t, 3*time.Second, cfg.SourceTimeout)
	assert.Equal(t, 5*time.Second, cfg.WebhookTimeout)
	assert.Equal(t, 16, cfg.FanoutConcurrency)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "host=db.internal user=alerts password=hunter2 dbname=alerts_db port=5433 sslmode=disable", cfg.DSN())
}

func TestLoad_MissingToastAPIURL(t *testing.T) {
	t.Setenv("TOKEN_KEY", testTokenKey(t))
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOAST_API_URL")
}

func TestLoad_MissingTokenKey(t *testing.T) {
	t.Setenv("TOAST_API_URL", testAPIURL)
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOKEN_KEY")
}

func TestLoad_InvalidTokenKey(t *testing.T) {
	t.Setenv("TOAST_API_URL", testAPIURL)
	t.Setenv("TOKEN_KEY", "not-a-fernet-key")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOKEN_KEY")
}

func TestLoad_CheckIntervalZeroDisablesTimer(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CHECK_INTERVAL", "0s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.CheckInterval)
}

func TestLoad_InvalidCheckInterval(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CHECK_INTERVAL", "sometimes")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHECK_INTERVAL")
}

func TestLoad_InvalidSourceTimeout(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SOURCE_TIMEOUT", "0s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SOURCE_TIMEOUT")
}

func TestLoad_InvalidFanoutConcurrency(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("FANOUT_CONCURRENCY", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FANOUT_CONCURRENCY")
}

func TestLoad_KafkaDisabled(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("KAFKA_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}
