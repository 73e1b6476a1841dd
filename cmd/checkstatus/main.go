// Command checkstatus publishes a single trigger message to the status
// check topic. It is meant to be run from cron or a scheduler dyno.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	kafkaadapter "github.com/couchcryptid/french-toast-alert-service/internal/adapter/kafka"
	"github.com/couchcryptid/french-toast-alert-service/internal/config"
	"github.com/couchcryptid/french-toast-alert-service/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	publisher := kafkaadapter.NewPublisher(cfg, logger)
	defer publisher.Close() //nolint:errcheck // exiting anyway

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := publisher.Publish(ctx, "Status check"); err != nil {
		logger.Error("failed to publish trigger", "error", err)
		os.Exit(1)
	}

	logger.Info("status check trigger published", "topic", cfg.KafkaTriggerTopic)
}
