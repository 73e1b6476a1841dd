package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	kafkaadapter "github.com/couchcryptid/french-toast-alert-service/internal/adapter/kafka"
	"github.com/couchcryptid/french-toast-alert-service/internal/adapter/slack"
	"github.com/couchcryptid/french-toast-alert-service/internal/alert"
	"github.com/couchcryptid/french-toast-alert-service/internal/config"
	"github.com/couchcryptid/french-toast-alert-service/internal/observability"
	"github.com/couchcryptid/french-toast-alert-service/internal/source"
	"github.com/couchcryptid/french-toast-alert-service/internal/store"
	"github.com/couchcryptid/french-toast-alert-service/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	reporter := observability.NewReporter(logger, metrics)
	clock := clockwork.NewRealClock()

	db, err := store.Open(cfg)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	if err := store.Migrate(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	statuses := store.NewStatusStore(db)
	if err := statuses.Ensure(context.Background()); err != nil {
		logger.Error("failed to seed status row", "error", err)
		os.Exit(1)
	}
	subscribers, err := store.NewSubscriberStore(db, cfg.TokenKey)
	if err != nil {
		logger.Error("failed to init subscriber store", "error", err)
		os.Exit(1)
	}

	feed := source.NewClient(cfg.ToastAPIURL, cfg.SourceTimeout, metrics, logger)
	webhooks := slack.NewWebhookClient(cfg.ToastLinkURL, cfg.WebhookTimeout, metrics, logger)

	checker := alert.NewChecker(feed, statuses, reporter, metrics, clock, logger)
	dispatcher := alert.NewDispatcher(subscribers, webhooks, reporter, metrics, logger, cfg.FanoutConcurrency)

	// The queue trigger is feature-flagged via KAFKA_ENABLED; the timer
	// trigger is disabled by setting CHECK_INTERVAL to 0.
	var triggers alert.TriggerSource
	var consumer *kafkaadapter.Consumer
	if cfg.KafkaEnabled {
		consumer = kafkaadapter.NewConsumer(cfg, logger)
		triggers = consumer
		logger.Info("kafka trigger enabled", "topic", cfg.KafkaTriggerTopic, "group", cfg.KafkaGroupID)
	} else {
		logger.Info("kafka trigger disabled")
	}

	listener := alert.NewListener(checker, dispatcher, statuses, triggers,
		clock, cfg.CheckInterval, reporter, metrics, logger)

	states := slack.NewStateTokens(cfg.SlackClientSecret, cfg.SlackClientID, clock)
	oauth := slack.NewOAuthClient(cfg.SlackClientID, cfg.SlackClientSecret,
		cfg.BaseURL+"/validate", cfg.WebhookTimeout, logger)

	srv := web.NewServer(cfg, states, oauth, subscribers, listener, reporter, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := listener.Run(ctx); err != nil {
			logger.Error("trigger listener error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Error("kafka consumer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
