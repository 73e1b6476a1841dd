// Package kafka adapts the trigger queue: the consumer turns queue
// messages into check-cycle invocations, the publisher feeds the queue.
package kafka

import (
	"context"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/french-toast-alert-service/internal/config"
)

// Consumer reads trigger messages from the status-check topic. Message
// payloads are irrelevant; receipt alone drives a check cycle.
type Consumer struct {
	reader *kafkago.Reader
	logger *slog.Logger
}

// NewConsumer creates a consumer on the configured trigger topic.
func NewConsumer(cfg *config.Config, logger *slog.Logger) *Consumer {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaTriggerTopic,
		GroupID: cfg.KafkaGroupID,
	})
	return &Consumer{reader: r, logger: logger}
}

// Next blocks until a trigger message arrives or ctx is cancelled. The
// offset is committed on receipt: a trigger lost to a crash is recovered
// by the next trigger, not by redelivery.
func (c *Consumer) Next(ctx context.Context) error {
	msg, err := c.reader.ReadMessage(ctx)
	if err != nil {
		return err
	}
	c.logger.Debug("trigger message received",
		"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)
	return nil
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
