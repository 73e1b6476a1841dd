package kafka

import (
	"context"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/french-toast-alert-service/internal/config"
)

// Publisher sends trigger messages to the status-check topic. Used by the
// checkstatus command and by anything else that wants to force a cycle.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a producer for the trigger topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTriggerTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish sends one trigger message. The body is informational only.
func (p *Publisher) Publish(ctx context.Context, body string) error {
	return p.writer.WriteMessages(ctx, kafkago.Message{Value: []byte(body)})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
