package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"catalog_importer/internal/domain"
)

const (
	TypeOutcome = "outcome"
	TypeSummary = "summary"
)

type RabbitMQ struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
	logger     *slog.Logger
}

type Config struct {
	URL        string
	Exchange   string
	RoutingKey string
	QueueName  string
}

// NewRabbitMQ connects and declares a durable direct exchange with one bound queue.
func NewRabbitMQ(cfg Config, logger *slog.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declare(ch, cfg); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger = logger.With("component", "publisher")
	logger.Info("connected to rabbitmq",
		"exchange", cfg.Exchange,
		"queue", cfg.QueueName,
		"routing_key", cfg.RoutingKey,
	)

	return &RabbitMQ{
		conn:       conn,
		channel:    ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		logger:     logger,
	}, nil
}

func declare(ch *amqp.Channel, cfg Config) error {
	if err := ch.ExchangeDeclare(cfg.Exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(cfg.QueueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, cfg.RoutingKey, cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// Message is the envelope of every published notification. Exactly one of
// Outcome and Summary is set, matching Type.
type Message struct {
	Type      string               `json:"type"`
	Outcome   *domain.OutcomeEvent `json:"outcome,omitempty"`
	Summary   *domain.RunStats     `json:"summary,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
}

// Publish sends the progress notification for one synchronized record.
func (r *RabbitMQ) Publish(ctx context.Context, event *domain.OutcomeEvent) error {
	err := r.send(ctx, Message{
		Type:      TypeOutcome,
		Outcome:   event,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	r.logger.Debug("published outcome",
		"run_id", event.RunID,
		"row", event.Row,
		"outcome", event.Outcome,
	)
	return nil
}

// PublishSummary sends the final report of a run.
func (r *RabbitMQ) PublishSummary(ctx context.Context, stats *domain.RunStats) error {
	err := r.send(ctx, Message{
		Type:      TypeSummary,
		Summary:   stats,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	r.logger.Debug("published summary", "run_id", stats.RunID, "total", stats.Total)
	return nil
}

func (r *RabbitMQ) send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	err = r.channel.PublishWithContext(
		ctx,
		r.exchange,
		r.routingKey,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Type:         msg.Type,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
