// Package notify fans new-submission events out to RabbitMQ so admin tooling
// can react without polling the notifications table.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/PYTHTRADER/findtrader/internal/config"
	"github.com/PYTHTRADER/findtrader/internal/model"
)

// Publisher delivers notification events.
type Publisher interface {
	Publish(ctx context.Context, n model.Notification) error
	Close() error
}

// SubmissionEvent is the message body on the wire.
type SubmissionEvent struct {
	NotificationID string    `json:"notification_id"`
	Type           string    `json:"type"`
	SubmissionID   string    `json:"submission_id"`
	TraderName     string    `json:"trader_name"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitPublisher publishes persistent JSON messages to a direct exchange.
// A publish that fails because the broker dropped the connection redials
// once and retries; any other failure is returned to the caller.
type RabbitPublisher struct {
	mu         sync.Mutex
	conn       io.Closer
	ch         amqpChannel
	connect    func() (io.Closer, amqpChannel, error)
	exchange   string
	routingKey string
}

// NewRabbitPublisher dials the broker and declares the exchange, queue and binding.
func NewRabbitPublisher(cfg config.AMQPConfig) (*RabbitPublisher, error) {
	r := &RabbitPublisher{
		connect:    func() (io.Closer, amqpChannel, error) { return dial(cfg) },
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
	}
	conn, ch, err := r.connect()
	if err != nil {
		return nil, err
	}
	r.conn, r.ch = conn, ch
	return r, nil
}

func dial(cfg config.AMQPConfig) (io.Closer, amqpChannel, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, "direct", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(cfg.Queue, cfg.RoutingKey, cfg.Exchange, false, nil); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("bind queue: %w", err)
	}
	return conn, ch, nil
}

func (r *RabbitPublisher) Publish(ctx context.Context, n model.Notification) error {
	body, err := json.Marshal(SubmissionEvent{
		NotificationID: n.ID,
		Type:           n.Type,
		SubmissionID:   n.SubmissionID,
		TraderName:     n.TraderName,
		Role:           n.Role,
		CreatedAt:      n.CreatedAt,
	})
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		Timestamp:    n.CreatedAt,
		MessageId:    n.ID,
		Type:         n.Type,
		DeliveryMode: amqp.Persistent,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ch != nil {
		err = r.ch.PublishWithContext(ctx, r.exchange, r.routingKey, false, false, msg)
		if !errors.Is(err, amqp.ErrClosed) {
			return err
		}
	}
	if r.connect == nil {
		return amqp.ErrClosed
	}
	r.closeLocked()
	conn, ch, err := r.connect()
	if err != nil {
		return fmt.Errorf("reconnect amqp: %w", err)
	}
	r.conn, r.ch = conn, ch
	return r.ch.PublishWithContext(ctx, r.exchange, r.routingKey, false, false, msg)
}

func (r *RabbitPublisher) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closeLocked()
}

func (r *RabbitPublisher) closeLocked() error {
	var err error
	if r.ch != nil {
		r.ch.Close()
	}
	if r.conn != nil {
		err = r.conn.Close()
	}
	r.conn, r.ch = nil, nil
	return err
}

// Noop drops every event. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, model.Notification) error { return nil }
func (Noop) Close() error                                      { return nil }

// New returns a RabbitMQ publisher, or Noop when cfg.URL is empty.
func New(cfg config.AMQPConfig, log *slog.Logger) (Publisher, error) {
	if cfg.URL == "" {
		log.Info("amqp_disabled", "component", "notify")
		return Noop{}, nil
	}
	p, err := NewRabbitPublisher(cfg)
	if err != nil {
		return nil, err
	}
	log.Info("amqp_connected", "component", "notify", "exchange", cfg.Exchange, "queue", cfg.Queue)
	return p, nil
}
