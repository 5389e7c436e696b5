package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/acquire_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/acquire_ledger/internal/core/ports/services"
	"github.com/SscSPs/acquire_ledger/internal/middleware"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel is the subset of *amqp.Channel the publisher needs.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQPublisher sends alerts as persistent JSON messages.
type RabbitMQPublisher struct {
	ch         Channel
	exchange   string
	routingKey string
}

var _ portssvc.AlertPublisher = (*RabbitMQPublisher)(nil)

func NewRabbitMQPublisher(ch Channel, exchange, routingKey string) (*RabbitMQPublisher, error) {
	if ch == nil {
		return nil, errors.New("amqp channel cannot be nil")
	}
	return &RabbitMQPublisher{ch: ch, exchange: exchange, routingKey: routingKey}, nil
}

// DialRabbitMQ opens a connection and a channel and declares a durable
// topic exchange for alerts. The caller closes the connection.
func DialRabbitMQ(url, exchange string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	return conn, ch, nil
}

func (p *RabbitMQPublisher) PublishAlert(ctx context.Context, alert domain.LedgerAlert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to encode alert: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    alert.RaisedAt,
		MessageId:    alert.TransactionUID,
		Type:         string(alert.Kind),
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, msg); err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to publish ledger alert",
			slog.String("kind", string(alert.Kind)), slog.String("error", err.Error()))
		return fmt.Errorf("publish alert: %w", err)
	}
	return nil
}

func (p *RabbitMQPublisher) Close() error {
	return p.ch.Close()
}
