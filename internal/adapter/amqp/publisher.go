// Package amqp publishes committed ledger entries to a RabbitMQ exchange.
package amqp

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/simaogato/wealthtrack-backend/internal/domain"
	"github.com/simaogato/wealthtrack-backend/internal/log"
)

const publishTimeout = 5 * time.Second

// channel is the part of *amqp091.Channel the publisher uses
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher implements domain.LedgerPublisher over AMQP
type Publisher struct {
	conn         *amqp091.Connection
	channel      channel
	exchangeName string
	routingKey   string
	logger       *log.Logger
}

// NewPublisher dials url and declares a durable direct exchange
func NewPublisher(url, exchangeName, routingKey string, logger *log.Logger) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p, err := newPublisher(ch, exchangeName, routingKey, logger)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, exchangeName, routingKey string, logger *log.Logger) (*Publisher, error) {
	err := ch.ExchangeDeclare(
		exchangeName, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &Publisher{
		channel:      ch,
		exchangeName: exchangeName,
		routingKey:   routingKey,
		logger:       logger.WithComponent("amqp"),
	}, nil
}

// PublishLedgerEntries publishes one persistent message per entry, in order.
// It stops at the first failure.
func (p *Publisher) PublishLedgerEntries(ctx context.Context, entries []*domain.Transaction) error {
	for _, entry := range entries {
		body, err := NewLedgerEventMessage(entry).ToJSON()
		if err != nil {
			return fmt.Errorf("marshal message: %w", err)
		}

		pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		err = p.channel.PublishWithContext(
			pubCtx,
			p.exchangeName, // exchange
			p.routingKey,   // routing key
			false,          // mandatory
			false,          // immediate
			amqp091.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp091.Persistent,
				MessageId:    entry.ID.String(),
				Timestamp:    entry.Timestamp,
				Type:         string(entry.Reason),
				Body:         body,
			},
		)
		cancel()
		if err != nil {
			return fmt.Errorf("publish ledger entry %s: %w", entry.ID, err)
		}
	}

	p.logger.DebugContext(ctx, "Published ledger entries", "count", len(entries), "exchange", p.exchangeName)
	return nil
}

// Close closes the channel and the connection
func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
