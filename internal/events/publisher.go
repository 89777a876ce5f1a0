// Package events publishes expense notifications to RabbitMQ.
package events

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"orcamento/internal/core"
	"orcamento/internal/log"
)

const publishTimeout = 5 * time.Second

// channel is the subset of *amqp091.Channel the publisher uses.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher sends ExpenseCreatedMessage to a durable direct exchange.
type Publisher struct {
	mu         sync.Mutex
	conn       io.Closer
	channel    channel
	exchange   string
	routingKey string
	logger     *log.Logger
}

// Dial connects to the broker and declares the exchange.
func Dial(url, exchange, routingKey string, logger *log.Logger) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p, err := newPublisher(conn, ch, exchange, routingKey, logger)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	return p, nil
}

func newPublisher(conn io.Closer, ch channel, exchange, routingKey string, logger *log.Logger) (*Publisher, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	p := &Publisher{
		conn:       conn,
		channel:    ch,
		exchange:   exchange,
		routingKey: routingKey,
		logger:     logger.WithComponent(log.ComponentEvents),
	}

	err := ch.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return p, fmt.Errorf("declare exchange: %w", err)
	}
	return p, nil
}

// ExpenseCreated publishes an accepted expense.
func (p *Publisher) ExpenseCreated(ctx context.Context, e core.NewExpense, at time.Time) error {
	msg := NewExpenseCreatedMessage(e, at)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,   // exchange
		p.routingKey, // routing key
		false,        // mandatory
		false,        // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    msg.CreatedAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	p.logger.DebugContext(ctx, "Published expense created message",
		log.FieldDescription, e.Description,
		log.FieldAmountCents, e.Amount.Cents,
		"exchange", p.exchange,
		"routing_key", p.routingKey)
	return nil
}

// Close closes the channel and the connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
