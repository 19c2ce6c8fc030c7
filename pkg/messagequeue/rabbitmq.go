package messagequeue

import (
	"context"
	"fmt"
	"sync"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// amqpChannel is the subset of *amqp.Channel used for publishing.
type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQPublisher publishes persistent JSON messages to durable queues.
type RabbitMQPublisher struct {
	conn    *amqp.Connection
	channel amqpChannel
	logger  *zap.Logger

	mu       sync.Mutex // amqp channels are not safe for concurrent use
	declared map[string]bool
}

// RabbitMQConfig contains options for creating a RabbitMQPublisher.
type RabbitMQConfig struct {
	URL string
}

// NewRabbitMQPublisher dials the broker and opens a channel.
func NewRabbitMQPublisher(cfg RabbitMQConfig, logger *zap.Logger) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a RabbitMQ channel: %w", err)
	}

	logger.Info("Successfully connected to RabbitMQ and opened a channel")
	p := newPublisher(ch, logger)
	p.conn = conn
	return p, nil
}

func newPublisher(ch amqpChannel, logger *zap.Logger) *RabbitMQPublisher {
	return &RabbitMQPublisher{channel: ch, logger: logger, declared: make(map[string]bool)}
}

// Publish declares queueName on first use and sends body to it.
func (p *RabbitMQPublisher) Publish(ctx context.Context, queueName string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.declared[queueName] {
		if _, err := p.channel.QueueDeclare(
			queueName, // name
			true,      // durable
			false,     // delete when unused
			false,     // exclusive
			false,     // no-wait
			nil,       // arguments
		); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", queueName, err)
		}
		p.declared[queueName] = true
	}

	err := p.channel.Publish(
		"",        // exchange
		queueName, // routing key
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		})
	if err != nil {
		return fmt.Errorf("failed to publish to queue %s: %w", queueName, err)
	}
	p.logger.Debug("Published message", zap.String("queue", queueName), zap.Int("bytes", len(body)))
	return nil
}

// Close closes the channel and the connection.
func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.channel.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
