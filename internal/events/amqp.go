package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPPublisher writes events as persistent JSON messages to a durable queue on
// the default exchange. The connection is opened lazily and reopened after the
// broker drops it.
type AMQPPublisher struct {
	url     string
	queue   string
	timeout time.Duration
	logger  *log.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPPublisher constructs a publisher; no connection is made until the first Publish.
func NewAMQPPublisher(url, queue string, timeout time.Duration, logger *log.Logger) (*AMQPPublisher, error) {
	if url == "" {
		return nil, errors.New("events: amqp url is required")
	}
	if queue == "" {
		return nil, errors.New("events: queue name is required")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &AMQPPublisher{url: url, queue: queue, timeout: timeout, logger: logger}, nil
}

// Publish sends ev, reconnecting once if the cached channel is unusable.
func (p *AMQPPublisher) Publish(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("events: marshal %s: %w", ev.Type, err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ev.OccurredAt,
		Type:         ev.Type,
		Body:         body,
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for attempt := 0; attempt < 2; attempt++ {
		ch, err := p.channel()
		if err != nil {
			return err
		}
		err = ch.PublishWithContext(ctx, "", p.queue, false, false, msg)
		if err == nil {
			return nil
		}
		p.logger.Printf("events: publish %s failed (attempt %d): %v", ev.Type, attempt+1, err)
		p.reset()
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return fmt.Errorf("events: publish %s: giving up", ev.Type)
}

// Close releases the broker connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}

// channel returns an open channel, dialing if needed. The dial and the AMQP
// handshake are both bounded by p.timeout. Caller holds p.mu.
func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() && p.conn != nil && !p.conn.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	cfg := amqp.Config{Locale: "en_US"}
	if p.timeout > 0 {
		cfg.Dial = amqp.DefaultDial(p.timeout)
	}
	conn, err := amqp.DialConfig(p.url, cfg)
	if err != nil {
		return nil, fmt.Errorf("events: dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("events: open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("events: declare queue %s: %w", p.queue, err)
	}
	p.conn, p.ch = conn, ch
	p.logger.Printf("events: connected, publishing to queue %q", p.queue)
	return ch, nil
}

func (p *AMQPPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
