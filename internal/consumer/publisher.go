package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"github.com/GopiRanganathan/todo/internal/models"
)

// Publisher sends reminder envelopes to the reminder exchange.
type Publisher struct {
	mu       sync.Mutex
	ch       *amqp.Channel
	exchange string
}

// NewPublisher opens a channel on conn and declares the reminder topology.
func NewPublisher(conn *amqp.Connection, queue, dlq string) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := DeclareTopology(ch, ExchangeName, queue, dlq); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("queue setup failed: %w", err)
	}
	return &Publisher{ch: ch, exchange: ExchangeName}, nil
}

// Publish sends envelope as a persistent JSON message.
func (p *Publisher) Publish(ctx context.Context, envelope *models.ReminderEnvelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.ch.Publish(p.exchange, RoutingKey, false, false, amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     envelope.RequestID,
		CorrelationId: envelope.RequestID,
		Timestamp:     time.Now().UTC(),
		Body:          body,
	})
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.Close()
}
