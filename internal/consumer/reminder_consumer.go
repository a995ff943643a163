package consumer

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/GopiRanganathan/todo/internal/models"
	"github.com/GopiRanganathan/todo/pkg/retry"
)

// EnvelopeProcessor delivers one reminder. Errors marked with retry.Stop are
// never redelivered.
type EnvelopeProcessor interface {
	Process(ctx context.Context, envelope *models.ReminderEnvelope) error
}

// Republisher puts an envelope back on the reminder queue.
type Republisher interface {
	Publish(ctx context.Context, envelope *models.ReminderEnvelope) error
}

// ReminderConsumer processes reminder envelopes. A transiently failed
// envelope is acked and republished with RetryCount+1 until maxDeliveries
// attempts were made; then, or on a permanent error, it is dead-lettered.
type ReminderConsumer struct {
	base          *BaseConsumer
	processor     EnvelopeProcessor
	republisher   Republisher
	logger        *slog.Logger
	maxDeliveries int
}

func NewReminderConsumer(base *BaseConsumer, processor EnvelopeProcessor, republisher Republisher, logger *slog.Logger, maxDeliveries int) *ReminderConsumer {
	if maxDeliveries <= 0 {
		maxDeliveries = 5
	}
	return &ReminderConsumer{
		base:          base,
		processor:     processor,
		republisher:   republisher,
		logger:        logger,
		maxDeliveries: maxDeliveries,
	}
}

func (p *ReminderConsumer) Start(ctx context.Context) error {
	return p.base.Start(ctx, p.handleDelivery)
}

func (p *ReminderConsumer) handleDelivery(ctx context.Context, msg amqp.Delivery) error {
	var envelope models.ReminderEnvelope
	if err := json.Unmarshal(msg.Body, &envelope); err != nil {
		p.logger.Error("failed to unmarshal envelope", slog.Any("error", err))
		_ = msg.Reject(false)
		return err
	}

	err := p.processor.Process(ctx, &envelope)
	if err == nil {
		return msg.Ack(false)
	}

	attrs := []any{
		slog.String("request_id", envelope.RequestID),
		slog.Int("attempt", envelope.RetryCount+1),
		slog.Any("error", err),
	}
	if !p.shouldRetry(&envelope, err) {
		p.logger.Error("processing failed, message dead-lettered", attrs...)
		_ = msg.Nack(false, false)
		return err
	}

	next := envelope
	next.RetryCount++
	if pubErr := p.republisher.Publish(ctx, &next); pubErr != nil {
		p.logger.Error("failed to republish envelope, message dead-lettered", append(attrs, slog.Any("publish_error", pubErr))...)
		_ = msg.Nack(false, false)
		return err
	}
	p.logger.Warn("processing failed, message republished", attrs...)
	_ = msg.Ack(false)
	return err
}

func (p *ReminderConsumer) shouldRetry(envelope *models.ReminderEnvelope, err error) bool {
	if retry.IsPermanent(err) || p.republisher == nil {
		return false
	}
	return envelope.RetryCount+1 < p.maxDeliveries
}
