package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/require"

	"github.com/GopiRanganathan/todo/internal/models"
	"github.com/GopiRanganathan/todo/pkg/logger"
	"github.com/GopiRanganathan/todo/pkg/retry"
)

type ackRecorder struct {
	acked    bool
	nacked   bool
	requeued bool
	rejected bool
}

func (a *ackRecorder) Ack(uint64, bool) error { a.acked = true; return nil }
func (a *ackRecorder) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked = true
	a.requeued = requeue
	return nil
}
func (a *ackRecorder) Reject(uint64, bool) error { a.rejected = true; return nil }

type fakeProcessor struct {
	got []*models.ReminderEnvelope
	err error
}

func (p *fakeProcessor) Process(_ context.Context, env *models.ReminderEnvelope) error {
	p.got = append(p.got, env)
	return p.err
}

type fakeRepublisher struct {
	published []*models.ReminderEnvelope
	err       error
}

func (r *fakeRepublisher) Publish(_ context.Context, env *models.ReminderEnvelope) error {
	if r.err != nil {
		return r.err
	}
	r.published = append(r.published, env)
	return nil
}

func delivery(t *testing.T, ack *ackRecorder, body []byte) amqp.Delivery {
	t.Helper()
	return amqp.Delivery{Acknowledger: ack, Body: body}
}

func envelopeBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(models.ReminderEnvelope{RequestID: "req-1", Channel: models.ChannelPush})
	require.NoError(t, err)
	return body
}

func TestHandleDeliveryAcksOnSuccess(t *testing.T) {
	proc := &fakeProcessor{}
	c := NewReminderConsumer(nil, proc, &fakeRepublisher{}, logger.Discard(), 3)
	ack := &ackRecorder{}

	require.NoError(t, c.handleDelivery(context.Background(), delivery(t, ack, envelopeBody(t))))
	require.True(t, ack.acked)
	require.Len(t, proc.got, 1)
	require.Equal(t, "req-1", proc.got[0].RequestID)
}

func TestHandleDeliveryRejectsGarbage(t *testing.T) {
	proc := &fakeProcessor{}
	c := NewReminderConsumer(nil, proc, &fakeRepublisher{}, logger.Discard(), 3)
	ack := &ackRecorder{}

	require.Error(t, c.handleDelivery(context.Background(), delivery(t, ack, []byte("{"))))
	require.True(t, ack.rejected)
	require.Empty(t, proc.got)
}

func TestHandleDeliveryRepublishesUntilDeadLettered(t *testing.T) {
	proc := &fakeProcessor{err: errors.New("push service down")}
	pub := &fakeRepublisher{}
	c := NewReminderConsumer(nil, proc, pub, logger.Discard(), 3)

	body := envelopeBody(t)
	var acks []*ackRecorder
	for i := 0; i < 10; i++ {
		ack := &ackRecorder{}
		acks = append(acks, ack)
		require.Error(t, c.handleDelivery(context.Background(), delivery(t, ack, body)))
		if ack.nacked {
			break
		}
		require.True(t, ack.acked)
		require.Len(t, pub.published, i+1)
		require.Equal(t, i+1, pub.published[i].RetryCount)
		body, _ = json.Marshal(pub.published[i])
	}

	require.Len(t, proc.got, 3)
	require.Len(t, pub.published, 2)
	last := acks[len(acks)-1]
	require.True(t, last.nacked)
	require.False(t, last.requeued)
	require.False(t, last.acked)
	for _, env := range proc.got {
		require.Equal(t, "req-1", env.RequestID)
	}
}

func TestHandleDeliveryDeadLettersPermanentErrors(t *testing.T) {
	proc := &fakeProcessor{err: retry.Stop(errors.New("no valid push tokens"))}
	pub := &fakeRepublisher{}
	c := NewReminderConsumer(nil, proc, pub, logger.Discard(), 3)

	ack := &ackRecorder{}
	require.Error(t, c.handleDelivery(context.Background(), delivery(t, ack, envelopeBody(t))))
	require.True(t, ack.nacked)
	require.False(t, ack.requeued)
	require.Empty(t, pub.published)
}

func TestHandleDeliveryDeadLettersWhenRepublishFails(t *testing.T) {
	proc := &fakeProcessor{err: errors.New("push service down")}
	c := NewReminderConsumer(nil, proc, &fakeRepublisher{err: errors.New("channel closed")}, logger.Discard(), 3)

	ack := &ackRecorder{}
	require.Error(t, c.handleDelivery(context.Background(), delivery(t, ack, envelopeBody(t))))
	require.True(t, ack.nacked)
	require.False(t, ack.requeued)
	require.False(t, ack.acked)
}
