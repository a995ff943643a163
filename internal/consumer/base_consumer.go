package consumer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"
)

const (
	// ExchangeName is the direct exchange reminder envelopes are routed through.
	ExchangeName = "todo.reminders"
	// RoutingKey binds the reminder queue to ExchangeName.
	RoutingKey = "push"
)

// BaseConsumer wires RabbitMQ connectivity, queue declaration and worker handling.
type BaseConsumer struct {
	conn         *amqp.Connection
	queue        string
	dlq          string
	prefetch     int
	workerCount  int
	logger       *slog.Logger
	exchangeName string
}

func NewBaseConsumer(conn *amqp.Connection, queue, dlq string, prefetch, workerCount int, logger *slog.Logger) *BaseConsumer {
	if prefetch <= 0 {
		prefetch = 50
	}
	if workerCount <= 0 {
		workerCount = 5
	}
	return &BaseConsumer{
		conn:         conn,
		queue:        queue,
		dlq:          dlq,
		prefetch:     prefetch,
		workerCount:  workerCount,
		logger:       logger,
		exchangeName: ExchangeName,
	}
}

func (c *BaseConsumer) Start(ctx context.Context, handler func(context.Context, amqp.Delivery) error) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := DeclareTopology(ch, c.exchangeName, c.queue, c.dlq); err != nil {
		return fmt.Errorf("queue setup failed: %w", err)
	}

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("qos configuration failed: %w", err)
	}

	deliveries, err := ch.Consume(
		c.queue,
		"",
		false, // autoAck
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	c.logger.Info("consuming reminders", slog.String("queue", c.queue), slog.Int("workers", c.workerCount))

	var wg sync.WaitGroup
	for i := 0; i < c.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-deliveries:
					if !ok {
						return
					}
					if err := handler(ctx, msg); err != nil {
						c.logger.Error("handler returned error", slog.Any("error", err))
					}
				}
			}
		}()
	}

	<-ctx.Done()
	wg.Wait()
	return nil
}

// DeclareTopology declares the exchange, the reminder queue bound to it and,
// when dlq is set, the dead-letter queue rejected reminders end up in. Both
// the publisher and the consumer call it so either may start first.
func DeclareTopology(ch *amqp.Channel, exchange, queue, dlq string) error {
	args := amqp.Table{}
	if dlq != "" {
		args["x-dead-letter-exchange"] = ""
		args["x-dead-letter-routing-key"] = dlq
	}

	if err := ch.ExchangeDeclare(
		exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return err
	}

	if _, err := ch.QueueDeclare(
		queue,
		true,
		false,
		false,
		false,
		args,
	); err != nil {
		return err
	}

	if err := ch.QueueBind(
		queue,
		RoutingKey,
		exchange,
		false,
		nil,
	); err != nil {
		return err
	}

	if dlq != "" {
		if _, err := ch.QueueDeclare(
			dlq,
			true,
			false,
			false,
			false,
			nil,
		); err != nil {
			return err
		}
	}
	return nil
}
