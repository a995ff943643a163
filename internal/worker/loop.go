package worker

import (
	"context"
	"log/slog"
)

type queuedEvent struct {
	ctx    context.Context
	event  Event
	result chan error
}

// Loop delivers events to a ServiceWorker one at a time. A handler runs to
// completion, including whatever it waits on, before the next event starts.
type Loop struct {
	worker *ServiceWorker
	logger *slog.Logger
	events chan queuedEvent
}

func NewLoop(worker *ServiceWorker, logger *slog.Logger, queueSize int) *Loop {
	if queueSize < 0 {
		queueSize = 0
	}
	return &Loop{
		worker: worker,
		logger: logger,
		events: make(chan queuedEvent, queueSize),
	}
}

// Run processes events until ctx is done. Events still queued at that point
// are dropped.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case q := <-l.events:
			err := l.worker.Handle(q.ctx, q.event)
			if err != nil {
				l.logger.Error("event handler failed", slog.String("event", q.event.Name()), slog.Any("error", err))
			}
			q.result <- err
		}
	}
}

// Dispatch queues ev and returns a channel that receives the handler's result.
// It blocks while the queue is full.
func (l *Loop) Dispatch(ctx context.Context, ev Event) (<-chan error, error) {
	q := queuedEvent{
		ctx:    ctx,
		event:  ev,
		result: make(chan error, 1),
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case l.events <- q:
		return q.result, nil
	}
}
