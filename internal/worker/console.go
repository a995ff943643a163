package worker

import (
	"context"
	"log/slog"
	"sync"
)

// ConsoleNotification is a notification that only exists in the log.
type ConsoleNotification struct {
	title  string
	opts   NotificationOptions
	logger *slog.Logger

	closeOnce sync.Once
}

func NewConsoleNotification(title string, opts NotificationOptions, logger *slog.Logger) *ConsoleNotification {
	return &ConsoleNotification{title: title, opts: opts, logger: logger}
}

func (n *ConsoleNotification) Title() string                { return n.title }
func (n *ConsoleNotification) Options() NotificationOptions { return n.opts }

func (n *ConsoleNotification) Close() {
	n.closeOnce.Do(func() {
		n.logger.Info("notification closed", slog.String("title", n.title))
	})
}

// ConsoleRegistration logs notifications instead of drawing them, and keeps
// the ones it has shown.
type ConsoleRegistration struct {
	logger *slog.Logger

	mu    sync.Mutex
	shown []*ConsoleNotification
}

func NewConsoleRegistration(logger *slog.Logger) *ConsoleRegistration {
	return &ConsoleRegistration{logger: logger}
}

func (r *ConsoleRegistration) ShowNotification(_ context.Context, title string, opts NotificationOptions) error {
	n := NewConsoleNotification(title, opts, r.logger)

	r.mu.Lock()
	r.shown = append(r.shown, n)
	r.mu.Unlock()

	r.logger.Info("notification shown",
		slog.String("title", title),
		slog.String("body", opts.Body),
		slog.String("icon", opts.Icon),
	)
	return nil
}

// Shown returns the notifications displayed so far.
func (r *ConsoleRegistration) Shown() []*ConsoleNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*ConsoleNotification(nil), r.shown...)
}

// ConsoleClients logs the windows it is asked to open.
type ConsoleClients struct {
	logger *slog.Logger
}

func NewConsoleClients(logger *slog.Logger) *ConsoleClients {
	return &ConsoleClients{logger: logger}
}

func (c *ConsoleClients) OpenWindow(_ context.Context, url string) error {
	c.logger.Info("window opened", slog.String("url", url))
	return nil
}
