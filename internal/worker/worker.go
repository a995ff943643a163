package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	NotificationTitle = "TODO"
	NotificationIcon  = "/static/images/TODO.png"
	ClickTargetURL    = "/"
)

// NotificationOptions configures a displayed notification.
type NotificationOptions struct {
	Body string `json:"body"`
	Icon string `json:"icon"`
}

// Notification is a notification currently on screen.
type Notification interface {
	Title() string
	Options() NotificationOptions
	Close()
}

// Registration displays notifications on behalf of the worker.
type Registration interface {
	ShowNotification(ctx context.Context, title string, opts NotificationOptions) error
}

// Clients opens windows on behalf of the worker.
type Clients interface {
	OpenWindow(ctx context.Context, url string) error
}

// Event is anything the runtime can deliver to the worker.
type Event interface {
	Name() string
}

// PushData is the raw payload of a push message.
type PushData []byte

// Text decodes the payload as UTF-8 text. Invalid sequences become U+FFFD.
func (d PushData) Text() string { return strings.ToValidUTF8(string(d), "\uFFFD") }

type PushEvent struct {
	Data PushData
}

func (PushEvent) Name() string { return "push" }

type NotificationClickEvent struct {
	Notification Notification
}

func (NotificationClickEvent) Name() string { return "notificationclick" }

// ServiceWorker reacts to push and notification click events.
type ServiceWorker struct {
	registration Registration
	clients      Clients
}

func New(registration Registration, clients Clients) *ServiceWorker {
	return &ServiceWorker{
		registration: registration,
		clients:      clients,
	}
}

// HandlePush shows the payload text as a notification. It returns once the
// display has settled.
func (w *ServiceWorker) HandlePush(ctx context.Context, ev PushEvent) error {
	opts := NotificationOptions{
		Body: ev.Data.Text(),
		Icon: NotificationIcon,
	}
	return w.registration.ShowNotification(ctx, NotificationTitle, opts)
}

// HandleNotificationClick closes the clicked notification and opens the app
// root, whatever the notification said.
func (w *ServiceWorker) HandleNotificationClick(ctx context.Context, ev NotificationClickEvent) error {
	if ev.Notification != nil {
		ev.Notification.Close()
	}
	return w.clients.OpenWindow(ctx, ClickTargetURL)
}

var errNilEvent = errors.New("nil event")

// Handle routes ev to its handler.
func (w *ServiceWorker) Handle(ctx context.Context, ev Event) error {
	switch e := ev.(type) {
	case nil:
		return errNilEvent
	case PushEvent:
		return w.HandlePush(ctx, e)
	case *PushEvent:
		if e == nil {
			return fmt.Errorf("push: %w", errNilEvent)
		}
		return w.HandlePush(ctx, *e)
	case NotificationClickEvent:
		return w.HandleNotificationClick(ctx, e)
	case *NotificationClickEvent:
		if e == nil {
			return fmt.Errorf("notificationclick: %w", errNilEvent)
		}
		return w.HandleNotificationClick(ctx, *e)
	default:
		return fmt.Errorf("unsupported event %q", ev.Name())
	}
}
