package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type shownNotification struct {
	title string
	opts  NotificationOptions
}

type fakeRegistration struct {
	mu    sync.Mutex
	shown []shownNotification
	err   error
	// gate, when set, blocks ShowNotification until it is closed.
	gate    chan struct{}
	started chan struct{}
}

func (r *fakeRegistration) ShowNotification(ctx context.Context, title string, opts NotificationOptions) error {
	if r.started != nil {
		r.started <- struct{}{}
	}
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shown = append(r.shown, shownNotification{title: title, opts: opts})
	return r.err
}

func (r *fakeRegistration) Shown() []shownNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]shownNotification(nil), r.shown...)
}

type fakeClients struct {
	mu     sync.Mutex
	opened []string
}

func (c *fakeClients) OpenWindow(_ context.Context, url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opened = append(c.opened, url)
	return nil
}

type fakeNotification struct {
	title  string
	body   string
	closed int
}

func (n *fakeNotification) Title() string { return n.title }
func (n *fakeNotification) Options() NotificationOptions {
	return NotificationOptions{Body: n.body}
}
func (n *fakeNotification) Close() { n.closed++ }

func TestHandlePushShowsPayload(t *testing.T) {
	reg := &fakeRegistration{}
	w := New(reg, &fakeClients{})

	err := w.HandlePush(context.Background(), PushEvent{Data: PushData("Reminder: task due")})
	require.NoError(t, err)

	require.Equal(t, []shownNotification{{
		title: "TODO",
		opts: NotificationOptions{
			Body: "Reminder: task due",
			Icon: "/static/images/TODO.png",
		},
	}}, reg.Shown())
}

func TestHandlePushPropagatesDisplayError(t *testing.T) {
	boom := errors.New("permission denied")
	w := New(&fakeRegistration{err: boom}, &fakeClients{})

	err := w.HandlePush(context.Background(), PushEvent{Data: PushData("x")})
	require.ErrorIs(t, err, boom)
}

func TestHandleNotificationClickClosesAndOpensRoot(t *testing.T) {
	for _, body := range []string{"", "Hey Sam! Laundry due tomorrow! Take action!"} {
		clients := &fakeClients{}
		w := New(&fakeRegistration{}, clients)
		n := &fakeNotification{title: "TODO", body: body}

		require.NoError(t, w.HandleNotificationClick(context.Background(), NotificationClickEvent{Notification: n}))

		require.Equal(t, 1, n.closed)
		require.Equal(t, []string{"/"}, clients.opened)
	}
}

type unknownEvent struct{}

func (unknownEvent) Name() string { return "sync" }

func TestHandleRoutesEvents(t *testing.T) {
	reg := &fakeRegistration{}
	clients := &fakeClients{}
	w := New(reg, clients)
	ctx := context.Background()

	require.NoError(t, w.Handle(ctx, PushEvent{Data: PushData("a")}))
	require.NoError(t, w.Handle(ctx, &PushEvent{Data: PushData("b")}))
	require.NoError(t, w.Handle(ctx, NotificationClickEvent{Notification: &fakeNotification{}}))
	require.NoError(t, w.Handle(ctx, &NotificationClickEvent{Notification: &fakeNotification{}}))
	require.EqualError(t, w.Handle(ctx, unknownEvent{}), `unsupported event "sync"`)

	require.Len(t, reg.Shown(), 2)
	require.Equal(t, []string{"/", "/"}, clients.opened)
}

func TestHandleRejectsNilEvents(t *testing.T) {
	reg := &fakeRegistration{}
	clients := &fakeClients{}
	w := New(reg, clients)
	ctx := context.Background()

	var push *PushEvent
	var click *NotificationClickEvent
	require.Error(t, w.Handle(ctx, nil))
	require.Error(t, w.Handle(ctx, push))
	require.Error(t, w.Handle(ctx, click))

	require.Empty(t, reg.Shown())
	require.Empty(t, clients.opened)
}

func TestPushDataTextReplacesInvalidUTF8(t *testing.T) {
	require.Equal(t, "Laundry � due", PushData("Laundry \xff\xfe due").Text())
	require.Equal(t, "café", PushData("caf\xc3\xa9").Text())
}
