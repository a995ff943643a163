package page

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GopiRanganathan/todo/pkg/logger"
)

type call struct {
	Method      string
	Path        string
	ContentType string
	Body        []byte
}

type backend struct {
	*httptest.Server

	mu     sync.Mutex
	calls  []call
	status int
}

func newBackend(t *testing.T, status int) *backend {
	b := &backend{status: status}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.calls = append(b.calls, call{
			Method:      r.Method,
			Path:        r.URL.EscapedPath(),
			ContentType: r.Header.Get("Content-Type"),
			Body:        body,
		})
		b.mu.Unlock()
		w.WriteHeader(b.status)
	}))
	t.Cleanup(b.Close)
	return b
}

func (b *backend) Calls() []call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]call(nil), b.calls...)
}

func newTestClient(baseURL string) (*Client, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewClient(baseURL, logger.NewWithWriter(&buf, "info")), &buf
}

func TestSendTokenPostsOnce(t *testing.T) {
	b := newBackend(t, http.StatusOK)
	c, logs := newTestClient(b.URL)

	require.NoError(t, c.SendToken(context.Background(), "tok-123"))

	calls := b.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, http.MethodPost, calls[0].Method)
	require.Equal(t, "/save_fcm_token", calls[0].Path)
	require.Contains(t, calls[0].ContentType, "application/json")
	require.JSONEq(t, `{"token":"tok-123"}`, string(calls[0].Body))

	require.Contains(t, logs.String(), "push token sent to server")
	require.NotContains(t, logs.String(), "failed")
}

func TestSendTokenLogsFailureStatus(t *testing.T) {
	b := newBackend(t, http.StatusInternalServerError)
	c, logs := newTestClient(b.URL)

	err := c.SendToken(context.Background(), "tok-123")

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusInternalServerError, statusErr.Code)
	require.Len(t, b.Calls(), 1)

	out := logs.String()
	require.Contains(t, out, "failed to send push token to server")
	require.Contains(t, out, "status=500")
	require.NotContains(t, out, "push token sent to server")
	require.NotContains(t, out, "error sending push token")
}

func TestSendTokenLogsTransportError(t *testing.T) {
	b := newBackend(t, http.StatusOK)
	url := b.URL
	b.Close()

	c, logs := newTestClient(url)
	err := c.SendToken(context.Background(), "tok-123")
	require.Error(t, err)

	var statusErr *StatusError
	require.False(t, errors.As(err, &statusErr))

	out := logs.String()
	require.Contains(t, out, "error sending push token")
	require.NotContains(t, out, "failed to send push token to server")
}

func TestUpdateTodoStatusPostsCompletedFlag(t *testing.T) {
	for _, completed := range []bool{true, false} {
		b := newBackend(t, http.StatusOK)
		c, logs := newTestClient(b.URL)

		box := NewCheckbox("todo-42", "42")
		box.SetChecked(completed)

		require.NoError(t, c.UpdateTodoStatus(context.Background(), box))

		calls := b.Calls()
		require.Len(t, calls, 1)
		require.Equal(t, http.MethodPost, calls[0].Method)
		require.Equal(t, "/updatetodo/42", calls[0].Path)

		var body TodoStatusRequest
		require.NoError(t, json.Unmarshal(calls[0].Body, &body))
		require.Equal(t, completed, body.Completed)
		require.Contains(t, logs.String(), "todo status updated")
	}
}

func TestUpdateTodoStatusFailureLeavesCheckbox(t *testing.T) {
	b := newBackend(t, http.StatusInternalServerError)
	c, logs := newTestClient(b.URL)

	box := NewCheckbox("todo-7", "7")
	BindTodoCheckbox(context.Background(), c, box)

	box.Click()

	require.True(t, box.Checked())
	require.Len(t, b.Calls(), 1)
	require.Contains(t, logs.String(), "failed to update todo status")
	require.Contains(t, logs.String(), "todo_id=7")
}

func TestUpdateTodoStatusTransportError(t *testing.T) {
	b := newBackend(t, http.StatusOK)
	url := b.URL
	b.Close()

	c, logs := newTestClient(url)
	box := NewCheckbox("todo-7", "7")
	box.SetChecked(true)

	require.Error(t, c.UpdateTodoStatus(context.Background(), box))
	require.Contains(t, logs.String(), "error updating todo status")
}

func TestBindTodoCheckboxSendsEachChange(t *testing.T) {
	b := newBackend(t, http.StatusOK)
	c, _ := newTestClient(b.URL)

	box := NewCheckbox("todo-3", "3")
	BindTodoCheckbox(context.Background(), c, box)

	box.Click()
	box.Click()

	calls := b.Calls()
	require.Len(t, calls, 2)
	require.JSONEq(t, `{"completed":true}`, string(calls[0].Body))
	require.JSONEq(t, `{"completed":false}`, string(calls[1].Body))
}

func TestWithHeader(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-User-ID")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, logger.Discard(), WithHeader("X-User-ID", "9"))
	require.NoError(t, c.SendToken(context.Background(), "t"))
	require.Equal(t, "9", got)
}
