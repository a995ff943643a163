package page

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-resty/resty/v2"
)

const (
	SaveTokenPath  = "/save_fcm_token"
	UpdateTodoPath = "/updatetodo/{id}"
)

// TokenRequest is the body posted to SaveTokenPath.
type TokenRequest struct {
	Token string `json:"token"`
}

// TodoStatusRequest is the body posted to UpdateTodoPath.
type TodoStatusRequest struct {
	Completed bool `json:"completed"`
}

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	Path   string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Path, e.Code)
}

// Client posts page events to the backend. Each call issues exactly one
// request: there is no retry and no client-side timeout.
type Client struct {
	rc     *resty.Client
	logger *slog.Logger
}

type Option func(*Client)

// WithHeader adds a header to every request, e.g. a session cookie or the
// user id an auth proxy would inject.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.rc.SetHeader(key, value)
	}
}

func NewClient(baseURL string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		rc:     resty.New().SetBaseURL(baseURL),
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type outcome struct {
	ok     string
	failed string
	errMsg string
}

var (
	tokenOutcome = outcome{
		ok:     "push token sent to server",
		failed: "failed to send push token to server",
		errMsg: "error sending push token",
	}
	todoOutcome = outcome{
		ok:     "todo status updated",
		failed: "failed to update todo status",
		errMsg: "error updating todo status",
	}
)

// SendToken registers a push token with the backend.
func (c *Client) SendToken(ctx context.Context, token string) error {
	res, err := c.rc.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(TokenRequest{Token: token}).
		Post(SaveTokenPath)
	return c.report(SaveTokenPath, res, err, tokenOutcome)
}

// TodoControl is a checkbox-like control: its value holds the todo id.
type TodoControl interface {
	Value() string
	Checked() bool
}

// UpdateTodoStatus posts the control's checked state for the todo named by
// its value. The control is left as the user set it whatever the outcome.
func (c *Client) UpdateTodoStatus(ctx context.Context, control TodoControl) error {
	id := control.Value()
	completed := control.Checked()
	c.logger.Debug("updating todo status", slog.String("todo_id", id), slog.Bool("completed", completed))

	res, err := c.rc.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetPathParam("id", id).
		SetBody(TodoStatusRequest{Completed: completed}).
		Post(UpdateTodoPath)
	return c.report("/updatetodo/"+id, res, err, todoOutcome, slog.String("todo_id", id))
}

func (c *Client) report(path string, res *resty.Response, err error, o outcome, attrs ...any) error {
	if err != nil {
		c.logger.Error(o.errMsg, append(attrs, slog.Any("error", err))...)
		return fmt.Errorf("%s: %w", o.errMsg, err)
	}
	if !res.IsSuccess() {
		c.logger.Error(o.failed, append(attrs, slog.Int("status", res.StatusCode()))...)
		return &StatusError{Path: path, Code: res.StatusCode(), Status: res.Status()}
	}
	c.logger.Info(o.ok, attrs...)
	return nil
}
