package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/GopiRanganathan/todo/internal/models"
	"github.com/GopiRanganathan/todo/pkg/retry"
)

// Push error codes reported in models.PushResult.Error.
const (
	ErrCodeInvalidSubscription = "InvalidRegistration"
	ErrCodeNotRegistered       = "NotRegistered"
	ErrCodeMessageTooBig       = "MessageTooBig"
	ErrCodeUnavailable         = "Unavailable"
)

// VAPIDKeys identifies this application server to push services.
type VAPIDKeys struct {
	PublicKey  string
	PrivateKey string
	Subject    string
}

// WebPushProvider delivers the rendered reminder text as an encrypted Web Push
// payload. Each token is a JSON-encoded browser PushSubscription.
type WebPushProvider struct {
	keys   VAPIDKeys
	ttl    int
	client *http.Client
	logger *slog.Logger
}

func NewWebPushProvider(keys VAPIDKeys, ttl, timeout time.Duration, logger *slog.Logger) *WebPushProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	// webpush-go adds the mailto: scheme to non-https subjects itself.
	keys.Subject = strings.TrimPrefix(keys.Subject, "mailto:")
	return &WebPushProvider{
		keys: keys,
		ttl:  int(ttl / time.Second),
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (p *WebPushProvider) Name() string {
	return "webpush"
}

// Send pushes payload.Body to every subscription and returns one result per
// token. It only returns an error when nothing could be attempted.
func (p *WebPushProvider) Send(ctx context.Context, payload *PushPayload) ([]models.PushResult, error) {
	if len(payload.Tokens) == 0 {
		return nil, retry.Stop(fmt.Errorf("webpush: no tokens supplied"))
	}

	results := make([]models.PushResult, 0, len(payload.Tokens))
	for _, token := range payload.Tokens {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results = append(results, p.sendOne(ctx, token.Token, []byte(payload.Body)))
	}
	return results, nil
}

func (p *WebPushProvider) sendOne(ctx context.Context, token string, message []byte) models.PushResult {
	result := models.PushResult{Token: token, Provider: p.Name(), Status: models.ResultFailed}

	var sub webpush.Subscription
	if err := json.Unmarshal([]byte(token), &sub); err != nil || sub.Endpoint == "" {
		result.Error = ErrCodeInvalidSubscription
		return result
	}

	resp, err := webpush.SendNotificationWithContext(ctx, message, &sub, &webpush.Options{
		HTTPClient:      p.client,
		Subscriber:      p.keys.Subject,
		VAPIDPublicKey:  p.keys.PublicKey,
		VAPIDPrivateKey: p.keys.PrivateKey,
		TTL:             p.ttl,
	})
	if err != nil {
		p.logger.Debug("webpush send failed", slog.String("endpoint", sub.Endpoint), slog.Any("error", err))
		result.Error = ErrCodeUnavailable
		return result
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	p.logger.Debug("webpush response", slog.String("endpoint", sub.Endpoint), slog.Int("status", resp.StatusCode))
	switch code := resp.StatusCode; {
	case code >= 200 && code < 300:
		result.Status = models.ResultDelivered
		result.MessageID = resp.Header.Get("Location")
	case code == http.StatusNotFound || code == http.StatusGone:
		result.Error = ErrCodeNotRegistered
	case code == http.StatusRequestEntityTooLarge:
		result.Error = ErrCodeMessageTooBig
	default:
		result.Error = ErrCodeUnavailable
	}
	return result
}
