package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/GopiRanganathan/todo/internal/models"
	"github.com/GopiRanganathan/todo/pkg/metrics"
	"github.com/GopiRanganathan/todo/pkg/retry"
)

// ErrNoTokens is returned when an envelope has no token left to push to.
var ErrNoTokens = errors.New("no valid push tokens")

// TokenCache tracks tokens that must not be pushed to.
type TokenCache interface {
	IsTokenSuppressed(ctx context.Context, token string) (bool, error)
	SuppressToken(ctx context.Context, token string, ttl time.Duration) error
}

// TokenRemover forgets tokens whose subscription no longer exists.
type TokenRemover interface {
	DeleteToken(ctx context.Context, token string) error
}

// ReminderProcessor turns a reminder envelope into a delivered push.
type ReminderProcessor struct {
	provider      PushProvider
	statusUpdater *StatusUpdater
	cache         TokenCache
	remover       TokenRemover
	metrics       *metrics.Metrics
	logger        *slog.Logger
	retryCfg      retry.Config
	template      string
}

// NewReminderProcessor wires a processor. cache may be nil, in which case no
// token is ever suppressed.
func NewReminderProcessor(
	provider PushProvider,
	statusUpdater *StatusUpdater,
	cache TokenCache,
	metrics *metrics.Metrics,
	logger *slog.Logger,
	retryCfg retry.Config,
	template string,
) *ReminderProcessor {
	if template == "" {
		template = DefaultReminderTemplate
	}
	p := &ReminderProcessor{
		provider:      provider,
		statusUpdater: statusUpdater,
		cache:         cache,
		metrics:       metrics,
		logger:        logger,
		retryCfg:      retryCfg,
		template:      template,
	}
	p.retryCfg.OnRetry = func(attempt int, err error) {
		p.metrics.IncRetried()
		p.logger.Warn("push send failed, retrying", slog.Int("attempt", attempt), slog.Any("error", err))
	}
	return p
}

// SetTokenRemover makes the processor delete tokens the push service reports
// as gone, on top of suppressing them.
func (p *ReminderProcessor) SetTokenRemover(remover TokenRemover) {
	p.remover = remover
}

// Process delivers one envelope. Errors that redelivery cannot fix are marked
// with retry.Stop.
func (p *ReminderProcessor) Process(ctx context.Context, envelope *models.ReminderEnvelope) error {
	if envelope.Channel != models.ChannelPush {
		return retry.Stop(fmt.Errorf("unexpected channel %s", envelope.Channel))
	}
	p.metrics.IncRemindersConsumed()

	activeTokens, err := p.filterTokens(ctx, envelope.User.PushTokens)
	if err != nil {
		p.logger.Error("failed to filter tokens", slog.Any("error", err))
		return err
	}
	if len(activeTokens) == 0 {
		p.statusUpdater.MarkFailed(ctx, envelope.RequestID, envelope.Todo.ID, p.provider.Name(), ErrNoTokens.Error())
		p.metrics.IncFailed()
		return retry.Stop(ErrNoTokens)
	}

	payload := &PushPayload{
		Tokens: activeTokens,
		Body:   RenderTemplate(p.template, envelope.Variables()),
	}

	p.statusUpdater.MarkProcessing(ctx, envelope.RequestID, envelope.Todo.ID)
	sendErr := retry.Do(ctx, p.retryCfg, func() error {
		results, err := p.provider.Send(ctx, payload)
		if err != nil {
			return err
		}
		return p.handleResults(ctx, payload, results)
	})

	if sendErr != nil {
		// A redelivered envelope only targets tokens that have not had the push.
		envelope.User.PushTokens = payload.Tokens
		p.metrics.IncFailed()
		p.statusUpdater.MarkFailed(ctx, envelope.RequestID, envelope.Todo.ID, p.provider.Name(), sendErr.Error())
		return sendErr
	}

	p.metrics.IncDelivered()
	p.statusUpdater.MarkDelivered(ctx, envelope.RequestID, envelope.Todo.ID, p.provider.Name())
	p.logger.Info("reminder delivered",
		slog.String("request_id", envelope.RequestID),
		slog.Uint64("todo_id", uint64(envelope.Todo.ID)),
		slog.Int("tokens", len(payload.Tokens)),
	)
	return nil
}

func (p *ReminderProcessor) filterTokens(ctx context.Context, tokens []models.PushToken) ([]models.PushToken, error) {
	filtered := make([]models.PushToken, 0, len(tokens))
	for _, token := range tokens {
		if token.Token == "" {
			continue
		}
		if !models.SupportedPlatform(token.Platform) {
			continue
		}
		if p.cache != nil {
			suppressed, err := p.cache.IsTokenSuppressed(ctx, token.Token)
			if err != nil {
				return nil, err
			}
			if suppressed {
				continue
			}
		}
		filtered = append(filtered, token)
	}
	return filtered, nil
}

// handleResults suppresses dead tokens and drops them from payload, so a retry
// only targets tokens that may still succeed.
func (p *ReminderProcessor) handleResults(ctx context.Context, payload *PushPayload, results []models.PushResult) error {
	if len(results) == 0 {
		return fmt.Errorf("provider returned no results")
	}

	byToken := make(map[string]models.PushToken, len(payload.Tokens))
	for _, t := range payload.Tokens {
		byToken[t.Token] = t
	}

	var (
		delivered int
		failures  []string
		pending   []models.PushToken
	)
	for _, res := range results {
		if res.Status == models.ResultDelivered {
			delivered++
			continue
		}
		failures = append(failures, fmt.Sprintf("%s:%s", res.Token, res.Error))
		if isTokenFatal(res.Error) {
			if p.cache != nil {
				if err := p.cache.SuppressToken(ctx, res.Token, 0); err != nil {
					p.logger.Warn("failed to suppress token", slog.Any("error", err))
				}
			}
			if p.remover != nil && isTokenGone(res.Error) {
				if err := p.remover.DeleteToken(ctx, res.Token); err != nil {
					p.logger.Warn("failed to delete token", slog.Any("error", err))
				}
			}
			continue
		}
		pending = append(pending, byToken[res.Token])
	}

	if len(failures) == 0 {
		return nil
	}

	err := fmt.Errorf("failed tokens: %s", strings.Join(failures, ", "))
	if len(pending) == 0 {
		if delivered > 0 {
			p.logger.Warn("reminder partially delivered", slog.Any("error", err))
			return nil
		}
		return retry.Stop(err)
	}
	payload.Tokens = pending
	return err
}

func isTokenFatal(err string) bool {
	switch err {
	case ErrCodeNotRegistered, ErrCodeInvalidSubscription, ErrCodeMessageTooBig:
		return true
	default:
		return false
	}
}

func isTokenGone(err string) bool {
	return err == ErrCodeNotRegistered || err == ErrCodeInvalidSubscription
}
