package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/GopiRanganathan/todo/internal/models"
	"github.com/GopiRanganathan/todo/pkg/metrics"
)

// DefaultReminderSchedule fires every day at 22:00.
const DefaultReminderSchedule = "0 22 * * *"

// TodoSource finds the todos a reminder run covers and their owners.
type TodoSource interface {
	DueOn(ctx context.Context, day models.Date) ([]models.Todo, error)
	User(ctx context.Context, id uint) (*models.User, error)
}

// TokenSource lists the push tokens of a user.
type TokenSource interface {
	TokensForUser(ctx context.Context, userID uint) ([]models.DeviceToken, error)
}

// Publisher hands reminder envelopes to the delivery pipeline.
type Publisher interface {
	Publish(ctx context.Context, envelope *models.ReminderEnvelope) error
}

// ReminderScheduler queues a push reminder for every open, alerting todo due
// the next day.
type ReminderScheduler struct {
	todos     TodoSource
	tokens    TokenSource
	publisher Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	cron      *cron.Cron
	schedule  string
	now       func() time.Time
}

func NewReminderScheduler(
	todos TodoSource,
	tokens TokenSource,
	publisher Publisher,
	metrics *metrics.Metrics,
	logger *slog.Logger,
	schedule string,
	loc *time.Location,
) *ReminderScheduler {
	if schedule == "" {
		schedule = DefaultReminderSchedule
	}
	if loc == nil {
		loc = time.Local
	}
	return &ReminderScheduler{
		todos:     todos,
		tokens:    tokens,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		cron:      cron.New(cron.WithLocation(loc)),
		schedule:  schedule,
		now:       func() time.Time { return time.Now().In(loc) },
	}
}

// Start registers the reminder job and starts the cron runner. Runs use ctx.
func (s *ReminderScheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.Error("reminder run failed", slog.Any("error", err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.logger.Info("reminder scheduler started", slog.String("schedule", s.schedule))
	return nil
}

// Stop halts the runner and waits for a running job to finish.
func (s *ReminderScheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce queues reminders for todos due tomorrow and returns how many were
// published. A todo that cannot be queued is logged and skipped.
func (s *ReminderScheduler) RunOnce(ctx context.Context) (int, error) {
	tomorrow := models.DateOf(s.now()).AddDays(1)
	todos, err := s.todos.DueOn(ctx, tomorrow)
	if err != nil {
		return 0, err
	}

	published := 0
	for i := range todos {
		todo := &todos[i]
		envelope, err := s.envelopeFor(ctx, todo)
		if err != nil {
			s.logger.Warn("skipping reminder", slog.Uint64("todo_id", uint64(todo.ID)), slog.Any("error", err))
			continue
		}
		if err := s.publisher.Publish(ctx, envelope); err != nil {
			s.logger.Error("failed to publish reminder",
				slog.String("request_id", envelope.RequestID),
				slog.Uint64("todo_id", uint64(todo.ID)),
				slog.Any("error", err),
			)
			continue
		}
		s.metrics.IncRemindersQueued()
		published++
	}

	s.logger.Info("reminder run finished",
		slog.String("due", tomorrow.String()),
		slog.Int("due_todos", len(todos)),
		slog.Int("published", published),
	)
	return published, nil
}

func (s *ReminderScheduler) envelopeFor(ctx context.Context, todo *models.Todo) (*models.ReminderEnvelope, error) {
	user, err := s.todos.User(ctx, todo.UserID)
	if err != nil {
		return nil, err
	}
	tokens, err := s.tokens.TokensForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, ErrNoTokens
	}

	pushTokens := make([]models.PushToken, 0, len(tokens))
	for _, t := range tokens {
		pushTokens = append(pushTokens, models.PushToken{Token: t.Token, Platform: t.Platform})
	}

	return &models.ReminderEnvelope{
		RequestID: uuid.NewString(),
		CreatedAt: s.now().UTC(),
		Channel:   models.ChannelPush,
		User: models.Recipient{
			ID:         user.ID,
			Name:       user.Name,
			PushTokens: pushTokens,
		},
		Todo: models.TodoSummary{
			ID:      todo.ID,
			Title:   todo.Title,
			DueDate: todo.DueDate,
		},
	}, nil
}
