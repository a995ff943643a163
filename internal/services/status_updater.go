package services

import (
	"context"
	"log/slog"
)

const (
	StatusProcessing = "processing"
	StatusDelivered  = "delivered"
	StatusFailed     = "failed"
)

// StatusWriter persists reminder delivery states.
type StatusWriter interface {
	UpdateStatus(ctx context.Context, requestID string, todoID uint, status, provider, detail string) error
}

// StatusUpdater records reminder states. Write failures are logged and
// otherwise ignored so they never block delivery.
type StatusUpdater struct {
	store  StatusWriter
	logger *slog.Logger
}

func NewStatusUpdater(store StatusWriter, logger *slog.Logger) *StatusUpdater {
	return &StatusUpdater{
		store:  store,
		logger: logger,
	}
}

func (s *StatusUpdater) MarkProcessing(ctx context.Context, requestID string, todoID uint) {
	s.update(ctx, requestID, todoID, StatusProcessing, "", "")
}

func (s *StatusUpdater) MarkDelivered(ctx context.Context, requestID string, todoID uint, provider string) {
	s.update(ctx, requestID, todoID, StatusDelivered, provider, "")
}

func (s *StatusUpdater) MarkFailed(ctx context.Context, requestID string, todoID uint, provider, detail string) {
	s.update(ctx, requestID, todoID, StatusFailed, provider, detail)
}

func (s *StatusUpdater) update(ctx context.Context, requestID string, todoID uint, status, provider, detail string) {
	if err := s.store.UpdateStatus(ctx, requestID, todoID, status, provider, detail); err != nil {
		s.logger.Error("failed to update reminder status",
			slog.String("request_id", requestID),
			slog.String("status", status),
			slog.Any("error", err),
		)
	}
}
