package services

import (
	"context"

	"github.com/GopiRanganathan/todo/internal/models"
)

// PushPayload is the rendered reminder handed to a provider. Body travels as
// the raw push payload; the service worker supplies title and icon.
type PushPayload struct {
	Tokens []models.PushToken
	Body   string
}

// PushProvider represents a downstream push provider.
type PushProvider interface {
	Name() string
	Send(ctx context.Context, payload *PushPayload) ([]models.PushResult, error)
}
