package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationStatus tracks the delivery state of one reminder.
type NotificationStatus struct {
	RequestID string `gorm:"primaryKey"`
	TodoID    uint   `gorm:"index"`
	Status    string
	UpdatedAt time.Time
	Provider  string
	Detail    string
}

type StatusStore struct {
	db        *gorm.DB
	tableName string
}

func NewStatusStore(db *gorm.DB, tableName string) (*StatusStore, error) {
	if tableName == "" {
		tableName = "notification_statuses"
	}

	if err := db.Table(tableName).AutoMigrate(&NotificationStatus{}); err != nil {
		return nil, fmt.Errorf("migrate %s: %w", tableName, err)
	}

	return &StatusStore{
		db:        db,
		tableName: tableName,
	}, nil
}

func (s *StatusStore) UpdateStatus(ctx context.Context, requestID string, todoID uint, status, provider, detail string) error {
	ns := NotificationStatus{
		RequestID: requestID,
		TodoID:    todoID,
		Status:    status,
		UpdatedAt: time.Now().UTC(),
		Provider:  provider,
		Detail:    detail,
	}
	return s.db.WithContext(ctx).Table(s.tableName).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "request_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at", "provider", "detail"}),
		}).Create(&ns).Error
}

// Status returns the recorded state of requestID.
func (s *StatusStore) Status(ctx context.Context, requestID string) (*NotificationStatus, error) {
	var ns NotificationStatus
	err := s.db.WithContext(ctx).Table(s.tableName).
		Where("request_id = ?", requestID).
		Take(&ns).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("status %s: %w", requestID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &ns, nil
}
