package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GopiRanganathan/todo/internal/models"
)

type TokenStore struct {
	db *gorm.DB
}

func NewTokenStore(db *gorm.DB) *TokenStore {
	return &TokenStore{db: db}
}

// SaveToken records token for userID. A token already on file moves to the
// new user.
func (s *TokenStore) SaveToken(ctx context.Context, userID uint, token, platform string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token must not be empty")
	}
	if platform == "" {
		platform = models.PlatformWeb
	}
	now := time.Now().UTC()
	dt := models.DeviceToken{
		Token:     token,
		UserID:    userID,
		Platform:  platform,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id", "platform", "updated_at"}),
		}).Create(&dt).Error
	if err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	return nil
}

// TokensForUser lists the tokens registered by userID, oldest first.
func (s *TokenStore) TokensForUser(ctx context.Context, userID uint) ([]models.DeviceToken, error) {
	var tokens []models.DeviceToken
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&tokens).Error
	if err != nil {
		return nil, fmt.Errorf("listing tokens for user %d: %w", userID, err)
	}
	return tokens, nil
}

// DeleteToken forgets token. Deleting an unknown token is not an error.
func (s *TokenStore) DeleteToken(ctx context.Context, token string) error {
	if err := s.db.WithContext(ctx).Delete(&models.DeviceToken{}, "token = ?", token).Error; err != nil {
		return fmt.Errorf("deleting token: %w", err)
	}
	return nil
}
