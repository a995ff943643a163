package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/GopiRanganathan/todo/internal/models"
)

type TodoStore struct {
	db *gorm.DB
}

func NewTodoStore(db *gorm.DB) *TodoStore {
	return &TodoStore{db: db}
}

// CreateUser inserts u and fills in its ID.
func (s *TodoStore) CreateUser(ctx context.Context, u *models.User) error {
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("user email must not be empty")
	}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

func (s *TodoStore) User(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting user %d: %w", id, err)
	}
	return &u, nil
}

// CreateTodo inserts t and fills in its ID.
func (s *TodoStore) CreateTodo(ctx context.Context, t *models.Todo) error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("todo title must not be empty")
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("creating todo: %w", err)
	}
	return nil
}

func (s *TodoStore) Todo(ctx context.Context, id uint) (*models.Todo, error) {
	var t models.Todo
	err := s.db.WithContext(ctx).First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("todo %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting todo %d: %w", id, err)
	}
	return &t, nil
}

// SetCompleted stores the completion flag of todo id.
func (s *TodoStore) SetCompleted(ctx context.Context, id uint, completed bool) error {
	result := s.db.WithContext(ctx).
		Model(&models.Todo{}).
		Where("id = ?", id).
		Update("completed", completed)
	if result.Error != nil {
		return fmt.Errorf("updating todo %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		// Some drivers count only changed rows.
		if _, err := s.Todo(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// ListTodos returns the todos of userID, oldest first.
func (s *TodoStore) ListTodos(ctx context.Context, userID uint) ([]models.Todo, error) {
	var todos []models.Todo
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id").
		Find(&todos).Error
	if err != nil {
		return nil, fmt.Errorf("listing todos of user %d: %w", userID, err)
	}
	return todos, nil
}

// UserTodo returns todo id if it belongs to userID.
func (s *TodoStore) UserTodo(ctx context.Context, userID, id uint) (*models.Todo, error) {
	var t models.Todo
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("todo %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting todo %d: %w", id, err)
	}
	return &t, nil
}

// UpdateTodo stores the title, due date and alert flag of t. The todo must
// belong to t.UserID.
func (s *TodoStore) UpdateTodo(ctx context.Context, t *models.Todo) error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("todo title must not be empty")
	}
	if _, err := s.UserTodo(ctx, t.UserID, t.ID); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).
		Model(&models.Todo{}).
		Where("id = ? AND user_id = ?", t.ID, t.UserID).
		Updates(map[string]interface{}{
			"title":    t.Title,
			"due_date": t.DueDate,
			"alert":    t.Alert,
		}).Error
	if err != nil {
		return fmt.Errorf("updating todo %d: %w", t.ID, err)
	}
	return nil
}

// DeleteTodo removes todo id if it belongs to userID.
func (s *TodoStore) DeleteTodo(ctx context.Context, userID, id uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Todo{})
	if result.Error != nil {
		return fmt.Errorf("deleting todo %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("todo %d: %w", id, ErrNotFound)
	}
	return nil
}

// DueOn returns open todos with alerts enabled that are due on day.
func (s *TodoStore) DueOn(ctx context.Context, day models.Date) ([]models.Todo, error) {
	var todos []models.Todo
	err := s.db.WithContext(ctx).
		Where("due_date = ?", day).
		Where("alert = ? AND completed = ?", true, false).
		Order("id").
		Find(&todos).Error
	if err != nil {
		return nil, fmt.Errorf("listing todos due %s: %w", day, err)
	}
	return todos, nil
}
