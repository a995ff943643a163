package models

import "time"

// User owns todos and the tokens reminders are pushed to.
type User struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"not null" json:"name"`
	Email string `gorm:"uniqueIndex;not null" json:"email"`
}

// Todo is a user task with an optional due date. Alert opts the todo into the
// due-date reminder.
type Todo struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	Title     string    `gorm:"not null" json:"title"`
	DueDate   *Date     `json:"due_date,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Alert     bool      `gorm:"not null;default:false" json:"alert"`
	Completed bool      `gorm:"not null;default:false" json:"completed"`
}
