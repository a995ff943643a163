package models

import "time"

// ReminderEnvelope is produced by the due-date scheduler and consumed by the
// reminder consumer. One envelope covers one todo.
type ReminderEnvelope struct {
	RequestID  string      `json:"request_id"`
	CreatedAt  time.Time   `json:"created_at"`
	Channel    string      `json:"channel"`
	User       Recipient   `json:"user"`
	Todo       TodoSummary `json:"todo"`
	RetryCount int         `json:"retry_count"`
}

const ChannelPush = "push"

type Recipient struct {
	ID         uint        `json:"id"`
	Name       string      `json:"name"`
	PushTokens []PushToken `json:"push_tokens"`
}

type PushToken struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type TodoSummary struct {
	ID      uint   `json:"id"`
	Title   string `json:"title"`
	DueDate *Date  `json:"due_date,omitempty"`
}

// Variables returns the placeholder values reminder messages are rendered with.
func (e *ReminderEnvelope) Variables() map[string]interface{} {
	vars := map[string]interface{}{
		"name":    e.User.Name,
		"title":   e.Todo.Title,
		"todo_id": e.Todo.ID,
	}
	if e.Todo.DueDate != nil {
		vars["due_date"] = e.Todo.DueDate.String()
	}
	return vars
}
