package tasks

import (
	"fmt"
	"time"
)

// Priority is the closed set of task priorities.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// ParsePriority maps a raw value onto the known priority set.
func ParsePriority(raw string) (Priority, error) {
	switch Priority(raw) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return Priority(raw), nil
	default:
		return "", fmt.Errorf("unknown priority %q", raw)
	}
}

// Task is a unit of work owned by one user and filed under one of the
// owner's categories.
type Task struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description,omitempty" db:"description"`
	Status      string    `json:"status" db:"status"`
	DueDate     time.Time `json:"due_date" db:"due_date"`
	Priority    Priority  `json:"priority" db:"priority"`
	Completed   bool      `json:"completed" db:"completed"`
	UserID      int64     `json:"user_id" db:"user_id"`
	CategoryID  int64     `json:"category_id" db:"category_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Stats aggregates a user's task counts for the dashboard clients.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Overdue   int `json:"overdue"`
	DueToday  int `json:"due_today"`
	High      int `json:"high_priority"`
}
