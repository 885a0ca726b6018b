package tasks

import (
	"time"

	"github.com/taskhive/taskhive/internal/shared"
)

type CreateTaskRequest struct {
	Title       string    `json:"title" validate:"required,min=1,max=100"`
	Description *string   `json:"description,omitempty"`
	Status      string    `json:"status" validate:"required,min=1,max=50"`
	DueDate     time.Time `json:"due_date" validate:"required"`
	Priority    string    `json:"priority" validate:"required,oneof=LOW MEDIUM HIGH"`
	CategoryID  int64     `json:"category_id" validate:"required,gt=0"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty" validate:"omitempty,min=1,max=50"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Priority    *string    `json:"priority,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	CategoryID  *int64     `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	Completed   *bool      `json:"completed,omitempty"`
}

// ListTasksResponse wraps a page of tasks with pagination metadata.
type ListTasksResponse struct {
	Tasks      []Task            `json:"tasks"`
	Pagination shared.Pagination `json:"pagination"`
}
