package tasks

import (
	"context"
	"log/slog"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/taskhive/taskhive/internal/shared"
)

// Service wraps task business rules.
type Service struct {
	repo   Repository
	cache  *StatsCache
	logger *slog.Logger

	statsGroup singleflight.Group
}

// NewService constructs a Service.
func NewService(repo Repository, cache *StatsCache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// Create stores a new task for the owner.
func (s *Service) Create(ctx context.Context, userID int64, req CreateTaskRequest) (*Task, error) {
	priority, err := ParsePriority(req.Priority)
	if err != nil {
		return nil, err
	}
	t := &Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
		Priority:    priority,
		UserID:      userID,
		CategoryID:  req.CategoryID,
	}
	id, err := s.repo.Create(ctx, t)
	if err != nil {
		return nil, err
	}
	t.ID = id
	s.invalidateStats(ctx, userID)
	return t, nil
}

// Get fetches one owned task.
func (s *Service) Get(ctx context.Context, userID, id int64) (*Task, error) {
	return s.repo.Get(ctx, userID, id)
}

// List returns a page of the user's tasks.
func (s *Service) List(ctx context.Context, userID int64, page, perPage int) (*ListTasksResponse, error) {
	p := shared.NewPagination(page, perPage, 0)
	tasks, total, err := s.repo.List(ctx, userID, p.PerPage, p.Offset())
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return &ListTasksResponse{
		Tasks:      tasks,
		Pagination: shared.NewPagination(p.Page, p.PerPage, total),
	}, nil
}

// Update applies a partial update to an owned task.
func (s *Service) Update(ctx context.Context, userID, id int64, req UpdateTaskRequest) (*Task, error) {
	t, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = req.Description
	}
	if req.Status != nil {
		t.Status = *req.Status
	}
	if req.DueDate != nil {
		t.DueDate = *req.DueDate
	}
	if req.Priority != nil {
		priority, err := ParsePriority(*req.Priority)
		if err != nil {
			return nil, err
		}
		t.Priority = priority
	}
	if req.CategoryID != nil {
		t.CategoryID = *req.CategoryID
	}
	if req.Completed != nil {
		t.Completed = *req.Completed
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, userID)
	return t, nil
}

// Delete removes an owned task.
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.invalidateStats(ctx, userID)
	return nil
}

// Toggle flips the completion flag and returns the updated task.
func (s *Service) Toggle(ctx context.Context, userID, id int64) (*Task, error) {
	t, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	t.Completed = !t.Completed
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, userID)
	return t, nil
}

// ListByStatus returns the user's tasks matching a status value.
func (s *Service) ListByStatus(ctx context.Context, userID int64, status string) ([]Task, error) {
	return nonNil(s.repo.ListByStatus(ctx, userID, status))
}

// ListByPriority returns the user's tasks at the given priority.
func (s *Service) ListByPriority(ctx context.Context, userID int64, raw string) ([]Task, error) {
	priority, err := ParsePriority(raw)
	if err != nil {
		return nil, err
	}
	return nonNil(s.repo.ListByPriority(ctx, userID, priority))
}

// ListByCategory returns the user's tasks filed under a category.
func (s *Service) ListByCategory(ctx context.Context, userID, categoryID int64) ([]Task, error) {
	return nonNil(s.repo.ListByCategory(ctx, userID, categoryID))
}

// ListCompleted returns finished tasks.
func (s *Service) ListCompleted(ctx context.Context, userID int64) ([]Task, error) {
	return nonNil(s.repo.ListByCompletion(ctx, userID, true))
}

// ListPending returns unfinished tasks.
func (s *Service) ListPending(ctx context.Context, userID int64) ([]Task, error) {
	return nonNil(s.repo.ListByCompletion(ctx, userID, false))
}

// ListDueToday returns unfinished tasks due on the current date.
func (s *Service) ListDueToday(ctx context.Context, userID int64) ([]Task, error) {
	return nonNil(s.repo.ListDueToday(ctx, userID))
}

// ListOverdue returns unfinished tasks past their due date.
func (s *Service) ListOverdue(ctx context.Context, userID int64) ([]Task, error) {
	return nonNil(s.repo.ListOverdue(ctx, userID))
}

// Stats returns the user's aggregate counts. Concurrent callers for the
// same user collapse into one query, and results are cached briefly.
func (s *Service) Stats(ctx context.Context, userID int64) (*Stats, error) {
	if cached, err := s.cache.Get(ctx, userID); err == nil && cached != nil {
		return cached, nil
	} else if err != nil && s.logger != nil {
		s.logger.Warn("stats cache read", slog.Any("error", err))
	}

	v, err, _ := s.statsGroup.Do(strconv.FormatInt(userID, 10), func() (any, error) {
		stats, err := s.repo.Stats(ctx, userID)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, userID, stats); err != nil && s.logger != nil {
			s.logger.Warn("stats cache write", slog.Any("error", err))
		}
		return stats, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Stats), nil
}

func (s *Service) invalidateStats(ctx context.Context, userID int64) {
	if err := s.cache.Invalidate(ctx, userID); err != nil && s.logger != nil {
		s.logger.Warn("stats cache invalidate", slog.Any("error", err))
	}
}

func nonNil(tasks []Task, err error) ([]Task, error) {
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return tasks, nil
}
