package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/internal/shared"
)

type mockTaskRepo struct {
	tasks      map[int64]*Task
	nextID     int64
	ownedCats  map[int64]int64 // category id -> owner
	statsCalls int
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{
		tasks:     make(map[int64]*Task),
		nextID:    1,
		ownedCats: map[int64]int64{10: 1, 11: 1, 20: 2},
	}
}

func (m *mockTaskRepo) Create(ctx context.Context, t *Task) (int64, error) {
	if owner, ok := m.ownedCats[t.CategoryID]; !ok || owner != t.UserID {
		return 0, ErrCategoryNotOwned
	}
	id := m.nextID
	m.nextID++
	stored := *t
	stored.ID = id
	m.tasks[id] = &stored
	return id, nil
}

func (m *mockTaskRepo) Get(ctx context.Context, userID, id int64) (*Task, error) {
	t, ok := m.tasks[id]
	if !ok || t.UserID != userID {
		return nil, shared.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (m *mockTaskRepo) List(ctx context.Context, userID int64, limit, offset int) ([]Task, int, error) {
	owned := make([]Task, 0)
	for _, t := range m.tasks {
		if t.UserID == userID {
			owned = append(owned, *t)
		}
	}
	total := len(owned)
	if offset >= len(owned) {
		return []Task{}, total, nil
	}
	end := offset + limit
	if end > len(owned) {
		end = len(owned)
	}
	return owned[offset:end], total, nil
}

func (m *mockTaskRepo) Update(ctx context.Context, t *Task) error {
	stored, ok := m.tasks[t.ID]
	if !ok || stored.UserID != t.UserID {
		return shared.ErrNotFound
	}
	if owner, ok := m.ownedCats[t.CategoryID]; !ok || owner != t.UserID {
		return ErrCategoryNotOwned
	}
	copied := *t
	m.tasks[t.ID] = &copied
	return nil
}

func (m *mockTaskRepo) Delete(ctx context.Context, userID, id int64) error {
	t, ok := m.tasks[id]
	if !ok || t.UserID != userID {
		return shared.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *mockTaskRepo) filter(userID int64, keep func(*Task) bool) []Task {
	out := make([]Task, 0)
	for _, t := range m.tasks {
		if t.UserID == userID && keep(t) {
			out = append(out, *t)
		}
	}
	return out
}

func (m *mockTaskRepo) ListByStatus(ctx context.Context, userID int64, status string) ([]Task, error) {
	return m.filter(userID, func(t *Task) bool { return t.Status == status }), nil
}

func (m *mockTaskRepo) ListByPriority(ctx context.Context, userID int64, priority Priority) ([]Task, error) {
	return m.filter(userID, func(t *Task) bool { return t.Priority == priority }), nil
}

func (m *mockTaskRepo) ListByCategory(ctx context.Context, userID, categoryID int64) ([]Task, error) {
	return m.filter(userID, func(t *Task) bool { return t.CategoryID == categoryID }), nil
}

func (m *mockTaskRepo) ListByCompletion(ctx context.Context, userID int64, completed bool) ([]Task, error) {
	return m.filter(userID, func(t *Task) bool { return t.Completed == completed }), nil
}

func (m *mockTaskRepo) ListDueToday(ctx context.Context, userID int64) ([]Task, error) {
	today := time.Now().Truncate(24 * time.Hour)
	return m.filter(userID, func(t *Task) bool {
		return !t.Completed && t.DueDate.Truncate(24*time.Hour).Equal(today)
	}), nil
}

func (m *mockTaskRepo) ListOverdue(ctx context.Context, userID int64) ([]Task, error) {
	now := time.Now()
	return m.filter(userID, func(t *Task) bool { return !t.Completed && t.DueDate.Before(now) }), nil
}

func (m *mockTaskRepo) Stats(ctx context.Context, userID int64) (*Stats, error) {
	m.statsCalls++
	stats := &Stats{}
	for _, t := range m.tasks {
		if t.UserID != userID {
			continue
		}
		stats.Total++
		if t.Completed {
			stats.Completed++
		} else {
			stats.Pending++
		}
		if t.Priority == PriorityHigh {
			stats.High++
		}
	}
	return stats, nil
}

func testStatsCache(t *testing.T) *StatsCache {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStatsCache(client, time.Minute)
}

func newTaskService(t *testing.T) (*Service, *mockTaskRepo) {
	t.Helper()
	repo := newMockTaskRepo()
	return NewService(repo, testStatsCache(t), nil), repo
}

func validCreateRequest() CreateTaskRequest {
	return CreateTaskRequest{
		Title:      "Write report",
		Status:     "in_progress",
		DueDate:    time.Now().Add(48 * time.Hour),
		Priority:   "HIGH",
		CategoryID: 10,
	}
}

func TestCreateTask(t *testing.T) {
	svc, _ := newTaskService(t)

	task, err := svc.Create(context.Background(), 1, validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, task.Priority)
	assert.Equal(t, int64(1), task.UserID)
	assert.False(t, task.Completed)
}

func TestCreateTaskRejectsUnknownPriority(t *testing.T) {
	svc, _ := newTaskService(t)

	req := validCreateRequest()
	req.Priority = "URGENT"
	_, err := svc.Create(context.Background(), 1, req)
	assert.Error(t, err)
}

func TestCreateTaskRejectsForeignCategory(t *testing.T) {
	svc, _ := newTaskService(t)

	req := validCreateRequest()
	req.CategoryID = 20 // owned by user 2
	_, err := svc.Create(context.Background(), 1, req)
	assert.ErrorIs(t, err, ErrCategoryNotOwned)
}

func TestUpdateTaskPartial(t *testing.T) {
	svc, _ := newTaskService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, 1, validCreateRequest())
	require.NoError(t, err)

	priority := "LOW"
	updated, err := svc.Update(ctx, 1, task.ID, UpdateTaskRequest{Priority: &priority})
	require.NoError(t, err)
	assert.Equal(t, PriorityLow, updated.Priority)
	assert.Equal(t, "Write report", updated.Title)
}

func TestToggleFlipsCompletion(t *testing.T) {
	svc, _ := newTaskService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, 1, validCreateRequest())
	require.NoError(t, err)

	toggled, err := svc.Toggle(ctx, 1, task.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	toggled, err = svc.Toggle(ctx, 1, task.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Completed)
}

func TestGetEnforcesTaskOwnership(t *testing.T) {
	svc, _ := newTaskService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, 1, validCreateRequest())
	require.NoError(t, err)

	_, err = svc.Get(ctx, 2, task.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListPaginates(t *testing.T) {
	svc, _ := newTaskService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Create(ctx, 1, validCreateRequest())
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, 1, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Tasks, 2)
	assert.Equal(t, 5, page.Pagination.Total)
	assert.Equal(t, 3, page.Pagination.TotalPages)
}

func TestStatsServedFromCacheUntilMutation(t *testing.T) {
	svc, repo := newTaskService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, validCreateRequest())
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, repo.statsCalls)

	// Second read hits the cache, not the repository.
	_, err = svc.Stats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.statsCalls)

	// A mutation invalidates the cached aggregate.
	_, err = svc.Create(ctx, 1, validCreateRequest())
	require.NoError(t, err)

	stats, err = svc.Stats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, repo.statsCalls)
}
