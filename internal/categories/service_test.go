package categories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/internal/shared"
)

type mockCategoryRepo struct {
	categories map[int64]*Category
	nextID     int64
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{categories: make(map[int64]*Category), nextID: 1}
}

func (m *mockCategoryRepo) Create(ctx context.Context, c *Category) (int64, error) {
	for _, existing := range m.categories {
		if existing.UserID == c.UserID && existing.Name == c.Name {
			return 0, ErrNameTaken
		}
	}
	id := m.nextID
	m.nextID++
	stored := *c
	stored.ID = id
	m.categories[id] = &stored
	return id, nil
}

func (m *mockCategoryRepo) Get(ctx context.Context, userID, id int64) (*Category, error) {
	c, ok := m.categories[id]
	if !ok || c.UserID != userID {
		return nil, shared.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *mockCategoryRepo) List(ctx context.Context, userID int64) ([]Category, error) {
	out := make([]Category, 0)
	for _, c := range m.categories {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockCategoryRepo) Update(ctx context.Context, c *Category) error {
	stored, ok := m.categories[c.ID]
	if !ok || stored.UserID != c.UserID {
		return shared.ErrNotFound
	}
	copied := *c
	m.categories[c.ID] = &copied
	return nil
}

func (m *mockCategoryRepo) Delete(ctx context.Context, userID, id int64) error {
	c, ok := m.categories[id]
	if !ok || c.UserID != userID {
		return shared.ErrNotFound
	}
	delete(m.categories, id)
	return nil
}

func TestCreateNormalizesNameAndDefaultsColor(t *testing.T) {
	svc := NewService(newMockCategoryRepo())
	ctx := context.Background()

	c, err := svc.Create(ctx, 1, CreateCategoryRequest{Name: "  work errands ", Description: "chores"})
	require.NoError(t, err)
	assert.Equal(t, "Work Errands", c.Name)
	assert.Equal(t, "#FFFFFF", c.Color)
	assert.Equal(t, int64(1), c.UserID)
}

func TestCreateRejectsDuplicateNamePerOwner(t *testing.T) {
	svc := NewService(newMockCategoryRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, CreateCategoryRequest{Name: "Work", Description: "d"})
	require.NoError(t, err)

	// Different spelling, same normalized name.
	_, err = svc.Create(ctx, 1, CreateCategoryRequest{Name: "work", Description: "d"})
	assert.ErrorIs(t, err, ErrNameTaken)

	// Another owner may reuse the name.
	_, err = svc.Create(ctx, 2, CreateCategoryRequest{Name: "Work", Description: "d"})
	assert.NoError(t, err)
}

func TestGetEnforcesOwnership(t *testing.T) {
	svc := NewService(newMockCategoryRepo())
	ctx := context.Background()

	c, err := svc.Create(ctx, 1, CreateCategoryRequest{Name: "Work", Description: "d"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, 2, c.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateAppliesPartialChanges(t *testing.T) {
	svc := NewService(newMockCategoryRepo())
	ctx := context.Background()

	c, err := svc.Create(ctx, 1, CreateCategoryRequest{Name: "Work", Description: "d", Color: "#112233"})
	require.NoError(t, err)

	color := "#AABBCC"
	updated, err := svc.Update(ctx, 1, c.ID, UpdateCategoryRequest{Color: &color})
	require.NoError(t, err)
	assert.Equal(t, "Work", updated.Name)
	assert.Equal(t, "#AABBCC", updated.Color)
}

func TestDeleteEnforcesOwnership(t *testing.T) {
	repo := newMockCategoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	c, err := svc.Create(ctx, 1, CreateCategoryRequest{Name: "Work", Description: "d"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, 2, c.ID), shared.ErrNotFound)
	assert.NoError(t, svc.Delete(ctx, 1, c.ID))
}
