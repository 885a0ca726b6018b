package categories

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const defaultColor = "#FFFFFF"

var titleCaser = cases.Title(language.English)

// Service wraps category business rules.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// normalizeName trims and title-cases a category name so "work" and
// "Work " collapse into the same record for the owner.
func normalizeName(name string) string {
	return titleCaser.String(strings.TrimSpace(name))
}

// Create stores a new category for the owner.
func (s *Service) Create(ctx context.Context, userID int64, req CreateCategoryRequest) (*Category, error) {
	c := &Category{
		Name:        normalizeName(req.Name),
		Description: req.Description,
		Color:       req.Color,
		UserID:      userID,
	}
	if c.Color == "" {
		c.Color = defaultColor
	}
	id, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	c.ID = id
	return c, nil
}

// Get fetches one category owned by the user.
func (s *Service) Get(ctx context.Context, userID, id int64) (*Category, error) {
	return s.repo.Get(ctx, userID, id)
}

// List returns the user's categories ordered by name.
func (s *Service) List(ctx context.Context, userID int64) ([]Category, error) {
	return s.repo.List(ctx, userID)
}

// Update applies a partial update to an owned category.
func (s *Service) Update(ctx context.Context, userID, id int64, req UpdateCategoryRequest) (*Category, error) {
	c, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		c.Name = normalizeName(*req.Name)
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.Color != nil {
		c.Color = *req.Color
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes an owned category. Tasks referencing it cascade away at
// the database level.
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	return s.repo.Delete(ctx, userID, id)
}
