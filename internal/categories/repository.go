package categories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhive/taskhive/internal/shared"
)

// ErrNameTaken indicates a duplicate category name for the same owner.
var ErrNameTaken = errors.New("category name already in use")

const uniqueViolation = "23505"

// Repository defines persistence operations for categories. All lookups
// are scoped by owner so one user can never read another's categories.
type Repository interface {
	Create(ctx context.Context, c *Category) (int64, error)
	Get(ctx context.Context, userID, id int64) (*Category, error)
	List(ctx context.Context, userID int64) ([]Category, error)
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, userID, id int64) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const categoryColumns = `id, name, description, color, user_id, created_at, updated_at`

func (r *PGRepository) Create(ctx context.Context, c *Category) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO categories (name, description, color, user_id) VALUES ($1, $2, $3, $4) RETURNING id`,
		c.Name, c.Description, c.Color, c.UserID,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, ErrNameTaken
		}
		return 0, fmt.Errorf("categories: create: %w", err)
	}
	return id, nil
}

func (r *PGRepository) Get(ctx context.Context, userID, id int64) (*Category, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
	return scanCategory(row)
}

func (r *PGRepository) List(ctx context.Context, userID int64) ([]Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Color, &c.UserID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PGRepository) Update(ctx context.Context, c *Category) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE categories SET name = $3, description = $4, color = $5, updated_at = NOW() WHERE id = $1 AND user_id = $2`,
		c.ID, c.UserID, c.Name, c.Description, c.Color,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrNameTaken
		}
		return fmt.Errorf("categories: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, userID, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("categories: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanCategory(row pgx.Row) (*Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Color, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

var _ Repository = (*PGRepository)(nil)
