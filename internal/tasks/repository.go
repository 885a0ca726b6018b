package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhive/taskhive/internal/platform/db"
	"github.com/taskhive/taskhive/internal/shared"
)

// ErrCategoryNotOwned indicates a task referencing a category the user
// does not own (or that does not exist).
var ErrCategoryNotOwned = errors.New("category does not belong to user")

// Repository defines persistence operations for tasks. Every operation is
// scoped by owner.
type Repository interface {
	Create(ctx context.Context, t *Task) (int64, error)
	Get(ctx context.Context, userID, id int64) (*Task, error)
	List(ctx context.Context, userID int64, limit, offset int) ([]Task, int, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, userID, id int64) error

	ListByStatus(ctx context.Context, userID int64, status string) ([]Task, error)
	ListByPriority(ctx context.Context, userID int64, priority Priority) ([]Task, error)
	ListByCategory(ctx context.Context, userID, categoryID int64) ([]Task, error)
	ListByCompletion(ctx context.Context, userID int64, completed bool) ([]Task, error)
	ListDueToday(ctx context.Context, userID int64) ([]Task, error)
	ListOverdue(ctx context.Context, userID int64) ([]Task, error)

	Stats(ctx context.Context, userID int64) (*Stats, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const taskColumns = `id, title, description, status, due_date, priority, completed, user_id, category_id, created_at, updated_at`

// Create inserts a task after verifying the referenced category belongs
// to the same user. Both steps run in one transaction so a concurrent
// category delete cannot slip between check and insert.
func (r *PGRepository) Create(ctx context.Context, t *Task) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := categoryOwned(ctx, tx, t.UserID, t.CategoryID); err != nil {
			return err
		}
		return tx.QueryRow(ctx,
			`INSERT INTO tasks (title, description, status, due_date, priority, completed, user_id, category_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
			t.Title, t.Description, t.Status, t.DueDate, t.Priority, t.Completed, t.UserID, t.CategoryID,
		).Scan(&id)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PGRepository) Get(ctx context.Context, userID, id int64) (*Task, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	return scanTask(row)
}

func (r *PGRepository) List(ctx context.Context, userID int64, limit, offset int) ([]Task, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM tasks WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	tasks, err := r.queryTasks(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 ORDER BY due_date, id LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// Update rewrites the task row, re-verifying category ownership when the
// category reference changed.
func (r *PGRepository) Update(ctx context.Context, t *Task) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := categoryOwned(ctx, tx, t.UserID, t.CategoryID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx,
			`UPDATE tasks SET title = $3, description = $4, status = $5, due_date = $6, priority = $7, completed = $8, category_id = $9, updated_at = NOW()
			 WHERE id = $1 AND user_id = $2`,
			t.ID, t.UserID, t.Title, t.Description, t.Status, t.DueDate, t.Priority, t.Completed, t.CategoryID,
		)
		if err != nil {
			return fmt.Errorf("tasks: update: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *PGRepository) Delete(ctx context.Context, userID, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("tasks: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) ListByStatus(ctx context.Context, userID int64, status string) ([]Task, error) {
	return r.queryTasks(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 AND status = $2 ORDER BY due_date, id`,
		userID, status)
}

func (r *PGRepository) ListByPriority(ctx context.Context, userID int64, priority Priority) ([]Task, error) {
	return r.queryTasks(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 AND priority = $2 ORDER BY due_date, id`,
		userID, priority)
}

func (r *PGRepository) ListByCategory(ctx context.Context, userID, categoryID int64) ([]Task, error) {
	return r.queryTasks(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 AND category_id = $2 ORDER BY due_date, id`,
		userID, categoryID)
}

func (r *PGRepository) ListByCompletion(ctx context.Context, userID int64, completed bool) ([]Task, error) {
	return r.queryTasks(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 AND completed = $2 ORDER BY due_date, id`,
		userID, completed)
}

func (r *PGRepository) ListDueToday(ctx context.Context, userID int64) ([]Task, error) {
	return r.queryTasks(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 AND due_date::date = CURRENT_DATE AND NOT completed ORDER BY due_date, id`,
		userID)
}

func (r *PGRepository) ListOverdue(ctx context.Context, userID int64) ([]Task, error) {
	return r.queryTasks(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 AND due_date < NOW() AND NOT completed ORDER BY due_date, id`,
		userID)
}

func (r *PGRepository) Stats(ctx context.Context, userID int64) (*Stats, error) {
	var s Stats
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE completed),
		       COUNT(*) FILTER (WHERE NOT completed),
		       COUNT(*) FILTER (WHERE NOT completed AND due_date < NOW()),
		       COUNT(*) FILTER (WHERE NOT completed AND due_date::date = CURRENT_DATE),
		       COUNT(*) FILTER (WHERE priority = 'HIGH' AND NOT completed)
		FROM tasks WHERE user_id = $1`, userID,
	).Scan(&s.Total, &s.Completed, &s.Pending, &s.Overdue, &s.DueToday, &s.High)
	if err != nil {
		return nil, fmt.Errorf("tasks: stats: %w", err)
	}
	return &s, nil
}

func (r *PGRepository) queryTasks(ctx context.Context, sql string, args ...any) ([]Task, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.DueDate, &t.Priority, &t.Completed, &t.UserID, &t.CategoryID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func categoryOwned(ctx context.Context, tx pgx.Tx, userID, categoryID int64) error {
	var owner int64
	err := tx.QueryRow(ctx, `SELECT user_id FROM categories WHERE id = $1`, categoryID).Scan(&owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCategoryNotOwned
		}
		return err
	}
	if owner != userID {
		return ErrCategoryNotOwned
	}
	return nil
}

func scanTask(row pgx.Row) (*Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.DueDate, &t.Priority, &t.Completed, &t.UserID, &t.CategoryID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

var _ Repository = (*PGRepository)(nil)
