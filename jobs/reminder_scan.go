package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/taskhive/taskhive/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// ReminderScanJob finds tasks coming due and queues a reminder email per task.
type ReminderScanJob struct {
	Pool    *pgxpool.Pool
	Client  *Client
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewReminderScanJob initialises the reminder sweep handler.
func NewReminderScanJob(pool *pgxpool.Pool, client *Client, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReminderScanJob {
	return &ReminderScanJob{
		Pool:    pool,
		Client:  client,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

type reminderRow struct {
	TaskID  int64
	Title   string
	DueDate time.Time
	Email   string
	Name    string
}

// Handle executes the reminder sweep.
func (j *ReminderScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("reminder scan: handler not configured")
	}
	var payload ReminderScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.WindowHours <= 0 {
		payload.WindowHours = 24
	}

	start := j.now()
	tracker := j.metrics().Track(TaskTypeReminderScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Int("window_hours", payload.WindowHours))
	logger.Info("starting reminder scan")

	rows, err := j.scan(ctx, start, time.Duration(payload.WindowHours)*time.Hour)
	if err != nil {
		resultErr = err
		logger.Error("scan failed", slog.Any("error", err))
		return resultErr
	}

	queued := 0
	for _, row := range rows {
		subject := fmt.Sprintf("Reminder: %q is due soon", row.Title)
		body := fmt.Sprintf(
			"Hi %s,\n\nYour task %q is due %s.\n\n— TaskHive",
			row.Name, row.Title, row.DueDate.Format("Mon, 02 Jan 2006 15:04 MST"),
		)
		if _, err := j.Client.EnqueueSendEmail(ctx, SendEmailPayload{
			To:      row.Email,
			Subject: subject,
			Body:    body,
		}); err != nil {
			logger.Warn("enqueue reminder failed",
				slog.Int64("task_id", row.TaskID),
				slog.Any("error", err),
			)
			continue
		}
		queued++
	}
	j.metrics().AddReminders(queued)

	logger.Info("completed reminder scan",
		slog.Int("due", len(rows)),
		slog.Int("queued", queued),
		slog.Duration("duration", time.Since(start)),
	)
	return resultErr
}

func (j *ReminderScanJob) scan(ctx context.Context, now time.Time, window time.Duration) ([]reminderRow, error) {
	if j.Pool == nil {
		return nil, errors.New("reminder scan: pool not configured")
	}
	if j.Client == nil {
		return nil, errors.New("reminder scan: client not configured")
	}
	rows, err := j.Pool.Query(ctx, `
		SELECT t.id, t.title, t.due_date, u.email, u.fullname
		FROM tasks t
		JOIN users u ON u.id = t.user_id
		WHERE NOT t.completed
		  AND u.is_active
		  AND t.due_date BETWEEN $1 AND $2
		ORDER BY t.due_date`,
		now, now.Add(window))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]reminderRow, 0)
	for rows.Next() {
		var row reminderRow
		if err := rows.Scan(&row.TaskID, &row.Title, &row.DueDate, &row.Email, &row.Name); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (j *ReminderScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *ReminderScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeReminderScan))
	}
	return slog.Default().With(slog.String("job", TaskTypeReminderScan))
}

func (j *ReminderScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
