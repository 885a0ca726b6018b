package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeReminderScan is the task type for the due-task reminder sweep.
	TaskTypeReminderScan = "task:reminder_scan"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// ReminderScanPayload configures the reminder sweep window.
type ReminderScanPayload struct {
	WindowHours int `json:"window_hours"`
}

// NewReminderScanTask constructs an Asynq task for the reminder sweep.
func NewReminderScanTask(payload ReminderScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeReminderScan, data), nil
}

// NewSendEmailHandler builds the handler processing TaskTypeSendEmail tasks.
func NewSendEmailHandler(mailer Mailer, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SendEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.To == "" {
			return asynq.SkipRetry
		}
		if mailer == nil {
			return errors.New("send email: mailer not configured")
		}
		if err := mailer.Send(ctx, payload.To, payload.Subject, payload.Body); err != nil {
			if logger != nil {
				logger.Error("send email failed", slog.String("to", payload.To), slog.Any("error", err))
			}
			return err
		}
		if logger != nil {
			logger.Info("email sent", slog.String("to", payload.To), slog.String("subject", payload.Subject))
		}
		return nil
	}
}
