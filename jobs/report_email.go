package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/backoffice/internal/jobs"
	"github.com/odyssey-erp/backoffice/internal/mailer"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// ReportEmailJob sends queued report emails.
type ReportEmailJob struct {
	Sender  Sender
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewReportEmailJob wires dependencies for the email handler.
func NewReportEmailJob(sender Sender, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportEmailJob {
	return &ReportEmailJob{Sender: sender, Logger: logger, Metrics: metrics}
}

// Handle processes TaskReportEmail tasks.
func (j *ReportEmailJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Sender == nil {
		return errors.New("report email: handler not configured")
	}
	var payload ReportEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if strings.TrimSpace(payload.To) == "" {
		return asynq.SkipRetry
	}

	tracker := metricsOrDefault(j.Metrics).Track(TaskReportEmail)
	logger := loggerFor(j.Logger, TaskReportEmail).With(slog.String("report", payload.Report))

	err := j.Sender.Send(ctx, mailer.Message{To: payload.To, Subject: payload.Subject, Body: payload.Body})
	if errors.Is(err, mailer.ErrInvalidRecipient) {
		logger.Warn("drop report email", slog.Any("error", err))
		return tracker.End(asynq.SkipRetry)
	}
	if err != nil {
		logger.Error("send report email", slog.Any("error", err))
		return tracker.End(err)
	}
	logger.Info("report email sent", slog.Int("bytes", len(payload.Body)))
	return tracker.End(nil)
}

func loggerFor(logger *slog.Logger, job string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(slog.String("job", job))
}

func metricsOrDefault(m *jobmetrics.Metrics) *jobmetrics.Metrics {
	if m != nil {
		return m
	}
	return defaultJobMetrics
}
