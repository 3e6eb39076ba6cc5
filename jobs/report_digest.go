package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/backoffice/internal/export"
	jobmetrics "github.com/odyssey-erp/backoffice/internal/jobs"
	"github.com/odyssey-erp/backoffice/internal/mailer"
)

// Composer builds the email rendition of a named report.
type Composer interface {
	ComposeEmail(ctx context.Context, report string, r export.DateRange) (export.Email, error)
}

// ReportDigestJob mails a report covering the trailing LookbackDays.
type ReportDigestJob struct {
	Composer Composer
	Sender   Sender
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
	clock    func() time.Time
}

// NewReportDigestJob wires dependencies for the digest handler.
func NewReportDigestJob(composer Composer, sender Sender, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportDigestJob {
	return &ReportDigestJob{
		Composer: composer,
		Sender:   sender,
		Logger:   logger,
		Metrics:  metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes TaskReportDigest tasks.
func (j *ReportDigestJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Composer == nil || j.Sender == nil {
		return errors.New("report digest: handler not configured")
	}
	var payload ReportDigestPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.To == "" || payload.Report == "" {
		return asynq.SkipRetry
	}

	tracker := metricsOrDefault(j.Metrics).Track(TaskReportDigest)
	logger := loggerFor(j.Logger, TaskReportDigest).With(slog.String("report", payload.Report))

	window := digestWindow(j.now(), payload.LookbackDays)
	email, err := j.Composer.ComposeEmail(ctx, payload.Report, window)
	if err != nil {
		logger.Error("compose digest", slog.Any("error", err))
		return tracker.End(err)
	}
	if err := j.Sender.Send(ctx, mailer.Message{To: payload.To, Subject: email.Subject, Body: email.Body}); err != nil {
		logger.Error("send digest", slog.Any("error", err))
		return tracker.End(err)
	}
	logger.Info("digest sent", slog.String("to", payload.To))
	return tracker.End(nil)
}

// digestWindow covers the lookback days ending today. A non-positive lookback
// means no bounds.
func digestWindow(now time.Time, lookbackDays int) export.DateRange {
	if lookbackDays <= 0 {
		return export.DateRange{}
	}
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -lookbackDays)
	return export.DateRange{Start: &start, End: &end}
}

func (j *ReportDigestJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
