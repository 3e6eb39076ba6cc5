package jobs

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportEmail delivers a composed report email over SMTP.
	TaskReportEmail = "report:email"
	// TaskReportDigest rebuilds a report for a trailing window and mails it.
	TaskReportDigest = "report:digest"
)

// ReportEmailPayload is the message produced by the email sink.
type ReportEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Report  string `json:"report,omitempty"`
}

// NewReportEmailTask constructs an Asynq task.
func NewReportEmailTask(payload ReportEmailPayload) (*asynq.Task, error) {
	if strings.TrimSpace(payload.To) == "" {
		return nil, fmt.Errorf("report email: recipient required")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportEmail, data, asynq.MaxRetry(3)), nil
}

// ReportDigestPayload schedules a recurring report email.
type ReportDigestPayload struct {
	To           string `json:"to"`
	Report       string `json:"report"`
	LookbackDays int    `json:"lookback_days"`
}

// NewReportDigestTask constructs the scheduled digest task.
func NewReportDigestTask(to, report string, lookbackDays int) (*asynq.Task, error) {
	body, err := json.Marshal(ReportDigestPayload{To: to, Report: report, LookbackDays: lookbackDays})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportDigest, body, asynq.Queue(QueueDefault)), nil
}
