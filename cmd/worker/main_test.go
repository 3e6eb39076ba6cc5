package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/app"
	jobmetrics "github.com/odyssey-erp/backoffice/internal/jobs"
	"github.com/odyssey-erp/backoffice/internal/mailer"
	"github.com/odyssey-erp/backoffice/jobs"
	_ "github.com/odyssey-erp/backoffice/testing"
)

func TestMainReturnsInTestMode(t *testing.T) {
	if !app.InTestMode() {
		t.Fatal("expected test mode")
	}
	main()
}

type discardSender struct{}

func (discardSender) Send(context.Context, mailer.Message) error { return nil }

func TestMetricsServerExposesHandledJobs(t *testing.T) {
	metrics := jobmetrics.NewMetrics(prometheus.NewRegistry())
	job := jobs.NewReportEmailJob(discardSender{}, nil, metrics)
	task, err := jobs.NewReportEmailTask(jobs.ReportEmailPayload{To: "ops@example.com", Subject: "Sales Report", Body: "rows", Report: "sales"})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	srv := httptest.NewServer(newMetricsServer(":0", metrics).Handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `backoffice_jobs_total{job="report:email",status="success"} 1`)
	assert.Contains(t, string(body), `backoffice_job_duration_seconds_count{job="report:email"} 1`)

	health, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}
