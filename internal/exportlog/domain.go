// Package exportlog keeps a history of report exports in Postgres.
package exportlog

import (
	"time"

	"github.com/google/uuid"
)

// Status values stored with each entry.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Entry is one export invocation.
type Entry struct {
	ID          uuid.UUID `json:"id"`
	Report      string    `json:"report"`
	Format      string    `json:"format"`
	Filename    string    `json:"filename,omitempty"`
	RowCount    int       `json:"row_count"`
	PeriodStart string    `json:"period_start,omitempty"`
	PeriodEnd   string    `json:"period_end,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
