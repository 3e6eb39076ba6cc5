package exportlog

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	defaultRecent = 20
	maxRecent     = 200
)

// Service records exports. Recording never fails the caller.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the service. A nil repo turns Record into a log line only.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Record stores entry, filling ID, CreatedAt and Status when unset.
func (s *Service) Record(ctx context.Context, entry Entry) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	}
	if entry.Status == "" {
		entry.Status = StatusOK
	}
	s.logger.Info("report exported",
		slog.String("report", entry.Report),
		slog.String("format", entry.Format),
		slog.String("status", entry.Status),
		slog.Int("rows", entry.RowCount),
	)
	if s.repo == nil {
		return
	}
	if err := s.repo.Insert(ctx, entry); err != nil {
		s.logger.Warn("record export", slog.String("report", entry.Report), slog.Any("error", err))
	}
}

// Recent lists the latest entries, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultRecent
	}
	if limit > maxRecent {
		limit = maxRecent
	}
	if s.repo == nil {
		return []Entry{}, nil
	}
	return s.repo.Recent(ctx, limit)
}
