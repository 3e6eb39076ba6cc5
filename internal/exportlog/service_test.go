package exportlog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	inserted  []Entry
	insertErr error
	limit     int
}

func (m *mockRepo) Insert(ctx context.Context, e Entry) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted = append(m.inserted, e)
	return nil
}

func (m *mockRepo) Recent(ctx context.Context, limit int) ([]Entry, error) {
	m.limit = limit
	return m.inserted, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecordFillsDefaults(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, quietLogger())
	svc.now = func() time.Time { return time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC) }

	svc.Record(context.Background(), Entry{Report: "sales", Format: "csv", RowCount: 3})

	require.Len(t, repo.inserted, 1)
	got := repo.inserted[0]
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, StatusOK, got.Status)
	assert.Equal(t, 2024, got.CreatedAt.Year())
}

func TestRecordSwallowsRepositoryErrors(t *testing.T) {
	repo := &mockRepo{insertErr: errors.New("db down")}
	svc := NewService(repo, quietLogger())
	assert.NotPanics(t, func() {
		svc.Record(context.Background(), Entry{Report: "sales", Format: "pdf"})
	})
}

func TestRecentClampsLimit(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, quietLogger())

	_, err := svc.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, defaultRecent, repo.limit)

	_, err = svc.Recent(context.Background(), 10_000)
	require.NoError(t, err)
	assert.Equal(t, maxRecent, repo.limit)
}

func TestNilRepository(t *testing.T) {
	svc := NewService(nil, quietLogger())
	svc.Record(context.Background(), Entry{Report: "sales"})
	entries, err := svc.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
