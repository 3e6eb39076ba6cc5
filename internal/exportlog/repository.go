package exportlog

import (
	"context"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/backoffice/internal/platform/db"
	"github.com/odyssey-erp/backoffice/migrations"
)

// Repository persists export entries.
type Repository interface {
	Insert(ctx context.Context, entry Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns the Postgres repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) Insert(ctx context.Context, e Entry) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO export_history (id, report, format, filename, row_count, period_start, period_end, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.Report, e.Format, e.Filename, e.RowCount, e.PeriodStart, e.PeriodEnd, e.Status, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("exportlog: insert: %w", err)
	}
	return nil
}

func (r *pgRepository) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, report, format, filename, row_count, period_start, period_end, status, created_at
FROM export_history ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("exportlog: query recent: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Report, &e.Format, &e.Filename, &e.RowCount, &e.PeriodStart, &e.PeriodEnd, &e.Status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("exportlog: scan: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// EnsureSchema applies the embedded migrations in file order.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	names, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)
	return db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		for _, name := range names {
			stmt, err := fs.ReadFile(migrations.FS, name)
			if err != nil {
				return fmt.Errorf("exportlog: read %s: %w", name, err)
			}
			if _, err := tx.Exec(ctx, string(stmt)); err != nil {
				return fmt.Errorf("exportlog: apply %s: %w", name, err)
			}
		}
		return nil
	})
}
