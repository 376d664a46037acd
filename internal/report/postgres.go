package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

// PostgresCache persists report snapshots in PostgreSQL.
type PostgresCache struct {
	db *sql.DB
}

func NewPostgresCache(db *sql.DB) *PostgresCache {
	return &PostgresCache{db: db}
}

func (c *PostgresCache) Get(ctx context.Context, reportType, scopeKey string) (*Entry, error) {
	var e Entry
	err := c.db.QueryRowContext(ctx, `
		SELECT report_type, scope_key, payload, computed_at
		FROM report_cache WHERE report_type = $1 AND scope_key = $2`,
		reportType, scopeKey,
	).Scan(&e.ReportType, &e.ScopeKey, &e.Payload, &e.ComputedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report cache entry: %w", err)
	}
	return &e, nil
}

func (c *PostgresCache) Put(ctx context.Context, e *Entry) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO report_cache (report_type, scope_key, payload, computed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (report_type, scope_key)
		DO UPDATE SET payload = EXCLUDED.payload, computed_at = EXCLUDED.computed_at`,
		e.ReportType, e.ScopeKey, []byte(e.Payload), e.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("put report cache entry: %w", err)
	}
	return nil
}
