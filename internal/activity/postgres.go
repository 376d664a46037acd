package activity

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
)

// PostgresStore persists the activity log in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed activity store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, e *Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_log (company_id, user_id, action, entity_type, entity_id, detail, at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.UUID(e.CompanyID), uuid.UUID(e.UserID), e.Action, e.EntityType, e.EntityID, e.Detail, e.At,
	)
	if err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByCompany(ctx context.Context, scope id.Scope, limit int) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT company_id, user_id, action, entity_type, entity_id, detail, at
		FROM activity_log
		WHERE $1 OR company_id = $2
		ORDER BY at DESC
		LIMIT $3`,
		scope.All, uuid.UUID(scope.CompanyID), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		var (
			e         Entry
			companyID uuid.UUID
			userID    uuid.UUID
		)
		if err := rows.Scan(&companyID, &userID, &e.Action, &e.EntityType, &e.EntityID, &e.Detail, &e.At); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		e.CompanyID = id.CompanyID(companyID)
		e.UserID = id.UserID(userID)
		out = append(out, &e)
	}
	return out, rows.Err()
}
