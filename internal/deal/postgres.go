package deal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

const dealColumns = `id, company_id, customer_id, owner_id, title, amount_cents, stage, closed_at, created_at, updated_at`

// PostgresStore persists deals in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, d *Deal) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO deals (`+dealColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uuid.UUID(d.ID), uuid.UUID(d.CompanyID), uuid.UUID(d.CustomerID),
		nullUser(d.OwnerID), d.Title, d.AmountCents, string(d.Stage),
		d.ClosedAt, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert deal: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, scope id.Scope, dealID id.DealID) (*Deal, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+dealColumns+` FROM deals
		WHERE id = $1 AND ($2 OR company_id = $3)`,
		uuid.UUID(dealID), scope.All, uuid.UUID(scope.CompanyID))
	return scanDeal(row)
}

func (s *PostgresStore) List(ctx context.Context, scope id.Scope) ([]*Deal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+dealColumns+` FROM deals
		WHERE $1 OR company_id = $2
		ORDER BY created_at DESC`,
		scope.All, uuid.UUID(scope.CompanyID))
	if err != nil {
		return nil, fmt.Errorf("list deals: %w", err)
	}
	defer rows.Close()

	var out []*Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, scope id.Scope, d *Deal) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE deals
		SET owner_id = $4, title = $5, amount_cents = $6, stage = $7, closed_at = $8, updated_at = $9
		WHERE id = $1 AND ($2 OR company_id = $3)`,
		uuid.UUID(d.ID), scope.All, uuid.UUID(scope.CompanyID),
		nullUser(d.OwnerID), d.Title, d.AmountCents, string(d.Stage),
		d.ClosedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update deal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update deal: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func nullUser(userID id.UserID) uuid.NullUUID {
	return uuid.NullUUID{UUID: uuid.UUID(userID), Valid: !userID.IsNil()}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeal(row rowScanner) (*Deal, error) {
	var (
		d          Deal
		dealID     uuid.UUID
		companyID  uuid.UUID
		customerID uuid.UUID
		ownerID    uuid.NullUUID
		stage      string
	)
	err := row.Scan(&dealID, &companyID, &customerID, &ownerID, &d.Title,
		&d.AmountCents, &stage, &d.ClosedAt, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan deal: %w", err)
	}
	d.ID = id.DealID(dealID)
	d.CompanyID = id.CompanyID(companyID)
	d.CustomerID = id.CustomerID(customerID)
	if ownerID.Valid {
		d.OwnerID = id.UserID(ownerID.UUID)
	}
	d.Stage = Stage(stage)
	return &d, nil
}
