package customer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

const customerColumns = `id, company_id, name, email, phone, address, notes, created_at, updated_at`

// PostgresStore persists customers in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, c *Customer) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (`+customerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.UUID(c.ID), uuid.UUID(c.CompanyID), c.Name, c.Email, c.Phone,
		c.Address, c.Notes, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, scope id.Scope, customerID id.CustomerID) (*Customer, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+customerColumns+` FROM customers
		WHERE id = $1 AND ($2 OR company_id = $3)`,
		uuid.UUID(customerID), scope.All, uuid.UUID(scope.CompanyID))
	return scanCustomer(row)
}

func (s *PostgresStore) List(ctx context.Context, scope id.Scope) ([]*Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+customerColumns+` FROM customers
		WHERE $1 OR company_id = $2
		ORDER BY name`,
		scope.All, uuid.UUID(scope.CompanyID))
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var out []*Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, scope id.Scope, c *Customer) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE customers
		SET name = $4, email = $5, phone = $6, address = $7, notes = $8, updated_at = $9
		WHERE id = $1 AND ($2 OR company_id = $3)`,
		uuid.UUID(c.ID), scope.All, uuid.UUID(scope.CompanyID),
		c.Name, c.Email, c.Phone, c.Address, c.Notes, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	return requireAffected(res)
}

func (s *PostgresStore) Delete(ctx context.Context, scope id.Scope, customerID id.CustomerID) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM customers
		WHERE id = $1 AND ($2 OR company_id = $3)`,
		uuid.UUID(customerID), scope.All, uuid.UUID(scope.CompanyID),
	)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (*Customer, error) {
	var (
		c          Customer
		customerID uuid.UUID
		companyID  uuid.UUID
	)
	err := row.Scan(&customerID, &companyID, &c.Name, &c.Email, &c.Phone,
		&c.Address, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan customer: %w", err)
	}
	c.ID = id.CustomerID(customerID)
	c.CompanyID = id.CompanyID(companyID)
	return &c, nil
}
