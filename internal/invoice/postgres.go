package invoice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

const invoiceColumns = `id, company_id, customer_id, quote_id, title, amount_cents, status, due_at, paid_at, created_at, updated_at`

// PostgresStore persists invoices in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, i *Invoice) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		uuid.UUID(i.ID), uuid.UUID(i.CompanyID), uuid.UUID(i.CustomerID),
		nullQuote(i.QuoteID), i.Title, i.AmountCents, string(i.Status),
		i.DueAt, i.PaidAt, i.CreatedAt, i.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, scope id.Scope, invoiceID id.InvoiceID) (*Invoice, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+invoiceColumns+` FROM invoices
		WHERE id = $1 AND ($2 OR company_id = $3)`,
		uuid.UUID(invoiceID), scope.All, uuid.UUID(scope.CompanyID))
	return scanInvoice(row)
}

func (s *PostgresStore) List(ctx context.Context, scope id.Scope) ([]*Invoice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+invoiceColumns+` FROM invoices
		WHERE $1 OR company_id = $2
		ORDER BY created_at DESC`,
		scope.All, uuid.UUID(scope.CompanyID))
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var out []*Invoice
	for rows.Next() {
		i, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, scope id.Scope, i *Invoice) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE invoices
		SET customer_id = $4, title = $5, amount_cents = $6, status = $7, due_at = $8, paid_at = $9, updated_at = $10
		WHERE id = $1 AND ($2 OR company_id = $3)`,
		uuid.UUID(i.ID), scope.All, uuid.UUID(scope.CompanyID),
		uuid.UUID(i.CustomerID), i.Title, i.AmountCents, string(i.Status),
		i.DueAt, i.PaidAt, i.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func nullQuote(quoteID id.QuoteID) uuid.NullUUID {
	return uuid.NullUUID{UUID: uuid.UUID(quoteID), Valid: !quoteID.IsNil()}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (*Invoice, error) {
	var (
		i          Invoice
		invoiceID  uuid.UUID
		companyID  uuid.UUID
		customerID uuid.UUID
		quoteID    uuid.NullUUID
		status     string
	)
	err := row.Scan(&invoiceID, &companyID, &customerID, &quoteID, &i.Title,
		&i.AmountCents, &status, &i.DueAt, &i.PaidAt, &i.CreatedAt, &i.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan invoice: %w", err)
	}
	i.ID = id.InvoiceID(invoiceID)
	i.CompanyID = id.CompanyID(companyID)
	i.CustomerID = id.CustomerID(customerID)
	if quoteID.Valid {
		i.QuoteID = id.QuoteID(quoteID.UUID)
	}
	i.Status = Status(status)
	return &i, nil
}
