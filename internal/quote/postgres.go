package quote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

const quoteColumns = `id, company_id, customer_id, deal_id, title, status, created_at, updated_at`

// PostgresStore persists quotes and their lines in PostgreSQL. Line writes
// happen inside the same transaction as the quote row.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, q *Quote) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO quotes (`+quoteColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.UUID(q.ID), uuid.UUID(q.CompanyID), uuid.UUID(q.CustomerID),
		nullDeal(q.DealID), q.Title, string(q.Status), q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert quote: %w", err)
	}
	if err := insertLines(ctx, tx, q); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *PostgresStore) FindByID(ctx context.Context, scope id.Scope, quoteID id.QuoteID) (*Quote, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+quoteColumns+` FROM quotes
		WHERE id = $1 AND ($2 OR company_id = $3)`,
		uuid.UUID(quoteID), scope.All, uuid.UUID(scope.CompanyID))
	q, err := scanQuote(row)
	if err != nil {
		return nil, err
	}
	if err := s.loadLines(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *PostgresStore) List(ctx context.Context, scope id.Scope) ([]*Quote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+quoteColumns+` FROM quotes
		WHERE $1 OR company_id = $2
		ORDER BY created_at DESC`,
		scope.All, uuid.UUID(scope.CompanyID))
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	defer rows.Close()

	var out []*Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, q := range out {
		if err := s.loadLines(ctx, q); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *PostgresStore) Update(ctx context.Context, scope id.Scope, q *Quote) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE quotes
		SET customer_id = $4, deal_id = $5, title = $6, status = $7, updated_at = $8
		WHERE id = $1 AND ($2 OR company_id = $3)`,
		uuid.UUID(q.ID), scope.All, uuid.UUID(scope.CompanyID),
		uuid.UUID(q.CustomerID), nullDeal(q.DealID), q.Title, string(q.Status), q.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update quote: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update quote: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM quote_lines WHERE quote_id = $1`, uuid.UUID(q.ID)); err != nil {
		return fmt.Errorf("clear quote lines: %w", err)
	}
	if err := insertLines(ctx, tx, q); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *PostgresStore) Delete(ctx context.Context, scope id.Scope, quoteID id.QuoteID) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM quotes
		WHERE id = $1 AND ($2 OR company_id = $3)`,
		uuid.UUID(quoteID), scope.All, uuid.UUID(scope.CompanyID),
	)
	if err != nil {
		return fmt.Errorf("delete quote: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete quote: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func insertLines(ctx context.Context, tx *sql.Tx, q *Quote) error {
	for i, l := range q.Lines {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO quote_lines (quote_id, position, description, quantity, unit_price_cents)
			VALUES ($1, $2, $3, $4, $5)`,
			uuid.UUID(q.ID), i, l.Description, l.Quantity, l.UnitPriceCents,
		)
		if err != nil {
			return fmt.Errorf("insert quote line: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) loadLines(ctx context.Context, q *Quote) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT description, quantity, unit_price_cents
		FROM quote_lines WHERE quote_id = $1 ORDER BY position`,
		uuid.UUID(q.ID))
	if err != nil {
		return fmt.Errorf("load quote lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.Description, &l.Quantity, &l.UnitPriceCents); err != nil {
			return fmt.Errorf("scan quote line: %w", err)
		}
		q.Lines = append(q.Lines, l)
	}
	return rows.Err()
}

func nullDeal(dealID id.DealID) uuid.NullUUID {
	return uuid.NullUUID{UUID: uuid.UUID(dealID), Valid: !dealID.IsNil()}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuote(row rowScanner) (*Quote, error) {
	var (
		q          Quote
		quoteID    uuid.UUID
		companyID  uuid.UUID
		customerID uuid.UUID
		dealID     uuid.NullUUID
		status     string
	)
	err := row.Scan(&quoteID, &companyID, &customerID, &dealID, &q.Title,
		&status, &q.CreatedAt, &q.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan quote: %w", err)
	}
	q.ID = id.QuoteID(quoteID)
	q.CompanyID = id.CompanyID(companyID)
	q.CustomerID = id.CustomerID(customerID)
	if dealID.Valid {
		q.DealID = id.DealID(dealID.UUID)
	}
	q.Status = Status(status)
	return &q, nil
}
