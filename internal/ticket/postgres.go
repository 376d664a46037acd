package ticket

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

const ticketColumns = `id, company_id, customer_id, assignee_id, subject, body, priority, status, resolved_at, created_at, updated_at`

// PostgresStore persists tickets in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, t *Ticket) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tickets (`+ticketColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		uuid.UUID(t.ID), uuid.UUID(t.CompanyID), nullCustomer(t.CustomerID),
		nullUser(t.AssigneeID), t.Subject, t.Body, string(t.Priority),
		string(t.Status), t.ResolvedAt, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, scope id.Scope, ticketID id.TicketID) (*Ticket, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+ticketColumns+` FROM tickets
		WHERE id = $1 AND ($2 OR company_id = $3)`,
		uuid.UUID(ticketID), scope.All, uuid.UUID(scope.CompanyID))
	return scanTicket(row)
}

func (s *PostgresStore) List(ctx context.Context, scope id.Scope) ([]*Ticket, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+ticketColumns+` FROM tickets
		WHERE $1 OR company_id = $2
		ORDER BY created_at DESC`,
		scope.All, uuid.UUID(scope.CompanyID))
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	var out []*Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, scope id.Scope, t *Ticket) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tickets
		SET customer_id = $4, assignee_id = $5, subject = $6, body = $7,
		    priority = $8, status = $9, resolved_at = $10, updated_at = $11
		WHERE id = $1 AND ($2 OR company_id = $3)`,
		uuid.UUID(t.ID), scope.All, uuid.UUID(scope.CompanyID),
		nullCustomer(t.CustomerID), nullUser(t.AssigneeID), t.Subject, t.Body,
		string(t.Priority), string(t.Status), t.ResolvedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update ticket: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update ticket: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func nullCustomer(customerID id.CustomerID) uuid.NullUUID {
	return uuid.NullUUID{UUID: uuid.UUID(customerID), Valid: !customerID.IsNil()}
}

func nullUser(userID id.UserID) uuid.NullUUID {
	return uuid.NullUUID{UUID: uuid.UUID(userID), Valid: !userID.IsNil()}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*Ticket, error) {
	var (
		t          Ticket
		ticketID   uuid.UUID
		companyID  uuid.UUID
		customerID uuid.NullUUID
		assigneeID uuid.NullUUID
		priority   string
		status     string
	)
	err := row.Scan(&ticketID, &companyID, &customerID, &assigneeID,
		&t.Subject, &t.Body, &priority, &status, &t.ResolvedAt, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan ticket: %w", err)
	}
	t.ID = id.TicketID(ticketID)
	t.CompanyID = id.CompanyID(companyID)
	if customerID.Valid {
		t.CustomerID = id.CustomerID(customerID.UUID)
	}
	if assigneeID.Valid {
		t.AssigneeID = id.UserID(assigneeID.UUID)
	}
	t.Priority = Priority(priority)
	t.Status = Status(status)
	return &t, nil
}
