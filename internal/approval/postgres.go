package approval

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

const approvalColumns = `id, company_id, requester_id, approver_id, subject, description, entity_type, entity_id, status, decided_by, reason, decided_at, created_at, updated_at`

// PostgresStore persists approvals in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, a *Approval) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO approvals (`+approvalColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		uuid.UUID(a.ID), uuid.UUID(a.CompanyID), uuid.UUID(a.RequesterID),
		nullUser(a.ApproverID), a.Subject, a.Description, a.EntityType, a.EntityID,
		string(a.Status), nullUser(a.DecidedBy), a.Reason, a.DecidedAt,
		a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert approval: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, scope id.Scope, approvalID id.ApprovalID) (*Approval, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+approvalColumns+` FROM approvals
		WHERE id = $1 AND ($2 OR company_id = $3)`,
		uuid.UUID(approvalID), scope.All, uuid.UUID(scope.CompanyID))
	return scanApproval(row)
}

func (s *PostgresStore) List(ctx context.Context, scope id.Scope) ([]*Approval, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+approvalColumns+` FROM approvals
		WHERE $1 OR company_id = $2
		ORDER BY created_at DESC`,
		scope.All, uuid.UUID(scope.CompanyID))
	if err != nil {
		return nil, fmt.Errorf("list approvals: %w", err)
	}
	defer rows.Close()

	var out []*Approval
	for rows.Next() {
		a, err := scanApproval(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, scope id.Scope, a *Approval) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE approvals
		SET status = $4, decided_by = $5, reason = $6, decided_at = $7, updated_at = $8
		WHERE id = $1 AND ($2 OR company_id = $3)`,
		uuid.UUID(a.ID), scope.All, uuid.UUID(scope.CompanyID),
		string(a.Status), nullUser(a.DecidedBy), a.Reason, a.DecidedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update approval: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update approval: %w", err)
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

func scanApproval(row rowScanner) (*Approval, error) {
	var (
		a           Approval
		approvalID  uuid.UUID
		companyID   uuid.UUID
		requesterID uuid.UUID
		approverID  uuid.NullUUID
		decidedBy   uuid.NullUUID
		status      string
	)
	err := row.Scan(&approvalID, &companyID, &requesterID, &approverID,
		&a.Subject, &a.Description, &a.EntityType, &a.EntityID, &status,
		&decidedBy, &a.Reason, &a.DecidedAt, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan approval: %w", err)
	}
	a.ID = id.ApprovalID(approvalID)
	a.CompanyID = id.CompanyID(companyID)
	a.RequesterID = id.UserID(requesterID)
	if approverID.Valid {
		a.ApproverID = id.UserID(approverID.UUID)
	}
	if decidedBy.Valid {
		a.DecidedBy = id.UserID(decidedBy.UUID)
	}
	a.Status = Status(status)
	return &a, nil
}
