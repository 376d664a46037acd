package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

const taskColumns = `id, company_id, assignee_id, title, description, due_at, status, created_at, updated_at`

// PostgresStore persists tasks in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, t *Task) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.UUID(t.ID), uuid.UUID(t.CompanyID), nullUser(t.AssigneeID),
		t.Title, t.Description, t.DueAt, string(t.Status), t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, scope id.Scope, taskID id.TaskID) (*Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE id = $1 AND ($2 OR company_id = $3)`,
		uuid.UUID(taskID), scope.All, uuid.UUID(scope.CompanyID))
	return scanTask(row)
}

func (s *PostgresStore) List(ctx context.Context, scope id.Scope) ([]*Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE $1 OR company_id = $2
		ORDER BY created_at DESC`,
		scope.All, uuid.UUID(scope.CompanyID))
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, scope id.Scope, t *Task) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET assignee_id = $4, title = $5, description = $6, due_at = $7, status = $8, updated_at = $9
		WHERE id = $1 AND ($2 OR company_id = $3)`,
		uuid.UUID(t.ID), scope.All, uuid.UUID(scope.CompanyID),
		nullUser(t.AssigneeID), t.Title, t.Description, t.DueAt, string(t.Status), t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return requireAffected(res)
}

func (s *PostgresStore) Delete(ctx context.Context, scope id.Scope, taskID id.TaskID) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM tasks
		WHERE id = $1 AND ($2 OR company_id = $3)`,
		uuid.UUID(taskID), scope.All, uuid.UUID(scope.CompanyID),
	)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
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

func nullUser(userID id.UserID) uuid.NullUUID {
	return uuid.NullUUID{UUID: uuid.UUID(userID), Valid: !userID.IsNil()}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*Task, error) {
	var (
		t          Task
		taskID     uuid.UUID
		companyID  uuid.UUID
		assigneeID uuid.NullUUID
		status     string
	)
	err := row.Scan(&taskID, &companyID, &assigneeID, &t.Title, &t.Description,
		&t.DueAt, &status, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan task: %w", err)
	}
	t.ID = id.TaskID(taskID)
	t.CompanyID = id.CompanyID(companyID)
	if assigneeID.Valid {
		t.AssigneeID = id.UserID(assigneeID.UUID)
	}
	t.Status = Status(status)
	return &t, nil
}
