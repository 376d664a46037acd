package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

// PostgresStore persists notifications in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed notification store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, n *Notification) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, company_id, user_id, kind, title, body, read_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.UUID(n.ID), uuid.UUID(n.CompanyID), uuid.UUID(n.UserID),
		string(n.Kind), n.Title, n.Body, n.ReadAt, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID id.UserID, unreadOnly bool) ([]*Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, company_id, user_id, kind, title, body, read_at, created_at
		FROM notifications
		WHERE user_id = $1 AND (NOT $2 OR read_at IS NULL)
		ORDER BY created_at DESC`,
		uuid.UUID(userID), unreadOnly,
	)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []*Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *PostgresStore) FindByID(ctx context.Context, notificationID id.NotificationID) (*Notification, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, company_id, user_id, kind, title, body, read_at, created_at
		FROM notifications WHERE id = $1`, uuid.UUID(notificationID))
	return scanNotification(row)
}

func (s *PostgresStore) MarkRead(ctx context.Context, notificationID id.NotificationID, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read_at = $2 WHERE id = $1`, uuid.UUID(notificationID), at)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) MarkAllRead(ctx context.Context, userID id.UserID, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read_at = $2 WHERE user_id = $1 AND read_at IS NULL`,
		uuid.UUID(userID), at)
	if err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner) (*Notification, error) {
	var (
		n              Notification
		notificationID uuid.UUID
		companyID      uuid.UUID
		userID         uuid.UUID
		kind           string
		readAt         sql.NullTime
	)
	err := row.Scan(&notificationID, &companyID, &userID, &kind, &n.Title, &n.Body, &readAt, &n.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan notification: %w", err)
	}
	n.ID = id.NotificationID(notificationID)
	n.CompanyID = id.CompanyID(companyID)
	n.UserID = id.UserID(userID)
	n.Kind = Kind(kind)
	if readAt.Valid {
		n.ReadAt = &readAt.Time
	}
	return &n, nil
}
