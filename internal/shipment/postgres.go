package shipment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "github.com/icnevudila/crm-sub011/pkg/domain"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

const shipmentColumns = `id, company_id, customer_id, invoice_id, carrier, tracking_no, address, status, dispatched_at, delivered_at, created_at, updated_at`

// PostgresStore persists shipments in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, sh *Shipment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shipments (`+shipmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		uuid.UUID(sh.ID), uuid.UUID(sh.CompanyID), uuid.UUID(sh.CustomerID),
		nullInvoice(sh.InvoiceID), sh.Carrier, sh.TrackingNo, sh.Address,
		string(sh.Status), sh.DispatchedAt, sh.DeliveredAt, sh.CreatedAt, sh.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert shipment: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, scope id.Scope, shipmentID id.ShipmentID) (*Shipment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+shipmentColumns+` FROM shipments
		WHERE id = $1 AND ($2 OR company_id = $3)`,
		uuid.UUID(shipmentID), scope.All, uuid.UUID(scope.CompanyID))
	return scanShipment(row)
}

func (s *PostgresStore) List(ctx context.Context, scope id.Scope) ([]*Shipment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+shipmentColumns+` FROM shipments
		WHERE $1 OR company_id = $2
		ORDER BY created_at DESC`,
		scope.All, uuid.UUID(scope.CompanyID))
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	defer rows.Close()

	var out []*Shipment
	for rows.Next() {
		sh, err := scanShipment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, scope id.Scope, sh *Shipment) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE shipments
		SET carrier = $4, tracking_no = $5, address = $6, status = $7,
		    dispatched_at = $8, delivered_at = $9, updated_at = $10
		WHERE id = $1 AND ($2 OR company_id = $3)`,
		uuid.UUID(sh.ID), scope.All, uuid.UUID(scope.CompanyID),
		sh.Carrier, sh.TrackingNo, sh.Address, string(sh.Status),
		sh.DispatchedAt, sh.DeliveredAt, sh.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update shipment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update shipment: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func nullInvoice(invoiceID id.InvoiceID) uuid.NullUUID {
	return uuid.NullUUID{UUID: uuid.UUID(invoiceID), Valid: !invoiceID.IsNil()}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShipment(row rowScanner) (*Shipment, error) {
	var (
		sh         Shipment
		shipmentID uuid.UUID
		companyID  uuid.UUID
		customerID uuid.UUID
		invoiceID  uuid.NullUUID
		status     string
	)
	err := row.Scan(&shipmentID, &companyID, &customerID, &invoiceID,
		&sh.Carrier, &sh.TrackingNo, &sh.Address, &status,
		&sh.DispatchedAt, &sh.DeliveredAt, &sh.CreatedAt, &sh.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan shipment: %w", err)
	}
	sh.ID = id.ShipmentID(shipmentID)
	sh.CompanyID = id.CompanyID(companyID)
	sh.CustomerID = id.CustomerID(customerID)
	if invoiceID.Valid {
		sh.InvoiceID = id.InvoiceID(invoiceID.UUID)
	}
	sh.Status = Status(status)
	return &sh, nil
}
