package repository

import (
	"context"
	"time"

	"ticketgate/internal/domain/order"
	"ticketgate/internal/infra"
	"ticketgate/internal/infra/db"
	"ticketgate/internal/pkg/pgconv"
	"ticketgate/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type OrderRepository struct {
	db db.Querier
}

func NewOrderRepository(q db.Querier) *OrderRepository {
	return &OrderRepository{db: q}
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order, units []shared.OrderUnit) error {
	const orderStmt = `
INSERT INTO orders
  (id, event_id, session_id, buyer_name, buyer_email, declared_price_cents, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, orderStmt,
		o.ID(),
		o.EventID(),
		o.SessionID(),
		o.Buyer().Name(),
		o.Buyer().Email(),
		o.DeclaredPriceCents(),
		o.Status().String(),
		o.CreatedAt(),
		o.UpdatedAt(),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return infra.WrapRepoErr("order references missing event", err, infra.KindForeignKeyViolated)
		}
		return infra.WrapRepoErr("failed to create order", err)
	}

	const unitStmt = `
INSERT INTO order_units (order_id, unit_id, price_cents)
VALUES ($1, $2, $3)`

	for _, u := range units {
		if _, err := r.db.Exec(ctx, unitStmt, o.ID(), u.UnitID, u.PriceCents); err != nil {
			return infra.WrapRepoErr("failed to create order unit", err)
		}
	}
	return nil
}

func (r *OrderRepository) FindForUpdate(ctx context.Context, id uuid.UUID) (*shared.OrderSnapshot, error) {
	const query = `
SELECT id, event_id, session_id, status, declared_price_cents, external_payment_id
FROM orders
WHERE id = $1
FOR UPDATE`

	var (
		s                 shared.OrderSnapshot
		externalPaymentID pgtype.Text
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.EventID, &s.SessionID, &s.Status, &s.DeclaredPriceCents, &externalPaymentID,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock order", err)
	}
	s.ExternalPaymentID = pgconv.StringPtrFromPgtype(externalPaymentID)

	const unitQuery = `SELECT unit_id FROM order_units WHERE order_id = $1 ORDER BY unit_id`
	rows, err := r.db.Query(ctx, unitQuery, id)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load order units", err)
	}
	defer rows.Close()

	for rows.Next() {
		var unitID uuid.UUID
		if err := rows.Scan(&unitID); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order unit", err)
		}
		s.UnitIDs = append(s.UnitIDs, unitID)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read order units", err)
	}
	return &s, nil
}

func (r *OrderRepository) MarkPaid(ctx context.Context, id uuid.UUID, externalPaymentID string, now time.Time) (int64, error) {
	const stmt = `
UPDATE orders
SET status = 'paid', external_payment_id = $2, updated_at = $3
WHERE id = $1 AND status = 'pending'`

	tag, err := r.db.Exec(ctx, stmt, id, externalPaymentID, now)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to mark order paid", err)
	}
	return tag.RowsAffected(), nil
}

func (r *OrderRepository) MarkCancelled(ctx context.Context, id uuid.UUID, reason string, now time.Time) (int64, error) {
	const stmt = `
UPDATE orders
SET status = 'cancelled', cancel_reason = $2, updated_at = $3
WHERE id = $1 AND status = 'pending'`

	tag, err := r.db.Exec(ctx, stmt, id, reason, now)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to mark order cancelled", err)
	}
	return tag.RowsAffected(), nil
}
