package repository

import (
	"context"

	"ticketgate/internal/domain/ticket"
	"ticketgate/internal/infra"
	"ticketgate/internal/infra/db"
	"ticketgate/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type SubTicketRepository struct {
	db db.Querier
}

func NewSubTicketRepository(q db.Querier) *SubTicketRepository {
	return &SubTicketRepository{db: q}
}

func (r *SubTicketRepository) CreateBatch(ctx context.Context, tickets []ticket.SubTicket) error {
	const stmt = `
INSERT INTO sub_tickets
  (id, order_id, unit_id, unit_label, unit_kind, price_cents, validation_hash, status, issued_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	for _, t := range tickets {
		_, err := r.db.Exec(ctx, stmt,
			t.ID,
			t.OrderID,
			t.UnitID,
			t.UnitLabel,
			t.UnitKind,
			t.PriceCents,
			t.ValidationHash,
			t.Status.String(),
			t.IssuedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return infra.WrapRepoErr("sub-ticket already issued for unit", err, infra.KindDuplicateKey)
			}
			return infra.WrapRepoErr("failed to create sub-ticket", err)
		}
	}
	return nil
}

func (r *SubTicketRepository) FindByID(ctx context.Context, id uuid.UUID) (*ticket.SubTicket, error) {
	const query = `
SELECT id, order_id, unit_id, unit_label, unit_kind, price_cents, validation_hash, status, issued_at
FROM sub_tickets
WHERE id = $1`

	var (
		t      ticket.SubTicket
		status string
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.OrderID, &t.UnitID, &t.UnitLabel, &t.UnitKind,
		&t.PriceCents, &t.ValidationHash, &status, &t.IssuedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("sub-ticket not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find sub-ticket", err)
	}
	t.Status = ticket.RedemptionStatus(status)
	return &t, nil
}

func (r *SubTicketRepository) Redeem(ctx context.Context, id uuid.UUID) (int64, error) {
	const stmt = `
UPDATE sub_tickets
SET status = 'redeemed'
WHERE id = $1 AND status = 'issued'`

	tag, err := r.db.Exec(ctx, stmt, id)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to redeem sub-ticket", err)
	}
	return tag.RowsAffected(), nil
}

func (r *SubTicketRepository) VoidByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	const stmt = `
UPDATE sub_tickets
SET status = 'void'
WHERE order_id = $1 AND status = 'issued'`

	tag, err := r.db.Exec(ctx, stmt, orderID)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to void sub-tickets", err)
	}
	return tag.RowsAffected(), nil
}
