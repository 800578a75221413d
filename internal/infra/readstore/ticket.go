package readstore

import (
	"context"

	"ticketgate/internal/infra"
	"ticketgate/internal/infra/db"
	"ticketgate/internal/pkg/pgconv"
	"ticketgate/internal/usecase/queries"

	"github.com/google/uuid"
)

type TicketReadStore struct {
	db db.Querier
}

func NewTicketReadStore(q db.Querier) *TicketReadStore {
	return &TicketReadStore{db: q}
}

func (r *TicketReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.SubTicketView, error) {
	const query = `
SELECT id, order_id, unit_id, unit_label, unit_kind, price_cents, validation_hash, status, issued_at
FROM sub_tickets
WHERE id = $1`

	view, err := scanSubTicketView(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("sub-ticket not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find sub-ticket", err)
	}
	return view, nil
}

func (r *TicketReadStore) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]*queries.SubTicketView, error) {
	views, err := loadSubTicketViews(ctx, r.db, orderID)
	if err != nil {
		return nil, err
	}
	result := make([]*queries.SubTicketView, len(views))
	for i := range views {
		result[i] = &views[i]
	}
	return result, nil
}
