package readstore

import (
	"context"

	"ticketgate/internal/domain/ticket"
	"ticketgate/internal/infra"
	"ticketgate/internal/infra/db"
	"ticketgate/internal/pkg/pgconv"
	"ticketgate/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type OrderReadStore struct {
	db db.Querier
}

func NewOrderReadStore(q db.Querier) *OrderReadStore {
	return &OrderReadStore{db: q}
}

const orderViewQuery = `
SELECT id, event_id, session_id, buyer_name, buyer_email, status,
       declared_price_cents, external_payment_id, created_at, updated_at
FROM orders`

func (r *OrderReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.OrderView, error) {
	row := r.db.QueryRow(ctx, orderViewQuery+` WHERE id = $1`, id)

	view, err := scanOrderView(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order", err)
	}

	if err := r.attachDetails(ctx, view); err != nil {
		return nil, err
	}
	return view, nil
}

func (r *OrderReadStore) FindBySessionID(ctx context.Context, sessionID uuid.UUID) ([]*queries.OrderView, error) {
	rows, err := r.db.Query(ctx, orderViewQuery+` WHERE session_id = $1 ORDER BY created_at DESC`, sessionID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find orders by session", err)
	}
	defer rows.Close()

	var views []*queries.OrderView
	for rows.Next() {
		view, err := scanOrderView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan order", err)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read orders", err)
	}

	for _, view := range views {
		if err := r.attachDetails(ctx, view); err != nil {
			return nil, err
		}
	}
	return views, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrderView(row rowScanner) (*queries.OrderView, error) {
	var (
		v                 queries.OrderView
		externalPaymentID pgtype.Text
	)
	err := row.Scan(
		&v.ID, &v.EventID, &v.SessionID, &v.BuyerName, &v.BuyerEmail, &v.Status,
		&v.DeclaredPriceCents, &externalPaymentID, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	v.ExternalPaymentID = pgconv.StringPtrFromPgtype(externalPaymentID)
	return &v, nil
}

func (r *OrderReadStore) attachDetails(ctx context.Context, view *queries.OrderView) error {
	const unitQuery = `
SELECT ou.unit_id, u.label, ou.price_cents
FROM order_units ou
JOIN inventory_units u ON u.id = ou.unit_id
WHERE ou.order_id = $1
ORDER BY u.label`

	unitRows, err := r.db.Query(ctx, unitQuery, view.ID)
	if err != nil {
		return infra.WrapRepoErr("failed to load order units", err)
	}
	defer unitRows.Close()

	for unitRows.Next() {
		var u queries.OrderUnitView
		if err := unitRows.Scan(&u.UnitID, &u.Label, &u.PriceCents); err != nil {
			return infra.WrapRepoErr("failed to scan order unit", err)
		}
		view.Units = append(view.Units, u)
	}
	if err := unitRows.Err(); err != nil {
		return infra.WrapRepoErr("failed to read order units", err)
	}

	subTickets, err := loadSubTicketViews(ctx, r.db, view.ID)
	if err != nil {
		return err
	}
	view.SubTickets = subTickets
	return nil
}

func loadSubTicketViews(ctx context.Context, q db.Querier, orderID uuid.UUID) ([]queries.SubTicketView, error) {
	const query = `
SELECT id, order_id, unit_id, unit_label, unit_kind, price_cents, validation_hash, status, issued_at
FROM sub_tickets
WHERE order_id = $1
ORDER BY unit_label`

	rows, err := q.Query(ctx, query, orderID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load sub-tickets", err)
	}
	defer rows.Close()

	var views []queries.SubTicketView
	for rows.Next() {
		view, err := scanSubTicketView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan sub-ticket", err)
		}
		views = append(views, *view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read sub-tickets", err)
	}
	return views, nil
}

func scanSubTicketView(row rowScanner) (*queries.SubTicketView, error) {
	var (
		st     ticket.SubTicket
		status string
	)
	if err := row.Scan(
		&st.ID, &st.OrderID, &st.UnitID, &st.UnitLabel, &st.UnitKind,
		&st.PriceCents, &st.ValidationHash, &status, &st.IssuedAt,
	); err != nil {
		return nil, err
	}
	st.Status = ticket.RedemptionStatus(status)
	return &queries.SubTicketView{
		ID:        st.ID,
		UnitLabel: st.UnitLabel,
		Status:    st.Status.String(),
		Token:     ticket.EncodeToken(st),
		IssuedAt:  st.IssuedAt,
	}, nil
}
