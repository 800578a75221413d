package readstore

import (
	"context"

	"ticketgate/internal/infra"
	"ticketgate/internal/infra/db"
	"ticketgate/internal/pkg/pgconv"
	"ticketgate/internal/usecase/queries"

	"github.com/google/uuid"
)

type EventReadStore struct {
	db db.Querier
}

func NewEventReadStore(q db.Querier) *EventReadStore {
	return &EventReadStore{db: q}
}

const eventViewQuery = `
SELECT e.id, e.organizer_id, e.name, e.starts_at, e.status, e.created_at,
       (SELECT COUNT(*) FROM inventory_units u WHERE u.event_id = e.id) AS unit_count
FROM events e`

func (r *EventReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.EventView, error) {
	var v queries.EventView
	err := r.db.QueryRow(ctx, eventViewQuery+` WHERE e.id = $1`, id).Scan(
		&v.ID, &v.OrganizerID, &v.Name, &v.StartsAt, &v.Status, &v.CreatedAt, &v.RequiredUnits,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("event not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find event", err)
	}
	return &v, nil
}

func (r *EventReadStore) FindByOrganizerID(ctx context.Context, organizerID uuid.UUID) ([]*queries.EventView, error) {
	rows, err := r.db.Query(ctx, eventViewQuery+` WHERE e.organizer_id = $1 ORDER BY e.created_at DESC`, organizerID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find events by organizer", err)
	}
	defer rows.Close()

	var views []*queries.EventView
	for rows.Next() {
		var v queries.EventView
		if err := rows.Scan(
			&v.ID, &v.OrganizerID, &v.Name, &v.StartsAt, &v.Status, &v.CreatedAt, &v.RequiredUnits,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan event", err)
		}
		views = append(views, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read events", err)
	}
	return views, nil
}

// CountRequiredUnits derives the cardinality from the section layout so it
// is answerable for draft events that have no units yet.
func (r *EventReadStore) CountRequiredUnits(ctx context.Context, id uuid.UUID) (int, error) {
	const query = `
SELECT COALESCE(SUM(
    CASE WHEN kind = 'seat' THEN (row_end - row_start + 1) * seats_per_row
         ELSE capacity
    END), 0)
FROM sections
WHERE event_id = $1`

	var count int
	if err := r.db.QueryRow(ctx, query, id).Scan(&count); err != nil {
		return 0, infra.WrapRepoErr("failed to count required units", err)
	}
	return count, nil
}
