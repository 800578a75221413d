package readstore

import (
	"context"

	"ticketgate/internal/infra"
	"ticketgate/internal/infra/db"
	"ticketgate/internal/pkg/clock"
	"ticketgate/internal/pkg/pgconv"
	"ticketgate/internal/usecase/queries"

	"github.com/google/uuid"
)

type AvailabilityReadStore struct {
	db    db.Querier
	clock clock.Clock
}

func NewAvailabilityReadStore(q db.Querier, clk clock.Clock) *AvailabilityReadStore {
	return &AvailabilityReadStore{db: q, clock: clk}
}

// FindEventAvailability reports the effective status of every unit: a hold
// whose expiry has passed reads as available even before a sweep commits
// the release.
func (r *AvailabilityReadStore) FindEventAvailability(ctx context.Context, eventID uuid.UUID) (*queries.EventAvailabilityView, error) {
	const eventQuery = `SELECT id, name, starts_at FROM events WHERE id = $1 AND status = 'published'`

	now := r.clock.Now()

	view := &queries.EventAvailabilityView{GeneratedAt: now}
	err := r.db.QueryRow(ctx, eventQuery, eventID).Scan(&view.EventID, &view.Name, &view.StartsAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("event not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find event", err)
	}

	const unitQuery = `
SELECT
    u.label,
    u.kind,
    s.name,
    CASE
        WHEN u.status = 'held' AND u.hold_expires_at <= $2 THEN 'available'
        ELSE u.status
    END AS effective_status,
    u.price_cents
FROM inventory_units u
JOIN sections s ON s.id = u.section_id
WHERE u.event_id = $1
ORDER BY u.label`

	rows, err := r.db.Query(ctx, unitQuery, eventID, now)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load unit availability", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u queries.UnitAvailabilityView
		if err := rows.Scan(&u.Label, &u.Kind, &u.SectionName, &u.Status, &u.PriceCents); err != nil {
			return nil, infra.WrapRepoErr("failed to scan unit availability", err)
		}
		view.Units = append(view.Units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read unit availability", err)
	}
	return view, nil
}
