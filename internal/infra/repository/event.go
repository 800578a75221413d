package repository

import (
	"context"

	"ticketgate/internal/domain/event"
	"ticketgate/internal/infra"
	"ticketgate/internal/infra/db"
	"ticketgate/internal/pkg/pgconv"
	"ticketgate/internal/usecase/shared"

	"github.com/google/uuid"
)

type EventRepository struct {
	db db.Querier
}

func NewEventRepository(q db.Querier) *EventRepository {
	return &EventRepository{db: q}
}

func (r *EventRepository) Create(ctx context.Context, e *event.Event) error {
	const eventStmt = `
INSERT INTO events (id, organizer_id, name, starts_at, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, eventStmt,
		e.ID(),
		e.OrganizerID(),
		e.Name(),
		e.StartsAt(),
		e.Status().String(),
		e.CreatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return infra.WrapRepoErr("event already exists", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create event", err)
	}

	const sectionStmt = `
INSERT INTO sections
  (id, event_id, name, kind, price_cents, row_start, row_end, seats_per_row, capacity, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	for _, s := range e.Sections() {
		_, err := r.db.Exec(ctx, sectionStmt,
			s.ID,
			s.EventID,
			s.Name,
			s.Kind.String(),
			s.PriceCents,
			s.RowStart,
			s.RowEnd,
			s.SeatsPerRow,
			s.Capacity,
			e.CreatedAt(),
		)
		if err != nil {
			return infra.WrapRepoErr("failed to create section", err)
		}
	}
	return nil
}

func (r *EventRepository) FindForUpdate(ctx context.Context, id uuid.UUID) (*shared.EventSnapshot, error) {
	const query = `
SELECT id, organizer_id, name, starts_at, status
FROM events
WHERE id = $1
FOR UPDATE`

	var s shared.EventSnapshot
	err := r.db.QueryRow(ctx, query, id).Scan(&s.ID, &s.OrganizerID, &s.Name, &s.StartsAt, &s.Status)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("event not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock event", err)
	}

	const sectionQuery = `
SELECT id, event_id, name, kind, price_cents, row_start, row_end, seats_per_row, capacity
FROM sections
WHERE event_id = $1
ORDER BY name`

	rows, err := r.db.Query(ctx, sectionQuery, id)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load sections", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			sec  event.Section
			kind string
		)
		if err := rows.Scan(
			&sec.ID, &sec.EventID, &sec.Name, &kind, &sec.PriceCents,
			&sec.RowStart, &sec.RowEnd, &sec.SeatsPerRow, &sec.Capacity,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan section", err)
		}
		sec.Kind = event.SectionKind(kind)
		s.Sections = append(s.Sections, sec)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read sections", err)
	}
	return &s, nil
}

func (r *EventRepository) MarkPublished(ctx context.Context, id uuid.UUID) error {
	const stmt = `
UPDATE events
SET status = 'published'
WHERE id = $1 AND status = 'draft'`

	tag, err := r.db.Exec(ctx, stmt, id)
	if err != nil {
		return infra.WrapRepoErr("failed to publish event", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("event is not in draft", nil, infra.KindConflict)
	}
	return nil
}
