package queries

import (
	"context"

	"github.com/google/uuid"
)

type EventQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*EventView, error)
	ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]*EventView, error)
	// RequiredUnits is the fixed unit cardinality implied by the event's
	// section layout, independent of whether units exist yet.
	RequiredUnits(ctx context.Context, id uuid.UUID) (int, error)
}

type EventViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*EventView, error)
	FindByOrganizerID(ctx context.Context, organizerID uuid.UUID) ([]*EventView, error)
	CountRequiredUnits(ctx context.Context, id uuid.UUID) (int, error)
}

type eventQueriesImpl struct {
	repo EventViewRepo
}

func NewEventQueries(repo EventViewRepo) EventQueries {
	return &eventQueriesImpl{repo: repo}
}

func (q *eventQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*EventView, error) {
	view, err := q.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Drafts have no units yet; report the cardinality the layout implies.
	if view.RequiredUnits == 0 {
		required, err := q.RequiredUnits(ctx, id)
		if err != nil {
			return nil, err
		}
		view.RequiredUnits = required
	}
	return view, nil
}

func (q *eventQueriesImpl) ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]*EventView, error) {
	return q.repo.FindByOrganizerID(ctx, organizerID)
}

func (q *eventQueriesImpl) RequiredUnits(ctx context.Context, id uuid.UUID) (int, error) {
	return q.repo.CountRequiredUnits(ctx, id)
}
