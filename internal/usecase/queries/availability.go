package queries

import (
	"context"

	"github.com/google/uuid"
)

type AvailabilityQueries interface {
	EventAvailability(ctx context.Context, eventID uuid.UUID) (*EventAvailabilityView, error)
}

type AvailabilityViewRepo interface {
	FindEventAvailability(ctx context.Context, eventID uuid.UUID) (*EventAvailabilityView, error)
}

type availabilityQueriesImpl struct {
	repo AvailabilityViewRepo
}

func NewAvailabilityQueries(repo AvailabilityViewRepo) AvailabilityQueries {
	return &availabilityQueriesImpl{repo: repo}
}

func (q *availabilityQueriesImpl) EventAvailability(ctx context.Context, eventID uuid.UUID) (*EventAvailabilityView, error) {
	return q.repo.FindEventAvailability(ctx, eventID)
}
