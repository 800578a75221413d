package queries

import (
	"context"

	"github.com/google/uuid"
)

type OrderQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*OrderView, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*OrderView, error)
}

type OrderViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*OrderView, error)
	FindBySessionID(ctx context.Context, sessionID uuid.UUID) ([]*OrderView, error)
}

type orderQueriesImpl struct {
	repo OrderViewRepo
}

func NewOrderQueries(repo OrderViewRepo) OrderQueries {
	return &orderQueriesImpl{repo: repo}
}

func (q *orderQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*OrderView, error) {
	return q.repo.FindByID(ctx, id)
}

func (q *orderQueriesImpl) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*OrderView, error) {
	return q.repo.FindBySessionID(ctx, sessionID)
}
