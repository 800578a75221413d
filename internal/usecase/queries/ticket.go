package queries

import (
	"context"

	"github.com/google/uuid"
)

type TicketQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*SubTicketView, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*SubTicketView, error)
}

type TicketViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SubTicketView, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]*SubTicketView, error)
}

type ticketQueriesImpl struct {
	repo TicketViewRepo
}

func NewTicketQueries(repo TicketViewRepo) TicketQueries {
	return &ticketQueriesImpl{repo: repo}
}

func (q *ticketQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*SubTicketView, error) {
	return q.repo.FindByID(ctx, id)
}

func (q *ticketQueriesImpl) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*SubTicketView, error) {
	return q.repo.FindByOrderID(ctx, orderID)
}
