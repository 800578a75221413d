package components

import (
	"ticketgate/internal/infra/creditgate"
	"ticketgate/internal/infra/db"
	"ticketgate/internal/infra/readstore"
	"ticketgate/internal/infra/uow"
	"ticketgate/internal/pkg/config"
	"ticketgate/internal/usecase/queries"
	"ticketgate/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		NewQuerier,
		uow.NewPostgresUoW,
		NewCreditGate,
		fx.Annotate(
			readstore.NewAvailabilityReadStore,
			fx.As(new(queries.AvailabilityViewRepo)),
		),
		fx.Annotate(
			readstore.NewOrderReadStore,
			fx.As(new(queries.OrderViewRepo)),
		),
		fx.Annotate(
			readstore.NewEventReadStore,
			fx.As(new(queries.EventViewRepo)),
		),
		fx.Annotate(
			readstore.NewTicketReadStore,
			fx.As(new(queries.TicketViewRepo)),
		),
	),
)

func NewQuerier(pool *pgxpool.Pool) db.Querier {
	return pool
}

func NewCreditGate(cfg config.Config) shared.CreditGate {
	return creditgate.NewClient(cfg.CreditGate)
}
