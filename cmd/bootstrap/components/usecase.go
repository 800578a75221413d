package components

import (
	"ticketgate/internal/domain/ticket"
	"ticketgate/internal/pkg/clock"
	"ticketgate/internal/pkg/config"
	"ticketgate/internal/usecase/commands"
	"ticketgate/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	NewTicketIssuer,
)

func NewTicketIssuer(cfg config.Config) (*ticket.Issuer, error) {
	return ticket.NewIssuer(cfg.Ticket.IssuerSecret)
}

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewHoldCommands,
		commands.NewOrderCommands,
		commands.NewPaymentCommands,
		commands.NewEventCommands,
		commands.NewTicketCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewAvailabilityQueries,
		queries.NewOrderQueries,
		queries.NewEventQueries,
		queries.NewTicketQueries,
	),
)
