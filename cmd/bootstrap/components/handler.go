package components

import (
	"ticketgate/internal/handler"
	"ticketgate/internal/handler/api"
	"ticketgate/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewEventHandler,
		api.NewHoldHandler,
		api.NewOrderHandler,
		api.NewTicketHandler,
		api.NewWebhookHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
