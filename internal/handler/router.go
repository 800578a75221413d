package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"ticketgate/internal/handler/api"
	"ticketgate/internal/handler/middleware"
	"ticketgate/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	eventHandler *api.EventHandler,
	holdHandler *api.HoldHandler,
	orderHandler *api.OrderHandler,
	ticketHandler *api.TicketHandler,
	webhookHandler *api.WebhookHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, eventHandler, holdHandler, orderHandler, ticketHandler, webhookHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	eventHandler *api.EventHandler,
	holdHandler *api.HoldHandler,
	orderHandler *api.OrderHandler,
	ticketHandler *api.TicketHandler,
	webhookHandler *api.WebhookHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	engine.GET("/health", healthCheck)

	// Provider callbacks bypass the public API surface and its auth.
	engine.POST("/webhooks/payments", webhookHandler.HandlePayment)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		events := apiGroup.Group("/events")
		{
			addRoutes(events, []route{
				{Method: http.MethodGet, Path: "/:id/availability", Handler: eventHandler.Availability},
				{Method: http.MethodPost, Path: "/:id/holds", Handler: holdHandler.Hold},
				{Method: http.MethodDelete, Path: "/:id/holds", Handler: holdHandler.Release},
			})

			organizerOnly := events.Group("")
			organizerOnly.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole(middleware.RoleOrganizer))
			addRoutes(organizerOnly, []route{
				{Method: http.MethodPost, Path: "", Handler: eventHandler.CreateEvent},
				{Method: http.MethodPost, Path: "/:id/publish", Handler: eventHandler.Publish},
				{Method: http.MethodGet, Path: "", Handler: eventHandler.ListEvents},
				{Method: http.MethodGet, Path: "/:id", Handler: eventHandler.GetEvent},
			})
		}

		orders := apiGroup.Group("/orders")
		{
			addRoutes(orders, []route{
				{Method: http.MethodPost, Path: "", Handler: orderHandler.CreateOrder},
				{Method: http.MethodGet, Path: "", Handler: orderHandler.ListOrders},
				{Method: http.MethodGet, Path: "/:id", Handler: orderHandler.GetOrder},
			})

			organizerOnly := orders.Group("")
			organizerOnly.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole(middleware.RoleOrganizer))
			addRoutes(organizerOnly, []route{
				{Method: http.MethodPost, Path: "/:id/confirm-manual", Handler: orderHandler.ConfirmManual},
				{Method: http.MethodPost, Path: "/:id/void-tickets", Handler: orderHandler.VoidTickets},
			})
		}

		tickets := apiGroup.Group("/tickets")
		tickets.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole(middleware.RoleScanner))
		{
			addRoutes(tickets, []route{
				{Method: http.MethodPost, Path: "/verify", Handler: ticketHandler.Verify},
				{Method: http.MethodPost, Path: "/redeem", Handler: ticketHandler.Redeem},
				{Method: http.MethodGet, Path: "", Handler: ticketHandler.ListTickets},
				{Method: http.MethodGet, Path: "/:id", Handler: ticketHandler.GetTicket},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
