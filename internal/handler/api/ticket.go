package api

import (
	"net/http"

	reqdto "ticketgate/internal/handler/dto/request"
	resdto "ticketgate/internal/handler/dto/response"
	"ticketgate/internal/usecase/commands"
	"ticketgate/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TicketHandler struct {
	tickets       commands.TicketCommands
	ticketQueries queries.TicketQueries
}

func NewTicketHandler(tickets commands.TicketCommands, ticketQueries queries.TicketQueries) *TicketHandler {
	return &TicketHandler{
		tickets:       tickets,
		ticketQueries: ticketQueries,
	}
}

// @Summary Verify credential
// @Description Check a presented QR token without consuming it
// @Tags tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.TicketTokenRequest true "Credential token"
// @Success 200 {object} resdto.VerifyResponse
// @Failure 400 {object} map[string]string
// @Router /tickets/verify [post]
func (h *TicketHandler) Verify(c *gin.Context) {
	var req reqdto.TicketTokenRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.tickets.Verify(c.Request.Context(), req.Token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromVerifyResult(result))
}

// @Summary Get credential
// @Description Look up a sub-ticket by id for gate-side inspection
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Param id path string true "Sub-ticket ID"
// @Success 200 {object} resdto.SubTicketResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /tickets/{id} [get]
func (h *TicketHandler) GetTicket(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid sub-ticket ID format",
		})
		return
	}

	view, err := h.ticketQueries.GetByID(c.Request.Context(), id)
	if err != nil {
		switch {
		case isNotFound(err):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Sub-ticket not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromSubTicketView(view))
}

// @Summary List order credentials
// @Description List the sub-tickets issued for an order
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Param order_id query string true "Order ID"
// @Success 200 {object} map[string][]resdto.SubTicketResponse
// @Failure 400 {object} map[string]string
// @Router /tickets [get]
func (h *TicketHandler) ListTickets(c *gin.Context) {
	orderID, err := uuid.Parse(c.Query("order_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order ID format",
		})
		return
	}

	views, err := h.ticketQueries.ListByOrder(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	tickets := make([]*resdto.SubTicketResponse, len(views))
	for i, v := range views {
		tickets[i] = resdto.FromSubTicketView(v)
	}
	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}

// @Summary Redeem credential
// @Description Verify and atomically consume a QR token at the gate
// @Tags tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.TicketTokenRequest true "Credential token"
// @Success 200 {object} resdto.VerifyResponse
// @Failure 400 {object} map[string]string
// @Router /tickets/redeem [post]
func (h *TicketHandler) Redeem(c *gin.Context) {
	var req reqdto.TicketTokenRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.tickets.Redeem(c.Request.Context(), req.Token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromVerifyResult(result))
}
