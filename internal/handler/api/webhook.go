package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	reqdto "ticketgate/internal/handler/dto/request"
	"ticketgate/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type WebhookHandler struct {
	payments commands.PaymentCommands
}

func NewWebhookHandler(payments commands.PaymentCommands) *WebhookHandler {
	return &WebhookHandler{payments: payments}
}

// @Summary Payment provider webhook
// @Description Ingest at-least-once, possibly out-of-order payment notifications
// @Tags webhooks
// @Accept json
// @Produce json
// @Param request body reqdto.PaymentWebhookRequest true "Provider notification"
// @Success 200 {object} map[string]string
// @Router /webhooks/payments [post]
func (h *WebhookHandler) HandlePayment(c *gin.Context) {
	// Lenient decode: providers add fields without notice, and an
	// unparseable body can never become parseable on retry.
	var req reqdto.PaymentWebhookRequest
	if decodeErr := json.NewDecoder(c.Request.Body).Decode(&req); decodeErr != nil {
		slog.Warn("discarding malformed payment notification", "error", decodeErr.Error())
		c.JSON(http.StatusOK, gin.H{"outcome": commands.AckIgnored})
		return
	}

	ack, err := h.payments.HandleNotification(c.Request.Context(), req.ToNotification())
	if err != nil {
		// Transient store failure: a non-200 asks the provider to retry,
		// which the ledger makes safe.
		slog.Error("payment notification processing failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "temporary failure"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"outcome": ack.Outcome})
}
