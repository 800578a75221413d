package request

import (
	"ticketgate/internal/usecase/commands"
)

// PaymentWebhookRequest mirrors the provider payload. Nothing is marked
// binding-required: a malformed notification is still acknowledged, never
// bounced back into the provider's retry loop.
type PaymentWebhookRequest struct {
	PaymentID      string `json:"payment_id"`
	Status         string `json:"status"`
	OrderReference string `json:"order_reference"`
}

func (r PaymentWebhookRequest) ToNotification() commands.PaymentNotification {
	return commands.PaymentNotification{
		ExternalPaymentID: r.PaymentID,
		Status:            r.Status,
		OrderReference:    r.OrderReference,
	}
}
