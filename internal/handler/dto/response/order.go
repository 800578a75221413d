package response

import (
	"time"

	"ticketgate/internal/usecase/commands"
	"ticketgate/internal/usecase/queries"

	"github.com/google/uuid"
)

type CreateOrderResponse struct {
	OrderID            uuid.UUID `json:"orderId"`
	DeclaredPriceCents int64     `json:"declaredPriceCents"`
}

func FromCreateOrderResult(r *commands.CreateOrderResult) *CreateOrderResponse {
	return &CreateOrderResponse{
		OrderID:            r.OrderID,
		DeclaredPriceCents: r.DeclaredPriceCents,
	}
}

type FinalizeResponse struct {
	OrderID  uuid.UUID `json:"orderId"`
	Status   string    `json:"status"`
	Replayed bool      `json:"replayed,omitempty"`
}

func FromFinalizeResult(r *commands.FinalizeResult) *FinalizeResponse {
	return &FinalizeResponse{
		OrderID:  r.OrderID,
		Status:   r.Status.String(),
		Replayed: r.Replayed,
	}
}

type VoidTicketsResponse struct {
	OrderID       uuid.UUID `json:"orderId"`
	VoidedTickets int64     `json:"voidedTickets"`
}

type OrderUnitResponse struct {
	UnitID     uuid.UUID `json:"unitId"`
	Label      string    `json:"label"`
	PriceCents int64     `json:"priceCents"`
}

type SubTicketResponse struct {
	ID        uuid.UUID `json:"id"`
	UnitLabel string    `json:"unitLabel"`
	Status    string    `json:"status"`
	Token     string    `json:"token"`
	IssuedAt  time.Time `json:"issuedAt"`
}

type OrderResponse struct {
	ID                 uuid.UUID           `json:"id"`
	EventID            uuid.UUID           `json:"eventId"`
	SessionID          uuid.UUID           `json:"sessionId"`
	BuyerName          string              `json:"buyerName"`
	BuyerEmail         string              `json:"buyerEmail"`
	Status             string              `json:"status"`
	DeclaredPriceCents int64               `json:"declaredPriceCents"`
	ExternalPaymentID  *string             `json:"externalPaymentId,omitempty"`
	Units              []OrderUnitResponse `json:"units"`
	SubTickets         []SubTicketResponse `json:"subTickets,omitempty"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

func FromOrderView(v *queries.OrderView) *OrderResponse {
	units := make([]OrderUnitResponse, len(v.Units))
	for i, u := range v.Units {
		units[i] = OrderUnitResponse{
			UnitID:     u.UnitID,
			Label:      u.Label,
			PriceCents: u.PriceCents,
		}
	}
	subTickets := make([]SubTicketResponse, len(v.SubTickets))
	for i, st := range v.SubTickets {
		subTickets[i] = SubTicketResponse{
			ID:        st.ID,
			UnitLabel: st.UnitLabel,
			Status:    st.Status,
			Token:     st.Token,
			IssuedAt:  st.IssuedAt,
		}
	}
	return &OrderResponse{
		ID:                 v.ID,
		EventID:            v.EventID,
		SessionID:          v.SessionID,
		BuyerName:          v.BuyerName,
		BuyerEmail:         v.BuyerEmail,
		Status:             v.Status,
		DeclaredPriceCents: v.DeclaredPriceCents,
		ExternalPaymentID:  v.ExternalPaymentID,
		Units:              units,
		SubTickets:         subTickets,
		CreatedAt:          v.CreatedAt,
		UpdatedAt:          v.UpdatedAt,
	}
}
