package request

import (
	"github.com/google/uuid"

	"ticketgate/internal/usecase/commands"
)

type BuyerRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

type CreateOrderRequest struct {
	EventID   uuid.UUID    `json:"event_id" binding:"required"`
	UnitIDs   []string     `json:"unit_ids" binding:"required,min=1"`
	SessionID uuid.UUID    `json:"session_id" binding:"required"`
	Buyer     BuyerRequest `json:"buyer" binding:"required"`
}

func (r CreateOrderRequest) ToInput() commands.CreateOrderInput {
	return commands.CreateOrderInput{
		EventID:    r.EventID,
		UnitLabels: HoldRequest{UnitIDs: r.UnitIDs}.NormalizedUnitIDs(),
		SessionID:  r.SessionID,
		Buyer: commands.BuyerInput{
			Name:  r.Buyer.Name,
			Email: r.Buyer.Email,
		},
	}
}
