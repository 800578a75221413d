package response

import (
	"time"

	"ticketgate/internal/usecase/commands"
)

type HoldResponse struct {
	GrantedUnits []string  `json:"grantedUnits"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

func FromHoldResult(r *commands.HoldResult) *HoldResponse {
	return &HoldResponse{
		GrantedUnits: r.GrantedUnits,
		ExpiresAt:    r.ExpiresAt,
	}
}
