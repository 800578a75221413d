package response

import (
	"ticketgate/internal/usecase/commands"
	"ticketgate/internal/usecase/queries"
)

type VerifyResponse struct {
	Result    string `json:"result"`
	UnitLabel string `json:"unitLabel,omitempty"`
}

func FromVerifyResult(r *commands.VerifyResult) *VerifyResponse {
	return &VerifyResponse{
		Result:    r.Result,
		UnitLabel: r.UnitLabel,
	}
}

func FromSubTicketView(v *queries.SubTicketView) *SubTicketResponse {
	return &SubTicketResponse{
		ID:        v.ID,
		UnitLabel: v.UnitLabel,
		Status:    v.Status,
		Token:     v.Token,
		IssuedAt:  v.IssuedAt,
	}
}
