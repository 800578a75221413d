package request

type TicketTokenRequest struct {
	Token string `json:"token" binding:"required"`
}
