package response

import (
	"time"

	"ticketgate/internal/usecase/commands"
	"ticketgate/internal/usecase/queries"

	"github.com/google/uuid"
)

type CreateEventResponse struct {
	EventID       uuid.UUID `json:"eventId"`
	RequiredUnits int       `json:"requiredUnits"`
}

func FromCreateEventResult(r *commands.CreateEventResult) *CreateEventResponse {
	return &CreateEventResponse{
		EventID:       r.EventID,
		RequiredUnits: r.RequiredUnits,
	}
}

type PublishEventResponse struct {
	EventID      uuid.UUID `json:"eventId"`
	UnitsCreated int       `json:"unitsCreated"`
}

func FromPublishResult(r *commands.PublishResult) *PublishEventResponse {
	return &PublishEventResponse{
		EventID:      r.EventID,
		UnitsCreated: r.UnitsCreated,
	}
}

type EventResponse struct {
	ID            uuid.UUID `json:"id"`
	OrganizerID   uuid.UUID `json:"organizerId"`
	Name          string    `json:"name"`
	StartsAt      time.Time `json:"startsAt"`
	Status        string    `json:"status"`
	RequiredUnits int       `json:"requiredUnits"`
	CreatedAt     time.Time `json:"createdAt"`
}

func FromEventView(v *queries.EventView) *EventResponse {
	return &EventResponse{
		ID:            v.ID,
		OrganizerID:   v.OrganizerID,
		Name:          v.Name,
		StartsAt:      v.StartsAt,
		Status:        v.Status,
		RequiredUnits: v.RequiredUnits,
		CreatedAt:     v.CreatedAt,
	}
}
