package response

import (
	"time"

	"ticketgate/internal/usecase/queries"

	"github.com/google/uuid"
)

type UnitAvailabilityResponse struct {
	Label       string `json:"label"`
	Kind        string `json:"kind"`
	SectionName string `json:"sectionName"`
	Status      string `json:"status"`
	PriceCents  int64  `json:"priceCents"`
}

type EventAvailabilityResponse struct {
	EventID     uuid.UUID                  `json:"eventId"`
	Name        string                     `json:"name"`
	StartsAt    time.Time                  `json:"startsAt"`
	GeneratedAt time.Time                  `json:"generatedAt"`
	Units       []UnitAvailabilityResponse `json:"units"`
}

func FromEventAvailabilityView(v *queries.EventAvailabilityView) *EventAvailabilityResponse {
	units := make([]UnitAvailabilityResponse, len(v.Units))
	for i, u := range v.Units {
		units[i] = UnitAvailabilityResponse{
			Label:       u.Label,
			Kind:        u.Kind,
			SectionName: u.SectionName,
			Status:      u.Status,
			PriceCents:  u.PriceCents,
		}
	}
	return &EventAvailabilityResponse{
		EventID:     v.EventID,
		Name:        v.Name,
		StartsAt:    v.StartsAt,
		GeneratedAt: v.GeneratedAt,
		Units:       units,
	}
}
