package request

import (
	"time"

	"github.com/google/uuid"

	"ticketgate/internal/usecase/commands"
)

type SectionRequest struct {
	Name        string `json:"name" binding:"required"`
	Kind        string `json:"kind" binding:"required,oneof=seat general"`
	PriceCents  int64  `json:"price_cents" binding:"min=0"`
	RowStart    int    `json:"row_start,omitempty"`
	RowEnd      int    `json:"row_end,omitempty"`
	SeatsPerRow int    `json:"seats_per_row,omitempty"`
	Capacity    int    `json:"capacity,omitempty"`
}

type CreateEventRequest struct {
	Name     string           `json:"name" binding:"required"`
	StartsAt time.Time        `json:"starts_at" binding:"required"`
	Sections []SectionRequest `json:"sections" binding:"required,min=1,dive"`
}

func (r CreateEventRequest) ToInput(organizerID uuid.UUID) commands.CreateEventInput {
	sections := make([]commands.SectionInput, len(r.Sections))
	for i, s := range r.Sections {
		sections[i] = commands.SectionInput{
			Name:        s.Name,
			Kind:        s.Kind,
			PriceCents:  s.PriceCents,
			RowStart:    s.RowStart,
			RowEnd:      s.RowEnd,
			SeatsPerRow: s.SeatsPerRow,
			Capacity:    s.Capacity,
		}
	}
	return commands.CreateEventInput{
		OrganizerID: organizerID,
		Name:        r.Name,
		StartsAt:    r.StartsAt,
		Sections:    sections,
	}
}
