package queries

import (
	"time"

	"github.com/google/uuid"
)

// Read models (DTO for read side)

type UnitAvailabilityView struct {
	Label       string `json:"label"`
	Kind        string `json:"kind"`
	SectionName string `json:"section_name"`
	// Status is the effective status: a lapsed hold reads as available.
	Status     string `json:"status"`
	PriceCents int64  `json:"price_cents"`
}

type EventAvailabilityView struct {
	EventID     uuid.UUID              `json:"event_id"`
	Name        string                 `json:"name"`
	StartsAt    time.Time              `json:"starts_at"`
	GeneratedAt time.Time              `json:"generated_at"`
	Units       []UnitAvailabilityView `json:"units"`
}

type OrderUnitView struct {
	UnitID     uuid.UUID `json:"unit_id"`
	Label      string    `json:"label"`
	PriceCents int64     `json:"price_cents"`
}

type SubTicketView struct {
	ID        uuid.UUID `json:"id"`
	UnitLabel string    `json:"unit_label"`
	Status    string    `json:"status"`
	Token     string    `json:"token"`
	IssuedAt  time.Time `json:"issued_at"`
}

type OrderView struct {
	ID                 uuid.UUID       `json:"id"`
	EventID            uuid.UUID       `json:"event_id"`
	SessionID          uuid.UUID       `json:"session_id"`
	BuyerName          string          `json:"buyer_name"`
	BuyerEmail         string          `json:"buyer_email"`
	Status             string          `json:"status"`
	DeclaredPriceCents int64           `json:"declared_price_cents"`
	ExternalPaymentID  *string         `json:"external_payment_id,omitempty"`
	Units              []OrderUnitView `json:"units"`
	SubTickets         []SubTicketView `json:"sub_tickets,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

type EventView struct {
	ID            uuid.UUID `json:"id"`
	OrganizerID   uuid.UUID `json:"organizer_id"`
	Name          string    `json:"name"`
	StartsAt      time.Time `json:"starts_at"`
	Status        string    `json:"status"`
	RequiredUnits int       `json:"required_units"`
	CreatedAt     time.Time `json:"created_at"`
}
