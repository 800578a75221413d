package event

import (
	"errors"
	"strings"
	"time"

	"ticketgate/internal/domain/inventory"

	"github.com/google/uuid"
)

var (
	ErrEmptyName        = errors.New("event name cannot be empty")
	ErrNoSections       = errors.New("event needs at least one section")
	ErrInvalidLayout    = errors.New("invalid section layout")
	ErrAlreadyPublished = errors.New("event already published")
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

func (s Status) String() string { return string(s) }

type SectionKind string

const (
	SectionSeated  SectionKind = "seat"
	SectionGeneral SectionKind = "general"
)

func (k SectionKind) String() string { return string(k) }

// Section is a pricing tier: a rectangular seat block or a counted
// general-admission allocation. Price is frozen into each unit at publish.
type Section struct {
	ID          uuid.UUID
	EventID     uuid.UUID
	Name        string
	Kind        SectionKind
	PriceCents  int64
	RowStart    int
	RowEnd      int
	SeatsPerRow int
	Capacity    int
}

// UnitCount is the fixed cardinality this section contributes.
func (s Section) UnitCount() int {
	if s.Kind == SectionSeated {
		return (s.RowEnd - s.RowStart + 1) * s.SeatsPerRow
	}
	return s.Capacity
}

func (s Section) validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrInvalidLayout
	}
	if s.PriceCents < 0 {
		return ErrInvalidLayout
	}
	switch s.Kind {
	case SectionSeated:
		if s.RowStart < 1 || s.RowEnd < s.RowStart || s.SeatsPerRow < 1 {
			return ErrInvalidLayout
		}
	case SectionGeneral:
		if s.Capacity < 1 {
			return ErrInvalidLayout
		}
	default:
		return ErrInvalidLayout
	}
	return nil
}

type Event struct {
	id          uuid.UUID
	organizerID uuid.UUID
	name        string
	startsAt    time.Time
	status      Status
	sections    []Section
	createdAt   time.Time
}

func NewEvent(organizerID uuid.UUID, name string, startsAt time.Time, sections []Section, now time.Time) (*Event, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if len(sections) == 0 {
		return nil, ErrNoSections
	}

	id := uuid.New()
	owned := make([]Section, len(sections))
	for i, s := range sections {
		if err := s.validate(); err != nil {
			return nil, err
		}
		s.ID = uuid.New()
		s.EventID = id
		owned[i] = s
	}

	return &Event{
		id:          id,
		organizerID: organizerID,
		name:        name,
		startsAt:    startsAt,
		status:      StatusDraft,
		sections:    owned,
		createdAt:   now,
	}, nil
}

func ReconstructEvent(id, organizerID uuid.UUID, name string, startsAt time.Time, status Status, sections []Section, createdAt time.Time) *Event {
	return &Event{
		id:          id,
		organizerID: organizerID,
		name:        name,
		startsAt:    startsAt,
		status:      status,
		sections:    sections,
		createdAt:   createdAt,
	}
}

// RequiredUnits is the read-only computation consulted by the external
// credit gate before publishing.
func (e *Event) RequiredUnits() int {
	total := 0
	for _, s := range e.sections {
		total += s.UnitCount()
	}
	return total
}

// BuildUnits materializes one inventory unit per sellable item, with the
// section price frozen per unit. Called once, at publish time.
func (e *Event) BuildUnits(now time.Time) ([]*inventory.Unit, error) {
	units := make([]*inventory.Unit, 0, e.RequiredUnits())
	for _, s := range e.sections {
		price, err := inventory.NewMoney(s.PriceCents)
		if err != nil {
			return nil, err
		}
		switch s.Kind {
		case SectionSeated:
			for row := s.RowStart; row <= s.RowEnd; row++ {
				for seat := 1; seat <= s.SeatsPerRow; seat++ {
					u, err := inventory.NewUnit(e.id, s.ID, inventory.SeatLabel(s.Name, row, seat), inventory.KindSeat, price, now)
					if err != nil {
						return nil, err
					}
					units = append(units, u)
				}
			}
		case SectionGeneral:
			for n := 1; n <= s.Capacity; n++ {
				u, err := inventory.NewUnit(e.id, s.ID, inventory.SlotLabel(s.Name, n), inventory.KindGeneralSlot, price, now)
				if err != nil {
					return nil, err
				}
				units = append(units, u)
			}
		}
	}
	return units, nil
}

// MarkPublished pins the sellable cardinality for the event's life.
func (e *Event) MarkPublished() error {
	if e.status == StatusPublished {
		return ErrAlreadyPublished
	}
	e.status = StatusPublished
	return nil
}

func (e *Event) ID() uuid.UUID          { return e.id }
func (e *Event) OrganizerID() uuid.UUID { return e.organizerID }
func (e *Event) Name() string           { return e.name }
func (e *Event) StartsAt() time.Time    { return e.startsAt }
func (e *Event) Status() Status         { return e.status }
func (e *Event) Sections() []Section    { return e.sections }
func (e *Event) CreatedAt() time.Time   { return e.createdAt }
