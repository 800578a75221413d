package commands

import (
	"context"
	"time"

	"ticketgate/internal/domain/event"
	"ticketgate/internal/infra"
	"ticketgate/internal/pkg/clock"
	"ticketgate/internal/pkg/errs"
	"ticketgate/internal/usecase/shared"

	"github.com/google/uuid"
)

type SectionInput struct {
	Name        string
	Kind        string
	PriceCents  int64
	RowStart    int
	RowEnd      int
	SeatsPerRow int
	Capacity    int
}

type CreateEventInput struct {
	OrganizerID uuid.UUID
	Name        string
	StartsAt    time.Time
	Sections    []SectionInput
}

type CreateEventResult struct {
	EventID       uuid.UUID
	RequiredUnits int
}

type PublishResult struct {
	EventID      uuid.UUID
	UnitsCreated int
}

type EventCommands interface {
	// CreateEvent registers a draft event with its pricing sections.
	CreateEvent(ctx context.Context, in CreateEventInput) (*CreateEventResult, error)
	// Publish materializes the fixed inventory unit set, after the
	// external credit gate confirms the organizer can cover it.
	Publish(ctx context.Context, eventID, organizerID uuid.UUID) (*PublishResult, error)
}

type eventCommandsImpl struct {
	uow        shared.UnitOfWork
	creditGate shared.CreditGate
	clock      clock.Clock
}

func NewEventCommands(uow shared.UnitOfWork, gate shared.CreditGate, clk clock.Clock) EventCommands {
	return &eventCommandsImpl{
		uow:        uow,
		creditGate: gate,
		clock:      clk,
	}
}

func (e *eventCommandsImpl) CreateEvent(ctx context.Context, in CreateEventInput) (*CreateEventResult, error) {
	sections := make([]event.Section, len(in.Sections))
	for i, s := range in.Sections {
		sections[i] = event.Section{
			Name:        s.Name,
			Kind:        event.SectionKind(s.Kind),
			PriceCents:  s.PriceCents,
			RowStart:    s.RowStart,
			RowEnd:      s.RowEnd,
			SeatsPerRow: s.SeatsPerRow,
			Capacity:    s.Capacity,
		}
	}

	ev, err := event.NewEvent(in.OrganizerID, in.Name, in.StartsAt, sections, e.clock.Now())
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}

	err = e.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Events().Create(ctx, ev); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &CreateEventResult{EventID: ev.ID(), RequiredUnits: ev.RequiredUnits()}, nil
}

func (e *eventCommandsImpl) Publish(ctx context.Context, eventID, organizerID uuid.UUID) (*PublishResult, error) {
	// The credit check is an external call; it stays outside the
	// transaction. The credit ledger deduction is the gate's own contract.
	credits, err := e.creditGate.AvailableCredits(ctx, organizerID)
	if err != nil {
		return nil, errs.Wrap(err, "credit gate unavailable")
	}

	now := e.clock.Now()

	var result *PublishResult
	err = e.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, err := tx.Events().FindForUpdate(ctx, eventID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, errs.ErrEventNotFound)
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if snap.OrganizerID != organizerID {
			return errs.Mark(errs.New("event belongs to another organizer"), errs.ErrEventNotFound)
		}
		if event.Status(snap.Status) == event.StatusPublished {
			return errs.Mark(errs.New("already published"), errs.ErrEventAlreadyLive)
		}

		ev := event.ReconstructEvent(snap.ID, snap.OrganizerID, snap.Name, snap.StartsAt, event.Status(snap.Status), snap.Sections, now)

		required := ev.RequiredUnits()
		if credits < required {
			return errs.Mark(errs.New("organizer credits below required units"), errs.ErrInsufficientCredits)
		}

		units, err := ev.BuildUnits(now)
		if err != nil {
			return errs.Mark(err, errs.ErrInvalidSectionLayout)
		}
		if err := tx.Inventory().CreateUnits(ctx, units); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if err := tx.Events().MarkPublished(ctx, eventID); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		result = &PublishResult{EventID: eventID, UnitsCreated: len(units)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
