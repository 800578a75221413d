//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"ticketgate/internal/domain/event"
	"ticketgate/internal/domain/inventory"
	"ticketgate/internal/pkg/clock"
	"ticketgate/internal/pkg/errs"
	"ticketgate/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEventFixture(t *testing.T, credits int) (*fakeStore, commands.EventCommands) {
	t.Helper()
	store := newFakeStore()
	clk := clock.NewMockClock(time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC))
	cmd := commands.NewEventCommands(newFakeUoW(store), &fakeCreditGate{credits: credits}, clk)
	return store, cmd
}

func seatAndGeneralSections() []commands.SectionInput {
	return []commands.SectionInput{
		{Name: "A", Kind: "seat", PriceCents: 5000, RowStart: 1, RowEnd: 2, SeatsPerRow: 3},
		{Name: "GA", Kind: "general", PriceCents: 2500, Capacity: 4},
	}
}

func TestEventCommands_CreateEvent(t *testing.T) {
	ctx := context.Background()
	startsAt := time.Date(2026, 9, 1, 19, 0, 0, 0, time.UTC)

	t.Run("registers a draft with the section cardinality", func(t *testing.T) {
		store, cmd := newEventFixture(t, 100)
		result, err := cmd.CreateEvent(ctx, commands.CreateEventInput{
			OrganizerID: uuid.New(),
			Name:        "Autumn Gala",
			StartsAt:    startsAt,
			Sections:    seatAndGeneralSections(),
		})
		require.NoError(t, err)
		assert.Equal(t, 10, result.RequiredUnits) // 2 rows x 3 seats + 4 slots

		snap := store.events[result.EventID]
		require.NotNil(t, snap)
		assert.Equal(t, event.StatusDraft.String(), snap.Status)
		assert.Len(t, snap.Sections, 2)

		// No inventory exists before publish.
		assert.Empty(t, store.units)
	})

	t.Run("rejects an invalid section layout", func(t *testing.T) {
		_, cmd := newEventFixture(t, 100)
		_, err := cmd.CreateEvent(ctx, commands.CreateEventInput{
			OrganizerID: uuid.New(),
			Name:        "Autumn Gala",
			StartsAt:    startsAt,
			Sections: []commands.SectionInput{
				{Name: "A", Kind: "seat", PriceCents: 5000, RowStart: 3, RowEnd: 1, SeatsPerRow: 3},
			},
		})
		assert.ErrorIs(t, err, errs.ErrDomainValidation)
	})

	t.Run("rejects an event without sections", func(t *testing.T) {
		_, cmd := newEventFixture(t, 100)
		_, err := cmd.CreateEvent(ctx, commands.CreateEventInput{
			OrganizerID: uuid.New(),
			Name:        "Autumn Gala",
			StartsAt:    startsAt,
		})
		assert.ErrorIs(t, err, errs.ErrDomainValidation)
	})
}

func TestEventCommands_Publish(t *testing.T) {
	ctx := context.Background()
	startsAt := time.Date(2026, 9, 1, 19, 0, 0, 0, time.UTC)

	createDraft := func(t *testing.T, cmd commands.EventCommands, organizerID uuid.UUID) uuid.UUID {
		t.Helper()
		result, err := cmd.CreateEvent(ctx, commands.CreateEventInput{
			OrganizerID: organizerID,
			Name:        "Autumn Gala",
			StartsAt:    startsAt,
			Sections:    seatAndGeneralSections(),
		})
		require.NoError(t, err)
		return result.EventID
	}

	t.Run("materializes one unit per sellable item with frozen prices", func(t *testing.T) {
		store, cmd := newEventFixture(t, 10)
		organizerID := uuid.New()
		eventID := createDraft(t, cmd, organizerID)

		result, err := cmd.Publish(ctx, eventID, organizerID)
		require.NoError(t, err)
		assert.Equal(t, 10, result.UnitsCreated)
		assert.Len(t, store.units, 10)

		assert.Equal(t, event.StatusPublished.String(), store.events[eventID].Status)

		seat := store.unitByLabel(eventID, "A-1-1")
		require.NotNil(t, seat)
		assert.Equal(t, inventory.KindSeat.String(), seat.Kind)
		assert.Equal(t, int64(5000), seat.PriceCents)

		slot := store.unitByLabel(eventID, "GA-0004")
		require.NotNil(t, slot)
		assert.Equal(t, inventory.KindGeneralSlot.String(), slot.Kind)
		assert.Equal(t, int64(2500), slot.PriceCents)
	})

	t.Run("insufficient credits", func(t *testing.T) {
		store, cmd := newEventFixture(t, 9)
		organizerID := uuid.New()
		eventID := createDraft(t, cmd, organizerID)

		_, err := cmd.Publish(ctx, eventID, organizerID)
		assert.ErrorIs(t, err, errs.ErrInsufficientCredits)
		assert.Empty(t, store.units)
		assert.Equal(t, event.StatusDraft.String(), store.events[eventID].Status)
	})

	t.Run("publishing twice", func(t *testing.T) {
		store, cmd := newEventFixture(t, 100)
		organizerID := uuid.New()
		eventID := createDraft(t, cmd, organizerID)

		_, err := cmd.Publish(ctx, eventID, organizerID)
		require.NoError(t, err)

		_, err = cmd.Publish(ctx, eventID, organizerID)
		assert.ErrorIs(t, err, errs.ErrEventAlreadyLive)
		assert.Len(t, store.units, 10)
	})

	t.Run("another organizer's event is not found", func(t *testing.T) {
		_, cmd := newEventFixture(t, 100)
		eventID := createDraft(t, cmd, uuid.New())

		_, err := cmd.Publish(ctx, eventID, uuid.New())
		assert.ErrorIs(t, err, errs.ErrEventNotFound)
	})

	t.Run("unknown event", func(t *testing.T) {
		_, cmd := newEventFixture(t, 100)
		_, err := cmd.Publish(ctx, uuid.New(), uuid.New())
		assert.ErrorIs(t, err, errs.ErrEventNotFound)
	})

	t.Run("credit gate failure blocks publication", func(t *testing.T) {
		store := newFakeStore()
		clk := clock.NewMockClock(time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC))
		gate := &fakeCreditGate{err: errs.New("gate down")}
		cmd := commands.NewEventCommands(newFakeUoW(store), gate, clk)

		_, err := cmd.Publish(ctx, uuid.New(), uuid.New())
		require.Error(t, err)
	})
}
