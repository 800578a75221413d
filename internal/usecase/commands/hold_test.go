//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ticketgate/internal/domain/inventory"
	"ticketgate/internal/pkg/clock"
	"ticketgate/internal/pkg/config"
	"ticketgate/internal/pkg/errs"
	"ticketgate/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const holdTTL = 15 * time.Minute

func newHoldFixture(t *testing.T) (*fakeStore, commands.HoldCommands, *clock.MockClock, uuid.UUID) {
	t.Helper()
	store := newFakeStore()
	eventID := uuid.New()
	clk := clock.NewMockClock(time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC))
	cfg := config.Config{Hold: config.HoldConfig{TTL: holdTTL}}
	cmd := commands.NewHoldCommands(newFakeUoW(store), clk, cfg)
	return store, cmd, clk, eventID
}

func TestHoldCommands_Hold(t *testing.T) {
	ctx := context.Background()

	t.Run("grants all requested units with TTL expiry", func(t *testing.T) {
		store, cmd, clk, eventID := newHoldFixture(t)
		store.addUnit(eventID, "A-1-1", "seat", 5000)
		store.addUnit(eventID, "A-1-2", "seat", 5000)
		sessionID := uuid.New()

		result, err := cmd.Hold(ctx, eventID, []string{"A-1-1", "A-1-2"}, sessionID)
		require.NoError(t, err)

		assert.ElementsMatch(t, []string{"A-1-1", "A-1-2"}, result.GrantedUnits)
		assert.Equal(t, clk.Now().Add(holdTTL), result.ExpiresAt)

		for _, label := range []string{"A-1-1", "A-1-2"} {
			u := store.unitByLabel(eventID, label)
			assert.Equal(t, inventory.StatusHeld.String(), u.Status)
			require.NotNil(t, u.HeldBySession)
			assert.Equal(t, sessionID, *u.HeldBySession)
		}
	})

	t.Run("all or nothing when one unit is taken", func(t *testing.T) {
		store, cmd, _, eventID := newHoldFixture(t)
		store.addUnit(eventID, "A-1-1", "seat", 5000)
		store.addUnit(eventID, "A-1-2", "seat", 5000)
		rival := uuid.New()
		_, err := cmd.Hold(ctx, eventID, []string{"A-1-2"}, rival)
		require.NoError(t, err)

		sessionID := uuid.New()
		_, err = cmd.Hold(ctx, eventID, []string{"A-1-1", "A-1-2"}, sessionID)
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrInventoryConflict)

		var conflict *commands.InventoryConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Equal(t, []string{"A-1-2"}, conflict.UnavailableUnits)

		// The grantable unit must not remain held after the rollback.
		u := store.unitByLabel(eventID, "A-1-1")
		assert.Equal(t, inventory.StatusAvailable.String(), u.Status)
	})

	t.Run("re-hold by the same session refreshes instead of conflicting", func(t *testing.T) {
		store, cmd, clk, eventID := newHoldFixture(t)
		store.addUnit(eventID, "A-1-1", "seat", 5000)
		sessionID := uuid.New()

		first, err := cmd.Hold(ctx, eventID, []string{"A-1-1"}, sessionID)
		require.NoError(t, err)

		clk.Add(5 * time.Minute)
		second, err := cmd.Hold(ctx, eventID, []string{"A-1-1"}, sessionID)
		require.NoError(t, err)
		assert.True(t, second.ExpiresAt.After(first.ExpiresAt))

		u := store.unitByLabel(eventID, "A-1-1")
		require.NotNil(t, u.HoldExpiresAt)
		assert.Equal(t, second.ExpiresAt, *u.HoldExpiresAt)
	})

	t.Run("lapsed hold of another session is reclaimed before granting", func(t *testing.T) {
		store, cmd, clk, eventID := newHoldFixture(t)
		store.addUnit(eventID, "A-1-1", "seat", 5000)
		rival := uuid.New()
		_, err := cmd.Hold(ctx, eventID, []string{"A-1-1"}, rival)
		require.NoError(t, err)

		clk.Add(holdTTL) // expiry boundary is inclusive: expires_at <= now lapses

		sessionID := uuid.New()
		result, err := cmd.Hold(ctx, eventID, []string{"A-1-1"}, sessionID)
		require.NoError(t, err)
		assert.Equal(t, []string{"A-1-1"}, result.GrantedUnits)

		u := store.unitByLabel(eventID, "A-1-1")
		require.NotNil(t, u.HeldBySession)
		assert.Equal(t, sessionID, *u.HeldBySession)
	})

	t.Run("live hold of another session conflicts", func(t *testing.T) {
		store, cmd, clk, eventID := newHoldFixture(t)
		store.addUnit(eventID, "A-1-1", "seat", 5000)
		rival := uuid.New()
		_, err := cmd.Hold(ctx, eventID, []string{"A-1-1"}, rival)
		require.NoError(t, err)

		clk.Add(holdTTL - time.Second)
		_, err = cmd.Hold(ctx, eventID, []string{"A-1-1"}, uuid.New())
		assert.ErrorIs(t, err, errs.ErrInventoryConflict)
	})

	t.Run("sold unit conflicts", func(t *testing.T) {
		store, cmd, _, eventID := newHoldFixture(t)
		id := store.addUnit(eventID, "A-1-1", "seat", 5000)
		orderID := uuid.New()
		store.units[id].Status = inventory.StatusSold.String()
		store.units[id].SoldOrderID = &orderID

		_, err := cmd.Hold(ctx, eventID, []string{"A-1-1"}, uuid.New())
		assert.ErrorIs(t, err, errs.ErrInventoryConflict)
	})

	t.Run("unknown label is reported as unavailable", func(t *testing.T) {
		store, cmd, _, eventID := newHoldFixture(t)
		store.addUnit(eventID, "A-1-1", "seat", 5000)

		_, err := cmd.Hold(ctx, eventID, []string{"A-1-1", "Z-9-9"}, uuid.New())
		var conflict *commands.InventoryConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Equal(t, []string{"Z-9-9"}, conflict.UnavailableUnits)
	})

	t.Run("duplicate labels are collapsed", func(t *testing.T) {
		store, cmd, _, eventID := newHoldFixture(t)
		store.addUnit(eventID, "A-1-1", "seat", 5000)

		result, err := cmd.Hold(ctx, eventID, []string{"A-1-1", "A-1-1"}, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, []string{"A-1-1"}, result.GrantedUnits)
	})

	t.Run("empty request is rejected", func(t *testing.T) {
		_, cmd, _, eventID := newHoldFixture(t)
		_, err := cmd.Hold(ctx, eventID, nil, uuid.New())
		assert.ErrorIs(t, err, errs.ErrDomainValidation)

		_, err = cmd.Hold(ctx, eventID, []string{"  "}, uuid.New())
		assert.ErrorIs(t, err, errs.ErrDomainValidation)
	})
}

func TestHoldCommands_Release(t *testing.T) {
	ctx := context.Background()

	t.Run("frees own holds", func(t *testing.T) {
		store, cmd, _, eventID := newHoldFixture(t)
		store.addUnit(eventID, "A-1-1", "seat", 5000)
		sessionID := uuid.New()
		_, err := cmd.Hold(ctx, eventID, []string{"A-1-1"}, sessionID)
		require.NoError(t, err)

		require.NoError(t, cmd.Release(ctx, eventID, []string{"A-1-1"}, sessionID))
		u := store.unitByLabel(eventID, "A-1-1")
		assert.Equal(t, inventory.StatusAvailable.String(), u.Status)
		assert.Nil(t, u.HeldBySession)
	})

	t.Run("cannot free another session's hold", func(t *testing.T) {
		store, cmd, _, eventID := newHoldFixture(t)
		store.addUnit(eventID, "A-1-1", "seat", 5000)
		owner := uuid.New()
		_, err := cmd.Hold(ctx, eventID, []string{"A-1-1"}, owner)
		require.NoError(t, err)

		require.NoError(t, cmd.Release(ctx, eventID, []string{"A-1-1"}, uuid.New()))
		u := store.unitByLabel(eventID, "A-1-1")
		assert.Equal(t, inventory.StatusHeld.String(), u.Status)
		require.NotNil(t, u.HeldBySession)
		assert.Equal(t, owner, *u.HeldBySession)
	})
}
