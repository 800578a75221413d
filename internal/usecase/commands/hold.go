package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ticketgate/internal/pkg/clock"
	"ticketgate/internal/pkg/config"
	"ticketgate/internal/pkg/errs"
	"ticketgate/internal/usecase/shared"

	"github.com/google/uuid"
)

// InventoryConflictError carries the units a Hold could not grant so the
// buyer can reselect.
type InventoryConflictError struct {
	UnavailableUnits []string
}

func (e *InventoryConflictError) Error() string {
	return fmt.Sprintf("units unavailable: %s", strings.Join(e.UnavailableUnits, ", "))
}

type HoldResult struct {
	GrantedUnits []string
	ExpiresAt    time.Time
}

type HoldCommands interface {
	// Hold grants all requested units to the session or none of them.
	// Units already held by the same session are refreshed, not stacked.
	Hold(ctx context.Context, eventID uuid.UUID, unitLabels []string, sessionID uuid.UUID) (*HoldResult, error)
	// Release frees holds owned by the session; a stale client can never
	// free someone else's hold.
	Release(ctx context.Context, eventID uuid.UUID, unitLabels []string, sessionID uuid.UUID) error
}

type holdCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
	ttl   time.Duration
}

func NewHoldCommands(uow shared.UnitOfWork, clk clock.Clock, cfg config.Config) HoldCommands {
	return &holdCommandsImpl{
		uow:   uow,
		clock: clk,
		ttl:   cfg.Hold.TTL,
	}
}

func (h *holdCommandsImpl) Hold(ctx context.Context, eventID uuid.UUID, unitLabels []string, sessionID uuid.UUID) (*HoldResult, error) {
	labels, err := normalizeLabels(unitLabels)
	if err != nil {
		return nil, err
	}

	now := h.clock.Now()
	expiresAt := now.Add(h.ttl)

	var result *HoldResult
	err = h.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		// Lapsed holds must be reclaimed before the grant so a stale hold
		// never blocks an available unit.
		if _, err := tx.Inventory().ReleaseExpired(ctx, eventID, now); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		granted, err := tx.Inventory().HoldUnits(ctx, eventID, labels, sessionID, expiresAt, now)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		// Partial grants roll back with the transaction: all or nothing.
		if len(granted) != len(labels) {
			conflict := &InventoryConflictError{UnavailableUnits: missingLabels(labels, granted)}
			return errs.Mark(conflict, errs.ErrInventoryConflict)
		}

		result = &HoldResult{GrantedUnits: granted, ExpiresAt: expiresAt}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (h *holdCommandsImpl) Release(ctx context.Context, eventID uuid.UUID, unitLabels []string, sessionID uuid.UUID) error {
	labels, err := normalizeLabels(unitLabels)
	if err != nil {
		return err
	}

	now := h.clock.Now()
	return h.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if _, err := tx.Inventory().ReleaseUnits(ctx, eventID, labels, sessionID, now); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return nil
	})
}

func normalizeLabels(raw []string) ([]string, error) {
	if len(raw) == 0 {
		return nil, errs.Mark(errs.New("no units requested"), errs.ErrDomainValidation)
	}
	seen := make(map[string]struct{}, len(raw))
	labels := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l == "" {
			return nil, errs.Mark(errs.New("empty unit label"), errs.ErrDomainValidation)
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		labels = append(labels, l)
	}
	return labels, nil
}

func missingLabels(requested, granted []string) []string {
	grantedSet := make(map[string]struct{}, len(granted))
	for _, l := range granted {
		grantedSet[l] = struct{}{}
	}
	missing := make([]string, 0, len(requested)-len(granted))
	for _, l := range requested {
		if _, ok := grantedSet[l]; !ok {
			missing = append(missing, l)
		}
	}
	return missing
}
