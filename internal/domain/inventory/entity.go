package inventory

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNegativePrice    = errors.New("price cannot be negative")
	ErrInvalidStatus    = errors.New("invalid unit status")
	ErrInvalidKind      = errors.New("invalid unit kind")
	ErrEmptyLabel       = errors.New("unit label cannot be empty")
	ErrNotHoldable      = errors.New("unit cannot be held")
	ErrNotHeldBySession = errors.New("unit not held by this session")
	ErrAlreadySold      = errors.New("unit already sold")
)

// Unit is one sellable inventory item: a numbered seat or one slot within a
// general-admission tier. The authoritative status lives in the store; this
// entity encodes the legal transitions for validation and tests.
type Unit struct {
	id            uuid.UUID
	eventID       uuid.UUID
	sectionID     uuid.UUID
	label         Label
	kind          Kind
	status        Status
	price         Money
	heldBySession *uuid.UUID
	holdExpiresAt *time.Time
	soldOrderID   *uuid.UUID
	createdAt     time.Time
	updatedAt     time.Time
}

func NewUnit(eventID, sectionID uuid.UUID, label Label, kind Kind, price Money, now time.Time) (*Unit, error) {
	if label.IsEmpty() {
		return nil, ErrEmptyLabel
	}
	if !kind.IsValid() {
		return nil, ErrInvalidKind
	}

	return &Unit{
		id:        uuid.New(),
		eventID:   eventID,
		sectionID: sectionID,
		label:     label,
		kind:      kind,
		status:    StatusAvailable,
		price:     price,
		createdAt: now,
		updatedAt: now,
	}, nil
}

func ReconstructUnit(
	id, eventID, sectionID uuid.UUID,
	label Label,
	kind Kind,
	status Status,
	price Money,
	heldBySession *uuid.UUID,
	holdExpiresAt *time.Time,
	soldOrderID *uuid.UUID,
	createdAt, updatedAt time.Time,
) *Unit {
	return &Unit{
		id:            id,
		eventID:       eventID,
		sectionID:     sectionID,
		label:         label,
		kind:          kind,
		status:        status,
		price:         price,
		heldBySession: heldBySession,
		holdExpiresAt: holdExpiresAt,
		soldOrderID:   soldOrderID,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// EffectiveStatus reports the unit status with lapsed holds treated as
// available, so a stale hold is never observable as HELD.
func (u *Unit) EffectiveStatus(now time.Time) Status {
	if u.status == StatusHeld && u.holdExpired(now) {
		return StatusAvailable
	}
	return u.status
}

func (u *Unit) holdExpired(now time.Time) bool {
	return u.holdExpiresAt == nil || !u.holdExpiresAt.After(now)
}

// Holdable reports whether a hold can be granted to sessionID: the unit is
// available (including a lapsed hold), or already held by the same session
// (idempotent re-hold).
func (u *Unit) Holdable(sessionID uuid.UUID, now time.Time) bool {
	switch u.EffectiveStatus(now) {
	case StatusAvailable:
		return true
	case StatusHeld:
		return u.heldBySession != nil && *u.heldBySession == sessionID
	default:
		return false
	}
}

// Hold grants or refreshes a session-scoped hold.
func (u *Unit) Hold(sessionID uuid.UUID, expiresAt, now time.Time) error {
	if !u.Holdable(sessionID, now) {
		return ErrNotHoldable
	}
	sid := sessionID
	u.status = StatusHeld
	u.heldBySession = &sid
	u.holdExpiresAt = &expiresAt
	u.updatedAt = now
	return nil
}

// Release clears a hold owned by sessionID. Releasing a unit held by
// another session is a silent no-op so a stale client cannot free someone
// else's hold.
func (u *Unit) Release(sessionID uuid.UUID, now time.Time) {
	if u.status != StatusHeld || u.heldBySession == nil || *u.heldBySession != sessionID {
		return
	}
	u.clearHold(now)
}

// Expire sweeps a lapsed hold back to available. Idempotent.
func (u *Unit) Expire(now time.Time) bool {
	if u.status != StatusHeld || !u.holdExpired(now) {
		return false
	}
	u.clearHold(now)
	return true
}

// ConfirmSold finalizes the unit for an order. Succeeds only while the unit
// is still held by the session, or when it was already sold to the same
// order (idempotent retry).
func (u *Unit) ConfirmSold(sessionID, orderID uuid.UUID, now time.Time) error {
	if u.status == StatusSold {
		if u.soldOrderID != nil && *u.soldOrderID == orderID {
			return nil
		}
		return ErrAlreadySold
	}
	if u.status != StatusHeld || u.heldBySession == nil || *u.heldBySession != sessionID {
		return ErrNotHeldBySession
	}
	oid := orderID
	u.status = StatusSold
	u.soldOrderID = &oid
	u.heldBySession = nil
	u.holdExpiresAt = nil
	u.updatedAt = now
	return nil
}

// ReleaseFromOrder is the compensating transition for a failed order:
// whatever the session still holds goes back to available.
func (u *Unit) ReleaseFromOrder(sessionID uuid.UUID, now time.Time) {
	u.Release(sessionID, now)
}

func (u *Unit) clearHold(now time.Time) {
	u.status = StatusAvailable
	u.heldBySession = nil
	u.holdExpiresAt = nil
	u.updatedAt = now
}

func (u *Unit) ID() uuid.UUID             { return u.id }
func (u *Unit) EventID() uuid.UUID        { return u.eventID }
func (u *Unit) SectionID() uuid.UUID      { return u.sectionID }
func (u *Unit) Label() Label              { return u.label }
func (u *Unit) Kind() Kind                { return u.kind }
func (u *Unit) Status() Status            { return u.status }
func (u *Unit) Price() Money              { return u.price }
func (u *Unit) HeldBySession() *uuid.UUID { return u.heldBySession }
func (u *Unit) HoldExpiresAt() *time.Time { return u.holdExpiresAt }
func (u *Unit) SoldOrderID() *uuid.UUID   { return u.soldOrderID }
func (u *Unit) CreatedAt() time.Time      { return u.createdAt }
func (u *Unit) UpdatedAt() time.Time      { return u.updatedAt }
