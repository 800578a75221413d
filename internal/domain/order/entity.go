package order

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNoUnits           = errors.New("order must reference at least one unit")
	ErrEmptyBuyerName    = errors.New("buyer name cannot be empty")
	ErrInvalidBuyerEmail = errors.New("invalid buyer email")
	ErrAlreadyTerminal   = errors.New("order is already in a terminal state")
	ErrNotPending        = errors.New("order is not pending")
)

type Buyer struct {
	name  string
	email string
}

func NewBuyer(name, email string) (Buyer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Buyer{}, ErrEmptyBuyerName
	}
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return Buyer{}, ErrInvalidBuyerEmail
	}
	return Buyer{name: name, email: email}, nil
}

func (b Buyer) Name() string  { return b.name }
func (b Buyer) Email() string { return b.email }

// Order is one buyer's purchase attempt over one or more inventory units.
// The state machine is pending -> {paid, cancelled}; both are terminal and
// transitions out of a terminal state are rejected here, with the caller
// deciding whether the rejection is a no-op (duplicate delivery) or a
// violation worth logging.
type Order struct {
	id                uuid.UUID
	eventID           uuid.UUID
	sessionID         uuid.UUID
	unitIDs           []uuid.UUID
	buyer             Buyer
	declaredPrice     int64
	status            Status
	externalPaymentID *string
	cancelReason      *string
	createdAt         time.Time
	updatedAt         time.Time
}

// NewOrder freezes declaredPriceCents at creation: later price changes to
// the event's sections never retroactively affect an open order.
func NewOrder(eventID, sessionID uuid.UUID, unitIDs []uuid.UUID, buyer Buyer, declaredPriceCents int64, now time.Time) (*Order, error) {
	if len(unitIDs) == 0 {
		return nil, ErrNoUnits
	}

	ids := make([]uuid.UUID, len(unitIDs))
	copy(ids, unitIDs)

	return &Order{
		id:            uuid.New(),
		eventID:       eventID,
		sessionID:     sessionID,
		unitIDs:       ids,
		buyer:         buyer,
		declaredPrice: declaredPriceCents,
		status:        StatusPending,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

func ReconstructOrder(
	id, eventID, sessionID uuid.UUID,
	unitIDs []uuid.UUID,
	buyer Buyer,
	declaredPriceCents int64,
	status Status,
	externalPaymentID *string,
	cancelReason *string,
	createdAt, updatedAt time.Time,
) *Order {
	return &Order{
		id:                id,
		eventID:           eventID,
		sessionID:         sessionID,
		unitIDs:           unitIDs,
		buyer:             buyer,
		declaredPrice:     declaredPriceCents,
		status:            status,
		externalPaymentID: externalPaymentID,
		cancelReason:      cancelReason,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

// MarkPaid transitions pending -> paid. Returns ErrAlreadyTerminal when the
// order is already terminal; the caller distinguishes an idempotent replay
// (already paid) from a violation (already cancelled) via Status().
func (o *Order) MarkPaid(externalPaymentID string, now time.Time) error {
	if o.status.IsTerminal() {
		return ErrAlreadyTerminal
	}
	o.status = StatusPaid
	o.externalPaymentID = &externalPaymentID
	o.updatedAt = now
	return nil
}

// MarkCancelled transitions pending -> cancelled.
func (o *Order) MarkCancelled(reason string, now time.Time) error {
	if o.status.IsTerminal() {
		return ErrAlreadyTerminal
	}
	o.status = StatusCancelled
	o.cancelReason = &reason
	o.updatedAt = now
	return nil
}

func (o *Order) IsPending() bool {
	return o.status == StatusPending
}

func (o *Order) ID() uuid.UUID               { return o.id }
func (o *Order) EventID() uuid.UUID          { return o.eventID }
func (o *Order) SessionID() uuid.UUID        { return o.sessionID }
func (o *Order) UnitIDs() []uuid.UUID        { return o.unitIDs }
func (o *Order) Buyer() Buyer                { return o.buyer }
func (o *Order) DeclaredPriceCents() int64   { return o.declaredPrice }
func (o *Order) Status() Status              { return o.status }
func (o *Order) ExternalPaymentID() *string  { return o.externalPaymentID }
func (o *Order) CancelReason() *string       { return o.cancelReason }
func (o *Order) CreatedAt() time.Time        { return o.createdAt }
func (o *Order) UpdatedAt() time.Time        { return o.updatedAt }
