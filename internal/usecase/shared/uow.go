package shared

import (
	"context"
	"time"

	"ticketgate/internal/domain/event"
	"ticketgate/internal/domain/inventory"
	"ticketgate/internal/domain/order"
	"ticketgate/internal/domain/ticket"
	"ticketgate/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithDB: Single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, q db.Querier) error) error
}

type Tx interface {
	Inventory() InventoryRepository
	Orders() OrderRepository
	SubTickets() SubTicketRepository
	Events() EventRepository
	PaymentLedger() PaymentLedgerRepository
	Notifications() NotificationRepository
	DB() db.Querier
}

// UnitSnapshot is the command-side read of one inventory unit.
type UnitSnapshot struct {
	ID            uuid.UUID
	EventID       uuid.UUID
	Label         string
	Kind          string
	Status        string
	PriceCents    int64
	HeldBySession *uuid.UUID
	HoldExpiresAt *time.Time
	SoldOrderID   *uuid.UUID
}

// HeldBy reports whether the unit carries a live hold for the session.
func (u UnitSnapshot) HeldBy(sessionID uuid.UUID, now time.Time) bool {
	return u.Status == inventory.StatusHeld.String() &&
		u.HeldBySession != nil && *u.HeldBySession == sessionID &&
		u.HoldExpiresAt != nil && u.HoldExpiresAt.After(now)
}

type OrderSnapshot struct {
	ID                 uuid.UUID
	EventID            uuid.UUID
	SessionID          uuid.UUID
	Status             string
	DeclaredPriceCents int64
	ExternalPaymentID  *string
	UnitIDs            []uuid.UUID
}

type OrderUnit struct {
	UnitID     uuid.UUID
	PriceCents int64
}

// InventoryRepository owns the authoritative unit status. Every multi-unit
// mutation is a single conditional UPDATE so races lose with a row-count
// shortfall instead of corrupting state; all-or-nothing comes from running
// them inside Tx and aborting on shortfall.
type InventoryRepository interface {
	// CreateUnits inserts the fixed unit set at event publication.
	CreateUnits(ctx context.Context, units []*inventory.Unit) error
	// ReleaseExpired sweeps lapsed holds for one event (lazy sweep).
	ReleaseExpired(ctx context.Context, eventID uuid.UUID, now time.Time) (int64, error)
	// SweepExpired sweeps lapsed holds across all events (background sweep).
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
	// HoldUnits grants or refreshes holds, returning the granted labels.
	HoldUnits(ctx context.Context, eventID uuid.UUID, labels []string, sessionID uuid.UUID, expiresAt, now time.Time) ([]string, error)
	// ReleaseUnits frees holds owned by the session; others untouched.
	ReleaseUnits(ctx context.Context, eventID uuid.UUID, labels []string, sessionID uuid.UUID, now time.Time) (int64, error)
	// FindByLabelsForUpdate locks the units for the rest of the transaction.
	FindByLabelsForUpdate(ctx context.Context, eventID uuid.UUID, labels []string) ([]UnitSnapshot, error)
	// FindByIDsForUpdate locks units by surrogate id (order finalization).
	FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]UnitSnapshot, error)
	// ExtendHold pushes hold expiry out for units held by the session.
	ExtendHold(ctx context.Context, ids []uuid.UUID, sessionID uuid.UUID, expiresAt, now time.Time) (int64, error)
	// ConfirmSold finalizes held units for an order, idempotent per order.
	ConfirmSold(ctx context.Context, ids []uuid.UUID, sessionID, orderID uuid.UUID, now time.Time) (int64, error)
	// ReleaseByIDs is the compensating release on order failure.
	ReleaseByIDs(ctx context.Context, ids []uuid.UUID, sessionID uuid.UUID, now time.Time) (int64, error)
}

type OrderRepository interface {
	Create(ctx context.Context, o *order.Order, units []OrderUnit) error
	// FindForUpdate locks the order row; all lifecycle transitions go
	// through this lock.
	FindForUpdate(ctx context.Context, id uuid.UUID) (*OrderSnapshot, error)
	MarkPaid(ctx context.Context, id uuid.UUID, externalPaymentID string, now time.Time) (int64, error)
	MarkCancelled(ctx context.Context, id uuid.UUID, reason string, now time.Time) (int64, error)
}

type SubTicketRepository interface {
	CreateBatch(ctx context.Context, tickets []ticket.SubTicket) error
	FindByID(ctx context.Context, id uuid.UUID) (*ticket.SubTicket, error)
	// Redeem moves issued -> redeemed; returns rows affected.
	Redeem(ctx context.Context, id uuid.UUID) (int64, error)
	// VoidByOrder voids every credential of an order (administrative).
	VoidByOrder(ctx context.Context, orderID uuid.UUID) (int64, error)
}

type EventSnapshot struct {
	ID          uuid.UUID
	OrganizerID uuid.UUID
	Name        string
	StartsAt    time.Time
	Status      string
	Sections    []event.Section
}

type EventRepository interface {
	Create(ctx context.Context, e *event.Event) error
	FindForUpdate(ctx context.Context, id uuid.UUID) (*EventSnapshot, error)
	MarkPublished(ctx context.Context, id uuid.UUID) error
}

// PaymentLedgerRepository is the processed-notifications ledger: the
// (externalPaymentID, orderRef, status) triple is the idempotency key for
// at-least-once webhook delivery.
type PaymentLedgerRepository interface {
	Record(ctx context.Context, externalPaymentID string, orderRef uuid.UUID, status string, receivedAt time.Time) error
}

// NotificationRepository is the transactional outbox: side effects commit
// with the state transition and are delivered by a separate consumer, so a
// downstream failure never rolls back financial state.
type NotificationRepository interface {
	CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error
}

// CreditGate is the external organizer-credit collaborator consulted
// before an event's units are created.
type CreditGate interface {
	AvailableCredits(ctx context.Context, organizerID uuid.UUID) (int, error)
}
