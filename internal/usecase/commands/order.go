package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"ticketgate/internal/domain/inventory"
	"ticketgate/internal/domain/order"
	"ticketgate/internal/domain/ticket"
	"ticketgate/internal/infra"
	"ticketgate/internal/pkg/clock"
	"ticketgate/internal/pkg/config"
	"ticketgate/internal/pkg/errs"
	"ticketgate/internal/usecase/shared"

	"github.com/google/uuid"
)

type BuyerInput struct {
	Name  string
	Email string
}

type CreateOrderInput struct {
	EventID    uuid.UUID
	UnitLabels []string
	SessionID  uuid.UUID
	Buyer      BuyerInput
}

type CreateOrderResult struct {
	OrderID            uuid.UUID
	DeclaredPriceCents int64
}

type FinalizeResult struct {
	OrderID uuid.UUID
	Status  order.Status
	// Replayed marks an idempotent no-op on an already-terminal order.
	Replayed bool
}

type OrderCommands interface {
	// CreateOrder converts a live session hold into a pending purchase
	// attempt, freezing the declared price.
	CreateOrder(ctx context.Context, in CreateOrderInput) (*CreateOrderResult, error)
	// FinalizeAsPaid drives pending -> paid in one transaction: units to
	// sold, credentials issued, side effects enqueued. Idempotent on replay.
	FinalizeAsPaid(ctx context.Context, orderID uuid.UUID, externalPaymentID string) (*FinalizeResult, error)
	// FinalizeAsFailed drives pending -> cancelled and releases the units.
	// Idempotent on replay; a paid order can never be un-paid.
	FinalizeAsFailed(ctx context.Context, orderID uuid.UUID, reason string) (*FinalizeResult, error)
	// ConfirmManual is the organizer override for manual payment methods:
	// the same state machine with a synthesized payment reference.
	ConfirmManual(ctx context.Context, orderID, organizerID uuid.UUID) (*FinalizeResult, error)
	// VoidTickets invalidates every issued credential of an order, for
	// refunds and revoked sales. Idempotent; returns the count voided.
	VoidTickets(ctx context.Context, orderID, organizerID uuid.UUID) (int64, error)
}

type orderCommandsImpl struct {
	uow           shared.UnitOfWork
	issuer        *ticket.Issuer
	clock         clock.Clock
	paymentWindow time.Duration
}

func NewOrderCommands(uow shared.UnitOfWork, issuer *ticket.Issuer, clk clock.Clock, cfg config.Config) OrderCommands {
	return &orderCommandsImpl{
		uow:           uow,
		issuer:        issuer,
		clock:         clk,
		paymentWindow: cfg.Hold.PaymentWindow,
	}
}

func (o *orderCommandsImpl) CreateOrder(ctx context.Context, in CreateOrderInput) (*CreateOrderResult, error) {
	labels, err := normalizeLabels(in.UnitLabels)
	if err != nil {
		return nil, err
	}

	buyer, err := order.NewBuyer(in.Buyer.Name, in.Buyer.Email)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}

	now := o.clock.Now()

	var result *CreateOrderResult
	err = o.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		units, err := tx.Inventory().FindByLabelsForUpdate(ctx, in.EventID, labels)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if len(units) != len(labels) {
			return errs.Mark(errs.New("unknown unit labels"), errs.ErrUnitNotFound)
		}

		unitIDs := make([]uuid.UUID, len(units))
		orderUnits := make([]shared.OrderUnit, len(units))
		var declared int64
		for idx, u := range units {
			if !u.HeldBy(in.SessionID, now) {
				if u.HeldBySession != nil && *u.HeldBySession == in.SessionID {
					return errs.Mark(errs.New("hold lapsed for "+u.Label), errs.ErrHoldExpired)
				}
				return errs.Mark(errs.New("unit not held by session: "+u.Label), errs.ErrInventoryNotHeld)
			}
			unitIDs[idx] = u.ID
			orderUnits[idx] = shared.OrderUnit{UnitID: u.ID, PriceCents: u.PriceCents}
			declared += u.PriceCents
		}

		ord, err := order.NewOrder(in.EventID, in.SessionID, unitIDs, buyer, declared, now)
		if err != nil {
			return errs.Mark(err, errs.ErrDomainValidation)
		}

		if err := tx.Orders().Create(ctx, ord, orderUnits); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		// The external payment runs out-of-band; stretch the hold so the
		// units survive until the provider notification lands.
		if _, err := tx.Inventory().ExtendHold(ctx, unitIDs, in.SessionID, now.Add(o.paymentWindow), now); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		result = &CreateOrderResult{OrderID: ord.ID(), DeclaredPriceCents: declared}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (o *orderCommandsImpl) FinalizeAsPaid(ctx context.Context, orderID uuid.UUID, externalPaymentID string) (*FinalizeResult, error) {
	var result *FinalizeResult
	err := o.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		r, err := o.finalizePaidTx(ctx, tx, orderID, externalPaymentID)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (o *orderCommandsImpl) FinalizeAsFailed(ctx context.Context, orderID uuid.UUID, reason string) (*FinalizeResult, error) {
	var result *FinalizeResult
	err := o.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		r, err := o.finalizeFailedTx(ctx, tx, orderID, reason)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (o *orderCommandsImpl) ConfirmManual(ctx context.Context, orderID, organizerID uuid.UUID) (*FinalizeResult, error) {
	reference := "manual:" + organizerID.String()
	return o.FinalizeAsPaid(ctx, orderID, reference)
}

func (o *orderCommandsImpl) VoidTickets(ctx context.Context, orderID, organizerID uuid.UUID) (int64, error) {
	var voided int64
	err := o.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if _, err := tx.Orders().FindForUpdate(ctx, orderID); err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, errs.ErrOrderNotFound)
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		n, err := tx.SubTickets().VoidByOrder(ctx, orderID)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		voided = n
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Info("credentials voided for order",
		"order_id", orderID, "organizer_id", organizerID, "voided", voided)
	return voided, nil
}

// finalizePaidTx is the single pending->paid path, shared by the API
// commands and the payment reconciliation worker.
func (o *orderCommandsImpl) finalizePaidTx(ctx context.Context, tx shared.Tx, orderID uuid.UUID, externalPaymentID string) (*FinalizeResult, error) {
	snap, err := tx.Orders().FindForUpdate(ctx, orderID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrOrderNotFound)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	switch order.Status(snap.Status) {
	case order.StatusPaid:
		if snap.ExternalPaymentID != nil && *snap.ExternalPaymentID != externalPaymentID {
			slog.Warn("duplicate paid notification with different payment id",
				"order_id", orderID,
				"stored_payment_id", *snap.ExternalPaymentID,
				"incoming_payment_id", externalPaymentID)
		}
		return &FinalizeResult{OrderID: orderID, Status: order.StatusPaid, Replayed: true}, nil

	case order.StatusCancelled:
		return nil, errs.Mark(errs.New("cannot pay a cancelled order"), errs.ErrTerminalStateViolation)
	}

	now := o.clock.Now()

	units, err := tx.Inventory().FindByIDsForUpdate(ctx, snap.UnitIDs)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	// Verify eligibility under the row locks before mutating anything, so
	// a conflict leaves the inventory untouched even when the caller goes
	// on to commit the transaction.
	if len(units) != len(snap.UnitIDs) {
		return nil, errs.Mark(errs.New("units no longer held by the order session"), errs.ErrInventoryConflict)
	}
	for _, u := range units {
		heldBySession := u.Status == inventory.StatusHeld.String() &&
			u.HeldBySession != nil && *u.HeldBySession == snap.SessionID
		soldToOrder := u.Status == inventory.StatusSold.String() &&
			u.SoldOrderID != nil && *u.SoldOrderID == orderID
		if !heldBySession && !soldToOrder {
			return nil, errs.Mark(errs.New("units no longer held by the order session"), errs.ErrInventoryConflict)
		}
	}

	affected, err := tx.Inventory().ConfirmSold(ctx, snap.UnitIDs, snap.SessionID, orderID, now)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if affected != int64(len(snap.UnitIDs)) {
		return nil, errs.Mark(errs.New("units no longer held by the order session"), errs.ErrInventoryConflict)
	}

	if _, err := tx.Orders().MarkPaid(ctx, orderID, externalPaymentID, now); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	// Credentials are issued exactly once: only this transition creates
	// them, and the transition itself happens at most once.
	subTickets := make([]ticket.SubTicket, len(units))
	for idx, u := range units {
		subTickets[idx] = o.issuer.Issue(orderID, ticket.UnitInfo{
			ID:         u.ID,
			Label:      u.Label,
			Kind:       u.Kind,
			PriceCents: u.PriceCents,
		}, now)
	}
	if err := tx.SubTickets().CreateBatch(ctx, subTickets); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	if err := o.enqueueOrderJob(ctx, tx, "order_paid", orderID, now); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	return &FinalizeResult{OrderID: orderID, Status: order.StatusPaid}, nil
}

// finalizeFailedTx is the single pending->cancelled path.
func (o *orderCommandsImpl) finalizeFailedTx(ctx context.Context, tx shared.Tx, orderID uuid.UUID, reason string) (*FinalizeResult, error) {
	snap, err := tx.Orders().FindForUpdate(ctx, orderID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrOrderNotFound)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	switch order.Status(snap.Status) {
	case order.StatusCancelled:
		return &FinalizeResult{OrderID: orderID, Status: order.StatusCancelled, Replayed: true}, nil

	case order.StatusPaid:
		return nil, errs.Mark(errs.New("cannot cancel a paid order"), errs.ErrTerminalStateViolation)
	}

	now := o.clock.Now()

	if _, err := tx.Orders().MarkCancelled(ctx, orderID, reason, now); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	// Compensating release: the units go straight back on sale.
	if _, err := tx.Inventory().ReleaseByIDs(ctx, snap.UnitIDs, snap.SessionID, now); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	if err := o.enqueueOrderJob(ctx, tx, "order_cancelled", orderID, now); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	return &FinalizeResult{OrderID: orderID, Status: order.StatusCancelled}, nil
}

func (o *orderCommandsImpl) enqueueOrderJob(ctx context.Context, tx shared.Tx, topic string, orderID uuid.UUID, now time.Time) error {
	payload, err := json.Marshal(map[string]any{
		"order_id": orderID,
		"type":     topic,
	})
	if err != nil {
		return err
	}
	return tx.Notifications().CreateJob(ctx, "email", topic, payload, now)
}
