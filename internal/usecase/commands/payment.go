package commands

import (
	"context"
	"errors"
	"log/slog"

	"ticketgate/internal/infra"
	"ticketgate/internal/pkg/clock"
	"ticketgate/internal/pkg/errs"
	"ticketgate/internal/usecase/shared"

	"github.com/google/uuid"
)

// Provider status codes carried by payment notifications.
const (
	PaymentStatusApproved  = "approved"
	PaymentStatusRejected  = "rejected"
	PaymentStatusCancelled = "cancelled"
	PaymentStatusPending   = "pending"
)

// Ack outcomes. Every outcome is an acknowledgement: the provider must
// stop retrying regardless of what we did with the notification.
const (
	AckApplied      = "applied"
	AckReplayed     = "replayed"
	AckUnknownOrder = "unknown_order"
	AckIgnored      = "ignored"
)

type PaymentNotification struct {
	ExternalPaymentID string
	Status            string
	OrderReference    string
}

type NotificationAck struct {
	Outcome string
}

// PaymentCommands reconciles asynchronous, at-least-once, possibly
// out-of-order provider notifications into the order state machine. The
// processed-notifications ledger dedupes deliveries; terminal-state no-ops
// neutralize stale out-of-order arrivals.
type PaymentCommands interface {
	HandleNotification(ctx context.Context, n PaymentNotification) (*NotificationAck, error)
}

type paymentCommandsImpl struct {
	uow    shared.UnitOfWork
	orders *orderCommandsImpl
	clock  clock.Clock
}

func NewPaymentCommands(uow shared.UnitOfWork, orders OrderCommands, clk clock.Clock) PaymentCommands {
	impl, ok := orders.(*orderCommandsImpl)
	if !ok {
		panic("payment commands require the order commands implementation")
	}
	return &paymentCommandsImpl{
		uow:    uow,
		orders: impl,
		clock:  clk,
	}
}

func (p *paymentCommandsImpl) HandleNotification(ctx context.Context, n PaymentNotification) (*NotificationAck, error) {
	if n.ExternalPaymentID == "" {
		slog.Warn("payment notification without payment id", "order_ref", n.OrderReference)
		return &NotificationAck{Outcome: AckIgnored}, nil
	}

	switch n.Status {
	case PaymentStatusApproved, PaymentStatusRejected, PaymentStatusCancelled:
	case PaymentStatusPending:
		// Nothing to reconcile yet; the provider will follow up.
		return &NotificationAck{Outcome: AckIgnored}, nil
	default:
		slog.Warn("payment notification with unknown status",
			"payment_id", n.ExternalPaymentID, "status", n.Status)
		return &NotificationAck{Outcome: AckIgnored}, nil
	}

	orderRef, err := uuid.Parse(n.OrderReference)
	if err != nil {
		// Wrong environment or garbage reference: acknowledge so the
		// provider stops retrying, keep the evidence in the logs.
		slog.Warn("payment notification with unparseable order reference",
			"payment_id", n.ExternalPaymentID, "order_ref", n.OrderReference)
		return &NotificationAck{Outcome: AckUnknownOrder}, nil
	}

	now := p.clock.Now()

	var ack *NotificationAck
	err = p.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		// The ledger row commits together with whatever the notification
		// causes; a duplicate delivery hits the unique key and is replayed.
		if err := tx.PaymentLedger().Record(ctx, n.ExternalPaymentID, orderRef, n.Status, now); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				ack = &NotificationAck{Outcome: AckReplayed}
				return nil
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		var result *FinalizeResult
		var applyErr error
		switch n.Status {
		case PaymentStatusApproved:
			result, applyErr = p.orders.finalizePaidTx(ctx, tx, orderRef, n.ExternalPaymentID)
		default:
			result, applyErr = p.orders.finalizeFailedTx(ctx, tx, orderRef, "payment "+n.Status)
		}

		switch {
		case applyErr == nil:
			if result.Replayed {
				ack = &NotificationAck{Outcome: AckReplayed}
			} else {
				ack = &NotificationAck{Outcome: AckApplied}
			}
			return nil
		case errors.Is(applyErr, errs.ErrOrderNotFound):
			slog.Warn("payment notification for unknown order",
				"payment_id", n.ExternalPaymentID, "order_id", orderRef)
			ack = &NotificationAck{Outcome: AckUnknownOrder}
			return nil
		case errors.Is(applyErr, errs.ErrTerminalStateViolation):
			// A stale notification arrived after the order settled the
			// other way. Never downgrade a terminal order; audit and ack.
			slog.Warn("stale payment notification for terminal order",
				"payment_id", n.ExternalPaymentID, "order_id", orderRef, "status", n.Status)
			ack = &NotificationAck{Outcome: AckIgnored}
			return nil
		case errors.Is(applyErr, errs.ErrInventoryConflict):
			// The buyer's hold lapsed and the units were resold before the
			// approval arrived. Retrying cannot converge; ack and leave the
			// payment for manual refund handling.
			slog.Error("approved payment for resold units needs manual refund",
				"payment_id", n.ExternalPaymentID, "order_id", orderRef)
			ack = &NotificationAck{Outcome: AckIgnored}
			return nil
		default:
			return applyErr
		}
	})
	if err != nil {
		// Store-level failures are the one case worth a provider retry.
		// The ledger dedupes whatever gets reprocessed.
		return nil, err
	}
	return ack, nil
}
