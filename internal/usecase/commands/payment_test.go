//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"ticketgate/internal/domain/inventory"
	"ticketgate/internal/domain/order"
	"ticketgate/internal/domain/ticket"
	"ticketgate/internal/pkg/clock"
	"ticketgate/internal/pkg/config"
	"ticketgate/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type paymentFixture struct {
	*orderFixture
	payments commands.PaymentCommands
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	store := newFakeStore()
	clk := clock.NewMockClock(time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC))
	cfg := config.Config{Hold: config.HoldConfig{TTL: holdTTL, PaymentWindow: paymentWindow}}
	issuer, err := ticket.NewIssuer("payment-test-secret")
	require.NoError(t, err)

	uow := newFakeUoW(store)
	orderCmd := commands.NewOrderCommands(uow, issuer, clk, cfg)
	return &paymentFixture{
		orderFixture: &orderFixture{
			store:     store,
			holds:     commands.NewHoldCommands(uow, clk, cfg),
			orders:    orderCmd,
			clk:       clk,
			issuer:    issuer,
			eventID:   uuid.New(),
			sessionID: uuid.New(),
		},
		payments: commands.NewPaymentCommands(uow, orderCmd, clk),
	}
}

func (f *paymentFixture) pendingOrder(t *testing.T) uuid.UUID {
	t.Helper()
	f.seedHeldUnits(t, []string{"A-1-1"}, 4500)
	return f.createOrder(t, []string{"A-1-1"}).OrderID
}

func (f *paymentFixture) notify(t *testing.T, paymentID, status string, orderRef string) *commands.NotificationAck {
	t.Helper()
	ack, err := f.payments.HandleNotification(context.Background(), commands.PaymentNotification{
		ExternalPaymentID: paymentID,
		Status:            status,
		OrderReference:    orderRef,
	})
	require.NoError(t, err)
	return ack
}

func TestPaymentCommands_HandleNotification(t *testing.T) {
	t.Run("approved notification settles the order", func(t *testing.T) {
		f := newPaymentFixture(t)
		orderID := f.pendingOrder(t)

		ack := f.notify(t, "pay_1", commands.PaymentStatusApproved, orderID.String())
		assert.Equal(t, commands.AckApplied, ack.Outcome)

		snap := f.store.orders[orderID]
		assert.Equal(t, order.StatusPaid.String(), snap.Status)
		assert.Len(t, f.store.subTickets, 1)
	})

	t.Run("rejected notification cancels and releases", func(t *testing.T) {
		f := newPaymentFixture(t)
		orderID := f.pendingOrder(t)

		ack := f.notify(t, "pay_1", commands.PaymentStatusRejected, orderID.String())
		assert.Equal(t, commands.AckApplied, ack.Outcome)

		snap := f.store.orders[orderID]
		assert.Equal(t, order.StatusCancelled.String(), snap.Status)
		u := f.store.unitByLabel(f.eventID, "A-1-1")
		assert.Equal(t, inventory.StatusAvailable.String(), u.Status)
	})

	t.Run("duplicate delivery is replayed via the ledger", func(t *testing.T) {
		f := newPaymentFixture(t)
		orderID := f.pendingOrder(t)

		first := f.notify(t, "pay_1", commands.PaymentStatusApproved, orderID.String())
		assert.Equal(t, commands.AckApplied, first.Outcome)

		second := f.notify(t, "pay_1", commands.PaymentStatusApproved, orderID.String())
		assert.Equal(t, commands.AckReplayed, second.Outcome)

		assert.Len(t, f.store.subTickets, 1)
		assert.Len(t, f.store.jobs, 1)
	})

	t.Run("stale rejection after settlement is ignored, order stays paid", func(t *testing.T) {
		f := newPaymentFixture(t)
		orderID := f.pendingOrder(t)

		f.notify(t, "pay_1", commands.PaymentStatusApproved, orderID.String())
		ack := f.notify(t, "pay_1", commands.PaymentStatusRejected, orderID.String())
		assert.Equal(t, commands.AckIgnored, ack.Outcome)

		snap := f.store.orders[orderID]
		assert.Equal(t, order.StatusPaid.String(), snap.Status)
		u := f.store.unitByLabel(f.eventID, "A-1-1")
		assert.Equal(t, inventory.StatusSold.String(), u.Status)
	})

	t.Run("approval after cancellation is ignored", func(t *testing.T) {
		f := newPaymentFixture(t)
		orderID := f.pendingOrder(t)

		f.notify(t, "pay_1", commands.PaymentStatusRejected, orderID.String())
		ack := f.notify(t, "pay_1", commands.PaymentStatusApproved, orderID.String())
		assert.Equal(t, commands.AckIgnored, ack.Outcome)

		snap := f.store.orders[orderID]
		assert.Equal(t, order.StatusCancelled.String(), snap.Status)
		assert.Empty(t, f.store.subTickets)
	})

	t.Run("approval after the units were resold is acked for manual refund", func(t *testing.T) {
		f := newPaymentFixture(t)
		orderID := f.pendingOrder(t)

		// Payment window lapses and a rival session takes the unit before
		// the provider's approval lands.
		f.clk.Add(paymentWindow)
		rival := uuid.New()
		_, err := f.holds.Hold(context.Background(), f.eventID, []string{"A-1-1"}, rival)
		require.NoError(t, err)

		ack := f.notify(t, "pay_1", commands.PaymentStatusApproved, orderID.String())
		assert.Equal(t, commands.AckIgnored, ack.Outcome)

		// The order must not settle and the delivery stays recorded, so a
		// provider retry replays instead of looping.
		snap := f.store.orders[orderID]
		assert.Equal(t, order.StatusPending.String(), snap.Status)
		assert.Empty(t, f.store.subTickets)
		assert.Len(t, f.store.ledger, 1)

		retry := f.notify(t, "pay_1", commands.PaymentStatusApproved, orderID.String())
		assert.Equal(t, commands.AckReplayed, retry.Outcome)
	})

	t.Run("approval with a different payment id replays an already-paid order", func(t *testing.T) {
		f := newPaymentFixture(t)
		orderID := f.pendingOrder(t)

		f.notify(t, "pay_1", commands.PaymentStatusApproved, orderID.String())
		ack := f.notify(t, "pay_2", commands.PaymentStatusApproved, orderID.String())
		assert.Equal(t, commands.AckReplayed, ack.Outcome)
		assert.Len(t, f.store.subTickets, 1)
	})

	t.Run("unknown order reference", func(t *testing.T) {
		f := newPaymentFixture(t)
		ack := f.notify(t, "pay_1", commands.PaymentStatusApproved, uuid.New().String())
		assert.Equal(t, commands.AckUnknownOrder, ack.Outcome)
	})

	t.Run("unparseable order reference", func(t *testing.T) {
		f := newPaymentFixture(t)
		ack := f.notify(t, "pay_1", commands.PaymentStatusApproved, "not-a-uuid")
		assert.Equal(t, commands.AckUnknownOrder, ack.Outcome)
	})

	t.Run("pending status is ignored without touching the ledger", func(t *testing.T) {
		f := newPaymentFixture(t)
		orderID := f.pendingOrder(t)

		ack := f.notify(t, "pay_1", commands.PaymentStatusPending, orderID.String())
		assert.Equal(t, commands.AckIgnored, ack.Outcome)
		assert.Empty(t, f.store.ledger)

		// The eventual approval with the same payment id must still apply.
		final := f.notify(t, "pay_1", commands.PaymentStatusApproved, orderID.String())
		assert.Equal(t, commands.AckApplied, final.Outcome)
	})

	t.Run("unknown status is ignored", func(t *testing.T) {
		f := newPaymentFixture(t)
		orderID := f.pendingOrder(t)

		ack := f.notify(t, "pay_1", "chargeback", orderID.String())
		assert.Equal(t, commands.AckIgnored, ack.Outcome)
		assert.Equal(t, order.StatusPending.String(), f.store.orders[orderID].Status)
	})

	t.Run("missing payment id is ignored", func(t *testing.T) {
		f := newPaymentFixture(t)
		orderID := f.pendingOrder(t)

		ack := f.notify(t, "", commands.PaymentStatusApproved, orderID.String())
		assert.Equal(t, commands.AckIgnored, ack.Outcome)
	})

	t.Run("rejected and approved for the same payment are distinct ledger entries", func(t *testing.T) {
		f := newPaymentFixture(t)
		orderID := f.pendingOrder(t)

		first := f.notify(t, "pay_1", commands.PaymentStatusRejected, orderID.String())
		assert.Equal(t, commands.AckApplied, first.Outcome)

		// Out-of-order approval after the rejection already settled the
		// order; a distinct status is not a ledger duplicate.
		second := f.notify(t, "pay_1", commands.PaymentStatusApproved, orderID.String())
		assert.Equal(t, commands.AckIgnored, second.Outcome)
	})
}
