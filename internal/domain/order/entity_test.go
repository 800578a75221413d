//go:build unit

package order_test

import (
	"testing"
	"time"

	"ticketgate/internal/domain/order"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestOrder(t *testing.T) *order.Order {
	t.Helper()
	buyer, err := order.NewBuyer("Ada Buyer", "ada@example.com")
	require.NoError(t, err)
	o, err := order.NewOrder(uuid.New(), uuid.New(), []uuid.UUID{uuid.New(), uuid.New()}, buyer, 9000, testNow)
	require.NoError(t, err)
	return o
}

func TestNewBuyer(t *testing.T) {
	t.Run("valid buyer", func(t *testing.T) {
		b, err := order.NewBuyer("  Ada Buyer ", "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, "Ada Buyer", b.Name())
		assert.Equal(t, "ada@example.com", b.Email())
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := order.NewBuyer("   ", "ada@example.com")
		assert.ErrorIs(t, err, order.ErrEmptyBuyerName)
	})

	t.Run("invalid email", func(t *testing.T) {
		for _, email := range []string{"", "not-an-email", "a@"} {
			_, err := order.NewBuyer("Ada Buyer", email)
			assert.ErrorIs(t, err, order.ErrInvalidBuyerEmail, "email %q", email)
		}
	})
}

func TestNewOrder(t *testing.T) {
	t.Run("starts pending with the declared price frozen", func(t *testing.T) {
		o := newTestOrder(t)
		assert.Equal(t, order.StatusPending, o.Status())
		assert.True(t, o.IsPending())
		assert.Equal(t, int64(9000), o.DeclaredPriceCents())
		assert.Len(t, o.UnitIDs(), 2)
		assert.Nil(t, o.ExternalPaymentID())
	})

	t.Run("requires at least one unit", func(t *testing.T) {
		buyer, err := order.NewBuyer("Ada Buyer", "ada@example.com")
		require.NoError(t, err)
		_, err = order.NewOrder(uuid.New(), uuid.New(), nil, buyer, 0, testNow)
		assert.ErrorIs(t, err, order.ErrNoUnits)
	})
}

func TestOrder_MarkPaid(t *testing.T) {
	t.Run("pending to paid", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.MarkPaid("pay_123", testNow))
		assert.Equal(t, order.StatusPaid, o.Status())
		require.NotNil(t, o.ExternalPaymentID())
		assert.Equal(t, "pay_123", *o.ExternalPaymentID())
	})

	t.Run("terminal orders reject the transition", func(t *testing.T) {
		paid := newTestOrder(t)
		require.NoError(t, paid.MarkPaid("pay_123", testNow))
		assert.ErrorIs(t, paid.MarkPaid("pay_456", testNow), order.ErrAlreadyTerminal)
		assert.Equal(t, "pay_123", *paid.ExternalPaymentID())

		cancelled := newTestOrder(t)
		require.NoError(t, cancelled.MarkCancelled("payment rejected", testNow))
		assert.ErrorIs(t, cancelled.MarkPaid("pay_123", testNow), order.ErrAlreadyTerminal)
		assert.Equal(t, order.StatusCancelled, cancelled.Status())
	})
}

func TestOrder_MarkCancelled(t *testing.T) {
	t.Run("pending to cancelled with a reason", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.MarkCancelled("payment rejected", testNow))
		assert.Equal(t, order.StatusCancelled, o.Status())
		require.NotNil(t, o.CancelReason())
		assert.Equal(t, "payment rejected", *o.CancelReason())
	})

	t.Run("a paid order can never be cancelled", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.MarkPaid("pay_123", testNow))
		assert.ErrorIs(t, o.MarkCancelled("too late", testNow), order.ErrAlreadyTerminal)
		assert.Equal(t, order.StatusPaid, o.Status())
	})
}

func TestStatus(t *testing.T) {
	assert.False(t, order.StatusPending.IsTerminal())
	assert.True(t, order.StatusPaid.IsTerminal())
	assert.True(t, order.StatusCancelled.IsTerminal())
	assert.False(t, order.Status("refunded").IsValid())
}
