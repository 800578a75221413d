package repository

import (
	"context"
	"time"

	"ticketgate/internal/infra"
	"ticketgate/internal/infra/db"

	"github.com/google/uuid"
)

type PaymentLedgerRepository struct {
	db db.Querier
}

func NewPaymentLedgerRepository(q db.Querier) *PaymentLedgerRepository {
	return &PaymentLedgerRepository{db: q}
}

// Record appends one processed notification. The unique triple
// (external_payment_id, order_id, status) makes a redelivered notification
// surface as DUPLICATE_KEY instead of a second state transition.
func (r *PaymentLedgerRepository) Record(ctx context.Context, externalPaymentID string, orderRef uuid.UUID, status string, receivedAt time.Time) error {
	const stmt = `
INSERT INTO payment_notifications (id, external_payment_id, order_id, status, received_at)
VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, stmt, uuid.New(), externalPaymentID, orderRef, status, receivedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return infra.WrapRepoErr("notification already processed", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to record payment notification", err)
	}
	return nil
}
