package ticket

import (
	"time"

	"github.com/google/uuid"
)

// SubTicket is one redeemable credential for one purchased unit. The
// validation hash is recomputable from the embedded fields; any mismatch
// on verification signals tampering.
type SubTicket struct {
	ID             uuid.UUID
	OrderID        uuid.UUID
	UnitID         uuid.UUID
	UnitLabel      string
	UnitKind       string
	PriceCents     int64
	ValidationHash string
	Status         RedemptionStatus
	IssuedAt       time.Time
}
