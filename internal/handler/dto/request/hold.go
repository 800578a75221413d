package request

import (
	"strings"

	"github.com/google/uuid"
)

type HoldRequest struct {
	UnitIDs   []string  `json:"unit_ids" binding:"required,min=1"`
	SessionID uuid.UUID `json:"session_id" binding:"required"`
}

// NormalizedUnitIDs trims labels and drops empties; the usecase dedupes.
func (r HoldRequest) NormalizedUnitIDs() []string {
	ids := make([]string, 0, len(r.UnitIDs))
	for _, id := range r.UnitIDs {
		trimmed := strings.TrimSpace(id)
		if trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}

type ReleaseRequest struct {
	UnitIDs   []string  `json:"unit_ids" binding:"required,min=1"`
	SessionID uuid.UUID `json:"session_id" binding:"required"`
}

func (r ReleaseRequest) NormalizedUnitIDs() []string {
	return HoldRequest{UnitIDs: r.UnitIDs}.NormalizedUnitIDs()
}
