package repository

import (
	"context"
	"time"

	"ticketgate/internal/domain/inventory"
	"ticketgate/internal/infra"
	"ticketgate/internal/infra/db"
	"ticketgate/internal/pkg/pgconv"
	"ticketgate/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type InventoryRepository struct {
	db db.Querier
}

func NewInventoryRepository(q db.Querier) *InventoryRepository {
	return &InventoryRepository{db: q}
}

func (r *InventoryRepository) CreateUnits(ctx context.Context, units []*inventory.Unit) error {
	const stmt = `
INSERT INTO inventory_units
  (id, event_id, section_id, label, kind, status, price_cents, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	for _, u := range units {
		_, err := r.db.Exec(ctx, stmt,
			u.ID(),
			u.EventID(),
			u.SectionID(),
			u.Label().String(),
			u.Kind().String(),
			u.Status().String(),
			u.Price().Cents(),
			u.CreatedAt(),
			u.UpdatedAt(),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return infra.WrapRepoErr("duplicate unit label", err, infra.KindDuplicateKey)
			}
			return infra.WrapRepoErr("failed to create inventory unit", err)
		}
	}
	return nil
}

func (r *InventoryRepository) ReleaseExpired(ctx context.Context, eventID uuid.UUID, now time.Time) (int64, error) {
	const stmt = `
UPDATE inventory_units
SET status = 'available', held_by_session = NULL, hold_expires_at = NULL, updated_at = $2
WHERE event_id = $1 AND status = 'held' AND hold_expires_at <= $2`

	tag, err := r.db.Exec(ctx, stmt, eventID, now)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to release expired holds", err)
	}
	return tag.RowsAffected(), nil
}

func (r *InventoryRepository) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	const stmt = `
UPDATE inventory_units
SET status = 'available', held_by_session = NULL, hold_expires_at = NULL, updated_at = $1
WHERE status = 'held' AND hold_expires_at <= $1`

	tag, err := r.db.Exec(ctx, stmt, now)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to sweep expired holds", err)
	}
	return tag.RowsAffected(), nil
}

// HoldUnits grants holds in one conditional statement: an available unit or
// a unit already held by the same session matches, anything else stays
// untouched. Concurrent sessions racing for the same label see their row
// count fall short instead of a partial grant.
func (r *InventoryRepository) HoldUnits(ctx context.Context, eventID uuid.UUID, labels []string, sessionID uuid.UUID, expiresAt, now time.Time) ([]string, error) {
	const stmt = `
UPDATE inventory_units
SET status = 'held', held_by_session = $3, hold_expires_at = $4, updated_at = $5
WHERE event_id = $1 AND label = ANY($2)
  AND (status = 'available'
       OR (status = 'held' AND held_by_session = $3))
RETURNING label`

	rows, err := r.db.Query(ctx, stmt, eventID, labels, sessionID, expiresAt, now)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to hold units", err)
	}
	defer rows.Close()

	granted := make([]string, 0, len(labels))
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, infra.WrapRepoErr("failed to scan granted label", err)
		}
		granted = append(granted, label)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read granted labels", err)
	}
	return granted, nil
}

func (r *InventoryRepository) ReleaseUnits(ctx context.Context, eventID uuid.UUID, labels []string, sessionID uuid.UUID, now time.Time) (int64, error) {
	const stmt = `
UPDATE inventory_units
SET status = 'available', held_by_session = NULL, hold_expires_at = NULL, updated_at = $4
WHERE event_id = $1 AND label = ANY($2)
  AND status = 'held' AND held_by_session = $3`

	tag, err := r.db.Exec(ctx, stmt, eventID, labels, sessionID, now)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to release units", err)
	}
	return tag.RowsAffected(), nil
}

const unitSnapshotColumns = `
id, event_id, label, kind, status, price_cents, held_by_session, hold_expires_at, sold_order_id`

func (r *InventoryRepository) FindByLabelsForUpdate(ctx context.Context, eventID uuid.UUID, labels []string) ([]shared.UnitSnapshot, error) {
	const query = `
SELECT` + unitSnapshotColumns + `
FROM inventory_units
WHERE event_id = $1 AND label = ANY($2)
ORDER BY label
FOR UPDATE`

	rows, err := r.db.Query(ctx, query, eventID, labels)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to lock units by label", err)
	}
	defer rows.Close()
	return scanUnitSnapshots(rows)
}

func (r *InventoryRepository) FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]shared.UnitSnapshot, error) {
	const query = `
SELECT` + unitSnapshotColumns + `
FROM inventory_units
WHERE id = ANY($1)
ORDER BY label
FOR UPDATE`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to lock units by id", err)
	}
	defer rows.Close()
	return scanUnitSnapshots(rows)
}

func (r *InventoryRepository) ExtendHold(ctx context.Context, ids []uuid.UUID, sessionID uuid.UUID, expiresAt, now time.Time) (int64, error) {
	const stmt = `
UPDATE inventory_units
SET hold_expires_at = $3, updated_at = $4
WHERE id = ANY($1) AND status = 'held' AND held_by_session = $2`

	tag, err := r.db.Exec(ctx, stmt, ids, sessionID, expiresAt, now)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to extend hold", err)
	}
	return tag.RowsAffected(), nil
}

// ConfirmSold also matches units already sold to the same order so that a
// replayed finalization counts them instead of failing.
func (r *InventoryRepository) ConfirmSold(ctx context.Context, ids []uuid.UUID, sessionID, orderID uuid.UUID, now time.Time) (int64, error) {
	const stmt = `
UPDATE inventory_units
SET status = 'sold', sold_order_id = $3, held_by_session = NULL, hold_expires_at = NULL, updated_at = $4
WHERE id = ANY($1)
  AND ((status = 'held' AND held_by_session = $2)
       OR (status = 'sold' AND sold_order_id = $3))`

	tag, err := r.db.Exec(ctx, stmt, ids, sessionID, orderID, now)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to confirm units sold", err)
	}
	return tag.RowsAffected(), nil
}

func (r *InventoryRepository) ReleaseByIDs(ctx context.Context, ids []uuid.UUID, sessionID uuid.UUID, now time.Time) (int64, error) {
	const stmt = `
UPDATE inventory_units
SET status = 'available', held_by_session = NULL, hold_expires_at = NULL, updated_at = $3
WHERE id = ANY($1) AND status = 'held' AND held_by_session = $2`

	tag, err := r.db.Exec(ctx, stmt, ids, sessionID, now)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to release units by id", err)
	}
	return tag.RowsAffected(), nil
}

func scanUnitSnapshots(rows pgx.Rows) ([]shared.UnitSnapshot, error) {
	var snapshots []shared.UnitSnapshot
	for rows.Next() {
		var (
			s             shared.UnitSnapshot
			heldBySession pgtype.UUID
			holdExpiresAt pgtype.Timestamptz
			soldOrderID   pgtype.UUID
		)
		if err := rows.Scan(
			&s.ID, &s.EventID, &s.Label, &s.Kind, &s.Status, &s.PriceCents,
			&heldBySession, &holdExpiresAt, &soldOrderID,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan unit snapshot", err)
		}
		s.HeldBySession = pgconv.UUIDPtrFromPgtype(heldBySession)
		s.HoldExpiresAt = pgconv.TimePtrFromPgtype(holdExpiresAt)
		s.SoldOrderID = pgconv.UUIDPtrFromPgtype(soldOrderID)
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read unit snapshots", err)
	}
	return snapshots, nil
}
