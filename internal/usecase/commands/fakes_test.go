//go:build unit

package commands_test

import (
	"context"
	"sort"
	"time"

	"ticketgate/internal/domain/event"
	"ticketgate/internal/domain/inventory"
	"ticketgate/internal/domain/order"
	"ticketgate/internal/domain/ticket"
	"ticketgate/internal/infra"
	"ticketgate/internal/infra/db"
	"ticketgate/internal/pkg/errs"
	"ticketgate/internal/usecase/shared"

	"github.com/google/uuid"
)

// fakeStore is an in-memory stand-in for the Postgres-backed repositories.
// Each mutation mirrors the conditional-UPDATE semantics of the real SQL,
// and fakeUoW restores a pre-transaction snapshot on error so rollback
// behavior (all-or-nothing holds, aborted finalizations) is observable.
type fakeStore struct {
	units      map[uuid.UUID]*shared.UnitSnapshot
	orders     map[uuid.UUID]*shared.OrderSnapshot
	subTickets map[uuid.UUID]*ticket.SubTicket
	events     map[uuid.UUID]*shared.EventSnapshot
	ledger     map[string]struct{}
	jobs       []fakeJob
}

type fakeJob struct {
	Kind    string
	Topic   string
	Payload []byte
	RunAt   time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		units:      make(map[uuid.UUID]*shared.UnitSnapshot),
		orders:     make(map[uuid.UUID]*shared.OrderSnapshot),
		subTickets: make(map[uuid.UUID]*ticket.SubTicket),
		events:     make(map[uuid.UUID]*shared.EventSnapshot),
		ledger:     make(map[string]struct{}),
	}
}

func (s *fakeStore) addUnit(eventID uuid.UUID, label, kind string, priceCents int64) uuid.UUID {
	id := uuid.New()
	s.units[id] = &shared.UnitSnapshot{
		ID:         id,
		EventID:    eventID,
		Label:      label,
		Kind:       kind,
		Status:     inventory.StatusAvailable.String(),
		PriceCents: priceCents,
	}
	return id
}

func (s *fakeStore) unitByLabel(eventID uuid.UUID, label string) *shared.UnitSnapshot {
	for _, u := range s.units {
		if u.EventID == eventID && u.Label == label {
			return u
		}
	}
	return nil
}

func (s *fakeStore) clone() *fakeStore {
	c := newFakeStore()
	for id, u := range s.units {
		cp := *u
		cp.HeldBySession = copyUUIDPtr(u.HeldBySession)
		cp.HoldExpiresAt = copyTimePtr(u.HoldExpiresAt)
		cp.SoldOrderID = copyUUIDPtr(u.SoldOrderID)
		c.units[id] = &cp
	}
	for id, o := range s.orders {
		cp := *o
		cp.UnitIDs = append([]uuid.UUID(nil), o.UnitIDs...)
		if o.ExternalPaymentID != nil {
			v := *o.ExternalPaymentID
			cp.ExternalPaymentID = &v
		}
		c.orders[id] = &cp
	}
	for id, st := range s.subTickets {
		cp := *st
		c.subTickets[id] = &cp
	}
	for id, ev := range s.events {
		cp := *ev
		cp.Sections = append([]event.Section(nil), ev.Sections...)
		c.events[id] = &cp
	}
	for k := range s.ledger {
		c.ledger[k] = struct{}{}
	}
	c.jobs = append([]fakeJob(nil), s.jobs...)
	return c
}

func (s *fakeStore) restore(from *fakeStore) {
	s.units = from.units
	s.orders = from.orders
	s.subTickets = from.subTickets
	s.events = from.events
	s.ledger = from.ledger
	s.jobs = from.jobs
}

func copyUUIDPtr(p *uuid.UUID) *uuid.UUID {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyTimePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

type fakeUoW struct {
	store *fakeStore
}

func newFakeUoW(store *fakeStore) *fakeUoW {
	return &fakeUoW{store: store}
}

func (u *fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	before := u.store.clone()
	if err := fn(ctx, &fakeTx{store: u.store}); err != nil {
		u.store.restore(before)
		return err
	}
	return nil
}

func (u *fakeUoW) WithDB(ctx context.Context, fn func(ctx context.Context, q db.Querier) error) error {
	return fn(ctx, nil)
}

type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) Inventory() shared.InventoryRepository       { return &fakeInventoryRepo{t.store} }
func (t *fakeTx) Orders() shared.OrderRepository              { return &fakeOrderRepo{t.store} }
func (t *fakeTx) SubTickets() shared.SubTicketRepository      { return &fakeSubTicketRepo{t.store} }
func (t *fakeTx) Events() shared.EventRepository              { return &fakeEventRepo{t.store} }
func (t *fakeTx) PaymentLedger() shared.PaymentLedgerRepository { return &fakeLedgerRepo{t.store} }
func (t *fakeTx) Notifications() shared.NotificationRepository  { return &fakeNotificationRepo{t.store} }
func (t *fakeTx) DB() db.Querier                              { return nil }

type fakeInventoryRepo struct {
	store *fakeStore
}

func (r *fakeInventoryRepo) CreateUnits(_ context.Context, units []*inventory.Unit) error {
	for _, u := range units {
		if existing := r.store.unitByLabel(u.EventID(), u.Label().String()); existing != nil {
			return infra.WrapRepoErr("unit label already exists", errs.New("duplicate"), infra.KindDuplicateKey)
		}
		r.store.units[u.ID()] = &shared.UnitSnapshot{
			ID:         u.ID(),
			EventID:    u.EventID(),
			Label:      u.Label().String(),
			Kind:       u.Kind().String(),
			Status:     u.Status().String(),
			PriceCents: u.Price().Cents(),
		}
	}
	return nil
}

func (r *fakeInventoryRepo) ReleaseExpired(_ context.Context, eventID uuid.UUID, now time.Time) (int64, error) {
	var released int64
	for _, u := range r.store.units {
		if u.EventID != eventID {
			continue
		}
		if u.Status == inventory.StatusHeld.String() && u.HoldExpiresAt != nil && !u.HoldExpiresAt.After(now) {
			clearFakeHold(u)
			released++
		}
	}
	return released, nil
}

func (r *fakeInventoryRepo) SweepExpired(_ context.Context, now time.Time) (int64, error) {
	var released int64
	for _, u := range r.store.units {
		if u.Status == inventory.StatusHeld.String() && u.HoldExpiresAt != nil && !u.HoldExpiresAt.After(now) {
			clearFakeHold(u)
			released++
		}
	}
	return released, nil
}

func (r *fakeInventoryRepo) HoldUnits(_ context.Context, eventID uuid.UUID, labels []string, sessionID uuid.UUID, expiresAt, now time.Time) ([]string, error) {
	granted := make([]string, 0, len(labels))
	for _, label := range labels {
		u := r.store.unitByLabel(eventID, label)
		if u == nil {
			continue
		}
		available := u.Status == inventory.StatusAvailable.String()
		ownHold := u.Status == inventory.StatusHeld.String() &&
			u.HeldBySession != nil && *u.HeldBySession == sessionID
		if !available && !ownHold {
			continue
		}
		sid := sessionID
		exp := expiresAt
		u.Status = inventory.StatusHeld.String()
		u.HeldBySession = &sid
		u.HoldExpiresAt = &exp
		granted = append(granted, label)
	}
	sort.Strings(granted)
	return granted, nil
}

func (r *fakeInventoryRepo) ReleaseUnits(_ context.Context, eventID uuid.UUID, labels []string, sessionID uuid.UUID, _ time.Time) (int64, error) {
	var released int64
	for _, label := range labels {
		u := r.store.unitByLabel(eventID, label)
		if u == nil {
			continue
		}
		if u.Status == inventory.StatusHeld.String() && u.HeldBySession != nil && *u.HeldBySession == sessionID {
			clearFakeHold(u)
			released++
		}
	}
	return released, nil
}

func (r *fakeInventoryRepo) FindByLabelsForUpdate(_ context.Context, eventID uuid.UUID, labels []string) ([]shared.UnitSnapshot, error) {
	found := make([]shared.UnitSnapshot, 0, len(labels))
	for _, label := range labels {
		if u := r.store.unitByLabel(eventID, label); u != nil {
			found = append(found, *u)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Label < found[j].Label })
	return found, nil
}

func (r *fakeInventoryRepo) FindByIDsForUpdate(_ context.Context, ids []uuid.UUID) ([]shared.UnitSnapshot, error) {
	found := make([]shared.UnitSnapshot, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.store.units[id]; ok {
			found = append(found, *u)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Label < found[j].Label })
	return found, nil
}

func (r *fakeInventoryRepo) ExtendHold(_ context.Context, ids []uuid.UUID, sessionID uuid.UUID, expiresAt, _ time.Time) (int64, error) {
	var extended int64
	for _, id := range ids {
		u, ok := r.store.units[id]
		if !ok {
			continue
		}
		if u.Status == inventory.StatusHeld.String() && u.HeldBySession != nil && *u.HeldBySession == sessionID {
			exp := expiresAt
			u.HoldExpiresAt = &exp
			extended++
		}
	}
	return extended, nil
}

func (r *fakeInventoryRepo) ConfirmSold(_ context.Context, ids []uuid.UUID, sessionID, orderID uuid.UUID, _ time.Time) (int64, error) {
	var confirmed int64
	for _, id := range ids {
		u, ok := r.store.units[id]
		if !ok {
			continue
		}
		heldBySession := u.Status == inventory.StatusHeld.String() &&
			u.HeldBySession != nil && *u.HeldBySession == sessionID
		soldToOrder := u.Status == inventory.StatusSold.String() &&
			u.SoldOrderID != nil && *u.SoldOrderID == orderID
		if !heldBySession && !soldToOrder {
			continue
		}
		oid := orderID
		u.Status = inventory.StatusSold.String()
		u.SoldOrderID = &oid
		u.HeldBySession = nil
		u.HoldExpiresAt = nil
		confirmed++
	}
	return confirmed, nil
}

func (r *fakeInventoryRepo) ReleaseByIDs(_ context.Context, ids []uuid.UUID, sessionID uuid.UUID, _ time.Time) (int64, error) {
	var released int64
	for _, id := range ids {
		u, ok := r.store.units[id]
		if !ok {
			continue
		}
		if u.Status == inventory.StatusHeld.String() && u.HeldBySession != nil && *u.HeldBySession == sessionID {
			clearFakeHold(u)
			released++
		}
	}
	return released, nil
}

func clearFakeHold(u *shared.UnitSnapshot) {
	u.Status = inventory.StatusAvailable.String()
	u.HeldBySession = nil
	u.HoldExpiresAt = nil
}

type fakeOrderRepo struct {
	store *fakeStore
}

func (r *fakeOrderRepo) Create(_ context.Context, o *order.Order, units []shared.OrderUnit) error {
	unitIDs := make([]uuid.UUID, len(units))
	for i, u := range units {
		unitIDs[i] = u.UnitID
	}
	r.store.orders[o.ID()] = &shared.OrderSnapshot{
		ID:                 o.ID(),
		EventID:            o.EventID(),
		SessionID:          o.SessionID(),
		Status:             o.Status().String(),
		DeclaredPriceCents: o.DeclaredPriceCents(),
		UnitIDs:            unitIDs,
	}
	return nil
}

func (r *fakeOrderRepo) FindForUpdate(_ context.Context, id uuid.UUID) (*shared.OrderSnapshot, error) {
	o, ok := r.store.orders[id]
	if !ok {
		return nil, infra.WrapRepoErr("order not found", errs.New("no rows"), infra.KindNotFound)
	}
	cp := *o
	cp.UnitIDs = append([]uuid.UUID(nil), o.UnitIDs...)
	return &cp, nil
}

func (r *fakeOrderRepo) MarkPaid(_ context.Context, id uuid.UUID, externalPaymentID string, _ time.Time) (int64, error) {
	o, ok := r.store.orders[id]
	if !ok || o.Status != order.StatusPending.String() {
		return 0, nil
	}
	o.Status = order.StatusPaid.String()
	o.ExternalPaymentID = &externalPaymentID
	return 1, nil
}

func (r *fakeOrderRepo) MarkCancelled(_ context.Context, id uuid.UUID, _ string, _ time.Time) (int64, error) {
	o, ok := r.store.orders[id]
	if !ok || o.Status != order.StatusPending.String() {
		return 0, nil
	}
	o.Status = order.StatusCancelled.String()
	return 1, nil
}

type fakeSubTicketRepo struct {
	store *fakeStore
}

func (r *fakeSubTicketRepo) CreateBatch(_ context.Context, tickets []ticket.SubTicket) error {
	for _, st := range tickets {
		for _, existing := range r.store.subTickets {
			if existing.OrderID == st.OrderID && existing.UnitID == st.UnitID {
				return infra.WrapRepoErr("credential already issued", errs.New("duplicate"), infra.KindDuplicateKey)
			}
		}
	}
	for _, st := range tickets {
		cp := st
		r.store.subTickets[st.ID] = &cp
	}
	return nil
}

func (r *fakeSubTicketRepo) FindByID(_ context.Context, id uuid.UUID) (*ticket.SubTicket, error) {
	st, ok := r.store.subTickets[id]
	if !ok {
		return nil, infra.WrapRepoErr("credential not found", errs.New("no rows"), infra.KindNotFound)
	}
	cp := *st
	return &cp, nil
}

func (r *fakeSubTicketRepo) Redeem(_ context.Context, id uuid.UUID) (int64, error) {
	st, ok := r.store.subTickets[id]
	if !ok || st.Status != ticket.StatusIssued {
		return 0, nil
	}
	st.Status = ticket.StatusRedeemed
	return 1, nil
}

func (r *fakeSubTicketRepo) VoidByOrder(_ context.Context, orderID uuid.UUID) (int64, error) {
	var voided int64
	for _, st := range r.store.subTickets {
		if st.OrderID == orderID && st.Status == ticket.StatusIssued {
			st.Status = ticket.StatusVoid
			voided++
		}
	}
	return voided, nil
}

type fakeEventRepo struct {
	store *fakeStore
}

func (r *fakeEventRepo) Create(_ context.Context, e *event.Event) error {
	r.store.events[e.ID()] = &shared.EventSnapshot{
		ID:          e.ID(),
		OrganizerID: e.OrganizerID(),
		Name:        e.Name(),
		StartsAt:    e.StartsAt(),
		Status:      e.Status().String(),
		Sections:    e.Sections(),
	}
	return nil
}

func (r *fakeEventRepo) FindForUpdate(_ context.Context, id uuid.UUID) (*shared.EventSnapshot, error) {
	ev, ok := r.store.events[id]
	if !ok {
		return nil, infra.WrapRepoErr("event not found", errs.New("no rows"), infra.KindNotFound)
	}
	cp := *ev
	cp.Sections = append([]event.Section(nil), ev.Sections...)
	return &cp, nil
}

func (r *fakeEventRepo) MarkPublished(_ context.Context, id uuid.UUID) error {
	ev, ok := r.store.events[id]
	if !ok || ev.Status != event.StatusDraft.String() {
		return infra.WrapRepoErr("event not in draft", errs.New("zero rows"), infra.KindConflict)
	}
	ev.Status = event.StatusPublished.String()
	return nil
}

type fakeLedgerRepo struct {
	store *fakeStore
}

func (r *fakeLedgerRepo) Record(_ context.Context, externalPaymentID string, orderRef uuid.UUID, status string, _ time.Time) error {
	key := externalPaymentID + "|" + orderRef.String() + "|" + status
	if _, dup := r.store.ledger[key]; dup {
		return infra.WrapRepoErr("notification already processed", errs.New("duplicate"), infra.KindDuplicateKey)
	}
	r.store.ledger[key] = struct{}{}
	return nil
}

type fakeNotificationRepo struct {
	store *fakeStore
}

func (r *fakeNotificationRepo) CreateJob(_ context.Context, kind, topic string, payload []byte, runAt time.Time) error {
	r.store.jobs = append(r.store.jobs, fakeJob{Kind: kind, Topic: topic, Payload: payload, RunAt: runAt})
	return nil
}

type fakeCreditGate struct {
	credits int
	err     error
}

func (g *fakeCreditGate) AvailableCredits(context.Context, uuid.UUID) (int, error) {
	if g.err != nil {
		return 0, g.err
	}
	return g.credits, nil
}
