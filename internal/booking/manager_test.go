package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/car-rental-service/internal/model"
	"github.com/iliyamo/car-rental-service/internal/payment"
)

// memStore is an in-memory Store.  A single mutex spans each RunInTx
// call, which mirrors what the row lock on the car gives the SQL
// implementation: transactions touching the same data serialize.
type memStore struct {
	mu           sync.Mutex
	cars         map[uint64]*model.Car
	reservations map[uint64]*model.Reservation
	payments     map[uint64]*model.Payment
	nextID       uint64
}

func newMemStore() *memStore {
	return &memStore{
		cars:         map[uint64]*model.Car{},
		reservations: map[uint64]*model.Reservation{},
		payments:     map[uint64]*model.Payment{},
		nextID:       1,
	}
}

func (s *memStore) addCar(id uint64, rateCents uint32) {
	s.cars[id] = &model.Car{ID: id, VIN: "4Y1SL65848Z411439", Make: "Toyota", Model: "Corolla",
		Year: 2022, DailyRateCents: rateCents, Status: model.CarStatusAvailable}
}

func (s *memStore) addReservation(r model.Reservation) uint64 {
	r.ID = s.nextID
	s.nextID++
	s.reservations[r.ID] = &r
	return r.ID
}

func (s *memStore) RunInTx(_ context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&memTx{s: s})
}

type memTx struct{ s *memStore }

func (t *memTx) Car(_ context.Context, carID uint64) (*model.Car, error) {
	c, ok := t.s.cars[carID]
	if !ok {
		return nil, ErrCarNotFound
	}
	cp := *c
	return &cp, nil
}

func (t *memTx) CarForUpdate(ctx context.Context, carID uint64) (*model.Car, error) {
	return t.Car(ctx, carID)
}

func (t *memTx) CountOverlapping(_ context.Context, carID uint64, start, end time.Time, excludeID uint64) (int, error) {
	n := 0
	for _, r := range t.s.reservations {
		if r.CarID != carID || r.ID == excludeID {
			continue
		}
		if r.Status != StatusPending && r.Status != StatusConfirmed {
			continue
		}
		if Overlaps(r.StartDatetime, r.EndDatetime, start, end) {
			n++
		}
	}
	return n, nil
}

func (t *memTx) InsertReservation(_ context.Context, r *model.Reservation) error {
	r.ID = t.s.nextID
	t.s.nextID++
	r.CreatedAt = time.Now().UTC()
	cp := *r
	t.s.reservations[r.ID] = &cp
	return nil
}

func (t *memTx) ReservationByID(_ context.Context, id uint64) (*model.Reservation, error) {
	r, ok := t.s.reservations[id]
	if !ok {
		return nil, ErrReservationNotFound
	}
	cp := *r
	return &cp, nil
}

func (t *memTx) UpdateReservationDates(_ context.Context, id uint64, start, end time.Time) error {
	r, ok := t.s.reservations[id]
	if !ok {
		return ErrReservationNotFound
	}
	r.StartDatetime, r.EndDatetime = start, end
	return nil
}

func (t *memTx) UpdateReservationStatus(_ context.Context, id uint64, status string) error {
	r, ok := t.s.reservations[id]
	if !ok {
		return ErrReservationNotFound
	}
	r.Status = status
	return nil
}

func (t *memTx) InsertPayment(_ context.Context, p *model.Payment) error {
	p.ID = t.s.nextID
	t.s.nextID++
	p.CreatedAt = time.Now().UTC()
	cp := *p
	t.s.payments[p.ID] = &cp
	return nil
}

// --- Helpers ---

func newTestManager(s *memStore) *Manager {
	return NewManager(s, payment.NewStubGateway(""), "USD")
}

func day(t *testing.T, d int) time.Time {
	t.Helper()
	return time.Date(2026, 3, d, 10, 0, 0, 0, time.UTC)
}

// --- CheckAvailability ---

func TestCheckAvailability(t *testing.T) {
	store := newMemStore()
	store.addCar(1, 5000)
	store.addReservation(model.Reservation{
		UserID: 7, CarID: 1, StartDatetime: day(t, 5), EndDatetime: day(t, 8), Status: StatusConfirmed,
	})
	m := newTestManager(store)
	ctx := context.Background()

	free, err := m.CheckAvailability(ctx, 1, day(t, 1), day(t, 3), 0)
	if err != nil || !free {
		t.Fatalf("disjoint interval: got (%v, %v), want free", free, err)
	}
	free, err = m.CheckAvailability(ctx, 1, day(t, 6), day(t, 7), 0)
	if err != nil || free {
		t.Fatalf("overlapping interval: got (%v, %v), want busy", free, err)
	}
	// Half-open: a rental starting the day the other ends is fine.
	free, err = m.CheckAvailability(ctx, 1, day(t, 8), day(t, 10), 0)
	if err != nil || !free {
		t.Fatalf("back-to-back interval: got (%v, %v), want free", free, err)
	}
}

func TestCheckAvailabilityIgnoresTerminalReservations(t *testing.T) {
	store := newMemStore()
	store.addCar(1, 5000)
	store.addReservation(model.Reservation{
		UserID: 7, CarID: 1, StartDatetime: day(t, 5), EndDatetime: day(t, 8), Status: StatusCancelled,
	})
	store.addReservation(model.Reservation{
		UserID: 7, CarID: 1, StartDatetime: day(t, 5), EndDatetime: day(t, 8), Status: StatusCompleted,
	})
	m := newTestManager(store)

	free, err := m.CheckAvailability(context.Background(), 1, day(t, 5), day(t, 8), 0)
	if err != nil || !free {
		t.Fatalf("terminal reservations must not block: got (%v, %v)", free, err)
	}
}

func TestCheckAvailabilityErrors(t *testing.T) {
	store := newMemStore()
	store.addCar(1, 5000)
	m := newTestManager(store)
	ctx := context.Background()

	if _, err := m.CheckAvailability(ctx, 99, day(t, 1), day(t, 2), 0); KindOf(err) != KindNotFound {
		t.Errorf("unknown car: got %v, want not-found", err)
	}
	if _, err := m.CheckAvailability(ctx, 1, day(t, 2), day(t, 1), 0); KindOf(err) != KindValidation {
		t.Errorf("inverted interval: got %v, want validation", err)
	}
}

// --- CreateReservation ---

func TestCreateReservation(t *testing.T) {
	store := newMemStore()
	store.addCar(1, 4500)
	m := newTestManager(store)

	res, err := m.CreateReservation(context.Background(), 7, 1, day(t, 1), day(t, 4))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.ID == 0 {
		t.Error("reservation ID not populated")
	}
	if res.Status != StatusConfirmed {
		t.Errorf("status = %s, want confirmed", res.Status)
	}
	if res.DailyRateCents != 4500 {
		t.Errorf("rate snapshot = %d, want 4500", res.DailyRateCents)
	}
}

func TestCreateReservationConflict(t *testing.T) {
	store := newMemStore()
	store.addCar(1, 4500)
	m := newTestManager(store)
	ctx := context.Background()

	if _, err := m.CreateReservation(ctx, 7, 1, day(t, 1), day(t, 4)); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := m.CreateReservation(ctx, 8, 1, day(t, 3), day(t, 6)); KindOf(err) != KindConflict {
		t.Errorf("overlapping create: got %v, want conflict", err)
	}
	// Back-to-back succeeds under half-open semantics.
	if _, err := m.CreateReservation(ctx, 8, 1, day(t, 4), day(t, 6)); err != nil {
		t.Errorf("back-to-back create: %v", err)
	}
}

func TestCreateReservationRateSnapshotSurvivesPriceChange(t *testing.T) {
	store := newMemStore()
	store.addCar(1, 4500)
	m := newTestManager(store)

	res, err := m.CreateReservation(context.Background(), 7, 1, day(t, 1), day(t, 4))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	store.cars[1].DailyRateCents = 9900

	got, err := store.lookup(res.ID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.DailyRateCents != 4500 {
		t.Errorf("snapshot changed with car price: %d", got.DailyRateCents)
	}
}

// Two goroutines race to book the same car and interval; the store
// serializes transactions the way the database's row lock does, so
// exactly one may win.
func TestCreateReservationConcurrentRace(t *testing.T) {
	store := newMemStore()
	store.addCar(1, 4500)
	m := newTestManager(store)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = m.CreateReservation(context.Background(), uint64(i+1), 1, day(t, 1), day(t, 4))
		}(i)
	}
	wg.Wait()

	var ok, conflict int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case KindOf(err) == KindConflict:
			conflict++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflict != 1 {
		t.Fatalf("got %d successes and %d conflicts, want exactly one of each", ok, conflict)
	}
}

// --- UpdateReservationDates ---

func TestUpdateReservationDates(t *testing.T) {
	store := newMemStore()
	store.addCar(1, 4500)
	m := newTestManager(store)
	ctx := context.Background()

	res, err := m.CreateReservation(ctx, 7, 1, day(t, 1), day(t, 4))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Shifting within its own interval must not conflict with itself.
	moved, err := m.UpdateReservationDates(ctx, res.ID, day(t, 2), day(t, 5))
	if err != nil {
		t.Fatalf("update dates: %v", err)
	}
	if !moved.StartDatetime.Equal(day(t, 2)) || !moved.EndDatetime.Equal(day(t, 5)) {
		t.Errorf("interval not updated: %v .. %v", moved.StartDatetime, moved.EndDatetime)
	}
	if moved.DailyRateCents != 4500 {
		t.Errorf("rate snapshot changed on date update: %d", moved.DailyRateCents)
	}
}

func TestUpdateReservationDatesConflicts(t *testing.T) {
	store := newMemStore()
	store.addCar(1, 4500)
	m := newTestManager(store)
	ctx := context.Background()

	first, err := m.CreateReservation(ctx, 7, 1, day(t, 1), day(t, 4))
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := m.CreateReservation(ctx, 8, 1, day(t, 10), day(t, 12))
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	if _, err := m.UpdateReservationDates(ctx, second.ID, day(t, 3), day(t, 11)); KindOf(err) != KindConflict {
		t.Errorf("move onto first: got %v, want conflict", err)
	}
	// The loser keeps its original interval.
	got, err := store.lookup(second.ID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !got.StartDatetime.Equal(day(t, 10)) || !got.EndDatetime.Equal(day(t, 12)) {
		t.Errorf("rejected update mutated the reservation: %v .. %v", got.StartDatetime, got.EndDatetime)
	}
	_ = first
}

func TestUpdateReservationDatesTerminal(t *testing.T) {
	store := newMemStore()
	store.addCar(1, 4500)
	id := store.addReservation(model.Reservation{
		UserID: 7, CarID: 1, StartDatetime: day(t, 1), EndDatetime: day(t, 4),
		DailyRateCents: 4500, Status: StatusCompleted,
	})
	m := newTestManager(store)

	if _, err := m.UpdateReservationDates(context.Background(), id, day(t, 2), day(t, 5)); KindOf(err) != KindInvalidState {
		t.Errorf("terminal update: got %v, want invalid-state", err)
	}
}

// --- Transitions ---

func TestTransitions(t *testing.T) {
	store := newMemStore()
	store.addCar(1, 4500)
	m := newTestManager(store)
	ctx := context.Background()

	pendingID := store.addReservation(model.Reservation{
		UserID: 7, CarID: 1, StartDatetime: day(t, 1), EndDatetime: day(t, 3),
		DailyRateCents: 4500, Status: StatusPending,
	})

	res, err := m.ConfirmReservation(ctx, pendingID)
	if err != nil || res.Status != StatusConfirmed {
		t.Fatalf("confirm: (%v, %v)", res, err)
	}
	res, err = m.CompleteReservation(ctx, pendingID)
	if err != nil || res.Status != StatusCompleted {
		t.Fatalf("complete: (%v, %v)", res, err)
	}
	// Terminal states reject every further transition.
	if _, err := m.CancelReservation(ctx, pendingID); KindOf(err) != KindInvalidState {
		t.Errorf("cancel completed: got %v, want invalid-state", err)
	}
	if _, err := m.ConfirmReservation(ctx, pendingID); KindOf(err) != KindInvalidState {
		t.Errorf("confirm completed: got %v, want invalid-state", err)
	}
}

func TestCancelFreesTheInterval(t *testing.T) {
	store := newMemStore()
	store.addCar(1, 4500)
	m := newTestManager(store)
	ctx := context.Background()

	res, err := m.CreateReservation(ctx, 7, 1, day(t, 1), day(t, 4))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := m.CancelReservation(ctx, res.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := m.CreateReservation(ctx, 8, 1, day(t, 1), day(t, 4)); err != nil {
		t.Errorf("rebooking a cancelled interval: %v", err)
	}
}

func TestTransitionNotFound(t *testing.T) {
	store := newMemStore()
	m := newTestManager(store)
	if _, err := m.CancelReservation(context.Background(), 42); KindOf(err) != KindNotFound {
		t.Errorf("cancel missing: got %v, want not-found", err)
	}
}

// --- RecordPayment ---

func TestRecordPayment(t *testing.T) {
	store := newMemStore()
	store.addCar(1, 4500)
	m := newTestManager(store)
	ctx := context.Background()

	res, err := m.CreateReservation(ctx, 7, 1, day(t, 1), day(t, 4)) // 3 days
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	total := ExpectedTotalCents(res)
	if total != 13500 {
		t.Fatalf("expected total = %d, want 13500", total)
	}

	p, err := m.RecordPayment(ctx, res.ID, uint32(total), "card")
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if p.Status != model.PaymentStatusPaid {
		t.Errorf("card payment status = %s, want paid", p.Status)
	}
	if p.Currency != "USD" {
		t.Errorf("currency = %s, want USD", p.Currency)
	}
	if p.ProviderRef == "" {
		t.Error("provider_ref not populated")
	}
}

func TestRecordPaymentCash(t *testing.T) {
	store := newMemStore()
	store.addCar(1, 4500)
	m := newTestManager(store)
	ctx := context.Background()

	res, err := m.CreateReservation(ctx, 7, 1, day(t, 1), day(t, 2))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	p, err := m.RecordPayment(ctx, res.ID, uint32(ExpectedTotalCents(res)), "cash")
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if p.Status != model.PaymentStatusPending {
		t.Errorf("cash payment status = %s, want pending", p.Status)
	}
}

func TestRecordPaymentValidation(t *testing.T) {
	store := newMemStore()
	store.addCar(1, 4500)
	m := newTestManager(store)
	ctx := context.Background()

	res, err := m.CreateReservation(ctx, 7, 1, day(t, 1), day(t, 4))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := m.RecordPayment(ctx, res.ID, 0, "card"); KindOf(err) != KindValidation {
		t.Errorf("zero amount: got %v, want validation", err)
	}
	if _, err := m.RecordPayment(ctx, res.ID, 1, "card"); KindOf(err) != KindValidation {
		t.Errorf("wrong amount: got %v, want validation", err)
	}
	if _, err := m.RecordPayment(ctx, res.ID, uint32(ExpectedTotalCents(res)), "crypto"); KindOf(err) != KindValidation {
		t.Errorf("unknown method: got %v, want validation", err)
	}
	if _, err := m.RecordPayment(ctx, 99, 4500, "card"); KindOf(err) != KindNotFound {
		t.Errorf("missing reservation: got %v, want not-found", err)
	}
}

func TestCreateReservationMissingCar(t *testing.T) {
	store := newMemStore()
	m := newTestManager(store)
	if _, err := m.CreateReservation(context.Background(), 7, 99, day(t, 1), day(t, 2)); KindOf(err) != KindNotFound {
		t.Fatalf("missing car: got %v, want not-found", err)
	}
	if len(store.reservations) != 0 {
		t.Errorf("store holds %d reservations after a failed create, want 0", len(store.reservations))
	}
}

// failingGateway simulates an unreachable payment provider.
type failingGateway struct{}

func (failingGateway) Authorize(context.Context, payment.AuthRequest) (payment.Authorization, error) {
	return payment.Authorization{}, errors.New("connect: connection refused")
}

func TestRecordPaymentGatewayFailure(t *testing.T) {
	store := newMemStore()
	store.addCar(1, 4500)
	m := NewManager(store, failingGateway{}, "USD")
	ctx := context.Background()

	res, err := m.CreateReservation(ctx, 7, 1, day(t, 1), day(t, 2))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := m.RecordPayment(ctx, res.ID, uint32(ExpectedTotalCents(res)), "card"); KindOf(err) != KindInternal {
		t.Errorf("gateway failure: got %v, want internal", err)
	}
	if len(store.payments) != 0 {
		t.Errorf("store holds %d payments after a failed authorization, want 0", len(store.payments))
	}
}

func TestRecordPaymentTotalDoesNotWrap(t *testing.T) {
	store := newMemStore()
	store.addCar(1, 300_000_000)
	m := newTestManager(store)
	ctx := context.Background()

	res, err := m.CreateReservation(ctx, 7, 1, day(t, 1), day(t, 21)) // 20 days
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	total := ExpectedTotalCents(res)
	if total != 6_000_000_000 {
		t.Fatalf("expected total = %d, want 6000000000", total)
	}
	// uint32(total) is the truncated product an overflowing computation
	// would have produced; it must not validate as the real total.
	if _, err := m.RecordPayment(ctx, res.ID, uint32(total), "card"); KindOf(err) != KindValidation {
		t.Errorf("wrapped amount: got %v, want validation", err)
	}
}

// lookup fetches a reservation copy outside any manager operation.
func (s *memStore) lookup(id uint64) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return nil, ErrReservationNotFound
	}
	cp := *r
	return &cp, nil
}
