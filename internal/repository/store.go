package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/car-rental-service/internal/booking"
	"github.com/iliyamo/car-rental-service/internal/model"
)

// Store implements booking.Store on MySQL.  Each RunInTx call wraps one
// transaction; the row lock taken by CarForUpdate inside it serializes
// the availability scan against concurrent bookings of the same car.
type Store struct {
	db           *sql.DB
	cars         *CarRepo
	reservations *ReservationRepo
	payments     *PaymentRepo
}

// NewStore wires the transactional store over the table repositories.
func NewStore(db *sql.DB, cars *CarRepo, reservations *ReservationRepo, payments *PaymentRepo) *Store {
	if db == nil || cars == nil || reservations == nil || payments == nil {
		panic("nil dependency passed to NewStore")
	}
	return &Store{db: db, cars: cars, reservations: reservations, payments: payments}
}

// RunInTx executes fn within a single transaction, rolling back unless
// the function completed and the commit succeeded.
func (s *Store) RunInTx(ctx context.Context, fn func(tx booking.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = sqlTx.Rollback()
		}
	}()
	if err := fn(&storeTx{s: s, tx: sqlTx}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// storeTx adapts the table repositories' ...Tx methods to booking.Tx,
// translating repository sentinels into the booking package's.
type storeTx struct {
	s  *Store
	tx *sql.Tx
}

func (t *storeTx) Car(ctx context.Context, carID uint64) (*model.Car, error) {
	car, err := t.s.cars.GetByIDTx(ctx, t.tx, carID)
	if errors.Is(err, ErrCarNotFound) {
		return nil, booking.ErrCarNotFound
	}
	return car, err
}

func (t *storeTx) CarForUpdate(ctx context.Context, carID uint64) (*model.Car, error) {
	car, err := t.s.cars.GetForUpdateTx(ctx, t.tx, carID)
	if errors.Is(err, ErrCarNotFound) {
		return nil, booking.ErrCarNotFound
	}
	return car, err
}

func (t *storeTx) CountOverlapping(ctx context.Context, carID uint64, start, end time.Time, excludeID uint64) (int, error) {
	return t.s.reservations.CountOverlappingTx(ctx, t.tx, carID, start, end, excludeID)
}

func (t *storeTx) InsertReservation(ctx context.Context, r *model.Reservation) error {
	return t.s.reservations.CreateTx(ctx, t.tx, r)
}

func (t *storeTx) ReservationByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	res, err := t.s.reservations.GetByIDTx(ctx, t.tx, id)
	if errors.Is(err, ErrReservationNotFound) {
		return nil, booking.ErrReservationNotFound
	}
	return res, err
}

func (t *storeTx) UpdateReservationDates(ctx context.Context, id uint64, start, end time.Time) error {
	err := t.s.reservations.UpdateDatesTx(ctx, t.tx, id, start, end)
	if errors.Is(err, ErrReservationNotFound) {
		return booking.ErrReservationNotFound
	}
	return err
}

func (t *storeTx) UpdateReservationStatus(ctx context.Context, id uint64, status string) error {
	err := t.s.reservations.UpdateStatusTx(ctx, t.tx, id, status)
	if errors.Is(err, ErrReservationNotFound) {
		return booking.ErrReservationNotFound
	}
	return err
}

func (t *storeTx) InsertPayment(ctx context.Context, p *model.Payment) error {
	return t.s.payments.CreateTx(ctx, t.tx, p)
}
