package booking

import (
	"context"
	"time"

	"github.com/iliyamo/car-rental-service/internal/model"
)

// Store is the transactional boundary the manager requires from its
// persistence collaborator.  Every manager operation runs inside a
// single RunInTx call so the availability scan and the following
// insert/update commit or roll back together.
type Store interface {
	// RunInTx executes fn within one transaction.  When fn returns an
	// error the transaction is rolled back and the error is returned
	// unchanged; commit failures surface as their own error.
	RunInTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx exposes the row operations available inside a transaction.
// Implementations return ErrCarNotFound/ErrReservationNotFound when a
// looked-up row does not exist.
type Tx interface {
	// Car loads a car without locking it.
	Car(ctx context.Context, carID uint64) (*model.Car, error)
	// CarForUpdate loads a car and takes a row lock on it, serializing
	// concurrent bookings of the same car for the rest of the
	// transaction.
	CarForUpdate(ctx context.Context, carID uint64) (*model.Car, error)
	// CountOverlapping counts reservations for carID with status in
	// ActiveStatuses whose [start_datetime, end_datetime) intersects
	// [start, end).  excludeID, when non-zero, removes that
	// reservation from the scan (used on date updates).
	CountOverlapping(ctx context.Context, carID uint64, start, end time.Time, excludeID uint64) (int, error)
	// InsertReservation persists r and populates its ID and CreatedAt.
	InsertReservation(ctx context.Context, r *model.Reservation) error
	// ReservationByID loads a reservation.
	ReservationByID(ctx context.Context, id uint64) (*model.Reservation, error)
	// UpdateReservationDates rewrites the interval of a reservation.
	UpdateReservationDates(ctx context.Context, id uint64, start, end time.Time) error
	// UpdateReservationStatus moves a reservation to a new status.
	UpdateReservationStatus(ctx context.Context, id uint64, status string) error
	// InsertPayment persists p and populates its ID and CreatedAt.
	InsertPayment(ctx context.Context, p *model.Payment) error
}
