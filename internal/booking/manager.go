package booking

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/car-rental-service/internal/model"
	"github.com/iliyamo/car-rental-service/internal/payment"
)

// Manager owns the rule that a car cannot be double-booked and the
// reservation/payment status transitions.  It performs no retries:
// transient persistence failures surface as internal errors and are the
// caller's responsibility.
type Manager struct {
	store    Store
	gateway  payment.Gateway
	currency string
}

// NewManager wires the manager to its persistence store and payment
// gateway.  currency is the ISO code recorded on payments.
func NewManager(store Store, gateway payment.Gateway, currency string) *Manager {
	if store == nil || gateway == nil {
		panic("nil dependency passed to NewManager")
	}
	if currency == "" {
		currency = "USD"
	}
	return &Manager{store: store, gateway: gateway, currency: currency}
}

// CheckAvailability reports whether carID is free for the half-open
// interval [start, end).  Only pending and confirmed reservations are
// scanned; excludeReservationID, when non-zero, is left out of the scan
// so a reservation never conflicts with itself on update.
func (m *Manager) CheckAvailability(ctx context.Context, carID uint64, start, end time.Time, excludeReservationID uint64) (bool, error) {
	if err := validateInterval(start, end); err != nil {
		return false, err
	}
	available := false
	err := m.store.RunInTx(ctx, func(tx Tx) error {
		if _, err := tx.Car(ctx, carID); err != nil {
			if errors.Is(err, ErrCarNotFound) {
				return NewNotFound("car %d not found", carID)
			}
			return NewInternal("load car", err)
		}
		n, err := tx.CountOverlapping(ctx, carID, start, end, excludeReservationID)
		if err != nil {
			return NewInternal("scan overlapping reservations", err)
		}
		available = n == 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return available, nil
}

// CreateReservation books carID for userID over [start, end).  The
// availability scan and the insert run in one transaction with a row
// lock on the car, so two concurrent calls for the same car cannot both
// succeed.  The car's current daily rate is snapshotted onto the
// reservation and the reservation is persisted as confirmed.
func (m *Manager) CreateReservation(ctx context.Context, userID, carID uint64, start, end time.Time) (*model.Reservation, error) {
	if err := validateInterval(start, end); err != nil {
		return nil, err
	}
	var res *model.Reservation
	err := m.store.RunInTx(ctx, func(tx Tx) error {
		car, err := tx.CarForUpdate(ctx, carID)
		if err != nil {
			if errors.Is(err, ErrCarNotFound) {
				return NewNotFound("car %d not found", carID)
			}
			return NewInternal("lock car", err)
		}
		n, err := tx.CountOverlapping(ctx, carID, start, end, 0)
		if err != nil {
			return NewInternal("scan overlapping reservations", err)
		}
		if n > 0 {
			return NewConflict("car %d is already booked in the requested interval", carID)
		}
		res = &model.Reservation{
			UserID:         userID,
			CarID:          carID,
			StartDatetime:  start.UTC(),
			EndDatetime:    end.UTC(),
			DailyRateCents: car.DailyRateCents,
			Status:         StatusConfirmed,
		}
		if err := tx.InsertReservation(ctx, res); err != nil {
			return NewInternal("insert reservation", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// UpdateReservationDates moves an existing reservation to a new
// interval.  Terminal reservations are immutable; the conflict scan
// excludes the reservation's own id so shrinking or shifting within its
// current interval always succeeds.  Status and rate snapshot are left
// untouched.
func (m *Manager) UpdateReservationDates(ctx context.Context, reservationID uint64, newStart, newEnd time.Time) (*model.Reservation, error) {
	if err := validateInterval(newStart, newEnd); err != nil {
		return nil, err
	}
	var res *model.Reservation
	err := m.store.RunInTx(ctx, func(tx Tx) error {
		var err error
		res, err = loadReservation(ctx, tx, reservationID)
		if err != nil {
			return err
		}
		if IsTerminal(res.Status) {
			return NewInvalidState("reservation %d is %s and cannot be modified", reservationID, res.Status)
		}
		if _, err := tx.CarForUpdate(ctx, res.CarID); err != nil {
			return NewInternal("lock car", err)
		}
		n, err := tx.CountOverlapping(ctx, res.CarID, newStart, newEnd, reservationID)
		if err != nil {
			return NewInternal("scan overlapping reservations", err)
		}
		if n > 0 {
			return NewConflict("car %d is already booked in the requested interval", res.CarID)
		}
		if err := tx.UpdateReservationDates(ctx, reservationID, newStart.UTC(), newEnd.UTC()); err != nil {
			return NewInternal("update reservation dates", err)
		}
		res.StartDatetime = newStart.UTC()
		res.EndDatetime = newEnd.UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ConfirmReservation moves a pending reservation to confirmed.
func (m *Manager) ConfirmReservation(ctx context.Context, reservationID uint64) (*model.Reservation, error) {
	return m.transition(ctx, reservationID, StatusConfirmed)
}

// CompleteReservation closes out a confirmed rental.
func (m *Manager) CompleteReservation(ctx context.Context, reservationID uint64) (*model.Reservation, error) {
	return m.transition(ctx, reservationID, StatusCompleted)
}

// CancelReservation cancels a pending or confirmed reservation.
// Cancelled and completed reservations reject the call.  Refunds are
// the payment gateway's concern and are not initiated here.
func (m *Manager) CancelReservation(ctx context.Context, reservationID uint64) (*model.Reservation, error) {
	return m.transition(ctx, reservationID, StatusCancelled)
}

func (m *Manager) transition(ctx context.Context, reservationID uint64, to string) (*model.Reservation, error) {
	var res *model.Reservation
	err := m.store.RunInTx(ctx, func(tx Tx) error {
		var err error
		res, err = loadReservation(ctx, tx, reservationID)
		if err != nil {
			return err
		}
		if res.Status == to {
			return NewInvalidState("reservation %d is already %s", reservationID, to)
		}
		if !CanTransition(res.Status, to) {
			return NewInvalidState("reservation %d cannot go from %s to %s", reservationID, res.Status, to)
		}
		if err := tx.UpdateReservationStatus(ctx, reservationID, to); err != nil {
			return NewInternal("update reservation status", err)
		}
		res.Status = to
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// RecordPayment authorizes a charge for a reservation with the gateway
// and persists the outcome.  The amount must equal the reservation's
// computed total, the rate snapshot times its billable days, so partial
// and excess payments are rejected up front.
func (m *Manager) RecordPayment(ctx context.Context, reservationID uint64, amountCents uint32, method string) (*model.Payment, error) {
	if amountCents == 0 {
		return nil, NewValidation("amount_cents must be positive")
	}
	var pay *model.Payment
	err := m.store.RunInTx(ctx, func(tx Tx) error {
		res, err := loadReservation(ctx, tx, reservationID)
		if err != nil {
			return err
		}
		expected := ExpectedTotalCents(res)
		if uint64(amountCents) != expected {
			return NewValidation("amount %d does not match reservation total %d", amountCents, expected)
		}
		auth, err := m.gateway.Authorize(ctx, payment.AuthRequest{
			ReservationID: res.ID,
			UserID:        res.UserID,
			AmountCents:   amountCents,
			Currency:      m.currency,
			Method:        method,
		})
		if err != nil {
			if errors.Is(err, payment.ErrDeclined) {
				return NewValidation("payment declined: %v", err)
			}
			return NewInternal("payment authorization", err)
		}
		status := model.PaymentStatusPending
		if auth.Status == payment.StatusAuthorized {
			status = model.PaymentStatusPaid
		}
		pay = &model.Payment{
			ReservationID: res.ID,
			AmountCents:   amountCents,
			Currency:      m.currency,
			Provider:      auth.Provider,
			ProviderRef:   auth.Reference,
			Status:        status,
		}
		if err := tx.InsertPayment(ctx, pay); err != nil {
			return NewInternal("insert payment", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pay, nil
}

// ExpectedTotalCents computes a reservation's price: the daily rate
// snapshot multiplied by the number of billable days of its interval.
// The product is 64-bit so a long interval at a high rate cannot wrap
// and validate a wrong amount.
func ExpectedTotalCents(res *model.Reservation) uint64 {
	return uint64(res.DailyRateCents) * uint64(RentalDays(res.StartDatetime, res.EndDatetime))
}

func loadReservation(ctx context.Context, tx Tx, id uint64) (*model.Reservation, error) {
	res, err := tx.ReservationByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrReservationNotFound) {
			return nil, NewNotFound("reservation %d not found", id)
		}
		return nil, NewInternal("load reservation", err)
	}
	return res, nil
}
