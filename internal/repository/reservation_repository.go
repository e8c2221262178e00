package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/car-rental-service/internal/model"
)

// ReservationRepo provides CRUD operations for reservations.  A
// reservation books one car for one user over a half-open interval
// [start_datetime, end_datetime).  All timestamps are stored in UTC;
// the DSN's parseTime option scans them into time.Time directly.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying sql.DB for callers that need to begin
// transactions spanning multiple repositories.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

const reservationColumns = `id, user_id, car_id, start_datetime, end_datetime, daily_rate_cents, status, created_at`

func scanReservation(row interface{ Scan(...any) error }, res *model.Reservation) error {
	return row.Scan(
		&res.ID, &res.UserID, &res.CarID, &res.StartDatetime, &res.EndDatetime,
		&res.DailyRateCents, &res.Status, &res.CreatedAt,
	)
}

// CreateTx inserts a new reservation within the scope of an existing
// transaction and populates the generated ID and created_at on the
// provided record.  The caller must commit or roll back the
// transaction.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations (user_id, car_id, start_datetime, end_datetime, daily_rate_cents, status)
			   VALUES (?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		res.UserID, res.CarID, res.StartDatetime, res.EndDatetime,
		res.DailyRateCents, res.Status)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	const sel = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	return scanReservation(tx.QueryRowContext(ctx, sel, res.ID), res)
}

// GetByID retrieves a reservation by its ID.  It returns
// ErrReservationNotFound when no matching row exists.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	var res model.Reservation
	if err := scanReservation(r.db.QueryRowContext(ctx, q, id), &res); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

// GetByIDTx is GetByID within an existing transaction.
func (r *ReservationRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	var res model.Reservation
	if err := scanReservation(tx.QueryRowContext(ctx, q, id), &res); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

// CountOverlappingTx counts reservations for carID whose interval
// intersects [start, end) and whose status keeps them in the conflict
// scan (pending or confirmed).  Two half-open intervals overlap when
// each starts before the other ends; back-to-back bookings sharing an
// endpoint therefore do not count.  excludeID, when non-zero, removes
// that reservation from the scan so an update never conflicts with
// itself.
func (r *ReservationRepo) CountOverlappingTx(ctx context.Context, tx *sql.Tx, carID uint64, start, end time.Time, excludeID uint64) (int, error) {
	q := `SELECT COUNT(*) FROM reservations
		  WHERE car_id = ?
			AND status IN ('pending','confirmed')
			AND NOT (end_datetime <= ? OR start_datetime >= ?)`
	args := []any{carID, start, end}
	if excludeID != 0 {
		q += ` AND id <> ?`
		args = append(args, excludeID)
	}
	var n int
	if err := tx.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// UpdateDatesTx rewrites a reservation's interval in place.  Status and
// the daily rate snapshot are untouched.
func (r *ReservationRepo) UpdateDatesTx(ctx context.Context, tx *sql.Tx, id uint64, start, end time.Time) error {
	const q = `UPDATE reservations SET start_datetime = ?, end_datetime = ? WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, start, end, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// The row may exist with identical dates; only report missing
		// rows as an error.
		var one int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM reservations WHERE id = ? LIMIT 1`, id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrReservationNotFound
			}
			return err
		}
	}
	return nil
}

// UpdateStatusTx moves a reservation to a new lifecycle status.  The
// transition itself is validated by the booking manager; this method
// only persists it.
func (r *ReservationRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
	const q = `UPDATE reservations SET status = ? WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM reservations WHERE id = ? LIMIT 1`, id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrReservationNotFound
			}
			return err
		}
	}
	return nil
}

// ReservationDetail is a reservation joined with its car for display to
// customers.  TotalCents is computed from the rate snapshot and the
// interval length by the caller.
type ReservationDetail struct {
	ID             uint64    `json:"id"`
	CarID          uint64    `json:"car_id"`
	CarMake        string    `json:"car_make"`
	CarModel       string    `json:"car_model"`
	CarYear        uint16    `json:"car_year"`
	StartDatetime  time.Time `json:"start_datetime"`
	EndDatetime    time.Time `json:"end_datetime"`
	DailyRateCents uint32    `json:"daily_rate_cents"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UserID         uint64    `json:"user_id,omitempty"`
}

// ListByUser returns all reservations for the given user along with car
// details, newest first.  When no reservations exist an empty slice is
// returned.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]ReservationDetail, error) {
	const q = `SELECT r.id, r.car_id, c.make, c.model, c.year,
					  r.start_datetime, r.end_datetime, r.daily_rate_cents, r.status, r.created_at
			   FROM reservations r
			   JOIN cars c ON c.id = r.car_id
			   WHERE r.user_id = ?
			   ORDER BY r.created_at DESC, r.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]ReservationDetail, 0)
	for rows.Next() {
		var d ReservationDetail
		if err := rows.Scan(
			&d.ID, &d.CarID, &d.CarMake, &d.CarModel, &d.CarYear,
			&d.StartDatetime, &d.EndDatetime, &d.DailyRateCents, &d.Status, &d.CreatedAt,
		); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// ListAll returns every reservation with car details for fleet
// administrators, optionally restricted to one car, newest first.
func (r *ReservationRepo) ListAll(ctx context.Context, carID uint64) ([]ReservationDetail, error) {
	q := `SELECT r.id, r.user_id, r.car_id, c.make, c.model, c.year,
				 r.start_datetime, r.end_datetime, r.daily_rate_cents, r.status, r.created_at
		  FROM reservations r
		  JOIN cars c ON c.id = r.car_id`
	var args []any
	if carID != 0 {
		q += ` WHERE r.car_id = ?`
		args = append(args, carID)
	}
	q += ` ORDER BY r.created_at DESC, r.id DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]ReservationDetail, 0)
	for rows.Next() {
		var d ReservationDetail
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.CarID, &d.CarMake, &d.CarModel, &d.CarYear,
			&d.StartDatetime, &d.EndDatetime, &d.DailyRateCents, &d.Status, &d.CreatedAt,
		); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// BookedRange is an occupied interval on a car's calendar.
type BookedRange struct {
	StartDatetime time.Time `json:"start_datetime"`
	EndDatetime   time.Time `json:"end_datetime"`
	Status        string    `json:"status"`
}

// ListActiveRanges returns the pending/confirmed intervals for a car
// ordered by start time.  It backs the public availability calendar.
func (r *ReservationRepo) ListActiveRanges(ctx context.Context, carID uint64) ([]BookedRange, error) {
	const q = `SELECT start_datetime, end_datetime, status
			   FROM reservations
			   WHERE car_id = ? AND status IN ('pending','confirmed')
			   ORDER BY start_datetime ASC`
	rows, err := r.db.QueryContext(ctx, q, carID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ranges := make([]BookedRange, 0)
	for rows.Next() {
		var b BookedRange
		if err := rows.Scan(&b.StartDatetime, &b.EndDatetime, &b.Status); err != nil {
			return nil, err
		}
		ranges = append(ranges, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ranges, nil
}
