package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/car-rental-service/internal/model"
)

// CarRepo manages persistence for cars and their feature assignments.
type CarRepo struct {
	db *sql.DB
}

// NewCarRepo constructs a CarRepo with the given DB handle.
func NewCarRepo(db *sql.DB) *CarRepo { return &CarRepo{db: db} }

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.
func (r *CarRepo) DB() *sql.DB { return r.db }

const carColumns = `id, vin, make, model, year, transmission, seats, doors, color, daily_rate_cents, status, created_at, updated_at`

func scanCar(row interface{ Scan(...any) error }, c *model.Car) error {
	return row.Scan(
		&c.ID, &c.VIN, &c.Make, &c.Model, &c.Year, &c.Transmission,
		&c.Seats, &c.Doors, &c.Color, &c.DailyRateCents, &c.Status,
		&c.CreatedAt, &c.UpdatedAt,
	)
}

// Create inserts a new car and populates the generated ID and DB
// defaults on the given struct.  A duplicate VIN maps to ErrVINExists.
func (r *CarRepo) Create(ctx context.Context, c *model.Car) error {
	const q = `INSERT INTO cars (vin, make, model, year, transmission, seats, doors, color, daily_rate_cents, status)
			   VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	status := c.Status
	if status == "" {
		status = model.CarStatusAvailable
	}
	res, err := r.db.ExecContext(ctx, q,
		c.VIN, c.Make, c.Model, c.Year, c.Transmission,
		c.Seats, c.Doors, c.Color, c.DailyRateCents, status)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrVINExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults.
	const sel = `SELECT ` + carColumns + ` FROM cars WHERE id = ?`
	return scanCar(r.db.QueryRowContext(ctx, sel, c.ID), c)
}

// GetByID retrieves a car by its ID.  It returns ErrCarNotFound when no
// matching row exists.
func (r *CarRepo) GetByID(ctx context.Context, id uint64) (*model.Car, error) {
	const q = `SELECT ` + carColumns + ` FROM cars WHERE id = ?`
	var c model.Car
	if err := scanCar(r.db.QueryRowContext(ctx, q, id), &c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCarNotFound
		}
		return nil, err
	}
	return &c, nil
}

// GetByIDTx is GetByID within an existing transaction.
func (r *CarRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Car, error) {
	const q = `SELECT ` + carColumns + ` FROM cars WHERE id = ?`
	var c model.Car
	if err := scanCar(tx.QueryRowContext(ctx, q, id), &c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCarNotFound
		}
		return nil, err
	}
	return &c, nil
}

// GetForUpdateTx loads a car and takes a row lock on it for the rest of
// the transaction.  Concurrent bookings of the same car serialize on
// this lock, which is what closes the check-then-insert race in the
// availability path.
func (r *CarRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Car, error) {
	const q = `SELECT ` + carColumns + ` FROM cars WHERE id = ? FOR UPDATE`
	var c model.Car
	if err := scanCar(tx.QueryRowContext(ctx, q, id), &c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCarNotFound
		}
		return nil, err
	}
	return &c, nil
}

// List returns all cars, optionally filtered by status.  Results are
// ordered by make and model for deterministic output.
func (r *CarRepo) List(ctx context.Context, status string) ([]model.Car, error) {
	q := `SELECT ` + carColumns + ` FROM cars`
	var args []any
	if status != "" {
		q += ` WHERE status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY make, model, id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cars := make([]model.Car, 0)
	for rows.Next() {
		var c model.Car
		if err := scanCar(rows, &c); err != nil {
			return nil, err
		}
		cars = append(cars, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cars, nil
}

// Update rewrites a car's mutable attributes.  The VIN is immutable
// once assigned.  It returns ErrCarNotFound when the row is missing and
// maps duplicate-key errors the same way Create does.
func (r *CarRepo) Update(ctx context.Context, c *model.Car) error {
	const q = `UPDATE cars
			   SET make = ?, model = ?, year = ?, transmission = ?, seats = ?, doors = ?, color = ?, daily_rate_cents = ?, status = ?, updated_at = CURRENT_TIMESTAMP
			   WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		c.Make, c.Model, c.Year, c.Transmission, c.Seats, c.Doors,
		c.Color, c.DailyRateCents, c.Status, c.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Distinguish "missing" from "values identical".
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM cars WHERE id = ? LIMIT 1`, c.ID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrCarNotFound
			}
			return err
		}
	}
	const sel = `SELECT ` + carColumns + ` FROM cars WHERE id = ?`
	return scanCar(r.db.QueryRowContext(ctx, sel, c.ID), c)
}

// Delete removes a car and its feature assignments.  The deletion is
// aborted with ErrConflict when the car still has pending or confirmed
// reservations; historical (cancelled/completed) reservations keep
// their rows and do not block removal of the car itself here because
// the schema keeps reservations independent of car deletion.
func (r *CarRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()
	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM cars WHERE id = ? LIMIT 1`, id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCarNotFound
		}
		return err
	}
	var active int
	if err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE car_id = ? AND status IN ('pending','confirmed')`, id,
	).Scan(&active); err != nil {
		return err
	}
	if active > 0 {
		err = ErrConflict
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM car_features WHERE car_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM cars WHERE id = ?`, id); err != nil {
		return err
	}
	return nil
}

// ListFeatures returns the features assigned to a car ordered by key.
func (r *CarRepo) ListFeatures(ctx context.Context, carID uint64) ([]model.Feature, error) {
	// KEY is reserved in MySQL, hence the quoting.
	const q = "SELECT f.id, f.`key`, f.name" +
		" FROM car_features cf" +
		" JOIN features f ON f.id = cf.feature_id" +
		" WHERE cf.car_id = ?" +
		" ORDER BY f.`key`"
	rows, err := r.db.QueryContext(ctx, q, carID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	feats := make([]model.Feature, 0)
	for rows.Next() {
		var f model.Feature
		if err := rows.Scan(&f.ID, &f.Key, &f.Name); err != nil {
			return nil, err
		}
		feats = append(feats, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return feats, nil
}

// ListAllFeatures returns the full feature catalog ordered by key.
func (r *CarRepo) ListAllFeatures(ctx context.Context) ([]model.Feature, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, `key`, name FROM features ORDER BY `key`")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	feats := make([]model.Feature, 0)
	for rows.Next() {
		var f model.Feature
		if err := rows.Scan(&f.ID, &f.Key, &f.Name); err != nil {
			return nil, err
		}
		feats = append(feats, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return feats, nil
}

// ReplaceFeatures rewrites a car's feature set in one transaction.
// Passing an empty slice clears all assignments.
func (r *CarRepo) ReplaceFeatures(ctx context.Context, carID uint64, featureIDs []uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()
	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM cars WHERE id = ? LIMIT 1`, carID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCarNotFound
		}
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM car_features WHERE car_id = ?`, carID); err != nil {
		return err
	}
	if len(featureIDs) == 0 {
		return nil
	}
	query := `INSERT INTO car_features (car_id, feature_id) VALUES `
	args := make([]any, 0, len(featureIDs)*2)
	for i, fid := range featureIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, carID, fid)
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}
