package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/car-rental-service/internal/model"
)

// PaymentRepo persists payment rows.  Payments are append-only history
// against a reservation; nothing here updates or deletes them.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// CreateTx inserts a payment within an existing transaction and
// populates the generated ID and created_at on the provided record.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	const q = `INSERT INTO payments (reservation_id, amount_cents, currency, provider, provider_ref, status)
			   VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		p.ReservationID, p.AmountCents, p.Currency, p.Provider, p.ProviderRef, p.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	const sel = `SELECT id, reservation_id, amount_cents, currency, provider, provider_ref, status, created_at
				 FROM payments WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, p.ID).Scan(
		&p.ID, &p.ReservationID, &p.AmountCents, &p.Currency,
		&p.Provider, &p.ProviderRef, &p.Status, &p.CreatedAt,
	)
}

// ListByReservation returns the payment history for a reservation,
// oldest first.
func (r *PaymentRepo) ListByReservation(ctx context.Context, reservationID uint64) ([]model.Payment, error) {
	const q = `SELECT id, reservation_id, amount_cents, currency, provider, provider_ref, status, created_at
			   FROM payments
			   WHERE reservation_id = ?
			   ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	payments := make([]model.Payment, 0)
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(
			&p.ID, &p.ReservationID, &p.AmountCents, &p.Currency,
			&p.Provider, &p.ProviderRef, &p.Status, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}
