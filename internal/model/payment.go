package model

import "time"

// Payment statuses as stored in the `payments.status` column.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

// Payment is a money movement recorded against a reservation.  A
// reservation may accumulate several payment rows over its life
// (history), though the service creates at most one paid row per
// reservation today.  ProviderRef carries the external gateway's
// reference for the authorization.
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – reservation this payment belongs to.
//  AmountCents   – amount in cents.
//  Currency      – ISO currency code (e.g. USD).
//  Provider      – gateway/provider name that handled the charge.
//  ProviderRef   – provider-side reference for the charge.
//  Status        – payment state (pending, paid, refunded).
//  CreatedAt     – creation timestamp.
type Payment struct {
	ID            uint64    `json:"id"`             // payments.id
	ReservationID uint64    `json:"reservation_id"` // payments.reservation_id
	AmountCents   uint32    `json:"amount_cents"`   // payments.amount_cents
	Currency      string    `json:"currency"`       // payments.currency
	Provider      string    `json:"provider"`       // payments.provider
	ProviderRef   string    `json:"provider_ref"`   // payments.provider_ref
	Status        string    `json:"status"`         // payments.status
	CreatedAt     time.Time `json:"created_at"`     // payments.created_at
}
