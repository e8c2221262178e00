// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationConfirmedEvent is published when a reservation is created or
// an admin confirms a pending one.  It carries enough detail for
// downstream consumers to log or notify without hitting the primary
// database.  Datetimes are RFC 3339 in UTC.
type ReservationConfirmedEvent struct {
	ReservationID    uint64 `json:"reservation_id"`
	UserID           uint64 `json:"user_id"`
	CarID            uint64 `json:"car_id"`
	CarVIN           string `json:"car_vin"`
	CarMake          string `json:"car_make"`
	CarModel         string `json:"car_model"`
	StartDatetime    string `json:"start_datetime"`
	EndDatetime      string `json:"end_datetime"`
	DailyRateCents   uint32 `json:"daily_rate_cents"`
	TotalAmountCents uint64 `json:"total_amount_cents"`
	ConfirmedAt      string `json:"confirmed_at"`
}
