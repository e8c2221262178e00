package model

import "time"

// Reservation records a user's booking of a car for a half-open time
// interval [StartDatetime, EndDatetime).  The car's daily rate is
// snapshotted into DailyRateCents at creation so the price of an
// existing booking never moves with the car's advertised rate.
//
// Fields:
//  ID             – primary key identifier.
//  UserID         – user who made the reservation.
//  CarID          – car being reserved.
//  StartDatetime  – inclusive start of the rental interval (UTC).
//  EndDatetime    – exclusive end of the rental interval (UTC).
//  DailyRateCents – rate snapshot taken from the car at creation.
//  Status         – lifecycle state (pending, confirmed, cancelled,
//                   completed).
//  CreatedAt      – creation timestamp.
type Reservation struct {
	ID             uint64    `json:"id"`               // reservations.id
	UserID         uint64    `json:"user_id"`          // reservations.user_id
	CarID          uint64    `json:"car_id"`           // reservations.car_id
	StartDatetime  time.Time `json:"start_datetime"`   // reservations.start_datetime
	EndDatetime    time.Time `json:"end_datetime"`     // reservations.end_datetime
	DailyRateCents uint32    `json:"daily_rate_cents"` // reservations.daily_rate_cents
	Status         string    `json:"status"`           // reservations.status
	CreatedAt      time.Time `json:"created_at"`       // reservations.created_at
}
