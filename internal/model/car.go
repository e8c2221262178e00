package model

import "time"

// Car statuses as stored in the `cars.status` column.
const (
	CarStatusAvailable   = "available"
	CarStatusMaintenance = "maintenance"
	CarStatusRented      = "rented"
)

// Car represents a rentable vehicle as stored in the `cars` table.
// DailyRateCents is the advertised price per rental day; it is copied
// into each reservation at creation time so later rate changes never
// affect existing bookings.
//
// Fields:
//  ID             – primary key identifier.
//  VIN            – unique vehicle identification number.
//  Make           – manufacturer (e.g. Toyota).
//  Model          – model name (e.g. Camry).
//  Year           – model year.
//  Transmission   – transmission type (Automatic/Manual).
//  Seats          – number of seats.
//  Doors          – number of doors.
//  Color          – exterior color.
//  DailyRateCents – rental rate per day in cents.
//  Status         – availability state (available, maintenance, rented).
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Car struct {
	ID             uint64    `json:"id"`               // cars.id
	VIN            string    `json:"vin"`              // cars.vin
	Make           string    `json:"make"`             // cars.make
	Model          string    `json:"model"`            // cars.model
	Year           uint16    `json:"year"`             // cars.year
	Transmission   string    `json:"transmission"`     // cars.transmission
	Seats          uint8     `json:"seats"`            // cars.seats
	Doors          uint8     `json:"doors"`            // cars.doors
	Color          string    `json:"color"`            // cars.color
	DailyRateCents uint32    `json:"daily_rate_cents"` // cars.daily_rate_cents
	Status         string    `json:"status"`           // cars.status
	CreatedAt      time.Time `json:"created_at"`       // cars.created_at
	UpdatedAt      time.Time `json:"updated_at"`       // cars.updated_at
}

// Feature is an equipment option a car may carry (bluetooth, AWD, GPS).
// Cars and features are linked through the `car_features` join table.
//
// Fields:
//  ID   – primary key identifier.
//  Key  – stable machine-readable key (e.g. "heated_seats").
//  Name – human-readable display name.
type Feature struct {
	ID   uint64 `json:"id"`   // features.id
	Key  string `json:"key"`  // features.key
	Name string `json:"name"` // features.name
}
