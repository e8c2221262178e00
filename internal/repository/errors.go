// Package repository contains the data access layer: one repository per
// table plus the transactional store the booking manager runs on.  The
// sentinel errors defined here let handlers distinguish failure modes
// without string matching.
package repository

import "errors"

// ErrCarNotFound indicates that a car was not located in the DB.
var ErrCarNotFound = errors.New("car not found")

// ErrReservationNotFound indicates that a reservation was not located
// in the DB.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrVINExists is returned when inserting a car whose VIN collides with
// an existing row.  Handlers should translate this into HTTP 409.
var ErrVINExists = errors.New("vin already exists")

// ErrConflict is returned when a delete cannot be performed because of
// dependent records, such as removing a car that still has active
// reservations.  Handlers should translate this into HTTP 409.
var ErrConflict = errors.New("conflict")
