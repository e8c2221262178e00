package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/car-rental-service/internal/model"
	"github.com/iliyamo/car-rental-service/internal/repository"
)

// PublicHandler serves the unauthenticated catalogue endpoints: browsing
// cars, their features, and availability.
type PublicHandler struct {
	Cars         *repository.CarRepo
	Reservations *repository.ReservationRepo
	Booking      BookingService
}

func NewPublicHandler(cars *repository.CarRepo, reservations *repository.ReservationRepo, booking BookingService) *PublicHandler {
	if cars == nil || reservations == nil || booking == nil {
		panic("nil dependency passed to NewPublicHandler")
	}
	return &PublicHandler{Cars: cars, Reservations: reservations, Booking: booking}
}

// ListCars returns the fleet, optionally filtered by ?status=.
// GET /v1/cars
func (h *PublicHandler) ListCars(c echo.Context) error {
	status := c.QueryParam("status")
	switch status {
	case "", model.CarStatusAvailable, model.CarStatusMaintenance, model.CarStatusRented:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status filter"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cars, err := h.Cars.List(ctx, status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list cars failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"cars": cars})
}

// GetCar returns one car with its features.
// GET /v1/cars/:id
func (h *PublicHandler) GetCar(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid car id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	car, err := h.Cars.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCarNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load car failed"})
	}
	features, err := h.Cars.ListFeatures(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load features failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"car": car, "features": features})
}

// CheckAvailability answers whether a car is free for [start, end).
// GET /v1/cars/:id/availability?start=...&end=...&exclude_reservation_id=...
func (h *PublicHandler) CheckAvailability(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid car id"})
	}
	start, end, err := parseInterval(c.QueryParam("start"), c.QueryParam("end"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var exclude uint64
	if raw := c.QueryParam("exclude_reservation_id"); raw != "" {
		if exclude, err = strconv.ParseUint(raw, 10, 64); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid exclude_reservation_id"})
		}
	}

	available, err := h.Booking.CheckAvailability(c.Request().Context(), id, start, end, exclude)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"car_id":    id,
		"start":     start,
		"end":       end,
		"available": available,
	})
}

// Calendar lists the occupied intervals of a car so clients can render
// an availability calendar without probing interval by interval.
// GET /v1/cars/:id/calendar
func (h *PublicHandler) Calendar(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid car id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Cars.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCarNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load car failed"})
	}
	ranges, err := h.Reservations.ListActiveRanges(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load calendar failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"car_id": id, "booked": ranges})
}

// parseInterval parses RFC 3339 start/end query parameters.
func parseInterval(rawStart, rawEnd string) (time.Time, time.Time, error) {
	if rawStart == "" || rawEnd == "" {
		return time.Time{}, time.Time{}, errors.New("start and end are required")
	}
	start, err := time.Parse(time.RFC3339, rawStart)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("start must be RFC 3339")
	}
	end, err := time.Parse(time.RFC3339, rawEnd)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("end must be RFC 3339")
	}
	return start.UTC(), end.UTC(), nil
}
