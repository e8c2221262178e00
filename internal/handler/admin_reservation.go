package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// ListReservations returns every reservation, optionally filtered by
// ?car_id=, for fleet oversight.
// GET /v1/admin/reservations
func (h *AdminHandler) ListReservations(c echo.Context) error {
	var carID uint64
	if raw := c.QueryParam("car_id"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid car_id"})
		}
		carID = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	details, err := h.Reservations.ListAll(ctx, carID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list reservations failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": details})
}

// ConfirmReservation moves a pending reservation to confirmed.
// POST /v1/admin/reservations/:id/confirm
func (h *AdminHandler) ConfirmReservation(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.Booking.ConfirmReservation(c.Request().Context(), id)
	if err != nil {
		return bookingError(c, err)
	}
	publishConfirmed(c.Request().Context(), h.AMQPURL, h.Cars, res)
	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}

// CompleteReservation closes out a confirmed reservation after the car
// is returned.
// POST /v1/admin/reservations/:id/complete
func (h *AdminHandler) CompleteReservation(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.Booking.CompleteReservation(c.Request().Context(), id)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}

// CancelReservation lets an admin cancel any active reservation.
// POST /v1/admin/reservations/:id/cancel
func (h *AdminHandler) CancelReservation(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.Booking.CancelReservation(c.Request().Context(), id)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}
