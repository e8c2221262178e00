package handler // handler defines HTTP handlers for the rental API

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/car-rental-service/internal/booking"
)

// getUserID extracts the user_id set by JWTAuth and converts it to
// uint64.  JWT numeric claims decode as float64, so several shapes are
// accepted.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses the named path parameter as a positive integer ID.
func pathID(c echo.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

// bookingError translates a booking package error into a JSON response.
// Validation and invalid-state problems map to 400, missing resources to
// 404, overlapping reservations to 409, and everything else to 500.
func bookingError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	msg := "internal error"
	switch booking.KindOf(err) {
	case booking.KindValidation, booking.KindInvalidState:
		status, msg = http.StatusBadRequest, err.Error()
	case booking.KindNotFound:
		status, msg = http.StatusNotFound, err.Error()
	case booking.KindConflict:
		status, msg = http.StatusConflict, err.Error()
	default:
		// Do not leak driver details to the client.
		c.Logger().Error(err)
	}
	return c.JSON(status, echo.Map{"error": msg})
}
