package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/car-rental-service/internal/booking"
	"github.com/iliyamo/car-rental-service/internal/model"
	"github.com/iliyamo/car-rental-service/internal/queue"
	"github.com/iliyamo/car-rental-service/internal/repository"
	queue_publisher "github.com/iliyamo/car-rental-service/internal/service"
)

// BookingService is the slice of the booking manager the HTTP layer
// depends on.  Handlers hold the interface so tests can substitute a
// fake without a database.
type BookingService interface {
	CheckAvailability(ctx context.Context, carID uint64, start, end time.Time, excludeReservationID uint64) (bool, error)
	CreateReservation(ctx context.Context, userID, carID uint64, start, end time.Time) (*model.Reservation, error)
	UpdateReservationDates(ctx context.Context, reservationID uint64, newStart, newEnd time.Time) (*model.Reservation, error)
	ConfirmReservation(ctx context.Context, reservationID uint64) (*model.Reservation, error)
	CompleteReservation(ctx context.Context, reservationID uint64) (*model.Reservation, error)
	CancelReservation(ctx context.Context, reservationID uint64) (*model.Reservation, error)
	RecordPayment(ctx context.Context, reservationID uint64, amountCents uint32, method string) (*model.Payment, error)
}

// CustomerHandler serves reservation endpoints for authenticated
// customers.  AMQPURL may be empty, which disables event publishing.
type CustomerHandler struct {
	Booking      BookingService
	Cars         *repository.CarRepo
	Reservations *repository.ReservationRepo
	Payments     *repository.PaymentRepo
	AMQPURL      string
}

func NewCustomerHandler(b BookingService, cars *repository.CarRepo, res *repository.ReservationRepo, pay *repository.PaymentRepo, amqpURL string) *CustomerHandler {
	if b == nil || cars == nil || res == nil || pay == nil {
		panic("nil dependency passed to NewCustomerHandler")
	}
	return &CustomerHandler{Booking: b, Cars: cars, Reservations: res, Payments: pay, AMQPURL: amqpURL}
}

// ----- DTOs -----

type createReservationReq struct {
	CarID         uint64 `json:"car_id" validate:"required"`
	StartDatetime string `json:"start_datetime" validate:"required"`
	EndDatetime   string `json:"end_datetime" validate:"required"`
}

type updateDatesReq struct {
	StartDatetime string `json:"start_datetime" validate:"required"`
	EndDatetime   string `json:"end_datetime" validate:"required"`
}

type recordPaymentReq struct {
	AmountCents uint32 `json:"amount_cents" validate:"required,gt=0"`
	Method      string `json:"method" validate:"required,oneof=card cash"`
}

// CreateReservation books a car for the caller.
// POST /v1/reservations
func (h *CustomerHandler) CreateReservation(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	start, end, err := parseInterval(req.StartDatetime, req.EndDatetime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	res, err := h.Booking.CreateReservation(c.Request().Context(), uid, req.CarID, start, end)
	if err != nil {
		return bookingError(c, err)
	}

	publishConfirmed(c.Request().Context(), h.AMQPURL, h.Cars, res)

	return c.JSON(http.StatusCreated, echo.Map{"reservation": res})
}

// ListMyReservations returns the caller's reservations, newest first.
// GET /v1/my-reservations
func (h *CustomerHandler) ListMyReservations(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	details, err := h.Reservations.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list reservations failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": details})
}

// GetReservation returns one of the caller's reservations with its
// payment history.
// GET /v1/reservations/:id
func (h *CustomerHandler) GetReservation(c echo.Context) error {
	res, errResp := h.ownReservation(c)
	if res == nil {
		return errResp
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	payments, err := h.Payments.ListByReservation(ctx, res.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load payments failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res, "payments": payments})
}

// UpdateDates moves one of the caller's reservations to a new interval.
// PATCH /v1/reservations/:id/dates
func (h *CustomerHandler) UpdateDates(c echo.Context) error {
	res, errResp := h.ownReservation(c)
	if res == nil {
		return errResp
	}
	var req updateDatesReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	start, end, err := parseInterval(req.StartDatetime, req.EndDatetime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	updated, err := h.Booking.UpdateReservationDates(c.Request().Context(), res.ID, start, end)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": updated})
}

// Cancel cancels one of the caller's reservations.
// POST /v1/reservations/:id/cancel
func (h *CustomerHandler) Cancel(c echo.Context) error {
	res, errResp := h.ownReservation(c)
	if res == nil {
		return errResp
	}
	cancelled, err := h.Booking.CancelReservation(c.Request().Context(), res.ID)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": cancelled})
}

// ListPayments returns the payment history for one of the caller's
// reservations.
// GET /v1/reservations/:id/payments
func (h *CustomerHandler) ListPayments(c echo.Context) error {
	res, errResp := h.ownReservation(c)
	if res == nil {
		return errResp
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	payments, err := h.Payments.ListByReservation(ctx, res.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load payments failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"payments": payments})
}

// RecordPayment records a payment against one of the caller's
// reservations.
// POST /v1/reservations/:id/payments
func (h *CustomerHandler) RecordPayment(c echo.Context) error {
	res, errResp := h.ownReservation(c)
	if res == nil {
		return errResp
	}
	var req recordPaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	p, err := h.Booking.RecordPayment(c.Request().Context(), res.ID, req.AmountCents, req.Method)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"payment": p})
}

// ownReservation loads the reservation in :id and verifies it belongs to
// the caller.  On failure the second return value is the response
// already written; callers return it when the first value is nil.
// Missing and foreign reservations both answer 404 so customers cannot
// probe other users' bookings.
func (h *CustomerHandler) ownReservation(c echo.Context) (*model.Reservation, error) {
	uid, err := getUserID(c)
	if err != nil {
		return nil, c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Reservations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "load reservation failed"})
	}
	if res.UserID != uid {
		return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}
	return res, nil
}

// publishConfirmed emits a reservation.confirmed event.  Failures are
// swallowed; the reservation is already committed and the consumer only
// feeds the audit log.  An empty amqpURL disables publishing entirely.
func publishConfirmed(ctx context.Context, amqpURL string, cars *repository.CarRepo, res *model.Reservation) {
	if amqpURL == "" {
		return
	}
	car, err := cars.GetByID(ctx, res.CarID)
	if err != nil {
		return
	}
	_ = queue_publisher.PublishReservationConfirmed(ctx, amqpURL, queue.ReservationConfirmedEvent{
		ReservationID:    res.ID,
		UserID:           res.UserID,
		CarID:            res.CarID,
		CarVIN:           car.VIN,
		CarMake:          car.Make,
		CarModel:         car.Model,
		StartDatetime:    res.StartDatetime.UTC().Format(time.RFC3339),
		EndDatetime:      res.EndDatetime.UTC().Format(time.RFC3339),
		DailyRateCents:   res.DailyRateCents,
		TotalAmountCents: booking.ExpectedTotalCents(res),
		ConfirmedAt:      time.Now().UTC().Format(time.RFC3339),
	})
}
