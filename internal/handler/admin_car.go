package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/car-rental-service/internal/model"
	"github.com/iliyamo/car-rental-service/internal/repository"
)

// AdminHandler serves fleet management endpoints for admins: car CRUD,
// feature assignment, and reservation oversight.
type AdminHandler struct {
	Cars         *repository.CarRepo
	Reservations *repository.ReservationRepo
	Booking      BookingService
	AMQPURL      string
}

func NewAdminHandler(cars *repository.CarRepo, res *repository.ReservationRepo, b BookingService, amqpURL string) *AdminHandler {
	if cars == nil || res == nil || b == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Cars: cars, Reservations: res, Booking: b, AMQPURL: amqpURL}
}

// ----- DTOs -----

type carReq struct {
	VIN            string `json:"vin" validate:"required,len=17"`
	Make           string `json:"make" validate:"required,max=64"`
	Model          string `json:"model" validate:"required,max=64"`
	Year           uint16 `json:"year" validate:"required,gte=1980,lte=2100"`
	Transmission   string `json:"transmission" validate:"required,oneof=automatic manual"`
	Seats          uint8  `json:"seats" validate:"required,gte=1,lte=12"`
	Doors          uint8  `json:"doors" validate:"required,gte=2,lte=6"`
	Color          string `json:"color" validate:"omitempty,max=32"`
	DailyRateCents uint32 `json:"daily_rate_cents" validate:"required,gt=0"`
	Status         string `json:"status" validate:"omitempty,oneof=available maintenance rented"`
}

type featuresReq struct {
	FeatureIDs []uint64 `json:"feature_ids" validate:"required"`
}

// CreateCar adds a car to the fleet.
// POST /v1/admin/cars
func (h *AdminHandler) CreateCar(c echo.Context) error {
	var req carReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.VIN = strings.ToUpper(strings.TrimSpace(req.VIN))
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	car := &model.Car{
		VIN:            req.VIN,
		Make:           req.Make,
		Model:          req.Model,
		Year:           req.Year,
		Transmission:   req.Transmission,
		Seats:          req.Seats,
		Doors:          req.Doors,
		Color:          req.Color,
		DailyRateCents: req.DailyRateCents,
		Status:         req.Status,
	}
	if err := h.Cars.Create(ctx, car); err != nil {
		if errors.Is(err, repository.ErrVINExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "vin already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create car failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"car": car})
}

// UpdateCar replaces a car's attributes.
// PUT /v1/admin/cars/:id
func (h *AdminHandler) UpdateCar(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid car id"})
	}
	var req carReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.VIN = strings.ToUpper(strings.TrimSpace(req.VIN))
	if req.Status == "" {
		req.Status = model.CarStatusAvailable
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	car := &model.Car{
		ID:             id,
		VIN:            req.VIN,
		Make:           req.Make,
		Model:          req.Model,
		Year:           req.Year,
		Transmission:   req.Transmission,
		Seats:          req.Seats,
		Doors:          req.Doors,
		Color:          req.Color,
		DailyRateCents: req.DailyRateCents,
		Status:         req.Status,
	}
	if err := h.Cars.Update(ctx, car); err != nil {
		switch {
		case errors.Is(err, repository.ErrCarNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
		case errors.Is(err, repository.ErrVINExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "vin already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update car failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"car": car})
}

// DeleteCar removes a car that has no active reservations.
// DELETE /v1/admin/cars/:id
func (h *AdminHandler) DeleteCar(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid car id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Cars.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrCarNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "car has active reservations"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete car failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListFeatures returns the feature catalogue.
// GET /v1/admin/features
func (h *AdminHandler) ListFeatures(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	features, err := h.Cars.ListAllFeatures(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list features failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"features": features})
}

// ReplaceCarFeatures sets the full feature list of a car.
// PUT /v1/admin/cars/:id/features
func (h *AdminHandler) ReplaceCarFeatures(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid car id"})
	}
	var req featuresReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Cars.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCarNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load car failed"})
	}
	if err := h.Cars.ReplaceFeatures(ctx, id, req.FeatureIDs); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "set features failed"})
	}
	features, err := h.Cars.ListFeatures(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load features failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"features": features})
}
