package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/car-rental-service/internal/booking"
	"github.com/iliyamo/car-rental-service/internal/model"
	"github.com/iliyamo/car-rental-service/internal/repository"
	"github.com/iliyamo/car-rental-service/internal/validator"
)

// mockBooking implements BookingService with swappable function fields
// so each test controls exactly the call it exercises.
type mockBooking struct {
	checkAvailability func(ctx context.Context, carID uint64, start, end time.Time, excludeID uint64) (bool, error)
	createReservation func(ctx context.Context, userID, carID uint64, start, end time.Time) (*model.Reservation, error)
}

func (m *mockBooking) CheckAvailability(ctx context.Context, carID uint64, start, end time.Time, excludeID uint64) (bool, error) {
	return m.checkAvailability(ctx, carID, start, end, excludeID)
}
func (m *mockBooking) CreateReservation(ctx context.Context, userID, carID uint64, start, end time.Time) (*model.Reservation, error) {
	return m.createReservation(ctx, userID, carID, start, end)
}
func (m *mockBooking) UpdateReservationDates(context.Context, uint64, time.Time, time.Time) (*model.Reservation, error) {
	panic("not wired in this test")
}
func (m *mockBooking) ConfirmReservation(context.Context, uint64) (*model.Reservation, error) {
	panic("not wired in this test")
}
func (m *mockBooking) CompleteReservation(context.Context, uint64) (*model.Reservation, error) {
	panic("not wired in this test")
}
func (m *mockBooking) CancelReservation(context.Context, uint64) (*model.Reservation, error) {
	panic("not wired in this test")
}
func (m *mockBooking) RecordPayment(context.Context, uint64, uint32, string) (*model.Payment, error) {
	panic("not wired in this test")
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validator.New()
	return e
}

func newCustomerHandler(b BookingService) *CustomerHandler {
	// Repos are constructed over a nil DB; the endpoints under test
	// never reach them.
	return NewCustomerHandler(b,
		repository.NewCarRepo(nil),
		repository.NewReservationRepo(nil),
		repository.NewPaymentRepo(nil),
		"")
}

func doJSON(e *echo.Echo, h echo.HandlerFunc, method, target, body string, userID uint64) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set("user_id", float64(userID)) // as JWTAuth stores numeric claims
	}
	_ = h(c)
	return rec
}

func TestCreateReservationHandler(t *testing.T) {
	e := newTestEcho()
	var gotUser, gotCar uint64
	b := &mockBooking{
		createReservation: func(_ context.Context, userID, carID uint64, start, end time.Time) (*model.Reservation, error) {
			gotUser, gotCar = userID, carID
			return &model.Reservation{
				ID: 11, UserID: userID, CarID: carID,
				StartDatetime: start, EndDatetime: end,
				DailyRateCents: 4500, Status: booking.StatusConfirmed,
			}, nil
		},
	}
	h := newCustomerHandler(b)

	body := `{"car_id":3,"start_datetime":"2026-03-01T10:00:00Z","end_datetime":"2026-03-04T10:00:00Z"}`
	rec := doJSON(e, h.CreateReservation, http.MethodPost, "/v1/reservations", body, 7)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if gotUser != 7 || gotCar != 3 {
		t.Errorf("manager called with user=%d car=%d", gotUser, gotCar)
	}
	var resp struct {
		Reservation model.Reservation `json:"reservation"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Reservation.ID != 11 || resp.Reservation.Status != booking.StatusConfirmed {
		t.Errorf("unexpected reservation payload: %+v", resp.Reservation)
	}
}

func TestCreateReservationHandlerErrors(t *testing.T) {
	e := newTestEcho()

	cases := []struct {
		name   string
		body   string
		userID uint64
		err    error
		want   int
	}{
		{"missing auth", `{"car_id":3,"start_datetime":"2026-03-01T10:00:00Z","end_datetime":"2026-03-02T10:00:00Z"}`, 0, nil, http.StatusUnauthorized},
		{"malformed body", `{`, 7, nil, http.StatusBadRequest},
		{"missing fields", `{"car_id":3}`, 7, nil, http.StatusBadRequest},
		{"bad datetime", `{"car_id":3,"start_datetime":"tomorrow","end_datetime":"2026-03-02T10:00:00Z"}`, 7, nil, http.StatusBadRequest},
		{"conflict", `{"car_id":3,"start_datetime":"2026-03-01T10:00:00Z","end_datetime":"2026-03-02T10:00:00Z"}`, 7,
			booking.NewConflict("car 3 is already booked in the requested interval"), http.StatusConflict},
		{"car missing", `{"car_id":3,"start_datetime":"2026-03-01T10:00:00Z","end_datetime":"2026-03-02T10:00:00Z"}`, 7,
			booking.NewNotFound("car 3 not found"), http.StatusNotFound},
		{"invalid interval", `{"car_id":3,"start_datetime":"2026-03-02T10:00:00Z","end_datetime":"2026-03-01T10:00:00Z"}`, 7,
			booking.NewValidation("end_datetime must be after start_datetime"), http.StatusBadRequest},
		{"internal", `{"car_id":3,"start_datetime":"2026-03-01T10:00:00Z","end_datetime":"2026-03-02T10:00:00Z"}`, 7,
			booking.NewInternal("insert reservation", context.DeadlineExceeded), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := &mockBooking{
				createReservation: func(context.Context, uint64, uint64, time.Time, time.Time) (*model.Reservation, error) {
					return nil, tc.err
				},
			}
			h := newCustomerHandler(b)
			rec := doJSON(e, h.CreateReservation, http.MethodPost, "/v1/reservations", tc.body, tc.userID)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestCheckAvailabilityHandler(t *testing.T) {
	e := newTestEcho()
	b := &mockBooking{
		checkAvailability: func(_ context.Context, carID uint64, start, end time.Time, excludeID uint64) (bool, error) {
			if carID != 3 || excludeID != 9 {
				t.Errorf("called with car=%d exclude=%d", carID, excludeID)
			}
			return true, nil
		},
	}
	p := NewPublicHandler(repository.NewCarRepo(nil), repository.NewReservationRepo(nil), b)

	req := httptest.NewRequest(http.MethodGet,
		"/v1/cars/3/availability?start=2026-03-01T10:00:00Z&end=2026-03-04T10:00:00Z&exclude_reservation_id=9", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("3")

	if err := p.CheckAvailability(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Available bool `json:"available"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Available {
		t.Error("available = false, want true")
	}
}

func TestCheckAvailabilityHandlerBadParams(t *testing.T) {
	e := newTestEcho()
	b := &mockBooking{
		checkAvailability: func(context.Context, uint64, time.Time, time.Time, uint64) (bool, error) {
			t.Error("manager must not be called on bad params")
			return false, nil
		},
	}
	p := NewPublicHandler(repository.NewCarRepo(nil), repository.NewReservationRepo(nil), b)

	cases := []struct {
		name  string
		id    string
		query string
	}{
		{"bad id", "abc", "start=2026-03-01T10:00:00Z&end=2026-03-02T10:00:00Z"},
		{"missing end", "3", "start=2026-03-01T10:00:00Z"},
		{"bad start", "3", "start=yesterday&end=2026-03-02T10:00:00Z"},
		{"bad exclude", "3", "start=2026-03-01T10:00:00Z&end=2026-03-02T10:00:00Z&exclude_reservation_id=x"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/cars/"+tc.id+"/availability?"+tc.query, nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetParamNames("id")
			c.SetParamValues(tc.id)

			if err := p.CheckAvailability(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
		})
	}
}
