package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/car-rental-service/internal/handler"
	"github.com/iliyamo/car-rental-service/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the authentication endpoints.  Unauthenticated
// operations live under /v1/auth; /v1/me sits behind the JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout accepts either a Bearer token or a refresh_token body, so
	// it is registered without the JWT middleware.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("CUSTOMER", "ADMIN"))
	auth.GET("/me", a.Me)
}

// RegisterPublic wires the unauthenticated catalogue endpoints.  Guests
// can browse the fleet and probe availability before registering.  The
// optional cache middleware is applied to these routes only; authorized
// traffic is never cached.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/cars")
	if cache != nil {
		g.Use(cache)
	}
	g.GET("", p.ListCars)
	g.GET("/:id", p.GetCar)
	g.GET("/:id/availability", p.CheckAvailability)
	g.GET("/:id/calendar", p.Calendar)
}

// RegisterCustomer wires reservation endpoints for authenticated
// customers.  Admins can use them too when booking for themselves.
func RegisterCustomer(e *echo.Echo, h *handler.CustomerHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("CUSTOMER", "ADMIN"))

	g.POST("/reservations", h.CreateReservation)
	g.GET("/my-reservations", h.ListMyReservations)
	g.GET("/reservations/:id", h.GetReservation)
	g.PATCH("/reservations/:id/dates", h.UpdateDates)
	g.POST("/reservations/:id/cancel", h.Cancel)
	g.POST("/reservations/:id/payments", h.RecordPayment)
	g.GET("/reservations/:id/payments", h.ListPayments)
}

// RegisterAdmin wires fleet management endpoints, restricted to the
// ADMIN role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN"))

	g.POST("/cars", h.CreateCar)
	g.PUT("/cars/:id", h.UpdateCar)
	g.DELETE("/cars/:id", h.DeleteCar)
	g.PUT("/cars/:id/features", h.ReplaceCarFeatures)
	g.GET("/features", h.ListFeatures)

	g.GET("/reservations", h.ListReservations)
	g.POST("/reservations/:id/confirm", h.ConfirmReservation)
	g.POST("/reservations/:id/complete", h.CompleteReservation)
	g.POST("/reservations/:id/cancel", h.CancelReservation)
}
