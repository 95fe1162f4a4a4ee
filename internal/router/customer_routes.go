package router

import (
	"github.com/labstack/echo/v4"

	"github.com/estudio-carvalho/booking-api/internal/auth"
	"github.com/estudio-carvalho/booking-api/internal/handler"
	"github.com/estudio-carvalho/booking-api/internal/middleware"
	"github.com/estudio-carvalho/booking-api/internal/model"
)

// RegisterCustomer registers customer-scoped endpoints under /v1. All
// routes require a valid access token with the customer role.
func RegisterCustomer(e *echo.Echo, b *handler.BookingHandler, tokens *auth.TokenService) {
	g := e.Group(
		"/v1",
		middleware.Auth(tokens),
		middleware.RequireRole(model.RoleCustomer),
	)
	g.GET("/my-bookings", b.MyBookings)
}
