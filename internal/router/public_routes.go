package router

import (
	"github.com/labstack/echo/v4"

	"github.com/estudio-carvalho/booking-api/internal/handler"
)

// RegisterPublic registers the guest-facing endpoints: the service
// catalog behind the response cache, and the booking form. Neither
// requires authentication; the booking handler itself honors an
// optional bearer token.
func RegisterPublic(e *echo.Echo, s *handler.ServiceHandler, b *handler.BookingHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/services", s.ListPublic, cache)
	e.POST("/v1/bookings", b.Create)
}
