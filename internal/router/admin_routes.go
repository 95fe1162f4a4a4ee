package router

import (
	"github.com/labstack/echo/v4"

	"github.com/estudio-carvalho/booking-api/internal/auth"
	"github.com/estudio-carvalho/booking-api/internal/handler"
	"github.com/estudio-carvalho/booking-api/internal/middleware"
	"github.com/estudio-carvalho/booking-api/internal/model"
)

// AdminHandlers collects everything the back office exposes so the
// registration call stays readable.
type AdminHandlers struct {
	Bookings  *handler.BookingHandler
	Services  *handler.ServiceHandler
	Customers *handler.CustomerHandler
	Staff     *handler.StaffHandler
	Quotes    *handler.QuoteHandler
	Analytics *handler.AnalyticsHandler
}

// RegisterAdmin registers the back-office endpoints under /v1. Every
// route requires a valid access token with the admin role.
func RegisterAdmin(e *echo.Echo, h AdminHandlers, tokens *auth.TokenService) {
	g := e.Group(
		"/v1",
		middleware.Auth(tokens),
		middleware.RequireRole(model.RoleAdmin),
	)

	g.GET("/bookings", h.Bookings.List)
	g.PATCH("/bookings/:id/status", h.Bookings.UpdateStatus)
	g.DELETE("/bookings/:id", h.Bookings.Delete)

	g.GET("/services/all", h.Services.ListAll)
	g.POST("/services", h.Services.Create)
	g.PUT("/services/:id", h.Services.Update)
	g.DELETE("/services/:id", h.Services.Delete)

	g.GET("/customers", h.Customers.List)
	g.GET("/customers/:id", h.Customers.Get)
	g.DELETE("/customers/:id", h.Customers.Delete)

	g.GET("/staff", h.Staff.List)
	g.POST("/staff", h.Staff.Create)
	g.DELETE("/staff/:id", h.Staff.Delete)

	g.GET("/quotes", h.Quotes.List)
	g.GET("/quotes/:id", h.Quotes.Get)
	g.POST("/quotes", h.Quotes.Create)
	g.PATCH("/quotes/:id/status", h.Quotes.UpdateStatus)
	g.DELETE("/quotes/:id", h.Quotes.Delete)

	g.GET("/analytics/summary", h.Analytics.Summary)
}
