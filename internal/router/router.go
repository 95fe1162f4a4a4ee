// Package router wires handlers to routes. Registration is split by
// audience: public, auth, customer and admin.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/estudio-carvalho/booking-api/internal/handler"
)

// RegisterRoutes registers routes that need no authentication and no
// middleware at all. Currently only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}
