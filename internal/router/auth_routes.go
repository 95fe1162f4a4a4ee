package router

import (
	"github.com/labstack/echo/v4"

	"github.com/estudio-carvalho/booking-api/internal/handler"
)

// RegisterAuth registers the unified auth endpoints under /v1/auth. The
// refresh cookie is path-scoped to this group, so every endpoint that
// needs it must live here. limit is the per-IP rate limiter; it guards
// the credential endpoints against brute force.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limit)
	g.POST("/login", a.Login)
	g.POST("/register", a.Register)
	g.GET("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
	g.GET("/verify-token", a.VerifyToken)
}
