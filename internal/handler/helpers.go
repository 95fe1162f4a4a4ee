// Package handler implements the HTTP endpoints. Handlers depend on
// small consumer-side store interfaces so tests can swap in in-memory
// fakes without a database.
package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/estudio-carvalho/booking-api/internal/middleware"
	"github.com/estudio-carvalho/booking-api/internal/model"
)

// principalID reads the authenticated principal id set by the auth
// middleware. Zero means the route was not wrapped with it.
func principalID(c echo.Context) uint64 {
	if id, ok := c.Get(middleware.CtxPrincipalID).(uint64); ok {
		return id
	}
	return 0
}

// currentRole reads the authenticated role set by the auth middleware.
func currentRole(c echo.Context) model.Role {
	if r, ok := c.Get(middleware.CtxRole).(model.Role); ok {
		return r
	}
	return ""
}
