package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/estudio-carvalho/booking-api/internal/auth"
)

// Context keys set by Auth for downstream middleware and handlers.
const (
	CtxPrincipalID = "principal_id"
	CtxRole        = "role"
)

// Auth returns middleware that validates the bearer access token and
// stores the principal id and role in the request context. Protected
// routes wrap themselves with this so handlers can trust those keys.
func Auth(tokens *auth.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "missing bearer token"})
			}
			claims, err := tokens.VerifyAccess(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid or expired token"})
			}
			c.Set(CtxPrincipalID, claims.PrincipalID)
			c.Set(CtxRole, claims.Role)
			return next(c)
		}
	}
}
