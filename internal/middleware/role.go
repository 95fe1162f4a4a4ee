package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/estudio-carvalho/booking-api/internal/model"
)

// RequireRole aborts with 403 unless the authenticated principal carries
// one of the given roles. Assumes Auth ran earlier in the chain.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxRole).(model.Role)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
			}
			return next(c)
		}
	}
}
