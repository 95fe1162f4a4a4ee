package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/estudio-carvalho/booking-api/internal/model"
)

// PrincipalCounter counts accounts per role.
type PrincipalCounter interface {
	CountByRole(ctx context.Context, role model.Role) (int64, error)
}

// BookingStats exposes the aggregate booking figures the dashboard
// shows.
type BookingStats interface {
	CountBookings(ctx context.Context) (int64, error)
	RevenueDeliveredCents(ctx context.Context) (int64, error)
}

// AnalyticsHandler serves the admin dashboard summary.
type AnalyticsHandler struct {
	Principals PrincipalCounter
	Bookings   BookingStats
}

func NewAnalyticsHandler(principals PrincipalCounter, bookings BookingStats) *AnalyticsHandler {
	return &AnalyticsHandler{Principals: principals, Bookings: bookings}
}

// Summary returns the dashboard headline numbers. Revenue counts only
// delivered bookings, valued at current catalog prices.
func (h *AnalyticsHandler) Summary(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	customers, err := h.Principals.CountByRole(ctx, model.RoleCustomer)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load summary failed"})
	}
	bookings, err := h.Bookings.CountBookings(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load summary failed"})
	}
	revenue, err := h.Bookings.RevenueDeliveredCents(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load summary failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"totalCustomers":    customers,
		"totalBookings":     bookings,
		"totalRevenueCents": revenue,
	})
}
