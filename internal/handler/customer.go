package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/estudio-carvalho/booking-api/internal/audit"
	"github.com/estudio-carvalho/booking-api/internal/model"
	"github.com/estudio-carvalho/booking-api/internal/repository"
)

// CustomerBookingLister is the read slice of the booking store the
// customer admin view needs.
type CustomerBookingLister interface {
	ListByCustomer(ctx context.Context, customerID uint64) ([]model.Booking, error)
}

// CustomerHandler serves the admin view over customer accounts.
type CustomerHandler struct {
	Principals PrincipalStore
	Bookings   CustomerBookingLister
	Audit      *audit.Logger
}

func NewCustomerHandler(principals PrincipalStore, bookings CustomerBookingLister, aud *audit.Logger) *CustomerHandler {
	return &CustomerHandler{Principals: principals, Bookings: bookings, Audit: aud}
}

// List returns every customer account as credential-free summaries.
func (h *CustomerHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	principals, err := h.Principals.ListByRole(ctx, model.RoleCustomer)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "list customers failed"})
	}
	out := make([]model.Summary, 0, len(principals))
	for _, p := range principals {
		out = append(out, p.ToSummary())
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one customer with their booking history.
func (h *CustomerHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid customer id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := h.Principals.FindByID(ctx, model.RoleCustomer, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "customer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load customer failed"})
	}
	bookings, err := h.Bookings.ListByCustomer(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load bookings failed"})
	}
	if bookings == nil {
		bookings = []model.Booking{}
	}
	return c.JSON(http.StatusOK, echo.Map{"customer": p.ToSummary(), "bookings": bookings})
}

// Delete removes a customer account. Bookings are kept; they carry
// their own contact details.
func (h *CustomerHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid customer id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Principals.Delete(ctx, model.RoleCustomer, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "customer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "delete customer failed"})
	}
	h.Audit.AdminAction(principalID(c), "customer_delete", "customer:"+c.Param("id"), c.RealIP())
	return c.NoContent(http.StatusNoContent)
}
