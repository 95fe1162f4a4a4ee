package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/estudio-carvalho/booking-api/internal/audit"
	"github.com/estudio-carvalho/booking-api/internal/auth"
	"github.com/estudio-carvalho/booking-api/internal/config"
	"github.com/estudio-carvalho/booking-api/internal/model"
	"github.com/estudio-carvalho/booking-api/internal/repository"
)

// StaffHandler manages admin accounts. Only an existing admin can reach
// these endpoints.
type StaffHandler struct {
	Cfg        config.Config
	Principals PrincipalStore
	Audit      *audit.Logger
}

func NewStaffHandler(cfg config.Config, principals PrincipalStore, aud *audit.Logger) *StaffHandler {
	return &StaffHandler{Cfg: cfg, Principals: principals, Audit: aud}
}

// List returns every admin account as credential-free summaries.
func (h *StaffHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	principals, err := h.Principals.ListByRole(ctx, model.RoleAdmin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "list staff failed"})
	}
	out := make([]model.Summary, 0, len(principals))
	for _, p := range principals {
		out = append(out, p.ToSummary())
	}
	return c.JSON(http.StatusOK, out)
}

// Create adds a new admin account.
func (h *StaffHandler) Create(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.FullName == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "fullName, email and password are required"})
	}

	hash, err := auth.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create staff failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id, err := h.Principals.Create(ctx, model.RoleAdmin, req.FullName, req.Email, hash)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"message": "email already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create staff failed"})
	}

	h.Audit.AdminAction(principalID(c), "staff_create", "admin:"+strconv.FormatUint(id, 10), c.RealIP())
	return c.JSON(http.StatusCreated, model.Summary{
		ID: id, FullName: req.FullName, Email: req.Email, UserType: model.RoleAdmin,
	})
}

// Delete removes an admin account. Admins cannot delete themselves, so
// the shop can never lock itself out through this endpoint alone.
func (h *StaffHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid staff id"})
	}
	if id == principalID(c) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "cannot delete your own account"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Principals.Delete(ctx, model.RoleAdmin, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "staff member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "delete staff failed"})
	}
	h.Audit.AdminAction(principalID(c), "staff_delete", "admin:"+c.Param("id"), c.RealIP())
	return c.NoContent(http.StatusNoContent)
}
