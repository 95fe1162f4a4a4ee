package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/estudio-carvalho/booking-api/internal/audit"
	"github.com/estudio-carvalho/booking-api/internal/model"
	"github.com/estudio-carvalho/booking-api/internal/repository"
)

// ServiceStore is the slice of the catalog repository the service
// endpoints need.
type ServiceStore interface {
	ListActive(ctx context.Context) ([]model.Service, error)
	List(ctx context.Context) ([]model.Service, error)
	Create(ctx context.Context, s *model.Service) error
	Update(ctx context.Context, s model.Service) error
	Delete(ctx context.Context, id uint64) error
}

// ServiceHandler serves the public catalog and its admin management.
type ServiceHandler struct {
	Services ServiceStore
	Audit    *audit.Logger
}

func NewServiceHandler(services ServiceStore, aud *audit.Logger) *ServiceHandler {
	return &ServiceHandler{Services: services, Audit: aud}
}

// ListPublic returns the active catalog shown on the booking form.
func (h *ServiceHandler) ListPublic(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.Services.ListActive(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "list services failed"})
	}
	if items == nil {
		items = []model.Service{}
	}
	return c.JSON(http.StatusOK, items)
}

// ListAll returns the whole catalog, inactive entries included.
func (h *ServiceHandler) ListAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.Services.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "list services failed"})
	}
	if items == nil {
		items = []model.Service{}
	}
	return c.JSON(http.StatusOK, items)
}

type serviceReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  uint32 `json:"priceCents"`
	DurationMin uint32 `json:"durationMin"`
	IsActive    *bool  `json:"isActive"`
}

func (r *serviceReq) validate() string {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return "name is required"
	}
	if r.PriceCents == 0 {
		return "priceCents must be positive"
	}
	return ""
}

// Create adds a catalog entry. New entries default to active.
func (h *ServiceHandler) Create(c echo.Context) error {
	var req serviceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": msg})
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s := model.Service{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		DurationMin: req.DurationMin,
		IsActive:    active,
	}
	if err := h.Services.Create(ctx, &s); err != nil {
		if errors.Is(err, repository.ErrNameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"message": "a service with this name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create service failed"})
	}
	h.Audit.AdminAction(principalID(c), "service_create", "service:"+strconv.FormatUint(s.ID, 10), c.RealIP())
	return c.JSON(http.StatusCreated, s)
}

// Update rewrites a catalog entry.
func (h *ServiceHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid service id"})
	}
	var req serviceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": msg})
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s := model.Service{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		DurationMin: req.DurationMin,
		IsActive:    active,
	}
	if err := h.Services.Update(ctx, s); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "service not found"})
		case errors.Is(err, repository.ErrNameExists):
			return c.JSON(http.StatusConflict, echo.Map{"message": "a service with this name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "update service failed"})
	}
	h.Audit.AdminAction(principalID(c), "service_update", "service:"+c.Param("id"), c.RealIP())
	return c.JSON(http.StatusOK, s)
}

// Delete removes a catalog entry.
func (h *ServiceHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid service id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Services.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "service not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "delete service failed"})
	}
	h.Audit.AdminAction(principalID(c), "service_delete", "service:"+c.Param("id"), c.RealIP())
	return c.NoContent(http.StatusNoContent)
}
