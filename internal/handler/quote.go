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

// QuoteStore is the slice of the quote repository the quote endpoints
// need.
type QuoteStore interface {
	Create(ctx context.Context, q *model.Quote) error
	List(ctx context.Context) ([]model.Quote, error)
	GetByID(ctx context.Context, id uint64) (model.Quote, error)
	UpdateStatus(ctx context.Context, id uint64, status model.QuoteStatus) error
	Delete(ctx context.Context, id uint64) error
}

// QuoteHandler manages priced offers for prospective customers. All
// quote endpoints are admin-only.
type QuoteHandler struct {
	Quotes QuoteStore
	Audit  *audit.Logger
}

func NewQuoteHandler(quotes QuoteStore, aud *audit.Logger) *QuoteHandler {
	return &QuoteHandler{Quotes: quotes, Audit: aud}
}

// List returns every quote, newest first.
func (h *QuoteHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.Quotes.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "list quotes failed"})
	}
	if items == nil {
		items = []model.Quote{}
	}
	return c.JSON(http.StatusOK, items)
}

// Get returns one quote with its line items.
func (h *QuoteHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid quote id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	q, err := h.Quotes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "quote not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load quote failed"})
	}
	return c.JSON(http.StatusOK, q)
}

type createQuoteReq struct {
	CustomerName  string               `json:"customerName"`
	CustomerEmail string               `json:"customerEmail"`
	CustomerPhone string               `json:"customerPhone"`
	Services      []model.QuoteService `json:"services"`
}

// Create issues a new quote. The total is always computed server-side
// from the line items; a total sent by the client is ignored.
func (h *QuoteHandler) Create(c echo.Context) error {
	var req createQuoteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	if req.CustomerName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "customerName is required"})
	}
	if len(req.Services) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "at least one service is required"})
	}
	var total uint32
	for _, item := range req.Services {
		if strings.TrimSpace(item.Name) == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "service name is required"})
		}
		total += item.PriceCents
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	q := model.Quote{
		CustomerName:  req.CustomerName,
		CustomerEmail: strings.ToLower(strings.TrimSpace(req.CustomerEmail)),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		Services:      req.Services,
		TotalCents:    total,
		Status:        model.QuotePending,
	}
	if err := h.Quotes.Create(ctx, &q); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create quote failed"})
	}
	h.Audit.AdminAction(principalID(c), "quote_create", "quote:"+q.Number, c.RealIP())
	return c.JSON(http.StatusCreated, q)
}

type updateQuoteStatusReq struct {
	Status model.QuoteStatus `json:"status"`
}

// UpdateStatus moves a quote between pending, approved and rejected.
func (h *QuoteHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid quote id"})
	}
	var req updateQuoteStatusReq
	if err := c.Bind(&req); err != nil || !req.Status.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Quotes.UpdateStatus(ctx, id, req.Status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "quote not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "update quote failed"})
	}
	h.Audit.AdminAction(principalID(c), "quote_status_"+string(req.Status), "quote:"+c.Param("id"), c.RealIP())
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": req.Status})
}

// Delete removes a quote (items cascade).
func (h *QuoteHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid quote id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Quotes.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "quote not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "delete quote failed"})
	}
	h.Audit.AdminAction(principalID(c), "quote_delete", "quote:"+c.Param("id"), c.RealIP())
	return c.NoContent(http.StatusNoContent)
}
