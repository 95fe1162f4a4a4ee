package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/estudio-carvalho/booking-api/internal/audit"
	"github.com/estudio-carvalho/booking-api/internal/auth"
	"github.com/estudio-carvalho/booking-api/internal/config"
	"github.com/estudio-carvalho/booking-api/internal/model"
	"github.com/estudio-carvalho/booking-api/internal/queue"
	"github.com/estudio-carvalho/booking-api/internal/repository"
)

// BookingStore is the slice of the booking repository the booking
// endpoints need.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	List(ctx context.Context) ([]model.Booking, error)
	ListByCustomer(ctx context.Context, customerID uint64) ([]model.Booking, error)
	UpdateStatus(ctx context.Context, id uint64, status model.BookingStatus) error
	Delete(ctx context.Context, id uint64) error
}

// EventPublisher emits a booking-created event to the message broker.
// Publishing is best effort: a broker outage never fails the booking.
type EventPublisher interface {
	PublishBookingCreated(ctx context.Context, ev queue.BookingCreatedEvent) error
}

// PublisherFunc adapts a plain function to EventPublisher.
type PublisherFunc func(ctx context.Context, ev queue.BookingCreatedEvent) error

func (f PublisherFunc) PublishBookingCreated(ctx context.Context, ev queue.BookingCreatedEvent) error {
	return f(ctx, ev)
}

// BookingHandler serves the public booking form, the customer's own
// booking list and the admin booking board.
type BookingHandler struct {
	Cfg        config.Config
	Tokens     *auth.TokenService
	Bookings   BookingStore
	Principals PrincipalStore
	Publish    EventPublisher
	Audit      *audit.Logger
}

func NewBookingHandler(cfg config.Config, tokens *auth.TokenService, bookings BookingStore, principals PrincipalStore, pub EventPublisher, aud *audit.Logger) *BookingHandler {
	return &BookingHandler{Cfg: cfg, Tokens: tokens, Bookings: bookings, Principals: principals, Publish: pub, Audit: aud}
}

type createBookingReq struct {
	FullName     string        `json:"fullName"`
	Email        string        `json:"email"`
	Phone        string        `json:"phone"`
	Car          string        `json:"car"`
	LicensePlate string        `json:"licensePlate"`
	Services     []string      `json:"services"`
	Date         time.Time     `json:"date"`
	Address      model.Address `json:"address"`
	NeedsPickup  bool          `json:"needsPickup"`
	// Password is optional: when present the booking also creates (or
	// links) a customer account with this email.
	Password string `json:"password"`
}

type createBookingResp struct {
	Booking model.Booking `json:"booking"`
	// AccessToken is set only when the booking created or logged into a
	// customer account.
	AccessToken string `json:"customerAccessToken,omitempty"`
}

// Create is the public booking endpoint. No authentication is required;
// an optional password turns the booking into an account signup, and an
// optional bearer token links the booking to the logged-in customer.
func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.FullName == "" || req.Email == "" || req.Phone == "" || req.Car == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "fullName, email, phone and car are required"})
	}
	if len(req.Services) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "at least one service is required"})
	}
	if req.Date.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "date is required"})
	}
	if req.NeedsPickup && (req.Address.Street == "" || req.Address.City == "") {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "pickup requires street and city"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	var customerID *uint64
	var accessToken string

	switch {
	case req.Password != "":
		id, token, err := h.linkOrCreateCustomer(ctx, req)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				return c.JSON(http.StatusBadRequest, echo.Map{"message": "an account with this email already exists"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create account failed"})
		}
		customerID, accessToken = &id, token
	default:
		// A logged-in customer submitting the form gets the booking
		// attached to their account. Invalid tokens are simply ignored;
		// the endpoint stays public.
		if header := c.Request().Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
			if claims, err := h.Tokens.VerifyAccess(strings.TrimPrefix(header, "Bearer ")); err == nil && claims.Role == model.RoleCustomer {
				id := claims.PrincipalID
				customerID = &id
			}
		}
	}

	b := model.Booking{
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		Car:          req.Car,
		LicensePlate: strings.ToUpper(strings.TrimSpace(req.LicensePlate)),
		Services:     req.Services,
		Date:         req.Date.UTC(),
		Address:      req.Address,
		NeedsPickup:  req.NeedsPickup,
		Status:       model.BookingWaiting,
		CustomerID:   customerID,
	}
	if err := h.Bookings.Create(ctx, &b); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create booking failed"})
	}

	if h.Publish != nil {
		_ = h.Publish.PublishBookingCreated(ctx, queue.BookingCreatedEvent{
			BookingID:   b.ID,
			FullName:    b.FullName,
			Email:       b.Email,
			Phone:       b.Phone,
			Car:         b.Car,
			Services:    b.Services,
			BookedFor:   b.Date.Format(time.RFC3339),
			NeedsPickup: b.NeedsPickup,
			City:        b.Address.City,
			CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusCreated, createBookingResp{Booking: b, AccessToken: accessToken})
}

// linkOrCreateCustomer resolves the booking's email to a customer
// account: an existing account must match the supplied password, a new
// one is created with it. Returns the customer id and a fresh access
// token.
func (h *BookingHandler) linkOrCreateCustomer(ctx context.Context, req createBookingReq) (uint64, string, error) {
	p, err := h.Principals.FindByRoleEmail(ctx, model.RoleCustomer, req.Email)
	switch {
	case err == nil:
		if !auth.VerifyPassword(p.PasswordHash, req.Password) {
			return 0, "", auth.ErrInvalidCredentials
		}
		token, _, err := h.Tokens.IssueAccess(p.ID, model.RoleCustomer)
		return p.ID, token, err
	case errors.Is(err, repository.ErrNotFound):
		hash, err := auth.HashPassword(req.Password, h.Cfg.BcryptCost)
		if err != nil {
			return 0, "", err
		}
		id, err := h.Principals.Create(ctx, model.RoleCustomer, req.FullName, req.Email, hash)
		if err != nil {
			return 0, "", err
		}
		token, _, err := h.Tokens.IssueAccess(id, model.RoleCustomer)
		return id, token, err
	default:
		return 0, "", err
	}
}

// List returns every booking for the admin board.
func (h *BookingHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.Bookings.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "list bookings failed"})
	}
	if items == nil {
		items = []model.Booking{}
	}
	return c.JSON(http.StatusOK, items)
}

// MyBookings returns the authenticated customer's own bookings.
func (h *BookingHandler) MyBookings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.Bookings.ListByCustomer(ctx, principalID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "list bookings failed"})
	}
	if items == nil {
		items = []model.Booking{}
	}
	return c.JSON(http.StatusOK, items)
}

type updateStatusReq struct {
	Status model.BookingStatus `json:"status"`
}

// UpdateStatus moves a booking through the shop pipeline.
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid booking id"})
	}
	var req updateStatusReq
	if err := c.Bind(&req); err != nil || !req.Status.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Bookings.UpdateStatus(ctx, id, req.Status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "update status failed"})
	}
	h.Audit.AdminAction(principalID(c), "booking_status_"+string(req.Status), "booking:"+c.Param("id"), c.RealIP())
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": req.Status})
}

// Delete removes a booking.
func (h *BookingHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid booking id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Bookings.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "delete booking failed"})
	}
	h.Audit.AdminAction(principalID(c), "booking_delete", "booking:"+c.Param("id"), c.RealIP())
	return c.NoContent(http.StatusNoContent)
}
