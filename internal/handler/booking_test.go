package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/estudio-carvalho/booking-api/internal/auth"
	"github.com/estudio-carvalho/booking-api/internal/config"
	"github.com/estudio-carvalho/booking-api/internal/middleware"
	"github.com/estudio-carvalho/booking-api/internal/model"
	"github.com/estudio-carvalho/booking-api/internal/queue"
)

type bookingEnv struct {
	handler    *BookingHandler
	principals *fakePrincipalStore
	bookings   *fakeBookingStore
	published  []queue.BookingCreatedEvent
}

func newBookingEnv() *bookingEnv {
	env := &bookingEnv{
		principals: newFakePrincipalStore(),
		bookings:   newFakeBookingStore(),
	}
	cfg := config.Config{Env: "dev", BcryptCost: bcrypt.MinCost}
	tokens := auth.NewTokenService("access-secret", "refresh-secret", 15, 7)
	pub := PublisherFunc(func(_ context.Context, ev queue.BookingCreatedEvent) error {
		env.published = append(env.published, ev)
		return nil
	})
	env.handler = NewBookingHandler(cfg, tokens, env.bookings, env.principals, pub, nil)
	return env
}

func validBookingReq() createBookingReq {
	return createBookingReq{
		FullName: "Caio Cliente",
		Email:    "caio@mail.com",
		Phone:    "+55 11 99999-0000",
		Car:      "Fiat Argo 2022",
		Services: []string{"Lavagem Completa", "Enceramento"},
		Date:     time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC),
	}
}

func TestCreateBooking(t *testing.T) {
	env := newBookingEnv()

	rec := callJSON(t, env.handler.Create, http.MethodPost, "/v1/bookings", validBookingReq(), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp createBookingResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.BookingWaiting, resp.Booking.Status)
	assert.Nil(t, resp.Booking.CustomerID, "anonymous booking has no account link")
	assert.Empty(t, resp.AccessToken)

	require.Len(t, env.published, 1)
	assert.Equal(t, resp.Booking.ID, env.published[0].BookingID)
	assert.Equal(t, []string{"Lavagem Completa", "Enceramento"}, env.published[0].Services)
}

func TestCreateBookingValidation(t *testing.T) {
	env := newBookingEnv()

	tests := []struct {
		name   string
		mutate func(*createBookingReq)
	}{
		{name: "missing name", mutate: func(r *createBookingReq) { r.FullName = "" }},
		{name: "missing phone", mutate: func(r *createBookingReq) { r.Phone = "" }},
		{name: "no services", mutate: func(r *createBookingReq) { r.Services = nil }},
		{name: "no date", mutate: func(r *createBookingReq) { r.Date = time.Time{} }},
		{name: "pickup without address", mutate: func(r *createBookingReq) { r.NeedsPickup = true }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := validBookingReq()
			test.mutate(&req)
			rec := callJSON(t, env.handler.Create, http.MethodPost, "/v1/bookings", req, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Empty(t, env.published, "rejected bookings publish nothing")
}

// A password on the booking form creates a customer account and links
// the booking to it.
func TestCreateBookingWithPassword(t *testing.T) {
	env := newBookingEnv()

	req := validBookingReq()
	req.Password = "secret"
	rec := callJSON(t, env.handler.Create, http.MethodPost, "/v1/bookings", req, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp createBookingResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Booking.CustomerID)
	assert.NotEmpty(t, resp.AccessToken, "account creation logs the customer in")

	p, err := env.principals.FindByRoleEmail(t.Context(), model.RoleCustomer, "caio@mail.com")
	require.NoError(t, err)
	assert.Equal(t, p.ID, *resp.Booking.CustomerID)

	t.Run("existing account with matching password links", func(t *testing.T) {
		again := validBookingReq()
		again.Password = "secret"
		rec := callJSON(t, env.handler.Create, http.MethodPost, "/v1/bookings", again, nil)
		require.Equal(t, http.StatusCreated, rec.Code)
		var resp2 createBookingResp
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp2))
		require.NotNil(t, resp2.Booking.CustomerID)
		assert.Equal(t, p.ID, *resp2.Booking.CustomerID)
	})

	t.Run("existing account with wrong password is rejected", func(t *testing.T) {
		bad := validBookingReq()
		bad.Password = "not-the-password"
		rec := callJSON(t, env.handler.Create, http.MethodPost, "/v1/bookings", bad, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

// A logged-in customer's bearer token links the booking without any
// password.
func TestCreateBookingWithBearer(t *testing.T) {
	env := newBookingEnv()
	hash, err := auth.HashPassword("pass", bcrypt.MinCost)
	require.NoError(t, err)
	id, err := env.principals.Create(t.Context(), model.RoleCustomer, "Caio", "caio@mail.com", hash)
	require.NoError(t, err)
	token, _, err := env.handler.Tokens.IssueAccess(id, model.RoleCustomer)
	require.NoError(t, err)

	rec := callJSON(t, env.handler.Create, http.MethodPost, "/v1/bookings", validBookingReq(), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp createBookingResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Booking.CustomerID)
	assert.Equal(t, id, *resp.Booking.CustomerID)
	assert.Empty(t, resp.AccessToken)
}

// authedContext builds a context the way the auth middleware leaves it.
func authedContext(t *testing.T, method, target string, body any, id uint64, role model.Role) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set(middleware.CtxPrincipalID, id)
	c.Set(middleware.CtxRole, role)
	return c, rec
}

func TestMyBookingsIsolation(t *testing.T) {
	env := newBookingEnv()
	one, two := uint64(1), uint64(2)
	for _, b := range []model.Booking{
		{FullName: "One", Email: "one@mail.com", Phone: "1", Car: "A", CustomerID: &one},
		{FullName: "One Again", Email: "one@mail.com", Phone: "1", Car: "B", CustomerID: &one},
		{FullName: "Two", Email: "two@mail.com", Phone: "2", Car: "C", CustomerID: &two},
		{FullName: "Anon", Email: "anon@mail.com", Phone: "3", Car: "D"},
	} {
		b := b
		require.NoError(t, env.bookings.Create(t.Context(), &b))
	}

	c, rec := authedContext(t, http.MethodGet, "/v1/my-bookings", nil, one, model.RoleCustomer)
	require.NoError(t, env.handler.MyBookings(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var items []model.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)
	for _, b := range items {
		assert.Equal(t, one, *b.CustomerID)
	}
}

func TestUpdateBookingStatus(t *testing.T) {
	env := newBookingEnv()
	b := model.Booking{FullName: "Caio", Email: "c@m.com", Phone: "1", Car: "A", Status: model.BookingWaiting}
	require.NoError(t, env.bookings.Create(t.Context(), &b))

	run := func(t *testing.T, id string, body any) *httptest.ResponseRecorder {
		c, rec := authedContext(t, http.MethodPatch, "/v1/bookings/"+id+"/status", body, 1, model.RoleAdmin)
		c.SetParamNames("id")
		c.SetParamValues(id)
		require.NoError(t, env.handler.UpdateStatus(c))
		return rec
	}

	rec := run(t, "1", updateStatusReq{Status: model.BookingInProgress})
	require.Equal(t, http.StatusOK, rec.Code)
	items, _ := env.bookings.List(t.Context())
	assert.Equal(t, model.BookingInProgress, items[0].Status)

	assert.Equal(t, http.StatusBadRequest, run(t, "1", updateStatusReq{Status: "polished"}).Code)
	assert.Equal(t, http.StatusNotFound, run(t, "99", updateStatusReq{Status: model.BookingReady}).Code)
}

func TestDeleteBooking(t *testing.T) {
	env := newBookingEnv()
	b := model.Booking{FullName: "Caio", Email: "c@m.com", Phone: "1", Car: "A"}
	require.NoError(t, env.bookings.Create(t.Context(), &b))

	c, rec := authedContext(t, http.MethodDelete, "/v1/bookings/1", nil, 1, model.RoleAdmin)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.handler.Delete(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	c, rec = authedContext(t, http.MethodDelete, "/v1/bookings/1", nil, 1, model.RoleAdmin)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.handler.Delete(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
