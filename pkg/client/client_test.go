package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func newClient(t *testing.T, srv *httptest.Server, opts ...Option) *Client {
	t.Helper()
	c, err := New(srv.URL, opts...)
	require.NoError(t, err)
	return c
}

func TestBearerHeaderAttached(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		writeJSON(t, w, http.StatusOK, []Service{})
	}))
	defer srv.Close()

	c := newClient(t, srv)
	c.SetAccessToken("tok-123")
	_, err := c.Services(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", got)
}

// An expired access token triggers exactly one refresh and one retry.
func TestRefreshAndRetryOnce(t *testing.T) {
	var protectedHits, refreshHits int
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/my-bookings", func(w http.ResponseWriter, r *http.Request) {
		protectedHits++
		if r.Header.Get("Authorization") != "Bearer fresh" {
			writeJSON(t, w, http.StatusUnauthorized, map[string]string{"message": "invalid or expired token"})
			return
		}
		writeJSON(t, w, http.StatusOK, []Booking{{ID: 7}})
	})
	mux.HandleFunc(refreshPath, func(w http.ResponseWriter, r *http.Request) {
		refreshHits++
		writeJSON(t, w, http.StatusOK, authResponse{AccessToken: "fresh", User: User{ID: 1}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newClient(t, srv)
	c.SetAccessToken("stale")

	items, err := c.MyBookings(t.Context())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, protectedHits, "one failed attempt plus one retry")
	assert.Equal(t, 1, refreshHits)
	assert.Equal(t, "fresh", c.AccessToken())
}

// When the retried request is still unauthorized, the callback fires
// and there is no third attempt.
func TestRetryStillUnauthorized(t *testing.T) {
	var protectedHits, callbacks int
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/my-bookings", func(w http.ResponseWriter, r *http.Request) {
		protectedHits++
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"message": "invalid or expired token"})
	})
	mux.HandleFunc(refreshPath, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, authResponse{AccessToken: "fresh"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newClient(t, srv, WithSessionInvalidated(func() { callbacks++ }))
	c.SetAccessToken("stale")

	_, err := c.MyBookings(t.Context())
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
	assert.Equal(t, 2, protectedHits, "no third attempt")
	assert.Equal(t, 1, callbacks)
	assert.Empty(t, c.AccessToken())
}

// A failed refresh surfaces the original request's error, not the
// refresh's own, and invalidates the session.
func TestFailedRefreshPropagatesOriginalError(t *testing.T) {
	var protectedHits, callbacks int
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/my-bookings", func(w http.ResponseWriter, r *http.Request) {
		protectedHits++
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"message": "invalid or expired token"})
	})
	mux.HandleFunc(refreshPath, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusForbidden, map[string]string{"message": "session revoked"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newClient(t, srv, WithSessionInvalidated(func() { callbacks++ }))
	c.SetAccessToken("stale")

	_, err := c.MyBookings(t.Context())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "invalid or expired token", apiErr.Message)
	assert.Equal(t, 1, protectedHits, "no retry after a failed refresh")
	assert.Equal(t, 1, callbacks)
}

// A refusal on an explicit Refresh call fires the callback but never
// recurses into another refresh.
func TestDirectRefreshFailure(t *testing.T) {
	var refreshHits, callbacks int
	mux := http.NewServeMux()
	mux.HandleFunc(refreshPath, func(w http.ResponseWriter, r *http.Request) {
		refreshHits++
		writeJSON(t, w, http.StatusForbidden, map[string]string{"message": "session revoked"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newClient(t, srv, WithSessionInvalidated(func() { callbacks++ }))
	_, err := c.Refresh(t.Context())
	require.Error(t, err)
	assert.Equal(t, 1, refreshHits)
	assert.Equal(t, 1, callbacks)
}

// The jar carries the refresh cookie from login to refresh.
func TestCookieFlow(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "refresh_token", Value: "session-abc", Path: "/v1/auth"})
		writeJSON(t, w, http.StatusOK, authResponse{AccessToken: "tok", User: User{ID: 3, UserType: "customer"}})
	})
	mux.HandleFunc(refreshPath, func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie("refresh_token")
		if err != nil || ck.Value != "session-abc" {
			writeJSON(t, w, http.StatusUnauthorized, map[string]string{"message": "no active session"})
			return
		}
		writeJSON(t, w, http.StatusOK, authResponse{AccessToken: "tok-2", User: User{ID: 3}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newClient(t, srv)
	user, err := c.Login(t.Context(), "caio@mail.com", "pass")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), user.ID)

	refreshed, err := c.Refresh(t.Context())
	require.NoError(t, err)
	assert.Equal(t, uint64(3), refreshed.ID)
	assert.Equal(t, "tok-2", c.AccessToken())
}

// A failed login leaves existing state alone and fires no callback.
func TestLoginFailure(t *testing.T) {
	var callbacks int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"message": "invalid email or password"})
	}))
	defer srv.Close()

	c := newClient(t, srv, WithSessionInvalidated(func() { callbacks++ }))
	_, err := c.Login(t.Context(), "caio@mail.com", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "invalid email or password", apiErr.Message)
	assert.Zero(t, callbacks)
}

func TestLogoutClearsTokenOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newClient(t, srv)
	c.SetAccessToken("tok")
	_ = c.Logout(t.Context())
	assert.Empty(t, c.AccessToken())
}

func TestCreateBookingStoresAccountToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusCreated, BookingResult{
			Booking:     Booking{ID: 12, Status: "waiting"},
			AccessToken: "new-account-token",
		})
	}))
	defer srv.Close()

	c := newClient(t, srv)
	res, err := c.CreateBooking(t.Context(), BookingRequest{FullName: "Caio", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, uint64(12), res.Booking.ID)
	assert.Equal(t, "new-account-token", c.AccessToken())
}
