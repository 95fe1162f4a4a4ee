// Package client is the Go client for the booking API. It keeps the
// access token in memory, carries the refresh cookie in its jar and
// transparently refreshes an expired access token at most once per
// request.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"
)

const refreshPath = "/v1/auth/refresh"

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// IsAuthError reports whether err is a 401 or 403 from the server, the
// two statuses that mean the presented credentials were refused.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
}

// User mirrors the server's account summary.
type User struct {
	ID       uint64 `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	UserType string `json:"userType"`
}

type authResponse struct {
	User        User   `json:"user"`
	AccessToken string `json:"accessToken"`
}

// Service mirrors a catalog entry.
type Service struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  uint32 `json:"priceCents"`
	DurationMin uint32 `json:"durationMin"`
}

// Address is the pickup address on a booking.
type Address struct {
	CEP          string `json:"cep"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
}

// Booking mirrors a booking as the server returns it.
type Booking struct {
	ID           uint64    `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Car          string    `json:"car"`
	LicensePlate string    `json:"licensePlate"`
	Services     []string  `json:"services"`
	Date         time.Time `json:"date"`
	Address      Address   `json:"address"`
	NeedsPickup  bool      `json:"needsPickup"`
	Status       string    `json:"status"`
}

// BookingRequest is the public booking form. Password is optional; when
// set the booking also creates or links a customer account.
type BookingRequest struct {
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Car          string    `json:"car"`
	LicensePlate string    `json:"licensePlate,omitempty"`
	Services     []string  `json:"services"`
	Date         time.Time `json:"date"`
	Address      Address   `json:"address"`
	NeedsPickup  bool      `json:"needsPickup"`
	Password     string    `json:"password,omitempty"`
}

// BookingResult is the server's answer to a booking submission.
type BookingResult struct {
	Booking Booking `json:"booking"`
	// AccessToken is set when the submission created or logged into a
	// customer account.
	AccessToken string `json:"customerAccessToken"`
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. A cookie jar is
// installed on it if it has none; the refresh flow depends on one.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithSessionInvalidated sets the callback fired when the session is
// gone for good: the refresh failed, or a refreshed request still came
// back unauthorized. The callback is how an application learns it must
// send the user back to the login screen.
func WithSessionInvalidated(fn func()) Option {
	return func(c *Client) { c.onInvalid = fn }
}

// Client talks to one booking API server. It is safe for concurrent
// use.
type Client struct {
	base string
	http *http.Client

	mu    sync.Mutex
	token string

	// refreshMu serializes refresh attempts so concurrent 401s do not
	// stampede the refresh endpoint.
	refreshMu sync.Mutex

	onInvalid func()
}

// New builds a Client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{base: strings.TrimRight(baseURL, "/")}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 15 * time.Second}
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("client: build cookie jar: %w", err)
		}
		c.http.Jar = jar
	}
	return c, nil
}

// SetAccessToken replaces the in-memory access token.
func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// AccessToken returns the current in-memory access token.
func (c *Client) AccessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) sessionInvalidated() {
	c.SetAccessToken("")
	if c.onInvalid != nil {
		c.onInvalid()
	}
}

// send performs one HTTP exchange: JSON in, JSON out, bearer token
// attached when present. Responses of 400 and above come back as
// *APIError.
func (c *Client) send(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode >= 400 {
		return decodeError(res)
	}
	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

func decodeError(res *http.Response) error {
	apiErr := &APIError{Status: res.StatusCode}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err == nil {
		apiErr.Message = payload.Message
		if apiErr.Message == "" {
			apiErr.Message = payload.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(res.StatusCode)
	}
	return apiErr
}

// do runs send with the refresh-and-retry policy: a 401 triggers one
// refresh and one retry, never more. The refresh endpoint itself is
// excluded, otherwise a dead session would recurse forever.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	err := c.send(ctx, method, path, in, out)
	if !IsAuthError(err) {
		return err
	}
	if path == refreshPath {
		c.sessionInvalidated()
		return err
	}
	if _, rerr := c.refresh(ctx); rerr != nil {
		// The session is gone; the caller gets the error that started
		// the exchange, not the refresh's own.
		c.sessionInvalidated()
		return err
	}
	retryErr := c.send(ctx, method, path, in, out)
	if IsAuthError(retryErr) {
		// A fresh token was refused. No third attempt.
		c.sessionInvalidated()
	}
	return retryErr
}

// refresh exchanges the refresh cookie for a new access token. Only one
// refresh runs at a time; a concurrent caller that waited simply gets
// the token its predecessor fetched.
func (c *Client) refresh(ctx context.Context) (User, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	var resp authResponse
	if err := c.send(ctx, http.MethodGet, refreshPath, nil, &resp); err != nil {
		return User{}, err
	}
	c.SetAccessToken(resp.AccessToken)
	return resp.User, nil
}

// Login authenticates with email and password. The refresh cookie lands
// in the jar; the access token is kept in memory. A 401 here means bad
// credentials and does not touch any existing session state.
func (c *Client) Login(ctx context.Context, email, password string) (User, error) {
	var resp authResponse
	err := c.send(ctx, http.MethodPost, "/v1/auth/login", map[string]string{
		"email": email, "password": password,
	}, &resp)
	if err != nil {
		return User{}, err
	}
	c.SetAccessToken(resp.AccessToken)
	return resp.User, nil
}

// Register creates a customer account. No session is opened; call Login
// afterwards.
func (c *Client) Register(ctx context.Context, fullName, email, password string) (User, error) {
	var resp struct {
		User User `json:"user"`
	}
	err := c.send(ctx, http.MethodPost, "/v1/auth/register", map[string]string{
		"fullName": fullName, "email": email, "password": password,
	}, &resp)
	if err != nil {
		return User{}, err
	}
	return resp.User, nil
}

// Refresh explicitly renews the access token from the cookie session.
// When the server refuses, the session-invalidated callback fires.
func (c *Client) Refresh(ctx context.Context) (User, error) {
	user, err := c.refresh(ctx)
	if err != nil {
		if IsAuthError(err) {
			c.sessionInvalidated()
		}
		return User{}, err
	}
	return user, nil
}

// Logout closes the session. Best effort: the local token is dropped
// even when the server cannot be reached.
func (c *Client) Logout(ctx context.Context) error {
	err := c.send(ctx, http.MethodPost, "/v1/auth/logout", nil, nil)
	c.SetAccessToken("")
	return err
}

// VerifyToken asks the server who the current access token belongs to.
func (c *Client) VerifyToken(ctx context.Context) (User, error) {
	var resp struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/auth/verify-token", nil, &resp); err != nil {
		return User{}, err
	}
	return resp.User, nil
}

// Services fetches the public catalog.
func (c *Client) Services(ctx context.Context) ([]Service, error) {
	var out []Service
	if err := c.do(ctx, http.MethodGet, "/v1/services", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateBooking submits the public booking form.
func (c *Client) CreateBooking(ctx context.Context, req BookingRequest) (BookingResult, error) {
	var out BookingResult
	if err := c.do(ctx, http.MethodPost, "/v1/bookings", req, &out); err != nil {
		return BookingResult{}, err
	}
	if out.AccessToken != "" {
		c.SetAccessToken(out.AccessToken)
	}
	return out, nil
}

// MyBookings fetches the logged-in customer's bookings.
func (c *Client) MyBookings(ctx context.Context) ([]Booking, error) {
	var out []Booking
	if err := c.do(ctx, http.MethodGet, "/v1/my-bookings", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
