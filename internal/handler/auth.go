package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/estudio-carvalho/booking-api/internal/audit"
	"github.com/estudio-carvalho/booking-api/internal/auth"
	"github.com/estudio-carvalho/booking-api/internal/config"
	"github.com/estudio-carvalho/booking-api/internal/model"
	"github.com/estudio-carvalho/booking-api/internal/repository"
)

// refreshCookieName is the cookie carrying the refresh token. Its path
// is scoped to the auth group so the browser only attaches it where the
// server can use it.
const (
	refreshCookieName = "refresh_token"
	refreshCookiePath = "/v1/auth"

	dbTimeout = 5 * time.Second
)

// PrincipalStore is the slice of the principal repository the auth
// endpoints need.
type PrincipalStore interface {
	Create(ctx context.Context, role model.Role, fullName, email, passwordHash string) (uint64, error)
	FindByEmail(ctx context.Context, email string) (model.Principal, error)
	FindByRoleEmail(ctx context.Context, role model.Role, email string) (model.Principal, error)
	FindByID(ctx context.Context, role model.Role, id uint64) (model.Principal, error)
	FindByRefreshToken(ctx context.Context, token string) (model.Principal, error)
	StoreRefreshToken(ctx context.Context, role model.Role, id uint64, token string) error
	ClearRefreshToken(ctx context.Context, role model.Role, id uint64) error
	ListByRole(ctx context.Context, role model.Role) ([]model.Principal, error)
	Delete(ctx context.Context, role model.Role, id uint64) error
}

// AuthHandler bundles dependencies for the unified auth endpoints. The
// same login route serves admins and customers; the resolved role rides
// along in the tokens and in every response.
type AuthHandler struct {
	Cfg        config.Config
	Tokens     *auth.TokenService
	Principals PrincipalStore
	Audit      *audit.Logger
}

func NewAuthHandler(cfg config.Config, tokens *auth.TokenService, principals PrincipalStore, aud *audit.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Tokens: tokens, Principals: principals, Audit: aud}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerReq struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	// UserType picks the role; empty means customer.
	UserType model.Role `json:"userType"`
}

type authResp struct {
	User        model.Summary `json:"user"`
	AccessToken string        `json:"accessToken"`
}


// Login authenticates either an admin or a customer. The email is
// resolved admins-first; an email present in both tables always logs in
// as the admin account.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "email and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	// Unknown email and wrong password answer with the same message so
	// the endpoint cannot be used to enumerate accounts.
	p, err := h.Principals.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.Audit.LoginAttempt(req.Email, false, c.RealIP(), c.Request().UserAgent(), "user_not_found")
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": auth.ErrInvalidCredentials.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "login failed"})
	}
	if !auth.VerifyPassword(p.PasswordHash, req.Password) {
		h.Audit.LoginAttempt(req.Email, false, c.RealIP(), c.Request().UserAgent(), "invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": auth.ErrInvalidCredentials.Error()})
	}

	access, _, err := h.Tokens.IssueAccess(p.ID, p.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "issue access failed"})
	}
	refresh, refreshExp, err := h.Tokens.IssueRefresh(p.ID, p.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "issue refresh failed"})
	}
	if err := h.Principals.StoreRefreshToken(ctx, p.Role, p.ID, refresh); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "save session failed"})
	}

	h.setRefreshCookie(c, refresh, refreshExp)
	h.Audit.LoginAttempt(req.Email, true, c.RealIP(), c.Request().UserAgent(), "")
	return c.JSON(http.StatusOK, authResp{User: p.ToSummary(), AccessToken: access})
}

// Refresh exchanges the refresh cookie for a new access token. The
// cookie value is looked up verbatim against the stored sessions, then
// cryptographically verified; the refresh token itself is not rotated.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var cookieValue string
	if cookie, err := c.Cookie(refreshCookieName); err == nil {
		cookieValue = cookie.Value
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := h.resolveSession(ctx, cookieValue)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrNoSession):
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "no active session"})
	case errors.Is(err, auth.ErrSessionRevoked):
		h.Audit.SessionRevoked(c.RealIP(), c.Request().UserAgent())
		h.clearRefreshCookie(c)
		return c.JSON(http.StatusForbidden, echo.Map{"message": "session revoked"})
	case errors.Is(err, auth.ErrSessionExpired):
		h.clearRefreshCookie(c)
		return c.JSON(http.StatusForbidden, echo.Map{"message": "session expired"})
	case errors.Is(err, auth.ErrSessionInconsistent):
		h.clearRefreshCookie(c)
		return c.JSON(http.StatusForbidden, echo.Map{"message": "session invalid"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "refresh failed"})
	}

	access, _, err := h.Tokens.IssueAccess(p.ID, p.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "issue access failed"})
	}
	return c.JSON(http.StatusOK, authResp{User: p.ToSummary(), AccessToken: access})
}

// resolveSession classifies a refresh attempt: exact-value lookup
// first, signature second, then the cross-check that the signed payload
// identifies the principal the stored value resolved to.
func (h *AuthHandler) resolveSession(ctx context.Context, cookieValue string) (model.Principal, error) {
	if cookieValue == "" {
		return model.Principal{}, auth.ErrNoSession
	}
	p, err := h.Principals.FindByRefreshToken(ctx, cookieValue)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Principal{}, auth.ErrSessionRevoked
	}
	if err != nil {
		return model.Principal{}, err
	}
	claims, err := h.Tokens.VerifyRefresh(cookieValue)
	if err != nil {
		return model.Principal{}, auth.ErrSessionExpired
	}
	if claims.PrincipalID != p.ID || claims.Role != p.Role {
		return model.Principal{}, auth.ErrSessionInconsistent
	}
	return p, nil
}

// Logout closes the session server-side and clears the cookie. It is
// idempotent: logging out without a session is still a 204.
func (h *AuthHandler) Logout(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookieName)
	if err == nil && cookie.Value != "" {
		ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
		defer cancel()
		if p, err := h.Principals.FindByRefreshToken(ctx, cookie.Value); err == nil {
			_ = h.Principals.ClearRefreshToken(ctx, p.Role, p.ID)
		}
	}
	h.clearRefreshCookie(c)
	return c.NoContent(http.StatusNoContent)
}

// VerifyToken checks the bearer access token and returns the account it
// belongs to. 401 when the header is missing, 403 when the token cannot
// be accepted, 404 when the account behind a valid token is gone.
func (h *AuthHandler) VerifyToken(c echo.Context) error {
	header := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "missing bearer token"})
	}
	claims, err := h.Tokens.VerifyAccess(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "invalid or expired token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := h.Principals.FindByID(ctx, claims.Role, claims.PrincipalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Structurally valid token, account gone.
			return c.JSON(http.StatusNotFound, echo.Map{"message": auth.ErrPrincipalNotFound.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "verify failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": p.ToSummary()})
}

// Register creates an account in the requested role, customer by
// default. The duplicate check is per role: an email taken on the admin
// side is still free on the customer side. No session is opened; the
// account logs in afterwards.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.FullName == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "fullName, email and password are required"})
	}
	role := req.UserType
	if role == "" {
		role = model.RoleCustomer
	}
	if !role.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid userType"})
	}

	hash, err := auth.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "register failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id, err := h.Principals.Create(ctx, role, req.FullName, req.Email, hash)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"message": "email already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "register failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"userId": id,
		"user":   model.Summary{ID: id, FullName: req.FullName, Email: req.Email, UserType: role},
	})
}

func (h *AuthHandler) setRefreshCookie(c echo.Context, token string, expires time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     refreshCookiePath,
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.Cfg.Production(),
	})
}

func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.Cfg.Production(),
	})
}
