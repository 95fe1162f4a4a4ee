package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estudio-carvalho/booking-api/internal/auth"
	"github.com/estudio-carvalho/booking-api/internal/model"
)

func probeHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"id":   c.Get(CtxPrincipalID),
		"role": c.Get(CtxRole),
	})
}

func runRequest(t *testing.T, mw echo.MiddlewareFunc, header string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := mw(probeHandler)(c)
	require.NoError(t, err)
	return rec
}

func TestAuth(t *testing.T) {
	tokens := auth.NewTokenService("acc", "ref", 15, 7)
	mw := Auth(tokens)

	valid, _, err := tokens.IssueAccess(9, model.RoleAdmin)
	require.NoError(t, err)
	refresh, _, err := tokens.IssueRefresh(9, model.RoleAdmin)
	require.NoError(t, err)
	expired, _, err := auth.NewTokenService("acc", "ref", -1, -1).IssueAccess(9, model.RoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "valid token", header: "Bearer " + valid, wantStatus: http.StatusOK},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "expired token", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized},
		{name: "refresh token rejected as access", header: "Bearer " + refresh, wantStatus: http.StatusUnauthorized},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := runRequest(t, mw, test.header)
			assert.Equal(t, test.wantStatus, rec.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	tokens := auth.NewTokenService("acc", "ref", 15, 7)

	adminTok, _, err := tokens.IssueAccess(1, model.RoleAdmin)
	require.NoError(t, err)
	customerTok, _, err := tokens.IssueAccess(2, model.RoleCustomer)
	require.NoError(t, err)

	adminOnly := func(next echo.HandlerFunc) echo.HandlerFunc {
		return Auth(tokens)(RequireRole(model.RoleAdmin)(next))
	}

	rec := runRequest(t, adminOnly, "Bearer "+adminTok)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = runRequest(t, adminOnly, "Bearer "+customerTok)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
