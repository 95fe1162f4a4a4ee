package auth

import (
	"errors"
	"testing"

	"github.com/estudio-carvalho/booking-api/internal/model"
)

func newTestTokenService() *TokenService {
	return NewTokenService("test-access-secret", "test-refresh-secret", 15, 7)
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	tests := []struct {
		name string
		id   uint64
		role model.Role
	}{
		{name: "admin access", id: 1, role: model.RoleAdmin},
		{name: "customer access", id: 42, role: model.RoleCustomer},
	}

	s := newTestTokenService()
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tok, exp, err := s.IssueAccess(test.id, test.role)
			if err != nil {
				t.Fatalf("IssueAccess() error = %v", err)
			}
			if tok == "" {
				t.Fatal("IssueAccess() returned empty token")
			}
			if exp.IsZero() {
				t.Fatal("IssueAccess() returned zero expiry")
			}
			claims, err := s.VerifyAccess(tok)
			if err != nil {
				t.Fatalf("VerifyAccess() error = %v", err)
			}
			if claims.PrincipalID != test.id {
				t.Errorf("PrincipalID = %d, want %d", claims.PrincipalID, test.id)
			}
			if claims.Role != test.role {
				t.Errorf("Role = %q, want %q", claims.Role, test.role)
			}
		})
	}
}

func TestTokenService_SecretsAreIndependent(t *testing.T) {
	s := newTestTokenService()

	access, _, err := s.IssueAccess(7, model.RoleAdmin)
	if err != nil {
		t.Fatalf("IssueAccess() error = %v", err)
	}
	refresh, _, err := s.IssueRefresh(7, model.RoleAdmin)
	if err != nil {
		t.Fatalf("IssueRefresh() error = %v", err)
	}

	if _, err := s.VerifyRefresh(access); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("VerifyRefresh(access token) error = %v, want ErrTokenInvalid", err)
	}
	if _, err := s.VerifyAccess(refresh); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("VerifyAccess(refresh token) error = %v, want ErrTokenInvalid", err)
	}
}

func TestTokenService_Expired(t *testing.T) {
	// Negative TTLs put the expiry in the past at issue time.
	s := NewTokenService("a", "r", -1, -1)

	tok, _, err := s.IssueAccess(1, model.RoleCustomer)
	if err != nil {
		t.Fatalf("IssueAccess() error = %v", err)
	}
	if _, err := s.VerifyAccess(tok); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("VerifyAccess(expired) error = %v, want ErrTokenExpired", err)
	}

	ref, _, err := s.IssueRefresh(1, model.RoleCustomer)
	if err != nil {
		t.Fatalf("IssueRefresh() error = %v", err)
	}
	if _, err := s.VerifyRefresh(ref); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("VerifyRefresh(expired) error = %v, want ErrTokenExpired", err)
	}
}

func TestTokenService_GarbageRejected(t *testing.T) {
	s := newTestTokenService()
	for _, tok := range []string{"", "not-a-jwt", "aaaa.bbbb.cccc"} {
		if _, err := s.VerifyAccess(tok); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("VerifyAccess(%q) error = %v, want ErrTokenInvalid", tok, err)
		}
	}
}

func TestTokenService_TokensAreUnique(t *testing.T) {
	// Two tokens for the same principal in the same second must still
	// differ; the refresh handshake relies on each call minting a fresh
	// access token value.
	s := newTestTokenService()
	a, _, err := s.IssueAccess(5, model.RoleAdmin)
	if err != nil {
		t.Fatalf("IssueAccess() error = %v", err)
	}
	b, _, err := s.IssueAccess(5, model.RoleAdmin)
	if err != nil {
		t.Fatalf("IssueAccess() error = %v", err)
	}
	if a == b {
		t.Error("two access tokens for the same principal are identical")
	}
}
