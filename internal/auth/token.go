package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/estudio-carvalho/booking-api/internal/model"
)

// Claims is the payload shared by access and refresh tokens: the
// principal's id and role plus the registered expiry set. The jti is a
// random value so two tokens minted for the same principal within the
// same second still differ.
type Claims struct {
	PrincipalID uint64     `json:"pid"`
	Role        model.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies the two token kinds. Access and refresh
// tokens use independent secrets so a leak of one class does not
// compromise the other; a token signed with one secret never verifies
// under the other. Pure functions over the secrets, no I/O.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenService builds a TokenService from the configured secrets and
// lifetimes (access in minutes, refresh in days).
func NewTokenService(accessSecret, refreshSecret string, accessTTLMin, refreshTTLDays int) *TokenService {
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     time.Duration(accessTTLMin) * time.Minute,
		refreshTTL:    time.Duration(refreshTTLDays) * 24 * time.Hour,
	}
}

// IssueAccess signs a short-lived access token for the principal.
func (s *TokenService) IssueAccess(id uint64, role model.Role) (string, time.Time, error) {
	return issue(id, role, s.accessTTL, s.accessSecret)
}

// IssueRefresh signs a long-lived refresh token for the principal.
func (s *TokenService) IssueRefresh(id uint64, role model.Role) (string, time.Time, error) {
	return issue(id, role, s.refreshTTL, s.refreshSecret)
}

// VerifyAccess validates an access token and returns its claims. The only
// failure modes are ErrTokenExpired and ErrTokenInvalid.
func (s *TokenService) VerifyAccess(token string) (*Claims, error) {
	return verify(token, s.accessSecret)
}

// VerifyRefresh validates a refresh token and returns its claims.
func (s *TokenService) VerifyRefresh(token string) (*Claims, error) {
	return verify(token, s.refreshSecret)
}

func issue(id uint64, role model.Role, ttl time.Duration, secret []byte) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	jti, err := randomHex(8)
	if err != nil {
		return "", time.Time{}, err
	}
	claims := &Claims{
		PrincipalID: id,
		Role:        role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func verify(token string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !tok.Valid || !claims.Role.Valid() {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// randomHex returns n bytes of secure randomness, hex encoded.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
