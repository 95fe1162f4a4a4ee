package auth

import "errors"

// Failure taxonomy for the unified auth flow. Handlers translate these
// into HTTP statuses at the endpoint boundary; none of them should escape
// it.
var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	// The caller-facing message is identical for the two cases so the API
	// cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrNoSession means a refresh was attempted without a cookie.
	ErrNoSession = errors.New("no session")

	// ErrSessionRevoked means the cookie value matches no stored refresh
	// token: logged out elsewhere, rotated away, or the account is gone.
	ErrSessionRevoked = errors.New("session revoked")

	// ErrSessionExpired means the cookie matched a stored value but the
	// token itself failed signature or expiry verification.
	ErrSessionExpired = errors.New("session expired")

	// ErrSessionInconsistent means the verified payload does not identify
	// the principal the stored value resolved to.
	ErrSessionInconsistent = errors.New("session principal mismatch")

	// ErrTokenExpired and ErrTokenInvalid are the two verification
	// outcomes for a token that cannot be accepted.
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")

	// ErrPrincipalNotFound means a structurally valid access token points
	// at an account that no longer exists.
	ErrPrincipalNotFound = errors.New("principal not found")
)
