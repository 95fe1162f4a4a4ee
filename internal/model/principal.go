package model

import "time"

// Role classifies a principal as back-office staff or a customer. It is
// fixed at creation and carried explicitly on every lookup result; callers
// must never infer it from which table a row happened to come from.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool { return r == RoleAdmin || r == RoleCustomer }

// Principal is an authenticatable account. Admins live in the `admins`
// table and customers in `customers`; both share the same column set.
// RefreshToken holds the one currently-valid refresh token verbatim, or
// the empty string when no refresh is possible for this account.
type Principal struct {
	ID           uint64
	FullName     string
	Email        string
	PasswordHash string
	RefreshToken string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Summary is the outward-facing projection of a principal. The password
// hash and the stored refresh token never leave the server.
type Summary struct {
	ID       uint64 `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	UserType Role   `json:"userType"`
}

// ToSummary strips the credential fields.
func (p Principal) ToSummary() Summary {
	return Summary{ID: p.ID, FullName: p.FullName, Email: p.Email, UserType: p.Role}
}
