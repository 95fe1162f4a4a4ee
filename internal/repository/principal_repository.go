package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/estudio-carvalho/booking-api/internal/model"
)

// PrincipalRepo reads and writes the two principal tables. The role
// passed in (or attached to a result) decides which table a statement
// touches; the row itself carries no role column.
type PrincipalRepo struct{ DB *sql.DB }

func NewPrincipalRepo(db *sql.DB) *PrincipalRepo { return &PrincipalRepo{DB: db} }

const principalCols = "id, full_name, email, password_hash, COALESCE(refresh_token,''), created_at, updated_at"

func tableFor(role model.Role) string {
	if role == model.RoleAdmin {
		return "admins"
	}
	return "customers"
}

// Create inserts a principal into the table for the role and returns its id.
func (r *PrincipalRepo) Create(ctx context.Context, role model.Role, fullName, email, passwordHash string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO "+tableFor(role)+" (full_name, email, password_hash) VALUES (?,?,?)",
		fullName, email, passwordHash)
	if err != nil {
		if dupKey(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// FindByEmail resolves a principal by normalized email, admins first and
// customers second. The ordering is a documented historical quirk of the
// unified login: an email present in both tables always resolves to the
// admin account.
func (r *PrincipalRepo) FindByEmail(ctx context.Context, email string) (model.Principal, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, role := range []model.Role{model.RoleAdmin, model.RoleCustomer} {
		p, err := r.scanOne(ctx, role, "email=?", email)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return model.Principal{}, err
		}
	}
	return model.Principal{}, ErrNotFound
}

// FindByRoleEmail resolves a principal by email within a single table.
func (r *PrincipalRepo) FindByRoleEmail(ctx context.Context, role model.Role, email string) (model.Principal, error) {
	return r.scanOne(ctx, role, "email=?", strings.ToLower(strings.TrimSpace(email)))
}

// FindByID fetches a principal by id from the table the role names.
func (r *PrincipalRepo) FindByID(ctx context.Context, role model.Role, id uint64) (model.Principal, error) {
	return r.scanOne(ctx, role, "id=?", id)
}

// FindByRefreshToken resolves a principal by exact stored refresh token
// value, admins first and customers second. No match means the session
// was revoked or never existed.
func (r *PrincipalRepo) FindByRefreshToken(ctx context.Context, token string) (model.Principal, error) {
	if token == "" {
		return model.Principal{}, ErrNotFound
	}
	for _, role := range []model.Role{model.RoleAdmin, model.RoleCustomer} {
		p, err := r.scanOne(ctx, role, "refresh_token=?", token)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return model.Principal{}, err
		}
	}
	return model.Principal{}, ErrNotFound
}

// StoreRefreshToken overwrites the principal's stored refresh token.
// This is the rotation boundary: whatever token was there before stops
// matching lookups the moment this commits.
func (r *PrincipalRepo) StoreRefreshToken(ctx context.Context, role model.Role, id uint64, token string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE "+tableFor(role)+" SET refresh_token=? WHERE id=?", token, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Zero can also mean "same value written twice"; confirm the row exists.
		if _, err := r.FindByID(ctx, role, id); err != nil {
			return err
		}
	}
	return nil
}

// ClearRefreshToken removes the stored refresh token, closing the session
// server-side regardless of the cookie's own expiry.
func (r *PrincipalRepo) ClearRefreshToken(ctx context.Context, role model.Role, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE "+tableFor(role)+" SET refresh_token=NULL WHERE id=?", id)
	return err
}

// ListByRole returns all principals of one role, newest first, with the
// credential fields blanked.
func (r *PrincipalRepo) ListByRole(ctx context.Context, role model.Role) ([]model.Principal, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, full_name, email, created_at, updated_at FROM "+tableFor(role)+" ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Principal
	for rows.Next() {
		p := model.Principal{Role: role}
		if err := rows.Scan(&p.ID, &p.FullName, &p.Email, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CountByRole returns the number of principals in the role's table.
func (r *PrincipalRepo) CountByRole(ctx context.Context, role model.Role) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+tableFor(role)).Scan(&n)
	return n, err
}

// Delete removes a principal. ErrNotFound when no row matched.
func (r *PrincipalRepo) Delete(ctx context.Context, role model.Role, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM "+tableFor(role)+" WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PrincipalRepo) scanOne(ctx context.Context, role model.Role, where string, arg any) (model.Principal, error) {
	p := model.Principal{Role: role}
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+principalCols+" FROM "+tableFor(role)+" WHERE "+where+" LIMIT 1", arg).
		Scan(&p.ID, &p.FullName, &p.Email, &p.PasswordHash, &p.RefreshToken, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Principal{}, ErrNotFound
	}
	if err != nil {
		return model.Principal{}, err
	}
	return p, nil
}
