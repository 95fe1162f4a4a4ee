package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/estudio-carvalho/booking-api/internal/model"
)

// ServiceRepo persists the detailing catalog.
type ServiceRepo struct{ DB *sql.DB }

func NewServiceRepo(db *sql.DB) *ServiceRepo { return &ServiceRepo{DB: db} }

const serviceCols = "id, name, description, price_cents, duration_min, is_active, created_at, updated_at"

// ListActive returns the services shown on the public site.
func (r *ServiceRepo) ListActive(ctx context.Context) ([]model.Service, error) {
	return r.list(ctx, "WHERE is_active=1")
}

// List returns the whole catalog, inactive entries included.
func (r *ServiceRepo) List(ctx context.Context) ([]model.Service, error) {
	return r.list(ctx, "")
}

// Create inserts a catalog entry and fills in the generated id.
func (r *ServiceRepo) Create(ctx context.Context, s *model.Service) error {
	s.Name = strings.TrimSpace(s.Name)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO services (name, description, price_cents, duration_min, is_active) VALUES (?,?,?,?,?)",
		s.Name, s.Description, s.PriceCents, s.DurationMin, s.IsActive)
	if err != nil {
		if dupKey(err) {
			return ErrNameExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// Update rewrites every mutable field of a catalog entry.
func (r *ServiceRepo) Update(ctx context.Context, s model.Service) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE services SET name=?, description=?, price_cents=?, duration_min=?, is_active=? WHERE id=?",
		strings.TrimSpace(s.Name), s.Description, s.PriceCents, s.DurationMin, s.IsActive, s.ID)
	if err != nil {
		if dupKey(err) {
			return ErrNameExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, s.ID); err != nil {
			return err
		}
	}
	return nil
}

// GetByID fetches one catalog entry.
func (r *ServiceRepo) GetByID(ctx context.Context, id uint64) (model.Service, error) {
	var s model.Service
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+serviceCols+" FROM services WHERE id=? LIMIT 1", id).
		Scan(&s.ID, &s.Name, &s.Description, &s.PriceCents, &s.DurationMin, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Service{}, ErrNotFound
	}
	return s, err
}

// Delete removes a catalog entry.
func (r *ServiceRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM services WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ServiceRepo) list(ctx context.Context, where string) ([]model.Service, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+serviceCols+" FROM services "+where+" ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Service
	for rows.Next() {
		var s model.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.PriceCents, &s.DurationMin, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
