package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/estudio-carvalho/booking-api/internal/model"
)

// BookingRepo persists bookings and their service-name rows.
type BookingRepo struct{ DB *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{DB: db} }

const bookingCols = `id, full_name, email, phone, car, license_plate, booked_for,
	addr_cep, addr_street, addr_number, addr_complement, addr_neighborhood, addr_city,
	needs_pickup, status, customer_id, created_at, updated_at`

// Create inserts the booking and its service names in one transaction and
// fills in the generated id.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `INSERT INTO bookings
		(full_name, email, phone, car, license_plate, booked_for,
		 addr_cep, addr_street, addr_number, addr_complement, addr_neighborhood, addr_city,
		 needs_pickup, status, customer_id)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		b.FullName, b.Email, b.Phone, b.Car, b.LicensePlate, b.Date,
		b.Address.CEP, b.Address.Street, b.Address.Number, b.Address.Complement,
		b.Address.Neighborhood, b.Address.City,
		b.NeedsPickup, b.Status, b.CustomerID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)

	for _, name := range b.Services {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO booking_services (booking_id, service_name) VALUES (?,?)",
			b.ID, name); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// List returns all bookings, newest first, with services attached.
func (r *BookingRepo) List(ctx context.Context) ([]model.Booking, error) {
	return r.list(ctx, "", nil)
}

// ListByCustomer returns the bookings linked to one customer account.
func (r *BookingRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]model.Booking, error) {
	return r.list(ctx, "WHERE customer_id=?", []any{customerID})
}

// GetByID fetches a single booking with its services.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	items, err := r.list(ctx, "WHERE id=?", []any{id})
	if err != nil {
		return model.Booking{}, err
	}
	if len(items) == 0 {
		return model.Booking{}, ErrNotFound
	}
	return items[0], nil
}

// UpdateStatus moves a booking to a new shop status.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, status model.BookingStatus) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE bookings SET status=? WHERE id=?", status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Same-status writes also affect zero rows; check existence.
		var one int
		err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM bookings WHERE id=?", id).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Delete removes a booking (service rows cascade).
func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM bookings WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountBookings returns the total number of bookings.
func (r *BookingRepo) CountBookings(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM bookings").Scan(&n)
	return n, err
}

// RevenueDeliveredCents sums the current catalog price of every service
// on delivered bookings. Service rows whose name no longer exists in the
// catalog contribute nothing, mirroring the join semantics the reporting
// screen always had.
func (r *BookingRepo) RevenueDeliveredCents(ctx context.Context) (int64, error) {
	var cents int64
	err := r.DB.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(s.price_cents), 0)
		FROM bookings b
		JOIN booking_services bs ON bs.booking_id = b.id
		JOIN services s ON s.name = bs.service_name
		WHERE b.status = 'delivered'`).Scan(&cents)
	return cents, err
}

func (r *BookingRepo) list(ctx context.Context, where string, args []any) ([]model.Booking, error) {
	q := "SELECT " + bookingCols + " FROM bookings " + where + " ORDER BY created_at DESC"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Booking
	index := map[uint64]int{}
	for rows.Next() {
		var b model.Booking
		var customerID sql.NullInt64
		if err := rows.Scan(&b.ID, &b.FullName, &b.Email, &b.Phone, &b.Car, &b.LicensePlate, &b.Date,
			&b.Address.CEP, &b.Address.Street, &b.Address.Number, &b.Address.Complement,
			&b.Address.Neighborhood, &b.Address.City,
			&b.NeedsPickup, &b.Status, &customerID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		if customerID.Valid {
			id := uint64(customerID.Int64)
			b.CustomerID = &id
		}
		index[b.ID] = len(out)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}
	return out, r.attachServices(ctx, out, index)
}

func (r *BookingRepo) attachServices(ctx context.Context, bookings []model.Booking, index map[uint64]int) error {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT booking_id, service_name FROM booking_services ORDER BY service_name")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id uint64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return err
		}
		if i, ok := index[id]; ok {
			bookings[i].Services = append(bookings[i].Services, name)
		}
	}
	return rows.Err()
}
