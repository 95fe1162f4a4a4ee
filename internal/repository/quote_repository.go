package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/estudio-carvalho/booking-api/internal/model"
)

// QuoteRepo persists quotes and their line items. Quote numbers are
// sequential per all-time insert order ("ORC-<year>-<n>"); the sequence is
// derived from the latest issued number inside the insert transaction so
// concurrent creates cannot collide.
type QuoteRepo struct{ DB *sql.DB }

func NewQuoteRepo(db *sql.DB) *QuoteRepo { return &QuoteRepo{DB: db} }

const quoteCols = "id, quote_number, customer_name, customer_email, customer_phone, total_cents, status, created_at, updated_at"

// Create inserts a quote with its items, assigning the next quote number
// and filling in the generated id.
func (r *QuoteRepo) Create(ctx context.Context, q *model.Quote) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var last string
	err = tx.QueryRowContext(ctx,
		"SELECT quote_number FROM quotes ORDER BY id DESC LIMIT 1 FOR UPDATE").Scan(&last)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	q.Number = nextQuoteNumber(last, time.Now().UTC().Year())

	res, err := tx.ExecContext(ctx,
		"INSERT INTO quotes (quote_number, customer_name, customer_email, customer_phone, total_cents, status) VALUES (?,?,?,?,?,?)",
		q.Number, q.CustomerName, q.CustomerEmail, q.CustomerPhone, q.TotalCents, q.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	q.ID = uint64(id)

	for _, item := range q.Services {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO quote_services (quote_id, name, price_cents) VALUES (?,?,?)",
			q.ID, item.Name, item.PriceCents); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// List returns all quotes, newest first, items attached.
func (r *QuoteRepo) List(ctx context.Context) ([]model.Quote, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+quoteCols+" FROM quotes ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Quote
	index := map[uint64]int{}
	for rows.Next() {
		var q model.Quote
		if err := rows.Scan(&q.ID, &q.Number, &q.CustomerName, &q.CustomerEmail, &q.CustomerPhone,
			&q.TotalCents, &q.Status, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		index[q.ID] = len(out)
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	itemRows, err := r.DB.QueryContext(ctx, "SELECT quote_id, name, price_cents FROM quote_services")
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var id uint64
		var item model.QuoteService
		if err := itemRows.Scan(&id, &item.Name, &item.PriceCents); err != nil {
			return nil, err
		}
		if i, ok := index[id]; ok {
			out[i].Services = append(out[i].Services, item)
		}
	}
	return out, itemRows.Err()
}

// GetByID fetches one quote with its items.
func (r *QuoteRepo) GetByID(ctx context.Context, id uint64) (model.Quote, error) {
	var q model.Quote
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+quoteCols+" FROM quotes WHERE id=? LIMIT 1", id).
		Scan(&q.ID, &q.Number, &q.CustomerName, &q.CustomerEmail, &q.CustomerPhone,
			&q.TotalCents, &q.Status, &q.CreatedAt, &q.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Quote{}, ErrNotFound
	}
	if err != nil {
		return model.Quote{}, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT name, price_cents FROM quote_services WHERE quote_id=?", id)
	if err != nil {
		return model.Quote{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var item model.QuoteService
		if err := rows.Scan(&item.Name, &item.PriceCents); err != nil {
			return model.Quote{}, err
		}
		q.Services = append(q.Services, item)
	}
	return q, rows.Err()
}

// UpdateStatus moves a quote to a new approval state.
func (r *QuoteRepo) UpdateStatus(ctx context.Context, id uint64, status model.QuoteStatus) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE quotes SET status=? WHERE id=?", status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM quotes WHERE id=?", id).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Delete removes a quote (items cascade).
func (r *QuoteRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM quotes WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// nextQuoteNumber parses the trailing sequence of the latest number and
// increments it. The year in the label is informational; the sequence
// never resets, which keeps numbers unique across year boundaries.
func nextQuoteNumber(last string, year int) string {
	next := 1
	if parts := strings.Split(last, "-"); len(parts) == 3 {
		if n, err := strconv.Atoi(parts[2]); err == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("ORC-%d-%04d", year, next)
}
