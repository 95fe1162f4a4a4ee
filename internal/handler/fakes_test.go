package handler

import (
	"context"
	"strings"
	"sync"

	"github.com/estudio-carvalho/booking-api/internal/model"
	"github.com/estudio-carvalho/booking-api/internal/repository"
)

// fakePrincipalStore is an in-memory PrincipalStore mirroring the
// two-table semantics: admins resolve before customers, emails are
// unique per role only.
type fakePrincipalStore struct {
	mu     sync.Mutex
	nextID uint64
	items  []*model.Principal
}

func newFakePrincipalStore() *fakePrincipalStore { return &fakePrincipalStore{} }

func (f *fakePrincipalStore) Create(_ context.Context, role model.Role, fullName, email, passwordHash string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, p := range f.items {
		if p.Role == role && p.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	f.nextID++
	f.items = append(f.items, &model.Principal{
		ID: f.nextID, FullName: fullName, Email: email, PasswordHash: passwordHash, Role: role,
	})
	return f.nextID, nil
}

func (f *fakePrincipalStore) FindByEmail(_ context.Context, email string) (model.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, role := range []model.Role{model.RoleAdmin, model.RoleCustomer} {
		for _, p := range f.items {
			if p.Role == role && p.Email == email {
				return *p, nil
			}
		}
	}
	return model.Principal{}, repository.ErrNotFound
}

func (f *fakePrincipalStore) FindByRoleEmail(_ context.Context, role model.Role, email string) (model.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, p := range f.items {
		if p.Role == role && p.Email == email {
			return *p, nil
		}
	}
	return model.Principal{}, repository.ErrNotFound
}

func (f *fakePrincipalStore) FindByID(_ context.Context, role model.Role, id uint64) (model.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.items {
		if p.Role == role && p.ID == id {
			return *p, nil
		}
	}
	return model.Principal{}, repository.ErrNotFound
}

func (f *fakePrincipalStore) FindByRefreshToken(_ context.Context, token string) (model.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if token == "" {
		return model.Principal{}, repository.ErrNotFound
	}
	for _, role := range []model.Role{model.RoleAdmin, model.RoleCustomer} {
		for _, p := range f.items {
			if p.Role == role && p.RefreshToken == token {
				return *p, nil
			}
		}
	}
	return model.Principal{}, repository.ErrNotFound
}

func (f *fakePrincipalStore) StoreRefreshToken(_ context.Context, role model.Role, id uint64, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.items {
		if p.Role == role && p.ID == id {
			p.RefreshToken = token
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakePrincipalStore) ClearRefreshToken(_ context.Context, role model.Role, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.items {
		if p.Role == role && p.ID == id {
			p.RefreshToken = ""
		}
	}
	return nil
}

func (f *fakePrincipalStore) ListByRole(_ context.Context, role model.Role) ([]model.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Principal
	for _, p := range f.items {
		if p.Role == role {
			c := *p
			c.PasswordHash, c.RefreshToken = "", ""
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakePrincipalStore) CountByRole(_ context.Context, role model.Role) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, p := range f.items {
		if p.Role == role {
			n++
		}
	}
	return n, nil
}

func (f *fakePrincipalStore) Delete(_ context.Context, role model.Role, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.items {
		if p.Role == role && p.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// get returns the stored row so tests can inspect or tamper with it.
func (f *fakePrincipalStore) get(role model.Role, id uint64) *model.Principal {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.items {
		if p.Role == role && p.ID == id {
			return p
		}
	}
	return nil
}

// fakeBookingStore is an in-memory BookingStore.
type fakeBookingStore struct {
	mu     sync.Mutex
	nextID uint64
	items  []model.Booking
}

func newFakeBookingStore() *fakeBookingStore { return &fakeBookingStore{} }

func (f *fakeBookingStore) Create(_ context.Context, b *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	b.ID = f.nextID
	f.items = append(f.items, *b)
	return nil
}

func (f *fakeBookingStore) List(_ context.Context) ([]model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Booking(nil), f.items...), nil
}

func (f *fakeBookingStore) ListByCustomer(_ context.Context, customerID uint64) ([]model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Booking
	for _, b := range f.items {
		if b.CustomerID != nil && *b.CustomerID == customerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookingStore) UpdateStatus(_ context.Context, id uint64, status model.BookingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Status = status
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeBookingStore) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeBookingStore) CountBookings(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.items)), nil
}
