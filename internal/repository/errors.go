package repository

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a lookup resolves no row.
	ErrNotFound = errors.New("not found")
	// ErrEmailExists is returned on unique-email violations.
	ErrEmailExists = errors.New("email already exists")
	// ErrNameExists is returned on unique-name violations (services).
	ErrNameExists = errors.New("name already exists")
)

// dupKey reports whether err is a MySQL duplicate-key violation (1062).
func dupKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
