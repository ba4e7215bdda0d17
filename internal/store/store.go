// Package store implements PostgreSQL persistence for the scheduling core.
// Repositories are thin: one struct per aggregate over a shared pgx pool,
// with conditional writes doing the concurrency-sensitive work in SQL.
package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a write violates a uniqueness constraint,
	// e.g. two non-cancelled appointments on the same psychologist-instant.
	ErrConflict = errors.New("conflicting record exists")
)

// IsNotFound reports whether err is a missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether err is a uniqueness conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// isUniqueViolation detects a PostgreSQL unique_violation (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
