// Package repository defines error types that are reused across the
// repositories. These sentinel values allow the service layer to tell a
// missing record apart from an infrastructure failure without depending on
// database/sql or driver error types.
package repository

import "errors"

// ErrNotFound is returned when no row matches the lookup. Services translate
// it into the matching domain error (e.g. user not found).
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an insert or update would violate the
// unique email constraint. The store enforces this atomically, so it also
// catches two registrations racing for the same address.
var ErrEmailExists = errors.New("email already exists")
