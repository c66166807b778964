// Package repository provides data access against the hosted data service.
package repository

import "errors"

// ErrDuplicate is returned when an insert hits a uniqueness constraint.
// Reaction toggles treat it as "already present" rather than a failure.
var ErrDuplicate = errors.New("duplicate row")
