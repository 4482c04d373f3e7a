package database

import "errors"

// ErrValueNotFound is returned when a content-map key has no entry.
var ErrValueNotFound = errors.New("value not found")

// ErrListNotFound is returned when an operation targets a list key that
// does not currently exist.
var ErrListNotFound = errors.New("list not found")
