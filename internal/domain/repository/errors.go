package repository

import "errors"

// ErrNotFound is returned by repositories when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a conditional write lost against a concurrent change.
var ErrConflict = errors.New("conflict")
