package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist for the user
var ErrNotFound = errors.New("not found")
