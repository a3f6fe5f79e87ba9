package errors

import "errors"

var (
	ErrNotFound = errors.New("availability not found")
)
