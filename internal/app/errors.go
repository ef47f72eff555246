package service

import "errors"

// Sentinel kinds for request validation errors.
var (
	ErrMissingUser = errors.New("missing user id")
)
