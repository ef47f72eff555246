package tracker

import "errors"

// Sentinel kinds for session lifecycle errors.
var (
	ErrDuplicateSession = errors.New("session id already active")
)
