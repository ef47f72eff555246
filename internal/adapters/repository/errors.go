package repository

import "errors"

// Sentinel kinds for storage errors.
var (
	ErrEncode = errors.New("encode snapshot failed")
	ErrSave   = errors.New("save snapshot failed")
)
