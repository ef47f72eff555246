package catalog

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from
// callers.
var (
	ErrLoadCatalog     = errors.New("load catalog failed")
	ErrInvalidExercise = errors.New("invalid exercise config")
	ErrInvalidDisease  = errors.New("invalid disease definition")
	ErrUnknownExercise = errors.New("unknown exercise id")
)
