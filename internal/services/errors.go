package services

import "errors"

// Dashboard service errors. Handlers map them to Problem Details.
var (
	ErrTableNotFound = errors.New("table not found")
	ErrTableReadOnly = errors.New("table is derived and cannot be saved")
	ErrInvalidTable  = errors.New("invalid table")
	ErrSaveFailed    = errors.New("save failed")
)
