package domain

import "errors"

// Sentinel errors shared by usecases and repositories. Callers classify
// failures with errors.Is; transport adapters map them to status codes.
// Wrapping preserves the kind, so a NotFound raised inside a transaction
// is still a NotFound after the rollback.
var (
	ErrNotFound     = errors.New("entity not found")
	ErrForbidden    = errors.New("action forbidden")
	ErrUnauthorized = errors.New("authentication required")
	ErrInvalidInput = errors.New("invalid input data")
	ErrConflict     = errors.New("operation conflicts with current state")
	ErrRepository   = errors.New("repository failure")
)
