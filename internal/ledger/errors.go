package ledger

import "errors"

// Errors returned by ledger operations. A failed operation leaves the ledger unchanged.
var (
	// ErrDuplicateKey is returned when creating a subject or topic that already exists.
	ErrDuplicateKey = errors.New("already exists")

	// ErrNotFound is returned when a subject or topic does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned for blank names and malformed correct/total values.
	ErrInvalidInput = errors.New("invalid input")
)
