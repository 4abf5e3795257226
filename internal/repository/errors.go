package repository

import "errors"

// Repository errors. Store failures with no kind below propagate unchanged,
// wrapped as storage.ErrUnavailable by the adapter; the engine never retries.
var (
	// ErrNotFound is returned when a document is absent or an owner-scoped
	// filter excludes it. Callers cannot distinguish the two cases.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidFilter is returned when a filter carries an unknown
	// comparator.
	ErrInvalidFilter = errors.New("invalid filter")

	// ErrDuplicateKey surfaces a store-level uniqueness violation verbatim.
	ErrDuplicateKey = errors.New("document already exists")
)
