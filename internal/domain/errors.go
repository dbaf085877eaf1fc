package domain

import "errors"

var (
	// ErrInvalidQuery signals a query that fails validation before any external call.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrProfileNotFound signals a missing profile record.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrNotIndexable signals a profile whose normalized text is empty.
	ErrNotIndexable = errors.New("profile not indexable")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingFailed signals an embedding provider failure.
	ErrEmbeddingFailed = errors.New("embedding generation failed")
	// ErrCompletionFailed signals a completion provider failure.
	ErrCompletionFailed = errors.New("completion failed")
	// ErrSearchUnavailable wraps unexpected failures of a mandatory search stage.
	ErrSearchUnavailable = errors.New("search unavailable")
)
