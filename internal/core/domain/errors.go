package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrValidation indicates a precondition violation (empty query,
	// non-positive topK, empty embed input). Never retried; surfaced
	// to the caller immediately.
	ErrValidation = errors.New("validation failed")

	// ErrConfiguration indicates a fatal misconfiguration: embedding
	// dimension mismatch, invalid chunk parameters, missing
	// credentials. Never retried.
	ErrConfiguration = errors.New("configuration error")

	// ErrEmbeddingService indicates an upstream embedding failure
	// (rate limit, malformed response). Retriable with backoff; on
	// exhaustion it surfaces as a per-document or per-query failure.
	ErrEmbeddingService = errors.New("embedding service error")

	// ErrIndexWrite indicates a vector index write failure.
	// Retriable for transient causes.
	ErrIndexWrite = errors.New("index write error")

	// ErrIndexRead indicates a vector index read failure.
	// Retriable for transient causes.
	ErrIndexRead = errors.New("index read error")

	// ErrTimeout indicates a blocking external call exceeded its
	// deadline. Retriable a bounded number of times, then surfaced.
	ErrTimeout = errors.New("timeout")

	// ErrSyncInProgress indicates a sync is already running for
	// the source.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrUnsupportedType indicates an unknown connector type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrNotImplemented indicates the connector does not support the
	// requested capability (e.g. watch).
	ErrNotImplemented = errors.New("not implemented")

	// ErrComposerUnavailable indicates no answer composer is
	// configured. Retrieval still works; ask does not.
	ErrComposerUnavailable = errors.New("answer composer unavailable")
)

// Retriable reports whether the error class may be retried with
// backoff. Validation and configuration errors are always terminal.
func Retriable(err error) bool {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration):
		return false
	case errors.Is(err, ErrEmbeddingService),
		errors.Is(err, ErrIndexWrite),
		errors.Is(err, ErrIndexRead),
		errors.Is(err, ErrTimeout):
		return true
	default:
		return false
	}
}

// UpsertError reports a partially failed index write: some records
// were written, the listed IDs were not.
type UpsertError struct {
	// FailedIDs are the record IDs that could not be written.
	FailedIDs []string

	// Err is the first underlying write failure.
	Err error
}

// Error implements the error interface.
func (e *UpsertError) Error() string {
	return fmt.Sprintf("upsert failed for %d record(s) [%s]: %v",
		len(e.FailedIDs), strings.Join(e.FailedIDs, ", "), e.Err)
}

// Unwrap exposes the underlying failure so errors.Is sees ErrIndexWrite.
func (e *UpsertError) Unwrap() error {
	return e.Err
}
