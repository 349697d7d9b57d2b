package domain

import "errors"

// Error taxonomy for the catalog engine. Mutating operations surface
// these directly; best-effort listings (search, status projection)
// recover locally instead.
var (
	// ErrNotFound the referenced job/asset/report does not exist or is
	// soft-deleted.
	ErrNotFound = errors.New("record not found")

	// ErrPartitionMismatch the target job lives in a different partition
	// than the source record. Assets never silently migrate partitions.
	ErrPartitionMismatch = errors.New("partition mismatch")

	// ErrIdentityConflict an issuance race persisted beyond the retry
	// budget. Retryable, distinct from a hard failure.
	ErrIdentityConflict = errors.New("identity issuance conflict")

	// ErrEmptySourcePayload clone-for-retest refused because the source
	// report had no real data to copy.
	ErrEmptySourcePayload = errors.New("source report has no data to copy")

	// ErrBackendUnavailable the record store call failed at the
	// transport/storage layer. Never translated into a false not-found.
	ErrBackendUnavailable = errors.New("record store unavailable")
)
