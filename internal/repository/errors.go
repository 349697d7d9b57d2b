package repository

import (
	"errors"
	"fmt"

	"github.com/186mph/calsoft-assets/internal/domain"
)

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

// storeErr wraps a transport/storage failure so callers can match
// domain.ErrBackendUnavailable without losing the driver error.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrBackendUnavailable, err)
}

// checkPartition rejects unknown partitions before any SQL is built.
func checkPartition(p domain.Partition) error {
	if !p.Valid() {
		return fmt.Errorf("unknown partition %q: %w", string(p), domain.ErrNotFound)
	}
	return nil
}

// checkKind rejects unknown report kinds before any SQL is built.
func checkKind(k domain.ReportKind) error {
	if !k.Valid() {
		return fmt.Errorf("unknown report kind %q: %w", string(k), domain.ErrNotFound)
	}
	return nil
}
