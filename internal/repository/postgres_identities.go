package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// uniqueViolation PostgreSQL error code for unique constraint hits.
const uniqueViolation = "23505"

// PostgresIdentitiesRepository identity sequence repository. Sequences
// live in public.asset_identities, keyed (company_key, seq) with a
// unique constraint, so one company key is one namespace no matter how
// many partitions the customer appears in.
type PostgresIdentitiesRepository struct {
	db *sql.DB
}

// NewPostgresIdentitiesRepository creates an identities repository.
func NewPostgresIdentitiesRepository(db *sql.DB) *PostgresIdentitiesRepository {
	return &PostgresIdentitiesRepository{db: db}
}

var _ IdentitiesRepository = (*PostgresIdentitiesRepository)(nil)

// MaxSequence reads the highest claimed sequence for the namespace.
func (r *PostgresIdentitiesRepository) MaxSequence(ctx context.Context, companyKey int) (int, error) {
	var max int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) FROM public.asset_identities WHERE company_key = $1`,
		companyKey,
	).Scan(&max)
	if err != nil {
		return 0, storeErr("failed to read max identity sequence", err)
	}
	return max, nil
}

// ClaimSequence durably claims (companyKey, seq). The UNIQUE
// constraint is the atomic claim: when two issuances race, the second
// insert fails with a unique violation and comes back as
// ErrSequenceClaimed so the caller re-reads and retries.
func (r *PostgresIdentitiesRepository) ClaimSequence(ctx context.Context, companyKey, seq int, identity string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO public.asset_identities (company_key, seq, asset_identity, claimed_at)
		 VALUES ($1, $2, $3, NOW())`,
		companyKey, seq, identity,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("identity %s: %w", identity, ErrSequenceClaimed)
		}
		return storeErr("failed to claim identity sequence", err)
	}
	return nil
}
