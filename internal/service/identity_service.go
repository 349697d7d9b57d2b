package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/186mph/calsoft-assets/internal/domain"
	"github.com/186mph/calsoft-assets/internal/repository"

	"go.uber.org/zap"
)

// IdentityIssuer issues stable, monotonically increasing, human-readable
// asset identities per customer namespace.
type IdentityIssuer interface {
	// IssueIdentity claims and returns the next identity for the
	// customer's company key. Malformed keys fall back to the default
	// namespace; a store failure is surfaced, never papered over with a
	// fabricated identity.
	IssueIdentity(ctx context.Context, companyKey string) (string, error)
}

type identityIssuer struct {
	identities repository.IdentitiesRepository
	defaultKey int
	attempts   int
	logger     *zap.Logger
}

// NewIdentityIssuer creates an IdentityIssuer. attempts bounds the
// claim-retry loop; values below 1 get the default of 3.
func NewIdentityIssuer(identities repository.IdentitiesRepository, defaultKey, attempts int, logger *zap.Logger) IdentityIssuer {
	if defaultKey <= 0 {
		defaultKey = 1
	}
	if attempts < 1 {
		attempts = 3
	}
	return &identityIssuer{
		identities: identities,
		defaultKey: defaultKey,
		attempts:   attempts,
		logger:     logger,
	}
}

func (s *identityIssuer) IssueIdentity(ctx context.Context, companyKey string) (string, error) {
	key := domain.ResolveCompanyKey(companyKey, s.defaultKey)
	if key == s.defaultKey && companyKey != "" {
		s.logger.Debug("company key not resolvable, using default namespace",
			zap.String("company_key", companyKey),
			zap.Int("namespace", key),
		)
	}

	// Read-increment-claim with a bounded retry. The claim itself is
	// atomic at the store (unique constraint); losing the race just
	// means re-reading the new max. Failed attempts never consume a
	// sequence number.
	for attempt := 1; attempt <= s.attempts; attempt++ {
		max, err := s.identities.MaxSequence(ctx, key)
		if err != nil {
			return "", fmt.Errorf("identity issuance for namespace %d: %w", key, err)
		}

		seq := max + 1
		identity := domain.FormatIdentity(key, seq)

		err = s.identities.ClaimSequence(ctx, key, seq, identity)
		if err == nil {
			s.logger.Info("issued asset identity",
				zap.String("identity", identity),
				zap.Int("namespace", key),
				zap.Int("attempt", attempt),
			)
			return identity, nil
		}
		if errors.Is(err, repository.ErrSequenceClaimed) {
			s.logger.Warn("identity sequence race, retrying",
				zap.String("identity", identity),
				zap.Int("attempt", attempt),
			)
			continue
		}
		return "", fmt.Errorf("identity issuance for namespace %d: %w", key, err)
	}

	return "", fmt.Errorf("namespace %d contended beyond %d attempts: %w",
		key, s.attempts, domain.ErrIdentityConflict)
}
