// Package store persists petition signatures. Implementations guarantee
// atomic uniqueness on the normalized email: Create either durably persists
// the signature with a generated id or fails without side effects, and a
// colliding email fails with sentinel.ErrAlreadyUsed regardless of any
// advisory duplicate check that ran before the write. That constraint, not
// the detector, is the serialization point for concurrent duplicates.
package store

import (
	"context"
	"time"

	"petition/internal/signatory/models"
)

// Store is the full gateway contract consumed by the intake service. The
// detector uses only the read-side subset it declares itself.
type Store interface {
	// Create persists the signature, assigning its ID. Returns
	// sentinel.ErrAlreadyUsed when the normalized email is already claimed.
	Create(ctx context.Context, s *models.Signatory) error

	// EmailExists reports whether a signature with this normalized email
	// exists, reflecting a consistent snapshot at query time.
	EmailExists(ctx context.Context, normalizedEmail string) (bool, error)

	// CountByIPSince counts signatures from the IP submitted at or after
	// since.
	CountByIPSince(ctx context.Context, ip string, since time.Time) (int, error)

	// CountByIPOrFingerprintSince counts signatures submitted at or after
	// since whose source IP or device fingerprint matches.
	CountByIPOrFingerprintSince(ctx context.Context, ip, fingerprint string, since time.Time) (int, error)

	// EmailsByDomainAndLocalPrefix returns normalized emails sharing the
	// domain whose local part begins with localPrefix. Used as the cheap
	// candidate filter ahead of pairwise edit-distance scoring.
	EmailsByDomainAndLocalPrefix(ctx context.Context, domain, localPrefix string) ([]string, error)

	// Count returns the total number of signatures.
	Count(ctx context.Context) (int, error)

	// CountByCongressMember counts signatures by classification flag.
	CountByCongressMember(ctx context.Context, isMember bool) (int, error)

	// StateBreakdown groups signature counts by jurisdiction, ordered by
	// total descending.
	StateBreakdown(ctx context.Context) ([]models.StateStats, error)

	// ListRecent returns up to limit signatures, newest first.
	ListRecent(ctx context.Context, limit int) ([]*models.Signatory, error)
}
