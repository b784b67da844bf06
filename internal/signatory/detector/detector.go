// Package detector implements the layered duplicate and abuse checks that
// gate signature intake. The checks are advisory: they produce fast, specific
// rejection reasons, but the store's uniqueness constraint remains the
// authoritative guard against duplicate emails (the read-then-decide pattern
// here is not atomic with the subsequent insert).
package detector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"petition/internal/signatory/models"
	"petition/pkg/email"
	pstrings "petition/pkg/platform/strings"
)

// ReadStore is the read-only slice of the signature store the detector needs.
type ReadStore interface {
	EmailExists(ctx context.Context, normalizedEmail string) (bool, error)
	CountByIPSince(ctx context.Context, ip string, since time.Time) (int, error)
	CountByIPOrFingerprintSince(ctx context.Context, ip, fingerprint string, since time.Time) (int, error)
	EmailsByDomainAndLocalPrefix(ctx context.Context, domain, localPrefix string) ([]string, error)
}

// Config holds the policy thresholds. The defaults are product decisions;
// tune them only with new product guidance.
type Config struct {
	// MaxPerIP is the signature budget per source IP within IPWindow.
	MaxPerIP int
	IPWindow time.Duration

	// MaxRapidRetries is the budget of signatures matching the candidate's IP
	// or device fingerprint within RetryWindow.
	MaxRapidRetries int
	RetryWindow     time.Duration

	// SimilarityThreshold is the maximum Levenshtein distance at which two
	// emails are considered suspiciously similar.
	SimilarityThreshold int

	// MinLocalPartLen gates the near-duplicate check; local parts at or below
	// this length skip it, since short addresses legitimately collide.
	MinLocalPartLen int
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		MaxPerIP:            3,
		IPWindow:            24 * time.Hour,
		MaxRapidRetries:     2,
		RetryWindow:         time.Hour,
		SimilarityThreshold: 2,
		MinLocalPartLen:     3,
	}
}

// Candidate is a submission under evaluation.
type Candidate struct {
	// Email must already be normalized (lowercased, trimmed).
	Email             string
	SourceIP          string
	DeviceFingerprint string
	// Now anchors the trailing time windows.
	Now time.Time
}

// Detector runs the layered policy checks.
type Detector struct {
	store  ReadStore
	cfg    Config
	logger *slog.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithConfig overrides the default thresholds.
func WithConfig(cfg Config) Option {
	return func(d *Detector) {
		d.cfg = cfg
	}
}

// WithLogger sets the detector's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

// New constructs a Detector.
func New(store ReadStore, opts ...Option) (*Detector, error) {
	if store == nil {
		return nil, fmt.Errorf("signature store is required")
	}
	d := &Detector{store: store, cfg: DefaultConfig(), logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Check evaluates the candidate against all gates in a fixed order: cheapest
// and most certain first, the pairwise edit-distance scan last and only over
// a prefix-filtered candidate set. The first failing gate short-circuits with
// its RejectionError; a nil return means accept.
//
// Errors other than *models.RejectionError indicate the store was unreachable
// and must be treated as storage failures by the caller.
func (d *Detector) Check(ctx context.Context, c Candidate) error {
	if err := d.checkExactDuplicate(ctx, c); err != nil {
		return err
	}
	if err := d.checkIPVelocity(ctx, c); err != nil {
		return err
	}
	if err := d.checkRapidRetry(ctx, c); err != nil {
		return err
	}
	return d.checkSimilarEmail(ctx, c)
}

func (d *Detector) checkExactDuplicate(ctx context.Context, c Candidate) error {
	exists, err := d.store.EmailExists(ctx, c.Email)
	if err != nil {
		return fmt.Errorf("exact duplicate check: %w", err)
	}
	if exists {
		return models.Reject(models.ReasonDuplicateEmail)
	}
	return nil
}

func (d *Detector) checkIPVelocity(ctx context.Context, c Candidate) error {
	// "unknown" cannot discriminate between submitters, so throttling it
	// would punish everyone behind an opaque proxy at once.
	if c.SourceIP == "unknown" {
		return nil
	}

	count, err := d.store.CountByIPSince(ctx, c.SourceIP, c.Now.Add(-d.cfg.IPWindow))
	if err != nil {
		return fmt.Errorf("ip velocity check: %w", err)
	}
	if count >= d.cfg.MaxPerIP {
		d.logger.InfoContext(ctx, "ip velocity limit hit",
			"source_ip", c.SourceIP,
			"count", count,
		)
		return models.Reject(models.ReasonTooManyFromLocation)
	}
	return nil
}

func (d *Detector) checkRapidRetry(ctx context.Context, c Candidate) error {
	count, err := d.store.CountByIPOrFingerprintSince(ctx, c.SourceIP, c.DeviceFingerprint, c.Now.Add(-d.cfg.RetryWindow))
	if err != nil {
		return fmt.Errorf("rapid retry check: %w", err)
	}
	if count >= d.cfg.MaxRapidRetries {
		return models.Reject(models.ReasonTooManyAttempts)
	}
	return nil
}

func (d *Detector) checkSimilarEmail(ctx context.Context, c Candidate) error {
	local, domain, ok := email.Split(c.Email)
	// Malformed addresses should have failed validation upstream; the
	// detector no-ops rather than guessing.
	if !ok || len(local) <= d.cfg.MinLocalPartLen {
		return nil
	}

	// Prefix filter: same domain, local part starting with the candidate's
	// local part minus its last character. Bounds the pairwise scan.
	candidates, err := d.store.EmailsByDomainAndLocalPrefix(ctx, domain, local[:len(local)-1])
	if err != nil {
		return fmt.Errorf("similar email check: %w", err)
	}

	for _, existing := range candidates {
		if dist := pstrings.Levenshtein(c.Email, existing); dist <= d.cfg.SimilarityThreshold {
			d.logger.InfoContext(ctx, "near-duplicate email detected",
				"distance", dist,
			)
			return models.Reject(models.ReasonSimilarEmail)
		}
	}
	return nil
}
