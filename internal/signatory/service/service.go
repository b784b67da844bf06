// Package service implements the intake orchestration: one submission moves
// Received → Verified → Checked → Committed or Rejected. The service is
// stateless between requests; every suspension point (verification, store) is
// bounded by the request context.
package service

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"petition/internal/fingerprint"
	"petition/internal/platform/metrics"
	"petition/internal/signatory/cache"
	"petition/internal/signatory/detector"
	"petition/internal/signatory/models"
	"petition/internal/signatory/store"
	"petition/internal/verification"
	"petition/pkg/platform/sentinel"
	"petition/pkg/requestcontext"
)

const defaultRecentLimit = 100

// Checker is the advisory gate run between verification and the write.
type Checker interface {
	Check(ctx context.Context, c detector.Candidate) error
}

// Service coordinates human verification, the abuse detector, and the
// signature store for one submission at a time.
type Service struct {
	store       store.Store
	checker     Checker
	verifier    verification.Verifier
	statsCache  *cache.Stats
	logger      *slog.Logger
	metrics     *metrics.Metrics
	recentLimit int
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithStatsCache enables response caching for the stats read path.
func WithStatsCache(c *cache.Stats) Option {
	return func(s *Service) {
		s.statsCache = c
	}
}

// WithRecentLimit overrides the recent-list bound.
func WithRecentLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.recentLimit = n
		}
	}
}

// New constructs a Service.
func New(st store.Store, checker Checker, verifier verification.Verifier, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, errors.New("signature store is required")
	}
	if checker == nil {
		return nil, errors.New("abuse checker is required")
	}
	if verifier == nil {
		return nil, errors.New("verifier is required")
	}

	s := &Service{
		store:       st,
		checker:     checker,
		verifier:    verifier,
		logger:      slog.Default(),
		recentLimit: defaultRecentLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Sign runs one submission through the full gate. The request must already be
// normalized and validated. On success the created signatory (with its
// store-assigned ID) is returned; every failure path returns a
// *models.RejectionError carrying exactly one reason.
func (s *Service) Sign(ctx context.Context, req *models.SignRequest) (*models.Signatory, error) {
	requestID := requestcontext.RequestID(ctx)

	// Received → Verified.
	if err := s.verifier.Verify(ctx, req.VerificationToken); err != nil {
		if errors.Is(err, verification.ErrTokenRejected) {
			return nil, s.reject(ctx, models.ReasonVerificationFailed)
		}
		s.logger.ErrorContext(ctx, "verification collaborator unavailable",
			"request_id", requestID,
			"error", err.Error(),
		)
		return nil, s.reject(ctx, models.ReasonVerificationUnavailable)
	}

	candidate := detector.Candidate{
		Email:             req.Email,
		SourceIP:          requestcontext.ClientIP(ctx),
		DeviceFingerprint: requestcontext.DeviceFingerprint(ctx),
		Now:               requestcontext.Now(ctx),
	}

	// Verified → Checked.
	if err := s.checker.Check(ctx, candidate); err != nil {
		var rejection *models.RejectionError
		if errors.As(err, &rejection) {
			s.logger.InfoContext(ctx, "submission rejected by detector",
				"request_id", requestID,
				"reason", rejection.Reason,
				"device", fingerprint.DescribeUserAgent(requestcontext.UserAgent(ctx)),
			)
			return nil, s.reject(ctx, rejection.Reason)
		}
		s.logger.ErrorContext(ctx, "detector store query failed",
			"request_id", requestID,
			"error", err.Error(),
		)
		return nil, s.reject(ctx, models.ReasonStorageUnavailable)
	}

	// Checked → Committed. The store's uniqueness constraint is the
	// serialization point for concurrent duplicates: a race loser gets the
	// same duplicate reason as a statically detected one.
	sig := req.Signatory(candidate.SourceIP, candidate.DeviceFingerprint, candidate.Now)
	if err := s.store.Create(ctx, sig); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, s.reject(ctx, models.ReasonDuplicateEmail)
		}
		s.logger.ErrorContext(ctx, "signature insert failed",
			"request_id", requestID,
			"error", err.Error(),
		)
		return nil, s.reject(ctx, models.ReasonStorageUnavailable)
	}

	s.metrics.IncrementSignaturesCreated()
	s.statsCache.Invalidate(ctx)
	s.logger.InfoContext(ctx, "signature committed",
		"request_id", requestID,
		"signatory_id", sig.ID,
		"state", sig.State,
	)
	return sig, nil
}

func (s *Service) reject(_ context.Context, reason models.RejectionReason) error {
	s.metrics.IncrementRejections(string(reason))
	return models.Reject(reason)
}

// Stats assembles the aggregate read payload: totals, classification counts,
// per-state breakdown, and the bounded recent list with non-consenting
// entries redacted. The independent aggregate queries fan out concurrently.
func (s *Service) Stats(ctx context.Context) (*models.StatsResponse, error) {
	if cached, ok := s.statsCache.Get(ctx); ok {
		return cached, nil
	}

	var (
		total, members, constituents int
		breakdown                    []models.StateStats
		recent                       []*models.Signatory
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		total, err = s.store.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		members, err = s.store.CountByCongressMember(gctx, true)
		return err
	})
	g.Go(func() (err error) {
		constituents, err = s.store.CountByCongressMember(gctx, false)
		return err
	})
	g.Go(func() (err error) {
		breakdown, err = s.store.StateBreakdown(gctx)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.store.ListRecent(gctx, s.recentLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "stats query failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		return nil, s.reject(ctx, models.ReasonStorageUnavailable)
	}

	public := make([]models.PublicSignatory, 0, len(recent))
	for _, sig := range recent {
		public = append(public, sig.PublicView())
	}

	stats := &models.StatsResponse{
		TotalCount:          total,
		CongressMemberCount: members,
		ConstituentCount:    constituents,
		StateBreakdown:      breakdown,
		Signatories:         public,
	}
	s.statsCache.Set(ctx, stats)
	return stats, nil
}
