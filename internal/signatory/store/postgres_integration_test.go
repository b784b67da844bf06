//go:build integration

package store_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"petition/internal/signatory/models"
	"petition/internal/signatory/store"
	"petition/pkg/platform/sentinel"
	"petition/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
	now      time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.now = time.Now().UTC().Truncate(time.Microsecond)
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "signatories"))
}

func newTestSignatory(email string) *models.Signatory {
	return &models.Signatory{
		FirstName:   "Test",
		LastName:    "Signer",
		Email:       email,
		State:       "CA",
		SubmittedAt: time.Now().UTC(),
		SourceIP:    "10.0.0.1",
	}
}

// TestConcurrentUniqueEmailViolation verifies that concurrent inserts of the
// same email resolve to exactly one success at the unique index.
func (s *PostgresStoreSuite) TestConcurrentUniqueEmailViolation() {
	ctx := context.Background()
	const goroutines = 50

	var wg sync.WaitGroup
	var successCount atomic.Int32
	var conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := s.store.Create(ctx, newTestSignatory("race@example.com"))
			if err == nil {
				successCount.Add(1)
			} else if errors.Is(err, sentinel.ErrAlreadyUsed) {
				conflictCount.Add(1)
			}
		}()
	}

	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one create should succeed")
	s.Equal(int32(goroutines-1), conflictCount.Load(), "all others should get conflict error")

	count, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *PostgresStoreSuite) TestCreateAndLookups() {
	ctx := context.Background()

	sig := newTestSignatory("alice@example.com")
	sig.IsCongressMember = true
	sig.CongressionalTitle = models.TitleSenator
	sig.District = "CA-12"
	s.Require().NoError(s.store.Create(ctx, sig))
	s.NotZero(sig.ID)

	s.Run("duplicate insert conflicts", func() {
		err := s.store.Create(ctx, newTestSignatory("alice@example.com"))
		s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("email existence check", func() {
		exists, err := s.store.EmailExists(ctx, "alice@example.com")
		s.Require().NoError(err)
		s.True(exists)

		exists, err = s.store.EmailExists(ctx, "missing@example.com")
		s.Require().NoError(err)
		s.False(exists)
	})

	s.Run("recent list round-trips fields", func() {
		recent, err := s.store.ListRecent(ctx, 10)
		s.Require().NoError(err)
		s.Require().Len(recent, 1)
		s.Equal("alice@example.com", recent[0].Email)
		s.True(recent[0].IsCongressMember)
		s.Equal(models.TitleSenator, recent[0].CongressionalTitle)
		s.Equal("CA-12", recent[0].District)
	})
}

func (s *PostgresStoreSuite) TestWindowedCounts() {
	ctx := context.Background()

	ages := []time.Duration{10 * time.Minute, 2 * time.Hour, 30 * time.Hour}
	for i, age := range ages {
		sig := newTestSignatory(fmt.Sprintf("user%d@example.com", i))
		sig.SubmittedAt = s.now.Add(-age)
		sig.DeviceFingerprint = "fp-shared"
		s.Require().NoError(s.store.Create(ctx, sig))
	}

	s.Run("counts by IP within window", func() {
		count, err := s.store.CountByIPSince(ctx, "10.0.0.1", s.now.Add(-24*time.Hour))
		s.Require().NoError(err)
		s.Equal(2, count)
	})

	s.Run("counts by IP or fingerprint", func() {
		count, err := s.store.CountByIPOrFingerprintSince(ctx, "10.0.0.99", "fp-shared", s.now.Add(-time.Hour))
		s.Require().NoError(err)
		s.Equal(1, count)
	})

	s.Run("empty fingerprint matches only by IP", func() {
		count, err := s.store.CountByIPOrFingerprintSince(ctx, "10.0.0.99", "", s.now.Add(-24*time.Hour))
		s.Require().NoError(err)
		s.Equal(0, count)
	})
}

func (s *PostgresStoreSuite) TestEmailsByDomainAndLocalPrefix() {
	ctx := context.Background()

	for _, addr := range []string{"johndoe@example.com", "johnny@example.com", "jane@example.com", "johndoe@example.org"} {
		s.Require().NoError(s.store.Create(ctx, newTestSignatory(addr)))
	}

	matches, err := s.store.EmailsByDomainAndLocalPrefix(ctx, "example.com", "john")
	s.Require().NoError(err)
	s.ElementsMatch([]string{"johndoe@example.com", "johnny@example.com"}, matches)

	s.Run("LIKE metacharacters are literal", func() {
		matches, err := s.store.EmailsByDomainAndLocalPrefix(ctx, "example.com", "john_")
		s.Require().NoError(err)
		s.Empty(matches)
	})
}

func (s *PostgresStoreSuite) TestAggregates() {
	ctx := context.Background()

	rep := newTestSignatory("rep@example.gov")
	rep.State = "TX"
	rep.IsCongressMember = true
	rep.CongressionalTitle = models.TitleRepresentative
	s.Require().NoError(s.store.Create(ctx, rep))

	for i, state := range []string{"CA", "CA", "TX"} {
		sig := newTestSignatory(fmt.Sprintf("c%d@example.com", i))
		sig.State = state
		s.Require().NoError(s.store.Create(ctx, sig))
	}

	total, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Equal(4, total)

	members, err := s.store.CountByCongressMember(ctx, true)
	s.Require().NoError(err)
	s.Equal(1, members)

	breakdown, err := s.store.StateBreakdown(ctx)
	s.Require().NoError(err)
	s.Require().Len(breakdown, 2)
	s.Equal("CA", breakdown[0].State)
	s.Equal(2, breakdown[0].Total)
	s.Equal(1, breakdown[1].CongressMembers)
}
