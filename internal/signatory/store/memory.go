package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"petition/internal/signatory/models"
	"petition/pkg/platform/sentinel"
)

// InMemory keeps signatures in process memory. It backs unit tests and
// development mode and intentionally favors clarity over performance. The
// single mutex makes the existence check and insert atomic, mirroring the
// unique index the Postgres store relies on.
type InMemory struct {
	mu      sync.RWMutex
	byEmail map[string]*models.Signatory
}

// NewInMemory constructs an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{byEmail: make(map[string]*models.Signatory)}
}

func (s *InMemory) Create(_ context.Context, sig *models.Signatory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(strings.TrimSpace(sig.Email))
	if _, exists := s.byEmail[key]; exists {
		return sentinel.ErrAlreadyUsed
	}

	stored := *sig
	stored.ID = uuid.New()
	stored.Email = key
	s.byEmail[key] = &stored

	sig.ID = stored.ID
	return nil
}

func (s *InMemory) EmailExists(_ context.Context, normalizedEmail string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byEmail[normalizedEmail]
	return ok, nil
}

func (s *InMemory) CountByIPSince(_ context.Context, ip string, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, sig := range s.byEmail {
		if sig.SourceIP == ip && !sig.SubmittedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *InMemory) CountByIPOrFingerprintSince(_ context.Context, ip, fingerprint string, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, sig := range s.byEmail {
		if sig.SubmittedAt.Before(since) {
			continue
		}
		if sig.SourceIP == ip || (fingerprint != "" && sig.DeviceFingerprint == fingerprint) {
			count++
		}
	}
	return count, nil
}

func (s *InMemory) EmailsByDomainAndLocalPrefix(_ context.Context, domain, localPrefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	suffix := "@" + domain
	var matches []string
	for addr := range s.byEmail {
		if strings.HasSuffix(addr, suffix) && strings.HasPrefix(addr, localPrefix) {
			matches = append(matches, addr)
		}
	}
	return matches, nil
}

func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byEmail), nil
}

func (s *InMemory) CountByCongressMember(_ context.Context, isMember bool) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, sig := range s.byEmail {
		if sig.IsCongressMember == isMember {
			count++
		}
	}
	return count, nil
}

func (s *InMemory) StateBreakdown(_ context.Context) ([]models.StateStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byState := make(map[string]*models.StateStats)
	for _, sig := range s.byEmail {
		st, ok := byState[sig.State]
		if !ok {
			st = &models.StateStats{State: sig.State}
			byState[sig.State] = st
		}
		st.Total++
		if sig.IsCongressMember {
			st.CongressMembers++
		} else {
			st.Constituents++
		}
	}

	breakdown := make([]models.StateStats, 0, len(byState))
	for _, st := range byState {
		breakdown = append(breakdown, *st)
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Total != breakdown[j].Total {
			return breakdown[i].Total > breakdown[j].Total
		}
		return breakdown[i].State < breakdown[j].State
	})
	return breakdown, nil
}

func (s *InMemory) ListRecent(_ context.Context, limit int) ([]*models.Signatory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*models.Signatory, 0, len(s.byEmail))
	for _, sig := range s.byEmail {
		copied := *sig
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].SubmittedAt.After(all[j].SubmittedAt)
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
