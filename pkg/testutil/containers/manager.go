//go:build integration

package containers

import (
	"sync"
	"testing"
)

// Manager shares containers across test suites within one test binary so
// each suite doesn't pay container startup cost. Containers live for the
// whole run; Ryuk terminates them when the binary exits.
type Manager struct {
	mu       sync.Mutex
	postgres *PostgresContainer
	redis    *RedisContainer
}

var manager = &Manager{}

// GetManager returns the process-wide container manager.
func GetManager() *Manager {
	return manager
}

// GetPostgres returns the shared Postgres container, starting it on first
// use.
func (m *Manager) GetPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.postgres == nil {
		m.postgres = NewPostgresContainer(t)
	}
	return m.postgres
}

// GetRedis returns the shared Redis container, starting it on first use.
func (m *Manager) GetRedis(t *testing.T) *RedisContainer {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.redis == nil {
		m.redis = NewRedisContainer(t)
	}
	return m.redis
}
