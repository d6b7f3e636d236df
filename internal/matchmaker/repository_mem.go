package matchmaker

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
)

// memRepo is the in-memory pool, used by tests and single-node runs.
type memRepo struct {
	mu      sync.Mutex
	pools   map[string]map[string]struct{} // key -> set(identity)
	players map[string]string              // identity -> key
	rng     *rand.Rand
}

func NewMemoryRepo(seed int64) Repo {
	return &memRepo{
		pools:   make(map[string]map[string]struct{}),
		players: make(map[string]string),
		rng:     rand.New(rand.NewSource(seed)),
	}
}

func memKey(pool string) string {
	return fmt.Sprintf("mm:pool:%s", pool)
}

func (m *memRepo) Enqueue(ctx context.Context, pool, identity string, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := memKey(pool)
	if _, ok := m.pools[key]; !ok {
		m.pools[key] = make(map[string]struct{})
	}
	m.pools[key][identity] = struct{}{}
	m.players[identity] = key
	// TTL ignored here; the memory repo lives as long as the process.
	return nil
}

func (m *memRepo) PopN(ctx context.Context, pool string, n int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := memKey(pool)
	s, ok := m.pools[key]
	if !ok || len(s) < n {
		return []string{}, nil
	}

	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	m.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	chosen := ids[:n]

	for _, id := range chosen {
		delete(s, id)
		delete(m.players, id)
	}
	if len(s) == 0 {
		delete(m.pools, key)
	}
	return chosen, nil
}

func (m *memRepo) Remove(ctx context.Context, identity string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, ok := m.players[identity]
	if !ok {
		return nil
	}
	if s, ok := m.pools[key]; ok {
		delete(s, identity)
		if len(s) == 0 {
			delete(m.pools, key)
		}
	}
	delete(m.players, identity)
	return nil
}

func (m *memRepo) Count(ctx context.Context, pool string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.pools[memKey(pool)])), nil
}
