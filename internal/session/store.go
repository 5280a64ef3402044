package session

import (
	"context"
	"hash/fnv"
	"sync"
	"time"
)

// Store keeps session state keyed by user id. Get returns an idle State when
// the user has none.
type Store interface {
	Get(ctx context.Context, userID string) (State, error)
	Update(ctx context.Context, userID string, p Patch) (State, error)
	Delete(ctx context.Context, userID string) error
}

const shardCount = 32

type shard struct {
	mu     sync.RWMutex
	states map[string]State
}

// MemoryStore is a sharded in-process Store. Users on different shards never
// contend on the same lock.
type MemoryStore struct {
	shards  [shardCount]*shard
	idleTTL time.Duration
	now     func() time.Time
}

type MemoryOption func(*MemoryStore)

// WithIdleTTL expires sessions that were not updated for ttl. Zero keeps them
// forever.
func WithIdleTTL(ttl time.Duration) MemoryOption {
	return func(s *MemoryStore) { s.idleTTL = ttl }
}

func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{now: time.Now}
	for i := range s.shards {
		s.shards[i] = &shard{states: make(map[string]State)}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) shardFor(userID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return s.shards[h.Sum32()%shardCount]
}

func (s *MemoryStore) expired(st State) bool {
	return s.idleTTL > 0 && s.now().Sub(st.UpdatedAt) > s.idleTTL
}

func (s *MemoryStore) Get(_ context.Context, userID string) (State, error) {
	sh := s.shardFor(userID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	st, ok := sh.states[userID]
	if !ok || s.expired(st) {
		return State{Flow: Idle{}}, nil
	}
	return st, nil
}

func (s *MemoryStore) Update(_ context.Context, userID string, p Patch) (State, error) {
	sh := s.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	cur, ok := sh.states[userID]
	if !ok || s.expired(cur) {
		cur = State{Flow: Idle{}}
	}
	next := p.Apply(cur, s.now())
	sh.states[userID] = next
	return next, nil
}

func (s *MemoryStore) Delete(_ context.Context, userID string) error {
	sh := s.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	delete(sh.states, userID)
	return nil
}

// Sweep drops expired sessions and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	if s.idleTTL <= 0 {
		return 0
	}
	removed := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for id, st := range sh.states {
			if s.expired(st) {
				delete(sh.states, id)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}
