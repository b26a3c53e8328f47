package cache

import (
	"context"
	"sync"
	"time"
)

// Policy defines in-memory cache behavior
type Policy struct {
	// TTL applies when Set is called with a zero ttl
	TTL time.Duration

	// MaxEntries bounds the cache; the least recently read entry is evicted
	MaxEntries int
}

// DefaultPolicy returns the default policy
func DefaultPolicy() Policy {
	return Policy{
		TTL:        5 * time.Minute,
		MaxEntries: 10000,
	}
}

// Entry is a cached value with its lifecycle metadata
type Entry struct {
	Key          string
	Value        []byte
	CreatedAt    time.Time
	ExpiresAt    time.Time
	AccessCount  int
	LastAccessed time.Time
}

// expired reports whether the entry is past its TTL at now
func (e *Entry) expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Stats contains cache statistics
type Stats struct {
	TotalEntries   int
	ExpiredEntries int
	Evictions      int
}

// MemoryStore is a process-local TTL cache
type MemoryStore struct {
	policy Policy
	now    func() time.Time

	entries   map[string]*Entry
	evictions int
	mu        sync.Mutex
}

// NewMemoryStore creates a memory store
func NewMemoryStore(policy Policy) *MemoryStore {
	def := DefaultPolicy()
	if policy.TTL <= 0 {
		policy.TTL = def.TTL
	}
	if policy.MaxEntries <= 0 {
		policy.MaxEntries = def.MaxEntries
	}
	return &MemoryStore{
		policy:  policy,
		now:     time.Now,
		entries: make(map[string]*Entry),
	}
}

// Get implements Store
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	now := s.now()
	if entry.expired(now) {
		delete(s.entries, key)
		return nil, false, nil
	}

	entry.AccessCount++
	entry.LastAccessed = now
	return entry.Value, true, nil
}

// Set implements Store
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = s.policy.TTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.policy.MaxEntries {
		s.evict(now)
	}

	s.entries[key] = &Entry{
		Key:          key,
		Value:        append([]byte(nil), value...),
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
		LastAccessed: now,
	}
	return nil
}

// Delete implements Store
func (s *MemoryStore) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.entries, k)
	}
	return nil
}

// Close implements Store
func (s *MemoryStore) Close() error {
	s.Clear()
	return nil
}

// Clear drops every entry
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*Entry)
}

// InvalidateExpired removes all expired entries
func (s *MemoryStore) InvalidateExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropExpired(s.now())
}

// Stats returns cache statistics
func (s *MemoryStore) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	stats := Stats{TotalEntries: len(s.entries), Evictions: s.evictions}
	for _, e := range s.entries {
		if e.expired(now) {
			stats.ExpiredEntries++
		}
	}
	return stats
}

// evict frees one slot: expired entries first, otherwise the least recently
// read entry. Caller holds mu.
func (s *MemoryStore) evict(now time.Time) {
	if s.dropExpired(now) > 0 {
		return
	}

	var victim *Entry
	for _, e := range s.entries {
		if victim == nil || e.LastAccessed.Before(victim.LastAccessed) ||
			(e.LastAccessed.Equal(victim.LastAccessed) && e.Key < victim.Key) {
			victim = e
		}
	}
	if victim != nil {
		delete(s.entries, victim.Key)
		s.evictions++
	}
}

func (s *MemoryStore) dropExpired(now time.Time) int {
	count := 0
	for key, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, key)
			count++
		}
	}
	return count
}
