package store

import (
	"sync"
	"time"

	"mcpgate/pkg/logging"
)

// Kind partitions the key space so a code can never collide with (or be
// presented as) an access token.
type Kind string

const (
	KindSession Kind = "session"
	KindCode    Kind = "code"
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Store is the contract the OAuth flows and the proxy depend on. Get must
// treat an entry whose TTL has elapsed as absent even if the sweep has not
// reclaimed it yet; Consume must be atomic so single-use entries have
// exactly one redeemer under concurrency.
type Store interface {
	Put(kind Kind, key string, value any, ttl time.Duration)
	Get(kind Kind, key string) (any, bool)
	Consume(kind Kind, key string) (any, bool)
	Delete(kind Kind, key string)
}

// defaultSweepInterval is how often the background sweep reclaims expired
// entries. The sweep is an optimization only: correctness comes from the
// read-time expiry check.
const defaultSweepInterval = time.Minute

type entryKey struct {
	kind Kind
	key  string
}

type entry struct {
	value     any
	expiresAt time.Time
}

// MemoryStore is the in-process Store implementation.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[entryKey]entry

	// now is swappable for expiry tests.
	now func() time.Time

	sweepInterval time.Duration
	stopSweep     chan struct{}
	stopOnce      sync.Once
}

// NewMemoryStore creates an in-memory store and starts its background
// expiry sweep. Call Stop when the store is no longer needed.
func NewMemoryStore() *MemoryStore {
	ms := &MemoryStore{
		entries:       make(map[entryKey]entry),
		now:           time.Now,
		sweepInterval: defaultSweepInterval,
		stopSweep:     make(chan struct{}),
	}

	go ms.sweepLoop()

	return ms
}

// Put stores value under (kind, key) with the given TTL, replacing any
// previous entry.
func (ms *MemoryStore) Put(kind Kind, key string, value any, ttl time.Duration) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.entries[entryKey{kind, key}] = entry{
		value:     value,
		expiresAt: ms.now().Add(ttl),
	}
}

// Get returns the live value under (kind, key). Expiry is checked against
// the clock captured inside the critical section, so a read can never
// succeed after logical expiry.
func (ms *MemoryStore) Get(kind Kind, key string) (any, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	e, ok := ms.entries[entryKey{kind, key}]
	if !ok || ms.now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Consume atomically reads and deletes the live value under (kind, key).
// Concurrent consumers of the same key race for exactly one winner.
func (ms *MemoryStore) Consume(kind Kind, key string) (any, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	k := entryKey{kind, key}
	e, ok := ms.entries[k]
	if !ok {
		return nil, false
	}
	delete(ms.entries, k)
	if ms.now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Delete removes the entry under (kind, key) if present.
func (ms *MemoryStore) Delete(kind Kind, key string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.entries, entryKey{kind, key})
}

// Count returns the number of entries currently held, expired or not.
func (ms *MemoryStore) Count() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.entries)
}

// Stop stops the background sweep goroutine. Safe to call more than once.
func (ms *MemoryStore) Stop() {
	ms.stopOnce.Do(func() {
		close(ms.stopSweep)
	})
}

// sweepLoop periodically removes expired entries from the store.
func (ms *MemoryStore) sweepLoop() {
	ticker := time.NewTicker(ms.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ms.sweep()
		case <-ms.stopSweep:
			return
		}
	}
}

// sweep removes all expired entries.
func (ms *MemoryStore) sweep() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()
	count := 0
	for k, e := range ms.entries {
		if now.After(e.expiresAt) {
			delete(ms.entries, k)
			count++
		}
	}

	if count > 0 {
		logging.Debug("Store", "Swept %d expired entries", count)
	}
}
