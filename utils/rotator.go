package utils

import (
	"errors"
	"sync"
	"time"
)

// KeyRing cycles through a fixed pool of API keys in round-robin order.
// Rotation is blind: the cursor advances on every outbound attempt,
// regardless of whether the call succeeds.
type KeyRing struct {
	mu     sync.Mutex
	keys   []string
	cursor int
}

// NewKeyRing creates a KeyRing over the given pool. An empty pool is a
// configuration error and must abort the run before any row is processed.
func NewKeyRing(keys []string) (*KeyRing, error) {
	if len(keys) == 0 {
		return nil, errors.New("keyring: credential pool is empty")
	}
	return &KeyRing{keys: keys}, nil
}

// Next returns the credential to use for the next outbound request along
// with its index in the pool, then advances the cursor.
func (k *KeyRing) Next() (string, int) {
	k.mu.Lock()
	defer k.mu.Unlock()

	idx := k.cursor % len(k.keys)
	k.cursor++
	return k.keys[idx], idx
}

// Peek returns the index the next call to Next will use, for progress logging.
func (k *KeyRing) Peek() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.cursor % len(k.keys)
}

// Size returns the number of credentials in the pool.
func (k *KeyRing) Size() int {
	return len(k.keys)
}

// Pacer enforces a fixed minimum interval between consecutive rows so the
// aggregate request rate across the whole key pool stays within the model's
// per-key budget.
type Pacer struct {
	interval time.Duration

	mu   sync.Mutex
	last time.Time
}

// NewPacer creates a Pacer with the given minimum interval.
func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{interval: interval, last: time.Now()}
}

// Wait sleeps whatever remains of the interval since the previous call.
func (p *Pacer) Wait() {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := time.Since(p.last)
	if elapsed < p.interval {
		time.Sleep(p.interval - elapsed)
	}
	p.last = time.Now()
}

// Interval returns the configured minimum spacing between rows.
func (p *Pacer) Interval() time.Duration {
	return p.interval
}

// IDSet is a thread-safe set for tracking processed listing identifiers.
type IDSet struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewIDSet creates an empty IDSet.
func NewIDSet() *IDSet {
	return &IDSet{seen: make(map[string]struct{})}
}

// Add returns true if the identifier was newly added, false if already present.
func (s *IDSet) Add(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[id]; exists {
		return false
	}
	s.seen[id] = struct{}{}
	return true
}

// Contains returns true if the identifier has already been processed.
func (s *IDSet) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.seen[id]
	return exists
}

// Size returns the number of unique identifiers tracked.
func (s *IDSet) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}
