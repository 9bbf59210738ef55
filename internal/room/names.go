package room

import (
	"fmt"
	"sync"
)

// NameRegistry hands out unique asset names. It remembers every name it has
// seen for as long as it lives, so repeated imports of the same file in one
// registry produce ever-increasing suffixes.
//
// NameRegistry is safe for concurrent use.
type NameRegistry struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewNameRegistry returns an empty registry.
func NewNameRegistry() *NameRegistry {
	return &NameRegistry{counts: make(map[string]int)}
}

// Dedup returns candidate unchanged the first time it is seen, and
// candidate_N on the N-th repeat.
//
// Postcondition: two calls with the same candidate never return the same string.
func (r *NameRegistry) Dedup(candidate string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, seen := r.counts[candidate]
	if !seen {
		r.counts[candidate] = 1
		return candidate
	}
	r.counts[candidate] = n + 1
	return fmt.Sprintf("%s_%d", candidate, n)
}

// Reset forgets every name.
func (r *NameRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts = make(map[string]int)
}
