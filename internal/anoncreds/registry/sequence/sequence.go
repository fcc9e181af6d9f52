// Package sequence orders revocation status list versions per revocation
// registry definition.
package sequence

import (
	"context"
	"sync"
)

// Claim is the outcome of reserving the next version timestamp.
type Claim struct {
	// Previous is the newest timestamp claimed before this one. A claim is
	// not a publication, so Previous may name a version that never appeared.
	Previous    int64
	HasPrevious bool
	// Timestamp is the claimed timestamp: max(requested, Previous+1).
	Timestamp int64
}

// Memory sequences versions within one process.
type Memory struct {
	mu     sync.Mutex
	latest map[string]int64
}

func NewMemory() *Memory {
	return &Memory{latest: make(map[string]int64)}
}

func (m *Memory) Claim(_ context.Context, key string, timestamp int64) (Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev, ok := m.latest[key]
	claim := Claim{Previous: prev, HasPrevious: ok, Timestamp: timestamp}
	if ok && prev >= timestamp {
		claim.Timestamp = prev + 1
	}
	m.latest[key] = claim.Timestamp
	return claim, nil
}
