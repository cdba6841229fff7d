// Package status keeps the latest published snapshot of every endpoint.
package status

import (
	"context"
	"sort"
	"sync"

	"github.com/hamed0406/svrmonitor/internal/domain"
)

// Board is a read-only view of monitor state. Each endpoint has exactly one
// writer (its monitor); readers get copies.
type Board struct {
	mu    sync.RWMutex
	order []domain.EndpointID
	snaps map[domain.EndpointID]domain.Snapshot
}

// NewBoard pre-registers eps so that endpoints which have not completed a
// cycle yet are still listed.
func NewBoard(eps []domain.Endpoint) *Board {
	b := &Board{snaps: make(map[domain.EndpointID]domain.Snapshot, len(eps))}
	for _, ep := range eps {
		b.order = append(b.order, ep.ID)
		b.snaps[ep.ID] = domain.Snapshot{Endpoint: ep}
	}
	return b
}

func (b *Board) Observe(s domain.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.snaps[s.Endpoint.ID]; !ok {
		b.order = append(b.order, s.Endpoint.ID)
	}
	b.snaps[s.Endpoint.ID] = s
}

// Record is a no-op; the board only tracks snapshots.
func (b *Board) Record(context.Context, domain.Event) {}

// List returns the snapshots in registration order.
func (b *Board) List() []domain.Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.Snapshot, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.snaps[id])
	}
	return out
}

func (b *Board) Get(id domain.EndpointID) (domain.Snapshot, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.snaps[id]
	return s, ok
}

// Down returns the IDs of the endpoints currently confirmed down, sorted.
func (b *Board) Down() []domain.EndpointID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []domain.EndpointID
	for id, s := range b.snaps {
		if s.ConfirmedDown() {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
