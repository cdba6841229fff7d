package memory

import (
	"context"
	"sync"

	"github.com/hamed0406/svrmonitor/internal/domain"
	"github.com/hamed0406/svrmonitor/internal/repo"
)

// Store keeps the last N events in a ring buffer.
type Store struct {
	mu     sync.RWMutex
	events []domain.Event
	next   int
	full   bool
	closed bool
}

func New(limit int) *Store {
	if limit <= 0 {
		limit = 500
	}
	return &Store{events: make([]domain.Event, limit)}
}

func (m *Store) Append(ctx context.Context, ev *domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return repo.ErrClosed
	}
	m.events[m.next] = *ev
	m.next = (m.next + 1) % len(m.events)
	if m.next == 0 {
		m.full = true
	}
	return nil
}

func (m *Store) Recent(ctx context.Context, limit int) ([]domain.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, repo.ErrClosed
	}
	if limit <= 0 {
		limit = repo.DefaultRecent
	}
	n := m.next
	if m.full {
		n = len(m.events)
	}
	if limit > n {
		limit = n
	}
	out := make([]domain.Event, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (m.next - i + len(m.events)) % len(m.events)
		out = append(out, m.events[idx])
	}
	return out, nil
}

func (m *Store) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
