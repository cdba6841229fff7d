package repo

import (
	"context"
	"errors"

	"github.com/hamed0406/svrmonitor/internal/domain"
)

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("repo: store closed")

// EventStore is the append-only journal of monitor transitions and alert
// attempts. Probe outcomes are not stored, and nothing is ever read back
// into a monitor.
type EventStore interface {
	Append(ctx context.Context, ev *domain.Event) error
	// Recent returns up to limit events, newest first. limit <= 0 means the
	// store's default.
	Recent(ctx context.Context, limit int) ([]domain.Event, error)
	Close() error
}

// DefaultRecent is the page size used when callers pass no limit.
const DefaultRecent = 50
