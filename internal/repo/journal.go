package repo

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/svrmonitor/internal/domain"
)

// Journal adapts an EventStore to the monitor observer contract. Write
// failures are logged and dropped so a slow or broken database never stalls
// a monitor.
type Journal struct {
	Store   EventStore
	Timeout time.Duration
	Log     *zap.Logger
}

func NewJournal(s EventStore, log *zap.Logger) *Journal {
	return &Journal{Store: s, Timeout: 5 * time.Second, Log: log}
}

func (j *Journal) Observe(domain.Snapshot) {}

func (j *Journal) Record(ctx context.Context, ev domain.Event) {
	// Shutdown must not lose the last transition.
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), j.Timeout)
	defer cancel()
	if err := j.Store.Append(wctx, &ev); err != nil {
		j.Log.Error("journal_append_failed",
			zap.String("endpoint", string(ev.EndpointID)),
			zap.String("kind", string(ev.Kind)),
			zap.Error(err),
		)
	}
}
