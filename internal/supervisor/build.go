package supervisor

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/svrmonitor/internal/config"
	"github.com/hamed0406/svrmonitor/internal/domain"
	"github.com/hamed0406/svrmonitor/internal/httpapi"
	apimw "github.com/hamed0406/svrmonitor/internal/httpapi/middleware"
	"github.com/hamed0406/svrmonitor/internal/metrics"
	"github.com/hamed0406/svrmonitor/internal/monitor"
	"github.com/hamed0406/svrmonitor/internal/notify"
	"github.com/hamed0406/svrmonitor/internal/probe"
	"github.com/hamed0406/svrmonitor/internal/repo"
	"github.com/hamed0406/svrmonitor/internal/repo/memory"
	pg "github.com/hamed0406/svrmonitor/internal/repo/postgres"
	"github.com/hamed0406/svrmonitor/internal/repo/sqlite"
	"github.com/hamed0406/svrmonitor/internal/scheduler"
	"github.com/hamed0406/svrmonitor/internal/status"
)

// OpenStore opens the event journal selected by cfg.
func OpenStore(ctx context.Context, cfg config.JournalConfig, log *zap.Logger) (repo.EventStore, error) {
	switch cfg.Driver {
	case "", "memory":
		return memory.New(cfg.Limit), nil
	case "postgres":
		return pg.New(ctx, cfg.DSN, log)
	case "sqlite":
		return sqlite.Open(ctx, cfg.DSN, log)
	default:
		return nil, fmt.Errorf("%w: unknown journal.driver %q", config.ErrInvalid, cfg.Driver)
	}
}

// Built is a supervisor wired from configuration, plus the read models it
// feeds.
type Built struct {
	*Supervisor
	Board   *status.Board
	Metrics *metrics.Collector
	Events  repo.EventStore
}

func (b *Built) Close() error { return b.Events.Close() }

// FromConfig wires every component named in cfg. cfg must already be valid.
func FromConfig(ctx context.Context, cfg config.Config, log *zap.Logger) (*Built, error) {
	eps := cfg.EndpointList()
	events, err := OpenStore(ctx, cfg.Journal, log)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	board := status.NewBoard(eps)
	mc := metrics.New()
	popts := cfg.ProbeOptions()

	sup := &Supervisor{
		Endpoints:       eps,
		Monitor:         cfg.MonitorConfig(),
		CheckerFor:      func(ep domain.Endpoint) probe.Checker { return probe.ForEndpoint(ep, popts) },
		Notifier:        notify.Build(cfg.NotifySettings(), log),
		Observer:        monitor.Observers{board, mc, repo.NewJournal(events, log)},
		Rebooter:        scheduler.NewRebooter(log, cfg.Reboot.Interval, cfg.Reboot.Command),
		ShutdownTimeout: 5 * time.Second,
		Log:             log,
	}

	if cfg.API.Addr != "" {
		api := httpapi.NewServer(log, board, events, mc.Handler())
		sup.Server = &http.Server{
			Addr: cfg.API.Addr,
			Handler: api.Router(httpapi.Options{
				Keys:           apimw.Keys{Public: cfg.API.PublicKeys, Admin: cfg.API.AdminKeys},
				AllowedOrigins: cfg.API.AllowedOrigins,
				RPM:            cfg.API.RPM,
				Burst:          cfg.API.Burst,
			}),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	return &Built{Supervisor: sup, Board: board, Metrics: mc, Events: events}, nil
}
