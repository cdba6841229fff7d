// Package supervisor starts one monitor per endpoint plus the unrelated
// reboot schedule and the optional status server, and owns their lifecycle.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/svrmonitor/internal/domain"
	"github.com/hamed0406/svrmonitor/internal/monitor"
	"github.com/hamed0406/svrmonitor/internal/notify"
	"github.com/hamed0406/svrmonitor/internal/probe"
	"github.com/hamed0406/svrmonitor/internal/scheduler"
)

type Supervisor struct {
	Endpoints  []domain.Endpoint
	Monitor    monitor.Config
	CheckerFor func(domain.Endpoint) probe.Checker
	Notifier   notify.Notifier
	Observer   monitor.Observer // optional

	Rebooter        *scheduler.Rebooter // optional
	Server          *http.Server        // optional
	ShutdownTimeout time.Duration

	Log   *zap.Logger
	Clock clock.Clock // optional, wall clock by default
}

// Run blocks until ctx is cancelled and every task has returned. A failing
// status server is logged and reported on return but never stops the
// monitors.
func (s *Supervisor) Run(ctx context.Context) error {
	s.Log.Info("startup",
		zap.Int("endpoints", len(s.Endpoints)),
		zap.Int("failure_threshold", s.Monitor.FailureThreshold),
		zap.Duration("requery_interval", s.Monitor.RequeryInterval),
		zap.Duration("healthy_poll_interval", s.Monitor.HealthyPollInterval),
		zap.Duration("initial_alert_delay", s.Monitor.InitialAlertDelay),
		zap.Duration("reminder_interval", s.Monitor.ReminderInterval),
		zap.Duration("notify_timeout", s.Monitor.NotifyTimeout),
	)

	g, gctx := errgroup.WithContext(ctx)

	for _, ep := range s.Endpoints {
		m := monitor.New(ep, s.Monitor, s.CheckerFor(ep), s.Notifier, s.Log, s.monitorOptions()...)
		g.Go(func() error {
			m.Run(gctx)
			return nil
		})
	}

	if s.Rebooter != nil {
		g.Go(func() error {
			s.Rebooter.Run(gctx)
			return nil
		})
	}

	var serveErr error
	if s.Server != nil {
		srv := s.Server
		g.Go(func() error {
			s.Log.Info("api_listen", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.Log.Error("api_serve_failed", zap.String("addr", srv.Addr), zap.Error(err))
				serveErr = fmt.Errorf("status server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			timeout := s.ShutdownTimeout
			if timeout <= 0 {
				timeout = 5 * time.Second
			}
			sctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				s.Log.Warn("api_shutdown_error", zap.Error(err))
			}
			return nil
		})
	}

	_ = g.Wait()
	err := serveErr
	if err != nil {
		s.Log.Error("shutdown", zap.Error(err))
	} else {
		s.Log.Info("shutdown")
	}
	return err
}

func (s *Supervisor) monitorOptions() []monitor.Option {
	var opts []monitor.Option
	if s.Observer != nil {
		opts = append(opts, monitor.WithObserver(s.Observer))
	}
	if s.Clock != nil {
		opts = append(opts, monitor.WithClock(s.Clock))
	}
	return opts
}
