package monitor

import (
	"context"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hamed0406/svrmonitor/internal/domain"
	"github.com/hamed0406/svrmonitor/internal/notify"
	"github.com/hamed0406/svrmonitor/internal/probe"
)

// Observer receives read-only output of a monitor: a snapshot after every
// cycle and an event for each transition or alert attempt. Implementations
// must be safe for use by many monitors at once.
type Observer interface {
	Observe(s domain.Snapshot)
	Record(ctx context.Context, ev domain.Event)
}

// Observers fans out to several observers.
type Observers []Observer

func (o Observers) Observe(s domain.Snapshot) {
	for _, x := range o {
		x.Observe(s)
	}
}

func (o Observers) Record(ctx context.Context, ev domain.Event) {
	for _, x := range o {
		x.Record(ctx, ev)
	}
}

// Monitor drives the health state machine of a single endpoint.
type Monitor struct {
	ep       domain.Endpoint
	cfg      Config
	checker  probe.Checker
	notifier notify.Notifier
	observer Observer
	clock    clock.Clock
	log      *zap.Logger

	state State
}

type Option func(*Monitor)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c clock.Clock) Option { return func(m *Monitor) { m.clock = c } }

func WithObserver(o Observer) Option { return func(m *Monitor) { m.observer = o } }

func New(ep domain.Endpoint, cfg Config, checker probe.Checker, notifier notify.Notifier, log *zap.Logger, opts ...Option) *Monitor {
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = 1
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = DefaultConfig().NotifyTimeout
	}
	m := &Monitor{
		ep:       ep,
		cfg:      cfg,
		checker:  checker,
		notifier: notifier,
		observer: Observers(nil),
		clock:    clock.New(),
		log:      log.With(zap.String("endpoint", string(ep.ID)), zap.String("target", ep.Target)),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Run probes the endpoint forever: probe, evaluate, notify, sleep. It only
// returns once ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	m.log.Info("monitor_started",
		zap.Int("failure_threshold", m.cfg.FailureThreshold),
		zap.Duration("requery_interval", m.cfg.RequeryInterval),
		zap.Duration("healthy_poll_interval", m.cfg.HealthyPollInterval),
	)
	for {
		sleep := m.cycle(ctx)
		if ctx.Err() != nil {
			m.log.Info("monitor_stopped")
			return
		}

		t := m.clock.Timer(sleep)
		select {
		case <-ctx.Done():
			t.Stop()
			m.log.Info("monitor_stopped")
			return
		case <-t.C:
		}
	}
}

// cycle runs one probe-evaluate step and returns how long to sleep. A panic
// anywhere in the step is logged and the monitor carries on at the requery
// cadence.
func (m *Monitor) cycle(ctx context.Context) (sleep time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("monitor_cycle_panic", zap.Any("panic", r), zap.Stack("stack"))
			sleep = m.cfg.RequeryInterval
		}
	}()

	pctx, cancel := context.WithTimeout(ctx, m.cfg.ProbeTimeout)
	res := m.checker.Check(pctx, m.ep.Target)
	cancel()
	if ctx.Err() != nil {
		// Shutting down; a cancelled probe says nothing about the endpoint.
		return 0
	}

	now := m.clock.Now()
	v := domain.VerdictOf(res.Success)
	d := Evaluate(&m.state, m.cfg, v, now)
	m.logVerdict(v, res, d)

	if d.Confirmed {
		m.record(ctx, domain.EventConfirmedDown, "", d.DownFor, res.Message, now)
	}
	if d.Recovered {
		m.record(ctx, domain.EventRecovered, "", d.DownFor, res.Message, now)
	}
	if d.Alert != "" {
		m.alert(ctx, render(d.Alert, m.ep, d.DownFor, now))
	}

	m.observer.Observe(m.snapshot(v, res, now))
	return d.Sleep
}

func (m *Monitor) alert(ctx context.Context, a domain.Alert) {
	nctx, cancel := context.WithTimeout(ctx, m.cfg.NotifyTimeout)
	err := m.notifier.Send(nctx, a.Subject, a.Body)
	cancel()

	if err != nil {
		m.log.Error("notify_failed",
			zap.String("kind", string(a.Kind)),
			zap.String("subject", a.Subject),
			zap.Error(err),
		)
		m.record(ctx, domain.EventNotifyFailed, a.Kind, a.DownFor, err.Error(), a.At)
		return
	}
	m.log.Warn("alert_sent",
		zap.String("kind", string(a.Kind)),
		zap.String("subject", a.Subject),
		zap.Duration("down_for", a.DownFor),
	)
	m.record(ctx, domain.EventAlertSent, a.Kind, a.DownFor, a.Subject, a.At)
}

func (m *Monitor) logVerdict(v domain.Verdict, res probe.CheckResult, d Decision) {
	switch {
	case v == domain.Up && d.Recovered:
		m.log.Info("endpoint_recovered", zap.Duration("down_for", d.DownFor), zap.Bool("alerted", d.Alert != ""))
	case v == domain.Up:
		m.log.Debug("endpoint_up",
			zap.Int("status", res.StatusCode),
			zap.Float64("latency_ms", res.LatencyMS),
			zap.Duration("next_check", d.Sleep),
		)
	default:
		fields := []zap.Field{
			zap.String("reason", res.Message),
			zap.Int("status", res.StatusCode),
			zap.Int("consecutive_failures", m.state.ConsecutiveFailures),
			zap.Int("failure_threshold", m.cfg.FailureThreshold),
		}
		if strings.HasPrefix(res.Message, "unexpected_error") {
			m.log.Error("probe_failed", fields...)
		} else {
			m.log.Warn("probe_failed", fields...)
		}
		switch {
		case d.Confirmed:
			m.log.Warn("endpoint_confirmed_down", zap.Duration("initial_alert_delay", m.cfg.InitialAlertDelay))
		case m.state.DownSince != nil:
			m.log.Info("endpoint_still_down", zap.Duration("down_for", d.DownFor))
		}
	}
}

func (m *Monitor) record(ctx context.Context, kind domain.EventKind, ak domain.AlertKind, downFor time.Duration, msg string, at time.Time) {
	m.observer.Record(ctx, domain.Event{
		ID:         uuid.NewString(),
		EndpointID: m.ep.ID,
		Target:     m.ep.Target,
		Kind:       kind,
		AlertKind:  ak,
		DownForMS:  downFor.Milliseconds(),
		Message:    msg,
		At:         at.UTC(),
	})
}

func (m *Monitor) snapshot(v domain.Verdict, res probe.CheckResult, now time.Time) domain.Snapshot {
	return domain.Snapshot{
		Endpoint:            m.ep,
		Verdict:             v,
		ConsecutiveFailures: m.state.ConsecutiveFailures,
		DownSince:           copyTime(m.state.DownSince),
		LastAlertSentAt:     copyTime(m.state.LastAlertSentAt),
		StatusCode:          res.StatusCode,
		LatencyMS:           res.LatencyMS,
		Message:             res.Message,
		CheckedAt:           now.UTC(),
	}
}

// State returns a copy of the current state. It must only be called from the
// goroutine running the monitor, or when the monitor is not running.
func (m *Monitor) State() State {
	return State{
		ConsecutiveFailures: m.state.ConsecutiveFailures,
		DownSince:           copyTime(m.state.DownSince),
		LastAlertSentAt:     copyTime(m.state.LastAlertSentAt),
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
