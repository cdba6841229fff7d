package scheduler

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Runner executes a host command.
type Runner func(ctx context.Context, command string) error

// ShellRunner runs command through /bin/sh.
func ShellRunner(ctx context.Context, command string) error {
	out, err := exec.CommandContext(ctx, "sh", "-c", command).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w (%s)", command, err, out)
	}
	return nil
}

// Rebooter fires a host command on a fixed interval. It is fire-and-forget:
// nothing observes whether the command succeeded and nothing is retried.
type Rebooter struct {
	Interval time.Duration
	Command  string
	Runner   Runner
	Logger   *zap.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

func NewRebooter(logger *zap.Logger, interval time.Duration, command string) *Rebooter {
	return &Rebooter{
		Interval: interval,
		Command:  command,
		Runner:   ShellRunner,
		Logger:   logger,
	}
}

// Enabled reports whether a schedule is configured.
func (r *Rebooter) Enabled() bool { return r.Interval > 0 && r.Command != "" }

// Start registers the schedule and returns immediately. It is a no-op when
// the rebooter is disabled or already started.
func (r *Rebooter) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.Enabled() {
		r.Logger.Info("reboot_disabled")
		return
	}
	if r.cron != nil {
		return
	}
	r.cron = cron.New()
	r.cron.Schedule(cron.Every(r.Interval), cron.FuncJob(r.fire))
	r.cron.Start()
	r.Logger.Info("reboot_scheduled",
		zap.Duration("interval", r.Interval),
		zap.String("command", r.Command),
	)
}

// Stop removes the schedule and waits for a running command to return.
func (r *Rebooter) Stop() {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	r.Logger.Info("reboot_stopped")
}

// Run starts the schedule and blocks until ctx is cancelled.
func (r *Rebooter) Run(ctx context.Context) {
	r.Start()
	<-ctx.Done()
	r.Stop()
}

func (r *Rebooter) fire() {
	r.Logger.Info("reboot_triggered",
		zap.Duration("interval", r.Interval),
		zap.String("command", r.Command),
	)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := r.Runner(ctx, r.Command); err != nil {
		r.Logger.Error("reboot_failed", zap.Error(err))
	}
}
