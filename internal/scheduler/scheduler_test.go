package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hamed0406/svrmonitor/internal/domain"
	"github.com/hamed0406/svrmonitor/internal/probe"
)

// --- fakes ---

type fixedChecker struct {
	ok bool
}

func (f fixedChecker) Check(ctx context.Context, target string) probe.CheckResult {
	if f.ok {
		return probe.CheckResult{Success: true, StatusCode: 200, LatencyMS: 1, Message: "200 OK"}
	}
	return probe.CheckResult{Success: false, Message: "connection_error: refused"}
}

type countingRunner struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (c *countingRunner) run(ctx context.Context, command string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, command)
	return c.err
}

func (c *countingRunner) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

// --- sweep ---

func TestSweeper_PreservesOrder(t *testing.T) {
	eps := domain.NewEndpoints([]string{"https://up.example", "down.example:22", "https://up2.example"})
	var inflight, peak int32
	s := NewSweeper(zap.NewNop(), func(ep domain.Endpoint) probe.Checker {
		return slowChecker{inner: fixedChecker{ok: ep.ID != "down.example:22"}, inflight: &inflight, peak: &peak}
	}, time.Second, 2)

	got := s.Run(context.Background(), eps)
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	for i, r := range got {
		if r.Endpoint != eps[i] {
			t.Fatalf("result %d out of order: %v", i, r.Endpoint)
		}
	}
	if !got[0].Result.Success || got[1].Result.Success || !got[2].Result.Success {
		t.Fatalf("unexpected verdicts: %+v", got)
	}
	if atomic.LoadInt32(&peak) > 2 {
		t.Fatalf("concurrency limit exceeded: %d", peak)
	}
}

type slowChecker struct {
	inner          probe.Checker
	inflight, peak *int32
}

func (s slowChecker) Check(ctx context.Context, target string) probe.CheckResult {
	n := atomic.AddInt32(s.inflight, 1)
	defer atomic.AddInt32(s.inflight, -1)
	for {
		p := atomic.LoadInt32(s.peak)
		if n <= p || atomic.CompareAndSwapInt32(s.peak, p, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	return s.inner.Check(ctx, target)
}

// --- reboot ---

func TestRebooter_DisabledWhenIntervalZero(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := NewRebooter(zap.New(core), 0, "sudo reboot")
	rn := &countingRunner{}
	r.Runner = rn.run

	if r.Enabled() {
		t.Fatal("expected disabled")
	}
	r.Start()
	r.Stop()
	if logs.FilterMessage("reboot_disabled").Len() != 1 {
		t.Fatal("expected reboot_disabled log")
	}
	if rn.count() != 0 {
		t.Fatal("runner must not be called")
	}
}

func TestRebooter_FiresOnSchedule(t *testing.T) {
	r := NewRebooter(zap.NewNop(), time.Second, "echo reboot")
	rn := &countingRunner{}
	r.Runner = rn.run

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for rn.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("reboot command never ran")
		}
		time.Sleep(20 * time.Millisecond)
	}
	cancel()
	<-done
	if rn.calls[0] != "echo reboot" {
		t.Fatalf("unexpected command %q", rn.calls[0])
	}
}

func TestRebooter_FailureIsLoggedNotRetried(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := NewRebooter(zap.New(core), time.Hour, "sudo reboot")
	rn := &countingRunner{err: errors.New("permission denied")}
	r.Runner = rn.run

	r.fire()

	if rn.count() != 1 {
		t.Fatalf("expected exactly one attempt, got %d", rn.count())
	}
	if logs.FilterMessage("reboot_failed").Len() != 1 {
		t.Fatal("expected reboot_failed log")
	}
}

func TestShellRunner(t *testing.T) {
	if err := ShellRunner(context.Background(), "true"); err != nil {
		t.Fatalf("true: %v", err)
	}
	if err := ShellRunner(context.Background(), "exit 3"); err == nil {
		t.Fatal("expected error for non-zero exit")
	}
}
