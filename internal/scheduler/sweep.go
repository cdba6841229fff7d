package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/svrmonitor/internal/domain"
	"github.com/hamed0406/svrmonitor/internal/probe"
)

// SweepResult is the outcome of one probe of one endpoint.
type SweepResult struct {
	Endpoint domain.Endpoint
	Result   probe.CheckResult
}

// Sweeper probes a set of endpoints once, concurrently. It keeps no state
// and sends no alerts; `monitor check` uses it for a one-shot health table.
type Sweeper struct {
	Logger      *zap.Logger
	CheckerFor  func(domain.Endpoint) probe.Checker
	Timeout     time.Duration
	Concurrency int
}

func NewSweeper(
	logger *zap.Logger,
	checkerFor func(domain.Endpoint) probe.Checker,
	timeout time.Duration,
	concurrency int,
) *Sweeper {
	if concurrency < 1 {
		concurrency = 1
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Sweeper{
		Logger:      logger,
		CheckerFor:  checkerFor,
		Timeout:     timeout,
		Concurrency: concurrency,
	}
}

// Run probes every endpoint and returns the results in input order.
func (s *Sweeper) Run(ctx context.Context, eps []domain.Endpoint) []SweepResult {
	out := make([]SweepResult, len(eps))
	sem := make(chan struct{}, s.Concurrency)
	var wg sync.WaitGroup

	for i, ep := range eps {
		sem <- struct{}{}
		wg.Add(1)
		go func(i int, ep domain.Endpoint) {
			defer func() { <-sem }()
			defer wg.Done()

			cctx, cancel := context.WithTimeout(ctx, s.Timeout)
			defer cancel()

			res := s.CheckerFor(ep).Check(cctx, ep.Target)
			out[i] = SweepResult{Endpoint: ep, Result: res}
			s.Logger.Debug("sweep_checked",
				zap.String("endpoint", string(ep.ID)),
				zap.String("target", ep.Target),
				zap.Int("status", res.StatusCode),
				zap.Bool("up", res.Success),
				zap.Float64("latency_ms", res.LatencyMS),
				zap.String("reason", res.Message),
			)
		}(i, ep)
	}

	wg.Wait()
	return out
}
