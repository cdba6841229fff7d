package probe

import (
	"context"
	"fmt"
)

// Safe recovers a panic in Inner and reports it as a failed probe, so an
// unexpected checker bug still yields a Down verdict instead of killing the
// monitor goroutine.
type Safe struct {
	Inner Checker
}

func (s Safe) Check(ctx context.Context, target string) (out CheckResult) {
	defer func() {
		if r := recover(); r != nil {
			out = CheckResult{Name: "panic", Success: false, Message: fmt.Sprintf("unexpected_error: %v", r)}
		}
	}()
	return s.Inner.Check(ctx, target)
}
