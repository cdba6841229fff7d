package probe

import "context"

// CheckResult is the unified result of a single probe.
//
// Fields:
//   - Success: the reachability verdict; anything short of a clean response is false.
//   - StatusCode: HTTP status code when available; 0 for transport/DNS/TCP errors.
//   - Message: status line on success, a classified reason on failure
//     ("timeout: ...", "connection_error: ...", "dns=NXDOMAIN", ...).
//   - Name: which checker produced the result ("HTTP", "TCP").
type CheckResult struct {
	Success    bool    `json:"success"`
	LatencyMS  float64 `json:"latency_ms"`
	Message    string  `json:"message"`
	StatusCode int     `json:"status_code,omitempty"`
	Name       string  `json:"name"`
}

// Checker performs a single check for a given target. Implementations must
// not panic or return errors: every failure is reported as Success=false.
type Checker interface {
	Check(ctx context.Context, target string) CheckResult
}
