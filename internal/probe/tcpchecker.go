package probe

import (
	"context"
	"net"
	"time"
)

// TCPChecker treats an endpoint as up when a TCP connection can be opened.
// It is used for bare "host:port" endpoints.
type TCPChecker struct {
	Timeout time.Duration
}

func NewTCPChecker(timeout time.Duration) *TCPChecker {
	return &TCPChecker{Timeout: timeout}
}

func (c *TCPChecker) Check(ctx context.Context, target string) CheckResult {
	start := time.Now()
	d := net.Dialer{Timeout: c.Timeout}
	conn, err := d.DialContext(ctx, "tcp", target)
	latency := time.Since(start).Seconds() * 1000
	if err != nil {
		return CheckResult{Name: "TCP", Success: false, Message: classify(err) + ": " + err.Error(), LatencyMS: latency}
	}
	_ = conn.Close()
	return CheckResult{Name: "TCP", Success: true, Message: "connected", LatencyMS: latency}
}
