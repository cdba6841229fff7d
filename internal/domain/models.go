package domain

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

type EndpointID string

// Endpoint is one monitored target. It never changes after startup.
type Endpoint struct {
	ID     EndpointID `json:"id"`
	Target string     `json:"target"`
}

// NewEndpoints builds endpoints for the given targets. IDs are derived from
// the target host and made unique by suffixing "-2", "-3", ... on collision.
// A suffixed ID never reuses an ID already handed out, natural or suffixed.
func NewEndpoints(targets []string) []Endpoint {
	taken := make(map[EndpointID]bool, len(targets))
	next := make(map[EndpointID]int, len(targets))
	out := make([]Endpoint, 0, len(targets))
	for _, t := range targets {
		t = strings.TrimSpace(t)
		base := EndpointID(hostLabel(t))
		id := base
		if taken[id] {
			n := max(next[base], 2)
			for taken[suffixed(base, n)] {
				n++
			}
			id = suffixed(base, n)
			next[base] = n + 1
		}
		taken[id] = true
		out = append(out, Endpoint{ID: id, Target: t})
	}
	return out
}

func suffixed(base EndpointID, n int) EndpointID {
	return EndpointID(fmt.Sprintf("%s-%d", base, n))
}

// hostLabel pulls "host[:port]" out of a URL or passes a bare address through.
func hostLabel(target string) string {
	if strings.Contains(target, "://") {
		if u, err := url.Parse(target); err == nil && u.Host != "" {
			return strings.ToLower(u.Host)
		}
		return target
	}
	if host, port, err := net.SplitHostPort(target); err == nil {
		return strings.ToLower(net.JoinHostPort(host, port))
	}
	return strings.ToLower(target)
}

// Verdict is the binary outcome of one probe.
type Verdict string

const (
	Up   Verdict = "up"
	Down Verdict = "down"
)

func VerdictOf(success bool) Verdict {
	if success {
		return Up
	}
	return Down
}

type AlertKind string

const (
	AlertDown     AlertKind = "down"
	AlertReminder AlertKind = "reminder"
	AlertRecovery AlertKind = "recovery"
)

// Alert is one outbound notification decided by a monitor.
type Alert struct {
	Kind     AlertKind     `json:"kind"`
	Endpoint Endpoint      `json:"endpoint"`
	DownFor  time.Duration `json:"down_for"`
	At       time.Time     `json:"at"`
	Subject  string        `json:"subject"`
	Body     string        `json:"body"`
}

type EventKind string

const (
	EventConfirmedDown EventKind = "confirmed_down"
	EventAlertSent     EventKind = "alert_sent"
	EventNotifyFailed  EventKind = "notify_failed"
	EventRecovered     EventKind = "recovered"
)

// Event is a journal entry for a state transition or an alert attempt.
type Event struct {
	ID         string     `json:"id"`
	EndpointID EndpointID `json:"endpoint_id"`
	Target     string     `json:"target"`
	Kind       EventKind  `json:"kind"`
	AlertKind  AlertKind  `json:"alert_kind,omitempty"`
	DownForMS  int64      `json:"down_for_ms,omitempty"`
	Message    string     `json:"message,omitempty"`
	At         time.Time  `json:"at"`
}

// Snapshot is a read-only copy of one endpoint's health, published after
// every monitor cycle.
type Snapshot struct {
	Endpoint            Endpoint   `json:"endpoint"`
	Verdict             Verdict    `json:"verdict"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	DownSince           *time.Time `json:"down_since,omitempty"`
	LastAlertSentAt     *time.Time `json:"last_alert_sent_at,omitempty"`
	StatusCode          int        `json:"status_code,omitempty"`
	LatencyMS           float64    `json:"latency_ms"`
	Message             string     `json:"message,omitempty"`
	CheckedAt           time.Time  `json:"checked_at"`
}

// ConfirmedDown reports whether the endpoint crossed the failure threshold
// and has not seen an Up verdict since.
func (s Snapshot) ConfirmedDown() bool { return s.DownSince != nil }
