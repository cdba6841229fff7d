package monitor

import (
	"time"

	"github.com/hamed0406/svrmonitor/internal/domain"
)

// Config holds the timing and threshold inputs of one endpoint monitor.
type Config struct {
	ProbeTimeout        time.Duration
	RequeryInterval     time.Duration // sleep while failing or confirmed down
	HealthyPollInterval time.Duration // sleep while healthy
	FailureThreshold    int           // consecutive Down verdicts to confirm down
	InitialAlertDelay   time.Duration // confirmed-down time before the first alert
	ReminderInterval    time.Duration // minimum spacing between later alerts
	NotifyTimeout       time.Duration // bound on a single notification attempt
}

func DefaultConfig() Config {
	return Config{
		ProbeTimeout:        10 * time.Second,
		RequeryInterval:     15 * time.Second,
		HealthyPollInterval: 60 * time.Second,
		FailureThreshold:    3,
		InitialAlertDelay:   5 * time.Minute,
		ReminderInterval:    2 * time.Minute,
		NotifyTimeout:       30 * time.Second,
	}
}

// State is the mutable health of one endpoint. It is owned by a single
// monitor goroutine and never shared.
//
// DownSince is set iff the endpoint is confirmed down. LastAlertSentAt is only
// ever set while DownSince is set.
type State struct {
	ConsecutiveFailures int
	DownSince           *time.Time
	LastAlertSentAt     *time.Time
}

func (s *State) reset() {
	s.ConsecutiveFailures = 0
	s.DownSince = nil
	s.LastAlertSentAt = nil
}

// Decision is what one evaluation asks the monitor to do.
type Decision struct {
	Alert     domain.AlertKind // empty when no alert is due
	DownFor   time.Duration    // elapsed confirmed-down time at evaluation
	Confirmed bool             // the endpoint became confirmed down this cycle
	Recovered bool             // an Up verdict ended a confirmed-down episode
	Sleep     time.Duration
}

// Evaluate applies one probe verdict to st and returns the resulting
// decision. At most one alert is decided per call. An alert attempt advances
// LastAlertSentAt whether or not delivery later succeeds.
func Evaluate(st *State, cfg Config, v domain.Verdict, now time.Time) Decision {
	if v != domain.Up {
		st.ConsecutiveFailures++
		d := Decision{Sleep: cfg.RequeryInterval}
		if st.ConsecutiveFailures < cfg.FailureThreshold {
			return d
		}

		if st.DownSince == nil {
			since := now
			st.DownSince = &since
			d.Confirmed = true
		}
		d.DownFor = now.Sub(*st.DownSince)

		switch {
		case st.LastAlertSentAt == nil && d.DownFor >= cfg.InitialAlertDelay:
			d.Alert = domain.AlertDown
		case st.LastAlertSentAt != nil && now.Sub(*st.LastAlertSentAt) >= cfg.ReminderInterval:
			d.Alert = domain.AlertReminder
		}
		if d.Alert != "" {
			sent := now
			st.LastAlertSentAt = &sent
		}
		return d
	}

	d := Decision{Sleep: cfg.HealthyPollInterval}
	if st.DownSince != nil {
		d.Recovered = true
		d.DownFor = now.Sub(*st.DownSince)
		// A sub-threshold blip or an episode still inside the initial delay
		// had nothing announced, so there is nothing to resolve.
		if st.LastAlertSentAt != nil {
			d.Alert = domain.AlertRecovery
		}
	}
	st.reset()
	return d
}
