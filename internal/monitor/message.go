package monitor

import (
	"fmt"
	"time"

	"github.com/hamed0406/svrmonitor/internal/domain"
)

// render builds the subject and body of an alert.
func render(kind domain.AlertKind, ep domain.Endpoint, downFor time.Duration, at time.Time) domain.Alert {
	a := domain.Alert{Kind: kind, Endpoint: ep, DownFor: downFor, At: at}
	switch kind {
	case domain.AlertDown:
		a.Subject = "CRITICAL: Server Down Alert - " + ep.Target
		a.Body = fmt.Sprintf("The server '%s' has been continuously down for %s (since %s).",
			ep.Target, humanDuration(downFor), at.Add(-downFor).Format(time.RFC3339))
	case domain.AlertReminder:
		a.Subject = "REMINDER: Server Still Down - " + ep.Target
		a.Body = fmt.Sprintf("The server '%s' is still down. It has been down for approximately %s.",
			ep.Target, humanDuration(downFor))
	case domain.AlertRecovery:
		a.Subject = "RESOLVED: Server Back Up - " + ep.Target
		a.Body = fmt.Sprintf("The server '%s' is now back up. It was down for approximately %s.",
			ep.Target, humanDuration(downFor))
	}
	return a
}

// humanDuration renders d as "N minutes and M seconds".
func humanDuration(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%d minutes and %d seconds", secs/60, secs%60)
}
