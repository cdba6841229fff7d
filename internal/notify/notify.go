package notify

import (
	"context"
	"errors"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ErrDisabled is returned by a channel that was not configured.
var ErrDisabled = errors.New("notify: channel disabled")

// Notifier delivers one alert message. Failures are returned, never panicked;
// callers decide how loudly to report them.
type Notifier interface {
	Send(ctx context.Context, subject, body string) error
}

// Multi fans a message out to every channel. Each channel is attempted even
// if an earlier one fails; all failures are combined.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, subject, body string) error {
	var err error
	for _, n := range m {
		if n == nil {
			continue
		}
		err = multierr.Append(err, n.Send(ctx, subject, body))
	}
	return err
}

// Log writes alerts to the logger instead of delivering them. It keeps alerts
// visible when no real channel is configured.
type Log struct {
	Logger *zap.Logger
}

func (l Log) Send(_ context.Context, subject, body string) error {
	l.Logger.Warn("alert_logged", zap.String("subject", subject), zap.String("body", body))
	return nil
}

// Settings are the static notification parameters read at startup.
type Settings struct {
	Recipient    string
	Sender       string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SlackWebhook string
}

// Build assembles the configured channels. With nothing configured it falls
// back to Log.
func Build(s Settings, log *zap.Logger) Notifier {
	var out Multi
	if e := NewEmail(s); e != nil {
		out = append(out, e)
		log.Info("notify_channel", zap.String("type", "email"), zap.String("recipient", s.Recipient))
	}
	if sl := NewSlack(s.SlackWebhook); sl != nil {
		out = append(out, sl)
		log.Info("notify_channel", zap.String("type", "slack"))
	}
	if len(out) == 0 {
		log.Warn("notify_no_channels", zap.String("fallback", "log"))
		return Log{Logger: log}
	}
	return out
}
