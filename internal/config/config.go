package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/hamed0406/svrmonitor/internal/domain"
	"github.com/hamed0406/svrmonitor/internal/monitor"
	"github.com/hamed0406/svrmonitor/internal/notify"
	"github.com/hamed0406/svrmonitor/internal/probe"
)

// EnvPrefix namespaces environment overrides, e.g. SVRMON_MONITOR_FAILURE_THRESHOLD.
const EnvPrefix = "SVRMON"

var (
	ErrNoEndpoints = errors.New("config: no endpoints configured")
	ErrInvalid     = errors.New("config: invalid value")
)

type Config struct {
	Endpoints []string      `mapstructure:"endpoints"`
	Probe     ProbeConfig   `mapstructure:"probe"`
	Monitor   MonitorConfig `mapstructure:"monitor"`
	Notify    NotifyConfig  `mapstructure:"notify"`
	Reboot    RebootConfig  `mapstructure:"reboot"`
	Log       LogConfig     `mapstructure:"log"`
	API       APIConfig     `mapstructure:"api"`
	Journal   JournalConfig `mapstructure:"journal"`
}

type ProbeConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	InsecureTLS  bool          `mapstructure:"insecure_tls"`
	DNSDiagnosis bool          `mapstructure:"dns_diagnosis"`
}

type MonitorConfig struct {
	FailureThreshold    int           `mapstructure:"failure_threshold"`
	RequeryInterval     time.Duration `mapstructure:"requery_interval"`
	HealthyPollInterval time.Duration `mapstructure:"healthy_poll_interval"`
	InitialAlertDelay   time.Duration `mapstructure:"initial_alert_delay"`
	ReminderInterval    time.Duration `mapstructure:"reminder_interval"`
	NotifyTimeout       time.Duration `mapstructure:"notify_timeout"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type NotifyConfig struct {
	Recipient    string     `mapstructure:"recipient"`
	Sender       string     `mapstructure:"sender"`
	SMTP         SMTPConfig `mapstructure:"smtp"`
	SlackWebhook string     `mapstructure:"slack_webhook"`
}

type RebootConfig struct {
	Interval time.Duration `mapstructure:"interval"` // 0 disables
	Command  string        `mapstructure:"command"`
}

type LogConfig struct {
	Dir     string `mapstructure:"dir"`
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

type APIConfig struct {
	Addr           string   `mapstructure:"addr"` // empty disables the status server
	PublicKeys     []string `mapstructure:"public_keys"`
	AdminKeys      []string `mapstructure:"admin_keys"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	RPM            int      `mapstructure:"rpm"`
	Burst          int      `mapstructure:"burst"`
}

type JournalConfig struct {
	Driver string `mapstructure:"driver"` // memory|postgres|sqlite
	DSN    string `mapstructure:"dsn"`
	Limit  int    `mapstructure:"limit"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("endpoints", []string{})

	v.SetDefault("probe.timeout", "10s")
	v.SetDefault("probe.insecure_tls", true)
	v.SetDefault("probe.dns_diagnosis", true)

	v.SetDefault("monitor.failure_threshold", 3)
	v.SetDefault("monitor.requery_interval", "15s")
	v.SetDefault("monitor.healthy_poll_interval", "60s")
	v.SetDefault("monitor.initial_alert_delay", "5m")
	v.SetDefault("monitor.reminder_interval", "2m")
	v.SetDefault("monitor.notify_timeout", "30s")

	v.SetDefault("notify.recipient", "")
	v.SetDefault("notify.sender", "")
	v.SetDefault("notify.smtp.host", "smtp.gmail.com")
	v.SetDefault("notify.smtp.port", 587)
	v.SetDefault("notify.smtp.username", "")
	v.SetDefault("notify.smtp.password", "")
	v.SetDefault("notify.slack_webhook", "")

	v.SetDefault("reboot.interval", "60m")
	v.SetDefault("reboot.command", "sudo reboot")

	v.SetDefault("log.dir", "logs")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", true)

	v.SetDefault("api.addr", "")
	v.SetDefault("api.public_keys", []string{})
	v.SetDefault("api.admin_keys", []string{})
	v.SetDefault("api.allowed_origins", []string{})
	v.SetDefault("api.rpm", 120)
	v.SetDefault("api.burst", 60)

	v.SetDefault("journal.driver", "memory")
	v.SetDefault("journal.dsn", "")
	v.SetDefault("journal.limit", 500)
}

// Load reads configuration from, in increasing priority: defaults, the
// optional YAML file, and SVRMON_* environment variables. envFile, or ./.env
// when envFile is empty, is loaded into the environment first; variables
// already set win.
func Load(configFile, envFile string) (Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return Config{}, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	c.Endpoints = cleanList(c.Endpoints)
	c.API.PublicKeys = cleanList(c.API.PublicKeys)
	c.API.AdminKeys = cleanList(c.API.AdminKeys)
	c.API.AllowedOrigins = cleanList(c.API.AllowedOrigins)
	return c, nil
}

func loadEnvFile(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
		return nil
	}
	if _, err := os.Stat(".env"); err == nil {
		return godotenv.Load(".env")
	}
	return nil
}

// cleanList trims entries and drops empty ones. It also splits entries that
// still contain commas, which happens when a list arrives as one env string.
func cleanList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// Validate reports every fatal problem at once.
func (c Config) Validate() error {
	var err error
	if len(c.Endpoints) == 0 {
		err = multierr.Append(err, ErrNoEndpoints)
	}
	seen := make(map[string]bool, len(c.Endpoints))
	for _, e := range c.Endpoints {
		if seen[e] {
			err = multierr.Append(err, fmt.Errorf("%w: duplicate endpoint %q", ErrInvalid, e))
		}
		seen[e] = true
	}

	if c.Monitor.FailureThreshold < 1 {
		err = multierr.Append(err, fmt.Errorf("%w: monitor.failure_threshold must be >= 1, got %d", ErrInvalid, c.Monitor.FailureThreshold))
	}
	for _, d := range []struct {
		key string
		val time.Duration
	}{
		{"probe.timeout", c.Probe.Timeout},
		{"monitor.requery_interval", c.Monitor.RequeryInterval},
		{"monitor.healthy_poll_interval", c.Monitor.HealthyPollInterval},
		{"monitor.notify_timeout", c.Monitor.NotifyTimeout},
	} {
		if d.val <= 0 {
			err = multierr.Append(err, fmt.Errorf("%w: %s must be positive, got %s", ErrInvalid, d.key, d.val))
		}
	}
	if c.Monitor.InitialAlertDelay < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: monitor.initial_alert_delay must not be negative", ErrInvalid))
	}
	if c.Monitor.ReminderInterval < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: monitor.reminder_interval must not be negative", ErrInvalid))
	}
	if c.Reboot.Interval < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: reboot.interval must not be negative", ErrInvalid))
	}
	if c.Reboot.Interval > 0 && c.Reboot.Interval < time.Minute {
		err = multierr.Append(err, fmt.Errorf("%w: reboot.interval below 1m would reboot the host continuously", ErrInvalid))
	}

	switch c.Journal.Driver {
	case "memory", "":
	case "postgres", "sqlite":
		if c.Journal.DSN == "" {
			err = multierr.Append(err, fmt.Errorf("%w: journal.dsn is required for driver %s", ErrInvalid, c.Journal.Driver))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("%w: unknown journal.driver %q", ErrInvalid, c.Journal.Driver))
	}
	if c.API.Addr != "" && (c.API.RPM <= 0 || c.API.Burst <= 0) {
		err = multierr.Append(err, fmt.Errorf("%w: api.rpm and api.burst must be positive", ErrInvalid))
	}
	return err
}

// Warnings lists non-fatal problems worth surfacing at startup.
func (c Config) Warnings() []string {
	var w []string
	emailOK := c.Notify.Sender != "" && c.Notify.Recipient != "" && c.Notify.SMTP.Host != ""
	if !emailOK && c.Notify.SlackWebhook == "" {
		w = append(w, "no notification channel configured; alerts will only be logged")
	}
	if emailOK && c.Notify.SMTP.Password == "" {
		w = append(w, "notify.smtp.password is empty; SMTP will be attempted without authentication")
	}
	if c.Probe.InsecureTLS {
		w = append(w, "probe.insecure_tls is on; certificate errors will not mark endpoints down")
	}
	if c.Reboot.Interval > 0 {
		w = append(w, fmt.Sprintf("host reboot scheduled every %s via %q", c.Reboot.Interval, c.Reboot.Command))
	}
	if c.API.Addr != "" && len(c.API.PublicKeys) == 0 && len(c.API.AdminKeys) == 0 {
		w = append(w, "status API has no keys configured; it is open to anyone who can reach "+c.API.Addr)
	}
	return w
}

func (c Config) EndpointList() []domain.Endpoint { return domain.NewEndpoints(c.Endpoints) }

func (c Config) MonitorConfig() monitor.Config {
	return monitor.Config{
		ProbeTimeout:        c.Probe.Timeout,
		RequeryInterval:     c.Monitor.RequeryInterval,
		HealthyPollInterval: c.Monitor.HealthyPollInterval,
		FailureThreshold:    c.Monitor.FailureThreshold,
		InitialAlertDelay:   c.Monitor.InitialAlertDelay,
		ReminderInterval:    c.Monitor.ReminderInterval,
		NotifyTimeout:       c.Monitor.NotifyTimeout,
	}
}

func (c Config) ProbeOptions() probe.Options {
	return probe.Options{
		Timeout:      c.Probe.Timeout,
		InsecureTLS:  c.Probe.InsecureTLS,
		DNSDiagnosis: c.Probe.DNSDiagnosis,
	}
}

func (c Config) NotifySettings() notify.Settings {
	return notify.Settings{
		Recipient:    c.Notify.Recipient,
		Sender:       c.Notify.Sender,
		SMTPHost:     c.Notify.SMTP.Host,
		SMTPPort:     c.Notify.SMTP.Port,
		SMTPUsername: c.Notify.SMTP.Username,
		SMTPPassword: c.Notify.SMTP.Password,
		SlackWebhook: c.Notify.SlackWebhook,
	}
}
