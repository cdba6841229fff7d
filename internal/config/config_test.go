package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SVRMON_ENDPOINTS", "https://a.example, https://b.example")

	cfg, err := Load("", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Endpoints)
	assert.Equal(t, 10*time.Second, cfg.Probe.Timeout)
	assert.True(t, cfg.Probe.InsecureTLS)
	assert.Equal(t, 3, cfg.Monitor.FailureThreshold)
	assert.Equal(t, 15*time.Second, cfg.Monitor.RequeryInterval)
	assert.Equal(t, 60*time.Second, cfg.Monitor.HealthyPollInterval)
	assert.Equal(t, 5*time.Minute, cfg.Monitor.InitialAlertDelay)
	assert.Equal(t, 2*time.Minute, cfg.Monitor.ReminderInterval)
	assert.Equal(t, 30*time.Second, cfg.Monitor.NotifyTimeout)
	assert.Equal(t, "smtp.gmail.com", cfg.Notify.SMTP.Host)
	assert.Equal(t, 587, cfg.Notify.SMTP.Port)
	assert.Equal(t, time.Hour, cfg.Reboot.Interval)
	assert.Equal(t, "sudo reboot", cfg.Reboot.Command)
	assert.Equal(t, "memory", cfg.Journal.Driver)
	assert.Equal(t, 500, cfg.Journal.Limit)
	assert.Empty(t, cfg.API.Addr)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "svrmonitor.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
endpoints:
  - https://a.example
  - db.internal:5432
monitor:
  failure_threshold: 5
  initial_alert_delay: 1m
notify:
  sender: monitor@example.com
  recipient: ops@example.com
api:
  addr: ":8080"
  admin_keys: [adm_x]
reboot:
  interval: 0
`), 0o600))
	t.Setenv("SVRMON_MONITOR_FAILURE_THRESHOLD", "2")
	t.Setenv("SVRMON_NOTIFY_SMTP_PASSWORD", "app-password")

	cfg, err := Load(file, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example", "db.internal:5432"}, cfg.Endpoints)
	assert.Equal(t, 2, cfg.Monitor.FailureThreshold, "env wins over file")
	assert.Equal(t, time.Minute, cfg.Monitor.InitialAlertDelay)
	assert.Equal(t, "app-password", cfg.Notify.SMTP.Password)
	assert.Equal(t, []string{"adm_x"}, cfg.API.AdminKeys)
	assert.Zero(t, cfg.Reboot.Interval)

	mc := cfg.MonitorConfig()
	assert.Equal(t, 2, mc.FailureThreshold)
	assert.Equal(t, 10*time.Second, mc.ProbeTimeout)

	ns := cfg.NotifySettings()
	assert.Equal(t, "smtp.gmail.com", ns.SMTPHost)
	assert.Equal(t, "ops@example.com", ns.Recipient)

	eps := cfg.EndpointList()
	require.Len(t, eps, 2)
	assert.Equal(t, "db.internal:5432", string(eps[1].ID))
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("SVRMON_LOG_LEVEL=debug\n"), 0o600))
	// Registers cleanup of the variable godotenv is about to set.
	t.Setenv("SVRMON_LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("SVRMON_LOG_LEVEL"))

	cfg, err := Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingFiles(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "")
	assert.Error(t, err)

	_, err = Load("", filepath.Join(t.TempDir(), "nope.env"))
	assert.Error(t, err)
}

func validConfig() Config {
	return Config{
		Endpoints: []string{"https://a.example"},
		Probe:     ProbeConfig{Timeout: time.Second},
		Monitor: MonitorConfig{
			FailureThreshold:    3,
			RequeryInterval:     15 * time.Second,
			HealthyPollInterval: time.Minute,
			InitialAlertDelay:   5 * time.Minute,
			ReminderInterval:    2 * time.Minute,
			NotifyTimeout:       30 * time.Second,
		},
		Journal: JournalConfig{Driver: "memory"},
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	c := validConfig()
	require.NoError(t, c.Validate())

	c.Endpoints = nil
	c.Monitor.FailureThreshold = 0
	c.Monitor.RequeryInterval = 0
	c.Journal.Driver = "sqlite"
	c.Reboot.Interval = 10 * time.Second

	err := c.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoEndpoints))
	assert.True(t, errors.Is(err, ErrInvalid))
	assert.Len(t, multierr.Errors(err), 5)
}

func TestValidate_DuplicateEndpoints(t *testing.T) {
	c := validConfig()
	c.Endpoints = []string{"https://a.example", "https://a.example"}
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate endpoint")
}

func TestWarnings(t *testing.T) {
	c := validConfig()
	assert.Contains(t, c.Warnings(), "no notification channel configured; alerts will only be logged")

	c.Notify = NotifyConfig{SlackWebhook: "https://hooks.slack.example/x"}
	for _, w := range c.Warnings() {
		assert.NotContains(t, w, "no notification channel")
	}
}
