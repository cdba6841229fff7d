// cmd/preflight/main.go
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/hamed0406/svrmonitor/internal/config"
)

func main() {
	var cfgFile, envFile string
	cmd := &cobra.Command{
		Use:           "preflight",
		Short:         "Validate monitor configuration before deploying",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !preflight(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfgFile, envFile) {
				return fmt.Errorf("preflight failed")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cfgFile, "config", "", "YAML config file")
	cmd.Flags().StringVar(&envFile, "env-file", "", "dotenv file to load first")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// preflight prints one line per finding and reports whether the
// configuration is usable.
func preflight(stdout, stderr io.Writer, cfgFile, envFile string) bool {
	fail := func(msg string) { fmt.Fprintln(stderr, "✖", msg) }
	warn := func(msg string) { fmt.Fprintln(stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Fprintln(stdout, "✔", msg) }

	cfg, err := config.Load(cfgFile, envFile)
	if err != nil {
		fail(err.Error())
		return false
	}

	passed := true
	if err := cfg.Validate(); err != nil {
		for _, e := range multierr.Errors(err) {
			fail(e.Error())
		}
		passed = false
	}
	for _, w := range cfg.Warnings() {
		warn(w)
	}

	for _, ep := range cfg.EndpointList() {
		ok(fmt.Sprintf("endpoint %s (%s)", ep.ID, ep.Target))
	}
	ok(fmt.Sprintf("alert after %d failures, first alert after %s, reminders every %s",
		cfg.Monitor.FailureThreshold, cfg.Monitor.InitialAlertDelay, cfg.Monitor.ReminderInterval))
	if cfg.API.Addr != "" {
		ok("status API on " + cfg.API.Addr)
	}
	ok("journal driver " + cfg.Journal.Driver)

	if passed {
		ok("preflight passed")
	}
	return passed
}
