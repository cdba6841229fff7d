package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hamed0406/svrmonitor/internal/config"
	"github.com/hamed0406/svrmonitor/internal/domain"
	"github.com/hamed0406/svrmonitor/internal/logging"
	"github.com/hamed0406/svrmonitor/internal/probe"
	"github.com/hamed0406/svrmonitor/internal/scheduler"
	"github.com/hamed0406/svrmonitor/internal/supervisor"
)

// errEndpointsDown makes `check` exit non-zero without printing a usage error.
var errEndpointsDown = errors.New("one or more endpoints are down")

var (
	cfgFile string
	envFile string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errEndpointsDown) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "monitor",
		Short:         "Watch endpoints and alert on sustained outages",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runDaemon,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (optional; SVRMON_* env vars override)")
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load first (default ./.env if present)")

	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run the monitors until interrupted (default)",
		RunE:  runDaemon,
	})
	root.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Probe every endpoint once and print a table",
		RunE:  runCheck,
	})
	return root
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgFile, envFile)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(logging.Options{Dir: cfg.Log.Dir, Level: cfg.Log.Level, Console: cfg.Log.Console})
	if err != nil {
		return err
	}
	defer logger.Sync()

	for _, w := range cfg.Warnings() {
		logger.Warn("config_warning", zap.String("detail", w))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	built, err := supervisor.FromConfig(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup_failed", zap.Error(err))
		return err
	}
	defer built.Close()

	return built.Run(ctx)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(logging.Options{Dir: cfg.Log.Dir, Level: cfg.Log.Level})
	if err != nil {
		return err
	}
	defer logger.Sync()

	popts := cfg.ProbeOptions()
	sw := scheduler.NewSweeper(logger, func(ep domain.Endpoint) probe.Checker {
		return probe.ForEndpoint(ep, popts)
	}, cfg.Probe.Timeout, 8)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results := sw.Run(ctx, cfg.EndpointList())
	fmt.Fprintln(cmd.OutOrStdout(), renderSweep(results))
	if anyDown(results) {
		return errEndpointsDown
	}
	return nil
}
