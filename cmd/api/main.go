package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"host-metrics/internal/collector"
	"host-metrics/internal/config"
	"host-metrics/internal/endpoints"
	"host-metrics/internal/router"
	"host-metrics/internal/telemetry"
	"host-metrics/internal/util"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := config.Default()

	cmd := &cobra.Command{
		Use:   "host-metrics",
		Short: "Serve point-in-time CPU, memory and disk utilization over HTTP",
		Long: `host-metrics samples the local host on every request and serves the
reading as an HTML page on / and as JSON on /metrics.

Each request blocks for the CPU sampling window (1s by default).`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.Host, "host", cfg.Host, "interface to listen on")
	flags.IntVar(&cfg.Port, "port", cfg.Port, "TCP port to listen on")
	flags.BoolVar(&cfg.Debug, "debug", cfg.Debug, "development mode: verbose error pages, stderr logging, template reload")
	flags.DurationVar(&cfg.CPUInterval, "cpu-interval", cfg.CPUInterval, "CPU sampling window per request")
	flags.StringVar(&cfg.RootPath, "root-path", cfg.RootPath, "filesystem reported as disk utilization")
	flags.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "directory for "+config.LogFileName)
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "error, warn, info or debug")
	flags.StringVar(&cfg.TemplatesDir, "templates-dir", cfg.TemplatesDir, "load HTML templates from this directory (reloaded per request with --debug)")
	flags.StringVar(&cfg.PrometheusPath, "prometheus-path", cfg.PrometheusPath, "path serving Prometheus telemetry, empty to disable")

	return cmd
}

func LoggerInitialize(cfg *config.Config) (*util.ServiceLogger, error) {
	level, err := util.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if cfg.Debug {
		level = util.LOG_LEVEL_DEBUG
	}

	if err := util.CheckAndCreateLogFolder(cfg.LogDir); err != nil {
		return nil, err
	}

	logger := &util.ServiceLogger{}
	if err := logger.Init(util.LoggerOptions{
		Dir:      cfg.LogDir,
		FileName: config.LogFileName,
		Level:    level,
		Console:  cfg.Debug,
	}); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	logger.LogEvent(util.LOG_LEVEL_INFO, "Service started")
	fmt.Fprintf(os.Stderr, "\n%s: host-metrics started on %s\n", time.Now().Format(time.RFC3339), cfg.Addr())

	return logger, nil
}

func run(ctx context.Context, cfg *config.Config) error {
	logger, err := LoggerInitialize(cfg)
	if err != nil {
		return err
	}
	defer logger.DeInit()

	hostCollector := collector.NewHostCollector(
		collector.WithCPUInterval(cfg.CPUInterval),
		collector.WithRootPath(cfg.RootPath),
	)

	var pages *endpoints.Pages
	if cfg.TemplatesDir != "" {
		pages, err = endpoints.NewPages(cfg.TemplatesDir, cfg.ReloadTemplates())
		if err != nil {
			return err
		}
	}

	opts := router.Options{
		Collector:      hostCollector,
		Logger:         logger,
		Pages:          pages,
		Debug:          cfg.Debug,
		PrometheusPath: cfg.PrometheusPath,
	}
	if cfg.PrometheusPath != "" {
		opts.Telemetry = telemetry.New(hostCollector)
	}

	if cfg.Debug {
		logger.LogEvent(util.LOG_LEVEL_WARN, "Debug mode enabled: error responses include internal detail")
	}

	server := router.NewServer(cfg.Addr(), router.NewRouter(opts), cfg.CPUInterval)
	return router.Run(ctx, server, logger)
}
