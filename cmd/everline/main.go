// everline polls the Everline realtime feed and serves it over HTTP.
// Usage: go run ./cmd/everline --config configs/everline.example.yaml
//
// Without --config the built-in defaults are used. A .env file in the
// working directory is loaded first so the config can reference ${VARS}.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/everline-data/internal/api"
	"github.com/rickgao/everline-data/internal/config"
	"github.com/rickgao/everline-data/internal/metrics"
	"github.com/rickgao/everline-data/internal/poller"
	"github.com/rickgao/everline-data/internal/server"
	"github.com/rickgao/everline-data/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults when empty)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to load .env", "error", err)
	}

	logger.Info("starting everline",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"upstream", cfg.Upstream.URL,
		"interval", cfg.Poller.Interval,
		"addr", cfg.Server.Addr,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := api.NewClient(cfg.Upstream.URL,
		api.WithLogger(logger),
		api.WithTimeout(cfg.Upstream.Timeout),
	)

	var (
		m    *metrics.Metrics
		opts []poller.Option
	)
	metricsPath := ""
	if cfg.MetricsEnabled() {
		m = metrics.New()
		opts = append(opts, poller.WithObserver(m))
		metricsPath = cfg.Metrics.Path
	}

	p := poller.New(poller.Config{
		Interval: cfg.Poller.Interval,
		Timeout:  cfg.Upstream.Timeout,
	}, client, nil, logger.With("component", "poller"), opts...)

	srv := server.New(server.Config{
		Addr:           cfg.Server.Addr,
		InstanceID:     cfg.Instance.ID,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		StaleAfter:     cfg.Poller.StaleAfter,
		MetricsPath:    metricsPath,
	}, p, m, logger.With("component", "server"))
	p.AddHandler(srv.Hub())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := p.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return p.Stop(shutdownCtx)
	})

	g.Go(func() error {
		return srv.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("everline stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("everline stopped")
}
