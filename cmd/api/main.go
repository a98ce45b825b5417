// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/carterperez-dev/clubhouse/internal/auth"
	"github.com/carterperez-dev/clubhouse/internal/config"
	"github.com/carterperez-dev/clubhouse/internal/core"
	"github.com/carterperez-dev/clubhouse/internal/health"
	"github.com/carterperez-dev/clubhouse/internal/server"
)

const (
	drainDelay      = 5 * time.Second
	sessionSweepGap = time.Hour
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	generateKeys := flag.Bool("generate-keys", false, "write a new ES256 key pair to the configured paths and exit")
	flag.Parse()

	cmd := run
	if *generateKeys {
		cmd = writeKeys
	}

	if err := cmd(*configPath); err != nil {
		slog.Error("clubhouse exited", "error", err)
		os.Exit(1)
	}
}

func writeKeys(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := auth.GenerateKeyPair(cfg.JWT.PrivateKeyPath, cfg.JWT.PublicKeyPath); err != nil {
		return fmt.Errorf("generate key pair: %w", err)
	}
	slog.Info("key pair written", "private", cfg.JWT.PrivateKeyPath, "public", cfg.JWT.PublicKeyPath)
	return nil
}

func run(configPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := core.NewLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)
	logger.Info("starting clubhouse",
		"club", cfg.Club.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"slot_policy", cfg.Club.SlotPolicy,
	)

	telemetry, err := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
	}

	a, err := connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	checks := health.NewHandler(cfg.App.Name,
		health.Dependency{Name: "database", Checker: a.db},
		health.Dependency{Name: "redis", Checker: a.redis},
	)
	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: checks,
		Logger:        logger,
	})
	a.routes(srv.Router(), checks)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		a.sweepSessions(gctx, sessionSweepGap)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			cfg.Server.ShutdownTimeout+drainDelay+5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
			logger.Error("server shutdown", "error", err)
		}
		if telemetry != nil {
			if err := telemetry.Shutdown(shutdownCtx); err != nil {
				logger.Error("telemetry shutdown", "error", err)
			}
		}
		return nil
	})

	err = g.Wait()
	logger.Info("clubhouse stopped")
	return err
}
