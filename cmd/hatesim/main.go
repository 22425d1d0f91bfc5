package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/hatelist/internal/ai"
	"github.com/udisondev/hatelist/internal/config"
	"github.com/udisondev/hatelist/internal/hate"
)

const ConfigPath = "config/hatesim.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("HATESIM_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadZoneServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading zone config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	ai.EnableDebugLogging(logLevel == slog.LevelDebug)
	hate.EnableDebugLogging(logLevel == slog.LevelDebug)

	slog.Info("hatesim starting",
		"log_level", cfg.LogLevel,
		"tick_interval", cfg.TickInterval,
		"smart_aggro", cfg.Aggro.SmartAggroList,
		"scripts_dir", cfg.ScriptsDir)

	z, err := newZone(cfg, os.Stdout)
	if err != nil {
		return err
	}
	defer z.close()

	enc, err := newEncounter(z)
	if err != nil {
		return fmt.Errorf("setting up encounter: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := z.ticks.Start(gctx); err != nil {
			return fmt.Errorf("AI tick manager: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return enc.run(gctx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}

	slog.Info("hatesim finished", "creatures", z.reg.Count())
	return nil
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
