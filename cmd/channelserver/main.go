package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/mabigo/internal/config"
	"github.com/udisondev/mabigo/internal/data"
	"github.com/udisondev/mabigo/internal/db"
	"github.com/udisondev/mabigo/internal/gameserver"
)

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
	// Config first, it decides the log level
	cfg, err := config.LoadChannelServer(config.ChannelServerPath())
	if err != nil {
		return fmt.Errorf("loading channel server config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	slog.Info("mabigo channel server starting", "log_level", cfg.LogLevel)

	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	skills, err := data.LoadSkillDb(cfg.SkillDataPath)
	if err != nil {
		return fmt.Errorf("loading skill data: %w", err)
	}

	w, err := gameserver.BuildWorld(cfg.Regions)
	if err != nil {
		return fmt.Errorf("building world: %w", err)
	}
	slog.Info("world ready", "regions", w.RegionCount(), "creatures", w.CreatureCount())

	srv := gameserver.NewServer(cfg, database.Accounts(), skills, w)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Run(gctx); err != nil {
			return fmt.Errorf("channel server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return srv.RunAutosave(gctx, cfg.AutosaveInterval)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("mabigo channel server stopped")
	return nil
}
