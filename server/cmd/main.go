package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"garland/internal/config"
	"garland/internal/telemetry"
	"garland/server"
	"garland/server/application"
	"garland/server/domain"
	"garland/server/handler"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	provider, err := telemetry.New(ctx, telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled,
		ServiceName: cfg.Telemetry.ServiceName,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
	})
	if err != nil {
		log.Fatalf("telemetry error: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			slog.Error("telemetry shutdown failed", "error", err)
		}
	}()
	slog.SetDefault(telemetry.NewLogger(os.Stderr, slog.LevelInfo, provider, cfg.Telemetry.ServiceName))

	metrics, err := telemetry.NewGameMetrics(provider.Meter("garland"))
	if err != nil {
		log.Fatalf("metrics error: %v", err)
	}

	gen := application.ArenaGenerator{
		Width:      cfg.Map.Width,
		Height:     cfg.Map.Height,
		Billboards: cfg.Map.Billboards,
	}
	tuning := application.Tuning{
		TickInterval:  cfg.TickInterval(),
		SnapshotEvery: cfg.Game.SnapshotEvery,
		RespawnDelay:  cfg.Game.RespawnDelay,
		RestartDelay:  cfg.Game.RestartDelay,
	}
	factory := func(id domain.RoomID, bc domain.Broadcaster) domain.Application {
		return application.NewGame(id, bc, gen,
			application.WithTuning(tuning),
			application.WithMetrics(metrics),
			application.WithPlayerCountListener(func(n int) {
				slog.Info("player count changed", "roomID", id, "count", n)
			}),
		)
	}

	roomManager := domain.NewRoomManager(factory, cfg.TickInterval())
	roomManager.Start(ctx)

	accept := handler.NewAcceptHandler(roomManager, provider.Tracer("garland/server/handler"), handler.AcceptOptions{
		TicketSecret:      cfg.Session.TicketSecret,
		IdleTimeout:       cfg.Session.IdleTimeout,
		HeartbeatInterval: cfg.Session.HeartbeatInterval,
		MessageRate:       cfg.Session.MessageRate,
		MessageBurst:      cfg.Session.MessageBurst,
	})

	addr := net.JoinHostPort(cfg.Server.Addr, strconv.Itoa(cfg.Server.Port))
	s := server.NewServer(addr, server.Route(accept))

	go func() {
		if err := s.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()
	slog.InfoContext(ctx, "server listening", "addr", addr)

	<-ctx.Done()
	slog.InfoContext(ctx, "shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(ctx, "graceful shutdown failed", "error", err)
		if err := s.Close(); err != nil {
			slog.ErrorContext(ctx, "forced close failed", "error", err)
		}
	}
	slog.InfoContext(ctx, "server shutdown complete")
}
