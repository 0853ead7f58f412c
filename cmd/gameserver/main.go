// Package main provides the game server binary that hosts game rooms over
// WebSocket.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arcade/internal/config"
	"github.com/cory-johannsen/arcade/internal/frontend/ws"
	"github.com/cory-johannsen/arcade/internal/game/airhockey"
	"github.com/cory-johannsen/arcade/internal/game/engine"
	"github.com/cory-johannsen/arcade/internal/game/room"
	"github.com/cory-johannsen/arcade/internal/game/session"
	"github.com/cory-johannsen/arcade/internal/gameserver"
	"github.com/cory-johannsen/arcade/internal/observability"
	"github.com/cory-johannsen/arcade/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger("gameserver", cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	opts := engine.DefaultOptions()
	opts.UnoMaxSeats = cfg.Games.UnoMaxSeats
	if cfg.Games.AirHockeyTable != "" {
		table, err := airhockey.LoadTableFile(cfg.Games.AirHockeyTable)
		if err != nil {
			logger.Fatal("loading air hockey table", zap.String("path", cfg.Games.AirHockeyTable), zap.Error(err))
		}
		opts.Table = table
		logger.Info("loaded air hockey table",
			zap.String("path", cfg.Games.AirHockeyTable),
			zap.Float64("width", table.Width),
			zap.Float64("height", table.Height),
		)
	}

	registry := room.NewRegistry(opts, cfg.Games.ChatHistory, logger)
	sessions := session.NewManager()
	gameServer := gameserver.NewServer(registry, sessions, time.Now, logger)

	ticks := gameserver.NewTickManager(cfg.Games.TickInterval())
	gameServer.WireTicks(ticks, cfg.Games.BroadcastEvery)

	acceptor := ws.NewAcceptor(cfg.Server, cfg.WebSocket, gameServer, gameServer, logger)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("ticker", &server.FuncService{
		StartFn: ticks.Run,
	})
	lifecycle.Add("websocket", &server.FuncService{
		StartFn: func(context.Context) error {
			return acceptor.ListenAndServe()
		},
		StopFn: func() {
			acceptor.Stop()
			sessions.CloseAll()
		},
	})

	logger.Info("game server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("addr", cfg.Server.Addr()),
		zap.String("ws_path", cfg.Server.WSPath),
		zap.Int("tick_rate", cfg.Games.TickRate),
	)

	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
