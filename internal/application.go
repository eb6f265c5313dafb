package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/connectn-backend/internal/config"
	"github.com/rocketscienceinc/connectn-backend/internal/metrics"
	"github.com/rocketscienceinc/connectn-backend/internal/repository"
	"github.com/rocketscienceinc/connectn-backend/internal/repository/storage"
	"github.com/rocketscienceinc/connectn-backend/internal/service"
	"github.com/rocketscienceinc/connectn-backend/internal/usecase"
	"github.com/rocketscienceinc/connectn-backend/transport/rest"
	"github.com/rocketscienceinc/connectn-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application until ctx is cancelled or a signal arrives.
func RunApp(ctx context.Context, logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	var store repository.SnapshotRepository
	if conf.Redis.Enabled {
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return ErrAddrNotFound
		}

		redisStorage, err := storage.New(ctx, redisAddrString)
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		store = repository.NewSnapshotRepository(redisStorage, conf.Redis.SnapshotTTL)
		log.Info("Mirroring room snapshots to redis", "addr", redisAddrString)
	}

	gameMetrics := metrics.New()
	registry := repository.NewRoomRegistry(conf.Game.Rules(), coinFlip)
	hub := websocket.NewHub(logger, gameMetrics)

	gameUseCase := usecase.NewGameManager(logger, registry, service.NewPresenceService(), hub, store, gameMetrics)

	if ttl := conf.Game.RoomIdleTTL; ttl > 0 {
		go runEviction(ctx, gameUseCase, ttl)
	}

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		router := rest.NewRouter(logger, gameUseCase, hub, gameMetrics.Handler())
		if httpErr := rest.Start(ctx, conf.HTTPPort, router); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort, "rules", conf.Game.Rules())
		wsServer := websocket.New(logger, hub, gameUseCase, gameMetrics)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err := <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err := <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

// coinFlip - true hands the first move to seat 0.
func coinFlip() bool {
	return rand.IntN(2) == 0
}

func runEviction(ctx context.Context, game *usecase.GameManager, ttl time.Duration) {
	ticker := time.NewTicker(max(ttl/2, time.Second))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			game.EvictIdle(ctx, now, ttl)
		}
	}
}
