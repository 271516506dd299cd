package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/echoverse/synccore/internal/alerts"
	"github.com/echoverse/synccore/internal/channels/natschan"
	"github.com/echoverse/synccore/internal/channels/redischan"
	"github.com/echoverse/synccore/internal/config"
	"github.com/echoverse/synccore/internal/database"
	"github.com/echoverse/synccore/internal/friends"
	"github.com/echoverse/synccore/internal/logger"
	"github.com/echoverse/synccore/internal/notify"
	"github.com/echoverse/synccore/internal/presence"
	"github.com/echoverse/synccore/internal/session"
	"github.com/echoverse/synccore/internal/store"
	"github.com/echoverse/synccore/internal/watcher"
)

func main() {
	ctx := context.Background()

	godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Log.Fatal("Failed to load config", zap.Error(err))
	}

	// External connections
	redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Log.Fatal("Failed to create redis client", zap.Error(err))
	}
	defer redisClient.Close()

	natsConn, err := database.NewNATSConn(cfg.NATSURL, "echoverse-syncd")
	if err != nil {
		logger.Log.Fatal("Failed to connect to nats", zap.Error(err))
	}
	defer natsConn.Close()

	snapshots, err := store.NewSQLiteStore(cfg.SnapshotPath)
	if err != nil {
		logger.Log.Fatal("Failed to open snapshot store", zap.Error(err))
	}
	defer snapshots.Close()

	// Sync core
	bus := alerts.NewBus()
	presenceChan := redischan.NewPresenceChannel(redisClient)
	presenceCtrl := presence.NewController(presenceChan, cfg.HeartbeatInterval)
	registry := watcher.NewRegistry(natschan.NewMessageStream(natsConn), bus)
	feed := notify.NewAggregator(natschan.NewNotificationStream(natsConn), snapshots)
	friendsClient := friends.NewClient(cfg.FriendsAPIURL, cfg.ServiceSecret)
	manager := session.NewManager(presenceCtrl, registry, feed, friendsClient)

	if cfg.UserID != 0 {
		manager.Start(cfg.UserID)
	}

	// Local HTTP surface for the UI process
	api := newAPI(manager, feed, registry, bus, presenceChan)

	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	api.Routes(router)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	// graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down syncd...")
		// Force offline and release every subscription before the process
		// goes away.
		manager.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.Infof("Starting syncd on port %s", cfg.ServerPort)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Log.Fatal("Server error", zap.Error(err))
	}

	logger.Info("syncd stopped gracefully")
}
