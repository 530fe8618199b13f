package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stepquest/stepquest-backend/internal/config"
	"github.com/stepquest/stepquest-backend/internal/database"
	"github.com/stepquest/stepquest-backend/internal/database/postgres"
	"github.com/stepquest/stepquest-backend/internal/dispatch"
	"github.com/stepquest/stepquest-backend/internal/friend"
	"github.com/stepquest/stepquest-backend/internal/handler"
	"github.com/stepquest/stepquest-backend/internal/identity"
	"github.com/stepquest/stepquest-backend/internal/logger"
	"github.com/stepquest/stepquest-backend/internal/server"
	"github.com/stepquest/stepquest-backend/internal/territory"
)

const serviceName = "stepquest-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(cfg.LogLevel, cfg.LogFormat, serviceName, handler.Version)

	pool, err := database.NewPool(cfg.GetDBConnString(), cfg.DBMaxConns, 5*time.Minute, 30*time.Minute)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	invoker := postgres.NewInvoker(pool)
	writeDisp := dispatch.New(dispatch.NewWriteRegistry(), invoker, cfg.DispatchTimeout)
	readDisp := dispatch.New(dispatch.NewReadRegistry(), invoker, cfg.DispatchTimeout)

	friendSvc := friend.NewService(writeDisp)
	territorySvc := territory.NewService(writeDisp, readDisp)

	// The session store is a boundary. The static table backs local
	// deployments; production swaps the inner provider for one backed
	// by the real credential service. The cache keeps hot tokens off
	// that lookup either way.
	idProvider := identity.NewCachingProvider(identity.NewStaticProvider(nil), 1024, cfg.SessionTTL)

	handler.InitValidator()

	srv := server.NewServer(cfg.Port, pool, writeDisp, readDisp, friendSvc, territorySvc, idProvider)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
