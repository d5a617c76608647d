package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stacklet/stacklet-service/config"
	"github.com/stacklet/stacklet-service/internal/handler"
	"github.com/stacklet/stacklet-service/internal/repository"
	"github.com/stacklet/stacklet-service/internal/server"
	"github.com/stacklet/stacklet-service/internal/service"
	"github.com/stacklet/stacklet-service/migrations"
	"github.com/stacklet/stacklet-service/pkg/logger"
	"github.com/stacklet/stacklet-service/pkg/openlibrary"
	"github.com/stacklet/stacklet-service/pkg/postgres"
	"go.uber.org/zap"
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "stacklet")
	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		log.Fatal("repo", zap.Error(err))
	}
	svc := service.NewService(repo, log)
	covers := openlibrary.NewClient(cfg.OpenLibrary, log)

	h := handler.New(svc, covers, log)
	srv := server.NewServer(cfg.Server, h.NewRouter(cfg.Auth.APIKey))
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	db.Close() //nolint:errcheck
	log.Info("Graceful shutdown finished")
}
