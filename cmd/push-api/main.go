package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	config "github.com/levigram/pushgate/internal/config/push-api"
	"github.com/levigram/pushgate/internal/dispatch"
	pg "github.com/levigram/pushgate/internal/repository/postgres"
	pushapi "github.com/levigram/pushgate/internal/services/push-api"
	"github.com/levigram/pushgate/internal/transport/webpush"
)

func main() {
	cfgPath := flag.String("config", "config/push-api.yaml", "path to config file")
	flag.Parse()

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		panic(err)
	}

	logger, err := initLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting push-api",
		zap.String("env", cfg.App.Env),
		zap.String("ver", cfg.App.Version),
		zap.String("http_addr", cfg.Server.HTTPAddr),
	)

	otelShutdown, err := initOTel(rootCtx, cfg)
	if err != nil {
		logger.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelShutdown(context.Background()) }()

	db, err := initDB(rootCtx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()
	logger.Info("db connected")

	subs := pg.NewSubscriptionRepo(db)
	audit := pg.NewBroadcastRepo(db)
	sender := webpush.New(cfg.WebPush).WithLogger(logger)
	disp := dispatch.New(logger, subs, sender, dispatch.Config{
		MaxInFlight: cfg.Dispatch.MaxInFlight,
		SendTimeout: cfg.Dispatch.SendTimeout,
	})
	uc := pushapi.NewUsecase(subs, disp, audit, nil)

	httpSrv := buildHTTPServer(cfg, logger, db, uc)

	httpErrCh := make(chan error, 1)
	go func() { httpErrCh <- serveHTTP(httpSrv, cfg, logger) }()

	var runErr error
	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal")
	case runErr = <-httpErrCh:
		if runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
			logger.Error("http serve", zap.Error(runErr))
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	_ = httpSrv.Shutdown(shCtx)

	time.Sleep(100 * time.Millisecond)
	logger.Info("bye")
}
