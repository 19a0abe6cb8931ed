package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	config "github.com/levigram/pushgate/internal/config/post-notifier"
	"github.com/levigram/pushgate/internal/dispatch"
	"github.com/levigram/pushgate/internal/obs"
	"github.com/levigram/pushgate/internal/repository/kafka"
	pg "github.com/levigram/pushgate/internal/repository/postgres"
	postnotifier "github.com/levigram/pushgate/internal/services/post-notifier"
	"github.com/levigram/pushgate/internal/transport/webpush"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func wiring(db *pg.DB, cfg *config.Config, cons *kafka.Consumer, l *zap.Logger) *postnotifier.Controller {
	subs := pg.NewSubscriptionRepo(db)
	audit := pg.NewBroadcastRepo(db)
	sender := webpush.New(cfg.WebPush).WithLogger(l)
	disp := dispatch.New(l, subs, sender, dispatch.Config{
		MaxInFlight: cfg.Dispatch.MaxInFlight,
		SendTimeout: cfg.Dispatch.SendTimeout,
	})

	uc := &postnotifier.Handler{
		Log:   l,
		Disp:  disp,
		Audit: audit,
		Clock: systemClock{},
	}

	return &postnotifier.Controller{Log: l, Sub: cons, UC: uc}
}

func main() {
	cfgPath := flag.String("config", "config/post-notifier.yaml", "path to config file")
	flag.Parse()

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	l, err := obs.NewLogger(cfg.AsLoggerConfig())
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()

	l.Info("starting post-notifier",
		zap.Any("kafka_in", cfg.In),
		zap.String("metrics_addr", cfg.Server.MetricsAddr),
	)

	otelCloser, err := obs.SetupOTel(rootCtx, cfg.OTEL.AsOTELConfig())
	if err != nil {
		l.Warn("otel init", zap.Error(err))
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	db, err := pg.NewDB(rootCtx, cfg.DB)
	if err != nil {
		l.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()
	l.Info("db connected")

	ms := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, func(ctx context.Context) error {
		hctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()
		return db.Pool.Ping(hctx)
	}, l)

	cons := kafka.BootstrapConsumer(rootCtx, cfg.In.AsConsumerConfig(), l).WithLogger(l)
	defer func() { _ = cons.Close() }()
	l.Info("kafka consumer initialized",
		zap.Strings("brokers", cfg.In.Brokers),
		zap.String("group_id", cfg.In.GroupID),
		zap.String("topic", cfg.In.Topic),
	)

	ctrl := wiring(db, cfg, cons, l)
	errCh := make(chan error, 1)
	go func() {
		l.Info("controller starting")
		errCh <- ctrl.Run(rootCtx)
	}()

	var runErr error
	select {
	case <-rootCtx.Done():
		l.Info("shutdown signal")
	case runErr = <-errCh:
		if runErr != nil && !errors.Is(runErr, context.Canceled) {
			l.Error("controller error", zap.Error(runErr))
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = ms.Shutdown(shCtx)
	l.Info("bye")
}
