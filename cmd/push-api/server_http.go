package main

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	config "github.com/levigram/pushgate/internal/config/push-api"
	"github.com/levigram/pushgate/internal/obs"
	pg "github.com/levigram/pushgate/internal/repository/postgres"
	pushapi "github.com/levigram/pushgate/internal/services/push-api"
)

func buildHTTPServer(cfg *config.Config, logger *zap.Logger, db *pg.DB, uc *pushapi.Usecase) *http.Server {
	api := pushapi.NewServer(logger, uc, cfg.WebPush.PublicKey)

	root := http.NewServeMux()
	root.Handle("/", otelhttp.NewHandler(api.Routes(), "push-api"))
	root.Handle("/metrics", obs.MetricsHandler())
	root.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		hctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
		if err := db.Pool.Ping(hctx); err != nil {
			http.Error(w, "unhealthy: db", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           cors(cfg.Server.CORSOrigins)(root),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
}

func serveHTTP(srv *http.Server, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("http listening", zap.String("addr", cfg.Server.HTTPAddr))
	return srv.ListenAndServe()
}

func cors(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if _, ok := allowed[origin]; ok {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, X-User-ID")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
