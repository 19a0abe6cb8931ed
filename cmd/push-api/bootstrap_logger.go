package main

import (
	"go.uber.org/zap"

	config "github.com/levigram/pushgate/internal/config/push-api"
	"github.com/levigram/pushgate/internal/obs"
)

func initLogger(cfg *config.Config) (*zap.Logger, error) {
	return obs.NewLogger(cfg.AsLoggerConfig())
}
