package main

import (
	"context"

	config "github.com/levigram/pushgate/internal/config/push-api"
	pg "github.com/levigram/pushgate/internal/repository/postgres"
)

func initDB(ctx context.Context, cfg *config.Config) (*pg.DB, error) {
	return pg.NewDB(ctx, cfg.DB)
}
