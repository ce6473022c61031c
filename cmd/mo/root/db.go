package root

import (
	"context"

	"momentum/internal/config"
	"momentum/internal/engine"
	"momentum/internal/storage"
)

func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

func openService(ctx context.Context) (*engine.Service, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}
	db, err := storage.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = db.Close()
	}
	return engine.NewService(db, engine.WithLocation(loc)), cleanup, nil
}
