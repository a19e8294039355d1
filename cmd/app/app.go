package app

import (
	"go.uber.org/zap"

	"tradepost/internal/cache"
	"tradepost/internal/config"
	"tradepost/internal/database"
	"tradepost/internal/repository"
	"tradepost/internal/service"
	"tradepost/internal/storage"
)

// App wires every dependency in leaf-to-root order: database and blob
// storage first, then repositories, then services.
func App(cfg *config.Config, log *zap.Logger) (*database.DB, *service.Service, error) {
	db, err := database.Connect(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	if err := db.RunMigrations("migrations/001_create_tables.sql"); err != nil {
		log.Warn("failed to run migrations", zap.Error(err))
	}
	if err := db.HealthCheck(); err != nil {
		db.Close()
		return nil, nil, err
	}

	blobs, err := storage.NewMinIOStorage(cfg.MinIO, log)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	var listingCache *cache.ListingCache
	if cfg.Redis.Enabled {
		listingCache, err = cache.NewListingCache(cfg.Redis.Addr, cfg.Redis.TTL)
		if err != nil {
			log.Warn("redis unavailable, running without listing cache", zap.Error(err))
			listingCache = nil
		}
	}

	repo := repository.NewRepository(db.DB)
	services := service.NewService(repo, cfg, blobs, listingCache, log)

	return db, services, nil
}
