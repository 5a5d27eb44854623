package main

import (
	"context"

	"go.uber.org/zap"

	"tourism-marketplace/internal/domain/repository"
	"tourism-marketplace/internal/infrastructure/config"
	"tourism-marketplace/internal/infrastructure/mongo"
	"tourism-marketplace/internal/infrastructure/postgres"
)

// openDatastore connects the configured store and returns its statistics
// repository together with a close function.
func openDatastore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.StatsRepository, func() error, error) {
	switch cfg.Datastore {
	case config.DatastorePostgres:
		db, err := postgres.Open(ctx, postgres.Config{
			DSN:     cfg.Postgres.DSN,
			Timeout: cfg.Postgres.Timeout,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("connected to PostgreSQL")
		return postgres.NewStatsRepository(db), func() error { return postgres.Close(db) }, nil

	default:
		client, err := mongo.NewMongoClient(ctx, &mongo.MongoConfig{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			Username: cfg.Mongo.Username,
			Password: cfg.Mongo.Password,
			Timeout:  cfg.Mongo.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Info("connected to MongoDB", zap.String("database", cfg.Mongo.Database))
		return mongo.NewStatsRepository(client), client.Close, nil
	}
}
