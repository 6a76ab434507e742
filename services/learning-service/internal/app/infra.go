package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/config"
	"github.com/vasapolrittideah/elearning-api/shared/database"
)

// Infra holds the connections shared by every repository.
type Infra struct {
	Mongo *mongo.Client
	DB    *mongo.Database
	Redis *redis.Client
}

func setupInfra(ctx context.Context, cfg *config.LearningServiceConfig, logger *zerolog.Logger) (*Infra, error) {
	mongoClient, err := database.NewMongoClient(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("database", cfg.Mongo.Database).Msg("mongo ready")

	redisClient, err := database.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		_ = mongoClient.Disconnect(ctx)
		return nil, err
	}

	logger.Info().Str("addr", cfg.Redis.Addr).Msg("redis ready")

	return &Infra{
		Mongo: mongoClient,
		DB:    mongoClient.Database(cfg.Mongo.Database),
		Redis: redisClient,
	}, nil
}

// Close releases both connections and reports the first failure.
func (i *Infra) Close(ctx context.Context) error {
	var firstErr error

	if err := i.Redis.Close(); err != nil {
		firstErr = fmt.Errorf("close redis: %w", err)
	}
	if err := i.Mongo.Disconnect(ctx); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("disconnect mongo: %w", err)
	}

	return firstErr
}
