package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"example.com/habits/internal/config"
	"example.com/habits/internal/domain"
	"example.com/habits/internal/persistence/firestore"
	"example.com/habits/internal/persistence/memory"
	"example.com/habits/internal/persistence/mongo"
	"example.com/habits/internal/persistence/postgres"
)

// habitStore is a repository that owns a connection to release on shutdown.
type habitStore interface {
	domain.HabitRepository
	Close(context.Context) error
}

func buildRepository(ctx context.Context, cfg config.Config, log *zap.Logger) (habitStore, error) {
	switch cfg.Store {
	case config.StoreMemory:
		log.Warn("using in-memory habit store; data is lost on restart")
		return memory.NewRepository(), nil
	case config.StorePostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return postgres.NewRepository(pool), nil
	case config.StoreMongo:
		return mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case config.StoreFirestore:
		return firestore.Connect(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentialsFile)
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
