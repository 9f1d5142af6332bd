package main

import (
	"context"
	"fmt"

	"github.com/lab67/orderdesk/internal/core/ports"
	"github.com/lab67/orderdesk/internal/infrastructure/config"
	"github.com/lab67/orderdesk/internal/infrastructure/db/memory"
	"github.com/lab67/orderdesk/internal/infrastructure/db/mongo"
	"github.com/lab67/orderdesk/internal/infrastructure/db/redis"
	"github.com/lab67/orderdesk/internal/infrastructure/db/sql"
)

// openStore connects the key-value backend selected by STORE_BACKEND.
func openStore(ctx context.Context, cfg *config.Config) (ports.KeyValueStore, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return memory.NewStore(), nil

	case config.BackendSQLite, config.BackendMySQL:
		sqlCfg := sql.Config{Dialect: sql.DialectSQLite, DSN: cfg.Store.SQLitePath}
		if cfg.Store.Backend == config.BackendMySQL {
			sqlCfg = sql.Config{Dialect: sql.DialectMySQL, DSN: cfg.MySQL.DSN}
		}
		store, err := sql.Open(sqlCfg)
		if err != nil {
			return nil, err
		}
		return store, nil

	case config.BackendRedis:
		client, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		return redis.NewStore(client), nil

	case config.BackendMongo:
		store, err := mongo.Open(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
