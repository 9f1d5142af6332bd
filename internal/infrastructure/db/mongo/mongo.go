package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultTimeout    = 10 * time.Second
	defaultCollection = "snapshots"
)

// Config captures the settings required to open the snapshot collection.
type Config struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// Open connects to MongoDB, verifies connectivity with a ping and returns a
// Store bound to the configured collection. A default timeout and collection
// name are applied when none is provided.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	collection := cfg.Collection
	if collection == "" {
		collection = defaultCollection
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI).SetTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return &Store{client: client, db: db, coll: db.Collection(collection), timeout: timeout}, nil
}
