package ports

import (
	"context"

	"github.com/lab67/orderdesk/internal/core/domain"
)

// KeyValueStore is the durable, text-keyed medium the snapshots are written to.
type KeyValueStore interface {
	// Get returns the value stored at key. The boolean is false when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// SnapshotStore persists the repository collections and the session pointer.
//
// Restore and RestoreSession never fail: corrupt or unreadable content comes back
// empty. Save errors are returned so the caller can log them.
type SnapshotStore interface {
	Save(ctx context.Context, orders []domain.Order, users []domain.User) error
	Restore(ctx context.Context) ([]domain.Order, []domain.User)
	SaveSession(ctx context.Context, username string) error
	RestoreSession(ctx context.Context) string
}
