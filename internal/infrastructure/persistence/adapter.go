// Package persistence encodes the repository collections into text blobs and
// writes them to a durable key-value store.
//
// Layout, one key each:
//
//	<prefix>orderAppData     JSON array of orders, timestamps as RFC 3339
//	<prefix>orderAppUsers    JSON array of users, "authenticated" always false
//	<prefix>orderAppSession  signed session token of the current user
//
// Reads never fail the caller. Corrupt content is logged, its key removed, and
// an empty collection returned in its place.
package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lab67/orderdesk/internal/core/domain"
	"github.com/lab67/orderdesk/internal/core/ports"
)

const (
	OrdersKey  = "orderAppData"
	UsersKey   = "orderAppUsers"
	SessionKey = "orderAppSession"
)

// SessionCodec turns a username into an opaque token and back.
type SessionCodec interface {
	Issue(username string) (string, error)
	Parse(token string) (string, error)
}

// Adapter implements ports.SnapshotStore on top of a ports.KeyValueStore.
type Adapter struct {
	store  ports.KeyValueStore
	tokens SessionCodec
	prefix string
	log    zerolog.Logger
}

var _ ports.SnapshotStore = (*Adapter)(nil)

// NewAdapter wires the adapter. tokens may be nil, in which case the session
// pointer is not persisted.
func NewAdapter(store ports.KeyValueStore, tokens SessionCodec, prefix string, log zerolog.Logger) *Adapter {
	return &Adapter{store: store, tokens: tokens, prefix: prefix, log: log}
}

// Save writes both collections. Both keys are attempted; the first error is returned.
func (a *Adapter) Save(ctx context.Context, orders []domain.Order, users []domain.User) error {
	orderBlob, err := encodeOrders(orders)
	if err != nil {
		return fmt.Errorf("save orders: %w", err)
	}
	userBlob, err := encodeUsers(users)
	if err != nil {
		return fmt.Errorf("save users: %w", err)
	}

	var firstErr error
	if err := a.store.Set(ctx, a.key(OrdersKey), orderBlob); err != nil {
		firstErr = fmt.Errorf("save orders: %w", err)
	}
	if err := a.store.Set(ctx, a.key(UsersKey), userBlob); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("save users: %w", err)
	}
	return firstErr
}

// Restore reads both collections. It never returns an error.
func (a *Adapter) Restore(ctx context.Context) ([]domain.Order, []domain.User) {
	var orders []domain.Order
	if blob, ok := a.read(ctx, OrdersKey); ok {
		decoded, err := decodeOrders(blob)
		if err != nil {
			a.discard(ctx, OrdersKey, err)
		} else {
			orders = decoded
		}
	}

	var users []domain.User
	if blob, ok := a.read(ctx, UsersKey); ok {
		decoded, err := decodeUsers(blob)
		if err != nil {
			a.discard(ctx, UsersKey, err)
		} else {
			users = decoded
		}
	}

	a.log.Debug().Int("orders", len(orders)).Int("users", len(users)).Msg("snapshot restored")
	return orders, users
}

// SaveSession stores a signed token for username, or clears the key when
// username is empty.
func (a *Adapter) SaveSession(ctx context.Context, username string) error {
	if a.tokens == nil {
		return nil
	}
	if username == "" {
		if err := a.store.Delete(ctx, a.key(SessionKey)); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		return nil
	}
	token, err := a.tokens.Issue(username)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if err := a.store.Set(ctx, a.key(SessionKey), token); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// RestoreSession returns the username held by the stored token, or "" when
// there is none or it does not verify.
func (a *Adapter) RestoreSession(ctx context.Context) string {
	if a.tokens == nil {
		return ""
	}
	token, ok := a.read(ctx, SessionKey)
	if !ok {
		return ""
	}
	username, err := a.tokens.Parse(token)
	if err != nil {
		a.discard(ctx, SessionKey, err)
		return ""
	}
	return username
}

func (a *Adapter) read(ctx context.Context, name string) (string, bool) {
	blob, ok, err := a.store.Get(ctx, a.key(name))
	if err != nil {
		a.log.Error().Err(err).Str("key", a.key(name)).Msg("store read failed")
		return "", false
	}
	return blob, ok
}

func (a *Adapter) discard(ctx context.Context, name string, cause error) {
	key := a.key(name)
	a.log.Warn().Err(cause).Str("key", key).Msg("discarding corrupt entry")
	if err := a.store.Delete(ctx, key); err != nil {
		a.log.Error().Err(err).Str("key", key).Msg("failed to remove corrupt entry")
	}
}

func (a *Adapter) key(name string) string {
	return a.prefix + name
}

func encodeOrders(orders []domain.Order) (string, error) {
	records := make([]orderRecord, len(orders))
	for i, o := range orders {
		records[i] = toOrderRecord(o)
	}
	b, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeOrders(blob string) ([]domain.Order, error) {
	var records []orderRecord
	if err := json.Unmarshal([]byte(blob), &records); err != nil {
		return nil, err
	}
	orders := make([]domain.Order, 0, len(records))
	for i, r := range records {
		o, err := r.toDomain()
		if err != nil {
			return nil, fmt.Errorf("order[%d]: %w", i, err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func encodeUsers(users []domain.User) (string, error) {
	records := make([]userRecord, len(users))
	for i, u := range users {
		records[i] = toUserRecord(u)
	}
	b, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeUsers(blob string) ([]domain.User, error) {
	var records []userRecord
	if err := json.Unmarshal([]byte(blob), &records); err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(records))
	for _, r := range records {
		users = append(users, r.toDomain())
	}
	return users, nil
}
