// Package repository owns the in-memory order and user collections, the order
// id counter and the current session pointer. Every successful mutation is
// written through a ports.SnapshotStore; write failures are logged and
// swallowed, the in-memory state stays authoritative.
//
// The repository does not apply the authorization policy. Callers that bypass
// the session controller can mutate anything.
package repository

import (
	"context"
	"crypto/subtle"
	"fmt"
	"math"
	"slices"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lab67/orderdesk/internal/core/domain"
	"github.com/lab67/orderdesk/internal/core/ports"
	"github.com/lab67/orderdesk/internal/metrics"
)

type Repository struct {
	mu      sync.RWMutex
	orders  []domain.Order
	users   []domain.User
	nextID  int
	session string // username of the authenticated user, "" when anonymous

	store ports.SnapshotStore
	log   zerolog.Logger
}

var _ ports.OrderRepository = (*Repository)(nil)

// New builds a repository from whatever the store holds. A stored session is
// restored only if its user still exists.
func New(ctx context.Context, store ports.SnapshotStore, log zerolog.Logger) *Repository {
	r := &Repository{store: store, log: log}
	orders, users := store.Restore(ctx)
	r.orders, r.users = r.acceptRestored(orders), users
	r.resetCounter()

	if username := store.RestoreSession(ctx); username != "" {
		if i := r.userIndex(username); i >= 0 {
			r.users[i].Authenticated = true
			r.session = username
			log.Info().Str("username", username).Msg("session restored")
		} else {
			log.Warn().Str("username", username).Msg("stored session refers to unknown user")
		}
	}
	return r
}

// Seed loads the bootstrap data into empty collections and persists once. It
// returns the orders that were rejected.
func (r *Repository) Seed(ctx context.Context, orders []domain.Order, users []domain.User) []domain.Order {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := false
	if len(r.users) == 0 {
		for _, u := range users {
			if r.userIndex(u.Username) >= 0 {
				continue
			}
			u = u.Clone()
			u.Authenticated = false
			r.users = append(r.users, u)
			changed = true
		}
	}

	var failed []domain.Order
	if len(r.orders) == 0 {
		for _, o := range orders {
			if o.Validate() != nil || r.orderIndex(o.ID) >= 0 {
				failed = append(failed, o)
				continue
			}
			r.orders = append(r.orders, o)
			changed = true
		}
		r.resetCounter()
	}

	if changed {
		r.persist(ctx)
		r.log.Info().Int("orders", len(r.orders)).Int("users", len(r.users)).Int("rejected", len(failed)).Msg("seed data loaded")
	}
	return failed
}

// Create stores a new order. An order without id draws the next counter value
// before validation, so a rejected create still consumes an id.
func (r *Repository) Create(ctx context.Context, o domain.Order) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	generated := false
	if o.ID == "" {
		o.ID = strconv.Itoa(r.nextID)
		r.nextID++
		generated = true
	}

	if err := o.Validate(); err != nil {
		metrics.OrderMutationsTotal.WithLabelValues("create", "invalid").Inc()
		if generated {
			metrics.OrderIDsBurnedTotal.Inc()
		}
		r.log.Debug().Err(err).Str("order_id", o.ID).Msg("create rejected")
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}
	if r.orderIndex(o.ID) >= 0 {
		metrics.OrderMutationsTotal.WithLabelValues("create", "duplicate").Inc()
		return domain.Order{}, fmt.Errorf("create order %s: %w", o.ID, domain.ErrDuplicateOrder)
	}

	r.orders = append(r.orders, o)
	r.advanceCounter(o.ID)
	r.persist(ctx)

	metrics.OrderMutationsTotal.WithLabelValues("create", "ok").Inc()
	r.log.Info().Str("order_id", o.ID).Str("author", o.Author).Msg("order created")
	return o, nil
}

// Get returns the order with the given id.
func (r *Repository) Get(id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.orderIndex(id)
	if i < 0 {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return r.orders[i], nil
}

// List returns the orders matching filter, newest first, windowed to
// [skip, skip+limit). Out-of-range windows are empty.
func (r *Repository) List(skip, limit int, filter domain.Filter) []domain.Order {
	r.mu.RLock()
	matched := r.matching(filter)
	r.mu.RUnlock()

	slices.SortStableFunc(matched, func(a, b domain.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || skip >= len(matched) {
		return []domain.Order{}
	}
	end := skip + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end]
}

// Count returns how many orders match filter.
func (r *Repository) Count(filter domain.Filter) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.matching(filter))
}

// Update merges patch into the stored order and revalidates the whole record.
// The id is never changed; an unparsable createdAt is ignored.
func (r *Repository) Update(ctx context.Context, id string, patch domain.OrderPatch) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.orderIndex(id)
	if i < 0 {
		metrics.OrderMutationsTotal.WithLabelValues("update", "not_found").Inc()
		return domain.Order{}, fmt.Errorf("update order %s: %w", id, domain.ErrOrderNotFound)
	}

	merged := patch.Apply(r.orders[i])
	if err := merged.Validate(); err != nil {
		metrics.OrderMutationsTotal.WithLabelValues("update", "invalid").Inc()
		return domain.Order{}, fmt.Errorf("update order %s: %w", id, err)
	}

	r.orders[i] = merged
	r.persist(ctx)

	metrics.OrderMutationsTotal.WithLabelValues("update", "ok").Inc()
	r.log.Info().Str("order_id", id).Msg("order updated")
	return merged, nil
}

// Remove deletes the order with the given id.
func (r *Repository) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.orderIndex(id)
	if i < 0 {
		metrics.OrderMutationsTotal.WithLabelValues("remove", "not_found").Inc()
		return fmt.Errorf("remove order %s: %w", id, domain.ErrOrderNotFound)
	}

	r.orders = slices.Delete(r.orders, i, i+1)
	r.persist(ctx)

	metrics.OrderMutationsTotal.WithLabelValues("remove", "ok").Inc()
	r.log.Info().Str("order_id", id).Msg("order removed")
	return nil
}

// Authenticate looks the username up case-sensitively and compares the
// credential verbatim. On success the user becomes the current session.
func (r *Repository) Authenticate(ctx context.Context, username, credential string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.userIndex(username)
	if i < 0 || subtle.ConstantTimeCompare([]byte(r.users[i].Credential), []byte(credential)) != 1 {
		return domain.User{}, domain.ErrInvalidCredentials
	}

	if prev := r.userIndex(r.session); prev >= 0 && prev != i {
		r.users[prev].Authenticated = false
	}
	r.users[i].Authenticated = true
	r.session = username

	r.persist(ctx)
	r.persistSession(ctx)

	r.log.Info().Str("username", username).Str("role", string(r.users[i].Role)).Msg("user authenticated")
	return r.users[i].Clone(), nil
}

// Logout de-authenticates the current user and clears the session pointer.
func (r *Repository) Logout(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.userIndex(r.session); i >= 0 {
		r.users[i].Authenticated = false
		r.log.Info().Str("username", r.session).Msg("user logged out")
	}
	r.session = ""

	r.persist(ctx)
	r.persistSession(ctx)
}

// CurrentUser returns the authenticated user, if any.
func (r *Repository) CurrentUser() (domain.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.userIndex(r.session)
	if i < 0 {
		return domain.User{}, false
	}
	return r.users[i].Clone(), true
}

// User returns the user with the given username.
func (r *Repository) User(username string) (domain.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.userIndex(username)
	if i < 0 {
		return domain.User{}, false
	}
	return r.users[i].Clone(), true
}

// Users returns a copy of every user.
func (r *Repository) Users() []domain.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.User, len(r.users))
	for i, u := range r.users {
		out[i] = u.Clone()
	}
	return out
}

// AssignOrder records orderID in the courier's assignment list. It is a weak
// reference; the order status is not touched.
func (r *Repository) AssignOrder(ctx context.Context, courier, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.userIndex(courier)
	if i < 0 || r.users[i].Courier == nil {
		return fmt.Errorf("assign order %s: courier %q: %w", orderID, courier, domain.ErrUserNotFound)
	}
	if r.orderIndex(orderID) < 0 {
		return fmt.Errorf("assign order %s: %w", orderID, domain.ErrOrderNotFound)
	}

	profile := r.users[i].Courier
	if profile.HasAssignment(orderID) {
		return nil
	}
	profile.AssignedOrders = append(profile.AssignedOrders, orderID)
	r.persist(ctx)
	return nil
}

// ReleaseOrder drops orderID from the courier's assignment list.
func (r *Repository) ReleaseOrder(ctx context.Context, courier, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.userIndex(courier)
	if i < 0 || r.users[i].Courier == nil {
		return fmt.Errorf("release order %s: courier %q: %w", orderID, courier, domain.ErrUserNotFound)
	}

	profile := r.users[i].Courier
	j := slices.Index(profile.AssignedOrders, orderID)
	if j < 0 {
		return nil
	}
	profile.AssignedOrders = slices.Delete(profile.AssignedOrders, j, j+1)
	r.persist(ctx)
	return nil
}

// acceptRestored keeps the stored orders that validate, first occurrence of
// each id wins. Dropped records disappear from the store on the next write.
func (r *Repository) acceptRestored(orders []domain.Order) []domain.Order {
	kept := make([]domain.Order, 0, len(orders))
	seen := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		err := o.Validate()
		if _, dup := seen[o.ID]; err == nil && dup {
			err = domain.ErrDuplicateOrder
		}
		if err != nil {
			metrics.PersistenceFailuresTotal.WithLabelValues("restore").Inc()
			r.log.Warn().Err(err).Str("order_id", o.ID).Msg("dropping stored order")
			continue
		}
		seen[o.ID] = struct{}{}
		kept = append(kept, o)
	}
	return kept
}

// matching copies the orders that satisfy filter. Callers hold the lock.
func (r *Repository) matching(filter domain.Filter) []domain.Order {
	out := make([]domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if filter.Matches(o) {
			out = append(out, o)
		}
	}
	return out
}

func (r *Repository) orderIndex(id string) int {
	return slices.IndexFunc(r.orders, func(o domain.Order) bool { return o.ID == id })
}

func (r *Repository) userIndex(username string) int {
	if username == "" {
		return -1
	}
	return slices.IndexFunc(r.users, func(u domain.User) bool { return u.Username == username })
}

// resetCounter sets the next id to one past the highest numeric order id.
func (r *Repository) resetCounter() {
	r.nextID = 1
	for _, o := range r.orders {
		r.advanceCounter(o.ID)
	}
}

func (r *Repository) advanceCounter(id string) {
	if n, err := strconv.Atoi(id); err == nil && n >= r.nextID && n < math.MaxInt {
		r.nextID = n + 1
	}
}

func (r *Repository) persist(ctx context.Context) {
	if err := r.store.Save(ctx, r.orders, r.users); err != nil {
		metrics.PersistenceFailuresTotal.WithLabelValues("save").Inc()
		r.log.Error().Err(err).Msg("persisting snapshot failed, keeping in-memory state")
	}
}

func (r *Repository) persistSession(ctx context.Context) {
	if err := r.store.SaveSession(ctx, r.session); err != nil {
		metrics.PersistenceFailuresTotal.WithLabelValues("save_session").Inc()
		r.log.Error().Err(err).Msg("persisting session failed")
	}
}
