package ports

import (
	"context"
	"time"

	"github.com/lab67/orderdesk/internal/core/domain"
)

// OrderRepository is the order and identity repository the session controller
// drives. It does not authorize; callers must check the policy first.
type OrderRepository interface {
	Create(ctx context.Context, o domain.Order) (domain.Order, error)
	Get(id string) (domain.Order, error)
	// List returns matching orders newest first, windowed to [skip, skip+limit).
	List(skip, limit int, filter domain.Filter) []domain.Order
	Count(filter domain.Filter) int
	Update(ctx context.Context, id string, patch domain.OrderPatch) (domain.Order, error)
	Remove(ctx context.Context, id string) error

	Authenticate(ctx context.Context, username, credential string) (domain.User, error)
	Logout(ctx context.Context)
	CurrentUser() (domain.User, bool)
	User(username string) (domain.User, bool)

	AssignOrder(ctx context.Context, courier, orderID string) error
	ReleaseOrder(ctx context.Context, courier, orderID string) error

	Stats(now time.Time) domain.Stats
}
