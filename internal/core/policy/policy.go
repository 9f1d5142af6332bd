// Package policy decides which actor may perform which action on which order.
// It is a pure function of its inputs and never touches the repository.
package policy

import (
	"fmt"
	"strings"

	"github.com/lab67/orderdesk/internal/core/domain"
)

// Action is a capability checked before a mutation is dispatched.
type Action string

const (
	ActionCreate           Action = "create"
	ActionEdit             Action = "edit"
	ActionDelete           Action = "delete"
	ActionCompleteDelivery Action = "complete-delivery"
	ActionViewStats        Action = "view-stats"
	ActionAssignDelivery   Action = "assign-delivery"
)

// creators may place new orders.
var creators = map[domain.Role]struct{}{
	domain.RoleCustomer: {},
	domain.RoleManager:  {},
}

// completable lists the statuses from which a courier may close a delivery.
var completable = map[domain.OrderStatus]struct{}{
	domain.StatusNew:       {},
	domain.StatusInTransit: {},
}

// assignable lists the statuses from which a courier may pick a delivery up.
var assignable = map[domain.OrderStatus]struct{}{
	domain.StatusNew:       {},
	domain.StatusPending:   {},
	domain.StatusConfirmed: {},
}

// CanPerform reports whether actor may perform action on order. A nil actor is
// never allowed. Order-scoped actions need an order, except for managers
// editing or deleting, who are allowed regardless of the target.
func CanPerform(actor *domain.User, action Action, order *domain.Order) bool {
	if actor == nil {
		return false
	}

	switch action {
	case ActionCreate:
		_, ok := creators[actor.Role]
		return ok

	case ActionEdit, ActionDelete:
		if actor.Role == domain.RoleManager {
			return true
		}
		return actor.Role == domain.RoleCustomer && order != nil && order.Author == actor.Username

	case ActionCompleteDelivery:
		if actor.Role != domain.RoleCourier || order == nil || order.ServiceType != domain.ServiceDelivery {
			return false
		}
		_, ok := completable[order.Status]
		return ok

	case ActionAssignDelivery:
		if actor.Role != domain.RoleCourier || actor.Courier == nil || !actor.Courier.IsAvailable {
			return false
		}
		if order == nil || order.ServiceType != domain.ServiceDelivery {
			return false
		}
		_, ok := assignable[order.Status]
		return ok

	case ActionViewStats:
		return actor.Role == domain.RoleManager

	default:
		return false
	}
}

// ParseAction maps a request-action name (edit, delete, complete, assign) to
// the policy action it is checked against.
func ParseAction(name string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "edit":
		return ActionEdit, nil
	case "delete":
		return ActionDelete, nil
	case "complete":
		return ActionCompleteDelivery, nil
	case "assign":
		return ActionAssignDelivery, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownAction, name)
	}
}
