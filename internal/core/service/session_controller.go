package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lab67/orderdesk/internal/core/domain"
	"github.com/lab67/orderdesk/internal/core/policy"
	"github.com/lab67/orderdesk/internal/core/ports"
	"github.com/lab67/orderdesk/internal/metrics"
)

// DefaultPageSize is the number of orders revealed per load-more step.
const DefaultPageSize = 5

// SessionController turns presentation events into repository calls. It holds
// the active filter, the load-more cursor and the stats view flag, and
// re-renders after every transition.
//
// Every mutation requires an authenticated user and passes policy.CanPerform
// before it reaches the repository.
type SessionController struct {
	repo   ports.OrderRepository
	view   ports.Presenter
	forms  *formValidator
	logger zerolog.Logger
	now    func() time.Time

	pageSize    int
	page        int
	filter      domain.Filter
	statsActive bool
}

func NewSessionController(repo ports.OrderRepository, view ports.Presenter, pageSize int, logger zerolog.Logger) *SessionController {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &SessionController{
		repo:     repo,
		view:     view,
		forms:    newFormValidator(),
		logger:   logger,
		now:      time.Now,
		pageSize: pageSize,
		page:     1,
		filter:   domain.Filter{},
	}
}

// WithClock replaces the clock used for creation timestamps and stats.
func (c *SessionController) WithClock(now func() time.Time) *SessionController {
	c.now = now
	return c
}

// Start performs the initial render.
func (c *SessionController) Start() {
	c.page = 1
	c.render()
}

// Refresh re-renders without changing any state.
func (c *SessionController) Refresh() {
	c.render()
}

// Page returns the load-more multiplier.
func (c *SessionController) Page() int { return c.page }

// Filter returns a copy of the active filter.
func (c *SessionController) Filter() domain.Filter {
	out := make(domain.Filter, len(c.filter))
	for k, v := range c.filter {
		out[k] = v
	}
	return out
}

// StatsActive reports whether the manager stats view is shown.
func (c *SessionController) StatsActive() bool { return c.statsActive }

// SubmitCreate places a new order authored by the current user and resets the
// list to the first page.
func (c *SessionController) SubmitCreate(ctx context.Context, form CreateOrderForm) (domain.Order, error) {
	actor, err := c.actor()
	if err != nil {
		return domain.Order{}, err
	}
	if err := c.authorize(actor, policy.ActionCreate, nil); err != nil {
		return domain.Order{}, err
	}
	if err := c.forms.Validate(form); err != nil {
		return domain.Order{}, err
	}
	if actor.Role != domain.RoleManager {
		form.Status = ""
	}

	created, err := c.repo.Create(ctx, form.toOrder(actor.Username, c.now()))
	if err != nil {
		c.logger.Warn().Err(err).Str("username", actor.Username).Msg("create order rejected")
		return domain.Order{}, err
	}

	c.page = 1
	c.render()
	return created, nil
}

// SubmitEdit applies form to the order with the given id.
func (c *SessionController) SubmitEdit(ctx context.Context, id string, form EditOrderForm) (domain.Order, error) {
	actor, err := c.actor()
	if err != nil {
		return domain.Order{}, err
	}
	current, err := c.repo.Get(id)
	if err != nil {
		return domain.Order{}, err
	}
	if err := c.authorize(actor, policy.ActionEdit, &current); err != nil {
		return domain.Order{}, err
	}
	if err := c.forms.Validate(form); err != nil {
		return domain.Order{}, err
	}

	updated, err := c.repo.Update(ctx, id, form.toPatch())
	if err != nil {
		c.logger.Warn().Err(err).Str("order_id", id).Msg("edit order rejected")
		return domain.Order{}, err
	}

	c.render()
	return updated, nil
}

// SubmitFilter replaces the active filter and resets the list to the first page.
func (c *SessionController) SubmitFilter(form FilterForm) error {
	if err := c.forms.Validate(form); err != nil {
		return err
	}
	c.filter = form.toFilter()
	c.page = 1
	c.render()
	return nil
}

// SubmitLogin authenticates username. When expectedRole is set and the stored
// user has another role, the login fails with ErrRoleMismatch and nothing changes.
func (c *SessionController) SubmitLogin(ctx context.Context, username, credential string, expectedRole domain.Role) (domain.User, error) {
	form := loginForm{Username: username, Credential: credential, ExpectedRole: string(expectedRole)}
	if err := c.forms.Validate(form); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("invalid_input").Inc()
		return domain.User{}, err
	}

	if expectedRole != "" {
		if stored, ok := c.repo.User(username); ok && stored.Role != expectedRole {
			// The role is only disclosed to someone holding the right credential.
			if subtle.ConstantTimeCompare([]byte(stored.Credential), []byte(credential)) != 1 {
				metrics.AuthAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
				return domain.User{}, domain.ErrInvalidCredentials
			}
			metrics.AuthAttemptsTotal.WithLabelValues("role_mismatch").Inc()
			c.logger.Warn().Str("username", username).Str("expected_role", string(expectedRole)).Msg("login role mismatch")
			return domain.User{}, fmt.Errorf("login as %s: %w", expectedRole, domain.ErrRoleMismatch)
		}
	}

	user, err := c.repo.Authenticate(ctx, username, credential)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		c.logger.Info().Str("username", username).Msg("login failed")
		return domain.User{}, err
	}
	metrics.AuthAttemptsTotal.WithLabelValues("ok").Inc()

	if user.Role != domain.RoleManager {
		c.statsActive = false
	}
	c.page = 1
	c.render()
	return user, nil
}

// RequestLogout ends the session and returns to the anonymous view.
func (c *SessionController) RequestLogout(ctx context.Context) {
	c.repo.Logout(ctx)
	c.statsActive = false
	c.page = 1
	c.render()
}

// RequestLoadMore reveals the next batch of orders, if any, and returns the
// resulting page info.
func (c *SessionController) RequestLoadMore() ports.PageInfo {
	if _, info := c.window(); info.HasMore {
		c.page++
	}
	return c.render()
}

// RequestAction dispatches a per-order action: edit, delete, complete or assign.
func (c *SessionController) RequestAction(ctx context.Context, orderID, name string) error {
	action, err := policy.ParseAction(name)
	if err != nil {
		return err
	}
	actor, err := c.actor()
	if err != nil {
		return err
	}
	order, err := c.repo.Get(orderID)
	if err != nil {
		return err
	}
	if err := c.authorize(actor, action, &order); err != nil {
		return err
	}

	switch action {
	case policy.ActionEdit:
		c.view.ShowEditForm(order)
		return nil

	case policy.ActionDelete:
		if err := c.repo.Remove(ctx, orderID); err != nil {
			return err
		}

	case policy.ActionCompleteDelivery:
		if err := c.setStatus(ctx, orderID, domain.StatusCompleted); err != nil {
			return err
		}
		if err := c.repo.ReleaseOrder(ctx, actor.Username, orderID); err != nil {
			c.logger.Warn().Err(err).Str("order_id", orderID).Msg("releasing courier assignment failed")
		}

	case policy.ActionAssignDelivery:
		if err := c.setStatus(ctx, orderID, domain.StatusInTransit); err != nil {
			return err
		}
		if err := c.repo.AssignOrder(ctx, actor.Username, orderID); err != nil {
			c.logger.Warn().Err(err).Str("order_id", orderID).Msg("recording courier assignment failed")
		}
	}

	c.logger.Info().Str("order_id", orderID).Str("action", string(action)).Str("username", actor.Username).Msg("order action performed")
	c.render()
	return nil
}

// ShowStats toggles the manager statistics view.
func (c *SessionController) ShowStats(active bool) error {
	if !active {
		c.statsActive = false
		c.render()
		return nil
	}
	actor, err := c.actor()
	if err != nil {
		return err
	}
	if err := c.authorize(actor, policy.ActionViewStats, nil); err != nil {
		return err
	}
	c.statsActive = true
	c.render()
	return nil
}

func (c *SessionController) setStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	_, err := c.repo.Update(ctx, id, domain.OrderPatch{Status: &status})
	return err
}

func (c *SessionController) actor() (*domain.User, error) {
	u, ok := c.repo.CurrentUser()
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}
	return &u, nil
}

func (c *SessionController) authorize(actor *domain.User, action policy.Action, order *domain.Order) error {
	if policy.CanPerform(actor, action, order) {
		metrics.AuthorizationDecisionsTotal.WithLabelValues(string(action), "allow").Inc()
		return nil
	}
	metrics.AuthorizationDecisionsTotal.WithLabelValues(string(action), "deny").Inc()

	ev := c.logger.Warn().Str("action", string(action))
	if actor != nil {
		ev = ev.Str("username", actor.Username).Str("role", string(actor.Role))
	}
	if order != nil {
		ev = ev.Str("order_id", order.ID)
	}
	ev.Msg("action denied")
	return fmt.Errorf("%s: %w", action, domain.ErrForbidden)
}

// window computes the visible orders for the current filter and page.
func (c *SessionController) window() ([]domain.Order, ports.PageInfo) {
	orders := c.repo.List(0, c.page*c.pageSize, c.filter)
	total := c.repo.Count(c.filter)
	info := ports.PageInfo{Total: total, Shown: len(orders)}
	if remaining := total - len(orders); remaining > 0 {
		info.HasMore = true
		info.NextBatch = min(c.pageSize, remaining)
	}
	return orders, info
}

// render pushes the session header, the visible window and, when active, the
// stats payload to the presenter.
func (c *SessionController) render() ports.PageInfo {
	var current *domain.User
	if u, ok := c.repo.CurrentUser(); ok {
		current = &u
	}
	c.view.RenderSession(current)

	orders, info := c.window()
	metrics.VisibleOrders.Set(float64(len(orders)))
	c.view.RenderOrders(orders, info)

	if c.statsActive {
		if policy.CanPerform(current, policy.ActionViewStats, nil) {
			c.view.RenderStats(c.repo.Stats(c.now()))
		} else {
			c.statsActive = false
		}
	}
	return info
}
