package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lab67/orderdesk/internal/core/domain"
	"github.com/lab67/orderdesk/internal/core/ports"
	"github.com/lab67/orderdesk/internal/core/repository"
	"github.com/lab67/orderdesk/internal/infrastructure/db/memory"
	"github.com/lab67/orderdesk/internal/infrastructure/persistence"
	"github.com/lab67/orderdesk/internal/infrastructure/session"
)

// ---------------------------------------------------------------------------
// Recording presenter
// ---------------------------------------------------------------------------

type recordingView struct {
	orders   []domain.Order
	page     ports.PageInfo
	user     *domain.User
	stats    *domain.Stats
	editing  *domain.Order
	sessions int
	renders  int
}

func (v *recordingView) RenderOrders(orders []domain.Order, page ports.PageInfo) {
	v.orders = orders
	v.page = page
	v.renders++
}

func (v *recordingView) RenderSession(user *domain.User) {
	v.user = user
	v.sessions++
}

func (v *recordingView) RenderStats(stats domain.Stats) {
	v.stats = &stats
}

func (v *recordingView) ShowEditForm(order domain.Order) {
	v.editing = &order
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var fixedNow = time.Date(2023, 10, 20, 12, 0, 0, 0, time.UTC)

func seedUsers() []domain.User {
	return []domain.User{
		domain.NewCustomer("c1", "ivanov", "123456", domain.CustomerProfile{Phone: "+79001112233"}),
		domain.NewCustomer("c2", "petrova", "qwerty", domain.CustomerProfile{}),
		domain.NewCourier("k1", "courier1", "ride", domain.CourierProfile{VehicleType: "bike", IsAvailable: true}),
		domain.NewManager("m1", "manager1", "admin", domain.ManagerProfile{Branch: "central", AccessLevel: 3}),
	}
}

func makeOrders(n int) []domain.Order {
	orders := make([]domain.Order, n)
	for i := range orders {
		status := domain.StatusNew
		if i%3 == 0 {
			status = domain.StatusCompleted
		}
		orders[i] = domain.Order{
			ID:          fmt.Sprint(i + 1),
			Description: fmt.Sprintf("Order %d", i+1),
			CreatedAt:   time.Date(2023, 10, 1+i, 18, 0, 0, 0, time.UTC),
			Author:      "ivanov",
			Phone:       "+79001112233",
			ServiceType: domain.ServiceInVenue,
			Guests:      2,
			Status:      status,
		}
	}
	return orders
}

func setup(t *testing.T, orders []domain.Order) (*SessionController, *repository.Repository, *recordingView) {
	t.Helper()
	ctx := context.Background()

	store := persistence.NewAdapter(memory.NewStore(), session.NewTokens("test-secret", time.Hour), "", zerolog.Nop())
	repo := repository.New(ctx, store, zerolog.Nop())
	repo.Seed(ctx, orders, seedUsers())

	view := &recordingView{}
	ctrl := NewSessionController(repo, view, 5, zerolog.Nop()).WithClock(func() time.Time { return fixedNow })
	ctrl.Start()
	return ctrl, repo, view
}

func login(t *testing.T, ctrl *SessionController, username, credential string) {
	t.Helper()
	if _, err := ctrl.SubmitLogin(context.Background(), username, credential, ""); err != nil {
		t.Fatalf("login %s: %v", username, err)
	}
}

func validCreateForm() CreateOrderForm {
	return CreateOrderForm{Description: "x", Phone: "+79001112233", ServiceType: "in-venue", Guests: 2}
}

// ---------------------------------------------------------------------------
// Session
// ---------------------------------------------------------------------------

func TestSessionController_LoginScenario(t *testing.T) {
	ctrl, repo, view := setup(t, nil)
	ctx := context.Background()

	user, err := ctrl.SubmitLogin(ctx, "ivanov", "123456", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Role != domain.RoleCustomer || view.user == nil || view.user.Username != "ivanov" {
		t.Fatalf("expected ivanov rendered as session, got %+v", view.user)
	}

	if _, err := ctrl.SubmitLogin(ctx, "ivanov", "wrong", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if current, _ := repo.CurrentUser(); current.Username != "ivanov" {
		t.Fatalf("session changed after failed login: %q", current.Username)
	}

	created, err := ctrl.SubmitCreate(ctx, validCreateForm())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Author != "ivanov" || !created.CreatedAt.Equal(fixedNow) || created.Status != domain.StatusNew {
		t.Errorf("unexpected created order: %+v", created)
	}

	ctrl.RequestLogout(ctx)
	login(t, ctrl, "petrova", "qwerty")

	if err := ctrl.RequestAction(ctx, created.ID, "delete"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := repo.Get(created.ID); err != nil {
		t.Fatalf("order removed despite denial: %v", err)
	}

	ctrl.RequestLogout(ctx)
	login(t, ctrl, "manager1", "admin")
	if err := ctrl.RequestAction(ctx, created.ID, "delete"); err != nil {
		t.Fatalf("manager delete: %v", err)
	}
	if _, err := repo.Get(created.ID); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected order gone, got %v", err)
	}
}

func TestSessionController_LoginExpectedRole(t *testing.T) {
	ctrl, repo, view := setup(t, nil)
	ctx := context.Background()
	sessionsBefore := view.sessions

	_, err := ctrl.SubmitLogin(ctx, "ivanov", "123456", domain.RoleManager)
	if !errors.Is(err, domain.ErrRoleMismatch) {
		t.Fatalf("expected ErrRoleMismatch, got %v", err)
	}
	if _, ok := repo.CurrentUser(); ok {
		t.Error("role mismatch must not start a session")
	}
	if u, _ := repo.User("ivanov"); u.Authenticated {
		t.Error("role mismatch must not authenticate the user")
	}
	if view.sessions != sessionsBefore {
		t.Error("role mismatch must not re-render")
	}

	if _, err := ctrl.SubmitLogin(ctx, "ivanov", "wrong", domain.RoleManager); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong credential, got %v", err)
	}

	if _, err := ctrl.SubmitLogin(ctx, "manager1", "admin", domain.RoleManager); err != nil {
		t.Fatalf("expected manager login to succeed: %v", err)
	}
}

func TestSessionController_LoginRequiresFields(t *testing.T) {
	ctrl, _, _ := setup(t, nil)
	_, err := ctrl.SubmitLogin(context.Background(), "", "", "")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if !strings.Contains(err.Error(), "username is required") {
		t.Errorf("expected field message, got %q", err)
	}
}

func TestSessionController_AnonymousCannotMutate(t *testing.T) {
	ctrl, _, _ := setup(t, makeOrders(1))
	ctx := context.Background()

	if _, err := ctrl.SubmitCreate(ctx, validCreateForm()); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Errorf("create: expected ErrNotAuthenticated, got %v", err)
	}
	if _, err := ctrl.SubmitEdit(ctx, "1", EditOrderForm{}); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Errorf("edit: expected ErrNotAuthenticated, got %v", err)
	}
	if err := ctrl.RequestAction(ctx, "1", "delete"); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Errorf("delete: expected ErrNotAuthenticated, got %v", err)
	}
	if err := ctrl.ShowStats(true); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Errorf("stats: expected ErrNotAuthenticated, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Create / Edit
// ---------------------------------------------------------------------------

func TestSessionController_CreateValidation(t *testing.T) {
	ctrl, repo, _ := setup(t, nil)
	login(t, ctrl, "ivanov", "123456")

	tests := []struct {
		name string
		form CreateOrderForm
		msg  string
	}{
		{"no guests", CreateOrderForm{Description: "x", Phone: "1", ServiceType: "delivery"}, "guests must be at least 1"},
		{"blank description", CreateOrderForm{Description: "   ", Phone: "1", ServiceType: "delivery", Guests: 1}, "description must not be blank"},
		{"long description", CreateOrderForm{Description: strings.Repeat("я", 200), Phone: "1", ServiceType: "delivery", Guests: 1}, "description must be at most 199 characters"},
		{"bad service", CreateOrderForm{Description: "x", Phone: "1", ServiceType: "takeaway", Guests: 1}, "service_type must be one of"},
		{"missing phone", CreateOrderForm{Description: "x", ServiceType: "delivery", Guests: 1}, "phone is required"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ctrl.SubmitCreate(context.Background(), tc.form)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.msg) {
				t.Errorf("expected message containing %q, got %q", tc.msg, err)
			}
		})
	}

	if repo.Count(nil) != 0 {
		t.Errorf("rejected forms must not create orders, got %d", repo.Count(nil))
	}
}

func TestSessionController_CreateStatusOnlyForManagers(t *testing.T) {
	ctrl, _, _ := setup(t, nil)
	ctx := context.Background()
	form := validCreateForm()
	form.Status = "confirmed"

	login(t, ctrl, "ivanov", "123456")
	created, err := ctrl.SubmitCreate(ctx, form)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != domain.StatusNew {
		t.Errorf("customer set status %q", created.Status)
	}

	login(t, ctrl, "manager1", "admin")
	created, err = ctrl.SubmitCreate(ctx, form)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != domain.StatusConfirmed {
		t.Errorf("expected manager-set status confirmed, got %q", created.Status)
	}
}

func TestSessionController_CourierCannotCreate(t *testing.T) {
	ctrl, _, _ := setup(t, nil)
	login(t, ctrl, "courier1", "ride")
	if _, err := ctrl.SubmitCreate(context.Background(), validCreateForm()); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestSessionController_CreateResetsPage(t *testing.T) {
	ctrl, _, _ := setup(t, makeOrders(12))
	login(t, ctrl, "ivanov", "123456")
	ctrl.RequestLoadMore()
	if ctrl.Page() != 2 {
		t.Fatalf("expected page 2, got %d", ctrl.Page())
	}
	if _, err := ctrl.SubmitCreate(context.Background(), validCreateForm()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if ctrl.Page() != 1 {
		t.Errorf("expected page reset to 1, got %d", ctrl.Page())
	}
}

func TestSessionController_Edit(t *testing.T) {
	ctrl, repo, view := setup(t, makeOrders(2))
	ctx := context.Background()
	login(t, ctrl, "ivanov", "123456")

	if err := ctrl.RequestAction(ctx, "2", "edit"); err != nil {
		t.Fatalf("edit action: %v", err)
	}
	if view.editing == nil || view.editing.ID != "2" {
		t.Fatalf("expected edit form for order 2, got %+v", view.editing)
	}

	desc := "Birthday dinner"
	guests := 6
	updated, err := ctrl.SubmitEdit(ctx, "2", EditOrderForm{Description: &desc, Guests: &guests})
	if err != nil {
		t.Fatalf("submit edit: %v", err)
	}
	if updated.ID != "2" || updated.Description != desc || updated.Guests != 6 {
		t.Errorf("unexpected update: %+v", updated)
	}
	stored, _ := repo.Get("2")
	if stored != updated {
		t.Errorf("stored %+v, returned %+v", stored, updated)
	}

	zero := 0
	if _, err := ctrl.SubmitEdit(ctx, "2", EditOrderForm{Guests: &zero}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for zero guests, got %v", err)
	}

	if _, err := ctrl.SubmitEdit(ctx, "404", EditOrderForm{}); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestSessionController_EditForeignOrderDenied(t *testing.T) {
	ctrl, repo, view := setup(t, makeOrders(1))
	ctx := context.Background()
	login(t, ctrl, "petrova", "qwerty")

	if err := ctrl.RequestAction(ctx, "1", "edit"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if view.editing != nil {
		t.Error("edit form shown despite denial")
	}

	desc := "hijacked"
	if _, err := ctrl.SubmitEdit(ctx, "1", EditOrderForm{Description: &desc}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if o, _ := repo.Get("1"); o.Description == desc {
		t.Error("foreign order modified")
	}
}

func TestSessionController_UnknownAction(t *testing.T) {
	ctrl, _, _ := setup(t, makeOrders(1))
	login(t, ctrl, "manager1", "admin")
	if err := ctrl.RequestAction(context.Background(), "1", "archive"); !errors.Is(err, domain.ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Listing
// ---------------------------------------------------------------------------

func TestSessionController_LoadMore(t *testing.T) {
	ctrl, _, view := setup(t, makeOrders(12))

	if view.page != (ports.PageInfo{Total: 12, Shown: 5, HasMore: true, NextBatch: 5}) {
		t.Fatalf("unexpected first page: %+v", view.page)
	}
	if view.orders[0].ID != "12" {
		t.Errorf("expected newest order first, got %s", view.orders[0].ID)
	}

	info := ctrl.RequestLoadMore()
	if info != (ports.PageInfo{Total: 12, Shown: 10, HasMore: true, NextBatch: 2}) {
		t.Fatalf("unexpected second page: %+v", info)
	}

	info = ctrl.RequestLoadMore()
	if info != (ports.PageInfo{Total: 12, Shown: 12}) {
		t.Fatalf("unexpected last page: %+v", info)
	}
	if len(view.orders) != 12 {
		t.Errorf("expected 12 rendered orders, got %d", len(view.orders))
	}

	ctrl.RequestLoadMore()
	if ctrl.Page() != 3 {
		t.Errorf("load more past the end must not advance, page=%d", ctrl.Page())
	}
}

func TestSessionController_Filter(t *testing.T) {
	ctrl, _, view := setup(t, makeOrders(12))
	ctrl.RequestLoadMore()

	if err := ctrl.SubmitFilter(FilterForm{Status: "COMPLETED"}); err != nil {
		t.Fatalf("filter: %v", err)
	}
	if ctrl.Page() != 1 {
		t.Errorf("expected page reset, got %d", ctrl.Page())
	}
	if view.page.Total != 4 {
		t.Fatalf("expected 4 completed orders, got %+v", view.page)
	}
	for _, o := range view.orders {
		if o.Status != domain.StatusCompleted {
			t.Errorf("non-completed order %s rendered", o.ID)
		}
	}

	if err := ctrl.SubmitFilter(FilterForm{Author: "IVA"}); err != nil {
		t.Fatalf("filter: %v", err)
	}
	if view.page.Total != 12 {
		t.Errorf("expected author substring to match all, got %d", view.page.Total)
	}

	if err := ctrl.SubmitFilter(FilterForm{}); err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(ctrl.Filter()) != 0 {
		t.Errorf("expected empty filter, got %v", ctrl.Filter())
	}
}

// ---------------------------------------------------------------------------
// Courier workflow
// ---------------------------------------------------------------------------

func TestSessionController_CourierAssignAndComplete(t *testing.T) {
	orders := makeOrders(2)
	orders[0].ServiceType = domain.ServiceDelivery
	orders[0].Status = domain.StatusConfirmed
	ctrl, repo, _ := setup(t, orders)
	ctx := context.Background()
	login(t, ctrl, "courier1", "ride")

	if err := ctrl.RequestAction(ctx, "1", "assign"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	o, _ := repo.Get("1")
	if o.Status != domain.StatusInTransit {
		t.Errorf("expected in-transit, got %s", o.Status)
	}
	c, _ := repo.User("courier1")
	if !c.Courier.HasAssignment("1") {
		t.Fatalf("expected assignment recorded, got %v", c.Courier.AssignedOrders)
	}

	if err := ctrl.RequestAction(ctx, "1", "complete"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	o, _ = repo.Get("1")
	if o.Status != domain.StatusCompleted {
		t.Errorf("expected completed, got %s", o.Status)
	}
	c, _ = repo.User("courier1")
	if c.Courier.HasAssignment("1") {
		t.Error("expected assignment released")
	}

	if err := ctrl.RequestAction(ctx, "2", "complete"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected in-venue completion forbidden, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Stats view
// ---------------------------------------------------------------------------

func TestSessionController_Stats(t *testing.T) {
	orders := makeOrders(6)
	ctrl, _, view := setup(t, orders)
	ctx := context.Background()

	login(t, ctrl, "ivanov", "123456")
	if err := ctrl.ShowStats(true); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for customer, got %v", err)
	}
	if view.stats != nil {
		t.Fatal("stats rendered for a customer")
	}

	login(t, ctrl, "manager1", "admin")
	if err := ctrl.ShowStats(true); err != nil {
		t.Fatalf("show stats: %v", err)
	}
	if view.stats == nil {
		t.Fatal("expected stats rendered")
	}
	if view.stats.TotalOrders != 6 {
		t.Errorf("expected 6 orders, got %d", view.stats.TotalOrders)
	}
	// orders 1 and 4 are completed and created in October 2023
	if view.stats.Revenue != 2*repository.RevenuePerCompletedOrder {
		t.Errorf("unexpected revenue %v", view.stats.Revenue)
	}

	ctrl.RequestLogout(ctx)
	if ctrl.StatsActive() {
		t.Error("stats view must close on logout")
	}
}
