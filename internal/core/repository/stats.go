package repository

import (
	"time"

	"github.com/lab67/orderdesk/internal/core/domain"
)

// RevenuePerCompletedOrder is an illustrative flat amount. Orders carry no
// line items, so there is nothing real to sum.
const RevenuePerCompletedOrder = 1500.0

// popularDishes is a fixed placeholder ranking; no order data feeds it.
var popularDishes = []domain.DishCount{
	{Name: "Pepperoni pizza", Count: 42},
	{Name: "Sushi set", Count: 35},
	{Name: "Business lunch", Count: 28},
	{Name: "Burger", Count: 21},
	{Name: "Cheesecake", Count: 17},
}

// MonthlyRevenue is a stub: completed orders created in now's calendar month
// multiplied by RevenuePerCompletedOrder.
func (r *Repository) MonthlyRevenue(now time.Time) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now = now.UTC()
	completed := 0
	for _, o := range r.orders {
		created := o.CreatedAt.UTC()
		if o.Status == domain.StatusCompleted && created.Year() == now.Year() && created.Month() == now.Month() {
			completed++
		}
	}
	return float64(completed) * RevenuePerCompletedOrder
}

// PopularDishes returns the placeholder ranking.
func (r *Repository) PopularDishes() []domain.DishCount {
	return append([]domain.DishCount(nil), popularDishes...)
}

// Stats assembles the manager dashboard payload.
func (r *Repository) Stats(now time.Time) domain.Stats {
	revenue := r.MonthlyRevenue(now)

	r.mu.RLock()
	total := len(r.orders)
	r.mu.RUnlock()

	return domain.Stats{
		Revenue:       revenue,
		TotalOrders:   total,
		PopularDishes: r.PopularDishes(),
	}
}
