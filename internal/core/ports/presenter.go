package ports

import "github.com/lab67/orderdesk/internal/core/domain"

// PageInfo tells the presentation layer whether to offer further pagination.
type PageInfo struct {
	Total   int
	Shown   int
	HasMore bool
	// NextBatch is how many more orders a load-more request would reveal.
	NextBatch int
}

// Presenter renders controller state. It is driven after every transition.
type Presenter interface {
	RenderOrders(orders []domain.Order, page PageInfo)
	// RenderSession receives nil when nobody is logged in.
	RenderSession(user *domain.User)
	RenderStats(stats domain.Stats)
	ShowEditForm(order domain.Order)
}
