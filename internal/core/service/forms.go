package service

import (
	"strings"
	"time"

	"github.com/lab67/orderdesk/internal/core/domain"
)

// --- Controller inputs ---

// CreateOrderForm is what the presentation layer submits to place an order.
// The author is the logged-in user, the creation time is now and the status
// starts as new unless a manager sets it.
type CreateOrderForm struct {
	Description string `form:"description"  validate:"required,notblank,max=199"`
	Phone       string `form:"phone"        validate:"required,notblank"`
	ServiceType string `form:"service_type" validate:"required,oneof=in-venue delivery"`
	Guests      int    `form:"guests"       validate:"min=1"`
	Status      string `form:"status"       validate:"omitempty,oneof=new pending confirmed in-transit completed"`
}

// EditOrderForm is a partial update. Nil fields are left untouched. CreatedAt
// is passed through as text; an unparsable value is ignored by the repository.
type EditOrderForm struct {
	Description *string `form:"description"  validate:"omitempty,notblank,max=199"`
	CreatedAt   *string `form:"created_at"`
	Author      *string `form:"author"       validate:"omitempty,notblank"`
	Phone       *string `form:"phone"        validate:"omitempty,notblank"`
	ServiceType *string `form:"service_type" validate:"omitempty,oneof=in-venue delivery"`
	Guests      *int    `form:"guests"       validate:"omitempty,min=1"`
	Status      *string `form:"status"       validate:"omitempty,oneof=new pending confirmed in-transit completed"`
}

// FilterForm narrows the visible list. Empty fields are not constrained; an
// unknown status simply matches nothing.
type FilterForm struct {
	Author string `form:"author"`
	Status string `form:"status"`
}

type loginForm struct {
	Username     string `form:"username"      validate:"required"`
	Credential   string `form:"credential"    validate:"required"`
	ExpectedRole string `form:"expected_role" validate:"omitempty,oneof=customer courier manager"`
}

// --- Form → domain ---

func (f CreateOrderForm) toOrder(author string, now time.Time) domain.Order {
	status := domain.StatusNew
	if f.Status != "" {
		status = domain.OrderStatus(f.Status)
	}
	return domain.Order{
		Description: f.Description,
		CreatedAt:   now.UTC(),
		Author:      author,
		Phone:       f.Phone,
		ServiceType: domain.ServiceType(f.ServiceType),
		Guests:      f.Guests,
		Status:      status,
	}
}

func (f EditOrderForm) toPatch() domain.OrderPatch {
	patch := domain.OrderPatch{
		Description: f.Description,
		CreatedAt:   f.CreatedAt,
		Author:      f.Author,
		Phone:       f.Phone,
		Guests:      f.Guests,
	}
	if f.ServiceType != nil {
		st := domain.ServiceType(*f.ServiceType)
		patch.ServiceType = &st
	}
	if f.Status != nil {
		s := domain.OrderStatus(*f.Status)
		patch.Status = &s
	}
	return patch
}

func (f FilterForm) toFilter() domain.Filter {
	filter := domain.Filter{}
	if a := strings.TrimSpace(f.Author); a != "" {
		filter[domain.FieldAuthor] = a
	}
	if s := strings.TrimSpace(f.Status); s != "" {
		filter[domain.FieldStatus] = s
	}
	return filter
}
