package persistence

import (
	"fmt"
	"time"

	"github.com/lab67/orderdesk/internal/core/domain"
)

// orderRecord is the at-rest shape of an order.
type orderRecord struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
	Author      string `json:"author"`
	Phone       string `json:"phone"`
	ServiceType string `json:"serviceType"`
	Guests      int    `json:"guests"`
	Status      string `json:"status"`
}

func toOrderRecord(o domain.Order) orderRecord {
	return orderRecord{
		ID:          o.ID,
		Description: o.Description,
		CreatedAt:   o.CreatedAt.UTC().Format(time.RFC3339Nano),
		Author:      o.Author,
		Phone:       o.Phone,
		ServiceType: string(o.ServiceType),
		Guests:      o.Guests,
		Status:      string(o.Status),
	}
}

func (r orderRecord) toDomain() (domain.Order, error) {
	createdAt, ok := domain.ParseTimestamp(r.CreatedAt)
	if !ok {
		return domain.Order{}, fmt.Errorf("undecodable createdAt %q", r.CreatedAt)
	}
	return domain.Order{
		ID:          r.ID,
		Description: r.Description,
		CreatedAt:   createdAt,
		Author:      r.Author,
		Phone:       r.Phone,
		ServiceType: domain.ServiceType(r.ServiceType),
		Guests:      r.Guests,
		Status:      domain.OrderStatus(r.Status),
	}, nil
}

// userRecord flattens every variant into one object; role selects which of the
// optional fields are meaningful.
type userRecord struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Password      string `json:"password"`
	Role          string `json:"role"`
	Authenticated bool   `json:"authenticated"`

	Phone         string `json:"phone,omitempty"`
	Address       string `json:"address,omitempty"`
	LoyaltyPoints int    `json:"loyaltyPoints,omitempty"`
	PreferredHall string `json:"preferredHall,omitempty"`

	VehicleType    string   `json:"vehicleType,omitempty"`
	Rating         float64  `json:"rating,omitempty"`
	DeliveryZone   string   `json:"deliveryZone,omitempty"`
	IsAvailable    *bool    `json:"isAvailable,omitempty"`
	AssignedOrders []string `json:"assignedOrders,omitempty"`

	Branch      string `json:"branch,omitempty"`
	AccessLevel int    `json:"accessLevel,omitempty"`
}

func toUserRecord(u domain.User) userRecord {
	r := userRecord{
		ID:       u.ID,
		Username: u.Username,
		Password: u.Credential,
		Role:     string(u.Role),
		// Sessions never survive at rest.
		Authenticated: false,
	}
	switch u.Role {
	case domain.RoleCustomer:
		if p := u.Customer; p != nil {
			r.Phone, r.Address, r.LoyaltyPoints, r.PreferredHall = p.Phone, p.Address, p.LoyaltyPoints, p.PreferredHall
		}
	case domain.RoleCourier:
		if p := u.Courier; p != nil {
			available := p.IsAvailable
			r.VehicleType, r.Rating, r.DeliveryZone = p.VehicleType, p.Rating, p.DeliveryZone
			r.IsAvailable = &available
			r.AssignedOrders = append([]string(nil), p.AssignedOrders...)
		}
	case domain.RoleManager:
		if p := u.Manager; p != nil {
			r.Branch, r.AccessLevel = p.Branch, p.AccessLevel
		}
	}
	return r
}

func (r userRecord) toDomain() domain.User {
	switch domain.Role(r.Role) {
	case domain.RoleCustomer:
		return domain.NewCustomer(r.ID, r.Username, r.Password, domain.CustomerProfile{
			Phone:         r.Phone,
			Address:       r.Address,
			LoyaltyPoints: r.LoyaltyPoints,
			PreferredHall: r.PreferredHall,
		})
	case domain.RoleCourier:
		return domain.NewCourier(r.ID, r.Username, r.Password, domain.CourierProfile{
			VehicleType:    r.VehicleType,
			Rating:         r.Rating,
			DeliveryZone:   r.DeliveryZone,
			IsAvailable:    r.IsAvailable != nil && *r.IsAvailable,
			AssignedOrders: r.AssignedOrders,
		})
	case domain.RoleManager:
		return domain.NewManager(r.ID, r.Username, r.Password, domain.ManagerProfile{
			Branch:      r.Branch,
			AccessLevel: r.AccessLevel,
		})
	default:
		return domain.User{ID: r.ID, Username: r.Username, Credential: r.Password, Role: domain.Role(r.Role)}
	}
}
