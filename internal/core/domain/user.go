package domain

// Role tags which profile a User carries.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleCourier  Role = "courier"
	RoleManager  Role = "manager"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleCourier || r == RoleManager
}

// CustomerProfile holds the customer-only attributes.
type CustomerProfile struct {
	Phone         string
	Address       string
	LoyaltyPoints int
	PreferredHall string
}

// CourierProfile holds the courier-only attributes. AssignedOrders are weak
// references to order ids; the order status stays the source of truth.
type CourierProfile struct {
	VehicleType    string
	Rating         float64
	DeliveryZone   string
	IsAvailable    bool
	AssignedOrders []string
}

// HasAssignment reports whether orderID is in the courier's assignment list.
func (p *CourierProfile) HasAssignment(orderID string) bool {
	for _, id := range p.AssignedOrders {
		if id == orderID {
			return true
		}
	}
	return false
}

// ManagerProfile holds the manager-only attributes.
type ManagerProfile struct {
	Branch      string
	AccessLevel int
}

// User models an actor of the order desk. It is a tagged variant: Role selects
// which one of the profile pointers is set. A user with an unknown role keeps
// only the base fields.
//
// Credential is compared verbatim; it is never hashed.
type User struct {
	ID            string
	Username      string
	Credential    string
	Role          Role
	Authenticated bool

	Customer *CustomerProfile
	Courier  *CourierProfile
	Manager  *ManagerProfile
}

// NewCustomer builds a customer. Negative loyalty points are clamped to zero.
func NewCustomer(id, username, credential string, p CustomerProfile) User {
	if p.LoyaltyPoints < 0 {
		p.LoyaltyPoints = 0
	}
	return User{ID: id, Username: username, Credential: credential, Role: RoleCustomer, Customer: &p}
}

// NewCourier builds a courier with the availability it was given.
func NewCourier(id, username, credential string, p CourierProfile) User {
	p.AssignedOrders = append([]string(nil), p.AssignedOrders...)
	return User{ID: id, Username: username, Credential: credential, Role: RoleCourier, Courier: &p}
}

// NewManager builds a manager.
func NewManager(id, username, credential string, p ManagerProfile) User {
	return User{ID: id, Username: username, Credential: credential, Role: RoleManager, Manager: &p}
}

// Clone returns a deep copy of u.
func (u User) Clone() User {
	if u.Customer != nil {
		p := *u.Customer
		u.Customer = &p
	}
	if u.Courier != nil {
		p := *u.Courier
		p.AssignedOrders = append([]string(nil), u.Courier.AssignedOrders...)
		u.Courier = &p
	}
	if u.Manager != nil {
		p := *u.Manager
		u.Manager = &p
	}
	return u
}
