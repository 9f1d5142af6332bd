package domain

import "testing"

func TestNewCustomer_ClampsLoyaltyPoints(t *testing.T) {
	u := NewCustomer("u1", "ivanov", "123456", CustomerProfile{LoyaltyPoints: -10})
	if u.Role != RoleCustomer || u.Customer == nil {
		t.Fatalf("expected customer variant, got %+v", u)
	}
	if u.Customer.LoyaltyPoints != 0 {
		t.Errorf("expected loyalty points clamped to 0, got %d", u.Customer.LoyaltyPoints)
	}
	if u.Courier != nil || u.Manager != nil {
		t.Error("customer must not carry other profiles")
	}
}

func TestNewCourier_KeepsAvailability(t *testing.T) {
	u := NewCourier("u2", "courier1", "pass", CourierProfile{IsAvailable: false})
	if u.Courier.IsAvailable {
		t.Error("expected courier to stay unavailable")
	}
}

func TestUser_Clone_IsDeep(t *testing.T) {
	u := NewCourier("u2", "courier1", "pass", CourierProfile{AssignedOrders: []string{"3"}})
	clone := u.Clone()

	clone.Courier.AssignedOrders[0] = "99"
	clone.Courier.DeliveryZone = "north"

	if u.Courier.AssignedOrders[0] != "3" {
		t.Error("clone shares the assignment slice")
	}
	if u.Courier.DeliveryZone != "" {
		t.Error("clone shares the profile")
	}
	if !clone.Courier.HasAssignment("99") || clone.Courier.HasAssignment("3") {
		t.Error("HasAssignment did not follow the clone")
	}
}
