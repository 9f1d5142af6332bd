// Package seed holds the bootstrap accounts and the demo order set loaded into
// an empty store.
package seed

import (
	"time"

	"github.com/google/uuid"

	"github.com/lab67/orderdesk/internal/core/domain"
)

// userNamespace derives stable user ids from usernames, so a re-seeded store
// hands out the same ids.
var userNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://lab67.example/orderdesk/users"))

func userID(username string) string {
	return uuid.NewSHA1(userNamespace, []byte(username)).String()
}

// Users returns the bootstrap accounts, one or more per role.
func Users() []domain.User {
	return []domain.User{
		domain.NewCustomer(userID("ivanov"), "ivanov", "123456", domain.CustomerProfile{
			Phone:         "+79001112233",
			Address:       "Lenina 1, apt. 5",
			LoyaltyPoints: 120,
			PreferredHall: "main",
		}),
		domain.NewCustomer(userID("petrova"), "petrova", "qwerty", domain.CustomerProfile{
			Phone:         "+79004445566",
			PreferredHall: "terrace",
		}),
		domain.NewCourier(userID("courier1"), "courier1", "courier", domain.CourierProfile{
			VehicleType:  "bike",
			Rating:       4.8,
			DeliveryZone: "center",
			IsAvailable:  true,
		}),
		domain.NewManager(userID("manager1"), "manager1", "admin", domain.ManagerProfile{
			Branch:      "central",
			AccessLevel: 3,
		}),
	}
}

func at(day, hour, minute int) time.Time {
	return time.Date(2023, time.October, day, hour, minute, 0, 0, time.UTC)
}

// DemoOrders returns twenty sample orders created between 1 and 14 October 2023.
func DemoOrders() []domain.Order {
	const (
		venue    = domain.ServiceInVenue
		delivery = domain.ServiceDelivery
	)
	return []domain.Order{
		{ID: "1", Description: "Birthday booking, cake needed.", CreatedAt: at(1, 10, 0), Author: "ivanov", Phone: "+79001112233", ServiceType: venue, Guests: 5, Status: domain.StatusConfirmed},
		{ID: "2", Description: "Quiet table by the window.", CreatedAt: at(1, 11, 30), Author: "petrova", Phone: "+79004445566", ServiceType: venue, Guests: 2, Status: domain.StatusPending},
		{ID: "3", Description: "Office lunch delivery.", CreatedAt: at(2, 9, 15), Author: "Sidorov Alexey", Phone: "+79007778899", ServiceType: delivery, Guests: 10, Status: domain.StatusInTransit},
		{ID: "4", Description: "Corporate banquet.", CreatedAt: at(2, 14, 0), Author: "Vector LLC", Phone: "+79001234567", ServiceType: venue, Guests: 20, Status: domain.StatusConfirmed},
		{ID: "5", Description: "Dinner for two.", CreatedAt: at(3, 18, 0), Author: "Smirnov Dmitry", Phone: "+79009876543", ServiceType: venue, Guests: 2, Status: domain.StatusCompleted},
		{ID: "6", Description: "Kids party", CreatedAt: at(4, 12, 0), Author: "Maria K.", Phone: "12345", ServiceType: venue, Guests: 8, Status: domain.StatusPending},
		{ID: "7", Description: "Pepperoni pizza x3", CreatedAt: at(4, 13, 0), Author: "Kolya", Phone: "54321", ServiceType: delivery, Guests: 1, Status: domain.StatusInTransit},
		{ID: "8", Description: "Class reunion", CreatedAt: at(5, 17, 0), Author: "ivanov", Phone: "11223", ServiceType: venue, Guests: 15, Status: domain.StatusConfirmed},
		{ID: "9", Description: "Breakfast", CreatedAt: at(6, 8, 0), Author: "Oleg", Phone: "33221", ServiceType: venue, Guests: 1, Status: domain.StatusCompleted},
		{ID: "10", Description: "Sushi sets", CreatedAt: at(6, 19, 0), Author: "Alina", Phone: "44556", ServiceType: delivery, Guests: 4, Status: domain.StatusNew},
		{ID: "11", Description: "Business lunch", CreatedAt: at(7, 12, 30), Author: "Maxim", Phone: "77889", ServiceType: venue, Guests: 3, Status: domain.StatusCompleted},
		{ID: "12", Description: "50th anniversary", CreatedAt: at(8, 15, 0), Author: "Valentina", Phone: "99001", ServiceType: venue, Guests: 50, Status: domain.StatusConfirmed},
		{ID: "13", Description: "Burgers to go", CreatedAt: at(8, 20, 0), Author: "Stas", Phone: "22334", ServiceType: delivery, Guests: 2, Status: domain.StatusInTransit},
		{ID: "14", Description: "Coffee and dessert", CreatedAt: at(9, 10, 0), Author: "Victoria", Phone: "55667", ServiceType: venue, Guests: 1, Status: domain.StatusNew},
		{ID: "15", Description: "Family lunch", CreatedAt: at(9, 14, 0), Author: "ivanov", Phone: "88990", ServiceType: venue, Guests: 4, Status: domain.StatusConfirmed},
		{ID: "16", Description: "Romantic dinner", CreatedAt: at(10, 19, 30), Author: "Artem", Phone: "11122", ServiceType: venue, Guests: 2, Status: domain.StatusCompleted},
		{ID: "17", Description: "Pie order", CreatedAt: at(11, 9, 0), Author: "Office 303", Phone: "33344", ServiceType: delivery, Guests: 20, Status: domain.StatusConfirmed},
		{ID: "18", Description: "VIP room", CreatedAt: at(12, 21, 0), Author: "Grigory L.", Phone: "55566", ServiceType: venue, Guests: 5, Status: domain.StatusPending},
		{ID: "19", Description: "Vegan menu", CreatedAt: at(13, 13, 0), Author: "Liza", Phone: "77788", ServiceType: delivery, Guests: 1, Status: domain.StatusNew},
		{ID: "20", Description: "Tea ceremony", CreatedAt: at(14, 16, 0), Author: "Tea Club", Phone: "99900", ServiceType: venue, Guests: 6, Status: domain.StatusConfirmed},
	}
}
