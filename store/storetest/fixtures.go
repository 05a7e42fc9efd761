// Package storetest holds document builders shared by store and handler tests.
package storetest

import (
	"food-storefront/models"

	"gorm.io/datatypes"
)

func User(email string, role models.UserRole) *models.User {
	return &models.User{
		ID:           models.NewID(),
		Name:         "Test User",
		Email:        email,
		PasswordHash: "x",
		Phone:        "+1 555 0100",
		Role:         role,
		IsActive:     true,
	}
}

// Restaurant returns a valid, active and open restaurant in New York.
func Restaurant(ownerID, name string, cuisines ...string) *models.Restaurant {
	if len(cuisines) == 0 {
		cuisines = []string{"Italian"}
	}
	r := &models.Restaurant{
		ID:          models.NewID(),
		Name:        name,
		Description: "Fresh food made daily",
		OwnerID:     ownerID,
		Cuisine:     datatypes.JSONSlice[string](cuisines),
		Address: models.Address{
			Street: "1 Main St", City: "New York", State: "NY", ZipCode: "10001",
			Coordinates: models.Coordinates{Lat: 40.7128, Lng: -74.0060},
		},
		Contact: models.Contact{Phone: "+1 555 0101", Email: "hello@example.com"},
		DeliveryInfo: models.DeliveryInfo{
			EstimatedTime: 30, DeliveryFee: 2.5, MinimumOrder: 10, DeliveryRadius: 5,
		},
		IsActive: true,
		IsOpen:   true,
	}
	r.ApplyDefaults()
	return r
}

func MenuItem(restaurantID, name, category string, price float64) *models.MenuItem {
	m := &models.MenuItem{
		ID:              models.NewID(),
		Name:            name,
		Description:     "House special",
		RestaurantID:    restaurantID,
		Category:        category,
		Price:           price,
		Availability:    true,
		PreparationTime: 15,
	}
	m.ApplyDefaults()
	return m
}

func Order(customerID, restaurantID string, status models.OrderStatus) *models.Order {
	return &models.Order{
		ID:           models.NewID(),
		OrderNumber:  "ORD-" + models.NewID(),
		CustomerID:   customerID,
		RestaurantID: restaurantID,
		Items: datatypes.JSONSlice[models.OrderItem]{
			{MenuItemID: models.NewID(), Name: "Pizza", Quantity: 1, Price: 12},
		},
		DeliveryAddress: models.DeliveryAddress{Street: "2 Side St", City: "New York", State: "NY", ZipCode: "10002"},
		Pricing:         models.ComputePricing(12, 2.5, 0),
		Status:          status,
		Payment:         models.Payment{Method: models.PaymentCard, Status: models.PaymentPaid},
		Delivery:        models.Delivery{Tracking: datatypes.JSONSlice[models.TrackingEvent]{}},
	}
}
