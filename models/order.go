package models

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"gorm.io/datatypes"
)

// OrderStatus represents all possible states of an order
type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusPreparing      OrderStatus = "preparing"
	StatusReady          OrderStatus = "ready"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{
	StatusPending, StatusConfirmed, StatusPreparing, StatusReady,
	StatusOutForDelivery, StatusDelivered, StatusCancelled,
}

type PaymentMethod string

const (
	PaymentCard          PaymentMethod = "card"
	PaymentCash          PaymentMethod = "cash"
	PaymentDigitalWallet PaymentMethod = "digital_wallet"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// TaxRate is applied to subtotal plus delivery fee.
const TaxRate = 0.08

// SelectedCustomization is the option a customer picked for one customization
// group, with the price captured at order time.
type SelectedCustomization struct {
	Name   string  `json:"name" bson:"name" validate:"required"`
	Option string  `json:"option" bson:"option" validate:"required"`
	Price  float64 `json:"price" bson:"price"`
}

type OrderItem struct {
	MenuItemID          string                  `json:"menuItem" bson:"menuItem"`
	Name                string                  `json:"name" bson:"name"`
	Quantity            int                     `json:"quantity" bson:"quantity"`
	Customizations      []SelectedCustomization `json:"customizations" bson:"customizations"`
	Price               float64                 `json:"price" bson:"price"` // unit price snapshot
	SpecialInstructions string                  `json:"specialInstructions,omitempty" bson:"specialInstructions,omitempty"`
}

type DeliveryAddress struct {
	Street       string      `json:"street" bson:"street" validate:"required"`
	City         string      `json:"city" bson:"city" validate:"required"`
	State        string      `json:"state" bson:"state" validate:"required"`
	ZipCode      string      `json:"zipCode" bson:"zipCode" validate:"required"`
	Coordinates  Coordinates `json:"coordinates" bson:"coordinates" gorm:"embedded;embeddedPrefix:coordinates_"`
	Instructions string      `json:"instructions,omitempty" bson:"instructions,omitempty"`
}

type Pricing struct {
	Subtotal    float64 `json:"subtotal" bson:"subtotal" validate:"gte=0"`
	DeliveryFee float64 `json:"deliveryFee" bson:"deliveryFee" validate:"gte=0"`
	Tax         float64 `json:"tax" bson:"tax" validate:"gte=0"`
	Tip         float64 `json:"tip" bson:"tip" validate:"gte=0"`
	Total       float64 `json:"total" bson:"total" validate:"gte=0"`
}

// ComputePricing derives tax and total from the subtotal, delivery fee and tip.
func ComputePricing(subtotal, deliveryFee, tip float64) Pricing {
	subtotal = roundTo(subtotal, 2)
	tax := roundTo((subtotal+deliveryFee)*TaxRate, 2)
	return Pricing{
		Subtotal:    subtotal,
		DeliveryFee: deliveryFee,
		Tax:         tax,
		Tip:         tip,
		Total:       roundTo(subtotal+deliveryFee+tax+tip, 2),
	}
}

type Payment struct {
	Method        PaymentMethod `json:"method" bson:"method"`
	Status        PaymentStatus `json:"status" bson:"status"`
	TransactionID string        `json:"transactionId,omitempty" bson:"transactionId,omitempty"`
}

type TrackingEvent struct {
	Status    OrderStatus  `json:"status" bson:"status"`
	Timestamp time.Time    `json:"timestamp" bson:"timestamp"`
	Location  *Coordinates `json:"location,omitempty" bson:"location,omitempty"`
	Note      string       `json:"note,omitempty" bson:"note,omitempty"`
}

type Delivery struct {
	EstimatedTime      *time.Time                         `json:"estimatedTime,omitempty" bson:"estimatedTime,omitempty"`
	ActualDeliveryTime *time.Time                         `json:"actualDeliveryTime,omitempty" bson:"actualDeliveryTime,omitempty"`
	DriverID           string                             `json:"driver,omitempty" bson:"driver,omitempty" gorm:"column:driver;size:24;index"`
	Tracking           datatypes.JSONSlice[TrackingEvent] `json:"tracking" bson:"tracking"`
}

type OrderNotes struct {
	Customer   string `json:"customer,omitempty" bson:"customer,omitempty"`
	Restaurant string `json:"restaurant,omitempty" bson:"restaurant,omitempty"`
	Driver     string `json:"driver,omitempty" bson:"driver,omitempty"`
}

type OrderRating struct {
	Food     int       `json:"food" bson:"food"`
	Delivery int       `json:"delivery" bson:"delivery"`
	Overall  int       `json:"overall" bson:"overall"`
	Review   string    `json:"review,omitempty" bson:"review,omitempty"`
	RatedAt  time.Time `json:"ratedAt" bson:"ratedAt"`
}

type Order struct {
	ID              string                         `json:"id" bson:"_id" gorm:"primaryKey;size:24"`
	OrderNumber     string                         `json:"orderNumber" bson:"orderNumber" gorm:"uniqueIndex;not null"`
	CustomerID      string                         `json:"customer" bson:"customer" gorm:"size:24;index;not null"`
	RestaurantID    string                         `json:"restaurant" bson:"restaurant" gorm:"size:24;index;not null"`
	Items           datatypes.JSONSlice[OrderItem] `json:"items" bson:"items"`
	DeliveryAddress DeliveryAddress                `json:"deliveryAddress" bson:"deliveryAddress" gorm:"embedded;embeddedPrefix:delivery_address_"`
	Pricing         Pricing                        `json:"pricing" bson:"pricing" gorm:"embedded;embeddedPrefix:pricing_"`
	Status          OrderStatus                    `json:"status" bson:"status" gorm:"not null;index"`
	Payment         Payment                        `json:"payment" bson:"payment" gorm:"embedded;embeddedPrefix:payment_"`
	Delivery        Delivery                       `json:"delivery" bson:"delivery" gorm:"embedded;embeddedPrefix:delivery_"`
	Notes           OrderNotes                     `json:"notes" bson:"notes" gorm:"embedded;embeddedPrefix:notes_"`
	Rating          *OrderRating                   `json:"rating,omitempty" bson:"rating,omitempty" gorm:"serializer:json"`
	CreatedAt       time.Time                      `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time                      `json:"updatedAt" bson:"updatedAt"`
}

// Track appends a tracking event for the order's current status.
func (o *Order) Track(at time.Time, note string) {
	o.Delivery.Tracking = append(o.Delivery.Tracking, TrackingEvent{
		Status:    o.Status,
		Timestamp: at,
		Note:      note,
	})
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

const orderSuffixAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewOrderNumber formats ORD-<unix millis>-<5 random base36 characters>.
func NewOrderNumber(at time.Time) string {
	suffix := make([]byte, 5)
	for i := range suffix {
		suffix[i] = orderSuffixAlphabet[rand.Intn(len(orderSuffixAlphabet))]
	}
	return fmt.Sprintf("ORD-%d-%s", at.UnixMilli(), suffix)
}
