package models

import (
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleCustomer        UserRole = "customer"
	RoleRestaurantOwner UserRole = "restaurant_owner"
	RoleDeliveryDriver  UserRole = "delivery_driver"
	RoleAdmin           UserRole = "admin"
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" bson:"lng" validate:"gte=-180,lte=180"`
}

type Address struct {
	Street      string      `json:"street" bson:"street" validate:"required"`
	City        string      `json:"city" bson:"city" validate:"required"`
	State       string      `json:"state" bson:"state" validate:"required"`
	ZipCode     string      `json:"zipCode" bson:"zipCode" validate:"required"`
	Coordinates Coordinates `json:"coordinates" bson:"coordinates" gorm:"embedded;embeddedPrefix:coordinates_"`
}

type Preferences struct {
	Cuisines            []string `json:"cuisines" bson:"cuisines"`
	DietaryRestrictions []string `json:"dietaryRestrictions" bson:"dietaryRestrictions"`
	Notifications       bool     `json:"notifications" bson:"notifications"`
}

type User struct {
	ID           string      `json:"id" bson:"_id" gorm:"primaryKey;size:24"`
	Name         string      `json:"name" bson:"name" gorm:"not null"`
	Email        string      `json:"email" bson:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string      `json:"-" bson:"passwordHash" gorm:"not null"`
	Phone        string      `json:"phone" bson:"phone"`
	Role         UserRole    `json:"role" bson:"role" gorm:"not null;index"`
	Address      Address     `json:"address" bson:"address" gorm:"embedded;embeddedPrefix:address_"`
	Preferences  Preferences `json:"preferences" bson:"preferences" gorm:"serializer:json"`
	IsActive     bool        `json:"isActive" bson:"isActive"`
	CreatedAt    time.Time   `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt" bson:"updatedAt"`
}
