package models

import (
	"time"

	"gorm.io/datatypes"
)

// Cuisines is the closed set of cuisine tags a restaurant may carry.
var Cuisines = []string{
	"Italian", "Chinese", "Indian", "Mexican", "American",
	"Thai", "Japanese", "Mediterranean", "Fast Food",
	"Desserts", "Vegetarian", "Vegan",
}

var RestaurantFeatures = []string{
	"Free Delivery", "Fast Delivery", "Vegetarian Options", "Vegan Options",
	"Gluten Free", "Halal", "Kosher",
}

type Image struct {
	URL string `json:"url" bson:"url"`
	Alt string `json:"alt" bson:"alt"`
}

// Rating is an aggregate of individual scores.
type Rating struct {
	Average float64 `json:"average" bson:"average"`
	Count   int     `json:"count" bson:"count"`
}

// Add folds a new score into the aggregate.
func (r *Rating) Add(score float64) {
	total := r.Average*float64(r.Count) + score
	r.Count++
	r.Average = roundTo(total/float64(r.Count), 2)
}

// Replace swaps a previously added score for a new one.
func (r *Rating) Replace(old, score float64) {
	if r.Count == 0 {
		r.Add(score)
		return
	}
	total := r.Average*float64(r.Count) - old + score
	r.Average = roundTo(total/float64(r.Count), 2)
}

type Contact struct {
	Phone string `json:"phone" bson:"phone" validate:"required"`
	Email string `json:"email" bson:"email" validate:"required,email"`
}

type DeliveryInfo struct {
	EstimatedTime  int     `json:"estimatedTime" bson:"estimatedTime" validate:"min=15,max=120"`
	DeliveryFee    float64 `json:"deliveryFee" bson:"deliveryFee" validate:"gte=0"`
	MinimumOrder   float64 `json:"minimumOrder" bson:"minimumOrder" validate:"gte=0"`
	DeliveryRadius float64 `json:"deliveryRadius" bson:"deliveryRadius" validate:"gte=1,lte=50"`
}

type DayHours struct {
	Open   string `json:"open" bson:"open"`
	Close  string `json:"close" bson:"close"`
	IsOpen bool   `json:"isOpen" bson:"isOpen"`
}

type OperatingHours struct {
	Monday    DayHours `json:"monday" bson:"monday"`
	Tuesday   DayHours `json:"tuesday" bson:"tuesday"`
	Wednesday DayHours `json:"wednesday" bson:"wednesday"`
	Thursday  DayHours `json:"thursday" bson:"thursday"`
	Friday    DayHours `json:"friday" bson:"friday"`
	Saturday  DayHours `json:"saturday" bson:"saturday"`
	Sunday    DayHours `json:"sunday" bson:"sunday"`
}

// For returns the hours of the given weekday.
func (h OperatingHours) For(day time.Weekday) DayHours {
	switch day {
	case time.Monday:
		return h.Monday
	case time.Tuesday:
		return h.Tuesday
	case time.Wednesday:
		return h.Wednesday
	case time.Thursday:
		return h.Thursday
	case time.Friday:
		return h.Friday
	case time.Saturday:
		return h.Saturday
	default:
		return h.Sunday
	}
}

type Restaurant struct {
	ID             string                      `json:"id" bson:"_id" gorm:"primaryKey;size:24"`
	Name           string                      `json:"name" bson:"name" gorm:"not null" validate:"required,min=2,max=100"`
	Description    string                      `json:"description" bson:"description" validate:"required,max=500"`
	OwnerID        string                      `json:"owner" bson:"owner" gorm:"size:24;index;not null"`
	Cuisine        datatypes.JSONSlice[string] `json:"cuisine" bson:"cuisine" validate:"required,min=1,dive,cuisine"`
	Address        Address                     `json:"address" bson:"address" gorm:"embedded;embeddedPrefix:address_"`
	Contact        Contact                     `json:"contact" bson:"contact" gorm:"embedded;embeddedPrefix:contact_"`
	Images         datatypes.JSONSlice[Image]  `json:"images" bson:"images"`
	Rating         Rating                      `json:"rating" bson:"rating" gorm:"embedded;embeddedPrefix:rating_"`
	DeliveryInfo   DeliveryInfo                `json:"deliveryInfo" bson:"deliveryInfo" gorm:"embedded;embeddedPrefix:delivery_info_"`
	OperatingHours OperatingHours              `json:"operatingHours" bson:"operatingHours" gorm:"serializer:json"`
	IsActive       bool                        `json:"isActive" bson:"isActive"`
	IsOpen         bool                        `json:"isOpen" bson:"isOpen"`
	Features       datatypes.JSONSlice[string] `json:"features" bson:"features" validate:"dive,feature"`
	CreatedAt      time.Time                   `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time                   `json:"updatedAt" bson:"updatedAt"`
}

// ApplyDefaults fills the optional collections so they serialize as empty
// arrays rather than null.
func (r *Restaurant) ApplyDefaults() {
	if r.Cuisine == nil {
		r.Cuisine = datatypes.JSONSlice[string]{}
	}
	if r.Images == nil {
		r.Images = datatypes.JSONSlice[Image]{}
	}
	if r.Features == nil {
		r.Features = datatypes.JSONSlice[string]{}
	}
}
