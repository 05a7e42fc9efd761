package models

import (
	"time"

	"gorm.io/datatypes"
)

var MenuCategories = []string{
	"Appetizers", "Main Course", "Desserts", "Beverages",
	"Salads", "Soups", "Pizza", "Pasta", "Rice",
	"Noodles", "Sandwiches", "Burgers",
}

var Allergens = []string{"Gluten", "Dairy", "Nuts", "Soy", "Eggs", "Fish", "Shellfish", "Sesame"}

var DietaryTags = []string{"Vegetarian", "Vegan", "Gluten-Free", "Halal", "Kosher", "Low-Carb", "Keto", "Paleo"}

var SpiceLevels = []string{"Mild", "Medium", "Hot", "Extra Hot"}

const DefaultSpiceLevel = "Mild"

type CustomizationOption struct {
	Name  string  `json:"name" bson:"name"`
	Price float64 `json:"price" bson:"price" validate:"gte=0"`
}

// Customization is a named group of options offered on a menu item, e.g. "Size".
type Customization struct {
	Name    string                `json:"name" bson:"name" validate:"required"`
	Options []CustomizationOption `json:"options" bson:"options" validate:"dive"`
}

// Option looks up an option of the named customization group.
func (m *MenuItem) Option(group, option string) (CustomizationOption, bool) {
	for _, c := range m.Customizations {
		if c.Name != group {
			continue
		}
		for _, o := range c.Options {
			if o.Name == option {
				return o, true
			}
		}
	}
	return CustomizationOption{}, false
}

type MenuItem struct {
	ID              string                             `json:"id" bson:"_id" gorm:"primaryKey;size:24"`
	Name            string                             `json:"name" bson:"name" gorm:"not null" validate:"required,min=2,max=100"`
	Description     string                             `json:"description" bson:"description" validate:"required,max=300"`
	RestaurantID    string                             `json:"restaurant" bson:"restaurant" gorm:"size:24;index;not null" validate:"required"`
	Category        string                             `json:"category" bson:"category" gorm:"index" validate:"required,menucategory"`
	Price           float64                            `json:"price" bson:"price" gorm:"not null" validate:"gte=0"`
	Images          datatypes.JSONSlice[Image]         `json:"images" bson:"images"`
	Ingredients     datatypes.JSONSlice[string]        `json:"ingredients" bson:"ingredients"`
	Allergens       datatypes.JSONSlice[string]        `json:"allergens" bson:"allergens" validate:"dive,allergen"`
	DietaryInfo     datatypes.JSONSlice[string]        `json:"dietaryInfo" bson:"dietaryInfo" validate:"dive,dietary"`
	SpiceLevel      string                             `json:"spiceLevel" bson:"spiceLevel" validate:"spicelevel"`
	Availability    bool                               `json:"availability" bson:"availability"`
	PreparationTime int                                `json:"preparationTime" bson:"preparationTime" validate:"min=5,max=60"`
	Rating          Rating                             `json:"rating" bson:"rating" gorm:"embedded;embeddedPrefix:rating_"`
	Customizations  datatypes.JSONSlice[Customization] `json:"customizations" bson:"customizations" validate:"dive"`
	IsPopular       bool                               `json:"isPopular" bson:"isPopular"`
	IsNew           bool                               `json:"isNew" bson:"isNew"`
	CreatedAt       time.Time                          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time                          `json:"updatedAt" bson:"updatedAt"`
}

func (m *MenuItem) ApplyDefaults() {
	if m.SpiceLevel == "" {
		m.SpiceLevel = DefaultSpiceLevel
	}
	if m.Images == nil {
		m.Images = datatypes.JSONSlice[Image]{}
	}
	if m.Ingredients == nil {
		m.Ingredients = datatypes.JSONSlice[string]{}
	}
	if m.Allergens == nil {
		m.Allergens = datatypes.JSONSlice[string]{}
	}
	if m.DietaryInfo == nil {
		m.DietaryInfo = datatypes.JSONSlice[string]{}
	}
	if m.Customizations == nil {
		m.Customizations = datatypes.JSONSlice[Customization]{}
	}
}
