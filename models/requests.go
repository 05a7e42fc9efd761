package models

// Request bodies shared by the HTTP handlers and the API client.

type RegisterRequest struct {
	Name     string   `json:"name" validate:"required,min=2,max=50"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=6"`
	Phone    string   `json:"phone" validate:"required,phonenum"`
	Role     UserRole `json:"role" validate:"required,selfrole"`
	Address  *Address `json:"address,omitempty" validate:"omitempty"`
}

func (r *RegisterRequest) ApplyDefaults() {
	if r.Role == "" {
		r.Role = RoleCustomer
	}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name        *string      `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Phone       *string      `json:"phone,omitempty" validate:"omitempty,phonenum"`
	Address     *Address     `json:"address,omitempty" validate:"omitempty"`
	Preferences *Preferences `json:"preferences,omitempty"`
}

type OrderItemRequest struct {
	MenuItemID          string                  `json:"menuItem" validate:"required"`
	Quantity            int                     `json:"quantity" validate:"min=1,max=100"`
	Customizations      []SelectedCustomization `json:"customizations" validate:"dive"`
	SpecialInstructions string                  `json:"specialInstructions,omitempty" validate:"max=200"`
}

type PaymentRequest struct {
	Method        PaymentMethod `json:"method" validate:"required,paymentmethod"`
	TransactionID string        `json:"transactionId,omitempty"`
}

// CreateOrderRequest is what a customer submits at checkout. Pricing is
// stored as submitted; omitted figures are zero.
type CreateOrderRequest struct {
	RestaurantID    string             `json:"restaurant" validate:"required"`
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	DeliveryAddress DeliveryAddress    `json:"deliveryAddress"`
	Payment         PaymentRequest     `json:"payment"`
	Pricing         Pricing            `json:"pricing"`
	Notes           string             `json:"notes,omitempty" validate:"max=500"`
}

type UpdateStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required,orderstatus"`
	Note   string      `json:"note,omitempty" validate:"max=200"`
}

type RateOrderRequest struct {
	Food     int    `json:"food" validate:"required,min=1,max=5"`
	Delivery int    `json:"delivery" validate:"required,min=1,max=5"`
	Overall  int    `json:"overall" validate:"required,min=1,max=5"`
	Review   string `json:"review,omitempty" validate:"max=500"`
}
