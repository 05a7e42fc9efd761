// Package checkout turns the local cart into an order: it quotes the total,
// runs the simulated payment and submits the order to the API.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/lucsky/cuid"
	"github.com/sirupsen/logrus"

	"food-storefront/cart"
	"food-storefront/models"
)

const (
	DeliveryFee = 2.99
	successRate = 0.9
)

var (
	ErrPaymentDeclined  = errors.New("payment declined, please try again")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrMixedRestaurants = errors.New("cart holds items from more than one restaurant")
)

// Summary is the price breakdown shown before paying.
type Summary struct {
	Subtotal    float64 `json:"subtotal"`
	DeliveryFee float64 `json:"deliveryFee"`
	Tax         float64 `json:"tax"`
	Total       float64 `json:"total"`
}

// Quote charges the flat delivery fee on non-empty carts and tax on
// subtotal plus fee.
func Quote(subtotal float64) Summary {
	fee := 0.0
	if subtotal > 0 {
		fee = DeliveryFee
	}
	tax := round2((subtotal + fee) * models.TaxRate)
	return Summary{
		Subtotal:    round2(subtotal),
		DeliveryFee: fee,
		Tax:         tax,
		Total:       round2(subtotal + fee + tax),
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

// Payer charges an amount and returns a transaction id.
type Payer interface {
	Pay(ctx context.Context, amount float64, method models.PaymentMethod) (string, error)
}

// SimulatedPayer approves nine payments out of ten.
type SimulatedPayer struct {
	// Float64 returns values in [0,1); defaults to math/rand/v2.
	Float64 func() float64
}

func (p SimulatedPayer) Pay(ctx context.Context, amount float64, method models.PaymentMethod) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	roll := rand.Float64
	if p.Float64 != nil {
		roll = p.Float64
	}
	if roll() >= successRate {
		return "", ErrPaymentDeclined
	}
	return "TXN_" + cuid.New(), nil
}

// OrderPlacer submits an order; *client.Client satisfies it.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error)
}

type Service struct {
	Cart   *cart.Store
	Payer  Payer
	Orders OrderPlacer
	Log    logrus.FieldLogger
}

// Place pays for the cart and submits it as an order. Cash orders skip the
// payment step. The cart is cleared only after the API accepts the order.
func (s *Service) Place(ctx context.Context, address models.DeliveryAddress, method models.PaymentMethod, tip float64, notes string) (*models.Order, error) {
	lines := s.Cart.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	restaurant := lines[0].MenuItem.Restaurant
	req := models.CreateOrderRequest{
		RestaurantID:    restaurant,
		DeliveryAddress: address,
		Payment:         models.PaymentRequest{Method: method},
		Notes:           notes,
	}
	for _, l := range lines {
		if l.MenuItem.Restaurant != restaurant {
			return nil, ErrMixedRestaurants
		}
		req.Items = append(req.Items, models.OrderItemRequest{
			MenuItemID:          l.MenuItem.ID,
			Quantity:            l.Quantity,
			Customizations:      l.Customizations,
			SpecialInstructions: l.SpecialInstructions,
		})
	}

	// stored unchanged by the API
	summary := Quote(s.Cart.TotalPrice())
	req.Pricing = models.ComputePricing(summary.Subtotal, summary.DeliveryFee, tip)

	if method != models.PaymentCash {
		txn, err := s.Payer.Pay(ctx, req.Pricing.Total, method)
		if err != nil {
			return nil, err
		}
		req.Payment.TransactionID = txn
	}

	order, err := s.Orders.PlaceOrder(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("checkout: place order: %w", err)
	}
	if err := s.Cart.Clear(); err != nil && s.Log != nil {
		s.Log.WithError(err).Warn("order placed but cart could not be cleared")
	}
	return order, nil
}
