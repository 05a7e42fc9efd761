package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"food-storefront/events"
	"food-storefront/middleware"
	"food-storefront/models"
	"food-storefront/statemachine"
	"food-storefront/store"
	"food-storefront/validation"
)

const orderNumberAttempts = 3

// badOrder is a request problem detected while pricing an order.
type badOrder struct {
	status int
	msg    string
}

func (e *badOrder) Error() string { return e.msg }

func rejectOrder(format string, args ...any) error {
	return &badOrder{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

// PlaceOrder creates an order for the calling customer. Line items are
// snapshotted from the current menu; the pricing breakdown is stored exactly
// as the client submitted it.
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if !h.bindAndValidate(c, validation.OrderCreate, &req) {
		return
	}
	ctx := c.Request.Context()
	customerID := middleware.MustIdentity(c).UserID

	restaurant, err := h.store.GetRestaurant(ctx, req.RestaurantID)
	if err != nil {
		respondStoreError(c, err, "Restaurant not found")
		return
	}
	if !restaurant.IsActive || !restaurant.IsOpen {
		respondError(c, http.StatusBadRequest, "Restaurant is not accepting orders right now")
		return
	}

	items, err := h.snapshotItems(c, restaurant.ID, req.Items)
	if err != nil {
		var bad *badOrder
		if errors.As(err, &bad) {
			respondError(c, bad.status, bad.msg)
			return
		}
		respondServerError(c, "Server error during order creation", err)
		return
	}

	now := h.now()
	eta := now.Add(time.Duration(restaurant.DeliveryInfo.EstimatedTime) * time.Minute)
	payment := models.Payment{Method: req.Payment.Method, Status: models.PaymentPending, TransactionID: req.Payment.TransactionID}
	if payment.TransactionID != "" {
		payment.Status = models.PaymentPaid
	}
	order := models.Order{
		ID:              models.NewID(),
		CustomerID:      customerID,
		RestaurantID:    restaurant.ID,
		Items:           items,
		DeliveryAddress: req.DeliveryAddress,
		Pricing:         req.Pricing,
		Status:          models.StatusPending,
		Payment:         payment,
		Delivery:        models.Delivery{EstimatedTime: &eta},
		Notes:           models.OrderNotes{Customer: req.Notes},
	}
	order.Track(now, "Order placed")

	for attempt := 1; ; attempt++ {
		order.OrderNumber = h.orderNumber(now)
		err = h.store.CreateOrder(ctx, &order)
		if err == nil || !errors.Is(err, store.ErrDuplicate) || attempt == orderNumberAttempts {
			break
		}
		middleware.Entry(c).WithField("order_number", order.OrderNumber).Warn("order number collision, retrying")
	}
	if err != nil {
		respondServerError(c, "Server error during order creation", err)
		return
	}

	h.metrics.OrdersCreated.Inc()
	h.publish(c, events.OrderCreated, &order, "")
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Order placed successfully",
		"order":   order,
	})
}

// snapshotItems captures each requested line from the restaurant's menu.
func (h *Handler) snapshotItems(c *gin.Context, restaurantID string, reqs []models.OrderItemRequest) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(reqs))
	for _, r := range reqs {
		menuItem, err := h.store.GetMenuItem(c.Request.Context(), r.MenuItemID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && menuItem.RestaurantID != restaurantID) {
			return nil, rejectOrder("Menu item %s is not available from this restaurant", r.MenuItemID)
		}
		if err != nil {
			return nil, err
		}
		if !menuItem.Availability {
			return nil, rejectOrder("%s is currently unavailable", menuItem.Name)
		}

		chosen := make([]models.SelectedCustomization, 0, len(r.Customizations))
		for _, sel := range r.Customizations {
			opt, ok := menuItem.Option(sel.Name, sel.Option)
			if !ok {
				return nil, rejectOrder("%s has no %s option %q", menuItem.Name, sel.Name, sel.Option)
			}
			chosen = append(chosen, models.SelectedCustomization{Name: sel.Name, Option: opt.Name, Price: opt.Price})
		}

		items = append(items, models.OrderItem{
			MenuItemID:          menuItem.ID,
			Name:                menuItem.Name,
			Quantity:            r.Quantity,
			Customizations:      chosen,
			Price:               menuItem.Price,
			SpecialInstructions: r.SpecialInstructions,
		})
	}
	return items, nil
}

// ListOrders scopes the result to what the caller's role may see
func (h *Handler) ListOrders(c *gin.Context) {
	id := middleware.MustIdentity(c)
	page := parsePage(c, 10)
	filter := store.OrderFilter{Status: models.OrderStatus(c.Query("status")), Page: page}

	switch id.Role {
	case models.RoleCustomer:
		filter.CustomerID = id.UserID
	case models.RoleRestaurantOwner:
		ids, err := h.store.RestaurantIDsByOwner(c.Request.Context(), id.UserID)
		if err != nil {
			respondServerError(c, "Server error", err)
			return
		}
		if ids == nil {
			ids = []string{}
		}
		filter.RestaurantIDs = ids
	case models.RoleDeliveryDriver:
		filter.DriverID = id.UserID
	case models.RoleAdmin:
		if rid := c.Query("restaurant"); rid != "" {
			filter.RestaurantIDs = []string{rid}
		}
		filter.CustomerID = c.Query("customer")
	}

	orders, total, err := h.store.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondServerError(c, "Server error", err)
		return
	}
	respondList(c, "orders", orders, len(orders), total, page)
}

// GetOrder is visible to the customer, the restaurant owner, the assigned
// driver and admins.
func (h *Handler) GetOrder(c *gin.Context) {
	order, ok := h.loadOrder(c)
	if !ok {
		return
	}
	id := middleware.MustIdentity(c)
	if order.CustomerID != id.UserID && order.Delivery.DriverID != id.UserID && !id.IsAdmin() {
		owner, err := h.restaurantOwner(c, order.RestaurantID)
		if err != nil {
			respondServerError(c, "Server error", err)
			return
		}
		if owner != id.UserID {
			respondError(c, http.StatusForbidden, "Not authorized to view this order")
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

// RateOrder records the customer's rating of a delivered order and folds the
// overall score into the restaurant's aggregate.
func (h *Handler) RateOrder(c *gin.Context) {
	order, ok := h.loadOrder(c)
	if !ok {
		return
	}
	if order.CustomerID != middleware.MustIdentity(c).UserID {
		respondError(c, http.StatusForbidden, "Not authorized to rate this order")
		return
	}
	if order.Status != models.StatusDelivered {
		respondError(c, http.StatusBadRequest, "Can only rate delivered orders")
		return
	}
	var req models.RateOrderRequest
	if !h.bindAndValidate(c, validation.Rating, &req) {
		return
	}

	ctx := c.Request.Context()
	previous := order.Rating
	order.Rating = &models.OrderRating{
		Food:     req.Food,
		Delivery: req.Delivery,
		Overall:  req.Overall,
		Review:   req.Review,
		RatedAt:  h.now().UTC(),
	}
	if err := h.store.UpdateOrder(ctx, order); err != nil {
		respondServerError(c, "Server error during order rating", err)
		return
	}

	restaurant, err := h.store.GetRestaurant(ctx, order.RestaurantID)
	if err == nil {
		if previous != nil {
			restaurant.Rating.Replace(float64(previous.Overall), float64(req.Overall))
		} else {
			restaurant.Rating.Add(float64(req.Overall))
		}
		err = h.store.UpdateRestaurant(ctx, restaurant)
	}
	if err != nil {
		middleware.Entry(c).WithError(err).WithField("restaurant", order.RestaurantID).Warn("failed to update restaurant rating")
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order rated successfully",
		"order":   order,
	})
}

// CancelOrder lets the customer cancel before the kitchen starts cooking
func (h *Handler) CancelOrder(c *gin.Context) {
	order, ok := h.loadOrder(c)
	if !ok {
		return
	}
	if order.CustomerID != middleware.MustIdentity(c).UserID {
		respondError(c, http.StatusForbidden, "Not authorized to cancel this order")
		return
	}
	if !h.transition(c, order, models.StatusCancelled, statemachine.ActorCustomer, "Cancelled by customer") {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order cancelled successfully",
		"order":   order,
	})
}

func (h *Handler) loadOrder(c *gin.Context) (*models.Order, bool) {
	id, ok := pathID(c, "id", "Order not found")
	if !ok {
		return nil, false
	}
	order, err := h.store.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "Order not found")
		return nil, false
	}
	return order, true
}

// restaurantOwner returns "" when the restaurant no longer exists.
func (h *Handler) restaurantOwner(c *gin.Context, restaurantID string) (string, error) {
	r, err := h.store.GetRestaurant(c.Request.Context(), restaurantID)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return r.OwnerID, nil
}

// transition moves the order to status on behalf of actor, persists it and
// publishes the change. It writes the error response itself and reports
// whether the caller should continue.
func (h *Handler) transition(c *gin.Context, order *models.Order, to models.OrderStatus, actor statemachine.Actor, note string) bool {
	from := order.Status
	if err := statemachine.CanTransition(from, to, actor); err != nil {
		var te *statemachine.TransitionError
		valid := []models.OrderStatus{}
		if errors.As(err, &te) {
			valid = te.Valid
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message":         "Invalid state transition",
			"currentStatus":   from,
			"requested":       to,
			"reason":          err.Error(),
			"validNextStates": valid,
		})
		return false
	}

	now := h.now()
	order.Status = to
	switch to {
	case models.StatusDelivered:
		t := now
		order.Delivery.ActualDeliveryTime = &t
		if order.Payment.Method == models.PaymentCash && order.Payment.Status == models.PaymentPending {
			order.Payment.Status = models.PaymentPaid
		}
	case models.StatusCancelled:
		if order.Payment.Status == models.PaymentPaid {
			order.Payment.Status = models.PaymentRefunded
		}
	}
	order.Track(now, note)

	if err := h.store.UpdateOrder(c.Request.Context(), order); err != nil {
		respondStoreError(c, err, "Order not found")
		return false
	}
	h.metrics.StatusChanges.WithLabelValues(string(to)).Inc()
	h.publish(c, events.OrderStatusChanged, order, from)
	return true
}
