package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food-storefront/middleware"
	"food-storefront/models"
	"food-storefront/statemachine"
	"food-storefront/store"
)

// AvailableDeliveries lists ready orders that no driver has claimed yet
func (h *Handler) AvailableDeliveries(c *gin.Context) {
	page := parsePage(c, 20)
	orders, total, err := h.store.ListOrders(c.Request.Context(), store.OrderFilter{
		Status:         models.StatusReady,
		UnassignedOnly: true,
		Page:           page,
	})
	if err != nil {
		respondServerError(c, "Server error", err)
		return
	}
	respondList(c, "orders", orders, len(orders), total, page)
}

// PickupOrder assigns the order to the calling driver and moves it out for delivery
func (h *Handler) PickupOrder(c *gin.Context) {
	order, ok := h.loadOrder(c)
	if !ok {
		return
	}
	driverID := middleware.MustIdentity(c).UserID

	// Prevent two drivers picking up same order
	if order.Delivery.DriverID != "" {
		respondError(c, http.StatusConflict, "Order has already been picked up by another driver")
		return
	}
	order.Delivery.DriverID = driverID
	if !h.transition(c, order, models.StatusOutForDelivery, statemachine.ActorDriver, "Driver picked up the order") {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order picked up successfully",
		"order":   order,
	})
}

func (h *Handler) DeliverOrder(c *gin.Context) {
	order, ok := h.loadOrder(c)
	if !ok {
		return
	}
	if order.Delivery.DriverID == "" || order.Delivery.DriverID != middleware.MustIdentity(c).UserID {
		respondError(c, http.StatusForbidden, "You are not the assigned driver for this order")
		return
	}
	if !h.transition(c, order, models.StatusDelivered, statemachine.ActorDriver, "Order delivered to customer") {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order delivered successfully",
		"order":   order,
	})
}
