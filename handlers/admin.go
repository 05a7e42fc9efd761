package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food-storefront/models"
	"food-storefront/store"
)

// AdminListOrders returns a page of all orders with a per-status summary of
// that page and the revenue of its delivered orders.
func (h *Handler) AdminListOrders(c *gin.Context) {
	page := parsePage(c, 20)
	filter := store.OrderFilter{
		Status:     models.OrderStatus(c.Query("status")),
		CustomerID: c.Query("customer"),
		Page:       page,
	}
	if rid := c.Query("restaurant"); rid != "" {
		filter.RestaurantIDs = []string{rid}
	}
	orders, total, err := h.store.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondServerError(c, "Server error", err)
		return
	}

	summary := map[models.OrderStatus]int{}
	revenue := 0.0
	for _, o := range orders {
		summary[o.Status]++
		if o.Status == models.StatusDelivered {
			revenue += o.Pricing.Total
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"count":        len(orders),
		"total":        total,
		"page":         page.Page,
		"pages":        store.Pages(total, page.Limit),
		"orderSummary": summary,
		"totalRevenue": revenue,
		"orders":       orders,
	})
}

func (h *Handler) AdminListUsers(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context(), models.UserRole(c.Query("role")))
	if err != nil {
		respondServerError(c, "Server error", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(users), "users": users})
}

// AdminListRestaurants includes inactive restaurants
func (h *Handler) AdminListRestaurants(c *gin.Context) {
	page := parsePage(c, 20)
	restaurants, total, err := h.store.ListRestaurants(c.Request.Context(), store.RestaurantFilter{
		IncludeInactive: true,
		Search:          c.Query("search"),
		Page:            page,
	})
	if err != nil {
		respondServerError(c, "Server error", err)
		return
	}
	respondList(c, "restaurants", restaurants, len(restaurants), total, page)
}
