package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food-storefront/middleware"
	"food-storefront/models"
	"food-storefront/statemachine"
	"food-storefront/validation"
)

// UpdateOrderStatus lets the restaurant's owner or an admin set any known
// status, skipping or moving backward included. Admin changes are marked in
// the tracking note.
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	order, ok := h.loadOrder(c)
	if !ok {
		return
	}
	id := middleware.MustIdentity(c)
	owner, err := h.restaurantOwner(c, order.RestaurantID)
	if err != nil {
		respondServerError(c, "Server error", err)
		return
	}
	if !middleware.CanMutate(id, owner) {
		respondError(c, http.StatusForbidden, "Not authorized to update this order")
		return
	}

	var req models.UpdateStatusRequest
	if !h.bindAndValidate(c, validation.StatusUpdate, &req) {
		return
	}

	actor := statemachine.ActorRestaurant
	note := req.Note
	if note == "" {
		note = "Status updated to " + string(req.Status)
	}
	if id.IsAdmin() {
		actor = statemachine.ActorAdmin
		note = "[ADMIN OVERRIDE] " + note
	} else if req.Note != "" {
		order.Notes.Restaurant = req.Note
	}
	if !h.transition(c, order, req.Status, actor, note) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order status updated successfully",
		"order":   order,
	})
}
