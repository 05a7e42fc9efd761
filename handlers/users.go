package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food-storefront/middleware"
	"food-storefront/models"
	"food-storefront/store"
	"food-storefront/validation"
)

func (h *Handler) GetProfile(c *gin.Context) {
	h.Me(c)
}

// UpdateProfile changes name, phone, address and preferences only.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if !h.bindAndValidate(c, validation.ProfileUpdate, &req) {
		return
	}

	ctx := c.Request.Context()
	user, err := h.store.GetUser(ctx, middleware.MustIdentity(c).UserID)
	if err != nil {
		respondStoreError(c, err, "User not found")
		return
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
	if req.Preferences != nil {
		user.Preferences = *req.Preferences
	}

	if err := h.store.UpdateUser(ctx, user); err != nil {
		respondServerError(c, "Server error during profile update", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Profile updated successfully",
		"user":    user,
	})
}

// GetUserOrders is the caller's own order history, newest first.
func (h *Handler) GetUserOrders(c *gin.Context) {
	page := parsePage(c, 10)
	orders, total, err := h.store.ListOrders(c.Request.Context(), store.OrderFilter{
		CustomerID: middleware.MustIdentity(c).UserID,
		Page:       page,
	})
	if err != nil {
		respondServerError(c, "Server error", err)
		return
	}
	respondList(c, "orders", orders, len(orders), total, page)
}

// GetFavorites has no backing data yet and always answers an empty list.
func (h *Handler) GetFavorites(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "favorites": []models.Restaurant{}})
}
