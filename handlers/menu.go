package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"food-storefront/middleware"
	"food-storefront/models"
	"food-storefront/store"
	"food-storefront/validation"
)

// ListMenuItems returns available items matching the query filters (public)
func (h *Handler) ListMenuItems(c *gin.Context) {
	minPrice, ok := queryFloat(c, "minPrice")
	if !ok {
		respondValidation(c, errInvalidQuery("minPrice"))
		return
	}
	maxPrice, ok := queryFloat(c, "maxPrice")
	if !ok {
		respondValidation(c, errInvalidQuery("maxPrice"))
		return
	}
	page := parsePage(c, 20)
	filter := store.MenuItemFilter{
		RestaurantID: c.Query("restaurant"),
		Categories:   splitList(c.Query("category")),
		DietaryInfo:  splitList(c.Query("dietaryInfo")),
		MinPrice:     minPrice,
		MaxPrice:     maxPrice,
		Search:       c.Query("search"),
		Page:         page,
	}

	items, total, err := h.store.ListMenuItems(c.Request.Context(), filter)
	if err != nil {
		respondServerError(c, "Server error", err)
		return
	}
	respondList(c, "menuItems", items, len(items), total, page)
}

func (h *Handler) GetMenuItem(c *gin.Context) {
	id, ok := pathID(c, "id", "Menu item not found")
	if !ok {
		return
	}
	item, err := h.store.GetMenuItem(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "Menu item not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "menuItem": item})
}

// GetRestaurantMenu groups a restaurant's available items by category
func (h *Handler) GetRestaurantMenu(c *gin.Context) {
	param := "restaurantId"
	if c.Param(param) == "" {
		param = "id"
	}
	id, ok := pathID(c, param, "Restaurant not found")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.store.GetRestaurant(ctx, id); err != nil {
		respondStoreError(c, err, "Restaurant not found")
		return
	}

	items, _, err := h.store.ListMenuItems(ctx, store.MenuItemFilter{
		RestaurantID: id,
		Categories:   splitList(c.Query("category")),
	})
	if err != nil {
		respondServerError(c, "Server error", err)
		return
	}

	grouped := map[string][]models.MenuItem{}
	for _, item := range items {
		grouped[item.Category] = append(grouped[item.Category], item)
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"count":     len(items),
		"menuItems": grouped,
	})
}

// CreateMenuItem adds an item to a restaurant the caller owns
func (h *Handler) CreateMenuItem(c *gin.Context) {
	item := models.MenuItem{Availability: true}
	if !h.bindAndValidate(c, validation.MenuItemCreate, &item) {
		return
	}

	ctx := c.Request.Context()
	if !h.authorizeRestaurant(c, item.RestaurantID, "Not authorized to add menu items to this restaurant") {
		return
	}
	item.ID = models.NewID()
	item.Rating = models.Rating{}

	if err := h.store.CreateMenuItem(ctx, &item); err != nil {
		respondServerError(c, "Server error during menu item creation", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"message":  "Menu item created successfully",
		"menuItem": item,
	})
}

// UpdateMenuItem merges the body over the stored item; the restaurant
// reference cannot change.
func (h *Handler) UpdateMenuItem(c *gin.Context) {
	id, ok := pathID(c, "id", "Menu item not found")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	item, err := h.store.GetMenuItem(ctx, id)
	if err != nil {
		respondStoreError(c, err, "Menu item not found")
		return
	}
	if !h.authorizeRestaurant(c, item.RestaurantID, "Not authorized to update this menu item") {
		return
	}

	stored := *item
	if err := c.ShouldBindJSON(item); err != nil {
		respondValidation(c, err)
		return
	}
	item.ID = stored.ID
	item.RestaurantID = stored.RestaurantID
	item.Rating = stored.Rating
	item.CreatedAt = stored.CreatedAt
	if err := h.validator.Validate(validation.MenuItemCreate, item); err != nil {
		respondValidation(c, err)
		return
	}

	if err := h.store.UpdateMenuItem(ctx, item); err != nil {
		respondStoreError(c, err, "Menu item not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Menu item updated successfully",
		"menuItem": item,
	})
}

func (h *Handler) DeleteMenuItem(c *gin.Context) {
	id, ok := pathID(c, "id", "Menu item not found")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	item, err := h.store.GetMenuItem(ctx, id)
	if err != nil {
		respondStoreError(c, err, "Menu item not found")
		return
	}
	if !h.authorizeRestaurant(c, item.RestaurantID, "Not authorized to delete this menu item") {
		return
	}
	if err := h.store.DeleteMenuItem(ctx, id); err != nil {
		respondStoreError(c, err, "Menu item not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Menu item deleted successfully"})
}

// authorizeRestaurant checks the caller may change things belonging to the
// restaurant, answering 404 or 403 when not. A restaurant that no longer
// exists leaves its items to admins.
func (h *Handler) authorizeRestaurant(c *gin.Context, restaurantID, forbidden string) bool {
	ownerID := ""
	restaurant, err := h.store.GetRestaurant(c.Request.Context(), restaurantID)
	switch {
	case err == nil:
		ownerID = restaurant.OwnerID
	case errors.Is(err, store.ErrNotFound):
		if c.Request.Method == http.MethodPost {
			respondError(c, http.StatusNotFound, "Restaurant not found")
			return false
		}
	default:
		respondServerError(c, "Server error", err)
		return false
	}
	if !middleware.CanMutate(middleware.MustIdentity(c), ownerID) {
		respondError(c, http.StatusForbidden, forbidden)
		return false
	}
	return true
}
