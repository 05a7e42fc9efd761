package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"food-storefront/middleware"
	"food-storefront/models"
	"food-storefront/store"
	"food-storefront/validation"
)

const defaultNearbyRadiusKm = 10

// restaurantWithMenu flattens the restaurant and adds its menu.
type restaurantWithMenu struct {
	*models.Restaurant
	MenuItems []models.MenuItem `json:"menuItems"`
}

// ListRestaurants returns active restaurants matching the query filters (public)
func (h *Handler) ListRestaurants(c *gin.Context) {
	minRating, ok := queryFloat(c, "minRating")
	if !ok {
		respondValidation(c, errInvalidQuery("minRating"))
		return
	}
	page := parsePage(c, 10)
	filter := store.RestaurantFilter{
		Cuisines:   splitList(c.Query("cuisine")),
		City:       c.Query("city"),
		MinRating:  minRating,
		OpenOnly:   c.Query("isOpen") == "true",
		Search:     c.Query("search"),
		SortBy:     c.Query("sortBy"),
		Descending: c.Query("sortOrder") != "asc",
		Page:       page,
	}

	restaurants, total, err := h.store.ListRestaurants(c.Request.Context(), filter)
	if err != nil {
		respondServerError(c, "Server error", err)
		return
	}
	respondList(c, "restaurants", restaurants, len(restaurants), total, page)
}

// GetRestaurant returns a single restaurant with its available menu
func (h *Handler) GetRestaurant(c *gin.Context) {
	id, ok := pathID(c, "id", "Restaurant not found")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	restaurant, err := h.store.GetRestaurant(ctx, id)
	if err != nil {
		respondStoreError(c, err, "Restaurant not found")
		return
	}
	items, _, err := h.store.ListMenuItems(ctx, store.MenuItemFilter{RestaurantID: id})
	if err != nil {
		respondServerError(c, "Server error", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"restaurant": restaurantWithMenu{Restaurant: restaurant, MenuItems: items},
	})
}

// CreateRestaurant registers a restaurant owned by the caller
func (h *Handler) CreateRestaurant(c *gin.Context) {
	restaurant := models.Restaurant{IsActive: true, IsOpen: true}
	if !h.bindAndValidate(c, validation.RestaurantCreate, &restaurant) {
		return
	}
	restaurant.ID = models.NewID()
	restaurant.OwnerID = middleware.MustIdentity(c).UserID
	restaurant.Rating = models.Rating{}

	if err := h.store.CreateRestaurant(c.Request.Context(), &restaurant); err != nil {
		respondServerError(c, "Server error during restaurant creation", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"message":    "Restaurant created successfully",
		"restaurant": restaurant,
	})
}

// UpdateRestaurant merges the body over the stored restaurant
func (h *Handler) UpdateRestaurant(c *gin.Context) {
	id, ok := pathID(c, "id", "Restaurant not found")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	restaurant, err := h.store.GetRestaurant(ctx, id)
	if err != nil {
		respondStoreError(c, err, "Restaurant not found")
		return
	}
	if !middleware.CanMutate(middleware.MustIdentity(c), restaurant.OwnerID) {
		respondError(c, http.StatusForbidden, "Not authorized to update this restaurant")
		return
	}

	stored := *restaurant
	if err := c.ShouldBindJSON(restaurant); err != nil {
		respondValidation(c, err)
		return
	}
	// fields the client may not write
	restaurant.ID = stored.ID
	restaurant.OwnerID = stored.OwnerID
	restaurant.Rating = stored.Rating
	restaurant.CreatedAt = stored.CreatedAt
	if err := h.validator.Validate(validation.RestaurantCreate, restaurant); err != nil {
		respondValidation(c, err)
		return
	}

	if err := h.store.UpdateRestaurant(ctx, restaurant); err != nil {
		respondStoreError(c, err, "Restaurant not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Restaurant updated successfully",
		"restaurant": restaurant,
	})
}

func (h *Handler) DeleteRestaurant(c *gin.Context) {
	id, ok := pathID(c, "id", "Restaurant not found")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	restaurant, err := h.store.GetRestaurant(ctx, id)
	if err != nil {
		respondStoreError(c, err, "Restaurant not found")
		return
	}
	if !middleware.CanMutate(middleware.MustIdentity(c), restaurant.OwnerID) {
		respondError(c, http.StatusForbidden, "Not authorized to delete this restaurant")
		return
	}
	if err := h.store.DeleteRestaurant(ctx, id); err != nil {
		respondStoreError(c, err, "Restaurant not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Restaurant deleted successfully"})
}

// NearbyRestaurants lists open restaurants within radius km, nearest first
func (h *Handler) NearbyRestaurants(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		respondError(c, http.StatusBadRequest, "Latitude and longitude are required")
		return
	}
	radius := float64(defaultNearbyRadiusKm)
	if r, ok := queryFloat(c, "radius"); !ok || (r != nil && *r <= 0) {
		respondValidation(c, errInvalidQuery("radius"))
		return
	} else if r != nil {
		radius = *r
	}

	restaurants, err := h.store.NearbyRestaurants(c.Request.Context(), lat, lng, radius)
	if err != nil {
		respondServerError(c, "Server error", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"count":       len(restaurants),
		"restaurants": restaurants,
	})
}

// GetMyRestaurants lists every restaurant owned by the caller, active or not
func (h *Handler) GetMyRestaurants(c *gin.Context) {
	page := parsePage(c, 10)
	restaurants, total, err := h.store.ListRestaurants(c.Request.Context(), store.RestaurantFilter{
		OwnerID:         middleware.MustIdentity(c).UserID,
		IncludeInactive: true,
		Descending:      true,
		Page:            page,
	})
	if err != nil {
		respondServerError(c, "Server error", err)
		return
	}
	respondList(c, "restaurants", restaurants, len(restaurants), total, page)
}

func errInvalidQuery(name string) error {
	return fmt.Errorf("%q must be a number", name)
}
