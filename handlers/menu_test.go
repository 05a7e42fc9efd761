package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-storefront/models"
)

func menuPayload(restaurantID string) map[string]any {
	return map[string]any{
		"name":            "Margherita",
		"description":     "Tomato, mozzarella, basil",
		"restaurant":      restaurantID,
		"category":        "Pizza",
		"price":           12.5,
		"dietaryInfo":     []string{"Vegetarian"},
		"allergens":       []string{"Gluten", "Dairy"},
		"preparationTime": 15,
		"customizations": []map[string]any{
			{"name": "Size", "options": []map[string]any{{"name": "Large", "price": 2}}},
		},
	}
}

func TestCreateMenuItem(t *testing.T) {
	e := newEnv(t)
	owner, token := e.user("owner@example.com", models.RoleRestaurantOwner)
	_, intruder := e.user("other@example.com", models.RoleRestaurantOwner)
	r := e.restaurant(owner.ID, "Luigi's")

	rec := e.do(http.MethodPost, "/api/menu", intruder, menuPayload(r.ID))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(http.MethodPost, "/api/menu", token, menuPayload(models.NewID()))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	bad := menuPayload(r.ID)
	bad["preparationTime"] = 90
	rec = e.do(http.MethodPost, "/api/menu", token, bad)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["details"], "preparationTime")

	rec = e.do(http.MethodPost, "/api/menu", token, menuPayload(r.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var item models.MenuItem
	decodeInto(t, rec, "menuItem", &item)
	assert.True(t, item.Availability)
	assert.Equal(t, models.DefaultSpiceLevel, item.SpiceLevel)

	rec = e.do(http.MethodGet, "/api/menu/"+item.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got models.MenuItem
	decodeInto(t, rec, "menuItem", &got)
	assert.Equal(t, 12.5, got.Price)
	opt, ok := got.Option("Size", "Large")
	require.True(t, ok)
	assert.Equal(t, 2.0, opt.Price)
}

func TestNonOwnerCannotMutateMenuItem(t *testing.T) {
	e := newEnv(t)
	owner, token := e.user("owner@example.com", models.RoleRestaurantOwner)
	_, intruder := e.user("other@example.com", models.RoleRestaurantOwner)
	r := e.restaurant(owner.ID, "Luigi's")
	item := e.menuItem(r.ID, "Lasagna", "Pasta", 14)
	path := "/api/menu/" + item.ID

	rec := e.do(http.MethodPut, path, intruder, map[string]any{"price": 1})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = e.do(http.MethodDelete, path, intruder, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	stored, err := e.store.GetMenuItem(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, 14.0, stored.Price)

	other := e.restaurant(owner.ID, "Second")
	rec = e.do(http.MethodPut, path, token, map[string]any{"price": 15, "availability": false, "restaurant": other.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stored, err = e.store.GetMenuItem(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, 15.0, stored.Price)
	assert.False(t, stored.Availability)
	assert.Equal(t, r.ID, stored.RestaurantID)

	rec = e.do(http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, path, "", nil).Code)
}

func TestMenuListingAndGrouping(t *testing.T) {
	e := newEnv(t)
	owner, _ := e.user("owner@example.com", models.RoleRestaurantOwner)
	r := e.restaurant(owner.ID, "Luigi's")
	other := e.restaurant(owner.ID, "Elsewhere")
	e.menuItem(r.ID, "Margherita", "Pizza", 11)
	e.menuItem(r.ID, "Diavola", "Pizza", 13)
	e.menuItem(r.ID, "Tiramisu", "Desserts", 7)
	e.menuItem(other.ID, "Burger", "Burgers", 10)
	hidden := e.menuItem(r.ID, "Seasonal", "Pizza", 20)
	hidden.Availability = false
	require.NoError(t, e.store.UpdateMenuItem(context.Background(), hidden))

	rec := e.do(http.MethodGet, "/api/menu?restaurant="+r.ID+"&minPrice=10&maxPrice=12", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []models.MenuItem
	decodeInto(t, rec, "menuItems", &items)
	require.Len(t, items, 1)
	assert.Equal(t, "Margherita", items[0].Name)

	for _, path := range []string{"/api/menu/restaurant/" + r.ID, "/api/restaurants/" + r.ID + "/menu"} {
		rec = e.do(http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		var grouped map[string][]models.MenuItem
		decodeInto(t, rec, "menuItems", &grouped)
		assert.Len(t, grouped["Pizza"], 2, path)
		assert.Len(t, grouped["Desserts"], 1, path)
		assert.NotContains(t, grouped, "Burgers", path)
	}

	rec = e.do(http.MethodGet, "/api/menu/restaurant/"+models.NewID(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
