package handlers_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-storefront/handlers"
	"food-storefront/models"
	"food-storefront/store"
)

type orderFixture struct {
	*env
	owner      *models.User
	ownerTok   string
	customer   *models.User
	custTok    string
	restaurant *models.Restaurant
	pizza      *models.MenuItem
}

func newOrderFixture(t *testing.T, opts ...option) *orderFixture {
	e := newEnv(t, opts...)
	f := &orderFixture{env: e}
	f.owner, f.ownerTok = e.user("owner@example.com", models.RoleRestaurantOwner)
	f.customer, f.custTok = e.user("customer@example.com", models.RoleCustomer)
	f.restaurant = e.restaurant(f.owner.ID, "Luigi's")
	f.pizza = e.menuItem(f.restaurant.ID, "Margherita", "Pizza", 12)
	f.pizza.Customizations = append(f.pizza.Customizations, models.Customization{
		Name:    "Size",
		Options: []models.CustomizationOption{{Name: "Regular", Price: 0}, {Name: "Large", Price: 2}},
	})
	require.NoError(t, e.store.UpdateMenuItem(context.Background(), f.pizza))
	return f
}

func (f *orderFixture) orderBody(items ...map[string]any) map[string]any {
	if len(items) == 0 {
		items = []map[string]any{{
			"menuItem":       f.pizza.ID,
			"quantity":       2,
			"customizations": []map[string]any{{"name": "Size", "option": "Large", "price": 0}},
		}}
	}
	return map[string]any{
		"restaurant": f.restaurant.ID,
		"items":      items,
		"deliveryAddress": map[string]any{
			"street": "2 Side St", "city": "New York", "state": "NY", "zipCode": "10002",
		},
		"payment": map[string]any{"method": "card", "transactionId": "TXN_abc"},
		"pricing": map[string]any{"subtotal": 1, "deliveryFee": 0, "tax": 0, "tip": 3, "total": 4},
	}
}

func (f *orderFixture) place(t *testing.T) *models.Order {
	t.Helper()
	rec := f.do(http.MethodPost, "/api/orders", f.custTok, f.orderBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var o models.Order
	decodeInto(t, rec, "order", &o)
	return &o
}

func TestPlaceOrderStoresSubmittedPricing(t *testing.T) {
	f := newOrderFixture(t)

	o := f.place(t)
	assert.Equal(t, f.customer.ID, o.CustomerID)
	assert.Equal(t, models.StatusPending, o.Status)
	assert.True(t, strings.HasPrefix(o.OrderNumber, "ORD-"))
	require.Len(t, o.Items, 1)
	assert.Equal(t, 12.0, o.Items[0].Price)
	assert.Equal(t, 2.0, o.Items[0].Customizations[0].Price)

	// the breakdown is kept as submitted, not derived from the menu
	assert.Equal(t, models.Pricing{Subtotal: 1, Tip: 3, Total: 4}, o.Pricing)
	assert.Equal(t, models.PaymentPaid, o.Payment.Status)
	require.NotNil(t, o.Delivery.EstimatedTime)
	assert.True(t, o.Delivery.EstimatedTime.Equal(testNow.Add(30*time.Minute)))
	require.Len(t, o.Delivery.Tracking, 1)
	assert.Equal(t, models.StatusPending, o.Delivery.Tracking[0].Status)

	// later menu price changes do not touch the captured snapshot
	f.pizza.Price = 99
	require.NoError(t, f.store.UpdateMenuItem(context.Background(), f.pizza))
	stored, err := f.store.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, 12.0, stored.Items[0].Price)
	assert.Equal(t, models.Pricing{Subtotal: 1, Tip: 3, Total: 4}, stored.Pricing)

	// omitted pricing defaults to zeros
	body := f.orderBody()
	delete(body, "pricing")
	rec := f.do(http.MethodPost, "/api/orders", f.custTok, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var bare models.Order
	decodeInto(t, rec, "order", &bare)
	assert.Equal(t, models.Pricing{}, bare.Pricing)

	// a subtotal under the restaurant minimum is not second-guessed
	soda := f.menuItem(f.restaurant.ID, "Soda", "Beverages", 2)
	rec = f.do(http.MethodPost, "/api/orders", f.custTok, f.orderBody(map[string]any{"menuItem": soda.ID, "quantity": 1}))
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestPlaceOrderRejections(t *testing.T) {
	f := newOrderFixture(t)
	elsewhere := f.env.restaurant(f.owner.ID, "Elsewhere")
	foreign := f.menuItem(elsewhere.ID, "Burger", "Burgers", 15)
	gone := f.menuItem(f.restaurant.ID, "Special", "Pizza", 20)
	gone.Availability = false
	require.NoError(t, f.store.UpdateMenuItem(context.Background(), gone))

	line := func(id string, extra map[string]any) map[string]any {
		l := map[string]any{"menuItem": id, "quantity": 1}
		for k, v := range extra {
			l[k] = v
		}
		return l
	}
	cases := map[string]map[string]any{
		"negative tip":   f.orderBody(),
		"unavailable":    f.orderBody(line(gone.ID, nil)),
		"other kitchen":  f.orderBody(line(foreign.ID, nil)),
		"unknown item":   f.orderBody(line(models.NewID(), nil)),
		"unknown option": f.orderBody(line(f.pizza.ID, map[string]any{"customizations": []map[string]any{{"name": "Size", "option": "Huge"}}})),
		"no items":       f.orderBody(),
	}
	cases["no items"]["items"] = []any{}
	cases["negative tip"]["pricing"] = map[string]any{"subtotal": 28, "tip": -1, "total": 27}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := f.do(http.MethodPost, "/api/orders", f.custTok, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}

	rec := f.do(http.MethodPost, "/api/orders", f.custTok, cases["negative tip"])
	assert.Contains(t, decode(t, rec)["details"], `"pricing.tip"`)

	f.restaurant.IsOpen = false
	require.NoError(t, f.store.UpdateRestaurant(context.Background(), f.restaurant))
	rec = f.do(http.MethodPost, "/api/orders", f.custTok, f.orderBody())
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/orders", f.ownerTok, f.orderBody())
	assert.Equal(t, http.StatusForbidden, rec.Code)

	orders, total, err := f.store.ListOrders(context.Background(), store.OrderFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, orders)
}

func TestOrderNumberCollisionIsRetried(t *testing.T) {
	numbers := []string{"ORD-1-AAAAA", "ORD-1-AAAAA", "ORD-1-BBBBB"}
	f := newOrderFixture(t, func(d *handlers.Deps) {
		d.OrderNumber = func(time.Time) string {
			n := numbers[0]
			numbers = numbers[1:]
			return n
		}
	})

	first := f.place(t)
	second := f.place(t)
	assert.Equal(t, "ORD-1-AAAAA", first.OrderNumber)
	assert.Equal(t, "ORD-1-BBBBB", second.OrderNumber)
}

func TestRateOrder(t *testing.T) {
	f := newOrderFixture(t)
	_, stranger := f.user("stranger@example.com", models.RoleCustomer)
	pending := f.order(f.customer.ID, f.restaurant.ID, models.StatusPending)
	delivered := f.order(f.customer.ID, f.restaurant.ID, models.StatusDelivered)
	rating := map[string]any{"food": 5, "delivery": 4, "overall": 4, "review": "Great"}

	rec := f.do(http.MethodPut, "/api/orders/"+pending.ID+"/rating", f.custTok, rating)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Can only rate delivered orders", decode(t, rec)["message"])

	rec = f.do(http.MethodPut, "/api/orders/"+delivered.ID+"/rating", stranger, rating)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodPut, "/api/orders/"+delivered.ID+"/rating", f.custTok, map[string]any{"food": 9, "delivery": 4, "overall": 4})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPut, "/api/orders/"+delivered.ID+"/rating", f.custTok, rating)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(http.MethodGet, "/api/orders/"+delivered.ID, f.custTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var o models.Order
	decodeInto(t, rec, "order", &o)
	require.NotNil(t, o.Rating)
	assert.Equal(t, 4, o.Rating.Overall)
	assert.Equal(t, "Great", o.Rating.Review)

	r, err := f.store.GetRestaurant(context.Background(), f.restaurant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Rating{Average: 4, Count: 1}, r.Rating)

	// re-rating replaces the earlier score
	rating["overall"] = 2
	rec = f.do(http.MethodPut, "/api/orders/"+delivered.ID+"/rating", f.custTok, rating)
	require.Equal(t, http.StatusOK, rec.Code)
	r, err = f.store.GetRestaurant(context.Background(), f.restaurant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Rating{Average: 2, Count: 1}, r.Rating)
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newOrderFixture(t)
	_, intruder := f.user("other@example.com", models.RoleRestaurantOwner)
	_, admin := f.user("admin@example.com", models.RoleAdmin)
	o := f.place(t)
	path := "/api/orders/" + o.ID + "/status"

	rec := f.do(http.MethodPut, path, intruder, map[string]any{"status": "confirmed"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodPut, path, f.ownerTok, map[string]any{"status": "teleported"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// owners may skip ahead and move backward
	rec = f.do(http.MethodPut, path, f.ownerTok, map[string]any{"status": "preparing", "note": "On it"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = f.do(http.MethodPut, path, f.ownerTok, map[string]any{"status": "delivered"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = f.do(http.MethodPut, path, f.ownerTok, map[string]any{"status": "confirmed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(http.MethodPut, path, admin, map[string]any{"status": "pending", "note": "customer called"})
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := f.store.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Equal(t, "On it", stored.Notes.Restaurant)
	require.NotNil(t, stored.Delivery.ActualDeliveryTime)
	tracked := make([]models.OrderStatus, len(stored.Delivery.Tracking))
	for i, ev := range stored.Delivery.Tracking {
		tracked[i] = ev.Status
	}
	assert.Equal(t, []models.OrderStatus{
		models.StatusPending, models.StatusPreparing, models.StatusDelivered, models.StatusConfirmed, models.StatusPending,
	}, tracked)
	assert.Equal(t, "Status updated to delivered", stored.Delivery.Tracking[2].Note)
	assert.Equal(t, "[ADMIN OVERRIDE] customer called", stored.Delivery.Tracking[4].Note)
}

func TestCancelOrder(t *testing.T) {
	f := newOrderFixture(t)
	o := f.place(t)

	rec := f.do(http.MethodPut, "/api/orders/"+o.ID+"/cancel", f.custTok, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var cancelled models.Order
	decodeInto(t, rec, "order", &cancelled)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Equal(t, models.PaymentRefunded, cancelled.Payment.Status)

	preparing := f.order(f.customer.ID, f.restaurant.ID, models.StatusPreparing)
	rec = f.do(http.MethodPut, "/api/orders/"+preparing.ID+"/cancel", f.custTok, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	res := decode(t, rec)
	assert.Equal(t, "preparing", res["currentStatus"])
	// nothing a customer may do once cooking started
	assert.Equal(t, []any{}, res["validNextStates"])

	_, driverTok := f.user("driver@example.com", models.RoleDeliveryDriver)
	confirmed := f.order(f.customer.ID, f.restaurant.ID, models.StatusConfirmed)
	rec = f.do(http.MethodPut, "/api/deliveries/"+confirmed.ID+"/pickup", driverTok, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, []any{}, decode(t, rec)["validNextStates"])
}

func TestDriverDeliveryFlow(t *testing.T) {
	f := newOrderFixture(t)
	driver, driverTok := f.user("driver@example.com", models.RoleDeliveryDriver)
	_, rivalTok := f.user("rival@example.com", models.RoleDeliveryDriver)
	o := f.order(f.customer.ID, f.restaurant.ID, models.StatusReady)
	o.Payment = models.Payment{Method: models.PaymentCash, Status: models.PaymentPending}
	require.NoError(t, f.store.UpdateOrder(context.Background(), o))
	f.order(f.customer.ID, f.restaurant.ID, models.StatusPreparing)

	rec := f.do(http.MethodGet, "/api/deliveries/available", driverTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var available []models.Order
	decodeInto(t, rec, "orders", &available)
	require.Len(t, available, 1)
	assert.Equal(t, o.ID, available[0].ID)

	rec = f.do(http.MethodPut, "/api/deliveries/"+o.ID+"/deliver", driverTok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodPut, "/api/deliveries/"+o.ID+"/pickup", driverTok, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = f.do(http.MethodPut, "/api/deliveries/"+o.ID+"/pickup", rivalTok, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = f.do(http.MethodPut, "/api/deliveries/"+o.ID+"/deliver", rivalTok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodGet, "/api/orders", driverTok, nil)
	assert.EqualValues(t, 1, decode(t, rec)["total"])

	rec = f.do(http.MethodPut, "/api/deliveries/"+o.ID+"/deliver", driverTok, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored, err := f.store.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, stored.Status)
	assert.Equal(t, driver.ID, stored.Delivery.DriverID)
	assert.Equal(t, models.PaymentPaid, stored.Payment.Status)
	require.NotNil(t, stored.Delivery.ActualDeliveryTime)
}

func TestOrderVisibility(t *testing.T) {
	f := newOrderFixture(t)
	stranger, strangerTok := f.user("stranger@example.com", models.RoleCustomer)
	_, otherOwnerTok := f.user("other@example.com", models.RoleRestaurantOwner)
	_, admin := f.user("admin@example.com", models.RoleAdmin)
	mine := f.place(t)
	f.order(stranger.ID, f.restaurant.ID, models.StatusDelivered)

	path := "/api/orders/" + mine.ID
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, path, f.custTok, nil).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, path, f.ownerTok, nil).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, path, admin, nil).Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, path, strangerTok, nil).Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, path, otherOwnerTok, nil).Code)

	totals := map[string]float64{f.custTok: 1, strangerTok: 1, f.ownerTok: 2, otherOwnerTok: 0, admin: 2}
	for token, want := range totals {
		rec := f.do(http.MethodGet, "/api/orders", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.EqualValues(t, want, decode(t, rec)["total"])
	}

	rec := f.do(http.MethodGet, "/api/orders?status=delivered", admin, nil)
	assert.EqualValues(t, 1, decode(t, rec)["total"])

	rec = f.do(http.MethodGet, "/api/users/orders", f.custTok, nil)
	assert.EqualValues(t, 1, decode(t, rec)["total"])

	rec = f.do(http.MethodGet, "/api/admin/orders", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode(t, rec)
	assert.Equal(t, map[string]any{"pending": 1.0, "delivered": 1.0}, res["orderSummary"])
	// 12 + 2.5 fee + 1.16 tax
	assert.InDelta(t, 15.66, res["totalRevenue"], 1e-9)
}
