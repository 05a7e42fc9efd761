package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"food-storefront/models"
	"food-storefront/store/sqlstore"
)

func TestStoreFailureAnswersGeneric500(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	e := newEnvWithStore(t, sqlstore.New(gdb))

	mock.ExpectQuery(`SELECT count\(\*\) FROM "restaurants"`).WillReturnError(errors.New("connection reset by peer"))

	rec := e.do(http.MethodGet, "/api/restaurants", "", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, map[string]any{"message": "Server error"}, decode(t, rec))
	assert.NotContains(t, rec.Body.String(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthAndDocs(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])

	rec = e.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(http.MethodGet, "/api/orders/state-machine", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode(t, rec)["stateMachine"])
}

func TestMetricsEndpointCountsOrders(t *testing.T) {
	f := newOrderFixture(t)
	f.place(t)

	rec := f.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "storefront_orders_created_total 1")
	assert.True(t, strings.Contains(body, `path="/api/orders"`), "request counter labelled by route")
}

func TestAdminListings(t *testing.T) {
	e := newEnv(t)
	owner, _ := e.user("owner@example.com", models.RoleRestaurantOwner)
	e.user("driver@example.com", models.RoleDeliveryDriver)
	_, admin := e.user("admin@example.com", models.RoleAdmin)
	r := e.restaurant(owner.ID, "Dormant")
	r.IsActive = false
	require.NoError(t, e.store.UpdateRestaurant(context.Background(), r))

	rec := e.do(http.MethodGet, "/api/admin/users?role=delivery_driver", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["count"])

	rec = e.do(http.MethodGet, "/api/admin/restaurants", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["total"])

	rec = e.do(http.MethodGet, "/api/users/favorites", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, decode(t, rec)["favorites"])
}
