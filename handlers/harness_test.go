package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"food-storefront/handlers"
	"food-storefront/logger"
	"food-storefront/metrics"
	"food-storefront/middleware"
	"food-storefront/models"
	"food-storefront/routes"
	"food-storefront/store"
	"food-storefront/store/sqlstore"
	"food-storefront/store/storetest"
)

func init() { gin.SetMode(gin.TestMode) }

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type env struct {
	t       *testing.T
	store   store.Store
	tokens  *middleware.TokenIssuer
	metrics *metrics.Metrics
	router  *gin.Engine
}

type option func(*handlers.Deps)

func newEnv(t *testing.T, opts ...option) *env {
	t.Helper()
	s, err := sqlstore.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return newEnvWithStore(t, s, opts...)
}

func newEnvWithStore(t *testing.T, s store.Store, opts ...option) *env {
	tokens := middleware.NewTokenIssuer("test-secret", time.Hour)
	m := metrics.New()
	deps := handlers.Deps{
		Store:      s,
		Tokens:     tokens,
		Metrics:    m,
		Now:        func() time.Time { return testNow },
		BcryptCost: bcrypt.MinCost,
	}
	for _, o := range opts {
		o(&deps)
	}
	router := routes.NewRouter(handlers.New(deps), routes.Options{
		Log:     logger.Discard(),
		Tokens:  tokens,
		Users:   s,
		Metrics: m,
	})
	return &env{t: t, store: s, tokens: tokens, metrics: m, router: router}
}

// user stores an account with the role and returns it with a bearer token.
func (e *env) user(email string, role models.UserRole) (*models.User, string) {
	e.t.Helper()
	u := storetest.User(email, role)
	require.NoError(e.t, e.store.CreateUser(context.Background(), u))
	token, err := e.tokens.GenerateToken(u)
	require.NoError(e.t, err)
	return u, token
}

func (e *env) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// decodeInto unmarshals one key of the response body.
func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, key string, dst any) {
	t.Helper()
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw), rec.Body.String())
	require.Contains(t, raw, key)
	require.NoError(t, json.Unmarshal(raw[key], dst))
}

func (e *env) restaurant(ownerID, name string, cuisines ...string) *models.Restaurant {
	e.t.Helper()
	r := storetest.Restaurant(ownerID, name, cuisines...)
	require.NoError(e.t, e.store.CreateRestaurant(context.Background(), r))
	return r
}

func (e *env) menuItem(restaurantID, name, category string, price float64) *models.MenuItem {
	e.t.Helper()
	m := storetest.MenuItem(restaurantID, name, category, price)
	require.NoError(e.t, e.store.CreateMenuItem(context.Background(), m))
	return m
}

func (e *env) order(customerID, restaurantID string, status models.OrderStatus) *models.Order {
	e.t.Helper()
	o := storetest.Order(customerID, restaurantID, status)
	require.NoError(e.t, e.store.CreateOrder(context.Background(), o))
	return o
}
