package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginMe(t *testing.T) {
	e := newEnv(t)
	body := map[string]any{
		"name": "Ann Smith", "email": "Ann@Example.com", "password": "secret1", "phone": "+1 (555) 010-0200",
	}

	rec := e.do(http.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decode(t, rec)
	token, _ := res["token"].(string)
	require.NotEmpty(t, token)
	user := res["user"].(map[string]any)
	assert.Equal(t, "ann@example.com", user["email"])
	assert.Equal(t, "customer", user["role"])
	assert.NotContains(t, user, "passwordHash")

	rec = e.do(http.MethodPost, "/api/auth/register", "", body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = e.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ann@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ann@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ann Smith", decode(t, rec)["user"].(map[string]any)["name"])
}

func TestRegisterValidationDetails(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "Ann", "email": "not-an-email", "password": "secret1", "phone": "555",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	res := decode(t, rec)
	assert.Equal(t, "Validation error", res["message"])
	assert.Contains(t, res["details"], "email")

	rec = e.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "Ann", "email": "ann@example.com", "password": "secret1", "phone": "555", "role": "admin",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["details"], "role")

	rec = e.do(http.MethodPost, "/api/auth/register", "", "{broken")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthRequiredRoutes(t *testing.T) {
	e := newEnv(t)

	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/users/profile", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/orders", "bogus", nil).Code)

	_, customer := e.user("c@example.com", "customer")
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, "/api/admin/users", customer, nil).Code)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPost, "/api/restaurants", customer, map[string]any{}).Code)
}

func TestUpdateProfile(t *testing.T) {
	e := newEnv(t)
	_, token := e.user("c@example.com", "customer")

	rec := e.do(http.MethodPut, "/api/users/profile", token, map[string]any{
		"name":    "New Name",
		"address": map[string]any{"street": "5 Elm", "city": "Boston", "state": "MA", "zipCode": "02101"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.do(http.MethodGet, "/api/users/profile", token, nil)
	user := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, "New Name", user["name"])
	assert.Equal(t, "Boston", user["address"].(map[string]any)["city"])

	rec = e.do(http.MethodPut, "/api/users/profile", token, map[string]any{"name": "X"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
