package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/hostel-saas/internal/domain"
	"github.com/prohmpiriya/hostel-saas/internal/dto"
)

func registerBody(email, slug string) map[string]string {
	return map[string]string{
		"name":       "Maria Lopez",
		"email":      email,
		"password":   "secret123",
		"hostelName": "Casa Azul",
		"hostelSlug": slug,
	}
}

func TestAuth_RegisterLoginMe(t *testing.T) {
	api := newAPI(t)

	w := api.do(t, http.MethodPost, "/api/auth/register", "", registerBody("Maria@Example.com", "casa-azul"))
	assertStatus(t, w, http.StatusCreated)

	var reg dto.AuthResponse
	decodeData(t, w, &reg)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "maria@example.com", reg.User.Email)
	assert.Equal(t, domain.RoleAdmin, reg.User.Role)
	require.NotNil(t, reg.Hostel)
	assert.Equal(t, domain.PlanFree, reg.Hostel.Plan)
	assert.True(t, reg.Hostel.IsActive)

	w = api.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "maria@example.com", "password": "secret123"})
	assertStatus(t, w, http.StatusOK)

	var login dto.AuthResponse
	decodeData(t, w, &login)
	assert.Equal(t, reg.User.ID, login.User.ID)

	w = api.do(t, http.MethodGet, "/api/auth/me", login.Token, nil)
	assertStatus(t, w, http.StatusOK)

	var me dto.MeResponse
	decodeData(t, w, &me)
	assert.Equal(t, reg.User.ID, me.User.ID)
	require.NotNil(t, me.User.Hostel)
	assert.Equal(t, "casa-azul", me.User.Hostel.Slug)

	// the registered admin lands in their own tenant
	w = api.do(t, http.MethodGet, "/api/hostels/my-hostel", login.Token, nil)
	assertStatus(t, w, http.StatusOK)
}

func TestAuth_RegisterConflicts(t *testing.T) {
	api := newAPI(t)

	w := api.do(t, http.MethodPost, "/api/auth/register", "", registerBody("a@example.com", "casa-azul"))
	assertStatus(t, w, http.StatusCreated)

	w = api.do(t, http.MethodPost, "/api/auth/register", "", registerBody("a@example.com", "other"))
	assertStatus(t, w, http.StatusBadRequest)
	env := decode(t, w)
	assert.Equal(t, "CONFLICT", env.Error.Code)
	assert.Equal(t, "Email already registered", env.Error.Message)

	w = api.do(t, http.MethodPost, "/api/auth/register", "", registerBody("b@example.com", "casa-azul"))
	assertStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "Hostel slug already taken", decode(t, w).Error.Message)
}

func TestAuth_RegisterValidation(t *testing.T) {
	api := newAPI(t)

	body := registerBody("not-an-email", "casa-azul")
	body["password"] = "123"
	w := api.do(t, http.MethodPost, "/api/auth/register", "", body)
	assertStatus(t, w, http.StatusBadRequest)

	env := decode(t, w)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	assert.Contains(t, env.Error.Details, "email")
	assert.Contains(t, env.Error.Details, "password")
}

func TestAuth_LoginFailures(t *testing.T) {
	api := newAPI(t)
	w := api.do(t, http.MethodPost, "/api/auth/register", "", registerBody("a@example.com", "casa-azul"))
	assertStatus(t, w, http.StatusCreated)

	var reg dto.AuthResponse
	decodeData(t, w, &reg)

	tests := []struct {
		name    string
		email   string
		message string
		prepare func()
	}{
		{name: "unknown email", email: "nobody@example.com", message: "Invalid credentials"},
		{name: "wrong password", email: "a@example.com", message: "Invalid credentials"},
		{name: "disabled hostel", email: "a@example.com", message: "Hostel account is disabled", prepare: func() {
			h, err := api.store.Hostels.GetByID(context.Background(), reg.Hostel.ID)
			require.NoError(t, err)
			h.IsActive = false
			require.NoError(t, api.store.Hostels.Update(context.Background(), h))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.prepare != nil {
				tt.prepare()
			}
			password := "wrong-password"
			if tt.prepare != nil {
				password = "secret123"
			}
			w := api.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": tt.email, "password": password})
			assertStatus(t, w, http.StatusUnauthorized)
			assert.Equal(t, tt.message, decode(t, w).Error.Message)
		})
	}
}

func TestAuth_MeUnknownUser(t *testing.T) {
	api := newAPI(t)
	h := api.hostel(t, "alpha")

	w := api.do(t, http.MethodGet, "/api/auth/me", tokenFor(t, staffOf(h.ID)), nil)
	assertStatus(t, w, http.StatusUnauthorized)
}

func TestAuth_TokenErrors(t *testing.T) {
	api := newAPI(t)

	w := api.do(t, http.MethodGet, "/api/rooms", "", nil)
	assertStatus(t, w, http.StatusUnauthorized)
	assert.Equal(t, "MISSING_TOKEN", decode(t, w).Error.Code)

	w = api.do(t, http.MethodGet, "/api/rooms", "garbage", nil)
	assertStatus(t, w, http.StatusUnauthorized)
	assert.Equal(t, "INVALID_TOKEN", decode(t, w).Error.Code)
}
