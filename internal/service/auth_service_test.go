package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/prohmpiriya/hostel-saas/internal/domain"
	"github.com/prohmpiriya/hostel-saas/internal/dto"
	"github.com/prohmpiriya/hostel-saas/pkg/middleware"
)

const testSecret = "test-secret"

func newAuthService(env *testEnv) AuthService {
	return NewAuthService(env.store.Hostels, env.store.Users, env.notifier, env.clock, AuthConfig{
		JWTSecret:  testSecret,
		Issuer:     "hostel-saas",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, nil)
}

func registerRequest() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Name:       "Maria Owner",
		Email:      "Maria@Example.com ",
		Password:   "secret123",
		HostelName: "Casa Maria",
		HostelSlug: "casa-maria",
	}
}

func TestAuthService_Register(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthService(env)
	ctx := context.Background()

	resp, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	assert.Equal(t, "maria@example.com", resp.User.Email)
	assert.Equal(t, domain.RoleAdmin, resp.User.Role)
	require.NotNil(t, resp.Hostel)
	assert.Equal(t, "casa-maria", resp.Hostel.Slug)
	assert.Equal(t, domain.PlanFree, resp.Hostel.Plan)
	assert.True(t, resp.Hostel.IsActive)
	assert.Equal(t, resp.Hostel.ID, resp.User.HostelID)

	claims, err := middleware.ParseToken(resp.Token, testSecret, "hostel-saas")
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, resp.Hostel.ID, claims.HostelID)
	assert.Equal(t, "ADMIN", claims.Role)

	stored, err := env.store.Users.GetByEmail(ctx, "maria@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "secret123", stored.PasswordHash)

	events := env.events.Events()
	require.Len(t, events, 1)
	assert.Equal(t, dto.TopicUserRegistered, events[0].Topic)
}

func TestAuthService_RegisterConflicts(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthService(env)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	req := registerRequest()
	req.HostelSlug = "another-slug"
	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, ErrEmailTaken)

	req = registerRequest()
	req.Email = "other@example.com"
	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, ErrSlugTaken)

	count, err := env.store.Hostels.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAuthService_Login(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthService(env)
	ctx := context.Background()

	reg, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	resp, err := svc.Login(ctx, &dto.LoginRequest{Email: "MARIA@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, resp.User.ID)
	assert.NotEmpty(t, resp.Token)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "maria@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	hostel, err := env.store.Hostels.GetByID(ctx, reg.Hostel.ID)
	require.NoError(t, err)
	hostel.IsActive = false
	require.NoError(t, env.store.Hostels.Update(ctx, hostel))

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "maria@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrHostelDisabled)
}

func TestAuthService_Me(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthService(env)
	ctx := context.Background()

	reg, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	me, err := svc.Me(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, reg.User.Email, me.User.Email)
	require.NotNil(t, me.User.Hostel)
	assert.Equal(t, "casa-maria", me.User.Hostel.Slug)

	_, err = svc.Me(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_EnsureSuperAdmin(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthService(env)
	ctx := context.Background()

	created, err := svc.EnsureSuperAdmin(ctx, "", "Root@Example.com", "rootpass")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureSuperAdmin(ctx, "", "root@example.com", "rootpass")
	require.NoError(t, err)
	assert.False(t, created)

	resp, err := svc.Login(ctx, &dto.LoginRequest{Email: "root@example.com", Password: "rootpass"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSuperAdmin, resp.User.Role)
	assert.Nil(t, resp.Hostel)
	assert.Empty(t, resp.User.HostelID)
}
