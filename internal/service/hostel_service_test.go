package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/hostel-saas/internal/domain"
	"github.com/prohmpiriya/hostel-saas/internal/dto"
)

func newHostelService(env *testEnv) HostelService {
	return NewHostelService(env.store.Hostels, env.stats, env.guard, env.notifier, env.clock)
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestHostelService_CreateDefaultsPlanToFree(t *testing.T) {
	env := newTestEnv(t)
	svc := newHostelService(env)
	ctx := context.Background()

	created, err := svc.Create(ctx, superAdmin(), &dto.CreateHostelRequest{Name: "Sunny Beds", Slug: "sunny-beds"})
	require.NoError(t, err)
	assert.Equal(t, domain.PlanFree, created.Plan)
	assert.Equal(t, "USD", created.Settings.Currency)
	assert.Equal(t, "UTC", created.Settings.Timezone)

	read, err := svc.Get(ctx, superAdmin(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanFree, read.Plan)
	require.NotNil(t, read.Count)
	assert.Equal(t, 0, read.Count.Rooms)
}

func TestHostelService_Create(t *testing.T) {
	env := newTestEnv(t)
	svc := newHostelService(env)
	ctx := context.Background()
	existing := env.hostel(t, "taken")

	_, err := svc.Create(ctx, adminOf(existing.ID), &dto.CreateHostelRequest{Name: "Mine", Slug: "mine"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Create(ctx, superAdmin(), &dto.CreateHostelRequest{Name: "Dup", Slug: "taken"})
	assert.ErrorIs(t, err, ErrSlugTaken)

	_, err = svc.Create(ctx, superAdmin(), &dto.CreateHostelRequest{Name: "Bad", Slug: "Bad Slug"})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))

	events := env.events.Events()
	assert.Empty(t, events)
}

func TestHostelService_UpdateWrongTenantIsForbidden(t *testing.T) {
	env := newTestEnv(t)
	svc := newHostelService(env)
	a := env.hostel(t, "hostel-a")
	b := env.hostel(t, "hostel-b")

	payloads := []*dto.UpdateHostelRequest{
		{Name: strPtr("Renamed")},
		{Slug: strPtr("new-slug")},
		{},
		{Slug: strPtr("NOT A SLUG")},
	}
	for _, req := range payloads {
		_, err := svc.Update(context.Background(), adminOf(a.ID), b.ID, req)
		assert.ErrorIs(t, err, ErrForbidden)
	}
}

func TestHostelService_UpdateSlugRequiresSuperAdmin(t *testing.T) {
	env := newTestEnv(t)
	svc := newHostelService(env)
	ctx := context.Background()
	a := env.hostel(t, "hostel-a")

	for _, identity := range []domain.Identity{adminOf(a.ID), staffOf(a.ID)} {
		_, err := svc.Update(ctx, identity, a.ID, &dto.UpdateHostelRequest{Slug: strPtr("new-slug")})
		assert.ErrorIs(t, err, ErrForbidden)
	}

	plan := domain.PlanPremium
	_, err := svc.Update(ctx, adminOf(a.ID), a.ID, &dto.UpdateHostelRequest{Plan: &plan})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Update(ctx, adminOf(a.ID), a.ID, &dto.UpdateHostelRequest{IsActive: boolPtr(false)})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.Update(ctx, superAdmin(), a.ID, &dto.UpdateHostelRequest{Slug: strPtr("new-slug")})
	require.NoError(t, err)
	assert.Equal(t, "new-slug", updated.Slug)
}

func TestHostelService_Update(t *testing.T) {
	env := newTestEnv(t)
	svc := newHostelService(env)
	ctx := context.Background()
	a := env.hostel(t, "hostel-a")
	env.hostel(t, "hostel-b")

	t.Run("tenant admin renames and edits settings", func(t *testing.T) {
		updated, err := svc.Update(ctx, adminOf(a.ID), a.ID, &dto.UpdateHostelRequest{
			Name:     strPtr("Hostel Alpha"),
			Settings: &dto.HostelSettingsInput{Currency: strPtr("EUR")},
		})
		require.NoError(t, err)
		assert.Equal(t, "Hostel Alpha", updated.Name)
		assert.Equal(t, "EUR", updated.Settings.Currency)
		assert.Equal(t, "UTC", updated.Settings.Timezone)
	})

	t.Run("empty update", func(t *testing.T) {
		_, err := svc.Update(ctx, adminOf(a.ID), a.ID, &dto.UpdateHostelRequest{})
		var verr *ValidationError
		assert.True(t, errors.As(err, &verr))
	})

	t.Run("slug taken by another hostel", func(t *testing.T) {
		_, err := svc.Update(ctx, superAdmin(), a.ID, &dto.UpdateHostelRequest{Slug: strPtr("hostel-b")})
		assert.ErrorIs(t, err, ErrSlugTaken)
	})

	t.Run("keeping own slug is fine", func(t *testing.T) {
		_, err := svc.Update(ctx, superAdmin(), a.ID, &dto.UpdateHostelRequest{Slug: strPtr("hostel-a")})
		assert.NoError(t, err)
	})
}

func TestHostelService_List(t *testing.T) {
	env := newTestEnv(t)
	svc := newHostelService(env)
	ctx := context.Background()
	a := env.hostel(t, "alpha")
	env.hostel(t, "beta")
	env.room(t, a.ID, "1", domain.RoomTypeDorm, true)

	_, err := svc.List(ctx, adminOf(a.ID), &dto.ListHostelsQuery{})
	assert.ErrorIs(t, err, ErrForbidden)

	resp, err := svc.List(ctx, superAdmin(), &dto.ListHostelsQuery{})
	require.NoError(t, err)
	assert.Len(t, resp.Hostels, 2)
	assert.Equal(t, int64(2), resp.Pagination.Total)
	assert.Equal(t, 1, resp.Pagination.Page)
	assert.Equal(t, 10, resp.Pagination.Limit)

	resp, err = svc.List(ctx, superAdmin(), &dto.ListHostelsQuery{Search: "alp"})
	require.NoError(t, err)
	require.Len(t, resp.Hostels, 1)
	require.NotNil(t, resp.Hostels[0].Count)
	assert.Equal(t, 1, resp.Hostels[0].Count.Rooms)
}

func TestHostelService_MyHostel(t *testing.T) {
	env := newTestEnv(t)
	svc := newHostelService(env)
	ctx := context.Background()
	a := env.hostel(t, "mine")
	env.room(t, a.ID, "1", domain.RoomTypeDorm, true)
	env.room(t, a.ID, "2", domain.RoomTypeDorm, false)
	env.payment(t, a.ID, 150, domain.PaymentStatusCompleted, testNow.Add(-time.Hour))

	resp, err := svc.MyHostel(ctx, staffOf(a.ID))
	require.NoError(t, err)
	assert.Equal(t, a.ID, resp.Hostel.ID)
	assert.Equal(t, 1, resp.Stats.AvailableRooms)
	assert.Equal(t, 2, resp.Stats.TotalRooms)
	assert.Equal(t, 150.0, resp.Stats.MonthlyRevenue)

	_, err = svc.MyHostel(ctx, superAdmin())
	assert.ErrorIs(t, err, ErrHostelNotFound)
}

func TestHostelService_Stats(t *testing.T) {
	env := newTestEnv(t)
	svc := newHostelService(env)
	ctx := context.Background()
	a := env.hostel(t, "a")
	b := env.hostel(t, "b")

	resp, err := svc.Stats(ctx, adminOf(a.ID), a.ID)
	require.NoError(t, err)
	assert.Len(t, resp.Stats.MonthlyBookingsTrend, domain.TrendMonths)

	_, err = svc.Stats(ctx, adminOf(a.ID), b.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Stats(ctx, superAdmin(), b.ID)
	assert.NoError(t, err)
}

func TestHostelService_StatusAndDelete(t *testing.T) {
	env := newTestEnv(t)
	svc := newHostelService(env)
	ctx := context.Background()
	a := env.hostel(t, "a")

	_, err := svc.UpdateStatus(ctx, adminOf(a.ID), a.ID, boolPtr(false))
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.UpdateStatus(ctx, superAdmin(), a.ID, nil)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "isActive must be a boolean", verr.Message)

	updated, err := svc.UpdateStatus(ctx, superAdmin(), a.ID, boolPtr(false))
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	err = svc.Delete(ctx, adminOf(a.ID), a.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.Delete(ctx, superAdmin(), a.ID))
	_, err = svc.Get(ctx, superAdmin(), a.ID)
	assert.ErrorIs(t, err, ErrHostelNotFound)

	err = svc.Delete(ctx, superAdmin(), a.ID)
	assert.ErrorIs(t, err, ErrHostelNotFound)

	events := env.events.Events()
	require.Len(t, events, 2)
	assert.Equal(t, dto.TopicHostelChanged, events[0].Topic)
	assert.Equal(t, a.ID, events[0].Key)
}
