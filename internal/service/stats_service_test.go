package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/hostel-saas/internal/domain"
	"github.com/prohmpiriya/hostel-saas/internal/repository"
	pkgredis "github.com/prohmpiriya/hostel-saas/pkg/redis"
)

func TestComputeStats_Rooms(t *testing.T) {
	env := newTestEnv(t)
	h := env.hostel(t, "rooms")
	env.room(t, h.ID, "101", domain.RoomTypePrivate, true)
	env.room(t, h.ID, "102", domain.RoomTypeDorm, false)

	snap, err := env.stats.ComputeStats(context.Background(), h.ID, testNow)
	require.NoError(t, err)

	assert.Equal(t, 1, snap.AvailableRooms)
	assert.Equal(t, 2, snap.TotalRooms)
	assert.Equal(t, []domain.RoomTypeCount{
		{Type: domain.RoomTypeDorm, Count: 1},
		{Type: domain.RoomTypePrivate, Count: 1},
	}, snap.RoomTypes)
}

func TestComputeStats_RevenueCountsCompletedOnly(t *testing.T) {
	t.Run("completed", func(t *testing.T) {
		env := newTestEnv(t)
		h := env.hostel(t, "paid")
		env.payment(t, h.ID, 150, domain.PaymentStatusCompleted, testNow.Add(-time.Hour))

		snap, err := env.stats.ComputeStats(context.Background(), h.ID, testNow)
		require.NoError(t, err)
		assert.Equal(t, 150.0, snap.MonthlyRevenue)
		assert.Equal(t, 150.0, snap.YearlyRevenue)
	})

	t.Run("pending", func(t *testing.T) {
		env := newTestEnv(t)
		h := env.hostel(t, "unpaid")
		env.payment(t, h.ID, 150, domain.PaymentStatusPending, testNow.Add(-time.Hour))

		snap, err := env.stats.ComputeStats(context.Background(), h.ID, testNow)
		require.NoError(t, err)
		assert.Equal(t, 0.0, snap.MonthlyRevenue)
	})

	t.Run("windows", func(t *testing.T) {
		env := newTestEnv(t)
		h := env.hostel(t, "windows")
		env.payment(t, h.ID, 100, domain.PaymentStatusCompleted, day(2024, time.January, 1))
		env.payment(t, h.ID, 40.5, domain.PaymentStatusCompleted, day(2023, time.December, 31))
		env.payment(t, h.ID, 7, domain.PaymentStatusRefunded, day(2024, time.January, 2))
		// after asOf
		env.payment(t, h.ID, 999, domain.PaymentStatusCompleted, testNow.Add(time.Minute))

		snap, err := env.stats.ComputeStats(context.Background(), h.ID, testNow)
		require.NoError(t, err)
		assert.Equal(t, 100.0, snap.MonthlyRevenue)
		assert.Equal(t, 100.0, snap.YearlyRevenue)
	})
}

func TestComputeStats_Occupancy(t *testing.T) {
	env := newTestEnv(t)
	h := env.hostel(t, "occupancy")
	r1 := env.room(t, h.ID, "1", domain.RoomTypePrivate, true)
	env.room(t, h.ID, "2", domain.RoomTypePrivate, true)
	g := env.guest(t, h.ID)

	// two nights inside the window
	env.booking(t, r1, g, day(2024, time.January, 1), day(2024, time.January, 3), domain.BookingStatusCheckedOut, day(2023, time.December, 20))
	// checks out after asOf, so excluded
	env.booking(t, r1, g, day(2024, time.January, 14), day(2024, time.January, 17), domain.BookingStatusCheckedIn, day(2024, time.January, 10))
	// checks in before the window, so excluded
	env.booking(t, r1, g, day(2023, time.December, 10), day(2023, time.December, 20), domain.BookingStatusCheckedOut, day(2023, time.December, 1))

	snap, err := env.stats.ComputeStats(context.Background(), h.ID, testNow)
	require.NoError(t, err)

	// 2 nights over 2 rooms * 30 days
	assert.Equal(t, 3.33, snap.OccupancyRate)
}

func TestOccupancyRate(t *testing.T) {
	stay := repository.Stay{CheckIn: day(2024, time.January, 1), CheckOut: day(2024, time.January, 3)}
	partial := repository.Stay{CheckIn: day(2024, time.January, 1), CheckOut: day(2024, time.January, 1).Add(25 * time.Hour)}

	assert.Equal(t, 0.0, OccupancyRate([]repository.Stay{stay}, 0))
	assert.Equal(t, 0.0, OccupancyRate(nil, 3))
	assert.Equal(t, 6.67, OccupancyRate([]repository.Stay{stay}, 1))
	assert.Equal(t, 13.33, OccupancyRate([]repository.Stay{stay, partial}, 1))

	// overlapping stays are not deduplicated, so the rate can pass 100
	many := make([]repository.Stay, 20)
	for i := range many {
		many[i] = repository.Stay{CheckIn: day(2024, time.January, 1), CheckOut: day(2024, time.January, 3)}
	}
	rate := OccupancyRate(many, 1)
	assert.Equal(t, 133.33, rate)
	assert.GreaterOrEqual(t, rate, 0.0)
}

func TestComputeStats_Bookings(t *testing.T) {
	env := newTestEnv(t)
	h := env.hostel(t, "bookings")
	r := env.room(t, h.ID, "1", domain.RoomTypeDorm, true)
	g := env.guest(t, h.ID)

	// created today
	env.booking(t, r, g, day(2024, time.February, 1), day(2024, time.February, 2), domain.BookingStatusConfirmed, testNow.Add(-time.Hour))
	// created yesterday, checked in
	env.booking(t, r, g, day(2024, time.January, 14), day(2024, time.January, 16), domain.BookingStatusCheckedIn, testNow.Add(-24*time.Hour))
	// confirmed but arrival already passed
	env.booking(t, r, g, day(2024, time.January, 10), day(2024, time.January, 11), domain.BookingStatusConfirmed, day(2023, time.November, 3))
	env.booking(t, r, g, day(2023, time.September, 10), day(2023, time.September, 11), domain.BookingStatusCheckedOut, day(2023, time.August, 31))
	// outside the six-month trend window
	env.booking(t, r, g, day(2023, time.July, 10), day(2023, time.July, 11), domain.BookingStatusCheckedOut, day(2023, time.July, 1))

	snap, err := env.stats.ComputeStats(context.Background(), h.ID, testNow)
	require.NoError(t, err)

	assert.Equal(t, 1, snap.TodayBookings)
	assert.Equal(t, 2, snap.ActiveBookings)
	assert.Equal(t, 5, snap.TotalBookings)
	assert.Equal(t, 1, snap.TotalGuests)
	assert.Equal(t, []domain.MonthlyBookings{
		{Month: "2023-08", Bookings: 1},
		{Month: "2023-09", Bookings: 0},
		{Month: "2023-10", Bookings: 0},
		{Month: "2023-11", Bookings: 1},
		{Month: "2023-12", Bookings: 0},
		{Month: "2024-01", Bookings: 2},
	}, snap.MonthlyBookingsTrend)
}

func TestComputeStats_ScopedToHostel(t *testing.T) {
	env := newTestEnv(t)
	a := env.hostel(t, "a")
	b := env.hostel(t, "b")
	env.room(t, b.ID, "1", domain.RoomTypeDorm, true)
	env.payment(t, b.ID, 50, domain.PaymentStatusCompleted, testNow.Add(-time.Hour))

	snap, err := env.stats.ComputeStats(context.Background(), a.ID, testNow)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.TotalRooms)
	assert.Equal(t, 0.0, snap.MonthlyRevenue)
	assert.Equal(t, 0.0, snap.OccupancyRate)
	assert.Len(t, snap.MonthlyBookingsTrend, domain.TrendMonths)
	assert.Empty(t, snap.RoomTypes)
}

func TestComputeStats_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	h := env.hostel(t, "same")
	r := env.room(t, h.ID, "1", domain.RoomTypeDorm, true)
	g := env.guest(t, h.ID)
	env.booking(t, r, g, day(2024, time.January, 2), day(2024, time.January, 5), domain.BookingStatusCheckedOut, day(2024, time.January, 1))
	env.payment(t, h.ID, 120, domain.PaymentStatusCompleted, day(2024, time.January, 5))

	first, err := env.stats.ComputeStats(context.Background(), h.ID, testNow)
	require.NoError(t, err)
	second, err := env.stats.ComputeStats(context.Background(), h.ID, testNow)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBookingTrend_YearBoundary(t *testing.T) {
	asOf := time.Date(2024, time.March, 31, 23, 0, 0, 0, time.UTC)
	trend := BookingTrend(map[string]int{"2023-10": 4, "2024-03": 1}, asOf)

	require.Len(t, trend, 6)
	assert.Equal(t, "2023-10", trend[0].Month)
	assert.Equal(t, 4, trend[0].Bookings)
	assert.Equal(t, "2024-02", trend[4].Month)
	assert.Equal(t, "2024-03", trend[5].Month)
	assert.Equal(t, 1, trend[5].Bookings)
}

type failingStats struct {
	repository.StatsRepository
	err error
}

func (f failingStats) CountGuests(context.Context, string) (int, error) {
	return 0, f.err
}

func TestComputeStats_RepositoryFailure(t *testing.T) {
	env := newTestEnv(t)
	h := env.hostel(t, "broken")
	boom := errors.New("connection reset")

	svc := NewStatsService(failingStats{StatsRepository: env.store.Stats, err: boom}, nil, env.clock, nil)
	snap, err := svc.ComputeStats(context.Background(), h.ID, testNow)
	assert.Nil(t, snap)
	assert.ErrorIs(t, err, boom)
}

func newMiniredisClient(t *testing.T) *pkgredis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return pkgredis.NewFromClient(rdb)
}

func TestSnapshot_CachedUntilInvalidated(t *testing.T) {
	env := newTestEnv(t)
	h := env.hostel(t, "cached")
	ctx := context.Background()

	cache := NewStatsCache(newMiniredisClient(t), time.Minute, nil)
	svc := NewStatsService(env.store.Stats, cache, env.clock, nil)

	first, err := svc.Snapshot(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, first.TotalRooms)
	assert.True(t, first.AsOf.Equal(testNow))

	env.room(t, h.ID, "1", domain.RoomTypeDorm, true)

	cached, err := svc.Snapshot(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, cached.TotalRooms)

	cache.Invalidate(ctx, h.ID)

	fresh, err := svc.Snapshot(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.TotalRooms)
}

func TestStatsCache_InvalidationDuringComputeWins(t *testing.T) {
	env := newTestEnv(t)
	h := env.hostel(t, "racing")
	ctx := context.Background()

	cache := NewStatsCache(newMiniredisClient(t), time.Minute, nil)
	svc := NewStatsService(env.store.Stats, cache, env.clock, nil)

	version := cache.Version(ctx, h.ID)
	stale, err := svc.ComputeStats(ctx, h.ID, testNow)
	require.NoError(t, err)

	// a write commits and invalidates before the computed snapshot is stored
	env.room(t, h.ID, "1", domain.RoomTypeDorm, true)
	cache.Invalidate(ctx, h.ID)
	cache.Set(ctx, stale, version)

	_, ok := cache.Get(ctx, h.ID)
	assert.False(t, ok)

	fresh, err := svc.Snapshot(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.TotalRooms)

	cached, ok := cache.Get(ctx, h.ID)
	require.True(t, ok)
	assert.Equal(t, 1, cached.TotalRooms)
}

func TestSnapshot_RecomputedOnNewDay(t *testing.T) {
	env := newTestEnv(t)
	h := env.hostel(t, "midnight")
	ctx := context.Background()
	cache := NewStatsCache(newMiniredisClient(t), time.Hour, nil)

	today := NewStatsService(env.store.Stats, cache, FixedClock{At: testNow}, nil)
	first, err := today.Snapshot(ctx, h.ID)
	require.NoError(t, err)
	assert.True(t, first.AsOf.Equal(testNow))

	nextDay := testNow.Add(24 * time.Hour)
	tomorrow := NewStatsService(env.store.Stats, cache, FixedClock{At: nextDay}, nil)
	second, err := tomorrow.Snapshot(ctx, h.ID)
	require.NoError(t, err)
	assert.True(t, second.AsOf.Equal(nextDay))
}

func TestNewStatsCache_Disabled(t *testing.T) {
	assert.IsType(t, NoopStatsCache{}, NewStatsCache(nil, time.Minute, nil))
	assert.IsType(t, NoopStatsCache{}, NewStatsCache(newMiniredisClient(t), 0, nil))
}
