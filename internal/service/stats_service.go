package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/prohmpiriya/hostel-saas/internal/domain"
	"github.com/prohmpiriya/hostel-saas/internal/repository"
	"github.com/prohmpiriya/hostel-saas/pkg/logger"
	"github.com/prohmpiriya/hostel-saas/pkg/telemetry"
)

// StatsService derives dashboard and analytics figures for one hostel
type StatsService interface {
	// ComputeStats derives every figure for hostelID as of asOf. It never reads the cache.
	ComputeStats(ctx context.Context, hostelID string, asOf time.Time) (*domain.StatsSnapshot, error)
	// Snapshot computes stats as of now, served from the cache when possible
	Snapshot(ctx context.Context, hostelID string) (*domain.StatsSnapshot, error)
}

type statsService struct {
	repo     repository.StatsRepository
	cache    StatsCache
	clock    Clock
	log      *logger.Logger
	duration *telemetry.Histogram
}

// NewStatsService creates a new StatsService. A nil cache disables caching.
func NewStatsService(repo repository.StatsRepository, cache StatsCache, clock Clock, log *logger.Logger) StatsService {
	if cache == nil {
		cache = NoopStatsCache{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &statsService{
		repo:  repo,
		cache: cache,
		clock: clock,
		log:   log.Named("stats"),
		duration: telemetry.MustHistogram(telemetry.MetricOpts{
			Name:        "stats_compute_duration_seconds",
			Description: "Time spent computing hostel statistics",
			Unit:        "s",
		}, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5),
	}
}

func (s *statsService) Snapshot(ctx context.Context, hostelID string) (*domain.StatsSnapshot, error) {
	now := s.clock.Now().UTC()
	// day-bound figures go stale at midnight whatever the TTL says
	if snap, ok := s.cache.Get(ctx, hostelID); ok && domain.StartOfDay(snap.AsOf).Equal(domain.StartOfDay(now)) {
		return snap, nil
	}

	version := s.cache.Version(ctx, hostelID)
	snap, err := s.ComputeStats(ctx, hostelID, now)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, snap, version)
	return snap, nil
}

func (s *statsService) ComputeStats(ctx context.Context, hostelID string, asOf time.Time) (*domain.StatsSnapshot, error) {
	ctx, span := telemetry.StartSpan(ctx, "stats.compute")
	defer span.End()
	telemetry.SetSpanAttributes(ctx, telemetry.HostelIDAttr(hostelID))

	start := time.Now()
	asOf = asOf.UTC()

	var (
		monthlyRevenue, yearlyRevenue float64
		todayBookings                 int
		totalRooms, availableRooms    int
		stays                         []repository.Stay
		activeBookings                int
		roomTypes                     []domain.RoomTypeCount
		monthly                       map[string]int
		totalGuests, totalBookings    int
		totalStaff                    int
	)

	dayStart := domain.StartOfDay(asOf)
	dayEnd := dayStart.Add(24*time.Hour - time.Nanosecond)
	trendStart := domain.StartOfMonth(asOf).AddDate(0, -(domain.TrendMonths - 1), 0)
	occupancyStart := asOf.Add(-domain.OccupancyWindowDays * 24 * time.Hour)

	g, gctx := errgroup.WithContext(ctx)
	run := func(name string, fn func(ctx context.Context) error) {
		g.Go(func() error {
			if err := fn(gctx); err != nil {
				return fmt.Errorf("stats %s: %w", name, err)
			}
			return nil
		})
	}

	run("monthly revenue", func(ctx context.Context) (err error) {
		monthlyRevenue, err = s.repo.SumCompletedPayments(ctx, hostelID, domain.StartOfMonth(asOf), asOf)
		return
	})
	run("yearly revenue", func(ctx context.Context) (err error) {
		yearlyRevenue, err = s.repo.SumCompletedPayments(ctx, hostelID, domain.StartOfYear(asOf), asOf)
		return
	})
	run("today bookings", func(ctx context.Context) (err error) {
		todayBookings, err = s.repo.CountBookingsCreated(ctx, hostelID, dayStart, dayEnd)
		return
	})
	run("total rooms", func(ctx context.Context) (err error) {
		totalRooms, err = s.repo.CountRooms(ctx, hostelID, false)
		return
	})
	run("available rooms", func(ctx context.Context) (err error) {
		availableRooms, err = s.repo.CountRooms(ctx, hostelID, true)
		return
	})
	run("occupancy", func(ctx context.Context) (err error) {
		stays, err = s.repo.StaysWithin(ctx, hostelID, occupancyStart, asOf)
		return
	})
	run("active bookings", func(ctx context.Context) (err error) {
		activeBookings, err = s.repo.CountActiveBookings(ctx, hostelID, asOf)
		return
	})
	run("room types", func(ctx context.Context) (err error) {
		roomTypes, err = s.repo.RoomTypeCounts(ctx, hostelID)
		return
	})
	run("booking trend", func(ctx context.Context) (err error) {
		monthly, err = s.repo.MonthlyBookingCounts(ctx, hostelID, trendStart, asOf)
		return
	})
	run("guests", func(ctx context.Context) (err error) {
		totalGuests, err = s.repo.CountGuests(ctx, hostelID)
		return
	})
	run("bookings", func(ctx context.Context) (err error) {
		totalBookings, err = s.repo.CountBookings(ctx, hostelID)
		return
	})
	run("staff", func(ctx context.Context) (err error) {
		totalStaff, err = s.repo.CountStaff(ctx, hostelID)
		return
	})

	if err := g.Wait(); err != nil {
		telemetry.SetSpanError(ctx, err)
		s.duration.Record(ctx, time.Since(start).Seconds(), telemetry.OutcomeAttr("error"))
		s.log.ErrorContext(ctx, "failed to compute stats", zap.String("hostel_id", hostelID), zap.Error(err))
		return nil, err
	}

	s.duration.Record(ctx, time.Since(start).Seconds(), telemetry.OutcomeAttr("ok"))

	return &domain.StatsSnapshot{
		HostelID:             hostelID,
		AsOf:                 asOf,
		MonthlyRevenue:       round2(monthlyRevenue),
		YearlyRevenue:        round2(yearlyRevenue),
		TodayBookings:        todayBookings,
		AvailableRooms:       availableRooms,
		TotalRooms:           totalRooms,
		OccupancyRate:        OccupancyRate(stays, totalRooms),
		ActiveBookings:       activeBookings,
		TotalGuests:          totalGuests,
		TotalBookings:        totalBookings,
		TotalStaff:           totalStaff,
		RoomTypes:            sortRoomTypes(roomTypes),
		MonthlyBookingsTrend: BookingTrend(monthly, asOf),
	}, nil
}

// OccupancyRate is booked nights over room-nights available in the window, as a
// percentage rounded to 2 decimals. Overlapping stays are not deduplicated.
func OccupancyRate(stays []repository.Stay, totalRooms int) float64 {
	possible := totalRooms * domain.OccupancyWindowDays
	if possible <= 0 {
		return 0
	}
	nights := 0
	for _, st := range stays {
		nights += domain.NightsBetween(st.CheckIn, st.CheckOut)
	}
	return round2(float64(nights) / float64(possible) * 100)
}

// BookingTrend expands sparse monthly counts into the last TrendMonths buckets
// ending at asOf's month, oldest first, with missing months as zero.
func BookingTrend(counts map[string]int, asOf time.Time) []domain.MonthlyBookings {
	first := domain.StartOfMonth(asOf).AddDate(0, -(domain.TrendMonths - 1), 0)
	trend := make([]domain.MonthlyBookings, 0, domain.TrendMonths)
	for i := 0; i < domain.TrendMonths; i++ {
		key := domain.MonthKey(first.AddDate(0, i, 0))
		trend = append(trend, domain.MonthlyBookings{Month: key, Bookings: counts[key]})
	}
	return trend
}

func sortRoomTypes(in []domain.RoomTypeCount) []domain.RoomTypeCount {
	out := make([]domain.RoomTypeCount, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
