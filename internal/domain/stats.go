package domain

import (
	"time"
)

// TrendMonths is the number of monthly buckets in a booking trend
const TrendMonths = 6

// OccupancyWindowDays is the look-back window for the occupancy rate
const OccupancyWindowDays = 30

// RoomTypeCount is the number of rooms of one type
type RoomTypeCount struct {
	Type  RoomType `json:"type"`
	Count int      `json:"count"`
}

// MonthlyBookings is one bucket of the booking trend, keyed "YYYY-MM"
type MonthlyBookings struct {
	Month    string `json:"month"`
	Bookings int    `json:"bookings"`
}

// StatsSnapshot is the full set of derived metrics for one hostel at AsOf
type StatsSnapshot struct {
	HostelID             string            `json:"hostelId"`
	AsOf                 time.Time         `json:"asOf"`
	MonthlyRevenue       float64           `json:"monthlyRevenue"`
	YearlyRevenue        float64           `json:"yearlyRevenue"`
	TodayBookings        int               `json:"todayBookings"`
	AvailableRooms       int               `json:"availableRooms"`
	TotalRooms           int               `json:"totalRooms"`
	OccupancyRate        float64           `json:"occupancyRate"`
	ActiveBookings       int               `json:"activeBookings"`
	TotalGuests          int               `json:"totalGuests"`
	TotalBookings        int               `json:"totalBookings"`
	TotalStaff           int               `json:"totalStaff"`
	RoomTypes            []RoomTypeCount   `json:"roomTypes"`
	MonthlyBookingsTrend []MonthlyBookings `json:"monthlyBookingsTrend"`
}

// StartOfDay truncates t to midnight UTC
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfMonth returns the first instant of t's month in UTC
func StartOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// StartOfYear returns the first instant of t's year in UTC
func StartOfYear(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
}

// MonthKey formats t as "YYYY-MM" in UTC
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}
