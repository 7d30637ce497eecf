package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prohmpiriya/hostel-saas/internal/domain"
)

// PostgresStatsRepository implements StatsRepository using PostgreSQL aggregates
type PostgresStatsRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresStatsRepository creates a new PostgresStatsRepository
func NewPostgresStatsRepository(pool *pgxpool.Pool) *PostgresStatsRepository {
	return &PostgresStatsRepository{pool: pool}
}

func (r *PostgresStatsRepository) count(ctx context.Context, query string, args ...interface{}) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, query, args...).Scan(&n)
	return n, err
}

func (r *PostgresStatsRepository) SumCompletedPayments(ctx context.Context, hostelID string, from, to time.Time) (float64, error) {
	var sum float64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)::float8
		FROM payments
		WHERE hostel_id = $1 AND status = $2 AND created_at >= $3 AND created_at <= $4
	`, hostelID, domain.PaymentStatusCompleted, from, to).Scan(&sum)
	return sum, err
}

func (r *PostgresStatsRepository) CountBookingsCreated(ctx context.Context, hostelID string, from, to time.Time) (int, error) {
	return r.count(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE hostel_id = $1 AND created_at >= $2 AND created_at <= $3
	`, hostelID, from, to)
}

func (r *PostgresStatsRepository) CountRooms(ctx context.Context, hostelID string, availableOnly bool) (int, error) {
	return r.count(ctx, `
		SELECT COUNT(*) FROM rooms
		WHERE hostel_id = $1 AND ($2 = FALSE OR is_available = TRUE)
	`, hostelID, availableOnly)
}

func (r *PostgresStatsRepository) StaysWithin(ctx context.Context, hostelID string, from, to time.Time) ([]Stay, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT check_in, check_out FROM bookings
		WHERE hostel_id = $1 AND check_in >= $2 AND check_out <= $3
	`, hostelID, from, to)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Stay, error) {
		var s Stay
		err := row.Scan(&s.CheckIn, &s.CheckOut)
		return s, err
	})
}

func (r *PostgresStatsRepository) CountActiveBookings(ctx context.Context, hostelID string, asOf time.Time) (int, error) {
	return r.count(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE hostel_id = $1
		  AND (status = $2 OR (status = $3 AND check_in >= $4))
	`, hostelID, domain.BookingStatusCheckedIn, domain.BookingStatusConfirmed, asOf)
}

func (r *PostgresStatsRepository) RoomTypeCounts(ctx context.Context, hostelID string) ([]domain.RoomTypeCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT type, COUNT(*) FROM rooms
		WHERE hostel_id = $1
		GROUP BY type
		ORDER BY type
	`, hostelID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.RoomTypeCount, error) {
		var c domain.RoomTypeCount
		err := row.Scan(&c.Type, &c.Count)
		return c, err
	})
}

func (r *PostgresStatsRepository) MonthlyBookingCounts(ctx context.Context, hostelID string, from, to time.Time) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM') AS month, COUNT(*)
		FROM bookings
		WHERE hostel_id = $1 AND created_at >= $2 AND created_at <= $3
		GROUP BY month
	`, hostelID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var month string
		var n int
		if err := rows.Scan(&month, &n); err != nil {
			return nil, err
		}
		out[month] = n
	}
	return out, rows.Err()
}

func (r *PostgresStatsRepository) CountGuests(ctx context.Context, hostelID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM guests WHERE hostel_id = $1`, hostelID)
}

func (r *PostgresStatsRepository) CountBookings(ctx context.Context, hostelID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM bookings WHERE hostel_id = $1`, hostelID)
}

func (r *PostgresStatsRepository) CountStaff(ctx context.Context, hostelID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users WHERE hostel_id = $1`, hostelID)
}
