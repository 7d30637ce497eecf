package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prohmpiriya/hostel-saas/internal/domain"
)

const bookingColumns = `id, hostel_id, room_id, guest_id, check_in, check_out, number_of_guests,
	total_amount, status, COALESCE(notes, ''), created_at, updated_at`

// PostgresBookingRepository implements BookingRepository using PostgreSQL
type PostgresBookingRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresBookingRepository creates a new PostgresBookingRepository
func NewPostgresBookingRepository(pool *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{pool: pool}
}

// Create creates a new booking
func (r *PostgresBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO bookings (id, hostel_id, room_id, guest_id, check_in, check_out, number_of_guests,
			total_amount, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		booking.ID,
		booking.HostelID,
		booking.RoomID,
		booking.GuestID,
		booking.CheckIn,
		booking.CheckOut,
		booking.NumberOfGuests,
		booking.TotalAmount,
		booking.Status,
		nullStringOrValue(booking.Notes),
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	return err
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	booking := &domain.Booking{}
	err := row.Scan(
		&booking.ID,
		&booking.HostelID,
		&booking.RoomID,
		&booking.GuestID,
		&booking.CheckIn,
		&booking.CheckOut,
		&booking.NumberOfGuests,
		&booking.TotalAmount,
		&booking.Status,
		&booking.Notes,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// GetByID retrieves a booking by ID
func (r *PostgresBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	if !isUUID(id) {
		return nil, nil
	}
	booking, err := scanBooking(r.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return booking, nil
}

// List retrieves bookings by check-in date, latest first
func (r *PostgresBookingRepository) List(ctx context.Context, filter BookingFilter) ([]*domain.Booking, int64, error) {
	where := newWhere("hostel_id = $1", filter.HostelID)
	if filter.Status != "" {
		where.add("status = ?", filter.Status)
	}
	if filter.RoomID != "" {
		where.add("room_id::text = ?", filter.RoomID)
	}
	if filter.GuestID != "" {
		where.add("guest_id::text = ?", filter.GuestID)
	}
	if filter.From != nil {
		where.add("check_in >= ?", *filter.From)
	}
	if filter.To != nil {
		where.add("check_in <= ?", *filter.To)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM bookings "+where.clause, where.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM bookings %s ORDER BY check_in DESC, created_at DESC LIMIT $%d OFFSET $%d`,
		bookingColumns, where.clause, where.next(), where.next()+1)
	rows, err := r.pool.Query(ctx, query, append(where.args, filter.Limit, filter.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, total, rows.Err()
}

// Update updates a booking
func (r *PostgresBookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE bookings
		SET room_id = $2, check_in = $3, check_out = $4, number_of_guests = $5, total_amount = $6,
			status = $7, notes = $8, updated_at = $9
		WHERE id = $1
	`,
		booking.ID,
		booking.RoomID,
		booking.CheckIn,
		booking.CheckOut,
		booking.NumberOfGuests,
		booking.TotalAmount,
		booking.Status,
		nullStringOrValue(booking.Notes),
		booking.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a booking; payments.booking_id is set NULL by the foreign key
func (r *PostgresBookingRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.pool, "bookings", id)
}
