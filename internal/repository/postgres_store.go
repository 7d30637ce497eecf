package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPostgresStore wires every PostgreSQL repository onto one pool
func NewPostgresStore(pool *pgxpool.Pool) *Store {
	return &Store{
		Hostels:  NewPostgresHostelRepository(pool),
		Users:    NewPostgresUserRepository(pool),
		Rooms:    NewPostgresRoomRepository(pool),
		Guests:   NewPostgresGuestRepository(pool),
		Bookings: NewPostgresBookingRepository(pool),
		Payments: NewPostgresPaymentRepository(pool),
		Stats:    NewPostgresStatsRepository(pool),
	}
}
