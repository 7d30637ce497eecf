package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prohmpiriya/hostel-saas/internal/domain"
)

const roomNumberKey = "rooms_hostel_id_room_number_key"

const roomColumns = `id, hostel_id, room_number, COALESCE(name, ''), type, beds, max_guests, price_per_night,
	floor, size, COALESCE(description, ''), amenities, images, COALESCE(housekeeping_notes, ''),
	is_available, created_at, updated_at`

// PostgresRoomRepository implements RoomRepository using PostgreSQL
type PostgresRoomRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRoomRepository creates a new PostgresRoomRepository
func NewPostgresRoomRepository(pool *pgxpool.Pool) *PostgresRoomRepository {
	return &PostgresRoomRepository{pool: pool}
}

// Create creates a new room
func (r *PostgresRoomRepository) Create(ctx context.Context, room *domain.Room) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO rooms (id, hostel_id, room_number, name, type, beds, max_guests, price_per_night,
			floor, size, description, amenities, images, housekeeping_notes, is_available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`,
		room.ID,
		room.HostelID,
		room.RoomNumber,
		nullStringOrValue(room.Name),
		room.Type,
		room.Beds,
		room.MaxGuests,
		room.PricePerNight,
		room.Floor,
		room.Size,
		nullStringOrValue(room.Description),
		nonNil(room.Amenities),
		nonNil(room.Images),
		nullStringOrValue(room.HousekeepingNotes),
		room.IsAvailable,
		room.CreatedAt,
		room.UpdatedAt,
	)
	return mapUniqueViolation(err)
}

func scanRoom(row pgx.Row) (*domain.Room, error) {
	room := &domain.Room{}
	err := row.Scan(
		&room.ID,
		&room.HostelID,
		&room.RoomNumber,
		&room.Name,
		&room.Type,
		&room.Beds,
		&room.MaxGuests,
		&room.PricePerNight,
		&room.Floor,
		&room.Size,
		&room.Description,
		&room.Amenities,
		&room.Images,
		&room.HousekeepingNotes,
		&room.IsAvailable,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return room, nil
}

// GetByID retrieves a room by ID
func (r *PostgresRoomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	if !isUUID(id) {
		return nil, nil
	}
	room, err := scanRoom(r.pool.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return room, nil
}

// List retrieves rooms ordered by room number
func (r *PostgresRoomRepository) List(ctx context.Context, filter RoomFilter) ([]*domain.Room, int64, error) {
	where := newWhere("hostel_id = $1", filter.HostelID)
	if filter.Search != "" {
		where.add("(room_number ILIKE ? OR name ILIKE ? OR description ILIKE ?)", "%"+filter.Search+"%")
	}
	if filter.Type != "" {
		where.add("type = ?", filter.Type)
	}
	if filter.Floor != nil {
		where.add("floor = ?", *filter.Floor)
	}
	if filter.IsAvailable != nil {
		where.add("is_available = ?", *filter.IsAvailable)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM rooms "+where.clause, where.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM rooms %s ORDER BY room_number ASC LIMIT $%d OFFSET $%d`,
		roomColumns, where.clause, where.next(), where.next()+1)
	rows, err := r.pool.Query(ctx, query, append(where.args, filter.Limit, filter.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	rooms := make([]*domain.Room, 0)
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, 0, err
		}
		rooms = append(rooms, room)
	}
	return rooms, total, rows.Err()
}

// Update updates a room
func (r *PostgresRoomRepository) Update(ctx context.Context, room *domain.Room) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE rooms
		SET room_number = $2, name = $3, type = $4, beds = $5, max_guests = $6, price_per_night = $7,
			floor = $8, size = $9, description = $10, amenities = $11, images = $12,
			housekeeping_notes = $13, is_available = $14, updated_at = $15
		WHERE id = $1
	`,
		room.ID,
		room.RoomNumber,
		nullStringOrValue(room.Name),
		room.Type,
		room.Beds,
		room.MaxGuests,
		room.PricePerNight,
		room.Floor,
		room.Size,
		nullStringOrValue(room.Description),
		nonNil(room.Amenities),
		nonNil(room.Images),
		nullStringOrValue(room.HousekeepingNotes),
		room.IsAvailable,
		room.UpdatedAt,
	)
	if err != nil {
		return mapUniqueViolation(err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a room
func (r *PostgresRoomRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.pool, "rooms", id)
}

// HasBookings reports whether any booking references the room
func (r *PostgresRoomRepository) HasBookings(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM bookings WHERE room_id = $1)`, id).Scan(&exists)
	return exists, err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// deleteByID hard-deletes one row from table; table names are package constants
func deleteByID(ctx context.Context, pool *pgxpool.Pool, table, id string) error {
	result, err := pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
