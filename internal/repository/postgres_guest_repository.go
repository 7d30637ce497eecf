package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prohmpiriya/hostel-saas/internal/domain"
)

const guestColumns = `id, hostel_id, first_name, last_name, COALESCE(email, ''), COALESCE(phone, ''),
	COALESCE(nationality, ''), COALESCE(document_type, ''), COALESCE(document_number, ''),
	COALESCE(notes, ''), created_at, updated_at`

// PostgresGuestRepository implements GuestRepository using PostgreSQL
type PostgresGuestRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresGuestRepository creates a new PostgresGuestRepository
func NewPostgresGuestRepository(pool *pgxpool.Pool) *PostgresGuestRepository {
	return &PostgresGuestRepository{pool: pool}
}

// Create creates a new guest
func (r *PostgresGuestRepository) Create(ctx context.Context, guest *domain.Guest) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO guests (id, hostel_id, first_name, last_name, email, phone, nationality,
			document_type, document_number, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		guest.ID,
		guest.HostelID,
		guest.FirstName,
		guest.LastName,
		nullStringOrValue(guest.Email),
		nullStringOrValue(guest.Phone),
		nullStringOrValue(guest.Nationality),
		nullStringOrValue(guest.DocumentType),
		nullStringOrValue(guest.DocumentNumber),
		nullStringOrValue(guest.Notes),
		guest.CreatedAt,
		guest.UpdatedAt,
	)
	return err
}

func scanGuest(row pgx.Row) (*domain.Guest, error) {
	guest := &domain.Guest{}
	err := row.Scan(
		&guest.ID,
		&guest.HostelID,
		&guest.FirstName,
		&guest.LastName,
		&guest.Email,
		&guest.Phone,
		&guest.Nationality,
		&guest.DocumentType,
		&guest.DocumentNumber,
		&guest.Notes,
		&guest.CreatedAt,
		&guest.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return guest, nil
}

// GetByID retrieves a guest by ID
func (r *PostgresGuestRepository) GetByID(ctx context.Context, id string) (*domain.Guest, error) {
	if !isUUID(id) {
		return nil, nil
	}
	guest, err := scanGuest(r.pool.QueryRow(ctx, `SELECT `+guestColumns+` FROM guests WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return guest, nil
}

// List retrieves guests newest first
func (r *PostgresGuestRepository) List(ctx context.Context, filter GuestFilter) ([]*domain.Guest, int64, error) {
	where := newWhere("hostel_id = $1", filter.HostelID)
	if filter.Search != "" {
		where.add("(first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ? OR phone ILIKE ?)", "%"+filter.Search+"%")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM guests "+where.clause, where.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM guests %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		guestColumns, where.clause, where.next(), where.next()+1)
	rows, err := r.pool.Query(ctx, query, append(where.args, filter.Limit, filter.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	guests := make([]*domain.Guest, 0)
	for rows.Next() {
		guest, err := scanGuest(rows)
		if err != nil {
			return nil, 0, err
		}
		guests = append(guests, guest)
	}
	return guests, total, rows.Err()
}

// Update updates a guest
func (r *PostgresGuestRepository) Update(ctx context.Context, guest *domain.Guest) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE guests
		SET first_name = $2, last_name = $3, email = $4, phone = $5, nationality = $6,
			document_type = $7, document_number = $8, notes = $9, updated_at = $10
		WHERE id = $1
	`,
		guest.ID,
		guest.FirstName,
		guest.LastName,
		nullStringOrValue(guest.Email),
		nullStringOrValue(guest.Phone),
		nullStringOrValue(guest.Nationality),
		nullStringOrValue(guest.DocumentType),
		nullStringOrValue(guest.DocumentNumber),
		nullStringOrValue(guest.Notes),
		guest.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a guest
func (r *PostgresGuestRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.pool, "guests", id)
}

// HasBookings reports whether any booking references the guest
func (r *PostgresGuestRepository) HasBookings(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM bookings WHERE guest_id = $1)`, id).Scan(&exists)
	return exists, err
}
