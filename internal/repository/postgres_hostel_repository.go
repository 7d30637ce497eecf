package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prohmpiriya/hostel-saas/internal/domain"
	"github.com/prohmpiriya/hostel-saas/pkg/database"
)

const (
	hostelSlugIndex = "hostels_slug_idx"
	userEmailKey    = "users_email_key"
)

const hostelColumns = `id, name, slug, plan, is_active, settings, created_at, updated_at, deleted_at`

// PostgresHostelRepository implements HostelRepository using PostgreSQL
type PostgresHostelRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresHostelRepository creates a new PostgresHostelRepository
func NewPostgresHostelRepository(pool *pgxpool.Pool) *PostgresHostelRepository {
	return &PostgresHostelRepository{pool: pool}
}

func insertHostel(ctx context.Context, tx pgx.Tx, hostel *domain.Hostel) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO hostels (id, name, slug, plan, is_active, settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		hostel.ID,
		hostel.Name,
		hostel.Slug,
		hostel.Plan,
		hostel.IsActive,
		hostel.Settings,
		hostel.CreatedAt,
		hostel.UpdatedAt,
	)
	return mapUniqueViolation(err)
}

// Create creates a new hostel
func (r *PostgresHostelRepository) Create(ctx context.Context, hostel *domain.Hostel) error {
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return insertHostel(ctx, tx, hostel)
	})
}

// CreateWithOwner creates the hostel and its admin in one transaction
func (r *PostgresHostelRepository) CreateWithOwner(ctx context.Context, hostel *domain.Hostel, owner *domain.User) error {
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := insertHostel(ctx, tx, hostel); err != nil {
			return err
		}
		return insertUser(ctx, tx, owner)
	})
}

func scanHostel(row pgx.Row) (*domain.Hostel, error) {
	hostel := &domain.Hostel{}
	err := row.Scan(
		&hostel.ID,
		&hostel.Name,
		&hostel.Slug,
		&hostel.Plan,
		&hostel.IsActive,
		&hostel.Settings,
		&hostel.CreatedAt,
		&hostel.UpdatedAt,
		&hostel.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return hostel, nil
}

func (r *PostgresHostelRepository) getOne(ctx context.Context, where string, arg interface{}) (*domain.Hostel, error) {
	query := fmt.Sprintf(`SELECT %s FROM hostels WHERE %s = $1 AND deleted_at IS NULL`, hostelColumns, where)
	hostel, err := scanHostel(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return hostel, nil
}

// GetByID retrieves a hostel by ID
func (r *PostgresHostelRepository) GetByID(ctx context.Context, id string) (*domain.Hostel, error) {
	if !isUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, "id", id)
}

// GetBySlug retrieves a hostel by slug
func (r *PostgresHostelRepository) GetBySlug(ctx context.Context, slug string) (*domain.Hostel, error) {
	return r.getOne(ctx, "slug", slug)
}

// List retrieves hostels with pagination and search
func (r *PostgresHostelRepository) List(ctx context.Context, filter HostelFilter) ([]*domain.Hostel, int64, error) {
	whereClause := "WHERE deleted_at IS NULL"
	args := []interface{}{}
	argIndex := 1

	if filter.Search != "" {
		whereClause += fmt.Sprintf(" AND (name ILIKE $%d OR slug ILIKE $%d)", argIndex, argIndex)
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM hostels %s", whereClause)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM hostels
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, hostelColumns, whereClause, argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	hostels := make([]*domain.Hostel, 0)
	for rows.Next() {
		hostel, err := scanHostel(rows)
		if err != nil {
			return nil, 0, err
		}
		hostels = append(hostels, hostel)
	}
	return hostels, total, rows.Err()
}

// Update updates a hostel
func (r *PostgresHostelRepository) Update(ctx context.Context, hostel *domain.Hostel) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE hostels
		SET name = $2, slug = $3, plan = $4, is_active = $5, settings = $6, updated_at = $7
		WHERE id = $1 AND deleted_at IS NULL
	`,
		hostel.ID,
		hostel.Name,
		hostel.Slug,
		hostel.Plan,
		hostel.IsActive,
		hostel.Settings,
		hostel.UpdatedAt,
	)
	if err != nil {
		return mapUniqueViolation(err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete soft deletes a hostel by setting deleted_at timestamp
func (r *PostgresHostelRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE hostels
		SET deleted_at = $2, updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL
	`, id, at)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SlugTaken checks if any other hostel, deleted ones included, holds the slug
func (r *PostgresHostelRepository) SlugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM hostels WHERE slug = $1 AND ($2 = '' OR id::text <> $2))`
	var exists bool
	err := r.pool.QueryRow(ctx, query, slug, excludeID).Scan(&exists)
	return exists, err
}

// Counts returns the number of users, rooms, bookings and guests of a hostel
func (r *PostgresHostelRepository) Counts(ctx context.Context, id string) (*domain.HostelCounts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users WHERE hostel_id = $1),
			(SELECT COUNT(*) FROM rooms WHERE hostel_id = $1),
			(SELECT COUNT(*) FROM bookings WHERE hostel_id = $1),
			(SELECT COUNT(*) FROM guests WHERE hostel_id = $1)
	`
	counts := &domain.HostelCounts{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&counts.Users, &counts.Rooms, &counts.Bookings, &counts.Guests)
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// CountAll counts live hostels
func (r *PostgresHostelRepository) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM hostels WHERE deleted_at IS NULL`).Scan(&n)
	return n, err
}

// mapUniqueViolation converts known unique constraint failures into repository errors
func mapUniqueViolation(err error) error {
	switch {
	case err == nil:
		return nil
	case database.IsUniqueViolation(err, hostelSlugIndex):
		return ErrDuplicateSlug
	case database.IsUniqueViolation(err, userEmailKey):
		return ErrDuplicateEmail
	case database.IsUniqueViolation(err, roomNumberKey):
		return ErrDuplicateRoomNumber
	}
	return err
}
