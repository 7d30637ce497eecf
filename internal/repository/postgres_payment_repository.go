package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prohmpiriya/hostel-saas/internal/domain"
)

const paymentColumns = `id, hostel_id, COALESCE(booking_id::text, ''), amount, currency, method, status,
	COALESCE(reference, ''), COALESCE(notes, ''), created_at, updated_at`

// PostgresPaymentRepository implements PaymentRepository using PostgreSQL
type PostgresPaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPaymentRepository creates a new PostgresPaymentRepository
func NewPostgresPaymentRepository(pool *pgxpool.Pool) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{pool: pool}
}

// Create creates a new payment
func (r *PostgresPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO payments (id, hostel_id, booking_id, amount, currency, method, status, reference, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		payment.ID,
		payment.HostelID,
		nullStringOrValue(payment.BookingID),
		payment.Amount,
		payment.Currency,
		payment.Method,
		payment.Status,
		nullStringOrValue(payment.Reference),
		nullStringOrValue(payment.Notes),
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	return err
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	payment := &domain.Payment{}
	err := row.Scan(
		&payment.ID,
		&payment.HostelID,
		&payment.BookingID,
		&payment.Amount,
		&payment.Currency,
		&payment.Method,
		&payment.Status,
		&payment.Reference,
		&payment.Notes,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// GetByID retrieves a payment by ID
func (r *PostgresPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	if !isUUID(id) {
		return nil, nil
	}
	payment, err := scanPayment(r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return payment, nil
}

// List retrieves payments newest first
func (r *PostgresPaymentRepository) List(ctx context.Context, filter PaymentFilter) ([]*domain.Payment, int64, error) {
	where := newWhere("hostel_id = $1", filter.HostelID)
	if filter.Status != "" {
		where.add("status = ?", filter.Status)
	}
	if filter.BookingID != "" {
		where.add("booking_id::text = ?", filter.BookingID)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM payments "+where.clause, where.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM payments %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		paymentColumns, where.clause, where.next(), where.next()+1)
	rows, err := r.pool.Query(ctx, query, append(where.args, filter.Limit, filter.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	payments := make([]*domain.Payment, 0)
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		payments = append(payments, payment)
	}
	return payments, total, rows.Err()
}

// Update updates a payment
func (r *PostgresPaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE payments
		SET amount = $2, method = $3, status = $4, reference = $5, notes = $6, updated_at = $7
		WHERE id = $1
	`,
		payment.ID,
		payment.Amount,
		payment.Method,
		payment.Status,
		nullStringOrValue(payment.Reference),
		nullStringOrValue(payment.Notes),
		payment.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a payment
func (r *PostgresPaymentRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.pool, "payments", id)
}
