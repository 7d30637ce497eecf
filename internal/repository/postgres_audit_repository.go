package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prohmpiriya/hostel-saas/pkg/middleware"
)

// PostgresAuditRepository persists audit entries; it satisfies middleware.AuditSink
type PostgresAuditRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAuditRepository creates a new PostgresAuditRepository
func NewPostgresAuditRepository(pool *pgxpool.Pool) *PostgresAuditRepository {
	return &PostgresAuditRepository{pool: pool}
}

var _ middleware.AuditSink = (*PostgresAuditRepository)(nil)

// WriteAudit inserts a batch of entries in one round trip
func (r *PostgresAuditRepository) WriteAudit(ctx context.Context, entries []*middleware.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		var payload []byte
		if e.Payload != nil {
			b, err := json.Marshal(e.Payload)
			if err != nil {
				return fmt.Errorf("failed to encode audit payload: %w", err)
			}
			payload = b
		}

		batch.Queue(`
			INSERT INTO audit_logs (id, hostel_id, user_id, user_role, action, resource_type, resource_id,
				method, path, status, ip_address, user_agent, request_id, trace_id, payload, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		`,
			e.ID,
			uuidOrNil(e.HostelID),
			uuidOrNil(e.UserID),
			nullStringOrValue(e.UserRole),
			string(e.Action),
			e.ResourceType,
			nullStringOrValue(e.ResourceID),
			e.Method,
			e.Path,
			e.Status,
			nullStringOrValue(e.IPAddress),
			nullStringOrValue(e.UserAgent),
			nullStringOrValue(e.RequestID),
			nullStringOrValue(e.TraceID),
			payload,
			e.CreatedAt,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range entries {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert audit entry: %w", err)
		}
	}
	return nil
}

// uuidOrNil keeps unparsable ids (e.g. a bad path segment) out of uuid columns
func uuidOrNil(s string) interface{} {
	if !isUUID(s) {
		return nil
	}
	return s
}
