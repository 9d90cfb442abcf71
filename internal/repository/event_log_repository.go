package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tobyh/campussync/internal/domain"
)

type eventLogRepository struct {
	pool *pgxpool.Pool
}

// NewEventLogRepository wires the audit-trail repository backed by
// pgxpool.
func NewEventLogRepository(pool *pgxpool.Pool) EventLogRepository {
	return &eventLogRepository{pool: pool}
}

func (r *eventLogRepository) Record(ctx context.Context, entry domain.EventLogEntry) error {
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO event_log (id, event_id, tenant_id, source, module, event_type, record_id, payload, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		entry.ID,
		entry.EventID,
		entry.TenantID,
		entry.Source,
		string(entry.Module),
		entry.EventType,
		entry.RecordID,
		[]byte(entry.Payload),
		string(entry.Status),
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to record event: %w", err)
	}
	return nil
}

func (r *eventLogRepository) MarkProcessing(ctx context.Context, eventID string) error {
	return r.transition(ctx, eventID, domain.EventStatusProcessing, "", "")
}

func (r *eventLogRepository) MarkCompleted(ctx context.Context, eventID string, result string) error {
	return r.transition(ctx, eventID, domain.EventStatusCompleted, result, "")
}

func (r *eventLogRepository) MarkFailed(ctx context.Context, eventID string, errorMessage string) error {
	return r.transition(ctx, eventID, domain.EventStatusFailed, "", errorMessage)
}

func (r *eventLogRepository) transition(ctx context.Context, eventID string, status domain.EventStatus, result, errorMessage string) error {
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE event_log
		 SET status = $2, result = $3, error_message = $4, updated_at = now()
		 WHERE event_id = $1`,
		eventID,
		string(status),
		result,
		errorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to transition event %s to %s: %w", eventID, status, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *eventLogRepository) List(ctx context.Context, tenantID uuid.UUID, limit int, offset int) ([]domain.EventLogEntry, error) {
	if limit <= 0 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT id, event_id, tenant_id, source, module, event_type, record_id, payload, status, result, error_message, created_at, updated_at
		 FROM event_log
		 WHERE tenant_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		tenantID,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	entries := []domain.EventLogEntry{}
	for rows.Next() {
		var (
			entry     domain.EventLogEntry
			module    string
			status    string
			payload   []byte
			result    pgtype.Text
			errMsg    pgtype.Text
			createdAt pgtype.Timestamptz
			updatedAt pgtype.Timestamptz
		)
		if scanErr := rows.Scan(
			&entry.ID,
			&entry.EventID,
			&entry.TenantID,
			&entry.Source,
			&module,
			&entry.EventType,
			&entry.RecordID,
			&payload,
			&status,
			&result,
			&errMsg,
			&createdAt,
			&updatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan event: %w", scanErr)
		}

		entry.Module = domain.Kind(module)
		entry.Status = domain.EventStatus(status)
		entry.Payload = payload
		if result.Valid {
			entry.Result = result.String
		}
		if errMsg.Valid {
			entry.ErrorMessage = errMsg.String
		}
		if createdAt.Valid {
			entry.CreatedAt = createdAt.Time
		}
		if updatedAt.Valid {
			entry.UpdatedAt = updatedAt.Time
		}

		entries = append(entries, entry)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", rowsErr)
	}

	return entries, nil
}
