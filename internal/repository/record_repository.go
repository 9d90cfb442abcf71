package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tobyh/campussync/internal/domain"
)

// tableByKind maps each entity kind to its stored-record table. Table
// names come from this fixed map only, never from request input.
var tableByKind = map[domain.Kind]string{
	domain.KindPerson:       "persons",
	domain.KindEnrollment:   "enrollments",
	domain.KindGrade:        "grades",
	domain.KindPayment:      "payments",
	domain.KindRegistration: "registrations",
	domain.KindUnit:         "units",
	domain.KindClass:        "classes",
	domain.KindProgram:      "programs",
}

type recordRepository struct {
	pool  *pgxpool.Pool
	table string
}

// NewRecordRepository wires a repository for one entity kind backed by
// pgxpool.
func NewRecordRepository(pool *pgxpool.Pool, kind domain.Kind) (RecordRepository, error) {
	table, ok := tableByKind[kind]
	if !ok {
		return nil, fmt.Errorf("no table for kind %q", kind)
	}
	return &recordRepository{pool: pool, table: table}, nil
}

func (r *recordRepository) GetByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (domain.StoredRecord, error) {
	query := fmt.Sprintf(
		`SELECT id, tenant_id, external_id, properties, fingerprint, sync_status, created_at, updated_at
		 FROM %s
		 WHERE tenant_id = $1 AND external_id = $2`,
		r.table,
	)

	row := r.pool.QueryRow(ctx, query, tenantID, externalID)
	record, err := scanStoredRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.StoredRecord{}, ErrNotFound
		}
		return domain.StoredRecord{}, fmt.Errorf("failed to get stored record: %w", err)
	}
	return record, nil
}

func (r *recordRepository) Insert(ctx context.Context, record domain.StoredRecord) error {
	propertiesJSON, err := json.Marshal(record.Properties)
	if err != nil {
		return fmt.Errorf("failed to marshal properties: %w", err)
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (id, tenant_id, external_id, properties, fingerprint, sync_status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.table,
	)

	_, err = r.pool.Exec(ctx, query,
		record.ID,
		record.TenantID,
		record.ExternalID,
		propertiesJSON,
		record.Fingerprint,
		string(record.SyncStatus),
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert stored record: %w", err)
	}
	return nil
}

func (r *recordRepository) Update(ctx context.Context, record domain.StoredRecord) error {
	propertiesJSON, err := json.Marshal(record.Properties)
	if err != nil {
		return fmt.Errorf("failed to marshal properties: %w", err)
	}

	query := fmt.Sprintf(
		`UPDATE %s
		 SET properties = $3, fingerprint = $4, sync_status = $5, updated_at = $6
		 WHERE tenant_id = $1 AND external_id = $2`,
		r.table,
	)

	tag, err := r.pool.Exec(ctx, query,
		record.TenantID,
		record.ExternalID,
		propertiesJSON,
		record.Fingerprint,
		string(record.SyncStatus),
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update stored record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *recordRepository) Exists(ctx context.Context, tenantID uuid.UUID, externalID string) (bool, error) {
	query := fmt.Sprintf(
		`SELECT EXISTS (SELECT 1 FROM %s WHERE tenant_id = $1 AND external_id = $2 AND sync_status = $3)`,
		r.table,
	)

	var exists bool
	err := r.pool.QueryRow(ctx, query, tenantID, externalID, string(domain.SyncStatusSynced)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check stored record existence: %w", err)
	}
	return exists, nil
}

func scanStoredRecord(row pgx.Row) (domain.StoredRecord, error) {
	var (
		record         domain.StoredRecord
		propertiesJSON []byte
		syncStatus     string
		createdAt      pgtype.Timestamptz
		updatedAt      pgtype.Timestamptz
	)

	if err := row.Scan(
		&record.ID,
		&record.TenantID,
		&record.ExternalID,
		&propertiesJSON,
		&record.Fingerprint,
		&syncStatus,
		&createdAt,
		&updatedAt,
	); err != nil {
		return domain.StoredRecord{}, err
	}

	if len(propertiesJSON) > 0 {
		if err := json.Unmarshal(propertiesJSON, &record.Properties); err != nil {
			return domain.StoredRecord{}, fmt.Errorf("failed to unmarshal properties: %w", err)
		}
	}
	record.SyncStatus = domain.SyncStatus(syncStatus)
	if createdAt.Valid {
		record.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		record.UpdatedAt = updatedAt.Time
	}

	return record, nil
}

// Store bundles the per-kind repositories behind kind lookup.
type Store struct {
	repos map[domain.Kind]RecordRepository
}

// NewStore builds a repository for every entity kind over one pool.
func NewStore(pool *pgxpool.Pool) (*Store, error) {
	repos := make(map[domain.Kind]RecordRepository, len(tableByKind))
	for _, kind := range domain.Kinds() {
		repo, err := NewRecordRepository(pool, kind)
		if err != nil {
			return nil, err
		}
		repos[kind] = repo
	}
	return &Store{repos: repos}, nil
}

// Records returns the repository for kind. Unknown kinds return nil; the
// caller validates kinds before reaching here.
func (s *Store) Records(kind domain.Kind) RecordRepository {
	return s.repos[kind]
}

var _ RecordStore = (*Store)(nil)
