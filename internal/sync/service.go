// Package sync owns the upsert transaction for canonical records: lookup
// by (tenant, external id), dependency verification, change-detection
// classification, and the write itself.
package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tobyh/campussync/internal/domain"
	"github.com/tobyh/campussync/internal/fingerprint"
	"github.com/tobyh/campussync/internal/repository"
)

// Service syncs canonical records of one entity kind into tenant-scoped
// storage. Failures are always confined to the record that caused them;
// Sync never returns an error, it returns an outcome.
type Service struct {
	kind  domain.Kind
	store repository.RecordStore
	log   *zap.Logger
}

// NewService creates the sync service for one entity kind.
func NewService(kind domain.Kind, store repository.RecordStore, log *zap.Logger) *Service {
	return &Service{
		kind:  kind,
		store: store,
		log:   log.With(zap.String("module", string(kind))),
	}
}

// NewServices builds one sync service per entity kind.
func NewServices(store repository.RecordStore, log *zap.Logger) map[domain.Kind]*Service {
	services := make(map[domain.Kind]*Service, len(domain.Kinds()))
	for _, kind := range domain.Kinds() {
		services[kind] = NewService(kind, store, log)
	}
	return services
}

// Sync upserts one canonical record and classifies the change. Concurrent
// writers for the same key are serialized by the storage layer's unique
// constraint; the loser of an insert race gets an ERROR outcome, which
// callers treat as retryable.
func (s *Service) Sync(ctx context.Context, tenantID uuid.UUID, record domain.Canonical) domain.Outcome {
	externalID := record.ExternalID()

	incoming, err := fingerprint.Compute(record)
	if err != nil {
		return s.errorOutcome(externalID, fmt.Errorf("failed to fingerprint record: %w", err))
	}

	if outcome, blocked := s.checkDependencies(ctx, tenantID, record); blocked {
		return outcome
	}

	repo := s.store.Records(s.kind)
	existing, err := repo.GetByExternalID(ctx, tenantID, externalID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return s.errorOutcome(externalID, fmt.Errorf("failed to look up record: %w", err))
	}

	if errors.Is(err, repository.ErrNotFound) {
		stored := domain.NewStoredRecord(tenantID, record, incoming)
		if insertErr := repo.Insert(ctx, stored); insertErr != nil {
			return s.errorOutcome(externalID, fmt.Errorf("failed to insert record: %w", insertErr))
		}
		s.log.Info("record created",
			zap.String("tenant_id", tenantID.String()),
			zap.String("external_id", externalID),
		)
		return domain.Outcome{ExternalID: externalID, Status: domain.OutcomeNew, Message: "record created"}
	}

	switch fingerprint.Classify(existing.Fingerprint, incoming) {
	case fingerprint.Unchanged:
		return domain.Outcome{ExternalID: externalID, Status: domain.OutcomeUnchanged, Message: "no changes detected"}
	default:
		// Full replace: the incoming payload is the complete current
		// truth, omitted optional fields overwrite stored values.
		updated := existing
		updated.Properties = record.Properties()
		updated.Fingerprint = incoming
		updated.SyncStatus = domain.SyncStatusSynced
		if updateErr := repo.Update(ctx, updated); updateErr != nil {
			return s.errorOutcome(externalID, fmt.Errorf("failed to update record: %w", updateErr))
		}
		s.log.Info("record updated",
			zap.String("tenant_id", tenantID.String()),
			zap.String("external_id", externalID),
		)
		return domain.Outcome{ExternalID: externalID, Status: domain.OutcomeUpdated, Message: "record updated"}
	}
}

// checkDependencies verifies every referenced parent is already synced.
// The record is never partially linked: one missing parent holds the whole
// record as INVALID until the parent's own sync completes.
func (s *Service) checkDependencies(ctx context.Context, tenantID uuid.UUID, record domain.Canonical) (domain.Outcome, bool) {
	for _, dep := range record.Dependencies() {
		repo := s.store.Records(dep.Kind)
		if repo == nil {
			return s.errorOutcome(record.ExternalID(), fmt.Errorf("no repository for dependency kind %q", dep.Kind)), true
		}
		exists, err := repo.Exists(ctx, tenantID, dep.ExternalID)
		if err != nil {
			return s.errorOutcome(record.ExternalID(), fmt.Errorf("failed to verify %s dependency: %w", dep.Kind, err)), true
		}
		if !exists {
			return domain.Outcome{
				ExternalID: record.ExternalID(),
				Status:     domain.OutcomeInvalid,
				Message:    fmt.Sprintf("missing dependency: %s %s is not synced", dep.Kind, dep.ExternalID),
			}, true
		}
	}
	return domain.Outcome{}, false
}

func (s *Service) errorOutcome(externalID string, err error) domain.Outcome {
	s.log.Error("sync failed",
		zap.String("external_id", externalID),
		zap.Error(err),
	)
	return domain.Outcome{ExternalID: externalID, Status: domain.OutcomeError, Message: err.Error()}
}
