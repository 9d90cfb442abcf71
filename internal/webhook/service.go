// Package webhook is the ingestion pipeline: an inbound change
// notification goes through duplicate suppression, parsing, canonical
// mapping, change detection, and the tenant-scoped upsert, producing one
// outcome per raw record.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tobyh/campussync/internal/domain"
	"github.com/tobyh/campussync/internal/idempotency"
	"github.com/tobyh/campussync/internal/mapper"
	"github.com/tobyh/campussync/internal/parser"
	"github.com/tobyh/campussync/internal/repository"
	syncsvc "github.com/tobyh/campussync/internal/sync"
)

// ErrUnknownModule is returned when the notification names an entity kind
// this pipeline does not sync.
var ErrUnknownModule = errors.New("unknown module")

// Notification is one inbound webhook call, which may batch multiple raw
// records of a single entity kind.
type Notification struct {
	TenantID  uuid.UUID
	Module    domain.Kind
	EventType string
	// Instance identifies this delivery for event-log identity. When the
	// source does not send one, the caller leaves it empty and the
	// pipeline falls back to the payload content key, which still dedups
	// redeliveries of the same notification.
	Instance string
	Body     []byte
}

// Service wires the full pipeline. It is safe for concurrent use; one
// invocation runs per inbound notification.
type Service struct {
	guard    idempotency.Guard
	events   repository.EventLogRepository
	services map[domain.Kind]*syncsvc.Service
	source   string
	log      *zap.Logger
}

// NewService builds the pipeline. source names the originating system in
// event identities (e.g. "crm").
func NewService(
	guard idempotency.Guard,
	events repository.EventLogRepository,
	services map[domain.Kind]*syncsvc.Service,
	source string,
	log *zap.Logger,
) *Service {
	return &Service{
		guard:    guard,
		events:   events,
		services: services,
		source:   source,
		log:      log,
	}
}

// Process runs one notification through the pipeline and returns one
// outcome per raw record. A returned error means the notification itself
// was unusable (bad module, malformed envelope) and nothing was processed;
// per-record failures come back as INVALID or ERROR outcomes instead.
func (s *Service) Process(ctx context.Context, n Notification) ([]domain.Outcome, error) {
	service, ok := s.services[n.Module]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModule, n.Module)
	}

	key := idempotency.Key(n.Body)
	duplicate, err := s.guard.IsDuplicate(ctx, key)
	if err != nil {
		// Fail open: a broken guard backend must not block syncing; the
		// event log still dedups at event identity.
		s.log.Warn("idempotency check failed", zap.Error(err))
	}
	if duplicate {
		s.log.Info("duplicate payload ignored",
			zap.String("tenant_id", n.TenantID.String()),
			zap.String("module", string(n.Module)),
		)
		return duplicateOutcomes(n.Body), nil
	}

	records, err := parser.Records(n.Body)
	if err != nil {
		return nil, err
	}

	instance := n.Instance
	if instance == "" {
		instance = key
	}
	eventType := n.EventType
	if eventType == "" {
		eventType = "upsert"
	}

	outcomes := make([]domain.Outcome, 0, len(records))
	for i, raw := range records {
		outcomes = append(outcomes, s.processRecord(ctx, service, n, raw, i, eventType, instance))
	}

	if err := s.guard.MarkProcessed(ctx, key); err != nil {
		s.log.Warn("failed to mark payload processed", zap.Error(err))
	}

	return outcomes, nil
}

// duplicateOutcomes re-parses a suppressed payload so the caller still
// gets one entry per raw record, each echoing its external id. Nothing is
// written on this path.
func duplicateOutcomes(body []byte) []domain.Outcome {
	const message = "ignored: identical payload already processed"

	records, err := parser.Records(body)
	if err != nil {
		return []domain.Outcome{{Status: domain.OutcomeDuplicate, Message: message}}
	}
	outcomes := make([]domain.Outcome, 0, len(records))
	for i, raw := range records {
		recordID := parser.RecordID(raw)
		if recordID == "" {
			recordID = fmt.Sprintf("row-%d", i+1)
		}
		outcomes = append(outcomes, domain.Outcome{
			ExternalID: recordID,
			Status:     domain.OutcomeDuplicate,
			Message:    message,
		})
	}
	return outcomes
}

func (s *Service) processRecord(
	ctx context.Context,
	service *syncsvc.Service,
	n Notification,
	raw parser.Raw,
	index int,
	eventType, instance string,
) domain.Outcome {
	recordID := parser.RecordID(raw)
	if recordID == "" {
		recordID = fmt.Sprintf("row-%d", index+1)
	}

	payload, err := json.Marshal(raw)
	if err != nil {
		payload = []byte("null")
	}

	entry := domain.NewEventLogEntry(n.TenantID, s.source, n.Module, eventType, recordID, instance, payload)
	if err := s.events.Record(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.Outcome{
				ExternalID: recordID,
				Status:     domain.OutcomeDuplicate,
				Message:    "ignored: event already processed",
			}
		}
		s.log.Error("failed to record event", zap.String("event_id", entry.EventID), zap.Error(err))
		return domain.Outcome{
			ExternalID: recordID,
			Status:     domain.OutcomeError,
			Message:    "failed to record event",
		}
	}

	s.log.Debug("event recorded", zap.String("event", entry.Describe()), zap.String("event_id", entry.EventID))

	if err := s.events.MarkProcessing(ctx, entry.EventID); err != nil {
		s.log.Warn("failed to mark event processing", zap.String("event_id", entry.EventID), zap.Error(err))
	}

	rec, rejection := parser.Parse(n.Module, raw)
	if rejection != nil {
		return s.finishInvalid(ctx, entry, recordID, rejection.Error())
	}

	canonical, err := mapper.Map(rec)
	if err != nil {
		return s.finishInvalid(ctx, entry, rec.RecordID(), err.Error())
	}

	outcome := service.Sync(ctx, n.TenantID, canonical)
	switch outcome.Status {
	case domain.OutcomeNew, domain.OutcomeUpdated, domain.OutcomeUnchanged:
		if err := s.events.MarkCompleted(ctx, entry.EventID, string(outcome.Status)); err != nil {
			s.log.Warn("failed to mark event completed", zap.String("event_id", entry.EventID), zap.Error(err))
		}
	default:
		if err := s.events.MarkFailed(ctx, entry.EventID, outcome.Message); err != nil {
			s.log.Warn("failed to mark event failed", zap.String("event_id", entry.EventID), zap.Error(err))
		}
	}
	return outcome
}

func (s *Service) finishInvalid(ctx context.Context, entry domain.EventLogEntry, externalID, reason string) domain.Outcome {
	if err := s.events.MarkFailed(ctx, entry.EventID, reason); err != nil {
		s.log.Warn("failed to mark event failed", zap.String("event_id", entry.EventID), zap.Error(err))
	}
	return domain.Outcome{
		ExternalID: externalID,
		Status:     domain.OutcomeInvalid,
		Message:    reason,
	}
}
