package webhook

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tobyh/campussync/internal/domain"
	"github.com/tobyh/campussync/internal/idempotency"
	"github.com/tobyh/campussync/internal/repository"
	syncsvc "github.com/tobyh/campussync/internal/sync"
)

type stubRepo struct {
	records map[string]domain.StoredRecord
}

func newStubRepo() *stubRepo {
	return &stubRepo{records: map[string]domain.StoredRecord{}}
}

func storeKey(tenantID uuid.UUID, externalID string) string {
	return tenantID.String() + "|" + externalID
}

func (r *stubRepo) GetByExternalID(_ context.Context, tenantID uuid.UUID, externalID string) (domain.StoredRecord, error) {
	record, ok := r.records[storeKey(tenantID, externalID)]
	if !ok {
		return domain.StoredRecord{}, repository.ErrNotFound
	}
	return record, nil
}

func (r *stubRepo) Insert(_ context.Context, record domain.StoredRecord) error {
	k := storeKey(record.TenantID, record.ExternalID)
	if _, ok := r.records[k]; ok {
		return repository.ErrDuplicate
	}
	r.records[k] = record
	return nil
}

func (r *stubRepo) Update(_ context.Context, record domain.StoredRecord) error {
	k := storeKey(record.TenantID, record.ExternalID)
	if _, ok := r.records[k]; !ok {
		return repository.ErrNotFound
	}
	record.UpdatedAt = time.Now()
	r.records[k] = record
	return nil
}

func (r *stubRepo) Exists(_ context.Context, tenantID uuid.UUID, externalID string) (bool, error) {
	record, ok := r.records[storeKey(tenantID, externalID)]
	return ok && record.SyncStatus == domain.SyncStatusSynced, nil
}

type stubStore struct {
	repos map[domain.Kind]*stubRepo
}

func newStubStore() *stubStore {
	return &stubStore{repos: map[domain.Kind]*stubRepo{}}
}

func (s *stubStore) Records(kind domain.Kind) repository.RecordRepository {
	return s.repo(kind)
}

func (s *stubStore) repo(kind domain.Kind) *stubRepo {
	if _, ok := s.repos[kind]; !ok {
		s.repos[kind] = newStubRepo()
	}
	return s.repos[kind]
}

type stubEventLog struct {
	entries map[string]domain.EventLogEntry
}

func newStubEventLog() *stubEventLog {
	return &stubEventLog{entries: map[string]domain.EventLogEntry{}}
}

func (l *stubEventLog) Record(_ context.Context, entry domain.EventLogEntry) error {
	if _, ok := l.entries[entry.EventID]; ok {
		return repository.ErrDuplicate
	}
	l.entries[entry.EventID] = entry
	return nil
}

func (l *stubEventLog) transition(eventID string, status domain.EventStatus, result, errMsg string) error {
	entry, ok := l.entries[eventID]
	if !ok {
		return repository.ErrNotFound
	}
	entry.Status = status
	entry.Result = result
	entry.ErrorMessage = errMsg
	l.entries[eventID] = entry
	return nil
}

func (l *stubEventLog) MarkProcessing(_ context.Context, eventID string) error {
	return l.transition(eventID, domain.EventStatusProcessing, "", "")
}

func (l *stubEventLog) MarkCompleted(_ context.Context, eventID string, result string) error {
	return l.transition(eventID, domain.EventStatusCompleted, result, "")
}

func (l *stubEventLog) MarkFailed(_ context.Context, eventID string, errMsg string) error {
	return l.transition(eventID, domain.EventStatusFailed, "", errMsg)
}

func (l *stubEventLog) List(context.Context, uuid.UUID, int, int) ([]domain.EventLogEntry, error) {
	return nil, nil
}

func newPipeline(ttl time.Duration) (*Service, *stubStore, *stubEventLog) {
	store := newStubStore()
	events := newStubEventLog()
	services := syncsvc.NewServices(store, zap.NewNop())
	service := NewService(idempotency.NewMemoryGuard(ttl), events, services, "crm", zap.NewNop())
	return service, store, events
}

func TestProcessUnitLifecycle(t *testing.T) {
	service, store, _ := newPipeline(time.Minute)
	tenant := uuid.New()
	ctx := context.Background()

	outcomes, err := service.Process(ctx, Notification{
		TenantID: tenant,
		Module:   domain.KindUnit,
		Instance: "n-1",
		Body:     []byte(`{"data":[{"id":"u1","Unit_Code":"UNIT001","Unit_Name":"Intro","Status":"Active"}]}`),
	})
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if len(outcomes) != 1 || outcomes[0].Status != domain.OutcomeNew || outcomes[0].ExternalID != "u1" {
		t.Fatalf("expected NEW for u1, got %+v", outcomes)
	}

	// Same fields, different envelope and notification instance.
	outcomes, err = service.Process(ctx, Notification{
		TenantID: tenant,
		Module:   domain.KindUnit,
		Instance: "n-2",
		Body:     []byte(`{"id":"u1","Unit_Code":"UNIT001","Unit_Name":"Intro","Status":"Active"}`),
	})
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if len(outcomes) != 1 || outcomes[0].Status != domain.OutcomeUnchanged {
		t.Fatalf("expected UNCHANGED, got %+v", outcomes)
	}

	outcomes, err = service.Process(ctx, Notification{
		TenantID: tenant,
		Module:   domain.KindUnit,
		Instance: "n-3",
		Body:     []byte(`{"data":[{"id":"u1","Unit_Code":"UNIT001","Unit_Name":"Intro","Status":"Inactive"}]}`),
	})
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if len(outcomes) != 1 || outcomes[0].Status != domain.OutcomeUpdated {
		t.Fatalf("expected UPDATED, got %+v", outcomes)
	}

	if n := len(store.repo(domain.KindUnit).records); n != 1 {
		t.Fatalf("exactly one stored row should exist, got %d", n)
	}
}

func TestProcessIdenticalPayloadIsDuplicate(t *testing.T) {
	service, store, _ := newPipeline(time.Minute)
	tenant := uuid.New()
	ctx := context.Background()
	body := []byte(`{"data":[
		{"id":"u1","Unit_Code":"U1","Unit_Name":"One"},
		{"id":"u2","Unit_Code":"U2","Unit_Name":"Two"}
	]}`)

	if _, err := service.Process(ctx, Notification{TenantID: tenant, Module: domain.KindUnit, Instance: "n-1", Body: body}); err != nil {
		t.Fatalf("first process failed: %v", err)
	}
	countBefore := len(store.repo(domain.KindUnit).records)

	outcomes, err := service.Process(ctx, Notification{TenantID: tenant, Module: domain.KindUnit, Instance: "n-1", Body: body})
	if err != nil {
		t.Fatalf("second process failed: %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("suppressed batch of 2 should still yield 2 results, got %d", len(outcomes))
	}
	for i, want := range []string{"u1", "u2"} {
		if outcomes[i].Status != domain.OutcomeDuplicate || outcomes[i].ExternalID != want {
			t.Fatalf("result %d should be DUPLICATE for %s, got %+v", i, want, outcomes[i])
		}
	}
	if len(store.repo(domain.KindUnit).records) != countBefore {
		t.Fatalf("duplicate must not change stored record count")
	}
}

func TestProcessEventIdentityDedup(t *testing.T) {
	service, _, events := newPipeline(time.Nanosecond)
	tenant := uuid.New()
	ctx := context.Background()

	// Guard TTL is effectively zero, so the durable event-identity layer
	// must catch the redelivery on its own.
	body := []byte(`{"data":[{"id":"u1","Unit_Code":"UNIT001","Unit_Name":"Intro","Status":"Active"}]}`)
	if _, err := service.Process(ctx, Notification{TenantID: tenant, Module: domain.KindUnit, Instance: "n-1", Body: body}); err != nil {
		t.Fatalf("first process failed: %v", err)
	}

	time.Sleep(time.Millisecond)
	outcomes, err := service.Process(ctx, Notification{TenantID: tenant, Module: domain.KindUnit, Instance: "n-1", Body: body})
	if err != nil {
		t.Fatalf("second process failed: %v", err)
	}
	if len(outcomes) != 1 || outcomes[0].Status != domain.OutcomeDuplicate {
		t.Fatalf("replayed event id should be DUPLICATE, got %+v", outcomes)
	}
	if len(events.entries) != 1 {
		t.Fatalf("replay must not create a second event entry, got %d", len(events.entries))
	}
}

func TestProcessPartialBatchResilience(t *testing.T) {
	service, store, events := newPipeline(time.Minute)
	tenant := uuid.New()
	ctx := context.Background()

	body := []byte(`{"data":[
		{"id":"u1","Unit_Code":"U1","Unit_Name":"One"},
		{"id":"u2","Unit_Code":"U2","Unit_Name":"Two"},
		{"id":"u3","Unit_Name":"Missing Code"},
		{"id":"u4","Unit_Code":"U4","Unit_Name":"Four"},
		{"id":"u5","Unit_Code":"U5","Unit_Name":"Five"}
	]}`)

	outcomes, err := service.Process(ctx, Notification{TenantID: tenant, Module: domain.KindUnit, Instance: "n-1", Body: body})
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if len(outcomes) != 5 {
		t.Fatalf("batch of 5 must yield 5 results, got %d", len(outcomes))
	}
	for i, outcome := range outcomes {
		if i == 2 {
			if outcome.Status != domain.OutcomeInvalid {
				t.Fatalf("record 3 should be INVALID, got %+v", outcome)
			}
			continue
		}
		if outcome.Status != domain.OutcomeNew {
			t.Fatalf("record %d should be NEW, got %+v", i+1, outcome)
		}
	}
	if n := len(store.repo(domain.KindUnit).records); n != 4 {
		t.Fatalf("expected 4 stored rows, got %d", n)
	}

	failed := 0
	for _, entry := range events.entries {
		if entry.Status == domain.EventStatusFailed {
			failed++
		}
	}
	if failed != 1 {
		t.Fatalf("expected 1 failed event entry, got %d", failed)
	}
}

func TestProcessDependencyOrdering(t *testing.T) {
	service, _, _ := newPipeline(time.Minute)
	tenant := uuid.New()
	ctx := context.Background()

	gradeBody := []byte(`{"data":[{"id":"g1","Contact":{"id":"p1","name":"Ada Lovelace"},"Unit":"u1","Score":85}]}`)
	outcomes, err := service.Process(ctx, Notification{TenantID: tenant, Module: domain.KindGrade, Instance: "n-1", Body: gradeBody})
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if outcomes[0].Status != domain.OutcomeInvalid {
		t.Fatalf("grade before parents should be INVALID, got %+v", outcomes[0])
	}

	personBody := []byte(`{"data":[{"id":"p1","First_Name":"Ada","Last_Name":"Lovelace"}]}`)
	if outcomes, err = service.Process(ctx, Notification{TenantID: tenant, Module: domain.KindPerson, Instance: "n-2", Body: personBody}); err != nil || outcomes[0].Status != domain.OutcomeNew {
		t.Fatalf("person sync failed: %+v err=%v", outcomes, err)
	}
	unitBody := []byte(`{"data":[{"id":"u1","Unit_Code":"U1","Unit_Name":"Intro"}]}`)
	if outcomes, err = service.Process(ctx, Notification{TenantID: tenant, Module: domain.KindUnit, Instance: "n-3", Body: unitBody}); err != nil || outcomes[0].Status != domain.OutcomeNew {
		t.Fatalf("unit sync failed: %+v err=%v", outcomes, err)
	}

	// The parents exist now; resubmitting the grade succeeds.
	outcomes, err = service.Process(ctx, Notification{TenantID: tenant, Module: domain.KindGrade, Instance: "n-4", Body: gradeBody})
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if outcomes[0].Status != domain.OutcomeNew {
		t.Fatalf("grade should sync once parents exist, got %+v", outcomes[0])
	}
}

func TestProcessNonFiniteScoreIsInvalid(t *testing.T) {
	service, store, _ := newPipeline(time.Minute)
	tenant := uuid.New()
	ctx := context.Background()

	// strconv.ParseFloat accepts "NaN", so the value reaches validation as
	// a real float. It must fail there, not surface as a retryable error.
	body := []byte(`{"data":[{"id":"g1","Contact":{"id":"p1","name":"Ada"},"Unit":"u1","Score":"NaN"}]}`)
	outcomes, err := service.Process(ctx, Notification{TenantID: tenant, Module: domain.KindGrade, Instance: "n-1", Body: body})
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if len(outcomes) != 1 || outcomes[0].Status != domain.OutcomeInvalid {
		t.Fatalf("NaN score should be INVALID, got %+v", outcomes)
	}
	if n := len(store.repo(domain.KindGrade).records); n != 0 {
		t.Fatalf("invalid grade must not be stored, got %d rows", n)
	}
}

func TestProcessTenantIsolation(t *testing.T) {
	service, store, _ := newPipeline(time.Minute)
	ctx := context.Background()
	body := func(status string) []byte {
		return []byte(fmt.Sprintf(`{"data":[{"id":"u1","Unit_Code":"U1","Unit_Name":"Intro","Status":%q}]}`, status))
	}

	tenantA := uuid.New()
	tenantB := uuid.New()

	if outcomes, err := service.Process(ctx, Notification{TenantID: tenantA, Module: domain.KindUnit, Instance: "n-1", Body: body("Active")}); err != nil || outcomes[0].Status != domain.OutcomeNew {
		t.Fatalf("tenant A sync failed: %+v err=%v", outcomes, err)
	}
	if outcomes, err := service.Process(ctx, Notification{TenantID: tenantB, Module: domain.KindUnit, Instance: "n-2", Body: body("Inactive")}); err != nil || outcomes[0].Status != domain.OutcomeNew {
		t.Fatalf("tenant B must get an independent row: %+v err=%v", outcomes, err)
	}
	if n := len(store.repo(domain.KindUnit).records); n != 2 {
		t.Fatalf("expected 2 rows across tenants, got %d", n)
	}
}

func TestProcessRejectsTransportErrors(t *testing.T) {
	service, _, events := newPipeline(time.Minute)
	tenant := uuid.New()
	ctx := context.Background()

	if _, err := service.Process(ctx, Notification{TenantID: tenant, Module: domain.Kind("invoice"), Body: []byte(`{}`)}); !errors.Is(err, ErrUnknownModule) {
		t.Fatalf("expected ErrUnknownModule, got %v", err)
	}
	if _, err := service.Process(ctx, Notification{TenantID: tenant, Module: domain.KindUnit, Body: []byte(``)}); err == nil {
		t.Fatalf("empty payload should be rejected")
	}
	if _, err := service.Process(ctx, Notification{TenantID: tenant, Module: domain.KindUnit, Body: []byte(`{"data":"x"}`)}); err == nil {
		t.Fatalf("malformed envelope should be rejected")
	}
	if len(events.entries) != 0 {
		t.Fatalf("transport errors must not reach the event log, got %d entries", len(events.entries))
	}
}
