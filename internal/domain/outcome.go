package domain

// OutcomeStatus classifies what the pipeline did with one record.
type OutcomeStatus string

const (
	OutcomeNew       OutcomeStatus = "NEW"
	OutcomeUpdated   OutcomeStatus = "UPDATED"
	OutcomeUnchanged OutcomeStatus = "UNCHANGED"
	OutcomeInvalid   OutcomeStatus = "INVALID"
	OutcomeError     OutcomeStatus = "ERROR"
	OutcomeDuplicate OutcomeStatus = "DUPLICATE"
)

// Outcome is the per-record result returned to the caller. A batch of N
// records always yields exactly N outcomes.
type Outcome struct {
	ExternalID string        `json:"external_id"`
	Status     OutcomeStatus `json:"status"`
	Message    string        `json:"message,omitempty"`
}

// Retryable reports whether resubmitting the same record can succeed
// without operator intervention. ERROR outcomes come from infrastructure
// faults and the upsert is idempotent per key, so they are safe to retry.
func (o Outcome) Retryable() bool {
	return o.Status == OutcomeError
}
