// Package idempotency suppresses duplicate webhook deliveries at payload
// granularity. This is the fast, request-level layer; the durable
// event-identity layer lives in the event log.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Guard tracks recently processed payload keys. Implementations decide the
// backing store: the in-memory guard is correct within a single process,
// the redis guard works across instances.
type Guard interface {
	// IsDuplicate reports whether a non-expired entry exists for key.
	IsDuplicate(ctx context.Context, key string) (bool, error)
	// MarkProcessed inserts or refreshes the entry for key.
	MarkProcessed(ctx context.Context, key string) error
}

// Key derives the guard key from the notification payload. The payload is
// decoded and re-encoded so formatting differences (whitespace, key order)
// do not defeat deduplication. A payload that cannot be canonicalized gets
// a unique fallback key: fail open, the request is never suppressed.
func Key(payload []byte) string {
	var decoded any
	if err := json.Unmarshal(payload, &decoded); err == nil {
		if canonical, err := json.Marshal(decoded); err == nil {
			sum := sha256.Sum256(canonical)
			return hex.EncodeToString(sum[:])
		}
	}
	return fmt.Sprintf("unhashable-%s", uuid.NewString())
}
