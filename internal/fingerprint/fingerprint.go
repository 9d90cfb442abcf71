// Package fingerprint computes stable content hashes over canonical
// records so resubmissions of identical content are detected without a
// field-by-field comparison.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/tobyh/campussync/internal/domain"
)

// Compute hashes the synced-relevant fields of a canonical record.
// Bookkeeping fields never reach Properties(), so they cannot perturb the
// hash. json.Marshal writes map keys in sorted order, which makes the
// encoding deterministic for identical content.
func Compute(c domain.Canonical) (string, error) {
	payload, err := json.Marshal(c.Properties())
	if err != nil {
		return "", fmt.Errorf("failed to encode canonical properties: %w", err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// Classification is the change-detection verdict for one record.
type Classification int

const (
	// New means no stored record exists for (tenant, external_id).
	New Classification = iota
	// Unchanged means the stored fingerprint matches the incoming one.
	Unchanged
	// Updated means a stored record exists with different content.
	Updated
)

func (c Classification) String() string {
	switch c {
	case New:
		return "new"
	case Unchanged:
		return "unchanged"
	case Updated:
		return "updated"
	default:
		return "unknown"
	}
}

// Classify compares the stored fingerprint with the incoming one. An empty
// stored fingerprint means no record exists yet.
func Classify(stored, incoming string) Classification {
	switch {
	case stored == "":
		return New
	case stored == incoming:
		return Unchanged
	default:
		return Updated
	}
}
