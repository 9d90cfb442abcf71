// Package parser converts raw webhook notifications into validated flat
// records. The parser only extracts shape: field aliasing, lookup
// flattening, and required-key presence. Domain meaning (ranges, empty
// after trim) is enforced later by the mapper.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tobyh/campussync/internal/domain"
)

var (
	// ErrEmptyPayload is returned for a zero-length notification body.
	ErrEmptyPayload = errors.New("empty payload")
	// ErrMalformedEnvelope is returned when the body is not valid JSON or
	// the data envelope has an unexpected shape.
	ErrMalformedEnvelope = errors.New("malformed envelope")
)

// Raw is one unwrapped record as it arrived, before any extraction.
type Raw map[string]any

// Rejection is an expected parse failure carrying a stable
// machine-readable reason code. It never aborts sibling records.
type Rejection struct {
	Code  string
	Field string
}

func (r *Rejection) Error() string {
	if r.Field == "" {
		return r.Code
	}
	return fmt.Sprintf("%s:%s", r.Code, r.Field)
}

func missingField(field string) *Rejection {
	return &Rejection{Code: "missing_field", Field: field}
}

func invalidField(field string) *Rejection {
	return &Rejection{Code: "invalid_field", Field: field}
}

// Records unwraps the notification body into individual raw records. The
// body is either a single object or a {"data": [...]} envelope; a bare
// top-level array is accepted as well.
func Records(body []byte) ([]Raw, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, ErrEmptyPayload
	}

	var probe any
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}

	switch v := probe.(type) {
	case []any:
		return toRaws(v)
	case map[string]any:
		data, ok := v["data"]
		if !ok {
			return []Raw{Raw(v)}, nil
		}
		list, ok := data.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: data is not an array", ErrMalformedEnvelope)
		}
		return toRaws(list)
	default:
		return nil, fmt.Errorf("%w: expected object or array", ErrMalformedEnvelope)
	}
}

func toRaws(list []any) ([]Raw, error) {
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: data array is empty", ErrMalformedEnvelope)
	}
	records := make([]Raw, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			// Keep the slot so the batch still yields one result per
			// input record; the per-kind parse rejects it.
			records = append(records, nil)
			continue
		}
		records = append(records, Raw(obj))
	}
	return records, nil
}

// aliases is the ordered list of candidate keys for one logical field,
// evaluated first-match-wins. Legacy key names accumulate here instead of
// in ad hoc conditionals.
type aliases []string

func (a aliases) lookup(raw Raw) (any, bool) {
	for _, key := range a {
		if value, ok := raw[key]; ok && value != nil {
			return value, true
		}
	}
	return nil, false
}

// text resolves the field to a plain string. Lookup-shaped values
// ({id, name}) are normalized to their bare identifier.
func (a aliases) text(raw Raw) (string, bool) {
	value, ok := a.lookup(raw)
	if !ok {
		return "", false
	}
	switch v := value.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	case map[string]any:
		id, _ := lookupString(v, "id", "ID", "Id")
		return id, id != ""
	default:
		return "", false
	}
}

// reference resolves the field to an (external id, display name) pair.
// A bare string input is accepted as an id with no name.
func (a aliases) reference(raw Raw) (domain.Reference, bool) {
	value, ok := a.lookup(raw)
	if !ok {
		return domain.Reference{}, false
	}
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return domain.Reference{}, false
		}
		return domain.Reference{ExternalID: strings.TrimSpace(v)}, true
	case map[string]any:
		id, _ := lookupString(v, "id", "ID", "Id")
		name, _ := lookupString(v, "name", "Name", "display_value")
		if strings.TrimSpace(id) == "" {
			return domain.Reference{}, false
		}
		return domain.Reference{ExternalID: strings.TrimSpace(id), Name: strings.TrimSpace(name)}, true
	default:
		return domain.Reference{}, false
	}
}

// number resolves the field to a float64, accepting JSON numbers and
// numeric strings.
func (a aliases) number(raw Raw) (float64, bool, error) {
	value, ok := a.lookup(raw)
	if !ok {
		return 0, false, nil
	}
	switch v := value.(type) {
	case float64:
		return v, true, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, true, fmt.Errorf("not a number: %q", v)
		}
		return f, true, nil
	default:
		return 0, true, fmt.Errorf("not a number: %v", value)
	}
}

var timeLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"02/01/2006",
}

// date resolves the field to a timestamp, trying the known layouts.
func (a aliases) date(raw Raw) (time.Time, bool, error) {
	value, ok := a.text(raw)
	if !ok || strings.TrimSpace(value) == "" {
		return time.Time{}, false, nil
	}
	trimmed := strings.TrimSpace(value)
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, trimmed); err == nil {
			return ts, true, nil
		}
	}
	return time.Time{}, true, fmt.Errorf("unrecognized date format: %q", value)
}

func lookupString(obj map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		if value, ok := obj[key]; ok {
			if s, ok := value.(string); ok {
				return s, true
			}
			if f, ok := value.(float64); ok {
				return strconv.FormatFloat(f, 'f', -1, 64), true
			}
		}
	}
	return "", false
}
