package recordstore

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeLayout is the on-disk format of every timestamp the store writes.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Record is one document. Values are always JSON-native: string, float64,
// bool, nil, []any or map[string]any.
type Record map[string]any

// ID returns the record id, or "" when it has none.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// String returns the string value of field, or "" when absent or not a string.
func (r Record) String(field string) string {
	s, _ := r[field].(string)
	return s
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

// Decode unmarshals the record into dst (usually a pointer to a model struct).
func (r Record) Decode(dst any) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("recordstore: encode record %q: %w", r.ID(), err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("recordstore: decode record %q: %w", r.ID(), err)
	}
	return nil
}

// FromValue converts a struct or map into a Record through its JSON form.
func FromValue(v any) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("recordstore: encode value: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("recordstore: value is not an object: %w", err)
	}
	if rec == nil {
		rec = Record{}
	}
	return rec, nil
}

// FormatTime renders t the way the store stamps createdAt and updatedAt.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case Record:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
