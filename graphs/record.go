package graphs

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Record is a single row returned by a query. Keys keep the column order of the query.
type Record struct {
	Keys   []string
	Values []any
}

// NewRecord builds a record from parallel key and value slices.
func NewRecord(keys []string, values []any) Record {
	return Record{Keys: keys, Values: values}
}

// Get returns the value stored under key.
func (r Record) Get(key string) (any, bool) {
	for i, k := range r.Keys {
		if k == key && i < len(r.Values) {
			return r.Values[i], true
		}
	}
	return nil, false
}

// AsMap returns the record as a map keyed by column name.
func (r Record) AsMap() map[string]any {
	m := make(map[string]any, len(r.Keys))
	for i, k := range r.Keys {
		if i < len(r.Values) {
			m[k] = r.Values[i]
		}
	}
	return m
}

// String renders the record as "key: value" lines in column order.
func (r Record) String() string {
	var b strings.Builder
	for i, k := range r.Keys {
		if i > 0 {
			b.WriteByte('\n')
		}
		var v any
		if i < len(r.Values) {
			v = r.Values[i]
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(FormatValue(v))
	}
	return b.String()
}

// FormatValue renders a query value in a compact, Cypher-like notation.
// Map keys are sorted so the output is deterministic.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case []byte:
		return string(val)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return val.Format(time.RFC3339)
	case []string:
		parts := make([]string, len(val))
		copy(parts, val)
		return "[" + strings.Join(parts, ", ") + "]"
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = FormatValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + FormatValue(val[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprint(val)
	}
}

// Notification is a server-side warning attached to a query result.
type Notification struct {
	Code        string
	Title       string
	Description string
}

// Summary describes how a query was executed.
type Summary struct {
	Query         string
	Parameters    map[string]any
	Notifications []Notification
	// Truncated reports that the MaxRows cap dropped records.
	Truncated     bool
	ExecutionTime time.Duration
}

// Result holds the records and summary of a query.
type Result struct {
	Records []Record
	Summary Summary
}

// Len returns the number of records.
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Records)
}
