package kuzu

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/kuzudb/go-kuzu"
)

// convertParam normalizes Go parameter values to the types the prepared
// statement binder accepts.
func convertParam(value any) any {
	switch v := value.(type) {
	case nil, string, bool, int64, int32, int16, int8, uint64, uint32, uint16, uint8, float64, float32, time.Time, time.Duration:
		return v
	case int:
		return int64(v)
	case uint:
		return uint64(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = convertParam(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = convertParam(item)
		}
		return out
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = convertParam(rv.Index(i).Interface())
		}
		return out
	case reflect.Ptr:
		if rv.IsNil() {
			return nil
		}
		return convertParam(rv.Elem().Interface())
	default:
		return fmt.Sprintf("%v", value)
	}
}

// convertValue maps values read from a result tuple to plain Go values.
// Nodes and relationships become property maps.
func convertValue(value any) any {
	switch v := value.(type) {
	case kuzu.Node:
		return convertProps(v.Properties)
	case kuzu.Relationship:
		return convertProps(v.Properties)
	case kuzu.RecursiveRelationship:
		nodes := make([]any, len(v.Nodes))
		for i, node := range v.Nodes {
			nodes[i] = convertProps(node.Properties)
		}
		rels := make([]any, len(v.Relationships))
		for i, rel := range v.Relationships {
			props := convertProps(rel.Properties)
			props["type"] = rel.Label
			rels[i] = props
		}
		return map[string]any{"nodes": nodes, "relationships": rels}
	case kuzu.InternalID:
		return fmt.Sprintf("%d:%d", v.TableID, v.Offset)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = convertValue(item)
		}
		return out
	case map[string]any:
		return convertProps(v)
	default:
		return v
	}
}

func convertProps(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for key, value := range props {
		// _ID and _LABEL are internal columns.
		if strings.HasPrefix(key, "_") {
			continue
		}
		out[key] = convertValue(value)
	}
	return out
}

var typeNames = map[string]string{
	"STRING":    "STRING",
	"BOOL":      "BOOLEAN",
	"INT64":     "INTEGER",
	"INT32":     "INTEGER",
	"INT16":     "INTEGER",
	"INT8":      "INTEGER",
	"UINT64":    "INTEGER",
	"UINT32":    "INTEGER",
	"UINT16":    "INTEGER",
	"UINT8":     "INTEGER",
	"INT128":    "INTEGER",
	"SERIAL":    "INTEGER",
	"DOUBLE":    "FLOAT",
	"FLOAT":     "FLOAT",
	"DATE":      "DATE",
	"TIMESTAMP": "DATE_TIME",
	"INTERVAL":  "DURATION",
}

// mapType translates a KuzuDB column type to the type names used in schema
// descriptions, e.g. INT64 to INTEGER and STRING[] to LIST<STRING>.
func mapType(kuzuType string) string {
	t := strings.ToUpper(strings.TrimSpace(kuzuType))
	if i := strings.Index(t, "["); i > 0 {
		if inner, ok := typeNames[t[:i]]; ok {
			return "LIST<" + inner + ">"
		}
		return "LIST"
	}
	if name, ok := typeNames[t]; ok {
		return name
	}
	return t
}

// isEmbeddingType reports whether a column holds a float vector.
func isEmbeddingType(kuzuType string) bool {
	t := strings.ToUpper(kuzuType)
	return strings.HasPrefix(t, "FLOAT[") || strings.HasPrefix(t, "DOUBLE[")
}
