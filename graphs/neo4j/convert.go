package neo4j

import (
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/genai-fundamentals/graphrag/graphs"
)

func (n *Neo4j) convertRecord(keys []string, values []any) graphs.Record {
	out := make([]any, len(values))
	for i, v := range values {
		converted, keep := n.convertValue(v)
		if keep {
			out[i] = converted
		}
	}
	return graphs.NewRecord(keys, out)
}

// convertValue maps driver values to plain Go values. Graph entities become
// property maps and temporal values become strings. keep is false for
// embedding-shaped lists removed by sanitizing.
func (n *Neo4j) convertValue(v any) (value any, keep bool) {
	switch val := v.(type) {
	case nil, bool, int64, float64, string, []byte:
		return val, true
	case neo4j.Node:
		return n.convertMap(val.Props), true
	case neo4j.Relationship:
		return n.convertMap(val.Props), true
	case neo4j.Path:
		nodes := make([]any, len(val.Nodes))
		for i, node := range val.Nodes {
			nodes[i] = n.convertMap(node.Props)
		}
		rels := make([]any, len(val.Relationships))
		for i, rel := range val.Relationships {
			m := n.convertMap(rel.Props)
			m["type"] = rel.Type
			rels[i] = m
		}
		return map[string]any{"nodes": nodes, "relationships": rels}, true
	case []any:
		if n.opts.sanitize && len(val) > n.opts.maxListSize && isVector(val) {
			return nil, false
		}
		out := make([]any, 0, len(val))
		for _, item := range val {
			if converted, ok := n.convertValue(item); ok {
				out = append(out, converted)
			}
		}
		return out, true
	case map[string]any:
		return n.convertMap(val), true
	case time.Time:
		return val, true
	case neo4j.Date:
		return time.Time(val).Format("2006-01-02"), true
	case neo4j.LocalDateTime:
		return time.Time(val).Format("2006-01-02T15:04:05.999999999"), true
	case neo4j.LocalTime:
		return time.Time(val).Format("15:04:05.999999999"), true
	case neo4j.Time:
		return time.Time(val).Format("15:04:05.999999999Z07:00"), true
	case fmt.Stringer:
		return val.String(), true
	default:
		return val, true
	}
}

// isVector reports whether every item of list is a number.
func isVector(list []any) bool {
	for _, item := range list {
		switch item.(type) {
		case float64, float32, int64:
		default:
			return false
		}
	}
	return true
}

func (n *Neo4j) convertMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if converted, keep := n.convertValue(v); keep {
			out[k] = converted
		}
	}
	return out
}
