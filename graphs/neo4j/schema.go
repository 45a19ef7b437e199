package neo4j

import (
	"context"
	"fmt"
	"strings"

	"github.com/genai-fundamentals/graphrag/graphs"
)

const (
	nodePropertiesQuery = `CALL db.schema.nodeTypeProperties()
YIELD nodeLabels, propertyName, propertyTypes
RETURN nodeLabels, propertyName, propertyTypes`

	relPropertiesQuery = `CALL db.schema.relTypeProperties()
YIELD relType, propertyName, propertyTypes
RETURN relType, propertyName, propertyTypes`

	relationshipsQuery = `MATCH (a)-[r]->(b)
WITH DISTINCT labels(a) AS startLabels, type(r) AS rel, labels(b) AS endLabels
UNWIND startLabels AS startLabel
UNWIND endLabels AS endLabel
RETURN DISTINCT startLabel, rel, endLabel`
)

// RefreshSchema introspects labels, relationship types, their properties and
// the relationship patterns present in the database.
func (n *Neo4j) RefreshSchema(ctx context.Context) error {
	schema := graphs.NewSchema()

	nodes, err := n.Query(ctx, nodePropertiesQuery, nil, graphs.WithMaxRows(0))
	if err != nil {
		return fmt.Errorf("failed to get node properties: %w", err)
	}
	for _, rec := range nodes.Records {
		labels := stringList(value(rec, "nodeLabels"))
		name, _ := value(rec, "propertyName").(string)
		types := stringList(value(rec, "propertyTypes"))
		for _, label := range labels {
			if _, ok := schema.NodeProps[label]; !ok {
				schema.NodeProps[label] = nil
			}
			if name == "" || (n.opts.excludeEmbeddings && isEmbeddingType(types)) {
				continue
			}
			schema.AddNodeProperty(label, graphs.Property{Name: name, Type: mapType(types)})
		}
	}

	rels, err := n.Query(ctx, relPropertiesQuery, nil, graphs.WithMaxRows(0))
	if err != nil {
		return fmt.Errorf("failed to get relationship properties: %w", err)
	}
	for _, rec := range rels.Records {
		relType, _ := value(rec, "relType").(string)
		name, _ := value(rec, "propertyName").(string)
		types := stringList(value(rec, "propertyTypes"))
		relType = trimRelType(relType)
		if relType == "" || name == "" {
			continue
		}
		if n.opts.excludeEmbeddings && isEmbeddingType(types) {
			continue
		}
		schema.AddRelProperty(relType, graphs.Property{Name: name, Type: mapType(types)})
	}

	patterns, err := n.Query(ctx, relationshipsQuery, nil, graphs.WithMaxRows(0))
	if err != nil {
		return fmt.Errorf("failed to get relationships: %w", err)
	}
	for _, rec := range patterns.Records {
		start, _ := value(rec, "startLabel").(string)
		rel, _ := value(rec, "rel").(string)
		end, _ := value(rec, "endLabel").(string)
		schema.AddRelationship(graphs.Triple{Start: start, Type: rel, End: end})
	}

	n.mu.Lock()
	n.schema = schema
	n.mu.Unlock()
	return nil
}

func value(rec graphs.Record, key string) any {
	v, _ := rec.Get(key)
	return v
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// trimRelType turns ":`ACTED_IN`" into "ACTED_IN".
func trimRelType(relType string) string {
	relType = strings.TrimPrefix(relType, ":")
	return strings.TrimSuffix(strings.TrimPrefix(relType, "`"), "`")
}

func isEmbeddingType(types []string) bool {
	for _, t := range types {
		if t == "FloatArray" || t == "DoubleArray" {
			return true
		}
	}
	return false
}

var typeNames = map[string]string{
	"String":        "STRING",
	"Long":          "INTEGER",
	"Integer":       "INTEGER",
	"Double":        "FLOAT",
	"Float":         "FLOAT",
	"Boolean":       "BOOLEAN",
	"Date":          "DATE",
	"DateTime":      "DATE_TIME",
	"LocalDateTime": "LOCAL_DATE_TIME",
	"LocalTime":     "LOCAL_TIME",
	"Time":          "TIME",
	"Duration":      "DURATION",
	"Point":         "POINT",
}

func mapType(types []string) string {
	if len(types) == 0 {
		return "ANY"
	}
	t := types[0]
	if name, ok := typeNames[t]; ok {
		return name
	}
	if strings.HasSuffix(t, "Array") {
		if inner, ok := typeNames[strings.TrimSuffix(t, "Array")]; ok {
			return "LIST<" + inner + ">"
		}
		return "LIST"
	}
	return strings.ToUpper(t)
}
