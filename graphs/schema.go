package graphs

import (
	"fmt"
	"sort"
	"strings"
)

// Property describes a node or relationship property and its type.
type Property struct {
	Name string
	Type string
}

// Triple describes a relationship pattern between two node labels.
type Triple struct {
	Start string
	Type  string
	End   string
}

// Pattern renders the triple as a Cypher pattern, e.g. (:Person)-[:ACTED_IN]->(:Movie).
func (t Triple) Pattern() string {
	return fmt.Sprintf("(:%s)-[:%s]->(:%s)", t.Start, t.Type, t.End)
}

// Schema is the introspected shape of a graph: labels, relationship types,
// their properties and the relationship patterns that occur.
type Schema struct {
	NodeProps     map[string][]Property
	RelProps      map[string][]Property
	Relationships []Triple
}

// NewSchema returns an empty schema.
func NewSchema() *Schema {
	return &Schema{
		NodeProps: make(map[string][]Property),
		RelProps:  make(map[string][]Property),
	}
}

// AddNodeProperty records a property for a node label.
func (s *Schema) AddNodeProperty(label string, prop Property) {
	s.NodeProps[label] = appendProperty(s.NodeProps[label], prop)
}

// AddRelProperty records a property for a relationship type.
func (s *Schema) AddRelProperty(relType string, prop Property) {
	s.RelProps[relType] = appendProperty(s.RelProps[relType], prop)
}

// AddRelationship records a relationship pattern once.
func (s *Schema) AddRelationship(t Triple) {
	for _, existing := range s.Relationships {
		if existing == t {
			return
		}
	}
	s.Relationships = append(s.Relationships, t)
}

func appendProperty(props []Property, prop Property) []Property {
	for _, p := range props {
		if p.Name == prop.Name {
			return props
		}
	}
	return append(props, prop)
}

// String renders the schema in the text layout used in Text2Cypher prompts:
//
//	Node properties:
//	Person {name: STRING, born: INTEGER}
//	Relationship properties:
//	ACTED_IN {role: STRING}
//	The relationships:
//	(:Person)-[:ACTED_IN]->(:Movie)
func (s *Schema) String() string {
	if s == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("Node properties:\n")
	writeProps(&b, s.NodeProps)
	b.WriteString("Relationship properties:\n")
	writeProps(&b, s.RelProps)
	b.WriteString("The relationships:\n")

	rels := make([]Triple, len(s.Relationships))
	copy(rels, s.Relationships)
	sort.Slice(rels, func(i, j int) bool {
		return rels[i].Pattern() < rels[j].Pattern()
	})
	for _, t := range rels {
		b.WriteString(t.Pattern())
		b.WriteByte('\n')
	}

	return strings.TrimRight(b.String(), "\n")
}

func writeProps(b *strings.Builder, props map[string][]Property) {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		parts := make([]string, 0, len(props[name]))
		for _, p := range props[name] {
			parts = append(parts, p.Name+": "+p.Type)
		}
		fmt.Fprintf(b, "%s {%s}\n", name, strings.Join(parts, ", "))
	}
}

// Structured returns the schema as nested maps, keyed "node_props",
// "rel_props" and "relationships".
func (s *Schema) Structured() map[string]any {
	if s == nil {
		return map[string]any{}
	}

	toMaps := func(props map[string][]Property) map[string]any {
		out := make(map[string]any, len(props))
		for name, ps := range props {
			list := make([]map[string]string, 0, len(ps))
			for _, p := range ps {
				list = append(list, map[string]string{"property": p.Name, "type": p.Type})
			}
			out[name] = list
		}
		return out
	}

	rels := make([]map[string]string, 0, len(s.Relationships))
	for _, t := range s.Relationships {
		rels = append(rels, map[string]string{"start": t.Start, "type": t.Type, "end": t.End})
	}

	return map[string]any{
		"node_props":    toMaps(s.NodeProps),
		"rel_props":     toMaps(s.RelProps),
		"relationships": rels,
	}
}

// EscapeIdentifier quotes a label, relationship type or property name for
// interpolation into Cypher. Embedded backticks are doubled.
func EscapeIdentifier(identifier string) string {
	return "`" + strings.ReplaceAll(identifier, "`", "``") + "`"
}
