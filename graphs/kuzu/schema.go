package kuzu

import (
	"context"
	"fmt"
	"strings"

	"github.com/genai-fundamentals/graphrag/graphs"
)

// RefreshSchema introspects node and relationship tables, their columns and
// the table pairs each relationship table connects.
func (k *Kuzu) RefreshSchema(ctx context.Context) error {
	tables, err := k.Query(ctx, "CALL show_tables() RETURN *", nil, graphs.WithMaxRows(0))
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}

	schema := graphs.NewSchema()
	for _, rec := range tables.Records {
		name := stringField(rec, "name")
		if name == "" {
			continue
		}

		props, err := k.tableProperties(ctx, name)
		if err != nil {
			return err
		}

		switch strings.ToUpper(stringField(rec, "type")) {
		case "NODE":
			schema.NodeProps[name] = nil
			for _, p := range props {
				schema.AddNodeProperty(name, p)
			}
		case "REL":
			for _, p := range props {
				schema.AddRelProperty(name, p)
			}
			conns, err := k.Query(ctx, fmt.Sprintf("CALL show_connection(%s) RETURN *", quote(name)), nil, graphs.WithMaxRows(0))
			if err != nil {
				return fmt.Errorf("failed to get connections of %s: %w", name, err)
			}
			for _, c := range conns.Records {
				schema.AddRelationship(graphs.Triple{
					Start: stringField(c, "source table name"),
					Type:  name,
					End:   stringField(c, "destination table name"),
				})
			}
		}
	}

	k.schemaMux.Lock()
	k.schema = schema
	k.schemaMux.Unlock()
	return nil
}

func (k *Kuzu) tableProperties(ctx context.Context, table string) ([]graphs.Property, error) {
	res, err := k.Query(ctx, fmt.Sprintf("CALL table_info(%s) RETURN *", quote(table)), nil, graphs.WithMaxRows(0))
	if err != nil {
		return nil, fmt.Errorf("failed to get properties for table %s: %w", table, err)
	}

	props := make([]graphs.Property, 0, res.Len())
	for _, rec := range res.Records {
		name := stringField(rec, "name", "property_name")
		typ := stringField(rec, "type", "property_type")
		if name == "" {
			continue
		}
		if k.options.excludeEmbeddings && isEmbeddingType(typ) {
			continue
		}
		props = append(props, graphs.Property{Name: name, Type: mapType(typ)})
	}
	return props, nil
}

// GetSchema returns the schema text produced by the last RefreshSchema.
func (k *Kuzu) GetSchema() string {
	k.schemaMux.RLock()
	defer k.schemaMux.RUnlock()
	return k.schema.String()
}

// GetStructuredSchema returns the structured schema produced by the last RefreshSchema.
func (k *Kuzu) GetStructuredSchema() map[string]any {
	k.schemaMux.RLock()
	defer k.schemaMux.RUnlock()
	return k.schema.Structured()
}

// stringField returns the first of keys present in rec as a string.
func stringField(rec graphs.Record, keys ...string) string {
	for _, key := range keys {
		if v, ok := rec.Get(key); ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	return ""
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "\\'") + "'"
}
