package neo4j

import (
	"context"
	"fmt"

	"github.com/genai-fundamentals/graphrag/graphs"
)

const showIndexQuery = `SHOW INDEXES
YIELD name, type, state, labelsOrTypes, properties, options
WHERE name = $index_name
RETURN name, type, state, labelsOrTypes, properties, options`

const awaitIndexSeconds = 300

// IndexInfo describes an index as reported by SHOW INDEXES.
type IndexInfo struct {
	Name               string
	Type               string
	State              string
	Label              string
	Properties         []string
	Dimensions         int
	SimilarityFunction string
}

// Index returns the vector index used by the store.
func (s *Store) Index(ctx context.Context) (*IndexInfo, error) {
	info, err := s.showIndex(ctx, s.opts.indexName)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, fmt.Errorf("%w: %q", ErrIndexNotFound, s.opts.indexName)
	}
	return info, nil
}

func (s *Store) showIndex(ctx context.Context, name string) (*IndexInfo, error) {
	res, err := s.store.Query(ctx, showIndexQuery, map[string]any{"index_name": name})
	if err != nil {
		return nil, fmt.Errorf("failed to check index existence: %w", err)
	}
	if res.Len() == 0 {
		return nil, nil
	}

	rec := res.Records[0].AsMap()
	info := &IndexInfo{Name: name}
	info.Type, _ = rec["type"].(string)
	info.State, _ = rec["state"].(string)
	if labels := toStrings(rec["labelsOrTypes"]); len(labels) > 0 {
		info.Label = labels[0]
	}
	info.Properties = toStrings(rec["properties"])

	if opts, ok := rec["options"].(map[string]any); ok {
		if cfg, ok := opts["indexConfig"].(map[string]any); ok {
			switch dims := cfg["vector.dimensions"].(type) {
			case int64:
				info.Dimensions = int(dims)
			case float64:
				info.Dimensions = int(dims)
			}
			info.SimilarityFunction, _ = cfg["vector.similarity_function"].(string)
		}
	}
	return info, nil
}

func (s *Store) ensureVectorIndex(ctx context.Context) error {
	existing, err := s.showIndex(ctx, s.opts.indexName)
	if err != nil {
		return err
	}

	if existing != nil && s.opts.preDeleteIndex {
		dropQuery := fmt.Sprintf("DROP INDEX %s IF EXISTS", graphs.EscapeIdentifier(s.opts.indexName))
		if _, err := s.store.Query(ctx, dropQuery, nil, graphs.WithWrite(true)); err != nil {
			return fmt.Errorf("failed to drop existing index: %w", err)
		}
		existing = nil
	}
	if existing != nil {
		return nil
	}

	createQuery := fmt.Sprintf(`CREATE VECTOR INDEX %s IF NOT EXISTS
FOR (n:%s) ON (n.%s)
OPTIONS {indexConfig: {`+"`vector.dimensions`"+`: $dimensions, `+"`vector.similarity_function`"+`: $similarity}}`,
		graphs.EscapeIdentifier(s.opts.indexName),
		graphs.EscapeIdentifier(s.opts.nodeLabel),
		graphs.EscapeIdentifier(s.opts.embeddingProp),
	)
	params := map[string]any{
		"dimensions": s.opts.dimensions,
		"similarity": s.opts.similarityFunc,
	}
	if _, err := s.store.Query(ctx, createQuery, params, graphs.WithWrite(true)); err != nil {
		return fmt.Errorf("%w: %w", ErrIndexCreationFailed, err)
	}
	return s.awaitIndex(ctx, s.opts.indexName)
}

// awaitIndex blocks until a new index is online and can be queried.
func (s *Store) awaitIndex(ctx context.Context, name string) error {
	params := map[string]any{"index_name": name, "timeout": awaitIndexSeconds}
	if _, err := s.store.Query(ctx, "CALL db.awaitIndex($index_name, $timeout)", params); err != nil {
		return fmt.Errorf("index %q did not come online: %w", name, err)
	}
	return nil
}

func (s *Store) ensureKeywordIndex(ctx context.Context) error {
	existing, err := s.showIndex(ctx, s.opts.keywordIndexName)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	createQuery := fmt.Sprintf("CREATE FULLTEXT INDEX %s IF NOT EXISTS\nFOR (n:%s) ON EACH [n.%s]",
		graphs.EscapeIdentifier(s.opts.keywordIndexName),
		graphs.EscapeIdentifier(s.opts.nodeLabel),
		graphs.EscapeIdentifier(s.opts.textProp),
	)
	if _, err := s.store.Query(ctx, createQuery, nil, graphs.WithWrite(true)); err != nil {
		return fmt.Errorf("failed to create keyword index: %w", err)
	}
	return s.awaitIndex(ctx, s.opts.keywordIndexName)
}

func toStrings(v any) []string {
	switch val := v.(type) {
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
