package neo4j

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"

	"github.com/genai-fundamentals/graphrag/graphs"
	neo4jgraph "github.com/genai-fundamentals/graphrag/graphs/neo4j"
)

var (
	ErrEmbedderNotSet          = errors.New("embedder not set")
	ErrInvalidScoreThreshold   = errors.New("score threshold must be between 0 and 1")
	ErrInvalidDimensions       = errors.New("vector dimensions must be positive")
	ErrInvalidSimilarityFunc   = errors.New("similarity function must be 'cosine' or 'euclidean'")
	ErrInvalidSearchType       = errors.New("search type must be 'vector' or 'hybrid'")
	ErrInvalidBatchSize        = errors.New("batch size and concurrency must be positive")
	ErrIndexCreationFailed     = errors.New("failed to create vector index")
	ErrIndexNotFound           = errors.New("vector index not found")
	ErrEmbeddingVectorMismatch = errors.New("number of embeddings does not match number of documents")
	ErrInvalidFilters          = errors.New("filters must be a map of property names to values")
)

// Store is a Neo4j vector store implementation on top of a graphs.GraphStore.
type Store struct {
	store    graphs.GraphStore
	ownStore bool
	opts     *options
}

var _ vectorstores.VectorStore = (*Store)(nil)

// New creates a new Neo4j vector store with the given options. Without
// WithGraphStore a Neo4j connection is opened from the connection options.
func New(ctx context.Context, opts ...Option) (*Store, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	if err := validateOptions(options); err != nil {
		return nil, err
	}

	s := &Store{store: options.store, opts: options}
	if s.store == nil {
		graph, err := neo4jgraph.NewNeo4j(ctx,
			neo4jgraph.WithURI(options.connectionURL),
			neo4jgraph.WithAuth(options.username, options.password),
			neo4jgraph.WithDatabase(options.database),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Neo4j graph store: %w", err)
		}
		s.store = graph
		s.ownStore = true

		if err := graph.VerifyConnectivity(ctx); err != nil {
			_ = graph.Close()
			return nil, fmt.Errorf("failed to connect to Neo4j: %w", err)
		}
	}

	if options.createIndex {
		if err := s.ensureVectorIndex(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
		if options.hybridSearch {
			if err := s.ensureKeywordIndex(ctx); err != nil {
				_ = s.Close()
				return nil, err
			}
		}
	}

	return s, nil
}

// Close closes the connection if the store opened it.
func (s *Store) Close() error {
	if !s.ownStore {
		return nil
	}
	return s.store.Close()
}

// AddDocuments embeds docs and stores each as a node carrying its text,
// JSON metadata and embedding. It returns the generated ids.
func (s *Store) AddDocuments(
	ctx context.Context,
	docs []schema.Document,
	options ...vectorstores.Option,
) ([]string, error) {
	if len(docs) == 0 {
		return []string{}, nil
	}

	opts := s.getVectorStoreOptions(options...)

	embedder := s.opts.embedder
	if opts.Embedder != nil {
		embedder = opts.Embedder
	}
	if embedder == nil {
		return nil, ErrEmbedderNotSet
	}

	docs = s.deduplicate(ctx, opts, docs)
	if len(docs) == 0 {
		return []string{}, nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.PageContent
	}

	embeddings, err := embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(embeddings) != len(docs) {
		return nil, ErrEmbeddingVectorMismatch
	}

	return s.insertDocuments(ctx, docs, embeddings, opts.NameSpace)
}

func (s *Store) insertDocuments(
	ctx context.Context,
	docs []schema.Document,
	embeddings [][]float32,
	namespace string,
) ([]string, error) {
	ids := make([]string, len(docs))
	rows := make([]map[string]any, len(docs))
	for i, doc := range docs {
		ids[i] = uuid.New().String()

		metadata := doc.Metadata
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadataJSON, err := json.Marshal(metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}

		var ns any
		if namespace != "" {
			ns = namespace
		}
		rows[i] = map[string]any{
			"id":        ids[i],
			"text":      doc.PageContent,
			"metadata":  string(metadataJSON),
			"namespace": ns,
			"embedding": toFloat64(embeddings[i]),
			"props":     s.scalarProperties(metadata),
		}
	}

	cypher := fmt.Sprintf(`UNWIND $docs AS doc
CREATE (n:%s)
SET n += doc.props
SET n.%s = doc.id, n.%s = doc.text, n.%s = doc.metadata, n.namespace = doc.namespace, n.%s = doc.embedding
RETURN count(n) AS created`,
		graphs.EscapeIdentifier(s.opts.nodeLabel),
		graphs.EscapeIdentifier(s.opts.idProp),
		graphs.EscapeIdentifier(s.opts.textProp),
		graphs.EscapeIdentifier(s.opts.metadataProp),
		graphs.EscapeIdentifier(s.opts.embeddingProp),
	)

	if _, err := s.store.Query(ctx, cypher, map[string]any{"docs": rows}, graphs.WithWrite(true)); err != nil {
		return nil, fmt.Errorf("failed to insert documents: %w", err)
	}
	return ids, nil
}

// scalarProperties copies scalar metadata values so they can be filtered on
// as node properties. Reserved property names are skipped.
func (s *Store) scalarProperties(metadata map[string]any) map[string]any {
	props := make(map[string]any, len(metadata))
	for k, v := range metadata {
		switch k {
		case s.opts.idProp, s.opts.textProp, s.opts.metadataProp, s.opts.embeddingProp, "namespace":
			continue
		}
		switch v.(type) {
		case string, bool, int, int32, int64, float32, float64:
			props[k] = v
		}
	}
	return props
}

// SimilaritySearch returns the numDocuments nodes closest to query. With
// hybrid search enabled, vector and fulltext rankings are fused with RRF.
// Filters is a map of node property equality conditions.
func (s *Store) SimilaritySearch(
	ctx context.Context,
	query string,
	numDocuments int,
	options ...vectorstores.Option,
) ([]schema.Document, error) {
	opts := s.getVectorStoreOptions(options...)

	embedder := s.opts.embedder
	if opts.Embedder != nil {
		embedder = opts.Embedder
	}
	if embedder == nil {
		return nil, ErrEmbedderNotSet
	}

	if opts.ScoreThreshold < 0 || opts.ScoreThreshold > 1 {
		return nil, ErrInvalidScoreThreshold
	}

	where, params, err := s.buildWhereClause(opts)
	if err != nil {
		return nil, err
	}

	queryEmbedding, err := embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}

	params["index_name"] = s.opts.indexName
	params["query_vector"] = toFloat64(queryEmbedding)
	params["top_k"] = numDocuments

	var cypher string
	if s.opts.searchType == SearchTypeHybrid && s.opts.hybridSearch {
		cypher = s.hybridSearchQuery(where)
		params["keyword_index"] = s.opts.keywordIndexName
		params["query_text"] = EscapeLucene(query)
		params["candidates"] = numDocuments * 2
		params["rrf_k"] = s.opts.rrfK
	} else {
		cypher = s.vectorSearchQuery(where)
	}

	res, err := s.store.Query(ctx, cypher, params)
	if err != nil {
		return nil, fmt.Errorf("failed to execute %s search: %w", s.opts.searchType, err)
	}

	docs := make([]schema.Document, 0, res.Len())
	for _, rec := range res.Records {
		doc := s.toDocument(rec)
		if opts.ScoreThreshold > 0 && doc.Score < opts.ScoreThreshold {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *Store) returnClause() string {
	return fmt.Sprintf("RETURN node {.*, %s: null} AS properties, score\nORDER BY score DESC",
		graphs.EscapeIdentifier(s.opts.embeddingProp))
}

func (s *Store) vectorSearchQuery(where string) string {
	return fmt.Sprintf(`CALL db.index.vector.queryNodes($index_name, $top_k, $query_vector)
YIELD node, score
WHERE %s
%s`, where, s.returnClause())
}

func (s *Store) hybridSearchQuery(where string) string {
	return fmt.Sprintf(`CALL {
  CALL db.index.vector.queryNodes($index_name, $candidates, $query_vector)
  YIELD node, score
  WITH collect(node) AS nodes
  UNWIND range(0, size(nodes) - 1) AS rank
  RETURN nodes[rank] AS node, 1.0 / ($rrf_k + rank + 1) AS rrf
  UNION ALL
  CALL db.index.fulltext.queryNodes($keyword_index, $query_text, {limit: $candidates})
  YIELD node, score
  WITH collect(node) AS nodes
  UNWIND range(0, size(nodes) - 1) AS rank
  RETURN nodes[rank] AS node, 1.0 / ($rrf_k + rank + 1) AS rrf
}
WITH node, sum(rrf) AS score
WHERE %s
%s
LIMIT $top_k`, where, s.returnClause())
}

// toDocument maps a search row to a document. Nodes written by AddDocuments
// carry JSON metadata; for other nodes the remaining properties become the
// metadata.
func (s *Store) toDocument(rec graphs.Record) schema.Document {
	doc := schema.Document{}
	if score, ok := rec.Get("score"); ok {
		if f, ok := score.(float64); ok {
			doc.Score = float32(f)
		}
	}

	raw, _ := rec.Get("properties")
	props, _ := raw.(map[string]any)
	if text, ok := props[s.opts.textProp].(string); ok {
		doc.PageContent = text
	}

	if metadataJSON, ok := props[s.opts.metadataProp].(string); ok && metadataJSON != "" {
		var metadata map[string]any
		if err := json.Unmarshal([]byte(metadataJSON), &metadata); err == nil {
			doc.Metadata = metadata
			return doc
		}
	}

	metadata := make(map[string]any, len(props))
	for k, v := range props {
		if v == nil || k == s.opts.textProp || k == s.opts.metadataProp || k == s.opts.embeddingProp {
			continue
		}
		metadata[k] = v
	}
	doc.Metadata = metadata
	return doc
}

// buildWhereClause turns the namespace and equality filters into a WHERE
// clause over node. Filter values are passed as parameters.
func (s *Store) buildWhereClause(opts *vectorstores.Options) (string, map[string]any, error) {
	params := map[string]any{}
	var conditions []string

	if opts.NameSpace != "" {
		conditions = append(conditions, "node.namespace = $namespace")
		params["namespace"] = opts.NameSpace
	}

	if opts.Filters != nil {
		filters, ok := opts.Filters.(map[string]any)
		if !ok {
			return "", nil, ErrInvalidFilters
		}
		keys := make([]string, 0, len(filters))
		for k := range filters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for i, k := range keys {
			name := fmt.Sprintf("filter_%d", i)
			conditions = append(conditions, fmt.Sprintf("node.%s = $%s", graphs.EscapeIdentifier(k), name))
			params[name] = filters[k]
		}
	}

	if len(conditions) == 0 {
		return "true", params, nil
	}
	return strings.Join(conditions, " AND "), params, nil
}

func (s *Store) getVectorStoreOptions(options ...vectorstores.Option) *vectorstores.Options {
	opts := &vectorstores.Options{}
	for _, opt := range options {
		opt(opts)
	}
	return opts
}

func (s *Store) deduplicate(
	ctx context.Context,
	opts *vectorstores.Options,
	docs []schema.Document,
) []schema.Document {
	if opts.Deduplicater == nil {
		return docs
	}

	filtered := make([]schema.Document, 0, len(docs))
	for _, doc := range docs {
		if !opts.Deduplicater(ctx, doc) {
			filtered = append(filtered, doc)
		}
	}
	return filtered
}

func validateOptions(opts *options) error {
	if opts.dimensions <= 0 {
		return ErrInvalidDimensions
	}
	if opts.similarityFunc != "cosine" && opts.similarityFunc != "euclidean" {
		return ErrInvalidSimilarityFunc
	}
	if opts.searchType != SearchTypeVector && opts.searchType != SearchTypeHybrid {
		return ErrInvalidSearchType
	}
	if opts.batchSize <= 0 || opts.concurrency <= 0 {
		return ErrInvalidBatchSize
	}
	return nil
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}

var luceneReplacer = func() *strings.Replacer {
	special := []string{`\`, `+`, `-`, `!`, `(`, `)`, `:`, `^`, `[`, `]`, `"`, `{`, `}`, `~`, `*`, `?`, `|`, `&`, `/`}
	pairs := make([]string, 0, len(special)*2)
	for _, c := range special {
		pairs = append(pairs, c, `\`+c)
	}
	return strings.NewReplacer(pairs...)
}()

// EscapeLucene escapes fulltext query syntax so the text is matched literally.
func EscapeLucene(s string) string {
	return luceneReplacer.Replace(s)
}
