package retrievers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tmc/langchaingo/embeddings"

	"github.com/genai-fundamentals/graphrag/graphs"
)

const (
	indexQuery = `SHOW INDEXES
YIELD name, type, labelsOrTypes, properties, options
WHERE name = $index_name AND type = 'VECTOR'
RETURN name, labelsOrTypes, properties, options`

	vectorSearchQuery = `CALL db.index.vector.queryNodes($index_name, $top_k, $query_vector)
YIELD node, score
`
)

// vectorIndex describes a vector index as reported by the store.
type vectorIndex struct {
	name       string
	label      string
	property   string
	dimensions int
}

func lookupIndex(ctx context.Context, store graphs.GraphStore, name string) (vectorIndex, error) {
	res, err := store.Query(ctx, indexQuery, map[string]any{"index_name": name})
	if err != nil {
		return vectorIndex{}, fmt.Errorf("%w: failed to look up vector index %q: %w", ErrRetrieval, name, err)
	}
	if res.Len() == 0 {
		return vectorIndex{}, fmt.Errorf("%w: %w: %q", ErrRetrieval, ErrIndexNotFound, name)
	}

	rec := res.Records[0]
	idx := vectorIndex{name: name}
	if labels := stringsOf(recordValue(rec, "labelsOrTypes")); len(labels) > 0 {
		idx.label = labels[0]
	}
	if props := stringsOf(recordValue(rec, "properties")); len(props) > 0 {
		idx.property = props[0]
	}
	if opts, ok := recordValue(rec, "options").(map[string]any); ok {
		if cfg, ok := opts["indexConfig"].(map[string]any); ok {
			if dims, ok := toFloat(cfg["vector.dimensions"]); ok {
				idx.dimensions = int(dims)
			}
		}
	}
	return idx, nil
}

// vectorSearch holds what Vector and VectorCypher share: the index, the
// embedder and the nearest-neighbour call.
type vectorSearch struct {
	store    graphs.GraphStore
	embedder embeddings.Embedder
	index    vectorIndex
	opts     *options
}

func newVectorSearch(ctx context.Context, store graphs.GraphStore, embedder embeddings.Embedder, indexName string, opts []Option) (*vectorSearch, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: graph store", ErrMissingDependency)
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder", ErrMissingDependency)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	index, err := lookupIndex(ctx, store, indexName)
	if err != nil {
		return nil, err
	}
	if o.embeddingProperty == "" {
		o.embeddingProperty = index.property
	}
	if o.dimensions == 0 {
		o.dimensions = index.dimensions
	}

	return &vectorSearch{store: store, embedder: embedder, index: index, opts: o}, nil
}

func (v *vectorSearch) topK(opts *SearchOptions) int {
	if opts.TopK > 0 {
		return opts.TopK
	}
	return v.opts.defaultTopK
}

func (v *vectorSearch) embed(ctx context.Context, query string) ([]float64, error) {
	vec, err := v.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbedding, err)
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("%w: empty embedding", ErrEmbedding)
	}
	if v.opts.dimensions > 0 && len(vec) != v.opts.dimensions {
		return nil, fmt.Errorf("%w: %w: got %d, index %q expects %d",
			ErrEmbedding, ErrDimensionMismatch, len(vec), v.index.name, v.opts.dimensions)
	}

	out := make([]float64, len(vec))
	for i, f := range vec {
		out[i] = float64(f)
	}
	return out, nil
}

// run embeds the question and executes the vector search followed by tail.
func (v *vectorSearch) run(ctx context.Context, query, tail string, opts *SearchOptions, queryOpts ...graphs.Option) (*graphs.Result, int, error) {
	k := v.topK(opts)
	vec, err := v.embed(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	params := mergeParams(opts.QueryParams, map[string]any{
		"index_name":   v.index.name,
		"top_k":        k,
		"query_vector": vec,
	})
	res, err := v.store.Query(ctx, vectorSearchQuery+tail, params, queryOpts...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrRetrieval, err)
	}
	return res, k, nil
}

// Vector returns the nodes nearest to the embedded question.
type Vector struct {
	*vectorSearch
}

var _ Retriever = (*Vector)(nil)

// NewVector creates a vector retriever over an existing vector index. It fails
// with ErrIndexNotFound when the index does not exist.
func NewVector(ctx context.Context, store graphs.GraphStore, embedder embeddings.Embedder, indexName string, opts ...Option) (*Vector, error) {
	vs, err := newVectorSearch(ctx, store, embedder, indexName, opts)
	if err != nil {
		return nil, err
	}
	return &Vector{vectorSearch: vs}, nil
}

// Kind returns KindVector.
func (v *Vector) Kind() Kind { return KindVector }

// Search returns at most TopK nodes ordered by decreasing similarity score.
func (v *Vector) Search(ctx context.Context, query string, options ...SearchOption) (*Result, error) {
	opts, err := searchOptions(options)
	if err != nil {
		return nil, err
	}

	res, k, err := v.run(ctx, query, v.returnClause(), opts)
	if err != nil {
		return nil, err
	}

	items := make([]scoredItem, 0, res.Len())
	for _, rec := range res.Records {
		score, _ := toFloat(recordValue(rec, "score"))
		items = append(items, scoredItem{item: v.format(rec), score: score, ok: true})
	}

	return &Result{
		Items:    rank(items, k),
		Metadata: map[string]any{"retriever": KindVector.String()},
	}, nil
}

func (v *Vector) returnClause() string {
	var projection string
	switch {
	case len(v.opts.returnProperties) > 0:
		props := make([]string, len(v.opts.returnProperties))
		for i, p := range v.opts.returnProperties {
			props[i] = "." + graphs.EscapeIdentifier(p)
		}
		projection = "node {" + strings.Join(props, ", ") + "}"
	case v.opts.embeddingProperty != "":
		projection = "node {.*, " + graphs.EscapeIdentifier(v.opts.embeddingProperty) + ": null}"
	default:
		projection = "node {.*}"
	}
	return "RETURN " + projection + " AS node, labels(node) AS nodeLabels, elementId(node) AS id, score\nORDER BY score DESC"
}

func (v *Vector) format(rec graphs.Record) Item {
	if v.opts.resultFormatter != nil {
		return v.opts.resultFormatter(rec)
	}

	node, _ := recordValue(rec, "node").(map[string]any)
	props := make(map[string]any, len(node))
	for k, val := range node {
		if val != nil {
			props[k] = val
		}
	}

	return Item{
		Content: graphs.FormatValue(props),
		Metadata: map[string]any{
			"score":      recordValue(rec, "score"),
			"id":         recordValue(rec, "id"),
			"nodeLabels": recordValue(rec, "nodeLabels"),
			"node":       props,
		},
	}
}

type scoredItem struct {
	item  Item
	score float64
	ok    bool
}

// rank orders items by non-increasing score, keeping store order among equal
// scores and putting items without a score last, then truncates to k.
func rank(items []scoredItem, k int) []Item {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].ok != items[j].ok {
			return items[i].ok
		}
		return items[i].score > items[j].score
	})
	if k > 0 && len(items) > k {
		items = items[:k]
	}

	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it.item
	}
	return out
}

func recordValue(rec graphs.Record, key string) any {
	v, _ := rec.Get(key)
	return v
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	default:
		return 0, false
	}
}

func stringsOf(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

