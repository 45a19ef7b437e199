package retrievers

import (
	"context"
	"errors"
	"strings"

	"github.com/tmc/langchaingo/embeddings"

	"github.com/genai-fundamentals/graphrag/graphs"
)

// ErrEmptyRetrievalQuery is returned when VectorCypher gets no retrieval query.
var ErrEmptyRetrievalQuery = errors.New("retrieval query is empty")

// VectorCypher runs a vector search and expands every match with a Cypher
// retrieval query. The query sees the matched node as `node` and its
// similarity as `score`.
type VectorCypher struct {
	*vectorSearch
	retrievalQuery string
}

var _ Retriever = (*VectorCypher)(nil)

// NewVectorCypher creates a VectorCypher retriever. Results are ordered by the
// WithScoreKey column, "score" by default.
func NewVectorCypher(ctx context.Context, store graphs.GraphStore, embedder embeddings.Embedder, indexName, retrievalQuery string, opts ...Option) (*VectorCypher, error) {
	if strings.TrimSpace(retrievalQuery) == "" {
		return nil, ErrEmptyRetrievalQuery
	}
	vs, err := newVectorSearch(ctx, store, embedder, indexName, opts)
	if err != nil {
		return nil, err
	}
	return &VectorCypher{vectorSearch: vs, retrievalQuery: retrievalQuery}, nil
}

// Kind returns KindVectorCypher.
func (v *VectorCypher) Kind() Kind { return KindVectorCypher }

// Search returns at most TopK expanded records ordered by decreasing score.
func (v *VectorCypher) Search(ctx context.Context, query string, options ...SearchOption) (*Result, error) {
	opts, err := searchOptions(options)
	if err != nil {
		return nil, err
	}

	tail := "WITH node, score\n" + strings.TrimSpace(v.retrievalQuery)
	res, k, err := v.run(ctx, query, tail, opts, graphs.WithStrictSchema(v.opts.strictSchema))
	if err != nil {
		return nil, err
	}

	items := make([]scoredItem, 0, res.Len())
	for _, rec := range res.Records {
		score, ok := toFloat(recordValue(rec, v.opts.scoreKey))
		items = append(items, scoredItem{item: v.format(rec), score: score, ok: ok})
	}

	return &Result{
		Items:    rank(items, k),
		Metadata: map[string]any{"retriever": KindVectorCypher.String()},
	}, nil
}

func (v *VectorCypher) format(rec graphs.Record) Item {
	if v.opts.resultFormatter != nil {
		return v.opts.resultFormatter(rec)
	}
	item := recordItem(rec)
	if _, ok := item.Metadata["score"]; !ok {
		if score, ok := rec.Get(v.opts.scoreKey); ok {
			item.Metadata["score"] = score
		}
	}
	return item
}

// recordItem renders every column of rec as content and metadata.
func recordItem(rec graphs.Record) Item {
	return Item{Content: rec.String(), Metadata: rec.AsMap()}
}
