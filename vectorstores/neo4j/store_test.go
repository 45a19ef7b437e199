package neo4j

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"

	"github.com/genai-fundamentals/graphrag/graphs"
	"github.com/genai-fundamentals/graphrag/internal/testutil/graphtest"
	"github.com/genai-fundamentals/graphrag/internal/testutil/llmtest"
)

func existingIndex() *graphs.Result {
	return graphtest.Rows(
		[]string{"name", "type", "state", "labelsOrTypes", "properties", "options"},
		[]any{"moviePlots", "VECTOR", "ONLINE", []any{"Movie"}, []any{"plotEmbedding"}, map[string]any{
			"indexConfig": map[string]any{
				"vector.dimensions":          int64(1536),
				"vector.similarity_function": "COSINE",
			},
		}},
	)
}

func TestNewWithGraphStoreCreatesIndex(t *testing.T) {
	ctx := context.Background()
	graph := graphtest.New(nil)

	store, err := New(ctx, WithGraphStore(graph), WithEmbedder(llmtest.NewEmbedder(1536)))
	require.NoError(t, err)

	calls := graph.Calls()
	require.Len(t, calls, 3)
	assert.True(t, strings.HasPrefix(calls[0].Query, "SHOW INDEXES"))
	assert.Equal(t, "moviePlots", calls[0].Params["index_name"])
	assert.Contains(t, calls[1].Query, "CREATE VECTOR INDEX `moviePlots` IF NOT EXISTS\nFOR (n:`Movie`) ON (n.`plotEmbedding`)")
	assert.Equal(t, 1536, calls[1].Params["dimensions"])
	assert.True(t, calls[1].Options.Write)
	assert.Equal(t, "CALL db.awaitIndex($index_name, $timeout)", calls[2].Query)

	require.NoError(t, store.Close())
	assert.Zero(t, graph.CloseCalls(), "borrowed store stays open")
}

func TestNewKeepsExistingIndex(t *testing.T) {
	ctx := context.Background()
	graph := graphtest.New(func(_ context.Context, query string, _ map[string]any, _ graphs.Options) (*graphs.Result, error) {
		if strings.HasPrefix(query, "SHOW INDEXES") {
			return existingIndex(), nil
		}
		return &graphs.Result{}, nil
	})

	store, err := New(ctx, WithGraphStore(graph))
	require.NoError(t, err)
	assert.Len(t, graph.Calls(), 1)

	info, err := store.Index(ctx)
	require.NoError(t, err)
	assert.Equal(t, &IndexInfo{
		Name:               "moviePlots",
		Type:               "VECTOR",
		State:              "ONLINE",
		Label:              "Movie",
		Properties:         []string{"plotEmbedding"},
		Dimensions:         1536,
		SimilarityFunction: "COSINE",
	}, info)
}

func TestNewPreDeleteAndKeywordIndex(t *testing.T) {
	ctx := context.Background()
	graph := graphtest.New(func(_ context.Context, query string, params map[string]any, _ graphs.Options) (*graphs.Result, error) {
		if strings.HasPrefix(query, "SHOW INDEXES") && params["index_name"] == "moviePlots" {
			return existingIndex(), nil
		}
		return &graphs.Result{}, nil
	})

	_, err := New(ctx, WithGraphStore(graph), WithPreDeleteIndex(true), WithHybridSearch(true))
	require.NoError(t, err)

	var queries []string
	for _, c := range graph.Calls() {
		queries = append(queries, strings.SplitN(c.Query, "\n", 2)[0])
	}
	assert.Equal(t, []string{
		"SHOW INDEXES",
		"DROP INDEX `moviePlots` IF EXISTS",
		"CREATE VECTOR INDEX `moviePlots` IF NOT EXISTS",
		"CALL db.awaitIndex($index_name, $timeout)",
		"SHOW INDEXES",
		"CREATE FULLTEXT INDEX `moviePlotsFulltext` IF NOT EXISTS",
		"CALL db.awaitIndex($index_name, $timeout)",
	}, queries)
}

func TestIndexNotFound(t *testing.T) {
	store, err := New(context.Background(), WithGraphStore(graphtest.New(nil)), WithCreateIndex(false))
	require.NoError(t, err)

	_, err = store.Index(context.Background())
	require.ErrorIs(t, err, ErrIndexNotFound)
}

func TestNewWithInvalidOptions(t *testing.T) {
	ctx := context.Background()
	graph := graphtest.New(nil)

	tests := []struct {
		name string
		opt  Option
		err  error
	}{
		{"dimensions", WithDimensions(-1), ErrInvalidDimensions},
		{"similarity", WithSimilarityFunction("dot"), ErrInvalidSimilarityFunc},
		{"search type", WithSearchType("keyword"), ErrInvalidSearchType},
		{"batch size", WithBatchSize(0), ErrInvalidBatchSize},
		{"concurrency", WithConcurrency(0), ErrInvalidBatchSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(ctx, WithGraphStore(graph), tt.opt)
			require.ErrorIs(t, err, tt.err)
		})
	}
	assert.Empty(t, graph.Calls())
}

func TestAddDocumentsQuery(t *testing.T) {
	ctx := context.Background()
	graph := graphtest.New(nil)
	embedder := llmtest.NewEmbedder(4)

	store, err := New(ctx, WithGraphStore(graph), WithEmbedder(embedder), WithCreateIndex(false))
	require.NoError(t, err)

	ids, err := store.AddDocuments(ctx, []schema.Document{
		{PageContent: "A cowboy doll is threatened by a new spaceman figure.", Metadata: map[string]any{"title": "Toy Story", "tags": []string{"toys"}}},
		{PageContent: "A wooden puppet wants to be a real boy."},
	}, vectorstores.WithNameSpace("course"))
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])

	calls := graph.Calls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].Options.Write)
	assert.Contains(t, calls[0].Query, "CREATE (n:`Movie`)")
	assert.Contains(t, calls[0].Query, "n.`plot` = doc.text")

	rows := calls[0].Params["docs"].([]map[string]any)
	require.Len(t, rows, 2)
	assert.Equal(t, ids[0], rows[0]["id"])
	assert.Equal(t, "course", rows[0]["namespace"])
	assert.Equal(t, `{"tags":["toys"],"title":"Toy Story"}`, rows[0]["metadata"])
	assert.Equal(t, map[string]any{"title": "Toy Story"}, rows[0]["props"])
	assert.Len(t, rows[1]["embedding"], 4)
	assert.Equal(t, "{}", rows[1]["metadata"])
}

func TestAddDocumentsDeduplicates(t *testing.T) {
	ctx := context.Background()
	graph := graphtest.New(nil)

	store, err := New(ctx, WithGraphStore(graph), WithEmbedder(llmtest.NewEmbedder(2)), WithCreateIndex(false))
	require.NoError(t, err)

	seen := map[string]bool{}
	dedup := func(_ context.Context, doc schema.Document) bool {
		if seen[doc.PageContent] {
			return true
		}
		seen[doc.PageContent] = true
		return false
	}

	ids, err := store.AddDocuments(ctx, []schema.Document{
		{PageContent: "Toy Story"}, {PageContent: "Pinocchio"}, {PageContent: "Toy Story"},
	}, vectorstores.WithDeduplicater(dedup))
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	ids, err = store.AddDocuments(ctx, []schema.Document{{PageContent: "Toy Story"}}, vectorstores.WithDeduplicater(dedup))
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Len(t, graph.Calls(), 1)
}

func TestAddDocumentsWithoutEmbedder(t *testing.T) {
	store, err := New(context.Background(), WithGraphStore(graphtest.New(nil)), WithCreateIndex(false))
	require.NoError(t, err)

	_, err = store.AddDocuments(context.Background(), []schema.Document{{PageContent: "Test document"}})
	require.ErrorIs(t, err, ErrEmbedderNotSet)

	_, err = store.SimilaritySearch(context.Background(), "Test", 1)
	require.ErrorIs(t, err, ErrEmbedderNotSet)
}

func searchRows() *graphs.Result {
	return graphtest.Rows([]string{"properties", "score"},
		[]any{map[string]any{"title": "Toy Story", "plot": "Toys come alive.", "plotEmbedding": nil, "released": int64(1995)}, 0.95},
		[]any{map[string]any{"plot": "Added document.", "metadata": `{"source":"test"}`, "id": "a1"}, 0.91},
		[]any{map[string]any{"title": "Heat", "plot": "Cops and robbers."}, 0.4},
	)
}

func TestSimilaritySearch(t *testing.T) {
	ctx := context.Background()
	graph := graphtest.New(func(context.Context, string, map[string]any, graphs.Options) (*graphs.Result, error) {
		return searchRows(), nil
	})

	store, err := New(ctx, WithGraphStore(graph), WithEmbedder(llmtest.NewEmbedder(4)), WithCreateIndex(false))
	require.NoError(t, err)

	docs, err := store.SimilaritySearch(ctx, "Toys coming alive", 3,
		vectorstores.WithScoreThreshold(0.5),
		vectorstores.WithFilters(map[string]any{"released": 1995}),
	)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "Toys come alive.", docs[0].PageContent)
	assert.InDelta(t, 0.95, docs[0].Score, 1e-6)
	assert.Equal(t, map[string]any{"title": "Toy Story", "released": int64(1995)}, docs[0].Metadata)
	assert.Equal(t, map[string]any{"source": "test"}, docs[1].Metadata)

	call := graph.Calls()[0]
	assert.True(t, strings.HasPrefix(call.Query, "CALL db.index.vector.queryNodes($index_name, $top_k, $query_vector)"))
	assert.Contains(t, call.Query, "WHERE node.`released` = $filter_0")
	assert.Contains(t, call.Query, "node {.*, `plotEmbedding`: null}")
	assert.Equal(t, 1995, call.Params["filter_0"])
	assert.Equal(t, 3, call.Params["top_k"])
	assert.Len(t, call.Params["query_vector"], 4)
	assert.False(t, call.Options.Write)
}

func TestSimilaritySearchHybrid(t *testing.T) {
	ctx := context.Background()
	graph := graphtest.New(func(context.Context, string, map[string]any, graphs.Options) (*graphs.Result, error) {
		return searchRows(), nil
	})

	store, err := New(ctx, WithGraphStore(graph), WithEmbedder(llmtest.NewEmbedder(4)),
		WithCreateIndex(false), WithHybridSearch(true), WithSearchType(SearchTypeHybrid), WithRRFK(10))
	require.NoError(t, err)

	_, err = store.SimilaritySearch(ctx, "toys (alive)", 2, vectorstores.WithNameSpace("course"))
	require.NoError(t, err)

	call := graph.Calls()[0]
	assert.Contains(t, call.Query, "db.index.fulltext.queryNodes($keyword_index, $query_text, {limit: $candidates})")
	assert.Contains(t, call.Query, "WHERE node.namespace = $namespace")
	assert.Equal(t, `toys \(alive\)`, call.Params["query_text"])
	assert.Equal(t, 4, call.Params["candidates"])
	assert.Equal(t, 10, call.Params["rrf_k"])
	assert.Equal(t, "moviePlotsFulltext", call.Params["keyword_index"])
}

func TestSimilaritySearchInvalidInput(t *testing.T) {
	ctx := context.Background()
	store, err := New(ctx, WithGraphStore(graphtest.New(nil)), WithEmbedder(llmtest.NewEmbedder(2)), WithCreateIndex(false))
	require.NoError(t, err)

	_, err = store.SimilaritySearch(ctx, "q", 1, vectorstores.WithScoreThreshold(1.5))
	require.ErrorIs(t, err, ErrInvalidScoreThreshold)

	_, err = store.SimilaritySearch(ctx, "q", 1, vectorstores.WithFilters("released = 1995"))
	require.ErrorIs(t, err, ErrInvalidFilters)
}

func TestEmbedNodes(t *testing.T) {
	ctx := context.Background()

	var mu sync.Mutex
	pending := []string{"Toys come alive.", "A puppet wants to be a boy.", "Cops and robbers.", "Agents in a simulation.", "A masked vigilante."}
	graph := graphtest.New(func(_ context.Context, query string, params map[string]any, _ graphs.Options) (*graphs.Result, error) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case strings.HasPrefix(query, "MATCH (n:`Movie`)"):
			n := min(params["batch_size"].(int), len(pending))
			rows := make([][]any, n)
			for i := 0; i < n; i++ {
				rows[i] = []any{pending[i], pending[i]}
			}
			return graphtest.Rows([]string{"id", "text"}, rows...), nil
		case strings.HasPrefix(query, "UNWIND $rows"):
			rows := params["rows"].([]map[string]any)
			pending = pending[len(rows):]
			return graphtest.Rows([]string{"updated"}, []any{int64(len(rows))}), nil
		}
		return &graphs.Result{}, nil
	})

	embedder := llmtest.NewEmbedder(3)
	store, err := New(ctx, WithGraphStore(graph), WithEmbedder(embedder), WithCreateIndex(false),
		WithBatchSize(2), WithConcurrency(2))
	require.NoError(t, err)

	n, err := store.EmbedNodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.ElementsMatch(t, []string{"Toys come alive.", "A puppet wants to be a boy.", "Cops and robbers.", "Agents in a simulation.", "A masked vigilante."}, embedder.Texts())

	var updates int
	for _, c := range graph.Calls() {
		if strings.HasPrefix(c.Query, "UNWIND $rows") {
			updates++
			assert.True(t, c.Options.Write)
			for _, row := range c.Params["rows"].([]map[string]any) {
				want, err := embedder.EmbedQuery(ctx, row["id"].(string))
				require.NoError(t, err)
				assert.Equal(t, toFloat64(want), row["embedding"], "embedding stays aligned with its node")
			}
		}
	}
	assert.Equal(t, 3, updates)
}

func TestEmbedNodesFailure(t *testing.T) {
	ctx := context.Background()
	graph := graphtest.New(func(_ context.Context, query string, _ map[string]any, _ graphs.Options) (*graphs.Result, error) {
		return graphtest.Rows([]string{"id", "text"}, []any{"4:x:1", "plot"}), nil
	})
	embedder := llmtest.NewEmbedder(3)
	embedder.Err = errors.New("quota exceeded")

	store, err := New(ctx, WithGraphStore(graph), WithEmbedder(embedder), WithCreateIndex(false))
	require.NoError(t, err)

	n, err := store.EmbedNodes(ctx)
	require.ErrorIs(t, err, embedder.Err)
	assert.Zero(t, n)
}

func TestEscapeLucene(t *testing.T) {
	assert.Equal(t, `Hugo \- Weaving\: \"V\"`, EscapeLucene(`Hugo - Weaving: "V"`))
	assert.Equal(t, "plain text", EscapeLucene("plain text"))
}
