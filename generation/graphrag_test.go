package generation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genai-fundamentals/graphrag/internal/testutil/llmtest"
	"github.com/genai-fundamentals/graphrag/retrievers"
)

type stubRetriever struct {
	result *retrievers.Result
	err    error

	calls   int
	options retrievers.SearchOptions
}

func (s *stubRetriever) Kind() retrievers.Kind { return retrievers.KindVector }

func (s *stubRetriever) Search(_ context.Context, _ string, opts ...retrievers.SearchOption) (*retrievers.Result, error) {
	s.calls++
	for _, opt := range opts {
		opt(&s.options)
	}
	if s.err != nil {
		return nil, s.err
	}
	res := *s.result
	if s.options.TopK > 0 && len(res.Items) > s.options.TopK {
		res.Items = res.Items[:s.options.TopK]
	}
	return &res, nil
}

func TestGraphRAGSearch(t *testing.T) {
	ctx := context.Background()
	r := &stubRetriever{result: toyResult()}
	llm := llmtest.NewModel("Toy Story is about toys coming alive.")

	rag, err := New(r, llm)
	require.NoError(t, err)

	resp, err := rag.Search(ctx, "Find me movies about toys coming alive",
		WithRetrieverOptions(retrievers.WithTopK(2)),
		WithReturnContext(true),
	)
	require.NoError(t, err)
	assert.Equal(t, "Toy Story is about toys coming alive.", resp.Answer)
	require.NotNil(t, resp.RetrieverResult)
	assert.Len(t, resp.RetrieverResult.Items, 2)
	assert.Equal(t, 2, r.options.TopK)
	assert.NotContains(t, llm.Prompts()[0], "Pinocchio")

	resp, err = rag.Search(ctx, "Find me movies about toys coming alive")
	require.NoError(t, err)
	assert.Nil(t, resp.RetrieverResult)
	assert.Equal(t, 2, llm.Calls())
}

func TestGraphRAGRetrieverFailureShortCircuits(t *testing.T) {
	retrievalErr := errors.Join(retrievers.ErrRetrieval, errors.New("index offline"))
	r := &stubRetriever{err: retrievalErr}
	llm := llmtest.NewModel("never")

	rag, err := New(r, llm)
	require.NoError(t, err)

	resp, err := rag.Search(context.Background(), "Find me movies about toys coming alive")
	require.ErrorIs(t, err, retrievers.ErrRetrieval)
	assert.Nil(t, resp)
	assert.Equal(t, 1, r.calls)
	assert.Zero(t, llm.Calls())
}

func TestGraphRAGGenerationFailure(t *testing.T) {
	llm := llmtest.NewModel()
	llm.Err = errors.New("connection reset")

	rag, err := New(&stubRetriever{result: toyResult()}, llm)
	require.NoError(t, err)

	_, err = rag.Search(context.Background(), "q")
	require.ErrorIs(t, err, ErrGeneration)
}

func TestGraphRAGExamples(t *testing.T) {
	llm := llmtest.NewModel("ok")
	g, err := NewGenerator(llm)
	require.NoError(t, err)

	rag, err := NewWithGenerator(&stubRetriever{result: toyResult()}, g)
	require.NoError(t, err)

	_, err = rag.Search(context.Background(), "q", WithExamples("USER INPUT: 'Get user ratings for a movie?'"))
	require.NoError(t, err)
	assert.Contains(t, llm.Prompts()[0], "Examples:\nUSER INPUT: 'Get user ratings for a movie?'")
}

func TestGraphRAGMissingDependencies(t *testing.T) {
	_, err := New(nil, llmtest.NewModel())
	require.ErrorIs(t, err, ErrMissingDependency)

	_, err = New(&stubRetriever{}, nil)
	require.ErrorIs(t, err, ErrMissingDependency)

	_, err = NewWithGenerator(&stubRetriever{}, nil)
	require.ErrorIs(t, err, ErrMissingDependency)
}
