package generation

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"

	"github.com/genai-fundamentals/graphrag/retrievers"
)

// GraphRAG runs a retriever and feeds its items to a Generator.
// It keeps no state between searches.
type GraphRAG struct {
	retriever retrievers.Retriever
	generator *Generator
}

// Response is the outcome of GraphRAG.Search.
type Response struct {
	Answer string
	// RetrieverResult is set when WithReturnContext is used.
	RetrieverResult *retrievers.Result
}

// New binds retriever to a Generator built from llm and opts.
func New(retriever retrievers.Retriever, llm llms.Model, opts ...Option) (*GraphRAG, error) {
	if retriever == nil {
		return nil, fmt.Errorf("%w: retriever", ErrMissingDependency)
	}
	generator, err := NewGenerator(llm, opts...)
	if err != nil {
		return nil, err
	}
	return &GraphRAG{retriever: retriever, generator: generator}, nil
}

// NewWithGenerator binds retriever to an existing generator.
func NewWithGenerator(retriever retrievers.Retriever, generator *Generator) (*GraphRAG, error) {
	if retriever == nil {
		return nil, fmt.Errorf("%w: retriever", ErrMissingDependency)
	}
	if generator == nil {
		return nil, fmt.Errorf("%w: generator", ErrMissingDependency)
	}
	return &GraphRAG{retriever: retriever, generator: generator}, nil
}

// Retriever returns the bound retriever.
func (r *GraphRAG) Retriever() retrievers.Retriever { return r.retriever }

// SearchOption configures a single GraphRAG search.
type SearchOption func(*searchOptions)

type searchOptions struct {
	retrieverOptions []retrievers.SearchOption
	returnContext    bool
	examples         string
}

// WithRetrieverOptions passes options, such as retrievers.WithTopK, to the retriever.
func WithRetrieverOptions(opts ...retrievers.SearchOption) SearchOption {
	return func(o *searchOptions) {
		o.retrieverOptions = append(o.retrieverOptions, opts...)
	}
}

// WithReturnContext includes the retriever result in the response.
func WithReturnContext(returnContext bool) SearchOption {
	return func(o *searchOptions) {
		o.returnContext = returnContext
	}
}

// WithExamples sets the examples section of the answer prompt.
func WithExamples(examples string) SearchOption {
	return func(o *searchOptions) {
		o.examples = examples
	}
}

// Search retrieves items for question and generates the answer. A retrieval
// failure is returned as is and the model is not called.
func (r *GraphRAG) Search(ctx context.Context, question string, opts ...SearchOption) (*Response, error) {
	o := &searchOptions{}
	for _, opt := range opts {
		opt(o)
	}

	result, err := r.retriever.Search(ctx, question, o.retrieverOptions...)
	if err != nil {
		return nil, err
	}

	answer, err := r.generator.Generate(ctx, question, result, o.examples)
	if err != nil {
		return nil, err
	}

	resp := &Response{Answer: answer}
	if o.returnContext {
		resp.RetrieverResult = result
	}
	return resp, nil
}
