package retrievers

import (
	"errors"
	"fmt"
)

var (
	// ErrEmbedding is returned when the question cannot be embedded.
	ErrEmbedding = errors.New("failed to embed query")
	// ErrRetrieval is returned when the store fails to run a retrieval query.
	ErrRetrieval = errors.New("retrieval failed")
	// ErrTranslation is returned when a generated Cypher query cannot be produced or executed.
	ErrTranslation = errors.New("query translation failed")
	// ErrIndexNotFound is returned when the vector index does not exist.
	ErrIndexNotFound = errors.New("vector index not found")
	// ErrDimensionMismatch is returned when an embedding has the wrong size for the index.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrInvalidTopK is returned for a negative result limit.
	ErrInvalidTopK = errors.New("top k must not be negative")
	// ErrMissingDependency is returned when a constructor lacks a store, embedder or model.
	ErrMissingDependency = errors.New("missing retriever dependency")
)

// TranslationError reports a generated Cypher query that the store rejected.
// It matches ErrTranslation and the underlying store error with errors.Is.
type TranslationError struct {
	Question string
	Cypher   string
	Err      error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("query translation failed for %q: generated cypher %q: %v", e.Question, e.Cypher, e.Err)
}

func (e *TranslationError) Unwrap() []error {
	return []error{ErrTranslation, e.Err}
}
