package retrievers

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"

	"github.com/genai-fundamentals/graphrag/graphs"
)

// Config holds the collaborators a retriever of any kind may need.
type Config struct {
	Store    graphs.GraphStore
	Embedder embeddings.Embedder
	LLM      llms.Model

	// IndexName is the vector index used by KindVector and KindVectorCypher.
	IndexName string
	// RetrievalQuery is the expansion query used by KindVectorCypher.
	RetrievalQuery string

	Options []Option
}

// New constructs the retriever for kind from cfg.
func New(ctx context.Context, kind Kind, cfg Config) (Retriever, error) {
	switch kind {
	case KindVector:
		return NewVector(ctx, cfg.Store, cfg.Embedder, cfg.IndexName, cfg.Options...)
	case KindVectorCypher:
		return NewVectorCypher(ctx, cfg.Store, cfg.Embedder, cfg.IndexName, cfg.RetrievalQuery, cfg.Options...)
	case KindText2Cypher:
		return NewText2Cypher(ctx, cfg.Store, cfg.LLM, cfg.Options...)
	default:
		return nil, fmt.Errorf("unknown retriever kind %v", kind)
	}
}
