// Package movies runs the retrieve-then-generate programs against the movie
// graph. Each run opens one graph connection, verifies it, builds the
// retriever and generator, searches and closes the connection exactly once.
package movies

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"

	"github.com/genai-fundamentals/graphrag/embeddings/cached"
	"github.com/genai-fundamentals/graphrag/generation"
	"github.com/genai-fundamentals/graphrag/graphs"
	neo4jgraph "github.com/genai-fundamentals/graphrag/graphs/neo4j"
	"github.com/genai-fundamentals/graphrag/internal/config"
	"github.com/genai-fundamentals/graphrag/internal/providers"
	"github.com/genai-fundamentals/graphrag/retrievers"
)

// Runner holds the collaborators of a run. Fields are exported so tests and
// alternative programs can swap them.
type Runner struct {
	Pipeline config.PipelineConfig
	Open     graphs.Opener
	Embedder embeddings.Embedder
	// CypherLLM writes Text2Cypher queries.
	CypherLLM llms.Model
	// AnswerLLM generates answers.
	AnswerLLM llms.Model
	Logger    *slog.Logger
	Out       io.Writer
	// EmbeddingModel is only used in log events.
	EmbeddingModel string
}

// NewRunner wires a Runner from cfg: a Neo4j opener, a cached OpenAI
// embedder and an OpenAI chat model.
func NewRunner(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	embedder, err := providers.NewEmbedder(cfg.OpenAI)
	if err != nil {
		return nil, err
	}
	cache, err := cached.New(ctx, embedder, cached.WithNamespace(cfg.OpenAI.EmbeddingModel))
	if err != nil {
		return nil, err
	}

	llm, err := providers.NewChatModel(cfg.OpenAI, "")
	if err != nil {
		return nil, err
	}

	neo := cfg.Neo4j
	open := func(ctx context.Context) (graphs.GraphStore, error) {
		opts := []neo4jgraph.Option{
			neo4jgraph.WithURI(neo.URI),
			neo4jgraph.WithAuth(neo.Username, neo.Password),
			neo4jgraph.WithDatabase(neo.Database),
		}
		if neo.Timeout > 0 {
			opts = append(opts, neo4jgraph.WithTimeout(neo.Timeout))
		}
		return neo4jgraph.NewNeo4j(ctx, opts...)
	}

	return &Runner{
		Pipeline:       cfg.Pipeline,
		Open:           open,
		Embedder:       cache,
		CypherLLM:      llm,
		AnswerLLM:      llm,
		Logger:         logger,
		Out:            out,
		EmbeddingModel: cfg.OpenAI.EmbeddingModel,
	}, nil
}

// session is the state of one run: a logger tagged with the run id and
// whether the connection was opened.
type session struct {
	log    *slog.Logger
	opened bool
}

// withStore opens the graph connection for the duration of fn. Connectivity
// failures are logged; the close is logged whenever the store was opened.
func (r *Runner) withStore(ctx context.Context, op string, attrs []any, fn func(ctx context.Context, s *session, store graphs.GraphStore) error) error {
	s := &session{log: r.Logger.With("run_id", uuid.NewString(), "op", op)}
	s.log.Info("startup", attrs...)

	open := func(ctx context.Context) (graphs.GraphStore, error) {
		store, err := r.Open(ctx)
		if err == nil {
			s.opened = true
		}
		return store, err
	}

	err := graphs.Use(ctx, open, func(ctx context.Context, store graphs.GraphStore) error {
		s.log.Info("connectivity verified")
		return fn(ctx, s, store)
	})
	if s.opened {
		s.log.Info("connection closed")
	}

	switch {
	case err == nil:
	case errors.Is(err, graphs.ErrConnectivity):
		s.log.Error("connection failed", "error", err)
	default:
		s.log.Error(op+" failed", "error", err)
	}
	return err
}

// newRetriever builds the retriever for kind. With probe set, the embedder
// is exercised once before the retriever is built.
func (r *Runner) newRetriever(ctx context.Context, s *session, kind retrievers.Kind, store graphs.GraphStore, probe bool) (retrievers.Retriever, error) {
	if kind == retrievers.KindVector || kind == retrievers.KindVectorCypher {
		attrs := []any{"model", r.EmbeddingModel}
		if probe {
			vec, err := r.Embedder.EmbedQuery(ctx, "test")
			if err != nil {
				return nil, fmt.Errorf("%w: %w", retrievers.ErrEmbedding, err)
			}
			attrs = append(attrs, "vector_length", len(vec))
		}
		s.log.Info("embedder ready", attrs...)
	}

	p := r.Pipeline
	retriever, err := retrievers.New(ctx, kind, retrievers.Config{
		Store:          store,
		Embedder:       r.Embedder,
		LLM:            r.CypherLLM,
		IndexName:      p.IndexName,
		RetrievalQuery: p.RetrievalQuery,
		Options: []retrievers.Option{
			retrievers.WithDefaultTopK(p.TopK),
			retrievers.WithReturnProperties(p.ReturnProperties...),
			retrievers.WithScoreKey(p.ScoreKey),
			retrievers.WithSchema(p.Schema),
			retrievers.WithExamples(p.Examples...),
		},
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("retriever ready", "kind", kind.String(), "index", p.IndexName)
	return retriever, nil
}

func (r *Runner) newPipeline(s *session, retriever retrievers.Retriever) (*generation.GraphRAG, error) {
	var opts []generation.Option
	if r.Pipeline.MaxContextTokens > 0 {
		opts = append(opts, generation.WithMaxContextTokens(r.Pipeline.MaxContextTokens))
	}
	rag, err := generation.New(retriever, r.AnswerLLM, opts...)
	if err != nil {
		return nil, err
	}
	s.log.Info("generator ready")
	return rag, nil
}

// Question returns the configured question for kind.
func (r *Runner) Question(kind retrievers.Kind, withAnswer bool) string {
	q := r.Pipeline.Questions
	switch kind {
	case retrievers.KindVectorCypher:
		return q.VectorCypher
	case retrievers.KindText2Cypher:
		return q.Text2Cypher
	default:
		if withAnswer {
			return q.VectorRAG
		}
		return q.Vector
	}
}

func (r *Runner) printf(format string, args ...any) {
	fmt.Fprintf(r.Out, format, args...)
}
