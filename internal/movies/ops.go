package movies

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/genai-fundamentals/graphrag/generation"
	"github.com/genai-fundamentals/graphrag/graphs"
	"github.com/genai-fundamentals/graphrag/retrievers"
	vectorneo4j "github.com/genai-fundamentals/graphrag/vectorstores/neo4j"
)

// AskOptions tunes a single question.
type AskOptions struct {
	// TopK overrides the configured number of retrieved items when positive.
	TopK int
	// ReturnContext prints the retrieved items after the answer.
	ReturnContext bool
	// ProbeEmbedder embeds a sample text before retrieval and logs the
	// vector length.
	ProbeEmbedder bool
}

func (o AskOptions) retrieverOptions() []retrievers.SearchOption {
	if o.TopK > 0 {
		return []retrievers.SearchOption{retrievers.WithTopK(o.TopK)}
	}
	return nil
}

// Ask answers question with a retriever of the given kind and prints the
// answer. An empty question selects the configured one.
func (r *Runner) Ask(ctx context.Context, kind retrievers.Kind, question string, opts AskOptions) error {
	if question == "" {
		question = r.Question(kind, true)
	}

	attrs := []any{"retriever", kind.String(), "question", question}
	return r.withStore(ctx, "ask", attrs, func(ctx context.Context, s *session, store graphs.GraphStore) error {
		retriever, err := r.newRetriever(ctx, s, kind, store, opts.ProbeEmbedder)
		if err != nil {
			return err
		}
		rag, err := r.newPipeline(s, retriever)
		if err != nil {
			return err
		}
		return r.ask(ctx, s, rag, question, opts)
	})
}

func (r *Runner) ask(ctx context.Context, s *session, rag *generation.GraphRAG, question string, opts AskOptions) error {
	resp, err := rag.Search(ctx, question,
		generation.WithRetrieverOptions(opts.retrieverOptions()...),
		generation.WithReturnContext(true),
	)
	if err != nil {
		return err
	}

	result := resp.RetrieverResult
	s.log.Info("search complete", "items", len(result.Items), "answer_length", len(resp.Answer))

	r.printf("\nAnswer:\n%s\n", resp.Answer)
	if cypher, ok := result.Metadata["cypher"].(string); ok {
		r.printf("\nCYPHER :\n%s\n", cypher)
	}
	if opts.ReturnContext {
		r.printf("\nCONTEXT:\n")
		for _, item := range result.Items {
			r.printf("%s\n", item.Content)
		}
	}
	return nil
}

// Retrieve runs a retriever on its own and prints every item with its
// score. No answer is generated.
func (r *Runner) Retrieve(ctx context.Context, kind retrievers.Kind, question string, opts AskOptions) error {
	if question == "" {
		question = r.Question(kind, false)
	}

	attrs := []any{"retriever", kind.String(), "question", question}
	return r.withStore(ctx, "retrieve", attrs, func(ctx context.Context, s *session, store graphs.GraphStore) error {
		retriever, err := r.newRetriever(ctx, s, kind, store, opts.ProbeEmbedder)
		if err != nil {
			return err
		}

		result, err := retriever.Search(ctx, question, opts.retrieverOptions()...)
		if err != nil {
			return err
		}
		s.log.Info("search complete", "items", len(result.Items))

		if cypher, ok := result.Metadata["cypher"].(string); ok {
			r.printf("CYPHER :\n%s\n\n", cypher)
		}
		for _, item := range result.Items {
			r.printf("%s\n", item.Content)
			if score, ok := item.Metadata["score"]; ok && score != nil {
				r.printf("score: %s\n", graphs.FormatValue(score))
			}
			r.printf("\n")
		}
		return nil
	})
}

// Schema refreshes and prints the graph schema.
func (r *Runner) Schema(ctx context.Context) error {
	return r.withStore(ctx, "schema", nil, func(ctx context.Context, s *session, store graphs.GraphStore) error {
		if err := store.RefreshSchema(ctx); err != nil {
			return fmt.Errorf("failed to refresh schema: %w", err)
		}
		r.printf("%s\n", store.GetSchema())
		return nil
	})
}

// Index makes sure the vector index exists, embeds the movie plots that
// have no embedding yet and prints the index description.
func (r *Runner) Index(ctx context.Context) error {
	p := r.Pipeline
	attrs := []any{"index", p.IndexName, "dimensions", p.Dimensions}
	return r.withStore(ctx, "index", attrs, func(ctx context.Context, s *session, store graphs.GraphStore) error {
		s.log.Info("embedder ready", "model", r.EmbeddingModel)

		vs, err := vectorneo4j.New(ctx,
			vectorneo4j.WithGraphStore(store),
			vectorneo4j.WithEmbedder(r.Embedder),
			vectorneo4j.WithIndexName(p.IndexName),
			vectorneo4j.WithDimensions(p.Dimensions),
		)
		if err != nil {
			return err
		}
		defer vs.Close()

		n, err := vs.EmbedNodes(ctx)
		if err != nil {
			return err
		}
		s.log.Info("nodes embedded", "count", n)

		info, err := vs.Index(ctx)
		if err != nil {
			return err
		}
		r.printf("index: %s\nstate: %s\nlabel: %s\nproperties: %s\ndimensions: %d\nsimilarity: %s\nembedded: %d\n",
			info.Name, info.State, info.Label, strings.Join(info.Properties, ", "),
			info.Dimensions, info.SimilarityFunction, n)
		return nil
	})
}

// Chat reads questions from in, one per line, and answers each over a single
// connection until in ends or a line reads "exit" or "quit". A failed
// question is reported and the loop continues.
func (r *Runner) Chat(ctx context.Context, kind retrievers.Kind, in io.Reader, opts AskOptions) error {
	attrs := []any{"retriever", kind.String()}
	return r.withStore(ctx, "chat", attrs, func(ctx context.Context, s *session, store graphs.GraphStore) error {
		retriever, err := r.newRetriever(ctx, s, kind, store, opts.ProbeEmbedder)
		if err != nil {
			return err
		}
		rag, err := r.newPipeline(s, retriever)
		if err != nil {
			return err
		}

		scanner := bufio.NewScanner(in)
		for {
			r.printf("> ")
			if !scanner.Scan() {
				r.printf("\n")
				return scanner.Err()
			}

			question := strings.TrimSpace(scanner.Text())
			switch question {
			case "":
				continue
			case "exit", "quit":
				return nil
			}

			if err := ctx.Err(); err != nil {
				return err
			}
			if err := r.ask(ctx, s, rag, question, opts); err != nil {
				s.log.Warn("question failed", "question", question, "error", err)
				r.printf("error: %v\n", err)
			}
		}
	})
}
