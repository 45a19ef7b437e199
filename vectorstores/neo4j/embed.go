package neo4j

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/genai-fundamentals/graphrag/graphs"
)

// EmbedNodes computes embeddings for nodes that have the text property but no
// embedding yet, batch by batch, and returns how many nodes were updated.
// Embedding requests within a batch run concurrently, bounded by WithConcurrency.
func (s *Store) EmbedNodes(ctx context.Context) (int, error) {
	if s.opts.embedder == nil {
		return 0, ErrEmbedderNotSet
	}

	label := graphs.EscapeIdentifier(s.opts.nodeLabel)
	text := graphs.EscapeIdentifier(s.opts.textProp)
	emb := graphs.EscapeIdentifier(s.opts.embeddingProp)

	pending := fmt.Sprintf(`MATCH (n:%s)
WHERE n.%s IS NOT NULL AND n.%s IS NULL
RETURN elementId(n) AS id, n.%s AS text
LIMIT $batch_size`, label, text, emb, text)

	update := fmt.Sprintf(`UNWIND $rows AS row
MATCH (n:%s) WHERE elementId(n) = row.id
SET n.%s = row.embedding
RETURN count(n) AS updated`, label, emb)

	total := 0
	for {
		res, err := s.store.Query(ctx, pending, map[string]any{"batch_size": s.opts.batchSize})
		if err != nil {
			return total, fmt.Errorf("failed to read nodes to embed: %w", err)
		}
		if res.Len() == 0 {
			return total, nil
		}

		ids := make([]any, res.Len())
		texts := make([]string, res.Len())
		for i, rec := range res.Records {
			ids[i], _ = rec.Get("id")
			v, _ := rec.Get("text")
			texts[i] = graphs.FormatValue(v)
		}

		vectors, err := s.embedConcurrently(ctx, texts)
		if err != nil {
			return total, err
		}

		rows := make([]map[string]any, len(ids))
		for i := range ids {
			rows[i] = map[string]any{"id": ids[i], "embedding": toFloat64(vectors[i])}
		}
		out, err := s.store.Query(ctx, update, map[string]any{"rows": rows}, graphs.WithWrite(true))
		if err != nil {
			return total, fmt.Errorf("failed to store embeddings: %w", err)
		}

		updated := 0
		if out.Len() > 0 {
			if n, ok := out.Records[0].Get("updated"); ok {
				if c, ok := n.(int64); ok {
					updated = int(c)
				}
			}
		}
		if updated == 0 {
			return total, nil
		}
		total += updated
	}
}

// embedConcurrently splits texts into chunks and embeds them in parallel,
// keeping the input order.
func (s *Store) embedConcurrently(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	chunk := (len(texts) + s.opts.concurrency - 1) / s.opts.concurrency

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.concurrency)
	for start := 0; start < len(texts); start += chunk {
		end := min(start+chunk, len(texts))
		g.Go(func() error {
			out, err := s.opts.embedder.EmbedDocuments(gctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("failed to generate embeddings: %w", err)
			}
			if len(out) != end-start {
				return ErrEmbeddingVectorMismatch
			}
			copy(vectors[start:end], out)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}
