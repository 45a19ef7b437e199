// Package retrievers fetches graph records relevant to a natural-language
// question.
//
// Three strategies share the Retriever interface:
//
//   - Vector embeds the question and queries a Neo4j vector index.
//   - VectorCypher does the same and expands every match with a Cypher
//     retrieval query that receives the matched node and its score.
//   - Text2Cypher asks a language model to write Cypher from a schema
//     description and examples, then executes it read-only.
//
// Every Search returns at most TopK items. Vector results are ordered by
// decreasing similarity score. A Text2Cypher result always carries the
// executed statement in Result.Metadata["cypher"], and a statement the store
// rejects surfaces as a *TranslationError holding that statement.
//
// Example usage:
//
//	retriever, err := retrievers.NewVectorCypher(ctx, store, embedder, "moviePlots", retrievalQuery,
//		retrievers.WithScoreKey("similarityScore"),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := retriever.Search(ctx, "Find me movies about toys coming alive", retrievers.WithTopK(5))
package retrievers
