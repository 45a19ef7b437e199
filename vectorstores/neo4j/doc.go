// Package neo4j manages a Neo4j vector index and implements the langchaingo
// vectorstores.VectorStore interface on top of a graphs.GraphStore.
//
// By default the store targets the movie graph: Movie nodes whose plot is
// embedded into plotEmbedding and indexed as moviePlots. New creates the
// index when missing; EmbedNodes backfills embeddings for nodes that have a
// plot but no vector yet.
//
// Basic usage:
//
//	store, err := neo4j.New(ctx,
//		neo4j.WithGraphStore(graph),
//		neo4j.WithEmbedder(embedder),
//	)
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	n, err := store.EmbedNodes(ctx)
//
//	docs, err := store.SimilaritySearch(ctx, "Toys coming alive", 5)
//
// With WithHybridSearch(true) and WithSearchType(neo4j.SearchTypeHybrid) a
// fulltext index over the text property is created as well and search results
// are fused with reciprocal rank fusion.
package neo4j
