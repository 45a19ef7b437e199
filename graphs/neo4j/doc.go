// Package neo4j provides a graphs.GraphStore for Neo4j servers.
//
// Queries run in managed transactions with read access unless write access is
// requested. Results are converted to plain Go values: nodes and relationships
// become property maps, temporal values become strings and, with sanitizing
// enabled, long lists such as embedding vectors are dropped.
//
// Example usage:
//
//	store, err := neo4j.NewNeo4j(ctx,
//		neo4j.WithURI("neo4j+s://demo.neo4jlabs.com"),
//		neo4j.WithAuth("recommendations", "recommendations"),
//		neo4j.WithDatabase("recommendations"),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
//	if err := store.VerifyConnectivity(ctx); err != nil {
//		log.Fatal(err)
//	}
//
//	res, err := store.Query(ctx,
//		"MATCH (p:Person {name: $name})-[:ACTED_IN]->(m:Movie) RETURN m.title AS title",
//		map[string]any{"name": "Hugo Weaving"},
//	)
package neo4j
