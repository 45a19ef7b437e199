// Package kuzu provides a graph store implementation for KuzuDB.
//
// KuzuDB is an embedded graph database that speaks Cypher. The store runs
// in-process, in memory or on disk, which makes it a server-free target for
// query translation: a language model writes Cypher against the schema
// description and the store executes it.
//
// This package implements the graphs.GraphStore interface. Vector index search
// is not available on this backend.
//
// Example usage:
//
//	store, err := kuzu.NewKuzu(
//		kuzu.WithInMemory(true),
//		kuzu.WithAllowDangerousRequests(true),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
//	err = store.Exec(ctx,
//		"CREATE NODE TABLE Person(name STRING, born INT64, PRIMARY KEY(name))",
//		"CREATE NODE TABLE Movie(title STRING, released INT64, PRIMARY KEY(title))",
//		"CREATE REL TABLE ACTED_IN(FROM Person TO Movie, role STRING)",
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := store.RefreshSchema(ctx); err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(store.GetSchema())
//
// Security Note:
// Every query is arbitrary Cypher, possibly generated by a language model.
// WithAllowDangerousRequests(true) is required to acknowledge that. Queries
// are rejected when they contain write clauses unless graphs.WithWrite(true)
// is passed.
package kuzu
