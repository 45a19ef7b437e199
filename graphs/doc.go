// Package graphs defines the contract shared by the Cypher-speaking graph
// stores used for retrieval.
//
// A GraphStore is one connection to a store. Query returns ordered records and
// an execution summary; schema introspection is rendered in the text layout
// that query-translation prompts expect.
//
// Use scopes a connection to a single unit of work:
//
//	err := graphs.Use(ctx, func(ctx context.Context) (graphs.GraphStore, error) {
//		return neo4j.New(ctx, neo4j.WithURI(uri), neo4j.WithAuth(user, password))
//	}, func(ctx context.Context, store graphs.GraphStore) error {
//		res, err := store.Query(ctx, "MATCH (m:Movie) RETURN m.title AS title LIMIT 5", nil)
//		if err != nil {
//			return err
//		}
//		for _, rec := range res.Records {
//			fmt.Println(rec)
//		}
//		return nil
//	})
//
// The store is closed exactly once whether the work succeeds, fails or panics.
package graphs
