// Package generation answers questions from retrieved graph records.
//
// A Generator renders retrieved items into a context block, wraps it in a
// RAG prompt with a system instruction and returns the model output as is.
// GraphRAG sequences a retrievers.Retriever and a Generator:
//
//	rag, err := generation.New(retriever, llm)
//	if err != nil {
//		return err
//	}
//	resp, err := rag.Search(ctx, "Which movies did Hugo Weaving star in?",
//		generation.WithRetrieverOptions(retrievers.WithTopK(5)),
//		generation.WithReturnContext(true),
//	)
//
// The context block is a text/template with the sprig functions. A token
// budget (WithMaxContextTokens) drops the lowest ranked items first.
package generation
