package retrievers

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/genai-fundamentals/graphrag/graphs"
)

// DefaultText2CypherTemplate is the prompt used to translate a question into
// Cypher. It receives schema, examples and query_text.
const DefaultText2CypherTemplate = `Task: Generate a Cypher statement for querying a Neo4j graph database from a user input.

Schema:
{schema}

Examples (optional):
{examples}

Input:
{query_text}

Do not use any properties or relationships not included in the schema.
Do not include triple backticks or any additional text except the generated Cypher statement in your response.

Cypher query:
`

// Text2Cypher asks a language model to write a Cypher query for the question
// and returns the rows it produces.
type Text2Cypher struct {
	store  graphs.GraphStore
	llm    llms.Model
	schema string
	opts   *options
}

var _ Retriever = (*Text2Cypher)(nil)

// NewText2Cypher creates a Text2Cypher retriever. Without WithSchema the
// schema is introspected from the store once, here.
func NewText2Cypher(ctx context.Context, store graphs.GraphStore, llm llms.Model, opts ...Option) (*Text2Cypher, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: graph store", ErrMissingDependency)
	}
	if llm == nil {
		return nil, fmt.Errorf("%w: language model", ErrMissingDependency)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	schema := o.schema
	if schema == "" {
		if err := store.RefreshSchema(ctx); err != nil {
			return nil, fmt.Errorf("%w: failed to refresh schema: %w", ErrRetrieval, err)
		}
		schema = store.GetSchema()
	}

	return &Text2Cypher{store: store, llm: llm, schema: schema, opts: o}, nil
}

// Kind returns KindText2Cypher.
func (t *Text2Cypher) Kind() Kind { return KindText2Cypher }

// Search generates Cypher for query, executes it read-only and returns the
// rows. Result.Metadata["cypher"] holds the executed statement. Rows are only
// truncated when WithTopK is given.
func (t *Text2Cypher) Search(ctx context.Context, query string, options ...SearchOption) (*Result, error) {
	opts, err := searchOptions(options)
	if err != nil {
		return nil, err
	}

	cypher, err := t.Translate(ctx, query)
	if err != nil {
		return nil, err
	}

	res, err := t.store.Query(ctx, cypher, opts.QueryParams)
	if err != nil {
		return nil, &TranslationError{Question: query, Cypher: cypher, Err: err}
	}

	records := res.Records
	if opts.TopK > 0 && len(records) > opts.TopK {
		records = records[:opts.TopK]
	}
	items := make([]Item, len(records))
	for i, rec := range records {
		if t.opts.resultFormatter != nil {
			items[i] = t.opts.resultFormatter(rec)
		} else {
			items[i] = recordItem(rec)
		}
	}

	return &Result{
		Items: items,
		Metadata: map[string]any{
			"retriever": KindText2Cypher.String(),
			"cypher":    cypher,
		},
	}, nil
}

// Translate returns the Cypher the model writes for query, without running it.
func (t *Text2Cypher) Translate(ctx context.Context, query string) (string, error) {
	prompt, err := t.opts.promptTemplate.Format(map[string]any{
		"schema":     t.schema,
		"examples":   strings.Join(t.opts.examples, "\n"),
		"query_text": query,
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to format prompt: %w", ErrTranslation, err)
	}

	completion, err := llms.GenerateFromSinglePrompt(ctx, t.llm, prompt, t.opts.callOptions...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranslation, err)
	}

	cypher := CleanCypher(completion)
	if cypher == "" {
		return "", fmt.Errorf("%w: model returned no cypher", ErrTranslation)
	}
	return cypher, nil
}

var codeFence = regexp.MustCompile("(?s)```(?:[a-zA-Z]*)\\s*\\n?(.*?)```")

// CleanCypher extracts a Cypher statement from model output: code fences,
// a leading "cypher" tag and trailing semicolons are removed.
func CleanCypher(s string) string {
	s = strings.TrimSpace(s)
	if m := codeFence.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	s = strings.TrimSpace(s)
	if len(s) > 1 && s[0] == '`' && s[len(s)-1] == '`' && strings.Count(s, "`") == 2 {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if len(s) > 6 && strings.EqualFold(s[:6], "cypher") && (s[6] == ' ' || s[6] == '\n' || s[6] == ':') {
		s = strings.TrimSpace(strings.TrimPrefix(s[6:], ":"))
	}
	return strings.TrimSpace(strings.TrimRight(s, "; \n\t"))
}
