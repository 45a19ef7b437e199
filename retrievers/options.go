package retrievers

import (
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"

	"github.com/genai-fundamentals/graphrag/graphs"
)

// DefaultTopK is the number of items vector retrievers return when no
// WithTopK search option is given.
const DefaultTopK = 5

// ResultFormatter turns a store record into a retrieved item.
type ResultFormatter func(rec graphs.Record) Item

// Option configures a retriever at construction.
type Option func(*options)

type options struct {
	defaultTopK       int
	returnProperties  []string
	embeddingProperty string
	dimensions        int
	scoreKey          string
	strictSchema      bool
	schema            string
	examples          []string
	promptTemplate    prompts.PromptTemplate
	resultFormatter   ResultFormatter
	callOptions       []llms.CallOption
}

func defaultOptions() *options {
	return &options{
		defaultTopK:  DefaultTopK,
		scoreKey:     "score",
		strictSchema: true,
		promptTemplate: prompts.PromptTemplate{
			Template:       DefaultText2CypherTemplate,
			InputVariables: []string{"schema", "examples", "query_text"},
			TemplateFormat: prompts.TemplateFormatFString,
		},
		callOptions: []llms.CallOption{llms.WithTemperature(0)},
	}
}

// WithDefaultTopK sets the item limit used when a search passes no WithTopK.
func WithDefaultTopK(k int) Option {
	return func(o *options) {
		o.defaultTopK = k
	}
}

// WithReturnProperties restricts the node properties a vector search returns.
func WithReturnProperties(props ...string) Option {
	return func(o *options) {
		o.returnProperties = props
	}
}

// WithEmbeddingProperty names the embedding property left out of returned nodes
// when no return properties are set. By default it is read from the index.
func WithEmbeddingProperty(prop string) Option {
	return func(o *options) {
		o.embeddingProperty = prop
	}
}

// WithDimensions sets the expected embedding size. By default it is read from the index.
func WithDimensions(dims int) Option {
	return func(o *options) {
		o.dimensions = dims
	}
}

// WithScoreKey names the column VectorCypher results are ordered by.
func WithScoreKey(key string) Option {
	return func(o *options) {
		o.scoreKey = key
	}
}

// WithStrictSchema controls whether retrieval queries that reference unknown
// labels, relationship types or properties fail. Enabled by default.
func WithStrictSchema(strict bool) Option {
	return func(o *options) {
		o.strictSchema = strict
	}
}

// WithSchema sets the schema description used in Text2Cypher prompts instead
// of introspecting the store.
func WithSchema(schema string) Option {
	return func(o *options) {
		o.schema = schema
	}
}

// WithExamples sets question/query examples for Text2Cypher prompts.
func WithExamples(examples ...string) Option {
	return func(o *options) {
		o.examples = examples
	}
}

// WithPromptTemplate overrides the Text2Cypher prompt. The template receives
// schema, examples and query_text.
func WithPromptTemplate(tmpl prompts.PromptTemplate) Option {
	return func(o *options) {
		o.promptTemplate = tmpl
	}
}

// WithResultFormatter customizes how records become items.
func WithResultFormatter(f ResultFormatter) Option {
	return func(o *options) {
		o.resultFormatter = f
	}
}

// WithCallOptions sets model parameters for Cypher generation. Temperature 0 by default.
func WithCallOptions(opts ...llms.CallOption) Option {
	return func(o *options) {
		o.callOptions = opts
	}
}
