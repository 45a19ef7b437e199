package generation

import (
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"
)

// DefaultTokenModel selects the tokenizer used for the context budget.
const DefaultTokenModel = "gpt-4o"

// Option configures a Generator.
type Option func(*options)

type options struct {
	systemInstruction string
	promptTemplate    prompts.PromptTemplate
	contextTemplate   string
	maxContextTokens  int
	tokenModel        string
	tokenCounter      TokenCounter
	callOptions       []llms.CallOption
}

func defaultOptions() *options {
	return &options{
		systemInstruction: DefaultSystemInstruction,
		promptTemplate: prompts.PromptTemplate{
			Template:       DefaultRAGTemplate,
			InputVariables: []string{"context", "examples", "query_text"},
			TemplateFormat: prompts.TemplateFormatFString,
		},
		contextTemplate: DefaultContextTemplate,
		tokenModel:      DefaultTokenModel,
	}
}

// WithSystemInstruction replaces the system message. An empty instruction sends none.
func WithSystemInstruction(instruction string) Option {
	return func(o *options) {
		o.systemInstruction = instruction
	}
}

// WithPromptTemplate overrides the user prompt. The template receives
// context, examples and query_text.
func WithPromptTemplate(tmpl prompts.PromptTemplate) Option {
	return func(o *options) {
		o.promptTemplate = tmpl
	}
}

// WithContextTemplate sets the text/template used to render retrieved items.
// Sprig functions are available; the data has Question, Items and Metadata.
func WithContextTemplate(text string) Option {
	return func(o *options) {
		o.contextTemplate = text
	}
}

// WithMaxContextTokens drops trailing items until the rendered context fits
// in n tokens. Zero disables the budget.
func WithMaxContextTokens(n int) Option {
	return func(o *options) {
		o.maxContextTokens = n
	}
}

// WithTokenModel names the model whose tokenizer counts context tokens.
func WithTokenModel(model string) Option {
	return func(o *options) {
		o.tokenModel = model
	}
}

// WithTokenCounter replaces the tiktoken counter.
func WithTokenCounter(counter TokenCounter) Option {
	return func(o *options) {
		o.tokenCounter = counter
	}
}

// WithCallOptions sets model parameters for answer generation.
func WithCallOptions(opts ...llms.CallOption) Option {
	return func(o *options) {
		o.callOptions = opts
	}
}
