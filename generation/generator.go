package generation

import (
	"context"
	"fmt"
	"text/template"

	"github.com/tmc/langchaingo/llms"

	"github.com/genai-fundamentals/graphrag/retrievers"
)

// Generator turns a question and retrieved items into an answer.
type Generator struct {
	llm     llms.Model
	context *template.Template
	opts    *options
}

// NewGenerator creates a Generator answering with llm.
func NewGenerator(llm llms.Model, opts ...Option) (*Generator, error) {
	if llm == nil {
		return nil, fmt.Errorf("%w: language model", ErrMissingDependency)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	tmpl, err := parseContextTemplate(o.contextTemplate)
	if err != nil {
		return nil, err
	}

	if o.maxContextTokens > 0 && o.tokenCounter == nil {
		counter, err := NewTokenCounter(o.tokenModel)
		if err != nil {
			return nil, err
		}
		o.tokenCounter = counter
	}

	return &Generator{llm: llm, context: tmpl, opts: o}, nil
}

// Generate answers question from result. The model output is returned
// verbatim, blank answers included; a failed call or a response without
// choices yields ErrGeneration.
func (g *Generator) Generate(ctx context.Context, question string, result *retrievers.Result, examples string) (string, error) {
	prompt, err := g.Prompt(question, result, examples)
	if err != nil {
		return "", err
	}

	messages := make([]llms.MessageContent, 0, 2)
	if g.opts.systemInstruction != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, g.opts.systemInstruction))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, prompt))

	resp, err := g.llm.GenerateContent(ctx, messages, g.opts.callOptions...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response from model", ErrGeneration)
	}

	return resp.Choices[0].Content, nil
}

// Prompt builds the user prompt sent to the model.
func (g *Generator) Prompt(question string, result *retrievers.Result, examples string) (string, error) {
	contextText, err := g.Context(question, result)
	if err != nil {
		return "", err
	}

	prompt, err := g.opts.promptTemplate.Format(map[string]any{
		"context":    contextText,
		"examples":   examples,
		"query_text": question,
	})
	if err != nil {
		return "", fmt.Errorf("failed to format prompt: %w", err)
	}
	return prompt, nil
}

// Context renders the retrieved items, dropping trailing ones while the
// token budget is exceeded.
func (g *Generator) Context(question string, result *retrievers.Result) (string, error) {
	data := contextData{Question: question}
	if result != nil {
		data.Items = result.Items
		data.Metadata = result.Metadata
	}

	for {
		text, err := renderContext(g.context, data)
		if err != nil {
			return "", err
		}
		if g.opts.maxContextTokens <= 0 || len(data.Items) == 0 ||
			g.opts.tokenCounter(text) <= g.opts.maxContextTokens {
			return text, nil
		}
		data.Items = data.Items[:len(data.Items)-1]
	}
}
