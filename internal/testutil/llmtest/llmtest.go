// Package llmtest provides scripted chat models and embedders for tests.
package llmtest

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/llms"
)

// ErrNoResponse is returned by Model when it runs out of scripted responses.
var ErrNoResponse = errors.New("llmtest: no scripted response left")

// Model is an llms.Model answering with scripted responses in order.
type Model struct {
	// Responses are returned one per call. The last one repeats once exhausted
	// unless Strict is set.
	Responses []string
	// Strict makes the model fail with ErrNoResponse once Responses run out.
	Strict bool
	// Err, when set, is returned by every call.
	Err error
	// Respond computes the response from the prompt text, overriding Responses.
	Respond func(prompt string) (string, error)

	mu       sync.Mutex
	prompts  []string
	messages [][]llms.MessageContent
	options  []llms.CallOptions
}

var _ llms.Model = (*Model)(nil)

// NewModel returns a model answering with responses in order.
func NewModel(responses ...string) *Model {
	return &Model{Responses: responses}
}

func (m *Model) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	var opts llms.CallOptions
	for _, opt := range options {
		opt(&opts)
	}
	prompt := promptText(messages)

	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.messages = append(m.messages, messages)
	m.options = append(m.options, opts)
	n := len(m.prompts)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	var content string
	switch {
	case m.Respond != nil:
		var err error
		content, err = m.Respond(prompt)
		if err != nil {
			return nil, err
		}
	case len(m.Responses) == 0:
		return &llms.ContentResponse{}, nil
	case n <= len(m.Responses):
		content = m.Responses[n-1]
	case m.Strict:
		return nil, ErrNoResponse
	default:
		content = m.Responses[len(m.Responses)-1]
	}

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: content, StopReason: "stop"}},
	}, nil
}

func (m *Model) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

// Prompts returns the text of every prompt received, system and human parts joined by newlines.
func (m *Model) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// Messages returns the raw messages of every call.
func (m *Model) Messages() [][]llms.MessageContent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]llms.MessageContent, len(m.messages))
	copy(out, m.messages)
	return out
}

// CallOptions returns the resolved call options of every call.
func (m *Model) CallOptions() []llms.CallOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]llms.CallOptions, len(m.options))
	copy(out, m.options)
	return out
}

// Calls returns the number of calls received.
func (m *Model) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

func promptText(messages []llms.MessageContent) string {
	var parts []string
	for _, msg := range messages {
		for _, p := range msg.Parts {
			if tc, ok := p.(llms.TextContent); ok {
				parts = append(parts, tc.Text)
			}
		}
	}
	return strings.Join(parts, "\n")
}

// Embedder is a deterministic embeddings.Embedder. Equal texts map to equal vectors.
type Embedder struct {
	Dimensions int
	Err        error
	// Vectors overrides the computed embedding for specific texts.
	Vectors map[string][]float32

	mu    sync.Mutex
	texts []string
}

// NewEmbedder returns an embedder producing vectors of the given size.
func NewEmbedder(dimensions int) *Embedder {
	return &Embedder{Dimensions: dimensions}
}

func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := e.EmbedQuery(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *Embedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.texts = append(e.texts, text)
	e.mu.Unlock()

	if e.Err != nil {
		return nil, e.Err
	}
	if v, ok := e.Vectors[text]; ok {
		return v, nil
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum32()

	v := make([]float32, e.Dimensions)
	for i := range v {
		seed = seed*1664525 + 1013904223
		v[i] = float32(seed%1000) / 1000
	}
	return v, nil
}

// Texts returns every text embedded so far.
func (e *Embedder) Texts() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.texts))
	copy(out, e.texts)
	return out
}
