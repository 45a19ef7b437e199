package retrievers

import (
	"context"
	"fmt"
	"strings"
)

// Kind identifies a retrieval strategy.
type Kind int

const (
	// KindVector embeds the question and returns the nearest indexed nodes.
	KindVector Kind = iota + 1
	// KindVectorCypher expands each nearest node with a Cypher retrieval query.
	KindVectorCypher
	// KindText2Cypher asks a language model to write the Cypher query.
	KindText2Cypher
)

func (k Kind) String() string {
	switch k {
	case KindVector:
		return "vector"
	case KindVectorCypher:
		return "vector-cypher"
	case KindText2Cypher:
		return "text2cypher"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind parses the String form of a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vector":
		return KindVector, nil
	case "vector-cypher", "vectorcypher":
		return KindVectorCypher, nil
	case "text2cypher":
		return KindText2Cypher, nil
	default:
		return 0, fmt.Errorf("unknown retriever kind %q", s)
	}
}

// Retriever returns the records relevant to a question.
type Retriever interface {
	// Search returns at most TopK items for query.
	Search(ctx context.Context, query string, options ...SearchOption) (*Result, error)
	// Kind reports the retrieval strategy.
	Kind() Kind
}

// Item is a single retrieved record.
type Item struct {
	Content  string
	Metadata map[string]any
}

// Result is the ordered output of a search plus request-level metadata, such
// as the Cypher executed by a Text2Cypher retriever.
type Result struct {
	Items    []Item
	Metadata map[string]any
}

// SearchOption configures a single search.
type SearchOption func(*SearchOptions)

// SearchOptions holds per-search settings.
type SearchOptions struct {
	// TopK caps the number of items. Zero selects the retriever default.
	TopK int
	// QueryParams are extra Cypher parameters, e.g. for a retrieval query.
	QueryParams map[string]any
}

// WithTopK sets the maximum number of items returned.
func WithTopK(k int) SearchOption {
	return func(o *SearchOptions) {
		o.TopK = k
	}
}

// WithQueryParams passes extra parameters to the executed Cypher.
func WithQueryParams(params map[string]any) SearchOption {
	return func(o *SearchOptions) {
		o.QueryParams = params
	}
}

func searchOptions(options []SearchOption) (*SearchOptions, error) {
	opts := &SearchOptions{}
	for _, opt := range options {
		opt(opts)
	}
	if opts.TopK < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTopK, opts.TopK)
	}
	return opts, nil
}

// mergeParams combines user parameters with reserved ones. Reserved names win.
func mergeParams(user, reserved map[string]any) map[string]any {
	out := make(map[string]any, len(user)+len(reserved))
	for k, v := range user {
		out[k] = v
	}
	for k, v := range reserved {
		out[k] = v
	}
	return out
}
