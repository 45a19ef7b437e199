// Package cached wraps an embeddings.Embedder with an in-memory LRU cache.
// Interactive sessions embed the same question text repeatedly; cached
// vectors expire after a TTL.
package cached

import (
	"context"
	"errors"
	"fmt"
	"time"

	cache "github.com/Code-Hex/go-generics-cache"
	"github.com/Code-Hex/go-generics-cache/policy/lru"
	"github.com/tmc/langchaingo/embeddings"
)

const (
	// DefaultCapacity is the number of vectors kept.
	DefaultCapacity = 1024
	// DefaultTTL is how long a vector stays cached.
	DefaultTTL = time.Hour
)

// ErrMissingEmbedder is returned by New without an embedder.
var ErrMissingEmbedder = errors.New("cached: missing embedder")

// Option configures an Embedder.
type Option func(*options)

type options struct {
	capacity  int
	ttl       time.Duration
	namespace string
}

// WithCapacity sets the maximum number of cached vectors.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithTTL sets how long vectors stay cached. Zero keeps them until evicted.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.ttl = ttl
	}
}

// WithNamespace prefixes cache keys, e.g. with the embedding model name.
func WithNamespace(ns string) Option {
	return func(o *options) {
		o.namespace = ns
	}
}

// Embedder caches the vectors produced by another embedder.
type Embedder struct {
	embedder embeddings.Embedder
	cache    *cache.Cache[string, []float32]
	opts     options
}

var _ embeddings.Embedder = (*Embedder)(nil)

// New wraps e. The cache janitor stops when ctx is done.
func New(ctx context.Context, e embeddings.Embedder, opts ...Option) (*Embedder, error) {
	if e == nil {
		return nil, ErrMissingEmbedder
	}
	o := options{capacity: DefaultCapacity, ttl: DefaultTTL}
	for _, opt := range opts {
		opt(&o)
	}
	if o.capacity <= 0 {
		return nil, fmt.Errorf("cached: capacity must be positive, got %d", o.capacity)
	}

	c := cache.NewContext(ctx, cache.AsLRU[string, []float32](lru.WithCapacity(o.capacity)))
	return &Embedder{embedder: e, cache: c, opts: o}, nil
}

func (e *Embedder) key(text string) string {
	return e.opts.namespace + "\x00" + text
}

func (e *Embedder) set(text string, vec []float32) {
	var setOpts []cache.ItemOption
	if e.opts.ttl > 0 {
		setOpts = append(setOpts, cache.WithExpiration(e.opts.ttl))
	}
	e.cache.Set(e.key(text), clone(vec), setOpts...)
}

func (e *Embedder) get(text string) ([]float32, bool) {
	vec, ok := e.cache.Get(e.key(text))
	if !ok {
		return nil, false
	}
	return clone(vec), true
}

// EmbedQuery returns the cached vector for text or embeds it.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := e.get(text); ok {
		return vec, nil
	}
	vec, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	e.set(text, vec)
	return vec, nil
}

// EmbedDocuments embeds the texts that are not cached in a single call.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int
	for i, text := range texts {
		if vec, ok := e.get(text); ok {
			out[i] = vec
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	vecs, err := e.embedder.EmbedDocuments(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missing) {
		return nil, fmt.Errorf("cached: embedder returned %d vectors for %d texts", len(vecs), len(missing))
	}
	for j, vec := range vecs {
		out[missingIdx[j]] = vec
		e.set(missing[j], vec)
	}
	return out, nil
}

// Len returns the number of cached vectors.
func (e *Embedder) Len() int {
	return len(e.cache.Keys())
}

func clone(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
