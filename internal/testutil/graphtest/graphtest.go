// Package graphtest provides an in-memory graphs.GraphStore for tests.
package graphtest

import (
	"context"
	"sync"

	"github.com/genai-fundamentals/graphrag/graphs"
)

// Call is a query received by a Store.
type Call struct {
	Query   string
	Params  map[string]any
	Options graphs.Options
}

// QueryFunc produces the result for a query.
type QueryFunc func(ctx context.Context, query string, params map[string]any, opts graphs.Options) (*graphs.Result, error)

// Store is a scripted graphs.GraphStore. It records every call and answers
// queries through OnQuery.
type Store struct {
	// OnQuery answers queries. A nil OnQuery returns an empty result.
	OnQuery QueryFunc
	// Schema is returned by GetSchema.
	Schema string
	// Structured is returned by GetStructuredSchema.
	Structured map[string]any

	VerifyErr  error
	RefreshErr error
	CloseErr   error

	mu           sync.Mutex
	calls        []Call
	closeCalls   int
	refreshCalls int
	verifyCalls  int
}

var _ graphs.GraphStore = (*Store)(nil)

// New returns a store answering queries with fn.
func New(fn QueryFunc) *Store {
	return &Store{OnQuery: fn}
}

func (s *Store) VerifyConnectivity(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifyCalls++
	if s.closeCalls > 0 {
		return graphs.ErrStoreClosed
	}
	return s.VerifyErr
}

func (s *Store) Query(ctx context.Context, query string, params map[string]any, options ...graphs.Option) (*graphs.Result, error) {
	opts := graphs.NewOptions()
	for _, opt := range options {
		opt(opts)
	}

	s.mu.Lock()
	if s.closeCalls > 0 {
		s.mu.Unlock()
		return nil, graphs.ErrStoreClosed
	}
	s.calls = append(s.calls, Call{Query: query, Params: params, Options: *opts})
	fn := s.OnQuery
	s.mu.Unlock()

	if fn == nil {
		return &graphs.Result{Summary: graphs.Summary{Query: query, Parameters: params}}, nil
	}
	res, err := fn(ctx, query, params, *opts)
	if res != nil {
		res.Summary.Query = query
		res.Summary.Parameters = params
	}
	return res, err
}

func (s *Store) RefreshSchema(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshCalls++
	return s.RefreshErr
}

func (s *Store) GetSchema() string { return s.Schema }

func (s *Store) GetStructuredSchema() map[string]any { return s.Structured }

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeCalls++
	return s.CloseErr
}

// Calls returns the queries received so far.
func (s *Store) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CloseCalls returns how many times Close was called.
func (s *Store) CloseCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeCalls
}

// RefreshCalls returns how many times RefreshSchema was called.
func (s *Store) RefreshCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshCalls
}

// VerifyCalls returns how many times VerifyConnectivity was called.
func (s *Store) VerifyCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verifyCalls
}

// Rows builds a result with the given columns from rows of values.
func Rows(keys []string, rows ...[]any) *graphs.Result {
	res := &graphs.Result{Records: make([]graphs.Record, 0, len(rows))}
	for _, row := range rows {
		res.Records = append(res.Records, graphs.NewRecord(keys, row))
	}
	return res
}
