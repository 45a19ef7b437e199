package graphs

import (
	"context"
	"time"
)

// GraphStore defines the interface for Cypher-speaking graph database connections.
type GraphStore interface {
	// VerifyConnectivity checks that the store is reachable and accepts the configured credentials.
	VerifyConnectivity(ctx context.Context) error

	// Query executes a Cypher query against the store and returns its records.
	Query(ctx context.Context, query string, params map[string]any, options ...Option) (*Result, error)

	// RefreshSchema refreshes the schema information from the graph database.
	RefreshSchema(ctx context.Context) error

	// GetSchema returns the current schema as a string representation.
	GetSchema() string

	// GetStructuredSchema returns the structured schema information.
	GetStructuredSchema() map[string]any

	// Close closes the graph store connection.
	Close() error
}

// DefaultMaxRows caps the number of records a single query may return.
const DefaultMaxRows = 5000

// Option defines functional options for graph store queries.
type Option func(*Options)

// Options contains configuration options for graph store queries.
type Options struct {
	// Write runs the query with write access. Queries are read-only by default.
	Write bool
	// Timeout bounds the query execution. Zero means the store default.
	Timeout time.Duration
	// MaxRows caps the number of returned records. Zero or less disables the cap.
	MaxRows int
	// StrictSchema turns unknown label, relationship type and property
	// notifications into ErrUnknownSchemaReference.
	StrictSchema bool
}

// NewOptions create a new Options instance with default values.
func NewOptions() *Options {
	return &Options{
		Write:        false,
		Timeout:      0, // No timeout by default
		MaxRows:      DefaultMaxRows,
		StrictSchema: false,
	}
}

// WithWrite sets whether the query needs write access.
func WithWrite(write bool) Option {
	return func(opts *Options) {
		opts.Write = write
	}
}

// WithTimeout sets the query timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.Timeout = timeout
	}
}

// WithMaxRows sets the maximum number of records returned by a query.
func WithMaxRows(n int) Option {
	return func(opts *Options) {
		opts.MaxRows = n
	}
}

// WithStrictSchema makes references to unknown labels, relationship types or
// property keys fail the query instead of only producing a notification.
func WithStrictSchema(strict bool) Option {
	return func(opts *Options) {
		opts.StrictSchema = strict
	}
}
