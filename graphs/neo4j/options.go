package neo4j

import (
	"errors"
	"time"
)

var (
	// ErrMissingURI is returned when no connection URI is configured.
	ErrMissingURI = errors.New("neo4j uri is required")
	// ErrInvalidMaxListSize is returned for a non-positive list size limit.
	ErrInvalidMaxListSize = errors.New("max list size must be positive")
)

// DefaultMaxListSize is the longest numeric list kept in results when sanitizing.
// Embedding vectors are far longer and get dropped.
const DefaultMaxListSize = 128

// Option is a function type for configuring a Neo4j graph store.
type Option func(*options)

type options struct {
	uri               string
	username          string
	password          string
	database          string
	timeout           time.Duration
	sanitize          bool
	maxListSize       int
	refreshSchema     bool
	excludeEmbeddings bool
}

func defaultOptions() *options {
	return &options{
		uri:               "bolt://localhost:7687",
		username:          "neo4j",
		database:          "neo4j",
		sanitize:          true,
		maxListSize:       DefaultMaxListSize,
		excludeEmbeddings: true,
	}
}

func validateOptions(opts *options) error {
	if opts.uri == "" {
		return ErrMissingURI
	}
	if opts.sanitize && opts.maxListSize <= 0 {
		return ErrInvalidMaxListSize
	}
	return nil
}

// WithURI sets the connection URI, e.g. neo4j+s://demo.neo4jlabs.com.
func WithURI(uri string) Option {
	return func(o *options) {
		o.uri = uri
	}
}

// WithAuth sets basic authentication credentials.
func WithAuth(username, password string) Option {
	return func(o *options) {
		o.username = username
		o.password = password
	}
}

// WithDatabase sets the database name. An empty name selects the server default.
func WithDatabase(database string) Option {
	return func(o *options) {
		o.database = database
	}
}

// WithTimeout sets the default transaction timeout for queries.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithSanitize removes numeric lists longer than the max list size, such as
// embeddings, from query results. Other lists are kept whatever their length.
func WithSanitize(sanitize bool) Option {
	return func(o *options) {
		o.sanitize = sanitize
	}
}

// WithMaxListSize sets the longest numeric list kept when sanitizing.
func WithMaxListSize(size int) Option {
	return func(o *options) {
		o.maxListSize = size
	}
}

// WithRefreshSchema introspects the schema while constructing the store.
func WithRefreshSchema(refresh bool) Option {
	return func(o *options) {
		o.refreshSchema = refresh
	}
}

// WithExcludeEmbeddings hides float list properties from the schema.
func WithExcludeEmbeddings(exclude bool) Option {
	return func(o *options) {
		o.excludeEmbeddings = exclude
	}
}
