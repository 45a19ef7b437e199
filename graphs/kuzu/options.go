package kuzu

import "time"

// Option defines functional options for KuzuDB configuration.
type Option func(*options)

// options contains configuration options for KuzuDB graph store.
type options struct {
	// Database path for file-based storage (empty for in-memory)
	databasePath string

	inMemory bool

	// Required: every query executed through the store is arbitrary Cypher,
	// possibly written by a language model.
	allowDangerousRequests bool

	timeout        time.Duration
	bufferPoolSize uint64
	maxNumThreads  uint64

	// Hide float list columns (embeddings) from the schema description.
	excludeEmbeddings bool
}

// applyDefaults sets default values for any unset options.
func applyDefaults(opts *options) {
	if opts.databasePath == "" && !opts.inMemory {
		opts.databasePath = "./kuzu_db"
	}

	if opts.timeout == 0 {
		opts.timeout = 30 * time.Second
	}

	if opts.bufferPoolSize == 0 {
		opts.bufferPoolSize = 256 * 1024 * 1024
	}

	if opts.maxNumThreads == 0 {
		opts.maxNumThreads = 4
	}
}

// WithDatabasePath sets the file path for the KuzuDB database.
// If not set, defaults to "./kuzu_db".
func WithDatabasePath(path string) Option {
	return func(opts *options) {
		opts.databasePath = path
		opts.inMemory = false
	}
}

// WithInMemory configures KuzuDB to run in-memory mode.
func WithInMemory(inMemory bool) Option {
	return func(opts *options) {
		opts.inMemory = inMemory
		if inMemory {
			opts.databasePath = ""
		}
	}
}

// WithAllowDangerousRequests acknowledges that the store executes arbitrary
// Cypher. NewKuzu fails without it.
func WithAllowDangerousRequests(allow bool) Option {
	return func(opts *options) {
		opts.allowDangerousRequests = allow
	}
}

// WithTimeout sets the query execution timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(opts *options) {
		opts.timeout = timeout
	}
}

// WithBufferPoolSize sets the buffer pool size in bytes.
func WithBufferPoolSize(size uint64) Option {
	return func(opts *options) {
		opts.bufferPoolSize = size
	}
}

// WithMaxNumThreads sets the maximum number of threads for query execution.
func WithMaxNumThreads(threads uint64) Option {
	return func(opts *options) {
		opts.maxNumThreads = threads
	}
}

// WithExcludeEmbeddings hides float list columns from the schema description.
func WithExcludeEmbeddings(exclude bool) Option {
	return func(opts *options) {
		opts.excludeEmbeddings = exclude
	}
}
