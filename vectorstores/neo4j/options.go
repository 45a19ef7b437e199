package neo4j

import (
	"github.com/tmc/langchaingo/embeddings"

	"github.com/genai-fundamentals/graphrag/graphs"
)

// Search types accepted by WithSearchType.
const (
	SearchTypeVector = "vector"
	SearchTypeHybrid = "hybrid"
)

// Option is a function type for configuring a Neo4j vector store.
type Option func(*options)

// options contains the configuration for the Neo4j vector store.
type options struct {
	store            graphs.GraphStore
	connectionURL    string
	username         string
	password         string
	database         string
	embedder         embeddings.Embedder
	indexName        string
	nodeLabel        string
	embeddingProp    string
	textProp         string
	metadataProp     string
	idProp           string
	dimensions       int
	similarityFunc   string
	createIndex      bool
	preDeleteIndex   bool
	searchType       string
	hybridSearch     bool
	keywordIndexName string
	rrfK             int
	batchSize        int
	concurrency      int
}

// defaultOptions returns defaults matching the movie graph: plots of Movie
// nodes embedded into plotEmbedding and indexed as moviePlots.
func defaultOptions() *options {
	return &options{
		connectionURL:    "bolt://localhost:7687",
		username:         "neo4j",
		password:         "password",
		database:         "neo4j",
		indexName:        "moviePlots",
		nodeLabel:        "Movie",
		embeddingProp:    "plotEmbedding",
		textProp:         "plot",
		metadataProp:     "metadata",
		idProp:           "id",
		dimensions:       1536, // text-embedding-ada-002
		similarityFunc:   "cosine",
		createIndex:      true,
		searchType:       SearchTypeVector,
		keywordIndexName: "moviePlotsFulltext",
		rrfK:             60,
		batchSize:        100,
		concurrency:      4,
	}
}

// WithGraphStore runs all queries through an existing store. The vector
// store does not close it.
func WithGraphStore(store graphs.GraphStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithConnectionURL sets the Neo4j connection URL.
func WithConnectionURL(url string) Option {
	return func(o *options) {
		o.connectionURL = url
	}
}

// WithCredentials sets the Neo4j authentication credentials.
func WithCredentials(username, password string) Option {
	return func(o *options) {
		o.username = username
		o.password = password
	}
}

// WithDatabase sets the Neo4j database name.
func WithDatabase(database string) Option {
	return func(o *options) {
		o.database = database
	}
}

// WithEmbedder sets the embeddings provider.
func WithEmbedder(embedder embeddings.Embedder) Option {
	return func(o *options) {
		o.embedder = embedder
	}
}

// WithIndexName sets the name of the vector index.
func WithIndexName(name string) Option {
	return func(o *options) {
		o.indexName = name
	}
}

// WithNodeLabel sets the label of embedded nodes.
func WithNodeLabel(label string) Option {
	return func(o *options) {
		o.nodeLabel = label
	}
}

// WithEmbeddingProperty sets the property name for storing embeddings.
func WithEmbeddingProperty(prop string) Option {
	return func(o *options) {
		o.embeddingProp = prop
	}
}

// WithTextProperty sets the property holding the embedded text.
func WithTextProperty(prop string) Option {
	return func(o *options) {
		o.textProp = prop
	}
}

// WithMetadataProperty sets the property name for storing document metadata.
func WithMetadataProperty(prop string) Option {
	return func(o *options) {
		o.metadataProp = prop
	}
}

// WithIDProperty sets the property name for storing document IDs.
func WithIDProperty(prop string) Option {
	return func(o *options) {
		o.idProp = prop
	}
}

// WithDimensions sets the vector dimensions for the index.
func WithDimensions(dims int) Option {
	return func(o *options) {
		o.dimensions = dims
	}
}

// WithSimilarityFunction sets the similarity function (cosine or euclidean).
func WithSimilarityFunction(fn string) Option {
	return func(o *options) {
		o.similarityFunc = fn
	}
}

// WithCreateIndex controls whether to automatically create the vector index.
func WithCreateIndex(create bool) Option {
	return func(o *options) {
		o.createIndex = create
	}
}

// WithPreDeleteIndex controls whether to delete existing index before creating new one.
func WithPreDeleteIndex(preDelete bool) Option {
	return func(o *options) {
		o.preDeleteIndex = preDelete
	}
}

// WithSearchType sets the search type (vector, hybrid).
func WithSearchType(searchType string) Option {
	return func(o *options) {
		o.searchType = searchType
	}
}

// WithHybridSearch enables hybrid search combining vector and keyword search.
func WithHybridSearch(enable bool) Option {
	return func(o *options) {
		o.hybridSearch = enable
	}
}

// WithKeywordIndexName sets the name of the fulltext index for hybrid search.
func WithKeywordIndexName(name string) Option {
	return func(o *options) {
		o.keywordIndexName = name
	}
}

// WithRRFK sets the k constant of reciprocal rank fusion.
func WithRRFK(k int) Option {
	return func(o *options) {
		o.rrfK = k
	}
}

// WithBatchSize sets how many nodes EmbedNodes reads and writes per round trip.
func WithBatchSize(n int) Option {
	return func(o *options) {
		o.batchSize = n
	}
}

// WithConcurrency caps the number of embedding requests EmbedNodes runs at once.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}
