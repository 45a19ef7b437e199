package config

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// Model defaults.
const (
	DefaultChatModel      = "gpt-4o"
	DefaultEmbeddingModel = "text-embedding-ada-002"
)

// DefaultRetrievalQuery expands each plot match with its genres, actors and
// average user rating.
const DefaultRetrievalQuery = `MATCH (node)<-[r:RATED]-()
RETURN
  node.title AS title, node.plot AS plot, score AS similarityScore,
  collect { MATCH (node)-[:IN_GENRE]->(g) RETURN g.name } as genres,
  collect { MATCH (node)<-[:ACTED_IN]-(p) RETURN p.name } as actors,
  avg(r.rating) as userRating
ORDER BY userRating DESC`

// DefaultSchema describes the movie graph for Text2Cypher prompts.
const DefaultSchema = `Node properties:
Person {name: STRING, born: INTEGER}
Movie {tagline: STRING, title: STRING, released: INTEGER}
Genre {name: STRING}
User {name: STRING}

Relationship properties:
ACTED_IN {role: STRING}
RATED {rating: INTEGER}

The relationships:
(:Person)-[:ACTED_IN]->(:Movie)
(:Person)-[:DIRECTED]->(:Movie)
(:User)-[:RATED]->(:Movie)
(:Movie)-[:IN_GENRE]->(:Genre)`

// DefaultExample shows the model the expected question/query shape.
const DefaultExample = "USER INPUT: 'Get user ratings for a movie?' QUERY: MATCH (u:User)-[r:RATED]->(m:Movie) WHERE m.title = 'Movie Title' RETURN r.rating"

// Questions holds the question each program asks.
type Questions struct {
	Vector       string `json:"vector"`
	VectorRAG    string `json:"vectorRag"`
	VectorCypher string `json:"vectorCypher"`
	Text2Cypher  string `json:"text2cypher"`
}

// PipelineConfig holds the retrieval and prompt settings of a run.
type PipelineConfig struct {
	IndexName        string    `json:"indexName"`
	Dimensions       int       `json:"dimensions"`
	TopK             int       `json:"topK"`
	ReturnProperties []string  `json:"returnProperties"`
	ScoreKey         string    `json:"scoreKey"`
	RetrievalQuery   string    `json:"retrievalQuery"`
	Schema           string    `json:"schema"`
	Examples         []string  `json:"examples"`
	Questions        Questions `json:"questions"`
	// MaxContextTokens bounds the context passed to the answer model. Zero disables it.
	MaxContextTokens int `json:"maxContextTokens"`
}

// DefaultPipeline returns the settings used against the movie graph.
func DefaultPipeline() PipelineConfig {
	return PipelineConfig{
		IndexName:        "moviePlots",
		Dimensions:       1536,
		TopK:             5,
		ReturnProperties: []string{"title", "plot"},
		ScoreKey:         "similarityScore",
		RetrievalQuery:   DefaultRetrievalQuery,
		Schema:           DefaultSchema,
		Examples:         []string{DefaultExample},
		Questions: Questions{
			Vector:       "Toys coming alive",
			VectorRAG:    "Find me movies about toys coming alive",
			VectorCypher: "Find the highest rated action movie about travelling to other planets",
			Text2Cypher:  "Which movies did Hugo Weaving star in?",
		},
	}
}

// LoadFile merges the YAML document at path over p. Fields absent from the
// document keep their current values.
func (p *PipelineConfig) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read pipeline file: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, p); err != nil {
		return fmt.Errorf("%w: pipeline file %s: %w", ErrInvalidConfig, path, err)
	}
	return nil
}
