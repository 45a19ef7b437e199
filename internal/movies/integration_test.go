package movies

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genai-fundamentals/graphrag/graphs"
	neo4jgraph "github.com/genai-fundamentals/graphrag/graphs/neo4j"
	"github.com/genai-fundamentals/graphrag/internal/config"
	"github.com/genai-fundamentals/graphrag/internal/logging"
	"github.com/genai-fundamentals/graphrag/internal/testutil/llmtest"
	"github.com/genai-fundamentals/graphrag/internal/testutil/testctr"
	"github.com/genai-fundamentals/graphrag/retrievers"
)

const movieSeed = `CREATE (toy:Movie {title: 'Toy Story', released: 1995, plot: 'A cowboy doll is threatened when a new spaceman figure becomes the top toy.'})
CREATE (matrix:Movie {title: 'The Matrix', released: 1999, plot: 'A hacker learns the world is a simulation run by machines.'})
CREATE (vendetta:Movie {title: 'V for Vendetta', released: 2006, plot: 'A masked freedom fighter wages war on a fascist regime.'})
CREATE (hugo:Person {name: 'Hugo Weaving', born: 1960})
CREATE (tom:Person {name: 'Tom Hanks', born: 1956})
CREATE (anim:Genre {name: 'Animation'})
CREATE (action:Genre {name: 'Action'})
CREATE (alice:User {name: 'Alice'})
CREATE (bob:User {name: 'Bob'})
CREATE (tom)-[:ACTED_IN {role: 'Woody'}]->(toy)
CREATE (hugo)-[:ACTED_IN {role: 'Agent Smith'}]->(matrix)
CREATE (hugo)-[:ACTED_IN {role: 'V'}]->(vendetta)
CREATE (toy)-[:IN_GENRE]->(anim)
CREATE (matrix)-[:IN_GENRE]->(action)
CREATE (vendetta)-[:IN_GENRE]->(action)
CREATE (alice)-[:RATED {rating: 5}]->(toy)
CREATE (bob)-[:RATED {rating: 4}]->(toy)
CREATE (alice)-[:RATED {rating: 5}]->(matrix)
CREATE (bob)-[:RATED {rating: 3}]->(vendetta)`

func TestIntegrationMovies(t *testing.T) {
	if os.Getenv("NEO4J_URL") != "" {
		t.Skip("writes Movie nodes and the moviePlots index; only runs against a throwaway container")
	}
	db := testctr.SetupNeo4j(t)
	ctx := context.Background()

	open := func(ctx context.Context) (graphs.GraphStore, error) {
		return neo4jgraph.NewNeo4j(ctx,
			neo4jgraph.WithURI(db.URI),
			neo4jgraph.WithAuth(db.Username, db.Password),
		)
	}

	seed, err := open(ctx)
	require.NoError(t, err)
	_, err = seed.Query(ctx, movieSeed, nil, graphs.WithWrite(true))
	require.NoError(t, err)
	require.NoError(t, seed.Close())

	pipeline := config.DefaultPipeline()
	pipeline.Dimensions = testDims

	var logs, out bytes.Buffer
	answer := llmtest.NewModel("Toy Story")
	runner := &Runner{
		Pipeline:  pipeline,
		Open:      open,
		Embedder:  llmtest.NewEmbedder(testDims),
		CypherLLM: llmtest.NewModel("```cypher\nMATCH (p:Person {name: 'Hugo Weaving'})-[:ACTED_IN]->(m:Movie) RETURN m.title AS title ORDER BY title\n```"),
		AnswerLLM: answer,
		Logger:    logging.New(&logs, logging.FormatJSON, "debug"),
		Out:       &out,
	}

	t.Run("index", func(t *testing.T) {
		out.Reset()
		require.NoError(t, runner.Index(ctx))
		assert.Contains(t, out.String(), "index: moviePlots\n")
		assert.Contains(t, out.String(), "state: ONLINE\n")
		assert.Contains(t, out.String(), "embedded: 3\n")
	})

	t.Run("vector", func(t *testing.T) {
		out.Reset()
		question := "A cowboy doll is threatened when a new spaceman figure becomes the top toy."
		require.NoError(t, runner.Retrieve(ctx, retrievers.KindVector, question, AskOptions{TopK: 1}))
		assert.Contains(t, out.String(), "title: Toy Story")
		assert.NotContains(t, out.String(), "The Matrix")
		assert.NotContains(t, out.String(), "plotEmbedding")
	})

	t.Run("vector cypher", func(t *testing.T) {
		out.Reset()
		require.NoError(t, runner.Ask(ctx, retrievers.KindVectorCypher, "", AskOptions{ReturnContext: true}))
		assert.Contains(t, out.String(), "Answer:\nToy Story\n")
		assert.Contains(t, out.String(), "CONTEXT:\n")
		assert.Contains(t, out.String(), "userRating: ")
		assert.Contains(t, out.String(), "actors: [Tom Hanks]")
	})

	t.Run("text2cypher", func(t *testing.T) {
		out.Reset()
		require.NoError(t, runner.Ask(ctx, retrievers.KindText2Cypher, "", AskOptions{ReturnContext: true}))
		assert.Contains(t, out.String(), "CYPHER :\nMATCH (p:Person {name: 'Hugo Weaving'})")
		assert.Contains(t, out.String(), "CONTEXT:\ntitle: The Matrix\ntitle: V for Vendetta\n")
	})

	t.Run("schema", func(t *testing.T) {
		out.Reset()
		require.NoError(t, runner.Schema(ctx))
		assert.Contains(t, out.String(), "(:Person)-[:ACTED_IN]->(:Movie)")
		assert.Contains(t, out.String(), "(:User)-[:RATED]->(:Movie)")
	})
}
