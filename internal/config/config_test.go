package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for _, key := range []string{
		"NEO4J_URI", "NEO4J_USERNAME", "NEO4J_PASSWORD", "NEO4J_DATABASE", "NEO4J_TIMEOUT",
		"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_CHAT_MODEL", "OPENAI_EMBEDDING_MODEL",
		"GRAPHRAG_INDEX_NAME", "GRAPHRAG_TOP_K", "GRAPHRAG_PIPELINE_FILE", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, kv[key])
	}
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	setEnv(t, map[string]string{
		"NEO4J_URI":      "neo4j://localhost:7687",
		"NEO4J_PASSWORD": "secret",
		"OPENAI_API_KEY": "sk-test",
	})

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "neo4j", cfg.Neo4j.Username)
	assert.Equal(t, "neo4j", cfg.Neo4j.Database)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.ChatModel)
	assert.Equal(t, "text-embedding-ada-002", cfg.OpenAI.EmbeddingModel)
	assert.Equal(t, "moviePlots", cfg.Pipeline.IndexName)
	assert.Equal(t, 5, cfg.Pipeline.TopK)
	assert.Equal(t, []string{"title", "plot"}, cfg.Pipeline.ReturnProperties)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "pretty", cfg.Log.Format)
}

func TestLoadOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	setEnv(t, map[string]string{
		"NEO4J_URI":           "bolt://db:7687",
		"NEO4J_PASSWORD":      "secret",
		"NEO4J_TIMEOUT":       "30s",
		"OPENAI_API_KEY":      "sk-test",
		"OPENAI_CHAT_MODEL":   "gpt-4o-mini",
		"GRAPHRAG_INDEX_NAME": "plots",
		"GRAPHRAG_TOP_K":      "3",
		"LOG_FORMAT":          "json",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Neo4j.Timeout)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.ChatModel)
	assert.Equal(t, "plots", cfg.Pipeline.IndexName)
	assert.Equal(t, 3, cfg.Pipeline.TopK)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	setEnv(t, nil)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("NEO4J_URI=neo4j://from-dotenv:7687\nNEO4J_PASSWORD=pw\nOPENAI_API_KEY=sk-env\n"), 0o600))
	// godotenv does not override variables that are already set, even when empty.
	for _, key := range []string{"NEO4J_URI", "NEO4J_PASSWORD", "OPENAI_API_KEY"} {
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "neo4j://from-dotenv:7687", cfg.Neo4j.URI)
	assert.Equal(t, "sk-env", cfg.OpenAI.APIKey)
}

func TestLoadInvalidValues(t *testing.T) {
	chdir(t, t.TempDir())

	setEnv(t, map[string]string{"GRAPHRAG_TOP_K": "five"})
	_, err := Load()
	require.ErrorIs(t, err, ErrInvalidConfig)

	setEnv(t, map[string]string{"NEO4J_TIMEOUT": "soon"})
	_, err = Load()
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Pipeline: DefaultPipeline()}
	cfg.Pipeline.TopK = 0

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	for _, want := range []string{"NEO4J_URI", "NEO4J_USERNAME", "NEO4J_PASSWORD", "OPENAI_API_KEY", "GRAPHRAG_TOP_K"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestPipelineLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
topK: 3
returnProperties: [title]
examples:
  - "USER INPUT: 'Who directed The Matrix?' QUERY: MATCH (p:Person)-[:DIRECTED]->(m:Movie {title: 'The Matrix'}) RETURN p.name"
questions:
  text2cypher: Who directed The Matrix?
maxContextTokens: 2000
`), 0o600))

	p := DefaultPipeline()
	require.NoError(t, p.LoadFile(path))

	assert.Equal(t, 3, p.TopK)
	assert.Equal(t, []string{"title"}, p.ReturnProperties)
	assert.Len(t, p.Examples, 1)
	assert.Contains(t, p.Examples[0], "DIRECTED")
	assert.Equal(t, "Who directed The Matrix?", p.Questions.Text2Cypher)
	assert.Equal(t, 2000, p.MaxContextTokens)
	assert.Equal(t, "moviePlots", p.IndexName)
	assert.Equal(t, DefaultRetrievalQuery, p.RetrievalQuery)
	assert.Equal(t, "Toys coming alive", p.Questions.Vector, "unset nested fields keep defaults")
}

func TestPipelineLoadFileErrors(t *testing.T) {
	p := DefaultPipeline()
	require.Error(t, p.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("topK: 3\nunknownField: true\n"), 0o600))
	require.ErrorIs(t, p.LoadFile(path), ErrInvalidConfig)
}
