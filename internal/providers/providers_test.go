package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genai-fundamentals/graphrag/internal/config"
)

func testConfig() config.OpenAIConfig {
	return config.OpenAIConfig{
		APIKey:         "sk-test",
		BaseURL:        "http://127.0.0.1:1/v1",
		ChatModel:      config.DefaultChatModel,
		EmbeddingModel: config.DefaultEmbeddingModel,
	}
}

func TestNewChatModel(t *testing.T) {
	llm, err := NewChatModel(testConfig(), "")
	require.NoError(t, err)
	assert.NotNil(t, llm)

	llm, err = NewChatModel(testConfig(), "gpt-4o-mini")
	require.NoError(t, err)
	assert.NotNil(t, llm)
}

func TestNewEmbedder(t *testing.T) {
	embedder, err := NewEmbedder(testConfig())
	require.NoError(t, err)
	assert.NotNil(t, embedder)
}

func TestMissingToken(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfg := testConfig()
	cfg.APIKey = ""

	_, err := NewChatModel(cfg, "")
	require.Error(t, err)
	_, err = NewEmbedder(cfg)
	require.Error(t, err)
}
