// Package providers builds the OpenAI chat models and embedder from configuration.
package providers

import (
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/genai-fundamentals/graphrag/internal/config"
)

func clientOptions(cfg config.OpenAIConfig, model string) []openai.Option {
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(model),
		openai.WithEmbeddingModel(cfg.EmbeddingModel),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	return opts
}

// NewChatModel returns a chat model. An empty model selects cfg.ChatModel.
func NewChatModel(cfg config.OpenAIConfig, model string) (*openai.LLM, error) {
	if model == "" {
		model = cfg.ChatModel
	}
	llm, err := openai.New(clientOptions(cfg, model)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI chat model: %w", err)
	}
	return llm, nil
}

// NewEmbedder returns an embedder using cfg.EmbeddingModel.
func NewEmbedder(cfg config.OpenAIConfig) (*embeddings.EmbedderImpl, error) {
	client, err := openai.New(clientOptions(cfg, cfg.ChatModel)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return embedder, nil
}
