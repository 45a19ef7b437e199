// Package config loads program configuration from the environment, an
// optional .env file and an optional pipeline YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds everything a run needs. It is built once and passed down.
type Config struct {
	Neo4j    Neo4jConfig
	OpenAI   OpenAIConfig
	Pipeline PipelineConfig
	Log      LogConfig
}

// Neo4jConfig describes the graph database connection.
type Neo4jConfig struct {
	URI      string
	Username string
	Password string
	Database string
	Timeout  time.Duration
}

// OpenAIConfig describes the model provider.
type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	EmbeddingModel string
}

// LogConfig selects the log format and level.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads .env when present, then the environment. A pipeline file named
// by GRAPHRAG_PIPELINE_FILE is merged over the defaults.
func Load() (*Config, error) {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg := &Config{
		Neo4j: Neo4jConfig{
			URI:      getEnv("NEO4J_URI", ""),
			Username: getEnv("NEO4J_USERNAME", "neo4j"),
			Password: getEnv("NEO4J_PASSWORD", ""),
			Database: getEnv("NEO4J_DATABASE", "neo4j"),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			BaseURL:        getEnv("OPENAI_BASE_URL", ""),
			ChatModel:      getEnv("OPENAI_CHAT_MODEL", DefaultChatModel),
			EmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", DefaultEmbeddingModel),
		},
		Pipeline: DefaultPipeline(),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "pretty"),
		},
	}
	cfg.Pipeline.IndexName = getEnv("GRAPHRAG_INDEX_NAME", cfg.Pipeline.IndexName)

	timeout, err := getEnvAsDuration("NEO4J_TIMEOUT", 0)
	if err != nil {
		return nil, err
	}
	cfg.Neo4j.Timeout = timeout

	topK, err := getEnvAsInt("GRAPHRAG_TOP_K", cfg.Pipeline.TopK)
	if err != nil {
		return nil, err
	}
	cfg.Pipeline.TopK = topK

	if path := getEnv("GRAPHRAG_PIPELINE_FILE", ""); path != "" {
		if err := cfg.Pipeline.LoadFile(path); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate reports every missing or malformed value at once.
func (c *Config) Validate() error {
	var problems []string
	if c.Neo4j.URI == "" {
		problems = append(problems, "NEO4J_URI is required")
	}
	if c.Neo4j.Username == "" {
		problems = append(problems, "NEO4J_USERNAME is required")
	}
	if c.Neo4j.Password == "" {
		problems = append(problems, "NEO4J_PASSWORD is required")
	}
	if c.OpenAI.APIKey == "" {
		problems = append(problems, "OPENAI_API_KEY is required")
	}
	if c.Pipeline.TopK <= 0 {
		problems = append(problems, "GRAPHRAG_TOP_K must be positive")
	}
	if c.Pipeline.IndexName == "" {
		problems = append(problems, "GRAPHRAG_INDEX_NAME is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer: %q", ErrInvalidConfig, key, valueStr)
	}
	return value, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a duration: %q", ErrInvalidConfig, key, valueStr)
	}
	return value, nil
}
