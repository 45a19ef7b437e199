package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func TestPrettyHandlerHandle(t *testing.T) {
	ctx := context.Background()

	t.Run("level message and attributes", func(t *testing.T) {
		var buf bytes.Buffer
		h := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		r := slog.NewRecord(time.Date(2024, 5, 1, 9, 30, 15, 123e6, time.UTC), slog.LevelInfo, "retriever ready", 0)
		r.AddAttrs(slog.String("kind", "vector"), slog.Int("top_k", 5))
		require.NoError(t, h.Handle(ctx, r))

		assert.Equal(t, "[09:30:15.123] INFO: retriever ready {\"kind\":\"vector\",\"top_k\":5}\n", buf.String())
	})

	t.Run("no attributes", func(t *testing.T) {
		var buf bytes.Buffer
		h := NewPrettyHandler(&buf, PrettyHandlerOptions{})
		require.NoError(t, h.Handle(ctx, slog.NewRecord(time.Now(), slog.LevelWarn, "simple", 0)))
		assert.Contains(t, buf.String(), "WARN: simple {}")
	})

	t.Run("errors are rendered as strings", func(t *testing.T) {
		var buf bytes.Buffer
		h := NewPrettyHandler(&buf, PrettyHandlerOptions{})
		r := slog.NewRecord(time.Now(), slog.LevelError, "search failed", 0)
		r.AddAttrs(slog.Any("error", errors.New("index offline")))
		require.NoError(t, h.Handle(ctx, r))
		assert.Contains(t, buf.String(), `ERROR: search failed {"error":"index offline"}`)
	})
}

func TestPrettyHandlerWithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewPrettyHandler(&buf, PrettyHandlerOptions{}))

	logger.With("run_id", "abc").WithGroup("neo4j").Info("connectivity verified", "uri", "bolt://localhost:7687")
	assert.Contains(t, buf.String(), `INFO: connectivity verified {"neo4j.uri":"bolt://localhost:7687","run_id":"abc"}`)
}

func TestPrettyHandlerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, FormatPretty, "warn")

	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "JSON", "debug").Debug("embedder ready", "model", "text-embedding-ada-002")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "DEBUG", line["level"])
	assert.Equal(t, "embedder ready", line["msg"])
	assert.Equal(t, "text-embedding-ada-002", line["model"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}
