package generation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/genai-fundamentals/graphrag/internal/testutil/llmtest"
	"github.com/genai-fundamentals/graphrag/retrievers"
)

func toyResult() *retrievers.Result {
	return &retrievers.Result{
		Items: []retrievers.Item{
			{Content: "{plot: A cowboy doll is threatened by a new spaceman figure., title: Toy Story}"},
			{Content: "{plot: Toys come alive when a toy company mixes military chips into dolls., title: Small Soldiers}"},
			{Content: "  {plot: A wooden puppet wants to be a real boy., title: Pinocchio}\n"},
		},
		Metadata: map[string]any{"retriever": "vector"},
	}
}

func TestGeneratorGenerate(t *testing.T) {
	ctx := context.Background()
	llm := llmtest.NewModel("Toy Story and Small Soldiers are about toys coming alive.")

	g, err := NewGenerator(llm)
	require.NoError(t, err)

	answer, err := g.Generate(ctx, "Find me movies about toys coming alive", toyResult(), "")
	require.NoError(t, err)
	assert.Equal(t, "Toy Story and Small Soldiers are about toys coming alive.", answer)

	msgs := llm.Messages()
	require.Len(t, msgs, 1)
	require.Len(t, msgs[0], 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, msgs[0][0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, msgs[0][1].Role)

	prompt := llm.Prompts()[0]
	assert.True(t, strings.HasPrefix(prompt, DefaultSystemInstruction+"\n"))
	assert.Contains(t, prompt, "Context:\n{plot: A cowboy doll")
	assert.Contains(t, prompt, "title: Small Soldiers}\n{plot: A wooden puppet")
	assert.Contains(t, prompt, "Question:\nFind me movies about toys coming alive")
	assert.True(t, strings.HasSuffix(prompt, "Answer:\n"))
}

func TestGeneratorReturnsAnswerVerbatim(t *testing.T) {
	raw := "  Hugo Weaving starred in The Matrix.\n\n"
	g, err := NewGenerator(llmtest.NewModel(raw))
	require.NoError(t, err)

	answer, err := g.Generate(context.Background(), "Which movies did Hugo Weaving star in?", nil, "")
	require.NoError(t, err)
	assert.Equal(t, raw, answer)
}

func TestGeneratorKeepsBlankAnswer(t *testing.T) {
	g, err := NewGenerator(llmtest.NewModel(" \n"))
	require.NoError(t, err)

	answer, err := g.Generate(context.Background(), "q", toyResult(), "")
	require.NoError(t, err)
	assert.Equal(t, " \n", answer)
}

func TestGeneratorFailures(t *testing.T) {
	ctx := context.Background()

	llm := llmtest.NewModel()
	llm.Err = errors.New("rate limit exceeded")
	g, err := NewGenerator(llm)
	require.NoError(t, err)
	_, err = g.Generate(ctx, "q", toyResult(), "")
	require.ErrorIs(t, err, ErrGeneration)
	require.ErrorIs(t, err, llm.Err)

	g, err = NewGenerator(llmtest.NewModel())
	require.NoError(t, err)
	_, err = g.Generate(ctx, "q", toyResult(), "")
	require.ErrorIs(t, err, ErrGeneration)

	_, err = NewGenerator(nil)
	require.ErrorIs(t, err, ErrMissingDependency)
}

func TestGeneratorOptions(t *testing.T) {
	llm := llmtest.NewModel("ok")
	g, err := NewGenerator(llm,
		WithSystemInstruction(""),
		WithContextTemplate(`{{ range .Items }}- {{ .Content | trim | upper }}{{ "\n" }}{{ end }}`),
		WithCallOptions(llms.WithModel("gpt-4o"), llms.WithTemperature(0.3)),
	)
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), "q", &retrievers.Result{Items: []retrievers.Item{{Content: "a"}, {Content: " b "}}}, "USER INPUT: x")
	require.NoError(t, err)

	require.Len(t, llm.Messages()[0], 1)
	prompt := llm.Prompts()[0]
	assert.Contains(t, prompt, "Context:\n- A\n- B\n")
	assert.Contains(t, prompt, "Examples:\nUSER INPUT: x")
	assert.Equal(t, "gpt-4o", llm.CallOptions()[0].Model)

	_, err = NewGenerator(llm, WithContextTemplate("{{ .Items "))
	require.ErrorIs(t, err, ErrInvalidTemplate)
}

func TestGeneratorContextTokenBudget(t *testing.T) {
	words := func(text string) int { return len(strings.Fields(text)) }

	g, err := NewGenerator(llmtest.NewModel("ok"),
		WithMaxContextTokens(8),
		WithTokenCounter(words),
	)
	require.NoError(t, err)

	res := &retrievers.Result{Items: []retrievers.Item{
		{Content: "one two three"},
		{Content: "four five six"},
		{Content: "seven eight nine"},
	}}
	text, err := g.Context("q", res)
	require.NoError(t, err)
	assert.Equal(t, "one two three\nfour five six", text)
	assert.Len(t, res.Items, 3, "result is not modified")

	g, err = NewGenerator(llmtest.NewModel("ok"), WithMaxContextTokens(1), WithTokenCounter(words))
	require.NoError(t, err)
	text, err = g.Context("q", res)
	require.NoError(t, err)
	assert.Empty(t, text)
}
