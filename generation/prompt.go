package generation

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/genai-fundamentals/graphrag/retrievers"
)

// DefaultSystemInstruction is sent as the system message of every generation.
const DefaultSystemInstruction = "Answer the user question using the provided context."

// DefaultRAGTemplate is the user prompt. It receives context, examples and query_text.
const DefaultRAGTemplate = `Context:
{context}

Examples:
{examples}

Question:
{query_text}

Answer:
`

// DefaultContextTemplate renders retrieved items, one per line. It is a
// text/template with the sprig function map, executed over contextData.
const DefaultContextTemplate = `{{- range $i, $item := .Items }}{{ if $i }}{{ "\n" }}{{ end }}{{ $item.Content | trim }}{{ end }}`

type contextData struct {
	Question string
	Items    []retrievers.Item
	Metadata map[string]any
}

func parseContextTemplate(text string) (*template.Template, error) {
	tmpl, err := template.New("context").Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}
	return tmpl, nil
}

func renderContext(tmpl *template.Template, data contextData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render context: %w", err)
	}
	return buf.String(), nil
}
