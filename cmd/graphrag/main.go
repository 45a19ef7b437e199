// Command graphrag answers questions about the movie graph.
package main

import (
	"context"
	"os"

	"github.com/genai-fundamentals/graphrag/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:]))
}
