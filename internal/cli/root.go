// Package cli implements the graphrag command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/genai-fundamentals/graphrag/internal/config"
	"github.com/genai-fundamentals/graphrag/internal/logging"
	"github.com/genai-fundamentals/graphrag/internal/movies"
	"github.com/genai-fundamentals/graphrag/retrievers"
)

// Exit codes returned by Execute.
const (
	ExitSuccess = 0
	ExitError   = 1
)

// RunnerFactory builds the runner used by every subcommand.
type RunnerFactory func(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) (*movies.Runner, error)

// globalFlags holds the persistent flags of the root command.
type globalFlags struct {
	logLevel     string
	logFormat    string
	pipelineFile string
}

type app struct {
	flags     globalFlags
	newRunner RunnerFactory
}

// NewRootCommand returns the graphrag command tree. A nil factory uses
// movies.NewRunner.
func NewRootCommand(factory RunnerFactory) *cobra.Command {
	if factory == nil {
		factory = movies.NewRunner
	}
	a := &app{newRunner: factory}

	root := &cobra.Command{
		Use:   "graphrag",
		Short: "Retrieve-then-generate question answering over a Neo4j movie graph",
		Long: `graphrag answers questions about the movie graph. A retriever selects
records from Neo4j (by vector similarity, vector similarity expanded with a
Cypher query, or a Cypher query written by a language model) and a chat model
writes the answer from them.

Connection and model settings are read from the environment or a .env file:
NEO4J_URI, NEO4J_USERNAME, NEO4J_PASSWORD, OPENAI_API_KEY.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.logLevel, "log-level", "", "Log level (debug|info|warn|error), overrides LOG_LEVEL")
	pf.StringVar(&a.flags.logFormat, "log-format", "", "Log format (pretty|json), overrides LOG_FORMAT")
	pf.StringVar(&a.flags.pipelineFile, "pipeline", "", "Pipeline YAML file, overrides GRAPHRAG_PIPELINE_FILE")

	root.AddCommand(
		a.askCommand(),
		a.retrieveCommand(),
		a.schemaCommand(),
		a.indexCommand(),
		a.chatCommand(),
	)
	return root
}

// Execute runs the command line with args and returns the process exit code.
// SIGINT and SIGTERM cancel the running command.
func Execute(ctx context.Context, args []string) int {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd := NewRootCommand(nil)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}

// runner loads the configuration, applies the flags and builds the runner.
func (a *app) runner(cmd *cobra.Command) (*movies.Runner, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if a.flags.logLevel != "" {
		cfg.Log.Level = a.flags.logLevel
	}
	if a.flags.logFormat != "" {
		cfg.Log.Format = a.flags.logFormat
	}
	if a.flags.pipelineFile != "" {
		if err := cfg.Pipeline.LoadFile(a.flags.pipelineFile); err != nil {
			return nil, err
		}
	}

	logger := logging.New(cmd.ErrOrStderr(), cfg.Log.Format, cfg.Log.Level)
	return a.newRunner(cmd.Context(), cfg, logger, cmd.OutOrStdout())
}

// retrieverFlags are shared by the question answering subcommands.
type retrieverFlags struct {
	kind          string
	topK          int
	returnContext bool
}

func (f *retrieverFlags) register(cmd *cobra.Command, withContext bool) {
	cmd.Flags().StringVarP(&f.kind, "retriever", "r", retrievers.KindVector.String(),
		"Retriever kind (vector|vector-cypher|text2cypher)")
	cmd.Flags().IntVarP(&f.topK, "top-k", "k", 0, "Number of records to retrieve (default from configuration)")
	if withContext {
		cmd.Flags().BoolVar(&f.returnContext, "context", false, "Print the retrieved records after the answer")
	}
}

func (f *retrieverFlags) parse() (retrievers.Kind, movies.AskOptions, error) {
	kind, err := retrievers.ParseKind(f.kind)
	if err != nil {
		return 0, movies.AskOptions{}, err
	}
	if f.topK < 0 {
		return 0, movies.AskOptions{}, fmt.Errorf("--top-k must not be negative, got %d", f.topK)
	}
	return kind, movies.AskOptions{TopK: f.topK, ReturnContext: f.returnContext}, nil
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
