package cli

import (
	"github.com/spf13/cobra"
)

func (a *app) askCommand() *cobra.Command {
	var flags retrieverFlags
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a question from retrieved graph records",
		Long: `Answer a question with the selected retriever and the chat model.
Without a question the example question of the retriever is used.`,
		Example: `  graphrag ask "Find me movies about toys coming alive"
  graphrag ask -r vector-cypher "Find the highest rated action movie about travelling to other planets"
  graphrag ask -r text2cypher --context "Which movies did Hugo Weaving star in?"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, opts, err := flags.parse()
			if err != nil {
				return err
			}
			runner, err := a.runner(cmd)
			if err != nil {
				return err
			}
			return runner.Ask(cmd.Context(), kind, joinArgs(args), opts)
		},
	}
	flags.register(cmd, true)
	return cmd
}

func (a *app) retrieveCommand() *cobra.Command {
	var flags retrieverFlags
	cmd := &cobra.Command{
		Use:   "retrieve [question]",
		Short: "Print the records a retriever returns, without generating an answer",
		Example: `  graphrag retrieve "Toys coming alive"
  graphrag retrieve -r text2cypher -k 3 "Which movies did Hugo Weaving star in?"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, opts, err := flags.parse()
			if err != nil {
				return err
			}
			runner, err := a.runner(cmd)
			if err != nil {
				return err
			}
			return runner.Retrieve(cmd.Context(), kind, joinArgs(args), opts)
		},
	}
	flags.register(cmd, false)
	return cmd
}

func (a *app) schemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the graph schema used in Text2Cypher prompts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runner, err := a.runner(cmd)
			if err != nil {
				return err
			}
			return runner.Schema(cmd.Context())
		},
	}
}

func (a *app) indexCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Create the vector index and embed movie plots that have no embedding",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runner, err := a.runner(cmd)
			if err != nil {
				return err
			}
			return runner.Index(cmd.Context())
		},
	}
}

func (a *app) chatCommand() *cobra.Command {
	var flags retrieverFlags
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Answer questions read from standard input until exit or quit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kind, opts, err := flags.parse()
			if err != nil {
				return err
			}
			runner, err := a.runner(cmd)
			if err != nil {
				return err
			}
			return runner.Chat(cmd.Context(), kind, cmd.InOrStdin(), opts)
		},
	}
	flags.register(cmd, true)
	return cmd
}
