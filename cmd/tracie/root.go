package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nuvemlabs/agents.tracie/pkg/agent"
	configpkg "github.com/nuvemlabs/agents.tracie/pkg/config"
)

var version = "dev"

var (
	errNoQuery          = errors.New("no query supplied")
	errInteractiveQuery = errors.New("interactive mode does not take a query; ask it at the prompt")
)

// newRootCmd creates the top-level tracie command with all subcommands.
func newRootCmd(app *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tracie [query...]",
		Short: "Ask a language model, with optional web search",
		Long: `tracie forwards a question to a language model and prints the answer.

When SERPAPI_API_KEY is set the model may search the web before answering.
Run without a query and with -i to chat interactively.`,
		Example: `  tracie What is 2+2?
  tracie query "latest news on Go"
  tracie interactive`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.interactive {
				if len(args) > 0 {
					return errInteractiveQuery
				}
				return app.runInteractive(cmd)
			}
			if len(args) == 0 {
				_, _ = fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
				return errNoQuery
			}
			return app.runQuery(cmd, strings.Join(args, " "))
		},
	}
	cmd.SetOut(app.out())
	cmd.SetErr(app.errOut())

	cmd.PersistentFlags().StringVar(&app.configPath, "config", configpkg.DefaultConfigPath, "Path to the YAML settings file")
	cmd.PersistentFlags().BoolVar(&app.verbose, "verbose", false, "Log each reasoning step (overrides agent.verbose)")
	cmd.Flags().BoolVarP(&app.interactive, "interactive", "i", false, "Start an interactive session")

	cmd.AddCommand(
		newQueryCmd(app),
		newInteractiveCmd(app),
		newConfigCmd(app),
		newVersionCmd(app),
	)
	return cmd
}

func newQueryCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "query <query>",
		Short: "Answer a single query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runQuery(cmd, args[0])
		},
	}
}

func newInteractiveCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"chat"},
		Short:   "Ask questions in a loop until exit",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runInteractive(cmd)
		},
	}
}

func newConfigCmd(app *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the resolved settings with credentials masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.loadSettings(cmd)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(s.Redacted().AsMap())
			if err != nil {
				return fmt.Errorf("render settings: %w", err)
			}
			_, err = app.out().Write(out)
			return err
		},
	})
	return cmd
}

func newVersionCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(app.out(), "tracie %s\n", version)
		},
	}
}

// runQuery answers one query. Settings errors are fatal; every failure past
// startup is printed as an "Error:" line instead.
func (a *cliApp) runQuery(cmd *cobra.Command, query string) error {
	s, err := a.loadSettings(cmd)
	if err != nil {
		return err
	}
	log := a.newLogger(s)

	answer := agent.Run(cmd.Context(), s, query, a.agentOptions(log)...)
	_, _ = fmt.Fprintln(a.out(), answer)
	return nil
}

// runInteractive builds one agent and hands it to the REPL.
func (a *cliApp) runInteractive(cmd *cobra.Command) error {
	s, err := a.loadSettings(cmd)
	if err != nil {
		return err
	}
	log := a.newLogger(s)

	handle, err := agent.Build(cmd.Context(), s, a.agentOptions(log)...)
	if err != nil {
		return err
	}

	newReader := a.newReader
	if newReader == nil {
		newReader = newReadline
	}
	in, err := newReader()
	if err != nil {
		return fmt.Errorf("init input: %w", err)
	}
	defer in.Close()

	return runREPL(cmd.Context(), handle, in, a.out())
}
