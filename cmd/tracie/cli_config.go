package main

import (
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nuvemlabs/agents.tracie/pkg/agent"
	configpkg "github.com/nuvemlabs/agents.tracie/pkg/config"
	loggerpkg "github.com/nuvemlabs/agents.tracie/pkg/logger"
)

// cliApp carries the shared flag values and the seams tests replace.
type cliApp struct {
	configPath  string
	verbose     bool
	interactive bool

	stdout io.Writer
	stderr io.Writer

	agentOpts []agent.AgentOption
	newReader func() (lineReader, error)
}

func (a *cliApp) out() io.Writer {
	if a.stdout == nil {
		return os.Stdout
	}
	return a.stdout
}

func (a *cliApp) errOut() io.Writer {
	if a.stderr == nil {
		return os.Stderr
	}
	return a.stderr
}

// loadSettings resolves settings from .env, the YAML file and the environment,
// then applies flag overrides.
func (a *cliApp) loadSettings(cmd *cobra.Command) (configpkg.Settings, error) {
	_ = godotenv.Load()

	s, err := configpkg.Load(a.configPath)
	if err != nil {
		return configpkg.Settings{}, err
	}
	if cmd.Flags().Changed("verbose") {
		s.AgentVerbose = a.verbose
	}
	return s, nil
}

func (a *cliApp) newLogger(s configpkg.Settings) loggerpkg.Logger {
	return loggerpkg.New(s.Env, s.LogLevel, a.errOut())
}

// agentOptions returns the options every command passes to the agent package.
func (a *cliApp) agentOptions(log loggerpkg.Logger) []agent.AgentOption {
	opts := []agent.AgentOption{agent.WithLogger(log)}
	return append(opts, a.agentOpts...)
}
