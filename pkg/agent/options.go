package agent

import (
	"github.com/tmc/langchaingo/llms"
	lctools "github.com/tmc/langchaingo/tools"

	loggerpkg "github.com/nuvemlabs/agents.tracie/pkg/logger"
)

// AgentOption configures optional runtime dependencies for Build.
type AgentOption func(*agentDeps)

type agentDeps struct {
	logger   loggerpkg.Logger
	model    llms.Model
	tools    []lctools.Tool
	toolsSet bool
}

// WithLogger injects a logger dependency.
func WithLogger(l loggerpkg.Logger) AgentOption {
	return func(d *agentDeps) {
		d.logger = l
	}
}

// WithModel replaces the OpenAI client built from settings.
func WithModel(m llms.Model) AgentOption {
	return func(d *agentDeps) {
		d.model = m
	}
}

// WithTools replaces the tool set built from settings. Passing no tools
// forces the direct-call handle.
func WithTools(t ...lctools.Tool) AgentOption {
	return func(d *agentDeps) {
		d.tools = t
		d.toolsSet = true
	}
}
