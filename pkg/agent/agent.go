package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/agents"
	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/llms"

	configpkg "github.com/nuvemlabs/agents.tracie/pkg/config"
	"github.com/nuvemlabs/agents.tracie/pkg/llm"
	loggerpkg "github.com/nuvemlabs/agents.tracie/pkg/logger"
	"github.com/nuvemlabs/agents.tracie/pkg/prompt"
	"github.com/nuvemlabs/agents.tracie/pkg/tools"
)

// IterationLimitMessage is the answer reported when the reasoning loop runs
// out of cycles without a final answer.
const IterationLimitMessage = "Agent stopped due to iteration limit or time limit."

// Handle answers one query at a time.
type Handle interface {
	Run(ctx context.Context, query string) (string, error)
	// Tools lists the tool names the handle may invoke.
	Tools() []string
}

// Build constructs a handle from settings. With at least one tool it returns
// a bounded ReAct executor; otherwise a handle that calls the model directly.
func Build(ctx context.Context, cfg configpkg.Settings, opts ...AgentOption) (Handle, error) {
	cfg = configpkg.Normalize(cfg)
	deps := agentDeps{logger: loggerpkg.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&deps)
		}
	}
	if deps.logger == nil {
		deps.logger = loggerpkg.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	loggerpkg.Debug(cfg.AgentVerbose, deps.logger, "agent init", map[string]any{
		"model":          cfg.ModelName,
		"temperature":    cfg.ModelTemperature,
		"max_tokens":     cfg.ModelMaxTokens,
		"max_iterations": cfg.AgentMaxIterations,
	})

	model := deps.model
	if model == nil {
		client, err := llm.FromSettings(cfg, deps.logger)
		if err != nil {
			return nil, fmt.Errorf("create model client: %w", err)
		}
		model = client
	}

	toolCtx := tools.Context{
		Settings: cfg,
		Verbose:  cfg.AgentVerbose,
		Logger:   deps.logger,
	}
	var registry *tools.Registry
	if deps.toolsSet {
		registry = tools.NewRegistry(toolCtx, deps.tools...)
	} else {
		registry = tools.New(toolCtx)
	}

	if registry.Len() == 0 {
		deps.logger.Warn("No tools available. Agent will have limited functionality.", nil)
		return &directHandle{model: model, logger: deps.logger, verbose: cfg.AgentVerbose}, nil
	}

	agentOpts := []agents.Option{
		agents.WithPromptPrefix(prompt.Prefix),
		agents.WithPromptFormatInstructions(prompt.FormatInstructions),
		agents.WithPromptSuffix(prompt.Suffix),
		agents.WithMaxIterations(cfg.AgentMaxIterations),
		agents.WithParserErrorHandler(agents.NewParserErrorHandler(nil)),
	}
	if cfg.AgentVerbose {
		agentOpts = append(agentOpts, agents.WithCallbacksHandler(newTraceHandler(deps.logger)))
	}

	executor := agents.NewExecutor(agents.NewOneShotAgent(model, registry.Tools(), agentOpts...), agentOpts...)
	loggerpkg.Debug(cfg.AgentVerbose, deps.logger, "executor ready", map[string]any{
		"tools": registry.Names(),
	})

	return &executorHandle{
		executor: executor,
		tools:    registry.Names(),
		logger:   deps.logger,
	}, nil
}

// executorHandle drives langchaingo's one-shot ReAct executor.
type executorHandle struct {
	executor *agents.Executor
	tools    []string
	logger   loggerpkg.Logger
}

func (h *executorHandle) Run(ctx context.Context, query string) (string, error) {
	answer, err := chains.Run(ctx, h.executor, query)
	if errors.Is(err, agents.ErrNotFinished) {
		h.logger.Warn("reasoning loop hit its iteration limit", nil)
		return IterationLimitMessage, nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

func (h *executorHandle) Tools() []string {
	return append([]string(nil), h.tools...)
}

// directHandle sends the query straight to the model, bypassing the ReAct grammar.
type directHandle struct {
	model   llms.Model
	logger  loggerpkg.Logger
	verbose bool
}

func (h *directHandle) Run(ctx context.Context, query string) (string, error) {
	loggerpkg.Debug(h.verbose, h.logger, "direct model call", map[string]any{"bytes": len(query)})
	return llms.GenerateFromSinglePrompt(ctx, h.model, query)
}

func (h *directHandle) Tools() []string {
	return nil
}
