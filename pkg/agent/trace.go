package agent

import (
	"context"
	"strings"

	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/schema"

	loggerpkg "github.com/nuvemlabs/agents.tracie/pkg/logger"
)

const tracePreviewBytes = 500

// traceHandler logs each reasoning step when the agent runs verbose.
type traceHandler struct {
	callbacks.SimpleHandler
	logger loggerpkg.Logger
}

var _ callbacks.Handler = traceHandler{}

func newTraceHandler(logger loggerpkg.Logger) traceHandler {
	return traceHandler{logger: logger}
}

func (h traceHandler) HandleAgentAction(_ context.Context, action schema.AgentAction) {
	h.logger.Info("agent action", map[string]any{
		"tool":  action.Tool,
		"input": action.ToolInput,
		"log":   preview(action.Log),
	})
}

func (h traceHandler) HandleToolEnd(_ context.Context, output string) {
	h.logger.Info("observation", map[string]any{"output": preview(output)})
}

func (h traceHandler) HandleToolError(_ context.Context, err error) {
	h.logger.Warn("tool failed", map[string]any{"error": err})
}

func (h traceHandler) HandleAgentFinish(_ context.Context, finish schema.AgentFinish) {
	h.logger.Info("agent finished", map[string]any{"log": preview(finish.Log)})
}

func (h traceHandler) HandleLLMError(_ context.Context, err error) {
	h.logger.Warn("model call failed", map[string]any{"error": err})
}

func preview(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > tracePreviewBytes {
		return s[:tracePreviewBytes] + "..."
	}
	return s
}
