package agent

import (
	"context"
	"fmt"
	"strings"

	configpkg "github.com/nuvemlabs/agents.tracie/pkg/config"
)

const (
	InvalidQueryMessage = "Please provide a valid query."
	NoResponseMessage   = "No response generated."
)

// Run answers a single query with a freshly built agent. It never returns an
// error: failures come back as text prefixed with "Error:".
func Run(ctx context.Context, cfg configpkg.Settings, query string, opts ...AgentOption) (answer string) {
	if strings.TrimSpace(query) == "" {
		return InvalidQueryMessage
	}

	defer func() {
		if r := recover(); r != nil {
			answer = fmt.Sprintf("Error: %v", r)
		}
	}()

	handle, err := Build(ctx, cfg, opts...)
	if err != nil {
		return FormatError(err)
	}
	return Ask(ctx, handle, query)
}

// Ask forwards query to handle and renders the outcome as user-facing text.
func Ask(ctx context.Context, handle Handle, query string) string {
	out, err := handle.Run(ctx, query)
	if err != nil {
		return FormatError(err)
	}
	if strings.TrimSpace(out) == "" {
		return NoResponseMessage
	}
	return out
}

// FormatError renders err the way the shell reports per-query failures.
func FormatError(err error) string {
	return "Error: " + err.Error()
}
