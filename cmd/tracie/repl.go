package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/nuvemlabs/agents.tracie/pkg/agent"
)

const promptText = "Enter your question: "

var (
	bold   = color.New(color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

// lineReader is the part of *readline.Instance the REPL needs.
type lineReader interface {
	Readline() (string, error)
	Close() error
}

func newReadline() (lineReader, error) {
	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".tracie_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            cyan(promptText),
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, err
	}
	return rl, nil
}

// runREPL reads questions until exit, interrupt or EOF. Cancelling ctx, as
// Ctrl-C does mid-turn, also ends the loop. A failing turn is reported and the
// loop keeps going.
func runREPL(ctx context.Context, handle agent.Handle, in lineReader, out io.Writer) error {
	if handle == nil {
		return fmt.Errorf("agent is required")
	}
	if in == nil {
		return fmt.Errorf("input reader is required")
	}
	if out == nil {
		out = io.Discard
	}
	if ctx == nil {
		ctx = context.Background()
	}

	_, _ = fmt.Fprintln(out, bold("Agent started! Type 'exit' to quit."))
	if names := handle.Tools(); len(names) > 0 {
		_, _ = fmt.Fprintf(out, "Tools: %s\n", strings.Join(names, ", "))
	}

	for {
		if ctx.Err() != nil {
			_, _ = fmt.Fprintln(out, "\nGoodbye!")
			return nil
		}

		line, err := in.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			_, _ = fmt.Fprintln(out, "\nGoodbye!")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		query := strings.TrimSpace(line)
		if isExitCommand(query) {
			_, _ = fmt.Fprintln(out, "Goodbye!")
			return nil
		}
		if query == "" {
			_, _ = fmt.Fprintln(out, yellow("Please enter a question."))
			continue
		}

		answer, err := askTurn(ctx, handle, query)
		if ctx.Err() != nil {
			_, _ = fmt.Fprintln(out, "\nGoodbye!")
			return nil
		}
		if err != nil {
			_, _ = fmt.Fprintf(out, "\n%s\n\n", red(agent.FormatError(err)))
			continue
		}
		if strings.TrimSpace(answer) == "" {
			answer = agent.NoResponseMessage
		}
		_, _ = fmt.Fprintf(out, "\n%s %s\n\n", green("Answer:"), answer)
	}
}

// askTurn runs one query, turning a panic into an error so the loop survives.
func askTurn(ctx context.Context, handle agent.Handle, query string) (answer string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return handle.Run(ctx, query)
}

func isExitCommand(input string) bool {
	switch strings.ToLower(input) {
	case "exit", "quit", "q":
		return true
	default:
		return false
	}
}
