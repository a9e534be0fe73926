package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

// scriptedReader returns lines in order, then end (io.EOF when unset).
type scriptedReader struct {
	lines  []string
	end    error
	reads  int
	closed bool
}

func (r *scriptedReader) Readline() (string, error) {
	r.reads++
	if len(r.lines) == 0 {
		if r.end != nil {
			return "", r.end
		}
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func (r *scriptedReader) Close() error {
	r.closed = true
	return nil
}

type fakeHandle struct {
	queries []string
	answer  string
	errs    map[string]error
	panics  map[string]bool
	tools   []string
}

func (h *fakeHandle) Run(_ context.Context, query string) (string, error) {
	h.queries = append(h.queries, query)
	if h.panics[query] {
		panic("tool crashed")
	}
	if err := h.errs[query]; err != nil {
		return "", err
	}
	return h.answer, nil
}

func (h *fakeHandle) Tools() []string { return h.tools }

func TestREPLExitKeywordsStopImmediately(t *testing.T) {
	for _, kw := range []string{"exit", "EXIT", "Quit", "q", "  q  "} {
		in := &scriptedReader{lines: []string{kw, "never read"}}
		h := &fakeHandle{answer: "x"}
		var out bytes.Buffer

		require.NoError(t, runREPL(context.Background(), h, in, &out))
		assert.Equal(t, 1, in.reads, kw)
		assert.Empty(t, h.queries, kw)
		assert.Contains(t, out.String(), "Goodbye!")
	}
}

func TestREPLBlankInputReprompts(t *testing.T) {
	in := &scriptedReader{lines: []string{"", "   ", "exit"}}
	h := &fakeHandle{answer: "x"}
	var out bytes.Buffer

	require.NoError(t, runREPL(context.Background(), h, in, &out))
	assert.Equal(t, 3, in.reads)
	assert.Empty(t, h.queries)
	assert.Equal(t, 2, bytes.Count(out.Bytes(), []byte("Please enter a question.")))
}

func TestREPLAnswersQuestions(t *testing.T) {
	in := &scriptedReader{lines: []string{"What is 2+2?", "and 3+3?", "quit"}}
	h := &fakeHandle{answer: "4", tools: []string{"search"}}
	var out bytes.Buffer

	require.NoError(t, runREPL(context.Background(), h, in, &out))
	assert.Equal(t, []string{"What is 2+2?", "and 3+3?"}, h.queries)
	assert.Equal(t, 2, bytes.Count(out.Bytes(), []byte("Answer: 4")))
	assert.Contains(t, out.String(), "Agent started! Type 'exit' to quit.")
	assert.Contains(t, out.String(), "Tools: search")
}

func TestREPLInterruptEndsCleanly(t *testing.T) {
	in := &scriptedReader{lines: []string{"hello"}, end: readline.ErrInterrupt}
	h := &fakeHandle{answer: "hi"}
	var out bytes.Buffer

	require.NoError(t, runREPL(context.Background(), h, in, &out))
	assert.Contains(t, out.String(), "Goodbye!")
	assert.NotContains(t, out.String(), "Error:")
}

func TestREPLEOFEndsCleanly(t *testing.T) {
	in := &scriptedReader{}
	var out bytes.Buffer

	require.NoError(t, runREPL(context.Background(), &fakeHandle{}, in, &out))
	assert.Contains(t, out.String(), "Goodbye!")
}

func TestREPLTurnErrorsDoNotStopTheLoop(t *testing.T) {
	in := &scriptedReader{lines: []string{"bad", "boom", "good", "exit"}}
	h := &fakeHandle{
		answer: "fine",
		errs:   map[string]error{"bad": errors.New("rate limited")},
		panics: map[string]bool{"boom": true},
	}
	var out bytes.Buffer

	require.NoError(t, runREPL(context.Background(), h, in, &out))
	assert.Equal(t, []string{"bad", "boom", "good"}, h.queries)
	assert.Contains(t, out.String(), "Error: rate limited")
	assert.Contains(t, out.String(), "Error: tool crashed")
	assert.Contains(t, out.String(), "Answer: fine")
}

func TestREPLEmptyAnswer(t *testing.T) {
	in := &scriptedReader{lines: []string{"hello", "exit"}}
	var out bytes.Buffer

	require.NoError(t, runREPL(context.Background(), &fakeHandle{answer: ""}, in, &out))
	assert.Contains(t, out.String(), "Answer: No response generated.")
}

func TestREPLReadFailure(t *testing.T) {
	in := &scriptedReader{end: errors.New("tty gone")}

	err := runREPL(context.Background(), &fakeHandle{}, in, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read input")
}

func TestREPLRequiresDependencies(t *testing.T) {
	require.Error(t, runREPL(context.Background(), nil, &scriptedReader{}, io.Discard))
	require.Error(t, runREPL(context.Background(), &fakeHandle{}, nil, io.Discard))
}

// cancellingHandle cancels the session context while a turn is in flight,
// the way Ctrl-C does through signal.NotifyContext.
type cancellingHandle struct {
	cancel context.CancelFunc
	calls  int
}

func (h *cancellingHandle) Run(ctx context.Context, _ string) (string, error) {
	h.calls++
	h.cancel()
	return "", ctx.Err()
}

func (h *cancellingHandle) Tools() []string { return nil }

func TestREPLInterruptDuringTurnEndsCleanly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := &cancellingHandle{cancel: cancel}
	in := &scriptedReader{lines: []string{"first", "second", "third", "exit"}}
	var out bytes.Buffer

	require.NoError(t, runREPL(ctx, h, in, &out))
	assert.Equal(t, 1, h.calls)
	assert.Equal(t, 1, in.reads)
	assert.Contains(t, out.String(), "Goodbye!")
	assert.NotContains(t, out.String(), "Error:")
}

func TestREPLCancelledContextStopsBeforeReading(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h := &fakeHandle{answer: "x"}
	in := &scriptedReader{lines: []string{"hello"}}
	var out bytes.Buffer

	require.NoError(t, runREPL(ctx, h, in, &out))
	assert.Equal(t, 0, in.reads)
	assert.Empty(t, h.queries)
	assert.Contains(t, out.String(), "Goodbye!")
}
