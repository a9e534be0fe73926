package tools

import (
	"context"
	"strings"

	lctools "github.com/tmc/langchaingo/tools"

	configpkg "github.com/nuvemlabs/agents.tracie/pkg/config"
	loggerpkg "github.com/nuvemlabs/agents.tracie/pkg/logger"
)

// Func is the callable behind a tool descriptor.
type Func func(ctx context.Context, input string) (string, error)

// Descriptor is a named, described callable exposed to the reasoning loop.
type Descriptor struct {
	name        string
	description string
	fn          Func
}

var _ lctools.Tool = (*Descriptor)(nil)

func (d *Descriptor) Name() string        { return d.name }
func (d *Descriptor) Description() string { return d.description }

// Call runs the tool with the raw action input.
func (d *Descriptor) Call(ctx context.Context, input string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return d.fn(ctx, strings.TrimSpace(input))
}

type Context struct {
	Settings configpkg.Settings
	Verbose  bool
	Logger   loggerpkg.Logger
}

func (c Context) debugf(format string, args ...any) {
	loggerpkg.Debugf(c.Verbose, c.Logger, format, args...)
}

// Registry holds the tools available to one agent.
type Registry struct {
	registry map[string]lctools.Tool
	ctx      Context
	ordered  []lctools.Tool
}

// New builds a registry with the built-in tools the settings allow. With no
// search credential the registry is empty.
func New(ctx Context) *Registry {
	r := NewRegistry(ctx)
	if search := NewSearch(ctx.Settings, ctx.Logger); search != nil {
		r.Register(search)
	}
	return r
}

// NewRegistry builds a registry holding exactly ts.
func NewRegistry(ctx Context, ts ...lctools.Tool) *Registry {
	if ctx.Logger == nil {
		ctx.Logger = loggerpkg.NopLogger{}
	}
	r := &Registry{
		registry: make(map[string]lctools.Tool),
		ctx:      ctx,
	}
	for _, t := range ts {
		r.Register(t)
	}
	return r
}

// Register adds a tool, replacing any tool with the same name. Nil tools,
// including a nil *Descriptor, are ignored.
func (r *Registry) Register(t lctools.Tool) {
	switch v := t.(type) {
	case nil:
		return
	case *Descriptor:
		if v == nil {
			return
		}
	}
	if _, exists := r.registry[t.Name()]; exists {
		for i, existing := range r.ordered {
			if existing.Name() == t.Name() {
				r.ordered = append(r.ordered[:i], r.ordered[i+1:]...)
				break
			}
		}
	}
	r.registry[t.Name()] = t
	r.ordered = append(r.ordered, t)
	r.ctx.debugf("registered tool: %s", t.Name())
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []lctools.Tool {
	out := make([]lctools.Tool, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ordered))
	for _, t := range r.ordered {
		names = append(names, t.Name())
	}
	return names
}

// Len reports how many tools are registered.
func (r *Registry) Len() int {
	return len(r.ordered)
}
