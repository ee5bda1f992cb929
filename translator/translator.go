// Package translator lowers execution graphs to structured C# method bodies.
//
// Translation runs in four steps. Every input exec pin gets a state id
// (AllocateStates), the exec nodes are laid out as nested blocks
// (Structurize), one variable is declared per output data pin, and every
// node is lowered through the dispatch table with its pure dependencies
// (Dependencies) written right before it. Control transfers that are not
// plain fallthrough become "goto StateK;" jumps to labels.
package translator

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/mxkacsa/execgraph/graph"
	"github.com/mxkacsa/execgraph/translator/debug"
)

// Translator holds translation settings. It keeps no per-call state, so one
// Translator may translate different graphs from several goroutines.
type Translator struct {
	logger    *slog.Logger
	seed      uint64
	types     TypeFormatter
	operators OperatorTable
	names     NameGenerator
	registry  *Registry
	hook      debug.DebugHook
}

// Option configures a Translator.
type Option func(*Translator)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(t *Translator) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithSeed seeds the generator of temporary names.
func WithSeed(seed uint64) Option {
	return func(t *Translator) { t.seed = seed }
}

// WithTypeFormatter replaces CSharpTypes.
func WithTypeFormatter(f TypeFormatter) Option {
	return func(t *Translator) { t.types = f }
}

// WithOperators replaces DefaultOperators.
func WithOperators(o OperatorTable) Option {
	return func(t *Translator) { t.operators = o }
}

// WithNameGenerator replaces DefaultNames.
func WithNameGenerator(n NameGenerator) Option {
	return func(t *Translator) { t.names = n }
}

// WithRegistry selects the custom node registry. The default is
// DefaultRegistry().
func WithRegistry(r *Registry) Option {
	return func(t *Translator) { t.registry = r }
}

// WithHook installs a debug hook receiving translation events.
func WithHook(h debug.DebugHook) Option {
	return func(t *Translator) { t.hook = h }
}

// New creates a Translator.
func New(opts ...Option) *Translator {
	t := &Translator{
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		types:     CSharpTypes{},
		operators: DefaultOperators,
		names:     DefaultNames{},
		registry:  defaultRegistry,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Result is the output of one translation.
type Result struct {
	Code        string
	Diagnostics []Diagnostic
	States      int // allocated states, end marker excluded
	Moves       int // structurizer slice moves
}

// Translate lowers g to source text, with the method signature in front when
// withSignature is set. On error no partial output is returned.
func (t *Translator) Translate(g *graph.Graph, withSignature bool) (*Result, error) {
	start := time.Now()
	if t.hook != nil {
		t.hook.OnTranslateStart(g.FullName(), g.NodeCount())
	}

	res, err := t.translate(g, withSignature)

	if t.hook != nil {
		diags := 0
		if res != nil {
			diags = len(res.Diagnostics)
		}
		t.hook.OnTranslateEnd(g.FullName(), float64(time.Since(start).Microseconds())/1000, diags, err)
	}
	if err != nil {
		t.logger.Debug("translation failed", "graph", g.FullName(), "error", err)
		return nil, fmt.Errorf("translate %s: %w", g.FullName(), err)
	}
	return res, nil
}

func (t *Translator) translate(g *graph.Graph, withSignature bool) (*Result, error) {
	ec := newEmitContext(t, g)
	ec.states = AllocateStates(g)

	plan, err := Structurize(g, ec.states)
	if err != nil {
		return nil, err
	}
	ec.plan = plan

	// Parameters are named first so variables never take their names.
	for _, pin := range g.Entry().OutData {
		ec.nameFor(pin)
	}

	if withSignature {
		ec.writeSignature()
	}
	ec.open()
	ec.writeLine("// Variables")
	for _, id := range g.Reachable() {
		n := g.Node(id)
		if n.Kind == graph.KindEntry {
			continue
		}
		for _, pin := range n.OutData {
			typ := ec.typeName(g.Pin(pin).Type)
			ec.writeLine("%s %s = default(%s);", typ, ec.nameFor(pin), typ)
		}
	}
	ec.writeLine("")
	if err := ec.advance(phaseVariablesDeclared); err != nil {
		return nil, err
	}

	if err := ec.emitBlock(plan.Root, graph.NoPin); err != nil {
		return nil, err
	}
	if !slices.Equal(ec.emitted, plan.Order) {
		return nil, &FixedPointError{
			Moves:  plan.Moves,
			Bound:  len(plan.Order) + 1,
			Reason: "emitted statements do not follow the structured order",
		}
	}
	ec.endLabel()
	switch {
	case ec.returnsValue():
		ec.writeLine("return default(%s);", ec.returnType())
	case ec.endJumped:
		ec.writeLine("return;")
	}
	ec.close()
	if err := ec.advance(phaseBodyEmitted); err != nil {
		return nil, err
	}

	var sb strings.Builder
	ec.render(&sb)
	if err := ec.advance(phaseDone); err != nil {
		return nil, err
	}

	t.logger.Debug("translated graph",
		"graph", g.FullName(),
		"states", ec.states.Len(),
		"moves", plan.Moves,
		"diagnostics", len(ec.diags))

	return &Result{
		Code:        sb.String(),
		Diagnostics: ec.diags,
		States:      ec.states.Len(),
		Moves:       plan.Moves,
	}, nil
}
