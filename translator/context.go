package translator

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/mxkacsa/execgraph/graph"
)

type phase int

const (
	phaseIdle phase = iota
	phaseVariablesDeclared
	phaseBodyEmitted
	phaseDone
)

var phaseNames = [...]string{"Idle", "VariablesDeclared", "BodyEmitted", "Done"}

func (p phase) String() string {
	return phaseNames[p]
}

// line is one output line. Label lines are kept only when their state is
// jumped to.
type line struct {
	indent int
	text   string
	label  graph.PinID
	end    bool // label of the end marker
}

func (l line) isLabel() bool {
	return l.end || l.label != graph.NoPin
}

// emitContext carries all per-translation state through every emitter. A
// fresh one is built for each Translate call.
type emitContext struct {
	t      *Translator
	g      *graph.Graph
	states *States
	plan   *Plan
	phase  phase

	names map[graph.PinID]string
	used  map[string]bool
	rng   *rand.Rand

	lines     []line
	indent    int
	jumped    map[graph.PinID]bool
	endJumped bool
	loops     []graph.NodeID
	emitted   []graph.NodeID // exec nodes in the order their items were written
	diags     []Diagnostic
}

func newEmitContext(t *Translator, g *graph.Graph) *emitContext {
	return &emitContext{
		t:      t,
		g:      g,
		phase:  phaseIdle,
		names:  make(map[graph.PinID]string),
		used:   make(map[string]bool),
		rng:    rand.New(rand.NewPCG(t.seed, t.seed)),
		jumped: make(map[graph.PinID]bool),
	}
}

func (ec *emitContext) advance(to phase) error {
	if to != ec.phase+1 {
		return fmt.Errorf("%w: %s -> %s", ErrPhase, ec.phase, to)
	}
	ec.t.logger.Debug("translation phase", "graph", ec.g.FullName(), "from", ec.phase.String(), "to", to.String())
	ec.phase = to
	return nil
}

// ============================================================================
// Output
// ============================================================================

// writeLine writes a formatted line at the current indentation
func (ec *emitContext) writeLine(format string, args ...interface{}) {
	ec.lines = append(ec.lines, line{indent: ec.indent, text: fmt.Sprintf(format, args...), label: graph.NoPin})
}

func (ec *emitContext) open() {
	ec.writeLine("{")
	ec.indent++
}

func (ec *emitContext) close() {
	ec.indent--
	ec.writeLine("}")
}

// label marks the start of the code for an input exec pin.
func (ec *emitContext) label(pin graph.PinID) {
	ec.lines = append(ec.lines, line{indent: ec.indent, label: pin})
}

func (ec *emitContext) endLabel() {
	ec.lines = append(ec.lines, line{indent: ec.indent, label: graph.NoPin, end: true})
}

func (ec *emitContext) stateName(pin graph.PinID) string {
	return fmt.Sprintf("State%d", ec.states.ID(pin))
}

// render joins the kept lines. A label followed by a closing brace, or by
// nothing, gets an empty statement.
func (ec *emitContext) render(sb *strings.Builder) {
	kept := make([]line, 0, len(ec.lines))
	for _, l := range ec.lines {
		switch {
		case l.end && !ec.endJumped:
			continue
		case l.label != graph.NoPin && !ec.jumped[l.label]:
			continue
		}
		kept = append(kept, l)
	}

	for i, l := range kept {
		if !l.isLabel() && l.text == "" {
			sb.WriteString("\n")
			continue
		}
		sb.WriteString(strings.Repeat("\t", l.indent))
		if !l.isLabel() {
			sb.WriteString(l.text)
			sb.WriteString("\n")
			continue
		}
		if l.end {
			fmt.Fprintf(sb, "State%d:", ec.states.End)
		} else {
			sb.WriteString(ec.stateName(l.label) + ":")
		}
		if needsEmptyStatement(kept[i+1:]) {
			sb.WriteString(" ;")
		}
		sb.WriteString("\n")
	}
}

func needsEmptyStatement(rest []line) bool {
	for _, l := range rest {
		if l.isLabel() {
			continue
		}
		return strings.HasPrefix(l.text, "}")
	}
	return true
}

// ============================================================================
// Control transfer
// ============================================================================

// transfer continues along an exec output. follow is the pin whose code comes
// next in emission order; NoPin stands for the end marker.
func (ec *emitContext) transfer(out, follow graph.PinID) {
	ec.jump(ec.g.OutgoingExec(out), follow)
}

// jump writes a goto unless control already falls through to target.
func (ec *emitContext) jump(target, follow graph.PinID) {
	if target == follow {
		return
	}
	if target == graph.NoPin || !ec.states.Has(target) {
		ec.endJumped = true
		ec.writeLine("goto State%d;", ec.states.End)
		return
	}
	if n := len(ec.loops); n > 0 {
		lp := ec.g.Node(ec.loops[n-1]).Payload.(graph.ForLoopPayload)
		if target == lp.Continue {
			ec.writeLine("continue;")
			return
		}
	}
	ec.jumped[target] = true
	ec.writeLine("goto %s;", ec.stateName(target))
}

// ============================================================================
// Blocks
// ============================================================================

func (ec *emitContext) entryPin(it *Item) graph.PinID {
	return ec.g.Node(it.Node).InExec[0]
}

func (ec *emitContext) emitBlock(b *Block, follow graph.PinID) error {
	for i, it := range b.Items {
		next := follow
		if i+1 < len(b.Items) {
			next = ec.entryPin(b.Items[i+1])
		}
		if err := ec.emitItem(it, next); err != nil {
			return err
		}
	}
	return nil
}

// emitArm writes the body of a nested block, jumping first when the arm's
// target is not the first item of the body.
func (ec *emitContext) emitArm(a Arm, follow graph.PinID) error {
	start := follow
	if len(a.Body.Items) > 0 {
		start = ec.entryPin(a.Body.Items[0])
	}
	ec.jump(a.Target, start)
	return ec.emitBlock(a.Body, follow)
}

func (ec *emitContext) emitItem(it *Item, follow graph.PinID) error {
	n := ec.g.Node(it.Node)
	ec.emitted = append(ec.emitted, n.ID)
	ec.label(n.InExec[0])
	if ec.t.hook != nil {
		ec.t.hook.OnNodeEmit(ec.g.FullName(), int(n.ID), n.Kind.String(), ec.states.ID(n.InExec[0]))
	}

	handlers := dispatch[n.Kind]
	if len(handlers) == 0 {
		return ec.emitUnknown(n, follow, "no emitter for this kind")
	}
	return handlers[0](ec, it, follow)
}

// emitDeps writes every pure dependency of n in evaluation order.
func (ec *emitContext) emitDeps(n *graph.Node) error {
	deps, err := Dependencies(ec.g, n.ID)
	if err != nil {
		return err
	}
	for _, id := range deps {
		if id == n.ID {
			continue
		}
		if err := ec.emitPure(ec.g.Node(id)); err != nil {
			return err
		}
	}
	return nil
}

func (ec *emitContext) emitPure(n *graph.Node) error {
	handlers := dispatch[n.Kind]
	if len(handlers) == 0 {
		return ec.emitUnknown(n, graph.NoPin, "no emitter for this kind")
	}
	return handlers[0](ec, &Item{Kind: ItemNode, Node: n.ID}, graph.NoPin)
}

func (ec *emitContext) emitUnknown(n *graph.Node, follow graph.PinID, reason string) error {
	d := Diagnostic{Code: UnknownNodeKind, Node: n.ID, Kind: kindLabel(n), Message: reason}
	ec.diags = append(ec.diags, d)
	ec.t.logger.Warn("skipping node", "graph", ec.g.FullName(), "node", int(n.ID), "kind", d.Kind, "reason", reason)
	if ec.t.hook != nil {
		ec.t.hook.OnDiagnostic(ec.g.FullName(), int(n.ID), string(d.Code), reason)
	}
	ec.writeLine("// Unknown node kind: %s", d.Kind)
	if len(n.OutExec) > 0 {
		ec.transfer(n.OutExec[0], follow)
	}
	return nil
}

func kindLabel(n *graph.Node) string {
	if p, ok := n.Payload.(graph.CustomPayload); ok {
		return p.TypeName
	}
	return n.Kind.String()
}

// ============================================================================
// Names and values
// ============================================================================

// nameFor returns the variable bound to an output data pin, creating it on
// first use.
func (ec *emitContext) nameFor(pin graph.PinID) string {
	if name, ok := ec.names[pin]; ok {
		return name
	}
	p := ec.g.Pin(pin)
	var name string
	if p.Node == ec.g.Entry().ID {
		name = ec.parameterName(p)
	} else {
		name = ec.t.names.Variable(p.Name, ec.taken)
	}
	ec.names[pin] = name
	ec.used[name] = true
	return name
}

func (ec *emitContext) parameterName(p *graph.Pin) string {
	entry := ec.g.Entry()
	if strings.HasPrefix(ec.g.Name, "set_") && len(entry.OutData) > 0 && entry.OutData[0] == p.ID {
		return "value"
	}
	base := Sanitize(p.Name)
	name := base
	for i := 2; ec.used[name]; i++ {
		name = fmt.Sprintf("%s%d", base, i)
	}
	return name
}

func (ec *emitContext) taken(name string) bool {
	return ec.used[name]
}

func (ec *emitContext) temp() string {
	name := ec.t.names.Temporary(ec.rng, ec.taken)
	ec.used[name] = true
	return name
}

func (ec *emitContext) typeName(t graph.TypeRef) string {
	return ec.t.types.TypeName(t)
}

// arg resolves an input data pin. ok is false when the pin asks for the
// callee's default, in which case the argument is left out.
func (ec *emitContext) arg(in graph.PinID) (expr string, ok bool, err error) {
	if src := ec.g.IncomingData(in); src != graph.NoPin {
		return ec.nameFor(src), true, nil
	}
	p := ec.g.Pin(in)
	if p.HasUnconnectedValue() {
		return Literal(p.UnconnectedValue, p.Type, ec.t.types), true, nil
	}
	if p.ExplicitDefault {
		return "", false, nil
	}
	n := ec.g.Node(p.Node)
	return "", false, &UnconnectedInputError{Node: n.ID, Pin: in, NodeDesc: n.String(), PinName: p.Name}
}

// expr resolves an input data pin where no argument can be omitted; an
// explicit default becomes default(T).
func (ec *emitContext) expr(in graph.PinID) (string, error) {
	v, ok, err := ec.arg(in)
	if err != nil {
		return "", err
	}
	if !ok {
		return fmt.Sprintf("default(%s)", ec.typeName(ec.g.Pin(in).Type)), nil
	}
	return v, nil
}
