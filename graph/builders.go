package graph

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// ============================================================================
// Node builders
// ============================================================================
//
// Every Add* method creates a node of one kind together with its pins and
// the payload naming each pin's role. Pin names are stable: graph documents
// refer to pins as "<node>.<pin>".

// AddParameter adds a method parameter as an output data pin of the entry node.
func (g *Graph) AddParameter(name string, t TypeRef) PinID {
	return g.addPin(g.Entry(), name, Data, Out, t)
}

// AddGenericParameter adds a generic type parameter as an output type pin of
// the entry node.
func (g *Graph) AddGenericParameter(name string) PinID {
	return g.addPin(g.Entry(), name, TypeChannel, Out, GenericParam(name))
}

// AddReturn adds a return node with one input data pin per graph return type.
func (g *Graph) AddReturn() *Node {
	n := g.addNode(KindReturn, "")
	g.addPin(n, "exec", Exec, In, TypeRef{})
	p := ReturnPayload{}
	for i, t := range g.Returns {
		p.Values = append(p.Values, g.addPin(n, indexedName("value", i, len(g.Returns)), Data, In, t))
	}
	n.Payload = p
	return n
}

// CallOptions selects the shape of a call node.
type CallOptions struct {
	Pure              bool
	HandlesExceptions bool
}

// AddCall adds a method call node.
func (g *Graph) AddCall(m MethodSpec, opts CallOptions) *Node {
	n := g.addNode(KindCall, "")
	p := CallPayload{Method: m, Target: NoPin, Exception: NoPin, Catch: NoPin}
	handles := opts.HandlesExceptions && !opts.Pure
	p.HandlesExceptions = handles

	if !opts.Pure {
		g.addPin(n, "exec", Exec, In, TypeRef{})
		g.addPin(n, "exec", Exec, Out, TypeRef{})
		if handles {
			p.Catch = g.addPin(n, "catch", Exec, Out, TypeRef{})
		}
	}
	if !m.Static {
		p.Target = g.addPin(n, "target", Data, In, m.DeclaringType)
	}
	for _, param := range m.Params {
		p.Args = append(p.Args, g.addPin(n, param.Name, Data, In, param.Type))
	}
	for i, t := range m.Returns {
		p.Results = append(p.Results, g.addPin(n, indexedName("result", i, len(m.Returns)), Data, Out, t))
	}
	if handles {
		p.Exception = g.addPin(n, "exception", Data, Out, TypeException)
	}
	n.Payload = p
	return n
}

// AddConstructor adds an object construction node.
func (g *Graph) AddConstructor(t TypeRef, params []Param, pure bool) *Node {
	n := g.addNode(KindConstructor, "")
	if !pure {
		g.addPin(n, "exec", Exec, In, TypeRef{})
		g.addPin(n, "exec", Exec, Out, TypeRef{})
	}
	p := ConstructorPayload{Type: t, Params: params}
	for _, param := range params {
		p.Args = append(p.Args, g.addPin(n, param.Name, Data, In, param.Type))
	}
	p.Result = g.addPin(n, "result", Data, Out, t)
	n.Payload = p
	return n
}

// AddVariableSetter adds a node assigning a field, property or indexer.
func (g *Graph) AddVariableSetter(v VariableSpec) *Node {
	n := g.addNode(KindVariableSetter, "")
	g.addPin(n, "exec", Exec, In, TypeRef{})
	g.addPin(n, "exec", Exec, Out, TypeRef{})
	p := g.variablePins(n, v)
	p.Value = g.addPin(n, "value", Data, In, v.Type)
	p.Result = g.addPin(n, "value", Data, Out, v.Type)
	n.Payload = p
	return n
}

// AddVariableGetter adds a pure node reading a field, property or indexer.
func (g *Graph) AddVariableGetter(v VariableSpec) *Node {
	n := g.addNode(KindVariableGetter, "")
	p := g.variablePins(n, v)
	p.Value = NoPin
	p.Result = g.addPin(n, "value", Data, Out, v.Type)
	n.Payload = p
	return n
}

func (g *Graph) variablePins(n *Node, v VariableSpec) VariablePayload {
	p := VariablePayload{Variable: v, Target: NoPin, Index: NoPin}
	if !v.Static {
		p.Target = g.addPin(n, "target", Data, In, v.DeclaringType)
	}
	if v.Indexer {
		p.Index = g.addPin(n, "index", Data, In, v.IndexType)
	}
	return p
}

// AddBranch adds a two-way branch on a boolean condition.
func (g *Graph) AddBranch() *Node {
	n := g.addNode(KindBranch, "")
	g.addPin(n, "exec", Exec, In, TypeRef{})
	n.Payload = BranchPayload{
		Condition: g.addPin(n, "condition", Data, In, TypeBool),
		True:      g.addPin(n, "true", Exec, Out, TypeRef{}),
		False:     g.addPin(n, "false", Exec, Out, TypeRef{}),
	}
	return n
}

// AddForLoop adds a counting loop running index from initial to max inclusive.
// The second input exec pin continues with the next iteration.
func (g *Graph) AddForLoop() *Node {
	n := g.addNode(KindForLoop, "")
	g.addPin(n, "exec", Exec, In, TypeRef{})
	n.Payload = ForLoopPayload{
		Continue:  g.addPin(n, "continue", Exec, In, TypeRef{}),
		Initial:   g.addPin(n, "initial", Data, In, TypeInt),
		Max:       g.addPin(n, "max", Data, In, TypeInt),
		Loop:      g.addPin(n, "loop", Exec, Out, TypeRef{}),
		Completed: g.addPin(n, "completed", Exec, Out, TypeRef{}),
		Index:     g.addPin(n, "index", Data, Out, TypeInt),
	}
	return n
}

// AddCast adds an explicit cast. The impure form branches on failure.
func (g *Graph) AddCast(t TypeRef, pure bool) *Node {
	n := g.addNode(KindCast, "")
	p := CastPayload{Type: t, Success: NoPin, Failed: NoPin}
	if !pure {
		g.addPin(n, "exec", Exec, In, TypeRef{})
		p.Success = g.addPin(n, "success", Exec, Out, TypeRef{})
		p.Failed = g.addPin(n, "failed", Exec, Out, TypeRef{})
	}
	p.Object = g.addPin(n, "object", Data, In, TypeObject)
	p.Result = g.addPin(n, "result", Data, Out, t)
	n.Payload = p
	return n
}

// AddThrow adds a node that throws an exception.
func (g *Graph) AddThrow() *Node {
	n := g.addNode(KindThrow, "")
	g.addPin(n, "exec", Exec, In, TypeRef{})
	n.Payload = ThrowPayload{Exception: g.addPin(n, "exception", Data, In, TypeException)}
	return n
}

// AddAwait adds an await on a task. A zero result type awaits a plain Task.
func (g *Graph) AddAwait(result TypeRef) *Node {
	n := g.addNode(KindAwait, "")
	g.addPin(n, "exec", Exec, In, TypeRef{})
	g.addPin(n, "exec", Exec, Out, TypeRef{})
	p := AwaitPayload{Result: NoPin}
	if result.IsZero() {
		p.Task = g.addPin(n, "task", Data, In, TypeTask)
	} else {
		p.Task = g.addPin(n, "task", Data, In, Of("System.Threading.Tasks.Task", result))
		p.Result = g.addPin(n, "result", Data, Out, result)
	}
	n.Payload = p
	return n
}

// AddTernary adds a conditional selection between two values.
func (g *Graph) AddTernary(t TypeRef, pure bool) *Node {
	n := g.addNode(KindTernary, "")
	if !pure {
		g.addPin(n, "exec", Exec, In, TypeRef{})
		g.addPin(n, "exec", Exec, Out, TypeRef{})
	}
	n.Payload = TernaryPayload{
		Condition: g.addPin(n, "condition", Data, In, TypeBool),
		True:      g.addPin(n, "true", Data, In, t),
		False:     g.addPin(n, "false", Data, In, t),
		Result:    g.addPin(n, "result", Data, Out, t),
	}
	return n
}

// AddReroute adds a pass-through node for one channel.
func (g *Graph) AddReroute(c Channel, t TypeRef) *Node {
	n := g.addNode(KindReroute, "")
	name := c.String()
	if c == Data {
		name = "value"
	}
	n.Payload = ReroutePayload{
		Channel: c,
		In:      g.addPin(n, name, c, In, t),
		Out:     g.addPin(n, name, c, Out, t),
	}
	return n
}

// AddLiteral adds a constant. The value lives on the input pin as its
// unconnected value, so connecting that pin overrides the constant.
func (g *Graph) AddLiteral(t TypeRef, v cty.Value) *Node {
	n := g.addNode(KindLiteral, "")
	in := g.addPin(n, "value", Data, In, t)
	g.SetUnconnectedValue(in, v)
	n.Payload = LiteralPayload{
		Value:  in,
		Result: g.addPin(n, "value", Data, Out, t),
	}
	return n
}

// AddMakeDelegate adds a node producing a delegate bound to a method.
func (g *Graph) AddMakeDelegate(m MethodSpec, delegateType TypeRef) *Node {
	n := g.addNode(KindMakeDelegate, "")
	p := MakeDelegatePayload{Method: m, Target: NoPin}
	if !m.Static {
		p.Target = g.addPin(n, "target", Data, In, m.DeclaringType)
	}
	p.Result = g.addPin(n, "delegate", Data, Out, delegateType)
	n.Payload = p
	return n
}

// AddTypeOf adds a node producing the runtime Type of its type input.
func (g *Graph) AddTypeOf() *Node {
	n := g.addNode(KindTypeOf, "")
	n.Payload = TypeOfPayload{
		Type:   g.addPin(n, "type", TypeChannel, In, TypeObject),
		Result: g.addPin(n, "type", Data, Out, TypeType),
	}
	return n
}

// AddMakeArray adds an array constructor. With predefinedSize the node takes
// a size input, otherwise it takes count element inputs.
func (g *Graph) AddMakeArray(elem TypeRef, predefinedSize bool, count int) *Node {
	n := g.addNode(KindMakeArray, "")
	p := MakeArrayPayload{ElementType: elem, PredefinedSize: predefinedSize, Size: NoPin}
	if predefinedSize {
		p.Size = g.addPin(n, "size", Data, In, TypeInt)
	} else {
		for i := 0; i < count; i++ {
			p.Elements = append(p.Elements, g.addPin(n, fmt.Sprintf("element%d", i), Data, In, elem))
		}
	}
	p.Result = g.addPin(n, "array", Data, Out, ArrayOf(elem))
	n.Payload = p
	return n
}

// AddDefault adds a node producing default(T).
func (g *Graph) AddDefault(t TypeRef) *Node {
	n := g.addNode(KindDefault, "")
	n.Payload = DefaultPayload{Type: t, Result: g.addPin(n, "value", Data, Out, t)}
	return n
}

// AddTypeNode adds a node producing a type on its type output.
func (g *Graph) AddTypeNode(t TypeRef) *Node {
	n := g.addNode(KindTypeNode, "")
	n.Payload = TypeNodePayload{Type: t, Out: g.addPin(n, "type", TypeChannel, Out, t)}
	return n
}

// PortSpec declares one pin of a custom node.
type PortSpec struct {
	Name      string
	Channel   Channel
	Direction Direction
	Type      TypeRef
	Default   cty.Value // used as the unconnected value of input data pins
}

// AddCustom adds a node whose code is generated by a registered generator.
func (g *Graph) AddCustom(typeName string, ports []PortSpec, attrs map[string]cty.Value) *Node {
	n := g.addNode(KindCustom, "")
	for _, ps := range ports {
		id := g.addPin(n, ps.Name, ps.Channel, ps.Direction, ps.Type)
		if ps.Channel == Data && ps.Direction == In && ps.Default != cty.NilVal {
			g.SetUnconnectedValue(id, ps.Default)
		}
	}
	if attrs == nil {
		attrs = map[string]cty.Value{}
	}
	n.Payload = CustomPayload{TypeName: typeName, Attrs: attrs}
	return n
}

// SetUnconnectedValue gives an input data pin a literal fallback.
func (g *Graph) SetUnconnectedValue(id PinID, v cty.Value) {
	if p := g.Pin(id); p != nil {
		p.UsesUnconnectedValue = true
		p.UnconnectedValue = v
	}
}

// SetExplicitDefault marks an input data pin as using the callee's default.
func (g *Graph) SetExplicitDefault(id PinID, on bool) {
	if p := g.Pin(id); p != nil {
		p.ExplicitDefault = on
	}
}

// In returns the node's input pin with the given name, or NoPin.
func (g *Graph) In(n *Node, name string) PinID {
	id, _ := g.FindPin(n.ID, In, name)
	return id
}

// Out returns the node's output pin with the given name, or NoPin.
func (g *Graph) Out(n *Node, name string) PinID {
	id, _ := g.FindPin(n.ID, Out, name)
	return id
}

func indexedName(base string, i, total int) string {
	if total == 1 {
		return base
	}
	return fmt.Sprintf("%s%d", base, i+1)
}
