package translator

import (
	"strings"

	"github.com/mxkacsa/execgraph/graph"
)

// ============================================================================
// Value nodes
// ============================================================================

func emitLiteral(ec *emitContext, it *Item, _ graph.PinID) error {
	p := ec.g.Node(it.Node).Payload.(graph.LiteralPayload)
	v, err := ec.expr(p.Value)
	if err != nil {
		return err
	}
	ec.writeLine("%s = %s;", ec.nameFor(p.Result), v)
	return nil
}

func emitVariableGetter(ec *emitContext, it *Item, _ graph.PinID) error {
	p := ec.g.Node(it.Node).Payload.(graph.VariablePayload)
	member, err := ec.member(p)
	if err != nil {
		return err
	}
	ec.writeLine("%s = %s;", ec.nameFor(p.Result), member)
	return nil
}

func emitMakeDelegate(ec *emitContext, it *Item, _ graph.PinID) error {
	p := ec.g.Node(it.Node).Payload.(graph.MakeDelegatePayload)
	receiver, err := ec.receiver(p.Method.Static, p.Method.DeclaringType, p.Target)
	if err != nil {
		return err
	}
	ec.writeLine("%s = %s.%s;", ec.nameFor(p.Result), receiver, ec.methodName(p.Method))
	return nil
}

func emitTypeOf(ec *emitContext, it *Item, _ graph.PinID) error {
	p := ec.g.Node(it.Node).Payload.(graph.TypeOfPayload)
	ec.writeLine("%s = typeof(%s);", ec.nameFor(p.Result), ec.typeName(ec.g.InferredType(p.Type)))
	return nil
}

func emitMakeArray(ec *emitContext, it *Item, _ graph.PinID) error {
	p := ec.g.Node(it.Node).Payload.(graph.MakeArrayPayload)
	elem := ec.typeName(p.ElementType)
	result := ec.nameFor(p.Result)

	if p.PredefinedSize {
		size, err := ec.expr(p.Size)
		if err != nil {
			return err
		}
		ec.writeLine("%s = new %s[%s];", result, elem, size)
		return nil
	}

	values := make([]string, len(p.Elements))
	for i, in := range p.Elements {
		v, err := ec.expr(in)
		if err != nil {
			return err
		}
		values[i] = v
	}
	ec.writeLine("%s = new %s[] { %s };", result, elem, strings.Join(values, ", "))
	return nil
}

func emitDefault(ec *emitContext, it *Item, _ graph.PinID) error {
	p := ec.g.Node(it.Node).Payload.(graph.DefaultPayload)
	ec.writeLine("%s = default(%s);", ec.nameFor(p.Result), ec.typeName(p.Type))
	return nil
}

// emitTypeNode writes nothing; consumers read the type from the pin.
func emitTypeNode(*emitContext, *Item, graph.PinID) error {
	return nil
}

func emitTernary(ec *emitContext, it *Item, follow graph.PinID) error {
	n := ec.g.Node(it.Node)
	p := n.Payload.(graph.TernaryPayload)
	if err := ec.prologue(n); err != nil {
		return err
	}
	cond, err := ec.expr(p.Condition)
	if err != nil {
		return err
	}
	a, err := ec.expr(p.True)
	if err != nil {
		return err
	}
	b, err := ec.expr(p.False)
	if err != nil {
		return err
	}
	ec.writeLine("%s = %s ? %s : %s;", ec.nameFor(p.Result), cond, a, b)
	ec.epilogue(n, follow)
	return nil
}
