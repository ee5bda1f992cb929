package translator

import (
	"fmt"
	"strings"

	"github.com/mxkacsa/execgraph/graph"
)

func emitReturn(ec *emitContext, it *Item, follow graph.PinID) error {
	n := ec.g.Node(it.Node)
	p := n.Payload.(graph.ReturnPayload)
	if err := ec.prologue(n); err != nil {
		return err
	}

	switch len(p.Values) {
	case 0:
		// Falling off the end returns anyway.
		if follow != graph.NoPin {
			ec.writeLine("return;")
		}
	case 1:
		if ec.g.Pin(p.Values[0]).Type.Equal(graph.TypeTask) {
			ec.writeLine("return;")
			return nil
		}
		v, err := ec.expr(p.Values[0])
		if err != nil {
			return err
		}
		ec.writeLine("return %s;", v)
	default:
		values := make([]string, len(p.Values))
		for i, in := range p.Values {
			v, err := ec.expr(in)
			if err != nil {
				return err
			}
			values[i] = v
		}
		ec.writeLine("return new %s(%s);", ec.tupleType(p.Values), strings.Join(values, ", "))
	}
	return nil
}

func emitBranch(ec *emitContext, it *Item, follow graph.PinID) error {
	n := ec.g.Node(it.Node)
	p := n.Payload.(graph.BranchPayload)
	if err := ec.prologue(n); err != nil {
		return err
	}
	cond, err := ec.expr(p.Condition)
	if err != nil {
		return err
	}
	ec.writeLine("if (%s)", cond)
	return ec.writeIfElse(it, follow)
}

// writeIfElse writes the two arms of an if item as then and else blocks.
func (ec *emitContext) writeIfElse(it *Item, follow graph.PinID) error {
	for i, a := range it.Arms {
		if i > 0 {
			ec.writeLine("else")
		}
		ec.open()
		if err := ec.emitArm(a, follow); err != nil {
			return err
		}
		ec.close()
	}
	return nil
}

func emitForLoop(ec *emitContext, it *Item, follow graph.PinID) error {
	n := ec.g.Node(it.Node)
	p := n.Payload.(graph.ForLoopPayload)
	if err := ec.prologue(n); err != nil {
		return err
	}
	initial, err := ec.expr(p.Initial)
	if err != nil {
		return err
	}
	limit, err := ec.expr(p.Max)
	if err != nil {
		return err
	}
	index := ec.nameFor(p.Index)

	ec.writeLine("for (%[1]s = %[2]s; %[1]s <= %[3]s; %[1]s++)", index, initial, limit)
	ec.open()
	ec.loops = append(ec.loops, n.ID)
	if len(it.Arms) > 0 && it.Arms[0].Target != graph.NoPin {
		if err := ec.emitArm(it.Arms[0], p.Continue); err != nil {
			return err
		}
	}
	if err := dispatch[graph.KindForLoop][1](ec, it, follow); err != nil {
		return err
	}
	ec.loops = ec.loops[:len(ec.loops)-1]
	ec.close()

	ec.transfer(p.Completed, follow)
	return nil
}

// emitForLoopContinue places the continue pin's state at the end of the loop
// body, where falling through starts the next iteration.
func emitForLoopContinue(ec *emitContext, it *Item, _ graph.PinID) error {
	p := ec.g.Node(it.Node).Payload.(graph.ForLoopPayload)
	ec.label(p.Continue)
	return nil
}

func emitCast(ec *emitContext, it *Item, follow graph.PinID) error {
	n := ec.g.Node(it.Node)
	p := n.Payload.(graph.CastPayload)
	if err := ec.prologue(n); err != nil {
		return err
	}
	obj, err := ec.expr(p.Object)
	if err != nil {
		return err
	}
	result := ec.nameFor(p.Result)
	t := ec.typeName(p.Type)

	if it.Kind == ItemIf {
		ec.writeLine("%s = %s as %s;", result, obj, t)
		ec.writeLine("if (%s is null)", result)
		return ec.writeIfElse(it, follow)
	}

	ec.writeLine("%s = (%s)%s;", result, t, obj)
	if !n.IsPure() {
		ec.transfer(p.Success, follow)
	}
	return nil
}

func emitThrow(ec *emitContext, it *Item, _ graph.PinID) error {
	n := ec.g.Node(it.Node)
	p := n.Payload.(graph.ThrowPayload)
	if err := ec.prologue(n); err != nil {
		return err
	}
	v, err := ec.expr(p.Exception)
	if err != nil {
		return err
	}
	ec.writeLine("throw %s;", v)
	return nil
}

func emitAwait(ec *emitContext, it *Item, follow graph.PinID) error {
	n := ec.g.Node(it.Node)
	p := n.Payload.(graph.AwaitPayload)
	if err := ec.prologue(n); err != nil {
		return err
	}
	task, err := ec.expr(p.Task)
	if err != nil {
		return err
	}
	if p.Result != graph.NoPin {
		ec.writeLine("%s = await %s;", ec.nameFor(p.Result), task)
	} else {
		ec.writeLine("await %s;", task)
	}
	ec.epilogue(n, follow)
	return nil
}

func emitVariableSetter(ec *emitContext, it *Item, follow graph.PinID) error {
	n := ec.g.Node(it.Node)
	p := n.Payload.(graph.VariablePayload)
	if err := ec.prologue(n); err != nil {
		return err
	}
	value, err := ec.expr(p.Value)
	if err != nil {
		return err
	}
	member, err := ec.member(p)
	if err != nil {
		return err
	}
	ec.writeLine("%s = %s;", member, value)
	ec.writeLine("%s = %s;", ec.nameFor(p.Result), value)
	ec.epilogue(n, follow)
	return nil
}

// member renders the field, property or indexer a variable node accesses.
func (ec *emitContext) member(p graph.VariablePayload) (string, error) {
	v := p.Variable
	receiver, err := ec.receiver(v.Static, v.DeclaringType, p.Target)
	if err != nil {
		return "", err
	}
	if !v.Indexer {
		return receiver + "." + v.Name, nil
	}
	index, err := ec.expr(p.Index)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s[%s]", receiver, index), nil
}

func emitReroute(ec *emitContext, it *Item, follow graph.PinID) error {
	n := ec.g.Node(it.Node)
	p := n.Payload.(graph.ReroutePayload)
	switch p.Channel {
	case graph.Exec:
		ec.transfer(p.Out, follow)
	case graph.Data:
		v, err := ec.expr(p.In)
		if err != nil {
			return err
		}
		ec.writeLine("%s = %s;", ec.nameFor(p.Out), v)
	}
	return nil
}
