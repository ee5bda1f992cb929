package translator

import (
	"fmt"
	"strings"

	"github.com/mxkacsa/execgraph/graph"
)

// ============================================================================
// Calls
// ============================================================================

func emitCall(ec *emitContext, it *Item, follow graph.PinID) error {
	n := ec.g.Node(it.Node)
	p := n.Payload.(graph.CallPayload)

	if !p.HandlesExceptions {
		if err := ec.prologue(n); err != nil {
			return err
		}
		if err := ec.writeCall(n, p); err != nil {
			return err
		}
		ec.epilogue(n, follow)
		return nil
	}

	exception := ec.nameFor(p.Exception)
	ec.writeLine("try")
	ec.open()
	if err := ec.prologue(n); err != nil {
		return err
	}
	if err := ec.writeCall(n, p); err != nil {
		return err
	}
	ec.writeLine("%s = null;", exception)
	ec.epilogue(n, follow)
	ec.close()

	caught := ec.temp()
	ec.writeLine("catch (System.Exception %s)", caught)
	ec.open()
	ec.writeLine("%s = %s;", exception, caught)
	for _, r := range p.Results {
		ec.writeLine("%s = default(%s);", ec.nameFor(r), ec.typeName(ec.g.Pin(r).Type))
	}
	if len(it.Arms) > 0 {
		if err := ec.emitArm(it.Arms[0], follow); err != nil {
			return err
		}
	} else {
		ec.transfer(p.Catch, follow)
	}
	ec.close()
	return nil
}

// writeCall writes the call statement and unpacks multiple results.
func (ec *emitContext) writeCall(n *graph.Node, p graph.CallPayload) error {
	var assign, tuple string
	switch len(p.Results) {
	case 0:
	case 1:
		assign = ec.nameFor(p.Results[0]) + " = "
	default:
		tuple = ec.temp()
		assign = fmt.Sprintf("%s %s = ", ec.tupleType(p.Results), tuple)
	}

	if op, ok := ec.t.operators.Lookup(p.Method.Name); ok {
		expr, err := ec.operatorExpr(n, p, op)
		if err != nil {
			return err
		}
		ec.writeLine("%s%s;", assign, expr)
	} else {
		args, err := ec.arguments(p.Args, p.Method.Params)
		if err != nil {
			return err
		}
		receiver, err := ec.receiver(p.Method.Static, p.Method.DeclaringType, p.Target)
		if err != nil {
			return err
		}
		ec.writeLine("%s%s.%s(%s);", assign, receiver, ec.methodName(p.Method), args)
	}

	if tuple != "" {
		for i, r := range p.Results {
			ec.writeLine("%s = %s.Item%d;", ec.nameFor(r), tuple, i+1)
		}
	}
	return nil
}

func (ec *emitContext) operatorExpr(n *graph.Node, p graph.CallPayload, op Operator) (string, error) {
	want := 2
	if op.Unary {
		want = 1
	}
	operands := make([]string, 0, len(p.Args))
	for _, in := range p.Args {
		v, ok, err := ec.arg(in)
		if err != nil {
			return "", err
		}
		if ok {
			operands = append(operands, v)
		}
	}
	if len(p.Args) != want || len(operands) != want {
		return "", &ArityError{Node: n.ID, Method: p.Method.Name, Want: want, Got: len(operands)}
	}

	switch {
	case !op.Unary:
		return fmt.Sprintf("%s %s %s", operands[0], op.Symbol, operands[1]), nil
	case op.Postfix:
		return operands[0] + op.Symbol, nil
	default:
		return op.Symbol + operands[0], nil
	}
}

// receiver is the expression left of the member access: the declaring type
// for static members, otherwise the connected target or this.
func (ec *emitContext) receiver(static bool, declaring graph.TypeRef, target graph.PinID) (string, error) {
	if static {
		if declaring.IsZero() {
			return ec.g.Class, nil
		}
		return ec.typeName(declaring), nil
	}
	if target == graph.NoPin || ec.g.IncomingData(target) == graph.NoPin {
		return "this", nil
	}
	return ec.expr(target)
}

func (ec *emitContext) methodName(m graph.MethodSpec) string {
	if len(m.GenericArgs) == 0 {
		return m.Name
	}
	args := make([]string, len(m.GenericArgs))
	for i, t := range m.GenericArgs {
		args[i] = ec.typeName(t)
	}
	return m.Name + "<" + strings.Join(args, ", ") + ">"
}

// arguments renders an argument list. Arguments left to the callee's default
// are dropped; once any is dropped the rest are passed by name.
func (ec *emitContext) arguments(pins []graph.PinID, params []graph.Param) (string, error) {
	values := make([]string, len(pins))
	present := make([]bool, len(pins))
	named := false
	for i, in := range pins {
		v, ok, err := ec.arg(in)
		if err != nil {
			return "", err
		}
		values[i], present[i] = v, ok
		if !ok {
			named = true
		}
	}

	out := make([]string, 0, len(pins))
	for i, v := range values {
		if !present[i] {
			continue
		}
		var param graph.Param
		if i < len(params) {
			param = params[i]
		} else {
			param.Name = ec.g.Pin(pins[i]).Name
		}
		if named {
			v = param.Name + ": " + v
		}
		switch param.Pass {
		case graph.PassOut:
			v = "out " + v
		case graph.PassRef:
			v = "ref " + v
		}
		out = append(out, v)
	}
	return strings.Join(out, ", "), nil
}

func (ec *emitContext) tupleType(pins []graph.PinID) string {
	types := make([]string, len(pins))
	for i, pin := range pins {
		types[i] = ec.typeName(ec.g.Pin(pin).Type)
	}
	return "System.Tuple<" + strings.Join(types, ", ") + ">"
}

// ============================================================================
// Constructors
// ============================================================================

func emitConstructor(ec *emitContext, it *Item, follow graph.PinID) error {
	n := ec.g.Node(it.Node)
	p := n.Payload.(graph.ConstructorPayload)
	if err := ec.prologue(n); err != nil {
		return err
	}
	args, err := ec.arguments(p.Args, p.Params)
	if err != nil {
		return err
	}
	ec.writeLine("%s = new %s(%s);", ec.nameFor(p.Result), ec.typeName(p.Type), args)
	ec.epilogue(n, follow)
	return nil
}
