package translator

import "github.com/mxkacsa/execgraph/graph"

// emitFunc lowers one node. follow is the input exec pin written right after
// the node in emission order, or graph.NoPin for the end marker. Pure nodes
// are lowered through the same functions with follow set to graph.NoPin.
type emitFunc func(ec *emitContext, it *Item, follow graph.PinID) error

// dispatch maps every node kind to its emitters, one per input exec pin. It
// is filled in init because emitters recurse into emitItem, which reads it.
var dispatch map[graph.Kind][]emitFunc

func init() {
	dispatch = map[graph.Kind][]emitFunc{
		graph.KindEntry:          {emitEntry},
		graph.KindReturn:         {emitReturn},
		graph.KindCall:           {emitCall},
		graph.KindConstructor:    {emitConstructor},
		graph.KindVariableSetter: {emitVariableSetter},
		graph.KindVariableGetter: {emitVariableGetter},
		graph.KindBranch:         {emitBranch},
		graph.KindForLoop:        {emitForLoop, emitForLoopContinue},
		graph.KindCast:           {emitCast},
		graph.KindThrow:          {emitThrow},
		graph.KindAwait:          {emitAwait},
		graph.KindTernary:        {emitTernary},
		graph.KindReroute:        {emitReroute},
		graph.KindLiteral:        {emitLiteral},
		graph.KindMakeDelegate:   {emitMakeDelegate},
		graph.KindTypeOf:         {emitTypeOf},
		graph.KindMakeArray:      {emitMakeArray},
		graph.KindDefault:        {emitDefault},
		graph.KindTypeNode:       {emitTypeNode},
		graph.KindCustom:         {emitCustom},
	}
}

func emitEntry(*emitContext, *Item, graph.PinID) error {
	return nil
}

// prologue writes the pure dependencies of an impure node.
func (ec *emitContext) prologue(n *graph.Node) error {
	if n.IsPure() {
		return nil
	}
	return ec.emitDeps(n)
}

// epilogue continues along the node's first exec output.
func (ec *emitContext) epilogue(n *graph.Node, follow graph.PinID) {
	if !n.IsPure() && len(n.OutExec) > 0 {
		ec.transfer(n.OutExec[0], follow)
	}
}

// ============================================================================
// Custom nodes
// ============================================================================

func emitCustom(ec *emitContext, it *Item, follow graph.PinID) error {
	n := ec.g.Node(it.Node)
	p := n.Payload.(graph.CustomPayload)
	def, ok := ec.t.registry.Lookup(p.TypeName)
	if !ok {
		return ec.emitUnknown(n, follow, "custom node is not registered")
	}
	if def.Generator == nil {
		return ec.emitUnknown(n, follow, "custom node has no generator")
	}
	if err := ec.prologue(n); err != nil {
		return err
	}

	gc := &GeneratorContext{ec: ec, node: n, follow: follow}
	if err := def.Generator(gc, n); err != nil {
		return &GeneratorError{Node: n.ID, Type: p.TypeName, Err: err}
	}
	if !gc.transferred {
		ec.epilogue(n, follow)
	}
	return nil
}
