package translator

import (
	"strings"

	"github.com/mxkacsa/execgraph/graph"
)

var modifierOrder = []struct {
	flag graph.Modifiers
	word string
}{
	{graph.ModAsync, "async"},
	{graph.ModStatic, "static"},
	{graph.ModAbstract, "abstract"},
	{graph.ModSealed, "sealed"},
}

// writeSignature writes the comment line and declaration heading the body.
func (ec *emitContext) writeSignature() {
	g := ec.g
	ec.writeLine("// %s", g.FullName())

	words := []string{g.Visibility.String()}
	name := g.Name
	if g.Kind == graph.ConstructorGraph {
		name = g.Class
	} else {
		for _, m := range modifierOrder {
			if g.Modifiers.Has(m.flag) {
				words = append(words, m.word)
			}
		}
		switch {
		case g.Modifiers.Has(graph.ModOverride):
			words = append(words, "override")
		case g.Modifiers.Has(graph.ModVirtual):
			words = append(words, "virtual")
		}
		words = append(words, ec.returnType())
	}

	entry := g.Entry()
	if len(entry.OutType) > 0 {
		generics := make([]string, len(entry.OutType))
		for i, pin := range entry.OutType {
			generics[i] = g.Pin(pin).Name
		}
		name += "<" + strings.Join(generics, ", ") + ">"
	}

	params := make([]string, len(entry.OutData))
	for i, pin := range entry.OutData {
		params[i] = ec.typeName(g.Pin(pin).Type) + " " + ec.nameFor(pin)
	}

	ec.writeLine("%s %s(%s)", strings.Join(words, " "), name, strings.Join(params, ", "))
}

// returnType is the declared return type.
func (ec *emitContext) returnType() string {
	switch len(ec.g.Returns) {
	case 0:
		return "void"
	case 1:
		return ec.typeName(ec.g.Returns[0])
	}
	types := make([]string, len(ec.g.Returns))
	for i, t := range ec.g.Returns {
		types[i] = ec.typeName(t)
	}
	return "System.Tuple<" + strings.Join(types, ", ") + ">"
}

// returnsValue reports whether falling off the end needs a value.
func (ec *emitContext) returnsValue() bool {
	if ec.g.Kind == graph.ConstructorGraph || len(ec.g.Returns) == 0 {
		return false
	}
	return len(ec.g.Returns) > 1 || !ec.g.Returns[0].Equal(graph.TypeTask)
}
