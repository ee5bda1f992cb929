package translator

import (
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/mxkacsa/execgraph/graph"
)

// ============================================================================
// Core Nodes - Console, Annotation
// ============================================================================

const (
	NodePrint   = "Print"
	NodeComment = "Comment"
)

func init() {
	registerConsoleNodes()
	registerAnnotationNodes()
}

func execPorts(extra ...graph.PortSpec) []graph.PortSpec {
	ports := []graph.PortSpec{
		{Name: "exec", Channel: graph.Exec, Direction: graph.In},
		{Name: "exec", Channel: graph.Exec, Direction: graph.Out},
	}
	return append(ports, extra...)
}

func registerConsoleNodes() {
	// Print - Writes a value to standard output
	MustRegisterNode(NodeDefinition{
		Type:        NodePrint,
		Category:    "Console",
		Description: "Writes a value to standard output",
		Ports: execPorts(graph.PortSpec{
			Name:      "message",
			Channel:   graph.Data,
			Direction: graph.In,
			Type:      graph.TypeString,
			Default:   cty.StringVal(""),
		}),
		Generator: generatePrintNode,
	})
}

func generatePrintNode(ctx *GeneratorContext, n *graph.Node) error {
	msg, err := ctx.ResolveInput(n, "message")
	if err != nil {
		return err
	}
	ctx.WriteLine("System.Console.WriteLine(%s);", msg)
	return nil
}

func registerAnnotationNodes() {
	// Comment - Leaves a comment in the generated code
	MustRegisterNode(NodeDefinition{
		Type:        NodeComment,
		Category:    "Annotation",
		Description: "Leaves a comment in the generated code",
		Ports:       execPorts(),
		Generator:   generateCommentNode,
	})
}

func generateCommentNode(ctx *GeneratorContext, _ *graph.Node) error {
	text := ctx.Attr("text")
	if text == cty.NilVal || !text.IsKnown() || text.IsNull() || !text.Type().Equals(cty.String) {
		return nil
	}
	for _, l := range strings.Split(text.AsString(), "\n") {
		ctx.WriteLine("// %s", l)
	}
	return nil
}
