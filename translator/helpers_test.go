package translator

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/mxkacsa/execgraph/graph"
)

// seqNames numbers temporaries so expected output does not depend on the
// random source.
type seqNames struct {
	DefaultNames
	n int
}

func (s *seqNames) Temporary(_ *rand.Rand, taken func(string) bool) string {
	for {
		s.n++
		if name := fmt.Sprintf("temp%d", s.n); !taken(name) {
			return name
		}
	}
}

func translate(t *testing.T, g *graph.Graph, withSignature bool, opts ...Option) *Result {
	t.Helper()
	opts = append([]Option{WithNameGenerator(&seqNames{})}, opts...)
	res, err := New(opts...).Translate(g, withSignature)
	require.NoError(t, err)
	return res
}

func connect(t *testing.T, g *graph.Graph, from, to graph.PinID) {
	t.Helper()
	require.NoError(t, g.Connect(from, to))
}

func execOut(n *graph.Node) graph.PinID { return n.OutExec[0] }
func execIn(n *graph.Node) graph.PinID  { return n.InExec[0] }

var consoleWriteLine = graph.MethodSpec{
	Name:          "WriteLine",
	DeclaringType: graph.T("System.Console"),
	Static:        true,
	Params:        []graph.Param{{Name: "value", Type: graph.TypeString}},
}

func printCall(g *graph.Graph, v cty.Value) *graph.Node {
	n := g.AddCall(consoleWriteLine, graph.CallOptions{})
	if v != cty.NilVal {
		g.SetUnconnectedValue(n.InData[0], v)
	}
	return n
}

func addition(g *graph.Graph) *graph.Node {
	return g.AddCall(graph.MethodSpec{
		Name:          "op_Addition",
		DeclaringType: graph.TypeInt,
		Static:        true,
		Params:        []graph.Param{{Name: "x", Type: graph.TypeInt}, {Name: "y", Type: graph.TypeInt}},
		Returns:       []graph.TypeRef{graph.TypeInt},
	}, graph.CallOptions{Pure: true})
}

// ============================================================================
// Graphs shared by several tests
// ============================================================================

// branchGraph: entry -> if (true) return 1; else return 0;
func branchGraph(t *testing.T) *graph.Graph {
	g := graph.New("Pick", "C", graph.WithReturns(graph.TypeInt))
	lit := g.AddLiteral(graph.TypeBool, cty.True)
	br := g.AddBranch()
	one, zero := g.AddReturn(), g.AddReturn()
	g.SetUnconnectedValue(one.InData[0], cty.NumberIntVal(1))
	g.SetUnconnectedValue(zero.InData[0], cty.NumberIntVal(0))

	p := br.Payload.(graph.BranchPayload)
	connect(t, g, execOut(g.Entry()), execIn(br))
	connect(t, g, lit.OutData[0], p.Condition)
	connect(t, g, p.True, execIn(one))
	connect(t, g, p.False, execIn(zero))
	return g
}

// sharedPureGraph: two calls consuming the same pure addition.
func sharedPureGraph(t *testing.T) *graph.Graph {
	g := graph.New("Sum", "M")
	a := g.AddParameter("a", graph.TypeInt)
	add := addition(g)
	g.SetUnconnectedValue(add.InData[1], cty.NumberIntVal(2))
	first, second := printCall(g, cty.NilVal), printCall(g, cty.NilVal)

	connect(t, g, a, add.InData[0])
	connect(t, g, execOut(g.Entry()), execIn(first))
	connect(t, g, execOut(first), execIn(second))
	connect(t, g, add.OutData[0], first.InData[0])
	connect(t, g, add.OutData[0], second.InData[0])
	return g
}

// tryCatchGraph: a protected call whose catch path returns early.
func tryCatchGraph(t *testing.T) *graph.Graph {
	g := graph.New("Load", "Repo", graph.WithReturns(graph.TypeString))
	call := g.AddCall(graph.MethodSpec{
		Name:          "ReadAllText",
		DeclaringType: graph.T("System.IO.File"),
		Static:        true,
		Params:        []graph.Param{{Name: "path", Type: graph.TypeString}},
		Returns:       []graph.TypeRef{graph.TypeString},
	}, graph.CallOptions{HandlesExceptions: true})
	g.SetUnconnectedValue(call.InData[0], cty.StringVal("a.txt"))
	ok, failed := g.AddReturn(), g.AddReturn()
	g.SetUnconnectedValue(failed.InData[0], cty.StringVal(""))

	p := call.Payload.(graph.CallPayload)
	connect(t, g, execOut(g.Entry()), execIn(call))
	connect(t, g, execOut(call), execIn(ok))
	connect(t, g, p.Results[0], ok.InData[0])
	connect(t, g, p.Catch, execIn(failed))
	return g
}

// forLoopGraph: for index 0..9 print index.
func forLoopGraph(t *testing.T) *graph.Graph {
	g := graph.New("Count", "C")
	loop := g.AddForLoop()
	p := loop.Payload.(graph.ForLoopPayload)
	g.SetUnconnectedValue(p.Initial, cty.NumberIntVal(0))
	g.SetUnconnectedValue(p.Max, cty.NumberIntVal(9))
	body := printCall(g, cty.NilVal)

	connect(t, g, execOut(g.Entry()), execIn(loop))
	connect(t, g, p.Loop, execIn(body))
	connect(t, g, p.Index, body.InData[0])
	connect(t, g, execOut(body), p.Continue)
	return g
}

// backEdgeGraph: print, then branch back to the print while flag is false.
func backEdgeGraph(t *testing.T) *graph.Graph {
	g := graph.New("Spin", "C")
	flag := g.AddParameter("flag", graph.TypeBool)
	pr := printCall(g, cty.StringVal("p"))
	br := g.AddBranch()
	p := br.Payload.(graph.BranchPayload)

	connect(t, g, execOut(g.Entry()), execIn(pr))
	connect(t, g, execOut(pr), execIn(br))
	connect(t, g, flag, p.Condition)
	connect(t, g, p.False, execIn(pr))
	return g
}

// loopBreakGraph: the loop body and the completed path both reach "done".
func loopBreakGraph(t *testing.T) *graph.Graph {
	g := graph.New("Scan", "C")
	loop := g.AddForLoop()
	p := loop.Payload.(graph.ForLoopPayload)
	g.SetUnconnectedValue(p.Initial, cty.NumberIntVal(0))
	g.SetUnconnectedValue(p.Max, cty.NumberIntVal(9))
	body, done := printCall(g, cty.StringVal("x")), printCall(g, cty.StringVal("done"))

	connect(t, g, execOut(g.Entry()), execIn(loop))
	connect(t, g, p.Loop, execIn(body))
	connect(t, g, execOut(body), execIn(done))
	connect(t, g, p.Completed, execIn(done))
	return g
}

// catchJoinGraph: the normal path and the catch handler meet at "b".
func catchJoinGraph(t *testing.T) *graph.Graph {
	g := graph.New("Remove", "Repo")
	call := g.AddCall(graph.MethodSpec{
		Name:          "Delete",
		DeclaringType: graph.T("System.IO.File"),
		Static:        true,
		Params:        []graph.Param{{Name: "path", Type: graph.TypeString}},
	}, graph.CallOptions{HandlesExceptions: true})
	g.SetUnconnectedValue(call.InData[0], cty.StringVal("a.txt"))
	a, b, c := printCall(g, cty.StringVal("a")), printCall(g, cty.StringVal("b")), printCall(g, cty.StringVal("c"))

	p := call.Payload.(graph.CallPayload)
	connect(t, g, execOut(g.Entry()), execIn(call))
	connect(t, g, execOut(call), execIn(a))
	connect(t, g, execOut(a), execIn(b))
	connect(t, g, p.Catch, execIn(c))
	connect(t, g, execOut(c), execIn(b))
	return g
}

// chainedBranchGraph: the first branch's false arm enters the second
// branch's true arm, and both arms of the second branch meet at "j".
func chainedBranchGraph(t *testing.T) *graph.Graph {
	g := graph.New("Route", "C")
	flag1 := g.AddParameter("flag1", graph.TypeBool)
	flag2 := g.AddParameter("flag2", graph.TypeBool)
	first, second := g.AddBranch(), g.AddBranch()
	p1 := first.Payload.(graph.BranchPayload)
	p2 := second.Payload.(graph.BranchPayload)
	tr, fa, join := printCall(g, cty.StringVal("t")), printCall(g, cty.StringVal("f")), printCall(g, cty.StringVal("j"))

	connect(t, g, flag1, p1.Condition)
	connect(t, g, flag2, p2.Condition)
	connect(t, g, execOut(g.Entry()), execIn(first))
	connect(t, g, p1.True, execIn(second))
	connect(t, g, p1.False, execIn(tr))
	connect(t, g, p2.True, execIn(tr))
	connect(t, g, p2.False, execIn(fa))
	connect(t, g, execOut(tr), execIn(join))
	connect(t, g, execOut(fa), execIn(join))
	return g
}
