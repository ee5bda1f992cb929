package parse

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mxkacsa/execgraph/graph"
	"github.com/mxkacsa/execgraph/translator"
)

func translate(t *testing.T, g *graph.Graph) *translator.Result {
	t.Helper()
	res, err := translator.New().Translate(g, true)
	require.NoError(t, err)
	return res
}

func parseOne(t *testing.T, src string) *graph.Graph {
	t.Helper()
	graphs, err := NewLoader(nil).Parse([]byte(src), "test.graph.hcl")
	require.NoError(t, err)
	require.Len(t, graphs, 1)
	return graphs[0]
}

func TestParseFile_StaticPureCall(t *testing.T) {
	graphs, err := LoadFile(filepath.Join("testdata", "max.graph.hcl"))
	require.NoError(t, err)
	require.Len(t, graphs, 1)

	want := "// Calculator.Max\n" +
		"public static System.Int32 Max(System.Int32 a, System.Int32 b)\n" +
		"{\n" +
		"\t// Variables\n" +
		"\tSystem.Int32 varResult = default(System.Int32);\n" +
		"\n" +
		"\tvarResult = System.Math.Max(a, b);\n" +
		"\treturn varResult;\n" +
		"\treturn default(System.Int32);\n" +
		"}\n"
	assert.Equal(t, want, translate(t, graphs[0]).Code)
}

func TestParseFile_LoopWithRegisteredNodes(t *testing.T) {
	graphs, err := LoadFile(filepath.Join("testdata", "count.graph.hcl"))
	require.NoError(t, err)
	require.Len(t, graphs, 1)

	want := "// Counter.Count\n" +
		"public void Count(System.Int32 n)\n" +
		"{\n" +
		"\t// Variables\n" +
		"\tSystem.Int32 varIndex = default(System.Int32);\n" +
		"\n" +
		"\tfor (varIndex = 1; varIndex <= n; varIndex++)\n" +
		"\t{\n" +
		"\t\t// tick\n" +
		"\t\tSystem.Console.WriteLine(varIndex);\n" +
		"\t}\n" +
		"}\n"
	res := translate(t, graphs[0])
	assert.Equal(t, want, res.Code)
	assert.Empty(t, res.Diagnostics)
}

func TestLoadPaths_Directory(t *testing.T) {
	graphs, err := NewLoader(nil).LoadPaths(context.Background(), "testdata")
	require.NoError(t, err)
	require.Len(t, graphs, 2)
	assert.Equal(t, "Counter.Count", graphs[0].FullName())
	assert.Equal(t, "Calculator.Max", graphs[1].FullName())
}

func TestLoadDocuments_KeepsSourcePaths(t *testing.T) {
	docs, err := NewLoader(nil).LoadDocuments(context.Background(), "testdata")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, filepath.Join("testdata", "count.graph.hcl"), docs[0].Path)
	assert.Equal(t, filepath.Join("testdata", "max.graph.hcl"), docs[1].Path)
	require.Len(t, docs[1].Graphs, 1)
	assert.Equal(t, "Calculator.Max", docs[1].Graphs[0].FullName())
}

func TestLoadPaths_MissingPath(t *testing.T) {
	_, err := NewLoader(nil).LoadPaths(context.Background(), filepath.Join("testdata", "nope.graph.hcl"))
	require.Error(t, err)
}

func TestLoadPaths_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLoader(nil).LoadPaths(ctx, "testdata")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParse_NodeLabelsAndGraphSettings(t *testing.T) {
	g := parseOne(t, `
graph "Build" {
  class      = "Widget"
  kind       = "constructor"
  visibility = "protected"
  generics   = ["T"]

  parameter "items" { type = "System.Collections.Generic.List<T>" }

  node "ret" "return" {}

  connect {
    from = "entry.exec"
    to   = "ret.exec"
  }
}
`)
	assert.Equal(t, graph.ConstructorGraph, g.Kind)
	assert.Equal(t, graph.Protected, g.Visibility)

	ret, ok := g.FindNode("ret")
	require.True(t, ok)
	assert.Equal(t, graph.KindReturn, ret.Kind)

	entry := g.Entry()
	require.Len(t, entry.OutData, 1)
	items := g.Pin(entry.OutData[0]).Type
	assert.Equal(t, "System.Collections.Generic.List", items.Name)
	require.Len(t, items.Args, 1)
	assert.True(t, items.Args[0].Generic)
	require.Len(t, entry.OutType, 1)
}

func TestParse_InputsAndExplicitDefaults(t *testing.T) {
	g := parseOne(t, `
graph "Run" {
  class = "Job"

  node "log" "call" {
    method         = "Log"
    declaring_type = "Util"
    static         = true
    param "x" { type = "System.Int32" }
    param "y" {
      type             = "System.Int32"
      explicit_default = true
    }
    input "x" { value = 1 }
  }

  connect {
    from = "entry.exec"
    to   = "log.exec"
  }
}
`)
	assert.Contains(t, translate(t, g).Code, "\tUtil.Log(x: 1);\n")
}

func TestParse_CustomNodes(t *testing.T) {
	t.Run("unregistered type gets bare exec pins", func(t *testing.T) {
		g := parseOne(t, `
graph "Run" {
  class = "Job"

  node "m" "custom" {
    type  = "Mystery"
    speed = 3
  }

  connect {
    from = "entry.exec"
    to   = "m.exec"
  }
}
`)
		m, ok := g.FindNode("m")
		require.True(t, ok)
		assert.Len(t, m.InExec, 1)
		assert.Len(t, m.OutExec, 1)
		p := m.Payload.(graph.CustomPayload)
		assert.Equal(t, "Mystery", p.TypeName)
		assert.Contains(t, p.Attrs, "speed")

		res := translate(t, g)
		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, translator.UnknownNodeKind, res.Diagnostics[0].Code)
		assert.Contains(t, res.Code, "// Unknown node kind: Mystery")
	})

	t.Run("registered type keeps its ports", func(t *testing.T) {
		g := parseOne(t, `
graph "Run" {
  class = "Job"

  node "p" "custom" {
    type = "Print"
    input "message" { value = "hi" }
  }

  connect {
    from = "entry.exec"
    to   = "p.exec"
  }
}
`)
		assert.Contains(t, translate(t, g).Code, "\tSystem.Console.WriteLine(\"hi\");\n")
	})

	t.Run("shorthand needs the registry", func(t *testing.T) {
		src := `
graph "Run" {
  class = "Job"
  node "p" "Print" {}
}
`
		_, err := NewLoader(translator.NewRegistry()).Parse([]byte(src), "test.graph.hcl")
		assert.ErrorIs(t, err, ErrUnknownKind)
	})
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
		line int
	}{
		{
			name: "unknown kind",
			src: `graph "G" {
  class = "C"
  node "x" "teleport" {}
}`,
			want: ErrUnknownKind,
			line: 3,
		},
		{
			name: "entry is implicit",
			src: `graph "G" {
  class = "C"
  node "e" "entry" {}
}`,
			want: ErrUnknownKind,
			line: 3,
		},
		{
			name: "duplicate node",
			src: `graph "G" {
  class = "C"
  node "x" "branch" {}
  node "x" "return" {}
}`,
			want: ErrDuplicateNode,
			line: 4,
		},
		{
			name: "unknown node in connection",
			src: `graph "G" {
  class = "C"
  connect {
    from = "entry.exec"
    to   = "ghost.exec"
  }
}`,
			want: ErrUnknownPin,
			line: 5,
		},
		{
			name: "unknown pin name",
			src: `graph "G" {
  class = "C"
  node "b" "branch" {}
  connect {
    from = "b.maybe"
    to   = "b.exec"
  }
}`,
			want: ErrUnknownPin,
			line: 5,
		},
		{
			name: "output used as input",
			src: `graph "G" {
  class = "C"
  node "b" "branch" {}
  connect {
    from = "entry.exec"
    to   = "b.true"
  }
}`,
			want: ErrUnknownPin,
			line: 6,
		},
		{
			name: "pin reference without node",
			src: `graph "G" {
  class = "C"
  connect {
    from = "exec"
    to   = "exec"
  }
}`,
			want: ErrUnknownPin,
			line: 4,
		},
		{
			name: "channel mismatch",
			src: `graph "G" {
  class = "C"
  parameter "a" { type = "System.Boolean" }
  node "b" "branch" {}
  connect {
    from = "entry.a"
    to   = "b.exec"
  }
}`,
			want: graph.ErrChannelMismatch,
			line: 6,
		},
		{
			name: "unknown input",
			src: `graph "G" {
  class = "C"
  node "b" "branch" {
    input "nope" { value = true }
  }
}`,
			want: ErrUnknownPin,
			line: 3,
		},
		{
			name: "bad type",
			src: `graph "G" {
  class = "C"
  node "d" "default" { type = "List<System.Int32" }
}`,
			want: ErrInvalidType,
			line: 3,
		},
		{
			name: "missing type",
			src: `graph "G" {
  class = "C"
  node "d" "default" {}
}`,
			want: ErrInvalidType,
			line: 3,
		},
		{
			name: "missing method",
			src: `graph "G" {
  class = "C"
  node "c" "call" {}
}`,
			want: ErrInvalidValue,
			line: 3,
		},
		{
			name: "unknown pass type",
			src: `graph "G" {
  class = "C"
  node "c" "call" {
    method = "M"
    param "x" {
      type = "System.Int32"
      pass = "sideways"
    }
  }
}`,
			want: ErrInvalidValue,
			line: 3,
		},
		{
			name: "unknown visibility",
			src: `graph "G" {
  class      = "C"
  visibility = "secret"
}`,
			want: ErrInvalidValue,
		},
		{
			name: "unknown modifier",
			src: `graph "G" {
  class     = "C"
  modifiers = ["fast"]
}`,
			want: ErrInvalidValue,
		},
		{
			name: "unknown graph kind",
			src: `graph "G" {
  class = "C"
  kind  = "property"
}`,
			want: ErrInvalidValue,
		},
		{
			name: "unknown channel",
			src: `graph "G" {
  class = "C"
  node "r" "reroute" { channel = "radio" }
}`,
			want: ErrInvalidValue,
			line: 3,
		},
		{
			name: "literal without value",
			src: `graph "G" {
  class = "C"
  node "l" "literal" { type = "System.Int32" }
}`,
			want: ErrInvalidValue,
			line: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(nil).Parse([]byte(tt.src), "bad.graph.hcl")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			if tt.line > 0 {
				assert.Equal(t, tt.line, pe.Line, pe.Error())
			}
		})
	}
}

func TestParse_DiagnosticsAreWrapped(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "syntax error", src: `graph "G" {`},
		{name: "missing class", src: `graph "G" {}`},
		{name: "unexpected attribute", src: `graph "G" {
  class = "C"
  node "b" "branch" { colour = "red" }
}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(nil).Parse([]byte(tt.src), "bad.graph.hcl")
			require.Error(t, err)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, "bad.graph.hcl", pe.Source)

			var diags hcl.Diagnostics
			require.True(t, errors.As(err, &diags))
			assert.True(t, diags.HasErrors())
		})
	}
}

func TestParseError_Format(t *testing.T) {
	pe := &ParseError{Source: "a.graph.hcl", Line: 3, Column: 7, Message: "boom", Cause: ErrUnknownPin}
	assert.Equal(t, "a.graph.hcl:3:7: boom", pe.Error())
	assert.ErrorIs(t, pe, ErrUnknownPin)

	pe = NewParseError("a.graph.hcl", "boom", nil)
	assert.Equal(t, "a.graph.hcl: boom", pe.Error())
}

func TestParseType(t *testing.T) {
	generics := map[string]bool{"T": true}
	tests := []struct {
		in      string
		want    graph.TypeRef
		wantErr bool
	}{
		{in: "System.Int32", want: graph.T("System.Int32")},
		{in: " System.String[] ", want: graph.ArrayOf(graph.T("System.String"))},
		{in: "System.Int32[][]", want: graph.ArrayOf(graph.ArrayOf(graph.T("System.Int32")))},
		{in: "T", want: graph.GenericParam("T")},
		{in: "enum Color", want: graph.TypeRef{Name: "Color", Enum: true}},
		{
			in:   "System.Collections.Generic.Dictionary<System.String, System.Collections.Generic.List<T>>",
			want: graph.Of("System.Collections.Generic.Dictionary", graph.T("System.String"), graph.Of("System.Collections.Generic.List", graph.GenericParam("T"))),
		},
		{in: "System.Tuple<System.Int32, System.String>[]", want: graph.ArrayOf(graph.Of("System.Tuple", graph.T("System.Int32"), graph.T("System.String")))},
		{in: "", wantErr: true},
		{in: "[]", wantErr: true},
		{in: "List<System.Int32", wantErr: true},
		{in: "List<A>>", wantErr: true},
		{in: "List<>", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseType(tt.in, generics)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidType)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "ParseType(%q) = %v, want %v", tt.in, got, tt.want)
		})
	}
}
