// Package parse loads execution graphs from HCL documents.
//
// A document holds one or more graph blocks:
//
//	graph "Max" {
//	  class      = "Calculator"
//	  visibility = "public"
//	  modifiers  = ["static"]
//	  returns    = ["System.Int32"]
//
//	  parameter "a" { type = "System.Int32" }
//	  parameter "b" { type = "System.Int32" }
//
//	  node "max" "call" {
//	    method         = "Max"
//	    declaring_type = "System.Math"
//	    static         = true
//	    pure           = true
//	    results        = ["System.Int32"]
//	    param "x" { type = "System.Int32" }
//	    param "y" { type = "System.Int32" }
//	  }
//	  node "ret" "return" {}
//
//	  connect { from = "entry.exec"  to = "ret.exec" }
//	  connect { from = "entry.a"     to = "max.x" }
//	  connect { from = "entry.b"     to = "max.y" }
//	  connect { from = "max.result"  to = "ret.value" }
//	}
//
// Pins are addressed as "<node>.<pin>"; the entry node is called "entry".
// Node kinds are the built-in kind names or the type name of a node in the
// custom node registry.
package parse

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/mxkacsa/execgraph/graph"
	"github.com/mxkacsa/execgraph/internal/ctxlog"
	"github.com/mxkacsa/execgraph/translator"
)

// Extension is the file suffix LoadPaths looks for in directories.
const Extension = ".graph.hcl"

// Loader turns graph documents into graphs. It caches parsed files and is
// not safe for concurrent use.
type Loader struct {
	registry *translator.Registry
	parser   *hclparse.Parser
}

// NewLoader creates a loader resolving custom node kinds in reg, or in the
// default registry when reg is nil.
func NewLoader(reg *translator.Registry) *Loader {
	if reg == nil {
		reg = translator.DefaultRegistry()
	}
	return &Loader{registry: reg, parser: hclparse.NewParser()}
}

// ParseFile loads every graph in the file at path.
func (l *Loader) ParseFile(path string) ([]*graph.Graph, error) {
	file, diags := l.parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, diagError(path, diags)
	}
	return l.decode(path, file)
}

// Parse loads every graph in src. filename is used in error messages.
func (l *Loader) Parse(src []byte, filename string) ([]*graph.Graph, error) {
	file, diags := l.parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diagError(filename, diags)
	}
	return l.decode(filename, file)
}

// Document is one loaded file and the graphs it declares.
type Document struct {
	Path   string
	Graphs []*graph.Graph
}

// LoadDocuments loads files and directories, keeping graphs grouped by the
// file that declares them. Directories are searched recursively for files
// ending in Extension.
func (l *Loader) LoadDocuments(ctx context.Context, paths ...string) ([]Document, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := expandPaths(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		logger.Warn("no graph documents found", "paths", paths)
		return nil, nil
	}

	docs := make([]Document, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		gs, err := l.ParseFile(file)
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded graph document", "file", file, "graphs", len(gs))
		docs = append(docs, Document{Path: file, Graphs: gs})
	}
	return docs, nil
}

// LoadPaths is LoadDocuments without the grouping.
func (l *Loader) LoadPaths(ctx context.Context, paths ...string) ([]*graph.Graph, error) {
	docs, err := l.LoadDocuments(ctx, paths...)
	if err != nil {
		return nil, err
	}
	var graphs []*graph.Graph
	for _, d := range docs {
		graphs = append(graphs, d.Graphs...)
	}
	return graphs, nil
}

func expandPaths(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		var found []string
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, Extension) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to find graph documents in %s: %w", p, err)
		}
		slices.Sort(found)
		files = append(files, found...)
	}
	return files, nil
}

func (l *Loader) decode(source string, file *hcl.File) ([]*graph.Graph, error) {
	var doc fileDoc
	if diags := gohcl.DecodeBody(file.Body, nil, &doc); diags.HasErrors() {
		return nil, diagError(source, diags)
	}

	graphs := make([]*graph.Graph, 0, len(doc.Graphs))
	for _, gd := range doc.Graphs {
		g, err := l.build(source, gd)
		if err != nil {
			return nil, err
		}
		graphs = append(graphs, g)
	}
	return graphs, nil
}

// ============================================================================
// Graph construction
// ============================================================================

type builder struct {
	registry *translator.Registry
	source   string
	g        *graph.Graph
	generics map[string]bool
	nodes    map[string]*graph.Node
}

func (l *Loader) build(source string, gd *graphDoc) (*graph.Graph, error) {
	b := &builder{
		registry: l.registry,
		source:   source,
		generics: make(map[string]bool, len(gd.Generics)),
		nodes:    make(map[string]*graph.Node),
	}
	for _, name := range gd.Generics {
		b.generics[name] = true
	}

	opts, err := b.graphOptions(gd)
	if err != nil {
		return nil, err
	}
	b.g = graph.New(gd.Name, gd.Class, opts...)
	b.nodes["entry"] = b.g.Entry()

	for _, name := range gd.Generics {
		b.g.AddGenericParameter(name)
	}
	for _, p := range gd.Parameters {
		t, err := ParseType(p.Type, b.generics)
		if err != nil {
			return nil, NewParseError(source, fmt.Sprintf("graph %q parameter %q: %v", gd.Name, p.Name, err), err)
		}
		b.g.AddParameter(p.Name, t)
	}
	for _, nd := range gd.Nodes {
		if err := b.addNode(nd); err != nil {
			return nil, err
		}
	}
	for _, c := range gd.Connects {
		if err := b.connect(c); err != nil {
			return nil, err
		}
	}
	return b.g, nil
}

func (b *builder) graphOptions(gd *graphDoc) ([]graph.Option, error) {
	var opts []graph.Option
	fail := func(cause error, format string, args ...any) error {
		return NewParseError(b.source, fmt.Sprintf("graph %q: ", gd.Name)+fmt.Sprintf(format, args...), cause)
	}

	switch gd.Kind {
	case "", "method":
	case "constructor":
		opts = append(opts, graph.AsConstructor())
	default:
		return nil, fail(ErrInvalidValue, "unknown graph kind %q", gd.Kind)
	}

	if gd.Visibility != "" {
		v, ok := graph.ParseVisibility(gd.Visibility)
		if !ok {
			return nil, fail(ErrInvalidValue, "unknown visibility %q", gd.Visibility)
		}
		opts = append(opts, graph.WithVisibility(v))
	}

	var mods graph.Modifiers
	for _, s := range gd.Modifiers {
		m, ok := graph.ParseModifier(s)
		if !ok {
			return nil, fail(ErrInvalidValue, "unknown modifier %q", s)
		}
		mods |= m
	}
	if mods != 0 {
		opts = append(opts, graph.WithModifiers(mods))
	}

	if len(gd.Returns) > 0 {
		returns, err := parseTypes(gd.Returns, b.generics)
		if err != nil {
			return nil, fail(err, "returns: %v", err)
		}
		opts = append(opts, graph.WithReturns(returns...))
	}
	return opts, nil
}

func (b *builder) addNode(nd *nodeDoc) error {
	rng := nd.Body.MissingItemRange()
	if _, dup := b.nodes[nd.Name]; dup {
		return errorAt(rng, ErrDuplicateNode, "node %q is declared twice", nd.Name)
	}

	var (
		n      *graph.Node
		inputs []*inputDoc
		err    error
	)
	kind, builtin := graph.ParseKind(nd.Kind)
	switch {
	case builtin && kind == graph.KindEntry:
		return errorAt(rng, ErrUnknownKind, "node %q: the entry node is implicit", nd.Name)
	case builtin && kind == graph.KindCustom:
		n, inputs, err = b.customNode(nd, "")
	case builtin:
		n, inputs, err = b.builtinNode(kind, nd)
	default:
		if _, ok := b.registry.Lookup(nd.Kind); !ok {
			return errorAt(rng, ErrUnknownKind, "node %q has unknown kind %q", nd.Name, nd.Kind)
		}
		n, inputs, err = b.customNode(nd, nd.Kind)
	}
	if err != nil {
		return err
	}

	n.Label = nd.Name
	b.nodes[nd.Name] = n
	return b.applyInputs(nd, n, inputs)
}

func (b *builder) builtinNode(kind graph.Kind, nd *nodeDoc) (*graph.Node, []*inputDoc, error) {
	var body nodeBody
	if diags := gohcl.DecodeBody(nd.Body, nil, &body); diags.HasErrors() {
		return nil, nil, diagError(b.source, diags)
	}
	rng := nd.Body.MissingItemRange()
	inputs := append(body.Inputs, paramDefaults(body.Params)...)

	// required reads a type attribute that the kind cannot do without.
	required := func(field, s string) (graph.TypeRef, error) {
		if s == "" {
			return graph.TypeRef{}, errorAt(rng, ErrInvalidType, "node %q: %s is required", nd.Name, field)
		}
		return b.typeAt(rng, nd.Name, field, s)
	}

	g := b.g
	switch kind {
	case graph.KindReturn:
		return g.AddReturn(), inputs, nil

	case graph.KindCall:
		m, err := b.methodSpec(rng, nd.Name, &body)
		if err != nil {
			return nil, nil, err
		}
		opts := graph.CallOptions{Pure: body.Pure, HandlesExceptions: body.HandlesExceptions}
		return g.AddCall(m, opts), inputs, nil

	case graph.KindConstructor:
		t, err := required("type", body.Type)
		if err != nil {
			return nil, nil, err
		}
		params, err := b.params(rng, nd.Name, body.Params)
		if err != nil {
			return nil, nil, err
		}
		return g.AddConstructor(t, params, body.Pure), inputs, nil

	case graph.KindVariableSetter, graph.KindVariableGetter:
		if body.Name == "" {
			return nil, nil, errorAt(rng, ErrInvalidValue, "node %q: name is required", nd.Name)
		}
		t, err := required("type", body.Type)
		if err != nil {
			return nil, nil, err
		}
		v := graph.VariableSpec{Name: body.Name, Type: t, Static: body.Static}
		if v.DeclaringType, err = b.optionalType(rng, nd.Name, "declaring_type", body.DeclaringType); err != nil {
			return nil, nil, err
		}
		if body.IndexType != "" {
			v.Indexer = true
			if v.IndexType, err = b.typeAt(rng, nd.Name, "index_type", body.IndexType); err != nil {
				return nil, nil, err
			}
		}
		if kind == graph.KindVariableSetter {
			return g.AddVariableSetter(v), inputs, nil
		}
		return g.AddVariableGetter(v), inputs, nil

	case graph.KindBranch:
		return g.AddBranch(), inputs, nil

	case graph.KindForLoop:
		return g.AddForLoop(), inputs, nil

	case graph.KindCast:
		t, err := required("type", body.Type)
		if err != nil {
			return nil, nil, err
		}
		return g.AddCast(t, body.Pure), inputs, nil

	case graph.KindThrow:
		return g.AddThrow(), inputs, nil

	case graph.KindAwait:
		t, err := b.optionalType(rng, nd.Name, "result", body.Result)
		if err != nil {
			return nil, nil, err
		}
		return g.AddAwait(t), inputs, nil

	case graph.KindTernary:
		t, err := required("type", body.Type)
		if err != nil {
			return nil, nil, err
		}
		return g.AddTernary(t, body.Pure), inputs, nil

	case graph.KindReroute:
		c, ok := parseChannel(body.Channel)
		if !ok {
			return nil, nil, errorAt(rng, ErrInvalidValue, "node %q: unknown channel %q", nd.Name, body.Channel)
		}
		t, err := b.optionalType(rng, nd.Name, "type", body.Type)
		if err != nil {
			return nil, nil, err
		}
		return g.AddReroute(c, t), inputs, nil

	case graph.KindLiteral:
		t, err := required("type", body.Type)
		if err != nil {
			return nil, nil, err
		}
		if body.Value == cty.NilVal {
			return nil, nil, errorAt(rng, ErrInvalidValue, "node %q: value is required", nd.Name)
		}
		return g.AddLiteral(t, body.Value), inputs, nil

	case graph.KindMakeDelegate:
		m, err := b.methodSpec(rng, nd.Name, &body)
		if err != nil {
			return nil, nil, err
		}
		t, err := required("delegate_type", body.DelegateType)
		if err != nil {
			return nil, nil, err
		}
		return g.AddMakeDelegate(m, t), inputs, nil

	case graph.KindTypeOf:
		return g.AddTypeOf(), inputs, nil

	case graph.KindMakeArray:
		t, err := required("type", body.Type)
		if err != nil {
			return nil, nil, err
		}
		if body.Count < 0 {
			return nil, nil, errorAt(rng, ErrInvalidValue, "node %q: count must not be negative", nd.Name)
		}
		return g.AddMakeArray(t, body.Size, body.Count), inputs, nil

	case graph.KindDefault:
		t, err := required("type", body.Type)
		if err != nil {
			return nil, nil, err
		}
		return g.AddDefault(t), inputs, nil

	case graph.KindTypeNode:
		t, err := required("type", body.Type)
		if err != nil {
			return nil, nil, err
		}
		return g.AddTypeNode(t), inputs, nil
	}
	return nil, nil, errorAt(rng, ErrUnknownKind, "node %q has unknown kind %q", nd.Name, nd.Kind)
}

// customNode builds a registry node. typeName is empty for the explicit
// "custom" kind, which names its type in the body.
func (b *builder) customNode(nd *nodeDoc, typeName string) (*graph.Node, []*inputDoc, error) {
	var body customBody
	if diags := gohcl.DecodeBody(nd.Body, nil, &body); diags.HasErrors() {
		return nil, nil, diagError(b.source, diags)
	}
	if typeName == "" {
		typeName = body.Type
	}
	if typeName == "" {
		return nil, nil, errorAt(nd.Body.MissingItemRange(), ErrInvalidValue, "node %q: type is required", nd.Name)
	}

	attrs := make(map[string]cty.Value)
	remain, diags := body.Remain.JustAttributes()
	if diags.HasErrors() {
		return nil, nil, diagError(b.source, diags)
	}
	for name, attr := range remain {
		v, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, nil, diagError(b.source, diags)
		}
		attrs[name] = v
	}

	// Unregistered types still take part in control flow; translation
	// reports them as unknown.
	ports := []graph.PortSpec{
		{Name: "exec", Channel: graph.Exec, Direction: graph.In},
		{Name: "exec", Channel: graph.Exec, Direction: graph.Out},
	}
	if def, ok := b.registry.Lookup(typeName); ok {
		ports = def.Ports
	}
	return b.g.AddCustom(typeName, ports, attrs), body.Inputs, nil
}

func (b *builder) methodSpec(rng hcl.Range, node string, body *nodeBody) (graph.MethodSpec, error) {
	if body.Method == "" {
		return graph.MethodSpec{}, errorAt(rng, ErrInvalidValue, "node %q: method is required", node)
	}
	m := graph.MethodSpec{Name: body.Method, Static: body.Static}
	var err error
	if m.DeclaringType, err = b.optionalType(rng, node, "declaring_type", body.DeclaringType); err != nil {
		return graph.MethodSpec{}, err
	}
	if m.Params, err = b.params(rng, node, body.Params); err != nil {
		return graph.MethodSpec{}, err
	}
	if m.Returns, err = parseTypes(body.Results, b.generics); err != nil {
		return graph.MethodSpec{}, errorAt(rng, err, "node %q: results: %v", node, err)
	}
	if m.GenericArgs, err = parseTypes(body.GenericArgs, b.generics); err != nil {
		return graph.MethodSpec{}, errorAt(rng, err, "node %q: generic_args: %v", node, err)
	}
	return m, nil
}

func (b *builder) params(rng hcl.Range, node string, docs []*paramDoc) ([]graph.Param, error) {
	params := make([]graph.Param, 0, len(docs))
	for _, pd := range docs {
		t, err := b.typeAt(rng, node, "param "+pd.Name, pd.Type)
		if err != nil {
			return nil, err
		}
		pass, ok := graph.ParsePassType(pd.Pass)
		if !ok {
			return nil, errorAt(rng, ErrInvalidValue, "node %q: param %q: unknown pass %q", node, pd.Name, pd.Pass)
		}
		params = append(params, graph.Param{Name: pd.Name, Type: t, Pass: pass})
	}
	return params, nil
}

// paramDefaults turns explicit_default on a param into an input setting.
func paramDefaults(docs []*paramDoc) []*inputDoc {
	var out []*inputDoc
	for _, pd := range docs {
		if pd.ExplicitDefault {
			out = append(out, &inputDoc{Name: pd.Name, ExplicitDefault: true})
		}
	}
	return out
}

func (b *builder) typeAt(rng hcl.Range, node, field, s string) (graph.TypeRef, error) {
	t, err := ParseType(s, b.generics)
	if err != nil {
		return graph.TypeRef{}, errorAt(rng, err, "node %q: %s: %v", node, field, err)
	}
	return t, nil
}

func (b *builder) optionalType(rng hcl.Range, node, field, s string) (graph.TypeRef, error) {
	if s == "" {
		return graph.TypeRef{}, nil
	}
	return b.typeAt(rng, node, field, s)
}

func parseChannel(s string) (graph.Channel, bool) {
	switch s {
	case "", "data":
		return graph.Data, true
	case "exec":
		return graph.Exec, true
	case "type":
		return graph.TypeChannel, true
	}
	return 0, false
}

func (b *builder) applyInputs(nd *nodeDoc, n *graph.Node, inputs []*inputDoc) error {
	for _, in := range inputs {
		pin, ok := b.g.FindPin(n.ID, graph.In, in.Name)
		if !ok || b.g.Pin(pin).Channel != graph.Data {
			return errorAt(nd.Body.MissingItemRange(), ErrUnknownPin, "node %q has no data input %q", nd.Name, in.Name)
		}
		if in.Value != cty.NilVal {
			b.g.SetUnconnectedValue(pin, in.Value)
		}
		if in.ExplicitDefault {
			b.g.SetExplicitDefault(pin, true)
		}
	}
	return nil
}

// ============================================================================
// Connections
// ============================================================================

func (b *builder) connect(c *connectDoc) error {
	var from, to string
	if diags := gohcl.DecodeExpression(c.From, nil, &from); diags.HasErrors() {
		return diagError(b.source, diags)
	}
	if diags := gohcl.DecodeExpression(c.To, nil, &to); diags.HasErrors() {
		return diagError(b.source, diags)
	}

	out, err := b.pinRef(c.From.Range(), from, graph.Out)
	if err != nil {
		return err
	}
	in, err := b.pinRef(c.To.Range(), to, graph.In)
	if err != nil {
		return err
	}
	if err := b.g.Connect(out, in); err != nil {
		return errorAt(c.From.Range(), err, "cannot connect %s to %s: %v", from, to, err)
	}
	return nil
}

func (b *builder) pinRef(rng hcl.Range, ref string, dir graph.Direction) (graph.PinID, error) {
	nodeName, pinName, ok := strings.Cut(ref, ".")
	if !ok {
		return graph.NoPin, errorAt(rng, ErrUnknownPin, "pin reference %q must be <node>.<pin>", ref)
	}
	n, ok := b.nodes[nodeName]
	if !ok {
		return graph.NoPin, errorAt(rng, ErrUnknownPin, "unknown node %q in %q", nodeName, ref)
	}
	pin, ok := b.g.FindPin(n.ID, dir, pinName)
	if !ok {
		return graph.NoPin, errorAt(rng, ErrUnknownPin, "node %q has no %s pin %q", nodeName, dir, pinName)
	}
	return pin, nil
}

// LoadFile loads a file with the default registry.
func LoadFile(path string) ([]*graph.Graph, error) {
	return NewLoader(nil).ParseFile(path)
}
