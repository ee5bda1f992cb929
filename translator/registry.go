package translator

import (
	"fmt"
	"slices"
	"sync"

	"github.com/zclconf/go-cty/cty"

	"github.com/mxkacsa/execgraph/graph"
)

// ============================================================================
// Node Registry - Extensibility API for Custom Nodes
// ============================================================================
//
// Custom node kinds are looked up by type name when a graph contains a
// custom node. Registration is explicit; a package adds its nodes from init:
//
//	func init() {
//	    translator.RegisterNode(translator.NodeDefinition{
//	        Type:     "Log",
//	        Category: "Diagnostics",
//	        Ports: []graph.PortSpec{
//	            {Name: "exec", Channel: graph.Exec, Direction: graph.In},
//	            {Name: "exec", Channel: graph.Exec, Direction: graph.Out},
//	            {Name: "text", Channel: graph.Data, Direction: graph.In, Type: graph.TypeString},
//	        },
//	        Generator: func(ctx *translator.GeneratorContext, n *graph.Node) error {
//	            text, err := ctx.ResolveInput(n, "text")
//	            if err != nil {
//	                return err
//	            }
//	            ctx.WriteLine("Logger.Info(%s);", text)
//	            return nil
//	        },
//	    })
//	}

// Generator writes the code of one custom node.
type Generator func(ctx *GeneratorContext, n *graph.Node) error

// NodeDefinition describes a custom node kind.
type NodeDefinition struct {
	Type        string
	Category    string
	Description string
	Ports       []graph.PortSpec
	Generator   Generator
}

// Registry holds custom node definitions. Core definitions survive Clear.
type Registry struct {
	mu     sync.RWMutex
	core   map[string]*NodeDefinition
	custom map[string]*NodeDefinition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		core:   make(map[string]*NodeDefinition),
		custom: make(map[string]*NodeDefinition),
	}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the registry used by translators built without
// WithRegistry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

func (r *Registry) checkFree(typeName string) error {
	if typeName == "" {
		return fmt.Errorf("node type cannot be empty")
	}
	if _, builtin := graph.ParseKind(typeName); builtin {
		return fmt.Errorf("node type %s is already registered as built-in", typeName)
	}
	if _, exists := r.core[typeName]; exists {
		return fmt.Errorf("node type %s is already registered as core", typeName)
	}
	if _, exists := r.custom[typeName]; exists {
		return fmt.Errorf("node type %s is already registered", typeName)
	}
	return nil
}

// RegisterNode registers a custom node type. It is safe for concurrent use.
func (r *Registry) RegisterNode(def NodeDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkFree(def.Type); err != nil {
		return err
	}
	r.custom[def.Type] = &def
	return nil
}

// RegisterCoreNode registers a node type that Clear keeps.
func (r *Registry) RegisterCoreNode(def NodeDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkFree(def.Type); err != nil {
		return err
	}
	r.core[def.Type] = &def
	return nil
}

// Lookup returns the definition of a core or custom node type.
func (r *Registry) Lookup(typeName string) (*NodeDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if def, ok := r.core[typeName]; ok {
		return def, true
	}
	def, ok := r.custom[typeName]
	return def, ok
}

// Kinds returns every registered type name, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.core)+len(r.custom))
	for k := range r.core {
		out = append(out, k)
	}
	for k := range r.custom {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// ListNodesByCategory returns the registered type names grouped by category.
func (r *Registry) ListNodesByCategory() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string][]string)
	for _, defs := range []map[string]*NodeDefinition{r.core, r.custom} {
		for _, def := range defs {
			result[def.Category] = append(result[def.Category], def.Type)
		}
	}
	for _, types := range result {
		slices.Sort(types)
	}
	return result
}

// Clear removes every custom registration. Core nodes stay.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.custom = make(map[string]*NodeDefinition)
}

// RegisterNode registers a custom node type in the default registry.
func RegisterNode(def NodeDefinition) error {
	return defaultRegistry.RegisterNode(def)
}

// MustRegisterNode registers a core node in the default registry and panics
// on error. Use it from init functions.
func MustRegisterNode(def NodeDefinition) {
	if err := defaultRegistry.RegisterCoreNode(def); err != nil {
		panic(fmt.Sprintf("failed to register node %s: %v", def.Type, err))
	}
}

// ClearCustomNodes removes all custom registrations from the default
// registry. This is primarily useful for testing.
func ClearCustomNodes() {
	defaultRegistry.Clear()
}

// ============================================================================
// GeneratorContext - Context provided to custom node generators
// ============================================================================

// GeneratorContext gives a generator access to the translation in progress.
type GeneratorContext struct {
	ec          *emitContext
	node        *graph.Node
	follow      graph.PinID
	transferred bool
}

// ResolveInput returns the expression feeding the named input data pin.
func (ctx *GeneratorContext) ResolveInput(n *graph.Node, inputName string) (string, error) {
	pin, ok := ctx.ec.g.FindPin(n.ID, graph.In, inputName)
	if !ok {
		return "", fmt.Errorf("node %s has no input %q", n, inputName)
	}
	return ctx.ec.expr(pin)
}

// OutputName returns the variable bound to the named output data pin.
func (ctx *GeneratorContext) OutputName(n *graph.Node, outputName string) (string, error) {
	pin, ok := ctx.ec.g.FindPin(n.ID, graph.Out, outputName)
	if !ok {
		return "", fmt.Errorf("node %s has no output %q", n, outputName)
	}
	return ctx.ec.nameFor(pin), nil
}

// WriteLine writes a line of code with proper indentation.
// Supports fmt.Sprintf-style formatting.
func (ctx *GeneratorContext) WriteLine(format string, args ...interface{}) {
	ctx.ec.writeLine(format, args...)
}

// Indent increases the indentation level.
func (ctx *GeneratorContext) Indent() {
	ctx.ec.indent++
}

// Dedent decreases the indentation level.
func (ctx *GeneratorContext) Dedent() {
	if ctx.ec.indent > 0 {
		ctx.ec.indent--
	}
}

// Transfer writes the jump for the named output exec pin. A generator that
// never calls it continues along the node's first exec output.
func (ctx *GeneratorContext) Transfer(n *graph.Node, outputName string) error {
	pin, ok := ctx.ec.g.FindPin(n.ID, graph.Out, outputName)
	if !ok || ctx.ec.g.Pin(pin).Channel != graph.Exec {
		return fmt.Errorf("node %s has no exec output %q", n, outputName)
	}
	ctx.ec.transfer(pin, ctx.follow)
	ctx.transferred = true
	return nil
}

// TempName returns a fresh temporary identifier.
func (ctx *GeneratorContext) TempName() string {
	return ctx.ec.temp()
}

// TypeName formats a type with the translator's type formatter.
func (ctx *GeneratorContext) TypeName(t graph.TypeRef) string {
	return ctx.ec.typeName(t)
}

// Attr returns a node attribute, or cty.NilVal when it is not set.
func (ctx *GeneratorContext) Attr(name string) cty.Value {
	p, ok := ctx.node.Payload.(graph.CustomPayload)
	if !ok {
		return cty.NilVal
	}
	return p.Attrs[name]
}
