// Package graph holds the execution-graph model: an arena of nodes and pins
// addressed by integer IDs, plus the connection table that wires them.
//
// A Graph is built once by an editing or loading layer and then read by the
// translator. Readers never mutate it, so one Graph may be read by several
// goroutines as long as nothing writes to it at the same time.
package graph

import "fmt"

// Graph is the body of one method or constructor.
type Graph struct {
	Name       string
	Class      string
	Kind       GraphKind
	Visibility Visibility
	Modifiers  Modifiers
	Returns    []TypeRef

	nodes []*Node
	pins  []*Pin
	conns connTable
	entry NodeID
}

// Option configures a Graph at construction time.
type Option func(*Graph)

// WithVisibility sets the member visibility.
func WithVisibility(v Visibility) Option {
	return func(g *Graph) { g.Visibility = v }
}

// WithModifiers sets the method modifier flags.
func WithModifiers(m Modifiers) Option {
	return func(g *Graph) { g.Modifiers = m }
}

// WithReturns sets the method return types. More than one return type is
// carried as a tuple.
func WithReturns(types ...TypeRef) Option {
	return func(g *Graph) { g.Returns = types }
}

// AsConstructor marks the graph as a constructor body.
func AsConstructor() Option {
	return func(g *Graph) { g.Kind = ConstructorGraph }
}

// New creates an empty graph with its entry node.
func New(name, class string, opts ...Option) *Graph {
	g := &Graph{
		Name:       name,
		Class:      class,
		Visibility: Private,
		conns:      newConnTable(),
	}
	for _, opt := range opts {
		opt(g)
	}
	e := g.addNode(KindEntry, "entry")
	g.addPin(e, "exec", Exec, Out, TypeRef{})
	e.Payload = EntryPayload{}
	g.entry = e.ID
	return g
}

// Entry returns the graph's entry node.
func (g *Graph) Entry() *Node {
	return g.nodes[g.entry]
}

// Node returns the node with the given ID, or nil.
func (g *Graph) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

// Pin returns the pin with the given ID, or nil.
func (g *Graph) Pin(id PinID) *Pin {
	if id < 0 || int(id) >= len(g.pins) {
		return nil
	}
	return g.pins[id]
}

// PinNode returns the node owning the pin.
func (g *Graph) PinNode(id PinID) *Node {
	p := g.Pin(id)
	if p == nil {
		return nil
	}
	return g.nodes[p.Node]
}

// Nodes returns all nodes in creation order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// NodeCount returns the number of nodes including the entry node.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// FindPin looks a pin up by name among the node's pins of one direction.
// Exec pins are searched first, then data, then type.
func (g *Graph) FindPin(n NodeID, d Direction, name string) (PinID, bool) {
	node := g.Node(n)
	if node == nil {
		return NoPin, false
	}
	for _, c := range []Channel{Exec, Data, TypeChannel} {
		for _, id := range node.pins(c, d) {
			if g.pins[id].Name == name {
				return id, true
			}
		}
	}
	return NoPin, false
}

// FindNode returns the first node with the given label.
func (g *Graph) FindNode(label string) (*Node, bool) {
	for _, n := range g.nodes {
		if n.Label == label {
			return n, true
		}
	}
	return nil, false
}

// FullName is Class.Name, or just Name when the class is unknown.
func (g *Graph) FullName() string {
	if g.Class == "" {
		return g.Name
	}
	return fmt.Sprintf("%s.%s", g.Class, g.Name)
}

func (g *Graph) String() string {
	return g.FullName()
}

func (g *Graph) addNode(k Kind, label string) *Node {
	n := &Node{ID: NodeID(len(g.nodes)), Kind: k, Label: label}
	g.nodes = append(g.nodes, n)
	return n
}

func (g *Graph) addPin(n *Node, name string, c Channel, d Direction, t TypeRef) PinID {
	p := &Pin{
		ID:        PinID(len(g.pins)),
		Node:      n.ID,
		Name:      name,
		Channel:   c,
		Direction: d,
		Type:      t,
	}
	g.pins = append(g.pins, p)
	n.addPin(p.ID, c, d)
	return p.ID
}
