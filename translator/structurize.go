package translator

import (
	"slices"

	"github.com/mxkacsa/execgraph/graph"
)

// ItemKind says how an item of a block is written.
type ItemKind int

const (
	ItemNode ItemKind = iota // plain statement sequence
	ItemIf                   // two-way branch: Arms[0] then, Arms[1] else
	ItemTry                  // protected call: Arms[0] is the catch handler
	ItemLoop                 // counting loop: Arms[0] is the body
)

// Block is an ordered list of items written as one statement list.
type Block struct {
	Items []*Item
}

// Arm is a nested block entered through one exec output.
type Arm struct {
	Target graph.PinID // input exec pin the arm jumps to, NoPin when unconnected
	Body   *Block
}

// Item is one exec node in its structured position.
type Item struct {
	Kind ItemKind
	Node graph.NodeID
	Arms []Arm
}

// Plan is the structured emission order of a graph's exec nodes.
type Plan struct {
	Root  *Block
	Order []graph.NodeID // flattened emission order
	Moves int            // slice moves needed to reach Order from the state order
}

type structurizer struct {
	g       *graph.Graph
	dom     *dominators
	placed  map[graph.NodeID]bool
	joins   map[graph.NodeID]graph.NodeID
	joining map[graph.NodeID]bool
	pending []graph.NodeID // refused by a nested block, not yet placed
}

// scope is the nested block being laid out: entered at entry from parent.
// The top level has no scope.
type scope struct {
	entry  graph.NodeID
	parent graph.NodeID
}

// Structurize lays the exec nodes of g out as nested blocks so that two-way
// branches, loops and protected calls become block syntax instead of jumps.
//
// Branch arms run until the first node both arms reach through their primary
// continuations; that node follows the branch. A catch handler runs until the
// call's own continuation. A node goes inside a nested block only when every
// other exec edge into it comes from a node the block's entry dominates, so
// a jump never enters a block from outside. A refused node is laid out in
// the innermost enclosing block that accepts it, after that block's chain.
// Each node is placed once; any later path to it becomes a jump. Nodes not
// reached by the layout walk are appended at the top level in state order.
//
// Plan.Order is the flattened layout, reached from the state order by moving
// contiguous slices. The emitter checks its own sequence against it, and
// Plan.Moves is reported as a telemetry count. Relocation fails with a
// FixedPointError only when the layout is not a permutation of the exec
// nodes or needs more moves than there are nodes.
func Structurize(g *graph.Graph, states *States) (*Plan, error) {
	s := &structurizer{
		g:       g,
		dom:     newDominators(g),
		placed:  make(map[graph.NodeID]bool),
		joins:   make(map[graph.NodeID]graph.NodeID),
		joining: make(map[graph.NodeID]bool),
	}

	root := &Block{}
	s.layout(root, s.entryOf(g.Entry().OutExec[0]), nil, nil)
	for _, id := range states.Order {
		if !s.placed[id] {
			s.layout(root, id, nil, nil)
		}
	}

	target := flatten(root, nil)
	order, moves, err := relocate(states.Order, target)
	if err != nil {
		return nil, err
	}
	return &Plan{Root: root, Order: order, Moves: moves}, nil
}

// layout appends items to b starting at cur until it reaches a stop node, a
// node already placed, a node the scope refuses, or the end of the chain.
func (s *structurizer) layout(b *Block, cur graph.NodeID, stops []graph.NodeID, sc *scope) {
	for cur != graph.NoNode && !s.placed[cur] && !slices.Contains(stops, cur) {
		if sc != nil && !s.dom.enclosable(sc.entry, sc.parent, cur) {
			s.pending = append(s.pending, cur)
			return
		}
		s.placed[cur] = true
		n := s.g.Node(cur)
		it := &Item{Kind: ItemNode, Node: cur}
		next := graph.NoNode

		switch p := n.Payload.(type) {
		case graph.BranchPayload:
			next = s.joinOf(n)
			inner := withStop(stops, next)
			it.Kind = ItemIf
			it.Arms = []Arm{s.arm(cur, p.True, inner), s.arm(cur, p.False, inner)}
		case graph.CastPayload:
			if isTwoWayCast(s.g, n) {
				next = s.joinOf(n)
				inner := withStop(stops, next)
				it.Kind = ItemIf
				it.Arms = []Arm{s.arm(cur, p.Failed, inner), s.arm(cur, p.Success, inner)}
			} else if len(n.OutExec) > 0 {
				next = s.entryOf(n.OutExec[0])
			}
		case graph.ForLoopPayload:
			next = s.entryOf(p.Completed)
			it.Kind = ItemLoop
			it.Arms = []Arm{s.arm(cur, p.Loop, withStop(stops, next))}
		case graph.CallPayload:
			next = s.entryOf(n.OutExec[0])
			if p.HandlesExceptions {
				it.Kind = ItemTry
				it.Arms = []Arm{s.arm(cur, p.Catch, withStop(stops, next))}
			}
		default:
			if len(n.OutExec) > 0 {
				next = s.entryOf(n.OutExec[0])
			}
		}

		b.Items = append(b.Items, it)
		cur = next
	}
}

func (s *structurizer) arm(parent graph.NodeID, out graph.PinID, stops []graph.NodeID) Arm {
	a := Arm{Target: s.g.OutgoingExec(out), Body: &Block{}}
	sc := &scope{entry: s.entryOf(out), parent: parent}
	mark := len(s.pending)
	s.layout(a.Body, sc.entry, stops, sc)
	s.adopt(a.Body, mark, stops, sc)
	return a
}

// adopt lays out, after the chain already in b, the nodes refused by blocks
// nested in b that b itself may hold. The rest stay pending for an outer
// block.
func (s *structurizer) adopt(b *Block, mark int, stops []graph.NodeID, sc *scope) {
	for i := mark; i < len(s.pending); {
		id := s.pending[i]
		switch {
		case s.placed[id]:
			s.pending = slices.Delete(s.pending, i, i+1)
		case !slices.Contains(stops, id) && s.dom.enclosable(sc.entry, sc.parent, id):
			s.pending = slices.Delete(s.pending, i, i+1)
			s.layout(b, id, stops, sc)
			i = mark
		default:
			i++
		}
	}
}

// entryOf returns the node an exec output leads to when it enters through
// the node's first exec input. Other entries, such as a loop's continue pin,
// are only reachable by jump.
func (s *structurizer) entryOf(out graph.PinID) graph.NodeID {
	to := s.g.OutgoingExec(out)
	if to == graph.NoPin {
		return graph.NoNode
	}
	n := s.g.PinNode(to)
	if len(n.InExec) == 0 || n.InExec[0] != to {
		return graph.NoNode
	}
	return n.ID
}

// primaryNext is where control continues once a node and everything nested
// under it is done.
func (s *structurizer) primaryNext(id graph.NodeID) graph.NodeID {
	n := s.g.Node(id)
	switch p := n.Payload.(type) {
	case graph.BranchPayload:
		return s.joinOf(n)
	case graph.CastPayload:
		if isTwoWayCast(s.g, n) {
			return s.joinOf(n)
		}
	case graph.ForLoopPayload:
		return s.entryOf(p.Completed)
	}
	if len(n.OutExec) == 0 {
		return graph.NoNode
	}
	return s.entryOf(n.OutExec[0])
}

// joinOf finds the first node reached by both arms of a two-way node.
func (s *structurizer) joinOf(n *graph.Node) graph.NodeID {
	if j, ok := s.joins[n.ID]; ok {
		return j
	}
	if s.joining[n.ID] {
		return graph.NoNode
	}
	s.joining[n.ID] = true
	defer delete(s.joining, n.ID)

	var a, b graph.PinID
	switch p := n.Payload.(type) {
	case graph.BranchPayload:
		a, b = p.True, p.False
	case graph.CastPayload:
		a, b = p.Success, p.Failed
	default:
		return graph.NoNode
	}

	other := make(map[graph.NodeID]bool)
	for _, id := range s.walk(s.entryOf(b)) {
		other[id] = true
	}
	j := graph.NoNode
	for _, id := range s.walk(s.entryOf(a)) {
		if other[id] {
			j = id
			break
		}
	}
	s.joins[n.ID] = j
	return j
}

func (s *structurizer) walk(start graph.NodeID) []graph.NodeID {
	seen := make(map[graph.NodeID]bool)
	var out []graph.NodeID
	for cur := start; cur != graph.NoNode && !seen[cur]; cur = s.primaryNext(cur) {
		seen[cur] = true
		out = append(out, cur)
	}
	return out
}

func isTwoWayCast(g *graph.Graph, n *graph.Node) bool {
	p, ok := n.Payload.(graph.CastPayload)
	return ok && !n.IsPure() && g.OutgoingExec(p.Failed) != graph.NoPin
}

func withStop(stops []graph.NodeID, id graph.NodeID) []graph.NodeID {
	if id == graph.NoNode {
		return stops
	}
	return append(slices.Clone(stops), id)
}

func flatten(b *Block, out []graph.NodeID) []graph.NodeID {
	for _, it := range b.Items {
		out = append(out, it.Node)
		for _, a := range it.Arms {
			out = flatten(a.Body, out)
		}
	}
	return out
}

// relocate turns initial into target using order-preserving slice moves.
// Every move fixes at least the first mismatching position, so a correct
// layout needs fewer moves than there are nodes.
func relocate(initial, target []graph.NodeID) ([]graph.NodeID, int, error) {
	order := slices.Clone(initial)
	bound := len(order) + 1
	if len(target) != len(order) {
		return nil, 0, &FixedPointError{Bound: bound, Reason: "layout does not cover every exec node"}
	}

	moves := 0
	for {
		i := firstMismatch(order, target)
		if i < 0 {
			return order, moves, nil
		}
		if moves >= bound {
			return nil, moves, &FixedPointError{Moves: moves, Bound: bound, Reason: "iteration bound exceeded"}
		}
		j := slices.Index(order[i+1:], target[i])
		if j < 0 {
			return nil, moves, &FixedPointError{Moves: moves, Bound: bound, Reason: "layout is not a permutation of the exec nodes"}
		}
		j += i + 1

		k := 1
		for j+k < len(order) && i+k < len(target) && order[j+k] == target[i+k] {
			k++
		}
		moveRange(order, j, k, i)
		moves++
	}
}

func firstMismatch(a, b []graph.NodeID) int {
	for i := range a {
		if a[i] != b[i] {
			return i
		}
	}
	return -1
}

// moveRange moves s[from:from+n] so it starts at to, with to < from.
func moveRange(s []graph.NodeID, from, n, to int) {
	seg := slices.Clone(s[from : from+n])
	copy(s[to+n:from+n], s[to:from])
	copy(s[to:], seg)
}
