package translator

import "github.com/mxkacsa/execgraph/graph"

// States maps every input exec pin of every reachable exec node to a state
// id. Ids are assigned in exec-reachable preorder, one per input exec pin,
// and End is reserved last for the end-of-procedure marker.
type States struct {
	ids   map[graph.PinID]int
	End   int
	Order []graph.NodeID // exec nodes in allocation order, entry excluded
}

// AllocateStates assigns state ids for g.
func AllocateStates(g *graph.Graph) *States {
	s := &States{ids: make(map[graph.PinID]int)}
	next := 0
	for _, id := range g.ExecReachable() {
		n := g.Node(id)
		if n.Kind == graph.KindEntry {
			continue
		}
		s.Order = append(s.Order, id)
		for _, pin := range n.InExec {
			s.ids[pin] = next
			next++
		}
	}
	s.End = next
	return s
}

// ID returns the state id of an input exec pin. graph.NoPin and pins
// outside the reachable graph map to the end marker.
func (s *States) ID(pin graph.PinID) int {
	if id, ok := s.ids[pin]; ok {
		return id
	}
	return s.End
}

// Has reports whether the pin was assigned a state.
func (s *States) Has(pin graph.PinID) bool {
	_, ok := s.ids[pin]
	return ok
}

// Len is the number of allocated states excluding the end marker.
func (s *States) Len() int {
	return len(s.ids)
}
