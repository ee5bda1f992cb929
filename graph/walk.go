package graph

// Reachable returns every node reachable from the entry node, in discovery
// order. From each node the walk follows exec outputs, then the producers of
// data inputs, then the producers of type inputs. Each node is visited once,
// so diamonds and data cycles are walked in linear time.
func (g *Graph) Reachable() []NodeID {
	seen := make(map[NodeID]bool, len(g.nodes))
	var order []NodeID
	var visit func(NodeID)
	visit = func(id NodeID) {
		seen[id] = true
		order = append(order, id)
		n := g.nodes[id]
		for _, out := range n.OutExec {
			if t := g.ExecTarget(out); t != nil && !seen[t.ID] {
				visit(t.ID)
			}
		}
		for _, in := range n.InData {
			if p := g.Producer(in); p != nil && !seen[p.ID] {
				visit(p.ID)
			}
		}
		for _, in := range n.InType {
			if p := g.Producer(in); p != nil && !seen[p.ID] {
				visit(p.ID)
			}
		}
	}
	visit(g.entry)
	return order
}

// ExecReachable returns the nodes reachable from the entry node through exec
// wires only, in depth-first preorder with outputs taken in pin order.
func (g *Graph) ExecReachable() []NodeID {
	seen := make(map[NodeID]bool, len(g.nodes))
	var order []NodeID
	var visit func(NodeID)
	visit = func(id NodeID) {
		seen[id] = true
		order = append(order, id)
		for _, out := range g.nodes[id].OutExec {
			if t := g.ExecTarget(out); t != nil && !seen[t.ID] {
				visit(t.ID)
			}
		}
	}
	visit(g.entry)
	return order
}

// InferredType resolves an input type pin to the type of its producer, falling
// back to the pin's own declared type.
func (g *Graph) InferredType(in PinID) TypeRef {
	if src := g.Pin(g.IncomingData(in)); src != nil {
		return src.Type
	}
	if p := g.Pin(in); p != nil {
		return p.Type
	}
	return TypeRef{}
}
