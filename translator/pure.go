package translator

import "github.com/mxkacsa/execgraph/graph"

// Dependencies returns the pure nodes that must be evaluated before node, in
// a valid evaluation order. Producers are collected through incoming data
// pins only and impure producers are never followed: their values are read
// from the variables they assigned when they ran. When node itself is pure
// it is part of the result and comes last among its own dependents.
func Dependencies(g *graph.Graph, id graph.NodeID) ([]graph.NodeID, error) {
	found := collectPure(g, id)
	if len(found) == 0 {
		return nil, nil
	}

	sorted := make([]graph.NodeID, 0, len(found))
	done := make(map[graph.NodeID]bool, len(found))
	remaining := found

	for len(remaining) > 0 {
		var ready, blocked []graph.NodeID
		for _, n := range remaining {
			if pureInputsDone(g, n, done) {
				ready = append(ready, n)
			} else {
				blocked = append(blocked, n)
			}
		}
		if len(ready) == 0 {
			return nil, &CycleError{Nodes: blocked}
		}
		// Selected after the pass so a node never depends on a peer from
		// the same pass.
		for _, n := range ready {
			done[n] = true
		}
		sorted = append(sorted, ready...)
		remaining = blocked
	}
	return sorted, nil
}

// collectPure walks incoming data pins depth first, recording pure nodes in
// discovery order.
func collectPure(g *graph.Graph, id graph.NodeID) []graph.NodeID {
	seen := make(map[graph.NodeID]bool)
	var order []graph.NodeID
	var visit func(n *graph.Node)
	visit = func(n *graph.Node) {
		if n.IsPure() {
			seen[n.ID] = true
			order = append(order, n.ID)
		}
		for _, in := range n.InData {
			p := g.Producer(in)
			if p != nil && p.IsPure() && !seen[p.ID] {
				visit(p)
			}
		}
	}
	if n := g.Node(id); n != nil {
		visit(n)
	}
	return order
}

func pureInputsDone(g *graph.Graph, id graph.NodeID, done map[graph.NodeID]bool) bool {
	for _, in := range g.Node(id).InData {
		p := g.Producer(in)
		if p != nil && p.IsPure() && !done[p.ID] {
			return false
		}
	}
	return true
}
