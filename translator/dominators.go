package translator

import "github.com/mxkacsa/execgraph/graph"

// dominators is the dominator tree of the exec nodes reachable from the
// entry, with one edge per connected exec output. Edges into a node's
// secondary exec inputs, such as a loop's continue pin, count as edges to
// that node.
type dominators struct {
	entry graph.NodeID
	idom  map[graph.NodeID]graph.NodeID
	post  map[graph.NodeID]int // postorder index, entry is highest
	preds map[graph.NodeID][]graph.NodeID
}

// newDominators computes immediate dominators with the iterative
// Cooper-Harvey-Kennedy algorithm over a depth-first postorder.
func newDominators(g *graph.Graph) *dominators {
	d := &dominators{
		entry: g.Entry().ID,
		idom:  make(map[graph.NodeID]graph.NodeID),
		post:  make(map[graph.NodeID]int),
		preds: make(map[graph.NodeID][]graph.NodeID),
	}

	var order []graph.NodeID
	seen := make(map[graph.NodeID]bool)
	var visit func(id graph.NodeID)
	visit = func(id graph.NodeID) {
		seen[id] = true
		for _, out := range g.Node(id).OutExec {
			to := g.OutgoingExec(out)
			if to == graph.NoPin {
				continue
			}
			next := g.PinNode(to).ID
			d.preds[next] = append(d.preds[next], id)
			if !seen[next] {
				visit(next)
			}
		}
		d.post[id] = len(order)
		order = append(order, id)
	}
	visit(d.entry)

	d.idom[d.entry] = d.entry
	for changed := true; changed; {
		changed = false
		for i := len(order) - 2; i >= 0; i-- {
			id := order[i]
			newIdom := graph.NoNode
			for _, p := range d.preds[id] {
				if _, ok := d.idom[p]; !ok {
					continue
				}
				if newIdom == graph.NoNode {
					newIdom = p
				} else {
					newIdom = d.intersect(p, newIdom)
				}
			}
			if newIdom != graph.NoNode && d.idom[id] != newIdom {
				d.idom[id] = newIdom
				changed = true
			}
		}
	}
	return d
}

func (d *dominators) intersect(a, b graph.NodeID) graph.NodeID {
	for a != b {
		for d.post[a] < d.post[b] {
			a = d.idom[a]
		}
		for d.post[b] < d.post[a] {
			b = d.idom[b]
		}
	}
	return a
}

// dominates reports whether every path from the entry to b passes a.
// A node dominates itself.
func (d *dominators) dominates(a, b graph.NodeID) bool {
	if _, ok := d.idom[b]; !ok {
		return false
	}
	for cur := b; ; cur = d.idom[cur] {
		if cur == a {
			return true
		}
		if cur == d.entry {
			return false
		}
	}
}

// enclosable reports whether id may be laid out inside the block entered
// at entry from parent: every exec edge into id, except the one edge that
// enters the block, must come from a node the block entry dominates.
func (d *dominators) enclosable(entry, parent, id graph.NodeID) bool {
	skipped := false
	for _, p := range d.preds[id] {
		if id == entry && p == parent && !skipped {
			skipped = true
			continue
		}
		if !d.dominates(entry, p) {
			return false
		}
	}
	return true
}
