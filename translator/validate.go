package translator

import (
	"errors"
	"fmt"

	"github.com/mxkacsa/execgraph/graph"
)

// Validate reports every problem that would make Translate fail, instead of
// stopping at the first one. The result is nil or a *ValidationErrors.
func Validate(g *graph.Graph) error {
	var errs []error
	cycles := make(map[graph.NodeID]bool)

	for _, id := range g.Reachable() {
		n := g.Node(id)
		errs = append(errs, unconnectedInputs(g, n)...)

		for _, out := range n.OutExec {
			if to := g.OutgoingExec(out); to != graph.NoPin && g.Pin(to) == nil {
				errs = append(errs, fmt.Errorf("exec output %q on %s links to unknown pin %d", g.Pin(out).Name, n, to))
			}
		}

		if n.IsPure() {
			continue
		}
		if _, err := Dependencies(g, id); err != nil {
			var ce *CycleError
			if errors.As(err, &ce) && cycles[ce.Nodes[0]] {
				continue
			}
			if ce != nil {
				for _, c := range ce.Nodes {
					cycles[c] = true
				}
			}
			errs = append(errs, err)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return &ValidationErrors{Errors: errs}
}

func unconnectedInputs(g *graph.Graph, n *graph.Node) []error {
	var errs []error
	optional := receiverPin(n)
	for _, in := range n.InData {
		if in == optional || g.IncomingData(in) != graph.NoPin {
			continue
		}
		p := g.Pin(in)
		if p.HasUnconnectedValue() || p.ExplicitDefault {
			continue
		}
		errs = append(errs, &UnconnectedInputError{Node: n.ID, Pin: in, NodeDesc: n.String(), PinName: p.Name})
	}
	return errs
}

// receiverPin is the instance target input that falls back to this when
// left unconnected.
func receiverPin(n *graph.Node) graph.PinID {
	switch p := n.Payload.(type) {
	case graph.CallPayload:
		return p.Target
	case graph.VariablePayload:
		return p.Target
	case graph.MakeDelegatePayload:
		return p.Target
	}
	return graph.NoPin
}
