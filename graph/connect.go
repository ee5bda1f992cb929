package graph

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrUnknownPin      = errors.New("unknown pin")
	ErrDirection       = errors.New("connection must run from an output pin to an input pin")
	ErrChannelMismatch = errors.New("pins carry different channels")
	ErrSameNode        = errors.New("cannot connect a node to itself")
	ErrNotConnected    = errors.New("pins are not connected")
)

// Connection is one wire, always stored from the output side to the input side.
type Connection struct {
	From PinID
	To   PinID
}

// connTable stores every connection once, keyed by the single-slot side:
// input data/type pins hold one producer, output exec pins hold one target.
// The reverse index serves fan-out queries.
type connTable struct {
	incoming map[PinID]PinID   // data/type input -> producing output
	outgoing map[PinID]PinID   // exec output -> consuming input
	reverse  map[PinID][]PinID // the many-side -> single-slot pins attached to it
}

func newConnTable() connTable {
	return connTable{
		incoming: make(map[PinID]PinID),
		outgoing: make(map[PinID]PinID),
		reverse:  make(map[PinID][]PinID),
	}
}

func (t *connTable) link(slot, many PinID) {
	t.reverse[many] = append(t.reverse[many], slot)
}

func (t *connTable) unlink(slot, many PinID) {
	t.reverse[many] = slices.DeleteFunc(t.reverse[many], func(p PinID) bool { return p == slot })
	if len(t.reverse[many]) == 0 {
		delete(t.reverse, many)
	}
}

// Connect wires an output pin to an input pin of the same channel. Connecting
// into an occupied single slot silently detaches the previous peer.
func (g *Graph) Connect(from, to PinID) error {
	fp, tp := g.Pin(from), g.Pin(to)
	if fp == nil || tp == nil {
		return fmt.Errorf("connect %d -> %d: %w", from, to, ErrUnknownPin)
	}
	if fp.Direction != Out || tp.Direction != In {
		return fmt.Errorf("connect %s -> %s: %w", fp, tp, ErrDirection)
	}
	if fp.Channel != tp.Channel {
		return fmt.Errorf("connect %s -> %s: %w", fp, tp, ErrChannelMismatch)
	}
	if fp.Node == tp.Node {
		return fmt.Errorf("connect %s -> %s: %w", fp, tp, ErrSameNode)
	}

	if fp.Channel == Exec {
		if old, ok := g.conns.outgoing[from]; ok {
			g.conns.unlink(from, old)
		}
		g.conns.outgoing[from] = to
		g.conns.link(from, to)
		return nil
	}

	if old, ok := g.conns.incoming[to]; ok {
		g.conns.unlink(to, old)
	}
	g.conns.incoming[to] = from
	g.conns.link(to, from)
	return nil
}

// MustConnect is Connect for builders that wire known-good pins.
func (g *Graph) MustConnect(from, to PinID) {
	if err := g.Connect(from, to); err != nil {
		panic(err)
	}
}

// Disconnect removes the wire between from and to.
func (g *Graph) Disconnect(from, to PinID) error {
	fp := g.Pin(from)
	if fp == nil || g.Pin(to) == nil {
		return fmt.Errorf("disconnect %d -> %d: %w", from, to, ErrUnknownPin)
	}
	if fp.Channel == Exec {
		if cur, ok := g.conns.outgoing[from]; ok && cur == to {
			delete(g.conns.outgoing, from)
			g.conns.unlink(from, to)
			return nil
		}
	} else if cur, ok := g.conns.incoming[to]; ok && cur == from {
		delete(g.conns.incoming, to)
		g.conns.unlink(to, from)
		return nil
	}
	return fmt.Errorf("disconnect %d -> %d: %w", from, to, ErrNotConnected)
}

// DisconnectAll removes every wire attached to the pin.
func (g *Graph) DisconnectAll(id PinID) {
	p := g.Pin(id)
	if p == nil {
		return
	}
	slotSide := (p.Channel == Exec) == (p.Direction == Out)
	if slotSide {
		table := g.conns.incoming
		if p.Channel == Exec {
			table = g.conns.outgoing
		}
		if peer, ok := table[id]; ok {
			delete(table, id)
			g.conns.unlink(id, peer)
		}
		return
	}
	for _, slot := range slices.Clone(g.conns.reverse[id]) {
		if p.Channel == Exec {
			delete(g.conns.outgoing, slot)
		} else {
			delete(g.conns.incoming, slot)
		}
		g.conns.unlink(slot, id)
	}
}

// IncomingData returns the output pin feeding an input data or type pin.
func (g *Graph) IncomingData(in PinID) PinID {
	if p, ok := g.conns.incoming[in]; ok {
		return p
	}
	return NoPin
}

// OutgoingExec returns the input exec pin an output exec pin jumps to.
func (g *Graph) OutgoingExec(out PinID) PinID {
	if p, ok := g.conns.outgoing[out]; ok {
		return p
	}
	return NoPin
}

// ExecTarget returns the node an output exec pin jumps to, or nil.
func (g *Graph) ExecTarget(out PinID) *Node {
	return g.PinNode(g.OutgoingExec(out))
}

// Producer returns the node feeding an input data or type pin, or nil.
func (g *Graph) Producer(in PinID) *Node {
	return g.PinNode(g.IncomingData(in))
}

// Consumers returns the input pins fed by an output data or type pin.
func (g *Graph) Consumers(out PinID) []PinID {
	return sortedClone(g.conns.reverse[out])
}

// Predecessors returns the output exec pins that jump to an input exec pin.
func (g *Graph) Predecessors(in PinID) []PinID {
	return sortedClone(g.conns.reverse[in])
}

// Connections lists every wire ordered by (From, To).
func (g *Graph) Connections() []Connection {
	out := make([]Connection, 0, len(g.conns.incoming)+len(g.conns.outgoing))
	for to, from := range g.conns.incoming {
		out = append(out, Connection{From: from, To: to})
	}
	for from, to := range g.conns.outgoing {
		out = append(out, Connection{From: from, To: to})
	}
	slices.SortFunc(out, func(a, b Connection) int {
		if a.From != b.From {
			return int(a.From - b.From)
		}
		return int(a.To - b.To)
	})
	return out
}

func sortedClone(ids []PinID) []PinID {
	out := slices.Clone(ids)
	slices.Sort(out)
	return out
}
