package graph

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// NodeID addresses a node inside its Graph.
type NodeID int

// PinID addresses a pin inside its Graph.
type PinID int

const (
	NoNode NodeID = -1
	NoPin  PinID  = -1
)

// Channel is the kind of value a pin carries.
type Channel uint8

const (
	Exec Channel = iota
	Data
	TypeChannel
)

func (c Channel) String() string {
	switch c {
	case Exec:
		return "exec"
	case Data:
		return "data"
	case TypeChannel:
		return "type"
	}
	return "unknown"
}

// Direction of a pin relative to its node.
type Direction uint8

const (
	In Direction = iota
	Out
)

func (d Direction) String() string {
	if d == In {
		return "in"
	}
	return "out"
}

// Pin is a typed connection point owned by exactly one node.
type Pin struct {
	ID        PinID
	Node      NodeID
	Name      string
	Channel   Channel
	Direction Direction
	Type      TypeRef

	// Input data pins only: the fallback used when nothing is connected.
	UsesUnconnectedValue bool
	UnconnectedValue     cty.Value
	ExplicitDefault      bool
}

func (p *Pin) String() string {
	return fmt.Sprintf("%s %s pin %q", p.Direction, p.Channel, p.Name)
}

// HasUnconnectedValue reports whether the pin carries a usable literal fallback.
func (p *Pin) HasUnconnectedValue() bool {
	return p.UsesUnconnectedValue && p.UnconnectedValue != cty.NilVal
}

// Node is a unit of computation with ordered pins per channel and direction.
type Node struct {
	ID      NodeID
	Kind    Kind
	Label   string
	InExec  []PinID
	OutExec []PinID
	InData  []PinID
	OutData []PinID
	InType  []PinID
	OutType []PinID
	Payload Payload
}

// IsPure reports whether the node has no execution pins.
func (n *Node) IsPure() bool {
	return len(n.InExec) == 0 && len(n.OutExec) == 0
}

func (n *Node) String() string {
	if n.Label != "" {
		return fmt.Sprintf("%s node %q", n.Kind, n.Label)
	}
	return fmt.Sprintf("%s node #%d", n.Kind, n.ID)
}

func (n *Node) pins(c Channel, d Direction) []PinID {
	switch {
	case c == Exec && d == In:
		return n.InExec
	case c == Exec && d == Out:
		return n.OutExec
	case c == Data && d == In:
		return n.InData
	case c == Data && d == Out:
		return n.OutData
	case c == TypeChannel && d == In:
		return n.InType
	default:
		return n.OutType
	}
}

func (n *Node) addPin(p PinID, c Channel, d Direction) {
	switch {
	case c == Exec && d == In:
		n.InExec = append(n.InExec, p)
	case c == Exec && d == Out:
		n.OutExec = append(n.OutExec, p)
	case c == Data && d == In:
		n.InData = append(n.InData, p)
	case c == Data && d == Out:
		n.OutData = append(n.OutData, p)
	case c == TypeChannel && d == In:
		n.InType = append(n.InType, p)
	default:
		n.OutType = append(n.OutType, p)
	}
}
