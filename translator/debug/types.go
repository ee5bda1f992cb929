package debug

// DebugHook receives translation trace events. Implementations must be safe
// for concurrent use when one hook is shared by several translators.
type DebugHook interface {
	// Translation lifecycle
	OnTranslateStart(graph string, nodes int)
	OnTranslateEnd(graph string, durationMs float64, diagnostics int, err error)

	// Per-node events
	OnNodeEmit(graph string, nodeID int, kind string, state int)
	OnDiagnostic(graph string, nodeID int, code, message string)
}

// MessageType names a trace event on the wire.
type MessageType string

const (
	MsgTranslateStart MessageType = "translate:start"
	MsgTranslateEnd   MessageType = "translate:end"
	MsgNodeEmit       MessageType = "node:emit"
	MsgDiagnostic     MessageType = "node:diagnostic"
)

// DebugMessage is the JSON form of one event
type DebugMessage struct {
	Type        MessageType `json:"type"`
	Graph       string      `json:"graph"`
	NodeID      int         `json:"nodeId,omitempty"`
	Kind        string      `json:"kind,omitempty"`
	State       int         `json:"state,omitempty"`
	Nodes       int         `json:"nodes,omitempty"`
	Diagnostics int         `json:"diagnostics,omitempty"`
	Code        string      `json:"code,omitempty"`
	Message     string      `json:"message,omitempty"`
	DurationMs  float64     `json:"durationMs,omitempty"`
	Error       string      `json:"error,omitempty"`
	Timestamp   int64       `json:"timestamp"`
}
