package debug

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

func translateEnd(graph string, durationMs float64, diagnostics int, err error) *DebugMessage {
	msg := &DebugMessage{
		Type:        MsgTranslateEnd,
		Graph:       graph,
		DurationMs:  durationMs,
		Diagnostics: diagnostics,
		Timestamp:   time.Now().UnixMilli(),
	}
	if err != nil {
		msg.Error = err.Error()
	}
	return msg
}

func nodeEmit(graph string, nodeID int, kind string, state int) *DebugMessage {
	return &DebugMessage{
		Type:      MsgNodeEmit,
		Graph:     graph,
		NodeID:    nodeID,
		Kind:      kind,
		State:     state,
		Timestamp: time.Now().UnixMilli(),
	}
}

func diagnostic(graph string, nodeID int, code, message string) *DebugMessage {
	return &DebugMessage{
		Type:      MsgDiagnostic,
		Graph:     graph,
		NodeID:    nodeID,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
	}
}

// ============================================================================
// ChannelHook - sends messages to a channel
// ============================================================================

// ChannelHook sends debug messages to a channel.
// Useful for testing or custom processing.
type ChannelHook struct {
	C     chan *DebugMessage
	Graph string // Optional filter
}

// NewChannelHook creates a new channel-based debug hook.
func NewChannelHook(bufferSize int) *ChannelHook {
	return &ChannelHook{
		C: make(chan *DebugMessage, bufferSize),
	}
}

func (h *ChannelHook) send(msg *DebugMessage) {
	if h.Graph != "" && msg.Graph != h.Graph {
		return
	}
	select {
	case h.C <- msg:
	default:
		// Channel full, drop message
	}
}

func (h *ChannelHook) OnTranslateStart(graph string, nodes int) {
	h.send(&DebugMessage{
		Type:      MsgTranslateStart,
		Graph:     graph,
		Nodes:     nodes,
		Timestamp: time.Now().UnixMilli(),
	})
}

func (h *ChannelHook) OnTranslateEnd(graph string, durationMs float64, diagnostics int, err error) {
	h.send(translateEnd(graph, durationMs, diagnostics, err))
}

func (h *ChannelHook) OnNodeEmit(graph string, nodeID int, kind string, state int) {
	h.send(nodeEmit(graph, nodeID, kind, state))
}

func (h *ChannelHook) OnDiagnostic(graph string, nodeID int, code, message string) {
	h.send(diagnostic(graph, nodeID, code, message))
}

// ============================================================================
// WriterHook - writes JSON to an io.Writer (file, stdout, etc)
// ============================================================================

// WriterHook writes debug messages as JSON lines to an io.Writer.
type WriterHook struct {
	w  io.Writer
	mu sync.Mutex
}

// NewWriterHook creates a hook that writes to the given writer.
func NewWriterHook(w io.Writer) *WriterHook {
	return &WriterHook{w: w}
}

func (h *WriterHook) write(msg *DebugMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.w.Write(append(data, '\n'))
}

func (h *WriterHook) OnTranslateStart(graph string, nodes int) {
	h.write(&DebugMessage{
		Type:      MsgTranslateStart,
		Graph:     graph,
		Nodes:     nodes,
		Timestamp: time.Now().UnixMilli(),
	})
}

func (h *WriterHook) OnTranslateEnd(graph string, durationMs float64, diagnostics int, err error) {
	h.write(translateEnd(graph, durationMs, diagnostics, err))
}

func (h *WriterHook) OnNodeEmit(graph string, nodeID int, kind string, state int) {
	h.write(nodeEmit(graph, nodeID, kind, state))
}

func (h *WriterHook) OnDiagnostic(graph string, nodeID int, code, message string) {
	h.write(diagnostic(graph, nodeID, code, message))
}

// ============================================================================
// PrintHook - prints human-readable debug output
// ============================================================================

// PrintHook prints debug messages in a human-readable format.
type PrintHook struct {
	w  io.Writer
	mu sync.Mutex
}

// NewPrintHook creates a hook that prints to the given writer.
func NewPrintHook(w io.Writer) *PrintHook {
	return &PrintHook{w: w}
}

func (h *PrintHook) printf(format string, args ...any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fmt.Fprintf(h.w, format, args...)
}

func (h *PrintHook) OnTranslateStart(graph string, nodes int) {
	h.printf("▶ %s (%d nodes)\n", graph, nodes)
}

func (h *PrintHook) OnTranslateEnd(graph string, durationMs float64, diagnostics int, err error) {
	if err != nil {
		h.printf("✗ %s failed (%.2fms): %v\n", graph, durationMs, err)
		return
	}
	h.printf("✓ %s translated (%.2fms, %d diagnostics)\n", graph, durationMs, diagnostics)
}

func (h *PrintHook) OnNodeEmit(graph string, nodeID int, kind string, state int) {
	h.printf("  → #%d %s State%d\n", nodeID, kind, state)
}

func (h *PrintHook) OnDiagnostic(graph string, nodeID int, code, message string) {
	h.printf("  ! #%d %s: %s\n", nodeID, code, message)
}

// ============================================================================
// MultiHook - fans events out to several hooks
// ============================================================================

// MultiHook forwards every event to each of its hooks in order.
type MultiHook []DebugHook

func (m MultiHook) OnTranslateStart(graph string, nodes int) {
	for _, h := range m {
		h.OnTranslateStart(graph, nodes)
	}
}

func (m MultiHook) OnTranslateEnd(graph string, durationMs float64, diagnostics int, err error) {
	for _, h := range m {
		h.OnTranslateEnd(graph, durationMs, diagnostics, err)
	}
}

func (m MultiHook) OnNodeEmit(graph string, nodeID int, kind string, state int) {
	for _, h := range m {
		h.OnNodeEmit(graph, nodeID, kind, state)
	}
}

func (m MultiHook) OnDiagnostic(graph string, nodeID int, code, message string) {
	for _, h := range m {
		h.OnDiagnostic(graph, nodeID, code, message)
	}
}
