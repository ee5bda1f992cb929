package debug

// NoopHook is a debug hook that does nothing.
type NoopHook struct{}

var _ DebugHook = (*NoopHook)(nil)

func (NoopHook) OnTranslateStart(graph string, nodes int)                                    {}
func (NoopHook) OnTranslateEnd(graph string, durationMs float64, diagnostics int, err error) {}
func (NoopHook) OnNodeEmit(graph string, nodeID int, kind string, state int)                 {}
func (NoopHook) OnDiagnostic(graph string, nodeID int, code, message string)                 {}
