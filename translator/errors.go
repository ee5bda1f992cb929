package translator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mxkacsa/execgraph/graph"
)

// Sentinels matched with errors.Is. Every typed error below unwraps to one.
var (
	ErrUnconnectedRequiredInput = errors.New("unconnected required input")
	ErrCyclicPureDependency     = errors.New("cyclic pure dependency")
	ErrStructurizerFixedPoint   = errors.New("structurizer did not reach a fixed point")
	ErrArityMismatch            = errors.New("operator arity mismatch")
	ErrPhase                    = errors.New("translation phase out of order")
)

// UnconnectedInputError is returned when a data input has no producer, no
// unconnected value and no explicit default.
type UnconnectedInputError struct {
	Node     graph.NodeID
	Pin      graph.PinID
	NodeDesc string
	PinName  string
}

// Error implements the error interface
func (e *UnconnectedInputError) Error() string {
	return fmt.Sprintf("input %q on %s is unconnected without an explicit default or unconnected value", e.PinName, e.NodeDesc)
}

// Unwrap returns the sentinel
func (e *UnconnectedInputError) Unwrap() error {
	return ErrUnconnectedRequiredInput
}

// CycleError carries the pure nodes that could not be ordered.
type CycleError struct {
	Nodes []graph.NodeID
}

// Error implements the error interface
func (e *CycleError) Error() string {
	ids := make([]string, len(e.Nodes))
	for i, id := range e.Nodes {
		ids[i] = fmt.Sprintf("#%d", id)
	}
	return fmt.Sprintf("pure nodes %s depend on each other", strings.Join(ids, ", "))
}

// Unwrap returns the sentinel
func (e *CycleError) Unwrap() error {
	return ErrCyclicPureDependency
}

// FixedPointError means relocation did not converge within its bound.
type FixedPointError struct {
	Moves  int
	Bound  int
	Reason string
}

// Error implements the error interface
func (e *FixedPointError) Error() string {
	return fmt.Sprintf("structurizer stopped after %d of %d moves: %s", e.Moves, e.Bound, e.Reason)
}

// Unwrap returns the sentinel
func (e *FixedPointError) Unwrap() error {
	return ErrStructurizerFixedPoint
}

// ArityError is returned for an operator call with the wrong argument count.
type ArityError struct {
	Node   graph.NodeID
	Method string
	Want   int
	Got    int
}

// Error implements the error interface
func (e *ArityError) Error() string {
	return fmt.Sprintf("operator %s on node #%d needs %d arguments, got %d", e.Method, e.Node, e.Want, e.Got)
}

// Unwrap returns the sentinel
func (e *ArityError) Unwrap() error {
	return ErrArityMismatch
}

// GeneratorError wraps a failure reported by a registered node generator.
type GeneratorError struct {
	Node graph.NodeID
	Type string
	Err  error
}

// Error implements the error interface
func (e *GeneratorError) Error() string {
	return fmt.Sprintf("generator for %s on node #%d: %v", e.Type, e.Node, e.Err)
}

// Unwrap returns the generator's error
func (e *GeneratorError) Unwrap() error {
	return e.Err
}

// DiagnosticCode classifies non-fatal findings.
type DiagnosticCode string

const (
	UnknownNodeKind DiagnosticCode = "UnknownNodeKind"
)

// Diagnostic is a non-fatal finding reported next to the generated code.
type Diagnostic struct {
	Code    DiagnosticCode
	Node    graph.NodeID
	Kind    string
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: node #%d (%s): %s", d.Code, d.Node, d.Kind, d.Message)
}

// ValidationErrors contains multiple validation errors
type ValidationErrors struct {
	Errors []error
}

// Error implements the error interface
func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		sb.WriteString("  - ")
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}

// Unwrap exposes every collected error to errors.Is and errors.As.
func (e *ValidationErrors) Unwrap() []error {
	return e.Errors
}

// HasErrors returns true if there are any errors
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// CombineErrors combines multiple errors into one
func CombineErrors(errs ...error) error {
	var nonNil []error
	for _, err := range errs {
		if err != nil {
			nonNil = append(nonNil, err)
		}
	}

	if len(nonNil) == 0 {
		return nil
	}
	if len(nonNil) == 1 {
		return nonNil[0]
	}
	return &ValidationErrors{Errors: nonNil}
}
