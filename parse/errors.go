package parse

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

// Sentinels carried as the Cause of a ParseError.
var (
	ErrUnknownKind   = errors.New("unknown node kind")
	ErrUnknownPin    = errors.New("unknown pin")
	ErrDuplicateNode = errors.New("duplicate node name")
	ErrInvalidType   = errors.New("invalid type")
	ErrInvalidValue  = errors.New("invalid value")
)

// ParseError represents an error during parsing
type ParseError struct {
	Source  string
	Line    int
	Column  int
	Message string
	Cause   error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.Source, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Message)
}

// Unwrap returns the underlying cause
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NewParseError creates a new parse error
func NewParseError(source, message string, cause error) *ParseError {
	return &ParseError{
		Source:  source,
		Message: message,
		Cause:   cause,
	}
}

// errorAt creates a parse error positioned at rng.
func errorAt(rng hcl.Range, cause error, format string, args ...any) *ParseError {
	return &ParseError{
		Source:  rng.Filename,
		Line:    rng.Start.Line,
		Column:  rng.Start.Column,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// diagError turns HCL diagnostics into a ParseError positioned at the first
// error. The diagnostics stay reachable through errors.As.
func diagError(source string, diags hcl.Diagnostics) *ParseError {
	pe := NewParseError(source, "invalid graph document", diags)
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		pe.Message = d.Summary
		if d.Detail != "" {
			pe.Message += ": " + d.Detail
		}
		if d.Subject != nil {
			pe.Line = d.Subject.Start.Line
			pe.Column = d.Subject.Start.Column
		}
		break
	}
	return pe
}
