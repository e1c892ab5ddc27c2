// Package diag defines the diagnostic model shared by every compiler stage.
// This is part of the Functional Core - diagnostics are plain values with
// no I/O attached; rendering them is the shell's job.
package diag

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// Diagnostic Kinds
// =============================================================================

// Kind classifies a diagnostic by the stage that produced it.
type Kind int

const (
	// Syntax covers grammar-level failures in the input file.
	Syntax Kind = iota
	// Validation covers semantic failures found by static analysis.
	Validation
	// Configuration covers failures in companion files and tool settings.
	Configuration
	// Serialization covers failures while assembling or encoding the manifest.
	Serialization
	// IO covers filesystem failures around the pure pipeline.
	IO
)

// String returns the lowercase name of the kind as used in rendered output.
func (k Kind) String() string {
	switch k {
	case Syntax:
		return "syntax"
	case Validation:
		return "validation"
	case Configuration:
		return "configuration"
	case Serialization:
		return "serialization"
	case IO:
		return "io"
	default:
		return "unknown"
	}
}

// Sentinel errors, one per kind, so callers can classify a diagnostic with
// errors.Is without inspecting fields.
var (
	ErrSyntax        = errors.New("syntax error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrSerialization = errors.New("serialization error")
	ErrIO            = errors.New("io error")
)

func sentinel(k Kind) error {
	switch k {
	case Syntax:
		return ErrSyntax
	case Validation:
		return ErrValidation
	case Configuration:
		return ErrConfiguration
	case Serialization:
		return ErrSerialization
	case IO:
		return ErrIO
	default:
		return ErrValidation
	}
}

// =============================================================================
// Diagnostic
// =============================================================================

// Diagnostic is a fatal finding tied to a location in the input.
//
// Line and Column are 1-based; zero means the finding applies to the whole
// file rather than a single position. Snippet, Suggestion and Related are
// optional decorations used by Render.
type Diagnostic struct {
	Kind       Kind
	Message    string
	Line       int
	Column     int
	Snippet    string   // two-line source excerpt with a caret, or empty
	Suggestion string   // actionable hint, or empty
	Related    []string // names of entities involved (services, ports, keys)
	Err        error    // underlying cause, if any
}

// New creates a diagnostic of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Error renders the diagnostic on a single line.
//
// Example:
//
//	validation error at line 14: service "api" depends on undeclared service "db"
func (d *Diagnostic) Error() string {
	switch {
	case d.Line > 0 && d.Column > 0:
		return fmt.Sprintf("%s error at line %d, column %d: %s", d.Kind, d.Line, d.Column, d.Message)
	case d.Line > 0:
		return fmt.Sprintf("%s error at line %d: %s", d.Kind, d.Line, d.Message)
	default:
		return fmt.Sprintf("%s error: %s", d.Kind, d.Message)
	}
}

// Unwrap exposes the kind sentinel (and the underlying cause when present)
// so errors.Is(err, diag.ErrSyntax) style checks work.
func (d *Diagnostic) Unwrap() []error {
	if d.Err != nil {
		return []error{sentinel(d.Kind), d.Err}
	}
	return []error{sentinel(d.Kind)}
}

// Render returns the full multi-line human-readable form: the one-line
// message followed by the source snippet, the suggestion and the related
// entities, each on its own line when present.
func (d *Diagnostic) Render() string {
	var b strings.Builder
	b.WriteString(d.Error())
	if d.Snippet != "" {
		b.WriteString("\n")
		b.WriteString(d.Snippet)
	}
	if d.Suggestion != "" {
		b.WriteString("\nsuggestion: ")
		b.WriteString(d.Suggestion)
	}
	if len(d.Related) > 0 {
		b.WriteString("\nrelated: ")
		b.WriteString(strings.Join(d.Related, ", "))
	}
	return b.String()
}

// =============================================================================
// Warning
// =============================================================================

// Warning is a non-fatal finding. Warnings never abort compilation and are
// not errors; the shell decides whether and where to print them.
type Warning struct {
	Message    string
	Line       int
	Suggestion string
	Related    []string
}

// Render returns the multi-line human-readable form of the warning.
func (w Warning) Render() string {
	var b strings.Builder
	if w.Line > 0 {
		fmt.Fprintf(&b, "warning at line %d: %s", w.Line, w.Message)
	} else {
		fmt.Fprintf(&b, "warning: %s", w.Message)
	}
	if w.Suggestion != "" {
		b.WriteString("\nsuggestion: ")
		b.WriteString(w.Suggestion)
	}
	if len(w.Related) > 0 {
		b.WriteString("\nrelated: ")
		b.WriteString(strings.Join(w.Related, ", "))
	}
	return b.String()
}
