// Package stackfile parses the Stackfile deployment language into a typed
// Document.
//
// The language is line-oriented: top-level metadata directives, an optional
// ENVIRONMENT SECTION (networks, volumes, secrets) and a SERVICES SECTION
// holding SERVICE ... END SERVICE blocks whose directives accumulate into one
// Service record each. Parsing runs in four phases:
//
//  1. Comment stripping: // line comments and /* ... */ block comments are
//     blanked out byte-for-byte so source positions survive.
//  2. Pre-validation: cheap whole-file checks (empty input, missing
//     SERVICES SECTION, unbalanced SERVICE/END SERVICE, unnamed SERVICE)
//     that fail fast with pointed messages before the grammar runs.
//  3. Grammar parsing via a generated lexer+parser; grammar failures are
//     translated into curated diagnostics with source snippets.
//  4. Folding: the concrete parse tree is folded into the Document model,
//     with duplicate scalar directives resolving last-wins.
//
// This is part of the Functional Core - all functions are pure with no I/O.
//
// # Usage
//
//	doc, err := stackfile.Parse("Stackfile", source)
//	if err != nil {
//		var d *diag.Diagnostic
//		errors.As(err, &d) // always succeeds for parse failures
//	}
package stackfile
