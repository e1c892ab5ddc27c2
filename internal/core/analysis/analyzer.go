// Package analysis validates a parsed Document and prepares it for manifest
// generation. Checks run in a fixed order so failures are reported one
// category at a time: duplicate names, dependency references, port formats,
// port conflicts, dependency cycles. After the graph checks pass the service
// list is rewritten into topological order. Build-argument cross-validation
// runs last and only ever produces warnings.
//
// This is part of the Functional Core - all functions are pure with no I/O;
// the companion build file's arguments are handed in by the caller.
package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/stackfile/stackc/internal/core/diag"
	"github.com/stackfile/stackc/internal/core/dockerfile"
	"github.com/stackfile/stackc/internal/core/stackfile"
)

// =============================================================================
// Analyzer
// =============================================================================

// Analyzer runs the semantic checks over a Document.
type Analyzer struct {
	suggester Suggester
}

// New creates an Analyzer with the default overlap-based suggester.
func New() *Analyzer {
	return &Analyzer{suggester: OverlapSuggester{}}
}

// NewWithSuggester creates an Analyzer with a custom suggestion strategy.
func NewWithSuggester(s Suggester) *Analyzer {
	if s == nil {
		s = OverlapSuggester{}
	}
	return &Analyzer{suggester: s}
}

// Analyze validates the document in place and reorders its services
// topologically. The first failing check stops the pipeline and is returned
// as the error (always a *diag.Diagnostic).
//
// buildArgs carries the companion build file's declarations; nil means no
// build file was found, which skips build-argument cross-validation
// entirely. A non-nil empty slice means the file exists but declares
// nothing, so every declared key warns.
func (a *Analyzer) Analyze(doc *stackfile.Document, buildArgs []dockerfile.Arg) ([]diag.Warning, error) {
	if d := checkDuplicateNames(doc); d != nil {
		return nil, d
	}
	if d := checkReferences(doc); d != nil {
		return nil, d
	}
	if d := validatePortFormats(doc); d != nil {
		return nil, d
	}
	if d := detectPortConflicts(doc); d != nil {
		return nil, d
	}
	if d := detectCycle(doc); d != nil {
		return nil, d
	}
	sortServices(doc)

	if buildArgs == nil {
		return nil, nil
	}
	return checkBuildArgs(doc, buildArgs, a.suggester), nil
}

// =============================================================================
// Name Checks
// =============================================================================

// Every later stage keys services by name, so duplicates are rejected up
// front rather than silently collapsing in the generated manifest.
func checkDuplicateNames(doc *stackfile.Document) *diag.Diagnostic {
	seen := make(map[string]int, len(doc.Services))
	for i := range doc.Services {
		svc := &doc.Services[i]
		if first, ok := seen[svc.Name]; ok {
			d := diag.New(diag.Validation,
				"duplicate service name %q (first declared at line %d)", svc.Name, first)
			d.Line = svc.Line
			d.Suggestion = "rename one of the services; service names must be unique"
			d.Related = []string{svc.Name}
			return d
		}
		seen[svc.Name] = svc.Line
	}
	return nil
}

func checkReferences(doc *stackfile.Document) *diag.Diagnostic {
	valid := make(map[string]struct{}, len(doc.Services))
	for i := range doc.Services {
		valid[doc.Services[i].Name] = struct{}{}
	}
	for i := range doc.Services {
		svc := &doc.Services[i]
		for _, dep := range svc.DependsOn {
			if _, ok := valid[dep]; ok {
				continue
			}
			names := doc.ServiceNames()
			sort.Strings(names)
			d := diag.New(diag.Validation,
				"service %q depends on undeclared service %q", svc.Name, dep)
			d.Line = svc.Line
			d.Suggestion = "valid service names are: " + strings.Join(names, ", ")
			d.Related = []string{svc.Name, dep}
			return d
		}
	}
	return nil
}

// =============================================================================
// Build-Argument Cross-Validation
// =============================================================================

// checkBuildArgs compares each service's declared build-argument keys with
// the build file's declarations. Unmatched keys produce warnings listing all
// declared names plus up to three did-you-mean suggestions. Keys are checked
// in sorted order so warning output is deterministic.
func checkBuildArgs(doc *stackfile.Document, declared []dockerfile.Arg, s Suggester) []diag.Warning {
	names := dockerfile.Names(declared)
	known := make(map[string]struct{}, len(names))
	for _, n := range names {
		known[n] = struct{}{}
	}
	sortedNames := append([]string(nil), names...)
	sort.Strings(sortedNames)

	var warnings []diag.Warning
	for i := range doc.Services {
		svc := &doc.Services[i]
		if len(svc.BuildArgs) == 0 {
			continue
		}
		keys := make([]string, 0, len(svc.BuildArgs))
		for k := range svc.BuildArgs {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, key := range keys {
			if _, ok := known[key]; ok {
				continue
			}
			suggestion := "declared build arguments: " + strings.Join(sortedNames, ", ")
			if len(sortedNames) == 0 {
				suggestion = "the build file declares no arguments"
			}
			if hints := s.Suggest(key, names); len(hints) > 0 {
				suggestion += "; did you mean: " + strings.Join(hints, ", ") + "?"
			}
			warnings = append(warnings, diag.Warning{
				Message: fmt.Sprintf("service %q declares build argument %q not defined in the build file",
					svc.Name, key),
				Line:       svc.Line,
				Suggestion: suggestion,
				Related:    []string{svc.Name, key},
			})
		}
	}
	return warnings
}
