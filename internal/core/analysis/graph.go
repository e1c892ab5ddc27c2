package analysis

import (
	"github.com/stackfile/stackc/internal/core/diag"
	"github.com/stackfile/stackc/internal/core/stackfile"
)

// =============================================================================
// Dependency Graph
// =============================================================================

// detectCycle reports a back edge in the dependency graph as a validation
// diagnostic. Reference validation must have run first: every dependency is
// assumed to name a declared service.
func detectCycle(doc *stackfile.Document) *diag.Diagnostic {
	roots := doc.ServiceNames()
	deps := make(map[string][]string, len(doc.Services))
	for i := range doc.Services {
		deps[doc.Services[i].Name] = doc.Services[i].DependsOn
	}

	member := FindCycle(roots, deps)
	if member == "" {
		return nil
	}
	d := diag.New(diag.Validation,
		"dependency cycle detected involving service %q", member)
	d.Suggestion = "break the cycle by removing one of the DEPENDS-ON declarations"
	d.Related = []string{member}
	return d
}

// FindCycle walks the graph depth-first from each root and returns the first
// node reached while still on the active path, or "" when the graph is
// acyclic. Roots are visited in the given order, so the reported member is
// deterministic. The traversal keeps its own frame stack instead of
// recursing, so a dependency chain as deep as the node count cannot
// overflow the call stack.
//
// The manifest generator reuses this for its pre-serialization re-check.
func FindCycle(roots []string, deps map[string][]string) string {
	const (
		white = iota // unvisited
		grey         // on the current path
		black        // fully explored
	)

	color := make(map[string]int, len(deps))

	type frame struct {
		name string
		next int // index of the next dependency to visit
	}

	for _, root := range roots {
		if color[root] != white {
			continue
		}
		stack := []frame{{name: root}}
		color[root] = grey

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			edges := deps[top.name]
			if top.next < len(edges) {
				dep := edges[top.next]
				top.next++
				switch color[dep] {
				case grey:
					return dep
				case white:
					color[dep] = grey
					stack = append(stack, frame{name: dep})
				}
			} else {
				color[top.name] = black
				stack = stack[:len(stack)-1]
			}
		}
	}
	return ""
}

// sortServices reorders the document's service list topologically using
// Kahn's algorithm, so every service appears after all of its dependencies:
//
//  1. Compute each service's in-degree (its dependency count)
//  2. Repeatedly emit the ready service (in-degree 0) that was declared
//     earliest, breaking ties by original declaration order
//  3. Emitting a service reduces the in-degree of its dependents
//
// Must run after detectCycle; an acyclic graph always drains completely.
//
// Example:
//
//	// web depends on api, api depends on db
//	// declaration order: web, api, db
//	// result order:      db, api, web
func sortServices(doc *stackfile.Document) {
	if len(doc.Services) == 0 {
		return
	}

	declIndex := make(map[string]int, len(doc.Services))
	inDegree := make(map[string]int, len(doc.Services))
	dependents := make(map[string][]string)

	for i := range doc.Services {
		svc := &doc.Services[i]
		declIndex[svc.Name] = i
		inDegree[svc.Name] = len(svc.DependsOn)
		for _, dep := range svc.DependsOn {
			dependents[dep] = append(dependents[dep], svc.Name)
		}
	}

	var ready []string
	for i := range doc.Services {
		if inDegree[doc.Services[i].Name] == 0 {
			ready = append(ready, doc.Services[i].Name)
		}
	}

	order := make([]string, 0, len(doc.Services))
	for len(ready) > 0 {
		// Pick the earliest-declared ready service.
		min := 0
		for i := 1; i < len(ready); i++ {
			if declIndex[ready[i]] < declIndex[ready[min]] {
				min = i
			}
		}
		name := ready[min]
		ready = append(ready[:min], ready[min+1:]...)
		order = append(order, name)

		for _, dependent := range dependents[name] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	sorted := make([]stackfile.Service, 0, len(order))
	for _, name := range order {
		sorted = append(sorted, *doc.ServiceByName(name))
	}
	doc.Services = sorted
}
