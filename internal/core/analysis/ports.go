package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/docker/go-connections/nat"

	"github.com/stackfile/stackc/internal/core/diag"
	"github.com/stackfile/stackc/internal/core/stackfile"
)

// =============================================================================
// Port Validation
// =============================================================================

// validatePortFormats checks every port mapping parses as a 16-bit unsigned
// integer pair and resolves the final protocol. The container value may carry
// a /tcp or /udp suffix, which is stripped before validation; an explicit
// protocol token on the directive wins over the suffix. Parsed values are
// written back onto the mappings.
func validatePortFormats(doc *stackfile.Document) *diag.Diagnostic {
	for si := range doc.Services {
		svc := &doc.Services[si]
		for pi := range svc.Ports {
			pm := &svc.Ports[pi]

			host, err := nat.ParsePort(pm.HostRaw)
			if err != nil {
				return portErr(svc.Name, pm.Line, "host", pm.HostRaw)
			}

			proto, portStr := nat.SplitProtoPort(pm.ContainerRaw)
			container, err := nat.ParsePort(portStr)
			if err != nil {
				return portErr(svc.Name, pm.Line, "container", pm.ContainerRaw)
			}
			if proto != "tcp" && proto != "udp" {
				d := diag.New(diag.Validation,
					"service %q uses unsupported protocol %q on container port %q",
					svc.Name, proto, pm.ContainerRaw)
				d.Line = pm.Line
				d.Suggestion = "supported protocols are tcp and udp"
				d.Related = []string{svc.Name, pm.ContainerRaw}
				return d
			}

			pm.Host = host
			pm.Container = container
			if pm.Protocol == "" {
				pm.Protocol = proto
			}
		}
	}
	return nil
}

func portErr(service string, line int, side, raw string) *diag.Diagnostic {
	d := diag.New(diag.Validation,
		"service %q declares an invalid %s port %q", service, side, raw)
	d.Line = line
	d.Suggestion = "ports must be integers between 0 and 65535"
	d.Related = []string{service, raw}
	return d
}

// =============================================================================
// Port Conflict Detection
// =============================================================================

// detectPortConflicts reports the lowest host port claimed by two or more
// distinct services, along with generated alternatives: one port per
// implicated service, starting at the contested port and skipping ports
// already in use elsewhere in the document. Must run after
// validatePortFormats so Host values are populated.
func detectPortConflicts(doc *stackfile.Document) *diag.Diagnostic {
	claims := make(map[int][]string)
	lines := make(map[int]int)
	for i := range doc.Services {
		svc := &doc.Services[i]
		for _, pm := range svc.Ports {
			names := claims[pm.Host]
			if len(names) == 0 || names[len(names)-1] != svc.Name {
				claims[pm.Host] = append(names, svc.Name)
			}
			if _, ok := lines[pm.Host]; !ok {
				lines[pm.Host] = pm.Line
			}
		}
	}

	var conflicts []int
	for port, names := range claims {
		if len(distinct(names)) > 1 {
			conflicts = append(conflicts, port)
		}
	}
	if len(conflicts) == 0 {
		return nil
	}
	sort.Ints(conflicts)
	port := conflicts[0]
	services := distinct(claims[port])

	alternatives := suggestPorts(port, len(services), claims)

	pairs := make([]string, 0, len(alternatives))
	for i, alt := range alternatives {
		pairs = append(pairs, fmt.Sprintf("%s: %d", services[i], alt))
	}

	d := diag.New(diag.Validation,
		"host port %d is declared by multiple services: %s",
		port, strings.Join(services, ", "))
	d.Line = lines[port]
	d.Suggestion = "assign unique host ports, e.g. " + strings.Join(pairs, ", ")
	d.Related = services
	return d
}

// suggestPorts generates n free candidate ports starting at the contested
// port itself (the first claimant keeps it).
func suggestPorts(port, n int, claims map[int][]string) []int {
	out := make([]int, 0, n)
	for cand := port; len(out) < n && cand <= 65535; cand++ {
		if cand != port {
			if _, taken := claims[cand]; taken {
				continue
			}
		}
		out = append(out, cand)
	}
	return out
}

func distinct(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
