package stackfile

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/docker/go-units"

	"github.com/stackfile/stackc/internal/core/diag"
)

// =============================================================================
// Tree Folding
// =============================================================================

// fold walks the concrete parse tree into a Document. Directives accumulate
// into their service record builder-style: scalar directives resolve
// last-wins, list directives append, map directives merge per key with
// last-wins values. Unrecognized directives are dropped here for forward
// compatibility. Scalar values with a constrained shape (counts, durations,
// quotas, ratios) are validated as they fold.
func fold(tree *sourceFile, source string) (*Document, error) {
	doc := &Document{}

	if tree.Project != nil {
		doc.Project = unquote(tree.Project.Name)
	}
	if tree.Version != nil {
		doc.Version = unquote(tree.Version.Version)
	}

	if tree.Environment != nil {
		for _, item := range tree.Environment.Items {
			foldEnvItem(doc, item)
		}
	}

	for _, block := range tree.Services.Services {
		svc, derr := foldService(block, source)
		if derr != nil {
			return nil, derr
		}
		doc.Services = append(doc.Services, svc)
	}
	return doc, nil
}

func foldEnvItem(doc *Document, item *envItem) {
	switch {
	case item.Network != nil:
		n := item.Network
		net := Network{
			Name:       unquote(n.Name),
			Attachable: foldFlag(n.Attachable),
			Encrypted:  foldFlag(n.Encrypted),
			Ingress:    foldFlag(n.Ingress),
			Line:       n.Pos.Line,
		}
		if n.Driver != nil {
			net.Driver = strings.ToLower(*n.Driver)
		}
		doc.Networks = append(doc.Networks, net)

	case item.Volume != nil:
		v := item.Volume
		vol := Volume{Name: unquote(v.Name), Line: v.Pos.Line}
		for _, opt := range v.Options {
			s := unquote(opt.Key)
			if opt.Value != nil {
				s += "=" + unquote(*opt.Value)
			}
			vol.Options = append(vol.Options, s)
		}
		doc.Volumes = append(doc.Volumes, vol)

	case item.Secret != nil:
		s := item.Secret
		name, value := unquote(s.Name), unquote(s.Value)
		for i := range doc.Secrets {
			if doc.Secrets[i].Name == name {
				doc.Secrets[i].Value = value
				return
			}
		}
		doc.Secrets = append(doc.Secrets, Secret{Name: name, Value: value, Line: s.Pos.Line})
	}
}

func foldService(block *serviceBlock, source string) (Service, error) {
	svc := Service{
		Name: unquote(block.Name),
		Line: block.Pos.Line,
	}

	for _, dir := range block.Directives {
		switch {
		case dir.Image != nil:
			svc.Image = unquote(dir.Image.Image)

		case dir.Port != nil:
			p := dir.Port
			pm := PortMapping{
				HostRaw:      unquote(p.Host),
				ContainerRaw: unquote(p.Container),
				Line:         p.Pos.Line,
			}
			if p.Protocol != nil {
				pm.Protocol = *p.Protocol
			}
			svc.Ports = append(svc.Ports, pm)

		case dir.Env != nil:
			svc.Env = append(svc.Env, foldEnvVar(dir.Env))

		case dir.Command != nil:
			svc.Command = unquote(dir.Command.Command)

		case dir.VolumeMap != nil:
			v := dir.VolumeMap
			vm := VolumeMapping{
				Host:      unquote(v.Host),
				Container: unquote(v.Container),
				Line:      v.Pos.Line,
			}
			if v.Options != nil {
				for _, opt := range strings.Split(unquote(*v.Options), ",") {
					if opt = strings.TrimSpace(opt); opt != "" {
						vm.Options = append(vm.Options, opt)
					}
				}
			}
			svc.Volumes = append(svc.Volumes, vm)

		case dir.DependsOn != nil:
			name := unquote(dir.DependsOn.Name)
			if !slices.Contains(svc.DependsOn, name) {
				svc.DependsOn = append(svc.DependsOn, name)
			}

		case dir.Health != nil:
			svc.HealthCheck = unquote(dir.Health.Command)

		case dir.Restart != nil:
			svc.Restart = dir.Restart.Policy

		case dir.Resources != nil:
			r, derr := foldResources(dir.Resources, source)
			if derr != nil {
				return svc, derr
			}
			svc.Resources = r

		case dir.BuildArgs != nil:
			if svc.BuildArgs == nil {
				svc.BuildArgs = make(map[string]string)
			}
			for _, kv := range dir.BuildArgs.Args {
				svc.BuildArgs[kv.Key] = unquote(kv.Value)
			}

		case dir.Replicas != nil:
			raw := unquote(dir.Replicas.Count)
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				return svc, valueErr(source, dir.Replicas.Pos,
					"REPLICAS must be a positive integer, got %q", raw)
			}
			svc.Replicas = &n

		case dir.Update != nil:
			u, derr := foldUpdate(dir.Update, source)
			if derr != nil {
				return svc, derr
			}
			svc.Update = u

		case dir.Labels != nil:
			if svc.Labels == nil {
				svc.Labels = make(map[string]string)
			}
			for _, kv := range dir.Labels.Labels {
				svc.Labels[kv.Key] = unquote(kv.Value)
			}

		case dir.Unknown != nil:
			// Ignored for forward compatibility.
		}
	}
	return svc, nil
}

func foldEnvVar(e *envDirective) EnvVar {
	raw := e.Value
	if strings.HasPrefix(raw, "{{") && strings.HasSuffix(raw, "}}") {
		return EnvVar{Template: true, Name: raw[2 : len(raw)-2], Line: e.Pos.Line}
	}
	return EnvVar{Value: unquote(raw), Line: e.Pos.Line}
}

func foldResources(r *resourcesDirective, source string) (*ResourceLimits, error) {
	cpu := unquote(r.CPU)
	if v, err := strconv.ParseFloat(cpu, 64); err != nil || v <= 0 {
		return nil, valueErr(source, r.Pos,
			"RESOURCE-LIMITS CPU must be a positive number, got %q", cpu)
	}
	mem := unquote(r.Memory)
	if v, err := units.RAMInBytes(mem); err != nil || v <= 0 {
		return nil, valueErr(source, r.Pos,
			"RESOURCE-LIMITS MEMORY must be a size such as 512M or 2G, got %q", mem)
	}
	return &ResourceLimits{CPU: cpu, Memory: mem}, nil
}

func foldUpdate(u *updateDirective, source string) (*RolloutPolicy, error) {
	raw := unquote(u.Parallelism)
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil, valueErr(source, u.Pos,
			"UPDATE-CONFIG PARALLELISM must be a non-negative integer, got %q", raw)
	}
	out := &RolloutPolicy{Parallelism: n}

	if u.Delay != nil {
		d, derr := foldDuration(unquote(*u.Delay), "DELAY", u.Pos, source)
		if derr != nil {
			return nil, derr
		}
		out.Delay = d
	}
	if u.Action != nil {
		out.FailureAction = strings.ToLower(*u.Action)
	}
	if u.Monitor != nil {
		d, derr := foldDuration(unquote(*u.Monitor), "MONITOR", u.Pos, source)
		if derr != nil {
			return nil, derr
		}
		out.Monitor = d
	}
	if u.MaxRatio != nil {
		raw := unquote(*u.MaxRatio)
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || f < 0 || f > 1 {
			return nil, valueErr(source, u.Pos,
				"UPDATE-CONFIG MAX-FAILURE-RATIO must be between 0.0 and 1.0, got %q", raw)
		}
		out.MaxFailureRatio = &f
	}
	return out, nil
}

func foldDuration(raw, field string, pos lexer.Position, source string) (string, error) {
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return "", valueErr(source, pos,
			"UPDATE-CONFIG %s must be a duration such as 10s or 1m30s, got %q", field, raw)
	}
	return raw, nil
}

func foldFlag(v *string) *bool {
	if v == nil {
		return nil
	}
	b := *v == "TRUE"
	return &b
}

func valueErr(source string, pos lexer.Position, format string, args ...any) *diag.Diagnostic {
	d := diag.New(diag.Validation, format, args...)
	d.Line, d.Column = pos.Line, pos.Column
	d.Snippet = diag.Snippet(source, pos.Line, pos.Column)
	return d
}

// unquote strips one pair of surrounding single or double quotes, keeping the
// inner text verbatim. Bare tokens pass through unchanged.
func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
