package manifest

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/stackfile/stackc/internal/core/stackfile"
)

// =============================================================================
// Document Assembly
// =============================================================================

// assemble maps an analyzed document onto the output structure. Services are
// added in list order, which the analyzer has already arranged
// topologically. Pure: the result depends only on the document and stamp.
func assemble(doc *stackfile.Document, stamp Stamp) *File {
	project := normalizeName(doc.ProjectName())
	network := networkKey(doc.NetworkName())

	file := &File{
		Name:     project,
		Services: NewServiceMap(),
		Networks: map[string]Network{network: assembleNetwork(doc)},
	}

	for i := range doc.Services {
		svc := &doc.Services[i]
		file.Services.Add(svc.Name, assembleService(svc, project, network, stamp))
	}

	if len(doc.Volumes) > 0 {
		file.Volumes = make(map[string]Volume, len(doc.Volumes))
		for _, vol := range doc.Volumes {
			file.Volumes[vol.Name] = assembleVolume(vol)
		}
	}
	return file
}

// =============================================================================
// Service Assembly
// =============================================================================

// assembleService applies the per-service mapping rules in order. Declared
// values always win; the classifier only fills what the source left unset.
func assembleService(svc *stackfile.Service, project, network string, stamp Stamp) *ServiceEntry {
	class := Classify(svc.Image)
	defaults := defaultsFor(class)

	entry := &ServiceEntry{
		Command:    svc.Command,
		DependsOn:  slices.Clone(svc.DependsOn),
		Networks:   []string{network},
		PullPolicy: defaults.PullPolicy,
	}

	// Declared build arguments always win over a declared image; a service
	// with neither builds from source as well.
	if len(svc.BuildArgs) > 0 || svc.Image == "" {
		entry.Build = &BuildConfig{Context: ".", Dockerfile: "Dockerfile"}
		if len(svc.BuildArgs) > 0 {
			entry.Build.Args = maps.Clone(svc.BuildArgs)
		}
	} else {
		entry.Image = svc.Image
	}

	// A fixed container name cannot coexist with more than one replica.
	if svc.Replicas == nil || *svc.Replicas <= 1 {
		entry.ContainerName = project + "-" + svc.Name
	}

	for _, pm := range svc.Ports {
		spec := fmt.Sprintf("%d:%d", pm.Host, pm.Container)
		if pm.Protocol == "udp" {
			spec += "/udp"
		}
		entry.Ports = append(entry.Ports, spec)
	}

	for _, env := range svc.Env {
		entry.Environment = append(entry.Environment, env.Render())
	}

	for _, vm := range svc.Volumes {
		mount := vm.Host + ":" + vm.Container
		if len(vm.Options) > 0 {
			mount += ":" + strings.Join(vm.Options, ",")
		}
		entry.Volumes = append(entry.Volumes, mount)
	}

	if svc.HealthCheck != "" {
		entry.HealthCheck = &HealthCheck{
			Test:        []string{"CMD-SHELL", svc.HealthCheck},
			Interval:    defaults.Interval,
			Timeout:     defaults.Timeout,
			Retries:     defaults.Retries,
			StartPeriod: defaults.StartPeriod,
		}
	}

	entry.Restart = svc.Restart
	if entry.Restart == "" {
		entry.Restart = defaults.Restart
	}

	entry.Deploy = assembleDeploy(svc)

	entry.Labels = map[string]string{
		"com.stackc.project":   project,
		"com.stackc.service":   svc.Name,
		"com.stackc.class":     string(class),
		"com.stackc.generated": stamp.GeneratedAt.UTC().Format("2006-01-02"),
	}
	return entry
}

// assembleDeploy builds the orchestration block, or nil when the service
// declared nothing that belongs in one. Declared resource limits always
// carry the fixed redeploy policy.
func assembleDeploy(svc *stackfile.Service) *Deploy {
	deploy := &Deploy{}
	populated := false

	if svc.Replicas != nil {
		n := *svc.Replicas
		deploy.Replicas = &n
		populated = true
	}
	if svc.Resources != nil {
		deploy.Resources = &Resources{
			Limits: &ResourceSpec{CPUs: svc.Resources.CPU, Memory: svc.Resources.Memory},
		}
		deploy.RestartPolicy = &RestartPolicy{
			Condition:   "on-failure",
			Delay:       "5s",
			MaxAttempts: 3,
			Window:      "120s",
		}
		populated = true
	}
	if svc.Update != nil {
		parallelism := svc.Update.Parallelism
		uc := &UpdateConfig{
			Parallelism:   &parallelism,
			Delay:         svc.Update.Delay,
			FailureAction: svc.Update.FailureAction,
			Monitor:       svc.Update.Monitor,
		}
		if svc.Update.MaxFailureRatio != nil {
			ratio := *svc.Update.MaxFailureRatio
			uc.MaxFailureRatio = &ratio
		}
		deploy.UpdateConfig = uc
		populated = true
	}
	if len(svc.Labels) > 0 {
		deploy.Labels = maps.Clone(svc.Labels)
		populated = true
	}

	if !populated {
		return nil
	}
	return deploy
}

// =============================================================================
// Network and Volume Assembly
// =============================================================================

// assembleNetwork derives the shared network from the first declaration, or
// a plain bridge network when none was declared. The ingress flag has no
// representation in the output format and is dropped.
func assembleNetwork(doc *stackfile.Document) Network {
	net := Network{Driver: "bridge"}
	if len(doc.Networks) == 0 {
		return net
	}

	decl := doc.Networks[0]
	if decl.Driver != "" {
		net.Driver = decl.Driver
	}
	if decl.Attachable != nil {
		attachable := *decl.Attachable
		net.Attachable = &attachable
	}
	if decl.Encrypted != nil && *decl.Encrypted {
		net.DriverOpts = map[string]string{"encrypted": "true"}
	}
	return net
}

// assembleVolume maps a declaration onto a local-driver volume; key=value
// option tokens become driver options, anything else is ignored.
func assembleVolume(vol stackfile.Volume) Volume {
	v := Volume{Driver: "local"}
	for _, opt := range vol.Options {
		key, value, ok := strings.Cut(opt, "=")
		if !ok || key == "" {
			continue
		}
		if v.DriverOpts == nil {
			v.DriverOpts = make(map[string]string)
		}
		v.DriverOpts[key] = value
	}
	return v
}

// =============================================================================
// Name Normalization
// =============================================================================

// normalizeName lowercases an identifier into the character set container
// and project names accept: spaces and underscores become hyphens, anything
// else outside [a-z0-9.-] is dropped. A name reduced to nothing falls back
// to the default project identifier.
func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r == ' ' || r == '_':
			b.WriteByte('-')
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), "-.")
	if out == "" {
		return stackfile.DefaultProject
	}
	return out
}

// networkKey maps the shared network name into the output format's key
// character set, preserving case and underscores. Declared names are
// already plain identifiers in the common case; this rewrites only
// pathological quoted ones.
func networkKey(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == ' ':
			b.WriteByte('-')
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '_', r == '-', r == '.':
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), "-.")
	if out == "" {
		return "default"
	}
	return out
}
