package stackfile

import (
	"maps"
	"slices"
	"strings"
)

// =============================================================================
// Document - Main Output Type
// =============================================================================

// Document is the typed representation of one parsed Stackfile.
//
// The analyzer mutates it in place (port normalization, service reordering);
// after analysis it is treated as read-only by the generator.
type Document struct {
	Project  string // DEPLOYMENT-ID value, "" when absent
	Version  string // VERSION-ID value, "" when absent
	Networks []Network
	Volumes  []Volume
	Secrets  []Secret // declaration order, names unique
	Services []Service
}

// Network is one NETWORK-NAME declaration.
type Network struct {
	Name       string
	Driver     string // bridge, overlay, host, none; "" when unset
	Attachable *bool
	Encrypted  *bool
	Ingress    *bool
	Line       int
}

// Volume is one VOLUME declaration with its free-form option tokens.
type Volume struct {
	Name    string
	Options []string
	Line    int
}

// Secret is one SECRET declaration.
type Secret struct {
	Name  string
	Value string
	Line  int
}

// =============================================================================
// Service Types
// =============================================================================

// Service is one SERVICE block folded into a single record.
type Service struct {
	Name        string
	Image       string // "" when the service builds from source
	Command     string
	Ports       []PortMapping
	Env         []EnvVar
	Volumes     []VolumeMapping
	DependsOn   []string // deduplicated, declaration order
	HealthCheck string   // raw shell command, "" when none declared
	Restart     string   // always, unless-stopped, on-failure, no; "" when unset
	Resources   *ResourceLimits
	BuildArgs   map[string]string
	Replicas    *int
	Update      *RolloutPolicy
	Labels      map[string]string
	Line        int
}

// PortMapping is one PORT-MAPPING directive.
//
// HostRaw and ContainerRaw hold the tokens as written; Host and Container
// are filled by the analyzer once the values have been validated as 16-bit
// unsigned integers. Protocol is "" until resolved (explicit token, /udp
// suffix on the container value, or the tcp default).
type PortMapping struct {
	HostRaw      string
	ContainerRaw string
	Host         int
	Container    int
	Protocol     string
	Line         int
}

// VolumeMapping is one VOLUME-MAPPING directive.
type VolumeMapping struct {
	Host      string
	Container string
	Options   []string // mount options such as ro, rw
	Line      int
}

// ResourceLimits carries the RESOURCE-LIMITS quota strings verbatim.
type ResourceLimits struct {
	CPU    string
	Memory string
}

// RolloutPolicy carries UPDATE-CONFIG parameters.
//
// Parallelism 0 is meaningful (replace all replicas at once), so presence is
// signalled by the enclosing pointer on Service, not by a zero check.
type RolloutPolicy struct {
	Parallelism     int
	Delay           string  // duration literal, "" when unset
	FailureAction   string  // continue, pause, rollback; "" when unset
	Monitor         string  // duration literal, "" when unset
	MaxFailureRatio *float64
}

// =============================================================================
// Environment Values
// =============================================================================

// EnvVar is a dual-mode environment value: a {{NAME}} template referencing an
// external variable, or a literal string.
type EnvVar struct {
	Template bool
	Name     string // template variable name, "" for literals
	Value    string // literal text, "" for templates
	Line     int
}

// Render produces the manifest form of the value.
//
// Templates pass the reference through: NAME=${NAME}. Literals render
// verbatim when they already contain "=", otherwise they are wrapped as
// VALUE=<literal>.
//
// Example:
//
//	EnvVar{Template: true, Name: "API_KEY"}.Render() // "API_KEY=${API_KEY}"
//	EnvVar{Value: "DEBUG=true"}.Render()             // "DEBUG=true"
//	EnvVar{Value: "standalone"}.Render()             // "VALUE=standalone"
func (e EnvVar) Render() string {
	if e.Template {
		return e.Name + "=${" + e.Name + "}"
	}
	if strings.Contains(e.Value, "=") {
		return e.Value
	}
	return "VALUE=" + e.Value
}

// =============================================================================
// Derived Accessors
// =============================================================================

// DefaultProject is the project identifier used when no DEPLOYMENT-ID was
// declared.
const DefaultProject = "myproject"

// ProjectName returns the declared project identifier, or DefaultProject.
func (d *Document) ProjectName() string {
	if d.Project != "" {
		return d.Project
	}
	return DefaultProject
}

// NetworkName returns the shared network every service joins: the first
// declared network's name, or "<project-lowercased>_network".
func (d *Document) NetworkName() string {
	if len(d.Networks) > 0 {
		return d.Networks[0].Name
	}
	return strings.ToLower(d.ProjectName()) + "_network"
}

// ServiceNames returns the service names in current list order.
func (d *Document) ServiceNames() []string {
	names := make([]string, len(d.Services))
	for i := range d.Services {
		names[i] = d.Services[i].Name
	}
	return names
}

// ServiceByName returns a pointer into the service list, or nil.
func (d *Document) ServiceByName(name string) *Service {
	for i := range d.Services {
		if d.Services[i].Name == name {
			return &d.Services[i]
		}
	}
	return nil
}

// =============================================================================
// Deep Copy
// =============================================================================

// Clone returns a deep copy of the document. The parse cache hands out
// clones so analyzer mutations never leak back into cached entries.
func (d *Document) Clone() *Document {
	out := &Document{
		Project: d.Project,
		Version: d.Version,
	}
	out.Networks = make([]Network, len(d.Networks))
	for i, n := range d.Networks {
		n.Attachable = cloneBool(n.Attachable)
		n.Encrypted = cloneBool(n.Encrypted)
		n.Ingress = cloneBool(n.Ingress)
		out.Networks[i] = n
	}
	out.Volumes = make([]Volume, len(d.Volumes))
	for i, v := range d.Volumes {
		v.Options = slices.Clone(v.Options)
		out.Volumes[i] = v
	}
	out.Secrets = slices.Clone(d.Secrets)
	out.Services = make([]Service, len(d.Services))
	for i := range d.Services {
		out.Services[i] = d.Services[i].clone()
	}
	return out
}

func (s Service) clone() Service {
	s.Ports = slices.Clone(s.Ports)
	s.Env = slices.Clone(s.Env)
	s.Volumes = make([]VolumeMapping, len(s.Volumes))
	for i, v := range s.Volumes {
		v.Options = slices.Clone(v.Options)
		s.Volumes[i] = v
	}
	s.DependsOn = slices.Clone(s.DependsOn)
	if s.Resources != nil {
		r := *s.Resources
		s.Resources = &r
	}
	s.BuildArgs = maps.Clone(s.BuildArgs)
	if s.Replicas != nil {
		n := *s.Replicas
		s.Replicas = &n
	}
	if s.Update != nil {
		u := *s.Update
		u.MaxFailureRatio = cloneFloat(u.MaxFailureRatio)
		s.Update = &u
	}
	s.Labels = maps.Clone(s.Labels)
	return s
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
