package manifest

import "gopkg.in/yaml.v3"

// =============================================================================
// File - Root Output Type
// =============================================================================

// File is the assembled manifest document before encoding. Field order here
// is emission order; everything optional carries omitempty so absent
// sections disappear from the output.
type File struct {
	Name     string             `yaml:"name"`
	Services *ServiceMap        `yaml:"services"`
	Networks map[string]Network `yaml:"networks,omitempty"`
	Volumes  map[string]Volume  `yaml:"volumes,omitempty"`
}

// =============================================================================
// Ordered Services Mapping
// =============================================================================

// ServiceMap is a mapping of service name to entry that preserves insertion
// order through YAML encoding. A plain Go map would serialize with sorted
// keys, discarding the dependency order the analyzer computed.
type ServiceMap struct {
	names   []string
	entries map[string]*ServiceEntry
}

// NewServiceMap returns an empty ordered mapping.
func NewServiceMap() *ServiceMap {
	return &ServiceMap{entries: make(map[string]*ServiceEntry)}
}

// Add appends a service under its name. Re-adding a name replaces the entry
// but keeps its original position.
func (m *ServiceMap) Add(name string, entry *ServiceEntry) {
	if _, ok := m.entries[name]; !ok {
		m.names = append(m.names, name)
	}
	m.entries[name] = entry
}

// Get returns the entry for name, or nil.
func (m *ServiceMap) Get(name string) *ServiceEntry {
	return m.entries[name]
}

// Names returns the service names in insertion order.
func (m *ServiceMap) Names() []string {
	return m.names
}

// Len returns the number of entries.
func (m *ServiceMap) Len() int {
	return len(m.names)
}

// MarshalYAML emits the mapping with keys in insertion order.
func (m *ServiceMap) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range m.names {
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: name}
		value := &yaml.Node{}
		if err := value.Encode(m.entries[name]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, key, value)
	}
	return node, nil
}

// =============================================================================
// Service Types
// =============================================================================

// ServiceEntry is one service definition in the output mapping.
type ServiceEntry struct {
	Image         string            `yaml:"image,omitempty"`
	Build         *BuildConfig      `yaml:"build,omitempty"`
	ContainerName string            `yaml:"container_name,omitempty"`
	Command       string            `yaml:"command,omitempty"`
	Ports         []string          `yaml:"ports,omitempty"`
	Environment   []string          `yaml:"environment,omitempty"`
	Volumes       []string          `yaml:"volumes,omitempty"`
	DependsOn     []string          `yaml:"depends_on,omitempty"`
	HealthCheck   *HealthCheck      `yaml:"healthcheck,omitempty"`
	Restart       string            `yaml:"restart,omitempty"`
	Deploy        *Deploy           `yaml:"deploy,omitempty"`
	Networks      []string          `yaml:"networks,omitempty"`
	PullPolicy    string            `yaml:"pull_policy,omitempty"`
	Labels        map[string]string `yaml:"labels,omitempty"`
}

// BuildConfig is the build-context entry emitted instead of an image
// reference.
type BuildConfig struct {
	Context    string            `yaml:"context"`
	Dockerfile string            `yaml:"dockerfile,omitempty"`
	Args       map[string]string `yaml:"args,omitempty"`
}

// HealthCheck is a shell-invoked container health probe.
type HealthCheck struct {
	Test        []string `yaml:"test"`
	Interval    string   `yaml:"interval,omitempty"`
	Timeout     string   `yaml:"timeout,omitempty"`
	Retries     int      `yaml:"retries,omitempty"`
	StartPeriod string   `yaml:"start_period,omitempty"`
}

// =============================================================================
// Deploy Types
// =============================================================================

// Deploy carries orchestration hints. Emitted only when at least one of its
// sections is populated.
type Deploy struct {
	Replicas      *int              `yaml:"replicas,omitempty"`
	Resources     *Resources        `yaml:"resources,omitempty"`
	RestartPolicy *RestartPolicy    `yaml:"restart_policy,omitempty"`
	UpdateConfig  *UpdateConfig     `yaml:"update_config,omitempty"`
	Labels        map[string]string `yaml:"labels,omitempty"`
}

// Resources holds per-container quota limits.
type Resources struct {
	Limits *ResourceSpec `yaml:"limits,omitempty"`
}

// ResourceSpec carries quota strings verbatim from the source declaration.
type ResourceSpec struct {
	CPUs   string `yaml:"cpus,omitempty"`
	Memory string `yaml:"memory,omitempty"`
}

// RestartPolicy is the redeploy sub-policy accompanying resource limits.
type RestartPolicy struct {
	Condition   string `yaml:"condition,omitempty"`
	Delay       string `yaml:"delay,omitempty"`
	MaxAttempts int    `yaml:"max_attempts,omitempty"`
	Window      string `yaml:"window,omitempty"`
}

// UpdateConfig is the rolling-update policy.
//
// Parallelism 0 means replace all replicas at once, so it is a pointer;
// omitempty on a plain int would drop the meaningful zero.
type UpdateConfig struct {
	Parallelism     *int     `yaml:"parallelism,omitempty"`
	Delay           string   `yaml:"delay,omitempty"`
	FailureAction   string   `yaml:"failure_action,omitempty"`
	Monitor         string   `yaml:"monitor,omitempty"`
	MaxFailureRatio *float64 `yaml:"max_failure_ratio,omitempty"`
}

// =============================================================================
// Network and Volume Types
// =============================================================================

// Network is the shared network definition every service joins.
type Network struct {
	Driver     string            `yaml:"driver,omitempty"`
	DriverOpts map[string]string `yaml:"driver_opts,omitempty"`
	Attachable *bool             `yaml:"attachable,omitempty"`
}

// Volume is a named volume definition.
type Volume struct {
	Driver     string            `yaml:"driver,omitempty"`
	DriverOpts map[string]string `yaml:"driver_opts,omitempty"`
}
