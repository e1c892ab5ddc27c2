package manifest

import "strings"

// =============================================================================
// Service-Type Classification
// =============================================================================

// Class is the inferred service category driving default operational
// parameters.
type Class string

const (
	ClassDatabase Class = "database"
	ClassCache    Class = "cache"
	ClassProxy    Class = "proxy"
	ClassWebApp   Class = "webapp"
	ClassGeneric  Class = "generic"
)

// classDefaults is the fixed tuple a classifier bucket contributes wherever
// the source declares nothing.
type classDefaults struct {
	Restart     string
	Interval    string
	Timeout     string
	Retries     int
	StartPeriod string
	PullPolicy  string
}

// classMarkers lists image-reference substrings per bucket, checked in
// priority order. First match wins, so a hypothetical "postgres-proxy"
// image classifies as a database.
var classMarkers = []struct {
	class   Class
	markers []string
}{
	{ClassDatabase, []string{"postgres", "mysql", "mariadb", "mongo", "cassandra", "cockroach", "clickhouse", "mssql"}},
	{ClassCache, []string{"redis", "memcached", "keydb"}},
	{ClassProxy, []string{"nginx", "haproxy", "traefik", "caddy", "envoy", "httpd", "apache"}},
	{ClassWebApp, []string{"node", "python", "ruby", "php", "openjdk", "golang", "dotnet"}},
}

// Stateful services restart aggressively and are probed on a tight cadence;
// application services get looser timings and a longer startup grace.
var classTable = map[Class]classDefaults{
	ClassDatabase: {Restart: "always", Interval: "10s", Timeout: "5s", Retries: 5, StartPeriod: "30s", PullPolicy: "missing"},
	ClassCache:    {Restart: "always", Interval: "15s", Timeout: "5s", Retries: 3, StartPeriod: "10s", PullPolicy: "missing"},
	ClassProxy:    {Restart: "always", Interval: "20s", Timeout: "5s", Retries: 3, StartPeriod: "10s", PullPolicy: "missing"},
	ClassWebApp:   {Restart: "unless-stopped", Interval: "30s", Timeout: "10s", Retries: 3, StartPeriod: "40s", PullPolicy: "always"},
	ClassGeneric:  {Restart: "unless-stopped", Interval: "30s", Timeout: "10s", Retries: 3, StartPeriod: "30s", PullPolicy: "missing"},
}

// Classify inspects an image reference case-insensitively and returns the
// first matching bucket. Services without a recognizable engine name, and
// services built from source with no image at all, classify as generic.
func Classify(image string) Class {
	ref := strings.ToLower(image)
	for _, bucket := range classMarkers {
		for _, marker := range bucket.markers {
			if strings.Contains(ref, marker) {
				return bucket.class
			}
		}
	}
	return ClassGeneric
}

func defaultsFor(class Class) classDefaults {
	return classTable[class]
}
