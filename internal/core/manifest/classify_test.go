package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// Classify Tests
// =============================================================================

func TestClassify_Buckets(t *testing.T) {
	tests := []struct {
		image string
		want  Class
	}{
		{"postgres:16", ClassDatabase},
		{"mysql:8.3", ClassDatabase},
		{"bitnami/mongodb:7", ClassDatabase},
		{"cockroachdb/cockroach:v23.2", ClassDatabase},
		{"redis:7-alpine", ClassCache},
		{"memcached:1.6", ClassCache},
		{"nginx:1.25", ClassProxy},
		{"haproxy:2.9", ClassProxy},
		{"library/traefik:v3", ClassProxy},
		{"node:20-alpine", ClassWebApp},
		{"python:3.12-slim", ClassWebApp},
		{"mcr.microsoft.com/dotnet/aspnet:8.0", ClassWebApp},
		{"alpine:3.20", ClassGeneric},
		{"busybox", ClassGeneric},
		{"", ClassGeneric},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.image), "image %q", tt.image)
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	assert.Equal(t, ClassDatabase, Classify("POSTGRES:16"))
	assert.Equal(t, ClassCache, Classify("Redis:7"))
}

func TestClassify_FirstMatchWins(t *testing.T) {
	// Database markers rank above proxy markers.
	assert.Equal(t, ClassDatabase, Classify("internal/postgres-nginx-sidecar"))
}

// =============================================================================
// Defaults Tests
// =============================================================================

func TestDefaultsFor_Tuples(t *testing.T) {
	assert.Equal(t, classDefaults{
		Restart: "always", Interval: "10s", Timeout: "5s",
		Retries: 5, StartPeriod: "30s", PullPolicy: "missing",
	}, defaultsFor(ClassDatabase))

	assert.Equal(t, classDefaults{
		Restart: "always", Interval: "15s", Timeout: "5s",
		Retries: 3, StartPeriod: "10s", PullPolicy: "missing",
	}, defaultsFor(ClassCache))

	assert.Equal(t, classDefaults{
		Restart: "always", Interval: "20s", Timeout: "5s",
		Retries: 3, StartPeriod: "10s", PullPolicy: "missing",
	}, defaultsFor(ClassProxy))

	assert.Equal(t, classDefaults{
		Restart: "unless-stopped", Interval: "30s", Timeout: "10s",
		Retries: 3, StartPeriod: "40s", PullPolicy: "always",
	}, defaultsFor(ClassWebApp))

	assert.Equal(t, classDefaults{
		Restart: "unless-stopped", Interval: "30s", Timeout: "10s",
		Retries: 3, StartPeriod: "30s", PullPolicy: "missing",
	}, defaultsFor(ClassGeneric))
}
