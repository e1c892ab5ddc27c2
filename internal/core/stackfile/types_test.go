package stackfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// EnvVar Rendering Tests
// =============================================================================

func TestEnvVar_RenderTemplate(t *testing.T) {
	e := EnvVar{Template: true, Name: "API_KEY"}

	assert.Equal(t, "API_KEY=${API_KEY}", e.Render())
}

func TestEnvVar_RenderLiteralWithEquals(t *testing.T) {
	e := EnvVar{Value: "DEBUG=true"}

	assert.Equal(t, "DEBUG=true", e.Render())
}

func TestEnvVar_RenderBareLiteralWrapped(t *testing.T) {
	e := EnvVar{Value: "standalone"}

	assert.Equal(t, "VALUE=standalone", e.Render())
}

// =============================================================================
// Derived Accessor Tests
// =============================================================================

func TestDocument_ProjectNameFallback(t *testing.T) {
	doc := &Document{}
	assert.Equal(t, "myproject", doc.ProjectName())

	doc.Project = "shop-backend"
	assert.Equal(t, "shop-backend", doc.ProjectName())
}

func TestDocument_NetworkNameFirstDeclared(t *testing.T) {
	doc := &Document{
		Project:  "shop",
		Networks: []Network{{Name: "backbone"}, {Name: "edge"}},
	}

	assert.Equal(t, "backbone", doc.NetworkName())
}

func TestDocument_NetworkNameFallback(t *testing.T) {
	doc := &Document{Project: "Shop_Backend"}

	assert.Equal(t, "shop_backend_network", doc.NetworkName())
}

func TestDocument_NetworkNameFallbackNoProject(t *testing.T) {
	doc := &Document{}

	assert.Equal(t, "myproject_network", doc.NetworkName())
}

func TestDocument_ServiceNamesAndLookup(t *testing.T) {
	doc := &Document{Services: []Service{{Name: "web"}, {Name: "api"}}}

	assert.Equal(t, []string{"web", "api"}, doc.ServiceNames())
	require.NotNil(t, doc.ServiceByName("api"))
	assert.Nil(t, doc.ServiceByName("ghost"))
}

// =============================================================================
// Clone Tests
// =============================================================================

func TestDocument_CloneIsDeep(t *testing.T) {
	orig := mustParse(t, fullStackfile)
	clone := orig.Clone()

	require.Equal(t, orig, clone)

	// Mutating the clone must not touch the original.
	clone.Services[0].Name = "mutated"
	clone.Services[0].DependsOn[0] = "mutated"
	clone.Networks[0].Driver = "mutated"
	*clone.Networks[0].Attachable = false
	api := clone.ServiceByName("api")
	require.NotNil(t, api)
	*api.Replicas = 99
	api.Resources.CPU = "9.9"

	assert.Equal(t, "web", orig.Services[0].Name)
	assert.Equal(t, "api", orig.Services[0].DependsOn[0])
	assert.Equal(t, "overlay", orig.Networks[0].Driver)
	assert.True(t, *orig.Networks[0].Attachable)
	assert.Equal(t, 2, *orig.ServiceByName("api").Replicas)
	assert.Equal(t, "0.5", orig.ServiceByName("api").Resources.CPU)
}

func TestDocument_CloneCopiesMaps(t *testing.T) {
	src := `SERVICES SECTION
SERVICE app
BUILD-ARGS KEY="v1"
SWARM-LABELS zone="eu"
END SERVICE
`
	orig := mustParse(t, src)
	clone := orig.Clone()

	clone.Services[0].BuildArgs["KEY"] = "v2"
	clone.Services[0].Labels["zone"] = "us"

	assert.Equal(t, "v1", orig.Services[0].BuildArgs["KEY"])
	assert.Equal(t, "eu", orig.Services[0].Labels["zone"])
}
