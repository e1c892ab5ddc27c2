package e2e

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackfile/stackc/internal/core/diag"
)

// =============================================================================
// Pipeline Scenarios
// =============================================================================

const shopStack = `DEPLOYMENT-ID shop
VERSION-ID "2.1.0"

SERVICES SECTION

SERVICE web
  IMAGE-ID nginx:1.25
  PORT-MAPPING 8080 TO 80
  DEPENDS-ON api
END SERVICE

SERVICE api
  IMAGE-ID node:20
  PORT-MAPPING 9090 TO 3000
  ENV-VARIABLE {{API_KEY}}
  DEPENDS-ON db
  DEPENDS-ON cache
END SERVICE

SERVICE db
  IMAGE-ID postgres:16
  HEALTH-CHECK "pg_isready -U postgres"
END SERVICE

SERVICE cache
  IMAGE-ID redis:7
END SERVICE
`

// TestE2E_ShopStack_FullPipeline compiles a four-service stack and checks the
// manifest end to end: startup order, classification defaults, the shared
// network, and the fixed label set.
func TestE2E_ShopStack_FullPipeline(t *testing.T) {
	w := NewWorkspace(t, shopStack)

	manifest, warnings := Compile(t, w)
	assert.Empty(t, warnings)

	// Dependencies come before their dependents in the services mapping.
	dbAt := strings.Index(manifest, "\n  db:")
	apiAt := strings.Index(manifest, "\n  api:")
	webAt := strings.Index(manifest, "\n  web:")
	require.True(t, dbAt >= 0 && apiAt >= 0 && webAt >= 0)
	assert.Less(t, dbAt, apiAt)
	assert.Less(t, apiAt, webAt)

	tree := ParseManifest(t, manifest)
	assert.Equal(t, "shop", tree["name"])

	db := Service(t, tree, "db")
	assert.Equal(t, "always", db["restart"])
	health, ok := db["healthcheck"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"CMD-SHELL", "pg_isready -U postgres"}, health["test"])
	assert.Equal(t, "10s", health["interval"])

	cache := Service(t, tree, "cache")
	assert.Equal(t, "always", cache["restart"])
	assert.Nil(t, cache["healthcheck"])

	web := Service(t, tree, "web")
	assert.Equal(t, "shop-web", web["container_name"])
	assert.Equal(t, []any{"8080:80"}, web["ports"])
	assert.Equal(t, []any{"api"}, web["depends_on"])
	assert.Equal(t, []any{"shop_network"}, web["networks"])

	api := Service(t, tree, "api")
	assert.ElementsMatch(t, []any{"db", "cache"}, api["depends_on"])
	assert.Equal(t, []any{"API_KEY=${API_KEY}"}, api["environment"])

	labels, ok := api["labels"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "shop", labels["com.stackc.project"])
	assert.Equal(t, "api", labels["com.stackc.service"])
	assert.Equal(t, "webapp", labels["com.stackc.class"])

	networks, ok := tree["networks"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, networks, "shop_network")

	t.Log("PASS: shop stack compiled and verified")
}

// TestE2E_BuildArgs_DockerfileDiscovery compiles a service built from source,
// with the build file discovered beside the input, and checks that a
// misspelled argument surfaces as a warning without failing the build.
func TestE2E_BuildArgs_DockerfileDiscovery(t *testing.T) {
	w := NewWorkspace(t, `SERVICES SECTION

SERVICE app
  BUILD-ARGS NODE_VERSION="20" BUILD_ENF="production"
  PORT-MAPPING 8080 TO 3000
END SERVICE
`)
	w.WriteDockerfile(t, `ARG NODE_VERSION=18
ARG BUILD_ENV=dev
FROM node:${NODE_VERSION}
`)

	manifest, warnings := Compile(t, w)

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "BUILD_ENF")
	assert.Contains(t, warnings[0].Suggestion, "BUILD_ENV")

	tree := ParseManifest(t, manifest)
	app := Service(t, tree, "app")
	assert.Nil(t, app["image"])

	build, ok := app["build"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, ".", build["context"])
	args, ok := build["args"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "20", args["NODE_VERSION"])

	t.Log("PASS: build-arg cross-validation verified")
}

// TestE2E_PortConflict_FailsCompilation checks that a host-port collision is
// fatal and that nothing is written.
func TestE2E_PortConflict_FailsCompilation(t *testing.T) {
	w := NewWorkspace(t, `SERVICES SECTION

SERVICE web
  IMAGE-ID nginx:1.25
  PORT-MAPPING 8080 TO 80
END SERVICE

SERVICE api
  IMAGE-ID node:20
  PORT-MAPPING 8080 TO 3000
END SERVICE
`)

	err := CompileExpectError(t, w)
	assert.ErrorIs(t, err, diag.ErrValidation)
	assert.Contains(t, err.Error(), "8080")

	_, statErr := os.Stat(w.Output)
	assert.True(t, os.IsNotExist(statErr))

	t.Log("PASS: port conflict rejected")
}

// TestE2E_DependencyCycle_FailsCompilation checks that a cycle is fatal.
func TestE2E_DependencyCycle_FailsCompilation(t *testing.T) {
	w := NewWorkspace(t, `SERVICES SECTION

SERVICE a
  IMAGE-ID alpine:3.20
  DEPENDS-ON b
END SERVICE

SERVICE b
  IMAGE-ID alpine:3.20
  DEPENDS-ON a
END SERVICE
`)

	err := CompileExpectError(t, w)
	assert.ErrorIs(t, err, diag.ErrValidation)
	assert.Contains(t, err.Error(), "cycle")

	t.Log("PASS: dependency cycle rejected")
}

// TestE2E_SyntaxError_RendersSnippet checks that a grammar failure carries a
// position and renders a caret snippet.
func TestE2E_SyntaxError_RendersSnippet(t *testing.T) {
	w := NewWorkspace(t, `SERVICES SECTION

SERVICE web
  IMAGE-ID nginx:1.25
  RESTART-POLICY sometimes
END SERVICE
`)

	err := CompileExpectError(t, w)
	assert.ErrorIs(t, err, diag.ErrSyntax)

	var d *diag.Diagnostic
	require.ErrorAs(t, err, &d)
	assert.Equal(t, 5, d.Line)
	assert.Contains(t, d.Render(), "^")

	t.Log("PASS: syntax diagnostics verified")
}

// TestE2E_ValidateOnly_ProducesNoManifest checks the validate path reports
// warnings without writing anything.
func TestE2E_ValidateOnly_ProducesNoManifest(t *testing.T) {
	w := NewWorkspace(t, `SERVICES SECTION

SERVICE app
  BUILD-ARGS MISSPELLED="x"
END SERVICE
`)
	w.WriteDockerfile(t, "ARG REAL_ARG=1\n")

	warnings, err := Validate(t, w)
	require.NoError(t, err)
	assert.Len(t, warnings, 1)

	_, statErr := os.Stat(w.Output)
	assert.True(t, os.IsNotExist(statErr))

	t.Log("PASS: validate-only verified")
}
