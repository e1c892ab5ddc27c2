package e2e

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wordpressStack = `DEPLOYMENT-ID wordpress
VERSION-ID "6.5"

ENVIRONMENT SECTION

VOLUME dbdata
VOLUME wpcontent

SERVICES SECTION

SERVICE mysql
  IMAGE-ID mysql:8.0
  ENV-VARIABLE "MYSQL_DATABASE=wordpress"
  ENV-VARIABLE {{MYSQL_ROOT_PASSWORD}}
  VOLUME-MAPPING dbdata TO /var/lib/mysql
  HEALTH-CHECK "mysqladmin ping -h localhost"
END SERVICE

SERVICE wordpress
  IMAGE-ID wordpress:6.5-php8.3
  PORT-MAPPING 8080 TO 80
  ENV-VARIABLE "WORDPRESS_DB_HOST=mysql"
  ENV-VARIABLE {{WORDPRESS_DB_PASSWORD}}
  VOLUME-MAPPING wpcontent TO /var/www/html/wp-content
  DEPENDS-ON mysql
END SERVICE
`

// TestE2E_WordpressMysql_Classification compiles the classic two-tier stack
// and checks that each tier gets its classified defaults.
func TestE2E_WordpressMysql_Classification(t *testing.T) {
	w := NewWorkspace(t, wordpressStack)

	manifest, warnings := Compile(t, w)
	assert.Empty(t, warnings)

	tree := ParseManifest(t, manifest)
	assert.Equal(t, "wordpress", tree["name"])

	mysql := Service(t, tree, "mysql")
	assert.Equal(t, "always", mysql["restart"])
	assert.Equal(t, "missing", mysql["pull_policy"])
	health, ok := mysql["healthcheck"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "10s", health["interval"])
	assert.Equal(t, 5, health["retries"])

	wp := Service(t, tree, "wordpress")
	assert.Equal(t, "unless-stopped", wp["restart"])
	assert.Equal(t, "always", wp["pull_policy"])
	assert.Equal(t, []any{"mysql"}, wp["depends_on"])

	t.Log("PASS: wordpress/mysql classification verified")
}

// TestE2E_WordpressMysql_VolumesAndVariables checks named volumes and
// template variable pass-through.
func TestE2E_WordpressMysql_VolumesAndVariables(t *testing.T) {
	w := NewWorkspace(t, wordpressStack)

	manifest, _ := Compile(t, w)
	tree := ParseManifest(t, manifest)

	volumes, ok := tree["volumes"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, volumes, "dbdata")
	assert.Contains(t, volumes, "wpcontent")

	mysql := Service(t, tree, "mysql")
	assert.Equal(t, []any{"dbdata:/var/lib/mysql"}, mysql["volumes"])
	assert.Equal(t,
		[]any{"MYSQL_DATABASE=wordpress", "MYSQL_ROOT_PASSWORD=${MYSQL_ROOT_PASSWORD}"},
		mysql["environment"])

	// Template references survive verbatim for the runtime to interpolate.
	assert.Contains(t, manifest, "WORDPRESS_DB_PASSWORD=${WORDPRESS_DB_PASSWORD}")

	t.Log("PASS: volumes and variables verified")
}

// TestE2E_FullFeatureStack runs every directive through the pipeline at once.
func TestE2E_FullFeatureStack(t *testing.T) {
	w := NewWorkspace(t, `DEPLOYMENT-ID acme
VERSION-ID "3.0.0"

ENVIRONMENT SECTION

NETWORK-NAME mesh DRIVER OVERLAY ATTACHABLE TRUE ENCRYPTED TRUE
VOLUME blobs type=local
SECRET api_token sekrit

SERVICES SECTION

SERVICE edge
  IMAGE-ID traefik:v3.0
  PORT-MAPPING 443 TO 443
  PORT-MAPPING 53 TO 53 udp
  DEPENDS-ON app
END SERVICE

SERVICE app
  BUILD-ARGS GO_VERSION="1.24"
  COMMAND "/srv/app serve"
  ENV-VARIABLE {{DATABASE_URL}}
  RESTART-POLICY on-failure
  RESOURCE-LIMITS CPU 1.5 MEMORY 1G
  REPLICAS 3
  UPDATE-CONFIG PARALLELISM 1 DELAY 10s FAILURE-ACTION ROLLBACK MONITOR 30s MAX-FAILURE-RATIO 0.25
  SWARM-LABELS tier="backend" team="platform"
  VOLUME-MAPPING blobs TO /srv/data
END SERVICE
`)
	w.WriteDockerfile(t, "ARG GO_VERSION=1.24\nFROM golang:${GO_VERSION}\n")

	manifest, warnings := Compile(t, w)
	assert.Empty(t, warnings)

	// The secret is counted in the header but its value never appears.
	assert.Contains(t, manifest, "secrets: 1")
	assert.NotContains(t, manifest, "sekrit")

	tree := ParseManifest(t, manifest)

	edge := Service(t, tree, "edge")
	assert.Equal(t, []any{"443:443", "53:53/udp"}, edge["ports"])
	assert.Equal(t, "always", edge["restart"])

	app := Service(t, tree, "app")
	assert.Equal(t, "on-failure", app["restart"])
	assert.Equal(t, "/srv/app serve", app["command"])
	assert.Nil(t, app["container_name"])

	deploy, ok := app["deploy"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 3, deploy["replicas"])

	update, ok := deploy["update_config"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 1, update["parallelism"])
	assert.Equal(t, "rollback", update["failure_action"])
	assert.Equal(t, 0.25, update["max_failure_ratio"])

	deployLabels, ok := deploy["labels"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "backend", deployLabels["tier"])

	limits := deploy["resources"].(map[string]any)["limits"].(map[string]any)
	assert.Equal(t, "1.5", limits["cpus"])
	assert.Equal(t, "1G", limits["memory"])

	networks, ok := tree["networks"].(map[string]any)
	require.True(t, ok)
	mesh, ok := networks["mesh"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "overlay", mesh["driver"])
	assert.Equal(t, true, mesh["attachable"])

	t.Log("PASS: full feature stack verified")
}

// TestE2E_HeaderRecordsProvenance checks the generated header block.
func TestE2E_HeaderRecordsProvenance(t *testing.T) {
	w := NewWorkspace(t, wordpressStack)

	manifest, _ := Compile(t, w)

	assert.True(t, strings.HasPrefix(manifest, "# Generated by stackc e2e\n"))
	assert.Contains(t, manifest, "# Project version: 6.5")
	assert.Contains(t, manifest, "# Generated at: ")
	assert.Contains(t, manifest, "# Do not edit; regenerate from the source Stackfile.")

	t.Log("PASS: manifest header verified")
}
