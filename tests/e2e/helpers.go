// Package e2e exercises the full compile pipeline the way the CLI drives it:
// Stackfiles on disk, build-file discovery beside the input, manifests written
// out and read back.
package e2e

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/stackfile/stackc/internal/core/diag"
	"github.com/stackfile/stackc/internal/shell/compile"
)

// =============================================================================
// Workspace
// =============================================================================

// Workspace is a temporary build directory: a Stackfile, optionally a build
// file beside it, and the manifest target path.
type Workspace struct {
	Dir    string
	Input  string
	Output string
}

// NewWorkspace writes the Stackfile into a fresh temporary directory.
func NewWorkspace(t *testing.T, stackfile string) *Workspace {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "Stackfile")
	require.NoError(t, os.WriteFile(input, []byte(stackfile), 0o644))
	return &Workspace{
		Dir:    dir,
		Input:  input,
		Output: filepath.Join(dir, "docker-compose.yml"),
	}
}

// WriteDockerfile places a build file beside the Stackfile so the compiler
// discovers it.
func (w *Workspace) WriteDockerfile(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(w.Dir, compile.BuildFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// =============================================================================
// Pipeline Runs
// =============================================================================

func newCompiler() *compile.Compiler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return compile.New(logger, "stackc", "e2e")
}

// Compile runs the full pipeline and returns the written manifest text.
func Compile(t *testing.T, w *Workspace) (string, []diag.Warning) {
	t.Helper()
	result, err := newCompiler().Build(w.Input, w.Output, compile.Options{})
	require.NoError(t, err)

	content, err := os.ReadFile(w.Output)
	require.NoError(t, err)
	return string(content), result.Warnings
}

// CompileExpectError runs the pipeline and returns the fatal diagnostic.
func CompileExpectError(t *testing.T, w *Workspace) error {
	t.Helper()
	_, err := newCompiler().Build(w.Input, w.Output, compile.Options{})
	require.Error(t, err)
	return err
}

// Validate runs the pipeline in validate-only mode.
func Validate(t *testing.T, w *Workspace) ([]diag.Warning, error) {
	t.Helper()
	result, err := newCompiler().Validate(w.Input)
	if err != nil {
		return nil, err
	}
	return result.Warnings, nil
}

// =============================================================================
// Manifest Assertions
// =============================================================================

// ParseManifest loads generated YAML into a generic tree for assertions.
func ParseManifest(t *testing.T, manifest string) map[string]any {
	t.Helper()
	var tree map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(manifest), &tree))
	return tree
}

// Service returns one service mapping from a parsed manifest.
func Service(t *testing.T, tree map[string]any, name string) map[string]any {
	t.Helper()
	services, ok := tree["services"].(map[string]any)
	require.True(t, ok, "manifest has no services mapping")
	svc, ok := services[name].(map[string]any)
	require.True(t, ok, "service %q missing from manifest", name)
	return svc
}
