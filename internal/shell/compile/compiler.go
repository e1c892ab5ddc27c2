// Package compile wires the pure pipeline stages - parse, analyze,
// generate - to the filesystem. It owns every I/O the compiler performs:
// reading the source, discovering the companion build file, and writing the
// manifest.
package compile

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/stackfile/stackc/internal/core/analysis"
	"github.com/stackfile/stackc/internal/core/diag"
	"github.com/stackfile/stackc/internal/core/dockerfile"
	"github.com/stackfile/stackc/internal/core/manifest"
	"github.com/stackfile/stackc/internal/core/stackfile"
)

// BuildFileName is the companion build file looked up beside the input.
const BuildFileName = "Dockerfile"

// =============================================================================
// Compiler - Runs the Pipeline
// =============================================================================

// Options adjust a single run.
type Options struct {
	// ValidateOnly stops after analysis: nothing is generated or written.
	ValidateOnly bool
}

// Result is one finished run.
type Result struct {
	RunID      string
	Manifest   []byte // nil in validate-only mode
	Warnings   []diag.Warning
	OutputPath string // "" when nothing was written
}

// Compiler runs the compile pipeline against the filesystem.
type Compiler struct {
	logger   *slog.Logger
	cache    *stackfile.Cache
	analyzer *analysis.Analyzer
	tool     string
	version  string
	now      func() time.Time
}

// New creates a Compiler with the default suggestion strategy. tool and
// version end up in the generated header.
func New(logger *slog.Logger, tool, version string) *Compiler {
	return NewWithSuggester(logger, tool, version, nil)
}

// NewWithSuggester creates a Compiler with a custom build-argument
// suggestion strategy; nil selects the default.
func NewWithSuggester(logger *slog.Logger, tool, version string, s analysis.Suggester) *Compiler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Compiler{
		logger:   logger,
		cache:    stackfile.NewCache(),
		analyzer: analysis.NewWithSuggester(s),
		tool:     tool,
		version:  version,
		now:      time.Now,
	}
}

// =============================================================================
// Build
// =============================================================================

// Build compiles input into a manifest. The result carries the encoded
// bytes; they are also written to output unless it is empty or "-" (the
// caller streams those to stdout) or validate-only mode is on. Any returned
// error is a *diag.Diagnostic.
func (c *Compiler) Build(input, output string, opts Options) (*Result, error) {
	runID := uuid.NewString()
	logger := c.logger.With("run_id", runID, "input", input)
	logger.Info("compiling stackfile")

	// 1. Read the source
	source, err := os.ReadFile(input)
	if err != nil {
		return nil, ioErr("reading", input, err)
	}

	// 2. Parse (through the content-hash cache)
	doc, err := c.cache.Parse(input, string(source))
	if err != nil {
		return nil, err
	}
	logger.Debug("parsed document",
		"project", doc.ProjectName(),
		"services", len(doc.Services),
	)

	// 3. Discover companion build arguments
	args, err := c.discoverBuildArgs(input)
	if err != nil {
		return nil, err
	}

	// 4. Analyze
	warnings, err := c.analyzer.Analyze(doc, args)
	if err != nil {
		return nil, err
	}
	logger.Debug("analysis complete",
		"order", doc.ServiceNames(),
		"warnings", len(warnings),
	)

	result := &Result{RunID: runID, Warnings: warnings}
	if opts.ValidateOnly {
		logger.Info("validation complete", "warnings", len(warnings))
		return result, nil
	}

	// 5. Generate
	gen := manifest.New(manifest.Stamp{
		Tool:        c.tool,
		Version:     c.version,
		GeneratedAt: c.now().UTC(),
	})
	result.Manifest, err = gen.Generate(doc)
	if err != nil {
		return nil, err
	}

	// 6. Write
	if output != "" && output != "-" {
		if err := os.WriteFile(output, result.Manifest, 0o644); err != nil {
			return nil, ioErr("writing", output, err)
		}
		result.OutputPath = output
		logger.Info("manifest written", "output", output, "bytes", len(result.Manifest))
	}
	return result, nil
}

// Validate runs the pipeline through analysis only.
func (c *Compiler) Validate(input string) (*Result, error) {
	return c.Build(input, "", Options{ValidateOnly: true})
}

// =============================================================================
// Build-File Discovery
// =============================================================================

// discoverBuildArgs loads ARG declarations from a Dockerfile beside the
// input, when one exists. No file means no cross-validation and the
// analyzer receives nil; a file that exists but cannot be read or parsed is
// fatal.
func (c *Compiler) discoverBuildArgs(input string) ([]dockerfile.Arg, error) {
	path := filepath.Join(filepath.Dir(input), BuildFileName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, buildFileErr(path, err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, buildFileErr(path, err)
	}
	args, err := dockerfile.Parse(path, content)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("discovered build file", "path", path, "args", len(args))
	return args, nil
}

// =============================================================================
// Diagnostics
// =============================================================================

func ioErr(op, path string, err error) *diag.Diagnostic {
	d := diag.New(diag.IO, "%s %s", op, path)
	d.Err = err
	return d
}

func buildFileErr(path string, err error) *diag.Diagnostic {
	d := diag.New(diag.Configuration, "reading build file %s", path)
	d.Err = err
	return d
}
