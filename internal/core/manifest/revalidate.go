package manifest

import (
	"context"

	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"
	"github.com/docker/go-connections/nat"
	"gopkg.in/yaml.v3"

	"github.com/stackfile/stackc/internal/core/analysis"
	"github.com/stackfile/stackc/internal/core/diag"
)

// =============================================================================
// Pre-Serialization Re-Validation
// =============================================================================

// revalidate re-runs the structural checks against the assembled output,
// independent of the front-end analysis that produced it. Anything caught
// here surfaces as a diagnostic instead of a broken manifest.
func revalidate(f *File) *diag.Diagnostic {
	names := f.Services.Names()
	deps := make(map[string][]string, len(names))

	for _, name := range names {
		entry := f.Services.Get(name)

		if entry.Image == "" && entry.Build == nil {
			d := diag.New(diag.Validation,
				"service %q has neither an image nor a build context", name)
			d.Related = []string{name}
			return d
		}
		for _, dep := range entry.DependsOn {
			if f.Services.Get(dep) == nil {
				d := diag.New(diag.Validation,
					"service %q depends on undeclared service %q", name, dep)
				d.Related = []string{name, dep}
				return d
			}
		}
		for _, port := range entry.Ports {
			if _, err := nat.ParsePortSpec(port); err != nil {
				d := diag.New(diag.Validation,
					"service %q rendered an invalid port specification %q", name, port)
				d.Err = err
				d.Related = []string{name, port}
				return d
			}
		}
		deps[name] = entry.DependsOn
	}

	if member := analysis.FindCycle(names, deps); member != "" {
		d := diag.New(diag.Validation,
			"dependency cycle detected involving service %q", member)
		d.Related = []string{member}
		return d
	}
	return nil
}

// =============================================================================
// Compose Loader Gate
// =============================================================================

// loaderGate parses the encoded output back through the compose loader with
// schema validation on. Interpolation stays off so ${VAR} references
// survive as written; normalization and extends resolution are skipped
// because the document is self-contained and in-memory.
func loaderGate(content []byte, projectName string) *diag.Diagnostic {
	var dict map[string]interface{}
	if err := yaml.Unmarshal(content, &dict); err != nil {
		d := diag.New(diag.Serialization, "generated manifest is not parseable YAML")
		d.Err = err
		return d
	}

	_, err := loader.LoadWithContext(context.Background(), types.ConfigDetails{
		ConfigFiles: []types.ConfigFile{
			{
				Content: content,
				Config:  dict,
			},
		},
	}, func(opts *loader.Options) {
		opts.SetProjectName(projectName, true)
		opts.SkipValidation = false
		opts.SkipInterpolation = true
		opts.SkipNormalization = true
		opts.SkipExtends = true
	})
	if err != nil {
		d := diag.New(diag.Serialization, "generated manifest failed structural validation")
		d.Err = err
		return d
	}
	return nil
}
