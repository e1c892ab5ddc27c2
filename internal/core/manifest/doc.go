// Package manifest turns analyzed documents into deployment manifests.
//
// This package contains the functional core logic for the back half of the
// compile pipeline: classifying services, filling operational defaults,
// assembling the output structure, and encoding it as YAML. All functions
// are pure (no I/O, no clocks); the tool identity and timestamp in the
// generated header arrive through an explicit Stamp.
//
// # Functions
//
//   - Classification: Infer a service's operational bucket from its image (Classify)
//   - Assembly: Map a Document onto the output structure with class defaults applied
//   - Generation: Encode the header comment block plus the YAML body (Generator.Generate)
//   - Re-validation: Structural checks on the assembled output, then a full
//     round-trip through the compose loader before bytes leave the package
//
// # Usage
//
// The imperative shell (internal/shell/compile) runs a Document through the
// analyzer first, then hands it here:
//
//	gen := manifest.New(manifest.Stamp{Tool: "stackc", Version: version, GeneratedAt: now})
//	out, err := gen.Generate(doc)
package manifest
