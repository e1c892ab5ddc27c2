package manifest

import (
	"bytes"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stackfile/stackc/internal/core/diag"
	"github.com/stackfile/stackc/internal/core/stackfile"
)

// =============================================================================
// Generator
// =============================================================================

// Stamp identifies the producing tool inside the generated header. It is
// injected explicitly so generation stays a pure function; nothing in this
// package reads clocks or build info.
type Stamp struct {
	Tool        string
	Version     string
	GeneratedAt time.Time
}

// Generator turns analyzed documents into manifest bytes.
type Generator struct {
	stamp Stamp
}

// New returns a Generator stamping its output with the given identity.
// Empty tool and version fall back to "stackc" and "dev"; the timestamp is
// taken as given.
func New(stamp Stamp) *Generator {
	if stamp.Tool == "" {
		stamp.Tool = "stackc"
	}
	if stamp.Version == "" {
		stamp.Version = "dev"
	}
	return &Generator{stamp: stamp}
}

// Generate assembles, re-validates, and encodes the manifest for an
// analyzed document, then feeds the bytes back through the compose loader
// as a structural gate. Output is deterministic: a fixed document and stamp
// produce byte-identical results.
func (g *Generator) Generate(doc *stackfile.Document) ([]byte, error) {
	file := assemble(doc, g.stamp)
	if d := revalidate(file); d != nil {
		return nil, d
	}

	var buf bytes.Buffer
	writeHeader(&buf, doc, file, g.stamp)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(file); err != nil {
		return nil, encodeErr(file.Name, err)
	}
	if err := enc.Close(); err != nil {
		return nil, encodeErr(file.Name, err)
	}

	out := buf.Bytes()
	if d := loaderGate(out, file.Name); d != nil {
		return nil, d
	}
	return out, nil
}

func encodeErr(project string, err error) *diag.Diagnostic {
	d := diag.New(diag.Serialization, "encoding manifest for project %q", project)
	d.Err = err
	return d
}

// writeHeader emits the comment block preceding the document: tool
// identity, source version when declared, generation timestamp, and a
// one-line content summary.
func writeHeader(buf *bytes.Buffer, doc *stackfile.Document, file *File, stamp Stamp) {
	fmt.Fprintf(buf, "# Generated by %s %s\n", stamp.Tool, stamp.Version)
	if doc.Version != "" {
		fmt.Fprintf(buf, "# Project version: %s\n", doc.Version)
	}
	fmt.Fprintf(buf, "# Generated at: %s\n", stamp.GeneratedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(buf, "# services: %d | networks: %d | volumes: %d | secrets: %d\n",
		file.Services.Len(), len(file.Networks), len(file.Volumes), len(doc.Secrets))
	fmt.Fprintln(buf, "# Do not edit; regenerate from the source Stackfile.")
}
