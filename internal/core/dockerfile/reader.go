// Package dockerfile extracts build-time argument declarations from a
// container build file. Only ARG instructions matter to the compiler; every
// other line is skipped. This is part of the Functional Core - reading the
// file from disk is the shell's job.
package dockerfile

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"

	"github.com/stackfile/stackc/internal/core/diag"
)

// Arg is one build-time argument declared by an ARG instruction.
type Arg struct {
	Name    string
	Default string // declared default with quotes stripped, "" when absent
	Line    int    // 1-based declaring line
}

// Argument names follow the usual environment-variable identifier shape.
var argNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Parse scans build-file content for ARG instructions and returns them in
// declaration order. The instruction keyword is matched case-insensitively;
// blank lines, # comments and non-ARG instructions are skipped. A malformed
// argument name is a fatal configuration diagnostic naming the identifier
// and its line.
//
// The path is only used to label diagnostics.
//
// The returned slice is never nil on success; a build file with no ARG
// instructions yields an empty slice, which callers treat differently from
// "no build file at all".
func Parse(path string, content []byte) ([]Arg, error) {
	args := []Arg{}

	scanner := bufio.NewScanner(bytes.NewReader(content))
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Fields(text)
		if len(fields) < 2 || !strings.EqualFold(fields[0], "ARG") {
			continue
		}

		rest := strings.TrimSpace(text[len(fields[0]):])
		name, value := rest, ""
		if i := strings.Index(rest, "="); i >= 0 {
			name = strings.TrimSpace(rest[:i])
			value = stripQuotes(strings.TrimSpace(rest[i+1:]))
		} else {
			name = fields[1]
		}

		if !argNameRe.MatchString(name) {
			d := diag.New(diag.Configuration,
				"invalid build argument name %q in %s (line %d)", name, path, line)
			d.Line = line
			d.Snippet = diag.Snippet(string(content), line, 1)
			d.Suggestion = "argument names must start with a letter or underscore and contain only letters, digits and underscores"
			d.Related = []string{name}
			return nil, d
		}
		args = append(args, Arg{Name: name, Default: value, Line: line})
	}
	if err := scanner.Err(); err != nil {
		d := diag.New(diag.Configuration, "reading build file %s", path)
		d.Err = err
		return nil, d
	}
	return args, nil
}

// Names returns just the argument names, in declaration order.
func Names(args []Arg) []string {
	names := make([]string, len(args))
	for i, a := range args {
		names[i] = a.Name
	}
	return names
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
