package stackfile

import (
	"strings"

	"github.com/stackfile/stackc/internal/core/diag"
)

// =============================================================================
// Parse - Main Entry Point
// =============================================================================

// Parse converts Stackfile source text into a Document.
//
// The filename is only used to label source positions. On failure the
// returned error is always a *diag.Diagnostic carrying location, snippet and
// suggestion where known. There is no error recovery: the first failure stops
// the parse.
func Parse(filename, source string) (*Document, error) {
	stripped, derr := stripComments(source)
	if derr != nil {
		return nil, derr
	}
	if derr := prevalidate(stripped, source); derr != nil {
		return nil, derr
	}

	// Every directive production is EOL-terminated, so the final line must
	// end with a newline even when the file does not.
	text := stripped
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	tree, err := stackParser.ParseString(filename, text)
	if err != nil {
		return nil, translateParseError(err, source, stripped)
	}
	return fold(tree, source)
}

// =============================================================================
// Comment Stripping
// =============================================================================

// stripComments blanks out // line comments and /* */ block comments while
// preserving the byte length and line structure of the input, so every token
// position reported later still matches the original source. Comment markers
// inside quoted strings are left alone. An unterminated block comment is a
// dedicated fatal diagnostic.
func stripComments(src string) (string, *diag.Diagnostic) {
	const (
		stateCode = iota
		stateLineComment
		stateBlockComment
		stateSingleQuote
		stateDoubleQuote
	)

	out := []byte(src)
	state := stateCode
	line, col := 1, 1
	blockLine, blockCol := 0, 0

	for i := 0; i < len(out); i++ {
		c := out[i]
		switch state {
		case stateCode:
			switch {
			case c == '"':
				state = stateDoubleQuote
			case c == '\'':
				state = stateSingleQuote
			case c == '/' && i+1 < len(out) && out[i+1] == '/':
				state = stateLineComment
				out[i] = ' '
			case c == '/' && i+1 < len(out) && out[i+1] == '*':
				state = stateBlockComment
				blockLine, blockCol = line, col
				out[i] = ' '
			}
		case stateLineComment:
			if c == '\n' {
				state = stateCode
			} else {
				out[i] = ' '
			}
		case stateBlockComment:
			if c == '*' && i+1 < len(out) && out[i+1] == '/' {
				out[i] = ' '
				out[i+1] = ' '
				i++
				col++
				state = stateCode
			} else if c != '\n' {
				out[i] = ' '
			}
		case stateSingleQuote:
			if c == '\'' || c == '\n' {
				state = stateCode
			}
		case stateDoubleQuote:
			if c == '"' || c == '\n' {
				state = stateCode
			}
		}
		if c == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}

	if state == stateBlockComment {
		d := diag.New(diag.Syntax, "unterminated block comment")
		d.Line, d.Column = blockLine, blockCol
		d.Snippet = diag.Snippet(src, blockLine, blockCol)
		d.Suggestion = "close the comment with */"
		return "", d
	}
	return string(out), nil
}

// =============================================================================
// Pre-Validation
// =============================================================================

// prevalidate runs cheap whole-file checks on the comment-stripped text
// before the grammar is invoked: empty input, missing SERVICES SECTION,
// unbalanced SERVICE/END SERVICE pairs, and a SERVICE directive with no name.
// Snippets are rendered from the original source.
func prevalidate(stripped, source string) *diag.Diagnostic {
	if strings.TrimSpace(stripped) == "" {
		d := diag.New(diag.Syntax, "input is empty")
		d.Suggestion = "declare a SERVICES SECTION with at least one SERVICE block"
		return d
	}

	var (
		hasServices      bool
		openers, closers int
		unnamedLine      int
	)
	lines := strings.Split(stripped, "\n")
	for i, raw := range lines {
		fields := strings.Fields(raw)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "SERVICES":
			if len(fields) > 1 && fields[1] == "SECTION" {
				hasServices = true
			}
		case "SERVICE":
			openers++
			if len(fields) == 1 && unnamedLine == 0 {
				unnamedLine = i + 1
			}
		case "END":
			if len(fields) > 1 && fields[1] == "SERVICE" {
				closers++
			}
		}
	}

	if !hasServices {
		d := diag.New(diag.Syntax, "no SERVICES SECTION found")
		d.Suggestion = "add a SERVICES SECTION containing at least one SERVICE block"
		return d
	}
	if openers != closers {
		d := diag.New(diag.Syntax,
			"unbalanced service blocks: %d SERVICE opener(s) but %d END SERVICE closer(s)",
			openers, closers)
		d.Suggestion = "close every SERVICE block with END SERVICE"
		return d
	}
	if unnamedLine > 0 {
		col := strings.Index(lines[unnamedLine-1], "SERVICE") + 1
		d := diag.New(diag.Syntax, "SERVICE directive is missing a name")
		d.Line, d.Column = unnamedLine, col
		d.Snippet = diag.Snippet(source, unnamedLine, col)
		d.Suggestion = "name the service: SERVICE <name>"
		return d
	}
	return nil
}
