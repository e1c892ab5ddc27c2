package diag

import (
	"fmt"
	"strings"
)

// =============================================================================
// Source Snippets
// =============================================================================

// Snippet extracts the given 1-based line from source and renders it with a
// caret under the 1-based column:
//
//	  12 | PORT-MAPPING 8080 TO
//	     |                   ^
//
// Tabs are displayed as single spaces so the caret stays aligned with the
// column counting done by the lexer. Returns "" when the line is out of
// range, so callers can attach snippets unconditionally.
func Snippet(source string, line, column int) string {
	if line < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}
	text := strings.TrimSuffix(lines[line-1], "\r")
	text = strings.ReplaceAll(text, "\t", " ")

	if column < 1 {
		column = 1
	}
	// Clamp to one past the end so errors at EOL still point somewhere.
	width := len([]rune(text))
	if column > width+1 {
		column = width + 1
	}

	num := fmt.Sprintf("%4d", line)
	gutter := strings.Repeat(" ", len(num))
	return fmt.Sprintf("%s | %s\n%s | %s^", num, text, gutter, strings.Repeat(" ", column-1))
}
