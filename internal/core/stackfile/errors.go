package stackfile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/stackfile/stackc/internal/core/diag"
)

// =============================================================================
// Grammar Error Translation
// =============================================================================

// directiveHelp describes one directive kind for error reporting.
type directiveHelp struct {
	what  string // human name of the construct
	usage string // canonical usage line
}

// directiveHelpTable is keyed by the leading verb of the offending source
// line. When a grammar failure lands on a line whose verb is listed here, the
// raw parser error is replaced with a message and usage hint specific to that
// construct.
var directiveHelpTable = map[string]directiveHelp{
	"DEPLOYMENT-ID":   {"DEPLOYMENT-ID declaration", `DEPLOYMENT-ID <name>`},
	"VERSION-ID":      {"VERSION-ID declaration", `VERSION-ID <version>`},
	"ENVIRONMENT":     {"ENVIRONMENT SECTION header", `ENVIRONMENT SECTION`},
	"NETWORK-NAME":    {"NETWORK-NAME declaration", `NETWORK-NAME <name> [DRIVER BRIDGE|OVERLAY|HOST|NONE] [ATTACHABLE TRUE|FALSE] [ENCRYPTED TRUE|FALSE]`},
	"VOLUME":          {"VOLUME declaration", `VOLUME <name> [option ...]`},
	"SECRET":          {"SECRET declaration", `SECRET <name> <value>`},
	"SERVICES":        {"SERVICES SECTION header", `SERVICES SECTION`},
	"SERVICE":         {"SERVICE block", `SERVICE <name> ... END SERVICE`},
	"END":             {"END SERVICE terminator", `END SERVICE`},
	"IMAGE-ID":        {"IMAGE-ID directive", `IMAGE-ID "<image:tag>"`},
	"PORT-MAPPING":    {"PORT-MAPPING directive", `PORT-MAPPING <host> TO <container> [tcp|udp]`},
	"ENV-VARIABLE":    {"ENV-VARIABLE directive", `ENV-VARIABLE {{NAME}} or ENV-VARIABLE "<literal>"`},
	"COMMAND":         {"COMMAND directive", `COMMAND "<command string>"`},
	"VOLUME-MAPPING":  {"VOLUME-MAPPING directive", `VOLUME-MAPPING "<host-path>" TO "<container-path>" [ro|rw]`},
	"DEPENDS-ON":      {"DEPENDS-ON directive", `DEPENDS-ON <service-name>`},
	"HEALTH-CHECK":    {"HEALTH-CHECK directive", `HEALTH-CHECK "<command>"`},
	"RESTART-POLICY":  {"RESTART-POLICY directive", `RESTART-POLICY always|unless-stopped|on-failure|no`},
	"RESOURCE-LIMITS": {"RESOURCE-LIMITS directive", `RESOURCE-LIMITS CPU "<quota>" MEMORY "<quota>"`},
	"BUILD-ARGS":      {"BUILD-ARGS directive", `BUILD-ARGS KEY="value" [KEY2="value2" ...]`},
	"REPLICAS":        {"REPLICAS directive", `REPLICAS <positive integer>`},
	"UPDATE-CONFIG":   {"UPDATE-CONFIG directive", `UPDATE-CONFIG PARALLELISM <n> [DELAY <duration>] [FAILURE-ACTION CONTINUE|PAUSE|ROLLBACK] [MONITOR <duration>] [MAX-FAILURE-RATIO <0..1>]`},
	"SWARM-LABELS":    {"SWARM-LABELS directive", `SWARM-LABELS KEY="value" [KEY2="value2" ...]`},
}

// translateParseError turns a raw participle failure into a Diagnostic.
// The original source is used for snippets; the comment-stripped text is
// used to identify the verb of the failing line.
func translateParseError(err error, source, stripped string) *diag.Diagnostic {
	var ute *participle.UnexpectedTokenError
	if errors.As(err, &ute) {
		return translateUnexpected(ute, source, stripped)
	}

	var perr participle.Error
	if errors.As(err, &perr) {
		pos := perr.Position()
		d := diag.New(diag.Syntax, "%s", perr.Message())
		d.Line, d.Column = pos.Line, pos.Column
		d.Snippet = diag.Snippet(source, pos.Line, pos.Column)
		return d
	}

	return diag.New(diag.Syntax, "%s", err.Error())
}

func translateUnexpected(ute *participle.UnexpectedTokenError, source, stripped string) *diag.Diagnostic {
	pos := ute.Position()
	verb := leadingVerb(lineAt(stripped, pos.Line))

	d := diag.New(diag.Syntax, "unexpected %s", describeToken(ute.Unexpected))
	d.Line, d.Column = pos.Line, pos.Column
	d.Snippet = diag.Snippet(source, pos.Line, pos.Column)

	if help, ok := directiveHelpTable[verb]; ok {
		d.Message = fmt.Sprintf("malformed %s: unexpected %s", help.what, describeToken(ute.Unexpected))
		d.Suggestion = "usage: " + help.usage
		return d
	}
	if expect := cleanExpect(ute.Expect); expect != "" {
		d.Suggestion = "expected " + expect
	}
	return d
}

// describeToken renders a token for humans. Newlines and EOF get words
// instead of escape soup.
func describeToken(tok lexer.Token) string {
	if tok.EOF() {
		return "end of file"
	}
	switch tok.Value {
	case "\n", "\r\n":
		return "end of line"
	}
	return fmt.Sprintf("%q", tok.Value)
}

// cleanExpect rewrites the parser's expected-production string into friendly
// wording, leaving quoted keyword literals intact.
func cleanExpect(expect string) string {
	if expect == "" {
		return ""
	}
	r := strings.NewReplacer(
		"<string>", "a quoted string",
		"<bare>", "a value",
		"<template>", "a {{NAME}} reference",
		"<eol>", "end of line",
		"String", "a quoted string",
		"Bare", "a value",
		"Template", "a {{NAME}} reference",
		"EOL", "end of line",
	)
	return r.Replace(expect)
}

func lineAt(text string, line int) string {
	if line < 1 {
		return ""
	}
	lines := strings.Split(text, "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}

func leadingVerb(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
