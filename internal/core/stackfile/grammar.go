package stackfile

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// =============================================================================
// Lexer
// =============================================================================

// The language is line-oriented, so newlines are significant tokens and every
// directive production is terminated by EOL. Comments never reach the lexer;
// they are blanked out by stripComments first.
var stackLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "EOL", Pattern: `\r?\n`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
	{Name: "Template", Pattern: `\{\{[A-Za-z_][A-Za-z0-9_]*\}\}`},
	{Name: "String", Pattern: `"[^"\n]*"|'[^'\n]*'`},
	{Name: "Eq", Pattern: `=`},
	{Name: "Bare", Pattern: `[^\s"'={}]+`},
})

var stackParser = participle.MustBuild[sourceFile](
	participle.Lexer(stackLexer),
	participle.Elide("Whitespace"),
)

// =============================================================================
// Concrete Parse Tree
// =============================================================================

// sourceFile is the grammar root: optional metadata, an optional environment
// section, then the mandatory services section.
type sourceFile struct {
	Project     *projectDecl `parser:"EOL* @@?"`
	Version     *versionDecl `parser:"@@?"`
	Environment *envSection  `parser:"@@?"`
	Services    *servicesSec `parser:"@@"`
}

type projectDecl struct {
	Pos  lexer.Position
	Name string `parser:"'DEPLOYMENT-ID' @(String|Bare) EOL+"`
}

type versionDecl struct {
	Pos     lexer.Position
	Version string `parser:"'VERSION-ID' @(String|Bare) EOL+"`
}

// -----------------------------------------------------------------------------
// Environment section
// -----------------------------------------------------------------------------

type envSection struct {
	Pos   lexer.Position
	Items []*envItem `parser:"'ENVIRONMENT' 'SECTION' EOL+ @@*"`
}

type envItem struct {
	Network *networkDecl `parser:"@@"`
	Volume  *volumeDecl  `parser:"| @@"`
	Secret  *secretDecl  `parser:"| @@"`
}

// Flags are accepted in a fixed order; each is optional.
type networkDecl struct {
	Pos        lexer.Position
	Name       string  `parser:"'NETWORK-NAME' @(String|Bare)"`
	Driver     *string `parser:"('DRIVER' @('BRIDGE'|'OVERLAY'|'HOST'|'NONE'))?"`
	Attachable *string `parser:"('ATTACHABLE' @('TRUE'|'FALSE'))?"`
	Encrypted  *string `parser:"('ENCRYPTED' @('TRUE'|'FALSE'))?"`
	Ingress    *string `parser:"('INGRESS' @('TRUE'|'FALSE'))? EOL+"`
}

type volumeDecl struct {
	Pos     lexer.Position
	Name    string          `parser:"'VOLUME' @(String|Bare)"`
	Options []*volumeOption `parser:"@@* EOL+"`
}

// volumeOption is one free-form option token, optionally key=value shaped.
type volumeOption struct {
	Key   string  `parser:"@(String|Bare)"`
	Value *string `parser:"('=' @(String|Bare))?"`
}

type secretDecl struct {
	Pos   lexer.Position
	Name  string `parser:"'SECRET' @(String|Bare)"`
	Value string `parser:"@(String|Bare) EOL+"`
}

// -----------------------------------------------------------------------------
// Services section
// -----------------------------------------------------------------------------

type servicesSec struct {
	Pos      lexer.Position
	Services []*serviceBlock `parser:"'SERVICES' 'SECTION' EOL+ @@+"`
}

type serviceBlock struct {
	Pos        lexer.Position
	Name       string       `parser:"'SERVICE' @(String|Bare) EOL+"`
	Directives []*directive `parser:"@@* 'END' 'SERVICE' EOL+"`
}

// directive is the union of everything legal inside a SERVICE block. Known
// directives are tried first; the final branch accepts any non-structural verb
// so unrecognized directives parse (and are later ignored) instead of failing.
type directive struct {
	Image     *imageDirective     `parser:"@@"`
	Port      *portDirective      `parser:"| @@"`
	Env       *envDirective       `parser:"| @@"`
	Command   *commandDirective   `parser:"| @@"`
	VolumeMap *volumeMapDirective `parser:"| @@"`
	DependsOn *dependsDirective   `parser:"| @@"`
	Health    *healthDirective    `parser:"| @@"`
	Restart   *restartDirective   `parser:"| @@"`
	Resources *resourcesDirective `parser:"| @@"`
	BuildArgs *buildArgsDirective `parser:"| @@"`
	Replicas  *replicasDirective  `parser:"| @@"`
	Update    *updateDirective    `parser:"| @@"`
	Labels    *labelsDirective    `parser:"| @@"`
	Unknown   *unknownDirective   `parser:"| @@"`
}

type imageDirective struct {
	Pos   lexer.Position
	Image string `parser:"'IMAGE-ID' @(String|Bare) EOL+"`
}

type portDirective struct {
	Pos       lexer.Position
	Host      string  `parser:"'PORT-MAPPING' @(String|Bare)"`
	Container string  `parser:"'TO' @(String|Bare)"`
	Protocol  *string `parser:"@('tcp'|'udp')? EOL+"`
}

type envDirective struct {
	Pos   lexer.Position
	Value string `parser:"'ENV-VARIABLE' @(Template|String|Bare) EOL+"`
}

type commandDirective struct {
	Pos     lexer.Position
	Command string `parser:"'COMMAND' @(String|Bare) EOL+"`
}

type volumeMapDirective struct {
	Pos       lexer.Position
	Host      string  `parser:"'VOLUME-MAPPING' @(String|Bare)"`
	Container string  `parser:"'TO' @(String|Bare)"`
	Options   *string `parser:"@(String|Bare)? EOL+"`
}

type dependsDirective struct {
	Pos  lexer.Position
	Name string `parser:"'DEPENDS-ON' @(String|Bare) EOL+"`
}

type healthDirective struct {
	Pos     lexer.Position
	Command string `parser:"'HEALTH-CHECK' @(String|Bare) EOL+"`
}

type restartDirective struct {
	Pos    lexer.Position
	Policy string `parser:"'RESTART-POLICY' @('always'|'unless-stopped'|'on-failure'|'no') EOL+"`
}

type resourcesDirective struct {
	Pos    lexer.Position
	CPU    string `parser:"'RESOURCE-LIMITS' 'CPU' @(String|Bare)"`
	Memory string `parser:"'MEMORY' @(String|Bare) EOL+"`
}

type buildArgsDirective struct {
	Pos  lexer.Position
	Args []*kvPair `parser:"'BUILD-ARGS' @@+ EOL+"`
}

type replicasDirective struct {
	Pos   lexer.Position
	Count string `parser:"'REPLICAS' @(String|Bare) EOL+"`
}

type updateDirective struct {
	Pos         lexer.Position
	Parallelism string  `parser:"'UPDATE-CONFIG' 'PARALLELISM' @(String|Bare)"`
	Delay       *string `parser:"('DELAY' @(String|Bare))?"`
	Action      *string `parser:"('FAILURE-ACTION' @('CONTINUE'|'PAUSE'|'ROLLBACK'))?"`
	Monitor     *string `parser:"('MONITOR' @(String|Bare))?"`
	MaxRatio    *string `parser:"('MAX-FAILURE-RATIO' @(String|Bare))? EOL+"`
}

type labelsDirective struct {
	Pos    lexer.Position
	Labels []*kvPair `parser:"'SWARM-LABELS' @@+ EOL+"`
}

// kvPair is one KEY="value" token group in BUILD-ARGS and SWARM-LABELS.
type kvPair struct {
	Pos   lexer.Position
	Key   string `parser:"@Bare '='"`
	Value string `parser:"@(String|Bare)"`
}

// unknownDirective swallows one whole line. The lookahead keeps it from
// consuming structural keywords or a known verb whose arguments failed to
// parse; those must surface as real syntax errors.
type unknownDirective struct {
	Pos  lexer.Position
	Verb string   `parser:"(?! 'END' | 'SERVICE' | 'SERVICES' | 'ENVIRONMENT' | 'IMAGE-ID' | 'PORT-MAPPING' | 'ENV-VARIABLE' | 'COMMAND' | 'VOLUME-MAPPING' | 'DEPENDS-ON' | 'HEALTH-CHECK' | 'RESTART-POLICY' | 'RESOURCE-LIMITS' | 'BUILD-ARGS' | 'REPLICAS' | 'UPDATE-CONFIG' | 'SWARM-LABELS') @Bare"`
	Rest []string `parser:"@(String|Bare|Template|Eq)* EOL+"`
}
