// Command stackc compiles Stackfile deployment descriptions into
// docker-compose manifests.
//
// Usage:
//
//	stackc [flags] <command> [arguments]
//
// The build command parses a Stackfile, analyzes the service graph, and
// writes a manifest. The validate command stops after analysis. See
// "stackc info" for a directive reference and a complete example.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/stackfile/stackc/internal/core/diag"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess = 0
	ExitFailure = 1 // a fatal diagnostic was reported
	ExitUsage   = 2 // the command line itself was invalid
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	global := flag.NewFlagSet("stackc", flag.ContinueOnError)
	global.SetOutput(os.Stderr)
	global.Usage = func() { printUsage(os.Stderr) }

	configPath := global.String("config", "", "Path to a config file.")
	verbose := global.Bool("verbose", false, "Enable debug logging.")

	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsage
	}

	rest := global.Args()
	if len(rest) == 0 {
		printUsage(os.Stderr)
		return ExitUsage
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stackc: %v\n", err)
		return ExitFailure
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}
	logger := SetupLogger(cfg)

	command, commandArgs := rest[0], rest[1:]
	switch command {
	case "build":
		return runBuild(cfg, logger, commandArgs)
	case "validate":
		return runValidate(cfg, logger, commandArgs)
	case "info":
		return runInfo(commandArgs)
	case "version":
		fmt.Printf("stackc %s (built %s)\n", Version, BuildTime)
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "stackc: unknown command %q\n\n", command)
		printUsage(os.Stderr)
		return ExitUsage
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `stackc compiles Stackfile deployment descriptions into compose manifests.

Usage:

  stackc [flags] <command> [arguments]

Commands:

  build [FILE]     Compile a Stackfile into a manifest.
  validate [FILE]  Parse and analyze a Stackfile without generating output.
  info             Print the directive reference or an example Stackfile.
  version          Print version information.

Flags:

  -config FILE  Path to a config file.
  -verbose      Enable debug logging.

Use "stackc <command> -h" for command-specific flags.
`)
}

// printDiagnostic renders a fatal error to stderr. Diagnostics carry source
// positions and suggestions; anything else prints as a plain error line.
func printDiagnostic(err error) {
	var d *diag.Diagnostic
	if errors.As(err, &d) {
		fmt.Fprintln(os.Stderr, d.Render())
		return
	}
	fmt.Fprintf(os.Stderr, "stackc: %v\n", err)
}

func printWarnings(warnings []diag.Warning) {
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, w.Render())
	}
}
