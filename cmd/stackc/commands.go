package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/stackfile/stackc/internal/shell/compile"
)

// =============================================================================
// build
// =============================================================================

func runBuild(cfg *Config, logger *slog.Logger, args []string) int {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, `Usage: stackc build [flags] [FILE]

Compiles a Stackfile (default: ./Stackfile) into a compose manifest.

Flags:
`)
		fs.PrintDefaults()
	}

	output := fs.String("o", cfg.Build.Output, "Output file, or - for stdout.")
	validateOnly := fs.Bool("validate-only", false, "Analyze without generating a manifest.")
	quiet := fs.Bool("quiet", false, "Suppress warnings and progress messages.")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsage
	}
	input, ok := inputArg(fs, cfg)
	if !ok {
		return ExitUsage
	}

	if *quiet {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	compiler := compile.NewWithSuggester(logger, "stackc", Version, cfg.Suggester())
	result, err := compiler.Build(input, *output, compile.Options{ValidateOnly: *validateOnly})
	if err != nil {
		printDiagnostic(err)
		return ExitFailure
	}

	if !*quiet {
		printWarnings(result.Warnings)
	}

	switch {
	case *validateOnly:
		if !*quiet {
			fmt.Fprintf(os.Stderr, "%s is valid (%d warning(s))\n", input, len(result.Warnings))
		}
	case result.OutputPath == "":
		// Stdout target: the manifest goes to stdout, everything else stays
		// on stderr.
		os.Stdout.Write(result.Manifest)
	default:
		if !*quiet {
			fmt.Fprintf(os.Stderr, "wrote %s\n", result.OutputPath)
		}
	}
	return ExitSuccess
}

// =============================================================================
// validate
// =============================================================================

func runValidate(cfg *Config, logger *slog.Logger, args []string) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, `Usage: stackc validate [FILE]

Parses and analyzes a Stackfile (default: ./Stackfile) without generating
a manifest. Exits non-zero on the first fatal problem.
`)
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsage
	}
	input, ok := inputArg(fs, cfg)
	if !ok {
		return ExitUsage
	}

	compiler := compile.NewWithSuggester(logger, "stackc", Version, cfg.Suggester())
	result, err := compiler.Validate(input)
	if err != nil {
		printDiagnostic(err)
		return ExitFailure
	}

	printWarnings(result.Warnings)
	fmt.Fprintf(os.Stderr, "%s is valid (%d warning(s))\n", input, len(result.Warnings))
	return ExitSuccess
}

// inputArg resolves the positional input path, falling back to the configured
// default. More than one positional argument is a usage error.
func inputArg(fs *flag.FlagSet, cfg *Config) (string, bool) {
	if fs.NArg() > 1 {
		fmt.Fprintf(os.Stderr, "stackc: expected at most one input file, got %d\n", fs.NArg())
		return "", false
	}
	if fs.NArg() == 1 {
		return fs.Arg(0), true
	}
	return cfg.Build.File, true
}
