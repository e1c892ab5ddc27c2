package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
)

// =============================================================================
// info
// =============================================================================

func runInfo(args []string) int {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, `Usage: stackc info [flags]

Prints reference material for the Stackfile language.

Flags:
`)
		fs.PrintDefaults()
	}

	examples := fs.Bool("examples", false, "Print a complete example Stackfile.")
	directives := fs.Bool("directives", false, "Print the directive reference.")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsage
	}

	switch {
	case *examples:
		fmt.Print(exampleStackfile)
	case *directives:
		fmt.Print(directiveReference)
	default:
		fmt.Print(directiveReference)
		fmt.Print("\n")
		fmt.Print(exampleStackfile)
	}
	return ExitSuccess
}

const directiveReference = `Stackfile directive reference

A Stackfile is line-oriented: one directive per line, terminated by a
newline. Values with spaces or "=" must be quoted. Comments use // to the
end of the line or /* ... */ blocks.

Header (optional, in this order):

  DEPLOYMENT-ID <name>        Project name. Defaults to "myproject".
  VERSION-ID <version>        Project version, recorded in the manifest
                              header.

ENVIRONMENT SECTION (optional):

  NETWORK-NAME <name> [DRIVER BRIDGE|OVERLAY|HOST|NONE]
      [ATTACHABLE TRUE|FALSE] [ENCRYPTED TRUE|FALSE] [INGRESS TRUE|FALSE]
                              Declares the shared network all services
                              join. Flags are optional but ordered.
  VOLUME <name> [key=value ...]
                              Declares a named volume. key=value options
                              become driver options.
  SECRET <name> <value>       Declares a secret. Secret values are counted
                              in the manifest header but never emitted.

SERVICES SECTION (required):

  SERVICE <name> ... END SERVICE
                              Encloses one service. Directives inside:

  IMAGE-ID <image>            Container image reference.
  PORT-MAPPING <host> TO <container> [tcp|udp]
                              Publishes a port. The container port accepts
                              an "80/udp" style suffix; explicit tcp/udp
                              wins over a suffix.
  ENV-VARIABLE <value>        Environment entry. {{NAME}} renders as
                              NAME=${NAME}; "KEY=value" passes through;
                              a bare word renders as VALUE=<word>.
  COMMAND <command>           Container command override.
  VOLUME-MAPPING <source> TO <target> [options]
                              Mounts a named volume or host path.
  DEPENDS-ON <service>        Startup ordering edge to another service.
  HEALTH-CHECK <command>      Health probe command; check cadence follows
                              the image classification.
  RESTART-POLICY always|unless-stopped|on-failure|no
                              Overrides the classified restart policy.
  RESOURCE-LIMITS CPU <cpus> MEMORY <size>
                              Resource ceilings, e.g. CPU 0.5 MEMORY 512M.
  BUILD-ARGS KEY="value" ...  Build from source with these arguments;
                              wins over IMAGE-ID.
  REPLICAS <count>            Replica count. More than one drops the fixed
                              container name.
  UPDATE-CONFIG PARALLELISM <n> [DELAY <duration>]
      [FAILURE-ACTION CONTINUE|PAUSE|ROLLBACK] [MONITOR <duration>]
      [MAX-FAILURE-RATIO <ratio>]
                              Rolling update settings.
  SWARM-LABELS KEY="value" ...
                              Orchestrator labels, placed under deploy.

Scalar directives resolve last-wins; list directives append; map
directives merge per key. Unrecognized directives are ignored.
`

const exampleStackfile = `// Example Stackfile: a small shop deployment.

DEPLOYMENT-ID shop
VERSION-ID "2.1.0"

ENVIRONMENT SECTION

NETWORK-NAME backbone DRIVER OVERLAY ATTACHABLE TRUE ENCRYPTED TRUE
VOLUME pgdata type=local
SECRET db_password hunter2

SERVICES SECTION

SERVICE db
  IMAGE-ID postgres:16
  ENV-VARIABLE "POSTGRES_DB=shop"
  ENV-VARIABLE {{POSTGRES_PASSWORD}}
  VOLUME-MAPPING pgdata TO /var/lib/postgresql/data
  HEALTH-CHECK "pg_isready -U postgres"
END SERVICE

SERVICE app
  BUILD-ARGS NODE_VERSION="20" BUILD_ENV="production"
  COMMAND "npm run start"
  PORT-MAPPING 8080 TO 3000
  ENV-VARIABLE {{API_KEY}}
  DEPENDS-ON db
  RESTART-POLICY unless-stopped
  RESOURCE-LIMITS CPU 0.5 MEMORY 512M
  REPLICAS 2
  UPDATE-CONFIG PARALLELISM 1 DELAY 10s FAILURE-ACTION ROLLBACK
  SWARM-LABELS tier="frontend"
END SERVICE

SERVICE dns
  IMAGE-ID coredns/coredns:1.11.1
  PORT-MAPPING 53 TO 53 udp
END SERVICE
`
