// Command ecosim drives the environment engine and banded agent
// simulation from the command line: init, validate, run, inspect, and
// visualize subcommands over a scenario file and its run directories.
package main

import (
	"fmt"
	"os"

	"github.com/myopic/ecosim/ecoerr"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ecosim:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an ecoerr.Kind to a distinguishable nonzero exit status,
// concretizing spec.md's "0 success, nonzero on validation or I/O
// failure" contract. Errors that don't carry a Kind (cobra usage errors,
// flag parsing) fall through to the generic code 1.
func exitCode(err error) int {
	switch {
	case ecoerr.Is(err, ecoerr.ConfigInvalid), ecoerr.Is(err, ecoerr.DomainPrecondition):
		return 2
	case ecoerr.Is(err, ecoerr.IOFailure):
		return 3
	case ecoerr.Is(err, ecoerr.DeterminismViolation):
		return 4
	case ecoerr.Is(err, ecoerr.SimulationInvariant):
		return 5
	default:
		return 1
	}
}
