// Command ifg reports the functional groups of molecules given as SMILES.
package main

import (
	"os"

	"github.com/turtacn/funcgroup/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	// Execute has already printed the error.
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
