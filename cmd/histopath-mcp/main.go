package main

import (
	"os"

	"github.com/ironsheep/histopath-mcp/internal/cli"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func init() {
	cli.Version = Version
	cli.BuildTime = BuildTime
	cli.GitCommit = GitCommit
}

func main() {
	// Execute prints the error itself.
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
