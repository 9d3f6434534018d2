package main

import (
	"github.com/abusectl/abusectl/cmd"
)

// Build information (set via ldflags during build)
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cmd.SetBuildInfo(Version, BuildTime, GitCommit)
	cmd.Execute()
}
