package main

import "github.com/abdul-hamid-achik/hitfwd/apps/cli/cmd"

// Set by the linker: -ldflags "-X main.version=... -X main.buildTime=..."
var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	cmd.Execute(version, buildTime)
}
