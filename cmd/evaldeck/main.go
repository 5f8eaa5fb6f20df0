// cmd/evaldeck/main.go
package main

import (
	evaldeck "github.com/evaldeck/evaldeck/internal/commands"
)

// Build-time variables injected via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Seams for tests.
var (
	setVersionInfo = evaldeck.SetVersionInfo
	executeCmd     = evaldeck.Execute
)

// main starts the evaldeck CLI application by delegating to the
// cobra root command defined in the commands package. It does not
// take any arguments and does not return a value.
func main() {
	setVersionInfo(version, commit, date)
	executeCmd()
}
