package main

import (
	"errors"
	"os"
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
	ExitSuccess      = 0
	ExitConfigError  = 1
	ExitCommandError = 2
)

// errConfig tags configuration failures so they get their own exit code.
var errConfig = errors.New("configuration error")

func main() {
	os.Exit(run())
}

func run() int {
	app := newApp()
	if err := app.root.Execute(); err != nil {
		if errors.Is(err, errConfig) {
			return ExitConfigError
		}
		return ExitCommandError
	}
	return ExitSuccess
}
