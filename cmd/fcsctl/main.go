// Command fcsctl builds device setup payloads and drives an FCS control
// server over MQTT.
package main

import (
	"os"

	"github.com/nerrad567/fcs-core/cmd/fcsctl/commands"
)

// Version information - set during build via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	// Errors are printed by the printer package before returning.
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
