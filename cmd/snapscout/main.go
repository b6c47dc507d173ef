// Package main provides the SnapScout command.
//
// Usage:
//
//	snapscout serve [flags]     - serve the photo browser and the voice websocket
//	snapscout console [flags]   - drive the voice dispatcher from the terminal
//
// Configuration is read from the environment and an optional .env file; see
// internal/config.
package main

import (
	"fmt"
	"os"

	"github.com/koscakluka/snapscout/cmd/snapscout/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
