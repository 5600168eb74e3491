package main

import (
	"os"

	"github.com/wonny/varlytics/cmd/varlytics/commands"
)

// main is the entry point for the varlytics CLI
// Usage: go run ./cmd/varlytics [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
