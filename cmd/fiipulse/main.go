package main

import (
	"os"

	"github.com/dkrao/fiipulse/cmd/fiipulse/commands"
)

// main is the entry point for the fiipulse CLI:
// go run ./cmd/fiipulse [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
