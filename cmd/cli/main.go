// Package main is the entry point for the mua-risk CLI.
package main

import (
	"os"

	"mua-risk/cmd/cli/cmd"
	"mua-risk/internal/logging"
)

func main() {
	defer logging.Sync()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
