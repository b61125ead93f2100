// Package main is the entry point for the printquote CLI.
package main

import (
	"os"

	"printquote/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
