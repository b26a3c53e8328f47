// Package main is the entry point for the remit-pricing CLI.
package main

import (
	"os"

	"remit-pricing/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
