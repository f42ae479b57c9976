// Package main provides the entry point for the annorewrite CLI.
package main

import (
	"fmt"
	"os"

	"github.com/Sumatoshi-tech/annorewrite/cmd/annorewrite/commands"
	"github.com/Sumatoshi-tech/annorewrite/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	err := commands.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
