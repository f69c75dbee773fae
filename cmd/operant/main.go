// Package main provides the CLI entrypoint for operant.
package main

import (
	"fmt"
	"os"

	"github.com/mweller/operant/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
