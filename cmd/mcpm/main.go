// Package main is the entry point for the mcpm CLI.
package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/mcpm/cmd/mcpm/commands"
	mcpmerrors "github.com/thoreinstein/mcpm/internal/errors"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)

		var exitErr *mcpmerrors.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Suggestion != "" {
				fmt.Fprintln(os.Stderr, "Suggestion:", exitErr.Suggestion)
			}
			os.Exit(exitErr.Code)
		}
		os.Exit(mcpmerrors.ExitUser)
	}
}
