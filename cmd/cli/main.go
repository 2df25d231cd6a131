package main

import (
	"fmt"
	"os"

	"github.com/inferloop/statlab/cmd/cli/commands"
	"github.com/inferloop/statlab/pkg/constants"
)

func main() {
	rootCmd := commands.NewRootCmd(constants.AppVersion, os.Stdin)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
