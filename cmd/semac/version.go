package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the semac CLI's semantic version, overridable at build time
// via -ldflags.
var Version = "0.1.0-dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show semac's build version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "semac %s\n", Version)
		return nil
	},
}
