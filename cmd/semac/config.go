package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"semacore/internal/projectcfg"
)

var configWant string

func init() {
	configCheckCmd.Flags().StringVar(&configWant, "want", "", "fail unless [package].name case-fold-matches this name")
	configCmd.AddCommand(configCheckCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect a project's semacore.toml manifest",
}

var configCheckCmd = &cobra.Command{
	Use:   "check <semacore.toml>",
	Short: "Load a manifest and print every resolved package root",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manifestPath := args[0]

		manifest, err := projectcfg.Load(manifestPath)
		if err != nil {
			return err
		}
		if configWant != "" && !projectcfg.SameName(configWant, manifest.Package.Name) {
			return fmt.Errorf("manifest package %q does not match --want %q", manifest.Package.Name, configWant)
		}

		roots, err := projectcfg.PackageRoots(manifestPath, manifest)
		if err != nil {
			return err
		}

		names := make([]string, 0, len(roots))
		for name := range roots {
			names = append(names, name)
		}
		sort.Strings(names)

		out := cmd.OutOrStdout()
		for _, name := range names {
			fmt.Fprintf(out, "%s -> %s\n", name, roots[name])
		}
		return nil
	},
}
