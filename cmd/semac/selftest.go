package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"semacore/internal/diagfmt"
	"semacore/internal/sema"
	"semacore/internal/sir"
	"semacore/internal/snapshot"
	"semacore/internal/source"
	"semacore/internal/specache"
	"semacore/internal/ui"
)

var (
	selftestSnapshotPath string
	selftestInteractive  bool
)

func init() {
	selftestCmd.Flags().StringVar(&selftestSnapshotPath, "snapshot", "", "write a msgpack snapshot of the run to this path")
	selftestCmd.Flags().BoolVar(&selftestInteractive, "interactive", false, "page through the run's diagnostics with the bubbletea pager")
}

var selftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Run the analyzer pipeline over an empty unit and report on the wiring",
	Long:  `selftest exercises every analyzer stage, the diagnostic formatter, the specialization cache, and (optionally) the snapshot codec and interactive pager, without requiring a parsed source unit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		interner := source.NewInterner()
		fs := source.NewFileSet()
		bag := newBagFromFlags(cmd)

		u := sir.NewUnit()
		analyzer := sema.NewAnalyzer(sema.Options{Reporter: bag, Bag: bag}, interner)
		result := analyzer.Run(u)

		cache, err := specache.Open("semac")
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: specialization cache unavailable: %v\n", err)
		}
		for _, key := range analyzer.SpecializationKeys() {
			if cache != nil {
				_ = cache.Record(specache.Key{Module: "", Decl: "", Args: key})
			}
		}

		bag.Sort()
		opts := diagfmt.PrettyOpts{Color: wantColor(cmd, os.Stdout), Context: 1, PathMode: diagfmt.PathModeAuto}

		if selftestInteractive {
			program := ui.NewPager(bag.Items(), fs, opts, ui.NewUnitJumper(u))
			if _, err := program.Run(); err != nil {
				return fmt.Errorf("pager: %w", err)
			}
		} else {
			diagfmt.Pretty(cmd.OutOrStdout(), bag, fs, opts)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "modules analyzed: %d, diagnostics: %d, use-index defs: %d\n",
			len(u.Modules), bag.Len(), len(result.UseIndex.Export()))

		if selftestSnapshotPath != "" {
			snap := snapshot.Build(u, result)
			f, err := os.Create(selftestSnapshotPath)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := snapshot.Encode(f, snap); err != nil {
				return fmt.Errorf("writing snapshot: %w", err)
			}
		}

		if bag.HasErrors() {
			return fmt.Errorf("analysis reported errors")
		}
		return nil
	},
}
