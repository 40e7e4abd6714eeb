package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"semacore/internal/snapshot"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Work with msgpack snapshots of a completed analysis run",
}

func init() {
	snapshotCmd.AddCommand(snapshotShowCmd)
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show <file> [file...]",
	Short: "Decode one or more snapshot files and print their contents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snaps := make([]snapshot.Snapshot, len(args))

		g, _ := errgroup.WithContext(cmd.Context())
		for i, path := range args {
			i, path := i, path
			g.Go(func() error {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				defer f.Close()
				snap, err := snapshot.Decode(f)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				snaps[i] = snap
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for i, path := range args {
			snap := snaps[i]
			fmt.Fprintf(out, "%s:\n", path)
			if snap.Completion != nil {
				fmt.Fprintf(out, "  completion: module=%s block=%d decl=%d\n",
					snap.Completion.Module, snap.Completion.Block, snap.Completion.Decl)
			} else {
				fmt.Fprintf(out, "  completion: none\n")
			}
			fmt.Fprintf(out, "  use-index defs: %d\n", len(snap.Defs))
		}
		return nil
	},
}
