package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"golang.org/x/term"

	"semacore/internal/diag"
)

var rootCmd = &cobra.Command{
	Use:   "semac",
	Short: "semacore semantic analysis toolchain",
	Long:  `semac drives semacore's semantic analyzer: project config, diagnostics, and symbol queries over an already-parsed unit.`,
}

var (
	timeoutCancel   context.CancelFunc
	timeoutDuration time.Duration
)

func main() {
	rootCmd.PersistentPreRunE = applyTimeout
	rootCmd.PersistentPostRun = cleanupTimeout

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(selftestCmd)
	rootCmd.AddCommand(snapshotCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	rootCmd.PersistentFlags().Int("timeout", 30, "command timeout in seconds")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// wantColor resolves the --color flag against whether out is a terminal.
func wantColor(cmd *cobra.Command, out *os.File) bool {
	mode, _ := cmd.Root().PersistentFlags().GetString("color")
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return term.IsTerminal(int(out.Fd()))
	}
}

// newBagFromFlags builds a diag.Bag sized by the --max-diagnostics flag.
func newBagFromFlags(cmd *cobra.Command) *diag.Bag {
	max, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil || max <= 0 {
		max = 100
	}
	return diag.NewBag(max)
}

func applyTimeout(cmd *cobra.Command, _ []string) error {
	secs, err := cmd.Root().PersistentFlags().GetInt("timeout")
	if err != nil {
		return fmt.Errorf("failed to read timeout flag: %w", err)
	}
	if secs <= 0 {
		return fmt.Errorf("timeout must be greater than zero")
	}

	timeoutDuration = time.Duration(secs) * time.Second
	ctx, cancel := context.WithTimeout(cmd.Context(), timeoutDuration)
	timeoutCancel = cancel
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)

	go func() {
		<-ctx.Done()
		if ctx.Err() == context.DeadlineExceeded {
			fmt.Fprintf(os.Stderr, "semac: command timed out after %s\n", timeoutDuration)
			os.Exit(1)
		}
	}()
	return nil
}

func cleanupTimeout(*cobra.Command, []string) {
	if timeoutCancel != nil {
		timeoutCancel()
		timeoutCancel = nil
	}
}
