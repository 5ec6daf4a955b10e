package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags at build time).
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags, per §6.1.
var (
	flagAlias       string
	flagBatchNumber string
	flagStartAt     int
	flagEndAt       int
	flagDebug       bool
	flagResurrect   bool
	flagProcessDate string
	flagBatchType   string
	flagTestMode    bool
	flagInputFormat string
	flagBoard       bool
)

var rootCmd = &cobra.Command{
	Use:   "batchctl <config-file>",
	Short: "Dependency-ordered batch job orchestrator",
	Long: `batchctl runs a batch of dependent processes to completion: it builds
the batch's dependency graph from its process list, launches processes as
their predecessors succeed, accounts for their status in flat and
(optionally) relational audit files, and recovers a partially failed batch
by resurrecting it under the same batch number.`,
	Version: Version,
	Args:    cobra.ExactArgs(1),
	RunE:    runBatch,
}

func init() {
	rootCmd.Flags().StringVarP(&flagAlias, "alias", "a", "", "batch alias (defaults to BatchName)")
	rootCmd.Flags().StringVarP(&flagBatchNumber, "batch-number", "b", "", "explicit batch number (YYYYMMDDHH24MISS)")
	rootCmd.Flags().IntVarP(&flagStartAt, "start", "s", 0, "starting milestone bound (accepted, not enforced — see SPEC_FULL.md)")
	rootCmd.Flags().IntVarP(&flagEndAt, "end", "e", 0, "ending milestone bound (accepted, not enforced — see SPEC_FULL.md)")
	rootCmd.Flags().BoolVarP(&flagDebug, "debug", "d", false, "enable debug logging")
	rootCmd.Flags().BoolVarP(&flagResurrect, "resurrect", "r", false, "resurrection mode: resume the last partially failed run")
	rootCmd.Flags().StringVarP(&flagProcessDate, "process-date", "p", "", "process date (YYYY-MM-DD HH:MM:SS)")
	rootCmd.Flags().StringVarP(&flagBatchType, "batch-type", "t", "", "batch type: AUTO or MANUAL")
	rootCmd.Flags().BoolVarP(&flagTestMode, "test-mode", "x", false, "test mode: simulate every process")
	rootCmd.PersistentFlags().StringVarP(&flagInputFormat, "input-format", "i", inputFormatProc, "process-list input format: proc (.proc CSV) or yaml (YAML job definition)")
	rootCmd.Flags().BoolVar(&flagBoard, "board", false, "print a live colored status board to stdout after every tick")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(pruneArchiveCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
