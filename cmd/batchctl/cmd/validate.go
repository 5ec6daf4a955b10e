package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/batchctl/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate <config-file>",
	Short: "Validate a batch's configuration and process graph without running it",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	g, err := buildGraph(cfg, flagInputFormat)
	if err != nil {
		return err
	}
	if err := g.Validate(); err != nil {
		return fmt.Errorf("process graph validation failed: %w", err)
	}

	order, err := g.LaunchOrder()
	if err != nil {
		return fmt.Errorf("failed to compute launch order: %w", err)
	}

	cmd.Printf("batch %q is valid: %d processes, %d edges\n", cfg.BatchName, g.NodeCount(), g.EdgeCount())
	cmd.Printf("launch order: %v\n", order)
	return nil
}
