package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/batchctl/internal/config"
	"github.com/dbsmedya/batchctl/internal/planview"
)

var planCmd = &cobra.Command{
	Use:   "plan <config-file>",
	Short: "Render the batch's dependency graph as an ASCII diagram",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlan,
}

func runPlan(cmd *cobra.Command, args []string) error {
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

	rendered, err := planview.Render(g)
	if err != nil {
		return fmt.Errorf("failed to render plan: %w", err)
	}

	cmd.Println(rendered)
	return nil
}
