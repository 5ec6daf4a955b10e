package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/batchctl/internal/config"
	"github.com/dbsmedya/batchctl/internal/logarchive"
)

var pruneArchiveCmd = &cobra.Command{
	Use:   "prune-archive <config-file>",
	Short: "Remove archived log directories beyond MaxArchivedLogs, without running a batch",
	Args:  cobra.ExactArgs(1),
	RunE:  runPruneArchive,
}

func runPruneArchive(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logarchive.Prune(cfg.LogFileDirectory, cfg.MaxArchivedLogs); err != nil {
		return fmt.Errorf("failed to prune archived logs: %w", err)
	}

	cmd.Printf("pruned archives under %s, retaining %d\n", cfg.LogFileDirectory, cfg.MaxArchivedLogs)
	return nil
}
