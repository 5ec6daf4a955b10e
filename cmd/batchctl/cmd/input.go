package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/dbsmedya/batchctl/internal/config"
	"github.com/dbsmedya/batchctl/internal/graph"
	"github.com/dbsmedya/batchctl/internal/jobdef"
	"github.com/dbsmedya/batchctl/internal/proclist"
)

// inputFormatProc and inputFormatYAML are the two process-list input
// formats run/validate/plan accept via --input-format.
const (
	inputFormatProc = "proc"
	inputFormatYAML = "yaml"
)

// buildGraph loads the batch's process list in the requested format and
// builds its dependency graph. "proc" (the default) reads the flat CSV
// .proc file via internal/proclist; "yaml" reads a YAML job definition via
// internal/jobdef, the domain stack's viper-backed alternate input.
func buildGraph(cfg *config.Config, format string) (*graph.Graph, error) {
	switch format {
	case "", inputFormatProc:
		list, err := proclist.Load(filepath.Join(cfg.BinFileDirectory, cfg.BatchName+".proc"))
		if err != nil {
			return nil, fmt.Errorf("failed to load process list: %w", err)
		}
		g, err := graph.BuildFromProcessList(list)
		if err != nil {
			return nil, fmt.Errorf("failed to build process graph: %w", err)
		}
		return g, nil
	case inputFormatYAML:
		doc, err := jobdef.Load(filepath.Join(cfg.BinFileDirectory, cfg.BatchName+".yaml"))
		if err != nil {
			return nil, fmt.Errorf("failed to load job definition: %w", err)
		}
		g, err := graph.BuildFromJobDef(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to build process graph: %w", err)
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unrecognized input format %q (expected %q or %q)", format, inputFormatProc, inputFormatYAML)
	}
}
