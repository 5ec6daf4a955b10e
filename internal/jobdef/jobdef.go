// Package jobdef provides an optional YAML declaration of a batch's process
// list, as an alternative to the flat CSV .proc file read by
// internal/proclist. Both loaders resolve to the same internal/graph.Graph,
// the way the teacher's config.JobConfig and internal/graph/builder.go
// resolved a table-relation tree to a dependency graph.
package jobdef

// Document is the root of a YAML process-list declaration.
type Document struct {
	BatchName string                 `yaml:"batch_name" mapstructure:"batch_name"`
	Processes map[string]ProcessNode `yaml:"processes" mapstructure:"processes"`
}

// ProcessNode declares one process: its predecessors, whether it is a
// milestone, and any processes that depend on it (expressed as nested
// dependents rather than requiring every process to list its own
// predecessors flatly).
type ProcessNode struct {
	Predecessors []string               `yaml:"predecessors" mapstructure:"predecessors"`
	Milestone    bool                   `yaml:"milestone" mapstructure:"milestone"`
	Dependents   map[string]ProcessNode `yaml:"dependents,omitempty" mapstructure:"dependents"`
}

// DuplicateProcessError is returned when a process name appears twice in a
// document: once at the top level and again as a dependent, or as a
// dependent of two different parents.
type DuplicateProcessError struct {
	Name string
}

func (e *DuplicateProcessError) Error() string {
	return "duplicate process declaration: " + e.Name
}

// Flatten walks the (possibly nested) document and returns a process name
// to predecessor-name-list map, merging every nested "dependents" entry
// into the same flat shape internal/proclist produces from a CSV file.
func (d *Document) Flatten() (map[string][]string, error) {
	flat := make(map[string][]string)
	for name, node := range d.Processes {
		if err := flattenInto(flat, name, node); err != nil {
			return nil, err
		}
	}
	return flat, nil
}

func flattenInto(flat map[string][]string, name string, node ProcessNode) error {
	if _, exists := flat[name]; exists {
		return &DuplicateProcessError{Name: name}
	}
	flat[name] = append([]string(nil), node.Predecessors...)

	for childName, child := range node.Dependents {
		merged := child
		merged.Predecessors = append(append([]string(nil), child.Predecessors...), name)
		if err := flattenInto(flat, childName, merged); err != nil {
			return err
		}
	}
	return nil
}

// MilestoneNames returns the set of process names declared as milestones
// anywhere in the document.
func (d *Document) MilestoneNames() map[string]bool {
	out := make(map[string]bool)
	collectMilestones(out, d.Processes)
	return out
}

func collectMilestones(out map[string]bool, nodes map[string]ProcessNode) {
	for name, node := range nodes {
		if node.Milestone {
			out[name] = true
		}
		collectMilestones(out, node.Dependents)
	}
}
