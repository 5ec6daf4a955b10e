package graph

import (
	"fmt"
	"strings"

	"github.com/dbsmedya/batchctl/internal/jobdef"
	"github.com/dbsmedya/batchctl/internal/proclist"
)

// UndefinedPredecessorError is returned when a process names a predecessor
// that does not appear as an active process.
type UndefinedPredecessorError struct {
	Process     string
	Predecessor string
}

func (e *UndefinedPredecessorError) Error() string {
	return fmt.Sprintf("process %q names undefined predecessor %q", e.Process, e.Predecessor)
}

// BuildFromProcessList builds a Graph from a parsed .proc file, the primary
// process-list input path (§4.3/§4.4). Every predecessor must name an
// active process; the graph is not checked for cycles here — call Validate
// on the result.
func BuildFromProcessList(list *proclist.List) (*Graph, error) {
	g := NewGraph()

	for _, p := range list.Processes {
		g.AddNode(p.Name, &Node{Name: p.Name, IsMilestone: strings.Contains(p.Name, "Milestone")})
	}

	for _, p := range list.Processes {
		for _, pred := range p.Predecessors {
			if !g.HasNode(pred) {
				return nil, &UndefinedPredecessorError{Process: p.Name, Predecessor: pred}
			}
			g.AddEdge(pred, p.Name)
		}
	}

	return g, nil
}

// BuildFromJobDef builds a Graph from a YAML job definition document, the
// domain stack's alternate input path. It flattens the document's nested
// dependents into the same predecessor-edge shape BuildFromProcessList
// produces, so both loaders feed the identical validation and scheduling
// machinery.
func BuildFromJobDef(doc *jobdef.Document) (*Graph, error) {
	flat, err := doc.Flatten()
	if err != nil {
		return nil, err
	}

	milestones := doc.MilestoneNames()

	g := NewGraph()
	for name := range flat {
		g.AddNode(name, &Node{Name: name, IsMilestone: milestones[name]})
	}

	for name, predecessors := range flat {
		for _, pred := range predecessors {
			if !g.HasNode(pred) {
				return nil, &UndefinedPredecessorError{Process: name, Predecessor: pred}
			}
			g.AddEdge(pred, name)
		}
	}

	return g, nil
}
