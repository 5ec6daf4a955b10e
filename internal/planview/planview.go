// Package planview renders a batch's dependency graph as an ASCII plan,
// grouping processes into dependency levels and drawing box-per-process
// rows connected by arrows. It replaces the teacher's mermaid-to-ASCII
// renderer (internal/mermaidascii in the example pack) with a
// purpose-built renderer for this domain's simpler process/predecessor
// shape, reusing gookit/color for milestone highlighting and
// mattn/go-runewidth for box alignment.
package planview

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"

	"github.com/dbsmedya/batchctl/internal/graph"
)

const (
	boxPadding = 1
	colGap     = 4
)

// Levels groups every node into its dependency depth: level 0 has no
// predecessors, level N's processes all have every predecessor in a level
// < N. Ties within a level are ordered lexically by name, for determinism.
func Levels(g *graph.Graph) ([][]string, error) {
	order, err := g.LaunchOrder()
	if err != nil {
		return nil, err
	}

	depth := make(map[string]int, len(order))
	maxDepth := 0
	for _, name := range order {
		d := 0
		for _, parent := range g.GetParents(name) {
			if depth[parent]+1 > d {
				d = depth[parent] + 1
			}
		}
		depth[name] = d
		if d > maxDepth {
			maxDepth = d
		}
	}

	levels := make([][]string, maxDepth+1)
	for _, name := range order {
		d := depth[name]
		levels[d] = append(levels[d], name)
	}
	for _, level := range levels {
		sort.Strings(level)
	}
	return levels, nil
}

// Render draws the graph as rows of boxes, one row per dependency level,
// milestone processes highlighted in color.
func Render(g *graph.Graph) (string, error) {
	levels, err := Levels(g)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i, level := range levels {
		if i > 0 {
			sb.WriteString(strings.Repeat(" ", colGap/2) + "|\n")
			sb.WriteString(strings.Repeat(" ", colGap/2) + "v\n")
		}
		sb.WriteString(renderRow(g, level))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func renderRow(g *graph.Graph, names []string) string {
	boxes := make([]string, len(names))
	for i, name := range names {
		boxes[i] = box(g, name)
	}
	return joinBoxes(boxes)
}

func box(g *graph.Graph, name string) string {
	label := name
	node := g.GetNode(name)
	if node != nil && node.IsMilestone {
		label = color.FgYellow.Sprintf("%s*", name)
	}
	width := runewidth.StringWidth(name)
	if node != nil && node.IsMilestone {
		width++
	}
	pad := strings.Repeat(" ", boxPadding)
	border := "+" + strings.Repeat("-", width+2*boxPadding) + "+"
	return fmt.Sprintf("%s\n|%s%s%s|\n%s", border, pad, label, pad, border)
}

func joinBoxes(boxes []string) string {
	rows := make([][]string, len(boxes))
	height := 0
	for i, b := range boxes {
		rows[i] = strings.Split(b, "\n")
		if len(rows[i]) > height {
			height = len(rows[i])
		}
	}

	var sb strings.Builder
	for line := 0; line < height; line++ {
		for i, r := range rows {
			if i > 0 {
				sb.WriteString(strings.Repeat(" ", colGap))
			}
			if line < len(r) {
				sb.WriteString(r[line])
			}
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
