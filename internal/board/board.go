// Package board renders a colored, column-aligned live view of the status
// store for terminal operators, refreshed once per tick by the caller.
// There is no teacher counterpart for a live board; it is grounded on the
// domain-stack pairing named in SPEC_FULL.md — gookit/color for status
// coloring, mattn/go-runewidth for column alignment — the same pairing
// internal/planview uses for the static plan rendering.
package board

import (
	"fmt"
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"

	"github.com/dbsmedya/batchctl/internal/status"
)

var statusColor = map[status.Code]color.Color{
	status.Waiting:    color.FgWhite,
	status.Running:    color.FgCyan,
	status.Successful: color.FgGreen,
	status.Failed:     color.FgRed,
}

// Render draws a table of every record in the store, in natural order,
// with the status column colored per state.
func Render(store *status.Store) string {
	records := store.InOrder()

	nameWidth := len("PROCESS")
	for _, r := range records {
		if w := runewidth.StringWidth(r.Name); w > nameWidth {
			nameWidth = w
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-*s  %-10s  %-6s  %-19s  %-19s\n",
		nameWidth, "PROCESS", "STATUS", "PID", "START", "END")

	for _, r := range records {
		c, ok := statusColor[r.Status]
		if !ok {
			c = color.FgDefault
		}
		statusText := c.Sprintf("%-10s", string(r.Status))
		pid := ""
		if r.PID != 0 {
			pid = fmt.Sprintf("%d", r.PID)
		}
		fmt.Fprintf(&sb, "%s  %s  %-6s  %-19s  %-19s\n",
			padName(r.Name, nameWidth), statusText, pid, r.StartTime, r.EndTime)
	}

	return strings.TrimRight(sb.String(), "\n")
}

func padName(name string, width int) string {
	gap := width - runewidth.StringWidth(name)
	if gap <= 0 {
		return name
	}
	return name + strings.Repeat(" ", gap)
}

// Summary renders a one-line aggregate count of the store's records by
// status, as a non-interactive snapshot.
func Summary(store *status.Store) string {
	counts := map[status.Code]int{}
	for _, r := range store.InOrder() {
		counts[r.Status]++
	}
	return fmt.Sprintf("waiting=%d running=%d successful=%d failed=%d",
		counts[status.Waiting], counts[status.Running], counts[status.Successful], counts[status.Failed])
}
