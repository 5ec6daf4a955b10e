// Package proclist loads the batch's process list from a CSV-like .proc
// file, per §4.3/§6.3: a header line, then one process per line with a
// comma-separated name and a whitespace-separated predecessors field.
package proclist

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Process is one active process entry, in file order.
type Process struct {
	Name         string
	Predecessors []string
}

// List is the parsed, pruned result of loading a .proc file.
type List struct {
	// Processes holds the active processes in file order.
	Processes []Process
	// CommentedOut holds the names of processes whose line was prefixed
	// with "#" (and not "#--").
	CommentedOut map[string]bool
}

// DuplicateProcessError is returned when an active process name repeats.
type DuplicateProcessError struct {
	Name string
}

func (e *DuplicateProcessError) Error() string {
	return fmt.Sprintf("duplicate process name: %s", e.Name)
}

// ErrEmptyList is returned when a .proc file contains no active processes.
var ErrEmptyList = fmt.Errorf("process list contains no active processes")

// Load reads and parses a .proc file at path.
func Load(path string) (*List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read process list file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)

	// Header line is always skipped, even if the file is otherwise empty.
	if !scanner.Scan() {
		return nil, ErrEmptyList
	}

	var processes []Process
	seen := make(map[string]bool)
	commentedOut := make(map[string]bool)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#--") {
			continue
		}

		if strings.HasPrefix(line, "#") {
			name := strings.TrimSpace(strings.SplitN(line[1:], ",", 2)[0])
			if name != "" {
				commentedOut[name] = true
			}
			continue
		}

		fields := strings.SplitN(line, ",", 2)
		name := strings.TrimSpace(fields[0])
		if name == "" {
			continue
		}

		if seen[name] {
			return nil, &DuplicateProcessError{Name: name}
		}
		seen[name] = true

		var predecessors []string
		if len(fields) > 1 {
			predecessors = strings.Fields(fields[1])
		}

		processes = append(processes, Process{Name: name, Predecessors: predecessors})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read process list file: %w", err)
	}

	if len(processes) == 0 {
		return nil, ErrEmptyList
	}

	prunePredecessors(processes, seen, commentedOut)

	return &List{Processes: processes, CommentedOut: commentedOut}, nil
}

// prunePredecessors removes any predecessor that names a commented-out
// process and is not itself an active process, so authors can comment out
// a node without editing every downstream reference.
func prunePredecessors(processes []Process, active map[string]bool, commentedOut map[string]bool) {
	for i, p := range processes {
		var kept []string
		for _, pred := range p.Predecessors {
			if commentedOut[pred] && !active[pred] {
				continue
			}
			kept = append(kept, pred)
		}
		processes[i].Predecessors = kept
	}
}
