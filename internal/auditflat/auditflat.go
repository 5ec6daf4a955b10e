// Package auditflat writes and reads the engine's flat audit files, per
// §4.8/§6.4: a batch audit line, a process audit block, and an append-only
// batch history file. These are the files the resurrection planner and
// last-success resolver read back.
package auditflat

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dbsmedya/batchctl/internal/status"
)

const fieldSep = "|"

// BatchRecord is one line of the batch audit / batch history file.
type BatchRecord struct {
	BatchNumber string
	RunNumber   int
	BatchName   string
	ProcessDate string
	BatchStatus status.Code
	StartTime   string
	EndTime     string
	BatchType   string
	BatchAlias  string
}

// ProcessRecord is one line of the process audit file.
type ProcessRecord struct {
	BatchNumber   string
	RunNumber     int
	ProcessName   string
	ProcessStatus status.Code
	StartTime     string
	EndTime       string
}

// FormatBatchLine renders a BatchRecord in the pipe-separated field order
// from §4.8. EndTime is blank unless the batch has reached a terminal
// status.
func FormatBatchLine(r BatchRecord) string {
	end := r.EndTime
	if r.BatchStatus != status.Successful && r.BatchStatus != status.Failed {
		end = ""
	}
	return strings.Join([]string{
		r.BatchNumber,
		strconv.Itoa(r.RunNumber),
		r.BatchName,
		r.ProcessDate,
		string(r.BatchStatus),
		r.StartTime,
		end,
		r.BatchType,
		r.BatchAlias,
	}, fieldSep)
}

// ParseBatchLine parses one pipe-separated batch audit/history line.
func ParseBatchLine(line string) (BatchRecord, error) {
	fields := strings.Split(line, fieldSep)
	if len(fields) != 9 {
		return BatchRecord{}, fmt.Errorf("malformed batch audit line: expected 9 fields, got %d", len(fields))
	}
	runNumber, err := strconv.Atoi(fields[1])
	if err != nil {
		return BatchRecord{}, fmt.Errorf("malformed run_number in batch audit line: %w", err)
	}
	return BatchRecord{
		BatchNumber: fields[0],
		RunNumber:   runNumber,
		BatchName:   fields[2],
		ProcessDate: fields[3],
		BatchStatus: status.Code(fields[4]),
		StartTime:   fields[5],
		EndTime:     fields[6],
		BatchType:   fields[7],
		BatchAlias:  fields[8],
	}, nil
}

// FormatProcessLine renders a ProcessRecord in the pipe-separated field
// order from §4.8.
func FormatProcessLine(r ProcessRecord) string {
	return strings.Join([]string{
		r.BatchNumber,
		strconv.Itoa(r.RunNumber),
		r.ProcessName,
		string(r.ProcessStatus),
		r.StartTime,
		r.EndTime,
	}, fieldSep)
}

// ParseProcessLine parses one pipe-separated process audit line.
func ParseProcessLine(line string) (ProcessRecord, error) {
	fields := strings.Split(line, fieldSep)
	if len(fields) != 6 {
		return ProcessRecord{}, fmt.Errorf("malformed process audit line: expected 6 fields, got %d", len(fields))
	}
	runNumber, err := strconv.Atoi(fields[1])
	if err != nil {
		return ProcessRecord{}, fmt.Errorf("malformed run_number in process audit line: %w", err)
	}
	return ProcessRecord{
		BatchNumber:   fields[0],
		RunNumber:     runNumber,
		ProcessName:   fields[2],
		ProcessStatus: status.Code(fields[3]),
		StartTime:     fields[4],
		EndTime:       fields[5],
	}, nil
}

// WriteBatchAudit overwrites the batch audit file with a single line.
func WriteBatchAudit(path string, r BatchRecord) error {
	return os.WriteFile(path, []byte(FormatBatchLine(r)+"\n"), 0o644)
}

// ReadBatchAudit reads and parses the batch audit file, if present.
func ReadBatchAudit(path string) (*BatchRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read batch audit file: %w", err)
	}
	line := strings.TrimSpace(string(data))
	if line == "" {
		return nil, nil
	}
	rec, err := ParseBatchLine(line)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// WriteProcessAudit overwrites the process audit file with one line per
// record, in the given (process-list) order.
func WriteProcessAudit(path string, records []ProcessRecord) error {
	var sb strings.Builder
	for _, r := range records {
		sb.WriteString(FormatProcessLine(r))
		sb.WriteString("\n")
	}
	return os.WriteFile(path, []byte(sb.String()), 0o644)
}

// ReadProcessAudit reads and parses the process audit file, if present, in
// file order.
func ReadProcessAudit(path string) ([]ProcessRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read process audit file: %w", err)
	}
	defer f.Close()

	var records []ProcessRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		rec, err := ParseProcessLine(line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read process audit file: %w", err)
	}
	return records, nil
}

// AppendBatchHistory appends the current batch audit line verbatim to the
// append-only batch history file, per §4.8/§6.4.
func AppendBatchHistory(path string, r BatchRecord) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open batch history file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatBatchLine(r) + "\n"); err != nil {
		return fmt.Errorf("failed to append to batch history file: %w", err)
	}
	return nil
}

// ScanBatchHistoryLatestSuccess scans the batch history file for the latest
// line with the given batch name and SUCCESSFUL status, returning nil if
// none is found. Used by the last-success resolver when audit-table
// updates are disabled.
func ScanBatchHistoryLatestSuccess(path, batchName string) (*BatchRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read batch history file: %w", err)
	}
	defer f.Close()

	var latest *BatchRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		rec, err := ParseBatchLine(line)
		if err != nil {
			continue
		}
		if rec.BatchName == batchName && rec.BatchStatus == status.Successful {
			r := rec
			latest = &r
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batch history file: %w", err)
	}
	return latest, nil
}
