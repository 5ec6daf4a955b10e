// Package lastsuccess resolves the last successful batch run for a given
// batch name, per §4.7, and exports it as environment variables to every
// launched job (§6.5).
package lastsuccess

import (
	"context"
	"fmt"

	"github.com/dbsmedya/batchctl/internal/auditflat"
)

// SentinelBatchNumber, SentinelRunNumber, and SentinelProcessDate are
// returned when no prior successful run can be found, per §4.7.
const (
	SentinelBatchNumber = "19000101000001"
	SentinelRunNumber   = 0
	SentinelProcessDate = "1900-01-01 00:00:01"
)

// Result holds the resolved last-success values.
type Result struct {
	BatchNumber string
	RunNumber   int
	ProcessDate string
}

// Sentinel returns the fixed "nothing found" result.
func Sentinel() Result {
	return Result{BatchNumber: SentinelBatchNumber, RunNumber: SentinelRunNumber, ProcessDate: SentinelProcessDate}
}

// TableQuerier is implemented by internal/auditsql to answer the
// audit-table form of the last-success query.
type TableQuerier interface {
	LastSuccessful(ctx context.Context, applicationName, batchName string) (*Result, error)
}

// Resolve returns the last successful run for batchName. If
// auditTableEnabled, it queries querier (internal/auditsql); otherwise it
// scans the batch history flat file at historyPath. Returns the sentinel
// if nothing is found either way.
func Resolve(ctx context.Context, auditTableEnabled bool, querier TableQuerier, applicationName, batchName, historyPath string) (Result, error) {
	if auditTableEnabled {
		if querier == nil {
			return Result{}, fmt.Errorf("audit table updates enabled but no table querier configured")
		}
		result, err := querier.LastSuccessful(ctx, applicationName, batchName)
		if err != nil {
			return Result{}, fmt.Errorf("failed to query last successful batch: %w", err)
		}
		if result == nil {
			return Sentinel(), nil
		}
		return *result, nil
	}

	rec, err := auditflat.ScanBatchHistoryLatestSuccess(historyPath, batchName)
	if err != nil {
		return Result{}, fmt.Errorf("failed to scan batch history: %w", err)
	}
	if rec == nil {
		return Sentinel(), nil
	}
	return Result{BatchNumber: rec.BatchNumber, RunNumber: rec.RunNumber, ProcessDate: rec.ProcessDate}, nil
}

// EnvVars renders the last-success values as the environment variables
// exported to every launched job, per §6.5.
func EnvVars(r Result) []string {
	return []string{
		fmt.Sprintf("LastSuccessfulBatchNumber=%s", r.BatchNumber),
		fmt.Sprintf("LastSuccessfulRunNumber=%d", r.RunNumber),
		fmt.Sprintf("LastSuccessfulProcessDate=%s", r.ProcessDate),
	}
}
