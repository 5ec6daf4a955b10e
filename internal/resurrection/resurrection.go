// Package resurrection implements the Resurrection Planner, §4.6: deciding,
// from the last process-audit file, which processes must re-run and which
// batch/run numbers the resumed batch should use.
package resurrection

import (
	"fmt"

	"github.com/dbsmedya/batchctl/internal/auditflat"
	"github.com/dbsmedya/batchctl/internal/status"
)

// Plan describes the outcome of resurrection planning.
type Plan struct {
	// Resurrected is false when the last run fully succeeded — the
	// "LastRunSucceeded" short-circuit — and the engine should proceed
	// with a fresh batch number instead.
	Resurrected bool
	// BatchRunNumber is the new batch run_number (max across the audit
	// file + 1), only meaningful when Resurrected is true.
	BatchRunNumber int
	// Records seeds the new Status Store: preserved SUCCESSFUL entries
	// plus reset WAITING entries for everything else.
	Records map[string]*status.Record
}

// Plan reads the last process-audit file at path (if any) and decides
// whether to resurrect, following §4.6 exactly. processNames is the
// current (active) process list; any name present in the file but absent
// from processNames is ignored — it no longer exists in this batch
// definition.
func Plan(path string, processNames []string) (*Plan, error) {
	records, err := auditflat.ReadProcessAudit(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read process audit for resurrection: %w", err)
	}
	if len(records) == 0 {
		return &Plan{Resurrected: false}, nil
	}

	anyNonSuccessful := false
	maxRunNumber := 0
	lastByName := make(map[string]auditflat.ProcessRecord)
	for _, r := range records {
		lastByName[r.ProcessName] = r
		if r.ProcessStatus != status.Successful {
			anyNonSuccessful = true
		}
		if r.RunNumber > maxRunNumber {
			maxRunNumber = r.RunNumber
		}
	}

	if !anyNonSuccessful {
		return &Plan{Resurrected: false}, nil
	}

	seeded := make(map[string]*status.Record, len(processNames))
	for i, name := range processNames {
		prior, existed := lastByName[name]
		if existed && prior.ProcessStatus == status.Successful {
			seeded[name] = &status.Record{
				Name:         name,
				NaturalOrder: i,
				RunNumber:    prior.RunNumber,
				RunOrder:     i + 1,
				Status:       status.Successful,
				StartTime:    prior.StartTime,
				EndTime:      prior.EndTime,
			}
			continue
		}

		runNumber := 1
		if existed {
			runNumber = prior.RunNumber + 1
		}
		seeded[name] = &status.Record{
			Name:         name,
			NaturalOrder: i,
			RunNumber:    runNumber,
			RunOrder:     0,
			Status:       status.Waiting,
		}
	}

	return &Plan{
		Resurrected:    true,
		BatchRunNumber: maxRunNumber + 1,
		Records:        seeded,
	}, nil
}

// ApplyTo seeds a fresh status.Store's records with the plan's outcome.
func (p *Plan) ApplyTo(store *status.Store) {
	for name, rec := range p.Records {
		store.Set(name, rec)
	}
}
