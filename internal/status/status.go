// Package status maintains the engine's in-memory process status records,
// per §3/§4.5. Records are kept in an orderedmap so iteration always
// follows the order the store was created with — the order every audit
// write and the live board render in.
package status

import (
	"github.com/elliotchance/orderedmap/v2"
)

// Code is a process or batch status value.
type Code string

const (
	Waiting    Code = "WAITING"
	Running    Code = "RUNNING"
	Successful Code = "SUCCESSFUL"
	Failed     Code = "FAILED"
)

// Record holds one process's status fields, per §3's Process Status record.
type Record struct {
	Name         string
	NaturalOrder int
	RunNumber    int
	RunOrder     int
	Handle       Handle
	PID          int
	Status       Code
	StartTime    string
	EndTime      string
}

// Handle is an opaque reference to a running child process; it is nil until
// the process is launched. Concretely filled in by internal/executor.
type Handle interface{}

// Store holds every active process's Record, keyed by process name and
// iterated in the order the store was created with.
type Store struct {
	records *orderedmap.OrderedMap[string, *Record]
}

// New initializes a Store with one WAITING record per process name, in the
// given order, run_number=1 and timings empty, per §4.5.
func New(processNames []string) *Store {
	om := orderedmap.NewOrderedMap[string, *Record]()
	for i, name := range processNames {
		om.Set(name, &Record{
			Name:         name,
			NaturalOrder: i,
			RunNumber:    1,
			RunOrder:     0,
			Status:       Waiting,
		})
	}
	return &Store{records: om}
}

// Get returns the record for a process name, or nil if not present.
func (s *Store) Get(name string) *Record {
	r, _ := s.records.Get(name)
	return r
}

// Set installs or replaces a record (used by the resurrection planner to
// seed an existing run's prior state).
func (s *Store) Set(name string, r *Record) {
	s.records.Set(name, r)
}

// InOrder returns every record in natural-order iteration order.
func (s *Store) InOrder() []*Record {
	records := make([]*Record, 0, s.records.Len())
	for el := s.records.Front(); el != nil; el = el.Next() {
		records = append(records, el.Value)
	}
	return records
}

// Names returns every process name, in natural order.
func (s *Store) Names() []string {
	names := make([]string, 0, s.records.Len())
	for el := s.records.Front(); el != nil; el = el.Next() {
		names = append(names, el.Key)
	}
	return names
}

// Len returns the number of active processes tracked.
func (s *Store) Len() int {
	return s.records.Len()
}

// AnyFailed reports whether any process currently has status FAILED — the
// fail-fast launch rule gates new launches on this.
func (s *Store) AnyFailed() bool {
	for el := s.records.Front(); el != nil; el = el.Next() {
		if el.Value.Status == Failed {
			return true
		}
	}
	return false
}

// AllTerminal reports whether every process has reached SUCCESSFUL or FAILED.
func (s *Store) AllTerminal() bool {
	for el := s.records.Front(); el != nil; el = el.Next() {
		st := el.Value.Status
		if st != Successful && st != Failed {
			return false
		}
	}
	return true
}

// RunningCount returns how many processes are currently RUNNING.
func (s *Store) RunningCount() int {
	count := 0
	for el := s.records.Front(); el != nil; el = el.Next() {
		if el.Value.Status == Running {
			count++
		}
	}
	return count
}
