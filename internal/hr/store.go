package hr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	// ErrNotFound is returned when a record with the requested ID does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrExists is returned when adding a record whose ID is already taken.
	ErrExists = errors.New("record already exists")
)

// NewID returns a fresh ULID string for records created without one.
func NewID() string {
	return strings.ToLower(ulid.Make().String())
}

// table is a mutex-guarded map keyed by record ID. Records are stored and
// returned by value; callers treat returned records as read-only and go
// through Update to change them.
type table[T any] struct {
	mu    sync.RWMutex
	items map[string]T
	id    func(*T) string
	setID func(*T, string)
}

func newTable[T any](id func(*T) string, setID func(*T, string)) *table[T] {
	return &table[T]{items: make(map[string]T), id: id, setID: setID}
}

// Add stores the record, assigning a ULID when the ID is empty, and returns
// the record as stored.
func (t *table[T]) Add(rec T) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.id(&rec)
	if id == "" {
		id = NewID()
		t.setID(&rec, id)
	}
	if _, ok := t.items[id]; ok {
		var zero T
		return zero, fmt.Errorf("%w: %q", ErrExists, id)
	}
	t.items[id] = rec
	return rec, nil
}

func (t *table[T]) Get(id string) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.items[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return rec, nil
}

func (t *table[T]) Update(rec T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.id(&rec)
	if _, ok := t.items[id]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	t.items[id] = rec
	return nil
}

func (t *table[T]) Delete(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.items[id]; !ok {
		return false
	}
	delete(t.items, id)
	return true
}

// where returns all records passing the filter, sorted by ID so listings are
// stable across calls. A nil filter selects everything.
func (t *table[T]) where(keep func(T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]string, 0, len(t.items))
	for id := range t.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		rec := t.items[id]
		if keep == nil || keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}

func (t *table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.items)
}

// VacationStore holds vacation requests in memory.
type VacationStore struct {
	*table[VacationRequest]
}

func NewVacationStore() *VacationStore {
	return &VacationStore{table: newTable(
		func(v *VacationRequest) string { return v.ID },
		func(v *VacationRequest, id string) { v.ID = id },
	)}
}

func (s *VacationStore) All() []VacationRequest {
	return s.where(nil)
}

func (s *VacationStore) ByEmployee(employeeID string) []VacationRequest {
	return s.where(func(v VacationRequest) bool { return v.EmployeeID == employeeID })
}

func (s *VacationStore) ByStatus(status VacationStatus) []VacationRequest {
	return s.where(func(v VacationRequest) bool { return v.Status == status })
}

// TimesheetStore holds timesheet entries in memory.
type TimesheetStore struct {
	*table[TimesheetEntry]
}

func NewTimesheetStore() *TimesheetStore {
	return &TimesheetStore{table: newTable(
		func(e *TimesheetEntry) string { return e.ID },
		func(e *TimesheetEntry, id string) { e.ID = id },
	)}
}

func (s *TimesheetStore) All() []TimesheetEntry {
	return s.where(nil)
}

func (s *TimesheetStore) ByEmployee(employeeID string) []TimesheetEntry {
	return s.where(func(e TimesheetEntry) bool { return e.EmployeeID == employeeID })
}

func (s *TimesheetStore) ByStatus(status TimesheetStatus) []TimesheetEntry {
	return s.where(func(e TimesheetEntry) bool { return e.Status == status })
}

// ByDateRange returns one employee's entries with dates in [start, end].
func (s *TimesheetStore) ByDateRange(employeeID string, start, end time.Time) []TimesheetEntry {
	return s.where(func(e TimesheetEntry) bool {
		return e.EmployeeID == employeeID && !e.Date.Before(start) && !e.Date.After(end)
	})
}

// ProcedureStore holds HR procedures in memory.
type ProcedureStore struct {
	*table[Procedure]
}

func NewProcedureStore() *ProcedureStore {
	return &ProcedureStore{table: newTable(
		func(p *Procedure) string { return p.ID },
		func(p *Procedure, id string) { p.ID = id },
	)}
}

func (s *ProcedureStore) All() []Procedure {
	return s.where(nil)
}

func (s *ProcedureStore) ByCategory(category string) []Procedure {
	return s.where(func(p Procedure) bool { return strings.EqualFold(p.Category, category) })
}

func (s *ProcedureStore) Search(term string) []Procedure {
	return s.where(func(p Procedure) bool { return p.matches(term) })
}
