// Package memory provides an in-memory store implementation (for testing/dev).
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/farmops/timeclock-engine/timeclock"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Store implements timeclock.TxStore, timeclock.StaffDirectory and
// timeclock.ShiftAssignments entirely in memory. Event listings come back in
// the same order the SQLite store would produce.
type Store struct {
	mu          sync.RWMutex
	events      map[int64]timeclock.TimeEvent
	nextEventID int64
	audits      []timeclock.AuditRecord
	staff       map[string]timeclock.Staff
	assignments map[int64]timeclock.ShiftAssignment
	nextAssigID int64
}

func New() *Store {
	return &Store{
		events:      make(map[int64]timeclock.TimeEvent),
		nextEventID: 1,
		staff:       make(map[string]timeclock.Staff),
		assignments: make(map[int64]timeclock.ShiftAssignment),
		nextAssigID: 1,
	}
}

// =============================================================================
// EVENT STORE
// =============================================================================

func (m *Store) AppendEvent(_ context.Context, ev *timeclock.TimeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendLocked(ev)
	return nil
}

func (m *Store) appendLocked(ev *timeclock.TimeEvent) {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	ev.ID = m.nextEventID
	m.nextEventID++
	m.events[ev.ID] = *ev
}

func (m *Store) UpdateEvent(_ context.Context, ev timeclock.TimeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateLocked(ev)
}

func (m *Store) updateLocked(ev timeclock.TimeEvent) error {
	if _, ok := m.events[ev.ID]; !ok {
		return timeclock.NotFoundf("time event", ev.ID)
	}
	m.events[ev.ID] = ev
	return nil
}

func (m *Store) DeleteEvent(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteLocked(id)
}

func (m *Store) deleteLocked(id int64) error {
	if _, ok := m.events[id]; !ok {
		return timeclock.NotFoundf("time event", id)
	}
	delete(m.events, id)
	return nil
}

func (m *Store) EventByID(_ context.Context, id int64) (*timeclock.TimeEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ev, ok := m.events[id]
	if !ok {
		return nil, timeclock.NotFoundf("time event", id)
	}
	return &ev, nil
}

func (m *Store) EventsByStaffDate(_ context.Context, staffNumber string, day timeclock.Date) ([]timeclock.TimeEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.filterLocked(func(ev timeclock.TimeEvent) bool {
		return ev.StaffNumber == staffNumber && ev.Day() == day
	}), nil
}

func (m *Store) EventsByStaffRange(_ context.Context, staffNumber string, from, to timeclock.Date) ([]timeclock.TimeEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.filterLocked(func(ev timeclock.TimeEvent) bool {
		d := ev.Day()
		return ev.StaffNumber == staffNumber && !d.Before(from) && !d.After(to)
	}), nil
}

func (m *Store) EventsInRange(_ context.Context, from, to timeclock.Date) ([]timeclock.TimeEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := m.filterLocked(func(ev timeclock.TimeEvent) bool {
		d := ev.Day()
		return !d.Before(from) && !d.After(to)
	})
	// Staff grouping first, matching the SQLite listing.
	for i := 1; i < len(events); i++ {
		for j := i; j > 0 && events[j].StaffNumber < events[j-1].StaffNumber; j-- {
			events[j], events[j-1] = events[j-1], events[j]
		}
	}
	return events, nil
}

func (m *Store) QueryEvents(_ context.Context, q timeclock.EventQuery) (timeclock.EventPage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := m.filterLocked(func(ev timeclock.TimeEvent) bool {
		if q.StaffNumber != "" && ev.StaffNumber != q.StaffNumber {
			return false
		}
		if q.Kind != "" && ev.Kind != q.Kind {
			return false
		}
		if q.From != nil && ev.Timestamp.Before(*q.From) {
			return false
		}
		if q.To != nil && ev.Timestamp.After(*q.To) {
			return false
		}
		return true
	})
	// Newest first.
	for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
		matched[i], matched[j] = matched[j], matched[i]
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	start := (page - 1) * pageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}

	return timeclock.EventPage{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: int64(len(matched)),
		Items:      matched[start:end],
	}, nil
}

// filterLocked returns matching events in timestamp order with the kind
// tie-break.
func (m *Store) filterLocked(keep func(timeclock.TimeEvent) bool) []timeclock.TimeEvent {
	var events []timeclock.TimeEvent
	for _, ev := range m.events {
		if keep(ev) {
			events = append(events, ev)
		}
	}
	timeclock.SortEvents(events)
	return events
}

// =============================================================================
// AUDIT LOG
// =============================================================================

func (m *Store) AppendAudit(_ context.Context, rec timeclock.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.PerformedAt.IsZero() {
		rec.PerformedAt = time.Now().UTC()
	}
	m.audits = append(m.audits, rec)
	return nil
}

// Audits returns a copy of every audit record written so far.
func (m *Store) Audits() []timeclock.AuditRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]timeclock.AuditRecord(nil), m.audits...)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx runs fn against the live store, restoring a pre-transaction
// snapshot if fn fails. Coarse, but gives tests real rollback semantics.
func (m *Store) WithTx(ctx context.Context, fn func(timeclock.LedgerStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make(map[int64]timeclock.TimeEvent, len(m.events))
	for id, ev := range m.events {
		snapshot[id] = ev
	}
	snapshotNextID := m.nextEventID
	snapshotAudits := len(m.audits)

	if err := fn(&memTx{parent: m}); err != nil {
		m.events = snapshot
		m.nextEventID = snapshotNextID
		m.audits = m.audits[:snapshotAudits]
		return err
	}
	return nil
}

// memTx is the transactional view; the parent's lock is already held.
type memTx struct {
	parent *Store
}

func (t *memTx) AppendEvent(_ context.Context, ev *timeclock.TimeEvent) error {
	t.parent.appendLocked(ev)
	return nil
}

func (t *memTx) UpdateEvent(_ context.Context, ev timeclock.TimeEvent) error {
	return t.parent.updateLocked(ev)
}

func (t *memTx) DeleteEvent(_ context.Context, id int64) error {
	return t.parent.deleteLocked(id)
}

func (t *memTx) EventByID(_ context.Context, id int64) (*timeclock.TimeEvent, error) {
	ev, ok := t.parent.events[id]
	if !ok {
		return nil, timeclock.NotFoundf("time event", id)
	}
	return &ev, nil
}

func (t *memTx) EventsByStaffDate(_ context.Context, staffNumber string, day timeclock.Date) ([]timeclock.TimeEvent, error) {
	return t.parent.filterLocked(func(ev timeclock.TimeEvent) bool {
		return ev.StaffNumber == staffNumber && ev.Day() == day
	}), nil
}

func (t *memTx) EventsByStaffRange(_ context.Context, staffNumber string, from, to timeclock.Date) ([]timeclock.TimeEvent, error) {
	return t.parent.filterLocked(func(ev timeclock.TimeEvent) bool {
		d := ev.Day()
		return ev.StaffNumber == staffNumber && !d.Before(from) && !d.After(to)
	}), nil
}

func (t *memTx) EventsInRange(_ context.Context, from, to timeclock.Date) ([]timeclock.TimeEvent, error) {
	return t.parent.filterLocked(func(ev timeclock.TimeEvent) bool {
		d := ev.Day()
		return !d.Before(from) && !d.After(to)
	}), nil
}

func (t *memTx) QueryEvents(_ context.Context, q timeclock.EventQuery) (timeclock.EventPage, error) {
	return timeclock.EventPage{}, timeclock.Invalidf("paged event queries are not supported inside a transaction")
}

func (t *memTx) AppendAudit(_ context.Context, rec timeclock.AuditRecord) error {
	if rec.PerformedAt.IsZero() {
		rec.PerformedAt = time.Now().UTC()
	}
	t.parent.audits = append(t.parent.audits, rec)
	return nil
}

// =============================================================================
// STAFF DIRECTORY AND SHIFT ASSIGNMENTS
// =============================================================================

func (m *Store) SaveStaff(_ context.Context, st timeclock.Staff) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staff[st.StaffNumber] = st
	return nil
}

func (m *Store) StaffByNumber(_ context.Context, staffNumber string) (*timeclock.Staff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.staff[staffNumber]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (m *Store) ActiveStaff(_ context.Context) ([]timeclock.Staff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var staff []timeclock.Staff
	for _, st := range m.staff {
		if st.Active {
			staff = append(staff, st)
		}
	}
	for i := 1; i < len(staff); i++ {
		for j := i; j > 0 && staff[j].StaffNumber < staff[j-1].StaffNumber; j-- {
			staff[j], staff[j-1] = staff[j-1], staff[j]
		}
	}
	return staff, nil
}

func (m *Store) CreateAssignment(_ context.Context, a *timeclock.ShiftAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = m.nextAssigID
	m.nextAssigID++
	m.assignments[a.ID] = *a
	return nil
}

func (m *Store) AssignmentsByStaffDate(_ context.Context, staffNumber string, day timeclock.Date) ([]timeclock.ShiftAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []timeclock.ShiftAssignment
	for _, a := range m.assignments {
		if a.StaffNumber == staffNumber && a.Date.Equal(day) {
			result = append(result, a)
		}
	}
	for i := 1; i < len(result); i++ {
		for j := i; j > 0 && result[j].ID < result[j-1].ID; j-- {
			result[j], result[j-1] = result[j-1], result[j]
		}
	}
	return result, nil
}

func (m *Store) AssignmentByID(_ context.Context, id int64) (*timeclock.ShiftAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.assignments[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m *Store) MarkAssignmentCompleted(_ context.Context, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.assignments[id]
	if !ok {
		return timeclock.NotFoundf("shift assignment", id)
	}
	t := at.UTC()
	a.CompletedAt = &t
	m.assignments[id] = a
	return nil
}
