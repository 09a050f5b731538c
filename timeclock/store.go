/*
store.go - Persistence and collaborator interfaces

PURPOSE:
  Defines the boundary between the engine and everything it does not own.
  The engine exclusively owns TimeEvent rows; staff records, shift
  assignments, and the audit sink are external collaborators reached only
  through the interfaces below.

MUTATION CONTRACT:
  EventStore carries Update/Delete, but the only sanctioned caller is the
  manual session editor's reconciliation, which wraps every change in one
  transaction and one audit record. Clock submissions only ever append.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite store (implements everything here)

SEE ALSO:
  - clock.go: Uses LedgerStore + ShiftAssignments
  - editor.go: Uses TxStore
*/
package timeclock

import (
	"context"
	"time"
)

// =============================================================================
// EVENT STORE
// =============================================================================

// EventQuery filters the paged raw-event listing used for administrative
// review. Zero values mean "no filter".
type EventQuery struct {
	StaffNumber string
	Kind        EntryKind
	From        *time.Time
	To          *time.Time
	Page        int
	PageSize    int
}

// EventPage is one page of a raw-event listing.
type EventPage struct {
	Page       int
	PageSize   int
	TotalCount int64
	Items      []TimeEvent
}

// EventStore persists TimeEvent rows. All list methods return events ordered
// by timestamp with the entry-kind tie-break.
type EventStore interface {
	// AppendEvent persists a new event and fills in its assigned ID.
	AppendEvent(ctx context.Context, ev *TimeEvent) error

	// UpdateEvent rewrites an existing event. Reconciliation-only.
	UpdateEvent(ctx context.Context, ev TimeEvent) error

	// DeleteEvent removes an event. Reconciliation-only.
	DeleteEvent(ctx context.Context, id int64) error

	// EventByID returns one event, or a NotFoundError.
	EventByID(ctx context.Context, id int64) (*TimeEvent, error)

	// EventsByStaffDate returns the ordered events of one staff-day.
	EventsByStaffDate(ctx context.Context, staffNumber string, day Date) ([]TimeEvent, error)

	// EventsByStaffRange returns ordered events for one staff across [from, to].
	EventsByStaffRange(ctx context.Context, staffNumber string, from, to Date) ([]TimeEvent, error)

	// EventsInRange returns ordered events for ALL staff across [from, to],
	// ordered by staff number first.
	EventsInRange(ctx context.Context, from, to Date) ([]TimeEvent, error)

	// QueryEvents returns a filtered, paged event listing.
	QueryEvents(ctx context.Context, q EventQuery) (EventPage, error)
}

// =============================================================================
// AUDIT SINK
// =============================================================================

// AuditRecord is a structured change record. ChangesJSON carries the
// action-specific payload.
type AuditRecord struct {
	ID            string
	TableName     string
	RecordID      int64
	Action        string
	ChangesJSON   string
	CorrelationID string
	PerformedBy   string
	PerformedAt   time.Time
}

// AuditLog accepts structured change records. Writes from business paths are
// best-effort: a failed audit write is logged but never blocks the operation
// it describes. The one exception is session reconciliation, whose single
// audit record commits or rolls back with the batch.
type AuditLog interface {
	AppendAudit(ctx context.Context, rec AuditRecord) error
}

// =============================================================================
// COMBINED / TRANSACTIONAL STORES
// =============================================================================

// LedgerStore is the event ledger together with its audit sink.
type LedgerStore interface {
	EventStore
	AuditLog
}

// TxStore adds atomic multi-write support. If fn returns an error the
// transaction is rolled back; otherwise it is committed.
type TxStore interface {
	LedgerStore
	WithTx(ctx context.Context, fn func(LedgerStore) error) error
}

// =============================================================================
// EXTERNAL COLLABORATORS - staff directory and shift assignments
// =============================================================================

// Staff is the slice of the staff directory this engine needs: identity,
// contract type (payroll), and active flag.
type Staff struct {
	StaffNumber  string
	FirstName    string
	LastName     string
	ContractType string
	Active       bool
}

// StaffDirectory looks up staff records. Treated as given; CRUD semantics
// live elsewhere.
type StaffDirectory interface {
	StaffByNumber(ctx context.Context, staffNumber string) (*Staff, error)
	ActiveStaff(ctx context.Context) ([]Staff, error)
}

// ShiftAssignment links a staff member to a shift on a calendar date.
type ShiftAssignment struct {
	ID          int64
	StaffNumber string
	Date        Date
	ShiftID     int64
	CompletedAt *time.Time
}

// ShiftAssignments resolves and completes shift assignments.
type ShiftAssignments interface {
	AssignmentsByStaffDate(ctx context.Context, staffNumber string, day Date) ([]ShiftAssignment, error)
	AssignmentByID(ctx context.Context, id int64) (*ShiftAssignment, error)
	MarkAssignmentCompleted(ctx context.Context, id int64, at time.Time) error
}
