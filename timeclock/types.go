/*
Package timeclock provides the time & attendance event engine.

PURPOSE:
  This package contains the core invariant-bearing subsystem of the farm
  workforce back office: an append-mostly ledger of clock events per staff
  member, a state machine that rejects illegal event sequences, a pure
  session reconstructor that turns the flat event log into work sessions,
  and a diff/apply editor for atomic full-day corrections.

KEY CONCEPTS IN THIS FILE (types.go):
  - EntryKind: One of the four recognized clock actions
  - TimeEvent: An immutable clock action tied to a staff member and timestamp
  - Session: A derived work period (never stored, always recomputed)
  - ClockRequest: A proposed new event submitted by a client

DESIGN PRINCIPLES:
  1. Sessions are derived, not stored: the event log is the only source of
     truth, so session views can never drift from it.
  2. Strict on writes, tolerant on replay: new events must obey the state
     machine; historical inconsistencies are absorbed, never fatal.
  3. Deterministic ordering: events sort by timestamp with the entry kind
     as a tie-break, so reconstruction is reproducible.

SEE ALSO:
  - statemachine.go: Sequence validation rules
  - session.go: Session reconstruction
  - editor.go: Full-day reconciliation
  - store.go: Persistence and collaborator interfaces
*/
package timeclock

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// =============================================================================
// ENTRY KIND REGISTRY - The four recognized clock actions
// =============================================================================

// EntryKind identifies a clock action. The set is closed: clients cannot
// register new kinds at runtime.
type EntryKind string

const (
	KindClockIn    EntryKind = "CLOCK_IN"
	KindBreakStart EntryKind = "BREAK_START"
	KindBreakEnd   EntryKind = "BREAK_END"
	KindClockOut   EntryKind = "CLOCK_OUT"
)

// EntryKinds returns all recognized kinds in tie-break order.
func EntryKinds() []EntryKind {
	return []EntryKind{KindClockIn, KindBreakStart, KindBreakEnd, KindClockOut}
}

// ParseEntryKind normalizes and validates an entry kind string.
// Accepts any casing and surrounding whitespace.
func ParseEntryKind(s string) (EntryKind, error) {
	k := EntryKind(strings.ToUpper(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", Invalidf("unknown entry type %q", s)
	}
	return k, nil
}

// Valid reports whether k is one of the four recognized kinds.
func (k EntryKind) Valid() bool {
	switch k {
	case KindClockIn, KindBreakStart, KindBreakEnd, KindClockOut:
		return true
	}
	return false
}

// order is the tie-break rank used when two events share a timestamp:
// CLOCK_IN < BREAK_START < BREAK_END < CLOCK_OUT.
func (k EntryKind) order() int {
	switch k {
	case KindClockIn:
		return 0
	case KindBreakStart:
		return 1
	case KindBreakEnd:
		return 2
	case KindClockOut:
		return 3
	}
	return 4
}

// =============================================================================
// TIME EVENT - One immutable clock action
// =============================================================================

// TimeEvent is one clock action in the ledger. Events are immutable once
// created; the only sanctioned mutation route is the manual session editor's
// reconciliation, which records every change in the audit log.
type TimeEvent struct {
	ID                int64
	StaffNumber       string
	StationID         int64
	ShiftAssignmentID *int64
	Kind              EntryKind
	Timestamp         time.Time
	Reason            string
	GeoLocation       string
	Manual            bool
	Status            string

	// Audit fields, populated only by manual corrections.
	ModifiedBy     string
	ModifiedReason string
	ModifiedAt     *time.Time

	CreatedAt time.Time
}

// Day returns the calendar day the event belongs to. An event belongs to
// exactly one staff member and one calendar day.
func (e TimeEvent) Day() Date {
	return DateOf(e.Timestamp)
}

// SortEvents orders events by timestamp, breaking ties by entry kind so that
// reconstruction is deterministic.
func SortEvents(events []TimeEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Timestamp.Equal(events[j].Timestamp) {
			return events[i].Timestamp.Before(events[j].Timestamp)
		}
		return events[i].Kind.order() < events[j].Kind.order()
	})
}

// =============================================================================
// SESSION - Derived work period (recomputed on read, never persisted)
// =============================================================================

// BreakInterval is one break inside a session. A nil End means the break was
// never closed (open-ended).
type BreakInterval struct {
	Start time.Time
	End   *time.Time
}

// Session is a derived view over the event log: one clock-in through one
// clock-out with nested break intervals. It has no storage identity.
type Session struct {
	StaffNumber string
	Date        Date
	ClockIn     *time.Time
	ClockOut    *time.Time
	Breaks      []BreakInterval

	// First-break fields kept for clients that predate multi-break support.
	FirstBreakStart *time.Time
	FirstBreakEnd   *time.Time

	// TotalBreakMinutes sums closed intervals only.
	TotalBreakMinutes int
	// WorkedMinutes is clock-out minus clock-in minus break minutes, floored
	// at zero. Nil while the session has no clock-out.
	WorkedMinutes *int
}

// InProgress reports whether the session is still open (no clock-out).
func (s Session) InProgress() bool {
	return s.ClockOut == nil
}

// =============================================================================
// CLOCK REQUEST - A proposed new event
// =============================================================================

// ClockRequest is a proposed clock action. Timestamp defaults to now when
// zero. Bypass skips shift-assignment validation and is restricted to
// elevated callers by the API layer.
type ClockRequest struct {
	StaffNumber       string
	StationID         int64
	Kind              EntryKind
	Timestamp         time.Time
	ShiftAssignmentID *int64
	Reason            string
	GeoLocation       string
	Manual            bool

	Bypass       bool
	BypassReason string

	PerformedBy   string
	CorrelationID string
}

func (r ClockRequest) String() string {
	return fmt.Sprintf("%s %s at %s", r.StaffNumber, r.Kind, r.Timestamp.Format(time.RFC3339))
}
