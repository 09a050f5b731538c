/*
clock.go - Clock submission pipeline

PURPOSE:
  Accepts proposed clock events and either appends them to the ledger or
  rejects them with a human-readable reason. This is the only write path
  for normal (non-reconciliation) events.

PIPELINE:
  1. Normalize input (staff number, timestamp default, kind).
  2. Shift-assignment gate (skipped under an audited bypass): the staff must
     hold an assignment for the event's calendar date; an explicit assignment
     id must match staff and date; otherwise the first assignment on the date
     is accepted.
  3. Acquire the per-staff lock, re-fold the day's events, and validate the
     transition against the authoritative state.
  4. Append. On CLOCK_OUT tied to an assignment, mark it completed at the
     event timestamp and record an audit entry.

WHY THE LOCK:
  Two concurrent submissions for the same staff (a double-tapped clock-in)
  could both pass a read-then-validate check against stale state. The lock
  forces a second, authoritative re-fold immediately before the write.

SEE ALSO:
  - statemachine.go: Transition rules
  - locks.go: Per-staff lock table
*/
package timeclock

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ClockService validates and appends clock events.
type ClockService struct {
	Store       LedgerStore
	Assignments ShiftAssignments

	// AllowMultiSession permits a second CLOCK_IN after a completed session
	// on the same day. Default false.
	AllowMultiSession bool

	locks *staffLocks
}

// NewClockService wires a clock submission pipeline.
func NewClockService(store LedgerStore, assignments ShiftAssignments) *ClockService {
	return &ClockService{
		Store:       store,
		Assignments: assignments,
		locks:       newStaffLocks(),
	}
}

// Clock validates and appends one proposed event, returning the created
// event or a rejection.
func (s *ClockService) Clock(ctx context.Context, req ClockRequest) (*TimeEvent, error) {
	staffNumber := strings.TrimSpace(req.StaffNumber)
	if staffNumber == "" {
		return nil, Invalidf("staff number is required")
	}
	if !req.Kind.Valid() {
		return nil, Invalidf("unknown entry type %q", string(req.Kind))
	}
	ts := req.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	day := DateOf(ts)

	// Shift-assignment gate. Bypass is restricted to elevated callers by the
	// API layer and leaves an audit record below.
	var assignmentID *int64
	if !req.Bypass {
		id, err := s.resolveAssignment(ctx, staffNumber, day, req.ShiftAssignmentID)
		if err != nil {
			return nil, err
		}
		assignmentID = id
	} else if req.ShiftAssignmentID != nil {
		assignmentID = req.ShiftAssignmentID
	}

	// Serialize submissions per staff key and re-fold against authoritative
	// state before the write.
	lock := s.locks.get(staffNumber)
	lock.Lock()
	defer lock.Unlock()

	events, err := s.Store.EventsByStaffDate(ctx, staffNumber, day)
	if err != nil {
		return nil, err
	}
	state := FoldState(events)
	if err := ValidateNext(state, events, req.Kind, s.AllowMultiSession); err != nil {
		return nil, err
	}

	status := "Open"
	ev := &TimeEvent{
		StaffNumber:       staffNumber,
		StationID:         req.StationID,
		ShiftAssignmentID: assignmentID,
		Kind:              req.Kind,
		Timestamp:         ts,
		Reason:            req.Reason,
		GeoLocation:       req.GeoLocation,
		Manual:            req.Manual,
		Status:            status,
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.Store.AppendEvent(ctx, ev); err != nil {
		return nil, err
	}

	if ev.Kind == KindClockOut && ev.ShiftAssignmentID != nil {
		s.completeAssignment(ctx, ev, req)
	}
	if req.Bypass {
		s.auditBypass(ctx, ev, req)
	}

	return ev, nil
}

// ClockIn, ClockOut, StartBreak and EndBreak are the operation surface named
// by the back office; each is a kind-fixed Clock submission.
func (s *ClockService) ClockIn(ctx context.Context, req ClockRequest) (*TimeEvent, error) {
	req.Kind = KindClockIn
	return s.Clock(ctx, req)
}

func (s *ClockService) ClockOut(ctx context.Context, req ClockRequest) (*TimeEvent, error) {
	req.Kind = KindClockOut
	return s.Clock(ctx, req)
}

func (s *ClockService) StartBreak(ctx context.Context, req ClockRequest) (*TimeEvent, error) {
	req.Kind = KindBreakStart
	return s.Clock(ctx, req)
}

func (s *ClockService) EndBreak(ctx context.Context, req ClockRequest) (*TimeEvent, error) {
	req.Kind = KindBreakEnd
	return s.Clock(ctx, req)
}

// resolveAssignment enforces the shift gate: an explicit id must belong to
// the staff member and fall on the event date; otherwise the first assignment
// on the date is accepted.
func (s *ClockService) resolveAssignment(ctx context.Context, staffNumber string, day Date, explicit *int64) (*int64, error) {
	if explicit != nil {
		a, err := s.Assignments.AssignmentByID(ctx, *explicit)
		if err != nil {
			return nil, err
		}
		if a == nil || a.StaffNumber != staffNumber {
			return nil, Invalidf("shift assignment not found for staff")
		}
		if !a.Date.Equal(day) {
			return nil, Invalidf("shift assignment is not for the entry date")
		}
		return explicit, nil
	}

	assignments, err := s.Assignments.AssignmentsByStaffDate(ctx, staffNumber, day)
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return nil, Invalidf("no shift assignment found for staff on the entry date")
	}
	id := assignments[0].ID
	return &id, nil
}

// completeAssignment marks the assignment completed at the clock-out
// timestamp. Best-effort: failures are logged, never surfaced.
func (s *ClockService) completeAssignment(ctx context.Context, ev *TimeEvent, req ClockRequest) {
	id := *ev.ShiftAssignmentID
	if err := s.Assignments.MarkAssignmentCompleted(ctx, id, ev.Timestamp); err != nil {
		log.Printf("[Clock] Failed to complete assignment %d for staff %s: %v", id, ev.StaffNumber, err)
		return
	}

	payload, _ := json.Marshal(map[string]any{
		"field": "CompletedAt",
		"old":   nil,
		"new":   ev.Timestamp,
		"meta": map[string]any{
			"completedBy": actor(req, ev.StaffNumber),
			"timeEventId": ev.ID,
		},
	})
	s.audit(ctx, AuditRecord{
		ID:            uuid.NewString(),
		TableName:     "ShiftAssignments",
		RecordID:      id,
		Action:        "CompleteByClockOut",
		ChangesJSON:   string(payload),
		CorrelationID: req.CorrelationID,
		PerformedBy:   actor(req, ev.StaffNumber),
		PerformedAt:   time.Now().UTC(),
	})
}

// auditBypass records that shift validation was skipped and why.
func (s *ClockService) auditBypass(ctx context.Context, ev *TimeEvent, req ClockRequest) {
	payload, _ := json.Marshal(map[string]any{
		"field": "ShiftValidation",
		"old":   map[string]any{"required": true},
		"new":   map[string]any{"required": false},
		"meta": map[string]any{
			"shiftAssignmentProvided": req.ShiftAssignmentID,
			"bypassReason":            req.BypassReason,
		},
	})
	s.audit(ctx, AuditRecord{
		ID:            uuid.NewString(),
		TableName:     "TimeEvents",
		RecordID:      ev.ID,
		Action:        "BypassShiftValidation",
		ChangesJSON:   string(payload),
		CorrelationID: req.CorrelationID,
		PerformedBy:   actor(req, ev.StaffNumber),
		PerformedAt:   time.Now().UTC(),
	})
}

// audit writes best-effort: a failed audit write never blocks the clock
// operation it describes.
func (s *ClockService) audit(ctx context.Context, rec AuditRecord) {
	if err := s.Store.AppendAudit(ctx, rec); err != nil {
		log.Printf("[Clock] Failed to write audit %s/%s: %v", rec.TableName, rec.Action, err)
	}
}

func actor(req ClockRequest, fallback string) string {
	if req.PerformedBy != "" {
		return req.PerformedBy
	}
	return fallback
}
