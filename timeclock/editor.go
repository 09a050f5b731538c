/*
editor.go - Manual session editor (full-day diff/apply reconciliation)

PURPOSE:
  Admin corrections to a staff-day arrive as a desired session shape, not as
  single-event patches. Correcting a session (a missed break, a forgotten
  clock-out) frequently requires inserting or removing events, and partial
  application would leave an inconsistent state machine. So the editor
  expands the desired shape into a normalized event list, diffs it
  positionally against the existing events, and applies the whole add/
  update/delete batch in one transaction with one audit record.

DIFF RULES (positional):
  - Same position, same kind  -> update in place (timestamp, station, audit
    fields); the event keeps its identity.
  - Same position, kind differs -> one delete plus one insert.
  - Length surplus on either side -> pure inserts or pure deletes.

ATOMICITY:
  The batch and its audit record commit together or not at all. Failure at
  any point rolls everything back and surfaces a TransactionFailure.

SEE ALSO:
  - store.go: TxStore contract
  - session.go: Derived fields on the returned session
*/
package timeclock

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BreakEdit is one desired break interval. A nil End leaves the break open.
type BreakEdit struct {
	Start time.Time
	End   *time.Time
}

// SessionEdit is the admin-supplied desired shape for one staff-day.
// Reason is mandatory.
type SessionEdit struct {
	ClockIn  *time.Time
	ClockOut *time.Time
	Breaks   []BreakEdit

	// StationID applies to created events; inferred from existing rows when
	// nil. ShiftAssignmentID likewise.
	StationID         *int64
	ShiftAssignmentID *int64

	Manual        bool
	Status        string
	Reason        string
	ModifiedAt    *time.Time
	CorrelationID string
}

// EventUpdate pairs an existing event with the desired values for its
// position.
type EventUpdate struct {
	Existing TimeEvent
	Desired  TimeEvent
}

// ChangeSet is the outcome of diffing desired against existing events.
type ChangeSet struct {
	Add    []TimeEvent
	Update []EventUpdate
	Delete []TimeEvent
}

// Diff positionally reconciles the desired event list against the existing
// one. Both lists must already be in SortEvents order.
func Diff(existing, desired []TimeEvent) ChangeSet {
	var cs ChangeSet

	min := len(existing)
	if len(desired) < min {
		min = len(desired)
	}
	for i := 0; i < min; i++ {
		if existing[i].Kind == desired[i].Kind {
			cs.Update = append(cs.Update, EventUpdate{Existing: existing[i], Desired: desired[i]})
		} else {
			// Kind mismatch: replace rather than rewrite for correctness.
			cs.Delete = append(cs.Delete, existing[i])
			cs.Add = append(cs.Add, desired[i])
		}
	}
	if len(desired) > len(existing) {
		cs.Add = append(cs.Add, desired[len(existing):]...)
	} else if len(existing) > len(desired) {
		cs.Delete = append(cs.Delete, existing[len(desired):]...)
	}
	return cs
}

// SessionEditor reconciles desired session shapes against the ledger.
type SessionEditor struct {
	Store TxStore
}

func NewSessionEditor(store TxStore) *SessionEditor {
	return &SessionEditor{Store: store}
}

// Apply validates the desired shape, diffs it against the staff-day's
// events, and applies the batch transactionally. Returns the reconciled
// session with derived fields, or a validation error before any mutation.
func (e *SessionEditor) Apply(ctx context.Context, staffNumber string, day Date, edit SessionEdit, performedBy string) (*Session, error) {
	if strings.TrimSpace(edit.Reason) == "" {
		return nil, Invalidf("a reason is required for manual session edits")
	}
	staffNumber = strings.TrimSpace(staffNumber)
	if staffNumber == "" {
		return nil, Invalidf("staff number is required")
	}

	breaks := append([]BreakEdit(nil), edit.Breaks...)
	sort.SliceStable(breaks, func(i, j int) bool { return breaks[i].Start.Before(breaks[j].Start) })

	if err := validateShape(day, edit, breaks); err != nil {
		return nil, err
	}

	existing, err := e.Store.EventsByStaffDate(ctx, staffNumber, day)
	if err != nil {
		return nil, err
	}

	stationID, err := resolveStation(edit.StationID, existing)
	if err != nil {
		return nil, err
	}
	assignmentID := edit.ShiftAssignmentID
	if assignmentID == nil && len(existing) > 0 {
		assignmentID = existing[0].ShiftAssignmentID
	}
	modAt := time.Now().UTC()
	if edit.ModifiedAt != nil {
		modAt = *edit.ModifiedAt
	}

	desired := expandDesired(staffNumber, day, edit, breaks, stationID, assignmentID, performedBy, modAt)
	cs := Diff(existing, desired)

	err = e.Store.WithTx(ctx, func(tx LedgerStore) error {
		for _, u := range cs.Update {
			ev := u.Existing
			ev.Timestamp = u.Desired.Timestamp
			ev.StationID = u.Desired.StationID
			ev.ShiftAssignmentID = u.Desired.ShiftAssignmentID
			ev.Manual = u.Desired.Manual
			ev.ModifiedBy = u.Desired.ModifiedBy
			ev.ModifiedReason = u.Desired.ModifiedReason
			ev.ModifiedAt = u.Desired.ModifiedAt
			if u.Desired.Status != "" {
				ev.Status = u.Desired.Status
			}
			if err := tx.UpdateEvent(ctx, ev); err != nil {
				return err
			}
		}
		for i := range cs.Add {
			ev := cs.Add[i]
			if err := tx.AppendEvent(ctx, &ev); err != nil {
				return err
			}
			cs.Add[i] = ev
		}
		for _, ev := range cs.Delete {
			if err := tx.DeleteEvent(ctx, ev.ID); err != nil {
				return err
			}
		}
		return tx.AppendAudit(ctx, buildSessionAudit(staffNumber, day, edit, cs, performedBy, modAt))
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	session := Session{
		StaffNumber: staffNumber,
		Date:        day,
		ClockIn:     edit.ClockIn,
		ClockOut:    edit.ClockOut,
	}
	for _, b := range breaks {
		session.Breaks = append(session.Breaks, BreakInterval{Start: b.Start, End: b.End})
	}
	if len(session.Breaks) > 0 {
		session.FirstBreakStart = timePtr(session.Breaks[0].Start)
		session.FirstBreakEnd = session.Breaks[0].End
	}
	computeDerived(&session)
	return &session, nil
}

// validateShape rejects shapes that could not have come from a legal day:
// timestamps outside the calendar day, clock-out before clock-in,
// overlapping breaks, breaks outside the worked range.
func validateShape(day Date, edit SessionEdit, breaks []BreakEdit) error {
	if edit.ClockIn != nil && !day.Contains(*edit.ClockIn) {
		return Invalidf("clock-in must be within %s", day)
	}
	if edit.ClockOut != nil && !day.Contains(*edit.ClockOut) {
		return Invalidf("clock-out must be within %s", day)
	}
	if edit.ClockIn != nil && edit.ClockOut != nil && edit.ClockOut.Before(*edit.ClockIn) {
		return Invalidf("clock-out cannot be earlier than clock-in")
	}

	for _, b := range breaks {
		if !day.Contains(b.Start) {
			return Invalidf("break start must be within %s", day)
		}
		if b.End != nil {
			if b.End.Before(b.Start) {
				return Invalidf("break end cannot be earlier than break start")
			}
			if !day.Contains(*b.End) {
				return Invalidf("break end must be within %s", day)
			}
		}
	}

	// Overlap check; an open break counts as zero-length here.
	for i := 1; i < len(breaks); i++ {
		prevEnd := breaks[i-1].Start
		if breaks[i-1].End != nil {
			prevEnd = *breaks[i-1].End
		}
		if prevEnd.After(breaks[i].Start) {
			return Invalidf("break intervals must not overlap")
		}
	}

	if edit.ClockIn != nil && edit.ClockOut != nil {
		for _, b := range breaks {
			if b.Start.Before(*edit.ClockIn) || b.Start.After(*edit.ClockOut) {
				return Invalidf("break start must be within the work session time range")
			}
			if b.End != nil && (b.End.Before(*edit.ClockIn) || b.End.After(*edit.ClockOut)) {
				return Invalidf("break end must be within the work session time range")
			}
		}
	}
	return nil
}

func resolveStation(explicit *int64, existing []TimeEvent) (int64, error) {
	if explicit != nil {
		return *explicit, nil
	}
	if len(existing) > 0 {
		return existing[0].StationID, nil
	}
	return 0, Invalidf("station id is required when creating new entries and cannot be inferred")
}

// expandDesired turns the desired shape into the normalized synthetic event
// list: CLOCK_IN, then each break pair, then CLOCK_OUT, sorted by timestamp
// with the kind tie-break.
func expandDesired(staffNumber string, day Date, edit SessionEdit, breaks []BreakEdit, stationID int64, assignmentID *int64, performedBy string, modAt time.Time) []TimeEvent {
	mk := func(kind EntryKind, ts time.Time) TimeEvent {
		return TimeEvent{
			StaffNumber:       staffNumber,
			StationID:         stationID,
			ShiftAssignmentID: assignmentID,
			Kind:              kind,
			Timestamp:         ts,
			Manual:            edit.Manual,
			Status:            edit.Status,
			ModifiedBy:        performedBy,
			ModifiedReason:    edit.Reason,
			ModifiedAt:        timePtr(modAt),
			CreatedAt:         time.Now().UTC(),
		}
	}

	var desired []TimeEvent
	if edit.ClockIn != nil {
		desired = append(desired, mk(KindClockIn, *edit.ClockIn))
	}
	for _, b := range breaks {
		desired = append(desired, mk(KindBreakStart, b.Start))
		if b.End != nil {
			desired = append(desired, mk(KindBreakEnd, *b.End))
		}
	}
	if edit.ClockOut != nil {
		desired = append(desired, mk(KindClockOut, *edit.ClockOut))
	}
	SortEvents(desired)
	return desired
}

// buildSessionAudit enumerates every change of the batch in one record.
func buildSessionAudit(staffNumber string, day Date, edit SessionEdit, cs ChangeSet, performedBy string, modAt time.Time) AuditRecord {
	type added struct {
		Kind      EntryKind `json:"kind"`
		Timestamp time.Time `json:"timestamp"`
		StationID int64     `json:"stationId"`
	}
	type updated struct {
		EventID      int64     `json:"eventId"`
		Kind         EntryKind `json:"kind"`
		OldTimestamp time.Time `json:"oldTimestamp"`
		NewTimestamp time.Time `json:"newTimestamp"`
	}
	type deleted struct {
		EventID   int64     `json:"eventId"`
		Kind      EntryKind `json:"kind"`
		Timestamp time.Time `json:"timestamp"`
	}

	payload := struct {
		Action      string    `json:"action"`
		StaffNumber string    `json:"staffNumber"`
		Date        string    `json:"date"`
		ModifiedBy  string    `json:"modifiedBy"`
		ModifiedAt  time.Time `json:"modifiedAt"`
		Reason      string    `json:"reason"`
		Added       []added   `json:"added"`
		Updated     []updated `json:"updated"`
		Deleted     []deleted `json:"deleted"`
	}{
		Action:      "ManualSessionEdit",
		StaffNumber: staffNumber,
		Date:        day.String(),
		ModifiedBy:  performedBy,
		ModifiedAt:  modAt,
		Reason:      edit.Reason,
		Added:       []added{},
		Updated:     []updated{},
		Deleted:     []deleted{},
	}
	for _, a := range cs.Add {
		payload.Added = append(payload.Added, added{Kind: a.Kind, Timestamp: a.Timestamp, StationID: a.StationID})
	}
	for _, u := range cs.Update {
		payload.Updated = append(payload.Updated, updated{
			EventID:      u.Existing.ID,
			Kind:         u.Existing.Kind,
			OldTimestamp: u.Existing.Timestamp,
			NewTimestamp: u.Desired.Timestamp,
		})
	}
	for _, d := range cs.Delete {
		payload.Deleted = append(payload.Deleted, deleted{EventID: d.ID, Kind: d.Kind, Timestamp: d.Timestamp})
	}

	raw, _ := json.Marshal(payload)
	return AuditRecord{
		ID:            uuid.NewString(),
		TableName:     "TimeEvents",
		RecordID:      0, // session-level; individual changes listed in the payload
		Action:        "ManualSessionEdit",
		ChangesJSON:   string(raw),
		CorrelationID: edit.CorrelationID,
		PerformedBy:   performedBy,
		PerformedAt:   time.Now().UTC(),
	}
}
