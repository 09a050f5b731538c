package timeclock_test

import (
	"testing"
	"time"

	"github.com/farmops/timeclock-engine/timeclock"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

var testDay = timeclock.NewDate(2026, time.March, 9)

func at(hour, min int) time.Time {
	return time.Date(testDay.Year, testDay.Month, testDay.Day, hour, min, 0, 0, time.UTC)
}

func ev(kind timeclock.EntryKind, hour, min int) timeclock.TimeEvent {
	return timeclock.TimeEvent{
		StaffNumber: "FW-1001",
		StationID:   1,
		Kind:        kind,
		Timestamp:   at(hour, min),
	}
}

// =============================================================================
// FOLD TESTS - Tolerant replay of historical data
// =============================================================================

func TestFoldState_EmptyDay(t *testing.T) {
	s := timeclock.FoldState(nil)
	if s.OpenClockCount != 0 || s.InBreak {
		t.Errorf("expected zero state for empty day, got %+v", s)
	}
}

func TestFoldState_CompleteDay(t *testing.T) {
	// GIVEN: A clean clock-in / break / clock-out day
	events := []timeclock.TimeEvent{
		ev(timeclock.KindClockIn, 8, 0),
		ev(timeclock.KindBreakStart, 12, 0),
		ev(timeclock.KindBreakEnd, 12, 30),
		ev(timeclock.KindClockOut, 17, 0),
	}

	// THEN: The day folds back to the zero state
	s := timeclock.FoldState(events)
	if s.OpenClockCount != 0 {
		t.Errorf("expected no open session, got count %d", s.OpenClockCount)
	}
	if s.InBreak {
		t.Error("expected not in break")
	}
}

func TestFoldState_OpenCountNeverNegative(t *testing.T) {
	// GIVEN: Corrupt history with more clock-outs than clock-ins
	events := []timeclock.TimeEvent{
		ev(timeclock.KindClockOut, 7, 0),
		ev(timeclock.KindClockOut, 7, 30),
		ev(timeclock.KindClockIn, 8, 0),
		ev(timeclock.KindClockOut, 9, 0),
		ev(timeclock.KindClockOut, 9, 30),
	}

	// THEN: The count never goes negative at any prefix of the input
	for i := 0; i <= len(events); i++ {
		s := timeclock.FoldState(events[:i])
		if s.OpenClockCount < 0 {
			t.Fatalf("open count went negative at prefix %d: %d", i, s.OpenClockCount)
		}
	}
}

func TestFoldState_OrphanBreakEventsIgnored(t *testing.T) {
	// GIVEN: A BREAK_END with no matching BREAK_START, and a BREAK_START
	// before any clock-in
	events := []timeclock.TimeEvent{
		ev(timeclock.KindBreakStart, 7, 0),
		ev(timeclock.KindBreakEnd, 7, 30),
		ev(timeclock.KindClockIn, 8, 0),
		ev(timeclock.KindBreakEnd, 9, 0),
	}

	s := timeclock.FoldState(events)
	if s.InBreak {
		t.Error("orphan break events must not leave the state in-break")
	}
	if s.OpenClockCount != 1 {
		t.Errorf("expected one open session, got %d", s.OpenClockCount)
	}
}

func TestFoldState_ClockOutClosesOpenBreak(t *testing.T) {
	// GIVEN: A break still open when the clock-out arrives
	events := []timeclock.TimeEvent{
		ev(timeclock.KindClockIn, 8, 0),
		ev(timeclock.KindBreakStart, 12, 0),
		ev(timeclock.KindClockOut, 17, 0),
	}

	s := timeclock.FoldState(events)
	if s.InBreak {
		t.Error("clock-out must close the logically open break")
	}
	if s.OpenClockCount != 0 {
		t.Errorf("expected no open session, got %d", s.OpenClockCount)
	}
}

// =============================================================================
// VALIDATION TESTS - Strict rules for new events
// =============================================================================

func TestValidateNext_ClockInWhileOpen_Rejected(t *testing.T) {
	events := []timeclock.TimeEvent{ev(timeclock.KindClockIn, 8, 0)}
	state := timeclock.FoldState(events)

	err := timeclock.ValidateNext(state, events, timeclock.KindClockIn, false)
	if !timeclock.IsClientError(err) {
		t.Fatalf("expected validation error for double clock-in, got %v", err)
	}
}

func TestValidateNext_SecondSessionSameDay_Rejected(t *testing.T) {
	// GIVEN: A completed session earlier the same day
	events := []timeclock.TimeEvent{
		ev(timeclock.KindClockIn, 8, 0),
		ev(timeclock.KindClockOut, 12, 0),
	}
	state := timeclock.FoldState(events)

	// WHEN: Single-session mode (the default)
	err := timeclock.ValidateNext(state, events, timeclock.KindClockIn, false)
	if !timeclock.IsClientError(err) {
		t.Fatalf("expected rejection of second session, got %v", err)
	}

	// WHEN: Multi-session mode
	if err := timeclock.ValidateNext(state, events, timeclock.KindClockIn, true); err != nil {
		t.Fatalf("multi-session mode should allow a second clock-in: %v", err)
	}
}

func TestValidateNext_BreakRules(t *testing.T) {
	noEvents := []timeclock.TimeEvent{}
	zero := timeclock.FoldState(noEvents)

	// Break before clock-in
	if err := timeclock.ValidateNext(zero, noEvents, timeclock.KindBreakStart, false); !timeclock.IsClientError(err) {
		t.Errorf("break start before clock-in should be rejected, got %v", err)
	}
	if err := timeclock.ValidateNext(zero, noEvents, timeclock.KindBreakEnd, false); !timeclock.IsClientError(err) {
		t.Errorf("break end before clock-in should be rejected, got %v", err)
	}

	// Break end with no active break
	working := []timeclock.TimeEvent{ev(timeclock.KindClockIn, 8, 0)}
	state := timeclock.FoldState(working)
	if err := timeclock.ValidateNext(state, working, timeclock.KindBreakEnd, false); !timeclock.IsClientError(err) {
		t.Errorf("break end with no active break should be rejected, got %v", err)
	}

	// Double break start
	onBreak := append(working, ev(timeclock.KindBreakStart, 12, 0))
	state = timeclock.FoldState(onBreak)
	if err := timeclock.ValidateNext(state, onBreak, timeclock.KindBreakStart, false); !timeclock.IsClientError(err) {
		t.Errorf("break start during a break should be rejected, got %v", err)
	}
}

func TestValidateNext_ClockOutRules(t *testing.T) {
	// Clock-out before clock-in
	zero := timeclock.FoldState(nil)
	if err := timeclock.ValidateNext(zero, nil, timeclock.KindClockOut, false); !timeclock.IsClientError(err) {
		t.Errorf("clock-out before clock-in should be rejected, got %v", err)
	}

	// Clock-out while on break
	onBreak := []timeclock.TimeEvent{
		ev(timeclock.KindClockIn, 8, 0),
		ev(timeclock.KindBreakStart, 12, 0),
	}
	state := timeclock.FoldState(onBreak)
	if err := timeclock.ValidateNext(state, onBreak, timeclock.KindClockOut, false); !timeclock.IsClientError(err) {
		t.Errorf("clock-out while on break should be rejected, got %v", err)
	}
}

func TestValidateNext_UnknownKind_Rejected(t *testing.T) {
	if err := timeclock.ValidateNext(timeclock.ClockState{}, nil, timeclock.EntryKind("LUNCH"), false); !timeclock.IsClientError(err) {
		t.Errorf("unknown kind should be rejected, got %v", err)
	}
}

// =============================================================================
// ORDERING TESTS
// =============================================================================

func TestSortEvents_KindTieBreak(t *testing.T) {
	// GIVEN: Four kinds sharing one timestamp, listed backwards
	events := []timeclock.TimeEvent{
		ev(timeclock.KindClockOut, 8, 0),
		ev(timeclock.KindBreakEnd, 8, 0),
		ev(timeclock.KindBreakStart, 8, 0),
		ev(timeclock.KindClockIn, 8, 0),
	}

	timeclock.SortEvents(events)

	want := []timeclock.EntryKind{
		timeclock.KindClockIn,
		timeclock.KindBreakStart,
		timeclock.KindBreakEnd,
		timeclock.KindClockOut,
	}
	for i, k := range want {
		if events[i].Kind != k {
			t.Fatalf("position %d: expected %s, got %s", i, k, events[i].Kind)
		}
	}
}

func TestParseEntryKind(t *testing.T) {
	k, err := timeclock.ParseEntryKind("  clock_in ")
	if err != nil || k != timeclock.KindClockIn {
		t.Errorf("expected CLOCK_IN, got %q (%v)", k, err)
	}
	if _, err := timeclock.ParseEntryKind("LUNCH"); !timeclock.IsClientError(err) {
		t.Errorf("expected validation error for unknown kind, got %v", err)
	}
}
