package timeclock_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/farmops/timeclock-engine/timeclock"
)

func build(events ...timeclock.TimeEvent) []timeclock.Session {
	timeclock.SortEvents(events)
	return timeclock.BuildSessions("FW-1001", testDay, events)
}

// =============================================================================
// RECONSTRUCTION TESTS
// =============================================================================

func TestBuildSessions_EmptyDay(t *testing.T) {
	if sessions := build(); len(sessions) != 0 {
		t.Fatalf("expected no sessions for an empty day, got %d", len(sessions))
	}
}

func TestBuildSessions_NoBreaks_WorkedEqualsSpan(t *testing.T) {
	// GIVEN: 08:00 clock-in, 16:00 clock-out, no breaks
	sessions := build(
		ev(timeclock.KindClockIn, 8, 0),
		ev(timeclock.KindClockOut, 16, 0),
	)

	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	s := sessions[0]
	if s.WorkedMinutes == nil || *s.WorkedMinutes != 480 {
		t.Errorf("expected 480 worked minutes, got %v", s.WorkedMinutes)
	}
	if s.TotalBreakMinutes != 0 {
		t.Errorf("expected 0 break minutes, got %d", s.TotalBreakMinutes)
	}
	if s.InProgress() {
		t.Error("completed session must not be in progress")
	}
}

func TestBuildSessions_ClosedBreakDeducted(t *testing.T) {
	// GIVEN: An 8-hour window with one closed 30-minute break
	sessions := build(
		ev(timeclock.KindClockIn, 8, 0),
		ev(timeclock.KindBreakStart, 12, 0),
		ev(timeclock.KindBreakEnd, 12, 30),
		ev(timeclock.KindClockOut, 16, 0),
	)

	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	s := sessions[0]
	if s.TotalBreakMinutes != 30 {
		t.Errorf("expected 30 break minutes, got %d", s.TotalBreakMinutes)
	}
	if s.WorkedMinutes == nil || *s.WorkedMinutes != 450 {
		t.Errorf("expected 450 worked minutes, got %v", s.WorkedMinutes)
	}
	if s.FirstBreakStart == nil || !s.FirstBreakStart.Equal(at(12, 0)) {
		t.Errorf("expected first break start 12:00, got %v", s.FirstBreakStart)
	}
	if s.FirstBreakEnd == nil || !s.FirstBreakEnd.Equal(at(12, 30)) {
		t.Errorf("expected first break end 12:30, got %v", s.FirstBreakEnd)
	}
}

func TestBuildSessions_OpenSession_NilWorkedMinutes(t *testing.T) {
	// GIVEN: A clock-in with no clock-out yet
	sessions := build(ev(timeclock.KindClockIn, 8, 0))

	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	s := sessions[0]
	if !s.InProgress() {
		t.Error("session without clock-out must be in progress")
	}
	if s.WorkedMinutes != nil {
		t.Errorf("in-progress session must have nil worked minutes, got %d", *s.WorkedMinutes)
	}
}

func TestBuildSessions_OpenBreakAtClockOut_NotDeducted(t *testing.T) {
	// GIVEN: A break never closed before the clock-out
	sessions := build(
		ev(timeclock.KindClockIn, 8, 0),
		ev(timeclock.KindBreakStart, 12, 0),
		ev(timeclock.KindClockOut, 16, 0),
	)

	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	s := sessions[0]
	if len(s.Breaks) != 1 || s.Breaks[0].End != nil {
		t.Fatalf("expected one open-ended break interval, got %+v", s.Breaks)
	}
	// Open intervals contribute nothing to the deduction.
	if s.TotalBreakMinutes != 0 {
		t.Errorf("expected 0 break minutes, got %d", s.TotalBreakMinutes)
	}
	if s.WorkedMinutes == nil || *s.WorkedMinutes != 480 {
		t.Errorf("expected 480 worked minutes, got %v", s.WorkedMinutes)
	}
}

func TestBuildSessions_ExtraClockIn_SplitsSessions(t *testing.T) {
	// GIVEN: A second CLOCK_IN with no CLOCK_OUT in between (corrupt history)
	sessions := build(
		ev(timeclock.KindClockIn, 8, 0),
		ev(timeclock.KindClockIn, 13, 0),
		ev(timeclock.KindClockOut, 17, 0),
	)

	// THEN: The first session is finalized as-is (open), the second completes
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].ClockOut != nil {
		t.Error("first session should have no clock-out")
	}
	if sessions[0].WorkedMinutes != nil {
		t.Error("first session should have nil worked minutes")
	}
	if sessions[1].WorkedMinutes == nil || *sessions[1].WorkedMinutes != 240 {
		t.Errorf("expected 240 worked minutes on second session, got %v", sessions[1].WorkedMinutes)
	}
}

func TestBuildSessions_MultipleBreaks(t *testing.T) {
	sessions := build(
		ev(timeclock.KindClockIn, 6, 0),
		ev(timeclock.KindBreakStart, 9, 0),
		ev(timeclock.KindBreakEnd, 9, 15),
		ev(timeclock.KindBreakStart, 12, 0),
		ev(timeclock.KindBreakEnd, 12, 45),
		ev(timeclock.KindClockOut, 15, 0),
	)

	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	s := sessions[0]
	if len(s.Breaks) != 2 {
		t.Fatalf("expected 2 break intervals, got %d", len(s.Breaks))
	}
	if s.TotalBreakMinutes != 60 {
		t.Errorf("expected 60 break minutes, got %d", s.TotalBreakMinutes)
	}
	if s.WorkedMinutes == nil || *s.WorkedMinutes != 480 {
		t.Errorf("expected 480 worked minutes, got %v", s.WorkedMinutes)
	}
	// Legacy first-break fields still point at the earliest interval.
	if s.FirstBreakStart == nil || !s.FirstBreakStart.Equal(at(9, 0)) {
		t.Errorf("expected first break start 09:00, got %v", s.FirstBreakStart)
	}
}

func TestBuildSessions_ClockOutBeforeClockIn_FlooredAtZero(t *testing.T) {
	// GIVEN: An inverted pair (bad manual data): worked minutes must never
	// go negative
	out := at(8, 0)
	in := at(16, 0)
	events := []timeclock.TimeEvent{
		{StaffNumber: "FW-1001", Kind: timeclock.KindClockIn, Timestamp: in},
		{StaffNumber: "FW-1001", Kind: timeclock.KindClockOut, Timestamp: out},
	}
	// Deliberately unsorted: the clock-out timestamp precedes the clock-in,
	// producing a negative raw span that must be floored.
	sessions := timeclock.BuildSessions("FW-1001", testDay, events)
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	if sessions[0].WorkedMinutes == nil || *sessions[0].WorkedMinutes != 0 {
		t.Errorf("expected worked minutes floored to 0, got %v", sessions[0].WorkedMinutes)
	}
}

func TestBuildSessions_Deterministic(t *testing.T) {
	// GIVEN: The same ordered event list reconstructed twice
	events := []timeclock.TimeEvent{
		ev(timeclock.KindClockIn, 8, 0),
		ev(timeclock.KindBreakStart, 12, 0),
		ev(timeclock.KindBreakEnd, 12, 30),
		ev(timeclock.KindClockOut, 16, 0),
	}
	timeclock.SortEvents(events)

	first := timeclock.BuildSessions("FW-1001", testDay, events)
	second := timeclock.BuildSessions("FW-1001", testDay, events)

	if !reflect.DeepEqual(first, second) {
		t.Error("reconstruction must be deterministic for identical input")
	}
}

func TestDateHelpers(t *testing.T) {
	d := timeclock.NewDate(2026, time.March, 9)
	if !d.Contains(at(23, 59)) {
		t.Error("23:59 should fall on the same day")
	}
	if d.Contains(at(23, 59).Add(2 * time.Minute)) {
		t.Error("00:01 next day should not fall on the day")
	}
	if got := d.AddDays(23); got != timeclock.NewDate(2026, time.April, 1) {
		t.Errorf("expected 2026-04-01, got %s", got)
	}
	if days := timeclock.DatesBetween(d, d.AddDays(3)); len(days) != 4 {
		t.Errorf("expected 4 days inclusive, got %d", len(days))
	}
}
