/*
session.go - Session reconstruction from the flat event log

PURPOSE:
  Pure, stateless mapping from an ordered event list to session records.
  Re-run on every read; never cached or persisted. This is deliberate:
  a stored session table would be a second source of truth that could
  drift from the event log.

ALGORITHM:
  Walk the ordered events holding a current-session pointer and a pending
  break start. CLOCK_IN starts a session; an unexpected second CLOCK_IN
  finalizes the previous session as-is and starts a new one, so one corrupt
  record never blocks reconstruction of the rest of the day. CLOCK_OUT
  finalizes the current session, recording a still-open break with a nil
  end. A session left open at the end of input is emitted in-progress.

DERIVED MINUTES:
  break minutes  = sum of (end - start) over closed intervals only
  worked minutes = (clock-out - clock-in) - break minutes, floored at zero;
                   nil while the session has no clock-out

SEE ALSO:
  - reader.go: Store-backed wrappers (single staff, all staff, paging)
*/
package timeclock

import (
	"math"
	"time"
)

// BuildSessions reconstructs the sessions of one staff-day from its ordered
// events. Events must be pre-sorted (SortEvents order); out-of-place events
// are absorbed with the same tolerance as FoldState.
func BuildSessions(staffNumber string, day Date, events []TimeEvent) []Session {
	var (
		sessions     []Session
		current      *Session
		inBreak      bool
		pendingBreak *time.Time
	)

	finalize := func() {
		if current == nil {
			return
		}
		if inBreak && pendingBreak != nil {
			current.Breaks = append(current.Breaks, BreakInterval{Start: *pendingBreak})
		}
		computeDerived(current)
		sessions = append(sessions, *current)
		current = nil
		inBreak = false
		pendingBreak = nil
	}

	for _, e := range events {
		ts := e.Timestamp
		switch e.Kind {
		case KindClockIn:
			if current != nil {
				// Extra CLOCK_IN without CLOCK_OUT: finalize the previous
				// session as-is and start fresh.
				finalize()
			}
			current = &Session{StaffNumber: staffNumber, Date: day, ClockIn: timePtr(ts)}
			inBreak = false
			pendingBreak = nil
		case KindBreakStart:
			if current != nil && !inBreak {
				if current.FirstBreakStart == nil {
					current.FirstBreakStart = timePtr(ts)
				}
				pendingBreak = timePtr(ts)
				inBreak = true
			}
		case KindBreakEnd:
			if current != nil && inBreak {
				if current.FirstBreakEnd == nil {
					current.FirstBreakEnd = timePtr(ts)
				}
				if pendingBreak != nil {
					current.Breaks = append(current.Breaks, BreakInterval{Start: *pendingBreak, End: timePtr(ts)})
				}
				pendingBreak = nil
				inBreak = false
			}
		case KindClockOut:
			if current != nil {
				current.ClockOut = timePtr(ts)
				finalize()
			}
		}
	}

	// Session still open at end of input: emit as in-progress.
	finalize()

	return sessions
}

// computeDerived fills TotalBreakMinutes and WorkedMinutes.
func computeDerived(s *Session) {
	var breakMinutes float64
	for _, b := range s.Breaks {
		if b.End == nil {
			continue
		}
		if d := b.End.Sub(b.Start).Minutes(); d > 0 {
			breakMinutes += d
		}
	}
	s.TotalBreakMinutes = int(math.Round(breakMinutes))

	if s.ClockIn != nil && s.ClockOut != nil {
		worked := s.ClockOut.Sub(*s.ClockIn).Minutes() - breakMinutes
		if worked < 0 {
			worked = 0
		}
		s.WorkedMinutes = intPtr(int(math.Round(worked)))
	} else {
		s.WorkedMinutes = nil
	}
}

func timePtr(t time.Time) *time.Time { return &t }
func intPtr(n int) *int              { return &n }
