/*
statemachine.go - Clock sequence validation per staff-day

PURPOSE:
  Given the ordered events already recorded for a staff-day, decide whether
  a proposed new event is legal. The state is never stored; it is re-derived
  by folding the event list every time a decision is needed.

STATE:
  openClockCount  Number of CLOCK_IN events not yet matched by a CLOCK_OUT.
  inBreak         True between an accepted BREAK_START and its BREAK_END.

ASYMMETRY (intentional):
  Folding is TOLERANT: an unmatched CLOCK_OUT or BREAK_END in historical data
  is ignored rather than producing a negative count or an error. Validation of
  NEW events is STRICT. This lets the system recover from any historical bad
  data while enforcing clean rules going forward.

SEE ALSO:
  - clock.go: Re-folds under the per-staff lock immediately before the write
  - session.go: Uses the same tolerance rules when reconstructing sessions
*/
package timeclock

// ClockState is the folded state of a staff-day.
type ClockState struct {
	// OpenClockCount is the number of unmatched CLOCK_IN events. It never
	// goes negative, whatever the input.
	OpenClockCount int
	// InBreak is true while a BREAK_START is unmatched.
	InBreak bool
}

// FoldState replays ordered events into a ClockState. Tolerant of
// inconsistent history: extra CLOCK_OUT and BREAK_END events are ignored,
// a BREAK_START outside an open session is ignored, and CLOCK_OUT closes
// any logically open break.
func FoldState(events []TimeEvent) ClockState {
	var s ClockState
	for _, e := range events {
		switch e.Kind {
		case KindClockIn:
			s.OpenClockCount++
		case KindBreakStart:
			if s.OpenClockCount > 0 {
				s.InBreak = true
			}
		case KindBreakEnd:
			if s.InBreak {
				s.InBreak = false
			}
		case KindClockOut:
			if s.OpenClockCount > 0 {
				s.OpenClockCount--
			}
			s.InBreak = false
		}
	}
	return s
}

// ValidateNext decides whether a proposed event of the given kind is legal
// against the current state. events is the same ordered list the state was
// folded from; it is consulted for the single-session-per-day rule.
//
// Returns nil when the event is legal, a ValidationError otherwise.
func ValidateNext(state ClockState, events []TimeEvent, kind EntryKind, allowMultiSession bool) error {
	switch kind {
	case KindClockIn:
		if state.OpenClockCount > 0 {
			return Invalidf("cannot clock in: existing open work session (must clock out first)")
		}
		if !allowMultiSession {
			for _, e := range events {
				if e.Kind == KindClockIn {
					return Invalidf("multiple clock-ins per day are not allowed")
				}
			}
		}
	case KindBreakStart:
		if state.OpenClockCount == 0 {
			return Invalidf("cannot start break before clock in")
		}
		if state.InBreak {
			return Invalidf("cannot start break: break already in progress")
		}
	case KindBreakEnd:
		if state.OpenClockCount == 0 {
			return Invalidf("cannot end break before clock in")
		}
		if !state.InBreak {
			return Invalidf("no active break to end")
		}
	case KindClockOut:
		if state.OpenClockCount == 0 {
			return Invalidf("cannot clock out before clock in")
		}
		if state.InBreak {
			return Invalidf("cannot clock out while on break (end break first)")
		}
	default:
		return Invalidf("unknown entry type %q", string(kind))
	}
	return nil
}
