package payroll

import (
	"context"

	"github.com/farmops/timeclock-engine/timeclock"
)

// =============================================================================
// STORE INTERFACES - implemented by store/sqlite
// =============================================================================

// RateStore looks up pay rates. ActiveRate returns nil (no error) when no
// active rate exists for the combination; the aggregator decides whether
// that is fatal.
type RateStore interface {
	ActiveRate(ctx context.Context, contract ContractType, rateType RateType) (*PayRate, error)
	ListRates(ctx context.Context) ([]PayRate, error)
	SaveRate(ctx context.Context, rate *PayRate) error
}

// CalendarStore persists pay calendars.
type CalendarStore interface {
	CalendarByID(ctx context.Context, id int64) (*PayCalendar, error)
	ListCalendars(ctx context.Context) ([]PayCalendar, error)
	CreateCalendar(ctx context.Context, cal *PayCalendar) error
	UpdateCalendar(ctx context.Context, cal PayCalendar) error
	HasOverlappingCalendar(ctx context.Context, start, end timeclock.Date) (bool, error)
}

// RunStore persists payroll runs. CreateRun writes the run and its line
// items atomically.
type RunStore interface {
	CreateRun(ctx context.Context, run *PayrollRun) error
	RunByID(ctx context.Context, id string) (*PayrollRun, error)
	RunsByCalendar(ctx context.Context, calendarID int64) ([]PayrollRun, error)
	ListRuns(ctx context.Context) ([]PayrollRun, error)
}

// OptionsStore returns the latest stored configuration row, or nil when
// none exists.
type OptionsStore interface {
	LatestOptions(ctx context.Context) (*StoredOptions, error)
}

// SessionSource yields reconstructed sessions for one staff member across a
// date range. Satisfied by timeclock.SessionReader.
type SessionSource interface {
	SessionsForRange(ctx context.Context, staffNumber string, from, to timeclock.Date) ([]timeclock.Session, error)
}
