package payroll

import (
	"context"
	"time"

	"github.com/farmops/timeclock-engine/timeclock"
)

// CalendarService manages pay calendar lifecycle. The period end date is
// derived from the configured period length, never supplied by the caller.
type CalendarService struct {
	Calendars CalendarStore
	Options   *OptionsProvider
}

func NewCalendarService(calendars CalendarStore, options *OptionsProvider) *CalendarService {
	return &CalendarService{Calendars: calendars, Options: options}
}

// Create validates and persists a new pay calendar. The pay date must fall
// after the derived period end, and periods must not overlap an existing
// calendar.
func (s *CalendarService) Create(ctx context.Context, periodStart, payDate timeclock.Date, createdBy string) (*PayCalendar, error) {
	if periodStart.IsZero() || payDate.IsZero() {
		return nil, timeclock.Invalidf("period start and pay date are required")
	}
	if !payDate.After(periodStart) {
		return nil, timeclock.Invalidf("pay date must be after the start period date")
	}

	opts := s.Options.Get(ctx)
	periodEnd := periodStart.AddDays(opts.PeriodDays - 1)

	if !payDate.After(periodEnd) {
		return nil, timeclock.Invalidf("pay date must be after the end period date")
	}

	overlap, err := s.Calendars.HasOverlappingCalendar(ctx, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, timeclock.Invalidf("a pay calendar already exists for that period")
	}

	cal := &PayCalendar{
		PeriodStart:  periodStart,
		PeriodEnd:    periodEnd,
		PayDate:      payDate,
		PayFrequency: opts.PayFrequency,
		Status:       "Active",
		CreatedAt:    time.Now().UTC(),
		CreatedBy:    createdBy,
	}
	if err := s.Calendars.CreateCalendar(ctx, cal); err != nil {
		return nil, err
	}
	return cal, nil
}

// List returns all pay calendars.
func (s *CalendarService) List(ctx context.Context) ([]PayCalendar, error) {
	return s.Calendars.ListCalendars(ctx)
}

// Get returns one calendar or a NotFoundError.
func (s *CalendarService) Get(ctx context.Context, id int64) (*PayCalendar, error) {
	cal, err := s.Calendars.CalendarByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cal == nil {
		return nil, timeclock.NotFoundf("pay calendar", id)
	}
	return cal, nil
}
