/*
aggregator.go - Payroll run creation

PURPOSE:
  Turns reconstructed sessions over a pay period into per-staff line items
  and run totals. Runs only after the period has ended, iterates staff
  sequentially, and is deliberately forgiving: a staff member with no
  sessions or no configured rate is skipped, never fatal to the run.

CALCULATION:
  Per staff: each completed session strictly over 240 worked minutes earns
  the configured paid-break bonus (compensating for a long shift's unpaid
  break); sessions are then summed per calendar day and converted to
  hours. Casual contracts split each day at the
  configured threshold into regular/overtime; other contracts are all
  regular. Wages are hours times the currently-active rate snapshot.
  Net equals gross; no deductions are modeled.

CONCURRENCY:
  Run creation is not session-locked. Double-generation protection is
  limited to the calendar's payroll-generated flag.
*/
package payroll

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/farmops/timeclock-engine/timeclock"
)

// paidBreakEligibleMinutes is the strict lower bound above which a session's
// worked minutes earn the paid-break bonus.
const paidBreakEligibleMinutes = 240

var sixty = decimal.NewFromInt(60)

// Aggregator creates payroll runs from session views.
type Aggregator struct {
	Staff     timeclock.StaffDirectory
	Sessions  SessionSource
	Rates     RateStore
	Calendars CalendarStore
	Runs      RunStore
	Options   *OptionsProvider

	// now is swappable for tests.
	now func() time.Time
}

func NewAggregator(staff timeclock.StaffDirectory, sessions SessionSource, rates RateStore, calendars CalendarStore, runs RunStore, options *OptionsProvider) *Aggregator {
	return &Aggregator{
		Staff:     staff,
		Sessions:  sessions,
		Rates:     rates,
		Calendars: calendars,
		Runs:      runs,
		Options:   options,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateRun generates a payroll run for the calendar. Rejected when the
// calendar does not exist or its period has not yet ended. A period with no
// qualifying sessions yields an empty run, not an error.
func (a *Aggregator) CreateRun(ctx context.Context, payCalendarID int64, createdBy string) (*PayrollRun, error) {
	cal, err := a.Calendars.CalendarByID(ctx, payCalendarID)
	if err != nil {
		return nil, err
	}
	if cal == nil {
		return nil, timeclock.NotFoundf("pay calendar", payCalendarID)
	}
	if timeclock.DateOf(a.now()).Before(cal.PeriodEnd) {
		return nil, timeclock.Invalidf("pay period has not completed yet")
	}

	existing, err := a.Runs.RunsByCalendar(ctx, payCalendarID)
	if err != nil {
		return nil, err
	}
	runNumber := 1
	for _, r := range existing {
		if r.RunNumber >= runNumber {
			runNumber = r.RunNumber + 1
		}
	}

	lineItems, err := a.calculateLineItems(ctx, cal.PeriodStart, cal.PeriodEnd)
	if err != nil {
		return nil, err
	}

	run := &PayrollRun{
		ID:            uuid.NewString(),
		PayCalendarID: payCalendarID,
		RunNumber:     runNumber,
		Status:        "Draft",
		CreatedAt:     a.now(),
		CreatedBy:     createdBy,
		LineItems:     lineItems,
		StaffCount:    len(lineItems),
	}
	run.TotalLabourCost = decimal.Zero
	run.TotalWorkHours = decimal.Zero
	for _, li := range lineItems {
		run.TotalLabourCost = run.TotalLabourCost.Add(li.NetWages)
		run.TotalWorkHours = run.TotalWorkHours.Add(li.TotalHours)
	}

	if err := a.Runs.CreateRun(ctx, run); err != nil {
		return nil, err
	}

	now := a.now()
	cal.PayrollGenerated = true
	cal.UpdatedAt = &now
	cal.UpdatedBy = createdBy
	if err := a.Calendars.UpdateCalendar(ctx, *cal); err != nil {
		return nil, err
	}

	log.Printf("[Payroll] Run created: id=%s calendar=%d staff=%d cost=%s hours=%s",
		run.ID, payCalendarID, run.StaffCount, run.TotalLabourCost, run.TotalWorkHours)

	return run, nil
}

func (a *Aggregator) calculateLineItems(ctx context.Context, periodStart, periodEnd timeclock.Date) ([]LineItem, error) {
	opts := a.Options.Get(ctx)

	staff, err := a.Staff.ActiveStaff(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]LineItem, 0, len(staff))
	for _, member := range staff {
		sessions, err := a.Sessions.SessionsForRange(ctx, member.StaffNumber, periodStart, periodEnd)
		if err != nil {
			return nil, err
		}
		if len(sessions) == 0 {
			continue
		}

		dailyMinutes := aggregateDailyMinutes(sessions, opts.PaidBreakMinutes)
		if len(dailyMinutes) == 0 {
			continue
		}

		contract, err := ParseContractType(member.ContractType)
		if err != nil {
			log.Printf("[Payroll] Skipping staff %s: %v", member.StaffNumber, err)
			continue
		}

		regularRate, err := a.Rates.ActiveRate(ctx, contract, RateRegular)
		if err != nil {
			return nil, err
		}
		if regularRate == nil {
			// Configuration gap: skip this staff member, never fail the run.
			log.Printf("[Payroll] No active regular pay rate for staff %s (contract %s); skipping",
				member.StaffNumber, contract)
			continue
		}
		overtimeRate, err := a.Rates.ActiveRate(ctx, contract, RateOvertime)
		if err != nil {
			return nil, err
		}

		regularHours, overtimeHours := splitHours(dailyMinutes, contract, opts.CasualOvertimeThresholdHours)

		overtimeHourly := decimal.Zero
		if overtimeRate != nil {
			overtimeHourly = overtimeRate.HourlyRate
		}
		gross := regularHours.Mul(regularRate.HourlyRate).Add(overtimeHours.Mul(overtimeHourly))

		items = append(items, LineItem{
			StaffNumber:        member.StaffNumber,
			FirstName:          member.FirstName,
			LastName:           member.LastName,
			ContractType:       contract,
			RegularHours:       regularHours,
			OvertimeHours:      overtimeHours,
			TotalHours:         regularHours.Add(overtimeHours),
			RegularHourlyRate:  regularRate.HourlyRate,
			OvertimeHourlyRate: overtimeHourly,
			GrossWages:         gross,
			NetWages:           gross, // no deductions modeled
			CreatedAt:          a.now(),
		})
	}
	return items, nil
}

// aggregateDailyMinutes sums completed sessions' worked minutes per calendar
// day, adding the paid-break bonus to each session strictly over the
// 240-minute eligibility bound before summing.
func aggregateDailyMinutes(sessions []timeclock.Session, paidBreakMinutes int) map[timeclock.Date]int {
	daily := make(map[timeclock.Date]int)
	for _, s := range sessions {
		if s.WorkedMinutes == nil {
			continue
		}
		worked := *s.WorkedMinutes
		if worked > paidBreakEligibleMinutes {
			worked += paidBreakMinutes
		}
		daily[s.Date] += worked
	}
	return daily
}

// splitHours converts daily minutes to hours and splits regular/overtime.
// Casual contracts split per day at the threshold; every other contract is
// all regular.
func splitHours(dailyMinutes map[timeclock.Date]int, contract ContractType, casualThresholdHours int) (regular, overtime decimal.Decimal) {
	regular = decimal.Zero
	overtime = decimal.Zero
	threshold := decimal.NewFromInt(int64(casualThresholdHours))

	for _, minutes := range dailyMinutes {
		hours := decimal.NewFromInt(int64(minutes)).Div(sixty).Round(4)
		if contract == ContractCasual && hours.GreaterThan(threshold) {
			regular = regular.Add(threshold)
			overtime = overtime.Add(hours.Sub(threshold))
		} else {
			regular = regular.Add(hours)
		}
	}
	return regular, overtime
}
