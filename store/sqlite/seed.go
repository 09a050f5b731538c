/*
seed.go - Reference data for a fresh database

PURPOSE:
  Populates an empty database with the rows the engine cannot run without
  (pay rates, payroll options) plus a small demo roster for development
  environments. Seeding is idempotent: a database that already has pay
  rates is left untouched.

WHAT GETS SEEDED:
  pay_rates:       Regular + Overtime hourly rates per contract type
  payroll_options: One fortnightly configuration row
  staff:           Demo roster (development only, via SeedDemoRoster)
  shift_assignments: Today's shifts for the demo roster

NOTE:
  SeedDefaults is safe for production. SeedDemoRoster is not; only call it
  in development/demo environments.

SEE ALSO:
  - sqlite.go: The store these rows land in
  - cmd/server/main.go: Calls SeedDefaults on startup
*/
package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/farmops/timeclock-engine/payroll"
	"github.com/farmops/timeclock-engine/timeclock"
)

// SeedDefaults inserts default pay rates and payroll options into an empty
// database. No-op when pay rates already exist.
func (s *Store) SeedDefaults(ctx context.Context) error {
	rates, err := s.ListRates(ctx)
	if err != nil {
		return fmt.Errorf("failed to check existing rates: %w", err)
	}
	if len(rates) > 0 {
		return nil
	}

	now := time.Now().UTC()
	defaults := []payroll.PayRate{
		{ContractType: payroll.ContractFullTime, RateType: payroll.RateRegular, HourlyRate: decimal.NewFromFloat(29.50), Description: "Full-time base rate"},
		{ContractType: payroll.ContractFullTime, RateType: payroll.RateOvertime, HourlyRate: decimal.NewFromFloat(44.25), Description: "Full-time overtime (1.5x)"},
		{ContractType: payroll.ContractPartTime, RateType: payroll.RateRegular, HourlyRate: decimal.NewFromFloat(29.50), Description: "Part-time base rate"},
		{ContractType: payroll.ContractPartTime, RateType: payroll.RateOvertime, HourlyRate: decimal.NewFromFloat(44.25), Description: "Part-time overtime (1.5x)"},
		{ContractType: payroll.ContractCasual, RateType: payroll.RateRegular, HourlyRate: decimal.NewFromFloat(36.88), Description: "Casual base rate (incl. loading)"},
		{ContractType: payroll.ContractCasual, RateType: payroll.RateOvertime, HourlyRate: decimal.NewFromFloat(55.32), Description: "Casual overtime (1.5x)"},
	}
	for i := range defaults {
		defaults[i].Active = true
		defaults[i].EffectiveFrom = now
		defaults[i].CreatedAt = now
		defaults[i].CreatedBy = "seed"
		if err := s.SaveRate(ctx, &defaults[i]); err != nil {
			return fmt.Errorf("failed to seed pay rate: %w", err)
		}
	}

	opts := payroll.DefaultOptions()
	stored := payroll.StoredOptions{
		PayFrequency:                 &opts.PayFrequency,
		PeriodDays:                   &opts.PeriodDays,
		CasualOvertimeThresholdHours: &opts.CasualOvertimeThresholdHours,
		PaidBreakMinutes:             &opts.PaidBreakMinutes,
	}
	if err := s.SaveOptions(ctx, stored); err != nil {
		return fmt.Errorf("failed to seed payroll options: %w", err)
	}

	return nil
}

// SeedDemoRoster inserts a small demo roster with shift assignments for
// today. Development only. No-op when any staff already exist.
func (s *Store) SeedDemoRoster(ctx context.Context) error {
	staff, err := s.ActiveStaff(ctx)
	if err != nil {
		return fmt.Errorf("failed to check existing staff: %w", err)
	}
	if len(staff) > 0 {
		return nil
	}

	roster := []timeclock.Staff{
		{StaffNumber: "FW-1001", FirstName: "Mele", LastName: "Tupou", ContractType: string(payroll.ContractFullTime), Active: true},
		{StaffNumber: "FW-1002", FirstName: "Rajesh", LastName: "Sharma", ContractType: string(payroll.ContractCasual), Active: true},
		{StaffNumber: "FW-1003", FirstName: "Ana", LastName: "Ilolahia", ContractType: string(payroll.ContractCasual), Active: true},
		{StaffNumber: "FW-1004", FirstName: "Sione", LastName: "Vaka", ContractType: string(payroll.ContractPartTime), Active: true},
	}
	for _, st := range roster {
		if err := s.SaveStaff(ctx, st); err != nil {
			return fmt.Errorf("failed to seed staff %s: %w", st.StaffNumber, err)
		}
	}

	today := timeclock.Today()
	for i, st := range roster {
		a := timeclock.ShiftAssignment{
			StaffNumber: st.StaffNumber,
			Date:        today,
			ShiftID:     int64(1 + i%2),
		}
		if err := s.CreateAssignment(ctx, &a); err != nil {
			return fmt.Errorf("failed to seed shift assignment for %s: %w", st.StaffNumber, err)
		}
	}

	return nil
}
