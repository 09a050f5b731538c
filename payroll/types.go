/*
Package payroll aggregates reconstructed work sessions into pay.

PURPOSE:
  Consumes the timeclock engine's session views over a pay period and
  produces regular/overtime hour splits and gross wage line items under
  configurable rules (pay rates per contract type, casual daily overtime
  threshold, paid-break bonus).

KEY CONCEPTS IN THIS FILE (types.go):
  - ContractType / RateType: Dimensions a pay rate is keyed on
  - PayRate: Hourly rate with an effective range (historical rates coexist)
  - Options: Run-wide configuration with static fallback defaults
  - PayCalendar: An administratively defined pay period
  - PayrollRun / LineItem: One generated payroll with per-staff snapshots

DESIGN PRINCIPLES:
  1. Snapshots, not references: line items copy staff name, contract type
     and rates at creation time, so historical payroll is stable against
     later staff-record edits.
  2. Immutable runs: corrections require a new run with the next run number.
  3. decimal.Decimal everywhere money or hours appear; no floats.

SEE ALSO:
  - aggregator.go: Run creation and line item calculation
  - options.go: Store-backed options with fallback
  - calendar.go: Pay calendar lifecycle
*/
package payroll

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/farmops/timeclock-engine/timeclock"
)

// =============================================================================
// CONTRACT AND RATE TYPES
// =============================================================================

// ContractType is the employment contract dimension of a pay rate.
type ContractType string

const (
	ContractFullTime ContractType = "FullTime"
	ContractPartTime ContractType = "PartTime"
	ContractCasual   ContractType = "Casual"
)

// ParseContractType normalizes a contract type string.
func ParseContractType(s string) (ContractType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fulltime", "full-time", "full_time":
		return ContractFullTime, nil
	case "parttime", "part-time", "part_time":
		return ContractPartTime, nil
	case "casual":
		return ContractCasual, nil
	}
	return "", timeclock.Invalidf("unknown contract type %q", s)
}

// RateType distinguishes the rate rows of one contract type. Extensible;
// only Regular and Overtime are consumed today.
type RateType string

const (
	RateRegular  RateType = "Regular"
	RateOvertime RateType = "Overtime"
)

// =============================================================================
// PAY RATE
// =============================================================================

// PayRate is one hourly rate row. Multiple rows may exist historically for
// the same (contract, rate type); the aggregator selects the currently
// active one at calculation time.
type PayRate struct {
	ID            int64
	ContractType  ContractType
	RateType      RateType
	HourlyRate    decimal.Decimal
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
	Active        bool
	Description   string
	CreatedAt     time.Time
	CreatedBy     string
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options is the effective payroll configuration.
type Options struct {
	PayFrequency                 string
	PeriodDays                   int
	CasualOvertimeThresholdHours int
	PaidBreakMinutes             int
}

// DefaultOptions is the static fallback used when the store has no
// configuration row.
func DefaultOptions() Options {
	return Options{
		PayFrequency:                 "Fortnightly",
		PeriodDays:                   14,
		CasualOvertimeThresholdHours: 12,
		PaidBreakMinutes:             10,
	}
}

// StoredOptions is the raw store row. Nil fields fall back to defaults
// per-field, so a partially configured row still works.
type StoredOptions struct {
	PayFrequency                 *string
	PeriodDays                   *int
	CasualOvertimeThresholdHours *int
	PaidBreakMinutes             *int
}

// =============================================================================
// PAY CALENDAR
// =============================================================================

// PayCalendar is an administratively defined pay period. PayrollGenerated
// flips once a run has been created for it.
type PayCalendar struct {
	ID               int64
	PeriodStart      timeclock.Date
	PeriodEnd        timeclock.Date
	PayDate          timeclock.Date
	PayFrequency     string
	Status           string
	PayrollGenerated bool
	CreatedAt        time.Time
	CreatedBy        string
	UpdatedAt        *time.Time
	UpdatedBy        string
}

// =============================================================================
// PAYROLL RUN AND LINE ITEMS
// =============================================================================

// PayrollRun is one generated payroll for a calendar. Immutable once
// created; a correction is a new run with the next RunNumber.
type PayrollRun struct {
	ID              string
	PayCalendarID   int64
	RunNumber       int
	TotalLabourCost decimal.Decimal
	TotalWorkHours  decimal.Decimal
	StaffCount      int
	Status          string
	CreatedAt       time.Time
	CreatedBy       string
	LineItems       []LineItem
}

// LineItem is one staff member's pay for the period. Every staff-facing
// field is a snapshot taken at run creation.
type LineItem struct {
	ID          int64
	RunID       string
	StaffNumber string
	FirstName   string
	LastName    string

	ContractType ContractType

	RegularHours  decimal.Decimal
	OvertimeHours decimal.Decimal
	TotalHours    decimal.Decimal

	RegularHourlyRate  decimal.Decimal
	OvertimeHourlyRate decimal.Decimal

	GrossWages decimal.Decimal
	NetWages   decimal.Decimal

	Notes     string
	CreatedAt time.Time
}
