/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Timeclock:
    ClockEntryRequest, TimeEventDTO, EventPageDTO
    SessionDTO, BreakDTO, SessionPageDTO
    SessionEditRequest, EventEditRequest

  Payroll:
    CreateCalendarRequest, PayCalendarDTO
    CreateRunRequest, PayrollRunDTO, LineItemDTO
    CreateRateRequest, PayRateDTO

TIME FORMATS:
  Timestamps are RFC3339; calendar dates are YYYY-MM-DD. Decimal amounts
  travel as strings to keep precision out of float64's hands.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/farmops/timeclock-engine/payroll"
	"github.com/farmops/timeclock-engine/timeclock"
)

// =============================================================================
// TIMECLOCK REQUESTS
// =============================================================================

// ClockEntryRequest is the body of every clock submission endpoint.
type ClockEntryRequest struct {
	StaffNumber       string `json:"staff_number"`
	StationID         int64  `json:"station_id"`
	Timestamp         string `json:"timestamp,omitempty"` // RFC3339; defaults to now
	ShiftAssignmentID *int64 `json:"shift_assignment_id,omitempty"`
	Reason            string `json:"reason,omitempty"`
	GeoLocation       string `json:"geo_location,omitempty"`
	Manual            bool   `json:"manual,omitempty"`
	Bypass            bool   `json:"bypass_shift_validation,omitempty"`
	BypassReason      string `json:"bypass_reason,omitempty"`
	PerformedBy       string `json:"performed_by,omitempty"`
	CorrelationID     string `json:"correlation_id,omitempty"`
}

// BreakEditDTO is one desired break interval in a session edit.
type BreakEditDTO struct {
	Start string  `json:"start"`
	End   *string `json:"end,omitempty"`
}

// SessionEditRequest is the desired shape for one staff-day.
type SessionEditRequest struct {
	ClockIn           *string        `json:"clock_in,omitempty"`
	ClockOut          *string        `json:"clock_out,omitempty"`
	Breaks            []BreakEditDTO `json:"breaks,omitempty"`
	StationID         *int64         `json:"station_id,omitempty"`
	ShiftAssignmentID *int64         `json:"shift_assignment_id,omitempty"`
	Status            string         `json:"status,omitempty"`
	Reason            string         `json:"reason"`
	PerformedBy       string         `json:"performed_by,omitempty"`
	CorrelationID     string         `json:"correlation_id,omitempty"`
}

// EventEditRequest patches a single raw event.
type EventEditRequest struct {
	Timestamp   *string `json:"timestamp,omitempty"`
	StationID   *int64  `json:"station_id,omitempty"`
	Status      *string `json:"status,omitempty"`
	Reason      string  `json:"reason"`
	PerformedBy string  `json:"performed_by,omitempty"`
}

// =============================================================================
// TIMECLOCK RESPONSES
// =============================================================================

// TimeEventDTO represents one ledger event in API responses.
type TimeEventDTO struct {
	ID                int64   `json:"id"`
	StaffNumber       string  `json:"staff_number"`
	StationID         int64   `json:"station_id"`
	ShiftAssignmentID *int64  `json:"shift_assignment_id,omitempty"`
	Kind              string  `json:"entry_type"`
	Timestamp         string  `json:"timestamp"`
	Reason            string  `json:"reason,omitempty"`
	GeoLocation       string  `json:"geo_location,omitempty"`
	Manual            bool    `json:"manual"`
	Status            string  `json:"status,omitempty"`
	ModifiedBy        string  `json:"modified_by,omitempty"`
	ModifiedReason    string  `json:"modified_reason,omitempty"`
	ModifiedAt        *string `json:"modified_at,omitempty"`
	CreatedAt         string  `json:"created_at"`
}

// EventPageDTO is one page of the raw-event listing.
type EventPageDTO struct {
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalCount int64          `json:"total_count"`
	Items      []TimeEventDTO `json:"items"`
}

// BreakDTO is one break interval of a reconstructed session.
type BreakDTO struct {
	Start string  `json:"start"`
	End   *string `json:"end,omitempty"`
}

// SessionDTO is one reconstructed staff-day session.
type SessionDTO struct {
	StaffNumber       string     `json:"staff_number"`
	Date              string     `json:"date"`
	ClockIn           *string    `json:"clock_in,omitempty"`
	ClockOut          *string    `json:"clock_out,omitempty"`
	Breaks            []BreakDTO `json:"breaks"`
	FirstBreakStart   *string    `json:"first_break_start,omitempty"`
	FirstBreakEnd     *string    `json:"first_break_end,omitempty"`
	TotalBreakMinutes int        `json:"total_break_minutes"`
	WorkedMinutes     *int       `json:"worked_minutes,omitempty"`
	InProgress        bool       `json:"in_progress"`
}

// SessionPageDTO is one page of the all-staff session listing.
type SessionPageDTO struct {
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalCount int64        `json:"total_count"`
	Items      []SessionDTO `json:"items"`
}

// =============================================================================
// PAYROLL REQUESTS
// =============================================================================

// CreateCalendarRequest opens a new pay period.
type CreateCalendarRequest struct {
	PeriodStart string `json:"period_start"` // YYYY-MM-DD
	PayDate     string `json:"pay_date"`     // YYYY-MM-DD
	CreatedBy   string `json:"created_by,omitempty"`
}

// CreateRunRequest triggers payroll generation for a calendar.
type CreateRunRequest struct {
	CreatedBy string `json:"created_by,omitempty"`
}

// CreateRateRequest adds a pay rate row.
type CreateRateRequest struct {
	ContractType string `json:"contract_type"`
	RateType     string `json:"rate_type"`
	HourlyRate   string `json:"hourly_rate"`
	Description  string `json:"description,omitempty"`
	CreatedBy    string `json:"created_by,omitempty"`
}

// =============================================================================
// PAYROLL RESPONSES
// =============================================================================

// PayCalendarDTO represents a pay calendar in API responses.
type PayCalendarDTO struct {
	ID               int64  `json:"id"`
	PeriodStart      string `json:"period_start"`
	PeriodEnd        string `json:"period_end"`
	PayDate          string `json:"pay_date"`
	PayFrequency     string `json:"pay_frequency"`
	Status           string `json:"status"`
	PayrollGenerated bool   `json:"payroll_generated"`
	CreatedAt        string `json:"created_at"`
	CreatedBy        string `json:"created_by,omitempty"`
}

// LineItemDTO is one staff member's pay in a run.
type LineItemDTO struct {
	StaffNumber        string `json:"staff_number"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	ContractType       string `json:"contract_type"`
	RegularHours       string `json:"regular_hours"`
	OvertimeHours      string `json:"overtime_hours"`
	TotalHours         string `json:"total_hours"`
	RegularHourlyRate  string `json:"regular_hourly_rate"`
	OvertimeHourlyRate string `json:"overtime_hourly_rate"`
	GrossWages         string `json:"gross_wages"`
	NetWages           string `json:"net_wages"`
	Notes              string `json:"notes,omitempty"`
}

// PayrollRunDTO represents one generated payroll.
type PayrollRunDTO struct {
	ID              string        `json:"id"`
	PayCalendarID   int64         `json:"pay_calendar_id"`
	RunNumber       int           `json:"run_number"`
	TotalLabourCost string        `json:"total_labour_cost"`
	TotalWorkHours  string        `json:"total_work_hours"`
	StaffCount      int           `json:"staff_count"`
	Status          string        `json:"status"`
	CreatedAt       string        `json:"created_at"`
	CreatedBy       string        `json:"created_by,omitempty"`
	LineItems       []LineItemDTO `json:"line_items,omitempty"`
}

// PayRateDTO represents one pay rate row.
type PayRateDTO struct {
	ID            int64   `json:"id"`
	ContractType  string  `json:"contract_type"`
	RateType      string  `json:"rate_type"`
	HourlyRate    string  `json:"hourly_rate"`
	EffectiveFrom string  `json:"effective_from"`
	EffectiveTo   *string `json:"effective_to,omitempty"`
	Active        bool    `json:"active"`
	Description   string  `json:"description,omitempty"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toEventDTO(ev timeclock.TimeEvent) TimeEventDTO {
	return TimeEventDTO{
		ID:                ev.ID,
		StaffNumber:       ev.StaffNumber,
		StationID:         ev.StationID,
		ShiftAssignmentID: ev.ShiftAssignmentID,
		Kind:              string(ev.Kind),
		Timestamp:         formatTime(ev.Timestamp),
		Reason:            ev.Reason,
		GeoLocation:       ev.GeoLocation,
		Manual:            ev.Manual,
		Status:            ev.Status,
		ModifiedBy:        ev.ModifiedBy,
		ModifiedReason:    ev.ModifiedReason,
		ModifiedAt:        formatTimePtr(ev.ModifiedAt),
		CreatedAt:         formatTime(ev.CreatedAt),
	}
}

func toEventDTOs(events []timeclock.TimeEvent) []TimeEventDTO {
	dtos := make([]TimeEventDTO, len(events))
	for i, ev := range events {
		dtos[i] = toEventDTO(ev)
	}
	return dtos
}

func toSessionDTO(s timeclock.Session) SessionDTO {
	dto := SessionDTO{
		StaffNumber:       s.StaffNumber,
		Date:              s.Date.String(),
		ClockIn:           formatTimePtr(s.ClockIn),
		ClockOut:          formatTimePtr(s.ClockOut),
		Breaks:            []BreakDTO{},
		FirstBreakStart:   formatTimePtr(s.FirstBreakStart),
		FirstBreakEnd:     formatTimePtr(s.FirstBreakEnd),
		TotalBreakMinutes: s.TotalBreakMinutes,
		WorkedMinutes:     s.WorkedMinutes,
		InProgress:        s.InProgress(),
	}
	for _, b := range s.Breaks {
		dto.Breaks = append(dto.Breaks, BreakDTO{
			Start: formatTime(b.Start),
			End:   formatTimePtr(b.End),
		})
	}
	return dto
}

func toSessionDTOs(sessions []timeclock.Session) []SessionDTO {
	dtos := make([]SessionDTO, len(sessions))
	for i, s := range sessions {
		dtos[i] = toSessionDTO(s)
	}
	return dtos
}

func toCalendarDTO(cal payroll.PayCalendar) PayCalendarDTO {
	return PayCalendarDTO{
		ID:               cal.ID,
		PeriodStart:      cal.PeriodStart.String(),
		PeriodEnd:        cal.PeriodEnd.String(),
		PayDate:          cal.PayDate.String(),
		PayFrequency:     cal.PayFrequency,
		Status:           cal.Status,
		PayrollGenerated: cal.PayrollGenerated,
		CreatedAt:        formatTime(cal.CreatedAt),
		CreatedBy:        cal.CreatedBy,
	}
}

func toRunDTO(run payroll.PayrollRun, includeItems bool) PayrollRunDTO {
	dto := PayrollRunDTO{
		ID:              run.ID,
		PayCalendarID:   run.PayCalendarID,
		RunNumber:       run.RunNumber,
		TotalLabourCost: run.TotalLabourCost.StringFixed(2),
		TotalWorkHours:  run.TotalWorkHours.StringFixed(2),
		StaffCount:      run.StaffCount,
		Status:          run.Status,
		CreatedAt:       formatTime(run.CreatedAt),
		CreatedBy:       run.CreatedBy,
	}
	if includeItems {
		dto.LineItems = make([]LineItemDTO, len(run.LineItems))
		for i, li := range run.LineItems {
			dto.LineItems[i] = LineItemDTO{
				StaffNumber:        li.StaffNumber,
				FirstName:          li.FirstName,
				LastName:           li.LastName,
				ContractType:       string(li.ContractType),
				RegularHours:       li.RegularHours.StringFixed(2),
				OvertimeHours:      li.OvertimeHours.StringFixed(2),
				TotalHours:         li.TotalHours.StringFixed(2),
				RegularHourlyRate:  li.RegularHourlyRate.StringFixed(2),
				OvertimeHourlyRate: li.OvertimeHourlyRate.StringFixed(2),
				GrossWages:         li.GrossWages.StringFixed(2),
				NetWages:           li.NetWages.StringFixed(2),
				Notes:              li.Notes,
			}
		}
	}
	return dto
}

func toRateDTO(r payroll.PayRate) PayRateDTO {
	return PayRateDTO{
		ID:            r.ID,
		ContractType:  string(r.ContractType),
		RateType:      string(r.RateType),
		HourlyRate:    r.HourlyRate.StringFixed(2),
		EffectiveFrom: formatTime(r.EffectiveFrom),
		EffectiveTo:   formatTimePtr(r.EffectiveTo),
		Active:        r.Active,
		Description:   r.Description,
	}
}
