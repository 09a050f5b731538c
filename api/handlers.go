/*
handlers.go - HTTP API handlers for the time & attendance engine

PURPOSE:
  Exposes the timeclock ledger and payroll engine via REST API. Handles
  HTTP request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Timeclock:
    POST   /api/timeclock/clock-in               Submit CLOCK_IN
    POST   /api/timeclock/clock-out              Submit CLOCK_OUT
    POST   /api/timeclock/break-start            Submit BREAK_START
    POST   /api/timeclock/break-end              Submit BREAK_END
    GET    /api/timeclock/staff/{staffNumber}/sessions   Session views
    PUT    /api/timeclock/staff/{staffNumber}/sessions/{date}  Manual edit
    GET    /api/timeclock/sessions               All-staff sessions (paged)
    GET    /api/timeclock/events                 Raw event listing (paged)
    PUT    /api/timeclock/events/{id}            Patch one raw event

  Payroll:
    GET    /api/payroll/calendars                List pay calendars
    POST   /api/payroll/calendars                Create pay calendar
    GET    /api/payroll/calendars/{id}           Get pay calendar
    POST   /api/payroll/calendars/{id}/runs      Generate payroll run
    GET    /api/payroll/calendars/{id}/runs      Run history for calendar
    GET    /api/payroll/runs                     All runs
    GET    /api/payroll/runs/{id}                One run with line items
    GET    /api/payroll/rates                    List pay rates
    POST   /api/payroll/rates                    Create pay rate

ERROR HANDLING:
  Domain errors map to HTTP status via their sentinel class:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Transaction failure (reconciliation conflict)
  - 500: Everything else

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.
  The bypass flag on clock submissions is intended for supervisor devices;
  gate it at the proxy until auth lands.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/farmops/timeclock-engine/payroll"
	"github.com/farmops/timeclock-engine/store/sqlite"
	"github.com/farmops/timeclock-engine/timeclock"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     *sqlite.Store
	Clock     *timeclock.ClockService
	Reader    *timeclock.SessionReader
	Editor    *timeclock.SessionEditor
	Calendars *payroll.CalendarService
	Payroll   *payroll.Aggregator
}

// NewHandler wires the full service stack on top of one store.
func NewHandler(store *sqlite.Store) *Handler {
	reader := timeclock.NewSessionReader(store)
	options := payroll.NewOptionsProvider(store)
	return &Handler{
		Store:     store,
		Clock:     timeclock.NewClockService(store, store),
		Reader:    reader,
		Editor:    timeclock.NewSessionEditor(store),
		Calendars: payroll.NewCalendarService(store, options),
		Payroll:   payroll.NewAggregator(store, reader, store, store, store, options),
	}
}

// =============================================================================
// CLOCK SUBMISSION HANDLERS
// =============================================================================

// ClockIn submits a CLOCK_IN event.
// POST /api/timeclock/clock-in
func (h *Handler) ClockIn(w http.ResponseWriter, r *http.Request) {
	h.clock(w, r, timeclock.KindClockIn)
}

// ClockOut submits a CLOCK_OUT event.
// POST /api/timeclock/clock-out
func (h *Handler) ClockOut(w http.ResponseWriter, r *http.Request) {
	h.clock(w, r, timeclock.KindClockOut)
}

// StartBreak submits a BREAK_START event.
// POST /api/timeclock/break-start
func (h *Handler) StartBreak(w http.ResponseWriter, r *http.Request) {
	h.clock(w, r, timeclock.KindBreakStart)
}

// EndBreak submits a BREAK_END event.
// POST /api/timeclock/break-end
func (h *Handler) EndBreak(w http.ResponseWriter, r *http.Request) {
	h.clock(w, r, timeclock.KindBreakEnd)
}

func (h *Handler) clock(w http.ResponseWriter, r *http.Request, kind timeclock.EntryKind) {
	var req ClockEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var ts time.Time
	if req.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid timestamp format (use RFC3339)", err)
			return
		}
		ts = parsed.UTC()
	}

	correlationID := req.CorrelationID
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	ev, err := h.Clock.Clock(r.Context(), timeclock.ClockRequest{
		StaffNumber:       req.StaffNumber,
		StationID:         req.StationID,
		Kind:              kind,
		Timestamp:         ts,
		ShiftAssignmentID: req.ShiftAssignmentID,
		Reason:            req.Reason,
		GeoLocation:       req.GeoLocation,
		Manual:            req.Manual,
		Bypass:            req.Bypass,
		BypassReason:      req.BypassReason,
		PerformedBy:       req.PerformedBy,
		CorrelationID:     correlationID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toEventDTO(*ev))
}

// =============================================================================
// SESSION VIEW HANDLERS
// =============================================================================

// StaffSessions returns reconstructed sessions for one staff member. Accepts
// either ?date=YYYY-MM-DD or ?from=YYYY-MM-DD&to=YYYY-MM-DD; defaults to
// today when neither is given.
// GET /api/timeclock/staff/{staffNumber}/sessions
func (h *Handler) StaffSessions(w http.ResponseWriter, r *http.Request) {
	staffNumber := chi.URLParam(r, "staffNumber")

	if date := r.URL.Query().Get("date"); date != "" {
		day, err := timeclock.ParseDate(date)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		sessions, err := h.Reader.SessionsForDate(r.Context(), staffNumber, day)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSessionDTOs(sessions))
		return
	}

	from, to, err := parseRange(r, timeclock.Today(), timeclock.Today())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	sessions, err := h.Reader.SessionsForRange(r.Context(), staffNumber, from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionDTOs(sessions))
}

// AllStaffSessions returns every staff member's sessions in a range, paged.
// Without an explicit range it looks back ten years and ahead one, which in
// practice means "everything".
// GET /api/timeclock/sessions
func (h *Handler) AllStaffSessions(w http.ResponseWriter, r *http.Request) {
	today := timeclock.Today()
	from, to, err := parseRange(r, today.AddDays(-3650), today.AddDays(365))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	result, err := h.Reader.AllStaffSessions(r.Context(), from, to, page, pageSize)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SessionPageDTO{
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalCount: result.TotalCount,
		Items:      toSessionDTOs(result.Items),
	})
}

// EditSession reconciles a staff-day against an admin-supplied desired shape.
// PUT /api/timeclock/staff/{staffNumber}/sessions/{date}
func (h *Handler) EditSession(w http.ResponseWriter, r *http.Request) {
	staffNumber := chi.URLParam(r, "staffNumber")
	day, err := timeclock.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var req SessionEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	edit := timeclock.SessionEdit{
		StationID:         req.StationID,
		ShiftAssignmentID: req.ShiftAssignmentID,
		Manual:            true,
		Status:            req.Status,
		Reason:            req.Reason,
		CorrelationID:     req.CorrelationID,
	}
	if edit.ClockIn, err = parseTimePtr(req.ClockIn); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid clock_in timestamp", err)
		return
	}
	if edit.ClockOut, err = parseTimePtr(req.ClockOut); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid clock_out timestamp", err)
		return
	}
	for _, b := range req.Breaks {
		start, err := time.Parse(time.RFC3339, b.Start)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid break start timestamp", err)
			return
		}
		end, err := parseTimePtr(b.End)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid break end timestamp", err)
			return
		}
		edit.Breaks = append(edit.Breaks, timeclock.BreakEdit{Start: start.UTC(), End: end})
	}

	performedBy := req.PerformedBy
	if performedBy == "" {
		performedBy = "admin"
	}

	session, err := h.Editor.Apply(r.Context(), staffNumber, day, edit, performedBy)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionDTO(*session))
}

// =============================================================================
// RAW EVENT HANDLERS
// =============================================================================

// QueryEvents returns a filtered, paged raw event listing.
// GET /api/timeclock/events
func (h *Handler) QueryEvents(w http.ResponseWriter, r *http.Request) {
	q := timeclock.EventQuery{
		StaffNumber: r.URL.Query().Get("staff_number"),
		Kind:        timeclock.EntryKind(r.URL.Query().Get("entry_type")),
	}
	if q.Kind != "" && !q.Kind.Valid() {
		writeError(w, http.StatusBadRequest, "Unknown entry_type filter", nil)
		return
	}
	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from timestamp", err)
			return
		}
		u := t.UTC()
		q.From = &u
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to timestamp", err)
			return
		}
		u := t.UTC()
		q.To = &u
	}
	q.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	q.PageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))

	page, err := h.Store.QueryEvents(r.Context(), q)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, EventPageDTO{
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalCount: page.TotalCount,
		Items:      toEventDTOs(page.Items),
	})
}

// EditEvent patches one raw event. Requires a reason; leaves an audit record.
// PUT /api/timeclock/events/{id}
func (h *Handler) EditEvent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event id", err)
		return
	}

	var req EventEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Reason == "" {
		writeError(w, http.StatusBadRequest, "A reason is required for manual event edits", nil)
		return
	}

	ev, err := h.Store.EventByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	old := *ev
	if req.Timestamp != nil {
		t, err := time.Parse(time.RFC3339, *req.Timestamp)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid timestamp format (use RFC3339)", err)
			return
		}
		ev.Timestamp = t.UTC()
	}
	if req.StationID != nil {
		ev.StationID = *req.StationID
	}
	if req.Status != nil {
		ev.Status = *req.Status
	}

	performedBy := req.PerformedBy
	if performedBy == "" {
		performedBy = "admin"
	}
	now := time.Now().UTC()
	ev.Manual = true
	ev.ModifiedBy = performedBy
	ev.ModifiedReason = req.Reason
	ev.ModifiedAt = &now

	if err := h.Store.UpdateEvent(r.Context(), *ev); err != nil {
		writeDomainError(w, err)
		return
	}

	// Best-effort audit, same as the clock path.
	changes, _ := json.Marshal(map[string]any{
		"oldTimestamp": old.Timestamp,
		"newTimestamp": ev.Timestamp,
		"oldStationId": old.StationID,
		"newStationId": ev.StationID,
		"reason":       req.Reason,
	})
	_ = h.Store.AppendAudit(r.Context(), timeclock.AuditRecord{
		ID:          uuid.NewString(),
		TableName:   "TimeEvents",
		RecordID:    ev.ID,
		Action:      "ManualEventEdit",
		ChangesJSON: string(changes),
		PerformedBy: performedBy,
		PerformedAt: now,
	})

	writeJSON(w, http.StatusOK, toEventDTO(*ev))
}

// =============================================================================
// PAYROLL HANDLERS
// =============================================================================

// ListCalendars returns all pay calendars.
// GET /api/payroll/calendars
func (h *Handler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	cals, err := h.Calendars.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]PayCalendarDTO, len(cals))
	for i, cal := range cals {
		dtos[i] = toCalendarDTO(cal)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateCalendar opens a new pay period.
// POST /api/payroll/calendars
func (h *Handler) CreateCalendar(w http.ResponseWriter, r *http.Request) {
	var req CreateCalendarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	periodStart, err := timeclock.ParseDate(req.PeriodStart)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	payDate, err := timeclock.ParseDate(req.PayDate)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	cal, err := h.Calendars.Create(r.Context(), periodStart, payDate, req.CreatedBy)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCalendarDTO(*cal))
}

// GetCalendar returns one pay calendar.
// GET /api/payroll/calendars/{id}
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid calendar id", err)
		return
	}

	cal, err := h.Calendars.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCalendarDTO(*cal))
}

// CreateRun generates a payroll run for a calendar.
// POST /api/payroll/calendars/{id}/runs
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid calendar id", err)
		return
	}

	var req CreateRunRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}
	createdBy := req.CreatedBy
	if createdBy == "" {
		createdBy = "admin"
	}

	run, err := h.Payroll.CreateRun(r.Context(), id, createdBy)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toRunDTO(*run, true))
}

// RunsByCalendar returns the run history of one calendar.
// GET /api/payroll/calendars/{id}/runs
func (h *Handler) RunsByCalendar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid calendar id", err)
		return
	}

	runs, err := h.Store.RunsByCalendar(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]PayrollRunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toRunDTO(run, false)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListRuns returns all payroll runs, newest first.
// GET /api/payroll/runs
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Store.ListRuns(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]PayrollRunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toRunDTO(run, false)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetRun returns one payroll run with its line items.
// GET /api/payroll/runs/{id}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.Store.RunByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "Payroll run not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toRunDTO(*run, true))
}

// ListRates returns all pay rates.
// GET /api/payroll/rates
func (h *Handler) ListRates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.Store.ListRates(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]PayRateDTO, len(rates))
	for i, rate := range rates {
		dtos[i] = toRateDTO(rate)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateRate adds a new pay rate row.
// POST /api/payroll/rates
func (h *Handler) CreateRate(w http.ResponseWriter, r *http.Request) {
	var req CreateRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	contract, err := payroll.ParseContractType(req.ContractType)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	rateType := payroll.RateType(req.RateType)
	if rateType != payroll.RateRegular && rateType != payroll.RateOvertime {
		writeError(w, http.StatusBadRequest, "rate_type must be Regular or Overtime", nil)
		return
	}

	rate, err := decimal.NewFromString(req.HourlyRate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hourly_rate", err)
		return
	}
	if rate.IsNegative() {
		writeError(w, http.StatusBadRequest, "hourly_rate cannot be negative", nil)
		return
	}

	row := &payroll.PayRate{
		ContractType: contract,
		RateType:     rateType,
		HourlyRate:   rate,
		Active:       true,
		Description:  req.Description,
		CreatedBy:    req.CreatedBy,
	}
	if err := h.Store.SaveRate(r.Context(), row); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toRateDTO(*row))
}

// Health reports liveness.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain error classes onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case timeclock.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case timeclock.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, timeclock.ErrTransactionFailed):
		writeError(w, http.StatusConflict, "Session edit could not be applied", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func parseRange(r *http.Request, defaultFrom, defaultTo timeclock.Date) (timeclock.Date, timeclock.Date, error) {
	from, to := defaultFrom, defaultTo
	if s := r.URL.Query().Get("from"); s != "" {
		d, err := timeclock.ParseDate(s)
		if err != nil {
			return from, to, err
		}
		from = d
	}
	if s := r.URL.Query().Get("to"); s != "" {
		d, err := timeclock.ParseDate(s)
		if err != nil {
			return from, to, err
		}
		to = d
	}
	return from, to, nil
}

func parseTimePtr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, err
	}
	u := t.UTC()
	return &u, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}
