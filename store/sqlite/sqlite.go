/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements all persistence interfaces using SQLite. In production, the same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  timeclock.TxStore:          Event ledger + audit sink + transactions
  timeclock.StaffDirectory:   Staff lookups
  timeclock.ShiftAssignments: Shift assignment resolution/completion
  payroll.RateStore:          Pay rate lookups
  payroll.CalendarStore:      Pay calendar persistence
  payroll.RunStore:           Payroll runs with atomic line items
  payroll.OptionsStore:       Payroll configuration rows

ORDERING:
  Every event listing orders by timestamp with the entry-kind tie-break
  (CLOCK_IN < BREAK_START < BREAK_END < CLOCK_OUT), then by id. The
  tie-break is expressed in SQL so readers never re-sort.

TIMESTAMPS:
  Stored as RFC3339 UTC text; calendar dates as YYYY-MM-DD text. Both
  compare correctly as strings, which the range queries rely on.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. Event helpers are parameterized by a
  dbtx so the transactional view reuses them against a live *sql.Tx without
  touching the mutex (the outer WithTx already holds the write lock).

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/timeclock.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  clock := timeclock.NewClockService(store, store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - timeclock/store.go: Ledger-side interface definitions
  - payroll/store.go: Payroll-side interface definitions
  - seed.go: Reference data for a fresh database
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/farmops/timeclock-engine/payroll"
	"github.com/farmops/timeclock-engine/timeclock"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// dbtx is the subset of *sql.DB and *sql.Tx the row helpers need, so the
// same code serves direct calls and transactional calls.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Time events (append-mostly ledger; updates/deletes only via reconciliation)
	CREATE TABLE IF NOT EXISTS time_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		staff_number TEXT NOT NULL,
		station_id INTEGER NOT NULL,
		shift_assignment_id INTEGER,
		kind TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		reason TEXT,
		geo_location TEXT,
		manual BOOLEAN NOT NULL DEFAULT FALSE,
		status TEXT,
		modified_by TEXT,
		modified_reason TEXT,
		modified_at TEXT,
		created_at TEXT NOT NULL
	);

	-- Hot path: per-staff per-day replay before every write
	CREATE INDEX IF NOT EXISTS idx_time_events_staff_ts
		ON time_events(staff_number, timestamp);
	CREATE INDEX IF NOT EXISTS idx_time_events_ts
		ON time_events(timestamp);
	CREATE INDEX IF NOT EXISTS idx_time_events_kind
		ON time_events(kind);

	-- Audit log (append-only)
	CREATE TABLE IF NOT EXISTS audit_log (
		id TEXT PRIMARY KEY,
		table_name TEXT NOT NULL,
		record_id INTEGER NOT NULL DEFAULT 0,
		action TEXT NOT NULL,
		changes_json TEXT,
		correlation_id TEXT,
		performed_by TEXT NOT NULL,
		performed_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_log_table_record
		ON audit_log(table_name, record_id);
	CREATE INDEX IF NOT EXISTS idx_audit_log_correlation
		ON audit_log(correlation_id) WHERE correlation_id IS NOT NULL;

	-- Staff directory
	CREATE TABLE IF NOT EXISTS staff (
		staff_number TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		contract_type TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE
	);

	-- Shift assignments
	CREATE TABLE IF NOT EXISTS shift_assignments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		staff_number TEXT NOT NULL,
		date TEXT NOT NULL,
		shift_id INTEGER NOT NULL,
		completed_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_shift_assignments_staff_date
		ON shift_assignments(staff_number, date);

	-- Pay rates (historical rows coexist; the active one wins)
	CREATE TABLE IF NOT EXISTS pay_rates (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		contract_type TEXT NOT NULL,
		rate_type TEXT NOT NULL,
		hourly_rate TEXT NOT NULL,
		effective_from TEXT NOT NULL,
		effective_to TEXT,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		description TEXT,
		created_at TEXT NOT NULL,
		created_by TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_pay_rates_lookup
		ON pay_rates(contract_type, rate_type, active);

	-- Payroll options (latest row wins; nil columns fall back to defaults)
	CREATE TABLE IF NOT EXISTS payroll_options (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		pay_frequency TEXT,
		period_days INTEGER,
		casual_overtime_threshold_hours INTEGER,
		paid_break_minutes INTEGER,
		created_at TEXT NOT NULL
	);

	-- Pay calendars
	CREATE TABLE IF NOT EXISTS pay_calendars (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		pay_date TEXT NOT NULL,
		pay_frequency TEXT NOT NULL,
		status TEXT NOT NULL,
		payroll_generated BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL,
		created_by TEXT,
		updated_at TEXT,
		updated_by TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_pay_calendars_period
		ON pay_calendars(period_start, period_end);

	-- Payroll runs (immutable once written)
	CREATE TABLE IF NOT EXISTS payroll_runs (
		id TEXT PRIMARY KEY,
		pay_calendar_id INTEGER NOT NULL,
		run_number INTEGER NOT NULL,
		total_labour_cost TEXT NOT NULL,
		total_work_hours TEXT NOT NULL,
		staff_count INTEGER NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		created_by TEXT,
		UNIQUE(pay_calendar_id, run_number)
	);

	CREATE INDEX IF NOT EXISTS idx_payroll_runs_calendar
		ON payroll_runs(pay_calendar_id);

	-- Payroll line items (snapshots; one per staff per run)
	CREATE TABLE IF NOT EXISTS payroll_line_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		staff_number TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		contract_type TEXT NOT NULL,
		regular_hours TEXT NOT NULL,
		overtime_hours TEXT NOT NULL,
		total_hours TEXT NOT NULL,
		regular_hourly_rate TEXT NOT NULL,
		overtime_hourly_rate TEXT NOT NULL,
		gross_wages TEXT NOT NULL,
		net_wages TEXT NOT NULL,
		notes TEXT,
		created_at TEXT NOT NULL,
		UNIQUE(run_id, staff_number)
	);

	CREATE INDEX IF NOT EXISTS idx_payroll_line_items_run
		ON payroll_line_items(run_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// kindOrder is the SQL expression for the same-timestamp tie-break. Must
// match timeclock's in-memory event ordering.
const kindOrder = `CASE kind
	WHEN 'CLOCK_IN' THEN 0
	WHEN 'BREAK_START' THEN 1
	WHEN 'BREAK_END' THEN 2
	ELSE 3
END`

const eventColumns = `id, staff_number, station_id, shift_assignment_id, kind, timestamp,
	reason, geo_location, manual, status, modified_by, modified_reason, modified_at, created_at`

// =============================================================================
// EVENT STORE (timeclock.EventStore interface)
// =============================================================================

// AppendEvent persists a new event and fills in its assigned ID.
func (s *Store) AppendEvent(ctx context.Context, ev *timeclock.TimeEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.appendEvent(ctx, s.db, ev)
}

func (s *Store) appendEvent(ctx context.Context, db dbtx, ev *timeclock.TimeEvent) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO time_events
		(staff_number, station_id, shift_assignment_id, kind, timestamp,
		 reason, geo_location, manual, status, modified_by, modified_reason, modified_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := db.ExecContext(ctx, query,
		ev.StaffNumber,
		ev.StationID,
		nullInt64(ev.ShiftAssignmentID),
		string(ev.Kind),
		ev.Timestamp.UTC().Format(time.RFC3339),
		nullString(ev.Reason),
		nullString(ev.GeoLocation),
		ev.Manual,
		nullString(ev.Status),
		nullString(ev.ModifiedBy),
		nullString(ev.ModifiedReason),
		nullTime(ev.ModifiedAt),
		ev.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	ev.ID, err = res.LastInsertId()
	return err
}

// UpdateEvent rewrites an existing event. Reconciliation-only.
func (s *Store) UpdateEvent(ctx context.Context, ev timeclock.TimeEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateEvent(ctx, s.db, ev)
}

func (s *Store) updateEvent(ctx context.Context, db dbtx, ev timeclock.TimeEvent) error {
	query := `
		UPDATE time_events SET
			staff_number = ?, station_id = ?, shift_assignment_id = ?, kind = ?,
			timestamp = ?, reason = ?, geo_location = ?, manual = ?, status = ?,
			modified_by = ?, modified_reason = ?, modified_at = ?
		WHERE id = ?
	`

	res, err := db.ExecContext(ctx, query,
		ev.StaffNumber,
		ev.StationID,
		nullInt64(ev.ShiftAssignmentID),
		string(ev.Kind),
		ev.Timestamp.UTC().Format(time.RFC3339),
		nullString(ev.Reason),
		nullString(ev.GeoLocation),
		ev.Manual,
		nullString(ev.Status),
		nullString(ev.ModifiedBy),
		nullString(ev.ModifiedReason),
		nullTime(ev.ModifiedAt),
		ev.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return timeclock.NotFoundf("time event", ev.ID)
	}
	return nil
}

// DeleteEvent removes an event. Reconciliation-only.
func (s *Store) DeleteEvent(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deleteEvent(ctx, s.db, id)
}

func (s *Store) deleteEvent(ctx context.Context, db dbtx, id int64) error {
	res, err := db.ExecContext(ctx, "DELETE FROM time_events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return timeclock.NotFoundf("time event", id)
	}
	return nil
}

// EventByID returns one event, or a NotFoundError.
func (s *Store) EventByID(ctx context.Context, id int64) (*timeclock.TimeEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.eventByID(ctx, s.db, id)
}

func (s *Store) eventByID(ctx context.Context, db dbtx, id int64) (*timeclock.TimeEvent, error) {
	events, err := s.queryEvents(ctx, db,
		"SELECT "+eventColumns+" FROM time_events WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, timeclock.NotFoundf("time event", id)
	}
	return &events[0], nil
}

// EventsByStaffDate returns the ordered events of one staff-day.
func (s *Store) EventsByStaffDate(ctx context.Context, staffNumber string, day timeclock.Date) ([]timeclock.TimeEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.eventsByStaffDate(ctx, s.db, staffNumber, day)
}

func (s *Store) eventsByStaffDate(ctx context.Context, db dbtx, staffNumber string, day timeclock.Date) ([]timeclock.TimeEvent, error) {
	return s.eventsByStaffRange(ctx, db, staffNumber, day, day)
}

// EventsByStaffRange returns ordered events for one staff across [from, to].
func (s *Store) EventsByStaffRange(ctx context.Context, staffNumber string, from, to timeclock.Date) ([]timeclock.TimeEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.eventsByStaffRange(ctx, s.db, staffNumber, from, to)
}

func (s *Store) eventsByStaffRange(ctx context.Context, db dbtx, staffNumber string, from, to timeclock.Date) ([]timeclock.TimeEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM time_events
		WHERE staff_number = ? AND timestamp >= ? AND timestamp < ?
		ORDER BY timestamp ASC, ` + kindOrder + ` ASC, id ASC
	`
	return s.queryEvents(ctx, db, query, staffNumber,
		from.Time().Format(time.RFC3339),
		to.AddDays(1).Time().Format(time.RFC3339))
}

// EventsInRange returns ordered events for all staff across [from, to],
// grouped by staff number first.
func (s *Store) EventsInRange(ctx context.Context, from, to timeclock.Date) ([]timeclock.TimeEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.eventsInRange(ctx, s.db, from, to)
}

func (s *Store) eventsInRange(ctx context.Context, db dbtx, from, to timeclock.Date) ([]timeclock.TimeEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM time_events
		WHERE timestamp >= ? AND timestamp < ?
		ORDER BY staff_number ASC, timestamp ASC, ` + kindOrder + ` ASC, id ASC
	`
	return s.queryEvents(ctx, db, query,
		from.Time().Format(time.RFC3339),
		to.AddDays(1).Time().Format(time.RFC3339))
}

// QueryEvents returns a filtered, paged event listing for administrative
// review. Newest first.
func (s *Store) QueryEvents(ctx context.Context, q timeclock.EventQuery) (timeclock.EventPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = 50
	}

	var where []string
	var args []any
	if q.StaffNumber != "" {
		where = append(where, "staff_number = ?")
		args = append(args, q.StaffNumber)
	}
	if q.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(q.Kind))
	}
	if q.From != nil {
		where = append(where, "timestamp >= ?")
		args = append(args, q.From.UTC().Format(time.RFC3339))
	}
	if q.To != nil {
		where = append(where, "timestamp <= ?")
		args = append(args, q.To.UTC().Format(time.RFC3339))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM time_events"+clause, args...,
	).Scan(&total); err != nil {
		return timeclock.EventPage{}, fmt.Errorf("failed to count events: %w", err)
	}

	query := "SELECT " + eventColumns + " FROM time_events" + clause +
		" ORDER BY timestamp DESC, " + kindOrder + " DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, pageSize, (page-1)*pageSize)

	items, err := s.queryEvents(ctx, s.db, query, args...)
	if err != nil {
		return timeclock.EventPage{}, err
	}

	return timeclock.EventPage{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		Items:      items,
	}, nil
}

func (s *Store) queryEvents(ctx context.Context, db dbtx, query string, args ...any) ([]timeclock.TimeEvent, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []timeclock.TimeEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	return events, rows.Err()
}

func scanEvent(rows *sql.Rows) (timeclock.TimeEvent, error) {
	var (
		ev                timeclock.TimeEvent
		shiftAssignmentID sql.NullInt64
		timestamp         string
		reason            sql.NullString
		geoLocation       sql.NullString
		status            sql.NullString
		modifiedBy        sql.NullString
		modifiedReason    sql.NullString
		modifiedAt        sql.NullString
		createdAt         string
		kind              string
	)

	err := rows.Scan(
		&ev.ID, &ev.StaffNumber, &ev.StationID, &shiftAssignmentID, &kind,
		&timestamp, &reason, &geoLocation, &ev.Manual, &status,
		&modifiedBy, &modifiedReason, &modifiedAt, &createdAt,
	)
	if err != nil {
		return ev, fmt.Errorf("failed to scan event: %w", err)
	}

	ev.Kind = timeclock.EntryKind(kind)
	if shiftAssignmentID.Valid {
		id := shiftAssignmentID.Int64
		ev.ShiftAssignmentID = &id
	}
	ev.Timestamp, _ = time.Parse(time.RFC3339, timestamp)
	ev.Reason = reason.String
	ev.GeoLocation = geoLocation.String
	ev.Status = status.String
	ev.ModifiedBy = modifiedBy.String
	ev.ModifiedReason = modifiedReason.String
	if modifiedAt.Valid {
		t, _ := time.Parse(time.RFC3339, modifiedAt.String)
		ev.ModifiedAt = &t
	}
	ev.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return ev, nil
}

// =============================================================================
// AUDIT LOG (timeclock.AuditLog interface)
// =============================================================================

// AppendAudit persists a structured change record.
func (s *Store) AppendAudit(ctx context.Context, rec timeclock.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.appendAudit(ctx, s.db, rec)
}

func (s *Store) appendAudit(ctx context.Context, db dbtx, rec timeclock.AuditRecord) error {
	if rec.PerformedAt.IsZero() {
		rec.PerformedAt = time.Now().UTC()
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO audit_log
		(id, table_name, record_id, action, changes_json, correlation_id, performed_by, performed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.TableName,
		rec.RecordID,
		rec.Action,
		nullString(rec.ChangesJSON),
		nullString(rec.CorrelationID),
		rec.PerformedBy,
		rec.PerformedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}
	return nil
}

// AuditByTableRecord returns the audit trail of one record, newest first.
func (s *Store) AuditByTableRecord(ctx context.Context, tableName string, recordID int64) ([]timeclock.AuditRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, table_name, record_id, action, changes_json, correlation_id, performed_by, performed_at
		FROM audit_log
		WHERE table_name = ? AND record_id = ?
		ORDER BY performed_at DESC
	`, tableName, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []timeclock.AuditRecord
	for rows.Next() {
		var (
			rec           timeclock.AuditRecord
			changesJSON   sql.NullString
			correlationID sql.NullString
			performedAt   string
		)
		if err := rows.Scan(
			&rec.ID, &rec.TableName, &rec.RecordID, &rec.Action,
			&changesJSON, &correlationID, &rec.PerformedBy, &performedAt,
		); err != nil {
			return nil, err
		}
		rec.ChangesJSON = changesJSON.String
		rec.CorrelationID = correlationID.String
		rec.PerformedAt, _ = time.Parse(time.RFC3339, performedAt)
		recs = append(recs, rec)
	}

	return recs, rows.Err()
}

// =============================================================================
// TRANSACTIONAL STORE (timeclock.TxStore interface)
// =============================================================================

// WithTx executes fn within a database transaction. The LedgerStore handed
// to fn runs against the live transaction; an error rolls everything back.
func (s *Store) WithTx(ctx context.Context, fn func(timeclock.LedgerStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&ledgerTx{tx: sqlTx, parent: s}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// ledgerTx is the transactional view. It delegates to the dbtx-parameterized
// helpers directly; the parent's mutex is already held by WithTx.
type ledgerTx struct {
	tx     *sql.Tx
	parent *Store
}

func (t *ledgerTx) AppendEvent(ctx context.Context, ev *timeclock.TimeEvent) error {
	return t.parent.appendEvent(ctx, t.tx, ev)
}

func (t *ledgerTx) UpdateEvent(ctx context.Context, ev timeclock.TimeEvent) error {
	return t.parent.updateEvent(ctx, t.tx, ev)
}

func (t *ledgerTx) DeleteEvent(ctx context.Context, id int64) error {
	return t.parent.deleteEvent(ctx, t.tx, id)
}

func (t *ledgerTx) EventByID(ctx context.Context, id int64) (*timeclock.TimeEvent, error) {
	return t.parent.eventByID(ctx, t.tx, id)
}

func (t *ledgerTx) EventsByStaffDate(ctx context.Context, staffNumber string, day timeclock.Date) ([]timeclock.TimeEvent, error) {
	return t.parent.eventsByStaffDate(ctx, t.tx, staffNumber, day)
}

func (t *ledgerTx) EventsByStaffRange(ctx context.Context, staffNumber string, from, to timeclock.Date) ([]timeclock.TimeEvent, error) {
	return t.parent.eventsByStaffRange(ctx, t.tx, staffNumber, from, to)
}

func (t *ledgerTx) EventsInRange(ctx context.Context, from, to timeclock.Date) ([]timeclock.TimeEvent, error) {
	return t.parent.eventsInRange(ctx, t.tx, from, to)
}

func (t *ledgerTx) QueryEvents(ctx context.Context, q timeclock.EventQuery) (timeclock.EventPage, error) {
	// Paged admin listings have no business inside a reconciliation batch.
	return timeclock.EventPage{}, timeclock.Invalidf("paged event queries are not supported inside a transaction")
}

func (t *ledgerTx) AppendAudit(ctx context.Context, rec timeclock.AuditRecord) error {
	return t.parent.appendAudit(ctx, t.tx, rec)
}

// =============================================================================
// STAFF DIRECTORY (timeclock.StaffDirectory interface)
// =============================================================================

// StaffByNumber returns one staff record, or nil when it does not exist.
func (s *Store) StaffByNumber(ctx context.Context, staffNumber string) (*timeclock.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st timeclock.Staff
	err := s.db.QueryRowContext(ctx,
		"SELECT staff_number, first_name, last_name, contract_type, active FROM staff WHERE staff_number = ?",
		staffNumber,
	).Scan(&st.StaffNumber, &st.FirstName, &st.LastName, &st.ContractType, &st.Active)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// ActiveStaff returns all active staff ordered by staff number.
func (s *Store) ActiveStaff(ctx context.Context) ([]timeclock.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT staff_number, first_name, last_name, contract_type, active FROM staff WHERE active ORDER BY staff_number",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var staff []timeclock.Staff
	for rows.Next() {
		var st timeclock.Staff
		if err := rows.Scan(&st.StaffNumber, &st.FirstName, &st.LastName, &st.ContractType, &st.Active); err != nil {
			return nil, err
		}
		staff = append(staff, st)
	}

	return staff, rows.Err()
}

// SaveStaff inserts or updates a staff record.
func (s *Store) SaveStaff(ctx context.Context, st timeclock.Staff) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO staff (staff_number, first_name, last_name, contract_type, active)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(staff_number) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			contract_type = excluded.contract_type,
			active = excluded.active
	`, st.StaffNumber, st.FirstName, st.LastName, st.ContractType, st.Active)
	return err
}

// =============================================================================
// SHIFT ASSIGNMENTS (timeclock.ShiftAssignments interface)
// =============================================================================

// AssignmentsByStaffDate returns a staff member's assignments on one day.
func (s *Store) AssignmentsByStaffDate(ctx context.Context, staffNumber string, day timeclock.Date) ([]timeclock.ShiftAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, staff_number, date, shift_id, completed_at
		FROM shift_assignments
		WHERE staff_number = ? AND date = ?
		ORDER BY id
	`, staffNumber, day.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []timeclock.ShiftAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}

	return assignments, rows.Err()
}

// AssignmentByID returns one assignment, or nil when it does not exist.
func (s *Store) AssignmentByID(ctx context.Context, id int64) (*timeclock.ShiftAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, staff_number, date, shift_id, completed_at FROM shift_assignments WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	a, err := scanAssignment(rows)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// MarkAssignmentCompleted stamps the completion time of an assignment.
func (s *Store) MarkAssignmentCompleted(ctx context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE shift_assignments SET completed_at = ? WHERE id = ?",
		at.UTC().Format(time.RFC3339), id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return timeclock.NotFoundf("shift assignment", id)
	}
	return nil
}

// CreateAssignment inserts a shift assignment and fills in its assigned ID.
func (s *Store) CreateAssignment(ctx context.Context, a *timeclock.ShiftAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO shift_assignments (staff_number, date, shift_id, completed_at)
		VALUES (?, ?, ?, ?)
	`, a.StaffNumber, a.Date.String(), a.ShiftID, nullTime(a.CompletedAt))
	if err != nil {
		return err
	}

	a.ID, err = res.LastInsertId()
	return err
}

func scanAssignment(rows *sql.Rows) (timeclock.ShiftAssignment, error) {
	var (
		a           timeclock.ShiftAssignment
		date        string
		completedAt sql.NullString
	)
	if err := rows.Scan(&a.ID, &a.StaffNumber, &date, &a.ShiftID, &completedAt); err != nil {
		return a, err
	}

	d, err := timeclock.ParseDate(date)
	if err != nil {
		return a, err
	}
	a.Date = d
	if completedAt.Valid {
		t, _ := time.Parse(time.RFC3339, completedAt.String)
		a.CompletedAt = &t
	}
	return a, nil
}

// =============================================================================
// PAY RATES (payroll.RateStore interface)
// =============================================================================

// ActiveRate returns the currently active rate for the combination, or nil
// when none exists. Most recent effective_from wins.
func (s *Store) ActiveRate(ctx context.Context, contract payroll.ContractType, rateType payroll.RateType) (*payroll.PayRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now().UTC().Format(time.RFC3339)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, contract_type, rate_type, hourly_rate, effective_from, effective_to,
		       active, description, created_at, created_by
		FROM pay_rates
		WHERE contract_type = ? AND rate_type = ? AND active
		  AND effective_from <= ?
		  AND (effective_to IS NULL OR effective_to >= ?)
		ORDER BY effective_from DESC
		LIMIT 1
	`, string(contract), string(rateType), now, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	r, err := scanRate(rows)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRates returns all pay rates, newest first.
func (s *Store) ListRates(ctx context.Context) ([]payroll.PayRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, contract_type, rate_type, hourly_rate, effective_from, effective_to,
		       active, description, created_at, created_by
		FROM pay_rates
		ORDER BY effective_from DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rates []payroll.PayRate
	for rows.Next() {
		r, err := scanRate(rows)
		if err != nil {
			return nil, err
		}
		rates = append(rates, r)
	}

	return rates, rows.Err()
}

// SaveRate inserts a pay rate and fills in its assigned ID.
func (s *Store) SaveRate(ctx context.Context, rate *payroll.PayRate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rate.CreatedAt.IsZero() {
		rate.CreatedAt = time.Now().UTC()
	}
	if rate.EffectiveFrom.IsZero() {
		rate.EffectiveFrom = rate.CreatedAt
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO pay_rates
		(contract_type, rate_type, hourly_rate, effective_from, effective_to,
		 active, description, created_at, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		string(rate.ContractType),
		string(rate.RateType),
		rate.HourlyRate.String(),
		rate.EffectiveFrom.UTC().Format(time.RFC3339),
		nullTime(rate.EffectiveTo),
		rate.Active,
		nullString(rate.Description),
		rate.CreatedAt.Format(time.RFC3339),
		nullString(rate.CreatedBy),
	)
	if err != nil {
		return err
	}

	rate.ID, err = res.LastInsertId()
	return err
}

func scanRate(rows *sql.Rows) (payroll.PayRate, error) {
	var (
		r             payroll.PayRate
		contractType  string
		rateType      string
		hourlyRate    string
		effectiveFrom string
		effectiveTo   sql.NullString
		description   sql.NullString
		createdAt     string
		createdBy     sql.NullString
	)
	if err := rows.Scan(
		&r.ID, &contractType, &rateType, &hourlyRate, &effectiveFrom, &effectiveTo,
		&r.Active, &description, &createdAt, &createdBy,
	); err != nil {
		return r, err
	}

	r.ContractType = payroll.ContractType(contractType)
	r.RateType = payroll.RateType(rateType)
	rate, err := decimal.NewFromString(hourlyRate)
	if err != nil {
		return r, fmt.Errorf("invalid stored hourly rate %q: %w", hourlyRate, err)
	}
	r.HourlyRate = rate
	r.EffectiveFrom, _ = time.Parse(time.RFC3339, effectiveFrom)
	if effectiveTo.Valid {
		t, _ := time.Parse(time.RFC3339, effectiveTo.String)
		r.EffectiveTo = &t
	}
	r.Description = description.String
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	r.CreatedBy = createdBy.String
	return r, nil
}

// =============================================================================
// PAYROLL OPTIONS (payroll.OptionsStore interface)
// =============================================================================

// LatestOptions returns the most recent configuration row, or nil when none
// exists.
func (s *Store) LatestOptions(ctx context.Context) (*payroll.StoredOptions, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		opts         payroll.StoredOptions
		payFrequency sql.NullString
		periodDays   sql.NullInt64
		threshold    sql.NullInt64
		paidBreak    sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT pay_frequency, period_days, casual_overtime_threshold_hours, paid_break_minutes
		FROM payroll_options
		ORDER BY id DESC
		LIMIT 1
	`).Scan(&payFrequency, &periodDays, &threshold, &paidBreak)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if payFrequency.Valid {
		v := payFrequency.String
		opts.PayFrequency = &v
	}
	if periodDays.Valid {
		v := int(periodDays.Int64)
		opts.PeriodDays = &v
	}
	if threshold.Valid {
		v := int(threshold.Int64)
		opts.CasualOvertimeThresholdHours = &v
	}
	if paidBreak.Valid {
		v := int(paidBreak.Int64)
		opts.PaidBreakMinutes = &v
	}
	return &opts, nil
}

// SaveOptions appends a new configuration row. The latest row wins.
func (s *Store) SaveOptions(ctx context.Context, opts payroll.StoredOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payroll_options
		(pay_frequency, period_days, casual_overtime_threshold_hours, paid_break_minutes, created_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		nullStringPtr(opts.PayFrequency),
		nullIntPtr(opts.PeriodDays),
		nullIntPtr(opts.CasualOvertimeThresholdHours),
		nullIntPtr(opts.PaidBreakMinutes),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// =============================================================================
// PAY CALENDARS (payroll.CalendarStore interface)
// =============================================================================

const calendarSelect = `
	SELECT id, period_start, period_end, pay_date, pay_frequency, status,
	       payroll_generated, created_at, created_by, updated_at, updated_by
	FROM pay_calendars`

// CalendarByID returns one pay calendar, or nil when it does not exist.
func (s *Store) CalendarByID(ctx context.Context, id int64) (*payroll.PayCalendar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, calendarSelect+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	cal, err := scanCalendar(rows)
	if err != nil {
		return nil, err
	}
	return &cal, nil
}

// ListCalendars returns all pay calendars, most recent period first.
func (s *Store) ListCalendars(ctx context.Context) ([]payroll.PayCalendar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, calendarSelect+" ORDER BY period_start DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cals []payroll.PayCalendar
	for rows.Next() {
		cal, err := scanCalendar(rows)
		if err != nil {
			return nil, err
		}
		cals = append(cals, cal)
	}

	return cals, rows.Err()
}

// CreateCalendar inserts a pay calendar and fills in its assigned ID.
func (s *Store) CreateCalendar(ctx context.Context, cal *payroll.PayCalendar) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cal.CreatedAt.IsZero() {
		cal.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO pay_calendars
		(period_start, period_end, pay_date, pay_frequency, status,
		 payroll_generated, created_at, created_by, updated_at, updated_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		cal.PeriodStart.String(),
		cal.PeriodEnd.String(),
		cal.PayDate.String(),
		cal.PayFrequency,
		cal.Status,
		cal.PayrollGenerated,
		cal.CreatedAt.Format(time.RFC3339),
		nullString(cal.CreatedBy),
		nullTime(cal.UpdatedAt),
		nullString(cal.UpdatedBy),
	)
	if err != nil {
		return err
	}

	cal.ID, err = res.LastInsertId()
	return err
}

// UpdateCalendar rewrites a pay calendar.
func (s *Store) UpdateCalendar(ctx context.Context, cal payroll.PayCalendar) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE pay_calendars SET
			period_start = ?, period_end = ?, pay_date = ?, pay_frequency = ?,
			status = ?, payroll_generated = ?, updated_at = ?, updated_by = ?
		WHERE id = ?
	`,
		cal.PeriodStart.String(),
		cal.PeriodEnd.String(),
		cal.PayDate.String(),
		cal.PayFrequency,
		cal.Status,
		cal.PayrollGenerated,
		nullTime(cal.UpdatedAt),
		nullString(cal.UpdatedBy),
		cal.ID,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return timeclock.NotFoundf("pay calendar", cal.ID)
	}
	return nil
}

// HasOverlappingCalendar reports whether any calendar's period intersects
// [start, end].
func (s *Store) HasOverlappingCalendar(ctx context.Context, start, end timeclock.Date) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM pay_calendars
		WHERE period_start <= ? AND period_end >= ?
	`, end.String(), start.String()).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func scanCalendar(rows *sql.Rows) (payroll.PayCalendar, error) {
	var (
		cal         payroll.PayCalendar
		periodStart string
		periodEnd   string
		payDate     string
		createdAt   string
		createdBy   sql.NullString
		updatedAt   sql.NullString
		updatedBy   sql.NullString
	)
	if err := rows.Scan(
		&cal.ID, &periodStart, &periodEnd, &payDate, &cal.PayFrequency, &cal.Status,
		&cal.PayrollGenerated, &createdAt, &createdBy, &updatedAt, &updatedBy,
	); err != nil {
		return cal, err
	}

	var err error
	if cal.PeriodStart, err = timeclock.ParseDate(periodStart); err != nil {
		return cal, err
	}
	if cal.PeriodEnd, err = timeclock.ParseDate(periodEnd); err != nil {
		return cal, err
	}
	if cal.PayDate, err = timeclock.ParseDate(payDate); err != nil {
		return cal, err
	}
	cal.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	cal.CreatedBy = createdBy.String
	if updatedAt.Valid {
		t, _ := time.Parse(time.RFC3339, updatedAt.String)
		cal.UpdatedAt = &t
	}
	cal.UpdatedBy = updatedBy.String
	return cal, nil
}

// =============================================================================
// PAYROLL RUNS (payroll.RunStore interface)
// =============================================================================

// CreateRun writes a run and its line items in one transaction.
func (s *Store) CreateRun(ctx context.Context, run *payroll.PayrollRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err = sqlTx.ExecContext(ctx, `
		INSERT INTO payroll_runs
		(id, pay_calendar_id, run_number, total_labour_cost, total_work_hours,
		 staff_count, status, created_at, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.PayCalendarID,
		run.RunNumber,
		run.TotalLabourCost.String(),
		run.TotalWorkHours.String(),
		run.StaffCount,
		run.Status,
		run.CreatedAt.Format(time.RFC3339),
		nullString(run.CreatedBy),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return timeclock.Invalidf("payroll run %d already exists for pay calendar %d",
				run.RunNumber, run.PayCalendarID)
		}
		return fmt.Errorf("failed to create payroll run: %w", err)
	}

	for i := range run.LineItems {
		li := &run.LineItems[i]
		li.RunID = run.ID
		if li.CreatedAt.IsZero() {
			li.CreatedAt = run.CreatedAt
		}

		res, err := sqlTx.ExecContext(ctx, `
			INSERT INTO payroll_line_items
			(run_id, staff_number, first_name, last_name, contract_type,
			 regular_hours, overtime_hours, total_hours,
			 regular_hourly_rate, overtime_hourly_rate,
			 gross_wages, net_wages, notes, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			li.RunID,
			li.StaffNumber,
			li.FirstName,
			li.LastName,
			string(li.ContractType),
			li.RegularHours.String(),
			li.OvertimeHours.String(),
			li.TotalHours.String(),
			li.RegularHourlyRate.String(),
			li.OvertimeHourlyRate.String(),
			li.GrossWages.String(),
			li.NetWages.String(),
			nullString(li.Notes),
			li.CreatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("failed to create line item for staff %s: %w", li.StaffNumber, err)
		}
		li.ID, _ = res.LastInsertId()
	}

	return sqlTx.Commit()
}

const runSelect = `
	SELECT id, pay_calendar_id, run_number, total_labour_cost, total_work_hours,
	       staff_count, status, created_at, created_by
	FROM payroll_runs`

// RunByID returns one run with its line items, or nil when it does not exist.
func (s *Store) RunByID(ctx context.Context, id string) (*payroll.PayrollRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs, err := s.queryRuns(ctx, runSelect+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}

	run := runs[0]
	if run.LineItems, err = s.lineItemsByRun(ctx, run.ID); err != nil {
		return nil, err
	}
	return &run, nil
}

// RunsByCalendar returns a calendar's runs ordered by run number. Line items
// are not loaded.
func (s *Store) RunsByCalendar(ctx context.Context, calendarID int64) ([]payroll.PayrollRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRuns(ctx, runSelect+" WHERE pay_calendar_id = ? ORDER BY run_number", calendarID)
}

// ListRuns returns all runs, newest first. Line items are not loaded.
func (s *Store) ListRuns(ctx context.Context) ([]payroll.PayrollRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRuns(ctx, runSelect+" ORDER BY created_at DESC, run_number DESC")
}

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]payroll.PayrollRun, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []payroll.PayrollRun
	for rows.Next() {
		var (
			run       payroll.PayrollRun
			cost      string
			hours     string
			createdAt string
			createdBy sql.NullString
		)
		if err := rows.Scan(
			&run.ID, &run.PayCalendarID, &run.RunNumber, &cost, &hours,
			&run.StaffCount, &run.Status, &createdAt, &createdBy,
		); err != nil {
			return nil, err
		}

		if run.TotalLabourCost, err = decimal.NewFromString(cost); err != nil {
			return nil, fmt.Errorf("invalid stored labour cost %q: %w", cost, err)
		}
		if run.TotalWorkHours, err = decimal.NewFromString(hours); err != nil {
			return nil, fmt.Errorf("invalid stored work hours %q: %w", hours, err)
		}
		run.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		run.CreatedBy = createdBy.String
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func (s *Store) lineItemsByRun(ctx context.Context, runID string) ([]payroll.LineItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, staff_number, first_name, last_name, contract_type,
		       regular_hours, overtime_hours, total_hours,
		       regular_hourly_rate, overtime_hourly_rate,
		       gross_wages, net_wages, notes, created_at
		FROM payroll_line_items
		WHERE run_id = ?
		ORDER BY staff_number
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []payroll.LineItem
	for rows.Next() {
		var (
			li           payroll.LineItem
			contractType string
			decimals     [7]string
			notes        sql.NullString
			createdAt    string
		)
		if err := rows.Scan(
			&li.ID, &li.RunID, &li.StaffNumber, &li.FirstName, &li.LastName, &contractType,
			&decimals[0], &decimals[1], &decimals[2], &decimals[3], &decimals[4],
			&decimals[5], &decimals[6], &notes, &createdAt,
		); err != nil {
			return nil, err
		}

		li.ContractType = payroll.ContractType(contractType)
		targets := []*decimal.Decimal{
			&li.RegularHours, &li.OvertimeHours, &li.TotalHours,
			&li.RegularHourlyRate, &li.OvertimeHourlyRate,
			&li.GrossWages, &li.NetWages,
		}
		for i, target := range targets {
			d, err := decimal.NewFromString(decimals[i])
			if err != nil {
				return nil, fmt.Errorf("invalid stored decimal %q: %w", decimals[i], err)
			}
			*target = d
		}
		li.Notes = notes.String
		li.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		items = append(items, li)
	}

	return items, rows.Err()
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt64(n *int64) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *n, Valid: true}
}

func nullIntPtr(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
