package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmops/timeclock-engine/payroll"
	"github.com/farmops/timeclock-engine/store/sqlite"
	"github.com/farmops/timeclock-engine/timeclock"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

var day = timeclock.NewDate(2026, time.March, 9)

func eventAt(kind timeclock.EntryKind, hour, min int) *timeclock.TimeEvent {
	return &timeclock.TimeEvent{
		StaffNumber: "FW-1001",
		StationID:   1,
		Kind:        kind,
		Timestamp:   time.Date(day.Year, day.Month, day.Day, hour, min, 0, 0, time.UTC),
		Status:      "Open",
	}
}

// =============================================================================
// EVENT LEDGER TESTS
// =============================================================================

func TestEvents_AppendAndListOrdered(t *testing.T) {
	// GIVEN: Events inserted out of chronological order
	store := newTestStore(t)
	ctx := context.Background()

	for _, e := range []*timeclock.TimeEvent{
		eventAt(timeclock.KindClockOut, 16, 0),
		eventAt(timeclock.KindClockIn, 8, 0),
		eventAt(timeclock.KindBreakEnd, 12, 30),
		eventAt(timeclock.KindBreakStart, 12, 0),
	} {
		require.NoError(t, store.AppendEvent(ctx, e))
		assert.NotZero(t, e.ID, "append must fill the assigned id")
	}

	// THEN: The listing comes back in timestamp order
	events, err := store.EventsByStaffDate(ctx, "FW-1001", day)
	require.NoError(t, err)
	require.Len(t, events, 4)

	want := []timeclock.EntryKind{
		timeclock.KindClockIn, timeclock.KindBreakStart,
		timeclock.KindBreakEnd, timeclock.KindClockOut,
	}
	for i, k := range want {
		assert.Equal(t, k, events[i].Kind, "position %d", i)
	}
}

func TestEvents_KindTieBreakOnEqualTimestamps(t *testing.T) {
	// GIVEN: All four kinds sharing one timestamp, inserted backwards
	store := newTestStore(t)
	ctx := context.Background()

	for _, k := range []timeclock.EntryKind{
		timeclock.KindClockOut, timeclock.KindBreakEnd,
		timeclock.KindBreakStart, timeclock.KindClockIn,
	} {
		require.NoError(t, store.AppendEvent(ctx, eventAt(k, 8, 0)))
	}

	events, err := store.EventsByStaffDate(ctx, "FW-1001", day)
	require.NoError(t, err)
	require.Len(t, events, 4)

	// THEN: CLOCK_IN < BREAK_START < BREAK_END < CLOCK_OUT
	assert.Equal(t, timeclock.KindClockIn, events[0].Kind)
	assert.Equal(t, timeclock.KindBreakStart, events[1].Kind)
	assert.Equal(t, timeclock.KindBreakEnd, events[2].Kind)
	assert.Equal(t, timeclock.KindClockOut, events[3].Kind)
}

func TestEvents_DayBoundaries(t *testing.T) {
	// GIVEN: Events at 00:00, 23:59 and 00:00 the next day
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AppendEvent(ctx, eventAt(timeclock.KindClockIn, 0, 0)))
	require.NoError(t, store.AppendEvent(ctx, eventAt(timeclock.KindClockOut, 23, 59)))

	next := eventAt(timeclock.KindClockIn, 0, 0)
	next.Timestamp = next.Timestamp.AddDate(0, 0, 1)
	require.NoError(t, store.AppendEvent(ctx, next))

	events, err := store.EventsByStaffDate(ctx, "FW-1001", day)
	require.NoError(t, err)
	assert.Len(t, events, 2, "midnight of the next day belongs to the next day")
}

func TestEvents_UpdateDeleteRoundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ev := eventAt(timeclock.KindClockIn, 8, 0)
	require.NoError(t, store.AppendEvent(ctx, ev))

	ev.Timestamp = ev.Timestamp.Add(15 * time.Minute)
	ev.Manual = true
	ev.ModifiedBy = "admin"
	ev.ModifiedReason = "kiosk clock drift"
	now := time.Now().UTC()
	ev.ModifiedAt = &now
	require.NoError(t, store.UpdateEvent(ctx, *ev))

	got, err := store.EventByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.True(t, got.Manual)
	assert.Equal(t, "admin", got.ModifiedBy)
	assert.True(t, got.Timestamp.Equal(ev.Timestamp))

	require.NoError(t, store.DeleteEvent(ctx, ev.ID))
	_, err = store.EventByID(ctx, ev.ID)
	assert.True(t, timeclock.IsNotFound(err))
}

func TestEvents_UpdateDeleteMissing_NotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.UpdateEvent(ctx, timeclock.TimeEvent{ID: 999, Kind: timeclock.KindClockIn, StaffNumber: "x"})
	assert.True(t, timeclock.IsNotFound(err))

	err = store.DeleteEvent(ctx, 999)
	assert.True(t, timeclock.IsNotFound(err))
}

func TestQueryEvents_FiltersAndPaging(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AppendEvent(ctx, eventAt(timeclock.KindClockIn, 8, 0)))
	require.NoError(t, store.AppendEvent(ctx, eventAt(timeclock.KindClockOut, 16, 0)))
	other := eventAt(timeclock.KindClockIn, 9, 0)
	other.StaffNumber = "FW-2002"
	require.NoError(t, store.AppendEvent(ctx, other))

	// Staff filter
	page, err := store.QueryEvents(ctx, timeclock.EventQuery{StaffNumber: "FW-1001"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.TotalCount)

	// Kind filter
	page, err = store.QueryEvents(ctx, timeclock.EventQuery{Kind: timeclock.KindClockIn})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.TotalCount)

	// Newest first
	page, err = store.QueryEvents(ctx, timeclock.EventQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, timeclock.KindClockOut, page.Items[0].Kind)

	// Paging
	page, err = store.QueryEvents(ctx, timeclock.EventQuery{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Len(t, page.Items, 1)
	assert.EqualValues(t, 3, page.TotalCount)
}

// =============================================================================
// TRANSACTION TESTS
// =============================================================================

func TestWithTx_RollbackOnError(t *testing.T) {
	// GIVEN: A batch that appends an event and then fails
	store := newTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(tx timeclock.LedgerStore) error {
		if err := tx.AppendEvent(ctx, eventAt(timeclock.KindClockIn, 8, 0)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// THEN: Nothing was persisted
	events, err := store.EventsByStaffDate(ctx, "FW-1001", day)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestWithTx_CommitPersistsBatchAndAudit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx timeclock.LedgerStore) error {
		if err := tx.AppendEvent(ctx, eventAt(timeclock.KindClockIn, 8, 0)); err != nil {
			return err
		}
		if err := tx.AppendEvent(ctx, eventAt(timeclock.KindClockOut, 16, 0)); err != nil {
			return err
		}
		return tx.AppendAudit(ctx, timeclock.AuditRecord{
			ID: "audit-1", TableName: "TimeEvents", Action: "ManualSessionEdit",
			ChangesJSON: "{}", PerformedBy: "admin",
		})
	})
	require.NoError(t, err)

	events, err := store.EventsByStaffDate(ctx, "FW-1001", day)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	audits, err := store.AuditByTableRecord(ctx, "TimeEvents", 0)
	require.NoError(t, err)
	assert.Len(t, audits, 1)
}

func TestWithTx_ReadsSeeUncommittedWrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx timeclock.LedgerStore) error {
		if err := tx.AppendEvent(ctx, eventAt(timeclock.KindClockIn, 8, 0)); err != nil {
			return err
		}
		events, err := tx.EventsByStaffDate(ctx, "FW-1001", day)
		if err != nil {
			return err
		}
		if len(events) != 1 {
			t.Errorf("expected the in-transaction read to see 1 event, got %d", len(events))
		}
		return nil
	})
	require.NoError(t, err)
}

// =============================================================================
// STAFF AND ASSIGNMENT TESTS
// =============================================================================

func TestStaff_SaveAndLookup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	st := timeclock.Staff{
		StaffNumber: "FW-1001", FirstName: "Mele", LastName: "Tupou",
		ContractType: "FullTime", Active: true,
	}
	require.NoError(t, store.SaveStaff(ctx, st))

	got, err := store.StaffByNumber(ctx, "FW-1001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Mele", got.FirstName)

	missing, err := store.StaffByNumber(ctx, "FW-9999")
	require.NoError(t, err)
	assert.Nil(t, missing, "missing staff is nil, not an error")

	// Upsert: deactivating removes from the active roster
	st.Active = false
	require.NoError(t, store.SaveStaff(ctx, st))
	active, err := store.ActiveStaff(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestAssignments_Lifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := &timeclock.ShiftAssignment{StaffNumber: "FW-1001", Date: day, ShiftID: 2}
	require.NoError(t, store.CreateAssignment(ctx, a))
	require.NotZero(t, a.ID)

	onDay, err := store.AssignmentsByStaffDate(ctx, "FW-1001", day)
	require.NoError(t, err)
	require.Len(t, onDay, 1)

	otherDay, err := store.AssignmentsByStaffDate(ctx, "FW-1001", day.AddDays(1))
	require.NoError(t, err)
	assert.Empty(t, otherDay)

	at := day.Time().Add(16 * time.Hour)
	require.NoError(t, store.MarkAssignmentCompleted(ctx, a.ID, at))

	got, err := store.AssignmentByID(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, got.CompletedAt.Equal(at))

	err = store.MarkAssignmentCompleted(ctx, 999, at)
	assert.True(t, timeclock.IsNotFound(err))
}

// =============================================================================
// PAY RATE TESTS
// =============================================================================

func TestRates_ActiveRateSelection(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	old := &payroll.PayRate{
		ContractType: payroll.ContractCasual, RateType: payroll.RateRegular,
		HourlyRate:    decimal.NewFromFloat(30.00),
		EffectiveFrom: time.Now().UTC().AddDate(-1, 0, 0),
		Active:        true,
	}
	require.NoError(t, store.SaveRate(ctx, old))

	current := &payroll.PayRate{
		ContractType: payroll.ContractCasual, RateType: payroll.RateRegular,
		HourlyRate:    decimal.NewFromFloat(36.88),
		EffectiveFrom: time.Now().UTC().AddDate(0, -1, 0),
		Active:        true,
	}
	require.NoError(t, store.SaveRate(ctx, current))

	future := &payroll.PayRate{
		ContractType: payroll.ContractCasual, RateType: payroll.RateRegular,
		HourlyRate:    decimal.NewFromFloat(40.00),
		EffectiveFrom: time.Now().UTC().AddDate(0, 1, 0),
		Active:        true,
	}
	require.NoError(t, store.SaveRate(ctx, future))

	// THEN: The most recent effective rate that is already in force wins
	rate, err := store.ActiveRate(ctx, payroll.ContractCasual, payroll.RateRegular)
	require.NoError(t, err)
	require.NotNil(t, rate)
	assert.True(t, rate.HourlyRate.Equal(decimal.NewFromFloat(36.88)),
		"expected 36.88, got %s", rate.HourlyRate)

	// No rate configured for the combination: nil, not an error
	rate, err = store.ActiveRate(ctx, payroll.ContractPartTime, payroll.RateOvertime)
	require.NoError(t, err)
	assert.Nil(t, rate)
}

func TestRates_ExpiredAndInactiveExcluded(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	yearAgo := time.Now().UTC().AddDate(-1, 0, 0)
	monthAgo := time.Now().UTC().AddDate(0, -1, 0)

	expired := &payroll.PayRate{
		ContractType: payroll.ContractFullTime, RateType: payroll.RateRegular,
		HourlyRate:    decimal.NewFromFloat(25.00),
		EffectiveFrom: yearAgo, EffectiveTo: &monthAgo,
		Active: true,
	}
	require.NoError(t, store.SaveRate(ctx, expired))

	inactive := &payroll.PayRate{
		ContractType: payroll.ContractFullTime, RateType: payroll.RateRegular,
		HourlyRate:    decimal.NewFromFloat(28.00),
		EffectiveFrom: monthAgo,
		Active:        false,
	}
	require.NoError(t, store.SaveRate(ctx, inactive))

	rate, err := store.ActiveRate(ctx, payroll.ContractFullTime, payroll.RateRegular)
	require.NoError(t, err)
	assert.Nil(t, rate, "expired and inactive rates must not be selected")
}

// =============================================================================
// CALENDAR AND RUN TESTS
// =============================================================================

func TestCalendars_CreateAndOverlap(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cal := &payroll.PayCalendar{
		PeriodStart: day, PeriodEnd: day.AddDays(13), PayDate: day.AddDays(16),
		PayFrequency: "Fortnightly", Status: "Active",
	}
	require.NoError(t, store.CreateCalendar(ctx, cal))
	require.NotZero(t, cal.ID)

	got, err := store.CalendarByID(ctx, cal.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, cal.PeriodStart, got.PeriodStart)
	assert.Equal(t, cal.PeriodEnd, got.PeriodEnd)

	overlap, err := store.HasOverlappingCalendar(ctx, day.AddDays(10), day.AddDays(23))
	require.NoError(t, err)
	assert.True(t, overlap)

	overlap, err = store.HasOverlappingCalendar(ctx, day.AddDays(14), day.AddDays(27))
	require.NoError(t, err)
	assert.False(t, overlap)

	missing, err := store.CalendarByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRuns_CreateWithLineItemsAndReload(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cal := &payroll.PayCalendar{
		PeriodStart: day, PeriodEnd: day.AddDays(13), PayDate: day.AddDays(16),
		PayFrequency: "Fortnightly", Status: "Active",
	}
	require.NoError(t, store.CreateCalendar(ctx, cal))

	run := &payroll.PayrollRun{
		ID:            "run-1",
		PayCalendarID: cal.ID,
		RunNumber:     1,
		Status:        "Draft",
		CreatedBy:     "admin",
		StaffCount:    1,
		TotalLabourCost: decimal.NewFromFloat(481.85),
		TotalWorkHours:  decimal.NewFromFloat(16.3334),
		LineItems: []payroll.LineItem{{
			StaffNumber: "FW-1001", FirstName: "Mele", LastName: "Tupou",
			ContractType:      payroll.ContractFullTime,
			RegularHours:      decimal.NewFromFloat(16.3334),
			OvertimeHours:     decimal.Zero,
			TotalHours:        decimal.NewFromFloat(16.3334),
			RegularHourlyRate: decimal.NewFromFloat(29.50),
			GrossWages:        decimal.NewFromFloat(481.85),
			NetWages:          decimal.NewFromFloat(481.85),
		}},
	}
	require.NoError(t, store.CreateRun(ctx, run))
	assert.NotZero(t, run.LineItems[0].ID)

	got, err := store.RunByID(ctx, "run-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.LineItems, 1)
	assert.True(t, got.TotalLabourCost.Equal(decimal.NewFromFloat(481.85)))
	assert.True(t, got.LineItems[0].RegularHours.Equal(decimal.NewFromFloat(16.3334)))

	byCal, err := store.RunsByCalendar(ctx, cal.ID)
	require.NoError(t, err)
	assert.Len(t, byCal, 1)
}

func TestRuns_DuplicateRunNumber_Rejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cal := &payroll.PayCalendar{
		PeriodStart: day, PeriodEnd: day.AddDays(13), PayDate: day.AddDays(16),
		PayFrequency: "Fortnightly", Status: "Active",
	}
	require.NoError(t, store.CreateCalendar(ctx, cal))

	first := &payroll.PayrollRun{ID: "run-1", PayCalendarID: cal.ID, RunNumber: 1, Status: "Draft"}
	require.NoError(t, store.CreateRun(ctx, first))

	dup := &payroll.PayrollRun{ID: "run-2", PayCalendarID: cal.ID, RunNumber: 1, Status: "Draft"}
	err := store.CreateRun(ctx, dup)
	assert.True(t, timeclock.IsClientError(err), "expected unique-violation rejection, got %v", err)
}

// =============================================================================
// SEED TESTS
// =============================================================================

func TestSeedDefaults_Idempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SeedDefaults(ctx))
	rates, err := store.ListRates(ctx)
	require.NoError(t, err)
	firstCount := len(rates)
	assert.NotZero(t, firstCount)

	opts, err := store.LatestOptions(ctx)
	require.NoError(t, err)
	require.NotNil(t, opts)

	// Reseeding must not duplicate anything
	require.NoError(t, store.SeedDefaults(ctx))
	rates, err = store.ListRates(ctx)
	require.NoError(t, err)
	assert.Len(t, rates, firstCount)
}

func TestSeedDemoRoster_Idempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SeedDemoRoster(ctx))
	staff, err := store.ActiveStaff(ctx)
	require.NoError(t, err)
	firstCount := len(staff)
	assert.NotZero(t, firstCount)

	require.NoError(t, store.SeedDemoRoster(ctx))
	staff, err = store.ActiveStaff(ctx)
	require.NoError(t, err)
	assert.Len(t, staff, firstCount)
}
