/*
reader.go - Store-backed session views

PURPOSE:
  Wraps the pure reconstruction in session.go with event-log reads. Every
  call recomputes from the ledger; there is no cursor state and no cache,
  so results are always restartable and never stale beyond the read itself.

CONSISTENCY:
  Reads are not snapshot-consistent against in-flight writes for the same
  staff; a concurrent clock submission may surface as an in-progress
  session. Acceptable, since views are re-derived fresh on every call.
*/
package timeclock

import (
	"context"
	"sort"
)

// SessionPage is one page of the all-staff session listing.
type SessionPage struct {
	Page       int
	PageSize   int
	TotalCount int64
	Items      []Session
}

// SessionReader reconstructs session views from the event ledger.
type SessionReader struct {
	Store EventStore
}

func NewSessionReader(store EventStore) *SessionReader {
	return &SessionReader{Store: store}
}

// SessionsForDate reconstructs one staff-day.
func (r *SessionReader) SessionsForDate(ctx context.Context, staffNumber string, day Date) ([]Session, error) {
	if staffNumber == "" {
		return nil, Invalidf("staff number is required")
	}
	events, err := r.Store.EventsByStaffDate(ctx, staffNumber, day)
	if err != nil {
		return nil, err
	}
	return BuildSessions(staffNumber, day, events), nil
}

// SessionsForRange reconstructs one staff member's sessions for every day in
// [from, to], swapping the bounds if they arrive reversed.
func (r *SessionReader) SessionsForRange(ctx context.Context, staffNumber string, from, to Date) ([]Session, error) {
	if staffNumber == "" {
		return nil, Invalidf("staff number is required")
	}
	if to.Before(from) {
		from, to = to, from
	}
	events, err := r.Store.EventsByStaffRange(ctx, staffNumber, from, to)
	if err != nil {
		return nil, err
	}

	byDay := make(map[Date][]TimeEvent)
	for _, e := range events {
		byDay[e.Day()] = append(byDay[e.Day()], e)
	}

	var sessions []Session
	for _, day := range DatesBetween(from, to) {
		dayEvents, ok := byDay[day]
		if !ok {
			continue
		}
		sessions = append(sessions, BuildSessions(staffNumber, day, dayEvents)...)
	}
	return sessions, nil
}

// AllStaffSessions reconstructs every staff member's sessions in [from, to],
// ordered by staff number then date, and returns the requested page.
func (r *SessionReader) AllStaffSessions(ctx context.Context, from, to Date, page, pageSize int) (SessionPage, error) {
	if to.Before(from) {
		from, to = to, from
	}
	events, err := r.Store.EventsInRange(ctx, from, to)
	if err != nil {
		return SessionPage{}, err
	}

	type staffDay struct {
		staffNumber string
		day         Date
	}
	grouped := make(map[staffDay][]TimeEvent)
	for _, e := range events {
		k := staffDay{staffNumber: e.StaffNumber, day: e.Day()}
		grouped[k] = append(grouped[k], e)
	}

	var all []Session
	for k, dayEvents := range grouped {
		all = append(all, BuildSessions(k.staffNumber, k.day, dayEvents)...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].StaffNumber != all[j].StaffNumber {
			return all[i].StaffNumber < all[j].StaffNumber
		}
		return all[i].Date.Before(all[j].Date)
	})

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}
	total := int64(len(all))
	start := (page - 1) * pageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}

	return SessionPage{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		Items:      all[start:end],
	}, nil
}
