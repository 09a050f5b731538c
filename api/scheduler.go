/*
scheduler.go - Automated payroll generation scheduler

PURPOSE:
  Periodically checks for pay calendars whose period has ended without a
  generated payroll and creates the run automatically.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Detects active calendars where today is past the period end
  - Skips calendars already flagged payroll-generated
  - The aggregator records the run; failures are logged and retried on the
    next tick

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewPayrollScheduler(store, handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: CreateRun endpoint (manual generation)
  - payroll/aggregator.go: Run creation
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/farmops/timeclock-engine/store/sqlite"
	"github.com/farmops/timeclock-engine/timeclock"
)

// PayrollScheduler handles automated payroll generation for completed pay
// periods.
type PayrollScheduler struct {
	Store         *sqlite.Store
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewPayrollScheduler creates a new scheduler.
func NewPayrollScheduler(store *sqlite.Store, handler *Handler) *PayrollScheduler {
	return &PayrollScheduler{
		Store:         store,
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (ps *PayrollScheduler) Start() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if !ps.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	ps.ticker = time.NewTicker(ps.CheckInterval)
	ps.wg.Add(1)

	go ps.run()

	log.Printf("[Scheduler] Started with check interval: %v", ps.CheckInterval)
}

// Stop stops the scheduler.
func (ps *PayrollScheduler) Stop() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.ticker != nil {
		ps.ticker.Stop()
		close(ps.stop)
		ps.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (ps *PayrollScheduler) run() {
	defer ps.wg.Done()

	// Run immediately on start
	ps.checkAndProcess()

	for {
		select {
		case <-ps.ticker.C:
			ps.checkAndProcess()
		case <-ps.stop:
			return
		}
	}
}

func (ps *PayrollScheduler) checkAndProcess() {
	ctx := context.Background()
	today := timeclock.Today()

	cals, err := ps.Store.ListCalendars(ctx)
	if err != nil {
		log.Printf("[Scheduler] Failed to list pay calendars: %v", err)
		return
	}

	for _, cal := range cals {
		if cal.PayrollGenerated || cal.Status != "Active" {
			continue
		}
		if today.Before(cal.PeriodEnd) {
			continue
		}

		log.Printf("[Scheduler] Generating payroll for calendar %d (%s - %s)",
			cal.ID, cal.PeriodStart, cal.PeriodEnd)
		if _, err := ps.Handler.Payroll.CreateRun(ctx, cal.ID, "system"); err != nil {
			// Retried on the next tick.
			log.Printf("[Scheduler] Failed to generate payroll for calendar %d: %v", cal.ID, err)
		}
	}
}
