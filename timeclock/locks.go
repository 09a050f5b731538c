package timeclock

import "sync"

// staffLocks is a process-wide table of per-staff-number mutexes. Locks are
// created on demand and never torn down: the staff population is bounded, so
// the table's growth is an accepted leak. In a multi-instance deployment this
// provides no cross-instance exclusion; that is a known limitation, to be
// replaced with a distributed lock or a conditional insert if cross-instance
// correctness is ever required.
type staffLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newStaffLocks() *staffLocks {
	return &staffLocks{locks: make(map[string]*sync.Mutex)}
}

// get returns the mutex for a staff key, creating it on first use. Unrelated
// staff are never serialized against each other.
func (l *staffLocks) get(staffNumber string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[staffNumber]
	if !ok {
		m = &sync.Mutex{}
		l.locks[staffNumber] = m
	}
	return m
}
