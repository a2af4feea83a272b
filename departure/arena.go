package departure

import "sync"

// Arena hands out one exclusive critical section per departure identifier.
// At most one mutation is in flight per departure at a time; mutations on
// distinct departures proceed independently. Entries are reference-counted
// and dropped once the last holder or waiter releases them, so the map does
// not accumulate locks for departures that are no longer touched.
type Arena struct {
	mu    sync.Mutex
	locks map[ID]*arenaLock
}

type arenaLock struct {
	mu   sync.Mutex
	refs int
}

// NewArena creates an empty arena
func NewArena() *Arena {
	return &Arena{locks: make(map[ID]*arenaLock)}
}

// Lock acquires the critical section for the departure, creating it on
// first use
func (a *Arena) Lock(id ID) {
	a.mu.Lock()
	l, ok := a.locks[id]
	if !ok {
		l = &arenaLock{}
		a.locks[id] = l
	}
	l.refs++
	a.mu.Unlock()
	l.mu.Lock()
}

// Unlock releases the critical section for the departure
func (a *Arena) Unlock(id ID) {
	a.mu.Lock()
	l, ok := a.locks[id]
	if !ok {
		a.mu.Unlock()
		return
	}
	l.refs--
	if l.refs == 0 {
		delete(a.locks, id)
	}
	a.mu.Unlock()
	l.mu.Unlock()
}
