package departure

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/soundline/ferryops/traveler"
)

// Concurrent attach attempts through the arena must never push the booked
// count past capacity.
func TestArenaSerializesAttach(t *testing.T) {
	arena := NewArena()
	d, err := New("D001", "S001", "F001", "R001",
		time.Date(2024, time.June, 3, 8, 30, 0, 0, time.UTC),
		time.Date(2024, time.June, 3, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	const (
		capacity = 10
		workers  = 50
	)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := traveler.ID(fmt.Sprintf("T%02d", n))
			arena.Lock(d.ID)
			d.Attach(id, capacity)
			arena.Unlock(d.ID)
		}(i)
	}
	wg.Wait()

	if d.BookedCount() != capacity {
		t.Errorf("booked count = %d, want %d", d.BookedCount(), capacity)
	}
}

func TestArenaEvictsIdleLocks(t *testing.T) {
	arena := NewArena()

	arena.Lock("D001")
	arena.Lock("D002")
	arena.Unlock("D002")
	arena.Unlock("D001")

	arena.mu.Lock()
	n := len(arena.locks)
	arena.mu.Unlock()
	if n != 0 {
		t.Errorf("arena still holds %d lock entries after release", n)
	}
}

func TestArenaIndependentDepartures(t *testing.T) {
	arena := NewArena()
	done := make(chan struct{})

	arena.Lock("D001")
	go func() {
		arena.Lock("D002")
		arena.Unlock("D002")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on one departure blocked another departure")
	}
	arena.Unlock("D001")
}
