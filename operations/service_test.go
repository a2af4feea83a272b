package operations

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-kit/kit/log"

	"github.com/soundline/ferryops/departure"
	"github.com/soundline/ferryops/ferry"
	"github.com/soundline/ferryops/inmem"
	"github.com/soundline/ferryops/notify"
	"github.com/soundline/ferryops/route"
	"github.com/soundline/ferryops/schedule"
	"github.com/soundline/ferryops/stats"
	"github.com/soundline/ferryops/traveler"
)

var date = time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)

// recordingSink collects emitted events.
type recordingSink struct {
	mu        sync.Mutex
	cancelled []notify.CancellationEvent
	delayed   []notify.DelayEvent
}

func (s *recordingSink) DepartureCancelled(d *departure.Departure, released []traveler.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = append(s.cancelled, notify.CancellationEvent{
		Departure: d.ID, Ferry: d.Ferry, Route: d.Route, Date: d.Date, Released: released,
	})
	return nil
}

func (s *recordingSink) DepartureDelayed(d *departure.Departure, minutes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delayed = append(s.delayed, notify.DelayEvent{
		Departure: d.ID, Ferry: d.Ferry, Route: d.Route, Date: d.Date,
		Minutes: minutes, NewTime: d.DepartureTime,
	})
	return nil
}

type fixture struct {
	departures departure.Repository
	ferries    ferry.Repository
	schedules  schedule.Repository
	travelers  traveler.Repository
	sink       *recordingSink
	stats      *stats.Mem
	s          Service
}

func setup(t *testing.T) *fixture {
	t.Helper()
	fx := &fixture{
		departures: inmem.NewDepartureRepository(),
		ferries:    inmem.NewFerryRepository(),
		schedules:  inmem.NewScheduleRepository(),
		travelers:  inmem.NewTravelerRepository(),
		sink:       &recordingSink{},
		stats:      stats.NewMem(),
	}
	fx.s = NewService(fx.departures, fx.ferries, fx.schedules, fx.travelers,
		departure.NewArena(), fx.sink, fx.stats, log.NewNopLogger())

	if err := fx.ferries.Store(ferry.New("F001", "MF Hammershus", 2)); err != nil {
		t.Fatalf("store ferry: %v", err)
	}
	for _, id := range []traveler.ID{"T-A", "T-B", "T-C", "T-D"} {
		if err := fx.travelers.Store(traveler.New(id, traveler.Passenger, "foot passenger")); err != nil {
			t.Fatalf("store traveler %s: %v", id, err)
		}
	}
	return fx
}

func (fx *fixture) storeDeparture(t *testing.T, id departure.ID, sched schedule.ID, f ferry.ID, r route.ID, hour, seq int) *departure.Departure {
	t.Helper()
	departs := time.Date(2024, time.June, 3, hour, 0, 0, 0, time.UTC)
	d, err := departure.New(id, sched, f, r, departs, departs.Add(80*time.Minute))
	if err != nil {
		t.Fatalf("new departure %s: %v", id, err)
	}
	d.Seq = seq
	if err := fx.departures.Store(d); err != nil {
		t.Fatalf("store departure %s: %v", id, err)
	}
	return d
}

func TestAttachUpToCapacity(t *testing.T) {
	fx := setup(t)
	fx.storeDeparture(t, "D001", "", "F001", "R001", 8, 1)

	if _, err := fx.s.Attach("D001", "T-A"); err != nil {
		t.Fatalf("attach A: %v", err)
	}
	if _, err := fx.s.Attach("D001", "T-B"); err != nil {
		t.Fatalf("attach B: %v", err)
	}
	if _, err := fx.s.Attach("D001", "T-C"); !errors.Is(err, departure.ErrOverBooked) {
		t.Fatalf("attach C: err = %v, want ErrOverBooked", err)
	}

	d, err := fx.departures.Find("D001")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if d.BookedCount() != 2 {
		t.Errorf("booked count = %d, want 2", d.BookedCount())
	}
	if _, err := fx.s.Attach("D001", "T-X"); !errors.Is(err, traveler.ErrUnknown) {
		t.Errorf("unknown traveler: err = %v, want traveler.ErrUnknown", err)
	}
	if _, err := fx.s.Attach("D404", "T-A"); !errors.Is(err, departure.ErrUnknown) {
		t.Errorf("unknown departure: err = %v, want departure.ErrUnknown", err)
	}
}

func TestDetach(t *testing.T) {
	fx := setup(t)
	fx.storeDeparture(t, "D001", "", "F001", "R001", 8, 1)
	if _, err := fx.s.Attach("D001", "T-A"); err != nil {
		t.Fatalf("attach: %v", err)
	}

	d, err := fx.s.Detach("D001", "T-A")
	if err != nil {
		t.Fatalf("detach: %v", err)
	}
	if d.BookedCount() != 0 {
		t.Errorf("booked count = %d, want 0", d.BookedCount())
	}
	if _, err := fx.s.Detach("D001", "T-A"); !errors.Is(err, departure.ErrNotBooked) {
		t.Errorf("detach again: err = %v, want ErrNotBooked", err)
	}
}

func TestUpdateDepartureAtomic(t *testing.T) {
	fx := setup(t)
	fx.storeDeparture(t, "D001", "", "F001", "R001", 8, 1)
	if _, err := fx.s.Attach("D001", "T-A"); err != nil {
		t.Fatalf("attach: %v", err)
	}

	// Swap T-A for T-B and T-C in one batch.
	d, err := fx.s.UpdateDeparture("D001", []traveler.ID{"T-B", "T-C"}, []traveler.ID{"T-A"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if d.BookedCount() != 2 || d.HasBooking("T-A") {
		t.Errorf("bookings after swap = %v", d.Bookings)
	}

	// T-D would exceed capacity; the earlier detach of T-B must roll back.
	if _, err := fx.s.UpdateDeparture("D001", []traveler.ID{"T-A", "T-D"}, []traveler.ID{"T-B"}); !errors.Is(err, departure.ErrOverBooked) {
		t.Fatalf("overbooked batch: err = %v, want ErrOverBooked", err)
	}
	d, err = fx.departures.Find("D001")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !d.HasBooking("T-B") || !d.HasBooking("T-C") || d.BookedCount() != 2 {
		t.Errorf("failed batch mutated bookings: %v", d.Bookings)
	}
}

func TestDelay(t *testing.T) {
	fx := setup(t)
	fx.storeDeparture(t, "D001", "", "F001", "R001", 8, 1)

	d, err := fx.s.Delay("F001", date, 1, 30)
	if err != nil {
		t.Fatalf("delay: %v", err)
	}
	if d.Status != departure.Delayed || d.DelayMinutes != 30 {
		t.Errorf("status = %v, delay = %d", d.Status, d.DelayMinutes)
	}
	if want := time.Date(2024, time.June, 3, 8, 30, 0, 0, time.UTC); !d.DepartureTime.Equal(want) {
		t.Errorf("departure time = %v, want %v", d.DepartureTime, want)
	}

	if fx.stats.Delays["R001"] != 1 || fx.stats.DelayMinutes["R001"] != 30 {
		t.Errorf("stats = %d delays / %d minutes", fx.stats.Delays["R001"], fx.stats.DelayMinutes["R001"])
	}
	if len(fx.sink.delayed) != 1 || fx.sink.delayed[0].Minutes != 30 {
		t.Errorf("delay events = %v", fx.sink.delayed)
	}

	if _, err := fx.s.Delay("F001", date, 1, 0); !errors.Is(err, departure.ErrInvalidDelay) {
		t.Errorf("zero minutes: err = %v, want ErrInvalidDelay", err)
	}
	if _, err := fx.s.Delay("F001", date, 9, 30); !errors.Is(err, departure.ErrUnknown) {
		t.Errorf("missing seq: err = %v, want departure.ErrUnknown", err)
	}
	if _, err := fx.s.Delay("F404", date, 1, 30); !errors.Is(err, ferry.ErrUnknown) {
		t.Errorf("unknown ferry: err = %v, want ferry.ErrUnknown", err)
	}
}

// connectLegs stores two schedules where the first leg connects to the
// second, and one materialized departure for each on the test date.
func (fx *fixture) connectLegs(t *testing.T) (first, second *departure.Departure) {
	t.Helper()
	if err := fx.ferries.Store(ferry.New("F002", "MF Povl Anker", 2)); err != nil {
		t.Fatalf("store ferry: %v", err)
	}
	s1 := schedule.New("S001", "R001", "F001", schedule.Timetable{}, time.Time{}, time.Time{})
	s1.ConnectsTo = "S002"
	s2 := schedule.New("S002", "R002", "F002", schedule.Timetable{}, time.Time{}, time.Time{})
	for _, s := range []*schedule.Schedule{s1, s2} {
		if err := fx.schedules.Store(s); err != nil {
			t.Fatalf("store schedule %s: %v", s.ID, err)
		}
	}
	first = fx.storeDeparture(t, "D001", "S001", "F001", "R001", 8, 1)
	second = fx.storeDeparture(t, "D002", "S002", "F002", "R002", 11, 1)
	return first, second
}

func TestDelayConcurrentOnConnectedLegs(t *testing.T) {
	fx := setup(t)
	fx.connectLegs(t)

	// Cascades starting on either leg of the chain must not block each
	// other indefinitely.
	var wg sync.WaitGroup
	for _, f := range []ferry.ID{"F001", "F002"} {
		wg.Add(1)
		go func(f ferry.ID) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				if _, err := fx.s.Delay(f, date, 1, 1); err != nil {
					t.Errorf("delay %s: %v", f, err)
					return
				}
			}
		}(f)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("concurrent delays did not finish")
	}
}

func TestDelayCascadesToConnectedLeg(t *testing.T) {
	fx := setup(t)
	fx.connectLegs(t)

	head, err := fx.s.Delay("F001", date, 1, 30)
	if err != nil {
		t.Fatalf("delay: %v", err)
	}
	if head.ID != "D001" {
		t.Fatalf("head = %s, want D001", head.ID)
	}

	for _, id := range []departure.ID{"D001", "D002"} {
		d, err := fx.departures.Find(id)
		if err != nil {
			t.Fatalf("find %s: %v", id, err)
		}
		if d.Status != departure.Delayed {
			t.Errorf("%s status = %v, want Delayed", id, d.Status)
		}
		if d.DelayMinutes != 30 {
			t.Errorf("%s delay = %d minutes, want 30", id, d.DelayMinutes)
		}
	}
	if want := time.Date(2024, time.June, 3, 11, 30, 0, 0, time.UTC); !mustFind(t, fx.departures, "D002").DepartureTime.Equal(want) {
		t.Errorf("second leg departure time = %v, want %v", mustFind(t, fx.departures, "D002").DepartureTime, want)
	}
	if len(fx.sink.delayed) != 2 {
		t.Errorf("delay events = %d, want 2", len(fx.sink.delayed))
	}
	if fx.stats.Delays["R001"] != 1 || fx.stats.Delays["R002"] != 1 {
		t.Errorf("per-route delays = %v", fx.stats.Delays)
	}
}

func TestCascadeStopsAtTerminalLeg(t *testing.T) {
	fx := setup(t)
	_, second := fx.connectLegs(t)
	if _, err := second.Cancel(); err != nil {
		t.Fatalf("cancel second leg: %v", err)
	}
	if err := fx.departures.Store(second); err != nil {
		t.Fatalf("store: %v", err)
	}

	head, err := fx.s.Delay("F001", date, 1, 20)
	if err != nil {
		t.Fatalf("delay: %v", err)
	}
	if head.Status != departure.Delayed {
		t.Errorf("first leg status = %v, want Delayed", head.Status)
	}
	d2 := mustFind(t, fx.departures, "D002")
	if d2.Status != departure.Cancelled || d2.DelayMinutes != 0 {
		t.Errorf("terminal leg mutated: status = %v, delay = %d", d2.Status, d2.DelayMinutes)
	}
}

func TestDelayTerminalDeparture(t *testing.T) {
	fx := setup(t)
	d := fx.storeDeparture(t, "D001", "", "F001", "R001", 8, 1)
	if _, err := d.Cancel(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := fx.departures.Store(d); err != nil {
		t.Fatalf("store: %v", err)
	}

	if _, err := fx.s.Delay("F001", date, 1, 30); !errors.Is(err, departure.ErrUnknown) {
		t.Errorf("delay cancelled departure: err = %v, want departure.ErrUnknown", err)
	}
}

func TestCancelDeparture(t *testing.T) {
	fx := setup(t)
	fx.storeDeparture(t, "D001", "", "F001", "R001", 8, 1)
	if _, err := fx.s.Attach("D001", "T-A"); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if _, err := fx.s.Attach("D001", "T-B"); err != nil {
		t.Fatalf("attach: %v", err)
	}

	if err := fx.s.CancelDeparture("D001"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	d := mustFind(t, fx.departures, "D001")
	if d.Status != departure.Cancelled || d.BookedCount() != 0 {
		t.Errorf("status = %v, booked = %d", d.Status, d.BookedCount())
	}
	if len(fx.sink.cancelled) != 1 || len(fx.sink.cancelled[0].Released) != 2 {
		t.Errorf("cancellation events = %v", fx.sink.cancelled)
	}
	if fx.stats.Cancellations["R001"] != 1 {
		t.Errorf("cancellations = %d, want 1", fx.stats.Cancellations["R001"])
	}

	if err := fx.s.CancelDeparture("D001"); !errors.Is(err, departure.ErrUnknown) {
		t.Errorf("cancel again: err = %v, want departure.ErrUnknown", err)
	}
}

func TestCancelSailings(t *testing.T) {
	fx := setup(t)
	first, _ := fx.connectLegs(t)
	fx.storeDeparture(t, "D003", "", "F001", "R001", 16, 2)

	if err := fx.s.CancelSailings("F001", date); err != nil {
		t.Fatalf("cancel sailings: %v", err)
	}

	for _, id := range []departure.ID{first.ID, "D002", "D003"} {
		if got := mustFind(t, fx.departures, id).Status; got != departure.Cancelled {
			t.Errorf("%s status = %v, want Cancelled", id, got)
		}
	}
	if len(fx.sink.cancelled) != 3 {
		t.Errorf("cancellation events = %d, want 3", len(fx.sink.cancelled))
	}

	if err := fx.s.CancelSailings("F001", date); !errors.Is(err, departure.ErrUnknown) {
		t.Errorf("cancel again: err = %v, want departure.ErrUnknown", err)
	}
	empty := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)
	if err := fx.s.CancelSailings("F001", empty); !errors.Is(err, departure.ErrUnknown) {
		t.Errorf("empty day: err = %v, want departure.ErrUnknown", err)
	}
}

func TestAttachCancelledDeparture(t *testing.T) {
	fx := setup(t)
	fx.storeDeparture(t, "D001", "", "F001", "R001", 8, 1)
	if err := fx.s.CancelDeparture("D001"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := fx.s.Attach("D001", "T-A"); !errors.Is(err, departure.ErrFinal) {
		t.Errorf("attach cancelled: err = %v, want ErrFinal", err)
	}
}

func mustFind(t *testing.T, repo departure.Repository, id departure.ID) *departure.Departure {
	t.Helper()
	d, err := repo.Find(id)
	if err != nil {
		t.Fatalf("find %s: %v", id, err)
	}
	return d
}
