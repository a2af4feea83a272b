package catalog

import (
	"errors"
	"testing"
	"time"

	"github.com/soundline/ferryops/departure"
	"github.com/soundline/ferryops/ferry"
	"github.com/soundline/ferryops/harbour"
	"github.com/soundline/ferryops/inmem"
	"github.com/soundline/ferryops/route"
	"github.com/soundline/ferryops/schedule"
	"github.com/soundline/ferryops/traveler"
)

type fixture struct {
	ferries    ferry.Repository
	routes     route.Repository
	travelers  traveler.Repository
	schedules  schedule.Repository
	departures departure.Repository
	s          Service
}

func setup() *fixture {
	f := &fixture{
		ferries:    inmem.NewFerryRepository(),
		routes:     inmem.NewRouteRepository(),
		travelers:  inmem.NewTravelerRepository(),
		schedules:  inmem.NewScheduleRepository(),
		departures: inmem.NewDepartureRepository(),
	}
	f.s = NewService(f.ferries, inmem.NewHarbourRepository(), f.routes, f.travelers, f.schedules, f.departures)
	return f
}

func storedDeparture(t *testing.T, repo departure.Repository, f ferry.ID) *departure.Departure {
	t.Helper()
	d, err := departure.New("D001", "", f, "R001",
		time.Date(2024, time.June, 3, 8, 30, 0, 0, time.UTC),
		time.Date(2024, time.June, 3, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("new departure: %v", err)
	}
	if err := repo.Store(d); err != nil {
		t.Fatalf("store departure: %v", err)
	}
	return d
}

func TestAddFerry(t *testing.T) {
	fx := setup()

	if err := fx.s.AddFerry(ferry.New("F001", "MF Hammershus", 720)); err != nil {
		t.Fatalf("add ferry: %v", err)
	}
	if err := fx.s.AddFerry(ferry.New("F001", "MF Povl Anker", 1500)); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate id: err = %v, want ErrDuplicate", err)
	}
	if err := fx.s.AddFerry(ferry.New("", "Nameless", 100)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty id: err = %v, want ErrInvalidArgument", err)
	}
	if err := fx.s.AddFerry(ferry.New("F002", "MF Leonora", 0)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("zero capacity: err = %v, want ErrInvalidArgument", err)
	}

	got, err := fx.s.FindFerry("F001")
	if err != nil {
		t.Fatalf("find ferry: %v", err)
	}
	if got.Name != "MF Hammershus" {
		t.Errorf("name = %q, want %q", got.Name, "MF Hammershus")
	}
}

func TestDeleteFerry(t *testing.T) {
	fx := setup()
	if err := fx.s.AddFerry(ferry.New("F001", "MF Hammershus", 720)); err != nil {
		t.Fatalf("add ferry: %v", err)
	}
	d := storedDeparture(t, fx.departures, "F001")

	if err := fx.s.DeleteFerry("F001"); !errors.Is(err, ErrFerryInUse) {
		t.Fatalf("delete with live departure: err = %v, want ErrFerryInUse", err)
	}

	if _, err := d.Cancel(); err != nil {
		t.Fatalf("cancel departure: %v", err)
	}
	if err := fx.departures.Store(d); err != nil {
		t.Fatalf("store departure: %v", err)
	}
	if err := fx.s.DeleteFerry("F001"); err != nil {
		t.Fatalf("delete after cancel: %v", err)
	}
	if _, err := fx.s.FindFerry("F001"); !errors.Is(err, ferry.ErrUnknown) {
		t.Errorf("find deleted: err = %v, want ferry.ErrUnknown", err)
	}

	if err := fx.s.DeleteFerry("F404"); !errors.Is(err, ferry.ErrUnknown) {
		t.Errorf("delete unknown: err = %v, want ferry.ErrUnknown", err)
	}
}

func TestUpdateCapacity(t *testing.T) {
	fx := setup()
	if err := fx.s.AddFerry(ferry.New("F001", "MF Hammershus", 10)); err != nil {
		t.Fatalf("add ferry: %v", err)
	}
	d := storedDeparture(t, fx.departures, "F001")
	for _, id := range []traveler.ID{"T-A", "T-B", "T-C"} {
		if err := d.Attach(id, 10); err != nil {
			t.Fatalf("attach %s: %v", id, err)
		}
	}
	if err := fx.departures.Store(d); err != nil {
		t.Fatalf("store departure: %v", err)
	}

	if _, err := fx.s.UpdateCapacity("F001", 2); !errors.Is(err, ErrCapacityBelowBooked) {
		t.Fatalf("shrink below booked: err = %v, want ErrCapacityBelowBooked", err)
	}
	f, err := fx.s.UpdateCapacity("F001", 3)
	if err != nil {
		t.Fatalf("shrink to booked count: %v", err)
	}
	if f.Capacity != 3 {
		t.Errorf("capacity = %d, want 3", f.Capacity)
	}
	if _, err := fx.s.UpdateCapacity("F001", 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("zero capacity: err = %v, want ErrInvalidArgument", err)
	}
}

func TestAddRoute(t *testing.T) {
	fx := setup()

	r, err := fx.s.AddRoute("R001", harbour.DKRNN, harbour.SEYST, 249)
	if err != nil {
		t.Fatalf("add route: %v", err)
	}
	if r.Origin != harbour.DKRNN || r.Destination != harbour.SEYST {
		t.Errorf("route endpoints = %s->%s", r.Origin, r.Destination)
	}

	if _, err := fx.s.AddRoute("R001", harbour.DKRNN, harbour.SEYST, 249); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate id: err = %v, want ErrDuplicate", err)
	}
	if _, err := fx.s.AddRoute("R002", "XXABC", harbour.SEYST, 249); !errors.Is(err, harbour.ErrUnknown) {
		t.Errorf("unknown origin: err = %v, want harbour.ErrUnknown", err)
	}
	if _, err := fx.s.AddRoute("R003", harbour.DKRNN, harbour.DKRNN, 249); !errors.Is(err, route.ErrSameHarbour) {
		t.Errorf("same harbour: err = %v, want route.ErrSameHarbour", err)
	}
	if _, err := fx.s.AddRoute("R004", harbour.DKRNN, harbour.SEYST, -1); !errors.Is(err, route.ErrNegativePrice) {
		t.Errorf("negative price: err = %v, want route.ErrNegativePrice", err)
	}
}

func TestDeleteRoute(t *testing.T) {
	fx := setup()
	if _, err := fx.s.AddRoute("R001", harbour.DKRNN, harbour.SEYST, 249); err != nil {
		t.Fatalf("add route: %v", err)
	}
	sched := schedule.New("S001", "R001", "F001", schedule.Timetable{}, time.Time{}, time.Time{})
	if err := fx.schedules.Store(sched); err != nil {
		t.Fatalf("store schedule: %v", err)
	}

	if err := fx.s.DeleteRoute("R001"); !errors.Is(err, ErrRouteInUse) {
		t.Fatalf("delete referenced route: err = %v, want ErrRouteInUse", err)
	}
	if err := fx.schedules.Delete("S001"); err != nil {
		t.Fatalf("delete schedule: %v", err)
	}

	// An ad-hoc departure holds the route without an owning schedule.
	d := storedDeparture(t, fx.departures, "F001")
	if err := fx.s.DeleteRoute("R001"); !errors.Is(err, ErrRouteInUse) {
		t.Fatalf("delete with ad-hoc departure: err = %v, want ErrRouteInUse", err)
	}
	if _, err := d.Cancel(); err != nil {
		t.Fatalf("cancel departure: %v", err)
	}
	if err := fx.departures.Store(d); err != nil {
		t.Fatalf("store departure: %v", err)
	}

	if err := fx.s.DeleteRoute("R001"); err != nil {
		t.Fatalf("delete route: %v", err)
	}
}

func TestUpdatePrice(t *testing.T) {
	fx := setup()
	if _, err := fx.s.AddRoute("R001", harbour.DKRNN, harbour.SEYST, 249); err != nil {
		t.Fatalf("add route: %v", err)
	}
	r, err := fx.s.UpdatePrice("R001", 199)
	if err != nil {
		t.Fatalf("update price: %v", err)
	}
	if r.BasePrice != 199 {
		t.Errorf("price = %v, want 199", r.BasePrice)
	}
	if _, err := fx.s.UpdatePrice("R001", -10); !errors.Is(err, route.ErrNegativePrice) {
		t.Errorf("negative price: err = %v, want route.ErrNegativePrice", err)
	}
	if _, err := fx.s.UpdatePrice("R404", 100); !errors.Is(err, route.ErrUnknown) {
		t.Errorf("unknown route: err = %v, want route.ErrUnknown", err)
	}
}

func TestDeleteTraveler(t *testing.T) {
	fx := setup()
	if err := fx.s.AddTraveler(traveler.New("T-A", traveler.Passenger, "foot passenger")); err != nil {
		t.Fatalf("add traveler: %v", err)
	}
	d := storedDeparture(t, fx.departures, "F001")
	if err := d.Attach("T-A", 10); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := fx.departures.Store(d); err != nil {
		t.Fatalf("store departure: %v", err)
	}

	if err := fx.s.DeleteTraveler("T-A"); !errors.Is(err, ErrTravelerInUse) {
		t.Fatalf("delete with live booking: err = %v, want ErrTravelerInUse", err)
	}
	if err := d.Detach("T-A"); err != nil {
		t.Fatalf("detach: %v", err)
	}
	if err := fx.departures.Store(d); err != nil {
		t.Fatalf("store departure: %v", err)
	}
	if err := fx.s.DeleteTraveler("T-A"); err != nil {
		t.Fatalf("delete traveler: %v", err)
	}
}

func TestHarbours(t *testing.T) {
	fx := setup()
	hs, err := fx.s.Harbours()
	if err != nil {
		t.Fatalf("harbours: %v", err)
	}
	if len(hs) == 0 {
		t.Error("no sample harbours loaded")
	}
}
