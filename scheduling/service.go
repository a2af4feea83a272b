// Package scheduling implements the schedule registry and the departure
// tracker: recurring schedules, their validation, and the materialization
// of concrete departures.
package scheduling

import (
	"errors"
	"time"

	"github.com/soundline/ferryops/departure"
	"github.com/soundline/ferryops/ferry"
	"github.com/soundline/ferryops/route"
	"github.com/soundline/ferryops/schedule"
)

// ErrInvalidArgument is returned when one or more arguments are invalid.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrDuplicate is returned when a schedule identifier is already in use.
var ErrDuplicate = errors.New("schedule identifier already in use")

// ErrFerryRetired is returned when a schedule references a retired ferry.
var ErrFerryRetired = errors.New("ferry is retired")

// ErrOutsideWindow is returned when a date falls outside a schedule's
// validity window.
var ErrOutsideWindow = errors.New("date is outside the schedule's validity window")

// ErrNoSailing is returned when a schedule has no sailing on the date's
// weekday.
var ErrNoSailing = errors.New("schedule has no sailing on that date")

// ErrConnectionCycle is returned when a schedule's connecting legs would
// form a cycle. Cascades follow ConnectsTo chains under hand-over-hand
// locks, so chains must stay acyclic.
var ErrConnectionCycle = errors.New("connecting legs form a cycle")

// Canceller cancels a single departure, releasing its bookings and
// propagating to connected departures. It is implemented by the operations
// service.
type Canceller interface {
	CancelDeparture(id departure.ID) error
}

// Service is the administrative interface for schedules and departures.
type Service interface {
	AddSchedule(s *schedule.Schedule) error
	UpdateSchedule(s *schedule.Schedule) (*schedule.Schedule, error)
	DeleteSchedule(id schedule.ID) error
	Schedules() ([]*schedule.Schedule, error)

	// SchedulesForDate returns the schedules sailing on the date. It fails
	// with schedule.ErrUnknown when none match, preserving the behavior of
	// the administrative contract.
	SchedulesForDate(date time.Time) ([]*schedule.Schedule, error)

	// Materialize creates the departure generated by the schedule on the
	// date. Re-materializing an already-materialized pair returns the
	// existing departure.
	Materialize(id schedule.ID, date time.Time) (*departure.Departure, error)

	// CreateAdHoc creates a departure outside any schedule.
	CreateAdHoc(f ferry.ID, r route.ID, departs time.Time, crossing time.Duration) (*departure.Departure, error)

	FindDeparture(id departure.ID) (*departure.Departure, error)

	// DeparturesForDate returns all departures on the date. Unlike
	// SchedulesForDate it returns an empty slice on an empty day; this is a
	// deliberate deviation from the contract's not-found behavior.
	DeparturesForDate(date time.Time) ([]*departure.Departure, error)

	// SailingsFor returns a ferry's departures on the date in sequence order.
	SailingsFor(f ferry.ID, date time.Time) ([]*departure.Departure, error)
}

type service struct {
	schedules  schedule.Repository
	departures departure.Repository
	ferries    ferry.Repository
	routes     route.Repository
	canceller  Canceller

	// arena serializes departure creation: one key per (schedule, date)
	// pair so materialization stays idempotent under concurrency, and one
	// per (ferry, date) so sequence numbers stay unique.
	arena *departure.Arena
}

// NewService creates a scheduling service with the necessary dependencies.
func NewService(schedules schedule.Repository, departures departure.Repository,
	ferries ferry.Repository, routes route.Repository, canceller Canceller) Service {
	return &service{
		schedules:  schedules,
		departures: departures,
		ferries:    ferries,
		routes:     routes,
		canceller:  canceller,
		arena:      departure.NewArena(),
	}
}

func materializeKey(id schedule.ID, date time.Time) departure.ID {
	return departure.ID("schedule/" + string(id) + "/" + departure.DateOf(date).Format("2006-01-02"))
}

func sailingsKey(f ferry.ID, date time.Time) departure.ID {
	return departure.ID("ferry/" + string(f) + "/" + departure.DateOf(date).Format("2006-01-02"))
}

func (s *service) validate(sched *schedule.Schedule) error {
	if sched == nil || sched.ID == "" {
		return ErrInvalidArgument
	}
	if !sched.Timetable.Valid() {
		return ErrInvalidArgument
	}
	if sched.ValidTo.Before(sched.ValidFrom) {
		return ErrInvalidArgument
	}
	if _, err := s.routes.Find(sched.Route); err != nil {
		return err
	}
	f, err := s.ferries.Find(sched.Ferry)
	if err != nil {
		return err
	}
	if f.Status == ferry.Retired {
		return ErrFerryRetired
	}
	if sched.ConnectsTo != "" {
		if err := s.checkConnection(sched); err != nil {
			return err
		}
	}
	return nil
}

// checkConnection verifies that every schedule on the ConnectsTo chain
// exists and that the chain never returns to a schedule already seen,
// counting the schedule under validation itself.
func (s *service) checkConnection(sched *schedule.Schedule) error {
	seen := map[schedule.ID]bool{sched.ID: true}
	next := sched.ConnectsTo
	for next != "" {
		if seen[next] {
			return ErrConnectionCycle
		}
		seen[next] = true
		downstream, err := s.schedules.Find(next)
		if err != nil {
			return err
		}
		next = downstream.ConnectsTo
	}
	return nil
}

func (s *service) AddSchedule(sched *schedule.Schedule) error {
	if err := s.validate(sched); err != nil {
		return err
	}
	if _, err := s.schedules.Find(sched.ID); err == nil {
		return ErrDuplicate
	} else if !errors.Is(err, schedule.ErrUnknown) {
		return err
	}
	return s.schedules.Store(sched)
}

// UpdateSchedule re-validates the schedule and replaces the stored one in a
// single store call: either every changed field commits or none do.
func (s *service) UpdateSchedule(sched *schedule.Schedule) (*schedule.Schedule, error) {
	if sched == nil || sched.ID == "" {
		return nil, ErrInvalidArgument
	}
	if _, err := s.schedules.Find(sched.ID); err != nil {
		return nil, err
	}
	if err := s.validate(sched); err != nil {
		return nil, err
	}
	if err := s.schedules.Store(sched); err != nil {
		return nil, err
	}
	return sched, nil
}

// DeleteSchedule removes the schedule and cancels every future, non-started
// departure it generated. Departures that have already sailed, or that are
// already terminal, keep their booking history.
func (s *service) DeleteSchedule(id schedule.ID) error {
	if id == "" {
		return ErrInvalidArgument
	}
	if _, err := s.schedules.Find(id); err != nil {
		return err
	}
	departures, err := s.departures.FindBySchedule(id)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, d := range departures {
		if d.Status.Final() || d.DepartureTime.Before(now) {
			continue
		}
		if err := s.canceller.CancelDeparture(d.ID); err != nil {
			return err
		}
	}
	return s.schedules.Delete(id)
}

func (s *service) Schedules() ([]*schedule.Schedule, error) {
	return s.schedules.FindAll()
}

func (s *service) SchedulesForDate(date time.Time) ([]*schedule.Schedule, error) {
	all, err := s.schedules.FindAll()
	if err != nil {
		return nil, err
	}
	var matches []*schedule.Schedule
	for _, sched := range all {
		if sched.SailsOn(date) {
			matches = append(matches, sched)
		}
	}
	if len(matches) == 0 {
		return nil, schedule.ErrUnknown
	}
	return matches, nil
}

func (s *service) Materialize(id schedule.ID, date time.Time) (*departure.Departure, error) {
	sched, err := s.schedules.Find(id)
	if err != nil {
		return nil, err
	}
	if !sched.WithinWindow(date) {
		return nil, ErrOutsideWindow
	}
	if !sched.Timetable.SailsOn(date) {
		return nil, ErrNoSailing
	}

	// Hold the pair's critical section from the existence check through the
	// store so a concurrent Materialize for the same pair sees the winner.
	key := materializeKey(id, date)
	s.arena.Lock(key)
	defer s.arena.Unlock(key)

	if existing, err := s.departures.FindByScheduleDate(id, date); err == nil {
		return existing, nil
	} else if !errors.Is(err, departure.ErrUnknown) {
		return nil, err
	}
	f, err := s.ferries.Find(sched.Ferry)
	if err != nil {
		return nil, err
	}
	if f.Status == ferry.Retired {
		return nil, ErrFerryRetired
	}
	departs := sched.Timetable.Sailing.On(date)
	d, err := departure.New(departure.NextID(), id, sched.Ferry, sched.Route, departs, departs.Add(sched.Timetable.Crossing))
	if err != nil {
		return nil, err
	}
	if err := s.sequenceAndStore(d); err != nil {
		return nil, err
	}
	return d, nil
}

// sequenceAndStore assigns the departure its sequence number and persists
// it, serialized per (ferry, date) so concurrent creations cannot claim the
// same sequence.
func (s *service) sequenceAndStore(d *departure.Departure) error {
	key := sailingsKey(d.Ferry, d.Date)
	s.arena.Lock(key)
	defer s.arena.Unlock(key)
	if err := s.assignSeq(d); err != nil {
		return err
	}
	return s.departures.Store(d)
}

func (s *service) CreateAdHoc(f ferry.ID, r route.ID, departs time.Time, crossing time.Duration) (*departure.Departure, error) {
	if crossing <= 0 {
		return nil, ErrInvalidArgument
	}
	fer, err := s.ferries.Find(f)
	if err != nil {
		return nil, err
	}
	if fer.Status == ferry.Retired {
		return nil, ErrFerryRetired
	}
	if _, err := s.routes.Find(r); err != nil {
		return nil, err
	}
	d, err := departure.New(departure.NextID(), "", f, r, departs, departs.Add(crossing))
	if err != nil {
		return nil, err
	}
	if err := s.sequenceAndStore(d); err != nil {
		return nil, err
	}
	return d, nil
}

// assignSeq gives the departure its position among the ferry's sailings on
// its date.
func (s *service) assignSeq(d *departure.Departure) error {
	sailings, err := s.departures.FindByFerryDate(d.Ferry, d.Date)
	if err != nil {
		return err
	}
	seq := 0
	for _, existing := range sailings {
		if existing.Seq > seq {
			seq = existing.Seq
		}
	}
	d.Seq = seq + 1
	return nil
}

func (s *service) FindDeparture(id departure.ID) (*departure.Departure, error) {
	if id == "" {
		return nil, ErrInvalidArgument
	}
	return s.departures.Find(id)
}

func (s *service) DeparturesForDate(date time.Time) ([]*departure.Departure, error) {
	departures, err := s.departures.FindByDate(date)
	if err != nil {
		return nil, err
	}
	if departures == nil {
		departures = []*departure.Departure{}
	}
	return departures, nil
}

func (s *service) SailingsFor(f ferry.ID, date time.Time) ([]*departure.Departure, error) {
	if _, err := s.ferries.Find(f); err != nil {
		return nil, err
	}
	return s.departures.FindByFerryDate(f, date)
}
