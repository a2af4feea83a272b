// Package catalog implements the administrative registry for ferries,
// routes, harbours and traveling entities.
package catalog

import (
	"errors"

	"github.com/soundline/ferryops/departure"
	"github.com/soundline/ferryops/ferry"
	"github.com/soundline/ferryops/harbour"
	"github.com/soundline/ferryops/route"
	"github.com/soundline/ferryops/schedule"
	"github.com/soundline/ferryops/traveler"
)

// ErrInvalidArgument is returned when one or more arguments are invalid.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrDuplicate is returned when a creation collides with an existing identifier.
var ErrDuplicate = errors.New("identifier already in use")

// ErrFerryInUse is returned when a ferry still has departures that are not
// completed or cancelled.
var ErrFerryInUse = errors.New("ferry has departures that are not completed or cancelled")

// ErrRouteInUse is returned when a route is still referenced by a schedule.
var ErrRouteInUse = errors.New("route is referenced by a schedule")

// ErrTravelerInUse is returned when a traveling entity still holds active bookings.
var ErrTravelerInUse = errors.New("traveling entity holds active bookings")

// ErrCapacityBelowBooked is returned when a capacity change would drop a
// ferry's capacity below an existing departure's booked count.
var ErrCapacityBelowBooked = errors.New("capacity is below an existing departure's booked count")

// Service is the administrative interface for ferries, routes and traveling
// entities.
type Service interface {
	AddFerry(f *ferry.Ferry) error
	FindFerry(id ferry.ID) (*ferry.Ferry, error)
	Ferries() ([]*ferry.Ferry, error)
	DeleteFerry(id ferry.ID) error
	UpdateCapacity(id ferry.ID, capacity int) (*ferry.Ferry, error)

	AddRoute(id route.ID, origin, destination harbour.Code, basePrice float64) (*route.Route, error)
	Routes() ([]*route.Route, error)
	DeleteRoute(id route.ID) error
	UpdatePrice(id route.ID, price float64) (*route.Route, error)

	Harbours() ([]*harbour.Harbour, error)

	AddTraveler(e *traveler.Entity) error
	UpdateTraveler(e *traveler.Entity) error
	DeleteTraveler(id traveler.ID) error
	Travelers() ([]*traveler.Entity, error)
}

type service struct {
	ferries    ferry.Repository
	harbours   harbour.Repository
	routes     route.Repository
	travelers  traveler.Repository
	schedules  schedule.Repository
	departures departure.Repository
}

// NewService creates a catalog service with the necessary dependencies.
func NewService(ferries ferry.Repository, harbours harbour.Repository, routes route.Repository,
	travelers traveler.Repository, schedules schedule.Repository, departures departure.Repository) Service {
	return &service{
		ferries:    ferries,
		harbours:   harbours,
		routes:     routes,
		travelers:  travelers,
		schedules:  schedules,
		departures: departures,
	}
}

func (s *service) AddFerry(f *ferry.Ferry) error {
	if f == nil || f.ID == "" || f.Capacity < 1 {
		return ErrInvalidArgument
	}
	if _, err := s.ferries.Find(f.ID); err == nil {
		return ErrDuplicate
	} else if !errors.Is(err, ferry.ErrUnknown) {
		return err
	}
	return s.ferries.Store(f)
}

func (s *service) FindFerry(id ferry.ID) (*ferry.Ferry, error) {
	if id == "" {
		return nil, ErrInvalidArgument
	}
	return s.ferries.Find(id)
}

func (s *service) Ferries() ([]*ferry.Ferry, error) {
	return s.ferries.FindAll()
}

func (s *service) DeleteFerry(id ferry.ID) error {
	if id == "" {
		return ErrInvalidArgument
	}
	if _, err := s.ferries.Find(id); err != nil {
		return err
	}
	departures, err := s.departures.FindByFerry(id)
	if err != nil {
		return err
	}
	for _, d := range departures {
		if !d.Status.Final() {
			return ErrFerryInUse
		}
	}
	return s.ferries.Delete(id)
}

func (s *service) UpdateCapacity(id ferry.ID, capacity int) (*ferry.Ferry, error) {
	if id == "" || capacity < 1 {
		return nil, ErrInvalidArgument
	}
	f, err := s.ferries.Find(id)
	if err != nil {
		return nil, err
	}
	departures, err := s.departures.FindByFerry(id)
	if err != nil {
		return nil, err
	}
	for _, d := range departures {
		if !d.Status.Final() && d.BookedCount() > capacity {
			return nil, ErrCapacityBelowBooked
		}
	}
	f.Capacity = capacity
	if err := s.ferries.Store(f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *service) AddRoute(id route.ID, origin, destination harbour.Code, basePrice float64) (*route.Route, error) {
	if id == "" {
		return nil, ErrInvalidArgument
	}
	if _, err := s.harbours.Find(origin); err != nil {
		return nil, err
	}
	if _, err := s.harbours.Find(destination); err != nil {
		return nil, err
	}
	if _, err := s.routes.Find(id); err == nil {
		return nil, ErrDuplicate
	} else if !errors.Is(err, route.ErrUnknown) {
		return nil, err
	}
	r, err := route.New(id, origin, destination, basePrice)
	if err != nil {
		return nil, err
	}
	if err := s.routes.Store(r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *service) Routes() ([]*route.Route, error) {
	return s.routes.FindAll()
}

func (s *service) DeleteRoute(id route.ID) error {
	if id == "" {
		return ErrInvalidArgument
	}
	if _, err := s.routes.Find(id); err != nil {
		return err
	}
	schedules, err := s.schedules.FindAll()
	if err != nil {
		return err
	}
	for _, sched := range schedules {
		if sched.Route == id {
			return ErrRouteInUse
		}
	}
	// Ad-hoc departures reference a route without an owning schedule.
	departures, err := s.departures.FindAll()
	if err != nil {
		return err
	}
	for _, d := range departures {
		if !d.Status.Final() && d.Route == id {
			return ErrRouteInUse
		}
	}
	return s.routes.Delete(id)
}

func (s *service) UpdatePrice(id route.ID, price float64) (*route.Route, error) {
	if id == "" {
		return nil, ErrInvalidArgument
	}
	if price < 0 {
		return nil, route.ErrNegativePrice
	}
	r, err := s.routes.Find(id)
	if err != nil {
		return nil, err
	}
	r.BasePrice = price
	if err := s.routes.Store(r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *service) Harbours() ([]*harbour.Harbour, error) {
	return s.harbours.FindAll()
}

func (s *service) AddTraveler(e *traveler.Entity) error {
	if e == nil || e.ID == "" {
		return ErrInvalidArgument
	}
	if _, err := s.travelers.Find(e.ID); err == nil {
		return ErrDuplicate
	} else if !errors.Is(err, traveler.ErrUnknown) {
		return err
	}
	return s.travelers.Store(e)
}

func (s *service) UpdateTraveler(e *traveler.Entity) error {
	if e == nil || e.ID == "" {
		return ErrInvalidArgument
	}
	if _, err := s.travelers.Find(e.ID); err != nil {
		return err
	}
	return s.travelers.Store(e)
}

func (s *service) DeleteTraveler(id traveler.ID) error {
	if id == "" {
		return ErrInvalidArgument
	}
	if _, err := s.travelers.Find(id); err != nil {
		return err
	}
	departures, err := s.departures.FindAll()
	if err != nil {
		return err
	}
	for _, d := range departures {
		if !d.Status.Final() && d.HasBooking(id) {
			return ErrTravelerInUse
		}
	}
	return s.travelers.Delete(id)
}

func (s *service) Travelers() ([]*traveler.Entity, error) {
	return s.travelers.FindAll()
}
