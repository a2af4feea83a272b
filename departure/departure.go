package departure

import (
	"errors"
	"strings"
	"time"

	"github.com/pborman/uuid"

	"github.com/soundline/ferryops/ferry"
	"github.com/soundline/ferryops/route"
	"github.com/soundline/ferryops/schedule"
	"github.com/soundline/ferryops/traveler"
)

// ID uniquely identifies a departure
type ID string

// Status describes the state of a departure
type Status int

// valid departure statuses
const (
	Scheduled Status = iota
	Delayed
	Completed
	Cancelled
)

func (s Status) String() string {
	switch s {
	case Scheduled:
		return "Scheduled"
	case Delayed:
		return "Delayed"
	case Completed:
		return "Completed"
	case Cancelled:
		return "Cancelled"
	}
	return ""
}

// Final reports whether no transition may leave the status
func (s Status) Final() bool {
	return s == Completed || s == Cancelled
}

// ErrUnknown is used when a departure can't be found, or when an operation
// targets a departure that is already completed or cancelled
var ErrUnknown = errors.New("unknown departure")

// ErrOverBooked is used when a booking would exceed the ferry's capacity
var ErrOverBooked = errors.New("departure is fully booked")

// ErrAlreadyBooked is used when a traveling entity already holds a booking
// on the departure
var ErrAlreadyBooked = errors.New("traveling entity already booked on departure")

// ErrNotBooked is used when no active booking exists for the pair
var ErrNotBooked = errors.New("traveling entity is not booked on departure")

// ErrFinal is used when a mutation targets a completed or cancelled departure
var ErrFinal = errors.New("departure is completed or cancelled")

// ErrInvalidDelay is used when a delay of less than one minute is requested
var ErrInvalidDelay = errors.New("delay must be at least one minute")

// ErrTimeOrder is used when the arrival would not be after the departure
var ErrTimeOrder = errors.New("arrival time must be after departure time")

// Departure is one concrete sailing of a ferry on a date, materialized from
// a schedule or created ad hoc.
type Departure struct {
	ID            ID
	Schedule      schedule.ID // empty for ad-hoc departures
	Ferry         ferry.ID
	Route         route.ID
	Date          time.Time
	Seq           int // position among the ferry's sailings that date
	DepartureTime time.Time
	ArrivalTime   time.Time
	Status        Status
	DelayMinutes  int
	Bookings      []traveler.ID
}

// New creates a new scheduled departure. The calendar date is derived from
// the departure time.
func New(id ID, sched schedule.ID, f ferry.ID, r route.ID, departs, arrives time.Time) (*Departure, error) {
	if !arrives.After(departs) {
		return nil, ErrTimeOrder
	}
	return &Departure{
		ID:            id,
		Schedule:      sched,
		Ferry:         f,
		Route:         r,
		Date:          DateOf(departs),
		DepartureTime: departs,
		ArrivalTime:   arrives,
		Status:        Scheduled,
	}, nil
}

// DateOf truncates a time to its calendar date
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// BookedCount returns the number of active bookings on the departure
func (d *Departure) BookedCount() int {
	return len(d.Bookings)
}

// HasBooking checks whether the traveling entity holds an active booking
func (d *Departure) HasBooking(t traveler.ID) bool {
	for _, b := range d.Bookings {
		if b == t {
			return true
		}
	}
	return false
}

// Attach records a booking for the traveling entity. capacity is the current
// capacity of the departure's ferry; the booked count never exceeds it.
func (d *Departure) Attach(t traveler.ID, capacity int) error {
	if d.Status.Final() {
		return ErrFinal
	}
	if d.HasBooking(t) {
		return ErrAlreadyBooked
	}
	if len(d.Bookings) >= capacity {
		return ErrOverBooked
	}
	d.Bookings = append(d.Bookings, t)
	return nil
}

// Detach releases the traveling entity's booking
func (d *Departure) Detach(t traveler.ID) error {
	for i, b := range d.Bookings {
		if b == t {
			d.Bookings = append(d.Bookings[:i], d.Bookings[i+1:]...)
			return nil
		}
	}
	return ErrNotBooked
}

// PushBack shifts the scheduled departure and arrival times by the given
// number of minutes and marks the departure delayed. Delays accumulate.
func (d *Departure) PushBack(minutes int) error {
	if minutes < 1 {
		return ErrInvalidDelay
	}
	if d.Status.Final() {
		return ErrFinal
	}
	offset := time.Duration(minutes) * time.Minute
	d.DepartureTime = d.DepartureTime.Add(offset)
	d.ArrivalTime = d.ArrivalTime.Add(offset)
	d.DelayMinutes += minutes
	d.Status = Delayed
	return nil
}

// Cancel marks the departure cancelled and releases every booking. It
// returns the traveling entities whose bookings were released.
func (d *Departure) Cancel() ([]traveler.ID, error) {
	if d.Status.Final() {
		return nil, ErrFinal
	}
	released := d.Bookings
	d.Bookings = nil
	d.Status = Cancelled
	return released, nil
}

// Complete marks the departure completed once its sailing is over
func (d *Departure) Complete() error {
	if d.Status.Final() {
		return ErrFinal
	}
	d.Status = Completed
	return nil
}

// Repository provides access to a departure store
type Repository interface {
	Store(*Departure) error
	Find(ID) (*Departure, error)
	FindAll() ([]*Departure, error)
	FindByFerry(ferry.ID) ([]*Departure, error)
	FindByFerryDate(ferry.ID, time.Time) ([]*Departure, error)
	FindBySchedule(schedule.ID) ([]*Departure, error)
	FindByScheduleDate(schedule.ID, time.Time) (*Departure, error)
	FindByDate(time.Time) ([]*Departure, error)
}

// NextID generates a new departure ID.
func NextID() ID {
	return ID(strings.Split(strings.ToUpper(uuid.New()), "-")[0])
}
