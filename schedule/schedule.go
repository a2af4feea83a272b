package schedule

import (
	"errors"
	"time"

	"github.com/soundline/ferryops/ferry"
	"github.com/soundline/ferryops/route"
)

// ID uniquely identifies a schedule
type ID string

// TimeOfDay is a clock time without a date
type TimeOfDay struct {
	Hour   int
	Minute int
}

// On places the time of day on the given calendar date
func (t TimeOfDay) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, date.Location())
}

// Valid checks that the time of day is on the clock
func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour < 24 && t.Minute >= 0 && t.Minute < 60
}

// Timetable describes the recurrence of a schedule: the weekdays the ferry
// sails, the sailing time and the duration of the crossing.
type Timetable struct {
	Weekdays []time.Weekday
	Sailing  TimeOfDay
	Crossing time.Duration
}

// SailsOn checks whether the timetable has a sailing on the date's weekday
func (t Timetable) SailsOn(date time.Time) bool {
	for _, wd := range t.Weekdays {
		if wd == date.Weekday() {
			return true
		}
	}
	return false
}

// Valid checks the timetable invariants: at least one weekday, a sailing
// time on the clock and a positive crossing duration.
func (t Timetable) Valid() bool {
	return len(t.Weekdays) > 0 && t.Sailing.Valid() && t.Crossing > 0
}

// Schedule is a recurring rule generating departures for a route/ferry pair
// within a validity window. ConnectsTo optionally names the schedule of the
// next leg of a multi-leg crossing; departures of that schedule depend on
// this schedule's arrivals.
type Schedule struct {
	ID         ID
	Route      route.ID
	Ferry      ferry.ID
	Timetable  Timetable
	ValidFrom  time.Time
	ValidTo    time.Time
	ConnectsTo ID
}

// New creates a new schedule
func New(id ID, r route.ID, f ferry.ID, t Timetable, from, to time.Time) *Schedule {
	return &Schedule{ID: id, Route: r, Ferry: f, Timetable: t, ValidFrom: from, ValidTo: to}
}

// WithinWindow checks whether the date falls inside the validity window
func (s *Schedule) WithinWindow(date time.Time) bool {
	return !date.Before(s.ValidFrom) && !date.After(s.ValidTo)
}

// SailsOn checks whether the schedule generates a departure on the date
func (s *Schedule) SailsOn(date time.Time) bool {
	return s.WithinWindow(date) && s.Timetable.SailsOn(date)
}

// ErrUnknown is used when a schedule can't be found
var ErrUnknown = errors.New("unknown schedule")

// Repository provides access to a schedule store
type Repository interface {
	Store(*Schedule) error
	Find(ID) (*Schedule, error)
	FindAll() ([]*Schedule, error)
	Delete(ID) error
}
