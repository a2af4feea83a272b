// Package operations implements the overbooking guard and the cascade
// updater: booking changes against departure capacity, and delay and
// cancellation propagation across connected departures.
package operations

import (
	"errors"
	"time"

	"github.com/go-kit/kit/log"

	"github.com/soundline/ferryops/departure"
	"github.com/soundline/ferryops/ferry"
	"github.com/soundline/ferryops/notify"
	"github.com/soundline/ferryops/schedule"
	"github.com/soundline/ferryops/stats"
	"github.com/soundline/ferryops/traveler"
)

// ErrInvalidArgument is returned when one or more arguments are invalid.
var ErrInvalidArgument = errors.New("invalid argument")

// Service applies capacity-sensitive and time-sensitive mutations to
// departures. Every mutation runs inside the departure's critical section;
// a cascade extends that section leg by leg over the connected downstream
// departures.
type Service interface {
	// Attach books the traveling entity onto the departure, failing with
	// departure.ErrOverBooked when the ferry is at capacity.
	Attach(id departure.ID, t traveler.ID) (*departure.Departure, error)

	// Detach releases the traveling entity's booking.
	Detach(id departure.ID, t traveler.ID) (*departure.Departure, error)

	// UpdateDeparture applies a batch of booking changes atomically: either
	// every change commits or the booking set is left untouched.
	UpdateDeparture(id departure.ID, attach, detach []traveler.ID) (*departure.Departure, error)

	// Delay pushes back the ferry's seq'th sailing on the date by the given
	// number of minutes and propagates the delay to connected departures.
	Delay(f ferry.ID, date time.Time, seq int, minutes int) (*departure.Departure, error)

	// CancelSailings cancels every non-terminal departure of the ferry on
	// the date, releasing bookings and propagating to connected departures.
	CancelSailings(f ferry.ID, date time.Time) error

	// CancelDeparture cancels a single departure and its connected
	// downstream departures.
	CancelDeparture(id departure.ID) error
}

type service struct {
	departures departure.Repository
	ferries    ferry.Repository
	schedules  schedule.Repository
	travelers  traveler.Repository
	arena      *departure.Arena
	sink       notify.Sink
	stats      stats.Recorder
	logger     log.Logger
}

// NewService creates an operations service with the necessary dependencies.
// The logger records partially applied cascades, which are surfaced but not
// reverted.
func NewService(departures departure.Repository, ferries ferry.Repository,
	schedules schedule.Repository, travelers traveler.Repository,
	arena *departure.Arena, sink notify.Sink, recorder stats.Recorder, logger log.Logger) Service {
	return &service{
		departures: departures,
		ferries:    ferries,
		schedules:  schedules,
		travelers:  travelers,
		arena:      arena,
		sink:       sink,
		stats:      recorder,
		logger:     logger,
	}
}

func (s *service) Attach(id departure.ID, t traveler.ID) (*departure.Departure, error) {
	if id == "" || t == "" {
		return nil, ErrInvalidArgument
	}
	s.arena.Lock(id)
	defer s.arena.Unlock(id)

	d, err := s.departures.Find(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.travelers.Find(t); err != nil {
		return nil, err
	}
	f, err := s.ferries.Find(d.Ferry)
	if err != nil {
		return nil, err
	}
	if err := d.Attach(t, f.Capacity); err != nil {
		return nil, err
	}
	if err := s.departures.Store(d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *service) Detach(id departure.ID, t traveler.ID) (*departure.Departure, error) {
	if id == "" || t == "" {
		return nil, ErrInvalidArgument
	}
	s.arena.Lock(id)
	defer s.arena.Unlock(id)

	d, err := s.departures.Find(id)
	if err != nil {
		return nil, err
	}
	if err := d.Detach(t); err != nil {
		return nil, err
	}
	if err := s.departures.Store(d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *service) UpdateDeparture(id departure.ID, attach, detach []traveler.ID) (*departure.Departure, error) {
	if id == "" {
		return nil, ErrInvalidArgument
	}
	s.arena.Lock(id)
	defer s.arena.Unlock(id)

	d, err := s.departures.Find(id)
	if err != nil {
		return nil, err
	}
	f, err := s.ferries.Find(d.Ferry)
	if err != nil {
		return nil, err
	}

	snapshot := append([]traveler.ID(nil), d.Bookings...)
	restore := func() { d.Bookings = snapshot }

	for _, t := range detach {
		if err := d.Detach(t); err != nil {
			restore()
			return nil, err
		}
	}
	for _, t := range attach {
		if _, err := s.travelers.Find(t); err != nil {
			restore()
			return nil, err
		}
		if err := d.Attach(t, f.Capacity); err != nil {
			restore()
			return nil, err
		}
	}
	if err := s.departures.Store(d); err != nil {
		restore()
		return nil, err
	}
	return d, nil
}

func (s *service) Delay(f ferry.ID, date time.Time, seq int, minutes int) (*departure.Departure, error) {
	if minutes < 1 {
		return nil, departure.ErrInvalidDelay
	}
	if _, err := s.ferries.Find(f); err != nil {
		return nil, err
	}
	sailings, err := s.departures.FindByFerryDate(f, date)
	if err != nil {
		return nil, err
	}
	var target departure.ID
	for _, d := range sailings {
		if d.Seq == seq {
			target = d.ID
			break
		}
	}
	if target == "" {
		return nil, departure.ErrUnknown
	}
	return s.cascade(target, s.delayStep(minutes))
}

func (s *service) CancelSailings(f ferry.ID, date time.Time) error {
	if _, err := s.ferries.Find(f); err != nil {
		return err
	}
	sailings, err := s.departures.FindByFerryDate(f, date)
	if err != nil {
		return err
	}
	cancelled := 0
	for _, d := range sailings {
		if d.Status.Final() {
			continue
		}
		// A previous cascade on this date may already have cancelled the
		// sailing; that is not a failure of the whole operation.
		if _, err := s.cascade(d.ID, s.cancelStep()); err != nil {
			if errors.Is(err, departure.ErrUnknown) {
				continue
			}
			return err
		}
		cancelled++
	}
	if cancelled == 0 {
		return departure.ErrUnknown
	}
	return nil
}

func (s *service) CancelDeparture(id departure.ID) error {
	if id == "" {
		return ErrInvalidArgument
	}
	_, err := s.cascade(id, s.cancelStep())
	return err
}

func (s *service) delayStep(minutes int) func(*departure.Departure) error {
	return func(d *departure.Departure) error {
		if err := d.PushBack(minutes); err != nil {
			return err
		}
		if err := s.departures.Store(d); err != nil {
			return err
		}
		s.stats.Delay(d.Route, minutes)
		if err := s.sink.DepartureDelayed(d, minutes); err != nil {
			s.logger.Log("msg", "delay notification failed", "departure_id", d.ID, "err", err)
		}
		return nil
	}
}

func (s *service) cancelStep() func(*departure.Departure) error {
	return func(d *departure.Departure) error {
		released, err := d.Cancel()
		if err != nil {
			return err
		}
		if err := s.departures.Store(d); err != nil {
			return err
		}
		s.stats.Cancellation(d.Route)
		if err := s.sink.DepartureCancelled(d, released); err != nil {
			s.logger.Log("msg", "cancellation notification failed", "departure_id", d.ID, "err", err)
		}
		return nil
	}
}

// cascade applies step to the departure and follows the schedule's
// connecting legs downstream, stopping at the first terminal departure or
// on a cycle. The downstream critical section is acquired before the
// upstream one is released so a concurrent booking cannot slip between
// legs. A downstream failure stops the chain and is surfaced; legs already
// applied are not reverted, which is logged.
func (s *service) cascade(first departure.ID, step func(*departure.Departure) error) (*departure.Departure, error) {
	visited := make(map[departure.ID]bool)
	var head *departure.Departure

	current := first
	s.arena.Lock(current)
	for {
		visited[current] = true

		d, err := s.departures.Find(current)
		if err == nil && d.Status.Final() {
			err = departure.ErrUnknown
		}
		if err != nil {
			s.arena.Unlock(current)
			if head == nil {
				return nil, err
			}
			// Terminal downstream legs stop the cascade cleanly.
			if errors.Is(err, departure.ErrUnknown) {
				return head, nil
			}
			s.logger.Log("msg", "cascade partially applied", "first", first, "stopped_at", current, "err", err)
			return head, err
		}

		if err := step(d); err != nil {
			s.arena.Unlock(current)
			if head == nil {
				return nil, err
			}
			s.logger.Log("msg", "cascade partially applied", "first", first, "stopped_at", current, "err", err)
			return head, err
		}
		if head == nil {
			head = d
		}

		next, err := s.nextLeg(d)
		if err != nil {
			s.arena.Unlock(current)
			s.logger.Log("msg", "cascade partially applied", "first", first, "stopped_at", current, "err", err)
			return head, err
		}
		if next == "" || visited[next] {
			s.arena.Unlock(current)
			return head, nil
		}
		s.arena.Lock(next)
		s.arena.Unlock(current)
		current = next
	}
}

// nextLeg resolves the downstream departure connected to d: the departure
// materialized on the same date from the schedule d's schedule connects to.
func (s *service) nextLeg(d *departure.Departure) (departure.ID, error) {
	if d.Schedule == "" {
		return "", nil
	}
	sched, err := s.schedules.Find(d.Schedule)
	if err != nil {
		if errors.Is(err, schedule.ErrUnknown) {
			return "", nil
		}
		return "", err
	}
	if sched.ConnectsTo == "" {
		return "", nil
	}
	next, err := s.departures.FindByScheduleDate(sched.ConnectsTo, d.Date)
	if err != nil {
		// The connected leg may simply not be materialized for the date.
		if errors.Is(err, departure.ErrUnknown) {
			return "", nil
		}
		return "", err
	}
	return next.ID, nil
}
