// Package inmem provides in-memory implementations of the domain
// repositories, suitable for tests and single-node deployments.
package inmem

import (
	"sort"
	"sync"
	"time"

	"github.com/soundline/ferryops/departure"
	"github.com/soundline/ferryops/ferry"
	"github.com/soundline/ferryops/harbour"
	"github.com/soundline/ferryops/route"
	"github.com/soundline/ferryops/schedule"
	"github.com/soundline/ferryops/traveler"
)

type ferryRepository struct {
	mu      sync.RWMutex
	ferries map[ferry.ID]*ferry.Ferry
}

// NewFerryRepository returns a new instance of an in-memory ferry repository.
func NewFerryRepository() ferry.Repository {
	return &ferryRepository{ferries: make(map[ferry.ID]*ferry.Ferry)}
}

func (r *ferryRepository) Store(f *ferry.Ferry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ferries[f.ID] = f
	return nil
}

func (r *ferryRepository) Find(id ferry.ID) (*ferry.Ferry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if f, ok := r.ferries[id]; ok {
		return f, nil
	}
	return nil, ferry.ErrUnknown
}

func (r *ferryRepository) FindAll() ([]*ferry.Ferry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ferries := make([]*ferry.Ferry, 0, len(r.ferries))
	for _, f := range r.ferries {
		ferries = append(ferries, f)
	}
	return ferries, nil
}

func (r *ferryRepository) Delete(id ferry.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ferries[id]; !ok {
		return ferry.ErrUnknown
	}
	delete(r.ferries, id)
	return nil
}

type harbourRepository struct {
	mu       sync.RWMutex
	harbours map[harbour.Code]*harbour.Harbour
}

// NewHarbourRepository returns an in-memory harbour repository preloaded
// with the sample harbours.
func NewHarbourRepository() harbour.Repository {
	r := &harbourRepository{harbours: make(map[harbour.Code]*harbour.Harbour)}
	for _, h := range []*harbour.Harbour{
		harbour.Ronne, harbour.Rodby, harbour.Helsingor, harbour.Frederikshavn,
		harbour.Puttgarden, harbour.Sassnitz, harbour.Ystad, harbour.Helsingborg,
		harbour.Gothenburg,
	} {
		r.harbours[h.Code] = h
	}
	return r
}

func (r *harbourRepository) Find(c harbour.Code) (*harbour.Harbour, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if h, ok := r.harbours[c]; ok {
		return h, nil
	}
	return nil, harbour.ErrUnknown
}

func (r *harbourRepository) FindAll() ([]*harbour.Harbour, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	harbours := make([]*harbour.Harbour, 0, len(r.harbours))
	for _, h := range r.harbours {
		harbours = append(harbours, h)
	}
	return harbours, nil
}

type routeRepository struct {
	mu     sync.RWMutex
	routes map[route.ID]*route.Route
}

// NewRouteRepository returns a new instance of an in-memory route repository.
func NewRouteRepository() route.Repository {
	return &routeRepository{routes: make(map[route.ID]*route.Route)}
}

func (r *routeRepository) Store(rt *route.Route) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[rt.ID] = rt
	return nil
}

func (r *routeRepository) Find(id route.ID) (*route.Route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rt, ok := r.routes[id]; ok {
		return rt, nil
	}
	return nil, route.ErrUnknown
}

func (r *routeRepository) FindAll() ([]*route.Route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	routes := make([]*route.Route, 0, len(r.routes))
	for _, rt := range r.routes {
		routes = append(routes, rt)
	}
	return routes, nil
}

func (r *routeRepository) Delete(id route.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.routes[id]; !ok {
		return route.ErrUnknown
	}
	delete(r.routes, id)
	return nil
}

type scheduleRepository struct {
	mu        sync.RWMutex
	schedules map[schedule.ID]*schedule.Schedule
}

// NewScheduleRepository returns a new instance of an in-memory schedule repository.
func NewScheduleRepository() schedule.Repository {
	return &scheduleRepository{schedules: make(map[schedule.ID]*schedule.Schedule)}
}

func (r *scheduleRepository) Store(s *schedule.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schedules[s.ID] = s
	return nil
}

func (r *scheduleRepository) Find(id schedule.ID) (*schedule.Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.schedules[id]; ok {
		return s, nil
	}
	return nil, schedule.ErrUnknown
}

func (r *scheduleRepository) FindAll() ([]*schedule.Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	schedules := make([]*schedule.Schedule, 0, len(r.schedules))
	for _, s := range r.schedules {
		schedules = append(schedules, s)
	}
	return schedules, nil
}

func (r *scheduleRepository) Delete(id schedule.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.schedules[id]; !ok {
		return schedule.ErrUnknown
	}
	delete(r.schedules, id)
	return nil
}

type travelerRepository struct {
	mu       sync.RWMutex
	entities map[traveler.ID]*traveler.Entity
}

// NewTravelerRepository returns a new instance of an in-memory traveling
// entity repository.
func NewTravelerRepository() traveler.Repository {
	return &travelerRepository{entities: make(map[traveler.ID]*traveler.Entity)}
}

func (r *travelerRepository) Store(e *traveler.Entity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entities[e.ID] = e
	return nil
}

func (r *travelerRepository) Find(id traveler.ID) (*traveler.Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.entities[id]; ok {
		return e, nil
	}
	return nil, traveler.ErrUnknown
}

func (r *travelerRepository) FindAll() ([]*traveler.Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entities := make([]*traveler.Entity, 0, len(r.entities))
	for _, e := range r.entities {
		entities = append(entities, e)
	}
	return entities, nil
}

func (r *travelerRepository) Delete(id traveler.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entities[id]; !ok {
		return traveler.ErrUnknown
	}
	delete(r.entities, id)
	return nil
}

type departureRepository struct {
	mu         sync.RWMutex
	departures map[departure.ID]*departure.Departure
}

// NewDepartureRepository returns a new instance of an in-memory departure repository.
func NewDepartureRepository() departure.Repository {
	return &departureRepository{departures: make(map[departure.ID]*departure.Departure)}
}

func (r *departureRepository) Store(d *departure.Departure) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.departures[d.ID] = d
	return nil
}

func (r *departureRepository) Find(id departure.ID) (*departure.Departure, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if d, ok := r.departures[id]; ok {
		return d, nil
	}
	return nil, departure.ErrUnknown
}

func (r *departureRepository) FindAll() ([]*departure.Departure, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	departures := make([]*departure.Departure, 0, len(r.departures))
	for _, d := range r.departures {
		departures = append(departures, d)
	}
	return departures, nil
}

func (r *departureRepository) FindByFerry(id ferry.ID) ([]*departure.Departure, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var departures []*departure.Departure
	for _, d := range r.departures {
		if d.Ferry == id {
			departures = append(departures, d)
		}
	}
	return departures, nil
}

func (r *departureRepository) FindByFerryDate(id ferry.ID, date time.Time) ([]*departure.Departure, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var departures []*departure.Departure
	for _, d := range r.departures {
		if d.Ferry == id && d.Date.Equal(departure.DateOf(date)) {
			departures = append(departures, d)
		}
	}
	sort.Slice(departures, func(i, j int) bool { return departures[i].Seq < departures[j].Seq })
	return departures, nil
}

func (r *departureRepository) FindBySchedule(id schedule.ID) ([]*departure.Departure, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var departures []*departure.Departure
	for _, d := range r.departures {
		if d.Schedule == id {
			departures = append(departures, d)
		}
	}
	return departures, nil
}

func (r *departureRepository) FindByScheduleDate(id schedule.ID, date time.Time) (*departure.Departure, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.departures {
		if d.Schedule == id && d.Date.Equal(departure.DateOf(date)) {
			return d, nil
		}
	}
	return nil, departure.ErrUnknown
}

func (r *departureRepository) FindByDate(date time.Time) ([]*departure.Departure, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var departures []*departure.Departure
	for _, d := range r.departures {
		if d.Date.Equal(departure.DateOf(date)) {
			departures = append(departures, d)
		}
	}
	return departures, nil
}
