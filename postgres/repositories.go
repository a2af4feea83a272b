package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/soundline/ferryops/ferry"
	"github.com/soundline/ferryops/harbour"
	"github.com/soundline/ferryops/route"
	"github.com/soundline/ferryops/schedule"
	"github.com/soundline/ferryops/traveler"
)

type ferryRepository struct{ db *sql.DB }

// NewFerryRepository returns a postgres-backed ferry repository.
func NewFerryRepository(db *sql.DB) ferry.Repository {
	return &ferryRepository{db: db}
}

func (r *ferryRepository) Store(f *ferry.Ferry) error {
	_, err := r.db.Exec(`
		INSERT INTO ferries (id, name, capacity, status) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = $2, capacity = $3, status = $4`,
		string(f.ID), f.Name, f.Capacity, int(f.Status))
	if err != nil {
		return wrap("store ferry", err)
	}
	return nil
}

func (r *ferryRepository) Find(id ferry.ID) (*ferry.Ferry, error) {
	var f ferry.Ferry
	var status int
	err := r.db.QueryRow(`SELECT id, name, capacity, status FROM ferries WHERE id = $1`, string(id)).
		Scan(&f.ID, &f.Name, &f.Capacity, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ferry.ErrUnknown
	}
	if err != nil {
		return nil, wrap("find ferry", err)
	}
	f.Status = ferry.Status(status)
	return &f, nil
}

func (r *ferryRepository) FindAll() ([]*ferry.Ferry, error) {
	rows, err := r.db.Query(`SELECT id, name, capacity, status FROM ferries ORDER BY id`)
	if err != nil {
		return nil, wrap("list ferries", err)
	}
	defer rows.Close()

	var ferries []*ferry.Ferry
	for rows.Next() {
		var f ferry.Ferry
		var status int
		if err := rows.Scan(&f.ID, &f.Name, &f.Capacity, &status); err != nil {
			return nil, wrap("list ferries: scan row", err)
		}
		f.Status = ferry.Status(status)
		ferries = append(ferries, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list ferries: row iteration", err)
	}
	return ferries, nil
}

func (r *ferryRepository) Delete(id ferry.ID) error {
	res, err := r.db.Exec(`DELETE FROM ferries WHERE id = $1`, string(id))
	if err != nil {
		return wrap("delete ferry", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ferry.ErrUnknown
	}
	return nil
}

type harbourRepository struct{ db *sql.DB }

// NewHarbourRepository returns a postgres-backed harbour repository.
func NewHarbourRepository(db *sql.DB) harbour.Repository {
	return &harbourRepository{db: db}
}

func (r *harbourRepository) Find(c harbour.Code) (*harbour.Harbour, error) {
	var h harbour.Harbour
	err := r.db.QueryRow(`SELECT code, name FROM harbours WHERE code = $1`, string(c)).
		Scan(&h.Code, &h.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, harbour.ErrUnknown
	}
	if err != nil {
		return nil, wrap("find harbour", err)
	}
	return &h, nil
}

func (r *harbourRepository) FindAll() ([]*harbour.Harbour, error) {
	rows, err := r.db.Query(`SELECT code, name FROM harbours ORDER BY code`)
	if err != nil {
		return nil, wrap("list harbours", err)
	}
	defer rows.Close()

	var harbours []*harbour.Harbour
	for rows.Next() {
		var h harbour.Harbour
		if err := rows.Scan(&h.Code, &h.Name); err != nil {
			return nil, wrap("list harbours: scan row", err)
		}
		harbours = append(harbours, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list harbours: row iteration", err)
	}
	return harbours, nil
}

type routeRepository struct{ db *sql.DB }

// NewRouteRepository returns a postgres-backed route repository.
func NewRouteRepository(db *sql.DB) route.Repository {
	return &routeRepository{db: db}
}

func (r *routeRepository) Store(rt *route.Route) error {
	_, err := r.db.Exec(`
		INSERT INTO routes (id, origin, destination, base_price) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET origin = $2, destination = $3, base_price = $4`,
		string(rt.ID), string(rt.Origin), string(rt.Destination), rt.BasePrice)
	if err != nil {
		return wrap("store route", err)
	}
	return nil
}

func (r *routeRepository) Find(id route.ID) (*route.Route, error) {
	var rt route.Route
	err := r.db.QueryRow(`SELECT id, origin, destination, base_price FROM routes WHERE id = $1`, string(id)).
		Scan(&rt.ID, &rt.Origin, &rt.Destination, &rt.BasePrice)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, route.ErrUnknown
	}
	if err != nil {
		return nil, wrap("find route", err)
	}
	return &rt, nil
}

func (r *routeRepository) FindAll() ([]*route.Route, error) {
	rows, err := r.db.Query(`SELECT id, origin, destination, base_price FROM routes ORDER BY id`)
	if err != nil {
		return nil, wrap("list routes", err)
	}
	defer rows.Close()

	var routes []*route.Route
	for rows.Next() {
		var rt route.Route
		if err := rows.Scan(&rt.ID, &rt.Origin, &rt.Destination, &rt.BasePrice); err != nil {
			return nil, wrap("list routes: scan row", err)
		}
		routes = append(routes, &rt)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list routes: row iteration", err)
	}
	return routes, nil
}

func (r *routeRepository) Delete(id route.ID) error {
	res, err := r.db.Exec(`DELETE FROM routes WHERE id = $1`, string(id))
	if err != nil {
		return wrap("delete route", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return route.ErrUnknown
	}
	return nil
}

type scheduleRepository struct{ db *sql.DB }

// NewScheduleRepository returns a postgres-backed schedule repository.
func NewScheduleRepository(db *sql.DB) schedule.Repository {
	return &scheduleRepository{db: db}
}

func encodeWeekdays(weekdays []time.Weekday) string {
	parts := make([]string, 0, len(weekdays))
	for _, wd := range weekdays {
		parts = append(parts, strconv.Itoa(int(wd)))
	}
	return strings.Join(parts, ",")
}

func decodeWeekdays(raw string) ([]time.Weekday, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	weekdays := make([]time.Weekday, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("decode weekdays %q: %w", raw, err)
		}
		weekdays = append(weekdays, time.Weekday(n))
	}
	return weekdays, nil
}

func (r *scheduleRepository) Store(s *schedule.Schedule) error {
	_, err := r.db.Exec(`
		INSERT INTO schedules (id, route_id, ferry_id, weekdays, sailing_hour, sailing_minute, crossing_minutes, valid_from, valid_to, connects_to)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET route_id = $2, ferry_id = $3, weekdays = $4,
			sailing_hour = $5, sailing_minute = $6, crossing_minutes = $7,
			valid_from = $8, valid_to = $9, connects_to = $10`,
		string(s.ID), string(s.Route), string(s.Ferry), encodeWeekdays(s.Timetable.Weekdays),
		s.Timetable.Sailing.Hour, s.Timetable.Sailing.Minute, int(s.Timetable.Crossing/time.Minute),
		s.ValidFrom, s.ValidTo, string(s.ConnectsTo))
	if err != nil {
		return wrap("store schedule", err)
	}
	return nil
}

func (r *scheduleRepository) scan(row interface{ Scan(...interface{}) error }) (*schedule.Schedule, error) {
	var s schedule.Schedule
	var weekdays string
	var crossingMinutes int
	err := row.Scan(&s.ID, &s.Route, &s.Ferry, &weekdays,
		&s.Timetable.Sailing.Hour, &s.Timetable.Sailing.Minute, &crossingMinutes,
		&s.ValidFrom, &s.ValidTo, &s.ConnectsTo)
	if err != nil {
		return nil, err
	}
	s.Timetable.Weekdays, err = decodeWeekdays(weekdays)
	if err != nil {
		return nil, err
	}
	s.Timetable.Crossing = time.Duration(crossingMinutes) * time.Minute
	return &s, nil
}

const scheduleColumns = `id, route_id, ferry_id, weekdays, sailing_hour, sailing_minute, crossing_minutes, valid_from, valid_to, connects_to`

func (r *scheduleRepository) Find(id schedule.ID) (*schedule.Schedule, error) {
	s, err := r.scan(r.db.QueryRow(`SELECT `+scheduleColumns+` FROM schedules WHERE id = $1`, string(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, schedule.ErrUnknown
	}
	if err != nil {
		return nil, wrap("find schedule", err)
	}
	return s, nil
}

func (r *scheduleRepository) FindAll() ([]*schedule.Schedule, error) {
	rows, err := r.db.Query(`SELECT ` + scheduleColumns + ` FROM schedules ORDER BY id`)
	if err != nil {
		return nil, wrap("list schedules", err)
	}
	defer rows.Close()

	var schedules []*schedule.Schedule
	for rows.Next() {
		s, err := r.scan(rows)
		if err != nil {
			return nil, wrap("list schedules: scan row", err)
		}
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list schedules: row iteration", err)
	}
	return schedules, nil
}

func (r *scheduleRepository) Delete(id schedule.ID) error {
	res, err := r.db.Exec(`DELETE FROM schedules WHERE id = $1`, string(id))
	if err != nil {
		return wrap("delete schedule", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return schedule.ErrUnknown
	}
	return nil
}

type travelerRepository struct{ db *sql.DB }

// NewTravelerRepository returns a postgres-backed traveling entity repository.
func NewTravelerRepository(db *sql.DB) traveler.Repository {
	return &travelerRepository{db: db}
}

func (r *travelerRepository) Store(e *traveler.Entity) error {
	_, err := r.db.Exec(`
		INSERT INTO travelers (id, kind, description) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET kind = $2, description = $3`,
		string(e.ID), int(e.Kind), e.Description)
	if err != nil {
		return wrap("store traveler", err)
	}
	return nil
}

func (r *travelerRepository) Find(id traveler.ID) (*traveler.Entity, error) {
	var e traveler.Entity
	var kind int
	err := r.db.QueryRow(`SELECT id, kind, description FROM travelers WHERE id = $1`, string(id)).
		Scan(&e.ID, &kind, &e.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, traveler.ErrUnknown
	}
	if err != nil {
		return nil, wrap("find traveler", err)
	}
	e.Kind = traveler.Kind(kind)
	return &e, nil
}

func (r *travelerRepository) FindAll() ([]*traveler.Entity, error) {
	rows, err := r.db.Query(`SELECT id, kind, description FROM travelers ORDER BY id`)
	if err != nil {
		return nil, wrap("list travelers", err)
	}
	defer rows.Close()

	var entities []*traveler.Entity
	for rows.Next() {
		var e traveler.Entity
		var kind int
		if err := rows.Scan(&e.ID, &kind, &e.Description); err != nil {
			return nil, wrap("list travelers: scan row", err)
		}
		e.Kind = traveler.Kind(kind)
		entities = append(entities, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list travelers: row iteration", err)
	}
	return entities, nil
}

func (r *travelerRepository) Delete(id traveler.ID) error {
	res, err := r.db.Exec(`DELETE FROM travelers WHERE id = $1`, string(id))
	if err != nil {
		return wrap("delete traveler", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return traveler.ErrUnknown
	}
	return nil
}
