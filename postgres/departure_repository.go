package postgres

import (
	"database/sql"
	"errors"
	"time"

	"github.com/soundline/ferryops/departure"
	"github.com/soundline/ferryops/ferry"
	"github.com/soundline/ferryops/schedule"
	"github.com/soundline/ferryops/traveler"
)

type departureRepository struct{ db *sql.DB }

// NewDepartureRepository returns a postgres-backed departure repository.
func NewDepartureRepository(db *sql.DB) departure.Repository {
	return &departureRepository{db: db}
}

// Store writes the departure and its booking set in one transaction.
func (r *departureRepository) Store(d *departure.Departure) error {
	tx, err := r.db.Begin()
	if err != nil {
		return wrap("store departure: begin", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO departures (id, schedule_id, ferry_id, route_id, date, seq, departure_time, arrival_time, status, delay_minutes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET schedule_id = $2, ferry_id = $3, route_id = $4,
			date = $5, seq = $6, departure_time = $7, arrival_time = $8, status = $9, delay_minutes = $10`,
		string(d.ID), string(d.Schedule), string(d.Ferry), string(d.Route),
		d.Date, d.Seq, d.DepartureTime, d.ArrivalTime, int(d.Status), d.DelayMinutes)
	if err != nil {
		return wrap("store departure", err)
	}

	if _, err := tx.Exec(`DELETE FROM departure_bookings WHERE departure_id = $1`, string(d.ID)); err != nil {
		return wrap("store departure: clear bookings", err)
	}
	for i, t := range d.Bookings {
		if _, err := tx.Exec(`INSERT INTO departure_bookings (departure_id, traveler_id, position) VALUES ($1, $2, $3)`,
			string(d.ID), string(t), i); err != nil {
			return wrap("store departure: booking", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return wrap("store departure: commit", err)
	}
	return nil
}

const departureColumns = `id, schedule_id, ferry_id, route_id, date, seq, departure_time, arrival_time, status, delay_minutes`

func (r *departureRepository) scan(row interface{ Scan(...interface{}) error }) (*departure.Departure, error) {
	var d departure.Departure
	var status int
	err := row.Scan(&d.ID, &d.Schedule, &d.Ferry, &d.Route, &d.Date, &d.Seq,
		&d.DepartureTime, &d.ArrivalTime, &status, &d.DelayMinutes)
	if err != nil {
		return nil, err
	}
	d.Status = departure.Status(status)
	return &d, nil
}

func (r *departureRepository) loadBookings(d *departure.Departure) error {
	rows, err := r.db.Query(`SELECT traveler_id FROM departure_bookings WHERE departure_id = $1 ORDER BY position`, string(d.ID))
	if err != nil {
		return wrap("load bookings", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return wrap("load bookings: scan row", err)
		}
		d.Bookings = append(d.Bookings, traveler.ID(t))
	}
	if err := rows.Err(); err != nil {
		return wrap("load bookings: row iteration", err)
	}
	return nil
}

func (r *departureRepository) Find(id departure.ID) (*departure.Departure, error) {
	d, err := r.scan(r.db.QueryRow(`SELECT `+departureColumns+` FROM departures WHERE id = $1`, string(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, departure.ErrUnknown
	}
	if err != nil {
		return nil, wrap("find departure", err)
	}
	if err := r.loadBookings(d); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *departureRepository) query(q string, args ...interface{}) ([]*departure.Departure, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, wrap("list departures", err)
	}
	defer rows.Close()

	var departures []*departure.Departure
	for rows.Next() {
		d, err := r.scan(rows)
		if err != nil {
			return nil, wrap("list departures: scan row", err)
		}
		departures = append(departures, d)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list departures: row iteration", err)
	}
	for _, d := range departures {
		if err := r.loadBookings(d); err != nil {
			return nil, err
		}
	}
	return departures, nil
}

func (r *departureRepository) FindAll() ([]*departure.Departure, error) {
	return r.query(`SELECT ` + departureColumns + ` FROM departures ORDER BY id`)
}

func (r *departureRepository) FindByFerry(id ferry.ID) ([]*departure.Departure, error) {
	return r.query(`SELECT `+departureColumns+` FROM departures WHERE ferry_id = $1 ORDER BY date, seq`, string(id))
}

func (r *departureRepository) FindByFerryDate(id ferry.ID, date time.Time) ([]*departure.Departure, error) {
	return r.query(`SELECT `+departureColumns+` FROM departures WHERE ferry_id = $1 AND date = $2 ORDER BY seq`,
		string(id), departure.DateOf(date))
}

func (r *departureRepository) FindBySchedule(id schedule.ID) ([]*departure.Departure, error) {
	return r.query(`SELECT `+departureColumns+` FROM departures WHERE schedule_id = $1 ORDER BY date`, string(id))
}

func (r *departureRepository) FindByScheduleDate(id schedule.ID, date time.Time) (*departure.Departure, error) {
	d, err := r.scan(r.db.QueryRow(`SELECT `+departureColumns+` FROM departures WHERE schedule_id = $1 AND date = $2`,
		string(id), departure.DateOf(date)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, departure.ErrUnknown
	}
	if err != nil {
		return nil, wrap("find departure by schedule and date", err)
	}
	if err := r.loadBookings(d); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *departureRepository) FindByDate(date time.Time) ([]*departure.Departure, error) {
	return r.query(`SELECT `+departureColumns+` FROM departures WHERE date = $1 ORDER BY departure_time`,
		departure.DateOf(date))
}
