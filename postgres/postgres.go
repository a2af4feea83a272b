// Package postgres provides database/sql implementations of the domain
// repositories over the pgx driver. Storage failures surface as wrapped
// errors so callers can tell a missing entity from an unavailable store.
package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// ErrUnavailable marks storage failures that are about the store, not the
// request: connection loss, timeouts, failed queries. Transports map it to
// a service-unavailable response.
var ErrUnavailable = errors.New("storage unavailable")

func wrap(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}

// Open opens a postgres database and verifies the connection.
func Open(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("verify postgres connection: %w", err)
	}

	return db, nil
}

// InitSchema creates the tables used by the repositories.
func InitSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS ferries (
		id       TEXT PRIMARY KEY,
		name     TEXT NOT NULL,
		capacity INT  NOT NULL,
		status   INT  NOT NULL
	);
	CREATE TABLE IF NOT EXISTS harbours (
		code TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS routes (
		id          TEXT PRIMARY KEY,
		origin      TEXT NOT NULL,
		destination TEXT NOT NULL,
		base_price  DOUBLE PRECISION NOT NULL
	);
	CREATE TABLE IF NOT EXISTS schedules (
		id          TEXT PRIMARY KEY,
		route_id    TEXT NOT NULL,
		ferry_id    TEXT NOT NULL,
		weekdays    TEXT NOT NULL,
		sailing_hour   INT NOT NULL,
		sailing_minute INT NOT NULL,
		crossing_minutes INT NOT NULL,
		valid_from  TIMESTAMPTZ NOT NULL,
		valid_to    TIMESTAMPTZ NOT NULL,
		connects_to TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS travelers (
		id          TEXT PRIMARY KEY,
		kind        INT  NOT NULL,
		description TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS departures (
		id             TEXT PRIMARY KEY,
		schedule_id    TEXT NOT NULL DEFAULT '',
		ferry_id       TEXT NOT NULL,
		route_id       TEXT NOT NULL,
		date           TIMESTAMPTZ NOT NULL,
		seq            INT NOT NULL,
		departure_time TIMESTAMPTZ NOT NULL,
		arrival_time   TIMESTAMPTZ NOT NULL,
		status         INT NOT NULL,
		delay_minutes  INT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS departure_bookings (
		departure_id TEXT NOT NULL,
		traveler_id  TEXT NOT NULL,
		position     INT  NOT NULL,
		PRIMARY KEY (departure_id, traveler_id)
	);
	CREATE INDEX IF NOT EXISTS departures_ferry_date ON departures (ferry_id, date);
	CREATE INDEX IF NOT EXISTS departures_schedule ON departures (schedule_id);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}
