package scheduling

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/transport"
	kithttp "github.com/go-kit/kit/transport/http"

	"github.com/soundline/ferryops/departure"
	"github.com/soundline/ferryops/ferry"
	"github.com/soundline/ferryops/postgres"
	"github.com/soundline/ferryops/route"
	"github.com/soundline/ferryops/schedule"
)

// MakeHandler returns a new handler for the scheduling service
func MakeHandler(set Set, logger kitlog.Logger) http.Handler {
	r := mux.NewRouter()

	opts := []kithttp.ServerOption{
		kithttp.ServerErrorHandler(transport.NewLogErrorHandler(logger)),
		kithttp.ServerErrorEncoder(encodeError),
	}

	addScheduleHandler := kithttp.NewServer(set.AddScheduleEndpoint, decodeAddScheduleRequest, encodeResponse, opts...)
	updateScheduleHandler := kithttp.NewServer(set.UpdateScheduleEndpoint, decodeUpdateScheduleRequest, encodeResponse, opts...)
	deleteScheduleHandler := kithttp.NewServer(set.DeleteScheduleEndpoint, decodeDeleteScheduleRequest, encodeResponse, opts...)
	listSchedulesHandler := kithttp.NewServer(set.ListSchedulesEndpoint, decodeListSchedulesRequest, encodeResponse, opts...)
	schedulesForDateHandler := kithttp.NewServer(set.SchedulesForDateEndpoint, decodeSchedulesForDateRequest, encodeResponse, opts...)
	materializeHandler := kithttp.NewServer(set.MaterializeEndpoint, decodeMaterializeRequest, encodeResponse, opts...)
	createAdHocHandler := kithttp.NewServer(set.CreateAdHocEndpoint, decodeCreateAdHocRequest, encodeResponse, opts...)
	findDepartureHandler := kithttp.NewServer(set.FindDepartureEndpoint, decodeFindDepartureRequest, encodeResponse, opts...)
	departuresForDateHandler := kithttp.NewServer(set.DeparturesForDateEndpoint, decodeDeparturesForDateRequest, encodeResponse, opts...)
	sailingsForHandler := kithttp.NewServer(set.SailingsForEndpoint, decodeSailingsForRequest, encodeResponse, opts...)

	r.Handle("/scheduling/v1/schedules", addScheduleHandler).Methods("POST")
	r.Handle("/scheduling/v1/schedules", listSchedulesHandler).Methods("GET")
	r.Handle("/scheduling/v1/schedules/date/{date}", schedulesForDateHandler).Methods("GET")
	r.Handle("/scheduling/v1/schedules/{id}", updateScheduleHandler).Methods("PUT")
	r.Handle("/scheduling/v1/schedules/{id}", deleteScheduleHandler).Methods("DELETE")
	r.Handle("/scheduling/v1/schedules/{id}/departures", materializeHandler).Methods("POST")
	r.Handle("/scheduling/v1/departures", createAdHocHandler).Methods("POST")
	r.Handle("/scheduling/v1/departures/date/{date}", departuresForDateHandler).Methods("GET")
	r.Handle("/scheduling/v1/departures/{id}", findDepartureHandler).Methods("GET")
	r.Handle("/scheduling/v1/ferries/{id}/sailings/{date}", sailingsForHandler).Methods("GET")

	return r
}

var errBadRoute = errors.New("bad route")

type scheduleBody struct {
	ID              string `json:"id"`
	Route           string `json:"route_id"`
	Ferry           string `json:"ferry_id"`
	Weekdays        []int  `json:"weekdays"`
	Sailing         string `json:"sailing"`
	CrossingMinutes int    `json:"crossing_minutes"`
	ValidFrom       string `json:"valid_from"`
	ValidTo         string `json:"valid_to"`
	ConnectsTo      string `json:"connects_to,omitempty"`
}

func (b scheduleBody) toSchedule() (*schedule.Schedule, error) {
	sailing, err := time.Parse("15:04", b.Sailing)
	if err != nil {
		return nil, err
	}
	from, err := time.Parse("2006-01-02", b.ValidFrom)
	if err != nil {
		return nil, err
	}
	to, err := time.Parse("2006-01-02", b.ValidTo)
	if err != nil {
		return nil, err
	}
	weekdays := make([]time.Weekday, 0, len(b.Weekdays))
	for _, wd := range b.Weekdays {
		weekdays = append(weekdays, time.Weekday(wd))
	}
	sched := schedule.New(
		schedule.ID(b.ID),
		route.ID(b.Route),
		ferry.ID(b.Ferry),
		schedule.Timetable{
			Weekdays: weekdays,
			Sailing:  schedule.TimeOfDay{Hour: sailing.Hour(), Minute: sailing.Minute()},
			Crossing: time.Duration(b.CrossingMinutes) * time.Minute,
		},
		from, to,
	)
	sched.ConnectsTo = schedule.ID(b.ConnectsTo)
	return sched, nil
}

func decodeAddScheduleRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var body scheduleBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, err
	}
	sched, err := body.toSchedule()
	if err != nil {
		return nil, err
	}
	return addScheduleRequest{Schedule: sched}, nil
}

func decodeUpdateScheduleRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, ok := mux.Vars(r)["id"]
	if !ok {
		return nil, errBadRoute
	}
	var body scheduleBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, err
	}
	body.ID = id
	sched, err := body.toSchedule()
	if err != nil {
		return nil, err
	}
	return updateScheduleRequest{Schedule: sched}, nil
}

func decodeDeleteScheduleRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, ok := mux.Vars(r)["id"]
	if !ok {
		return nil, errBadRoute
	}
	return deleteScheduleRequest{ID: schedule.ID(id)}, nil
}

func decodeListSchedulesRequest(_ context.Context, r *http.Request) (interface{}, error) {
	return listSchedulesRequest{}, nil
}

func decodeSchedulesForDateRequest(_ context.Context, r *http.Request) (interface{}, error) {
	date, err := dateVar(r)
	if err != nil {
		return nil, err
	}
	return schedulesForDateRequest{Date: date}, nil
}

func decodeMaterializeRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, ok := mux.Vars(r)["id"]
	if !ok {
		return nil, errBadRoute
	}
	var body struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, err
	}
	date, err := time.Parse("2006-01-02", body.Date)
	if err != nil {
		return nil, err
	}
	return materializeRequest{ID: schedule.ID(id), Date: date}, nil
}

func decodeCreateAdHocRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var body struct {
		Ferry           string    `json:"ferry_id"`
		Route           string    `json:"route_id"`
		Departs         time.Time `json:"departs"`
		CrossingMinutes int       `json:"crossing_minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, err
	}
	return createAdHocRequest{
		Ferry:    ferry.ID(body.Ferry),
		Route:    route.ID(body.Route),
		Departs:  body.Departs,
		Crossing: time.Duration(body.CrossingMinutes) * time.Minute,
	}, nil
}

func decodeFindDepartureRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, ok := mux.Vars(r)["id"]
	if !ok {
		return nil, errBadRoute
	}
	return findDepartureRequest{ID: departure.ID(id)}, nil
}

func decodeDeparturesForDateRequest(_ context.Context, r *http.Request) (interface{}, error) {
	date, err := dateVar(r)
	if err != nil {
		return nil, err
	}
	return departuresForDateRequest{Date: date}, nil
}

func decodeSailingsForRequest(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	id, ok := vars["id"]
	if !ok {
		return nil, errBadRoute
	}
	date, err := dateVar(r)
	if err != nil {
		return nil, err
	}
	return sailingsForRequest{Ferry: ferry.ID(id), Date: date}, nil
}

func dateVar(r *http.Request) (time.Time, error) {
	raw, ok := mux.Vars(r)["date"]
	if !ok {
		return time.Time{}, errBadRoute
	}
	return time.Parse("2006-01-02", raw)
}

func encodeResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	if e, ok := response.(errorer); ok && e.error() != nil {
		encodeError(ctx, e.error(), w)
		return nil
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(response)
}

type errorer interface {
	error() error
}

// encode errors from business-logic
func encodeError(_ context.Context, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	switch {
	case errors.Is(err, schedule.ErrUnknown), errors.Is(err, ferry.ErrUnknown),
		errors.Is(err, route.ErrUnknown), errors.Is(err, departure.ErrUnknown):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrOutsideWindow),
		errors.Is(err, ErrNoSailing), errors.Is(err, ErrConnectionCycle),
		errors.Is(err, departure.ErrTimeOrder):
		w.WriteHeader(http.StatusBadRequest)
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrFerryRetired):
		w.WriteHeader(http.StatusConflict)
	case errors.Is(err, postgres.ErrUnavailable):
		w.WriteHeader(http.StatusServiceUnavailable)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
	})
}
