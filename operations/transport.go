package operations

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
	"github.com/soundline/ferryops/traveler"
)

// MakeHandler returns a new handler for the operations service
func MakeHandler(set Set, logger kitlog.Logger) http.Handler {
	r := mux.NewRouter()

	opts := []kithttp.ServerOption{
		kithttp.ServerErrorHandler(transport.NewLogErrorHandler(logger)),
		kithttp.ServerErrorEncoder(encodeError),
	}

	attachHandler := kithttp.NewServer(set.AttachEndpoint, decodeAttachRequest, encodeResponse, opts...)
	detachHandler := kithttp.NewServer(set.DetachEndpoint, decodeDetachRequest, encodeResponse, opts...)
	updateDepartureHandler := kithttp.NewServer(set.UpdateDepartureEndpoint, decodeUpdateDepartureRequest, encodeResponse, opts...)
	delayHandler := kithttp.NewServer(set.DelayEndpoint, decodeDelayRequest, encodeResponse, opts...)
	cancelSailingsHandler := kithttp.NewServer(set.CancelSailingsEndpoint, decodeCancelSailingsRequest, encodeResponse, opts...)
	cancelDepartureHandler := kithttp.NewServer(set.CancelDepartureEndpoint, decodeCancelDepartureRequest, encodeResponse, opts...)

	r.Handle("/operations/v1/departures/{id}/bookings", attachHandler).Methods("POST")
	r.Handle("/operations/v1/departures/{id}/bookings", updateDepartureHandler).Methods("PUT")
	r.Handle("/operations/v1/departures/{id}/bookings/{traveler}", detachHandler).Methods("DELETE")
	r.Handle("/operations/v1/departures/{id}/cancellation", cancelDepartureHandler).Methods("POST")
	r.Handle("/operations/v1/delays", delayHandler).Methods("POST")
	r.Handle("/operations/v1/cancellations", cancelSailingsHandler).Methods("POST")

	return r
}

var errBadRoute = errors.New("bad route")

func decodeAttachRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, ok := mux.Vars(r)["id"]
	if !ok {
		return nil, errBadRoute
	}
	var body struct {
		Traveler string `json:"traveler_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, err
	}
	return attachRequest{Departure: departure.ID(id), Traveler: traveler.ID(body.Traveler)}, nil
}

func decodeDetachRequest(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	id, ok := vars["id"]
	if !ok {
		return nil, errBadRoute
	}
	t, ok := vars["traveler"]
	if !ok {
		return nil, errBadRoute
	}
	return detachRequest{Departure: departure.ID(id), Traveler: traveler.ID(t)}, nil
}

func decodeUpdateDepartureRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, ok := mux.Vars(r)["id"]
	if !ok {
		return nil, errBadRoute
	}
	var body struct {
		Attach []string `json:"attach"`
		Detach []string `json:"detach"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, err
	}
	req := updateDepartureRequest{Departure: departure.ID(id)}
	for _, t := range body.Attach {
		req.Attach = append(req.Attach, traveler.ID(t))
	}
	for _, t := range body.Detach {
		req.Detach = append(req.Detach, traveler.ID(t))
	}
	return req, nil
}

func decodeDelayRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var body struct {
		Ferry   string `json:"ferry_id"`
		Date    string `json:"date"`
		Seq     int    `json:"seq"`
		Minutes int    `json:"minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, err
	}
	date, err := time.Parse("2006-01-02", body.Date)
	if err != nil {
		return nil, err
	}
	return delayRequest{Ferry: ferry.ID(body.Ferry), Date: date, Seq: body.Seq, Minutes: body.Minutes}, nil
}

func decodeCancelSailingsRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var body struct {
		Ferry string `json:"ferry_id"`
		Date  string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, err
	}
	date, err := time.Parse("2006-01-02", body.Date)
	if err != nil {
		return nil, err
	}
	return cancelSailingsRequest{Ferry: ferry.ID(body.Ferry), Date: date}, nil
}

func decodeCancelDepartureRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, ok := mux.Vars(r)["id"]
	if !ok {
		return nil, errBadRoute
	}
	return cancelDepartureRequest{Departure: departure.ID(id)}, nil
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
	case errors.Is(err, departure.ErrUnknown), errors.Is(err, ferry.ErrUnknown),
		errors.Is(err, traveler.ErrUnknown):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, departure.ErrInvalidDelay):
		w.WriteHeader(http.StatusBadRequest)
	case errors.Is(err, departure.ErrOverBooked), errors.Is(err, departure.ErrAlreadyBooked),
		errors.Is(err, departure.ErrNotBooked), errors.Is(err, departure.ErrFinal):
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
